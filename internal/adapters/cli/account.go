package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/baremaai/companion/internal/core/domain"
)

func (a *App) runLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(a.Stderr)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password (prompted when omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return fmt.Errorf("login: -email is required")
	}
	if *password == "" {
		entered, err := a.prompt("Senha")
		if err != nil {
			return err
		}
		*password = entered
	}

	user, err := a.Session.Login(ctx, domain.Credentials{Email: *email, Password: *password})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Stdout, "Logado como %s (%s)\n", user.FullName, user.Email)
	return nil
}

func (a *App) runRegister(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	fs.SetOutput(a.Stderr)
	email := fs.String("email", "", "account email")
	name := fs.String("name", "", "full name")
	password := fs.String("password", "", "account password (prompted when omitted)")
	crm := fs.String("crm", "", "CRM number")
	crmState := fs.String("crm-state", "", "CRM state (UF)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *name == "" {
		return fmt.Errorf("register: -email and -name are required")
	}
	if *password == "" {
		entered, err := a.prompt("Senha")
		if err != nil {
			return err
		}
		*password = entered
	}

	user, err := a.Session.Register(ctx, domain.Registration{
		Email:     *email,
		Password:  *password,
		FullName:  *name,
		CRMNumber: *crm,
		CRMState:  strings.ToUpper(*crmState),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Stdout, "Conta criada e sessão iniciada para %s\n", user.Email)
	return nil
}

func (a *App) runLogout() error {
	if err := a.Session.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(a.Stdout, "Sessão encerrada")
	return nil
}

func (a *App) runProfile(ctx context.Context, args []string) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("profile: expected show, update, check or photo")
	}

	switch args[0] {
	case "show":
		return a.profileShow(ctx)
	case "update":
		return a.profileUpdate(ctx, args[1:])
	case "check":
		return a.profileCheck(ctx)
	case "photo":
		return a.profilePhoto(ctx, args[1:])
	default:
		return fmt.Errorf("profile: unknown subcommand %q", args[0])
	}
}

func (a *App) profileShow(ctx context.Context) error {
	user, err := a.Session.RefreshProfile(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Stdout, "Nome:          %s\n", user.FullName)
	fmt.Fprintf(a.Stdout, "Email:         %s\n", user.Email)
	if user.CRM != "" {
		fmt.Fprintf(a.Stdout, "CRM:           %s\n", user.CRM)
	}
	if user.Specialty != "" {
		fmt.Fprintf(a.Stdout, "Especialidade: %s\n", user.Specialty)
	}
	if user.City != "" || user.State != "" {
		fmt.Fprintf(a.Stdout, "Local:         %s/%s\n", user.City, user.State)
	}
	fmt.Fprintf(a.Stdout, "Plano:         %s\n", user.SubscriptionTier)
	return nil
}

func (a *App) profileUpdate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("profile update", flag.ContinueOnError)
	fs.SetOutput(a.Stderr)
	name := fs.String("name", "", "full name")
	cpf := fs.String("cpf", "", "CPF")
	phone := fs.String("phone", "", "phone number")
	crm := fs.String("crm", "", "CRM number")
	specialty := fs.String("specialty", "", "medical specialty")
	city := fs.String("city", "", "city")
	state := fs.String("state", "", "state (UF)")
	gradYear := fs.Int("graduation-year", 0, "graduation year")
	if err := fs.Parse(args); err != nil {
		return err
	}

	user, err := a.Session.UpdateProfile(ctx, domain.ProfileUpdate{
		FullName:       *name,
		CPF:            *cpf,
		Phone:          *phone,
		CRM:            *crm,
		Specialty:      *specialty,
		City:           *city,
		State:          strings.ToUpper(*state),
		GraduationYear: *gradYear,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Stdout, "Perfil atualizado para %s\n", user.Email)
	return nil
}

func (a *App) profileCheck(ctx context.Context) error {
	check, err := a.Session.IdentificationCheck(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Stdout, "Perfil %.0f%% completo\n", check.CompletionPercentage)
	if len(check.MissingRequired) > 0 {
		fmt.Fprintf(a.Stdout, "Campos obrigatórios pendentes: %s\n", strings.Join(check.MissingRequired, ", "))
	}
	if len(check.MissingOptional) > 0 {
		fmt.Fprintf(a.Stdout, "Campos opcionais pendentes: %s\n", strings.Join(check.MissingOptional, ", "))
	}
	if check.IsComplete {
		fmt.Fprintln(a.Stdout, "Identificação completa")
	}
	return nil
}

func (a *App) profilePhoto(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("profile photo: expected exactly one image file")
	}
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read photo: %w", err)
	}
	if err := a.Inspector.CheckPhoto(path, data); err != nil {
		return err
	}

	photoURL, err := a.Session.UploadPhoto(ctx, filepath.Base(path), data)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Stdout, "Foto enviada: %s\n", photoURL)
	return nil
}
