// Package cli is the terminal surface of the companion. Each subcommand
// maps onto one use case; the package holds no business rules of its own.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/baremaai/companion/internal/core/usecase"
	"github.com/baremaai/companion/internal/infrastructure/precheck"
)

type App struct {
	Session    *usecase.SessionUseCase
	Store      *usecase.CurriculumStore
	Validation *usecase.ValidationSession
	Edicts     *usecase.EdictBrowser
	CertUpload *usecase.CertificateUploader
	EdictsUp   *usecase.EdictUploader
	Poller     *usecase.BatchPoller
	Inspector  *precheck.Inspector

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

const usageText = `barema - companheiro de curriculo para residencia medica

Usage:
  barema login -email <email> [-password <senha>]
  barema register -email <email> -name <nome> [-crm <numero> -crm-state <uf>]
  barema logout
  barema profile <show|update|check|photo> [flags]
  barema certificates <list|delete|export> [flags]
  barema upload <arquivo>...
  barema validate
  barema edicts <mine|search|show|upload|download> [flags]
  barema curriculum <preview|pdf|xml> -edict <id> [flags]
`

func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.Stdout, usageText)
		return nil
	}

	command, rest := args[0], args[1:]
	switch command {
	case "login":
		return a.runLogin(ctx, rest)
	case "register":
		return a.runRegister(ctx, rest)
	case "logout":
		return a.runLogout()
	case "profile":
		return a.runProfile(ctx, rest)
	case "certificates":
		return a.runCertificates(ctx, rest)
	case "upload":
		return a.runUpload(ctx, rest)
	case "validate":
		return a.runValidate(ctx)
	case "edicts":
		return a.runEdicts(ctx, rest)
	case "curriculum":
		return a.runCurriculum(ctx, rest)
	case "help", "-h", "--help":
		fmt.Fprint(a.Stdout, usageText)
		return nil
	default:
		fmt.Fprint(a.Stderr, usageText)
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *App) requireAuth() error {
	if !a.Session.Authenticated() {
		return fmt.Errorf("not logged in; run \"barema login\" first")
	}
	return nil
}

// prompt reads one line from stdin after printing the label.
func (a *App) prompt(label string) (string, error) {
	fmt.Fprintf(a.Stdout, "%s: ", label)
	scanner := bufio.NewScanner(a.Stdin)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(scanner.Text()), nil
}
