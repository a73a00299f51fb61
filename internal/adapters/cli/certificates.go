package cli

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/baremaai/companion/internal/core/domain"
	"github.com/baremaai/companion/internal/infrastructure/export/xlsx"
)

func (a *App) runCertificates(ctx context.Context, args []string) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("certificates: expected list, delete or export")
	}

	switch args[0] {
	case "list":
		return a.certificatesList(ctx)
	case "delete":
		return a.certificatesDelete(ctx, args[1:])
	case "export":
		return a.certificatesExport(ctx, args[1:])
	default:
		return fmt.Errorf("certificates: unknown subcommand %q", args[0])
	}
}

func (a *App) certificatesList(ctx context.Context) error {
	if err := a.Store.Refresh(ctx); err != nil {
		return err
	}

	certs := a.Store.Certificates()
	if len(certs) == 0 {
		fmt.Fprintln(a.Stdout, "Nenhum certificado enviado ainda")
		return nil
	}

	for _, cert := range certs {
		confidence := ""
		if cert.AIConfidence > 0 {
			confidence = fmt.Sprintf("  confiança %.0f%%", cert.AIConfidence*100)
		}
		fmt.Fprintf(a.Stdout, "%-36s  %-12s  %s (%s)%s\n",
			cert.ID, cert.Status, cert.Title, domain.CategoryLabel(cert.Category), confidence)
	}

	stats := a.Store.Stats()
	fmt.Fprintf(a.Stdout, "\n%d certificados, %d aguardando validação, %d validados\n",
		stats.Total, stats.PendingValidation, stats.Validated)
	return nil
}

func (a *App) certificatesDelete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("certificates delete: expected exactly one certificate id")
	}
	if err := a.Store.Delete(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(a.Stdout, "Certificado %s removido\n", args[0])
	return nil
}

func (a *App) certificatesExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("certificates export", flag.ContinueOnError)
	fs.SetOutput(a.Stderr)
	output := fs.String("o", "certificados.xlsx", "output spreadsheet path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.Store.Refresh(ctx); err != nil {
		return err
	}

	f, err := os.Create(*output)
	if err != nil {
		return fmt.Errorf("create %s: %w", *output, err)
	}
	defer f.Close()

	if err := xlsx.WriteInventory(f, a.Store.Certificates()); err != nil {
		return err
	}
	fmt.Fprintf(a.Stdout, "Inventário exportado para %s\n", *output)
	return nil
}

func (a *App) runUpload(ctx context.Context, args []string) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("upload: expected at least one file")
	}

	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		if _, err := a.CertUpload.Stage(filepath.Base(path), data); err != nil {
			fmt.Fprintf(a.Stderr, "%s ignorado: %v\n", path, err)
		}
	}

	batchID, err := a.CertUpload.Submit(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Stdout, "Lote %s enviado, aguardando processamento...\n", batchID)

	status, err := a.Poller.WaitAndFinalize(ctx, batchID, a.CertUpload, func(s domain.BatchStatus) {
		fmt.Fprintf(a.Stdout, "  %d/%d processados (%.0f%%)\n", s.Processed, s.Total, s.Progress)
	})
	if err != nil {
		return err
	}

	if status.Status == domain.BatchFailed {
		return fmt.Errorf("lote falhou: %s", status.ErrorMessage)
	}
	fmt.Fprintf(a.Stdout, "Concluído: %d com sucesso, %d com falha\n", status.Successful, status.Failed)
	return nil
}

const validateHelp = `Comandos: [a]provar  [e]ditar campo  [p]róximo  [v]oltar  [u]rl do arquivo  [c]onfirmar edições  [q] sair`

// runValidate walks the pending-review queue interactively until it is
// empty or the user quits.
func (a *App) runValidate(ctx context.Context) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	if err := a.Validation.Load(ctx); err != nil {
		return err
	}
	if a.Validation.Remaining() == 0 {
		fmt.Fprintln(a.Stdout, "Nenhum certificado aguardando validação")
		return nil
	}

	scanner := bufio.NewScanner(a.Stdin)
	for a.Validation.Remaining() > 0 {
		a.printCurrent()
		fmt.Fprintln(a.Stdout, validateHelp)
		fmt.Fprint(a.Stdout, "> ")

		if !scanner.Scan() {
			return scanner.Err()
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		switch strings.ToLower(input[:1]) {
		case "q":
			return nil
		case "p":
			a.Validation.Next()
		case "v":
			a.Validation.Previous()
		case "a":
			if err := a.Validation.Approve(ctx); err != nil {
				fmt.Fprintf(a.Stderr, "erro: %v\n", err)
			}
		case "c":
			if err := a.Validation.Confirm(ctx); err != nil {
				fmt.Fprintf(a.Stderr, "erro: %v\n", err)
			}
		case "u":
			previewURL, err := a.Validation.Preview(ctx)
			if err != nil {
				fmt.Fprintf(a.Stderr, "erro: %v\n", err)
				continue
			}
			fmt.Fprintln(a.Stdout, previewURL)
		case "e":
			if err := a.editField(scanner); err != nil {
				fmt.Fprintf(a.Stderr, "erro: %v\n", err)
			}
		default:
			fmt.Fprintf(a.Stderr, "comando desconhecido %q\n", input)
		}
	}

	fmt.Fprintln(a.Stdout, "Fila de validação vazia")
	return nil
}

func (a *App) printCurrent() {
	cert := a.Validation.Current()
	if cert == nil {
		return
	}
	tier, message := a.Validation.Confidence()

	fmt.Fprintf(a.Stdout, "\nCertificado %s  (%d restantes)\n", cert.ID, a.Validation.Remaining())
	fmt.Fprintf(a.Stdout, "Confiança: %s - %s\n", tier, message)
	for i, field := range a.Validation.Fields() {
		fmt.Fprintf(a.Stdout, "  [%d] %-22s %s\n", i+1, field.Label+":", field.Value)
	}
}

func (a *App) editField(scanner *bufio.Scanner) error {
	fields := a.Validation.Fields()
	fmt.Fprint(a.Stdout, "Campo (número ou nome): ")
	if !scanner.Scan() {
		return scanner.Err()
	}
	name := strings.TrimSpace(scanner.Text())
	for i, field := range fields {
		if name == fmt.Sprintf("%d", i+1) {
			name = field.Key
			break
		}
	}

	fmt.Fprint(a.Stdout, "Novo valor: ")
	if !scanner.Scan() {
		return scanner.Err()
	}
	return a.Validation.SetField(name, strings.TrimSpace(scanner.Text()))
}
