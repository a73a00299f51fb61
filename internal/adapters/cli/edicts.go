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

func (a *App) runEdicts(ctx context.Context, args []string) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("edicts: expected mine, search, show, upload or download")
	}

	switch args[0] {
	case "mine":
		return a.edictsMine(ctx)
	case "search":
		return a.edictsSearch(ctx, args[1:])
	case "show":
		return a.edictsShow(ctx, args[1:])
	case "upload":
		return a.edictsUpload(ctx, args[1:])
	case "download":
		return a.edictsDownload(ctx, args[1:])
	default:
		return fmt.Errorf("edicts: unknown subcommand %q", args[0])
	}
}

func (a *App) edictsMine(ctx context.Context) error {
	edicts, err := a.Edicts.LoadMine(ctx)
	if err != nil {
		return err
	}
	if len(edicts) == 0 {
		fmt.Fprintln(a.Stdout, "Nenhum edital associado à sua conta")
		return nil
	}
	a.printEdicts(edicts)
	return nil
}

func (a *App) edictsSearch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("edicts search", flag.ContinueOnError)
	fs.SetOutput(a.Stderr)
	institution := fs.String("institution", "", "institution name")
	year := fs.Int("year", 0, "selection year")
	state := fs.String("state", "", "state (UF)")
	program := fs.String("program", "", "residency program")
	department := fs.String("department", "", "department")
	if err := fs.Parse(args); err != nil {
		return err
	}

	results, err := a.Edicts.Search(ctx, domain.EdictFilters{
		Institution: *institution,
		Year:        *year,
		State:       strings.ToUpper(*state),
		Program:     *program,
		Department:  *department,
	})
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Fprintln(a.Stdout, "Nenhum edital encontrado para os filtros informados")
		return nil
	}
	a.printEdicts(results)
	return nil
}

func (a *App) printEdicts(edicts []domain.Edict) {
	for _, edict := range edicts {
		year := ""
		if edict.Year > 0 {
			year = fmt.Sprintf(" %d", edict.Year)
		}
		fmt.Fprintf(a.Stdout, "%-36s  %s - %s%s [%s]\n",
			edict.ID, edict.Institution, edict.Title, year, edict.Status)
	}
}

func (a *App) edictsShow(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("edicts show: expected exactly one edict id")
	}

	edict, groups, err := a.Edicts.Detail(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(a.Stdout, "%s\n%s", edict.Title, edict.Institution)
	if edict.Year > 0 {
		fmt.Fprintf(a.Stdout, " - %d", edict.Year)
	}
	fmt.Fprintln(a.Stdout)

	for _, group := range groups {
		fmt.Fprintf(a.Stdout, "\n%s\n", domain.CategoryLabel(group.CategorySlug))
		for _, criterion := range group.Criteria {
			limit := ""
			if criterion.ItemLimit > 0 {
				limit = fmt.Sprintf(" (máx. %d itens)", criterion.ItemLimit)
			}
			fmt.Fprintf(a.Stdout, "  %2d.%d  %s - %.2f pts%s\n",
				criterion.DisplayOrder, criterion.SubOrder, criterion.Description, criterion.UnitPoints, limit)
		}
	}
	return nil
}

func (a *App) edictsUpload(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("edicts upload: expected exactly one PDF file")
	}
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	summary, err := a.EdictsUp.Upload(ctx, filepath.Base(path), data)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.Stdout, "Edital %s processado: %s\n", summary.EdictID, summary.Status)
	if summary.ParsedData != nil {
		fmt.Fprintf(a.Stdout, "  %s - %s", summary.ParsedData.Name, summary.ParsedData.Institution)
		if summary.ParsedData.Year > 0 {
			fmt.Fprintf(a.Stdout, " (%d)", summary.ParsedData.Year)
		}
		fmt.Fprintln(a.Stdout)
	}
	fmt.Fprintf(a.Stdout, "  %d critérios identificados\n", summary.CriteriaCount)
	if len(summary.Programs) > 0 {
		fmt.Fprintf(a.Stdout, "  Programas: %s\n", strings.Join(summary.Programs, ", "))
	}
	return nil
}

func (a *App) edictsDownload(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("edicts download", flag.ContinueOnError)
	fs.SetOutput(a.Stderr)
	output := fs.String("o", "", "output path (defaults to <id>.pdf)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("edicts download: expected exactly one edict id")
	}
	id := fs.Arg(0)
	path := *output
	if path == "" {
		path = id + ".pdf"
	}

	return a.writeDownload(path, func(f *os.File) error {
		return a.Edicts.Download(ctx, id, f)
	})
}

func (a *App) runCurriculum(ctx context.Context, args []string) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("curriculum: expected preview, pdf or xml")
	}

	fs := flag.NewFlagSet("curriculum "+args[0], flag.ContinueOnError)
	fs.SetOutput(a.Stderr)
	edictID := fs.String("edict", "", "edict id to project against")
	output := fs.String("o", "", "output path for pdf/xml")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	if *edictID == "" {
		return fmt.Errorf("curriculum: -edict is required")
	}

	switch args[0] {
	case "preview":
		return a.curriculumPreview(ctx, *edictID)
	case "pdf":
		path := *output
		if path == "" {
			path = "curriculo.pdf"
		}
		return a.writeDownload(path, func(f *os.File) error {
			return a.Edicts.ExportPDF(ctx, *edictID, f)
		})
	case "xml":
		path := *output
		if path == "" {
			path = "curriculo.xml"
		}
		return a.writeDownload(path, func(f *os.File) error {
			return a.Edicts.ExportXML(ctx, *edictID, f)
		})
	default:
		return fmt.Errorf("curriculum: unknown subcommand %q", args[0])
	}
}

func (a *App) curriculumPreview(ctx context.Context, edictID string) error {
	preview, err := a.Edicts.Preview(ctx, edictID)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.Stdout, "Pontuação estimada: %.2f", preview.EstimatedTotal)
	if preview.MaxScore > 0 {
		fmt.Fprintf(a.Stdout, " de %.2f", preview.MaxScore)
	}
	fmt.Fprintln(a.Stdout)

	for _, section := range preview.Sections {
		fmt.Fprintf(a.Stdout, "  %-32s %.2f", domain.CategoryLabel(section.CategorySlug), section.EstimatedScore)
		if section.MaxScore > 0 {
			fmt.Fprintf(a.Stdout, " / %.2f", section.MaxScore)
		}
		fmt.Fprintln(a.Stdout)
		for _, item := range section.SampleItems {
			fmt.Fprintf(a.Stdout, "      - %s\n", item)
		}
	}
	return nil
}

// writeDownload creates the destination first and removes it again when the
// transfer fails, so a failed export never leaves a partial file behind.
func (a *App) writeDownload(path string, fn func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := fn(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	fmt.Fprintf(a.Stdout, "Gravado em %s\n", path)
	return nil
}
