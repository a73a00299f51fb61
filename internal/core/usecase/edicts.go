package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/baremaai/companion/internal/core/domain"
	"github.com/baremaai/companion/internal/core/ports"
)

// EdictBrowser drives rubric discovery: the user's own edicts, ad-hoc
// search, per-edict detail, and curriculum projections against a chosen
// edict. Search results are kept separate from the "mine" list and a
// cleared search forgets that a search ever ran.
type EdictBrowser struct {
	edicts ports.EdictAPI
	logger *slog.Logger

	mu       sync.Mutex
	mine     []domain.Edict
	results  []domain.Edict
	searched bool
	previews map[string]*domain.CurriculumPreview

	exportMu sync.Mutex
	pdfBusy  bool
	xmlBusy  bool
}

func NewEdictBrowser(edicts ports.EdictAPI, logger *slog.Logger) *EdictBrowser {
	return &EdictBrowser{
		edicts:   edicts,
		logger:   logger,
		previews: make(map[string]*domain.CurriculumPreview),
	}
}

func (b *EdictBrowser) LoadMine(ctx context.Context) ([]domain.Edict, error) {
	edicts, err := b.edicts.MyEdicts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load my edicts: %w", err)
	}
	b.mu.Lock()
	b.mine = edicts
	b.mu.Unlock()
	return edicts, nil
}

// Search runs an ad-hoc filtered query. Only the non-empty filters become
// request parameters; an entirely empty set still issues the request, which
// the server treats as "list all".
func (b *EdictBrowser) Search(ctx context.Context, filters domain.EdictFilters) ([]domain.Edict, error) {
	edicts, err := b.edicts.SearchEdicts(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("search edicts: %w", err)
	}

	b.mu.Lock()
	b.results = edicts
	b.searched = true
	b.mu.Unlock()

	b.logger.Info("edict_search", "results", len(edicts))
	return edicts, nil
}

// Searched distinguishes "no search yet" from "a search returned nothing".
func (b *EdictBrowser) Searched() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.searched
}

func (b *EdictBrowser) ClearSearch() {
	b.mu.Lock()
	b.results = nil
	b.searched = false
	b.mu.Unlock()
}

// Detail fetches one edict and returns its criteria grouped by category in
// rubric display order.
func (b *EdictBrowser) Detail(ctx context.Context, id string) (*domain.Edict, []domain.CriterionGroup, error) {
	edict, err := b.edicts.GetEdict(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("load edict: %w", err)
	}
	return edict, domain.GroupCriteria(edict.BaremaConfig.Criteria), nil
}

func (b *EdictBrowser) Download(ctx context.Context, id string, out io.Writer) error {
	if err := b.edicts.DownloadEdict(ctx, id, out); err != nil {
		return fmt.Errorf("download edict: %w", err)
	}
	return nil
}

// Preview returns the curriculum projection for an edict, fetched once and
// cached for the life of the browser.
func (b *EdictBrowser) Preview(ctx context.Context, edictID string) (*domain.CurriculumPreview, error) {
	b.mu.Lock()
	if preview, ok := b.previews[edictID]; ok {
		b.mu.Unlock()
		return preview, nil
	}
	b.mu.Unlock()

	preview, err := b.edicts.CurriculumPreview(ctx, edictID)
	if err != nil {
		return nil, fmt.Errorf("curriculum preview: %w", err)
	}

	b.mu.Lock()
	b.previews[edictID] = preview
	b.mu.Unlock()
	return preview, nil
}

// ExportPDF renders the curriculum for an edict into out. PDF and XML
// exports guard their in-flight state independently, so one format being
// busy never blocks the other.
func (b *EdictBrowser) ExportPDF(ctx context.Context, edictID string, out io.Writer) error {
	b.exportMu.Lock()
	if b.pdfBusy {
		b.exportMu.Unlock()
		return domain.WrapError(domain.ErrInvalidInput, "export pdf", fmt.Errorf("a PDF export is already in flight"))
	}
	b.pdfBusy = true
	b.exportMu.Unlock()

	defer func() {
		b.exportMu.Lock()
		b.pdfBusy = false
		b.exportMu.Unlock()
	}()

	if err := b.edicts.CurriculumPDF(ctx, edictID, out); err != nil {
		return fmt.Errorf("export pdf: %w", err)
	}
	return nil
}

func (b *EdictBrowser) ExportXML(ctx context.Context, edictID string, out io.Writer) error {
	b.exportMu.Lock()
	if b.xmlBusy {
		b.exportMu.Unlock()
		return domain.WrapError(domain.ErrInvalidInput, "export xml", fmt.Errorf("an XML export is already in flight"))
	}
	b.xmlBusy = true
	b.exportMu.Unlock()

	defer func() {
		b.exportMu.Lock()
		b.xmlBusy = false
		b.exportMu.Unlock()
	}()

	if err := b.edicts.CurriculumXML(ctx, edictID, out); err != nil {
		return fmt.Errorf("export xml: %w", err)
	}
	return nil
}
