package usecase

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/baremaai/companion/internal/core/domain"
	"github.com/baremaai/companion/internal/core/ports"
)

// UploadState tracks one staged file through its lifecycle.
type UploadState string

const (
	UploadPending    UploadState = "pending"
	UploadInProgress UploadState = "uploading"
	UploadProcessing UploadState = "processing"
	UploadCompleted  UploadState = "completed"
	UploadError      UploadState = "error"
)

// UploadItem is one staged certificate file.
type UploadItem struct {
	ID    string
	Name  string
	State UploadState
	Error string

	data []byte
}

// CertificateUploader stages certificate files locally, gating on the
// accepted document kinds, then submits the whole stage as one multipart
// batch.
type CertificateUploader struct {
	certificates ports.CertificateAPI
	precheck     ports.DocumentPrecheck
	logger       *slog.Logger

	// OnFile is invoked per staged file outcome: kind and "accepted",
	// "rejected", "uploaded" or "failed".
	OnFile func(kind, outcome string)

	mu    sync.Mutex
	items []UploadItem
}

func NewCertificateUploader(certificates ports.CertificateAPI, precheck ports.DocumentPrecheck, logger *slog.Logger) *CertificateUploader {
	return &CertificateUploader{
		certificates: certificates,
		precheck:     precheck,
		logger:       logger,
	}
}

// Stage accepts a PDF, JPEG or PNG certificate file into the pending batch.
// Any other kind is rejected without touching the network.
func (u *CertificateUploader) Stage(name string, data []byte) (string, error) {
	kind, err := u.precheck.DetectKind(name, data)
	if err != nil {
		u.notify("unknown", "rejected")
		return "", domain.WrapError(domain.ErrInvalidInput, "stage file", err)
	}
	u.notify(kind, "accepted")

	item := UploadItem{
		ID:    uuid.New().String(),
		Name:  name,
		State: UploadPending,
		data:  bytes.Clone(data),
	}

	u.mu.Lock()
	u.items = append(u.items, item)
	u.mu.Unlock()

	u.logger.Info("file_staged", "file", name, "kind", kind)
	return item.ID, nil
}

// Items returns the current staging list in staging order.
func (u *CertificateUploader) Items() []UploadItem {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]UploadItem, len(u.items))
	copy(out, u.items)
	for i := range out {
		out[i].data = nil
	}
	return out
}

// Remove drops a staged file that has not been submitted yet.
func (u *CertificateUploader) Remove(id string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for i, item := range u.items {
		if item.ID == id && item.State == UploadPending {
			u.items = append(u.items[:i], u.items[i+1:]...)
			return
		}
	}
}

// Submit sends every pending file as one multipart batch and returns the
// batch ID for polling. Per-file results from the response move the items
// to processing or error.
func (u *CertificateUploader) Submit(ctx context.Context) (string, error) {
	u.mu.Lock()
	var files []ports.UploadFile
	var submitted []int
	for i := range u.items {
		if u.items[i].State != UploadPending {
			continue
		}
		u.items[i].State = UploadInProgress
		files = append(files, ports.UploadFile{Name: u.items[i].Name, Data: bytes.NewReader(u.items[i].data)})
		submitted = append(submitted, i)
	}
	u.mu.Unlock()

	if len(files) == 0 {
		return "", domain.WrapError(domain.ErrInvalidInput, "submit batch", fmt.Errorf("no files staged"))
	}

	batch, err := u.certificates.UploadCertificateBatch(ctx, files)

	u.mu.Lock()
	defer u.mu.Unlock()

	if err != nil {
		for _, i := range submitted {
			u.items[i].State = UploadError
			u.items[i].Error = err.Error()
		}
		u.notify("certificate", "failed")
		return "", fmt.Errorf("submit batch: %w", err)
	}

	outcomeByName := make(map[string]domain.UploadOutcome, len(batch.Results))
	for _, result := range batch.Results {
		outcomeByName[result.FileName] = result
	}
	for _, i := range submitted {
		if outcome, ok := outcomeByName[u.items[i].Name]; ok && outcome.Error != "" {
			u.items[i].State = UploadError
			u.items[i].Error = outcome.Error
			u.notify("certificate", "failed")
			continue
		}
		u.items[i].State = UploadProcessing
		u.items[i].data = nil
		u.notify("certificate", "uploaded")
	}

	u.logger.Info("batch_submitted", "batch_id", batch.BatchID, "files", len(files))
	return batch.BatchID, nil
}

// MarkCompleted flips every processing item to completed once the batch
// reaches a terminal state.
func (u *CertificateUploader) MarkCompleted() {
	u.mu.Lock()
	defer u.mu.Unlock()
	for i := range u.items {
		if u.items[i].State == UploadProcessing {
			u.items[i].State = UploadCompleted
		}
	}
}

func (u *CertificateUploader) notify(kind, outcome string) {
	if u.OnFile != nil {
		u.OnFile(kind, outcome)
	}
}

// EdictUploader submits a rubric PDF for parsing. Only PDFs are accepted;
// the rejection message matches what users of the web surface already see.
type EdictUploader struct {
	edicts   ports.EdictAPI
	precheck ports.DocumentPrecheck
	logger   *slog.Logger

	OnFile func(kind, outcome string)
}

func NewEdictUploader(edicts ports.EdictAPI, precheck ports.DocumentPrecheck, logger *slog.Logger) *EdictUploader {
	return &EdictUploader{
		edicts:   edicts,
		precheck: precheck,
		logger:   logger,
	}
}

func (u *EdictUploader) Upload(ctx context.Context, filename string, data []byte) (*domain.ParsedEdictSummary, error) {
	if err := u.precheck.CheckPDF(filename, data); err != nil {
		u.notify("edict", "rejected")
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload edict",
			fmt.Errorf("Por favor, envie apenas arquivos PDF: %w", err))
	}

	summary, err := u.edicts.UploadEdict(ctx, filename, bytes.NewReader(data))
	if err != nil {
		u.notify("edict", "failed")
		return nil, fmt.Errorf("upload edict: %w", err)
	}

	u.notify("edict", "uploaded")
	u.logger.Info("edict_uploaded", "file", filename, "edict_id", summary.EdictID)
	return summary, nil
}

func (u *EdictUploader) notify(kind, outcome string) {
	if u.OnFile != nil {
		u.OnFile(kind, outcome)
	}
}
