package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/baremaai/companion/internal/core/domain"
)

func TestStageRejectsUnsupportedKind(t *testing.T) {
	precheck := &fakePrecheck{kindErr: errors.New("unsupported document type")}
	uploader := NewCertificateUploader(&fakeCertificateAPI{}, precheck, testLogger())

	_, err := uploader.Stage("resume.docx", []byte("word"))
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if len(uploader.Items()) != 0 {
		t.Fatal("expected nothing staged")
	}
}

func TestStageAssignsUniqueIDs(t *testing.T) {
	uploader := NewCertificateUploader(&fakeCertificateAPI{}, &fakePrecheck{}, testLogger())

	first, err := uploader.Stage("a.pdf", []byte("a"))
	if err != nil {
		t.Fatalf("expected stage, got %v", err)
	}
	second, err := uploader.Stage("b.pdf", []byte("b"))
	if err != nil {
		t.Fatalf("expected stage, got %v", err)
	}
	if first == second || first == "" {
		t.Fatalf("expected distinct ids, got %q / %q", first, second)
	}

	items := uploader.Items()
	if len(items) != 2 || items[0].State != UploadPending {
		t.Fatalf("unexpected staging list %+v", items)
	}
}

func TestSubmitMovesItemsToProcessing(t *testing.T) {
	api := &fakeCertificateAPI{batch: domain.BatchUpload{
		BatchID: "b1",
		Results: []domain.UploadOutcome{
			{FileName: "a.pdf", Status: "queued"},
			{FileName: "b.png", Status: "queued"},
		},
	}}
	uploader := NewCertificateUploader(api, &fakePrecheck{}, testLogger())

	if _, err := uploader.Stage("a.pdf", []byte("a")); err != nil {
		t.Fatalf("stage: %v", err)
	}
	if _, err := uploader.Stage("b.png", []byte("b")); err != nil {
		t.Fatalf("stage: %v", err)
	}

	batchID, err := uploader.Submit(context.Background())
	if err != nil {
		t.Fatalf("expected submit, got %v", err)
	}
	if batchID != "b1" {
		t.Fatalf("expected batch b1, got %q", batchID)
	}
	if len(api.batchUploads) != 1 || len(api.batchUploads[0]) != 2 {
		t.Fatalf("expected one batch of two files, got %+v", api.batchUploads)
	}
	for _, item := range uploader.Items() {
		if item.State != UploadProcessing {
			t.Fatalf("expected processing, got %+v", item)
		}
	}
}

func TestSubmitWithEmptyStage(t *testing.T) {
	uploader := NewCertificateUploader(&fakeCertificateAPI{}, &fakePrecheck{}, testLogger())

	_, err := uploader.Submit(context.Background())
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestSubmitFailureMarksItems(t *testing.T) {
	api := &fakeCertificateAPI{batchErr: errors.New("gateway timeout")}
	uploader := NewCertificateUploader(api, &fakePrecheck{}, testLogger())

	if _, err := uploader.Stage("a.pdf", []byte("a")); err != nil {
		t.Fatalf("stage: %v", err)
	}
	if _, err := uploader.Submit(context.Background()); err == nil {
		t.Fatal("expected error")
	}

	items := uploader.Items()
	if items[0].State != UploadError || items[0].Error == "" {
		t.Fatalf("expected error state with message, got %+v", items[0])
	}
}

func TestPerFileRejectionFromBatchResponse(t *testing.T) {
	api := &fakeCertificateAPI{batch: domain.BatchUpload{
		BatchID: "b2",
		Results: []domain.UploadOutcome{
			{FileName: "good.pdf", Status: "queued"},
			{FileName: "bad.pdf", Status: "rejected", Error: "arquivo corrompido"},
		},
	}}
	uploader := NewCertificateUploader(api, &fakePrecheck{}, testLogger())

	if _, err := uploader.Stage("good.pdf", []byte("g")); err != nil {
		t.Fatalf("stage: %v", err)
	}
	if _, err := uploader.Stage("bad.pdf", []byte("b")); err != nil {
		t.Fatalf("stage: %v", err)
	}
	if _, err := uploader.Submit(context.Background()); err != nil {
		t.Fatalf("expected submit, got %v", err)
	}

	items := uploader.Items()
	if items[0].State != UploadProcessing {
		t.Fatalf("expected good file processing, got %+v", items[0])
	}
	if items[1].State != UploadError || items[1].Error != "arquivo corrompido" {
		t.Fatalf("expected per-file rejection, got %+v", items[1])
	}
}

func TestRemoveOnlyAffectsPendingItems(t *testing.T) {
	api := &fakeCertificateAPI{batch: domain.BatchUpload{BatchID: "b3"}}
	uploader := NewCertificateUploader(api, &fakePrecheck{}, testLogger())

	id, err := uploader.Stage("a.pdf", []byte("a"))
	if err != nil {
		t.Fatalf("stage: %v", err)
	}
	if _, err := uploader.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	uploader.Remove(id)
	if len(uploader.Items()) != 1 {
		t.Fatal("expected submitted item to survive removal")
	}
}

func TestEdictUploadRejectsNonPDF(t *testing.T) {
	precheck := &fakePrecheck{pdfErr: errors.New("not a PDF document")}
	uploader := NewEdictUploader(&fakeEdictAPI{}, precheck, testLogger())

	_, err := uploader.Upload(context.Background(), "edital.png", []byte("png"))
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if !strings.Contains(err.Error(), "Por favor, envie apenas arquivos PDF") {
		t.Fatalf("expected user-facing rejection message, got %v", err)
	}
}

func TestEdictUploadReturnsParsedSummary(t *testing.T) {
	api := &fakeEdictAPI{summary: domain.ParsedEdictSummary{
		EdictID:       "e7",
		Status:        "parsed",
		CriteriaCount: 31,
		ParsedData:    &domain.ParsedEdict{Name: "Edital 2026", Institution: "UFMG", Year: 2026},
	}}
	uploader := NewEdictUploader(api, &fakePrecheck{}, testLogger())

	summary, err := uploader.Upload(context.Background(), "edital.pdf", []byte("%PDF"))
	if err != nil {
		t.Fatalf("expected upload, got %v", err)
	}
	if summary.EdictID != "e7" || summary.CriteriaCount != 31 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if summary.ParsedData == nil || summary.ParsedData.Institution != "UFMG" {
		t.Fatalf("expected parsed data, got %+v", summary.ParsedData)
	}
}
