package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/baremaai/companion/internal/core/domain"
)

func newStore(certs *fakeCertificateAPI) (*CurriculumStore, *fakeVault) {
	vault := &fakeVault{token: "tok", user: &domain.User{ID: "u1"}}
	session := NewSessionUseCase(&fakeAccountAPI{profile: domain.User{ID: "u1"}}, vault, testLogger())
	return NewCurriculumStore(session, certs, testLogger()), vault
}

func TestRefreshLoadsInventory(t *testing.T) {
	certs := &fakeCertificateAPI{listed: []domain.Certificate{
		{ID: "c1", Status: domain.StatusValidated, Category: "publicacoes"},
		{ID: "c2", Status: domain.StatusPending, Category: "publicacoes"},
		{ID: "c3", Status: domain.StatusNeedsReview, Category: "idiomas"},
	}}
	store, _ := newStore(certs)

	if err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("expected refresh, got %v", err)
	}

	stats := store.Stats()
	if stats.Total != 3 || stats.PendingValidation != 2 || stats.Validated != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if stats.ByCategory["publicacoes"] != 2 || stats.ByCategory["idiomas"] != 1 {
		t.Fatalf("unexpected category counts %+v", stats.ByCategory)
	}
}

func TestRefreshFailureKeepsPreviousCache(t *testing.T) {
	certs := &fakeCertificateAPI{listed: []domain.Certificate{{ID: "c1"}}}
	store, _ := newStore(certs)

	if err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("expected refresh, got %v", err)
	}

	certs.mu.Lock()
	certs.listErr = errors.New("service unavailable")
	certs.mu.Unlock()

	if err := store.Refresh(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if len(store.Certificates()) != 1 {
		t.Fatal("expected previous cache intact after failed refresh")
	}
}

func TestDeleteRemovesFromCachePreservingOrder(t *testing.T) {
	certs := &fakeCertificateAPI{listed: []domain.Certificate{
		{ID: "c1"}, {ID: "c2"}, {ID: "c3"},
	}}
	store, _ := newStore(certs)

	if err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("expected refresh, got %v", err)
	}
	if err := store.Delete(context.Background(), "c2"); err != nil {
		t.Fatalf("expected delete, got %v", err)
	}

	remaining := store.Certificates()
	if len(remaining) != 2 || remaining[0].ID != "c1" || remaining[1].ID != "c3" {
		t.Fatalf("expected order preserved, got %+v", remaining)
	}
	if len(certs.deleted) != 1 || certs.deleted[0] != "c2" {
		t.Fatalf("expected backend delete of c2, got %v", certs.deleted)
	}
}

func TestApplyValidationUpdatesCachedCertificate(t *testing.T) {
	certs := &fakeCertificateAPI{listed: []domain.Certificate{
		{ID: "c1", Title: "ACLS", WorkloadHours: 16, Status: domain.StatusPending},
		{ID: "c2", Status: domain.StatusPending},
	}}
	store, _ := newStore(certs)

	if err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("expected refresh, got %v", err)
	}

	store.ApplyValidation("c1", domain.ActionEdit, map[string]any{
		"title":          "ACLS Provider",
		"workload_hours": 20.5,
	})

	cached := store.Certificates()
	if cached[0].Status != domain.StatusValidated {
		t.Fatalf("expected validated status, got %q", cached[0].Status)
	}
	if cached[0].Title != "ACLS Provider" || cached[0].WorkloadHours != 20.5 {
		t.Fatalf("expected accepted edits folded in, got %+v", cached[0])
	}
	if cached[1].Status != domain.StatusPending {
		t.Fatalf("expected untouched sibling, got %+v", cached[1])
	}

	stats := store.Stats()
	if stats.PendingValidation != 1 || stats.Validated != 1 {
		t.Fatalf("expected stats to track the validation, got %+v", stats)
	}
}

func TestApplyValidationApproveKeepsExtractedValues(t *testing.T) {
	certs := &fakeCertificateAPI{listed: []domain.Certificate{
		{ID: "c1", Title: "ACLS", Status: domain.StatusPending},
	}}
	store, _ := newStore(certs)

	if err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("expected refresh, got %v", err)
	}

	store.ApplyValidation("c1", domain.ActionApprove, nil)

	cached := store.Certificates()
	if cached[0].Status != domain.StatusValidated || cached[0].Title != "ACLS" {
		t.Fatalf("expected status change only, got %+v", cached[0])
	}
}

func TestApplyValidationIgnoresUnknownCertificate(t *testing.T) {
	certs := &fakeCertificateAPI{listed: []domain.Certificate{{ID: "c1"}}}
	store, _ := newStore(certs)

	if err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("expected refresh, got %v", err)
	}

	store.ApplyValidation("ghost", domain.ActionApprove, nil)

	if len(store.Certificates()) != 1 {
		t.Fatal("expected cache unchanged for unknown id")
	}
}

func TestDeleteFailureLeavesCacheUntouched(t *testing.T) {
	certs := &fakeCertificateAPI{
		listed:    []domain.Certificate{{ID: "c1"}},
		deleteErr: errors.New("forbidden"),
	}
	store, _ := newStore(certs)

	if err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("expected refresh, got %v", err)
	}
	if err := store.Delete(context.Background(), "c1"); err == nil {
		t.Fatal("expected error")
	}
	if len(store.Certificates()) != 1 {
		t.Fatal("expected cache untouched after failed delete")
	}
}
