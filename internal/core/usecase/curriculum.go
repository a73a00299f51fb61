package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/baremaai/companion/internal/core/domain"
	"github.com/baremaai/companion/internal/core/ports"
)

// InventoryStats summarizes the loaded certificate inventory.
type InventoryStats struct {
	Total             int
	PendingValidation int
	Validated         int
	ByCategory        map[string]int
}

// CurriculumStore caches the user's certificate inventory. Profile and
// certificates load concurrently on refresh; either half failing fails the
// refresh as a whole and leaves the previous cache intact.
type CurriculumStore struct {
	session      *SessionUseCase
	certificates ports.CertificateAPI
	logger       *slog.Logger

	mu    sync.RWMutex
	certs []domain.Certificate
}

func NewCurriculumStore(session *SessionUseCase, certificates ports.CertificateAPI, logger *slog.Logger) *CurriculumStore {
	return &CurriculumStore{
		session:      session,
		certificates: certificates,
		logger:       logger,
	}
}

// Refresh reloads profile and certificate inventory in parallel.
func (s *CurriculumStore) Refresh(ctx context.Context) error {
	var wg sync.WaitGroup
	var profileErr, certsErr error
	var certs []domain.Certificate

	wg.Add(2)
	go func() {
		defer wg.Done()
		_, profileErr = s.session.RefreshProfile(ctx)
	}()
	go func() {
		defer wg.Done()
		certs, certsErr = s.certificates.ListCertificates(ctx, ports.CertificateQuery{})
	}()
	wg.Wait()

	if profileErr != nil {
		return fmt.Errorf("refresh curriculum: %w", profileErr)
	}
	if certsErr != nil {
		return fmt.Errorf("refresh curriculum: %w", certsErr)
	}

	s.mu.Lock()
	s.certs = certs
	s.mu.Unlock()

	s.logger.Info("curriculum_refreshed", "certificates", len(certs))
	return nil
}

// Certificates returns a copy of the cached inventory in server order.
func (s *CurriculumStore) Certificates() []domain.Certificate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Certificate, len(s.certs))
	copy(out, s.certs)
	return out
}

func (s *CurriculumStore) Stats() InventoryStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := InventoryStats{
		Total:      len(s.certs),
		ByCategory: make(map[string]int),
	}
	for _, cert := range s.certs {
		if cert.Status.NeedsAttention() {
			stats.PendingValidation++
		}
		if cert.Status == domain.StatusValidated || cert.Status == domain.StatusApproved {
			stats.Validated++
		}
		if cert.Category != "" {
			stats.ByCategory[cert.Category]++
		}
	}
	return stats
}

// ApplyValidation folds a confirmed validation into the cached inventory:
// the certificate moves to validated and any accepted edits replace the
// cached extraction values. Certificates not in the cache are ignored; the
// next refresh picks them up.
func (s *CurriculumStore) ApplyValidation(id string, action domain.ValidationAction, updates map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.certs {
		if s.certs[i].ID != id {
			continue
		}
		s.certs[i].Status = domain.StatusValidated
		if action == domain.ActionEdit {
			applyCertificateUpdates(&s.certs[i], updates)
		}
		return
	}
}

func applyCertificateUpdates(cert *domain.Certificate, updates map[string]any) {
	for key, value := range updates {
		switch key {
		case "title":
			cert.Title, _ = value.(string)
		case "institution":
			cert.Institution, _ = value.(string)
		case "category":
			cert.Category, _ = value.(string)
		case "workload_hours":
			cert.WorkloadHours, _ = value.(float64)
		case "start_date":
			cert.StartDate, _ = value.(string)
		case "end_date":
			cert.EndDate, _ = value.(string)
		case "issue_date":
			cert.IssueDate, _ = value.(string)
		}
	}
}

// Delete removes a certificate on the backend, then drops it from the
// cache without disturbing the order of the remaining entries.
func (s *CurriculumStore) Delete(ctx context.Context, id string) error {
	if err := s.certificates.DeleteCertificate(ctx, id); err != nil {
		return fmt.Errorf("delete certificate: %w", err)
	}

	s.mu.Lock()
	for i, cert := range s.certs {
		if cert.ID == id {
			s.certs = append(s.certs[:i], s.certs[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	return nil
}
