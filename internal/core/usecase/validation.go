package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/baremaai/companion/internal/core/domain"
	"github.com/baremaai/companion/internal/core/ports"
)

// Field is one editable extraction field in the review buffer.
type Field struct {
	Key   string
	Label string
	Value string
}

// fieldLayout fixes the review form: label text, backend key, and order.
var fieldLayout = []struct {
	Key   string
	Label string
}{
	{"title", "Título do Certificado"},
	{"institution", "Instituição"},
	{"workload_hours", "Carga Horária (h)"},
	{"category", "Categoria"},
	{"start_date", "Data Início"},
	{"end_date", "Data Fim"},
	{"issue_date", "Data Emissão"},
}

// ValidationSession walks the pending-review queue one certificate at a
// time. The queue comes from the validation-scoped listing as-is; the
// session never re-filters it. Confirmations remove the reviewed entry
// optimistically, preserving the order of what remains.
type ValidationSession struct {
	certificates ports.CertificateAPI
	logger       *slog.Logger

	// OnValidated fires after a confirmed validation, so other holders of
	// certificate state can fold in the accepted values.
	OnValidated func(id string, action domain.ValidationAction, updates map[string]any)

	mu      sync.Mutex
	pending []domain.Certificate
	cursor  int
	fields  []Field
	busy    bool
}

func NewValidationSession(certificates ports.CertificateAPI, logger *slog.Logger) *ValidationSession {
	return &ValidationSession{
		certificates: certificates,
		logger:       logger,
	}
}

// Load fetches the pending-review queue and positions the cursor at the
// first entry.
func (v *ValidationSession) Load(ctx context.Context) error {
	certs, err := v.certificates.ListCertificates(ctx, ports.CertificateQuery{ForValidation: true})
	if err != nil {
		return fmt.Errorf("load validation queue: %w", err)
	}

	v.mu.Lock()
	v.pending = certs
	v.cursor = 0
	v.seedFieldsLocked()
	v.mu.Unlock()

	v.logger.Info("validation_queue_loaded", "pending", len(certs))
	return nil
}

func (v *ValidationSession) Remaining() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.pending)
}

// Current returns the certificate under the cursor, nil when the queue is
// empty.
func (v *ValidationSession) Current() *domain.Certificate {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.pending) == 0 {
		return nil
	}
	cert := v.pending[v.cursor]
	return &cert
}

// Confidence reports the extraction-confidence tier of the current
// certificate. Informational only: it never blocks confirmation.
func (v *ValidationSession) Confidence() (domain.ConfidenceTier, string) {
	cert := v.Current()
	if cert == nil {
		return "", ""
	}
	tier := domain.TierFor(cert.AIConfidence)
	return tier, tier.Message()
}

// Next advances the cursor. At the last entry it is a no-op.
func (v *ValidationSession) Next() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.cursor+1 < len(v.pending) {
		v.cursor++
		v.seedFieldsLocked()
	}
}

// Previous moves the cursor back. At the first entry it is a no-op.
func (v *ValidationSession) Previous() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.cursor > 0 {
		v.cursor--
		v.seedFieldsLocked()
	}
}

// Fields returns the edit buffer for the current certificate in form order.
func (v *ValidationSession) Fields() []Field {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]Field, len(v.fields))
	copy(out, v.fields)
	return out
}

// SetField updates one buffered value, addressed by backend key or by the
// form label.
func (v *ValidationSession) SetField(keyOrLabel, value string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i := range v.fields {
		if v.fields[i].Key == keyOrLabel || v.fields[i].Label == keyOrLabel {
			v.fields[i].Value = value
			return nil
		}
	}
	return domain.WrapError(domain.ErrInvalidInput, "set field", fmt.Errorf("unknown field %q", keyOrLabel))
}

// Confirm submits the buffered edits for the current certificate. The
// workload value is sent as a number; other fields go as strings. While a
// confirmation is in flight further Confirm and Approve calls are rejected.
func (v *ValidationSession) Confirm(ctx context.Context) error {
	cert, updates, err := v.begin()
	if err != nil {
		return err
	}
	return v.finish(ctx, cert, domain.ActionEdit, updates)
}

// Approve accepts the extracted data as-is, without sending edits.
func (v *ValidationSession) Approve(ctx context.Context) error {
	cert, _, err := v.begin()
	if err != nil {
		return err
	}
	return v.finish(ctx, cert, domain.ActionApprove, nil)
}

// Preview fetches a renderable URL for the current certificate. It does not
// touch the cursor or the edit buffer.
func (v *ValidationSession) Preview(ctx context.Context) (string, error) {
	cert := v.Current()
	if cert == nil {
		return "", domain.WrapError(domain.ErrNotFound, "preview", fmt.Errorf("validation queue is empty"))
	}
	previewURL, err := v.certificates.CertificatePreview(ctx, cert.ID)
	if err != nil {
		return "", fmt.Errorf("preview certificate: %w", err)
	}
	return previewURL, nil
}

func (v *ValidationSession) begin() (domain.Certificate, map[string]any, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if len(v.pending) == 0 {
		return domain.Certificate{}, nil, domain.WrapError(domain.ErrNotFound, "validate", fmt.Errorf("validation queue is empty"))
	}
	if v.busy {
		return domain.Certificate{}, nil, domain.WrapError(domain.ErrInvalidInput, "validate", fmt.Errorf("a validation is already in flight"))
	}
	v.busy = true

	updates := make(map[string]any, len(v.fields))
	for _, field := range v.fields {
		if field.Key == "workload_hours" {
			updates[field.Key] = parseWorkload(field.Value)
			continue
		}
		updates[field.Key] = field.Value
	}
	return v.pending[v.cursor], updates, nil
}

func (v *ValidationSession) finish(ctx context.Context, cert domain.Certificate, action domain.ValidationAction, updates map[string]any) error {
	err := v.certificates.ValidateCertificate(ctx, cert.ID, action, updates)

	v.mu.Lock()
	v.busy = false

	if err != nil {
		v.mu.Unlock()
		return fmt.Errorf("validate certificate: %w", err)
	}

	v.removeLocked(cert.ID)
	remaining := len(v.pending)
	v.mu.Unlock()

	v.logger.Info("certificate_validated", "certificate_id", cert.ID, "action", string(action), "remaining", remaining)
	if v.OnValidated != nil {
		v.OnValidated(cert.ID, action, updates)
	}
	return nil
}

// removeLocked drops the reviewed entry and clamps the cursor: past the new
// end it wraps to the first entry as long as any remain.
func (v *ValidationSession) removeLocked(id string) {
	for i, cert := range v.pending {
		if cert.ID == id {
			v.pending = append(v.pending[:i], v.pending[i+1:]...)
			break
		}
	}
	if v.cursor >= len(v.pending) {
		v.cursor = 0
	}
	v.seedFieldsLocked()
}

func (v *ValidationSession) seedFieldsLocked() {
	if len(v.pending) == 0 {
		v.fields = nil
		return
	}

	cert := v.pending[v.cursor]
	values := map[string]string{
		"title":          cert.Title,
		"institution":    cert.Institution,
		"workload_hours": formatWorkload(cert.WorkloadHours),
		"category":       cert.Category,
		"start_date":     cert.StartDate,
		"end_date":       cert.EndDate,
		"issue_date":     cert.IssueDate,
	}

	v.fields = make([]Field, 0, len(fieldLayout))
	for _, slot := range fieldLayout {
		v.fields = append(v.fields, Field{Key: slot.Key, Label: slot.Label, Value: values[slot.Key]})
	}
}

func parseWorkload(s string) float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return value
}

func formatWorkload(hours float64) string {
	if hours == 0 {
		return ""
	}
	return strconv.FormatFloat(hours, 'f', -1, 64)
}
