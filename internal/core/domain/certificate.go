package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

type CertificateStatus string

const (
	StatusPending     CertificateStatus = "pending"
	StatusProcessing  CertificateStatus = "processing"
	StatusValidated   CertificateStatus = "validated"
	StatusRejected    CertificateStatus = "rejected"
	StatusApproved    CertificateStatus = "approved"
	StatusNeedsReview CertificateStatus = "needs_review"
)

func (s CertificateStatus) Known() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusValidated, StatusRejected, StatusApproved, StatusNeedsReview:
		return true
	default:
		return false
	}
}

// NeedsAttention reports whether the certificate still waits on the
// extraction pipeline or on human review.
func (s CertificateStatus) NeedsAttention() bool {
	return s == StatusPending || s == StatusProcessing || s == StatusNeedsReview
}

// ValidationAction is what a reviewer submits for one certificate.
type ValidationAction string

const (
	ActionApprove ValidationAction = "approve"
	ActionEdit    ValidationAction = "edit"
)

type Certificate struct {
	ID                   string            `json:"id"`
	UserID               string            `json:"user_id"`
	Title                string            `json:"title"`
	Institution          string            `json:"institution"`
	Category             string            `json:"category"`
	WorkloadHours        float64           `json:"workload_hours"`
	StartDate            string            `json:"start_date"`
	EndDate              string            `json:"end_date"`
	IssueDate            string            `json:"issue_date"`
	Status               CertificateStatus `json:"status"`
	AIConfidence         float64           `json:"ai_confidence"`
	ExtractionConfidence float64           `json:"extraction_confidence"`
	FilePath             string            `json:"file_path"`
	FileName             string            `json:"file_name"`
	ExtractedData        json.RawMessage   `json:"extracted_data,omitempty"`
	CreatedAt            time.Time         `json:"created_at"`
}

// NormalizeCertificates decodes a certificate list response. The backend
// has returned both a bare array and an object with a "certificates" field;
// either shape is accepted. A malformed record falls back to per-field
// defaults instead of aborting the whole list.
func NormalizeCertificates(body []byte) []Certificate {
	root := gjson.ParseBytes(body)
	list := root
	if !root.IsArray() {
		list = root.Get("certificates")
	}
	if !list.IsArray() {
		return []Certificate{}
	}

	items := list.Array()
	certs := make([]Certificate, 0, len(items))
	for _, item := range items {
		certs = append(certs, normalizeCertificate(item))
	}
	return certs
}

// NormalizeCertificate decodes a single certificate record with the same
// field fallbacks as NormalizeCertificates.
func NormalizeCertificate(body []byte) Certificate {
	root := gjson.ParseBytes(body)
	if nested := root.Get("certificate"); nested.IsObject() {
		root = nested
	}
	return normalizeCertificate(root)
}

func normalizeCertificate(item gjson.Result) Certificate {
	cert := Certificate{
		ID:            item.Get("id").String(),
		UserID:        item.Get("user_id").String(),
		Title:         item.Get("title").String(),
		Institution:   item.Get("institution").String(),
		Category:      item.Get("category").String(),
		WorkloadHours: item.Get("workload_hours").Float(),
		StartDate:     dateOnly(item.Get("start_date").String()),
		EndDate:       dateOnly(item.Get("end_date").String()),
		IssueDate:     dateOnly(item.Get("issue_date").String()),
		FilePath:      item.Get("file_path").String(),
		FileName:      item.Get("file_name").String(),
		Status:        normalizeStatus(item),
	}

	// Document-level extraction confidence: the explicit field wins over the
	// legacy ai_confidence one.
	cert.ExtractionConfidence = item.Get("extraction_confidence").Float()
	cert.AIConfidence = cert.ExtractionConfidence
	if cert.AIConfidence == 0 {
		cert.AIConfidence = item.Get("ai_confidence").Float()
	}

	if extracted := item.Get("extracted_data"); extracted.Exists() {
		cert.ExtractedData = json.RawMessage(extracted.Raw)
	}
	if createdAt := item.Get("created_at"); createdAt.Exists() {
		if ts, err := time.Parse(time.RFC3339, createdAt.String()); err == nil {
			cert.CreatedAt = ts
		}
	}
	return cert
}

func normalizeStatus(item gjson.Result) CertificateStatus {
	status := CertificateStatus(item.Get("validation_status").String())
	if !status.Known() {
		status = CertificateStatus(item.Get("status").String())
	}
	if !status.Known() {
		status = StatusPending
	}
	return status
}

// dateOnly trims RFC3339 timestamps down to the calendar date the forms use.
func dateOnly(s string) string {
	if i := strings.IndexByte(s, 'T'); i > 0 {
		return s[:i]
	}
	return s
}

type ConfidenceTier string

const (
	ConfidenceHigh     ConfidenceTier = "high"
	ConfidenceModerate ConfidenceTier = "moderate"
	ConfidenceLow      ConfidenceTier = "low"
)

// TierFor classifies a document-level extraction confidence score.
// Informational only: it never gates an action.
func TierFor(score float64) ConfidenceTier {
	switch {
	case score >= 0.9:
		return ConfidenceHigh
	case score >= 0.7:
		return ConfidenceModerate
	default:
		return ConfidenceLow
	}
}

func (t ConfidenceTier) Message() string {
	switch t {
	case ConfidenceHigh:
		return "Alta confiança - dados extraídos com precisão"
	case ConfidenceModerate:
		return "Confiança moderada - revise os campos antes de confirmar"
	default:
		return "Confiança baixa - verifique todos os campos cuidadosamente"
	}
}
