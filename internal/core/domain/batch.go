package domain

import "time"

type BatchState string

const (
	BatchPending    BatchState = "pending"
	BatchProcessing BatchState = "processing"
	BatchCompleted  BatchState = "completed"
	BatchFailed     BatchState = "failed"
)

// BatchStatus is the ephemeral progress record of an upload batch. It exists
// only for the duration of a polled operation and is never persisted locally.
type BatchStatus struct {
	ID           string     `json:"id"`
	Status       BatchState `json:"status"`
	Progress     float64    `json:"progress"`
	Total        int        `json:"total"`
	Processed    int        `json:"processed"`
	Successful   int        `json:"successful"`
	Failed       int        `json:"failed"`
	CreatedAt    time.Time  `json:"created_at"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
}

// Terminal reports whether polling should stop.
func (b BatchStatus) Terminal() bool {
	return b.Status == BatchCompleted || b.Status == BatchFailed
}

// BatchUpload is the immediate response of a multipart batch submission.
type BatchUpload struct {
	BatchID string          `json:"batch_id"`
	Results []UploadOutcome `json:"results"`
}

// UploadOutcome is the per-file acceptance record inside a batch response.
type UploadOutcome struct {
	DocumentID string `json:"document_id"`
	FileName   string `json:"file_name,omitempty"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
}
