package ports

import (
	"context"
	"io"

	"github.com/baremaai/companion/internal/core/domain"
)

// AccountAPI covers registration, login and profile maintenance.
type AccountAPI interface {
	Register(ctx context.Context, reg domain.Registration) (*domain.User, error)
	Login(ctx context.Context, creds domain.Credentials) (*domain.AuthGrant, error)
	GetProfile(ctx context.Context) (*domain.User, error)
	UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.User, error)
	IdentificationCheck(ctx context.Context) (*domain.IdentificationCheck, error)
	UploadProfilePhoto(ctx context.Context, filename string, data io.Reader) (string, error)
}

// CertificateQuery narrows a certificate listing.
type CertificateQuery struct {
	UserID        string
	ForValidation bool
	Limit         int
}

// UploadFile is one member of a multipart batch.
type UploadFile struct {
	Name string
	Data io.Reader
}

// CertificateAPI reads and mutates certificate state on the backend.
type CertificateAPI interface {
	ListCertificates(ctx context.Context, query CertificateQuery) ([]domain.Certificate, error)
	CertificateForValidation(ctx context.Context, id string) (*domain.Certificate, error)
	CertificatePreview(ctx context.Context, id string) (string, error)
	UploadCertificateBatch(ctx context.Context, files []UploadFile) (*domain.BatchUpload, error)
	ValidateCertificate(ctx context.Context, id string, action domain.ValidationAction, updates map[string]any) error
	DeleteCertificate(ctx context.Context, id string) error
}

// BatchAPI exposes the polled status endpoint of an upload batch.
type BatchAPI interface {
	BatchStatus(ctx context.Context, id string) (*domain.BatchStatus, error)
}

// EdictAPI browses rubrics and requests curriculum projections.
type EdictAPI interface {
	MyEdicts(ctx context.Context) ([]domain.Edict, error)
	SearchEdicts(ctx context.Context, filters domain.EdictFilters) ([]domain.Edict, error)
	GetEdict(ctx context.Context, id string) (*domain.Edict, error)
	UploadEdict(ctx context.Context, filename string, data io.Reader) (*domain.ParsedEdictSummary, error)
	DownloadEdict(ctx context.Context, id string, out io.Writer) error
	CurriculumPreview(ctx context.Context, edictID string) (*domain.CurriculumPreview, error)
	CurriculumPDF(ctx context.Context, edictID string, out io.Writer) error
	CurriculumXML(ctx context.Context, edictID string, out io.Writer) error
}

// DocumentPrecheck validates a file locally before it is offered to the
// backend, so obviously broken uploads fail without a network round trip.
type DocumentPrecheck interface {
	CheckPDF(filename string, data []byte) error
	DetectKind(filename string, data []byte) (string, error)
}

// SessionVault persists the auth token and the last-known user snapshot,
// the only client-side state that survives restarts.
type SessionVault interface {
	Load() (token string, user *domain.User, err error)
	Save(token string, user *domain.User) error
	Clear() error
}
