package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/baremaai/companion/internal/core/domain"
	"github.com/baremaai/companion/internal/core/ports"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeAccountAPI struct {
	registerErr error
	loginErr    error
	grant       domain.AuthGrant
	profile     domain.User
	updated     *domain.ProfileUpdate
	check       domain.IdentificationCheck

	registerCalls int
	loginCalls    int
}

func (f *fakeAccountAPI) Register(context.Context, domain.Registration) (*domain.User, error) {
	f.registerCalls++
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	user := f.grant.User
	return &user, nil
}

func (f *fakeAccountAPI) Login(context.Context, domain.Credentials) (*domain.AuthGrant, error) {
	f.loginCalls++
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	grant := f.grant
	return &grant, nil
}

func (f *fakeAccountAPI) GetProfile(context.Context) (*domain.User, error) {
	user := f.profile
	return &user, nil
}

func (f *fakeAccountAPI) UpdateProfile(_ context.Context, update domain.ProfileUpdate) (*domain.User, error) {
	f.updated = &update
	user := f.profile
	return &user, nil
}

func (f *fakeAccountAPI) IdentificationCheck(context.Context) (*domain.IdentificationCheck, error) {
	check := f.check
	return &check, nil
}

func (f *fakeAccountAPI) UploadProfilePhoto(context.Context, string, io.Reader) (string, error) {
	return "https://cdn.example.com/photo.jpg", nil
}

type fakeVault struct {
	mu    sync.Mutex
	token string
	user  *domain.User

	saveCalls  int
	clearCalls int
}

func (f *fakeVault) Load() (string, *domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token, f.user, nil
}

func (f *fakeVault) Save(token string, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saveCalls++
	f.token = token
	f.user = user
	return nil
}

func (f *fakeVault) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clearCalls++
	f.token = ""
	f.user = nil
	return nil
}

type validateCall struct {
	ID      string
	Action  domain.ValidationAction
	Updates map[string]any
}

type fakeCertificateAPI struct {
	mu sync.Mutex

	listed       []domain.Certificate
	listErr      error
	listQueries  []ports.CertificateQuery
	validateErr  error
	validates    []validateCall
	deleteErr    error
	deleted      []string
	previewURL   string
	previewErr   error
	batch        domain.BatchUpload
	batchErr     error
	batchUploads [][]string
}

func (f *fakeCertificateAPI) ListCertificates(_ context.Context, query ports.CertificateQuery) ([]domain.Certificate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listQueries = append(f.listQueries, query)
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]domain.Certificate, len(f.listed))
	copy(out, f.listed)
	return out, nil
}

func (f *fakeCertificateAPI) CertificateForValidation(_ context.Context, id string) (*domain.Certificate, error) {
	for _, cert := range f.listed {
		if cert.ID == id {
			c := cert
			return &c, nil
		}
	}
	return nil, domain.WrapError(domain.ErrNotFound, "certificate", fmt.Errorf("no certificate %s", id))
}

func (f *fakeCertificateAPI) CertificatePreview(context.Context, string) (string, error) {
	if f.previewErr != nil {
		return "", f.previewErr
	}
	return f.previewURL, nil
}

func (f *fakeCertificateAPI) UploadCertificateBatch(_ context.Context, files []ports.UploadFile) (*domain.BatchUpload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(files))
	for _, file := range files {
		names = append(names, file.Name)
	}
	f.batchUploads = append(f.batchUploads, names)
	if f.batchErr != nil {
		return nil, f.batchErr
	}
	batch := f.batch
	return &batch, nil
}

func (f *fakeCertificateAPI) ValidateCertificate(_ context.Context, id string, action domain.ValidationAction, updates map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.validateErr != nil {
		return f.validateErr
	}
	f.validates = append(f.validates, validateCall{ID: id, Action: action, Updates: updates})
	return nil
}

func (f *fakeCertificateAPI) DeleteCertificate(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeBatchAPI struct {
	mu       sync.Mutex
	statuses []domain.BatchStatus
	errs     []error
	calls    int
}

func (f *fakeBatchAPI) BatchStatus(context.Context, string) (*domain.BatchStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i >= len(f.statuses) {
		i = len(f.statuses) - 1
	}
	status := f.statuses[i]
	return &status, nil
}

type fakeEdictAPI struct {
	mine         []domain.Edict
	searchResult []domain.Edict
	searchErr    error
	searches     []domain.EdictFilters
	edict        *domain.Edict
	preview      domain.CurriculumPreview
	previewCalls int
	summary      domain.ParsedEdictSummary
	uploadErr    error
	pdfBody      string
	xmlBody      string
	downloadErr  error
}

func (f *fakeEdictAPI) MyEdicts(context.Context) ([]domain.Edict, error) {
	return f.mine, nil
}

func (f *fakeEdictAPI) SearchEdicts(_ context.Context, filters domain.EdictFilters) ([]domain.Edict, error) {
	f.searches = append(f.searches, filters)
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.searchResult, nil
}

func (f *fakeEdictAPI) GetEdict(_ context.Context, id string) (*domain.Edict, error) {
	if f.edict == nil {
		return nil, domain.WrapError(domain.ErrNotFound, "edict", fmt.Errorf("no edict %s", id))
	}
	edict := *f.edict
	return &edict, nil
}

func (f *fakeEdictAPI) UploadEdict(context.Context, string, io.Reader) (*domain.ParsedEdictSummary, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	summary := f.summary
	return &summary, nil
}

func (f *fakeEdictAPI) DownloadEdict(_ context.Context, _ string, out io.Writer) error {
	if f.downloadErr != nil {
		return f.downloadErr
	}
	_, err := io.Copy(out, strings.NewReader(f.pdfBody))
	return err
}

func (f *fakeEdictAPI) CurriculumPreview(_ context.Context, edictID string) (*domain.CurriculumPreview, error) {
	f.previewCalls++
	preview := f.preview
	preview.EdictID = edictID
	return &preview, nil
}

func (f *fakeEdictAPI) CurriculumPDF(_ context.Context, _ string, out io.Writer) error {
	_, err := io.Copy(out, strings.NewReader(f.pdfBody))
	return err
}

func (f *fakeEdictAPI) CurriculumXML(_ context.Context, _ string, out io.Writer) error {
	_, err := io.Copy(out, strings.NewReader(f.xmlBody))
	return err
}

type fakePrecheck struct {
	pdfErr  error
	kind    string
	kindErr error
}

func (f *fakePrecheck) CheckPDF(string, []byte) error {
	return f.pdfErr
}

func (f *fakePrecheck) DetectKind(string, []byte) (string, error) {
	if f.kindErr != nil {
		return "", f.kindErr
	}
	if f.kind == "" {
		return "pdf", nil
	}
	return f.kind, nil
}
