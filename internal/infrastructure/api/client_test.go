package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/baremaai/companion/internal/core/domain"
	"github.com/baremaai/companion/internal/core/ports"
	"github.com/baremaai/companion/internal/infrastructure/resilience"
)

func newTestClient(t *testing.T, handler http.Handler, opts Options) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts.BaseURL = server.URL
	if opts.Timeout == 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.Policy.MaxAttempts == 0 {
		opts.Policy = resilience.Policy{
			MaxAttempts:    3,
			InitialBackoff: 1 * time.Millisecond,
			MaxBackoff:     2 * time.Millisecond,
			Multiplier:     2,
			BreakerEnabled: false,
		}
	}
	return New(opts), server
}

func TestBearerTokenInjection(t *testing.T) {
	var gotAuth string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"u1","email":"doc@example.com"}`))
	})

	client, _ := newTestClient(t, handler, Options{
		Token: func() string { return "tok-123" },
	})

	if _, err := client.GetProfile(context.Background()); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("expected bearer header, got %q", gotAuth)
	}
}

func TestNoAuthHeaderWhenUnauthenticated(t *testing.T) {
	var gotAuth string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok","user":{"id":"u1"}}`))
	})

	client, _ := newTestClient(t, handler, Options{
		Token: func() string { return "" },
	})

	if _, err := client.Login(context.Background(), domain.Credentials{Email: "a@b.c", Password: "x"}); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if gotAuth != "" {
		t.Fatalf("expected no auth header, got %q", gotAuth)
	}
}

func TestUnauthorizedTriggersHookOnAnyEndpoint(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Could not validate credentials"}`))
	})

	var hookCalls atomic.Int32
	client, _ := newTestClient(t, handler, Options{
		OnUnauthorized: func() { hookCalls.Add(1) },
	})

	_, err := client.MyEdicts(context.Background())
	if !domain.IsKind(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized kind, got %v", err)
	}
	if hookCalls.Load() != 1 {
		t.Fatalf("expected hook called once, got %d", hookCalls.Load())
	}
	if detail := Detail(err); detail != "Could not validate credentials" {
		t.Fatalf("expected server detail, got %q", detail)
	}
}

func TestSearchEdictsSendsOnlySetFilters(t *testing.T) {
	var gotQuery string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})

	client, _ := newTestClient(t, handler, Options{})

	_, err := client.SearchEdicts(context.Background(), domain.EdictFilters{
		Institution: "USP",
		Year:        2025,
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if !strings.Contains(gotQuery, "institution=USP") || !strings.Contains(gotQuery, "year=2025") {
		t.Fatalf("expected institution and year params, got %q", gotQuery)
	}
	for _, absent := range []string{"state=", "program=", "department="} {
		if strings.Contains(gotQuery, absent) {
			t.Fatalf("expected unset filter %q to be omitted, got %q", absent, gotQuery)
		}
	}
}

func TestListCertificatesNormalizesWrappedBody(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/certificates/" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"certificates":[{"id":"c1","validation_status":"validated","extraction_confidence":0.95}]}`))
	})

	client, _ := newTestClient(t, handler, Options{})

	certs, err := client.ListCertificates(context.Background(), ports.CertificateQuery{ForValidation: true})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if len(certs) != 1 {
		t.Fatalf("expected 1 certificate, got %d", len(certs))
	}
	if certs[0].Status != domain.StatusValidated {
		t.Fatalf("expected validated status, got %q", certs[0].Status)
	}
	if certs[0].AIConfidence != 0.95 {
		t.Fatalf("expected confidence 0.95, got %v", certs[0].AIConfidence)
	}
}

func TestIdempotentReadRetriesTransientFailure(t *testing.T) {
	var hits atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"batch_id":"b1","status":"processing","progress":10,"total_files":4}`))
	})

	client, _ := newTestClient(t, handler, Options{})

	status, err := client.BatchStatus(context.Background(), "b1")
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if hits.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", hits.Load())
	}
	if status.Status != domain.BatchProcessing {
		t.Fatalf("expected processing state, got %q", status.Status)
	}
}

func TestMutationIsNeverRetried(t *testing.T) {
	var hits atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	client, _ := newTestClient(t, handler, Options{})

	err := client.ValidateCertificate(context.Background(), "c1", domain.ActionApprove, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if hits.Load() != 1 {
		t.Fatalf("expected single attempt for mutation, got %d", hits.Load())
	}
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary kind, got %v", err)
	}
}

func TestValidateCertificateSendsActionAndUpdates(t *testing.T) {
	var gotMethod, gotPath, gotBody string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	})

	client, _ := newTestClient(t, handler, Options{})

	err := client.ValidateCertificate(context.Background(), "c1", domain.ActionEdit, map[string]any{"title": "Curso ACLS"})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if gotMethod != http.MethodPatch {
		t.Fatalf("expected PATCH, got %s", gotMethod)
	}
	if gotPath != "/certificates/validate/c1" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if !strings.Contains(gotBody, `"action":"edit"`) || !strings.Contains(gotBody, `"Curso ACLS"`) {
		t.Fatalf("unexpected body %q", gotBody)
	}
}

func TestDownloadWritesBodyAndChecksStatus(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/edicts/e1/download" {
			w.Header().Set("Content-Type", "application/pdf")
			_, _ = w.Write([]byte("%PDF-1.7 payload"))
			return
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"edict not found"}`))
	})

	client, _ := newTestClient(t, handler, Options{})

	var out strings.Builder
	if err := client.DownloadEdict(context.Background(), "e1", &out); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if out.String() != "%PDF-1.7 payload" {
		t.Fatalf("unexpected body %q", out.String())
	}

	var missing strings.Builder
	err := client.DownloadEdict(context.Background(), "missing", &missing)
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected not found kind, got %v", err)
	}
	if missing.Len() != 0 {
		t.Fatalf("expected no bytes written on failure, got %d", missing.Len())
	}
}

func TestUploadCertificateBatchRepeatsFilesField(t *testing.T) {
	var fileNames []string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		for _, header := range r.MultipartForm.File["files"] {
			fileNames = append(fileNames, header.Filename)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"batch_id":"b9","results":[{"file_name":"a.pdf","status":"queued"},{"file_name":"b.png","status":"queued"}]}`))
	})

	client, _ := newTestClient(t, handler, Options{})

	batch, err := client.UploadCertificateBatch(context.Background(), []ports.UploadFile{
		{Name: "a.pdf", Data: strings.NewReader("pdf-bytes")},
		{Name: "b.png", Data: strings.NewReader("png-bytes")},
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if batch.BatchID != "b9" {
		t.Fatalf("expected batch id b9, got %q", batch.BatchID)
	}
	if len(fileNames) != 2 || fileNames[0] != "a.pdf" || fileNames[1] != "b.png" {
		t.Fatalf("expected both files under one field, got %v", fileNames)
	}
}

func TestInvalidInputCarriesDetail(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":"CRM já cadastrado"}`))
	})

	client, _ := newTestClient(t, handler, Options{})

	_, err := client.Register(context.Background(), domain.Registration{Email: "a@b.c", Password: "x", FullName: "Dr A"})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input kind, got %v", err)
	}
	if Detail(err) != "CRM já cadastrado" {
		t.Fatalf("expected server detail, got %q", Detail(err))
	}
}

func TestContextCancellationStopsRetries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var hits atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		cancel()
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	client, _ := newTestClient(t, handler, Options{})

	_, err := client.BatchStatus(ctx, "b1")
	if err == nil {
		t.Fatal("expected error")
	}
	if hits.Load() != 1 {
		t.Fatalf("expected no retry after cancel, got %d attempts", hits.Load())
	}
	if errors.Is(err, context.Canceled) {
		// acceptable shape when the cancellation surfaces directly
		return
	}
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary or canceled error, got %v", err)
	}
}
