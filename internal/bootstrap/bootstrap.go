// Package bootstrap wires configuration, infrastructure and use cases into
// a runnable application.
package bootstrap

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/baremaai/companion/internal/adapters/cli"
	"github.com/baremaai/companion/internal/config"
	"github.com/baremaai/companion/internal/core/usecase"
	"github.com/baremaai/companion/internal/infrastructure/api"
	"github.com/baremaai/companion/internal/infrastructure/precheck"
	"github.com/baremaai/companion/internal/infrastructure/resilience"
	sessionfs "github.com/baremaai/companion/internal/infrastructure/session/localfs"
	"github.com/baremaai/companion/internal/observability/logging"
	"github.com/baremaai/companion/internal/observability/metrics"
)

type App struct {
	Config config.Config
	Logger *slog.Logger
	CLI    *cli.App

	metrics *metrics.ClientMetrics
}

func New(cfg config.Config) (*App, error) {
	logger := logging.NewLogger(os.Stderr, "barema", cfg.LogLevel, cfg.LogFormat)

	vault, err := sessionfs.New(cfg.SessionDir)
	if err != nil {
		return nil, fmt.Errorf("init session vault: %w", err)
	}

	clientMetrics := metrics.NewClientMetrics("barema")

	// Session and client reference each other: the client reads the token
	// from the session, and an unauthorized response resets the session.
	// The closures capture the session variable, which is assigned right
	// after the client is built and before any request can run.
	var session *usecase.SessionUseCase

	gateway := api.New(api.Options{
		BaseURL:        cfg.APIBaseURL,
		Timeout:        cfg.RequestTimeout,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		Token: func() string {
			if session == nil {
				return ""
			}
			return session.Token()
		},
		OnUnauthorized: func() {
			if session != nil {
				session.HandleUnauthorized()
			}
		},
		Policy:  resilience.DefaultPolicy(),
		Metrics: clientMetrics,
		Logger:  logger.With("service", "api"),
	})

	session = usecase.NewSessionUseCase(gateway, vault, logger.With("service", "session"))

	inspector := precheck.New(int64(cfg.PhotoMaxSizeMB) << 20)

	store := usecase.NewCurriculumStore(session, gateway, logger.With("service", "curriculum"))
	validation := usecase.NewValidationSession(gateway, logger.With("service", "validation"))
	validation.OnValidated = store.ApplyValidation
	browser := usecase.NewEdictBrowser(gateway, logger.With("service", "edicts"))

	certUploader := usecase.NewCertificateUploader(gateway, inspector, logger.With("service", "upload"))
	certUploader.OnFile = func(kind, outcome string) { clientMetrics.RecordUpload(kind, outcome) }
	edictUploader := usecase.NewEdictUploader(gateway, inspector, logger.With("service", "upload"))
	edictUploader.OnFile = func(kind, outcome string) { clientMetrics.RecordUpload(kind, outcome) }

	poller := usecase.NewBatchPoller(gateway, cfg.BatchPollInterval, logger.With("service", "poller"))
	poller.OnTick = func(outcome string) { clientMetrics.RecordPollTick(outcome) }

	app := &App{
		Config:  cfg,
		Logger:  logger,
		metrics: clientMetrics,
		CLI: &cli.App{
			Session:    session,
			Store:      store,
			Validation: validation,
			Edicts:     browser,
			CertUpload: certUploader,
			EdictsUp:   edictUploader,
			Poller:     poller,
			Inspector:  inspector,
			Stdin:      os.Stdin,
			Stdout:     os.Stdout,
			Stderr:     os.Stderr,
		},
	}
	return app, nil
}

// ServeMetrics exposes the Prometheus endpoint when a metrics port is
// configured. It blocks, so callers run it in a goroutine.
func (a *App) ServeMetrics() error {
	if a.Config.MetricsPort == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.metrics.Handler())
	a.Logger.Info("metrics_listening", "port", a.Config.MetricsPort)
	return http.ListenAndServe(":"+a.Config.MetricsPort, mux)
}
