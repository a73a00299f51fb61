package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/baremaai/companion/internal/core/domain"
	"github.com/baremaai/companion/internal/core/ports"
)

// BatchPoller watches an upload batch until it reaches a terminal state.
// A failed status request is treated as a transient tick: polling keeps
// going at the same cadence instead of aborting a batch the server is
// still working on.
type BatchPoller struct {
	batches  ports.BatchAPI
	interval time.Duration
	logger   *slog.Logger

	// OnTick receives "ok", "transient_error" or "terminal" per poll.
	OnTick func(outcome string)
}

func NewBatchPoller(batches ports.BatchAPI, interval time.Duration, logger *slog.Logger) *BatchPoller {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &BatchPoller{
		batches:  batches,
		interval: interval,
		logger:   logger,
	}
}

// Wait polls until the batch completes or fails, invoking onUpdate with
// every successfully fetched status. The returned status is the terminal
// one; cancellation of ctx ends the wait with the context's error.
func (p *BatchPoller) Wait(ctx context.Context, batchID string, onUpdate func(domain.BatchStatus)) (*domain.BatchStatus, error) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		status, err := p.batches.BatchStatus(ctx, batchID)
		switch {
		case err != nil && ctx.Err() != nil:
			return nil, ctx.Err()
		case err != nil:
			p.notify("transient_error")
			p.logger.Warn("batch_poll_failed", "batch_id", batchID, "error", err)
		default:
			if onUpdate != nil {
				onUpdate(*status)
			}
			if status.Terminal() {
				p.notify("terminal")
				p.logger.Info("batch_finished", "batch_id", batchID, "status", string(status.Status),
					"successful", status.Successful, "failed", status.Failed)
				return status, nil
			}
			p.notify("ok")
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// WaitAndFinalize runs Wait and, on a terminal status, flips the uploader's
// processing items to completed. The finalize step happens exactly once.
func (p *BatchPoller) WaitAndFinalize(ctx context.Context, batchID string, uploader *CertificateUploader, onUpdate func(domain.BatchStatus)) (*domain.BatchStatus, error) {
	status, err := p.Wait(ctx, batchID, onUpdate)
	if err != nil {
		return nil, fmt.Errorf("wait for batch: %w", err)
	}
	if uploader != nil {
		uploader.MarkCompleted()
	}
	return status, nil
}

func (p *BatchPoller) notify(outcome string) {
	if p.OnTick != nil {
		p.OnTick(outcome)
	}
}
