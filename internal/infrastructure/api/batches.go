package api

import (
	"context"

	"github.com/baremaai/companion/internal/core/domain"
)

func (c *Client) BatchStatus(ctx context.Context, id string) (*domain.BatchStatus, error) {
	var status domain.BatchStatus
	if err := c.getJSON(ctx, "batches.status", pathID("/batches/%s/status", id), nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}
