package client

import (
	"context"

	"github.com/dmitrijs2005/brightstudy/internal/client/models"
)

// Offline stands in for the remote when no URL is configured. Local commands
// keep working; anything that needs the catalog fails with ErrUnavailable.
type Offline struct{}

var _ Client = Offline{}

func (Offline) Close() error { return nil }

func (Offline) Ping(context.Context) error { return ErrUnavailable }

func (Offline) ListInventory(context.Context, models.Kind) ([]models.InventoryItem, error) {
	return nil, ErrUnavailable
}

func (Offline) FetchPayload(context.Context, models.Kind, string, *int64) (*models.Document, error) {
	return nil, ErrUnavailable
}
