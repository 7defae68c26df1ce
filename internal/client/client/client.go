package client

import (
	"context"

	"github.com/dmitrijs2005/brightstudy/internal/client/models"
)

// Client is the read-only view of the remote content catalog.
type Client interface {
	Close() error
	Ping(ctx context.Context) error
	// ListInventory returns (id, version) pairs for one kind. An error means
	// "no information" and must never be read as an empty catalog.
	ListInventory(ctx context.Context, kind models.Kind) ([]models.InventoryItem, error)
	// FetchPayload returns the full document for one item. known is the
	// locally installed version, if any, and is passed to the remote as a hint.
	FetchPayload(ctx context.Context, kind models.Kind, id string, known *int64) (*models.Document, error)
}
