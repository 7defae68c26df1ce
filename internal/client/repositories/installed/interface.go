package installed

import (
	"context"

	"github.com/dmitrijs2005/brightstudy/internal/client/models"
)

// Repository is the durable record of install state.
type Repository interface {
	// GetVersion returns the installed version of (id, kind). found is false
	// when nothing is installed.
	GetVersion(ctx context.Context, id string, kind models.Kind) (version int64, found bool, err error)

	// SetVersion upserts the installed version; last writer wins.
	SetVersion(ctx context.Context, id string, kind models.Kind, version int64) error

	// All lists every installed record ordered by kind and id.
	All(ctx context.Context) ([]*models.InstalledRecord, error)

	// Delete removes the record. Only maintenance commands call it.
	Delete(ctx context.Context, id string, kind models.Kind) error
}
