package services

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/brightstudy/internal/client/models"
	"github.com/dmitrijs2005/brightstudy/internal/common"
	"github.com/dmitrijs2005/brightstudy/internal/logging"
)

// Applier is the part of SyncService the scheduler drives.
type Applier interface {
	Apply(ctx context.Context) (*models.Summary, error)
}

// Scheduler triggers Apply on a fixed interval. A tick that finds a run in
// progress is dropped, never queued.
type Scheduler struct {
	Sync       Applier
	Interval   time.Duration
	RunAtStart bool
	Log        logging.Logger
}

// Run blocks until ctx is cancelled. A non-positive Interval disables the
// scheduler and Run returns immediately.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.Interval <= 0 {
		s.Log.Info(ctx, "scheduled sync disabled")
		return nil
	}

	if s.RunAtStart {
		s.tick(ctx)
	}

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.tick(ctx)
		case <-ctx.Done():
			return nil
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	summary, err := s.Sync.Apply(ctx)
	switch {
	case errors.Is(err, common.ErrSyncInProgress):
		s.Log.Debug(ctx, "scheduled sync skipped, a run is already in progress")
	case errors.Is(err, context.Canceled):
	case err != nil:
		s.Log.Warn(ctx, "scheduled sync failed", "error", err)
	default:
		s.Log.Info(ctx, "scheduled sync done",
			"run_id", summary.RunID,
			"new", summary.New,
			"updated", summary.Updated,
			"failed", summary.Failed)
	}
}
