package cli

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/brightstudy/internal/client/api"
	"github.com/dmitrijs2005/brightstudy/internal/client/services"
)

// Serve runs the HTTP API and, when sync_interval is set, the background
// scheduler until ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	if !strings.EqualFold(a.cfg.LogLevel, "debug") {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := api.NewServer(api.RouterConfig{
		SyncHandler: api.NewSyncHandler(a.sync, a.adapter),
		Secret:      []byte(a.cfg.APISecret),
		Log:         a.log,
	})
	sched := &services.Scheduler{
		Sync:       a.sync,
		Interval:   a.cfg.SyncInterval,
		RunAtStart: true,
		Log:        a.log,
	}

	if a.cfg.APISecret == "" {
		a.log.Warn(ctx, "api_secret is empty, mutating routes are unauthenticated")
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(ctx, a.cfg.ListenAddr) })
	g.Go(func() error { return sched.Run(ctx) })
	return g.Wait()
}
