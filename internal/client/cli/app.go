package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/brightstudy/internal/client/assets"
	"github.com/dmitrijs2005/brightstudy/internal/client/client"
	"github.com/dmitrijs2005/brightstudy/internal/client/config"
	"github.com/dmitrijs2005/brightstudy/internal/client/library"
	"github.com/dmitrijs2005/brightstudy/internal/client/repositories/installed"
	"github.com/dmitrijs2005/brightstudy/internal/client/services"
	"github.com/dmitrijs2005/brightstudy/internal/client/tutor"
	"github.com/dmitrijs2005/brightstudy/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	cfg     *config.Config
	log     logging.Logger
	db      *sql.DB
	remote  client.Client
	lib     *library.Library
	sync    services.SyncService
	adapter *services.Adapter
	Mode    Mode

	out    io.Writer
	reader *bufio.Reader
	asJSON bool
}

// NewApp opens the database and builds the sync engine from cfg. Close
// releases what it opened.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	kinds, err := cfg.ContentKinds()
	if err != nil {
		return nil, err
	}

	lib := library.New(cfg.DataDir)
	if err := lib.Init(); err != nil {
		return nil, fmt.Errorf("init content dir: %w", err)
	}

	db, err := client.InitDatabase(ctx, cfg.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "path", cfg.DatabasePath, "error", err)
		return nil, err
	}

	app := &App{
		cfg:    cfg,
		log:    log,
		db:     db,
		lib:    lib,
		Mode:   ModeOffline,
		out:    os.Stdout,
		reader: bufio.NewReader(os.Stdin),
	}

	app.remote = client.Offline{}
	if cfg.RemoteConfigured() {
		hc, err := client.NewHTTPClient(client.Options{
			BaseURL: cfg.RemoteURL,
			APIKey:  cfg.RemoteKey,
			Timeout: cfg.RequestTimeout,
		})
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		app.remote = hc
		app.Mode = ModeOnline
	}

	fetcher, err := newFetcher(ctx, cfg)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	dl := assets.NewDownloader(lib, fetcher, cfg.AssetTimeout, log)

	store := installed.NewSQLiteRepository(db)
	app.sync = services.NewSyncService(app.remote, store, lib, dl, log, kinds)

	app.adapter = &services.Adapter{Sync: app.sync, Lib: lib, Log: log}
	gen, err := tutor.NewGenerator(tutor.Options{
		BaseURL:  cfg.AIBaseURL,
		APIKey:   cfg.AIKey,
		Model:    cfg.AIModel,
		AppTitle: "brightstudy",
	})
	switch {
	case errors.Is(err, tutor.ErrNotConfigured):
		log.Debug(ctx, "lesson generation disabled, no AI key")
	case err != nil:
		_ = db.Close()
		return nil, err
	default:
		app.adapter.Gen = gen
	}

	return app, nil
}

func newFetcher(ctx context.Context, cfg *config.Config) (assets.Fetcher, error) {
	h := assets.NewHTTPFetcher(cfg.AssetTimeout)
	if cfg.S3Endpoint == "" && cfg.S3AccessKey == "" {
		return assets.NewMultiFetcher(h, nil), nil
	}
	s3f, err := assets.NewS3Fetcher(ctx, assets.S3Options{
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
	})
	if err != nil {
		return nil, fmt.Errorf("s3 fetcher: %w", err)
	}
	return assets.NewMultiFetcher(h, s3f), nil
}

func (a *App) Close() error {
	var errs []error
	if a.remote != nil {
		errs = append(errs, a.remote.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}

func (a *App) setMode(mode Mode) {
	if a.Mode != mode {
		a.Mode = mode
		a.log.Info(context.Background(), "connectivity changed", "mode", mode)
	}
}

// checkOnline pings the remote and updates Mode.
func (a *App) checkOnline(ctx context.Context) {
	if !a.cfg.RemoteConfigured() {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, a.cfg.RequestTimeout)
	defer cancel()
	if err := a.remote.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}
