// Package api serves the sync engine over HTTP for local frontends.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrijs2005/brightstudy/internal/logging"
)

type RouterConfig struct {
	SyncHandler  *SyncHandler
	Secret       []byte
	AllowOrigins []string
	Log          logging.Logger
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Log != nil {
		r.Use(RequestLogger(cfg.Log))
	}
	r.Use(Metrics())
	r.Use(CORS(cfg.AllowOrigins))

	r.GET("/health", Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := cfg.SyncHandler
	if h == nil {
		return r
	}

	api := r.Group("/api")
	{
		api.GET("/preview", h.Preview)
		api.GET("/installed", h.Installed)
		api.GET("/lessons", h.Lessons)
	}

	protected := api.Group("/")
	protected.Use(RequireToken(cfg.Secret))
	{
		protected.POST("/apply", h.Apply)
		protected.POST("/install/:kind/:id", h.Install)
		protected.POST("/lessons/:id/adapt", h.Adapt)
	}

	return r
}

type Server struct {
	Engine *gin.Engine
	Log    logging.Logger
}

func NewServer(cfg RouterConfig) *Server {
	return &Server{Engine: NewRouter(cfg), Log: cfg.Log}
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if s.Log != nil {
			s.Log.Info(ctx, "api listening", "addr", addr)
		}
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
