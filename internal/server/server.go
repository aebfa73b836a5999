// Package server exposes the sort and clean pipelines over HTTP. Sorted
// batches are kept in an in-memory store under opaque ids so any artifact can
// be cleaned later without re-uploading the input.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/btraven00/linksift/internal/batch"
	"github.com/btraven00/linksift/internal/config"
	"github.com/btraven00/linksift/internal/engine"
	"github.com/btraven00/linksift/internal/logger"
	"github.com/btraven00/linksift/internal/metrics"
)

const (
	shutdownTimeout = 10 * time.Second
	idleTimeout     = 60 * time.Second
	// maxUploadBytes limits the size of a raw text upload.
	maxUploadBytes = 10 << 20
)

// Pipeline is the part of the engine the API drives.
type Pipeline interface {
	SortText(data []byte) *batch.LinkBatch
	CleanCategory(ctx context.Context, b *batch.LinkBatch, name string) (*engine.CleanResult, error)
	Estimate(count int) time.Duration
}

// Server is the HTTP API with lifecycle management.
type Server struct {
	router   *gin.Engine
	server   *http.Server
	pipeline Pipeline
	store    *batch.Store
	metrics  *metrics.Metrics
	log      logger.Logger
	ttl      time.Duration
}

// New creates the server and registers its routes. m may be nil, in which
// case /metrics is not served and requests are not measured.
func New(cfg config.ServerConfig, ttl time.Duration, p Pipeline, m *metrics.Metrics, log logger.Logger) *Server {
	if log == nil {
		log = logger.NewNop()
	}

	s := &Server{
		router:   gin.New(),
		pipeline: p,
		store:    batch.NewStore(ttl),
		metrics:  m,
		log:      log,
		ttl:      ttl,
	}

	// Recovery first to catch panics
	s.router.Use(gin.Recovery())
	s.router.Use(requestIDMiddleware())
	s.router.Use(loggerMiddleware(log))
	if m != nil {
		s.router.Use(metricsMiddleware(m))
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  idleTimeout,
	}

	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.health)
	if s.metrics != nil {
		s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	v1 := s.router.Group("/api/v1")
	v1.POST("/batches", s.createBatch)
	v1.GET("/batches/:id", s.getBatch)
	v1.DELETE("/batches/:id", s.deleteBatch)
	v1.GET("/batches/:id/artifacts/:category", s.getArtifact)
	v1.POST("/batches/:id/clean/:category", s.cleanArtifact)
}

// Handler returns the HTTP handler serving the API.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Store returns the batch store.
func (s *Server) Store() *batch.Store {
	return s.store
}

// Run serves until ctx is cancelled, then shuts down gracefully. Expired
// batches are swept in the background while the server runs.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.log.Info("Starting HTTP server",
			logger.String("address", s.server.Addr),
			logger.Duration("read_timeout", s.server.ReadTimeout),
			logger.Duration("write_timeout", s.server.WriteTimeout),
		)

		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
		}
		close(errCh)
	}()

	if s.ttl > 0 {
		go s.sweep(ctx)
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("Shutting down HTTP server", logger.Duration("timeout", shutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	s.log.Info("HTTP server stopped gracefully")

	return <-errCh
}

func (s *Server) sweep(ctx context.Context) {
	ticker := time.NewTicker(max(s.ttl/2, time.Second))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.store.Sweep(); n > 0 {
				s.log.Debug("expired batches removed", logger.Int("count", n))
			}
		}
	}
}
