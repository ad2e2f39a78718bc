// Package server exposes the graph over HTTP: question answering with
// freshness-aware auto refresh, manual refresh, and a health probe.
package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pulsegraph/pulsegraph/internal/freshness"
	"github.com/pulsegraph/pulsegraph/internal/graph"
	"github.com/pulsegraph/pulsegraph/internal/logger"
	"github.com/pulsegraph/pulsegraph/internal/model"
	"github.com/pulsegraph/pulsegraph/internal/refresh"
)

// Server holds the wired dependencies behind the HTTP handlers.
type Server struct {
	store        graph.Store
	orchestrator *refresh.Orchestrator
	evaluator    *freshness.Evaluator
	cfg          model.ServerConfig
	window       string
	log          *logger.Logger
	engine       *gin.Engine
}

// New builds the server and its routes.
func New(
	store graph.Store,
	orchestrator *refresh.Orchestrator,
	evaluator *freshness.Evaluator,
	cfg model.ServerConfig,
	window string,
	log *logger.Logger,
) *Server {
	if log == nil {
		log = logger.Nop()
	}
	if strings.EqualFold(cfg.Mode, "prod") || strings.EqualFold(cfg.Mode, "production") {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		store:        store,
		orchestrator: orchestrator,
		evaluator:    evaluator,
		cfg:          cfg,
		window:       window,
		log:          log.With("component", "server"),
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.GET("/healthz", s.handleHealth)
	engine.POST("/ask", s.handleAsk)
	engine.POST("/refresh", s.handleRefresh)
	s.engine = engine
	return s
}

// Router exposes the engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.engine
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		err := <-errCh
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
