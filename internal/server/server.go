// Package server exposes clause extraction and highlighting over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ppiankov/clausescope/internal/logging"
	"github.com/ppiankov/clausescope/internal/model"
	"github.com/ppiankov/clausescope/internal/worker"
)

const shutdownTimeout = 10 * time.Second

// Analyzer is the analysis surface the API serves
type Analyzer interface {
	ExtractClauses(ctx context.Context, text string) (*model.Analysis, error)
	Highlight(ctx context.Context, text string) (*model.Highlight, error)
	ParserName() string
	Strategy() string
}

// Server is the HTTP API
type Server struct {
	router   *gin.Engine
	server   *http.Server
	analyzer Analyzer
	metrics  *Metrics
	logger   logging.Logger
	config   model.ServerConfig
	started  time.Time
	version  string
}

// New builds the API server and its routes
func New(cfg model.ServerConfig, analyzer Analyzer, log logging.Logger, version string) *Server {
	if log == nil {
		log = logging.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		router:   gin.New(),
		analyzer: analyzer,
		metrics:  NewMetrics(),
		logger:   log,
		config:   cfg,
		started:  time.Now(),
		version:  version,
	}

	s.router.Use(RecoveryMiddleware(log))
	s.router.Use(RequestIDMiddleware())
	s.router.Use(LoggerMiddleware(log, s.metrics))
	s.routes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

func (s *Server) routes() {
	s.router.GET("/health", s.health)
	s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	v1 := s.router.Group("/api/v1")
	if s.config.RateLimit > 0 {
		v1.Use(RateLimitMiddleware(worker.NewLimiter(s.config.RateLimit, s.config.RateBurst), s.metrics))
	}
	v1.POST("/analyze", s.analyze)
	v1.POST("/highlight", s.highlight)
}

// Router returns the gin engine
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start serves until ctx is canceled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server",
		logging.String("address", s.server.Addr),
		logging.String("parser", s.analyzer.ParserName()),
		logging.String("strategy", s.analyzer.Strategy()),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
