// Package server exposes the reminder run trigger and the read-side
// occurrence API over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hray3182/datekeeper/internal/logging"
	"github.com/hray3182/datekeeper/internal/models"
	"github.com/hray3182/datekeeper/internal/pipeline"
)

type Runner interface {
	Run(ctx context.Context) (*pipeline.Summary, error)
}

// Directory is the read side the occurrence API needs.
type Directory interface {
	UserByID(ctx context.Context, userID string) (*models.User, error)
	EventsByOwner(ctx context.Context, userID string) ([]*models.Event, error)
}

type Config struct {
	Addr       string
	CronSecret string
	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
	// Debug keeps gin's debug mode and route dump.
	Debug bool
}

type Server struct {
	runner     Runner
	dir        Directory
	secret     string
	logger     *slog.Logger
	now        func() time.Time
	engine     *gin.Engine
	httpServer *http.Server
}

func New(cfg Config, runner Runner, dir Directory, logger *slog.Logger) *Server {
	s := &Server{
		runner: runner,
		dir:    dir,
		secret: cfg.CronSecret,
		logger: logging.OrDiscard(logger).With("component", "http"),
		now:    time.Now,
	}

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery(), s.requestLogger())

	engine.GET("/health", s.handleHealth)
	if cfg.Metrics != nil {
		engine.GET("/metrics", gin.WrapH(cfg.Metrics))
	}

	api := engine.Group("/api", s.requireBearer())
	api.GET("/cron/reminders", s.handleRunReminders)
	api.POST("/cron/reminders", s.handleRunReminders)
	api.GET("/users/:id/occurrences", s.handleOccurrences)

	s.engine = engine
	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	s.logger.Info("http server stopped")
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
