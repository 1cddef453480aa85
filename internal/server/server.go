// Package server exposes the dashboard over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"

	"github.com/Veraticus/leadflow/internal/engine"
)

// Reloader runs a fresh pipeline pass.
type Reloader func(ctx context.Context) (*engine.Session, error)

// Config configures the API server.
type Config struct {
	Addr string
	// Refresh is a cron spec for scheduled reloads; empty disables them.
	Refresh string
	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration
}

// Server serves one session at a time and swaps it on reload.
type Server struct {
	logger  *slog.Logger
	reload  Reloader
	clock   func() time.Time
	onLoad  func(*engine.Session)
	router  *gin.Engine
	current holder
	config  Config
	// reloadMu serializes reloads so scheduled and manual runs never overlap.
	reloadMu sync.Mutex
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time used to decide future closings.
func WithClock(clock func() time.Time) Option {
	return func(s *Server) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithSessionHook registers fn to run after every successful load.
func WithSessionHook(fn func(*engine.Session)) Option {
	return func(s *Server) {
		s.onLoad = fn
	}
}

// New creates a server. reload may be nil, which disables reloads.
func New(config Config, reload Reloader, opts ...Option) *Server {
	if config.Addr == "" {
		config.Addr = "127.0.0.1:8080"
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = 10 * time.Second
	}

	s := &Server{
		config: config,
		reload: reload,
		logger: slog.Default(),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// SetSession replaces the served session.
func (s *Server) SetSession(session *engine.Session) {
	s.current.set(session)
	if session != nil && s.onLoad != nil {
		s.onLoad(session)
	}
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Reload runs the pipeline and swaps in the new session. On failure the
// previous session keeps serving.
func (s *Server) Reload(ctx context.Context) (*engine.Session, error) {
	if s.reload == nil {
		return nil, errors.New("reload is not configured")
	}

	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	start := time.Now()
	session, err := s.reload(ctx)
	if err != nil {
		s.logger.Error("reload failed", "error", err)
		return nil, err
	}
	s.SetSession(session)
	s.logger.Info("session reloaded",
		"run_id", session.RunID,
		"records", len(session.Records),
		"duration", time.Since(start))
	return session, nil
}

// ListenAndServe serves until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	scheduler, err := s.schedule(ctx)
	if err != nil {
		return err
	}
	if scheduler != nil {
		scheduler.Start()
		defer func() { <-scheduler.Stop().Done() }()
	}

	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api listening", "addr", s.config.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("api stopped")
	return nil
}

// schedule builds the refresh scheduler, or nil when refresh is off.
func (s *Server) schedule(ctx context.Context) (*cron.Cron, error) {
	if s.config.Refresh == "" || s.reload == nil {
		return nil, nil
	}

	c := cron.New()
	_, err := c.AddFunc(s.config.Refresh, func() {
		if _, err := s.Reload(ctx); err != nil {
			s.logger.Warn("scheduled reload failed, keeping previous data", "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", s.config.Refresh, err)
	}
	s.logger.Info("scheduled reloads enabled", "schedule", s.config.Refresh)
	return c, nil
}
