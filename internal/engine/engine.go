// Package engine runs the reporting pipeline: load the exports, blend them
// and hold the result as a Session that answers filter queries.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/leadflow/internal/blend"
	"github.com/Veraticus/leadflow/internal/ingest"
)

// Config holds configuration options for the pipeline.
type Config struct {
	Paths ingest.Paths
	// BrokerName is stamped on closed Market VIP referrals.
	BrokerName string
	// OnLoaded is forwarded to ingest.Load.
	OnLoaded func(kind ingest.Kind, rows int)
}

// Engine runs pipeline passes.
type Engine struct {
	config Config
	logger *slog.Logger
	clock  func() time.Time
}

// Option customizes an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock overrides the time source used to stamp sessions.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// New creates a new pipeline engine.
func New(config Config, opts ...Option) *Engine {
	e := &Engine{
		config: config,
		logger: slog.Default(),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Paths returns the configured export paths.
func (e *Engine) Paths() ingest.Paths {
	return e.config.Paths
}

// Run loads and blends the exports. It either returns a complete session
// or an error; nothing partial is ever returned.
func (e *Engine) Run(ctx context.Context) (*Session, error) {
	runID := uuid.NewString()
	logger := e.logger.With("run_id", runID)
	started := e.clock()

	logger.Info("starting pipeline run", "exports", e.config.Paths.Count())

	data, err := ingest.Load(ctx, e.config.Paths, ingest.Options{
		Logger:   logger,
		OnLoaded: e.config.OnLoaded,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load exports: %w", err)
	}

	session := e.blend(runID, logger, data)
	logger.Info("pipeline run complete",
		"records", len(session.Records),
		"duration", e.clock().Sub(started))
	return session, nil
}

// FromData blends already-decoded rows into a session.
func (e *Engine) FromData(data ingest.Data) *Session {
	runID := uuid.NewString()
	return e.blend(runID, e.logger.With("run_id", runID), data)
}

func (e *Engine) blend(runID string, logger *slog.Logger, data ingest.Data) *Session {
	blender := blend.New(blend.Options{
		BrokerName: e.config.BrokerName,
		Logger:     logger,
	})
	result := blender.Blend(data.Leads, data.Referrals, data.Sold)

	return &Session{
		RunID:    runID,
		LoadedAt: e.clock(),
		Records:  result.Records,
		Stats:    result.Stats,
		Inputs: InputCounts{
			Leads:     len(data.Leads),
			Referrals: len(data.Referrals),
			Sold:      len(data.Sold),
		},
	}
}
