package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/leadflow/internal/blend"
	"github.com/Veraticus/leadflow/internal/cli"
	"github.com/Veraticus/leadflow/internal/common"
	"github.com/Veraticus/leadflow/internal/config"
	"github.com/Veraticus/leadflow/internal/engine"
	"github.com/Veraticus/leadflow/internal/filter"
	"github.com/Veraticus/leadflow/internal/metrics"
	"github.com/Veraticus/leadflow/internal/storage"
)

// loadApp resolves the application configuration from viper.
func loadApp() (config.App, error) {
	app, err := config.Load(viper.GetViper())
	if err != nil {
		return config.App{}, err
	}
	if app.Files.Leads == "" {
		return config.App{}, common.NewUserError(
			"a leads export is required (--leads or files.leads in the config file)",
			common.ErrMissingLeads)
	}
	return app, nil
}

// brokerName is the brokerage used for client-only closings.
func brokerName(app config.App) string {
	if app.BrokerName != "" {
		return app.BrokerName
	}
	return blend.DefaultBrokerName
}

// newEngine builds the pipeline for app, logging through the logger in ctx.
// When progress is non-nil a bar advances as each export finishes decoding.
func newEngine(ctx context.Context, app config.App, progress io.Writer) *engine.Engine {
	cfg := engine.Config{
		Paths:      app.Files,
		BrokerName: app.BrokerName,
	}
	if progress != nil {
		cfg.OnLoaded = cli.NewLoadProgress(progress, app.Files.Count()).Loaded
	}
	return engine.New(cfg, engine.WithLogger(common.LoggerFrom(ctx)))
}

// loadSession runs one pipeline pass, canceling on interrupt.
func loadSession(ctx context.Context, app config.App, stderr io.Writer) (*engine.Session, error) {
	handler := cli.NewInterruptHandler(stderr)
	ctx = handler.HandleInterrupts(ctx, "Loading")

	var progress io.Writer
	if f, ok := stderr.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		progress = stderr
	}

	session, err := newEngine(ctx, app, progress).Run(ctx)
	if err != nil {
		if handler.WasInterrupted() || errors.Is(err, context.Canceled) {
			return nil, common.NewUserError("loading interrupted", err)
		}
		return nil, common.NewUserError("could not load exports", err)
	}
	return session, nil
}

// addFilterFlags registers the filter flags shared by every reporting
// command.
func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("source", "", "lead source (Market VIP, OpCity or all)")
	cmd.Flags().StringSlice("market", nil, "market filter; repeat or comma separate")
	cmd.Flags().String("zone", "", "lead zone filter")
	cmd.Flags().String("year", "", "delivery year filter")
	cmd.Flags().String("closing-type", "all", "closings to count (all, client)")
}

// criteriaFromFlags parses the filter flags of cmd.
func criteriaFromFlags(cmd *cobra.Command, app config.App) (filter.Criteria, error) {
	var params filter.Params
	var err error

	flags := cmd.Flags()
	if params.Source, err = flags.GetString("source"); err != nil {
		return filter.Criteria{}, err
	}
	if params.Markets, err = flags.GetStringSlice("market"); err != nil {
		return filter.Criteria{}, err
	}
	if params.Zone, err = flags.GetString("zone"); err != nil {
		return filter.Criteria{}, err
	}
	if params.Year, err = flags.GetString("year"); err != nil {
		return filter.Criteria{}, err
	}
	if params.ClosingType, err = flags.GetString("closing-type"); err != nil {
		return filter.Criteria{}, err
	}
	params.BrokerName = brokerName(app)

	criteria, err := params.Criteria()
	if err != nil {
		return filter.Criteria{}, common.NewUserError("invalid filter flags", err)
	}
	return criteria, nil
}

// initStorage opens and migrates the snapshot database.
func initStorage(ctx context.Context, dbPath string) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(config.ExpandPath(dbPath))
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// snapshotOf captures a session and its unfiltered monthly series.
func snapshotOf(session *engine.Session, now time.Time) *storage.Snapshot {
	monthly := metrics.MonthlySeries(session.Layers(filter.Criteria{}), now)
	return &storage.Snapshot{
		RunID:        session.RunID,
		LoadedAt:     session.LoadedAt,
		Stats:        session.Stats,
		Records:      session.Records,
		Monthly:      monthly,
		LeadRows:     session.Inputs.Leads,
		ReferralRows: session.Inputs.Referrals,
		SoldRows:     session.Inputs.Sold,
	}
}
