package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/leadflow/internal/config"
	"github.com/Veraticus/leadflow/internal/engine"
	"github.com/Veraticus/leadflow/internal/server"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard as a JSON API",
		Long: `Load the exports once and serve the dashboard over HTTP.

Filters are query parameters (source, market, zone, year, closing_type).
POST /api/v1/reload re-reads the exports; --refresh schedules reloads with
a cron expression such as "@every 15m" or "0 7 * * *".`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", "", "listen address (default: server.addr from config)")
	cmd.Flags().String("refresh", "", "cron schedule for automatic reloads")
	cmd.Flags().Bool("snapshot", false, "save every loaded session to the database")

	_ = viper.BindPFlag(config.KeyAddr, cmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag(config.KeyRefresh, cmd.Flags().Lookup("refresh"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	app, err := loadApp()
	if err != nil {
		return err
	}

	if viper.GetString("logging.level") != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	opts := []server.Option{server.WithLogger(slog.Default())}
	if snapshot, _ := cmd.Flags().GetBool("snapshot"); snapshot {
		store, err := initStorage(ctx, app.Database)
		if err != nil {
			return err
		}
		defer store.Close()

		opts = append(opts, server.WithSessionHook(func(session *engine.Session) {
			if err := store.SaveSnapshot(context.WithoutCancel(ctx), snapshotOf(session, time.Now())); err != nil {
				slog.Error("failed to save snapshot", "run_id", session.RunID, "error", err)
			}
		}))
	}

	srv := server.New(server.Config{Addr: app.Server.Addr, Refresh: app.Server.Refresh}, reloader(app), opts...)

	session, err := loadSession(ctx, app, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	srv.SetSession(session)

	return srv.ListenAndServe(ctx)
}
