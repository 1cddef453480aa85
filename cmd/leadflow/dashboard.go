package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/leadflow/internal/config"
	"github.com/Veraticus/leadflow/internal/engine"
	"github.com/Veraticus/leadflow/internal/tui"
	"github.com/Veraticus/leadflow/internal/tui/themes"
)

func dashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Open the interactive terminal dashboard",
		Long: `Open a full-screen dashboard. Tab switches views, s/m/z/y cycle the
source, market, zone and year filters, c toggles client-only closings and
r reloads the exports from disk.`,
		RunE: runDashboard,
	}

	addFilterFlags(cmd)
	cmd.Flags().String("theme", "default", "color theme (default, catppuccin-mocha)")
	_ = viper.BindPFlag("tui.theme", cmd.Flags().Lookup("theme"))

	return cmd
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	app, err := loadApp()
	if err != nil {
		return err
	}
	criteria, err := criteriaFromFlags(cmd, app)
	if err != nil {
		return err
	}

	session, err := loadSession(cmd.Context(), app, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	return tui.Run(cmd.Context(), session,
		tui.WithTheme(themes.GetTheme(viper.GetString("tui.theme"))),
		tui.WithCriteria(criteria),
		tui.WithReloader(reloader(app)),
	)
}

// reloader re-runs the pipeline quietly for long-lived views.
func reloader(app config.App) func(ctx context.Context) (*engine.Session, error) {
	return func(ctx context.Context) (*engine.Session, error) {
		return loadSession(ctx, app, io.Discard)
	}
}
