package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/leadflow/internal/cli"
	"github.com/Veraticus/leadflow/internal/common"
	"github.com/Veraticus/leadflow/internal/config"
	"github.com/Veraticus/leadflow/internal/engine"
	"github.com/Veraticus/leadflow/internal/filter"
	"github.com/Veraticus/leadflow/internal/sheets"
	"github.com/Veraticus/leadflow/internal/storage"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Publish a run to SQLite or Google Sheets",
	}

	cmd.AddCommand(exportSQLiteCmd())
	cmd.AddCommand(exportSheetsCmd())

	return cmd
}

func exportSQLiteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sqlite",
		Short: "Save the blended records and monthly metrics to a SQLite database",
		RunE:  runExportSQLite,
	}
	cmd.Flags().String("database", "", "database path (default: database from config)")
	_ = viper.BindPFlag(config.KeyDatabase, cmd.Flags().Lookup("database"))
	return cmd
}

func runExportSQLite(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	app, err := loadApp()
	if err != nil {
		return err
	}

	session, err := loadSession(ctx, app, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	store, err := initStorage(ctx, app.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := saveSnapshot(ctx, store, session, time.Now()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Saved run %s (%d records) to %s", session.RunID, len(session.Records), store.Path())))
	return nil
}

// snapshotSaver is the storage surface used by exports.
type snapshotSaver interface {
	SaveSnapshot(ctx context.Context, snap *storage.Snapshot) error
}

func saveSnapshot(ctx context.Context, store snapshotSaver, session *engine.Session, now time.Time) error {
	if err := store.SaveSnapshot(ctx, snapshotOf(session, now)); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

func exportSheetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Write the blended data and dashboard to a Google Sheets spreadsheet",
		Long: `Write three tabs (Blended Data, Monthly Performance and Summary) to a
spreadsheet. Configure credentials under sheets.* in the config file or with
GOOGLE_SHEETS_* environment variables, or run "leadflow export sheets auth".`,
		RunE: runExportSheets,
	}

	addFilterFlags(cmd)
	cmd.Flags().String("spreadsheet-id", "", "existing spreadsheet to update")
	_ = viper.BindPFlag("sheets.spreadsheet_id", cmd.Flags().Lookup("spreadsheet-id"))

	cmd.AddCommand(exportSheetsAuthCmd())
	return cmd
}

func runExportSheets(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	app, err := loadApp()
	if err != nil {
		return err
	}
	criteria, err := criteriaFromFlags(cmd, app)
	if err != nil {
		return err
	}

	sheetsConfig, err := config.LoadSheetsConfig(viper.GetViper())
	if err != nil {
		return common.NewUserError("Google Sheets is not configured", err)
	}

	session, err := loadSession(ctx, app, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	writer, err := sheets.NewWriter(ctx, *sheetsConfig, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to create sheets writer: %w", err)
	}

	return publishSheets(ctx, writer, cmd.OutOrStdout(), session, criteria, time.Now())
}

func publishSheets(ctx context.Context, w sheets.ReportWriter, out io.Writer, session *engine.Session, criteria filter.Criteria, now time.Time) error {
	report := &sheets.Report{
		GeneratedAt: now,
		RunID:       session.RunID,
		Records:     session.Records,
		Dashboard:   session.Dashboard(criteria, now),
	}
	if err := w.Write(ctx, report); err != nil {
		return fmt.Errorf("failed to write spreadsheet: %w", err)
	}
	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Published run %s to Google Sheets", session.RunID)))
	return nil
}

func exportSheetsAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize leadflow to write to Google Sheets",
		Long: `Open the Google consent page, wait for the redirect on a local port and
save the refresh token for later exports.`,
		RunE: runExportSheetsAuth,
	}
	cmd.Flags().String("token-file", "", "where to save the token (default: $HOME/.config/leadflow/sheets-token.json)")
	cmd.Flags().String("callback-addr", "localhost:8085", "local address for the OAuth redirect")
	return cmd
}

func runExportSheetsAuth(cmd *cobra.Command, _ []string) error {
	clientID := viper.GetString("sheets.client_id")
	clientSecret := viper.GetString("sheets.client_secret")
	if clientID == "" || clientSecret == "" {
		return common.NewUserError("set sheets.client_id and sheets.client_secret first", common.ErrMissingConfig)
	}

	tokenFile, _ := cmd.Flags().GetString("token-file")
	if tokenFile == "" {
		tokenFile = viper.GetString("sheets.token_file")
	}
	if tokenFile == "" {
		tokenFile = config.SheetsTokenFile()
	}
	tokenFile = config.ExpandPath(tokenFile)
	callback, _ := cmd.Flags().GetString("callback-addr")

	out := cmd.OutOrStdout()
	token, err := sheets.AuthenticateOAuth2Interactive(cmd.Context(), sheets.OAuth2Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		CallbackAddr: callback,
		OpenURL: func(url string) {
			fmt.Fprintln(out, cli.FormatInfo("Open this URL in your browser to authorize leadflow:"))
			fmt.Fprintln(out, url)
		},
	})
	if err != nil {
		return common.NewUserError("authorization failed", err)
	}

	if err := sheets.SaveToken(tokenFile, token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	fmt.Fprintln(out, cli.FormatSuccess("Saved Google Sheets token to "+tokenFile))
	return nil
}
