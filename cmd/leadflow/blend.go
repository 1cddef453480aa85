package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/leadflow/internal/cli"
	"github.com/Veraticus/leadflow/internal/common"
	"github.com/Veraticus/leadflow/internal/export"
)

func blendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blend",
		Short: "Blend the exports into one CSV",
		Long: `Load the lead, referral and sold exports, merge them into one record per
client and write the result as blended_data_<timestamp>.csv.`,
		RunE: runBlend,
	}

	cmd.Flags().StringP("output-dir", "o", "", "directory for the blended CSV (default: output_dir from config)")
	cmd.Flags().Bool("stats", false, "print merge statistics")

	return cmd
}

func runBlend(cmd *cobra.Command, _ []string) error {
	app, err := loadApp()
	if err != nil {
		return err
	}
	if dir, _ := cmd.Flags().GetString("output-dir"); dir != "" {
		app.OutputDir = dir
	}

	session, err := loadSession(cmd.Context(), app, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	path, err := export.WriteFile(app.OutputDir, export.BlendedFilename(time.Now()), session.Records)
	if err != nil {
		return fmt.Errorf("failed to write blended data: %w", err)
	}

	common.LogInfo("blended data written", common.Fields{
		"run_id":  session.RunID,
		"path":    path,
		"records": len(session.Records),
	})

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Blended %d records into %s", len(session.Records), path)))
	if showStats, _ := cmd.Flags().GetBool("stats"); showStats {
		fmt.Fprint(out, cli.RenderStats(session.Stats))
	}
	return nil
}
