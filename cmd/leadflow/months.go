package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/leadflow/internal/cli"
	"github.com/Veraticus/leadflow/internal/common"
	"github.com/Veraticus/leadflow/internal/engine"
	"github.com/Veraticus/leadflow/internal/export"
	"github.com/Veraticus/leadflow/internal/filter"
	"github.com/Veraticus/leadflow/internal/metrics"
	"github.com/Veraticus/leadflow/internal/model"
)

func monthsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "months <YYYY-MM>",
		Short: "Drill into the leads or closings of one month",
		Long: `List the leads delivered in a month, or with --closings the closings
counted in it, honoring the same filters as the dashboard.

With --csv the list is written to leads_<Mon_YYYY>.csv or
closings_<Mon_YYYY>.csv in the output directory.`,
		Args: cobra.ExactArgs(1),
		RunE: runMonths,
	}

	addFilterFlags(cmd)
	cmd.Flags().Bool("closings", false, "list closings instead of leads")
	cmd.Flags().Bool("csv", false, "write the list to a CSV file")
	cmd.Flags().StringP("output-dir", "o", "", "directory for the CSV (default: output_dir from config)")
	cmd.Flags().BoolP("yes", "y", false, "overwrite an existing file without asking")

	return cmd
}

func runMonths(cmd *cobra.Command, args []string) error {
	key, err := metrics.ParseMonthKey(args[0])
	if err != nil {
		return common.NewUserError("invalid month", err)
	}
	app, err := loadApp()
	if err != nil {
		return err
	}
	criteria, err := criteriaFromFlags(cmd, app)
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

	closings, _ := cmd.Flags().GetBool("closings")
	records := monthRecords(session, criteria, key, closings, time.Now())

	writeCSV, _ := cmd.Flags().GetBool("csv")
	if !writeCSV {
		_, err = fmt.Fprint(cmd.OutOrStdout(), cli.RenderRecords(records))
		return err
	}

	overwrite, _ := cmd.Flags().GetBool("yes")
	reader := cli.NewNonBlockingReader(cmd.InOrStdin())
	path, err := writeMonthCSV(cmd.Context(), reader, cmd.OutOrStdout(), app.OutputDir, key, closings, records, overwrite)
	if err != nil {
		return err
	}
	if path != "" {
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Wrote %d records to %s", len(records), path)))
	}
	return nil
}

func monthRecords(session *engine.Session, criteria filter.Criteria, key string, closings bool, now time.Time) []model.Record {
	if closings {
		return session.MonthClosings(criteria, key, now)
	}
	return session.MonthLeads(criteria, key)
}

// writeMonthCSV writes the drill-down file, asking before it replaces an
// existing one. It returns an empty path when the user declines.
func writeMonthCSV(ctx context.Context, r *cli.NonBlockingReader, w io.Writer, dir, key string, closings bool, records []model.Record, overwrite bool) (string, error) {
	name := export.MonthFilename(key, closings)
	if !overwrite {
		_, err := os.Stat(filepath.Join(dir, name))
		switch {
		case err == nil:
			ok, err := cli.Confirm(ctx, r, w, name+" already exists. Overwrite?")
			if err != nil {
				return "", err
			}
			if !ok {
				fmt.Fprintln(w, cli.FormatInfo("Left "+name+" untouched"))
				return "", nil
			}
		case !errors.Is(err, os.ErrNotExist):
			return "", fmt.Errorf("failed to check %s: %w", name, err)
		}
	}

	path, err := export.WriteFile(dir, name, records)
	if err != nil {
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	return path, nil
}
