package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/leadflow/internal/cli"
	"github.com/Veraticus/leadflow/internal/common"
	"github.com/Veraticus/leadflow/internal/export"
)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the lead performance dashboard",
		Long: `Compute every dashboard view for the selected filters and print it as a
terminal table, JSON, Markdown or a standalone HTML page.`,
		RunE: runReport,
	}

	addFilterFlags(cmd)
	cmd.Flags().StringP("format", "f", "table", "output format (table, json, markdown, html)")
	cmd.Flags().String("output", "", "write the report to a file instead of stdout")

	return cmd
}

func runReport(cmd *cobra.Command, _ []string) error {
	app, err := loadApp()
	if err != nil {
		return err
	}
	criteria, err := criteriaFromFlags(cmd, app)
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "table", string(export.FormatJSON), string(export.FormatMarkdown), string(export.FormatHTML):
	default:
		return common.NewUserError(fmt.Sprintf("unknown format %q", format), common.ErrInvalidFilter)
	}

	session, err := loadSession(cmd.Context(), app, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	now := time.Now()
	dashboard := session.Dashboard(criteria, now)

	var w io.Writer = cmd.OutOrStdout()
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if format == "table" {
		_, err = fmt.Fprint(w, cli.RenderDashboard(dashboard))
		return err
	}
	meta := export.ReportMeta{RunID: session.RunID, GeneratedAt: now}
	return export.WriteReport(w, export.Format(format), meta, dashboard)
}
