package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/leadflow/internal/cli"
)

func filtersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filters",
		Short: "List the selectable sources, markets, zones and years",
		RunE:  runFilters,
	}
	cmd.Flags().Bool("json", false, "print as JSON")
	return cmd
}

func runFilters(cmd *cobra.Command, _ []string) error {
	app, err := loadApp()
	if err != nil {
		return err
	}
	session, err := loadSession(cmd.Context(), app, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	options := session.Options()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(options)
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), cli.RenderOptions(options))
	return err
}
