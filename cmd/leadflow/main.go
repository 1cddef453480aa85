package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/leadflow/internal/cli"
	"github.com/Veraticus/leadflow/internal/common"
	"github.com/Veraticus/leadflow/internal/config"
)

var (
	cfgFile string
	version = "dev"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "leadflow",
		Short: cli.HouseIcon + " Lead performance reporting for real estate teams",
		Long: `leadflow blends the lead, referral and sold-property exports of a real
estate team into one canonical record per client, then reports conversion,
spillover and closing value by month, price range, delivery method and zip.`,
		PersistentPreRunE: initConfig,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/leadflow/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")
	rootCmd.PersistentFlags().String("leads", "", "lead export (CSV, TSV, XLSX-as-CSV)")
	rootCmd.PersistentFlags().String("referrals", "", "referral export")
	rootCmd.PersistentFlags().String("sold", "", "sold-property export")
	rootCmd.PersistentFlags().String("broker", "", "your brokerage name, used for client-only closings")

	// Bind flags to viper
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag(config.KeyLeads, rootCmd.PersistentFlags().Lookup("leads"))
	_ = viper.BindPFlag(config.KeyReferrals, rootCmd.PersistentFlags().Lookup("referrals"))
	_ = viper.BindPFlag(config.KeySold, rootCmd.PersistentFlags().Lookup("sold"))
	_ = viper.BindPFlag(config.KeyBroker, rootCmd.PersistentFlags().Lookup("broker"))

	// Add commands
	rootCmd.AddCommand(blendCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(monthsCmd())
	rootCmd.AddCommand(filtersCmd())
	rootCmd.AddCommand(dashboardCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func main() {
	// Set up signal handling
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		var userErr *common.UserError
		if !errors.As(err, &userErr) {
			common.LogError(err, "command failed", common.Fields{"args": os.Args[1:]})
		}
		fmt.Fprintln(os.Stderr, cli.FormatError(common.UserMessage(err)))
		os.Exit(1)
	}
}

func initConfig(cmd *cobra.Command, _ []string) error {
	// .env is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to read .env: %w", err)
	}

	// Set up config file
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		dir, err := config.Dir()
		if err != nil {
			return fmt.Errorf("failed to get config directory: %w", err)
		}

		// Search for config in standard locations
		viper.AddConfigPath(dir)
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	// Environment variables
	viper.SetEnvPrefix("LEADFLOW")
	viper.AutomaticEnv()
	config.SetDefaults(viper.GetViper())

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, we'll use defaults
	} else {
		slog.Debug("loaded config", "file", filepath.Clean(viper.ConfigFileUsed()))
	}

	// Set up logging
	level, err := common.ParseLevel(viper.GetString("logging.level"))
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	format := viper.GetString("logging.format")
	if format != "console" && format != "json" {
		return fmt.Errorf("failed to setup logging: invalid log format: %s", format)
	}
	logger := common.SetupLogger(level, format)
	cmd.SetContext(common.WithLogger(cmd.Context(), logger))
	common.LogDebug("logging configured", common.Fields{"level": level.String(), "format": format})

	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "leadflow", version)
		},
	}
}
