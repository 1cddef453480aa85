package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/Veraticus/leadflow/internal/common"
	"github.com/Veraticus/leadflow/internal/ingest"
)

// Viper keys shared between the CLI flags and the config file.
const (
	KeyLeads     = "files.leads"
	KeyReferrals = "files.referrals"
	KeySold      = "files.sold"
	KeyBroker    = "broker"
	KeyOutputDir = "output_dir"
	KeyDatabase  = "database"
	KeyAddr      = "server.addr"
	KeyRefresh   = "server.refresh"
)

// App is the resolved application configuration.
type App struct {
	Files      ingest.Paths `mapstructure:"files"`
	BrokerName string       `mapstructure:"broker"`
	OutputDir  string       `mapstructure:"output_dir"`
	Database   string       `mapstructure:"database"`
	Server     Server       `mapstructure:"server"`
}

// Server configures the HTTP API.
type Server struct {
	Addr string `mapstructure:"addr"`
	// Refresh is a cron spec; empty disables scheduled reloads.
	Refresh string `mapstructure:"refresh"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyOutputDir, ".")
	v.SetDefault(KeyDatabase, "leadflow.db")
	v.SetDefault(KeyAddr, "127.0.0.1:8080")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Load decodes the application configuration from v, expanding every
// file path.
func Load(v *viper.Viper) (App, error) {
	if v == nil {
		v = viper.GetViper()
	}
	SetDefaults(v)

	var app App
	if err := v.Unmarshal(&app); err != nil {
		return App{}, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}

	app.Files.Leads = ExpandPath(app.Files.Leads)
	app.Files.Referrals = ExpandPath(app.Files.Referrals)
	app.Files.Sold = ExpandPath(app.Files.Sold)
	app.OutputDir = ExpandPath(app.OutputDir)
	app.Database = ExpandPath(app.Database)
	app.BrokerName = strings.TrimSpace(app.BrokerName)

	return app, nil
}
