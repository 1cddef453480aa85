package tui

import (
	"context"
	"time"

	"github.com/Veraticus/leadflow/internal/engine"
	"github.com/Veraticus/leadflow/internal/filter"
	"github.com/Veraticus/leadflow/internal/tui/themes"
)

// Reloader runs a fresh pipeline pass.
type Reloader func(ctx context.Context) (*engine.Session, error)

// Config holds TUI configuration.
type Config struct {
	Theme    themes.Theme
	Reload   Reloader
	Clock    func() time.Time
	Criteria filter.Criteria
	Width    int
	Height   int
	ShowHelp bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Theme:  themes.Default,
		Clock:  time.Now,
		Width:  100,
		Height: 30,
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithReloader enables the reload key.
func WithReloader(reload Reloader) Option {
	return func(c *Config) {
		c.Reload = reload
	}
}

// WithClock overrides the time used to decide future closings.
func WithClock(clock func() time.Time) Option {
	return func(c *Config) {
		if clock != nil {
			c.Clock = clock
		}
	}
}

// WithCriteria sets the filters the dashboard opens with.
func WithCriteria(criteria filter.Criteria) Option {
	return func(c *Config) {
		c.Criteria = criteria
	}
}

// WithHelp opens the dashboard with the full key help shown.
func WithHelp(show bool) Option {
	return func(c *Config) {
		c.ShowHelp = show
	}
}
