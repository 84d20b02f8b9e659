// Package config loads reveal settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/roach88/reveal/internal/ir"
)

// Config holds settings shared by the CLI commands. Flags override it.
type Config struct {
	DBPath          string `env:"REVEAL_DB"                envDefault:"reveal.db"`
	CatalogDir      string `env:"REVEAL_CATALOG_DIR"`
	DelayRateMs     int64  `env:"REVEAL_DELAY_RATE_MS"     envDefault:"150"`
	DurationMs      int64  `env:"REVEAL_DURATION_MS"       envDefault:"1000"`
	TabletMinWidth  int    `env:"REVEAL_TABLET_MIN_WIDTH"  envDefault:"600"`
	DesktopMinWidth int    `env:"REVEAL_DESKTOP_MIN_WIDTH" envDefault:"1136"`
}

// Load parses the process environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, cfg.validate()
}

// LoadFrom parses an explicit environment map instead of the process
// environment.
func LoadFrom(environ map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.DelayRateMs < 0 {
		return fmt.Errorf("REVEAL_DELAY_RATE_MS must be >= 0, got %d", c.DelayRateMs)
	}
	if c.DurationMs <= 0 {
		return fmt.Errorf("REVEAL_DURATION_MS must be > 0, got %d", c.DurationMs)
	}
	if c.TabletMinWidth <= 0 || c.DesktopMinWidth <= c.TabletMinWidth {
		return fmt.Errorf("breakpoint widths must satisfy 0 < tablet (%d) < desktop (%d)",
			c.TabletMinWidth, c.DesktopMinWidth)
	}
	return nil
}

// Thresholds returns the viewport classification widths.
func (c Config) Thresholds() ir.Thresholds {
	return ir.Thresholds{TabletMinWidth: c.TabletMinWidth, DesktopMinWidth: c.DesktopMinWidth}
}

// Duration returns the animation duration.
func (c Config) Duration() time.Duration {
	return time.Duration(c.DurationMs) * time.Millisecond
}
