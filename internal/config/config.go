// Package config defines run configuration and its layered loading.
//
// Conventions:
// - New() returns a Config with defaults; Load layers a YAML file and env on top.
// - Blocking functions accept context.Context as the first parameter.
// - Errors are wrapped with this package's sentinel kinds.
package config

import (
	"fmt"
	"runtime"

	"github.com/rberkkaratas/recruitment-support/internal/domain/scope"
	"github.com/rberkkaratas/recruitment-support/internal/domain/shortlist"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects the text or json log handler.
	LogFormat string `koanf:"log_format"`

	// InputPath is the metric table CSV.
	InputPath string `koanf:"input_path"`
	// OutputDir receives the CSV output tables.
	OutputDir string `koanf:"output_dir"`
	// RolesPath is a YAML role file; empty uses the built-in roles.
	RolesPath string `koanf:"roles_path"`

	// ScoringScope is the percentile scope role scores are computed on.
	ScoringScope string `koanf:"scoring_scope"`
	// PercentileScopes are emitted in the long percentile table.
	PercentileScopes []string `koanf:"percentile_scopes"`

	ComparablesTopN int `koanf:"comparables_top_n"`
	ShortlistTopN   int `koanf:"shortlist_top_n"`

	// Workers bounds how many roles are processed at once.
	Workers int `koanf:"workers"`

	// StorePath is the SQLite result store; empty disables persistence.
	StorePath string `koanf:"store_path"`
	// XLSXPath is the analyst workbook; empty disables export.
	XLSXPath string `koanf:"xlsx_path"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`
	// MaxShortlistLimit caps GET /shortlist?limit.
	MaxShortlistLimit int `koanf:"max_shortlist_limit"`

	// Risk holds the shortlist risk flag thresholds.
	Risk shortlist.RiskRules `koanf:"risk"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		OutputDir:         "out",
		ScoringScope:      scope.Default,
		PercentileScopes:  scope.Names(),
		ComparablesTopN:   10,
		ShortlistTopN:     50,
		Workers:           runtime.NumCPU(),
		Addr:              ":9080",
		MaxShortlistLimit: 200,
		Risk:              shortlist.DefaultRiskRules(),
	}
}

// Validate rejects configurations no run could satisfy.
func (c *Config) Validate() error {
	if err := scope.Validate(c.ScoringScope); err != nil {
		return fmt.Errorf("%w: scoring_scope: %w", ErrInvalidConfig, err)
	}
	if len(c.PercentileScopes) == 0 {
		return fmt.Errorf("%w: percentile_scopes must not be empty", ErrInvalidConfig)
	}
	if err := scope.Validate(c.PercentileScopes...); err != nil {
		return fmt.Errorf("%w: percentile_scopes: %w", ErrInvalidConfig, err)
	}
	if c.ComparablesTopN <= 0 {
		return fmt.Errorf("%w: comparables_top_n must be positive, got %d", ErrInvalidConfig, c.ComparablesTopN)
	}
	if c.ShortlistTopN <= 0 {
		return fmt.Errorf("%w: shortlist_top_n must be positive, got %d", ErrInvalidConfig, c.ShortlistTopN)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidConfig, c.Workers)
	}
	if c.Risk.LowMinutesMin > c.Risk.LowMinutesMax {
		return fmt.Errorf("%w: risk low-minutes band %v..%v is inverted", ErrInvalidConfig, c.Risk.LowMinutesMin, c.Risk.LowMinutesMax)
	}
	return nil
}
