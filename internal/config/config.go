//-------------------------------------------------------------------------
//
// pgEdge Realty
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package config handles configuration management for pgedge-realty.
// Configuration is loaded from config files and CLI flags (no environment variables).
// CLI flags take precedence over config file values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Output formats for report and view commands.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Config holds all configuration for pgedge-realty.
type Config struct {
	// Connection is the PostgreSQL connection string.
	Connection string `mapstructure:"connection"`

	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	// LogFormat is auto, console or json.
	LogFormat string `mapstructure:"log_format"`

	Init    InitConfig    `mapstructure:"init"`
	Reports ReportsConfig `mapstructure:"reports"`
	Run     RunConfig     `mapstructure:"run"`
}

// InitConfig holds configuration for database initialization.
type InitConfig struct {
	// Size is the target database size (e.g., "5GB", "500MB").
	Size string `mapstructure:"size"`

	// DropExisting drops existing schema before initialization.
	DropExisting bool `mapstructure:"drop_existing"`

	// Seed makes generated data reproducible. Zero picks a random seed.
	Seed uint64 `mapstructure:"seed"`
}

// ReportsConfig holds report parameter defaults.
type ReportsConfig struct {
	// TopPerformerCutoff keeps employees ranked at or above it.
	TopPerformerCutoff int `mapstructure:"top_performer_cutoff"`

	// TopPerformerWindowDays is the trailing window for top performers.
	TopPerformerWindowDays int `mapstructure:"top_performer_window_days"`

	// UnderperformerWindowMonths is the trailing window for underperformers.
	UnderperformerWindowMonths int `mapstructure:"underperformer_window_months"`

	// RatingThreshold is the lowest rating that counts as performing.
	RatingThreshold int `mapstructure:"rating_threshold"`

	// MonthlySalesWindowMonths is the trailing window for monthly sales.
	MonthlySalesWindowMonths int `mapstructure:"monthly_sales_window_months"`

	// IncludeUnsoldListings lists unsold properties in days on market.
	IncludeUnsoldListings bool `mapstructure:"include_unsold_listings"`

	// Format is the output format: table, json or yaml.
	Format string `mapstructure:"format"`
}

// RunConfig holds configuration for the mixed workload.
type RunConfig struct {
	// Connections is the number of workers, each with its own connection.
	Connections int `mapstructure:"connections"`

	// ReportInterval is how often to print statistics (in seconds).
	ReportInterval int `mapstructure:"report_interval"`

	// Duration is how long to run in minutes (0 = indefinite).
	Duration int `mapstructure:"duration"`

	// WriteRatio is the share of operations that update terms.
	WriteRatio float64 `mapstructure:"write_ratio"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "auto",
		Init: InitConfig{
			Size: "100MB",
		},
		Reports: ReportsConfig{
			TopPerformerCutoff:         10,
			TopPerformerWindowDays:     365,
			UnderperformerWindowMonths: 6,
			RatingThreshold:            3,
			MonthlySalesWindowMonths:   12,
			Format:                     FormatTable,
		},
		Run: RunConfig{
			Connections:    10,
			ReportInterval: 60,
			WriteRatio:     0.1,
		},
	}
}

// Load reads configuration from config files.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./pgedge-realty.yaml
// 3. ~/.config/pgedge-realty/config.yaml
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("pgedge-realty")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "pgedge-realty"))
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	// A missing config file is fine.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Connection == "" {
		return fmt.Errorf("connection string is required")
	}
	return nil
}

// ValidateInit checks configuration required for init command.
func (c *Config) ValidateInit() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Init.Size == "" {
		return fmt.Errorf("target size is required for init")
	}
	return nil
}

// ValidateReports checks configuration required for report commands.
func (c *Config) ValidateReports() error {
	if err := c.Validate(); err != nil {
		return err
	}
	r := c.Reports
	if r.TopPerformerWindowDays < 1 {
		return fmt.Errorf("top_performer_window_days must be at least 1")
	}
	if r.UnderperformerWindowMonths < 1 {
		return fmt.Errorf("underperformer_window_months must be at least 1")
	}
	if r.MonthlySalesWindowMonths < 1 {
		return fmt.Errorf("monthly_sales_window_months must be at least 1")
	}
	switch r.Format {
	case FormatTable, FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("format must be 'table', 'json' or 'yaml'")
	}
	return nil
}

// ValidateRun checks configuration required for run command.
func (c *Config) ValidateRun() error {
	if err := c.ValidateReports(); err != nil {
		return err
	}
	if c.Run.Connections < 1 {
		return fmt.Errorf("connections must be at least 1")
	}
	if c.Run.Duration < 0 {
		return fmt.Errorf("duration must be non-negative")
	}
	if c.Run.WriteRatio < 0 || c.Run.WriteRatio > 1 {
		return fmt.Errorf("write_ratio must be between 0 and 1")
	}
	return nil
}
