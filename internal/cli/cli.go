//-------------------------------------------------------------------------
//
// pgEdge Realty
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package cli implements the command-line interface for pgedge-realty.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-realty/internal/apps/brokerage"
	"github.com/pgEdge/pgedge-realty/internal/config"
	"github.com/pgEdge/pgedge-realty/internal/logging"
	"github.com/pgEdge/pgedge-realty/pkg/version"
)

var (
	// Global flags
	cfgFile    string
	connection string
	logLevel   string
	logFormat  string

	// Global config
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "pgedge-realty",
		Short: "Real-estate brokerage data layer on PostgreSQL",
		Long: `pgedge-realty manages the derived state and analytics of a real-estate
brokerage stored in PostgreSQL: offices, employees, property listings and
sales transactions.

Changing the terms of a transaction keeps the listing status of its property
in step inside the same database transaction. A catalog of reports covers
sales performance, financials, marketing and listing activity, and the
manager access view lists who each manager is responsible for.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./pgedge-realty.yaml)")
	rootCmd.PersistentFlags().StringVar(&connection, "connection", "",
		"PostgreSQL connection string")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"log format (auto, console, json)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(reportsCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(termsCmd)
	rootCmd.AddCommand(managersCmd)
	rootCmd.AddCommand(runCmd)
}

func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	// Override with CLI flags
	if connection != "" {
		cfg.Connection = connection
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}

	logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	return nil
}

// reportParams maps the reports section of the config onto report
// parameters.
func reportParams(c config.ReportsConfig) brokerage.Params {
	p := brokerage.DefaultParams()
	p.Cutoff = c.TopPerformerCutoff
	p.WindowDays = c.TopPerformerWindowDays
	p.WindowMonths = c.UnderperformerWindowMonths
	p.SalesWindowMonths = c.MonthlySalesWindowMonths
	p.Threshold = c.RatingThreshold
	p.IncludeUnsold = c.IncludeUnsoldListings
	return p
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.Info())
	},
}
