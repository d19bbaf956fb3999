package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-realty/internal/apps"
	"github.com/pgEdge/pgedge-realty/internal/apps/brokerage"
	"github.com/pgEdge/pgedge-realty/internal/db"
	"github.com/pgEdge/pgedge-realty/internal/logging"
)

var (
	initSize         string
	initDropExisting bool
	initSeed         uint64
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a database with the brokerage schema and test data",
	Long: `Initialize a PostgreSQL database with the brokerage schema, the manager
access view and generated test data. The target size parameter controls how
many offices, employees and listings are generated.

Example:
  pgedge-realty init --size 500MB --connection "postgres://..."
  pgedge-realty init --size 50MB --seed 42 --drop-existing`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&initSize, "size", "",
		"target database size (e.g., 1GB, 500MB)")
	initCmd.Flags().BoolVar(&initDropExisting, "drop-existing", false,
		"drop existing schema before initialization")
	initCmd.Flags().Uint64Var(&initSeed, "seed", 0,
		"seed for reproducible data (0 = random)")
}

func runInit(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if initSize != "" {
		cfg.Init.Size = initSize
	}
	if initDropExisting {
		cfg.Init.DropExisting = true
	}
	if initSeed != 0 {
		cfg.Init.Seed = initSeed
	}

	if err := cfg.ValidateInit(); err != nil {
		return err
	}

	// Parse before connecting so a typo fails fast.
	targetBytes, err := parseSize(cfg.Init.Size)
	if err != nil {
		return fmt.Errorf("invalid size: %w", err)
	}

	application := brokerage.New(reportParams(cfg.Reports), cfg.Run.WriteRatio)

	logging.Info().
		Str("app", application.Name()).
		Str("size", cfg.Init.Size).
		Uint64("seed", cfg.Init.Seed).
		Msg("Initializing database")

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Connection, 0)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if !cfg.Init.DropExisting {
		if existing, err := db.GetAllMetadata(ctx, pool); err == nil && existing["app"] != "" {
			return fmt.Errorf(
				"database was already initialized (init id %s); use --drop-existing to reinitialize",
				existing["init_id"])
		}
	}

	if cfg.Init.DropExisting {
		logging.Info().Msg("Dropping existing schema")
		if err := application.DropSchema(ctx, pool); err != nil {
			return fmt.Errorf("failed to drop schema: %w", err)
		}
		if err := db.DropMetadata(ctx, pool); err != nil {
			logging.Debug().Err(err).Msg("No metadata table to drop")
		}
	}

	logging.Info().Msg("Creating schema")
	if err := application.CreateSchema(ctx, pool); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	logging.Info().
		Int64("target_bytes", targetBytes).
		Msg("Generating test data")

	genCfg := apps.GeneratorConfig{
		TargetSize: targetBytes,
		Seed:       cfg.Init.Seed,
	}
	if err := application.GenerateData(ctx, pool, genCfg); err != nil {
		return fmt.Errorf("failed to generate data: %w", err)
	}

	initID, err := db.SaveMetadata(ctx, pool, db.Init{
		App:        application.Name(),
		TargetSize: cfg.Init.Size,
		Seed:       cfg.Init.Seed,
	})
	if err != nil {
		return fmt.Errorf("failed to save metadata: %w", err)
	}

	logging.Info().
		Str("init_id", initID).
		Str("size", cfg.Init.Size).
		Msg("Database initialization complete")

	return nil
}

var errNotInitialized = errors.New("database has not been initialized; run 'pgedge-realty init' first")

// requireInitialized fails unless init has completed against the database.
func requireInitialized(ctx context.Context, q db.Querier) error {
	metadata, err := db.GetAllMetadata(ctx, q)
	if err != nil || metadata["app"] == "" {
		return errNotInitialized
	}
	return nil
}

// connectInitialized opens a pool and checks the database was initialized.
func connectInitialized(ctx context.Context, maxConns int32) (*pgxpool.Pool, error) {
	pool, err := db.Connect(ctx, cfg.Connection, maxConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := requireInitialized(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// parseSize converts a size string (e.g., "5GB", "500MB") to bytes.
func parseSize(s string) (int64, error) {
	var value float64
	var unit string

	_, err := fmt.Sscanf(s, "%f%s", &value, &unit)
	if err != nil {
		return 0, fmt.Errorf("invalid size format: %s", s)
	}
	if value <= 0 {
		return 0, fmt.Errorf("size must be positive: %s", s)
	}

	var multiplier int64
	switch unit {
	case "B", "b":
		multiplier = 1
	case "KB", "kb", "K", "k":
		multiplier = 1024
	case "MB", "mb", "M", "m":
		multiplier = 1024 * 1024
	case "GB", "gb", "G", "g":
		multiplier = 1024 * 1024 * 1024
	case "TB", "tb", "T", "t":
		multiplier = 1024 * 1024 * 1024 * 1024
	default:
		return 0, fmt.Errorf("unknown size unit: %s", unit)
	}

	return int64(value * float64(multiplier)), nil
}
