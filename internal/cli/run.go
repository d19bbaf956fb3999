package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-realty/internal/apps/brokerage"
	"github.com/pgEdge/pgedge-realty/internal/db"
	"github.com/pgEdge/pgedge-realty/internal/logging"
	"github.com/pgEdge/pgedge-realty/internal/workload"
)

var (
	runConnections    int
	runReportInterval int
	runDuration       int
	runWriteRatio     float64
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a mixed report and terms-update workload",
	Long: `Run a mixed workload against a database that was previously initialized
with the 'init' command. Each worker owns one connection and runs reports,
manager view lookups and terms updates chosen by weight. Terms updates go
through the same status-sync path as the 'terms' command.

The workload continues until interrupted with Ctrl+C or until the specified
duration expires.

Example:
  pgedge-realty run --connections 20
  pgedge-realty run --connections 20 --duration 30 --write-ratio 0.25`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().IntVar(&runConnections, "connections", 0,
		"number of database connections")
	runCmd.Flags().IntVar(&runReportInterval, "report-interval", 0,
		"statistics reporting interval in seconds")
	runCmd.Flags().IntVar(&runDuration, "duration", 0,
		"duration to run in minutes (0 = run indefinitely)")
	runCmd.Flags().Float64Var(&runWriteRatio, "write-ratio", -1,
		"share of operations that write transactions (0 to 1)")
}

func runRun(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if runConnections > 0 {
		cfg.Run.Connections = runConnections
	}
	if runReportInterval > 0 {
		cfg.Run.ReportInterval = runReportInterval
	}
	if runDuration > 0 {
		cfg.Run.Duration = runDuration
	}
	if runWriteRatio >= 0 {
		cfg.Run.WriteRatio = runWriteRatio
	}

	if err := cfg.ValidateRun(); err != nil {
		return err
	}

	// Check initialization on a single connection; workers open their own.
	ctx := context.Background()
	conn, err := db.ConnectSingle(ctx, cfg.Connection, "metadata")
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	err = requireInitialized(ctx, conn)
	conn.Close(ctx)
	if err != nil {
		return err
	}

	application := brokerage.New(reportParams(cfg.Reports), cfg.Run.WriteRatio)

	durationMsg := "indefinitely"
	if cfg.Run.Duration > 0 {
		durationMsg = fmt.Sprintf("%d minutes", cfg.Run.Duration)
	}

	logging.Info().
		Str("app", application.Name()).
		Int("connections", cfg.Run.Connections).
		Float64("write_ratio", cfg.Run.WriteRatio).
		Str("duration", durationMsg).
		Msg("Starting workload")

	var cancel context.CancelFunc
	if cfg.Run.Duration > 0 {
		ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.Run.Duration)*time.Minute)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case sig := <-sigChan:
			logging.Info().
				Str("signal", sig.String()).
				Msg("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	executor, err := workload.NewExecutor(workload.ExecutorConfig{
		ConnString:     cfg.Connection,
		App:            application,
		Connections:    cfg.Run.Connections,
		ReportInterval: cfg.Run.ReportInterval,
	})
	if err != nil {
		return fmt.Errorf("failed to create executor: %w", err)
	}

	if err := executor.Run(ctx); err != nil {
		return fmt.Errorf("executor error: %w", err)
	}

	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		logging.Info().Msg("Duration limit reached, stopping workload")
	case ctx.Err() != nil:
		logging.Info().Msg("Workload stopped")
	default:
		logging.Info().Msg("Workload completed")
	}
	executor.PrintSummary()
	return nil
}
