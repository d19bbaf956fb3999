// Package workload implements the concurrent workload executor.
package workload

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pgEdge/pgedge-realty/internal/apps"
	"github.com/pgEdge/pgedge-realty/internal/db"
	"github.com/pgEdge/pgedge-realty/internal/logging"
)

// Conn is a dedicated worker connection. *pgx.Conn satisfies it.
type Conn interface {
	apps.DB
	Close(ctx context.Context) error
}

// ConnectFunc opens the connection for one worker.
type ConnectFunc func(ctx context.Context, suffix string) (Conn, error)

// ExecutorConfig holds configuration for the workload executor.
type ExecutorConfig struct {
	ConnString     string // Connection string for creating per-worker connections
	App            apps.App
	Connections    int
	ReportInterval int // seconds

	// Connect overrides how worker connections are opened. Nil dials
	// ConnString with db.ConnectSingle.
	Connect ConnectFunc
}

// Executor manages the workload execution.
type Executor struct {
	runID          string
	log            zerolog.Logger
	app            apps.App
	connections    int
	reportInterval time.Duration
	connect        ConnectFunc

	totalQueries    atomic.Int64
	successQueries  atomic.Int64
	failedQueries   atomic.Int64
	totalDurationNs atomic.Int64
	activeWorkers   atomic.Int64
	startTime       time.Time

	queryMetrics sync.Map // map[string]*queryMetric
}

type queryMetric struct {
	count      atomic.Int64
	durationNs atomic.Int64
	errors     atomic.Int64
}

// QueryStats is the per-operation summary returned by Stats.
type QueryStats struct {
	Name     string
	Count    int64
	Errors   int64
	Duration time.Duration
}

// NewExecutor creates a new workload executor.
func NewExecutor(cfg ExecutorConfig) (*Executor, error) {
	if cfg.App == nil {
		return nil, errors.New("workload executor needs an app")
	}
	if cfg.Connections < 1 {
		return nil, fmt.Errorf("connections must be at least 1, got %d", cfg.Connections)
	}

	connect := cfg.Connect
	if connect == nil {
		connString := cfg.ConnString
		connect = func(ctx context.Context, suffix string) (Conn, error) {
			return db.ConnectSingle(ctx, connString, suffix)
		}
	}

	runID := uuid.NewString()
	return &Executor{
		runID:          runID,
		log:            logging.Component("workload", "run_id", runID),
		app:            cfg.App,
		connections:    cfg.Connections,
		reportInterval: time.Duration(cfg.ReportInterval) * time.Second,
		connect:        connect,
	}, nil
}

// RunID identifies this execution in the logs.
func (e *Executor) RunID() string {
	return e.runID
}

// Run starts the workers and blocks until ctx is cancelled or every
// worker has exited.
func (e *Executor) Run(ctx context.Context) error {
	e.startTime = time.Now()

	e.log.Info().
		Str("app", e.app.Name()).
		Int("connections", e.connections).
		Float64("write_share", apps.Ratio(e.app.GetQueries(), apps.KindWrite)).
		Msg("Starting workload execution")

	var wg sync.WaitGroup
	for i := 0; i < e.connections; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			e.worker(ctx, workerID)
		}(i)
	}

	if e.reportInterval > 0 {
		go e.reporter(ctx)
	}

	wg.Wait()

	if e.totalQueries.Load() == 0 && ctx.Err() == nil {
		return errors.New("no worker could connect")
	}
	return nil
}

// worker owns one connection and runs operations back to back.
func (e *Executor) worker(ctx context.Context, id int) {
	e.log.Debug().Int("worker_id", id).Msg("Worker started")

	conn, err := e.connect(ctx, fmt.Sprintf("client %d", id+1))
	if err != nil {
		e.log.Error().Err(err).Int("worker_id", id).Msg("Failed to create worker connection")
		return
	}
	defer conn.Close(context.Background())

	e.activeWorkers.Add(1)
	defer e.activeWorkers.Add(-1)

	for {
		select {
		case <-ctx.Done():
			e.log.Debug().Int("worker_id", id).Msg("Worker stopped")
			return
		default:
			e.record(e.app.ExecuteQuery(ctx, conn))
		}
	}
}

func (e *Executor) record(result apps.QueryResult) {
	e.totalQueries.Add(1)
	e.totalDurationNs.Add(result.Duration.Nanoseconds())

	metric := e.getOrCreateQueryMetric(result.QueryName)
	metric.count.Add(1)
	metric.durationNs.Add(result.Duration.Nanoseconds())

	if result.Error == nil {
		e.successQueries.Add(1)
		return
	}

	// Cancellation at the end of a run is not a failure.
	if errors.Is(result.Error, context.Canceled) ||
		errors.Is(result.Error, context.DeadlineExceeded) {
		return
	}
	e.failedQueries.Add(1)
	metric.errors.Add(1)
	e.log.Debug().
		Err(result.Error).
		Str("query", result.QueryName).
		Msg("Query failed")
}

func (e *Executor) getOrCreateQueryMetric(name string) *queryMetric {
	if m, ok := e.queryMetrics.Load(name); ok {
		return m.(*queryMetric)
	}

	m := &queryMetric{}
	actual, _ := e.queryMetrics.LoadOrStore(name, m)
	return actual.(*queryMetric)
}

// Totals returns the overall, successful and failed operation counts.
func (e *Executor) Totals() (total, success, failed int64) {
	return e.totalQueries.Load(), e.successQueries.Load(), e.failedQueries.Load()
}

// Stats returns per-operation counters sorted by name.
func (e *Executor) Stats() []QueryStats {
	var stats []QueryStats
	e.queryMetrics.Range(func(key, value any) bool {
		m := value.(*queryMetric)
		stats = append(stats, QueryStats{
			Name:     key.(string),
			Count:    m.count.Load(),
			Errors:   m.errors.Load(),
			Duration: time.Duration(m.durationNs.Load()),
		})
		return true
	})
	sort.Slice(stats, func(i, j int) bool { return stats[i].Name < stats[j].Name })
	return stats
}

func (e *Executor) reporter(ctx context.Context) {
	ticker := time.NewTicker(e.reportInterval)
	defer ticker.Stop()

	var lastTotal int64
	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := time.Now()
			total, success, failed := e.Totals()
			durationNs := e.totalDurationNs.Load()

			rate := float64(total-lastTotal) / now.Sub(lastTime).Seconds()

			var avgLatencyMs float64
			if total > 0 {
				avgLatencyMs = float64(durationNs) / float64(total) / 1e6
			}

			e.log.Info().
				Int64("total", total).
				Int64("success", success).
				Int64("failed", failed).
				Int64("active_workers", e.activeWorkers.Load()).
				Float64("rate_qps", rate).
				Float64("avg_latency_ms", avgLatencyMs).
				Msg("Statistics")

			lastTotal = total
			lastTime = now
		}
	}
}

// PrintSummary logs a final summary of the workload execution.
func (e *Executor) PrintSummary() {
	elapsed := time.Since(e.startTime)
	total, success, failed := e.Totals()
	durationNs := e.totalDurationNs.Load()

	var avgLatencyMs, avgQPS float64
	if total > 0 {
		avgLatencyMs = float64(durationNs) / float64(total) / 1e6
	}
	if elapsed > 0 {
		avgQPS = float64(total) / elapsed.Seconds()
	}

	e.log.Info().
		Dur("duration", elapsed).
		Int64("total_queries", total).
		Int64("successful", success).
		Int64("failed", failed).
		Float64("avg_qps", avgQPS).
		Float64("avg_latency_ms", avgLatencyMs).
		Msg("Final summary")

	e.log.Info().Msg("Per-query statistics:")
	for _, s := range e.Stats() {
		var avgMs float64
		if s.Count > 0 {
			avgMs = float64(s.Duration.Nanoseconds()) / float64(s.Count) / 1e6
		}
		e.log.Info().
			Str("query", s.Name).
			Int64("count", s.Count).
			Int64("errors", s.Errors).
			Float64("avg_latency_ms", avgMs).
			Msg("")
	}
}
