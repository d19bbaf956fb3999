// Package apps holds the contracts between the brokerage application, the
// CLI and the workload executor.
package apps

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx, so the same code
// runs against the shared pool, a worker's dedicated connection or an open
// transaction.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Querier is the read-only subset of DB used by reports and views.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// GeneratorConfig controls synthetic data generation.
type GeneratorConfig struct {
	// TargetSize is the approximate database size in bytes.
	TargetSize int64

	// Seed makes generated data reproducible. Zero picks a random seed.
	Seed uint64
}

// QueryKind separates read-only operations from ones that write.
type QueryKind string

const (
	KindRead  QueryKind = "read"
	KindWrite QueryKind = "write"
)

// QueryDefinition is one weighted entry of a workload mix.
type QueryDefinition struct {
	Name        string
	Description string
	Weight      int
	Type        QueryKind
}

// QueryResult is the outcome of one workload operation.
type QueryResult struct {
	QueryName    string
	Duration     time.Duration
	RowsAffected int64

	// Error is nil on success. Context cancellation errors are reported
	// as-is so callers can tell shutdown apart from failure.
	Error error
}

// App is a database application the CLI can initialize and the executor
// can drive.
type App interface {
	Name() string
	Description() string

	CreateSchema(ctx context.Context, pool *pgxpool.Pool) error
	DropSchema(ctx context.Context, pool *pgxpool.Pool) error
	GenerateData(ctx context.Context, pool *pgxpool.Pool, cfg GeneratorConfig) error

	// GetQueries returns the weighted workload mix.
	GetQueries() []QueryDefinition

	// ExecuteQuery runs one operation picked from the mix.
	ExecuteQuery(ctx context.Context, db DB) QueryResult
}

// Ratio returns the share of the mix weight that belongs to kind.
func Ratio(mix []QueryDefinition, kind QueryKind) float64 {
	var total, matched int
	for _, q := range mix {
		total += q.Weight
		if q.Type == kind {
			matched += q.Weight
		}
	}
	if total == 0 {
		return 0
	}
	return float64(matched) / float64(total)
}
