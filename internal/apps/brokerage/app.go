//-------------------------------------------------------------------------
//
// pgEdge Realty
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package brokerage

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgEdge/pgedge-realty/internal/apps"
)

// App implements the real-estate brokerage application.
type App struct {
	workload *Workload
}

var _ apps.App = (*App)(nil)

// New creates the brokerage application. params seed the report
// arguments used by the workload and writeRatio sets its write share.
func New(params Params, writeRatio float64) *App {
	return &App{workload: NewWorkload(params, writeRatio)}
}

// Name returns the application name.
func (a *App) Name() string {
	return "brokerage"
}

// Description returns a human-readable description.
func (a *App) Description() string {
	return "Real-estate brokerage - offices, agents, listings and transactions " +
		"with listing status sync and an analytics report catalog"
}

// CreateSchema creates the application's database schema.
func (a *App) CreateSchema(ctx context.Context, pool *pgxpool.Pool) error {
	return CreateSchema(ctx, pool)
}

// DropSchema drops the application's database schema.
func (a *App) DropSchema(ctx context.Context, pool *pgxpool.Pool) error {
	return DropSchema(ctx, pool)
}

// GenerateData generates test data for the application.
func (a *App) GenerateData(ctx context.Context, pool *pgxpool.Pool, cfg apps.GeneratorConfig) error {
	return NewGenerator(cfg.Seed).GenerateData(ctx, pool, cfg.TargetSize)
}

// GetQueries returns the workload mix.
func (a *App) GetQueries() []apps.QueryDefinition {
	return a.workload.Mix()
}

// ExecuteQuery executes a randomly selected operation from the mix.
func (a *App) ExecuteQuery(ctx context.Context, db apps.DB) apps.QueryResult {
	return a.workload.Execute(ctx, db)
}
