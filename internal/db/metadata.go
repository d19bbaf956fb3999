//-------------------------------------------------------------------------
//
// pgEdge Realty
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package db

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pgEdge/pgedge-realty/internal/logging"
	"github.com/pgEdge/pgedge-realty/pkg/version"
)

const metadataTable = "realty_metadata"

const createMetadataTableSQL = `
CREATE TABLE IF NOT EXISTS realty_metadata (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
)`

const upsertMetadataSQL = `
    INSERT INTO realty_metadata (key, value) VALUES ($1, $2)
    ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
`

// Execer runs statements. *pgxpool.Pool, *pgx.Conn and pgx.Tx satisfy it.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Init describes one run of the init command.
type Init struct {
	App        string
	TargetSize string
	Seed       uint64
}

// SaveMetadata records an init run and returns the id it was given.
func SaveMetadata(ctx context.Context, db Execer, init Init) (string, error) {
	if _, err := db.Exec(ctx, createMetadataTableSQL); err != nil {
		return "", fmt.Errorf("failed to create metadata table: %w", err)
	}

	initID := uuid.NewString()
	metadata := map[string]string{
		"app":            init.App,
		"version":        version.Short(),
		"initialized_at": time.Now().UTC().Format(time.RFC3339),
		"target_size":    init.TargetSize,
		"seed":           fmt.Sprintf("%d", init.Seed),
		"init_id":        initID,
	}

	for _, key := range slices.Sorted(maps.Keys(metadata)) {
		if _, err := db.Exec(ctx, upsertMetadataSQL, key, metadata[key]); err != nil {
			return "", fmt.Errorf("failed to save metadata %s: %w", key, err)
		}
	}

	logging.Debug().
		Str("app", init.App).
		Str("target_size", init.TargetSize).
		Str("init_id", initID).
		Msg("Saved metadata")

	return initID, nil
}

// Querier runs queries. *pgxpool.Pool, *pgx.Conn and pgx.Tx satisfy it.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// GetAllMetadata retrieves all metadata as a map.
func GetAllMetadata(ctx context.Context, db Querier) (map[string]string, error) {
	rows, err := db.Query(ctx, `SELECT key, value FROM realty_metadata`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	metadata := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		metadata[key] = value
	}
	return metadata, rows.Err()
}

// DropMetadata drops the metadata table.
func DropMetadata(ctx context.Context, db Execer) error {
	_, err := db.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", metadataTable))
	return err
}
