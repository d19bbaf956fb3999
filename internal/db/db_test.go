package db

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolConfig_Defaults(t *testing.T) {
	cfg, err := PoolConfig("postgres://realty@localhost:5432/realty", 0)
	require.NoError(t, err)

	assert.Equal(t, int32(DefaultMaxConns), cfg.MaxConns)
	assert.Equal(t, int32(DefaultMinConns), cfg.MinConns)
	assert.Equal(t, DefaultMaxConnLifetime, cfg.MaxConnLifetime)
	assert.Equal(t, ApplicationName, cfg.ConnConfig.RuntimeParams["application_name"])
	assert.Equal(t, "realty", cfg.ConnConfig.Database)
}

func TestPoolConfig_SmallPool(t *testing.T) {
	cfg, err := PoolConfig("postgres://realty@localhost:5432/realty", 1)
	require.NoError(t, err)
	assert.Equal(t, int32(1), cfg.MaxConns)
	assert.Equal(t, int32(1), cfg.MinConns)
}

func TestPoolConfig_KeepsApplicationName(t *testing.T) {
	cfg, err := PoolConfig("postgres://realty@localhost:5432/realty?application_name=reports", 5)
	require.NoError(t, err)
	assert.Equal(t, "reports", cfg.ConnConfig.RuntimeParams["application_name"])
}

func TestPoolConfig_BadConnString(t *testing.T) {
	_, err := PoolConfig("postgres://realty@localhost:notaport/realty", 5)
	assert.Error(t, err)
}

type recordingExecer struct {
	statements []string
	args       [][]any
}

func (r *recordingExecer) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	r.statements = append(r.statements, sql)
	r.args = append(r.args, args)
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func TestSaveMetadata(t *testing.T) {
	rec := &recordingExecer{}
	id, err := SaveMetadata(context.Background(), rec, Init{App: "brokerage", TargetSize: "50MB", Seed: 42})
	require.NoError(t, err)

	_, err = uuid.Parse(id)
	assert.NoError(t, err, "init id is a uuid")

	require.NotEmpty(t, rec.statements)
	assert.Contains(t, rec.statements[0], "CREATE TABLE IF NOT EXISTS realty_metadata")

	saved := map[string]any{}
	for i, sql := range rec.statements[1:] {
		assert.True(t, strings.Contains(sql, "ON CONFLICT"))
		args := rec.args[i+1]
		saved[args[0].(string)] = args[1]
	}
	assert.Equal(t, "brokerage", saved["app"])
	assert.Equal(t, "50MB", saved["target_size"])
	assert.Equal(t, "42", saved["seed"])
	assert.Equal(t, id, saved["init_id"])
	assert.Contains(t, saved, "version")
	assert.Contains(t, saved, "initialized_at")
}
