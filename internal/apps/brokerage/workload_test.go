package brokerage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-realty/internal/apps"
)

func mixShares(t *testing.T, ratio float64) (reads, writes int) {
	t.Helper()
	for _, q := range workloadMix(ratio) {
		require.Positive(t, q.Weight, q.Name)
		switch q.Type {
		case "read":
			reads += q.Weight
		case "write":
			writes += q.Weight
		default:
			t.Fatalf("unexpected type %q for %s", q.Type, q.Name)
		}
	}
	return reads, writes
}

func TestWorkloadMix_WriteRatio(t *testing.T) {
	reads, writes := mixShares(t, DefaultWriteRatio)
	assert.InDelta(t, 900, reads, 10)
	assert.InDelta(t, 100, writes, 2)

	reads, writes = mixShares(t, 0)
	assert.Positive(t, reads)
	assert.Zero(t, writes)

	reads, writes = mixShares(t, 1)
	assert.Zero(t, reads)
	assert.InDelta(t, 1000, writes, 2)

	_, writes = mixShares(t, 7)
	assert.InDelta(t, 1000, writes, 2, "ratio is clamped")

	assert.InDelta(t, 0.25, apps.Ratio(workloadMix(0.25), apps.KindWrite), 0.01)
	assert.Zero(t, apps.Ratio(nil, apps.KindRead))
}

func TestWorkloadMix_CoversCatalog(t *testing.T) {
	names := map[string]bool{}
	for _, q := range workloadMix(0.5) {
		names[q.Name] = true
		assert.NotEmpty(t, q.Description, q.Name)
	}
	for _, def := range Catalog() {
		assert.True(t, names[def.Name], def.Name)
	}
	assert.True(t, names[OpManagerLookup])
	assert.True(t, names[OpUpdateTerms])
	assert.True(t, names[OpRecordTransaction])
}

func TestWorkload_ExecuteOnEmptyDatabase(t *testing.T) {
	db := &stubQuerier{rows: []fakeRow{{vals: []any{int64(0), int64(0), int64(0)}}}}
	w := NewWorkload(DefaultParams(), 0.5)

	known := map[string]bool{}
	for _, q := range w.Mix() {
		known[q.Name] = true
	}

	for i := 0; i < 200; i++ {
		result := w.Execute(context.Background(), db)
		require.NoError(t, result.Error, result.QueryName)
		assert.True(t, known[result.QueryName], result.QueryName)
		assert.Zero(t, result.RowsAffected)
	}
	require.NotNil(t, w.shape)
	assert.Empty(t, w.shape.departments)
}

func TestWorkload_LoadShapeError(t *testing.T) {
	w := NewWorkload(DefaultParams(), DefaultWriteRatio)
	result := w.Execute(context.Background(), &stubQuerier{})
	assert.Error(t, result.Error)
	assert.Equal(t, "load_shape", result.QueryName)
	assert.Nil(t, w.shape, "a failed load is retried on the next call")
}

func TestApp(t *testing.T) {
	app := New(DefaultParams(), DefaultWriteRatio)
	assert.Equal(t, "brokerage", app.Name())
	assert.NotEmpty(t, app.Description())
	assert.Equal(t, workloadMix(DefaultWriteRatio), app.GetQueries())
}
