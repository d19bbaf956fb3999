package brokerage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-realty/internal/realty"
)

func TestSyncListingStatus(t *testing.T) {
	tests := []struct {
		name       string
		old, new   realty.Terms
		wantStatus realty.ListingStatus
		wantExec   bool
	}{
		{"new sale", "pending", "sold", realty.StatusSold, true},
		{"insert as sold", "", "sold", realty.StatusSold, true},
		{"sold any case", "pending", " SOLD ", realty.StatusSold, true},
		{"sold again", "sold", "sold", realty.StatusSold, true},
		{"sale reverted", "sold", "pending", realty.StatusAvailable, true},
		{"sale cancelled", "Sold", "cancelled", realty.StatusAvailable, true},
		{"unrelated change", "pending", "lease", "", false},
		{"insert as lease", "", "lease", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := &stubTx{}
			result, err := SyncListingStatus(context.Background(), tx, realty.TermsChange{
				PropertyID: 7, Old: tt.old, New: tt.new,
			})
			require.NoError(t, err)

			assert.Equal(t, int64(7), result.PropertyID)
			assert.Equal(t, tt.wantExec, result.Applied)
			assert.Equal(t, tt.wantStatus, result.Status)
			if !tt.wantExec {
				assert.Empty(t, tx.execs)
				return
			}
			require.Len(t, tx.execs, 1)
			assert.Contains(t, tx.execs[0].sql, "UPDATE property_listings")
			assert.Equal(t, []any{int64(7), tt.wantStatus.String()}, tx.execs[0].args)
			assert.Equal(t, int64(1), result.RowsAffected)
		})
	}
}

func TestSyncListingStatus_NoListingIsNotAnError(t *testing.T) {
	tx := &stubTx{execTags: []string{"UPDATE 0"}}
	result, err := SyncListingStatus(context.Background(), tx, realty.TermsChange{PropertyID: 99, New: "sold"})
	require.NoError(t, err)
	assert.True(t, result.Applied)
	assert.Zero(t, result.RowsAffected)
}

func TestSyncListingStatus_ExecError(t *testing.T) {
	boom := errors.New("boom")
	tx := &stubTx{execErr: boom}
	_, err := SyncListingStatus(context.Background(), tx, realty.TermsChange{PropertyID: 1, New: "sold"})
	assert.ErrorIs(t, err, boom)
}

func TestUpdateTransactionTerms_MarksSold(t *testing.T) {
	tx := &stubTx{rows: []fakeRow{{vals: []any{"pending", int64(12)}}}}
	store := NewStore(&stubBeginner{tx: tx})

	result, err := store.UpdateTransactionTerms(context.Background(), 5, "  sold ")
	require.NoError(t, err)

	require.Len(t, tx.execs, 2)
	assert.Contains(t, tx.execs[0].sql, "UPDATE transactions")
	assert.Equal(t, []any{int64(5), "sold"}, tx.execs[0].args, "terms are stored trimmed")
	assert.Equal(t, []any{int64(12), "sold"}, tx.execs[1].args)

	assert.Equal(t, realty.StatusSold, result.Status)
	assert.Equal(t, int64(12), result.PropertyID)
	assert.True(t, tx.committed)
}

func TestUpdateTransactionTerms_RevertMakesAvailable(t *testing.T) {
	tx := &stubTx{rows: []fakeRow{{vals: []any{"Sold", int64(3)}}}}
	result, err := NewStore(&stubBeginner{tx: tx}).UpdateTransactionTerms(context.Background(), 8, "pending")
	require.NoError(t, err)

	assert.Equal(t, realty.StatusAvailable, result.Status)
	require.Len(t, tx.execs, 2)
	assert.Equal(t, []any{int64(3), "available"}, tx.execs[1].args)
	assert.True(t, tx.committed)
}

func TestUpdateTransactionTerms_UnrelatedChangeLeavesListing(t *testing.T) {
	tx := &stubTx{rows: []fakeRow{{vals: []any{"pending", int64(3)}}}}
	result, err := NewStore(&stubBeginner{tx: tx}).UpdateTransactionTerms(context.Background(), 8, "lease")
	require.NoError(t, err)

	assert.False(t, result.Applied)
	assert.Len(t, tx.execs, 1, "only the terms update runs")
	assert.True(t, tx.committed)
}

func TestUpdateTransactionTerms_NotFound(t *testing.T) {
	tx := &stubTx{}
	_, err := NewStore(&stubBeginner{tx: tx}).UpdateTransactionTerms(context.Background(), 404, "sold")

	assert.ErrorIs(t, err, ErrTransactionNotFound)
	assert.Empty(t, tx.execs)
	assert.False(t, tx.committed)
	assert.True(t, tx.rolledBack)
}

func TestUpdateTransactionTerms_HookFailureRollsBack(t *testing.T) {
	boom := errors.New("boom")
	tx := &stubTx{rows: []fakeRow{{vals: []any{"pending", int64(3)}}}, execErr: boom}
	_, err := NewStore(&stubBeginner{tx: tx}).UpdateTransactionTerms(context.Background(), 8, "sold")

	assert.ErrorIs(t, err, boom)
	assert.False(t, tx.committed)
	assert.True(t, tx.rolledBack)
}

func TestUpdateTransactionTerms_CommitError(t *testing.T) {
	boom := errors.New("serialization failure")
	tx := &stubTx{rows: []fakeRow{{vals: []any{"pending", int64(3)}}}, commitErr: boom}
	_, err := NewStore(&stubBeginner{tx: tx}).UpdateTransactionTerms(context.Background(), 8, "sold")
	assert.ErrorIs(t, err, boom)
}

func TestUpdateTransactionTerms_BeginError(t *testing.T) {
	boom := errors.New("no connection")
	_, err := NewStore(&stubBeginner{err: boom}).UpdateTransactionTerms(context.Background(), 8, "sold")
	assert.ErrorIs(t, err, boom)
}

func TestUpdateTransactionTerms_LockError(t *testing.T) {
	boom := errors.New("lock timeout")
	tx := &stubTx{rows: []fakeRow{{err: boom}}}
	_, err := NewStore(&stubBeginner{tx: tx}).UpdateTransactionTerms(context.Background(), 8, "sold")

	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrTransactionNotFound)
	assert.NotErrorIs(t, err, pgx.ErrNoRows)
}

func TestRecordTransaction_Sold(t *testing.T) {
	tx := &stubTx{rows: []fakeRow{{vals: []any{int64(42)}}}}
	date := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	id, result, err := NewStore(&stubBeginner{tx: tx}).RecordTransaction(context.Background(), NewTransaction{
		EmployeeID:   1,
		PropertyID:   9,
		Date:         date,
		Amount:       decimal.RequireFromString("250000.00"),
		BrokerageFee: decimal.RequireFromString("7500.00"),
		Terms:        " sold",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(42), id)
	assert.Equal(t, realty.StatusSold, result.Status)
	require.Len(t, tx.execs, 1)
	assert.Equal(t, []any{int64(9), "sold"}, tx.execs[0].args)
	assert.True(t, tx.committed)
}

func TestRecordTransaction_NotSold(t *testing.T) {
	tx := &stubTx{rows: []fakeRow{{vals: []any{int64(43)}}}}
	id, result, err := NewStore(&stubBeginner{tx: tx}).RecordTransaction(context.Background(), NewTransaction{
		EmployeeID: 1,
		PropertyID: 9,
		Date:       time.Now(),
		Terms:      "pending",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(43), id)
	assert.False(t, result.Applied)
	assert.Empty(t, tx.execs)
	assert.True(t, tx.committed)
}

func TestRecordTransaction_InsertError(t *testing.T) {
	boom := errors.New("foreign key violation")
	tx := &stubTx{rows: []fakeRow{{err: boom}}}
	_, _, err := NewStore(&stubBeginner{tx: tx}).RecordTransaction(context.Background(), NewTransaction{Terms: "sold"})

	assert.ErrorIs(t, err, boom)
	assert.Empty(t, tx.execs)
	assert.False(t, tx.committed)
}
