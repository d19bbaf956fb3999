//-------------------------------------------------------------------------
//
// pgEdge Realty
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package brokerage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-realty/internal/logging"
	"github.com/pgEdge/pgedge-realty/internal/realty"
)

// ErrTransactionNotFound is returned when a terms update names a
// transaction that does not exist.
var ErrTransactionNotFound = errors.New("transaction not found")

// Execer is the write surface the status hook needs. pgx.Tx satisfies it.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Beginner opens database transactions. *pgxpool.Pool and *pgx.Conn
// satisfy it.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// SyncResult reports what the status hook did.
type SyncResult struct {
	PropertyID int64
	// Applied is true when the rule produced a status write.
	Applied bool
	// Status is the status written, empty when nothing was applied.
	Status realty.ListingStatus
	// RowsAffected is 0 when the property has no listing row.
	RowsAffected int64
}

const updateListingStatusSQL = `
    UPDATE property_listings
    SET status = $2
    WHERE property_id = $1
`

// SyncListingStatus mirrors a transaction terms change onto the property's
// listing status. It must be called with the same transaction that wrote
// the terms so readers never observe the two out of step. A property
// without a listing row is a silent no-op.
func SyncListingStatus(ctx context.Context, tx Execer, change realty.TermsChange) (SyncResult, error) {
	result := SyncResult{PropertyID: change.PropertyID}

	status, ok := realty.NextListingStatus(change)
	if !ok {
		return result, nil
	}

	tag, err := tx.Exec(ctx, updateListingStatusSQL, change.PropertyID, status.String())
	if err != nil {
		return result, fmt.Errorf("sync listing status for property %d: %w", change.PropertyID, err)
	}

	result.Applied = true
	result.Status = status
	result.RowsAffected = tag.RowsAffected()

	if result.RowsAffected == 0 {
		logging.Debug().
			Int64("property_id", change.PropertyID).
			Str("status", status.String()).
			Msg("No listing for property, status sync skipped")
	}
	return result, nil
}

// Store is the write path for transactions. Every write runs the listing
// status hook inside its own database transaction.
type Store struct {
	db Beginner
}

// NewStore creates a Store.
func NewStore(db Beginner) *Store {
	return &Store{db: db}
}

// NewTransaction is the input for RecordTransaction.
type NewTransaction struct {
	EmployeeID   int64
	PropertyID   int64
	Date         time.Time
	Amount       decimal.Decimal
	BrokerageFee decimal.Decimal
	Terms        realty.Terms
}

const selectTransactionForUpdateSQL = `
    SELECT terms, property_id
    FROM transactions
    WHERE transaction_id = $1
    FOR UPDATE
`

const updateTransactionTermsSQL = `
    UPDATE transactions
    SET terms = $2, updated_at = NOW()
    WHERE transaction_id = $1
`

const insertTransactionSQL = `
    INSERT INTO transactions (employee_id, property_id, transaction_date,
                              transaction_amount, brokerage_fee, terms)
    VALUES ($1, $2, $3, $4, $5, $6)
    RETURNING transaction_id
`

// UpdateTransactionTerms sets a transaction's terms and syncs the listing
// status in the same database transaction.
func (s *Store) UpdateTransactionTerms(ctx context.Context, transactionID int64, terms realty.Terms) (SyncResult, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return SyncResult{}, fmt.Errorf("begin terms update: %w", err)
	}
	defer tx.Rollback(ctx)

	var oldTerms string
	var propertyID int64
	err = tx.QueryRow(ctx, selectTransactionForUpdateSQL, transactionID).Scan(&oldTerms, &propertyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SyncResult{}, fmt.Errorf("transaction %d: %w", transactionID, ErrTransactionNotFound)
		}
		return SyncResult{}, fmt.Errorf("lock transaction %d: %w", transactionID, err)
	}

	newTerms := realty.Terms(strings.TrimSpace(terms.String()))
	if _, err := tx.Exec(ctx, updateTransactionTermsSQL, transactionID, newTerms.String()); err != nil {
		return SyncResult{}, fmt.Errorf("update terms of transaction %d: %w", transactionID, err)
	}

	result, err := SyncListingStatus(ctx, tx, realty.TermsChange{
		PropertyID: propertyID,
		Old:        realty.Terms(oldTerms),
		New:        newTerms,
	})
	if err != nil {
		return SyncResult{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return SyncResult{}, fmt.Errorf("commit terms update: %w", err)
	}

	logging.Debug().
		Int64("transaction_id", transactionID).
		Str("old_terms", oldTerms).
		Str("new_terms", newTerms.String()).
		Bool("status_applied", result.Applied).
		Str("status", result.Status.String()).
		Msg("Updated transaction terms")

	return result, nil
}

// RecordTransaction inserts a transaction and syncs the listing status in
// the same database transaction. It returns the new transaction id.
func (s *Store) RecordTransaction(ctx context.Context, t NewTransaction) (int64, SyncResult, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, SyncResult{}, fmt.Errorf("begin record transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	terms := realty.Terms(strings.TrimSpace(t.Terms.String()))

	var id int64
	err = tx.QueryRow(ctx, insertTransactionSQL,
		t.EmployeeID, t.PropertyID, t.Date, t.Amount, t.BrokerageFee, terms.String(),
	).Scan(&id)
	if err != nil {
		return 0, SyncResult{}, fmt.Errorf("insert transaction: %w", err)
	}

	result, err := SyncListingStatus(ctx, tx, realty.TermsChange{
		PropertyID: t.PropertyID,
		New:        terms,
	})
	if err != nil {
		return 0, SyncResult{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, SyncResult{}, fmt.Errorf("commit record transaction: %w", err)
	}
	return id, result, nil
}
