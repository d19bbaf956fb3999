package brokerage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// assign stores value into dest the way a driver scan would for the
// handful of destination types the package uses.
func assign(dest, value any) error {
	if s, ok := dest.(sql.Scanner); ok {
		return s.Scan(value)
	}

	target := reflect.ValueOf(dest).Elem()
	if value == nil {
		target.Set(reflect.Zero(target.Type()))
		return nil
	}

	v := reflect.ValueOf(value)
	if target.Kind() == reflect.Pointer {
		p := reflect.New(target.Type().Elem())
		p.Elem().Set(v.Convert(target.Type().Elem()))
		target.Set(p)
		return nil
	}
	if !v.Type().ConvertibleTo(target.Type()) {
		return fmt.Errorf("cannot scan %T into %s", value, target.Type())
	}
	target.Set(v.Convert(target.Type()))
	return nil
}

func scanValues(values []any, dest []any) error {
	if len(dest) != len(values) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(values))
	}
	for i := range dest {
		if err := assign(dest[i], values[i]); err != nil {
			return fmt.Errorf("scan column %d: %w", i, err)
		}
	}
	return nil
}

type fakeRows struct {
	rows   [][]any
	idx    int
	err    error
	closed bool
}

func newFakeRows(rows ...[]any) *fakeRows {
	return &fakeRows{rows: rows, idx: -1}
}

func (r *fakeRows) Close()     { r.closed = true }
func (r *fakeRows) Err() error { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag {
	return pgconn.NewCommandTag("SELECT " + strconv.Itoa(len(r.rows)))
}
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Next() bool {
	if r.closed {
		return false
	}
	r.idx++
	return r.idx < len(r.rows)
}
func (r *fakeRows) Scan(dest ...any) error  { return scanValues(r.rows[r.idx], dest) }
func (r *fakeRows) Values() ([]any, error) { return r.rows[r.idx], nil }
func (r *fakeRows) RawValues() [][]byte    { return nil }
func (r *fakeRows) Conn() *pgx.Conn        { return nil }

type fakeRow struct {
	vals []any
	err  error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return scanValues(r.vals, dest)
}

type queryCall struct {
	sql  string
	args []any
}

// stubQuerier hands out queued result sets in order and records every
// query. Once the queue is empty it returns empty results.
type stubQuerier struct {
	results []*fakeRows
	rows    []fakeRow
	calls   []queryCall
	err     error
}

func (q *stubQuerier) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.calls = append(q.calls, queryCall{sql: sql, args: args})
	if q.err != nil {
		return nil, q.err
	}
	if len(q.results) == 0 {
		return newFakeRows(), nil
	}
	next := q.results[0]
	q.results = q.results[1:]
	return next, nil
}

func (q *stubQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	q.calls = append(q.calls, queryCall{sql: sql, args: args})
	if len(q.rows) == 0 {
		return fakeRow{err: pgx.ErrNoRows}
	}
	next := q.rows[0]
	q.rows = q.rows[1:]
	return next
}

func (q *stubQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	q.calls = append(q.calls, queryCall{sql: sql, args: args})
	return pgconn.NewCommandTag("SELECT 0"), nil
}

func (q *stubQuerier) Begin(context.Context) (pgx.Tx, error) {
	return nil, errors.New("stubQuerier does not begin transactions")
}

// stubTx records statements run inside one transaction.
type stubTx struct {
	rows     []fakeRow
	execTags []string
	execErr  error
	execs    []queryCall

	commitErr  error
	committed  bool
	rolledBack bool
}

func (t *stubTx) Begin(context.Context) (pgx.Tx, error) { return t, nil }
func (t *stubTx) Commit(context.Context) error {
	if t.commitErr != nil {
		return t.commitErr
	}
	t.committed = true
	return nil
}
func (t *stubTx) Rollback(context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}
func (t *stubTx) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *stubTx) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }
func (t *stubTx) LargeObjects() pgx.LargeObjects                         { return pgx.LargeObjects{} }
func (t *stubTx) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *stubTx) Conn() *pgx.Conn { return nil }

func (t *stubTx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	t.execs = append(t.execs, queryCall{sql: sql, args: args})
	if t.execErr != nil {
		return pgconn.CommandTag{}, t.execErr
	}
	tag := "UPDATE 1"
	if n := len(t.execs) - 1; n < len(t.execTags) {
		tag = t.execTags[n]
	}
	return pgconn.NewCommandTag(tag), nil
}

func (t *stubTx) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return newFakeRows(), nil
}

func (t *stubTx) QueryRow(context.Context, string, ...any) pgx.Row {
	if len(t.rows) == 0 {
		return fakeRow{err: pgx.ErrNoRows}
	}
	next := t.rows[0]
	t.rows = t.rows[1:]
	return next
}

type stubBeginner struct {
	tx  *stubTx
	err error
}

func (b *stubBeginner) Begin(context.Context) (pgx.Tx, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.tx, nil
}
