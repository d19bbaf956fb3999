//-------------------------------------------------------------------------
//
// pgEdge Realty
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package datagen

import (
	"github.com/dustin/go-humanize"

	"github.com/pgEdge/pgedge-realty/internal/logging"
)

// BatchInsertConfig configures batch insert behavior.
type BatchInsertConfig struct {
	// BatchSize is the number of rows per INSERT statement.
	BatchSize int

	// ProgressInterval is how often to log progress (in rows).
	ProgressInterval int64
}

// DefaultBatchConfig returns default batch insert configuration.
func DefaultBatchConfig() BatchInsertConfig {
	return BatchInsertConfig{
		BatchSize:        1000,
		ProgressInterval: 100000,
	}
}

// ProgressReporter logs generation progress for one table.
type ProgressReporter struct {
	table    string
	total    int64
	current  int64
	interval int64
}

// NewProgressReporter creates a progress reporter. A non-positive interval
// disables intermediate progress lines.
func NewProgressReporter(table string, total, interval int64) *ProgressReporter {
	return &ProgressReporter{
		table:    table,
		total:    total,
		interval: interval,
	}
}

// Rows returns the number of rows reported so far.
func (p *ProgressReporter) Rows() int64 {
	return p.current
}

// Update records inserted rows and logs when an interval boundary is crossed.
func (p *ProgressReporter) Update(rows int64) {
	before := p.current
	p.current += rows
	if p.interval <= 0 || p.current/p.interval == before/p.interval {
		return
	}

	ev := logging.Info().
		Str("table", p.table).
		Int64("rows", p.current)
	if p.total > 0 {
		ev = ev.Int64("total", p.total).
			Float64("percent", float64(p.current)/float64(p.total)*100)
	}
	ev.Msg("Generating data")
}

// Done logs completion.
func (p *ProgressReporter) Done() {
	logging.Info().
		Str("table", p.table).
		Int64("rows", p.current).
		Msg("Table complete")
}

// TableSizeInfo describes how a table grows with the scale factor.
type TableSizeInfo struct {
	Name        string
	BaseRowSize int64   // average row size in bytes
	ScaleRatio  float64 // rows per scale unit
	IndexFactor float64 // index overhead multiplier; zero means 1.3
}

func (t TableSizeInfo) bytesPerRow() float64 {
	factor := t.IndexFactor
	if factor == 0 {
		factor = 1.3
	}
	return float64(t.BaseRowSize) * factor
}

// SizeCalculator turns a target database size into per-table row counts.
type SizeCalculator struct {
	tables []TableSizeInfo
}

// NewSizeCalculator creates a new size calculator.
func NewSizeCalculator(tables []TableSizeInfo) *SizeCalculator {
	return &SizeCalculator{tables: tables}
}

// CalculateRowCounts returns row counts that approximately fill targetSize
// bytes. Every table gets at least one row.
func (c *SizeCalculator) CalculateRowCounts(targetSize int64) map[string]int64 {
	var perUnit float64
	for _, t := range c.tables {
		perUnit += t.bytesPerRow() * t.ScaleRatio
	}

	counts := make(map[string]int64, len(c.tables))
	if perUnit == 0 {
		return counts
	}

	scale := float64(targetSize) / perUnit
	for _, t := range c.tables {
		counts[t.Name] = max(1, int64(scale*t.ScaleRatio))
	}
	return counts
}

// EstimatedSize returns the estimated size in bytes for the row counts.
func (c *SizeCalculator) EstimatedSize(rowCounts map[string]int64) int64 {
	var total float64
	for _, t := range c.tables {
		total += float64(rowCounts[t.Name]) * t.bytesPerRow()
	}
	return int64(total)
}

// FormatSize formats a byte count using binary units, e.g. "5.0 GiB".
func FormatSize(bytes int64) string {
	if bytes < 0 {
		return "-" + humanize.IBytes(uint64(-bytes))
	}
	return humanize.IBytes(uint64(bytes))
}
