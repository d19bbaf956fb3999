//-------------------------------------------------------------------------
//
// pgEdge Realty
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package realty

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Ranked pairs an item with its competition rank.
type Ranked[T any] struct {
	Rank int
	Item T
}

// CompetitionRank orders items by score, highest first, and assigns
// standard competition ranks: equal scores share a rank and the next
// distinct score is ranked one past the number of items above it, so
// scores [100, 100, 80] rank [1, 1, 3]. tiebreak orders items with equal
// scores and may be nil.
func CompetitionRank[T any](items []T, score func(T) decimal.Decimal, tiebreak func(a, b T) int) []Ranked[T] {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b T) int {
		if c := score(b).Cmp(score(a)); c != 0 {
			return c
		}
		if tiebreak != nil {
			return tiebreak(a, b)
		}
		return 0
	})

	ranked := make([]Ranked[T], len(sorted))
	for i, item := range sorted {
		rank := i + 1
		if i > 0 && score(item).Equal(score(sorted[i-1])) {
			rank = ranked[i-1].Rank
		}
		ranked[i] = Ranked[T]{Rank: rank, Item: item}
	}
	return ranked
}

// WithinCutoff keeps ranked items whose rank is <= cutoff. Ties at the
// cutoff are all kept, so the result may be longer than cutoff. A cutoff
// below 1 keeps everything.
func WithinCutoff[T any](ranked []Ranked[T], cutoff int) []Ranked[T] {
	if cutoff < 1 {
		return ranked
	}
	out := make([]Ranked[T], 0, min(len(ranked), cutoff))
	for _, r := range ranked {
		if r.Rank > cutoff {
			break
		}
		out = append(out, r)
	}
	return out
}
