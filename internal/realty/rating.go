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
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// NotRated is the sentinel stored for feedback without a score.
const NotRated = "Not Rated"

// Rating is a parsed score. The zero value is unrated.
type Rating struct {
	value int
	rated bool
}

// Unrated is the rating for missing, sentinel or unparseable input.
var Unrated = Rating{}

// NewRating returns a rated score.
func NewRating(v int) Rating {
	return Rating{value: v, rated: true}
}

// RatingPattern matches stored ratings that carry a score: an optional
// minus sign and at most nine digits, surrounded by optional blanks. The
// same pattern is passed to PostgreSQL's ~ operator by queries that test
// ratings in SQL, so both sides agree on what counts as rated.
const RatingPattern = `^[ \t\r\n]*-?[0-9]{1,9}[ \t\r\n]*$`

var ratingRE = regexp.MustCompile(RatingPattern)

// ParseRating parses a stored rating. NotRated, empty text and anything
// RatingPattern rejects all yield Unrated.
func ParseRating(s string) Rating {
	if !ratingRE.MatchString(s) {
		return Unrated
	}
	v, err := strconv.Atoi(strings.Trim(s, " \t\r\n"))
	if err != nil {
		return Unrated
	}
	return NewRating(v)
}

// Rated reports whether the rating carries a score.
func (r Rating) Rated() bool {
	return r.rated
}

// Value returns the score and whether one is present.
func (r Rating) Value() (int, bool) {
	return r.value, r.rated
}

// AtLeast reports whether the rating is present and >= threshold.
// An unrated value never meets a threshold.
func (r Rating) AtLeast(threshold int) bool {
	return r.rated && r.value >= threshold
}

// String returns the score or the NotRated sentinel.
func (r Rating) String() string {
	if !r.rated {
		return NotRated
	}
	return strconv.Itoa(r.value)
}

// RatingTally accumulates ratings for an average. Unrated values are
// counted separately and never enter the average.
type RatingTally struct {
	sum     int64
	rated   int64
	unrated int64
}

// Add records n occurrences of r.
func (t *RatingTally) Add(r Rating, n int64) {
	if v, ok := r.Value(); ok {
		t.sum += int64(v) * n
		t.rated += n
		return
	}
	t.unrated += n
}

// Rated returns the number of scored ratings.
func (t RatingTally) Rated() int64 { return t.rated }

// Unrated returns the number of unscored ratings.
func (t RatingTally) Unrated() int64 { return t.unrated }

// Average returns the mean of the scored ratings rounded to two places.
// The second result is false when nothing was scored.
func (t RatingTally) Average() (decimal.Decimal, bool) {
	if t.rated == 0 {
		return decimal.Zero, false
	}
	return decimal.NewFromInt(t.sum).
		DivRound(decimal.NewFromInt(t.rated), 2), true
}

// AverageRatings is a convenience over RatingTally for raw stored values.
func AverageRatings(values []string) (decimal.Decimal, bool) {
	var t RatingTally
	for _, v := range values {
		t.Add(ParseRating(v), 1)
	}
	return t.Average()
}
