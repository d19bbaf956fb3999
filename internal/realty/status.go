//-------------------------------------------------------------------------
//
// pgEdge Realty
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package realty holds the domain rules of the brokerage analytics layer:
// transaction terms, listing status, ratings, ranking and the financial
// arithmetic shared by the reports. Nothing in here touches the database.
package realty

import "strings"

// Terms is the free-text status of a transaction. Only TermsSold carries
// meaning for listing status; every other value is kept as written.
type Terms string

// TermsSold marks a transaction as a completed sale.
const TermsSold Terms = "sold"

// ParseTerms normalises a terms value for comparison.
func ParseTerms(s string) Terms {
	return Terms(strings.ToLower(strings.TrimSpace(s)))
}

// IsSold reports whether the terms mark a completed sale.
func (t Terms) IsSold() bool {
	return ParseTerms(string(t)) == TermsSold
}

// String returns the terms text.
func (t Terms) String() string {
	return string(t)
}

// ListingStatus is the market availability of a property listing.
type ListingStatus string

// Known listing statuses. Values read from storage that are not listed
// here are preserved as-is.
const (
	StatusAvailable ListingStatus = "available"
	StatusSold      ListingStatus = "sold"
	StatusRented    ListingStatus = "rented"
	StatusPending   ListingStatus = "pending"
	StatusOffMarket ListingStatus = "off_market"
)

// ListingStatuses lists the known statuses in display order.
var ListingStatuses = []ListingStatus{
	StatusAvailable,
	StatusPending,
	StatusSold,
	StatusRented,
	StatusOffMarket,
}

// ParseListingStatus normalises a stored status value.
func ParseListingStatus(s string) ListingStatus {
	return ListingStatus(strings.ToLower(strings.TrimSpace(s)))
}

// Known reports whether the status is one of ListingStatuses.
func (s ListingStatus) Known() bool {
	for _, known := range ListingStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// String returns the status text.
func (s ListingStatus) String() string {
	return string(s)
}

// TermsChange describes one write to a transaction's terms.
// Old is empty for a newly inserted transaction.
type TermsChange struct {
	PropertyID int64
	Old        Terms
	New        Terms
}

// NextListingStatus applies the listing mirror rule to a terms change.
// New terms of sold always mark the listing sold. Moving away from sold
// puts the listing back on the market. Anything else leaves the listing
// alone and returns false.
func NextListingStatus(change TermsChange) (ListingStatus, bool) {
	switch {
	case change.New.IsSold():
		return StatusSold, true
	case change.Old.IsSold():
		return StatusAvailable, true
	default:
		return "", false
	}
}
