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
	"time"

	"github.com/shopspring/decimal"
)

// PayrollCost is salary plus bonus, with a missing bonus counted as zero.
func PayrollCost(salary decimal.Decimal, bonus decimal.NullDecimal) decimal.Decimal {
	if !bonus.Valid {
		return salary
	}
	return salary.Add(bonus.Decimal)
}

// NetProfit is revenue - (payroll + expenses).
func NetProfit(revenue, payroll, expenses decimal.Decimal) decimal.Decimal {
	return revenue.Sub(payroll.Add(expenses))
}

// ReturnOnSpend divides proceeds by spend. The second result is false
// when spend is zero.
func ReturnOnSpend(proceeds, spend decimal.Decimal) (decimal.Decimal, bool) {
	if spend.IsZero() {
		return decimal.Zero, false
	}
	return proceeds.DivRound(spend, 2), true
}

// DaysOnMarket counts whole calendar days from listing to sale.
// A sale dated before the listing yields a negative count.
func DaysOnMarket(listed, sold time.Time) int {
	l := civilDate(listed)
	s := civilDate(sold)
	return int(s.Sub(l).Hours() / 24)
}

// Quarter returns the calendar quarter (1-4) of t.
func Quarter(t time.Time) int {
	return (int(t.Month())-1)/3 + 1
}

func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
