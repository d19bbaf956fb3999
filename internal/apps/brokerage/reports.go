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
	"cmp"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-realty/internal/apps"
	"github.com/pgEdge/pgedge-realty/internal/realty"
)

// ErrDepartmentRequired is returned by SalesRanking when no department is
// given.
var ErrDepartmentRequired = errors.New("department is required")

// Report defaults.
const (
	DefaultTopPerformerCutoff       = 10
	DefaultTopPerformerWindowDays   = 365
	DefaultUnderperformerMonths     = 6
	DefaultRatingThreshold          = 3
	DefaultMonthlySalesWindowMonths = 12
)

// soldTerms matches a sold transaction regardless of case or padding.
const soldTerms = `lower(btrim(t.terms)) = 'sold'`

// Reporter runs the brokerage reports. Every report is a read of current
// table state with no side effects.
type Reporter struct {
	db  apps.Querier
	now func() time.Time
}

// NewReporter creates a Reporter that reads through db.
func NewReporter(db apps.Querier) *Reporter {
	return &Reporter{db: db, now: time.Now}
}

func (r *Reporter) currentYear() int {
	return r.now().UTC().Year()
}

func fullName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}

// EmployeeTotal is one employee's summed amount, before ranking.
type EmployeeTotal struct {
	EmployeeID int64
	Name       string
	Department string
	Total      decimal.Decimal
	Records    int64
}

// RankedEmployee is an EmployeeTotal with its competition rank.
type RankedEmployee struct {
	Rank int
	EmployeeTotal
}

func rankEmployees(totals []EmployeeTotal) []realty.Ranked[EmployeeTotal] {
	return realty.CompetitionRank(totals,
		func(t EmployeeTotal) decimal.Decimal { return t.Total },
		func(a, b EmployeeTotal) int { return cmp.Compare(a.EmployeeID, b.EmployeeID) })
}

func flattenRanks(ranked []realty.Ranked[EmployeeTotal]) []RankedEmployee {
	out := make([]RankedEmployee, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, RankedEmployee{Rank: r.Rank, EmployeeTotal: r.Item})
	}
	return out
}

func scanEmployeeTotal(row pgx.CollectableRow) (EmployeeTotal, error) {
	var t EmployeeTotal
	var first, last string
	err := row.Scan(&t.EmployeeID, &first, &last, &t.Department, &t.Total, &t.Records)
	t.Name = fullName(first, last)
	return t, err
}

const topPerformersSQL = `
    SELECT e.employee_id, e.first_name, e.last_name, e.department,
           SUM(p.performance_amount), COUNT(*)
    FROM employees e
    JOIN employee_performance p ON p.employee_id = e.employee_id
    WHERE p.performance_date >= $1 AND p.performance_date < $2
    GROUP BY e.employee_id, e.first_name, e.last_name, e.department
`

// TopPerformers ranks employees by performance summed over the trailing
// windowDays and keeps every employee ranked at or above cutoff. Ties at
// the cutoff are all kept. A cutoff below 1 keeps everyone.
func (r *Reporter) TopPerformers(ctx context.Context, cutoff, windowDays int) ([]RankedEmployee, error) {
	if windowDays <= 0 {
		windowDays = DefaultTopPerformerWindowDays
	}
	w := realty.TrailingDays(r.now(), windowDays)

	rows, err := r.db.Query(ctx, topPerformersSQL, w.From, w.To)
	if err != nil {
		return nil, fmt.Errorf("top performers: %w", err)
	}
	totals, err := pgx.CollectRows(rows, scanEmployeeTotal)
	if err != nil {
		return nil, fmt.Errorf("top performers: %w", err)
	}
	return flattenRanks(realty.WithinCutoff(rankEmployees(totals), cutoff)), nil
}

const salesRankingSQL = `
    SELECT e.employee_id, e.first_name, e.last_name, e.department,
           SUM(t.transaction_amount), COUNT(*)
    FROM employees e
    JOIN transactions t ON t.employee_id = e.employee_id
    WHERE e.department = $1
    GROUP BY e.employee_id, e.first_name, e.last_name, e.department
`

// SalesRanking ranks the employees of one department by total transaction
// amount. Employees without transactions are not listed.
func (r *Reporter) SalesRanking(ctx context.Context, department string) ([]RankedEmployee, error) {
	department = strings.TrimSpace(department)
	if department == "" {
		return nil, ErrDepartmentRequired
	}

	rows, err := r.db.Query(ctx, salesRankingSQL, department)
	if err != nil {
		return nil, fmt.Errorf("sales ranking: %w", err)
	}
	totals, err := pgx.CollectRows(rows, scanEmployeeTotal)
	if err != nil {
		return nil, fmt.Errorf("sales ranking: %w", err)
	}
	return flattenRanks(rankEmployees(totals)), nil
}

// Underperformer is an employee with no qualifying rating in the window.
type Underperformer struct {
	EmployeeID int64
	Name       string
	Department string
	Role       string
}

// A rating that does not match realty.RatingPattern ($4) yields NULL,
// which never compares true against the threshold.
const underperformersSQL = `
    SELECT e.employee_id, e.first_name, e.last_name, e.department, e.role
    FROM employees e
    WHERE NOT EXISTS (
        SELECT 1
        FROM employee_performance p
        WHERE p.employee_id = e.employee_id
          AND p.performance_date >= $1 AND p.performance_date < $2
          AND CASE WHEN p.employee_rating ~ $4
                   THEN btrim(p.employee_rating, E' \t\r\n')::integer
              END >= $3
    )
    ORDER BY e.employee_id
`

// Underperformers lists employees with no performance record rated at
// least threshold during the trailing windowMonths. Employees with no
// records in the window are included.
func (r *Reporter) Underperformers(ctx context.Context, windowMonths, threshold int) ([]Underperformer, error) {
	if windowMonths <= 0 {
		windowMonths = DefaultUnderperformerMonths
	}
	w := realty.TrailingMonths(r.now(), windowMonths)

	rows, err := r.db.Query(ctx, underperformersSQL, w.From, w.To, threshold, realty.RatingPattern)
	if err != nil {
		return nil, fmt.Errorf("underperformers: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Underperformer, error) {
		var u Underperformer
		var first, last string
		err := row.Scan(&u.EmployeeID, &first, &last, &u.Department, &u.Role)
		u.Name = fullName(first, last)
		return u, err
	})
	if err != nil {
		return nil, fmt.Errorf("underperformers: %w", err)
	}
	return out, nil
}

// ListingDays is the time a listing spent on the market. SoldDate and Days
// are nil for a listing with no transaction.
type ListingDays struct {
	PropertyID  int64
	Address     string
	ZipCode     string
	ListingDate time.Time
	SoldDate    *time.Time
	Days        *int
}

const firstSaleSubquery = `
    SELECT property_id, MIN(transaction_date) AS sold_date
    FROM transactions
    GROUP BY property_id
`

const daysOnMarketSQL = `
    SELECT l.property_id, l.address, l.zip_code, l.listing_date, fs.sold_date
    FROM property_listings l
    JOIN (` + firstSaleSubquery + `) fs ON fs.property_id = l.property_id
    ORDER BY l.property_id
`

const daysOnMarketWithUnsoldSQL = `
    SELECT l.property_id, l.address, l.zip_code, l.listing_date, fs.sold_date
    FROM property_listings l
    LEFT JOIN (` + firstSaleSubquery + `) fs ON fs.property_id = l.property_id
    ORDER BY l.property_id
`

// DaysOnMarket reports the days between each listing and its earliest
// transaction. Listings without a transaction are left out unless
// includeUnsold is set, in which case they appear with nil days.
func (r *Reporter) DaysOnMarket(ctx context.Context, includeUnsold bool) ([]ListingDays, error) {
	query := daysOnMarketSQL
	if includeUnsold {
		query = daysOnMarketWithUnsoldSQL
	}

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("days on market: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (ListingDays, error) {
		var d ListingDays
		if err := row.Scan(&d.PropertyID, &d.Address, &d.ZipCode, &d.ListingDate, &d.SoldDate); err != nil {
			return d, err
		}
		if d.SoldDate != nil {
			days := realty.DaysOnMarket(d.ListingDate, *d.SoldDate)
			d.Days = &days
		}
		return d, nil
	})
	if err != nil {
		return nil, fmt.Errorf("days on market: %w", err)
	}
	return out, nil
}

// QuarterFinancials is one quarter of office financial records.
type QuarterFinancials struct {
	Year     int
	Quarter  int
	Revenue  decimal.Decimal
	Expenses decimal.Decimal
	Net      decimal.Decimal
}

const quarterlyFinancialsSQL = `
    SELECT EXTRACT(YEAR FROM record_date)::int AS year,
           EXTRACT(QUARTER FROM record_date)::int AS quarter,
           COALESCE(SUM(revenue), 0),
           COALESCE(SUM(operational_expenses), 0)
    FROM financial_records
    WHERE record_date >= $1 AND record_date < $2
    GROUP BY 1, 2
    ORDER BY 1, 2
`

// QuarterlyFinancials rolls financial records for year up by quarter.
// A year of zero means the current year.
func (r *Reporter) QuarterlyFinancials(ctx context.Context, year int) ([]QuarterFinancials, error) {
	if year == 0 {
		year = r.currentYear()
	}
	w := realty.CalendarYear(year)

	rows, err := r.db.Query(ctx, quarterlyFinancialsSQL, w.From, w.To)
	if err != nil {
		return nil, fmt.Errorf("quarterly financials: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (QuarterFinancials, error) {
		var q QuarterFinancials
		err := row.Scan(&q.Year, &q.Quarter, &q.Revenue, &q.Expenses)
		q.Net = q.Revenue.Sub(q.Expenses)
		return q, err
	})
	if err != nil {
		return nil, fmt.Errorf("quarterly financials: %w", err)
	}
	return out, nil
}

// OfficeSummary is the lifetime financial position of one office.
type OfficeSummary struct {
	OfficeID   int64
	OfficeName string
	City       string
	Revenue    decimal.Decimal
	Payroll    decimal.Decimal
	Expenses   decimal.Decimal
	NetProfit  decimal.Decimal
}

// Each side is aggregated on its own so payroll rows do not multiply
// financial records.
const officeFinancialSummarySQL = `
    SELECT o.office_id, o.office_name, o.city,
           COALESCE(fr.revenue, 0),
           COALESCE(pr.salary, 0),
           pr.bonus,
           COALESCE(fr.expenses, 0)
    FROM offices o
    LEFT JOIN (
        SELECT office_id,
               SUM(revenue) AS revenue,
               SUM(operational_expenses) AS expenses
        FROM financial_records
        GROUP BY office_id
    ) fr ON fr.office_id = o.office_id
    LEFT JOIN (
        SELECT e.office_id, SUM(p.salary) AS salary, SUM(p.bonus) AS bonus
        FROM employees e
        JOIN payroll p ON p.employee_id = e.employee_id
        GROUP BY e.office_id
    ) pr ON pr.office_id = o.office_id
    ORDER BY o.office_id
`

// OfficeFinancialSummary reports revenue, payroll, expenses and net profit
// for every office. Offices with no activity appear with zeros.
func (r *Reporter) OfficeFinancialSummary(ctx context.Context) ([]OfficeSummary, error) {
	rows, err := r.db.Query(ctx, officeFinancialSummarySQL)
	if err != nil {
		return nil, fmt.Errorf("office financial summary: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (OfficeSummary, error) {
		var s OfficeSummary
		var salary decimal.Decimal
		var bonus decimal.NullDecimal
		if err := row.Scan(&s.OfficeID, &s.OfficeName, &s.City, &s.Revenue, &salary, &bonus, &s.Expenses); err != nil {
			return s, err
		}
		s.Payroll = realty.PayrollCost(salary, bonus)
		s.NetProfit = realty.NetProfit(s.Revenue, s.Payroll, s.Expenses)
		return s, nil
	})
	if err != nil {
		return nil, fmt.Errorf("office financial summary: %w", err)
	}
	return out, nil
}

// AgentRating is an employee's average client rating. Average is invalid
// when the employee has no rated feedback.
type AgentRating struct {
	EmployeeID int64
	Name       string
	Average    decimal.NullDecimal
	Rated      int64
	Unrated    int64
}

const agentRatingsSQL = `
    SELECT e.employee_id, e.first_name, e.last_name, f.rating, COUNT(f.feedback_id)
    FROM employees e
    LEFT JOIN client_feedback f ON f.employee_id = e.employee_id
    GROUP BY e.employee_id, e.first_name, e.last_name, f.rating
    ORDER BY e.employee_id, f.rating
`

// AgentRatings averages client feedback per employee. Ratings of Not Rated,
// or anything else that is not an integer, are left out of the average.
func (r *Reporter) AgentRatings(ctx context.Context) ([]AgentRating, error) {
	rows, err := r.db.Query(ctx, agentRatingsSQL)
	if err != nil {
		return nil, fmt.Errorf("agent ratings: %w", err)
	}
	defer rows.Close()

	var out []AgentRating
	var tally realty.RatingTally
	flush := func() {
		if len(out) == 0 {
			return
		}
		last := &out[len(out)-1]
		if avg, ok := tally.Average(); ok {
			last.Average = decimal.NewNullDecimal(avg)
		}
		last.Rated = tally.Rated()
		last.Unrated = tally.Unrated()
	}

	for rows.Next() {
		var id, count int64
		var first, last string
		var rating *string
		if err := rows.Scan(&id, &first, &last, &rating, &count); err != nil {
			return nil, fmt.Errorf("agent ratings: %w", err)
		}
		if len(out) == 0 || out[len(out)-1].EmployeeID != id {
			flush()
			out = append(out, AgentRating{EmployeeID: id, Name: fullName(first, last)})
			tally = realty.RatingTally{}
		}
		if rating != nil {
			tally.Add(realty.ParseRating(*rating), count)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("agent ratings: %w", err)
	}
	flush()
	return out, nil
}

// SpecializationStats summarises sold business per specialization.
type SpecializationStats struct {
	Specialization   string
	Agents           int64
	SoldTransactions int64
	TotalSales       decimal.Decimal
	AverageSale      decimal.NullDecimal
}

const specializationEffectivenessSQL = `
    SELECT s.specialization,
           COUNT(DISTINCT s.employee_id),
           COUNT(t.transaction_id),
           COALESCE(SUM(t.transaction_amount), 0)
    FROM agent_specializations s
    LEFT JOIN transactions t ON t.employee_id = s.employee_id AND ` + soldTerms + `
    GROUP BY s.specialization
    ORDER BY 4 DESC, s.specialization
`

// SpecializationEffectiveness reports agents, sales and volume for every
// specialization, including those with no sales.
func (r *Reporter) SpecializationEffectiveness(ctx context.Context) ([]SpecializationStats, error) {
	rows, err := r.db.Query(ctx, specializationEffectivenessSQL)
	if err != nil {
		return nil, fmt.Errorf("specialization effectiveness: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (SpecializationStats, error) {
		var s SpecializationStats
		if err := row.Scan(&s.Specialization, &s.Agents, &s.SoldTransactions, &s.TotalSales); err != nil {
			return s, err
		}
		if s.SoldTransactions > 0 {
			s.AverageSale = decimal.NewNullDecimal(
				s.TotalSales.DivRound(decimal.NewFromInt(s.SoldTransactions), 2))
		}
		return s, nil
	})
	if err != nil {
		return nil, fmt.Errorf("specialization effectiveness: %w", err)
	}
	return out, nil
}

// CampaignResult is one marketing campaign against its property's sale.
type CampaignResult struct {
	CampaignID    int64
	CampaignName  string
	Channel       string
	PropertyID    int64
	Budget        decimal.Decimal
	Status        realty.ListingStatus
	SaleAmount    decimal.NullDecimal
	ReturnOnSpend decimal.NullDecimal
}

const campaignEffectivenessSQL = `
    SELECT c.campaign_id, c.campaign_name, c.channel, c.property_id, c.budget,
           l.status, sale.amount
    FROM marketing_campaigns c
    JOIN property_listings l ON l.property_id = c.property_id
    LEFT JOIN (
        SELECT t.property_id, SUM(t.transaction_amount) AS amount
        FROM transactions t
        WHERE ` + soldTerms + `
        GROUP BY t.property_id
    ) sale ON sale.property_id = c.property_id
    ORDER BY c.campaign_id
`

// CampaignEffectiveness pairs each campaign with the sale of its property.
// Unsold properties have no sale amount or return.
func (r *Reporter) CampaignEffectiveness(ctx context.Context) ([]CampaignResult, error) {
	rows, err := r.db.Query(ctx, campaignEffectivenessSQL)
	if err != nil {
		return nil, fmt.Errorf("campaign effectiveness: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (CampaignResult, error) {
		var c CampaignResult
		var status string
		if err := row.Scan(&c.CampaignID, &c.CampaignName, &c.Channel, &c.PropertyID,
			&c.Budget, &status, &c.SaleAmount); err != nil {
			return c, err
		}
		c.Status = realty.ParseListingStatus(status)
		if c.SaleAmount.Valid {
			if ros, ok := realty.ReturnOnSpend(c.SaleAmount.Decimal, c.Budget); ok {
				c.ReturnOnSpend = decimal.NewNullDecimal(ros)
			}
		}
		return c, nil
	})
	if err != nil {
		return nil, fmt.Errorf("campaign effectiveness: %w", err)
	}
	return out, nil
}

// MonthTotal is a count and amount for one calendar month.
type MonthTotal struct {
	Year   int
	Month  int
	Count  int64
	Amount decimal.Decimal
}

func scanMonthTotal(row pgx.CollectableRow) (MonthTotal, error) {
	var m MonthTotal
	err := row.Scan(&m.Year, &m.Month, &m.Count, &m.Amount)
	return m, err
}

const marketingSpendSQL = `
    SELECT EXTRACT(YEAR FROM start_date)::int,
           EXTRACT(MONTH FROM start_date)::int,
           COUNT(*),
           SUM(budget)
    FROM marketing_campaigns
    WHERE start_date >= $1 AND start_date < $2
    GROUP BY 1, 2
    ORDER BY 1, 2
`

// MarketingSpend totals campaign budgets by the month each campaign
// started. A year of zero means the current year.
func (r *Reporter) MarketingSpend(ctx context.Context, year int) ([]MonthTotal, error) {
	if year == 0 {
		year = r.currentYear()
	}
	w := realty.CalendarYear(year)

	rows, err := r.db.Query(ctx, marketingSpendSQL, w.From, w.To)
	if err != nil {
		return nil, fmt.Errorf("marketing spend: %w", err)
	}
	out, err := pgx.CollectRows(rows, scanMonthTotal)
	if err != nil {
		return nil, fmt.Errorf("marketing spend: %w", err)
	}
	return out, nil
}

const monthlySalesSQL = `
    SELECT EXTRACT(YEAR FROM t.transaction_date)::int,
           EXTRACT(MONTH FROM t.transaction_date)::int,
           COUNT(*),
           SUM(t.transaction_amount)
    FROM transactions t
    WHERE t.transaction_date >= $1 AND t.transaction_date < $2
    GROUP BY 1, 2
    ORDER BY 1, 2
`

// MonthlySales totals transaction volume per month over the trailing
// windowMonths.
func (r *Reporter) MonthlySales(ctx context.Context, windowMonths int) ([]MonthTotal, error) {
	if windowMonths <= 0 {
		windowMonths = DefaultMonthlySalesWindowMonths
	}
	w := realty.TrailingMonths(r.now(), windowMonths)

	rows, err := r.db.Query(ctx, monthlySalesSQL, w.From, w.To)
	if err != nil {
		return nil, fmt.Errorf("monthly sales: %w", err)
	}
	out, err := pgx.CollectRows(rows, scanMonthTotal)
	if err != nil {
		return nil, fmt.Errorf("monthly sales: %w", err)
	}
	return out, nil
}

// PropertyEvents counts the events held at a property and their attendees.
type PropertyEvents struct {
	PropertyID int64
	Address    string
	Events     int64
	Attendees  int64
}

const eventAttendanceSQL = `
    SELECT l.property_id, l.address,
           COUNT(ev.event_id),
           COALESCE(SUM(cardinality(ev.attendees)), 0)
    FROM property_listings l
    LEFT JOIN events ev ON ev.property_id = l.property_id
    GROUP BY l.property_id, l.address
    ORDER BY l.property_id
`

// EventAttendance lists every property with its event and attendee counts.
func (r *Reporter) EventAttendance(ctx context.Context) ([]PropertyEvents, error) {
	rows, err := r.db.Query(ctx, eventAttendanceSQL)
	if err != nil {
		return nil, fmt.Errorf("event attendance: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (PropertyEvents, error) {
		var p PropertyEvents
		err := row.Scan(&p.PropertyID, &p.Address, &p.Events, &p.Attendees)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("event attendance: %w", err)
	}
	return out, nil
}

// OfficeFees is the brokerage fee income of one office.
type OfficeFees struct {
	OfficeID     int64
	OfficeName   string
	Transactions int64
	Fees         decimal.Decimal
}

const brokerageFeesByOfficeSQL = `
    SELECT o.office_id, o.office_name,
           COUNT(t.transaction_id),
           COALESCE(SUM(t.brokerage_fee), 0)
    FROM offices o
    LEFT JOIN employees e ON e.office_id = o.office_id
    LEFT JOIN transactions t ON t.employee_id = e.employee_id
         AND t.transaction_date >= $1 AND t.transaction_date < $2
    GROUP BY o.office_id, o.office_name
    ORDER BY o.office_id
`

// BrokerageFeesByOffice totals brokerage fees per office for year. A year
// of zero means the current year.
func (r *Reporter) BrokerageFeesByOffice(ctx context.Context, year int) ([]OfficeFees, error) {
	if year == 0 {
		year = r.currentYear()
	}
	w := realty.CalendarYear(year)

	rows, err := r.db.Query(ctx, brokerageFeesByOfficeSQL, w.From, w.To)
	if err != nil {
		return nil, fmt.Errorf("brokerage fees by office: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (OfficeFees, error) {
		var f OfficeFees
		err := row.Scan(&f.OfficeID, &f.OfficeName, &f.Transactions, &f.Fees)
		return f, err
	})
	if err != nil {
		return nil, fmt.Errorf("brokerage fees by office: %w", err)
	}
	return out, nil
}

// EmployeePayroll is one employee's payroll for a year.
type EmployeePayroll struct {
	EmployeeID int64
	Name       string
	Department string
	Salary     decimal.Decimal
	Bonus      decimal.Decimal
	Total      decimal.Decimal
}

const payrollSummarySQL = `
    SELECT e.employee_id, e.first_name, e.last_name, e.department,
           COALESCE(SUM(p.salary), 0), SUM(p.bonus)
    FROM employees e
    LEFT JOIN payroll p ON p.employee_id = e.employee_id
         AND p.pay_date >= $1 AND p.pay_date < $2
    GROUP BY e.employee_id, e.first_name, e.last_name, e.department
    ORDER BY e.employee_id
`

// PayrollSummary totals salary and bonus per employee for year. Missing
// bonuses count as zero. A year of zero means the current year.
func (r *Reporter) PayrollSummary(ctx context.Context, year int) ([]EmployeePayroll, error) {
	if year == 0 {
		year = r.currentYear()
	}
	w := realty.CalendarYear(year)

	rows, err := r.db.Query(ctx, payrollSummarySQL, w.From, w.To)
	if err != nil {
		return nil, fmt.Errorf("payroll summary: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (EmployeePayroll, error) {
		var p EmployeePayroll
		var first, last string
		var bonus decimal.NullDecimal
		if err := row.Scan(&p.EmployeeID, &first, &last, &p.Department, &p.Salary, &bonus); err != nil {
			return p, err
		}
		p.Name = fullName(first, last)
		p.Bonus = realty.PayrollCost(decimal.Zero, bonus)
		p.Total = realty.PayrollCost(p.Salary, bonus)
		return p, nil
	})
	if err != nil {
		return nil, fmt.Errorf("payroll summary: %w", err)
	}
	return out, nil
}

// StatusCount is the number of listings with one status.
type StatusCount struct {
	Status   realty.ListingStatus
	Listings int64
}

const listingStatusSummarySQL = `
    SELECT status, COUNT(*)
    FROM property_listings
    GROUP BY status
    ORDER BY status
`

// ListingStatusSummary counts listings per status.
func (r *Reporter) ListingStatusSummary(ctx context.Context) ([]StatusCount, error) {
	rows, err := r.db.Query(ctx, listingStatusSummarySQL)
	if err != nil {
		return nil, fmt.Errorf("listing status summary: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (StatusCount, error) {
		var s StatusCount
		var status string
		err := row.Scan(&status, &s.Listings)
		s.Status = realty.ParseListingStatus(status)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("listing status summary: %w", err)
	}
	return out, nil
}

// ZipCodeSales is the sold business in one zip code.
type ZipCodeSales struct {
	ZipCode     string
	Sold        int64
	Volume      decimal.Decimal
	AverageSale decimal.Decimal
}

const zipCodeSalesSQL = `
    SELECT l.zip_code, COUNT(*), SUM(t.transaction_amount)
    FROM property_listings l
    JOIN transactions t ON t.property_id = l.property_id
    WHERE ` + soldTerms + `
    GROUP BY l.zip_code
    ORDER BY l.zip_code
`

// ZipCodeSales reports sold transactions and the average sale per zip
// code. Zip codes without sales are not listed.
func (r *Reporter) ZipCodeSales(ctx context.Context) ([]ZipCodeSales, error) {
	rows, err := r.db.Query(ctx, zipCodeSalesSQL)
	if err != nil {
		return nil, fmt.Errorf("zip code sales: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (ZipCodeSales, error) {
		var z ZipCodeSales
		if err := row.Scan(&z.ZipCode, &z.Sold, &z.Volume); err != nil {
			return z, err
		}
		if z.Sold > 0 {
			z.AverageSale = z.Volume.DivRound(decimal.NewFromInt(z.Sold), 2)
		}
		return z, nil
	})
	if err != nil {
		return nil, fmt.Errorf("zip code sales: %w", err)
	}
	return out, nil
}
