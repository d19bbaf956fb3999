package brokerage

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// ErrUnknownReport is returned by Lookup for a name not in the catalog.
var ErrUnknownReport = errors.New("unknown report")

// Params are the knobs a report may read. Each report ignores the fields
// it does not use.
type Params struct {
	Department        string
	Cutoff            int
	WindowDays        int
	WindowMonths      int // underperformers
	SalesWindowMonths int // monthly sales
	Threshold         int
	Year              int
	IncludeUnsold     bool
}

// DefaultParams returns the documented report defaults.
func DefaultParams() Params {
	return Params{
		Cutoff:            DefaultTopPerformerCutoff,
		WindowDays:        DefaultTopPerformerWindowDays,
		WindowMonths:      DefaultUnderperformerMonths,
		SalesWindowMonths: DefaultMonthlySalesWindowMonths,
		Threshold:         DefaultRatingThreshold,
	}
}

// Table is a report result rendered as text cells.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Len returns the number of rows.
func (t Table) Len() int {
	return len(t.Rows)
}

// ReportDefinition describes one report in the catalog.
type ReportDefinition struct {
	Name        string
	Description string
	Run         func(ctx context.Context, r *Reporter, p Params) (Table, error)
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func nullMoney(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return money(d.Decimal)
}

func itoa[T ~int | ~int64](v T) string {
	return strconv.FormatInt(int64(v), 10)
}

func rankedTable(rows []RankedEmployee, totalColumn string) Table {
	t := Table{Columns: []string{"rank", "employee_id", "name", "department", totalColumn, "records"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			itoa(r.Rank), itoa(r.EmployeeID), r.Name, r.Department, money(r.Total), itoa(r.Records),
		})
	}
	return t
}

func monthTable(rows []MonthTotal, countColumn, amountColumn string) Table {
	t := Table{Columns: []string{"year", "month", countColumn, amountColumn}}
	for _, m := range rows {
		t.Rows = append(t.Rows, []string{itoa(m.Year), itoa(m.Month), itoa(m.Count), money(m.Amount)})
	}
	return t
}

var catalog = []ReportDefinition{
	{
		Name:        "top_performers",
		Description: "Employees ranked by performance over a trailing window, kept to a rank cutoff",
		Run: func(ctx context.Context, r *Reporter, p Params) (Table, error) {
			rows, err := r.TopPerformers(ctx, p.Cutoff, p.WindowDays)
			if err != nil {
				return Table{}, err
			}
			return rankedTable(rows, "performance"), nil
		},
	},
	{
		Name:        "sales_ranking",
		Description: "Employees of one department ranked by transaction volume",
		Run: func(ctx context.Context, r *Reporter, p Params) (Table, error) {
			rows, err := r.SalesRanking(ctx, p.Department)
			if err != nil {
				return Table{}, err
			}
			return rankedTable(rows, "sales"), nil
		},
	},
	{
		Name:        "underperformers",
		Description: "Employees with no rating at or above the threshold in a trailing window",
		Run: func(ctx context.Context, r *Reporter, p Params) (Table, error) {
			rows, err := r.Underperformers(ctx, p.WindowMonths, p.Threshold)
			if err != nil {
				return Table{}, err
			}
			t := Table{Columns: []string{"employee_id", "name", "department", "role"}}
			for _, u := range rows {
				t.Rows = append(t.Rows, []string{itoa(u.EmployeeID), u.Name, u.Department, u.Role})
			}
			return t, nil
		},
	},
	{
		Name:        "days_on_market",
		Description: "Days from listing to first transaction per property",
		Run: func(ctx context.Context, r *Reporter, p Params) (Table, error) {
			rows, err := r.DaysOnMarket(ctx, p.IncludeUnsold)
			if err != nil {
				return Table{}, err
			}
			t := Table{Columns: []string{"property_id", "address", "zip_code", "listing_date", "sold_date", "days_on_market"}}
			for _, d := range rows {
				sold, days := "", ""
				if d.SoldDate != nil {
					sold = d.SoldDate.Format("2006-01-02")
				}
				if d.Days != nil {
					days = itoa(*d.Days)
				}
				t.Rows = append(t.Rows, []string{
					itoa(d.PropertyID), d.Address, d.ZipCode, d.ListingDate.Format("2006-01-02"), sold, days,
				})
			}
			return t, nil
		},
	},
	{
		Name:        "quarterly_financials",
		Description: "Revenue, expenses and net by quarter for one year",
		Run: func(ctx context.Context, r *Reporter, p Params) (Table, error) {
			rows, err := r.QuarterlyFinancials(ctx, p.Year)
			if err != nil {
				return Table{}, err
			}
			t := Table{Columns: []string{"year", "quarter", "revenue", "expenses", "net"}}
			for _, q := range rows {
				t.Rows = append(t.Rows, []string{
					itoa(q.Year), itoa(q.Quarter), money(q.Revenue), money(q.Expenses), money(q.Net),
				})
			}
			return t, nil
		},
	},
	{
		Name:        "office_financial_summary",
		Description: "Revenue, payroll, expenses and net profit per office",
		Run: func(ctx context.Context, r *Reporter, _ Params) (Table, error) {
			rows, err := r.OfficeFinancialSummary(ctx)
			if err != nil {
				return Table{}, err
			}
			t := Table{Columns: []string{"office_id", "office_name", "city", "revenue", "payroll", "expenses", "net_profit"}}
			for _, s := range rows {
				t.Rows = append(t.Rows, []string{
					itoa(s.OfficeID), s.OfficeName, s.City,
					money(s.Revenue), money(s.Payroll), money(s.Expenses), money(s.NetProfit),
				})
			}
			return t, nil
		},
	},
	{
		Name:        "agent_ratings",
		Description: "Average client rating per employee, ignoring unrated feedback",
		Run: func(ctx context.Context, r *Reporter, _ Params) (Table, error) {
			rows, err := r.AgentRatings(ctx)
			if err != nil {
				return Table{}, err
			}
			t := Table{Columns: []string{"employee_id", "name", "average_rating", "rated", "not_rated"}}
			for _, a := range rows {
				t.Rows = append(t.Rows, []string{
					itoa(a.EmployeeID), a.Name, nullMoney(a.Average), itoa(a.Rated), itoa(a.Unrated),
				})
			}
			return t, nil
		},
	},
	{
		Name:        "specialization_effectiveness",
		Description: "Agents, sold transactions and volume per specialization",
		Run: func(ctx context.Context, r *Reporter, _ Params) (Table, error) {
			rows, err := r.SpecializationEffectiveness(ctx)
			if err != nil {
				return Table{}, err
			}
			t := Table{Columns: []string{"specialization", "agents", "sold", "total_sales", "average_sale"}}
			for _, s := range rows {
				t.Rows = append(t.Rows, []string{
					s.Specialization, itoa(s.Agents), itoa(s.SoldTransactions),
					money(s.TotalSales), nullMoney(s.AverageSale),
				})
			}
			return t, nil
		},
	},
	{
		Name:        "campaign_effectiveness",
		Description: "Marketing campaigns against the sale of their property",
		Run: func(ctx context.Context, r *Reporter, _ Params) (Table, error) {
			rows, err := r.CampaignEffectiveness(ctx)
			if err != nil {
				return Table{}, err
			}
			t := Table{Columns: []string{"campaign_id", "campaign_name", "channel", "property_id", "budget", "status", "sale_amount", "return_on_spend"}}
			for _, c := range rows {
				t.Rows = append(t.Rows, []string{
					itoa(c.CampaignID), c.CampaignName, c.Channel, itoa(c.PropertyID),
					money(c.Budget), c.Status.String(), nullMoney(c.SaleAmount), nullMoney(c.ReturnOnSpend),
				})
			}
			return t, nil
		},
	},
	{
		Name:        "marketing_spend",
		Description: "Campaign budget by start month for one year",
		Run: func(ctx context.Context, r *Reporter, p Params) (Table, error) {
			rows, err := r.MarketingSpend(ctx, p.Year)
			if err != nil {
				return Table{}, err
			}
			return monthTable(rows, "campaigns", "spend"), nil
		},
	},
	{
		Name:        "event_attendance",
		Description: "Events and attendees per property",
		Run: func(ctx context.Context, r *Reporter, _ Params) (Table, error) {
			rows, err := r.EventAttendance(ctx)
			if err != nil {
				return Table{}, err
			}
			t := Table{Columns: []string{"property_id", "address", "events", "attendees"}}
			for _, e := range rows {
				t.Rows = append(t.Rows, []string{itoa(e.PropertyID), e.Address, itoa(e.Events), itoa(e.Attendees)})
			}
			return t, nil
		},
	},
	{
		Name:        "brokerage_fees_by_office",
		Description: "Brokerage fee income per office for one year",
		Run: func(ctx context.Context, r *Reporter, p Params) (Table, error) {
			rows, err := r.BrokerageFeesByOffice(ctx, p.Year)
			if err != nil {
				return Table{}, err
			}
			t := Table{Columns: []string{"office_id", "office_name", "transactions", "fees"}}
			for _, f := range rows {
				t.Rows = append(t.Rows, []string{itoa(f.OfficeID), f.OfficeName, itoa(f.Transactions), money(f.Fees)})
			}
			return t, nil
		},
	},
	{
		Name:        "monthly_sales",
		Description: "Transaction count and volume per month over a trailing window",
		Run: func(ctx context.Context, r *Reporter, p Params) (Table, error) {
			rows, err := r.MonthlySales(ctx, p.SalesWindowMonths)
			if err != nil {
				return Table{}, err
			}
			return monthTable(rows, "transactions", "volume"), nil
		},
	},
	{
		Name:        "payroll_summary",
		Description: "Salary, bonus and total payroll per employee for one year",
		Run: func(ctx context.Context, r *Reporter, p Params) (Table, error) {
			rows, err := r.PayrollSummary(ctx, p.Year)
			if err != nil {
				return Table{}, err
			}
			t := Table{Columns: []string{"employee_id", "name", "department", "salary", "bonus", "total"}}
			for _, e := range rows {
				t.Rows = append(t.Rows, []string{
					itoa(e.EmployeeID), e.Name, e.Department, money(e.Salary), money(e.Bonus), money(e.Total),
				})
			}
			return t, nil
		},
	},
	{
		Name:        "listing_status_summary",
		Description: "Number of listings per status",
		Run: func(ctx context.Context, r *Reporter, _ Params) (Table, error) {
			rows, err := r.ListingStatusSummary(ctx)
			if err != nil {
				return Table{}, err
			}
			t := Table{Columns: []string{"status", "listings"}}
			for _, s := range rows {
				t.Rows = append(t.Rows, []string{s.Status.String(), itoa(s.Listings)})
			}
			return t, nil
		},
	},
	{
		Name:        "zip_code_sales",
		Description: "Sold transactions, volume and average sale per zip code",
		Run: func(ctx context.Context, r *Reporter, _ Params) (Table, error) {
			rows, err := r.ZipCodeSales(ctx)
			if err != nil {
				return Table{}, err
			}
			t := Table{Columns: []string{"zip_code", "sold", "volume", "average_sale"}}
			for _, z := range rows {
				t.Rows = append(t.Rows, []string{z.ZipCode, itoa(z.Sold), money(z.Volume), money(z.AverageSale)})
			}
			return t, nil
		},
	},
}

// Catalog returns every report in display order.
func Catalog() []ReportDefinition {
	out := make([]ReportDefinition, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup finds a report by name.
func Lookup(name string) (ReportDefinition, error) {
	for _, def := range catalog {
		if def.Name == name {
			return def, nil
		}
	}
	return ReportDefinition{}, fmt.Errorf("%w: %q", ErrUnknownReport, name)
}

// RunReport looks up a report by name and runs it.
func (r *Reporter) RunReport(ctx context.Context, name string, p Params) (Table, error) {
	def, err := Lookup(name)
	if err != nil {
		return Table{}, err
	}
	return def.Run(ctx, r, p)
}
