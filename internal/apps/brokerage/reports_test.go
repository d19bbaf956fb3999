package brokerage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-realty/internal/realty"
)

var fixedNow = time.Date(2025, time.June, 15, 10, 30, 0, 0, time.UTC)

func newTestReporter(q *stubQuerier) *Reporter {
	r := NewReporter(q)
	r.now = func() time.Time { return fixedNow }
	return r
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestTopPerformers_CompetitionRanks(t *testing.T) {
	q := &stubQuerier{results: []*fakeRows{newFakeRows(
		[]any{int64(3), "Cara", "Diaz", "Sales", "80.00", int64(1)},
		[]any{int64(2), "Ben", "Cho", "Sales", "100.00", int64(2)},
		[]any{int64(1), "Ann", "Lee", "Rentals", "100.00", int64(4)},
		[]any{int64(4), "Dev", "Ng", "Sales", "50.00", int64(1)},
	)}}

	got, err := newTestReporter(q).TopPerformers(context.Background(), 3, 30)
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, []int{1, 1, 3}, []int{got[0].Rank, got[1].Rank, got[2].Rank})
	assert.Equal(t, int64(1), got[0].EmployeeID, "ties break by employee id")
	assert.Equal(t, "Ann Lee", got[0].Name)
	assert.Equal(t, int64(2), got[1].EmployeeID)
	assert.Equal(t, int64(3), got[2].EmployeeID)
	assert.True(t, got[2].Total.Equal(d("80")))

	require.Len(t, q.calls, 1)
	w := realty.TrailingDays(fixedNow, 30)
	assert.Equal(t, []any{w.From, w.To}, q.calls[0].args)
}

func TestTopPerformers_TiesAtCutoffAreKept(t *testing.T) {
	q := &stubQuerier{results: []*fakeRows{newFakeRows(
		[]any{int64(1), "A", "A", "Sales", "100.00", int64(1)},
		[]any{int64(2), "B", "B", "Sales", "90.00", int64(1)},
		[]any{int64(3), "C", "C", "Sales", "90.00", int64(1)},
		[]any{int64(4), "D", "D", "Sales", "10.00", int64(1)},
	)}}

	got, err := newTestReporter(q).TopPerformers(context.Background(), 2, 0)
	require.NoError(t, err)
	assert.Len(t, got, 3)

	w := realty.TrailingDays(fixedNow, DefaultTopPerformerWindowDays)
	assert.Equal(t, w.From, q.calls[0].args[0], "non-positive window uses the default")
}

func TestSalesRanking_DepartmentRequired(t *testing.T) {
	for _, dept := range []string{"", "   "} {
		q := &stubQuerier{}
		_, err := newTestReporter(q).SalesRanking(context.Background(), dept)
		assert.ErrorIs(t, err, ErrDepartmentRequired)
		assert.Empty(t, q.calls, "no query runs without a department")
	}
}

func TestSalesRanking(t *testing.T) {
	q := &stubQuerier{results: []*fakeRows{newFakeRows(
		[]any{int64(7), "Eve", "Park", "Sales", "500000.00", int64(2)},
		[]any{int64(8), "Fay", "Ruiz", "Sales", "750000.00", int64(3)},
	)}}

	got, err := newTestReporter(q).SalesRanking(context.Background(), " Sales ")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(8), got[0].EmployeeID)
	assert.Equal(t, 1, got[0].Rank)
	assert.Equal(t, 2, got[1].Rank)
	assert.Equal(t, []any{"Sales"}, q.calls[0].args)
}

func TestUnderperformers_PassesThreshold(t *testing.T) {
	q := &stubQuerier{results: []*fakeRows{newFakeRows(
		[]any{int64(5), "Gus", "Hale", "Sales", "Agent"},
	)}}

	got, err := newTestReporter(q).Underperformers(context.Background(), 0, 4)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, Underperformer{EmployeeID: 5, Name: "Gus Hale", Department: "Sales", Role: "Agent"}, got[0])

	call := q.calls[0]
	assert.Contains(t, call.sql, "NOT EXISTS")
	w := realty.TrailingMonths(fixedNow, DefaultUnderperformerMonths)
	assert.Equal(t, []any{w.From, w.To, 4, realty.RatingPattern}, call.args)
	assert.Contains(t, call.sql, "employee_rating ~ $4", "SQL tests ratings with the shared pattern")
}

func TestDaysOnMarket(t *testing.T) {
	listed := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	sold := time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC)
	q := &stubQuerier{results: []*fakeRows{newFakeRows(
		[]any{int64(1), "1 Main St", "12345", listed, sold},
		[]any{int64(2), "2 Main St", "12345", listed, nil},
	)}}

	got, err := newTestReporter(q).DaysOnMarket(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, got, 2)

	require.NotNil(t, got[0].Days)
	assert.Equal(t, 10, *got[0].Days)
	assert.Nil(t, got[1].SoldDate)
	assert.Nil(t, got[1].Days)
	assert.Contains(t, q.calls[0].sql, "LEFT JOIN")
}

func TestDaysOnMarket_SoldOnlyByDefault(t *testing.T) {
	q := &stubQuerier{}
	_, err := newTestReporter(q).DaysOnMarket(context.Background(), false)
	require.NoError(t, err)
	assert.NotContains(t, q.calls[0].sql, "LEFT JOIN")
}

func TestQuarterlyFinancials_DefaultsToCurrentYear(t *testing.T) {
	q := &stubQuerier{results: []*fakeRows{newFakeRows(
		[]any{2025, 1, "1000.00", "400.00"},
		[]any{2025, 2, "500.00", "700.00"},
	)}}

	got, err := newTestReporter(q).QuarterlyFinancials(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].Net.Equal(d("600")))
	assert.True(t, got[1].Net.Equal(d("-200")))

	w := realty.CalendarYear(2025)
	assert.Equal(t, []any{w.From, w.To}, q.calls[0].args)
}

func TestOfficeFinancialSummary_NetProfit(t *testing.T) {
	q := &stubQuerier{results: []*fakeRows{newFakeRows(
		[]any{int64(1), "Downtown", "Springfield", "1000.00", "400.00", "50.00", "100.00"},
		[]any{int64(2), "Harbor", "Shelbyville", "0", "0", nil, "0"},
	)}}

	got, err := newTestReporter(q).OfficeFinancialSummary(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.True(t, got[0].Payroll.Equal(d("450")))
	assert.True(t, got[0].NetProfit.Equal(d("450")))
	assert.True(t, got[1].Payroll.IsZero(), "missing bonus counts as zero")
	assert.True(t, got[1].NetProfit.IsZero())
}

func TestAgentRatings_SkipsNotRated(t *testing.T) {
	four, two, notRated := "4", "2", "Not Rated"
	q := &stubQuerier{results: []*fakeRows{newFakeRows(
		[]any{int64(1), "Ann", "Lee", two, int64(1)},
		[]any{int64(1), "Ann", "Lee", four, int64(1)},
		[]any{int64(1), "Ann", "Lee", notRated, int64(1)},
		[]any{int64(2), "Ben", "Cho", notRated, int64(2)},
		[]any{int64(3), "Cara", "Diaz", nil, int64(0)},
	)}}

	got, err := newTestReporter(q).AgentRatings(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 3)

	require.True(t, got[0].Average.Valid)
	assert.True(t, got[0].Average.Decimal.Equal(d("3")))
	assert.Equal(t, int64(2), got[0].Rated)
	assert.Equal(t, int64(1), got[0].Unrated)

	assert.False(t, got[1].Average.Valid, "only unrated feedback has no average")
	assert.Equal(t, int64(2), got[1].Unrated)

	assert.False(t, got[2].Average.Valid, "no feedback has no average")
	assert.Zero(t, got[2].Rated)
}

func TestSpecializationEffectiveness(t *testing.T) {
	q := &stubQuerier{results: []*fakeRows{newFakeRows(
		[]any{"Luxury", int64(2), int64(4), "1000.00"},
		[]any{"Commercial", int64(1), int64(0), "0"},
	)}}

	got, err := newTestReporter(q).SpecializationEffectiveness(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].AverageSale.Decimal.Equal(d("250")))
	assert.False(t, got[1].AverageSale.Valid)
	assert.Contains(t, q.calls[0].sql, soldTerms)
}

func TestCampaignEffectiveness(t *testing.T) {
	q := &stubQuerier{results: []*fakeRows{newFakeRows(
		[]any{int64(1), "Spring", "Online", int64(10), "1000.00", "Sold", "5000.00"},
		[]any{int64(2), "Summer", "Print", int64(11), "0", "available", nil},
	)}}

	got, err := newTestReporter(q).CampaignEffectiveness(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, realty.StatusSold, got[0].Status)
	require.True(t, got[0].ReturnOnSpend.Valid)
	assert.True(t, got[0].ReturnOnSpend.Decimal.Equal(d("5")))
	assert.False(t, got[1].SaleAmount.Valid)
	assert.False(t, got[1].ReturnOnSpend.Valid)
}

func TestMonthlySales_Window(t *testing.T) {
	q := &stubQuerier{results: []*fakeRows{newFakeRows(
		[]any{2025, 5, int64(3), "900.00"},
	)}}

	got, err := newTestReporter(q).MonthlySales(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 5, got[0].Month)
	assert.Equal(t, int64(3), got[0].Count)
	assert.True(t, got[0].Amount.Equal(d("900")))

	w := realty.TrailingMonths(fixedNow, DefaultMonthlySalesWindowMonths)
	assert.Equal(t, []any{w.From, w.To}, q.calls[0].args)
}

func TestPayrollSummary_NullBonus(t *testing.T) {
	q := &stubQuerier{results: []*fakeRows{newFakeRows(
		[]any{int64(1), "Ann", "Lee", "Sales", "6000.00", "500.00"},
		[]any{int64(2), "Ben", "Cho", "Admin", "4000.00", nil},
	)}}

	got, err := newTestReporter(q).PayrollSummary(context.Background(), 2024)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].Total.Equal(d("6500")))
	assert.True(t, got[1].Bonus.IsZero())
	assert.True(t, got[1].Total.Equal(d("4000")))

	w := realty.CalendarYear(2024)
	assert.Equal(t, []any{w.From, w.To}, q.calls[0].args)
}

func TestListingStatusSummary(t *testing.T) {
	q := &stubQuerier{results: []*fakeRows{newFakeRows(
		[]any{"available", int64(10)},
		[]any{"sold", int64(4)},
	)}}

	got, err := newTestReporter(q).ListingStatusSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []StatusCount{
		{Status: realty.StatusAvailable, Listings: 10},
		{Status: realty.StatusSold, Listings: 4},
	}, got)
}

func TestZipCodeSales_Average(t *testing.T) {
	q := &stubQuerier{results: []*fakeRows{newFakeRows(
		[]any{"12345", int64(3), "1000.00"},
	)}}

	got, err := newTestReporter(q).ZipCodeSales(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].AverageSale.Equal(d("333.33")))
}

func TestReports_QueryErrorIsWrapped(t *testing.T) {
	boom := errors.New("connection reset")
	r := newTestReporter(&stubQuerier{err: boom})

	_, err := r.EventAttendance(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "event attendance")

	_, err = r.BrokerageFeesByOffice(context.Background(), 2025)
	assert.ErrorIs(t, err, boom)
}

func TestManagerEmployees(t *testing.T) {
	q := &stubQuerier{results: []*fakeRows{newFakeRows(
		[]any{int64(1), "Ann Lee", int64(2), "Ben Cho", "Agent", int64(1), "Downtown", "Springfield"},
	)}}

	got, err := newTestReporter(q).ManagerEmployees(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Ben Cho", got[0].EmployeeName)
	assert.Equal(t, []any{int64(1)}, q.calls[0].args)
	assert.Contains(t, q.calls[0].sql, "manager_employee_view")

	table := ManagerEmployeesTable(got)
	assert.Equal(t, []string{"1", "Ann Lee", "2", "Ben Cho", "Agent", "1", "Downtown", "Springfield"}, table.Rows[0])
}
