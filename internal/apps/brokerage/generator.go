package brokerage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-realty/internal/datagen"
	"github.com/pgEdge/pgedge-realty/internal/logging"
	"github.com/pgEdge/pgedge-realty/internal/realty"
)

// Table sizes per office.
var tableSizes = []datagen.TableSizeInfo{
	{Name: "offices", BaseRowSize: 120, ScaleRatio: 1, IndexFactor: 1.1},
	{Name: "employees", BaseRowSize: 160, ScaleRatio: 25, IndexFactor: 1.3},
	{Name: "manages", BaseRowSize: 40, ScaleRatio: 25, IndexFactor: 1.5},
	{Name: "property_listings", BaseRowSize: 160, ScaleRatio: 400, IndexFactor: 1.2},
	{Name: "transactions", BaseRowSize: 110, ScaleRatio: 300, IndexFactor: 1.5},
	{Name: "payroll", BaseRowSize: 60, ScaleRatio: 300, IndexFactor: 1.3},
	{Name: "financial_records", BaseRowSize: 60, ScaleRatio: 24, IndexFactor: 1.3},
	{Name: "marketing_campaigns", BaseRowSize: 120, ScaleRatio: 200, IndexFactor: 1.3},
	{Name: "agent_specializations", BaseRowSize: 50, ScaleRatio: 30, IndexFactor: 1.3},
	{Name: "client_feedback", BaseRowSize: 100, ScaleRatio: 500, IndexFactor: 1.3},
	{Name: "events", BaseRowSize: 180, ScaleRatio: 300, IndexFactor: 1.2},
	{Name: "employee_performance", BaseRowSize: 70, ScaleRatio: 600, IndexFactor: 1.3},
}

const (
	employeesPerOffice = 25
	listingsPerOffice  = 400
	payrollMonths      = 12
	financialMonths    = 24
)

type roleInfo struct {
	role       string
	department string
}

var staffRoles = []roleInfo{
	{"Agent", "Sales"},
	{"Senior Agent", "Sales"},
	{"Broker", "Sales"},
	{"Leasing Agent", "Rentals"},
	{"Marketing Coordinator", "Marketing"},
	{"Office Administrator", "Operations"},
}

var staffRoleWeights = []int{45, 15, 10, 10, 10, 10}

var officeManagerRole = roleInfo{"Office Manager", "Management"}

var propertyTypes = []string{"Single Family", "Condo", "Townhouse", "Multi Family", "Land", "Commercial"}

var specializations = []string{
	"Residential", "Luxury", "Commercial", "Rentals", "First-Time Buyers",
	"Investment", "Relocation", "Land",
}

var campaignChannels = []string{"Online", "Print", "Social Media", "Direct Mail", "Open House", "Radio"}

var eventTypes = []string{"Open House", "Private Viewing", "Broker Preview", "Virtual Tour"}

// ratingValues include the Not Rated sentinel and the odd malformed value
// so reports exercise their parsing rules.
var ratingValues = []string{"1", "2", "3", "4", "5", realty.NotRated, "N/A"}
var ratingWeights = []int{5, 10, 25, 30, 20, 8, 2}

type listingPlan struct {
	terms  realty.Terms
	status realty.ListingStatus
}

// Terms of the single transaction generated for a listing, with the
// listing status each implies. Empty terms mean no transaction.
var listingPlans = []listingPlan{
	{"", realty.StatusAvailable},
	{"", realty.StatusOffMarket},
	{realty.TermsSold, realty.StatusSold},
	{"pending", realty.StatusPending},
	{"lease", realty.StatusRented},
	{"cancelled", realty.StatusAvailable},
}

var listingPlanWeights = []int{20, 5, 45, 12, 10, 8}

// Generator generates test data for the brokerage schema.
type Generator struct {
	faker *datagen.Faker
	cfg   datagen.BatchInsertConfig
	now   time.Time

	agents []int64
}

// NewGenerator creates a brokerage data generator. A zero seed picks a
// random one.
func NewGenerator(seed uint64) *Generator {
	faker := datagen.NewFaker()
	if seed != 0 {
		faker = datagen.NewFakerWithSeed(seed)
	}
	return &Generator{
		faker: faker,
		cfg:   datagen.DefaultBatchConfig(),
		now:   time.Now().UTC(),
	}
}

// GenerateData generates test data to approximately fill the target size.
func (g *Generator) GenerateData(ctx context.Context, pool *pgxpool.Pool, targetSize int64) error {
	calc := datagen.NewSizeCalculator(tableSizes)
	rowCounts := calc.CalculateRowCounts(targetSize)

	numOffices := max(1, int(rowCounts["offices"]))

	logging.Info().
		Int("offices", numOffices).
		Str("estimated_size", datagen.FormatSize(calc.EstimatedSize(rowCounts))).
		Msg("Generating brokerage data")

	numEmployees := numOffices * employeesPerOffice
	numListings := numOffices * listingsPerOffice

	steps := []struct {
		name string
		fn   func() error
	}{
		{"offices", func() error { return g.generateOffices(ctx, pool, numOffices) }},
		{"employees", func() error { return g.generateEmployees(ctx, pool, numOffices) }},
		{"listings and transactions", func() error { return g.generateListings(ctx, pool, numListings, numEmployees) }},
		{"payroll", func() error { return g.generatePayroll(ctx, pool, numEmployees) }},
		{"financial records", func() error { return g.generateFinancialRecords(ctx, pool, numOffices) }},
		{"marketing campaigns", func() error {
			return g.generateCampaigns(ctx, pool, int(rowCounts["marketing_campaigns"]), numListings)
		}},
		{"agent specializations", func() error { return g.generateSpecializations(ctx, pool) }},
		{"client feedback", func() error {
			return g.generateFeedback(ctx, pool, int(rowCounts["client_feedback"]))
		}},
		{"events", func() error { return g.generateEvents(ctx, pool, int(rowCounts["events"]), numListings) }},
		{"employee performance", func() error {
			return g.generatePerformance(ctx, pool, int(rowCounts["employee_performance"]))
		}},
	}

	for _, step := range steps {
		if err := step.fn(); err != nil {
			return fmt.Errorf("failed to generate %s: %w", step.name, err)
		}
	}

	// Transactions were inserted with explicit ids.
	_, err := pool.Exec(ctx, `
        SELECT setval(pg_get_serial_sequence('transactions', 'transaction_id'),
                      COALESCE(MAX(transaction_id), 0) + 1, false)
        FROM transactions
    `)
	if err != nil {
		return fmt.Errorf("failed to reset transaction id sequence: %w", err)
	}
	return nil
}

// batchInsert accumulates VALUES tuples and writes them in one statement.
type batchInsert struct {
	pool     *pgxpool.Pool
	table    string
	columns  string
	size     int
	values   []string
	progress *datagen.ProgressReporter
}

func (g *Generator) newBatch(pool *pgxpool.Pool, table, columns string, total int) *batchInsert {
	return &batchInsert{
		pool:     pool,
		table:    table,
		columns:  columns,
		size:     g.cfg.BatchSize,
		values:   make([]string, 0, g.cfg.BatchSize),
		progress: datagen.NewProgressReporter(table, int64(total), g.cfg.ProgressInterval),
	}
}

func (b *batchInsert) full() bool {
	return len(b.values) >= b.size
}

// push appends a tuple without flushing.
func (b *batchInsert) push(tuple string) {
	b.values = append(b.values, tuple)
}

// add appends a tuple and flushes when the batch is full.
func (b *batchInsert) add(ctx context.Context, tuple string) error {
	b.push(tuple)
	if b.full() {
		return b.flush(ctx)
	}
	return nil
}

func (b *batchInsert) flush(ctx context.Context) error {
	if len(b.values) == 0 {
		return nil
	}
	sql := fmt.Sprintf("INSERT INTO %s %s VALUES %s", b.table, b.columns, strings.Join(b.values, ", "))
	if _, err := b.pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("insert into %s: %w", b.table, err)
	}
	b.progress.Update(int64(len(b.values)))
	b.values = b.values[:0]
	return nil
}

func (b *batchInsert) done(ctx context.Context) error {
	if err := b.flush(ctx); err != nil {
		return err
	}
	b.progress.Done()
	return nil
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func sqlDate(t time.Time) string {
	return "'" + t.Format("2006-01-02") + "'"
}

func sqlTimestamp(t time.Time) string {
	return "'" + t.Format("2006-01-02 15:04:05") + "'"
}

func sqlMoney(d decimal.Decimal) string {
	return money(d)
}

func sqlTextArray(items []string) string {
	if len(items) == 0 {
		return "'{}'::text[]"
	}
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = quote(s)
	}
	return "ARRAY[" + strings.Join(quoted, ", ") + "]::text[]"
}

func (g *Generator) amount(minimum, maximum float64) decimal.Decimal {
	return g.faker.Money(minimum, maximum)
}

// pastDate is a date between daysBack days ago and today.
func (g *Generator) pastDate(daysBack int) time.Time {
	return g.now.AddDate(0, 0, -g.faker.Int(0, daysBack))
}

func (g *Generator) generateOffices(ctx context.Context, pool *pgxpool.Pool, count int) error {
	logging.Info().Int("count", count).Msg("Generating offices")
	batch := g.newBatch(pool, "offices", "(office_id, office_name, city, state, zip_code)", count)

	for i := 1; i <= count; i++ {
		city := datagen.Truncate(g.faker.City(), 60)
		err := batch.add(ctx, fmt.Sprintf("(%d, %s, %s, %s, %s)",
			i,
			quote(datagen.Truncate(city+" Office", 100)),
			quote(city),
			quote(g.faker.State()),
			quote(datagen.Truncate(g.faker.Zip(), 10)),
		))
		if err != nil {
			return err
		}
	}
	return batch.done(ctx)
}

// generateEmployees writes staff and the manages relation. The first
// employee of each office manages the rest of it, and the first office
// manager also manages the other office managers.
func (g *Generator) generateEmployees(ctx context.Context, pool *pgxpool.Pool, numOffices int) error {
	total := numOffices * employeesPerOffice
	logging.Info().Int("count", total).Msg("Generating employees")

	employees := g.newBatch(pool, "employees",
		"(employee_id, first_name, last_name, office_id, role, department, hire_date, email)", total)
	manages := g.newBatch(pool, "manages", "(manager_id, employee_id)", total)

	var id int64
	for office := 1; office <= numOffices; office++ {
		var managerID int64
		for n := 0; n < employeesPerOffice; n++ {
			id++
			role := officeManagerRole
			if n > 0 {
				role = datagen.ChooseWeighted(g.faker, staffRoles, staffRoleWeights)
			}
			if role.department == "Sales" || role.department == "Rentals" {
				g.agents = append(g.agents, id)
			}

			first := datagen.Truncate(g.faker.FirstName(), 50)
			last := datagen.Truncate(g.faker.LastName(), 50)
			employees.push(fmt.Sprintf("(%d, %s, %s, %d, %s, %s, %s, %s)",
				id, quote(first), quote(last), office,
				quote(role.role), quote(role.department),
				sqlDate(g.pastDate(15*365)),
				quote(datagen.Truncate(strings.ToLower(first+"."+last)+"@example.com", 100)),
			))

			switch {
			case n == 0:
				managerID = id
				if office > 1 {
					manages.push(fmt.Sprintf("(1, %d)", id))
				}
			default:
				manages.push(fmt.Sprintf("(%d, %d)", managerID, id))
			}
		}

		// Flush employees before any manages rows that reference them.
		if employees.full() || office == numOffices {
			if err := employees.flush(ctx); err != nil {
				return err
			}
			if err := manages.flush(ctx); err != nil {
				return err
			}
		}
	}

	if err := employees.done(ctx); err != nil {
		return err
	}
	return manages.done(ctx)
}

// generateListings writes listings and at most one transaction per
// listing. Listing status agrees with the transaction terms.
func (g *Generator) generateListings(ctx context.Context, pool *pgxpool.Pool, count, numEmployees int) error {
	logging.Info().Int("count", count).Msg("Generating property listings and transactions")

	listings := g.newBatch(pool, "property_listings",
		"(property_id, address, city, zip_code, property_type, listing_price, listing_date, status)", count)
	transactions := g.newBatch(pool, "transactions",
		"(transaction_id, employee_id, property_id, transaction_date, transaction_amount, brokerage_fee, terms)", count)

	var txnID int64
	for i := 1; i <= count; i++ {
		plan := datagen.ChooseWeighted(g.faker, listingPlans, listingPlanWeights)
		price := g.amount(80000, 1500000)
		listed := g.pastDate(3 * 365)

		listings.push(fmt.Sprintf("(%d, %s, %s, %s, %s, %s, %s, %s)",
			i,
			quote(datagen.Truncate(g.faker.Street(), 120)),
			quote(datagen.Truncate(g.faker.City(), 60)),
			quote(datagen.Truncate(g.faker.Zip(), 10)),
			quote(datagen.Choose(g.faker, propertyTypes)),
			sqlMoney(price),
			sqlDate(listed),
			quote(plan.status.String()),
		))

		if plan.terms != "" {
			txnID++
			closed := listed.AddDate(0, 0, g.faker.Int(3, 240))
			if closed.After(g.now) {
				closed = g.now
			}
			amount := price.Mul(decimal.NewFromFloat(g.faker.Float64(0.9, 1.05))).Round(2)
			fee := amount.Mul(decimal.NewFromFloat(g.faker.Float64(0.02, 0.06))).Round(2)
			transactions.push(fmt.Sprintf("(%d, %d, %d, %s, %s, %s, %s)",
				txnID, g.randomAgent(numEmployees), i, sqlDate(closed),
				sqlMoney(amount), sqlMoney(fee), quote(plan.terms.String()),
			))
		}

		if listings.full() {
			if err := listings.flush(ctx); err != nil {
				return err
			}
			if err := transactions.flush(ctx); err != nil {
				return err
			}
		}
	}

	if err := listings.done(ctx); err != nil {
		return err
	}
	return transactions.done(ctx)
}

func (g *Generator) randomAgent(numEmployees int) int64 {
	if len(g.agents) == 0 {
		return int64(g.faker.Int(1, numEmployees))
	}
	return datagen.Choose(g.faker, g.agents)
}

func (g *Generator) generatePayroll(ctx context.Context, pool *pgxpool.Pool, numEmployees int) error {
	total := numEmployees * payrollMonths
	logging.Info().Int("count", total).Msg("Generating payroll")
	batch := g.newBatch(pool, "payroll", "(payroll_id, employee_id, pay_date, salary, bonus)", total)

	firstOfMonth := time.Date(g.now.Year(), g.now.Month(), 1, 0, 0, 0, 0, time.UTC)
	var id int64
	for emp := 1; emp <= numEmployees; emp++ {
		salary := g.amount(3000, 12000)
		for m := payrollMonths - 1; m >= 0; m-- {
			id++
			bonus := "NULL"
			if g.faker.Chance(0.35) {
				bonus = sqlMoney(g.amount(100, 5000))
			}
			err := batch.add(ctx, fmt.Sprintf("(%d, %d, %s, %s, %s)",
				id, emp, sqlDate(firstOfMonth.AddDate(0, -m, 0)), sqlMoney(salary), bonus))
			if err != nil {
				return err
			}
		}
	}
	return batch.done(ctx)
}

func (g *Generator) generateFinancialRecords(ctx context.Context, pool *pgxpool.Pool, numOffices int) error {
	total := numOffices * financialMonths
	logging.Info().Int("count", total).Msg("Generating financial records")
	batch := g.newBatch(pool, "financial_records",
		"(record_id, office_id, record_date, revenue, operational_expenses)", total)

	firstOfMonth := time.Date(g.now.Year(), g.now.Month(), 1, 0, 0, 0, 0, time.UTC)
	var id int64
	for office := 1; office <= numOffices; office++ {
		for m := financialMonths - 1; m >= 0; m-- {
			id++
			err := batch.add(ctx, fmt.Sprintf("(%d, %d, %s, %s, %s)",
				id, office, sqlDate(firstOfMonth.AddDate(0, -m, 0)),
				sqlMoney(g.amount(40000, 400000)), sqlMoney(g.amount(15000, 120000))))
			if err != nil {
				return err
			}
		}
	}
	return batch.done(ctx)
}

// generateCampaigns creates at most one campaign per property.
func (g *Generator) generateCampaigns(ctx context.Context, pool *pgxpool.Pool, count, numListings int) error {
	count = min(max(1, count), numListings)
	logging.Info().Int("count", count).Msg("Generating marketing campaigns")
	batch := g.newBatch(pool, "marketing_campaigns",
		"(campaign_id, property_id, campaign_name, channel, budget, start_date, end_date)", count)

	stride := max(1, numListings/count)
	for i := 1; i <= count; i++ {
		start := g.pastDate(2 * 365)
		channel := datagen.Choose(g.faker, campaignChannels)
		err := batch.add(ctx, fmt.Sprintf("(%d, %d, %s, %s, %s, %s, %s)",
			i, (i-1)*stride+1,
			quote(datagen.Truncate(channel+" "+g.faker.Word()+" campaign", 100)),
			quote(channel),
			sqlMoney(g.amount(250, 25000)),
			sqlDate(start),
			sqlDate(start.AddDate(0, 0, g.faker.Int(7, 90))),
		))
		if err != nil {
			return err
		}
	}
	return batch.done(ctx)
}

func (g *Generator) generateSpecializations(ctx context.Context, pool *pgxpool.Pool) error {
	logging.Info().Int("agents", len(g.agents)).Msg("Generating agent specializations")
	batch := g.newBatch(pool, "agent_specializations", "(employee_id, specialization)", len(g.agents)*2)

	for _, agent := range g.agents {
		first := g.faker.Int(0, len(specializations)-1)
		picks := []string{specializations[first]}
		if g.faker.Bool() {
			picks = append(picks, specializations[(first+1+g.faker.Int(0, len(specializations)-2))%len(specializations)])
		}
		for _, s := range picks {
			if err := batch.add(ctx, fmt.Sprintf("(%d, %s)", agent, quote(s))); err != nil {
				return err
			}
		}
	}
	return batch.done(ctx)
}

func (g *Generator) generateFeedback(ctx context.Context, pool *pgxpool.Pool, count int) error {
	count = max(1, count)
	logging.Info().Int("count", count).Msg("Generating client feedback")
	batch := g.newBatch(pool, "client_feedback",
		"(feedback_id, employee_id, client_name, rating, feedback_date)", count)

	for i := 1; i <= count; i++ {
		err := batch.add(ctx, fmt.Sprintf("(%d, %d, %s, %s, %s)",
			i, g.randomAgent(1),
			quote(datagen.Truncate(g.faker.Name(), 100)),
			quote(datagen.ChooseWeighted(g.faker, ratingValues, ratingWeights)),
			sqlDate(g.pastDate(2*365)),
		))
		if err != nil {
			return err
		}
	}
	return batch.done(ctx)
}

func (g *Generator) generateEvents(ctx context.Context, pool *pgxpool.Pool, count, numListings int) error {
	count = max(1, count)
	logging.Info().Int("count", count).Msg("Generating events")
	batch := g.newBatch(pool, "events",
		"(event_id, property_id, event_type, start_time, end_time, attendees)", count)

	for i := 1; i <= count; i++ {
		start := g.pastDate(2*365).Add(time.Duration(g.faker.Int(9, 17)) * time.Hour)
		attendees := make([]string, g.faker.Int(0, 8))
		for j := range attendees {
			attendees[j] = g.faker.Name()
		}
		err := batch.add(ctx, fmt.Sprintf("(%d, %d, %s, %s, %s, %s)",
			i, g.faker.Int(1, numListings),
			quote(datagen.Choose(g.faker, eventTypes)),
			sqlTimestamp(start),
			sqlTimestamp(start.Add(time.Duration(g.faker.Int(1, 4))*time.Hour)),
			sqlTextArray(attendees),
		))
		if err != nil {
			return err
		}
	}
	return batch.done(ctx)
}

func (g *Generator) generatePerformance(ctx context.Context, pool *pgxpool.Pool, count int) error {
	count = max(1, count)
	logging.Info().Int("count", count).Msg("Generating employee performance")
	batch := g.newBatch(pool, "employee_performance",
		"(performance_id, employee_id, performance_date, performance_amount, employee_rating)", count)

	for i := 1; i <= count; i++ {
		err := batch.add(ctx, fmt.Sprintf("(%d, %d, %s, %s, %s)",
			i, g.randomAgent(1),
			sqlDate(g.pastDate(2*365)),
			sqlMoney(g.amount(1000, 90000)),
			quote(datagen.ChooseWeighted(g.faker, ratingValues, ratingWeights)),
		))
		if err != nil {
			return err
		}
	}
	return batch.done(ctx)
}
