package brokerage

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-realty/internal/apps"
	"github.com/pgEdge/pgedge-realty/internal/datagen"
	"github.com/pgEdge/pgedge-realty/internal/realty"
)

// Workload operation names outside the report catalog.
const (
	OpManagerLookup     = "manager_lookup"
	OpUpdateTerms       = "update_terms"
	OpRecordTransaction = "record_transaction"
)

// DefaultWriteRatio is the share of workload operations that write.
const DefaultWriteRatio = 0.1

// Relative frequency of each read before the write ratio is applied.
var readWeights = map[string]int{
	"top_performers":               8,
	"sales_ranking":                8,
	"underperformers":              6,
	"days_on_market":               4,
	"quarterly_financials":         6,
	"office_financial_summary":     6,
	"agent_ratings":                6,
	"specialization_effectiveness": 5,
	"campaign_effectiveness":       5,
	"marketing_spend":              5,
	"event_attendance":             4,
	"brokerage_fees_by_office":     6,
	"monthly_sales":                8,
	"payroll_summary":              5,
	"listing_status_summary":       10,
	"zip_code_sales":               4,
	OpManagerLookup:                4,
}

var writeWeights = map[string]int{
	OpUpdateTerms:       3,
	OpRecordTransaction: 1,
}

var workloadTerms = []realty.Terms{realty.TermsSold, "pending", "cancelled", "lease"}
var workloadTermsWeights = []int{40, 30, 15, 15}

// workloadMix spreads 1000 weight units over reads and writes so that
// writes receive writeRatio of them.
func workloadMix(writeRatio float64) []apps.QueryDefinition {
	writeRatio = math.Min(1, math.Max(0, writeRatio))

	descriptions := make(map[string]string, len(catalog)+3)
	for _, def := range catalog {
		descriptions[def.Name] = def.Description
	}
	descriptions[OpManagerLookup] = "Point lookup on the manager access view"
	descriptions[OpUpdateTerms] = "Change transaction terms and sync the listing status"
	descriptions[OpRecordTransaction] = "Insert a transaction and sync the listing status"

	scale := func(weights map[string]int, share float64, kind apps.QueryKind, out []apps.QueryDefinition) []apps.QueryDefinition {
		var total int
		for _, w := range weights {
			total += w
		}
		for _, name := range slices.Sorted(maps.Keys(weights)) {
			weight := int(math.Round(float64(weights[name]) * share * 1000 / float64(total)))
			if weight == 0 {
				continue
			}
			out = append(out, apps.QueryDefinition{
				Name:        name,
				Description: descriptions[name],
				Weight:      weight,
				Type:        kind,
			})
		}
		return out
	}

	mix := scale(readWeights, 1-writeRatio, apps.KindRead, nil)
	return scale(writeWeights, writeRatio, apps.KindWrite, mix)
}

// dataShape is what the workload needs to pick realistic arguments.
type dataShape struct {
	maxTransactionID int64
	maxEmployeeID    int64
	maxPropertyID    int64
	departments      []string
	managers         []int64
}

// Workload runs a weighted mix of reports and terms writes.
type Workload struct {
	params Params
	mix    []apps.QueryDefinition

	mu    sync.Mutex
	faker *datagen.Faker
	shape *dataShape
}

// NewWorkload creates a Workload. Report parameters other than department
// and manager come from params.
func NewWorkload(params Params, writeRatio float64) *Workload {
	return &Workload{
		params: params,
		mix:    workloadMix(writeRatio),
		faker:  datagen.NewFaker(),
	}
}

// Mix returns the operations and their weights.
func (w *Workload) Mix() []apps.QueryDefinition {
	return w.mix
}

// Execute runs one randomly chosen operation.
func (w *Workload) Execute(ctx context.Context, db apps.DB) apps.QueryResult {
	shape, err := w.loadShape(ctx, db)
	if err != nil {
		return apps.QueryResult{QueryName: "load_shape", Error: err}
	}

	op := w.choose()
	start := time.Now()
	rows, err := w.run(ctx, db, shape, op)

	return apps.QueryResult{
		QueryName:    op,
		Duration:     time.Since(start),
		RowsAffected: rows,
		Error:        err,
	}
}

func (w *Workload) choose() string {
	names := make([]string, len(w.mix))
	weights := make([]int, len(w.mix))
	for i, q := range w.mix {
		names[i] = q.Name
		weights[i] = q.Weight
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	return datagen.ChooseWeighted(w.faker, names, weights)
}

func (w *Workload) run(ctx context.Context, db apps.DB, shape *dataShape, op string) (int64, error) {
	switch op {
	case OpUpdateTerms:
		return w.updateTerms(ctx, db, shape)
	case OpRecordTransaction:
		return w.recordTransaction(ctx, db, shape)
	case OpManagerLookup:
		if len(shape.managers) == 0 {
			return 0, nil
		}
		w.mu.Lock()
		manager := datagen.Choose(w.faker, shape.managers)
		w.mu.Unlock()
		rows, err := NewReporter(db).ManagerEmployees(ctx, manager)
		return int64(len(rows)), err
	default:
		params := w.params
		if op == "sales_ranking" {
			if len(shape.departments) == 0 {
				return 0, nil
			}
			w.mu.Lock()
			params.Department = datagen.Choose(w.faker, shape.departments)
			w.mu.Unlock()
		}
		table, err := NewReporter(db).RunReport(ctx, op, params)
		return int64(table.Len()), err
	}
}

func (w *Workload) updateTerms(ctx context.Context, db apps.DB, shape *dataShape) (int64, error) {
	if shape.maxTransactionID == 0 {
		return 0, nil
	}

	w.mu.Lock()
	id := w.faker.Int64(1, shape.maxTransactionID)
	terms := datagen.ChooseWeighted(w.faker, workloadTerms, workloadTermsWeights)
	w.mu.Unlock()

	result, err := NewStore(db).UpdateTransactionTerms(ctx, id, terms)
	if errors.Is(err, ErrTransactionNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return 1 + result.RowsAffected, nil
}

func (w *Workload) recordTransaction(ctx context.Context, db apps.DB, shape *dataShape) (int64, error) {
	if shape.maxEmployeeID == 0 || shape.maxPropertyID == 0 {
		return 0, nil
	}

	w.mu.Lock()
	t := NewTransaction{
		EmployeeID: w.faker.Int64(1, shape.maxEmployeeID),
		PropertyID: w.faker.Int64(1, shape.maxPropertyID),
		Date:       time.Now().UTC(),
		Amount:     w.faker.Money(80000, 1500000),
		Terms:      datagen.ChooseWeighted(w.faker, workloadTerms, workloadTermsWeights),
	}
	w.mu.Unlock()
	t.BrokerageFee = t.Amount.Mul(decimal.NewFromFloat(0.03)).Round(2)

	_, result, err := NewStore(db).RecordTransaction(ctx, t)
	if err != nil {
		return 0, err
	}
	return 1 + result.RowsAffected, nil
}

// loadShape reads table bounds once per Workload.
func (w *Workload) loadShape(ctx context.Context, db apps.DB) (*dataShape, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.shape != nil {
		return w.shape, nil
	}

	shape := &dataShape{}
	err := db.QueryRow(ctx, `
        SELECT (SELECT COALESCE(MAX(transaction_id), 0) FROM transactions),
               (SELECT COALESCE(MAX(employee_id), 0) FROM employees),
               (SELECT COALESCE(MAX(property_id), 0) FROM property_listings)
    `).Scan(&shape.maxTransactionID, &shape.maxEmployeeID, &shape.maxPropertyID)
	if err != nil {
		return nil, fmt.Errorf("load table bounds: %w", err)
	}

	rows, err := db.Query(ctx, `SELECT DISTINCT department FROM employees ORDER BY department`)
	if err != nil {
		return nil, fmt.Errorf("load departments: %w", err)
	}
	shape.departments, err = pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("load departments: %w", err)
	}

	rows, err = db.Query(ctx, `SELECT DISTINCT manager_id::bigint FROM manages ORDER BY 1 LIMIT 1000`)
	if err != nil {
		return nil, fmt.Errorf("load managers: %w", err)
	}
	shape.managers, err = pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("load managers: %w", err)
	}

	w.shape = shape
	return shape, nil
}
