package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-realty/internal/apps/brokerage"
	"github.com/pgEdge/pgedge-realty/internal/logging"
)

var (
	reportDepartment    string
	reportCutoff        int
	reportWindowDays    int
	reportWindowMonths  int
	reportThreshold     int
	reportYear          int
	reportIncludeUnsold bool
	reportFormat        string
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List available reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		for _, def := range brokerage.Catalog() {
			fmt.Fprintf(tw, "  %s\t%s\n", def.Name, def.Description)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		cmd.Println()
		cmd.Println("Use 'pgedge-realty report <name>' to run one.")
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report <name>",
	Short: "Run one report and print its rows",
	Long: `Run a report from the catalog against the current table state. Reports
are read only. Parameters not given on the command line come from the
reports section of the config file.

Example:
  pgedge-realty report top_performers --cutoff 5 --window-days 90
  pgedge-realty report sales_ranking --department Sales --format json
  pgedge-realty report days_on_market --include-unsold`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	f := reportCmd.Flags()
	f.StringVar(&reportDepartment, "department", "",
		"department to rank (sales_ranking)")
	f.IntVar(&reportCutoff, "cutoff", 0,
		"keep employees ranked at or above this (top_performers, 0 = all)")
	f.IntVar(&reportWindowDays, "window-days", 0,
		"trailing window in days (top_performers)")
	f.IntVar(&reportWindowMonths, "window-months", 0,
		"trailing window in months (underperformers, monthly_sales)")
	f.IntVar(&reportThreshold, "threshold", 0,
		"lowest rating that counts as performing (underperformers)")
	f.IntVar(&reportYear, "year", 0,
		"calendar year (quarterly_financials, marketing_spend, brokerage_fees_by_office, payroll_summary; default: current)")
	f.BoolVar(&reportIncludeUnsold, "include-unsold", false,
		"list unsold properties too (days_on_market)")
	f.StringVar(&reportFormat, "format", "",
		"output format: table, json, yaml")
}

// reportFlags applies the report flags the user set on top of p.
func reportFlags(cmd *cobra.Command, p brokerage.Params) brokerage.Params {
	f := cmd.Flags()
	if f.Changed("department") {
		p.Department = reportDepartment
	}
	if f.Changed("cutoff") {
		p.Cutoff = reportCutoff
	}
	if f.Changed("window-days") {
		p.WindowDays = reportWindowDays
	}
	if f.Changed("window-months") {
		p.WindowMonths = reportWindowMonths
		p.SalesWindowMonths = reportWindowMonths
	}
	if f.Changed("threshold") {
		p.Threshold = reportThreshold
	}
	if f.Changed("year") {
		p.Year = reportYear
	}
	if f.Changed("include-unsold") {
		p.IncludeUnsold = reportIncludeUnsold
	}
	return p
}

func runReport(cmd *cobra.Command, args []string) error {
	def, err := brokerage.Lookup(args[0])
	if err != nil {
		return fmt.Errorf("%w; run 'pgedge-realty reports' for the list", err)
	}

	if reportFormat != "" {
		cfg.Reports.Format = reportFormat
	}
	if err := cfg.ValidateReports(); err != nil {
		return err
	}
	params := reportFlags(cmd, reportParams(cfg.Reports))

	ctx := context.Background()
	pool, err := connectInitialized(ctx, 2)
	if err != nil {
		return err
	}
	defer pool.Close()

	logging.Debug().
		Str("report", def.Name).
		Interface("params", params).
		Msg("Running report")

	table, err := def.Run(ctx, brokerage.NewReporter(pool), params)
	if err != nil {
		return fmt.Errorf("report %s: %w", def.Name, err)
	}
	return writeTable(cmd.OutOrStdout(), cfg.Reports.Format, table)
}
