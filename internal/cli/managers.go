package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-realty/internal/apps/brokerage"
)

var (
	managersManager int64
	managersFormat  string
)

var managersCmd = &cobra.Command{
	Use:   "managers",
	Short: "Show the manager access view",
	Long: `List manager and employee pairs with the employee's office, as exposed by
manager_employee_view. Pass --manager to see one manager's employees.

Example:
  pgedge-realty managers
  pgedge-realty managers --manager 1 --format yaml`,
	RunE: runManagers,
}

func init() {
	managersCmd.Flags().Int64Var(&managersManager, "manager", 0,
		"only employees of this manager id")
	managersCmd.Flags().StringVar(&managersFormat, "format", "",
		"output format: table, json, yaml")
}

func runManagers(cmd *cobra.Command, args []string) error {
	if managersFormat != "" {
		cfg.Reports.Format = managersFormat
	}
	if err := cfg.ValidateReports(); err != nil {
		return err
	}

	ctx := context.Background()
	pool, err := connectInitialized(ctx, 1)
	if err != nil {
		return err
	}
	defer pool.Close()

	reporter := brokerage.NewReporter(pool)

	var rows []brokerage.ManagerEmployee
	if cmd.Flags().Changed("manager") {
		rows, err = reporter.ManagerEmployees(ctx, managersManager)
	} else {
		rows, err = reporter.ListManagerEmployees(ctx)
	}
	if err != nil {
		return err
	}
	return writeTable(cmd.OutOrStdout(), cfg.Reports.Format, brokerage.ManagerEmployeesTable(rows))
}
