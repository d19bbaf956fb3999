package brokerage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// ManagerEmployee is one row of manager_employee_view.
type ManagerEmployee struct {
	ManagerID    int64
	ManagerName  string
	EmployeeID   int64
	EmployeeName string
	Role         string
	OfficeID     int64
	OfficeName   string
	City         string
}

const managerEmployeeColumns = `
    manager_id, manager_name, employee_id, employee_name,
    role, office_id, office_name, city
`

const listManagerEmployeesSQL = `
    SELECT` + managerEmployeeColumns + `
    FROM manager_employee_view
    ORDER BY manager_id, employee_id
`

const managerEmployeesSQL = `
    SELECT` + managerEmployeeColumns + `
    FROM manager_employee_view
    WHERE manager_id = $1
    ORDER BY employee_id
`

func scanManagerEmployee(row pgx.CollectableRow) (ManagerEmployee, error) {
	var m ManagerEmployee
	err := row.Scan(&m.ManagerID, &m.ManagerName, &m.EmployeeID, &m.EmployeeName,
		&m.Role, &m.OfficeID, &m.OfficeName, &m.City)
	return m, err
}

// ListManagerEmployees returns the whole access view ordered by manager
// then employee.
func (r *Reporter) ListManagerEmployees(ctx context.Context) ([]ManagerEmployee, error) {
	rows, err := r.db.Query(ctx, listManagerEmployeesSQL)
	if err != nil {
		return nil, fmt.Errorf("list manager employees: %w", err)
	}
	out, err := pgx.CollectRows(rows, scanManagerEmployee)
	if err != nil {
		return nil, fmt.Errorf("list manager employees: %w", err)
	}
	return out, nil
}

// ManagerEmployees returns the employees reporting to one manager. An
// unknown manager yields an empty result.
func (r *Reporter) ManagerEmployees(ctx context.Context, managerID int64) ([]ManagerEmployee, error) {
	rows, err := r.db.Query(ctx, managerEmployeesSQL, managerID)
	if err != nil {
		return nil, fmt.Errorf("manager %d employees: %w", managerID, err)
	}
	out, err := pgx.CollectRows(rows, scanManagerEmployee)
	if err != nil {
		return nil, fmt.Errorf("manager %d employees: %w", managerID, err)
	}
	return out, nil
}

// ManagerEmployeesTable renders view rows for the CLI.
func ManagerEmployeesTable(rows []ManagerEmployee) Table {
	t := Table{Columns: []string{"manager_id", "manager_name", "employee_id", "employee_name", "role", "office_id", "office_name", "city"}}
	for _, m := range rows {
		t.Rows = append(t.Rows, []string{
			itoa(m.ManagerID), m.ManagerName, itoa(m.EmployeeID), m.EmployeeName,
			m.Role, itoa(m.OfficeID), m.OfficeName, m.City,
		})
	}
	return t
}
