//-------------------------------------------------------------------------
//
// pgEdge Realty
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package brokerage implements the real-estate brokerage application:
// its schema, synthetic data, the listing status write path, the report
// catalog and the manager access view.
package brokerage

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema SQL for creating the brokerage database schema.
const createSchemaSQL = `
-- Offices: Branch offices
CREATE TABLE IF NOT EXISTS offices (
    office_id   INTEGER PRIMARY KEY,
    office_name VARCHAR(100) NOT NULL,
    city        VARCHAR(60) NOT NULL,
    state       CHAR(2) NOT NULL,
    zip_code    VARCHAR(10) NOT NULL
);

-- Employees: Agents, managers and staff
CREATE TABLE IF NOT EXISTS employees (
    employee_id INTEGER PRIMARY KEY,
    first_name  VARCHAR(50) NOT NULL,
    last_name   VARCHAR(50) NOT NULL,
    office_id   INTEGER NOT NULL REFERENCES offices(office_id),
    role        VARCHAR(30) NOT NULL,
    department  VARCHAR(30) NOT NULL,
    hire_date   DATE NOT NULL,
    email       VARCHAR(100)
);

-- Manages: Manager to subordinate relation
CREATE TABLE IF NOT EXISTS manages (
    manager_id  INTEGER NOT NULL REFERENCES employees(employee_id),
    employee_id INTEGER NOT NULL REFERENCES employees(employee_id),
    PRIMARY KEY (manager_id, employee_id)
);

-- Property Listings: Properties on the market
CREATE TABLE IF NOT EXISTS property_listings (
    property_id   BIGINT PRIMARY KEY,
    address       VARCHAR(120) NOT NULL,
    city          VARCHAR(60) NOT NULL,
    zip_code      VARCHAR(10) NOT NULL,
    property_type VARCHAR(30) NOT NULL,
    listing_price NUMERIC(14,2) NOT NULL,
    listing_date  DATE NOT NULL,
    status        VARCHAR(20) NOT NULL DEFAULT 'available'
);

-- Transactions: Sales and leases handled by an agent
CREATE TABLE IF NOT EXISTS transactions (
    transaction_id     BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
    employee_id        INTEGER NOT NULL REFERENCES employees(employee_id),
    property_id        BIGINT NOT NULL REFERENCES property_listings(property_id),
    transaction_date   DATE NOT NULL,
    transaction_amount NUMERIC(14,2) NOT NULL,
    brokerage_fee      NUMERIC(12,2) NOT NULL DEFAULT 0,
    terms              VARCHAR(30) NOT NULL,
    updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

-- Payroll: Salary and bonus line items
CREATE TABLE IF NOT EXISTS payroll (
    payroll_id  BIGINT PRIMARY KEY,
    employee_id INTEGER NOT NULL REFERENCES employees(employee_id),
    pay_date    DATE NOT NULL,
    salary      NUMERIC(12,2) NOT NULL,
    bonus       NUMERIC(12,2)
);

-- Financial Records: Office revenue and operating expenses
CREATE TABLE IF NOT EXISTS financial_records (
    record_id            BIGINT PRIMARY KEY,
    office_id            INTEGER NOT NULL REFERENCES offices(office_id),
    record_date          DATE NOT NULL,
    revenue              NUMERIC(14,2) NOT NULL DEFAULT 0,
    operational_expenses NUMERIC(14,2) NOT NULL DEFAULT 0
);

-- Marketing Campaigns: One campaign per property
CREATE TABLE IF NOT EXISTS marketing_campaigns (
    campaign_id   INTEGER PRIMARY KEY,
    property_id   BIGINT NOT NULL UNIQUE REFERENCES property_listings(property_id),
    campaign_name VARCHAR(100) NOT NULL,
    channel       VARCHAR(30) NOT NULL,
    budget        NUMERIC(12,2) NOT NULL,
    start_date    DATE NOT NULL,
    end_date      DATE NOT NULL
);

-- Agent Specializations: Market segments an agent works
CREATE TABLE IF NOT EXISTS agent_specializations (
    employee_id    INTEGER NOT NULL REFERENCES employees(employee_id),
    specialization VARCHAR(40) NOT NULL,
    PRIMARY KEY (employee_id, specialization)
);

-- Client Feedback: Ratings are text and may hold 'Not Rated'
CREATE TABLE IF NOT EXISTS client_feedback (
    feedback_id   BIGINT PRIMARY KEY,
    employee_id   INTEGER NOT NULL REFERENCES employees(employee_id),
    client_name   VARCHAR(100) NOT NULL,
    rating        VARCHAR(20) NOT NULL,
    feedback_date DATE NOT NULL
);

-- Events: Open houses and viewings
CREATE TABLE IF NOT EXISTS events (
    event_id    BIGINT PRIMARY KEY,
    property_id BIGINT NOT NULL REFERENCES property_listings(property_id),
    event_type  VARCHAR(30) NOT NULL,
    start_time  TIMESTAMP NOT NULL,
    end_time    TIMESTAMP NOT NULL,
    attendees   TEXT[] NOT NULL DEFAULT '{}'
);

-- Employee Performance: Periodic results and reviewer rating (text)
CREATE TABLE IF NOT EXISTS employee_performance (
    performance_id     BIGINT PRIMARY KEY,
    employee_id        INTEGER NOT NULL REFERENCES employees(employee_id),
    performance_date   DATE NOT NULL,
    performance_amount NUMERIC(14,2) NOT NULL,
    employee_rating    VARCHAR(20) NOT NULL
);

-- Manager access view: manager -> employee -> office, inner joins only
CREATE OR REPLACE VIEW manager_employee_view AS
SELECT m.manager_id,
       mgr.first_name || ' ' || mgr.last_name AS manager_name,
       e.employee_id,
       e.first_name || ' ' || e.last_name AS employee_name,
       e.role,
       o.office_id,
       o.office_name,
       o.city
FROM manages m
JOIN employees mgr ON m.manager_id = mgr.employee_id
JOIN employees e ON m.employee_id = e.employee_id
JOIN offices o ON e.office_id = o.office_id;

-- Create indexes for common queries
CREATE INDEX IF NOT EXISTS idx_employees_office_id ON employees(office_id);
CREATE INDEX IF NOT EXISTS idx_employees_department ON employees(department);
CREATE INDEX IF NOT EXISTS idx_manages_employee_id ON manages(employee_id);
CREATE INDEX IF NOT EXISTS idx_transactions_employee_id ON transactions(employee_id);
CREATE INDEX IF NOT EXISTS idx_transactions_property_id ON transactions(property_id);
CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(transaction_date);
CREATE INDEX IF NOT EXISTS idx_payroll_employee_id ON payroll(employee_id);
CREATE INDEX IF NOT EXISTS idx_financial_records_office_date ON financial_records(office_id, record_date);
CREATE INDEX IF NOT EXISTS idx_client_feedback_employee_id ON client_feedback(employee_id);
CREATE INDEX IF NOT EXISTS idx_events_property_id ON events(property_id);
CREATE INDEX IF NOT EXISTS idx_performance_employee_date ON employee_performance(employee_id, performance_date);
`

// Drop schema SQL
const dropSchemaSQL = `
DROP VIEW IF EXISTS manager_employee_view;
DROP TABLE IF EXISTS employee_performance CASCADE;
DROP TABLE IF EXISTS events CASCADE;
DROP TABLE IF EXISTS client_feedback CASCADE;
DROP TABLE IF EXISTS agent_specializations CASCADE;
DROP TABLE IF EXISTS marketing_campaigns CASCADE;
DROP TABLE IF EXISTS financial_records CASCADE;
DROP TABLE IF EXISTS payroll CASCADE;
DROP TABLE IF EXISTS transactions CASCADE;
DROP TABLE IF EXISTS property_listings CASCADE;
DROP TABLE IF EXISTS manages CASCADE;
DROP TABLE IF EXISTS employees CASCADE;
DROP TABLE IF EXISTS offices CASCADE;
`

// CreateSchema creates the brokerage database schema.
func CreateSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, createSchemaSQL)
	return err
}

// DropSchema drops the brokerage database schema.
func DropSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, dropSchemaSQL)
	return err
}
