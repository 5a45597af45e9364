package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/christopherklint97/chatrail/internal/directory"
)

const seededKey = "directory_seeded_at"

// Seed replaces the directory tables with ds in one transaction.
func (db *DB) Seed(ctx context.Context, ds *directory.Dataset) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting seed: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"employees", "departments", "pay_runs", "pto_summary"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	for _, e := range ds.Employees {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO employees (id, name, department, role, salary, last_paycheck, manager)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.Name, e.Department, e.Role, e.Salary, e.LastPaycheck, e.Manager,
		); err != nil {
			return fmt.Errorf("inserting employee %d: %w", e.ID, err)
		}
	}
	for _, d := range ds.Departments {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO departments (id, name, headcount, budget) VALUES (?, ?, ?, ?)",
			d.ID, d.Name, d.Headcount, d.Budget,
		); err != nil {
			return fmt.Errorf("inserting department %d: %w", d.ID, err)
		}
	}
	for _, p := range ds.PayRuns {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO pay_runs (id, period, total_amount, employee_count, processed_date)
			 VALUES (?, ?, ?, ?, ?)`,
			p.ID, p.Period, p.TotalAmount, p.EmployeeCount, p.ProcessedDate,
		); err != nil {
			return fmt.Errorf("inserting pay run %d: %w", p.ID, err)
		}
	}
	s := ds.PTO
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO pto_summary (id, year, used, remaining, policy, approval_required, manager)
		 VALUES (1, ?, ?, ?, ?, ?, ?)`,
		s.Year, s.Used, s.Remaining, s.Policy, s.ApprovalRequired, s.Manager,
	); err != nil {
		return fmt.Errorf("inserting time-off summary: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO state (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		seededKey, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("recording seed: %w", err)
	}

	return tx.Commit()
}

// SeedIfEmpty seeds the directory unless it has been seeded before. It
// reports whether it seeded.
func (db *DB) SeedIfEmpty(ctx context.Context, ds *directory.Dataset) (bool, error) {
	at, err := db.GetState(seededKey)
	if err != nil {
		return false, fmt.Errorf("reading seed state: %w", err)
	}
	if at != "" {
		return false, nil
	}
	return true, db.Seed(ctx, ds)
}

// Directory serves directory.Service from the database.
type Directory struct {
	db *DB
}

func (db *DB) Directory() *Directory {
	return &Directory{db: db}
}

const employeeColumns = "id, name, department, role, salary, last_paycheck, manager"

func (d *Directory) FindEmployeesByNameFragment(ctx context.Context, fragment string) ([]directory.Employee, error) {
	all, err := d.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}
	var out []directory.Employee
	for _, e := range all {
		if directory.MatchesFragment(e, fragment) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (d *Directory) FindEmployeesByDepartment(ctx context.Context, department string) ([]directory.Employee, error) {
	return d.queryEmployees(ctx,
		"SELECT "+employeeColumns+" FROM employees WHERE department = ? COLLATE NOCASE ORDER BY id",
		department,
	)
}

func (d *Directory) ListEmployees(ctx context.Context) ([]directory.Employee, error) {
	return d.queryEmployees(ctx, "SELECT "+employeeColumns+" FROM employees ORDER BY id")
}

func (d *Directory) queryEmployees(ctx context.Context, query string, args ...any) ([]directory.Employee, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying employees: %w", err)
	}
	defer rows.Close()

	var out []directory.Employee
	for rows.Next() {
		var e directory.Employee
		if err := rows.Scan(&e.ID, &e.Name, &e.Department, &e.Role, &e.Salary, &e.LastPaycheck, &e.Manager); err != nil {
			return nil, fmt.Errorf("scanning employee: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (d *Directory) ListDepartments(ctx context.Context) ([]directory.Department, error) {
	rows, err := d.db.QueryContext(ctx, "SELECT id, name, headcount, budget FROM departments ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("querying departments: %w", err)
	}
	defer rows.Close()

	var out []directory.Department
	for rows.Next() {
		var dep directory.Department
		if err := rows.Scan(&dep.ID, &dep.Name, &dep.Headcount, &dep.Budget); err != nil {
			return nil, fmt.Errorf("scanning department: %w", err)
		}
		out = append(out, dep)
	}
	return out, rows.Err()
}

func (d *Directory) ListPayRuns(ctx context.Context) ([]directory.PayRun, error) {
	rows, err := d.db.QueryContext(ctx,
		"SELECT id, period, total_amount, employee_count, processed_date FROM pay_runs ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("querying pay runs: %w", err)
	}
	defer rows.Close()

	var out []directory.PayRun
	for rows.Next() {
		var p directory.PayRun
		if err := rows.Scan(&p.ID, &p.Period, &p.TotalAmount, &p.EmployeeCount, &p.ProcessedDate); err != nil {
			return nil, fmt.Errorf("scanning pay run: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (d *Directory) CurrentUserPTOSummary(ctx context.Context) (directory.PTOSummary, error) {
	var s directory.PTOSummary
	err := d.db.QueryRowContext(ctx,
		"SELECT year, used, remaining, policy, approval_required, manager FROM pto_summary WHERE id = 1",
	).Scan(&s.Year, &s.Used, &s.Remaining, &s.Policy, &s.ApprovalRequired, &s.Manager)
	if errors.Is(err, sql.ErrNoRows) {
		return directory.PTOSummary{}, nil
	}
	if err != nil {
		return directory.PTOSummary{}, fmt.Errorf("querying time-off summary: %w", err)
	}
	return s, nil
}
