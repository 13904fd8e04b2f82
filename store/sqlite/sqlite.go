/*
Package sqlite provides a SQLite-backed implementation of store.Store.

PURPOSE:
  Persists employees, daily attendance and computed payroll records using
  SQLite. The same schema ports to PostgreSQL with minor dialect changes.

INTERFACES IMPLEMENTED:
  store.EmployeeStore:   employee master data and allowances
  store.AttendanceStore: one row per (employee, date), upserted
  store.PayrollStore:    one row per (employee, period), upserted, uuid ids

KEY TABLES:
  employees:       master data, basic salary as decimal text
  allowances:      (employee_id, name) -> amount
  attendance:      (employee_id, date) -> log_in, log_out ("HH:MM:SS" or NULL)
  payroll_records: computed payslips, itemized deductions as JSON

MONEY:
  Amounts are stored as TEXT via shopspring/decimal so no float rounding
  happens at rest.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. Multi-row writes run in a single
  database transaction.

WAL MODE:
  Opened with WAL (Write-Ahead Logging) and foreign keys on. ":memory:"
  databases are pinned to one connection so every query sees the same data.

USAGE:
  st, err := sqlite.New("./payroll.db")
  if err != nil {
      log.Fatal(err)
  }
  defer st.Close()

SEE ALSO:
  - store/store.go: Interface definitions
  - store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/motorph/payroll-engine/engine"
	"github.com/motorph/payroll-engine/store"
	"github.com/shopspring/decimal"
)

// Store implements store.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Compile-time check
var _ store.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id INTEGER PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		birthday TEXT,
		position TEXT,
		status TEXT,
		phone TEXT,
		address TEXT,
		sss_number TEXT,
		philhealth_number TEXT,
		basic_salary TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_employees_status
		ON employees(status);

	CREATE TABLE IF NOT EXISTS allowances (
		employee_id INTEGER NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		amount TEXT NOT NULL,
		PRIMARY KEY (employee_id, name)
	);

	-- One entry per employee per day; re-submitting a day replaces it
	CREATE TABLE IF NOT EXISTS attendance (
		employee_id INTEGER NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		date TEXT NOT NULL,
		log_in TEXT,
		log_out TEXT,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (employee_id, date)
	);

	CREATE TABLE IF NOT EXISTS payroll_records (
		id TEXT PRIMARY KEY,
		employee_id INTEGER NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		period_start TEXT NOT NULL,
		period_end TEXT NOT NULL,
		period_label TEXT NOT NULL,
		days_worked INTEGER NOT NULL,
		working_days INTEGER NOT NULL,
		basic_pay TEXT NOT NULL,
		allowances TEXT NOT NULL,
		gross_pay TEXT NOT NULL,
		deductions_json TEXT NOT NULL,
		total_deductions TEXT NOT NULL,
		net_pay TEXT NOT NULL,
		created_at TEXT NOT NULL,
		UNIQUE (employee_id, period_start, period_end)
	);

	CREATE INDEX IF NOT EXISTS idx_payroll_period
		ON payroll_records(period_start, period_end);
	`

	_, err := s.db.Exec(schema)
	return err
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// withTx runs fn inside a database transaction. Callers hold s.mu.
func (s *Store) withTx(ctx context.Context, fn func(q querier) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// =============================================================================
// EMPLOYEES
// =============================================================================

// SaveEmployee inserts or replaces an employee and their allowances.
func (s *Store) SaveEmployee(ctx context.Context, emp store.Employee) error {
	if err := emp.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(q querier) error {
		query := `
			INSERT INTO employees (id, first_name, last_name, birthday, position, status,
				phone, address, sss_number, philhealth_number, basic_salary, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				first_name = excluded.first_name,
				last_name = excluded.last_name,
				birthday = excluded.birthday,
				position = excluded.position,
				status = excluded.status,
				phone = excluded.phone,
				address = excluded.address,
				sss_number = excluded.sss_number,
				philhealth_number = excluded.philhealth_number,
				basic_salary = excluded.basic_salary
		`
		createdAt := now()
		if !emp.CreatedAt.IsZero() {
			createdAt = emp.CreatedAt.UTC().Format(time.RFC3339)
		}
		_, err := q.ExecContext(ctx, query,
			int64(emp.ID), emp.FirstName, emp.LastName, nullableDate(emp.Birthday),
			emp.Position, emp.Status, emp.Phone, emp.Address,
			emp.SSSNumber, emp.PhilHealthNumber, emp.BasicSalary.String(), createdAt,
		)
		if err != nil {
			return fmt.Errorf("failed to save employee: %w", err)
		}

		if _, err := q.ExecContext(ctx, "DELETE FROM allowances WHERE employee_id = ?", int64(emp.ID)); err != nil {
			return fmt.Errorf("failed to replace allowances: %w", err)
		}
		for name, amount := range emp.Allowances {
			_, err := q.ExecContext(ctx,
				"INSERT INTO allowances (employee_id, name, amount) VALUES (?, ?, ?)",
				int64(emp.ID), name, amount.String(),
			)
			if err != nil {
				return fmt.Errorf("failed to save allowance %q: %w", name, err)
			}
		}
		return nil
	})
}

const employeeColumns = `id, first_name, last_name, birthday, position, status,
	phone, address, sss_number, philhealth_number, basic_salary, created_at`

// GetEmployee returns store.ErrNotFound for an unknown id.
func (s *Store) GetEmployee(ctx context.Context, id engine.EmployeeID) (*store.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+employeeColumns+" FROM employees WHERE id = ?", int64(id),
	)
	if err != nil {
		return nil, err
	}
	employees, err := scanEmployees(rows)
	if err != nil {
		return nil, err
	}
	if len(employees) == 0 {
		return nil, fmt.Errorf("employee %d: %w", id, store.ErrNotFound)
	}
	if err := s.loadAllowances(ctx, employees); err != nil {
		return nil, err
	}
	return &employees[0], nil
}

// ListEmployees returns matching employees ordered by employee number.
func (s *Store) ListEmployees(ctx context.Context, filter store.EmployeeFilter) ([]store.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var where []string
	var args []any
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		where = append(where, "(LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?)")
		pattern := "%" + strings.ToLower(q) + "%"
		args = append(args, pattern, pattern)
	}

	query := "SELECT " + employeeColumns + " FROM employees"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	employees, err := scanEmployees(rows)
	if err != nil {
		return nil, err
	}
	if err := s.loadAllowances(ctx, employees); err != nil {
		return nil, err
	}
	return employees, nil
}

// DeleteEmployee removes the employee; attendance and payroll cascade.
func (s *Store) DeleteEmployee(ctx context.Context, id engine.EmployeeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM employees WHERE id = ?", int64(id))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("employee %d: %w", id, store.ErrNotFound)
	}
	return nil
}

func (s *Store) Profile(ctx context.Context, id engine.EmployeeID) (engine.CompensationProfile, error) {
	emp, err := s.GetEmployee(ctx, id)
	if err != nil {
		return engine.CompensationProfile{}, err
	}
	return emp.Profile()
}

func scanEmployees(rows *sql.Rows) ([]store.Employee, error) {
	defer rows.Close()

	var employees []store.Employee
	for rows.Next() {
		var emp store.Employee
		var id int64
		var birthday, position, status, phone, address, sss, philhealth sql.NullString
		var createdAt string
		if err := rows.Scan(&id, &emp.FirstName, &emp.LastName, &birthday, &position, &status,
			&phone, &address, &sss, &philhealth, &emp.BasicSalary, &createdAt); err != nil {
			return nil, err
		}
		emp.ID = engine.EmployeeID(id)
		if birthday.Valid && birthday.String != "" {
			d, err := engine.ParseDate(birthday.String)
			if err != nil {
				return nil, fmt.Errorf("employee %d: bad birthday: %w", id, err)
			}
			emp.Birthday = d
		}
		emp.Position, emp.Status = position.String, status.String
		emp.Phone, emp.Address = phone.String, address.String
		emp.SSSNumber, emp.PhilHealthNumber = sss.String, philhealth.String
		emp.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

// loadAllowances fills Allowances for each employee. Callers hold s.mu.
func (s *Store) loadAllowances(ctx context.Context, employees []store.Employee) error {
	if len(employees) == 0 {
		return nil
	}
	index := make(map[engine.EmployeeID]int, len(employees))
	for i, emp := range employees {
		index[emp.ID] = i
	}

	rows, err := s.db.QueryContext(ctx, "SELECT employee_id, name, amount FROM allowances")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var name string
		var amount decimal.Decimal
		if err := rows.Scan(&id, &name, &amount); err != nil {
			return err
		}
		i, ok := index[engine.EmployeeID(id)]
		if !ok {
			continue
		}
		if employees[i].Allowances == nil {
			employees[i].Allowances = make(map[string]decimal.Decimal)
		}
		employees[i].Allowances[name] = amount
	}
	return rows.Err()
}

// =============================================================================
// ATTENDANCE
// =============================================================================

func (s *Store) SaveAttendance(ctx context.Context, entry engine.AttendanceEntry) error {
	return s.SaveAttendanceBatch(ctx, []engine.AttendanceEntry{entry})
}

// SaveAttendanceBatch upserts all entries in one transaction.
func (s *Store) SaveAttendanceBatch(ctx context.Context, entries []engine.AttendanceEntry) error {
	for _, entry := range entries {
		if err := entry.Validate(); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(q querier) error {
		known := make(map[engine.EmployeeID]bool)
		for _, entry := range entries {
			if !known[entry.EmployeeID] {
				if err := employeeExists(ctx, q, entry.EmployeeID); err != nil {
					return err
				}
				known[entry.EmployeeID] = true
			}

			query := `
				INSERT INTO attendance (employee_id, date, log_in, log_out, updated_at)
				VALUES (?, ?, ?, ?, ?)
				ON CONFLICT(employee_id, date) DO UPDATE SET
					log_in = excluded.log_in,
					log_out = excluded.log_out,
					updated_at = excluded.updated_at
			`
			_, err := q.ExecContext(ctx, query,
				int64(entry.EmployeeID), entry.Date.String(),
				nullableClock(entry.LogIn), nullableClock(entry.LogOut), now(),
			)
			if err != nil {
				return fmt.Errorf("failed to save attendance for %s: %w", entry.Date, err)
			}
		}
		return nil
	})
}

// Attendance returns the employee's entries within period, by date.
func (s *Store) Attendance(ctx context.Context, id engine.EmployeeID, period engine.PayPeriod) ([]engine.AttendanceEntry, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT date, log_in, log_out FROM attendance
		WHERE employee_id = ? AND date >= ? AND date <= ?
		ORDER BY date`,
		int64(id), period.Start.String(), period.End.String(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []engine.AttendanceEntry
	for rows.Next() {
		var date string
		var logIn, logOut sql.NullString
		if err := rows.Scan(&date, &logIn, &logOut); err != nil {
			return nil, err
		}
		entry := engine.AttendanceEntry{EmployeeID: id}
		if entry.Date, err = engine.ParseDate(date); err != nil {
			return nil, fmt.Errorf("attendance %d/%s: %w", id, date, err)
		}
		if entry.LogIn, err = parseNullableClock(logIn); err != nil {
			return nil, fmt.Errorf("attendance %d/%s: %w", id, date, err)
		}
		if entry.LogOut, err = parseNullableClock(logOut); err != nil {
			return nil, fmt.Errorf("attendance %d/%s: %w", id, date, err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func employeeExists(ctx context.Context, q querier, id engine.EmployeeID) error {
	var one int
	err := q.QueryRowContext(ctx, "SELECT 1 FROM employees WHERE id = ?", int64(id)).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("employee %d: %w", id, store.ErrNotFound)
	}
	return err
}

// =============================================================================
// PAYROLL
// =============================================================================

// RecordPayroll upserts on (employee, period). A re-run keeps the original id.
func (s *Store) RecordPayroll(ctx context.Context, rec engine.PayrollRecord) (store.PayrollEntry, error) {
	deductionsJSON, err := json.Marshal(rec.Deductions)
	if err != nil {
		return store.PayrollEntry{}, fmt.Errorf("failed to encode deductions: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry := store.PayrollEntry{ID: uuid.NewString(), PayrollRecord: rec, CreatedAt: time.Now().UTC().Truncate(time.Second)}
	err = s.withTx(ctx, func(q querier) error {
		if err := employeeExists(ctx, q, rec.EmployeeID); err != nil {
			return err
		}
		query := `
			INSERT INTO payroll_records (id, employee_id, period_start, period_end, period_label,
				days_worked, working_days, basic_pay, allowances, gross_pay,
				deductions_json, total_deductions, net_pay, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(employee_id, period_start, period_end) DO UPDATE SET
				period_label = excluded.period_label,
				days_worked = excluded.days_worked,
				working_days = excluded.working_days,
				basic_pay = excluded.basic_pay,
				allowances = excluded.allowances,
				gross_pay = excluded.gross_pay,
				deductions_json = excluded.deductions_json,
				total_deductions = excluded.total_deductions,
				net_pay = excluded.net_pay,
				created_at = excluded.created_at
		`
		_, err := q.ExecContext(ctx, query,
			entry.ID, int64(rec.EmployeeID), rec.Period.Start.String(), rec.Period.End.String(), rec.PeriodLabel,
			rec.DaysWorked, rec.WorkingDays, rec.BasicPay.String(), rec.Allowances.String(), rec.GrossPay.String(),
			string(deductionsJSON), rec.TotalDeductions.String(), rec.NetPay.String(),
			entry.CreatedAt.Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("failed to save payroll record: %w", err)
		}

		return q.QueryRowContext(ctx,
			"SELECT id FROM payroll_records WHERE employee_id = ? AND period_start = ? AND period_end = ?",
			int64(rec.EmployeeID), rec.Period.Start.String(), rec.Period.End.String(),
		).Scan(&entry.ID)
	})
	if err != nil {
		return store.PayrollEntry{}, err
	}
	return entry, nil
}

func (s *Store) SavePayroll(ctx context.Context, rec engine.PayrollRecord) error {
	_, err := s.RecordPayroll(ctx, rec)
	return err
}

const payrollColumns = `id, employee_id, period_start, period_end, period_label,
	days_worked, working_days, basic_pay, allowances, gross_pay,
	deductions_json, total_deductions, net_pay, created_at`

// ListPayroll returns the employee's payroll history, oldest period first.
func (s *Store) ListPayroll(ctx context.Context, id engine.EmployeeID) ([]store.PayrollEntry, error) {
	return s.queryPayroll(ctx,
		"SELECT "+payrollColumns+" FROM payroll_records WHERE employee_id = ? ORDER BY period_start, employee_id",
		int64(id),
	)
}

// PayrollForPeriod returns every employee's record for exactly this period.
func (s *Store) PayrollForPeriod(ctx context.Context, period engine.PayPeriod) ([]store.PayrollEntry, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}
	return s.queryPayroll(ctx,
		"SELECT "+payrollColumns+" FROM payroll_records WHERE period_start = ? AND period_end = ? ORDER BY employee_id",
		period.Start.String(), period.End.String(),
	)
}

func (s *Store) queryPayroll(ctx context.Context, query string, args ...any) ([]store.PayrollEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []store.PayrollEntry
	for rows.Next() {
		entry, err := scanPayroll(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func scanPayroll(rows *sql.Rows) (store.PayrollEntry, error) {
	var entry store.PayrollEntry
	var employeeID int64
	var start, end, deductionsJSON, createdAt string
	rec := &entry.PayrollRecord

	err := rows.Scan(&entry.ID, &employeeID, &start, &end, &rec.PeriodLabel,
		&rec.DaysWorked, &rec.WorkingDays, &rec.BasicPay, &rec.Allowances, &rec.GrossPay,
		&deductionsJSON, &rec.TotalDeductions, &rec.NetPay, &createdAt)
	if err != nil {
		return entry, err
	}

	rec.EmployeeID = engine.EmployeeID(employeeID)
	if rec.Period.Start, err = engine.ParseDate(start); err != nil {
		return entry, err
	}
	if rec.Period.End, err = engine.ParseDate(end); err != nil {
		return entry, err
	}
	if err := json.Unmarshal([]byte(deductionsJSON), &rec.Deductions); err != nil {
		return entry, fmt.Errorf("payroll %s: bad deductions: %w", entry.ID, err)
	}
	entry.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return entry, nil
}

// =============================================================================
// ADMIN
// =============================================================================

// Reset clears all data. Used by tests and demo seeding.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"payroll_records", "attendance", "allowances", "employees"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// COLUMN HELPERS
// =============================================================================

func nullableDate(d engine.Date) sql.NullString {
	if d.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func nullableClock(c *engine.Clock) sql.NullString {
	if c == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: fmt.Sprintf("%02d:%02d:%02d", c.Hour(), c.Minute(), c.Second()), Valid: true}
}

func parseNullableClock(v sql.NullString) (*engine.Clock, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	c, err := engine.ParseClock(v.String)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
