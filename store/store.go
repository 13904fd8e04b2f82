/*
Package store defines persistence for employees, attendance and payroll records.

PURPOSE:
  The engine is pure; it never loads or saves anything. This package holds the
  records that feed it (employee master data, daily time logs) and the records
  it produces (computed payslips).

INTERFACES:
  EmployeeStore:   employee master data, also serves CompensationProfile lookups
  AttendanceStore: daily log-in/log-out, one entry per employee per date
  PayrollStore:    computed payroll records, one per employee per period
  Store:           all three

IMPLEMENTATIONS:
  Memory (memory.go):   in-memory, for tests and dev
  sqlite.Store:         SQLite-backed, see store/sqlite

ATTENDANCE AT REST:
  SaveAttendance upserts on (employee, date). Re-submitting a day replaces it,
  matching the aggregator's latest-entry-wins rule.

SEE ALSO:
  - payrun/: consumes Profile/Attendance and records payroll
  - api/: HTTP surface over Store
*/
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/motorph/payroll-engine/engine"
	"github.com/shopspring/decimal"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidEmployee = errors.New("invalid employee")
)

// =============================================================================
// EMPLOYEE
// =============================================================================

// Employment statuses used by MotorPH.
const (
	StatusRegular      = "Regular"
	StatusProbationary = "Probationary"
)

// Employee is the master record for one employee.
type Employee struct {
	ID               engine.EmployeeID          `json:"employee_id"`
	FirstName        string                     `json:"first_name"`
	LastName         string                     `json:"last_name"`
	Birthday         engine.Date                `json:"birthday"`
	Position         string                     `json:"position"`
	Status           string                     `json:"status"`
	Phone            string                     `json:"phone,omitempty"`
	Address          string                     `json:"address,omitempty"`
	SSSNumber        string                     `json:"sss_number,omitempty"`
	PhilHealthNumber string                     `json:"philhealth_number,omitempty"`
	BasicSalary      decimal.Decimal            `json:"basic_salary"`
	Allowances       map[string]decimal.Decimal `json:"allowances,omitempty"`
	CreatedAt        time.Time                  `json:"created_at"`
}

// FullName returns "First Last".
func (e Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

// Validate checks the fields required to pay an employee.
func (e Employee) Validate() error {
	if !e.ID.Valid() {
		return fmt.Errorf("%w: employee id must be positive, got %d", ErrInvalidEmployee, e.ID)
	}
	if strings.TrimSpace(e.FirstName) == "" {
		return fmt.Errorf("%w: first name is required", ErrInvalidEmployee)
	}
	if strings.TrimSpace(e.LastName) == "" {
		return fmt.Errorf("%w: last name is required", ErrInvalidEmployee)
	}
	if e.BasicSalary.IsNegative() {
		return fmt.Errorf("%w: basic salary must not be negative", ErrInvalidEmployee)
	}
	if _, err := e.Profile(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEmployee, err)
	}
	return nil
}

// Profile returns the employee's compensation profile.
func (e Employee) Profile() (engine.CompensationProfile, error) {
	return engine.NewCompensationProfile(e.ID, e.BasicSalary, e.Allowances)
}

// EmployeeFilter narrows ListEmployees. Zero value lists everyone.
type EmployeeFilter struct {
	Status string // exact match
	Query  string // case-insensitive substring of first or last name
}

// Matches reports whether e passes the filter.
func (f EmployeeFilter) Matches(e Employee) bool {
	if f.Status != "" && e.Status != f.Status {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		return strings.Contains(strings.ToLower(e.FirstName), q) ||
			strings.Contains(strings.ToLower(e.LastName), q)
	}
	return true
}

// SortEmployees orders by employee number.
func SortEmployees(employees []Employee) {
	sort.Slice(employees, func(i, j int) bool { return employees[i].ID < employees[j].ID })
}

// =============================================================================
// PAYROLL ENTRY
// =============================================================================

// PayrollEntry is a persisted payroll record.
type PayrollEntry struct {
	ID string `json:"id"`
	engine.PayrollRecord
	CreatedAt time.Time `json:"created_at"`
}

// =============================================================================
// INTERFACES
// =============================================================================

type EmployeeStore interface {
	SaveEmployee(ctx context.Context, emp Employee) error
	// GetEmployee returns ErrNotFound when no such employee exists.
	GetEmployee(ctx context.Context, id engine.EmployeeID) (*Employee, error)
	ListEmployees(ctx context.Context, filter EmployeeFilter) ([]Employee, error)
	DeleteEmployee(ctx context.Context, id engine.EmployeeID) error
	Profile(ctx context.Context, id engine.EmployeeID) (engine.CompensationProfile, error)
}

type AttendanceStore interface {
	// SaveAttendance upserts on (employee, date). The employee must exist.
	SaveAttendance(ctx context.Context, entry engine.AttendanceEntry) error
	// SaveAttendanceBatch saves all entries or none.
	SaveAttendanceBatch(ctx context.Context, entries []engine.AttendanceEntry) error
	// Attendance returns the employee's entries within period, by date.
	Attendance(ctx context.Context, id engine.EmployeeID, period engine.PayPeriod) ([]engine.AttendanceEntry, error)
}

type PayrollStore interface {
	// RecordPayroll upserts on (employee, period) and returns the stored entry.
	// Re-running a period keeps the entry id.
	RecordPayroll(ctx context.Context, rec engine.PayrollRecord) (PayrollEntry, error)
	SavePayroll(ctx context.Context, rec engine.PayrollRecord) error
	ListPayroll(ctx context.Context, id engine.EmployeeID) ([]PayrollEntry, error)
	PayrollForPeriod(ctx context.Context, period engine.PayPeriod) ([]PayrollEntry, error)
}

// Store is the full persistence surface.
type Store interface {
	EmployeeStore
	AttendanceStore
	PayrollStore
}

// Resetter is implemented by stores that can be wiped (demo seeding, tests).
type Resetter interface {
	Reset(ctx context.Context) error
}
