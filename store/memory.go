package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/motorph/payroll-engine/engine"
	"github.com/shopspring/decimal"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu         sync.RWMutex
	employees  map[engine.EmployeeID]Employee
	attendance map[engine.EmployeeID]map[string]engine.AttendanceEntry
	payroll    map[payrollKey]PayrollEntry
	now        func() time.Time
}

type payrollKey struct {
	EmployeeID engine.EmployeeID
	Start, End string
}

func keyOf(id engine.EmployeeID, period engine.PayPeriod) payrollKey {
	return payrollKey{EmployeeID: id, Start: period.Start.String(), End: period.End.String()}
}

func NewMemory() *Memory {
	return &Memory{
		employees:  make(map[engine.EmployeeID]Employee),
		attendance: make(map[engine.EmployeeID]map[string]engine.AttendanceEntry),
		payroll:    make(map[payrollKey]PayrollEntry),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Compile-time check
var _ Store = (*Memory)(nil)

// Reset clears all data.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees = make(map[engine.EmployeeID]Employee)
	m.attendance = make(map[engine.EmployeeID]map[string]engine.AttendanceEntry)
	m.payroll = make(map[payrollKey]PayrollEntry)
	return nil
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func (m *Memory) SaveEmployee(_ context.Context, emp Employee) error {
	if err := emp.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if prev, ok := m.employees[emp.ID]; ok {
		emp.CreatedAt = prev.CreatedAt
	} else if emp.CreatedAt.IsZero() {
		emp.CreatedAt = m.now()
	}
	m.employees[emp.ID] = cloneEmployee(emp)
	return nil
}

func (m *Memory) GetEmployee(_ context.Context, id engine.EmployeeID) (*Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	emp, ok := m.employees[id]
	if !ok {
		return nil, fmt.Errorf("employee %d: %w", id, ErrNotFound)
	}
	out := cloneEmployee(emp)
	return &out, nil
}

func (m *Memory) ListEmployees(_ context.Context, filter EmployeeFilter) ([]Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []Employee
	for _, emp := range m.employees {
		if filter.Matches(emp) {
			result = append(result, cloneEmployee(emp))
		}
	}
	SortEmployees(result)
	return result, nil
}

// DeleteEmployee removes the employee with their attendance and payroll.
func (m *Memory) DeleteEmployee(_ context.Context, id engine.EmployeeID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.employees[id]; !ok {
		return fmt.Errorf("employee %d: %w", id, ErrNotFound)
	}
	delete(m.employees, id)
	delete(m.attendance, id)
	for k := range m.payroll {
		if k.EmployeeID == id {
			delete(m.payroll, k)
		}
	}
	return nil
}

func (m *Memory) Profile(ctx context.Context, id engine.EmployeeID) (engine.CompensationProfile, error) {
	emp, err := m.GetEmployee(ctx, id)
	if err != nil {
		return engine.CompensationProfile{}, err
	}
	return emp.Profile()
}

// =============================================================================
// ATTENDANCE
// =============================================================================

func (m *Memory) SaveAttendance(_ context.Context, entry engine.AttendanceEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkEntryLocked(entry); err != nil {
		return err
	}
	m.putEntryLocked(entry)
	return nil
}

// SaveAttendanceBatch validates every entry before writing any.
func (m *Memory) SaveAttendanceBatch(_ context.Context, entries []engine.AttendanceEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, entry := range entries {
		if err := m.checkEntryLocked(entry); err != nil {
			return err
		}
	}
	for _, entry := range entries {
		m.putEntryLocked(entry)
	}
	return nil
}

func (m *Memory) checkEntryLocked(entry engine.AttendanceEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	if _, ok := m.employees[entry.EmployeeID]; !ok {
		return fmt.Errorf("employee %d: %w", entry.EmployeeID, ErrNotFound)
	}
	return nil
}

func (m *Memory) putEntryLocked(entry engine.AttendanceEntry) {
	days := m.attendance[entry.EmployeeID]
	if days == nil {
		days = make(map[string]engine.AttendanceEntry)
		m.attendance[entry.EmployeeID] = days
	}
	days[entry.Date.String()] = cloneEntry(entry)
}

func (m *Memory) Attendance(_ context.Context, id engine.EmployeeID, period engine.PayPeriod) ([]engine.AttendanceEntry, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []engine.AttendanceEntry
	for _, entry := range m.attendance[id] {
		if period.Contains(entry.Date) {
			result = append(result, cloneEntry(entry))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

// =============================================================================
// PAYROLL
// =============================================================================

func (m *Memory) RecordPayroll(_ context.Context, rec engine.PayrollRecord) (PayrollEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.employees[rec.EmployeeID]; !ok {
		return PayrollEntry{}, fmt.Errorf("employee %d: %w", rec.EmployeeID, ErrNotFound)
	}

	k := keyOf(rec.EmployeeID, rec.Period)
	entry := PayrollEntry{ID: uuid.NewString(), PayrollRecord: cloneRecord(rec), CreatedAt: m.now()}
	if prev, ok := m.payroll[k]; ok {
		entry.ID = prev.ID
	}
	m.payroll[k] = entry
	return PayrollEntry{ID: entry.ID, PayrollRecord: cloneRecord(entry.PayrollRecord), CreatedAt: entry.CreatedAt}, nil
}

func (m *Memory) SavePayroll(ctx context.Context, rec engine.PayrollRecord) error {
	_, err := m.RecordPayroll(ctx, rec)
	return err
}

// ListPayroll returns the employee's payroll history, oldest period first.
func (m *Memory) ListPayroll(_ context.Context, id engine.EmployeeID) ([]PayrollEntry, error) {
	return m.collectPayroll(func(k payrollKey) bool { return k.EmployeeID == id }), nil
}

// PayrollForPeriod returns every employee's record for exactly this period.
func (m *Memory) PayrollForPeriod(_ context.Context, period engine.PayPeriod) ([]PayrollEntry, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}
	start, end := period.Start.String(), period.End.String()
	return m.collectPayroll(func(k payrollKey) bool { return k.Start == start && k.End == end }), nil
}

func (m *Memory) collectPayroll(match func(payrollKey) bool) []PayrollEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []PayrollEntry
	for k, entry := range m.payroll {
		if match(k) {
			entry.PayrollRecord = cloneRecord(entry.PayrollRecord)
			result = append(result, entry)
		}
	}
	SortPayroll(result)
	return result
}

// SortPayroll orders by period start, then employee id.
func SortPayroll(entries []PayrollEntry) {
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.Period.Start.Equal(b.Period.Start) {
			return a.Period.Start.Before(b.Period.Start)
		}
		return a.EmployeeID < b.EmployeeID
	})
}

// =============================================================================
// COPY HELPERS
// =============================================================================

func cloneEmployee(e Employee) Employee {
	if e.Allowances != nil {
		allowances := make(map[string]decimal.Decimal, len(e.Allowances))
		for k, v := range e.Allowances {
			allowances[k] = v
		}
		e.Allowances = allowances
	}
	return e
}

func cloneEntry(e engine.AttendanceEntry) engine.AttendanceEntry {
	if e.LogIn != nil {
		e.LogIn = engine.ClockPtr(*e.LogIn)
	}
	if e.LogOut != nil {
		e.LogOut = engine.ClockPtr(*e.LogOut)
	}
	return e
}

func cloneRecord(r engine.PayrollRecord) engine.PayrollRecord {
	r.Deductions = append([]engine.Deduction(nil), r.Deductions...)
	return r
}
