package engine

import (
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ATTENDANCE ENTRY - Raw log-in / log-out for one employee on one date
// =============================================================================

// AttendanceEntry is one raw attendance record. LogIn and LogOut are optional:
// a nil LogIn means the employee was absent, a nil LogOut means the day is incomplete.
type AttendanceEntry struct {
	EmployeeID EmployeeID `json:"employee_id"`
	Date       Date       `json:"date"`
	LogIn      *Clock     `json:"log_in,omitempty"`
	LogOut     *Clock     `json:"log_out,omitempty"`
}

// NewAttendanceEntry validates and returns an entry. The clock values are copied.
func NewAttendanceEntry(id EmployeeID, date Date, logIn, logOut *Clock) (AttendanceEntry, error) {
	e := AttendanceEntry{EmployeeID: id, Date: date}
	if logIn != nil {
		e.LogIn = ClockPtr(*logIn)
	}
	if logOut != nil {
		e.LogOut = ClockPtr(*logOut)
	}
	if err := e.Validate(); err != nil {
		return AttendanceEntry{}, err
	}
	return e, nil
}

// Validate fails with *InvalidAttendanceError when the entry is malformed.
func (e AttendanceEntry) Validate() error {
	if !e.EmployeeID.Valid() {
		return invalidAttendance(e.EmployeeID, e.Date, "employee id must be positive")
	}
	if e.Date.IsZero() {
		return invalidAttendance(e.EmployeeID, e.Date, "date is required")
	}
	if e.LogIn != nil && e.LogOut != nil && e.LogOut.Before(*e.LogIn) {
		return invalidAttendance(e.EmployeeID, e.Date, "log-out %s precedes log-in %s", e.LogOut, e.LogIn)
	}
	return nil
}

// =============================================================================
// DAILY EVALUATION - Derived facts for one attendance entry
// =============================================================================

// Status summarizes a day. Present days may additionally be late and/or undertime.
type Status string

const (
	StatusPresent          Status = "Present"
	StatusLate             Status = "Late"
	StatusUndertime        Status = "Undertime"
	StatusLateAndUndertime Status = "Late, Undertime"
	StatusAbsent           Status = "Absent"
)

// DailyEvaluation is immutable once produced by an Evaluator.
type DailyEvaluation struct {
	EmployeeID       EmployeeID      `json:"employee_id"`
	Date             Date            `json:"date"`
	LogIn            *Clock          `json:"log_in,omitempty"`
	LogOut           *Clock          `json:"log_out,omitempty"`
	WorkedHours      decimal.Decimal `json:"worked_hours"`
	Present          bool            `json:"present"`
	Late             bool            `json:"late"`
	LateMinutes      int             `json:"late_minutes"`
	Undertime        bool            `json:"undertime"`
	UndertimeMinutes int             `json:"undertime_minutes"`
	Incomplete       bool            `json:"incomplete"` // logged in, never logged out
	FullDay          bool            `json:"full_day"`   // complete, on time, no undertime
	Status           Status          `json:"status"`
}

func statusOf(present, late, undertime bool) Status {
	switch {
	case !present:
		return StatusAbsent
	case late && undertime:
		return StatusLateAndUndertime
	case late:
		return StatusLate
	case undertime:
		return StatusUndertime
	default:
		return StatusPresent
	}
}

// HasFlag reports whether s carries the given flag, e.g. StatusLate in "Late, Undertime".
func (s Status) HasFlag(flag Status) bool {
	for _, part := range strings.Split(string(s), ", ") {
		if Status(part) == flag {
			return true
		}
	}
	return false
}
