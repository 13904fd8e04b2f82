/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Engine and store types
  already carry JSON tags and are returned directly where they fit; the types
  here cover request bodies and composite responses.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Employee:    EmployeeRequest
  Attendance:  AttendanceEntryRequest, SaveAttendanceRequest, AttendanceResponse,
               EvaluateRequest, ImportResponse
  Payroll:     PeriodRequest, RunPayrollRequest, PayrollRunResponse
  Scenarios:   ScenarioDTO, LoadScenarioRequest

VALIDATION:
  Validation is done in handlers and in the engine constructors. DTOs are
  pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - store/store.go: Employee, PayrollEntry
*/
package api

import (
	"fmt"

	"github.com/motorph/payroll-engine/engine"
	"github.com/motorph/payroll-engine/payrun"
	"github.com/motorph/payroll-engine/store"
	"github.com/shopspring/decimal"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeRequest creates or replaces an employee.
type EmployeeRequest struct {
	ID               engine.EmployeeID          `json:"employee_id"`
	FirstName        string                     `json:"first_name"`
	LastName         string                     `json:"last_name"`
	Birthday         string                     `json:"birthday,omitempty"`
	Position         string                     `json:"position"`
	Status           string                     `json:"status"`
	Phone            string                     `json:"phone,omitempty"`
	Address          string                     `json:"address,omitempty"`
	SSSNumber        string                     `json:"sss_number,omitempty"`
	PhilHealthNumber string                     `json:"philhealth_number,omitempty"`
	BasicSalary      decimal.Decimal            `json:"basic_salary"`
	Allowances       map[string]decimal.Decimal `json:"allowances,omitempty"`
}

func (r EmployeeRequest) toEmployee() (store.Employee, error) {
	emp := store.Employee{
		ID:               r.ID,
		FirstName:        r.FirstName,
		LastName:         r.LastName,
		Position:         r.Position,
		Status:           r.Status,
		Phone:            r.Phone,
		Address:          r.Address,
		SSSNumber:        r.SSSNumber,
		PhilHealthNumber: r.PhilHealthNumber,
		BasicSalary:      r.BasicSalary,
		Allowances:       r.Allowances,
	}
	if r.Birthday != "" {
		d, err := engine.ParseDate(r.Birthday)
		if err != nil {
			return store.Employee{}, fmt.Errorf("%w: birthday: %v", store.ErrInvalidEmployee, err)
		}
		emp.Birthday = d
	}
	return emp, nil
}

// =============================================================================
// ATTENDANCE
// =============================================================================

// AttendanceEntryRequest is one day of raw time logs. Empty log_in means absent.
type AttendanceEntryRequest struct {
	Date   string `json:"date"`
	LogIn  string `json:"log_in,omitempty"`
	LogOut string `json:"log_out,omitempty"`
}

// SaveAttendanceRequest records several days for one employee at once.
type SaveAttendanceRequest struct {
	Entries []AttendanceEntryRequest `json:"entries"`
}

func (r AttendanceEntryRequest) toEntry(id engine.EmployeeID) (engine.AttendanceEntry, error) {
	date, err := engine.ParseDate(r.Date)
	if err != nil {
		return engine.AttendanceEntry{}, &engine.InvalidAttendanceError{EmployeeID: id, Reason: err.Error()}
	}
	logIn, err := optionalClock(id, date, r.LogIn)
	if err != nil {
		return engine.AttendanceEntry{}, err
	}
	logOut, err := optionalClock(id, date, r.LogOut)
	if err != nil {
		return engine.AttendanceEntry{}, err
	}
	return engine.NewAttendanceEntry(id, date, logIn, logOut)
}

func optionalClock(id engine.EmployeeID, date engine.Date, s string) (*engine.Clock, error) {
	if s == "" {
		return nil, nil
	}
	c, err := engine.ParseClock(s)
	if err != nil {
		return nil, &engine.InvalidAttendanceError{EmployeeID: id, Date: date, Reason: err.Error()}
	}
	return &c, nil
}

// AttendanceResponse is the evaluated attendance for a period.
type AttendanceResponse struct {
	engine.PeriodAggregate
	AverageHours   decimal.Decimal `json:"average_hours"`
	AttendanceRate decimal.Decimal `json:"attendance_rate"`
}

func toAttendanceResponse(agg engine.PeriodAggregate) AttendanceResponse {
	return AttendanceResponse{
		PeriodAggregate: agg,
		AverageHours:    agg.AverageHours().Round(2),
		AttendanceRate:  agg.AttendanceRate().Round(4),
	}
}

// EvaluateRequest evaluates one day without storing it. Shift defaults to the
// configured policy's shift.
type EvaluateRequest struct {
	EmployeeID engine.EmployeeID `json:"employee_id"`
	AttendanceEntryRequest
	ShiftStart string `json:"shift_start,omitempty"`
	ShiftEnd   string `json:"shift_end,omitempty"`
}

// ImportResponse reports an attendance spreadsheet import.
type ImportResponse struct {
	Imported  int                 `json:"imported"`
	Employees []engine.EmployeeID `json:"employees"`
}

// =============================================================================
// PAYROLL
// =============================================================================

// PeriodRequest names a pay period as two YYYY-MM-DD dates.
type PeriodRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (r PeriodRequest) toPeriod() (engine.PayPeriod, error) {
	start, err := engine.ParseDate(r.Start)
	if err != nil {
		return engine.PayPeriod{}, &engine.InvalidPeriodError{Reason: "start: " + err.Error()}
	}
	end, err := engine.ParseDate(r.End)
	if err != nil {
		return engine.PayPeriod{}, &engine.InvalidPeriodError{Start: start, Reason: "end: " + err.Error()}
	}
	return engine.NewPayPeriod(start, end)
}

// RunPayrollRequest runs a period for many employees. Without EmployeeIDs
// every employee matching Status (or everyone) is paid.
type RunPayrollRequest struct {
	PeriodRequest
	EmployeeIDs []engine.EmployeeID `json:"employee_ids,omitempty"`
	Status      string              `json:"status,omitempty"`
}

// PayrollRunResponse is the result of a run or a period lookup.
type PayrollRunResponse struct {
	Period  engine.PayPeriod     `json:"period"`
	Records []store.PayrollEntry `json:"records"`
	Summary payrun.Summary       `json:"summary"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO describes a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
