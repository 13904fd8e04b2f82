/*
errors.go - Error kinds raised by the calculation engine

PURPOSE:
  The engine rejects malformed input; it never substitutes zero values to
  mask a failure. Every failure is one of three kinds, each available as a
  sentinel (for errors.Is) and as a structured type (for errors.As):

    ErrInvalidAttendance  / *InvalidAttendanceError   - bad single-day input
    ErrInvalidPeriod      / *InvalidPeriodError       - bad period bounds
    ErrPayrollCalculation / *PayrollCalculationError  - bad top-level request

  A PayrollCalculationError may wrap a cause (e.g. an InvalidPeriodError),
  in which case errors.Is matches both kinds.

SEE ALSO:
  - attendance.go, period.go, payroll.go: where these are raised
  - api/handlers.go: HTTP status mapping
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidAttendance is returned for malformed attendance entries.
	ErrInvalidAttendance = errors.New("invalid attendance")

	// ErrInvalidPeriod is returned when a period is missing a bound or ends before it starts.
	ErrInvalidPeriod = errors.New("invalid period")

	// ErrPayrollCalculation is returned when a payroll request cannot be computed.
	ErrPayrollCalculation = errors.New("payroll calculation failed")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// InvalidAttendanceError describes a rejected attendance entry.
type InvalidAttendanceError struct {
	EmployeeID EmployeeID
	Date       Date
	Reason     string
}

func (e *InvalidAttendanceError) Error() string {
	if e.Date.IsZero() {
		return fmt.Sprintf("invalid attendance for employee %d: %s", e.EmployeeID, e.Reason)
	}
	return fmt.Sprintf("invalid attendance for employee %d on %s: %s", e.EmployeeID, e.Date, e.Reason)
}

func (e *InvalidAttendanceError) Unwrap() error { return ErrInvalidAttendance }

// InvalidPeriodError describes rejected period bounds.
type InvalidPeriodError struct {
	Start  Date
	End    Date
	Reason string
}

func (e *InvalidPeriodError) Error() string {
	return fmt.Sprintf("invalid period [%s, %s]: %s", e.Start, e.End, e.Reason)
}

func (e *InvalidPeriodError) Unwrap() error { return ErrInvalidPeriod }

// PayrollCalculationError describes a rejected payroll request.
type PayrollCalculationError struct {
	EmployeeID EmployeeID
	Reason     string
	Err        error // optional underlying cause
}

func (e *PayrollCalculationError) Error() string {
	msg := fmt.Sprintf("payroll calculation for employee %d: %s", e.EmployeeID, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *PayrollCalculationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrPayrollCalculation}
	}
	return []error{ErrPayrollCalculation, e.Err}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError reports whether err was caused by invalid caller input.
// Every engine error is; collaborator errors (storage, transport) are not.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidAttendance) ||
		errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrPayrollCalculation)
}

func invalidAttendance(id EmployeeID, date Date, format string, args ...any) error {
	return &InvalidAttendanceError{EmployeeID: id, Date: date, Reason: fmt.Sprintf(format, args...)}
}

func payrollFailure(id EmployeeID, cause error, format string, args ...any) error {
	return &PayrollCalculationError{EmployeeID: id, Reason: fmt.Sprintf(format, args...), Err: cause}
}
