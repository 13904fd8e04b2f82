/*
evaluator.go - DailyTimeEvaluator

PURPOSE:
  Turns one AttendanceEntry into a DailyEvaluation against a standard shift.

RULES:
  No log-in:             absent, 0 hours, never late or undertime.
  Log-in, no log-out:    present but incomplete, 0 hours. Lateness is still
                         judged from the log-in; undertime is not.
  Log-in and log-out:    hours = (out - in) in decimal hours (08:00-17:30 = 9.5).
                         Late when in > shift start; undertime when out < shift end.

  Minutes are whole minutes, truncated. Hours are exact to the second.

EXAMPLE:
  ev := engine.NewEvaluator(engine.DefaultShift())   // 08:00-17:00
  day, err := ev.Evaluate(entry)                     // 08:30-17:00 -> Late, 30 min
*/
package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// DayEvaluator evaluates a single attendance entry. *Evaluator is the standard
// implementation; PeriodAggregator accepts any DayEvaluator.
type DayEvaluator interface {
	Evaluate(entry AttendanceEntry) (DailyEvaluation, error)
}

// Evaluator is the DailyTimeEvaluator. The zero value uses DefaultShift.
type Evaluator struct {
	Shift Shift
}

func NewEvaluator(shift Shift) *Evaluator {
	return &Evaluator{Shift: shift}
}

// EvaluateDay evaluates entry against explicit shift boundaries. Bounds that do
// not form a shift fail with *InvalidAttendanceError; no default is applied.
func EvaluateDay(entry AttendanceEntry, standardStart, standardEnd Clock) (DailyEvaluation, error) {
	shift, err := NewShift(standardStart, standardEnd)
	if err != nil {
		return DailyEvaluation{}, invalidAttendance(entry.EmployeeID, entry.Date, "%v", err)
	}
	return (&Evaluator{Shift: shift}).Evaluate(entry)
}

func (e *Evaluator) shift() Shift {
	if e == nil || (e.Shift == Shift{}) {
		return DefaultShift()
	}
	return e.Shift
}

// Evaluate fails with *InvalidAttendanceError for malformed entries.
func (e *Evaluator) Evaluate(entry AttendanceEntry) (DailyEvaluation, error) {
	if err := entry.Validate(); err != nil {
		return DailyEvaluation{}, err
	}
	shift := e.shift()
	if !shift.End.After(shift.Start) {
		return DailyEvaluation{}, invalidAttendance(entry.EmployeeID, entry.Date, "invalid shift %s", shift)
	}

	day := DailyEvaluation{
		EmployeeID:  entry.EmployeeID,
		Date:        entry.Date,
		WorkedHours: decimal.Zero,
	}
	if entry.LogIn == nil {
		day.Status = StatusAbsent
		return day, nil
	}

	logIn := *entry.LogIn
	day.LogIn = ClockPtr(logIn)
	day.Present = true
	if logIn.After(shift.Start) {
		day.Late = true
		day.LateMinutes = wholeMinutes(logIn.Sub(shift.Start))
	}

	if entry.LogOut == nil {
		day.Incomplete = true
		day.Status = statusOf(true, day.Late, false)
		return day, nil
	}

	logOut := *entry.LogOut
	day.LogOut = ClockPtr(logOut)
	day.WorkedHours = decimalHours(logOut.Sub(logIn))
	if logOut.Before(shift.End) {
		day.Undertime = true
		day.UndertimeMinutes = wholeMinutes(shift.End.Sub(logOut))
	}
	day.FullDay = !day.Late && !day.Undertime
	day.Status = statusOf(true, day.Late, day.Undertime)
	return day, nil
}

func wholeMinutes(d time.Duration) int {
	return int(d / time.Minute)
}

func decimalHours(d time.Duration) decimal.Decimal {
	seconds := decimal.NewFromInt(int64(d / time.Second))
	return seconds.Div(secondsPerHour)
}
