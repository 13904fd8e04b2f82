/*
aggregate.go - PeriodAggregator

PURPOSE:
  Summarizes an employee's daily evaluations over a pay period: days worked,
  total hours, total late and undertime minutes.

FILTERING:
  Entries for other employees, or dated outside [period.Start, period.End],
  are ignored. They are not errors.

DUPLICATES:
  When the same date appears more than once for the employee, the last entry
  encountered wins. Malformed duplicate data must not abort a payroll run.

EMPTY INPUT:
  No matching entries is valid and yields an aggregate with zeroed sums.
*/
package engine

import (
	"sort"

	"github.com/shopspring/decimal"
)

// PeriodAggregate is the derived summary for one employee and one period.
type PeriodAggregate struct {
	EmployeeID            EmployeeID        `json:"employee_id"`
	Period                PayPeriod         `json:"period"`
	DaysWorked            int               `json:"days_worked"`
	TotalHours            decimal.Decimal   `json:"total_hours"`
	TotalLateMinutes      int               `json:"total_late_minutes"`
	TotalUndertimeMinutes int               `json:"total_undertime_minutes"`
	LateDays              int               `json:"late_days"`
	UndertimeDays         int               `json:"undertime_days"`
	AbsentDays            int               `json:"absent_days"` // recorded entries without a log-in
	WorkingDays           int               `json:"working_days"`
	Days                  []DailyEvaluation `json:"days"` // chronological
}

// AverageHours is total hours per day worked, zero when no day was worked.
func (a PeriodAggregate) AverageHours() decimal.Decimal {
	if a.DaysWorked == 0 {
		return decimal.Zero
	}
	return a.TotalHours.Div(decimal.NewFromInt(int64(a.DaysWorked)))
}

// AttendanceRate is days worked over working days in the period, zero when the
// period has no working days.
func (a PeriodAggregate) AttendanceRate() decimal.Decimal {
	if a.WorkingDays == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(a.DaysWorked)).Div(decimal.NewFromInt(int64(a.WorkingDays)))
}

// Aggregate evaluates the employee's entries within period and sums the results.
// A nil evaluator uses the default shift.
//
// Fails with *InvalidPeriodError for bad bounds, *InvalidAttendanceError for a
// non-positive employee id, and propagates evaluation errors unchanged.
func Aggregate(employeeID EmployeeID, period PayPeriod, entries []AttendanceEntry, evaluator DayEvaluator) (PeriodAggregate, error) {
	if err := period.Validate(); err != nil {
		return PeriodAggregate{}, err
	}
	if !employeeID.Valid() {
		return PeriodAggregate{}, invalidAttendance(employeeID, Date{}, "employee id must be positive")
	}
	if evaluator == nil {
		evaluator = &Evaluator{}
	}

	// Latest wins per date.
	byDate := make(map[string]AttendanceEntry)
	var dates []Date
	for _, entry := range entries {
		if entry.EmployeeID != employeeID || !period.Contains(entry.Date) {
			continue
		}
		key := entry.Date.String()
		if _, seen := byDate[key]; !seen {
			dates = append(dates, entry.Date)
		}
		byDate[key] = entry
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	agg := PeriodAggregate{
		EmployeeID:  employeeID,
		Period:      period,
		TotalHours:  decimal.Zero,
		WorkingDays: period.WorkingDays(),
		Days:        make([]DailyEvaluation, 0, len(dates)),
	}
	for _, d := range dates {
		day, err := evaluator.Evaluate(byDate[d.String()])
		if err != nil {
			return PeriodAggregate{}, err
		}
		agg.Days = append(agg.Days, day)
		if !day.Present {
			agg.AbsentDays++
			continue
		}
		agg.DaysWorked++
		agg.TotalHours = agg.TotalHours.Add(day.WorkedHours)
		agg.TotalLateMinutes += day.LateMinutes
		agg.TotalUndertimeMinutes += day.UndertimeMinutes
		if day.Late {
			agg.LateDays++
		}
		if day.Undertime {
			agg.UndertimeDays++
		}
	}
	return agg, nil
}
