/*
Package engine computes work-time facts and payroll from attendance data.

PURPOSE:
  This package is the calculation core of the payroll system. It turns raw
  attendance timestamps into daily evaluations, aggregates those over a pay
  period, and computes a payroll record (gross, deductions, net). It performs
  no I/O and holds no state: every operation is a pure function of its inputs,
  so payroll for different employees can be computed in parallel.

PIPELINE:
  AttendanceEntry  --Evaluator.Evaluate-->  DailyEvaluation
  []AttendanceEntry --Aggregate-->          PeriodAggregate
  PeriodAggregate   --ComputePayroll-->     PayrollRecord

DESIGN PRINCIPLES:
  1. Validated construction: NewAttendanceEntry, NewCompensationProfile and
     NewPayPeriod either return a valid value or an error.
  2. Precision: money and hours use decimal.Decimal.
  3. Policy as input: shift boundaries and the ordered deduction-rule list are
     parameters, never constants buried in the computation.
  4. Determinism: duplicate dates and duplicate deduction names resolve by
     "latest wins".

USAGE:
  period, _ := engine.NewPayPeriod(engine.NewDate(2024, 6, 1), engine.NewDate(2024, 6, 30))
  agg, err := engine.Aggregate(10001, period, entries, engine.NewEvaluator(engine.DefaultShift()))
  rec, err := engine.ComputePayroll(&profile, period, agg, rules)

SEE ALSO:
  - evaluator.go: DailyTimeEvaluator
  - aggregate.go: PeriodAggregator
  - payroll.go: PayrollComputer
  - deductions/: ready-made DeductionRule implementations
*/
package engine

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// EmployeeID identifies an employee. Valid identifiers are positive.
type EmployeeID int64

func (id EmployeeID) Valid() bool { return id > 0 }

// =============================================================================
// DECIMAL HELPERS
// =============================================================================

var (
	secondsPerHour = decimal.NewFromInt(3600)
)

// MustParseDecimal parses s or panics. Intended for literals in presets and tests.
func MustParseDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sumDecimals(values []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
