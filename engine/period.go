package engine

import "time"

// =============================================================================
// PAY PERIOD - Inclusive date range for one payroll computation
// =============================================================================

// PayPeriod is an inclusive [Start, End] date range.
// Build it with NewPayPeriod; a zero bound means "missing".
type PayPeriod struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

// NewPayPeriod fails with *InvalidPeriodError if a bound is missing or start > end.
func NewPayPeriod(start, end Date) (PayPeriod, error) {
	p := PayPeriod{Start: start, End: end}
	if err := p.Validate(); err != nil {
		return PayPeriod{}, err
	}
	return p, nil
}

// MonthPeriod returns the whole calendar month.
func MonthPeriod(year int, month time.Month) PayPeriod {
	start := NewDate(year, month, 1)
	end := NewDate(year, month+1, 1).AddDays(-1)
	return PayPeriod{Start: start, End: end}
}

// Validate checks both bounds are present and ordered.
func (p PayPeriod) Validate() error {
	switch {
	case p.Start.IsZero() && p.End.IsZero():
		return &InvalidPeriodError{Start: p.Start, End: p.End, Reason: "start and end are required"}
	case p.Start.IsZero():
		return &InvalidPeriodError{Start: p.Start, End: p.End, Reason: "start is required"}
	case p.End.IsZero():
		return &InvalidPeriodError{Start: p.Start, End: p.End, Reason: "end is required"}
	case p.Start.After(p.End):
		return &InvalidPeriodError{Start: p.Start, End: p.End, Reason: "start is after end"}
	}
	return nil
}

// Contains returns true if d is within [Start, End].
func (p PayPeriod) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Days returns every date in the period.
func (p PayPeriod) Days() []Date {
	var days []Date
	for current := p.Start; current.BeforeOrEqual(p.End); current = current.AddDays(1) {
		days = append(days, current)
	}
	return days
}

// WorkingDays counts Monday-Friday dates in the period. This is the
// proration denominator for basic salary.
func (p PayPeriod) WorkingDays() int {
	if p.Validate() != nil {
		return 0
	}
	n := 0
	for current := p.Start; current.BeforeOrEqual(p.End); current = current.AddDays(1) {
		if current.IsWeekday() {
			n++
		}
	}
	return n
}

// Label is the human-readable period tag carried by payroll records.
func (p PayPeriod) Label() string {
	return p.Start.String() + " to " + p.End.String()
}

func (p PayPeriod) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}
