/*
payroll.go - PayrollComputer

PURPOSE:
  Computes a PayrollRecord from a compensation profile and a period aggregate.

FORMULA:
  workingDays = Monday-Friday dates in the period
  gross       = basicSalary * daysWorked / workingDays + sum(allowances)
  deductions  = rules applied in order to (gross, profile); a later rule with
                the same name replaces the earlier amount in place
  net         = gross - totalDeductions (never clamped; may be negative)

ROUNDING:
  Prorated basic pay, total allowances and each deduction amount are rounded
  half-up to Computer.Scale decimal places (2 by default). Gross is the sum of
  the rounded parts and net is then exact.

FAILURES (all *PayrollCalculationError):
  - nil profile, or profile employee id <= 0, or an invalid profile
  - missing or inverted period (also matches ErrInvalidPeriod)
  - aggregate employee id different from the profile's
  - period without working days
  - a nil rule, a rule with an empty name, or a negative amount
*/
package engine

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultScale rounds money to centavos.
const DefaultScale int32 = 2

// PayrollRecord is the final product of one computation.
type PayrollRecord struct {
	EmployeeID      EmployeeID      `json:"employee_id"`
	Period          PayPeriod       `json:"period"`
	PeriodLabel     string          `json:"period_label"`
	DaysWorked      int             `json:"days_worked"`
	WorkingDays     int             `json:"working_days"`
	BasicPay        decimal.Decimal `json:"basic_pay"` // prorated basic salary
	Allowances      decimal.Decimal `json:"allowances"`
	GrossPay        decimal.Decimal `json:"gross_pay"`
	Deductions      []Deduction     `json:"deductions"` // first-appearance order, unique names
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	NetPay          decimal.Decimal `json:"net_pay"`
}

// Itemized returns the deductions as a name -> amount map.
func (r PayrollRecord) Itemized() map[string]decimal.Decimal {
	m := make(map[string]decimal.Decimal, len(r.Deductions))
	for _, d := range r.Deductions {
		m[d.Name] = d.Amount
	}
	return m
}

// Deduction returns the named amount and whether it was itemized.
func (r PayrollRecord) Deduction(name string) (decimal.Decimal, bool) {
	for _, d := range r.Deductions {
		if d.Name == name {
			return d.Amount, true
		}
	}
	return decimal.Zero, false
}

// Computer is the PayrollComputer. The zero value rounds to DefaultScale.
type Computer struct {
	// Scale is the number of decimal places money is rounded to; nil means
	// DefaultScale and a negative value disables rounding. 0 rounds to whole pesos.
	Scale *int32
}

// NewComputer returns a Computer rounding to scale decimal places.
func NewComputer(scale int32) *Computer {
	return &Computer{Scale: &scale}
}

var defaultComputer = &Computer{}

// ComputePayroll uses the default Computer.
func ComputePayroll(profile *CompensationProfile, period PayPeriod, aggregate PeriodAggregate, rules []DeductionRule) (PayrollRecord, error) {
	return defaultComputer.ComputePayroll(profile, period, aggregate, rules)
}

func (c *Computer) round(d decimal.Decimal) decimal.Decimal {
	scale := DefaultScale
	if c != nil && c.Scale != nil {
		scale = *c.Scale
	}
	if scale < 0 {
		return d
	}
	return d.Round(scale)
}

// ComputePayroll prorates basic salary, adds allowances, applies rules in order.
func (c *Computer) ComputePayroll(profile *CompensationProfile, period PayPeriod, aggregate PeriodAggregate, rules []DeductionRule) (PayrollRecord, error) {
	if profile == nil {
		return PayrollRecord{}, payrollFailure(0, nil, "compensation profile is required")
	}
	id := profile.EmployeeID
	if !id.Valid() {
		return PayrollRecord{}, payrollFailure(id, nil, "employee id must be positive")
	}
	if err := profile.Validate(); err != nil {
		return PayrollRecord{}, payrollFailure(id, err, "invalid compensation profile")
	}
	if err := period.Validate(); err != nil {
		return PayrollRecord{}, payrollFailure(id, err, "invalid pay period")
	}
	if aggregate.EmployeeID != id {
		return PayrollRecord{}, payrollFailure(id, nil, "aggregate belongs to employee %d", aggregate.EmployeeID)
	}
	workingDays := period.WorkingDays()
	if workingDays == 0 {
		return PayrollRecord{}, payrollFailure(id, nil, "period %s has no working days", period.Label())
	}

	basicPay := profile.BasicSalary.
		Mul(decimal.NewFromInt(int64(aggregate.DaysWorked))).
		Div(decimal.NewFromInt(int64(workingDays)))
	basicPay = c.round(basicPay)
	allowances := c.round(profile.TotalAllowances())
	gross := basicPay.Add(allowances)

	deductions, err := c.applyRules(*profile, gross, rules)
	if err != nil {
		return PayrollRecord{}, err
	}
	total := decimal.Zero
	for _, d := range deductions {
		total = total.Add(d.Amount)
	}

	return PayrollRecord{
		EmployeeID:      id,
		Period:          period,
		PeriodLabel:     period.Label(),
		DaysWorked:      aggregate.DaysWorked,
		WorkingDays:     workingDays,
		BasicPay:        basicPay,
		Allowances:      allowances,
		GrossPay:        gross,
		Deductions:      deductions,
		TotalDeductions: total,
		NetPay:          gross.Sub(total),
	}, nil
}

func (c *Computer) applyRules(profile CompensationProfile, gross decimal.Decimal, rules []DeductionRule) ([]Deduction, error) {
	deductions := make([]Deduction, 0, len(rules))
	position := make(map[string]int, len(rules))
	for i, rule := range rules {
		if rule == nil {
			return nil, payrollFailure(profile.EmployeeID, nil, "deduction rule %d is nil", i)
		}
		name := rule.Name()
		if strings.TrimSpace(name) == "" {
			return nil, payrollFailure(profile.EmployeeID, nil, "deduction rule %d has no name", i)
		}
		amount := c.round(rule.Compute(gross, profile))
		if amount.IsNegative() {
			return nil, payrollFailure(profile.EmployeeID, nil, "deduction %q is negative (%s)", name, amount)
		}
		if at, seen := position[name]; seen {
			deductions[at].Amount = amount
			continue
		}
		position[name] = len(deductions)
		deductions = append(deductions, Deduction{Name: name, Amount: amount})
	}
	return deductions, nil
}
