/*
Package deductions provides ready-made engine.DeductionRule implementations.

PURPOSE:
  The engine applies an ordered list of deduction rules but knows no formula
  itself. This package holds the formulas: generic fixed/percentage rules and
  the Philippine statutory contributions and withholding tax used by MotorPH.

RULE TYPES (rules.go):
  Fixed:      constant amount per period (loans, union dues)
  Percentage: rate x base, base being gross pay or basic salary, optionally capped

STATUTORY (statutory.go):
  SSS, PhilHealth, PagIBIG, WithholdingTax

PRESETS (presets.go):
  Standard() returns the MotorPH ordering: SSS, PhilHealth, Pag-IBIG, tax.

EXAMPLE:
  rules := deductions.Standard()
  rules = append(rules, deductions.Fixed{Label: "company_loan", Amount: dec("1500")})
  rec, err := engine.ComputePayroll(&profile, period, agg, rules)

SEE ALSO:
  - engine/deduction.go: DeductionRule interface
  - factory/policy.go: JSON-configured rule lists
*/
package deductions

import (
	"github.com/motorph/payroll-engine/engine"
	"github.com/shopspring/decimal"
)

// Base selects what a Percentage rule multiplies.
type Base string

const (
	BaseGross       Base = "gross"
	BaseBasicSalary Base = "basic_salary"
)

func (b Base) amount(gross decimal.Decimal, profile engine.CompensationProfile) decimal.Decimal {
	if b == BaseBasicSalary {
		return profile.BasicSalary
	}
	return gross
}

// =============================================================================
// FIXED
// =============================================================================

// Fixed deducts the same amount every period.
type Fixed struct {
	Label  string
	Amount decimal.Decimal
}

func (f Fixed) Name() string { return f.Label }

func (f Fixed) Compute(decimal.Decimal, engine.CompensationProfile) decimal.Decimal {
	return f.Amount
}

// =============================================================================
// PERCENTAGE
// =============================================================================

// Percentage deducts Rate x Base, limited to Cap when Cap is set.
type Percentage struct {
	Label string
	Rate  decimal.Decimal
	Base  Base
	Cap   *decimal.Decimal
}

func (p Percentage) Name() string { return p.Label }

func (p Percentage) Compute(gross decimal.Decimal, profile engine.CompensationProfile) decimal.Decimal {
	amount := p.Base.amount(gross, profile).Mul(p.Rate)
	if p.Cap != nil && amount.GreaterThan(*p.Cap) {
		return *p.Cap
	}
	return amount
}

// Compile-time checks
var (
	_ engine.DeductionRule = Fixed{}
	_ engine.DeductionRule = Percentage{}
)

func clamp(v, min, max decimal.Decimal) decimal.Decimal {
	if v.LessThan(min) {
		return min
	}
	if v.GreaterThan(max) {
		return max
	}
	return v
}
