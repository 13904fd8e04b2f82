package engine

import "github.com/shopspring/decimal"

// =============================================================================
// DEDUCTION RULES - Pluggable, ordered contribution/tax policies
// =============================================================================

// DeductionRule computes one named deduction from gross pay and the profile.
// Implementations must be pure: same inputs, same amount.
//
// Ready-made rules live in the deductions package; factory builds them from JSON.
type DeductionRule interface {
	Name() string
	Compute(gross decimal.Decimal, profile CompensationProfile) decimal.Decimal
}

// Deduction is one itemized line of a payroll record.
type Deduction struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// RuleFunc adapts a plain function into a DeductionRule.
func RuleFunc(name string, fn func(gross decimal.Decimal, profile CompensationProfile) decimal.Decimal) DeductionRule {
	return funcRule{name: name, fn: fn}
}

type funcRule struct {
	name string
	fn   func(decimal.Decimal, CompensationProfile) decimal.Decimal
}

func (r funcRule) Name() string { return r.name }

func (r funcRule) Compute(gross decimal.Decimal, profile CompensationProfile) decimal.Decimal {
	return r.fn(gross, profile)
}
