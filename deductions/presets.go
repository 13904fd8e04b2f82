package deductions

import (
	"fmt"

	"github.com/motorph/payroll-engine/engine"
)

// =============================================================================
// COMMON DEDUCTION SETS
// =============================================================================

// Contributions returns the three statutory contributions in payslip order.
func Contributions() []engine.DeductionRule {
	return []engine.DeductionRule{DefaultSSS(), DefaultPhilHealth(), DefaultPagIBIG()}
}

// Standard returns the MotorPH deduction list: SSS, PhilHealth, Pag-IBIG and
// withholding tax. Rice, phone and clothing allowances are treated as
// de minimis benefits and excluded from taxable income.
func Standard() []engine.DeductionRule {
	contributions := Contributions()
	tax := WithholdingTax{
		Brackets:      MonthlyTaxTable(),
		Contributions: contributions,
		NonTaxableAllowances: []string{
			engine.AllowanceRice,
			engine.AllowancePhone,
			engine.AllowanceClothing,
		},
	}
	return append(contributions, tax)
}

// TaxOnly returns withholding tax with contributions exempted but not deducted.
// Useful when contributions are remitted outside of this payroll.
func TaxOnly() []engine.DeductionRule {
	return []engine.DeductionRule{WithholdingTax{
		Brackets:      MonthlyTaxTable(),
		Contributions: Contributions(),
	}}
}

// =============================================================================
// JSON PRESETS - Parsed by factory.PolicyFactory
// =============================================================================

// StandardPolicyJSON returns the Standard deduction list as a policy document
// for the given shift bounds ("HH:MM").
func StandardPolicyJSON(shiftStart, shiftEnd string) string {
	return fmt.Sprintf(`{
  "name": "MotorPH Standard",
  "shift": {"start": %q, "end": %q},
  "scale": 2,
  "deductions": [
    {"type": "sss"},
    {"type": "philhealth"},
    {"type": "pagibig"},
    {
      "type": "withholding_tax",
      "exempt": [%q, %q, %q],
      "non_taxable_allowances": [%q, %q, %q]
    }
  ]
}`, shiftStart, shiftEnd,
		NameSSS, NamePhilHealth, NamePagIBIG,
		engine.AllowanceRice, engine.AllowancePhone, engine.AllowanceClothing)
}
