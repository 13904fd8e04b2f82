package deductions

import (
	"github.com/motorph/payroll-engine/engine"
	"github.com/shopspring/decimal"
)

// Deduction names used in payroll records.
const (
	NameSSS            = "sss"
	NamePhilHealth     = "philhealth"
	NamePagIBIG        = "pagibig"
	NameWithholdingTax = "withholding_tax"
)

// =============================================================================
// SSS - Social Security System, employee share
// =============================================================================

// SSS computes Rate x monthly salary credit. The credit is basic salary rounded
// to the nearest CreditStep (half-up) and clamped to [MinCredit, MaxCredit].
type SSS struct {
	Rate       decimal.Decimal
	MinCredit  decimal.Decimal
	MaxCredit  decimal.Decimal
	CreditStep decimal.Decimal
}

// DefaultSSS is the 2023-2024 schedule: 4.5% of a 4,000-30,000 credit in 500 steps.
func DefaultSSS() SSS {
	return SSS{
		Rate:       engine.MustParseDecimal("0.045"),
		MinCredit:  decimal.NewFromInt(4000),
		MaxCredit:  decimal.NewFromInt(30000),
		CreditStep: decimal.NewFromInt(500),
	}
}

func (s SSS) Name() string { return NameSSS }

// SalaryCredit returns the monthly salary credit for a basic salary.
func (s SSS) SalaryCredit(basic decimal.Decimal) decimal.Decimal {
	credit := basic
	if s.CreditStep.IsPositive() {
		credit = basic.Div(s.CreditStep).Round(0).Mul(s.CreditStep)
	}
	return clamp(credit, s.MinCredit, s.MaxCredit)
}

func (s SSS) Compute(_ decimal.Decimal, profile engine.CompensationProfile) decimal.Decimal {
	if profile.BasicSalary.IsZero() {
		return decimal.Zero
	}
	return s.SalaryCredit(profile.BasicSalary).Mul(s.Rate)
}

// =============================================================================
// PHILHEALTH - Employee half of the premium
// =============================================================================

// PhilHealth computes PremiumRate x basic salary (clamped to [Floor, Ceiling]),
// of which the employee pays EmployeeShare.
type PhilHealth struct {
	PremiumRate   decimal.Decimal
	EmployeeShare decimal.Decimal
	Floor         decimal.Decimal
	Ceiling       decimal.Decimal
}

// DefaultPhilHealth is the 2024 schedule: 5% premium on 10,000-100,000, split evenly.
func DefaultPhilHealth() PhilHealth {
	return PhilHealth{
		PremiumRate:   engine.MustParseDecimal("0.05"),
		EmployeeShare: engine.MustParseDecimal("0.5"),
		Floor:         decimal.NewFromInt(10000),
		Ceiling:       decimal.NewFromInt(100000),
	}
}

func (p PhilHealth) Name() string { return NamePhilHealth }

func (p PhilHealth) Compute(_ decimal.Decimal, profile engine.CompensationProfile) decimal.Decimal {
	if profile.BasicSalary.IsZero() {
		return decimal.Zero
	}
	base := clamp(profile.BasicSalary, p.Floor, p.Ceiling)
	return base.Mul(p.PremiumRate).Mul(p.EmployeeShare)
}

// =============================================================================
// PAG-IBIG - Home Development Mutual Fund, employee share
// =============================================================================

// PagIBIG charges LowRate up to LowThreshold and HighRate above it, on basic
// salary limited to MaxCompensation.
type PagIBIG struct {
	LowRate         decimal.Decimal
	HighRate        decimal.Decimal
	LowThreshold    decimal.Decimal
	MaxCompensation decimal.Decimal
}

// DefaultPagIBIG is the 2024 schedule: 1% up to 1,500, else 2%, on at most 10,000.
func DefaultPagIBIG() PagIBIG {
	return PagIBIG{
		LowRate:         engine.MustParseDecimal("0.01"),
		HighRate:        engine.MustParseDecimal("0.02"),
		LowThreshold:    decimal.NewFromInt(1500),
		MaxCompensation: decimal.NewFromInt(10000),
	}
}

func (p PagIBIG) Name() string { return NamePagIBIG }

func (p PagIBIG) Compute(_ decimal.Decimal, profile engine.CompensationProfile) decimal.Decimal {
	basic := profile.BasicSalary
	rate := p.HighRate
	if basic.LessThanOrEqual(p.LowThreshold) {
		rate = p.LowRate
	}
	return decimal.Min(basic, p.MaxCompensation).Mul(rate)
}

// =============================================================================
// WITHHOLDING TAX - Graduated monthly income tax
// =============================================================================

// TaxBracket taxes income above Over at Rate, on top of Base.
type TaxBracket struct {
	Over decimal.Decimal
	Base decimal.Decimal
	Rate decimal.Decimal
}

// WithholdingTax applies graduated brackets to taxable income:
//
//	taxable = gross - non-taxable allowances - contributions
//
// Contributions are recomputed from their own rules, so this rule stays a pure
// function of (gross, profile) regardless of where it sits in the rule list.
type WithholdingTax struct {
	Brackets             []TaxBracket // ascending by Over
	Contributions        []engine.DeductionRule
	NonTaxableAllowances []string
}

// MonthlyTaxTable is the 2023 onward monthly withholding table.
func MonthlyTaxTable() []TaxBracket {
	d := engine.MustParseDecimal
	return []TaxBracket{
		{Over: d("0"), Base: d("0"), Rate: d("0")},
		{Over: d("20833"), Base: d("0"), Rate: d("0.15")},
		{Over: d("33333"), Base: d("1875"), Rate: d("0.20")},
		{Over: d("66667"), Base: d("8541.80"), Rate: d("0.25")},
		{Over: d("166667"), Base: d("33541.80"), Rate: d("0.30")},
		{Over: d("666667"), Base: d("183541.80"), Rate: d("0.35")},
	}
}

func (w WithholdingTax) Name() string { return NameWithholdingTax }

// TaxableIncome is gross less non-taxable allowances and contributions, never negative.
func (w WithholdingTax) TaxableIncome(gross decimal.Decimal, profile engine.CompensationProfile) decimal.Decimal {
	taxable := gross
	for _, name := range w.NonTaxableAllowances {
		taxable = taxable.Sub(profile.Allowance(name))
	}
	for _, rule := range w.Contributions {
		taxable = taxable.Sub(rule.Compute(gross, profile).Round(engine.DefaultScale))
	}
	if taxable.IsNegative() {
		return decimal.Zero
	}
	return taxable
}

func (w WithholdingTax) Compute(gross decimal.Decimal, profile engine.CompensationProfile) decimal.Decimal {
	taxable := w.TaxableIncome(gross, profile)
	brackets := w.Brackets
	if len(brackets) == 0 {
		brackets = MonthlyTaxTable()
	}
	var bracket *TaxBracket
	for i := range brackets {
		if taxable.GreaterThan(brackets[i].Over) {
			bracket = &brackets[i]
		}
	}
	if bracket == nil {
		return decimal.Zero
	}
	return bracket.Base.Add(taxable.Sub(bracket.Over).Mul(bracket.Rate))
}

// Compile-time checks
var (
	_ engine.DeductionRule = SSS{}
	_ engine.DeductionRule = PhilHealth{}
	_ engine.DeductionRule = PagIBIG{}
	_ engine.DeductionRule = WithholdingTax{}
)
