/*
Package factory provides JSON to Go payroll policy conversion.

PURPOSE:
  Converts JSON policy definitions into an engine.Shift and an ordered list of
  engine.DeductionRule values. Payroll staff can change shift hours or
  contribution rates in a file, and the factory creates the proper Go structs.

JSON SCHEMA:
  {
    "name": "MotorPH 2024",
    "shift": {"start": "08:00", "end": "17:00"},
    "scale": 2,
    "deductions": [
      {"type": "sss"},
      {"type": "philhealth"},
      {"type": "pagibig"},
      {"type": "withholding_tax", "exempt": ["sss", "philhealth", "pagibig"],
       "non_taxable_allowances": ["rice_subsidy"]},
      {"type": "fixed", "name": "company_loan", "amount": "1500"},
      {"type": "percentage", "name": "union_dues", "rate": "0.01", "base": "basic_salary"}
    ]
  }

KEY FEATURES:
  - Validates JSON structure and rule types
  - Missing shift falls back to 08:00-17:00
  - Statutory rules start from current defaults; listed fields override them
  - withholding_tax "exempt" names rules declared earlier in the list
  - Rule order in the file is the deduction order on the payslip

USAGE:
  f := factory.NewPolicyFactory()
  policy, err := f.ParsePolicy(deductions.StandardPolicyJSON("08:00", "17:00"))
  ev := engine.NewEvaluator(policy.Shift)
  rec, err := engine.ComputePayroll(&profile, period, agg, policy.Rules)

SEE ALSO:
  - deductions/: rule implementations
  - config/: POLICY_FILE setting
*/
package factory

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/motorph/payroll-engine/deductions"
	"github.com/motorph/payroll-engine/engine"
	"github.com/shopspring/decimal"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// PolicyJSON is the JSON representation of a payroll policy.
type PolicyJSON struct {
	Name       string     `json:"name,omitempty"`
	Shift      *ShiftJSON `json:"shift,omitempty"`
	Scale      *int32     `json:"scale,omitempty"`
	Deductions []RuleJSON `json:"deductions,omitempty"`
}

// ShiftJSON holds "HH:MM" shift bounds.
type ShiftJSON struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// RuleJSON represents one deduction rule. Which fields apply depends on Type.
type RuleJSON struct {
	Type string `json:"type"` // fixed, percentage, sss, philhealth, pagibig, withholding_tax
	Name string `json:"name,omitempty"`

	Amount *decimal.Decimal `json:"amount,omitempty"` // fixed
	Rate   *decimal.Decimal `json:"rate,omitempty"`   // percentage, sss, philhealth premium, pagibig high rate
	Base   string           `json:"base,omitempty"`   // percentage: gross | basic_salary
	Cap    *decimal.Decimal `json:"cap,omitempty"`    // percentage

	LowRate   *decimal.Decimal `json:"low_rate,omitempty"`  // pagibig
	Threshold *decimal.Decimal `json:"threshold,omitempty"` // pagibig
	Min       *decimal.Decimal `json:"min,omitempty"`       // sss credit, philhealth floor
	Max       *decimal.Decimal `json:"max,omitempty"`       // sss credit, philhealth ceiling, pagibig compensation
	Step      *decimal.Decimal `json:"step,omitempty"`      // sss credit step
	Share     *decimal.Decimal `json:"share,omitempty"`     // philhealth employee share

	Exempt               []string         `json:"exempt,omitempty"`                 // withholding_tax
	NonTaxableAllowances []string         `json:"non_taxable_allowances,omitempty"` // withholding_tax
	Brackets             []TaxBracketJSON `json:"brackets,omitempty"`               // withholding_tax
}

// TaxBracketJSON represents one withholding tax bracket.
type TaxBracketJSON struct {
	Over decimal.Decimal `json:"over"`
	Base decimal.Decimal `json:"base"`
	Rate decimal.Decimal `json:"rate"`
}

// Rule type names.
const (
	TypeFixed          = "fixed"
	TypePercentage     = "percentage"
	TypeSSS            = "sss"
	TypePhilHealth     = "philhealth"
	TypePagIBIG        = "pagibig"
	TypeWithholdingTax = "withholding_tax"
)

// =============================================================================
// POLICY
// =============================================================================

// Policy is a parsed payroll policy ready to hand to the engine.
type Policy struct {
	Name  string
	Shift engine.Shift
	Scale int32
	Rules []engine.DeductionRule
}

// Computer returns an engine.Computer using the policy's rounding scale.
func (p *Policy) Computer() *engine.Computer {
	return engine.NewComputer(p.Scale)
}

// Evaluator returns a day evaluator for the policy's shift.
func (p *Policy) Evaluator() *engine.Evaluator {
	return engine.NewEvaluator(p.Shift)
}

// =============================================================================
// POLICY FACTORY
// =============================================================================

// PolicyFactory converts JSON policies to Go structs.
type PolicyFactory struct{}

// NewPolicyFactory creates a new policy factory.
func NewPolicyFactory() *PolicyFactory {
	return &PolicyFactory{}
}

// ParsePolicy parses a JSON string into a Policy.
func (f *PolicyFactory) ParsePolicy(jsonStr string) (*Policy, error) {
	var pj PolicyJSON
	if err := json.Unmarshal([]byte(jsonStr), &pj); err != nil {
		return nil, fmt.Errorf("failed to parse policy JSON: %w", err)
	}
	return f.FromJSON(pj)
}

// LoadPolicy reads and parses a policy file.
func (f *PolicyFactory) LoadPolicy(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}
	return f.ParsePolicy(string(data))
}

// FromJSON converts PolicyJSON to a Policy.
func (f *PolicyFactory) FromJSON(pj PolicyJSON) (*Policy, error) {
	policy := &Policy{
		Name:  pj.Name,
		Shift: engine.DefaultShift(),
		Scale: engine.DefaultScale,
	}
	if pj.Scale != nil {
		policy.Scale = *pj.Scale
	}

	if pj.Shift != nil {
		shift, err := parseShift(*pj.Shift)
		if err != nil {
			return nil, err
		}
		policy.Shift = shift
	}

	declared := make(map[string]engine.DeductionRule, len(pj.Deductions))
	for i, rj := range pj.Deductions {
		rule, err := parseRule(rj, declared)
		if err != nil {
			return nil, fmt.Errorf("deduction %d: %w", i, err)
		}
		declared[rule.Name()] = rule
		policy.Rules = append(policy.Rules, rule)
	}

	return policy, nil
}

// ToJSON converts a Policy back to PolicyJSON. Rules of unknown types are skipped.
func (f *PolicyFactory) ToJSON(policy *Policy) PolicyJSON {
	scale := policy.Scale
	pj := PolicyJSON{
		Name:  policy.Name,
		Shift: &ShiftJSON{Start: policy.Shift.Start.String(), End: policy.Shift.End.String()},
		Scale: &scale,
	}

	for _, rule := range policy.Rules {
		if rj, ok := ruleToJSON(rule); ok {
			pj.Deductions = append(pj.Deductions, rj)
		}
	}
	return pj
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func parseShift(sj ShiftJSON) (engine.Shift, error) {
	start, err := engine.ParseClock(sj.Start)
	if err != nil {
		return engine.Shift{}, fmt.Errorf("invalid shift start: %w", err)
	}
	end, err := engine.ParseClock(sj.End)
	if err != nil {
		return engine.Shift{}, fmt.Errorf("invalid shift end: %w", err)
	}
	return engine.NewShift(start, end)
}

func parseRule(rj RuleJSON, declared map[string]engine.DeductionRule) (engine.DeductionRule, error) {
	switch rj.Type {
	case TypeFixed:
		if strings.TrimSpace(rj.Name) == "" {
			return nil, fmt.Errorf("fixed rule requires name")
		}
		if rj.Amount == nil {
			return nil, fmt.Errorf("fixed rule %q requires amount", rj.Name)
		}
		return deductions.Fixed{Label: rj.Name, Amount: *rj.Amount}, nil

	case TypePercentage:
		if strings.TrimSpace(rj.Name) == "" {
			return nil, fmt.Errorf("percentage rule requires name")
		}
		if rj.Rate == nil {
			return nil, fmt.Errorf("percentage rule %q requires rate", rj.Name)
		}
		base, err := parseBase(rj.Base)
		if err != nil {
			return nil, err
		}
		return deductions.Percentage{Label: rj.Name, Rate: *rj.Rate, Base: base, Cap: rj.Cap}, nil

	case TypeSSS:
		sss := deductions.DefaultSSS()
		override(&sss.Rate, rj.Rate)
		override(&sss.MinCredit, rj.Min)
		override(&sss.MaxCredit, rj.Max)
		override(&sss.CreditStep, rj.Step)
		return sss, nil

	case TypePhilHealth:
		ph := deductions.DefaultPhilHealth()
		override(&ph.PremiumRate, rj.Rate)
		override(&ph.EmployeeShare, rj.Share)
		override(&ph.Floor, rj.Min)
		override(&ph.Ceiling, rj.Max)
		return ph, nil

	case TypePagIBIG:
		hdmf := deductions.DefaultPagIBIG()
		override(&hdmf.HighRate, rj.Rate)
		override(&hdmf.LowRate, rj.LowRate)
		override(&hdmf.LowThreshold, rj.Threshold)
		override(&hdmf.MaxCompensation, rj.Max)
		return hdmf, nil

	case TypeWithholdingTax:
		tax := deductions.WithholdingTax{
			Brackets:             deductions.MonthlyTaxTable(),
			NonTaxableAllowances: rj.NonTaxableAllowances,
		}
		if len(rj.Brackets) > 0 {
			tax.Brackets = nil
			for _, bj := range rj.Brackets {
				tax.Brackets = append(tax.Brackets, deductions.TaxBracket{Over: bj.Over, Base: bj.Base, Rate: bj.Rate})
			}
		}
		for _, name := range rj.Exempt {
			rule, ok := declared[name]
			if !ok {
				return nil, fmt.Errorf("withholding_tax exempts undeclared rule %q", name)
			}
			tax.Contributions = append(tax.Contributions, rule)
		}
		return tax, nil

	default:
		return nil, fmt.Errorf("unknown deduction type: %q", rj.Type)
	}
}

func parseBase(s string) (deductions.Base, error) {
	switch s {
	case "", string(deductions.BaseGross):
		return deductions.BaseGross, nil
	case string(deductions.BaseBasicSalary):
		return deductions.BaseBasicSalary, nil
	default:
		return "", fmt.Errorf("unknown percentage base: %q", s)
	}
}

func override(dst *decimal.Decimal, v *decimal.Decimal) {
	if v != nil {
		*dst = *v
	}
}

func ptr(d decimal.Decimal) *decimal.Decimal { return &d }

func ruleToJSON(rule engine.DeductionRule) (RuleJSON, bool) {
	switch r := rule.(type) {
	case deductions.Fixed:
		return RuleJSON{Type: TypeFixed, Name: r.Label, Amount: ptr(r.Amount)}, true
	case deductions.Percentage:
		return RuleJSON{Type: TypePercentage, Name: r.Label, Rate: ptr(r.Rate), Base: string(r.Base), Cap: r.Cap}, true
	case deductions.SSS:
		return RuleJSON{Type: TypeSSS, Rate: ptr(r.Rate), Min: ptr(r.MinCredit), Max: ptr(r.MaxCredit), Step: ptr(r.CreditStep)}, true
	case deductions.PhilHealth:
		return RuleJSON{Type: TypePhilHealth, Rate: ptr(r.PremiumRate), Share: ptr(r.EmployeeShare), Min: ptr(r.Floor), Max: ptr(r.Ceiling)}, true
	case deductions.PagIBIG:
		return RuleJSON{Type: TypePagIBIG, Rate: ptr(r.HighRate), LowRate: ptr(r.LowRate), Threshold: ptr(r.LowThreshold), Max: ptr(r.MaxCompensation)}, true
	case deductions.WithholdingTax:
		rj := RuleJSON{Type: TypeWithholdingTax, NonTaxableAllowances: r.NonTaxableAllowances}
		for _, c := range r.Contributions {
			rj.Exempt = append(rj.Exempt, c.Name())
		}
		for _, b := range r.Brackets {
			rj.Brackets = append(rj.Brackets, TaxBracketJSON{Over: b.Over, Base: b.Base, Rate: b.Rate})
		}
		return rj, true
	default:
		return RuleJSON{}, false
	}
}
