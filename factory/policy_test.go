package factory_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/motorph/payroll-engine/deductions"
	"github.com/motorph/payroll-engine/engine"
	"github.com/motorph/payroll-engine/factory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return engine.MustParseDecimal(s) }

func profile(t *testing.T) engine.CompensationProfile {
	t.Helper()
	p, err := engine.NewCompensationProfile(10001, dec("50000"), map[string]decimal.Decimal{
		engine.AllowanceRice:     dec("1500"),
		engine.AllowancePhone:    dec("1000"),
		engine.AllowanceClothing: dec("800"),
	})
	require.NoError(t, err)
	return p
}

func amounts(rules []engine.DeductionRule, gross decimal.Decimal, p engine.CompensationProfile) map[string]string {
	out := make(map[string]string, len(rules))
	for _, r := range rules {
		out[r.Name()] = r.Compute(gross, p).StringFixed(2)
	}
	return out
}

func TestParsePolicy_StandardPreset(t *testing.T) {
	// GIVEN: the JSON rendition of the standard deductions
	// WHEN: parsed
	// THEN: it computes the same amounts as the Go preset
	f := factory.NewPolicyFactory()

	policy, err := f.ParsePolicy(deductions.StandardPolicyJSON("09:00", "18:00"))
	require.NoError(t, err)

	assert.Equal(t, "MotorPH Standard", policy.Name)
	assert.Equal(t, "09:00", policy.Shift.Start.String())
	assert.Equal(t, "18:00", policy.Shift.End.String())
	assert.Equal(t, int32(2), policy.Scale)
	require.Len(t, policy.Rules, 4)

	p := profile(t)
	gross := dec("53300")
	assert.Equal(t, amounts(deductions.Standard(), gross, p), amounts(policy.Rules, gross, p))
	assert.Equal(t, "4648.40", amounts(policy.Rules, gross, p)[deductions.NameWithholdingTax])
}

func TestParsePolicy_Defaults(t *testing.T) {
	policy, err := factory.NewPolicyFactory().ParsePolicy(`{}`)
	require.NoError(t, err)

	assert.Equal(t, engine.DefaultShift(), policy.Shift)
	assert.Equal(t, engine.DefaultScale, policy.Scale)
	assert.Empty(t, policy.Rules)
	assert.Equal(t, engine.DefaultShift(), policy.Evaluator().Shift)
	require.NotNil(t, policy.Computer().Scale)
	assert.Equal(t, engine.DefaultScale, *policy.Computer().Scale)
}

func TestParsePolicy_ZeroScaleRoundsToWholePesos(t *testing.T) {
	// GIVEN: a policy asking for scale 0
	// WHEN: computing July pay for one day worked (10000 / 23)
	// THEN: gross is rounded to whole pesos, not centavos
	policy, err := factory.NewPolicyFactory().ParsePolicy(`{"scale": 0}`)
	require.NoError(t, err)
	assert.Equal(t, int32(0), policy.Scale)

	p, err := engine.NewCompensationProfile(7, dec("10000"), nil)
	require.NoError(t, err)
	july := engine.MonthPeriod(2024, 7)
	in, out := engine.MustClock(8, 0), engine.MustClock(17, 0)
	agg, err := engine.Aggregate(7, july, []engine.AttendanceEntry{
		{EmployeeID: 7, Date: engine.NewDate(2024, 7, 1), LogIn: &in, LogOut: &out},
	}, policy.Evaluator())
	require.NoError(t, err)

	rec, err := policy.Computer().ComputePayroll(&p, july, agg, nil)
	require.NoError(t, err)
	assert.Equal(t, "435", rec.GrossPay.String())
}

func TestParsePolicy_CustomRulesKeepOrder(t *testing.T) {
	policy, err := factory.NewPolicyFactory().ParsePolicy(`{
		"deductions": [
			{"type": "fixed", "name": "company_loan", "amount": "1500"},
			{"type": "percentage", "name": "union_dues", "rate": "0.01", "base": "basic_salary"},
			{"type": "percentage", "name": "hmo", "rate": 0.1, "cap": 1000}
		]
	}`)
	require.NoError(t, err)
	require.Len(t, policy.Rules, 3)

	assert.Equal(t, "company_loan", policy.Rules[0].Name())
	assert.Equal(t, "union_dues", policy.Rules[1].Name())

	got := amounts(policy.Rules, dec("53300"), profile(t))
	assert.Equal(t, map[string]string{
		"company_loan": "1500.00",
		"union_dues":   "500.00",
		"hmo":          "1000.00",
	}, got)
}

func TestParsePolicy_StatutoryOverrides(t *testing.T) {
	policy, err := factory.NewPolicyFactory().ParsePolicy(`{
		"deductions": [
			{"type": "sss", "rate": "0.05", "max": "35000"},
			{"type": "pagibig", "max": "5000"}
		]
	}`)
	require.NoError(t, err)

	got := amounts(policy.Rules, dec("53300"), profile(t))
	assert.Equal(t, "1750.00", got[deductions.NameSSS])
	assert.Equal(t, "100.00", got[deductions.NamePagIBIG])
}

func TestParsePolicy_CustomBrackets(t *testing.T) {
	policy, err := factory.NewPolicyFactory().ParsePolicy(`{
		"deductions": [
			{"type": "withholding_tax", "brackets": [
				{"over": "0", "base": "0", "rate": "0.10"}
			]}
		]
	}`)
	require.NoError(t, err)

	got := amounts(policy.Rules, dec("10000"), engine.CompensationProfile{EmployeeID: 1})
	assert.Equal(t, "1000.00", got[deductions.NameWithholdingTax])
}

func TestParsePolicy_Errors(t *testing.T) {
	cases := map[string]string{
		"malformed":           `{`,
		"unknown type":        `{"deductions": [{"type": "bonus"}]}`,
		"fixed without name":  `{"deductions": [{"type": "fixed", "amount": "1"}]}`,
		"fixed without value": `{"deductions": [{"type": "fixed", "name": "loan"}]}`,
		"percentage no rate":  `{"deductions": [{"type": "percentage", "name": "x"}]}`,
		"bad base":            `{"deductions": [{"type": "percentage", "name": "x", "rate": "1", "base": "net"}]}`,
		"undeclared exempt":   `{"deductions": [{"type": "withholding_tax", "exempt": ["sss"]}]}`,
		"inverted shift":      `{"shift": {"start": "17:00", "end": "08:00"}}`,
		"bad clock":           `{"shift": {"start": "8am", "end": "17:00"}}`,
	}
	f := factory.NewPolicyFactory()
	for name, doc := range cases {
		_, err := f.ParsePolicy(doc)
		assert.Error(t, err, name)
	}
}

func TestToJSON_ReparsesToSameRules(t *testing.T) {
	f := factory.NewPolicyFactory()
	policy, err := f.ParsePolicy(deductions.StandardPolicyJSON("08:00", "17:00"))
	require.NoError(t, err)
	policy.Rules = append(policy.Rules, deductions.Fixed{Label: "loan", Amount: dec("250")})

	data, err := json.Marshal(f.ToJSON(policy))
	require.NoError(t, err)
	again, err := f.ParsePolicy(string(data))
	require.NoError(t, err)

	p := profile(t)
	gross := dec("53300")
	assert.Equal(t, amounts(policy.Rules, gross, p), amounts(again.Rules, gross, p))
	assert.Equal(t, policy.Shift, again.Shift)
}

func TestLoadPolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.json")
	require.NoError(t, os.WriteFile(path, []byte(deductions.StandardPolicyJSON("08:00", "17:00")), 0o600))

	policy, err := factory.NewPolicyFactory().LoadPolicy(path)
	require.NoError(t, err)
	assert.Len(t, policy.Rules, 4)

	_, err = factory.NewPolicyFactory().LoadPolicy(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
