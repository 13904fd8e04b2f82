package payrun

import (
	"github.com/motorph/payroll-engine/engine"
	"github.com/shopspring/decimal"
)

// Summary totals a set of payroll records for one run.
type Summary struct {
	Employees       int                        `json:"employees"`
	GrossPay        decimal.Decimal            `json:"gross_pay"`
	TotalDeductions decimal.Decimal            `json:"total_deductions"`
	NetPay          decimal.Decimal            `json:"net_pay"`
	ByDeduction     map[string]decimal.Decimal `json:"by_deduction"`
}

// Totals sums records. Deduction totals are keyed by deduction name.
func Totals(records []engine.PayrollRecord) Summary {
	s := Summary{
		Employees:       len(records),
		GrossPay:        decimal.Zero,
		TotalDeductions: decimal.Zero,
		NetPay:          decimal.Zero,
		ByDeduction:     make(map[string]decimal.Decimal),
	}
	for _, rec := range records {
		s.GrossPay = s.GrossPay.Add(rec.GrossPay)
		s.TotalDeductions = s.TotalDeductions.Add(rec.TotalDeductions)
		s.NetPay = s.NetPay.Add(rec.NetPay)
		for _, d := range rec.Deductions {
			s.ByDeduction[d.Name] = s.ByDeduction[d.Name].Add(d.Amount)
		}
	}
	return s
}

// DeductionNames returns every deduction name across records in first-seen order.
func DeductionNames(records []engine.PayrollRecord) []string {
	seen := make(map[string]bool)
	var names []string
	for _, rec := range records {
		for _, d := range rec.Deductions {
			if !seen[d.Name] {
				seen[d.Name] = true
				names = append(names, d.Name)
			}
		}
	}
	return names
}
