package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// COMPENSATION PROFILE - Read-only view of an employee's pay terms
// =============================================================================

// Common allowance names used by the employee directory.
const (
	AllowanceRice     = "rice_subsidy"
	AllowancePhone    = "phone_allowance"
	AllowanceClothing = "clothing_allowance"
)

// CompensationProfile is owned by the employee directory; the engine only reads it.
// Build it with NewCompensationProfile.
type CompensationProfile struct {
	EmployeeID  EmployeeID
	BasicSalary decimal.Decimal            // monthly
	Allowances  map[string]decimal.Decimal // fixed monthly allowances by name
}

// NewCompensationProfile validates and copies its inputs.
func NewCompensationProfile(id EmployeeID, basicSalary decimal.Decimal, allowances map[string]decimal.Decimal) (CompensationProfile, error) {
	if !id.Valid() {
		return CompensationProfile{}, fmt.Errorf("employee id must be positive, got %d", id)
	}
	if basicSalary.IsNegative() {
		return CompensationProfile{}, fmt.Errorf("basic salary must not be negative, got %s", basicSalary)
	}
	copied := make(map[string]decimal.Decimal, len(allowances))
	for name, amount := range allowances {
		if strings.TrimSpace(name) == "" {
			return CompensationProfile{}, fmt.Errorf("allowance name must not be blank")
		}
		if amount.IsNegative() {
			return CompensationProfile{}, fmt.Errorf("allowance %q must not be negative, got %s", name, amount)
		}
		copied[name] = amount
	}
	return CompensationProfile{EmployeeID: id, BasicSalary: basicSalary, Allowances: copied}, nil
}

// Validate re-checks the construction invariants, for profiles built as literals.
func (p CompensationProfile) Validate() error {
	_, err := NewCompensationProfile(p.EmployeeID, p.BasicSalary, p.Allowances)
	return err
}

// TotalAllowances sums every allowance.
func (p CompensationProfile) TotalAllowances() decimal.Decimal {
	total := decimal.Zero
	for _, name := range p.AllowanceNames() {
		total = total.Add(p.Allowances[name])
	}
	return total
}

// Allowance returns the named allowance, zero if absent.
func (p CompensationProfile) Allowance(name string) decimal.Decimal {
	return p.Allowances[name]
}

// AllowanceNames returns allowance names sorted for deterministic iteration.
func (p CompensationProfile) AllowanceNames() []string {
	names := make([]string, 0, len(p.Allowances))
	for name := range p.Allowances {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
