package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// AgeBracket selects the employee contribution class in the age-differentiated year
type AgeBracket string

const (
	// AgeBracketBase covers employees under 53 and 63 or older
	AgeBracketBase AgeBracket = "base"
	// AgeBracketElevated covers employees aged 53 to 62
	AgeBracketElevated AgeBracket = "elevated"
)

// ParseAgeBracket accepts "base", "elevated" and the legacy "middle" spelling
func ParseAgeBracket(s string) (AgeBracket, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "base":
		return AgeBracketBase, nil
	case "elevated", "middle":
		return AgeBracketElevated, nil
	default:
		return "", fmt.Errorf("unknown age bracket %q (valid: base, elevated)", s)
	}
}

// PensionSchemeRate is one row of a year-specific TyEL contribution table.
// A rate cell that is not a number is kept as an invalid NullDecimal so the
// row still lists its scheme. EmployeeMiddleRate is only present in tables
// that split the employee share by age.
type PensionSchemeRate struct {
	Label              string              `yaml:"label" json:"label"`
	TotalRate          decimal.NullDecimal `yaml:"total_rate" json:"total_rate"`
	EmployeeBaseRate   decimal.NullDecimal `yaml:"employee_base_rate" json:"employee_base_rate"`
	EmployeeMiddleRate decimal.NullDecimal `yaml:"employee_middle_rate" json:"employee_middle_rate"`
}

// HasRates reports whether both the total and the base employee rate are numeric
func (r PensionSchemeRate) HasRates() bool {
	return r.TotalRate.Valid && r.EmployeeBaseRate.Valid
}

// ResolvedRates are the effective contribution rates for a scheme, year and age bracket
type ResolvedRates struct {
	EmployeeRate decimal.Decimal `json:"employee_rate"`
	EmployerRate decimal.Decimal `json:"employer_rate"`
	TotalRate    decimal.Decimal `json:"total_rate"`
}

// IsZero reports whether no contribution data was resolved
func (r ResolvedRates) IsZero() bool {
	return r.EmployeeRate.IsZero() && r.EmployerRate.IsZero() && r.TotalRate.IsZero()
}
