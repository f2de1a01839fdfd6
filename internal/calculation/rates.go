package calculation

import (
	"github.com/rgehrsitz/paysplit/internal/domain"
	"github.com/shopspring/decimal"
)

// DefaultAgeDifferentiatedYear is the only year whose employee TyEL share
// depends on the age bracket
const DefaultAgeDifferentiatedYear = 2025

// DefaultScheme is the scheme preselected for private sector employees
const DefaultScheme = "Yksityisten alojen palkansaajat/TyEL"

// RateResolver picks the effective contribution rates for a scheme
type RateResolver struct {
	AgeDifferentiatedYear int
}

// NewRateResolver creates a resolver for the published tables
func NewRateResolver() *RateResolver {
	return &RateResolver{AgeDifferentiatedYear: DefaultAgeDifferentiatedYear}
}

// NewRateResolverWithConfig creates a resolver with a configured age-differentiated year
func NewRateResolverWithConfig(config domain.PensionRatesConfig) *RateResolver {
	rr := NewRateResolver()
	if config.AgeDifferentiatedYear != 0 {
		rr.AgeDifferentiatedYear = config.AgeDifferentiatedYear
	}
	return rr
}

// Resolve returns the rates for scheme. An unknown scheme resolves to zero
// rates, which callers must read as "no data".
func (rr *RateResolver) Resolve(rows []domain.PensionSchemeRate, scheme string, year int, bracket domain.AgeBracket) domain.ResolvedRates {
	rates, _ := rr.Lookup(rows, scheme, year, bracket)
	return rates
}

// Lookup is Resolve with an explicit found flag. A listed scheme whose total
// or base rate is not numeric is found but resolves to zero rates.
func (rr *RateResolver) Lookup(rows []domain.PensionSchemeRate, scheme string, year int, bracket domain.AgeBracket) (domain.ResolvedRates, bool) {
	row, ok := findScheme(rows, scheme)
	if !ok {
		return zeroRates(), false
	}
	if !row.HasRates() {
		return zeroRates(), true
	}

	employee := rr.employeeRate(row, year, bracket)
	total := row.TotalRate.Decimal

	return domain.ResolvedRates{
		EmployeeRate: employee,
		EmployerRate: decimal.Max(total.Sub(employee), decimal.Zero),
		TotalRate:    total,
	}, true
}

func zeroRates() domain.ResolvedRates {
	return domain.ResolvedRates{
		EmployeeRate: decimal.Zero,
		EmployerRate: decimal.Zero,
		TotalRate:    decimal.Zero,
	}
}

// employeeRate applies the age bracket only in the age-differentiated year;
// a missing middle rate falls back to the base rate
func (rr *RateResolver) employeeRate(row domain.PensionSchemeRate, year int, bracket domain.AgeBracket) decimal.Decimal {
	if year == rr.AgeDifferentiatedYear && bracket == domain.AgeBracketElevated && row.EmployeeMiddleRate.Valid {
		return row.EmployeeMiddleRate.Decimal
	}
	return row.EmployeeBaseRate.Decimal
}

func findScheme(rows []domain.PensionSchemeRate, scheme string) (domain.PensionSchemeRate, bool) {
	for _, row := range rows {
		if row.Label == scheme {
			return row, true
		}
	}
	return domain.PensionSchemeRate{}, false
}

// SchemeLabels returns the scheme labels in document order
func SchemeLabels(rows []domain.PensionSchemeRate) []string {
	labels := make([]string, 0, len(rows))
	for _, row := range rows {
		labels = append(labels, row.Label)
	}
	return labels
}

// SelectScheme returns preferred when the year offers it, otherwise the first
// available scheme, or "" when there are none
func SelectScheme(labels []string, preferred string) string {
	if len(labels) == 0 {
		return ""
	}
	for _, label := range labels {
		if label == preferred {
			return preferred
		}
	}
	return labels[0]
}
