package calculation

import (
	"github.com/rgehrsitz/paysplit/internal/domain"
	"github.com/shopspring/decimal"
)

// Segment labels of the salary split
const (
	LabelGrossSalary      = "Gross salary"
	LabelEmployerPension  = "Employer pension contribution"
	LabelNetIncome        = "Net income"
	LabelTaxesAndPayments = "Taxes and payments"
	LabelEmployee         = "Employee"
	LabelTaxes            = "Taxes"
	LabelEmployeeTyEL     = "TyEL (employee)"
	LabelEmployerTyEL     = "TyEL (employer)"
)

const monthsPerYear = 12

// BreakdownCalculator splits a monthly salary into employer cost, employee
// net income, taxes and both TyEL shares
type BreakdownCalculator struct{}

// NewBreakdownCalculator creates a new breakdown calculator
func NewBreakdownCalculator() *BreakdownCalculator {
	return &BreakdownCalculator{}
}

// Calculate combines resolved rates with the income point at the annual gross.
// When hasIncome is false net and taxes are reported as zero and the
// breakdown is flagged as lacking income data.
func (bc *BreakdownCalculator) Calculate(query domain.Query, rates domain.ResolvedRates, point domain.InterpolatedIncomePoint, hasIncome bool) domain.Breakdown {
	annual := query.MonthlySalary.Mul(decimal.NewFromInt(monthsPerYear))

	employeeContribution := annual.Mul(rates.EmployeeRate)
	employerContribution := annual.Mul(rates.EmployerRate)

	b := domain.Breakdown{
		Year:                 query.Year,
		Scheme:               query.Scheme,
		AgeBracket:           query.AgeBracket,
		MonthlySalary:        query.MonthlySalary,
		AnnualGross:          annual,
		Rates:                rates,
		EmployeeContribution: employeeContribution,
		EmployerContribution: employerContribution,
		EmployerTotalCost:    annual.Add(employerContribution),
		NetAnnual:            decimal.Zero,
		TaxesAnnual:          decimal.Zero,
	}

	if hasIncome {
		b.HasIncomeData = true
		b.NetAnnual = valueOrZero(point.NetAnnual)
		b.TaxesAnnual = valueOrZero(point.TaxesAnnual)
		b.TaxRateLabel = point.TaxRateLabel
		b.MarginalLabel = point.MarginalRateLabel
	}

	b.EmployerSegments = segments(
		domain.Segment{Label: LabelGrossSalary, Value: annual},
		domain.Segment{Label: LabelEmployerPension, Value: employerContribution},
	)
	b.EmployeeSegments = segments(
		domain.Segment{Label: LabelNetIncome, Value: b.NetAnnual},
		domain.Segment{Label: LabelTaxesAndPayments, Value: b.TaxesAnnual},
	)
	b.GovernmentSegments = segments(
		domain.Segment{Label: LabelEmployee, Value: b.NetAnnual},
		domain.Segment{Label: LabelTaxes, Value: b.TaxesAnnual},
		domain.Segment{Label: LabelEmployeeTyEL, Value: employeeContribution},
		domain.Segment{Label: LabelEmployerTyEL, Value: employerContribution},
	)

	return b
}

func valueOrZero(v decimal.NullDecimal) decimal.Decimal {
	if !v.Valid {
		return decimal.Zero
	}
	return v.Decimal
}

// segments fills in each segment's share of the set total
func segments(parts ...domain.Segment) []domain.Segment {
	total := decimal.Zero
	for _, p := range parts {
		total = total.Add(p.Value)
	}
	if total.IsZero() {
		total = decimal.NewFromInt(1)
	}

	for i := range parts {
		parts[i].Share = parts[i].Value.Div(total)
	}
	return parts
}
