package domain

import (
	"github.com/shopspring/decimal"
)

// Segment is one labelled share of a salary split
type Segment struct {
	Label string          `json:"label"`
	Value decimal.Decimal `json:"value"`
	Share decimal.Decimal `json:"share"`
}

// Breakdown describes how an annual salary divides between the employee,
// taxes and the two sides of the TyEL contribution
type Breakdown struct {
	Year          int             `json:"year"`
	Scheme        string          `json:"scheme"`
	AgeBracket    AgeBracket      `json:"age_bracket"`
	MonthlySalary decimal.Decimal `json:"monthly_salary"`
	AnnualGross   decimal.Decimal `json:"annual_gross"`

	Rates ResolvedRates `json:"rates"`

	EmployeeContribution decimal.Decimal `json:"employee_contribution"`
	EmployerContribution decimal.Decimal `json:"employer_contribution"`
	EmployerTotalCost    decimal.Decimal `json:"employer_total_cost"`

	// HasIncomeData is false when the income schedule was empty; net and
	// taxes are then zero and must not be read as real values
	HasIncomeData bool            `json:"has_income_data"`
	NetAnnual     decimal.Decimal `json:"net_annual"`
	TaxesAnnual   decimal.Decimal `json:"taxes_annual"`
	TaxRateLabel  string          `json:"tax_rate_label,omitempty"`
	MarginalLabel string          `json:"marginal_rate_label,omitempty"`

	EmployerSegments   []Segment `json:"employer_segments"`
	EmployeeSegments   []Segment `json:"employee_segments"`
	GovernmentSegments []Segment `json:"government_segments"`
}

// Query is the parameter set of a salary split
type Query struct {
	Year          int             `json:"year"`
	Scheme        string          `json:"scheme"`
	AgeBracket    AgeBracket      `json:"age_bracket"`
	MonthlySalary decimal.Decimal `json:"monthly_salary"`
}
