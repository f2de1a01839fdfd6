package compare

import (
	"fmt"

	"github.com/rgehrsitz/paysplit/internal/domain"
	"github.com/shopspring/decimal"
)

// ComparisonResult represents one scheme's salary split with its deltas to the base scheme
type ComparisonResult struct {
	Scheme    string            `json:"scheme"`
	Breakdown *domain.Breakdown `json:"-"`

	// Key Metrics
	EmployeeRate         decimal.Decimal `json:"employeeRate"`
	EmployerRate         decimal.Decimal `json:"employerRate"`
	EmployeeContribution decimal.Decimal `json:"employeeContribution"`
	EmployerContribution decimal.Decimal `json:"employerContribution"`
	EmployerTotalCost    decimal.Decimal `json:"employerTotalCost"`
	NetAnnual            decimal.Decimal `json:"netAnnual"`
	HasIncomeData        bool            `json:"hasIncomeData"`

	// Comparison to Base
	EmployerCostDiffFromBase decimal.Decimal `json:"employerCostDiffFromBase"`
	EmployerCostPctFromBase  decimal.Decimal `json:"employerCostPctFromBase"`
	EmployeeDiffFromBase     decimal.Decimal `json:"employeeDiffFromBase"`
	NetDiffFromBase          decimal.Decimal `json:"netDiffFromBase"`
}

// ComparisonSet represents a base scheme and the alternatives measured against it
type ComparisonSet struct {
	Query              domain.Query       `json:"query"`
	BaseScheme         string             `json:"baseScheme"`
	BaseResult         *ComparisonResult  `json:"baseResult"`
	AlternativeResults []ComparisonResult `json:"alternativeResults"`
	Recommendations    []string           `json:"recommendations"`
}

// MetricsCalculator extracts key metrics from breakdowns
type MetricsCalculator struct{}

// NewMetricsCalculator creates a new metrics calculator
func NewMetricsCalculator() *MetricsCalculator {
	return &MetricsCalculator{}
}

// CalculateMetrics reduces a breakdown to the compared figures
func (mc *MetricsCalculator) CalculateMetrics(b domain.Breakdown) ComparisonResult {
	return ComparisonResult{
		Scheme:               b.Scheme,
		Breakdown:            &b,
		EmployeeRate:         b.Rates.EmployeeRate,
		EmployerRate:         b.Rates.EmployerRate,
		EmployeeContribution: b.EmployeeContribution,
		EmployerContribution: b.EmployerContribution,
		EmployerTotalCost:    b.EmployerTotalCost,
		NetAnnual:            b.NetAnnual,
		HasIncomeData:        b.HasIncomeData,
	}
}

// CalculateComparison computes the deltas between a scheme and the base
func (mc *MetricsCalculator) CalculateComparison(scheme, base ComparisonResult) ComparisonResult {
	scheme.EmployerCostDiffFromBase = scheme.EmployerTotalCost.Sub(base.EmployerTotalCost)
	if !base.EmployerTotalCost.IsZero() {
		scheme.EmployerCostPctFromBase = scheme.EmployerCostDiffFromBase.
			Div(base.EmployerTotalCost).
			Mul(decimal.NewFromInt(100))
	}
	scheme.EmployeeDiffFromBase = scheme.EmployeeContribution.Sub(base.EmployeeContribution)
	scheme.NetDiffFromBase = scheme.NetAnnual.Sub(base.NetAnnual)
	return scheme
}

// GenerateRecommendations points out the cheapest scheme for each side
func GenerateRecommendations(compSet *ComparisonSet) []string {
	recommendations := []string{}

	if compSet.BaseResult == nil || len(compSet.AlternativeResults) == 0 {
		return recommendations
	}

	lowestCost := compSet.BaseResult
	for i := range compSet.AlternativeResults {
		alt := &compSet.AlternativeResults[i]
		if alt.EmployerTotalCost.LessThan(lowestCost.EmployerTotalCost) {
			lowestCost = alt
		}
	}
	if lowestCost != compSet.BaseResult {
		savings := compSet.BaseResult.EmployerTotalCost.Sub(lowestCost.EmployerTotalCost)
		recommendations = append(recommendations,
			fmt.Sprintf("Lowest employer cost: %s costs %s € less per year than %s",
				lowestCost.Scheme, savings.StringFixed(0), compSet.BaseScheme))
	}

	lowestEmployee := compSet.BaseResult
	for i := range compSet.AlternativeResults {
		alt := &compSet.AlternativeResults[i]
		if alt.EmployeeContribution.LessThan(lowestEmployee.EmployeeContribution) {
			lowestEmployee = alt
		}
	}
	if lowestEmployee != compSet.BaseResult {
		savings := compSet.BaseResult.EmployeeContribution.Sub(lowestEmployee.EmployeeContribution)
		recommendations = append(recommendations,
			fmt.Sprintf("Lowest employee contribution: %s withholds %s € less per year",
				lowestEmployee.Scheme, savings.StringFixed(0)))
	}

	return recommendations
}
