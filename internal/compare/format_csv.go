package compare

import (
	"encoding/csv"
	"strings"
)

// CSVFormatter formats comparison results as CSV
type CSVFormatter struct{}

// Format generates CSV output for comparison results
func (cf *CSVFormatter) Format(compSet *ComparisonSet) (string, error) {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)
	writer.Comma = ';'

	header := []string{
		"scheme",
		"type",
		"employee_rate",
		"employer_rate",
		"employee_contribution",
		"employer_contribution",
		"employer_total_cost",
		"net_annual",
		"employer_cost_diff",
		"employer_cost_pct",
		"employee_diff",
		"net_diff",
	}
	if err := writer.Write(header); err != nil {
		return "", err
	}

	if compSet.BaseResult != nil {
		if err := writer.Write(cf.formatRow(compSet.BaseResult, "base")); err != nil {
			return "", err
		}
	}

	for i := range compSet.AlternativeResults {
		if err := writer.Write(cf.formatRow(&compSet.AlternativeResults[i], "alternative")); err != nil {
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}

	return sb.String(), nil
}

// formatRow formats a comparison result as a CSV row
func (cf *CSVFormatter) formatRow(result *ComparisonResult, kind string) []string {
	net := ""
	if result.HasIncomeData {
		net = result.NetAnnual.StringFixed(2)
	}
	return []string{
		result.Scheme,
		kind,
		result.EmployeeRate.String(),
		result.EmployerRate.String(),
		result.EmployeeContribution.StringFixed(2),
		result.EmployerContribution.StringFixed(2),
		result.EmployerTotalCost.StringFixed(2),
		net,
		result.EmployerCostDiffFromBase.StringFixed(2),
		result.EmployerCostPctFromBase.StringFixed(2),
		result.EmployeeDiffFromBase.StringFixed(2),
		result.NetDiffFromBase.StringFixed(2),
	}
}
