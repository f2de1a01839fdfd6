package output

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/rgehrsitz/paysplit/internal/domain"
	"github.com/shopspring/decimal"
)

// CSVFormatter renders the report as semicolon separated values, matching
// the source schedule's delimiter
type CSVFormatter struct{}

func (c CSVFormatter) Name() string { return "csv" }

func (c CSVFormatter) Format(report *Report) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	w.Comma = ';'

	rows, err := csvRows(report)
	if err != nil {
		return nil, err
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func csvRows(report *Report) ([][]string, error) {
	switch report.Kind {
	case ReportYears:
		rows := [][]string{{"year"}}
		for _, year := range report.Years {
			rows = append(rows, []string{strconv.Itoa(year)})
		}
		return rows, nil

	case ReportSchemes:
		rows := [][]string{{"scheme"}}
		for _, scheme := range report.Schemes {
			rows = append(rows, []string{scheme})
		}
		return rows, nil

	case ReportRates:
		if report.Rates == nil {
			return nil, fmt.Errorf("rates report without rates")
		}
		return [][]string{
			{"year", "scheme", "age_bracket", "employee_rate", "employer_rate", "total_rate"},
			{
				strconv.Itoa(report.Query.Year),
				report.Query.Scheme,
				string(report.Query.AgeBracket),
				report.Rates.EmployeeRate.String(),
				report.Rates.EmployerRate.String(),
				report.Rates.TotalRate.String(),
			},
		}, nil

	case ReportIncome:
		if report.Income == nil {
			return nil, fmt.Errorf("income report without income point")
		}
		p := report.Income
		return [][]string{
			{"gross_annual", "net_annual", "taxes_annual", "tax_rate", "marginal_rate"},
			{p.GrossAnnual.StringFixed(2), nullString(p.NetAnnual), nullString(p.TaxesAnnual), p.TaxRateLabel, p.MarginalRateLabel},
		}, nil

	case ReportBreakdown:
		if report.Breakdown == nil {
			return nil, fmt.Errorf("breakdown report without breakdown")
		}
		b := report.Breakdown
		rows := [][]string{{"group", "label", "value", "share"}}
		groups := []struct {
			name     string
			segments []domain.Segment
		}{
			{"employer", b.EmployerSegments},
			{"employee", b.EmployeeSegments},
			{"government", b.GovernmentSegments},
		}
		for _, g := range groups {
			for _, s := range g.segments {
				rows = append(rows, []string{g.name, s.Label, s.Value.StringFixed(2), s.Share.StringFixed(4)})
			}
		}
		rows = append(rows, []string{"totals", "employer_total_cost", b.EmployerTotalCost.StringFixed(2), ""})
		return rows, nil

	case ReportSchedule:
		rows := [][]string{{"gross_annual", "net_annual", "taxes_annual", "tax_rate", "marginal_rate"}}
		for _, r := range report.Schedule {
			rows = append(rows, []string{r.GrossAnnual.StringFixed(2), nullString(r.NetAnnual), nullString(r.TaxesAnnual), r.TaxRateLabel, r.MarginalRateLabel})
		}
		return rows, nil

	default:
		return nil, fmt.Errorf("unsupported report kind %q", report.Kind)
	}
}

func nullString(v decimal.NullDecimal) string {
	if !v.Valid {
		return ""
	}
	return v.Decimal.StringFixed(2)
}
