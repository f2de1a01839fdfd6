package output

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/rgehrsitz/paysplit/internal/domain"
)

// ConsoleFormatter renders a styled human readable report
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console" }

func (c ConsoleFormatter) Format(report *Report) ([]byte, error) {
	var buf bytes.Buffer

	switch report.Kind {
	case ReportYears:
		fmt.Fprintln(&buf, TitleStyle.Render("Years with contribution rates"))
		for _, year := range report.Years {
			fmt.Fprintf(&buf, "• %s\n", strconv.Itoa(year))
		}

	case ReportSchemes:
		fmt.Fprintln(&buf, TitleStyle.Render(fmt.Sprintf("Pension schemes %d", report.Query.Year)))
		for _, scheme := range report.Schemes {
			marker := " "
			if scheme == report.Query.Scheme {
				marker = "*"
			}
			fmt.Fprintf(&buf, "%s %s\n", marker, scheme)
		}

	case ReportRates:
		if report.Rates == nil {
			return nil, fmt.Errorf("rates report without rates")
		}
		writeHeader(&buf, "Contribution rates", report.Query)
		if report.Rates.IsZero() {
			fmt.Fprintln(&buf, WarningStyle.Render("No contribution data for this scheme and year"))
		}
		writeLine(&buf, "Employee share", FormatPercentage(report.Rates.EmployeeRate))
		writeLine(&buf, "Employer share", FormatPercentage(report.Rates.EmployerRate))
		writeLine(&buf, "Total", FormatPercentage(report.Rates.TotalRate))

	case ReportIncome:
		fmt.Fprintln(&buf, TitleStyle.Render("Net income estimate"))
		if report.Income == nil {
			fmt.Fprintln(&buf, WarningStyle.Render("Income schedule has no data"))
			break
		}
		writeIncome(&buf, report.Income)

	case ReportBreakdown:
		if report.Breakdown == nil {
			return nil, fmt.Errorf("breakdown report without breakdown")
		}
		writeBreakdown(&buf, report.Breakdown)

	case ReportSchedule:
		fmt.Fprintln(&buf, TitleStyle.Render("Income schedule"))
		fmt.Fprintln(&buf)
		writeScheduleTable(&buf, report.Schedule)
		fmt.Fprintln(&buf)
		fmt.Fprintln(&buf, ScheduleChart(report.Schedule).Render())

	default:
		return nil, fmt.Errorf("unsupported report kind %q", report.Kind)
	}

	for _, stats := range report.Stats {
		if stats.Dropped > 0 {
			fmt.Fprintln(&buf, WarningStyle.Render(fmt.Sprintf("%s: %d malformed rows skipped", stats.Document, stats.Dropped)))
		}
	}

	return buf.Bytes(), nil
}

func writeHeader(buf *bytes.Buffer, title string, q domain.Query) {
	fmt.Fprintln(buf, TitleStyle.Render(title))
	fmt.Fprintln(buf, SubtitleStyle.Render(fmt.Sprintf("%s, %d, age bracket %s", q.Scheme, q.Year, q.AgeBracket)))
	fmt.Fprintln(buf)
}

func writeLine(buf *bytes.Buffer, label, value string) {
	fmt.Fprintf(buf, "%s%s\n", LabelStyle.Render(label), ValueStyle.Render(value))
}

func writeIncome(buf *bytes.Buffer, p *domain.InterpolatedIncomePoint) {
	writeLine(buf, "Gross annual income", FormatCurrency(p.GrossAnnual))
	writeLine(buf, "Net annual income", FormatNullCurrency(p.NetAnnual))
	writeLine(buf, "Taxes and payments", FormatNullCurrency(p.TaxesAnnual))
	writeLine(buf, "Tax rate", p.TaxRateLabel)
	writeLine(buf, "Marginal tax rate", p.MarginalRateLabel)
}

func writeBreakdown(buf *bytes.Buffer, b *domain.Breakdown) {
	writeHeader(buf, "Salary breakdown", domain.Query{Year: b.Year, Scheme: b.Scheme, AgeBracket: b.AgeBracket})

	writeLine(buf, "Monthly salary", FormatCurrency(b.MonthlySalary))
	writeLine(buf, "Annual gross salary", FormatCurrency(b.AnnualGross))
	writeLine(buf, "Employee TyEL "+FormatPercentage(b.Rates.EmployeeRate), FormatCurrency(b.EmployeeContribution))
	writeLine(buf, "Employer TyEL "+FormatPercentage(b.Rates.EmployerRate), FormatCurrency(b.EmployerContribution))
	writeLine(buf, "Employer total cost", FormatCurrency(b.EmployerTotalCost))
	if b.HasIncomeData {
		writeLine(buf, "Net annual income", FormatCurrency(b.NetAnnual))
		writeLine(buf, "Taxes and payments", FormatCurrency(b.TaxesAnnual))
		writeLine(buf, "Tax rate", b.TaxRateLabel)
		writeLine(buf, "Marginal tax rate", b.MarginalLabel)
	} else {
		fmt.Fprintln(buf, WarningStyle.Render("Income schedule has no data, net income unavailable"))
	}
	if b.Rates.IsZero() {
		fmt.Fprintln(buf, WarningStyle.Render("No contribution data for this scheme and year"))
	}

	writeSegments(buf, "Employer perspective", b.EmployerSegments)
	writeSegments(buf, "Employee perspective", b.EmployeeSegments)
	writeSegments(buf, "Where the money goes", b.GovernmentSegments)
}

func writeSegments(buf *bytes.Buffer, title string, segments []domain.Segment) {
	fmt.Fprintln(buf)
	fmt.Fprintln(buf, SectionStyle.Render(title))
	for _, s := range segments {
		fmt.Fprintf(buf, "%s %s %s %s\n",
			LabelStyle.Render(s.Label),
			ShareBar(s, 20),
			ValueStyle.Render(FormatCurrency(s.Value)),
			FormatPercentage(s.Share))
	}
}

func writeScheduleTable(buf *bytes.Buffer, records []domain.IncomeTaxRecord) {
	headers := []string{"Gross", "Net", "Taxes", "Tax rate", "Marginal"}
	cells := make([]string, len(headers))
	for i, h := range headers {
		cells[i] = TableHeaderStyle.Render(fmt.Sprintf("%14s", h))
	}
	fmt.Fprintln(buf, strings.Join(cells, " "))

	for _, r := range records {
		fmt.Fprintf(buf, "%14s %14s %14s %14s %14s\n",
			FormatCurrency(r.GrossAnnual),
			FormatNullCurrency(r.NetAnnual),
			FormatNullCurrency(r.TaxesAnnual),
			r.TaxRateLabel,
			r.MarginalRateLabel)
	}
}
