package compare

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rgehrsitz/paysplit/internal/output"
	"github.com/shopspring/decimal"
)

var (
	betterStyle = lipgloss.NewStyle().Foreground(output.ColorSuccess)
	worseStyle  = lipgloss.NewStyle().Foreground(output.ColorWarning)
)

// TableFormatter formats comparison results as a console table
type TableFormatter struct{}

// Format generates a formatted table comparing schemes
func (tf *TableFormatter) Format(compSet *ComparisonSet) string {
	var sb strings.Builder

	// Header
	sb.WriteString(output.TitleStyle.Render("PENSION SCHEME COMPARISON") + "\n")
	sb.WriteString(strings.Repeat("=", 80) + "\n")
	sb.WriteString(fmt.Sprintf("Base scheme: %s\n", compSet.BaseScheme))
	sb.WriteString(fmt.Sprintf("Year %d, age bracket %s, monthly salary %s\n",
		compSet.Query.Year, compSet.Query.AgeBracket, output.FormatCurrency(compSet.Query.MonthlySalary)))
	sb.WriteString("\n")

	nameWidth := 32
	numWidth := 14

	sb.WriteString(output.TableHeaderStyle.Render(fmt.Sprintf("%-*s %*s %*s %*s",
		nameWidth, "Scheme",
		numWidth, "Employee",
		numWidth, "Employer",
		numWidth, "Total cost")) + "\n")
	sb.WriteString(strings.Repeat("-", 80) + "\n")

	if compSet.BaseResult != nil {
		sb.WriteString(tf.formatRow(compSet.BaseResult, nameWidth, numWidth, true))
	}

	if len(compSet.AlternativeResults) > 0 {
		sb.WriteString(strings.Repeat("-", 80) + "\n")
		for i := range compSet.AlternativeResults {
			sb.WriteString(tf.formatRow(&compSet.AlternativeResults[i], nameWidth, numWidth, false))
		}
	}

	sb.WriteString(strings.Repeat("=", 80) + "\n")

	// Deltas from base
	if len(compSet.AlternativeResults) > 0 {
		sb.WriteString("\n" + output.SectionStyle.Render("COMPARISON TO BASE") + "\n")

		for _, alt := range compSet.AlternativeResults {
			sb.WriteString(fmt.Sprintf("\n%s:\n", alt.Scheme))
			sb.WriteString(fmt.Sprintf("  Employer cost:          %s (%s%%)\n",
				tf.formatDelta(alt.EmployerCostDiffFromBase, true),
				alt.EmployerCostPctFromBase.StringFixed(1)))
			sb.WriteString(fmt.Sprintf("  Employee contribution:  %s\n",
				tf.formatDelta(alt.EmployeeDiffFromBase, true)))
			if alt.HasIncomeData {
				sb.WriteString(fmt.Sprintf("  Net income:             %s\n",
					tf.formatDelta(alt.NetDiffFromBase, false)))
			}
		}
		sb.WriteString("\n")
	}

	if len(compSet.Recommendations) > 0 {
		sb.WriteString("\n" + output.SectionStyle.Render("RECOMMENDATIONS") + "\n")
		for _, rec := range compSet.Recommendations {
			sb.WriteString(fmt.Sprintf("• %s\n", rec))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// formatRow formats a single scheme row
func (tf *TableFormatter) formatRow(result *ComparisonResult, nameWidth, numWidth int, isBase bool) string {
	name := result.Scheme
	if isBase {
		name += " (base)"
	}

	return fmt.Sprintf("%-*s %*s %*s %*s\n",
		nameWidth, tf.truncate(name, nameWidth),
		numWidth, output.FormatCurrency(result.EmployeeContribution),
		numWidth, output.FormatCurrency(result.EmployerContribution),
		numWidth, output.FormatCurrency(result.EmployerTotalCost))
}

// formatDelta renders a signed amount; for costs a decrease is the better outcome
func (tf *TableFormatter) formatDelta(delta decimal.Decimal, lowerIsBetter bool) string {
	text := tf.deltaSymbol(delta) + output.FormatCurrency(delta)
	switch {
	case delta.IsZero():
		return text
	case delta.IsNegative() == lowerIsBetter:
		return betterStyle.Render(text)
	default:
		return worseStyle.Render(text)
	}
}

// deltaSymbol returns a + for increases; FormatCurrency carries the minus sign
func (tf *TableFormatter) deltaSymbol(delta decimal.Decimal) string {
	if delta.IsPositive() {
		return "+"
	}
	return ""
}

// truncate truncates a string to maxLen runes
func (tf *TableFormatter) truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}

// FormatCompact creates a compact single-line summary for each scheme
func (tf *TableFormatter) FormatCompact(compSet *ComparisonSet) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Base: %s | ", compSet.BaseScheme))

	for i, alt := range compSet.AlternativeResults {
		if i > 0 {
			sb.WriteString(" | ")
		}
		costChange := "="
		if !alt.EmployerCostDiffFromBase.IsZero() {
			costChange = tf.deltaSymbol(alt.EmployerCostDiffFromBase) + output.FormatCurrency(alt.EmployerCostDiffFromBase)
		}
		sb.WriteString(fmt.Sprintf("%s: %s", alt.Scheme, costChange))
	}

	return sb.String()
}
