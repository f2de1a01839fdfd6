package output

import (
	"strings"

	"github.com/rgehrsitz/paysplit/internal/domain"
	"github.com/shopspring/decimal"
)

// ReportKind names what a Report carries
type ReportKind string

const (
	ReportYears     ReportKind = "years"
	ReportSchemes   ReportKind = "schemes"
	ReportRates     ReportKind = "rates"
	ReportIncome    ReportKind = "income"
	ReportBreakdown ReportKind = "breakdown"
	ReportSchedule  ReportKind = "schedule"
)

// Report is the input of every formatter. Only the fields matching Kind are set.
type Report struct {
	Kind  ReportKind   `json:"kind"`
	Query domain.Query `json:"query"`

	Years     []int                           `json:"years,omitempty"`
	Schemes   []string                        `json:"schemes,omitempty"`
	Rates     *domain.ResolvedRates           `json:"rates,omitempty"`
	Income    *domain.InterpolatedIncomePoint `json:"income,omitempty"`
	Breakdown *domain.Breakdown               `json:"breakdown,omitempty"`
	Schedule  []domain.IncomeTaxRecord        `json:"schedule,omitempty"`
	Stats     []domain.ParseStats             `json:"stats,omitempty"`
}

var hundred = decimal.NewFromInt(100)

// FormatCurrency renders whole euros with Finnish digit grouping, e.g. "42 000 €"
func FormatCurrency(amount decimal.Decimal) string {
	digits := amount.Round(0).Abs().String()

	var grouped strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			grouped.WriteRune(' ')
		}
		grouped.WriteRune(r)
	}

	sign := ""
	if amount.Round(0).IsNegative() {
		sign = "-"
	}
	return sign + grouped.String() + " €"
}

// FormatPercentage renders a fraction as a percentage with a decimal comma, e.g. "24,85 %"
func FormatPercentage(rate decimal.Decimal) string {
	return strings.Replace(rate.Mul(hundred).StringFixed(2), ".", ",", 1) + " %"
}

// FormatNullCurrency renders an optional amount, "n/a" when absent
func FormatNullCurrency(amount decimal.NullDecimal) string {
	if !amount.Valid {
		return "n/a"
	}
	return FormatCurrency(amount.Decimal)
}
