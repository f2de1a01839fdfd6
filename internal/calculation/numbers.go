package calculation

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a schedule cell such as "30 000" or "1190,5" into a
// decimal. Empty and non-numeric cells report false.
func ParseAmount(value string) (decimal.Decimal, bool) {
	v := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\u00a0', '\u202f':
			return -1
		}
		return r
	}, value)
	v = strings.Replace(v, ",", ".", 1)
	if v == "" {
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// nullAmount is ParseAmount for optional fields
func nullAmount(value string, present bool) decimal.NullDecimal {
	if !present {
		return decimal.NullDecimal{}
	}
	d, ok := ParseAmount(value)
	return decimal.NullDecimal{Decimal: d, Valid: ok}
}
