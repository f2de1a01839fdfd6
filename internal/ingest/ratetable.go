package ingest

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rgehrsitz/paysplit/internal/domain"
	"github.com/shopspring/decimal"
)

// Document names reported in ParseStats
const (
	DocumentIncomeSchedule = "income_schedule"
	DocumentPensionRates   = "pension_rates"
)

// Default markers of the published TyEL rate document
const (
	DefaultSectionMarker    = "vuodelle {year}"
	DefaultNoiseMarker      = "Vakuutettavat"
	DefaultTerminatorMarker = "Vahvistetut"

	yearPlaceholder = "{year}"
)

// parseState is the position of the rate table scanner
type parseState int

const (
	stateScanningForSection parseState = iota
	stateInSection
	stateBufferingContinuation
)

func (s parseState) String() string {
	switch s {
	case stateScanningForSection:
		return "ScanningForSection"
	case stateInSection:
		return "InSection"
	case stateBufferingContinuation:
		return "BufferingContinuation"
	default:
		return "parseState(" + strconv.Itoa(int(s)) + ")"
	}
}

// RateTableParser recovers year-specific contribution rows from the free-text
// TyEL rate document. Rows may be wrapped over two physical lines and sections
// are interleaved with restated headers.
type RateTableParser struct {
	SectionMarker    string // contains {year}
	NoiseMarker      string
	TerminatorMarker string
}

// NewRateTableParser creates a parser with the markers of the published document
func NewRateTableParser() *RateTableParser {
	return &RateTableParser{
		SectionMarker:    DefaultSectionMarker,
		NoiseMarker:      DefaultNoiseMarker,
		TerminatorMarker: DefaultTerminatorMarker,
	}
}

// NewRateTableParserWithConfig creates a parser from configured markers,
// falling back to the defaults for empty values
func NewRateTableParserWithConfig(config domain.PensionRatesConfig) *RateTableParser {
	p := NewRateTableParser()
	if config.SectionMarker != "" {
		p.SectionMarker = config.SectionMarker
	}
	if config.NoiseMarker != "" {
		p.NoiseMarker = config.NoiseMarker
	}
	if config.TerminatorMarker != "" {
		p.TerminatorMarker = config.TerminatorMarker
	}
	return p
}

// Parse returns one rate per recovered row of the section for year.
// A year without a section yields an empty slice.
func (p *RateTableParser) Parse(text string, year int) ([]domain.PensionSchemeRate, domain.ParseStats) {
	rows := p.Rows(text, year)
	stats := domain.ParseStats{Document: DocumentPensionRates}

	rates := make([]domain.PensionSchemeRate, 0, len(rows))
	for _, tokens := range rows {
		rate, ok := rateFromTokens(tokens)
		if !ok {
			stats.Dropped++
			continue
		}
		rates = append(rates, rate)
	}
	stats.Rows = len(rates)

	return rates, stats
}

// Rows returns the token lists of every data row in the section for year
func (p *RateTableParser) Rows(text string, year int) [][]string {
	sc := &rowScanner{
		parser: p,
		marker: p.sectionMarker(year),
		state:  stateScanningForSection,
		rows:   [][]string{},
	}

	for _, raw := range splitLines(text) {
		if sc.step(raw) {
			break
		}
	}

	return sc.rows
}

// AvailableYears lists the years that have a section in the document, in
// document order and without duplicates
func (p *RateTableParser) AvailableYears(text string) []int {
	prefix, suffix, _ := strings.Cut(p.SectionMarker, yearPlaceholder)
	pattern := regexp.MustCompile(regexp.QuoteMeta(prefix) + `(\d{4})` + regexp.QuoteMeta(suffix))

	seen := make(map[int]bool)
	years := []int{}
	for _, match := range pattern.FindAllStringSubmatch(text, -1) {
		year, err := strconv.Atoi(match[1])
		if err != nil || seen[year] {
			continue
		}
		seen[year] = true
		years = append(years, year)
	}
	return years
}

func (p *RateTableParser) sectionMarker(year int) string {
	return strings.ReplaceAll(p.SectionMarker, yearPlaceholder, strconv.Itoa(year))
}

// rowScanner holds the state of one pass over the document
type rowScanner struct {
	parser *RateTableParser
	marker string
	state  parseState
	buffer string
	rows   [][]string
}

// step consumes one physical line and reports whether scanning must stop
func (sc *rowScanner) step(raw string) bool {
	if sc.state == stateScanningForSection {
		if strings.Contains(raw, sc.marker) {
			sc.state = stateInSection
		}
		return false
	}

	// The terminator only counts once the section has produced data
	if sc.isTerminator(raw) && len(sc.rows) > 0 {
		return true
	}

	line := strings.TrimRightFunc(raw, unicode.IsSpace)
	switch {
	case strings.TrimSpace(line) == "":
		return false
	case sc.isNoiseLine(line):
		return false
	case sc.state == stateBufferingContinuation && isIndentedCompletion(raw):
		sc.emit(sc.buffer + raw)
	case isDataRow(line):
		if sc.state == stateBufferingContinuation {
			sc.emit(sc.buffer + "\t" + line)
		} else {
			sc.emit(line)
		}
	case isContinuationFragment(line):
		sc.buffer = strings.TrimSpace(line)
		sc.state = stateBufferingContinuation
	}
	return false
}

func (sc *rowScanner) emit(combined string) {
	sc.rows = append(sc.rows, splitFields(combined))
	sc.buffer = ""
	sc.state = stateInSection
}

func (sc *rowScanner) isTerminator(raw string) bool {
	return sc.parser.TerminatorMarker != "" && strings.Contains(raw, sc.parser.TerminatorMarker)
}

func (sc *rowScanner) isNoiseLine(line string) bool {
	return sc.parser.NoiseMarker != "" && strings.Contains(line, sc.parser.NoiseMarker)
}

// isDataRow reports whether a line carries at least one digit and one tab
func isDataRow(line string) bool {
	return strings.ContainsAny(line, "0123456789") && strings.Contains(line, "\t")
}

// isContinuationFragment reports whether a non-blank line cannot stand as a row
// on its own and is kept as the first half of a wrapped row
func isContinuationFragment(line string) bool {
	return strings.TrimSpace(line) != "" && !isDataRow(line)
}

// isIndentedCompletion reports whether a raw line is indented and either
// starts with a digit or has a tab after its first leading whitespace
func isIndentedCompletion(raw string) bool {
	rest := strings.TrimLeftFunc(raw, unicode.IsSpace)
	lead := raw[:len(raw)-len(rest)]
	if lead == "" {
		return false
	}
	if rest != "" && rest[0] >= '0' && rest[0] <= '9' {
		return true
	}
	_, size := utf8.DecodeRuneInString(lead)
	return strings.Contains(lead[size:], "\t")
}

// splitFields splits on runs of tabs and drops empty tokens
func splitFields(combined string) []string {
	parts := strings.Split(combined, "\t")
	fields := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			fields = append(fields, part)
		}
	}
	return fields
}

// rateFromTokens maps a token list onto a rate. Three tokens carry no middle
// rate, four or more use the first four, fewer than three is malformed.
// Cells that are not numbers stay as invalid values.
func rateFromTokens(tokens []string) (domain.PensionSchemeRate, bool) {
	if len(tokens) < 3 {
		return domain.PensionSchemeRate{}, false
	}

	rate := domain.PensionSchemeRate{
		Label:            tokens[0],
		TotalRate:        nullPercent(tokens[1]),
		EmployeeBaseRate: nullPercent(tokens[2]),
	}
	if len(tokens) >= 4 {
		rate.EmployeeMiddleRate = nullPercent(tokens[3])
	}
	return rate, true
}

func nullPercent(value string) decimal.NullDecimal {
	d, ok := ParsePercent(value)
	return decimal.NullDecimal{Decimal: d, Valid: ok}
}

var hundred = decimal.NewFromInt(100)

// ParsePercent converts "24,1%" or "7 %" into a fraction (0.241, 0.07).
// A cell holding only the percent sign reads as zero.
func ParsePercent(value string) (decimal.Decimal, bool) {
	v := strings.Replace(value, "%", "", 1)
	v = strings.TrimSpace(v)
	v = strings.Replace(v, ",", ".", 1)
	if v == "" {
		return decimal.Zero, true
	}

	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, false
	}
	return d.Div(hundred), true
}
