package ingest

import (
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rgehrsitz/paysplit/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadRateDocument(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile("../../testdata/tyel.txt")
	require.NoError(t, err)
	return string(data)
}

func labels(rates []domain.PensionSchemeRate) []string {
	out := make([]string, len(rates))
	for i, r := range rates {
		out[i] = r.Label
	}
	return out
}

func TestParsePercent(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"24,1%", "0.241", true},
		{"7%", "0.07", true},
		{"24,85 %", "0.2485", true},
		{"8.65", "0.0865", true},
		{" 7,30 % ", "0.073", true},
		{"%", "0", true},
		{"", "0", true},
		{"abc", "0", false},
		{"n/a", "0", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParsePercent(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
			}
		})
	}
}

func TestRateTableParser_ThreeColumnYear(t *testing.T) {
	parser := NewRateTableParser()

	rates, stats := parser.Parse(loadRateDocument(t), 2026)

	assert.Equal(t, []string{
		"Yksityisten alojen palkansaajat/TyEL",
		"Kunnalliset palkansaajat/JuEL",
		"Valtion palkansaajat/JuEL",
		"Evankelis-luterilaisen kirkon palkansaajat/JuEL",
		"Merimieseläkelaki/MEL",
	}, labels(rates))
	assert.Equal(t, domain.ParseStats{Document: DocumentPensionRates, Rows: 5, Dropped: 0}, stats)

	first := rates[0]
	assert.True(t, decimal.RequireFromString("0.2485").Equal(first.TotalRate.Decimal))
	assert.True(t, decimal.RequireFromString("0.073").Equal(first.EmployeeBaseRate.Decimal))
	assert.False(t, first.EmployeeMiddleRate.Valid)

	// wrapped label completed by an indented line
	church := rates[3]
	assert.True(t, decimal.RequireFromString("0.2793").Equal(church.TotalRate.Decimal))
}

func TestRateTableParser_FourColumnYear(t *testing.T) {
	parser := NewRateTableParser()

	rates, stats := parser.Parse(loadRateDocument(t), 2025)

	assert.Equal(t, []string{
		"Yksityisten alojen palkansaajat/TyEL",
		"Kunnalliset palkansaajat/JuEL",
		"Valtion palkansaajat/JuEL",
		"Evankelis-luterilaisen kirkon palkansaajat/JuEL",
		"Merimieseläkelaki/MEL",
	}, labels(rates))
	assert.Equal(t, 5, stats.Rows)
	assert.Equal(t, 1, stats.Dropped, "the two-token YEL row is malformed")

	municipal := rates[1]
	assert.True(t, decimal.RequireFromString("0.2874").Equal(municipal.TotalRate.Decimal), "fragment joined with a tab")
	require.True(t, municipal.EmployeeMiddleRate.Valid)
	assert.True(t, decimal.RequireFromString("0.0865").Equal(municipal.EmployeeMiddleRate.Decimal))

	seafarers := rates[4]
	assert.False(t, seafarers.EmployeeMiddleRate.Valid)
}

func TestRateTableParser_SectionStopsAtTerminator(t *testing.T) {
	rates, _ := NewRateTableParser().Parse(loadRateDocument(t), 2024)
	assert.Len(t, rates, 1)
}

func TestRateTableParser_MissingYear(t *testing.T) {
	rates, stats := NewRateTableParser().Parse(loadRateDocument(t), 1999)
	assert.NotNil(t, rates)
	assert.Empty(t, rates)
	assert.Zero(t, stats.Rows)
	assert.Zero(t, stats.Dropped)
}

func TestRateTableParser_TerminatorBeforeRowsIsIgnored(t *testing.T) {
	text := "Maksut vuodelle 2030\n" +
		"Vahvistetut: Vakuutettavat / eläkelaki\n" +
		"A\t10 %\t5 %\n" +
		"B\t11 %\t6 %\n" +
		"Vahvistetut\n" +
		"C\t12 %\t7 %\n"

	rates, _ := NewRateTableParser().Parse(text, 2030)

	assert.Equal(t, []string{"A", "B"}, labels(rates))
}

func TestRateTableParser_TerminatorAsFirstDataRow(t *testing.T) {
	text := "Maksut vuodelle 2030\n" +
		"Vahvistetut arvio\t24 %\t7 %\n" +
		"A\t10 %\t5 %\n"

	rates, _ := NewRateTableParser().Parse(text, 2030)

	assert.Equal(t, []string{"Vahvistetut arvio", "A"}, labels(rates))
}

func TestRateTableParser_Rows(t *testing.T) {
	text := "x vuodelle 2031\n" +
		"Long label\n" +
		"\t\tfirst\t1 %\t2 %\n" +
		"Other\n" +
		"3 %\t4 %\n" +
		"Plain\t\t5 %\t\t6 %\t7 %\t8 %\n"

	rows := NewRateTableParser().Rows(text, 2031)

	want := [][]string{
		{"Long label", "first", "1 %", "2 %"},
		{"Other", "3 %", "4 %"},
		{"Plain", "5 %", "6 %", "7 %", "8 %"},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("Rows() mismatch (-want +got):\n%s", diff)
	}

	rates, stats := NewRateTableParser().Parse(text, 2031)
	require.Len(t, rates, 3)
	assert.Zero(t, stats.Dropped)
	assert.False(t, rates[0].TotalRate.Valid, "a non-numeric total is kept as invalid")
	assert.True(t, rates[0].EmployeeBaseRate.Valid)
	assert.Equal(t, "Plain", rates[2].Label)
	assert.True(t, decimal.RequireFromString("0.07").Equal(rates[2].EmployeeMiddleRate.Decimal), "extra tokens beyond four are ignored")
}

func TestRateTableParser_NonNumericCellsKeepTheRow(t *testing.T) {
	text := "Maksut vuodelle 2030\n" +
		"A\t10 %\t5 %\n" +
		"B\tn/a\t6 %\n" +
		"C\t%\t7 %\n" +
		"D\t12 %\n"

	rates, stats := NewRateTableParser().Parse(text, 2030)

	assert.Equal(t, []string{"A", "B", "C"}, labels(rates))
	assert.Equal(t, domain.ParseStats{Document: DocumentPensionRates, Rows: 3, Dropped: 1}, stats)

	assert.True(t, decimal.RequireFromString("0.1").Equal(rates[0].TotalRate.Decimal))
	assert.False(t, rates[1].TotalRate.Valid)
	assert.True(t, decimal.RequireFromString("0.06").Equal(rates[1].EmployeeBaseRate.Decimal))
	require.True(t, rates[2].TotalRate.Valid, "a bare percent sign reads as zero")
	assert.True(t, rates[2].TotalRate.Decimal.IsZero())
}

func TestRateTableParser_Idempotent(t *testing.T) {
	text := loadRateDocument(t)
	parser := NewRateTableParser()

	for _, year := range []int{2024, 2025, 2026} {
		first, firstStats := parser.Parse(text, year)
		second, secondStats := parser.Parse(text, year)
		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("year %d: parse not idempotent (-first +second):\n%s", year, diff)
		}
		assert.Equal(t, firstStats, secondStats)
	}
}

func TestRateTableParser_AvailableYears(t *testing.T) {
	years := NewRateTableParser().AvailableYears(loadRateDocument(t))
	assert.Equal(t, []int{2026, 2025, 2024}, years)

	assert.Empty(t, NewRateTableParser().AvailableYears("no sections here"))
}

func TestNewRateTableParserWithConfig(t *testing.T) {
	parser := NewRateTableParserWithConfig(domain.PensionRatesConfig{
		SectionMarker: "for year {year}",
		NoiseMarker:   "Scheme",
	})

	assert.Equal(t, "for year {year}", parser.SectionMarker)
	assert.Equal(t, "Scheme", parser.NoiseMarker)
	assert.Equal(t, DefaultTerminatorMarker, parser.TerminatorMarker)

	text := "Rates for year 2027\nScheme\tTotal\tEmployee\nPrivate\t24,1%\t7%\n"
	rates, _ := parser.Parse(text, 2027)
	require.Len(t, rates, 1)
	assert.True(t, decimal.RequireFromString("0.241").Equal(rates[0].TotalRate.Decimal))
	assert.True(t, decimal.RequireFromString("0.07").Equal(rates[0].EmployeeBaseRate.Decimal))
}

func TestLinePredicates(t *testing.T) {
	assert.True(t, isDataRow("A\t1 %"))
	assert.False(t, isDataRow("A 1 %"))
	assert.False(t, isDataRow("A\tB"))

	assert.True(t, isContinuationFragment("Evankelis-luterilaisen kirkon"))
	assert.True(t, isContinuationFragment("Header\tWithout digits"))
	assert.False(t, isContinuationFragment("A\t1 %"))
	assert.False(t, isContinuationFragment("   "))

	assert.True(t, isIndentedCompletion("  12 %"))
	assert.True(t, isIndentedCompletion("\t12 %"))
	assert.True(t, isIndentedCompletion(" \tlabel"))
	assert.False(t, isIndentedCompletion("\tlabel"))
	assert.False(t, isIndentedCompletion("12 %\t3 %"))
}

func TestParseStateString(t *testing.T) {
	assert.Equal(t, "ScanningForSection", stateScanningForSection.String())
	assert.Equal(t, "InSection", stateInSection.String())
	assert.Equal(t, "BufferingContinuation", stateBufferingContinuation.String())
}
