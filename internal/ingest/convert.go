package ingest

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/rgehrsitz/paysplit/internal/domain"
)

var (
	// ErrNoDataRows is returned when a published table has no line starting with a digit
	ErrNoDataRows = errors.New("no data rows found in input")
	// ErrColumnCount is returned when a table line does not split into the expected columns
	ErrColumnCount = errors.New("unexpected column count")
)

// ScheduleHeader is the header written by ConvertSchedule, in column order
var ScheduleHeader = []string{
	domain.HeaderGrossAnnual,
	domain.HeaderMonthlySalary,
	domain.HeaderTaxesAnnual,
	domain.HeaderTaxRate,
	domain.HeaderMarginalRate,
	domain.HeaderNetAnnual,
}

var columnSeparator = regexp.MustCompile(`\t+|\s{2,}`)

// ConvertSchedule converts the published income table (tab or multi-space
// separated, preceded by free text) into the semicolon-separated schedule
// that ParseRecords consumes. Unlike the parsers it fails on a malformed
// line, since its output is meant to be reviewed and committed.
func ConvertSchedule(r io.Reader, w io.Writer) (int, error) {
	lines, err := nonBlankLines(r)
	if err != nil {
		return 0, fmt.Errorf("failed to read table: %w", err)
	}

	start := -1
	for i, line := range lines {
		if line[0] >= '0' && line[0] <= '9' {
			start = i
			break
		}
	}
	if start < 0 {
		return 0, ErrNoDataRows
	}

	rows := make([][]string, 0, len(lines)-start)
	for _, line := range lines[start:] {
		parts := splitTableLine(line)
		if len(parts) != len(ScheduleHeader) {
			return 0, fmt.Errorf("%w (%d) in line: %s", ErrColumnCount, len(parts), line)
		}
		for i, part := range parts {
			parts[i] = removeSpaces(part)
		}
		rows = append(rows, parts)
	}

	writer := csv.NewWriter(w)
	writer.Comma = ';'
	writer.UseCRLF = true
	if err := writer.Write(ScheduleHeader); err != nil {
		return 0, err
	}
	if err := writer.WriteAll(rows); err != nil {
		return 0, err
	}

	return len(rows), nil
}

func nonBlankLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}

func splitTableLine(line string) []string {
	parts := columnSeparator.Split(strings.TrimSpace(line), -1)
	out := parts[:0]
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// removeSpaces drops thousands separators, including the no-break variants
func removeSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f':
			return -1
		}
		return r
	}, s)
}
