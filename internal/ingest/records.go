// Package ingest turns the raw source documents into structured rows.
//
// Nothing in this package converts numbers beyond percentages in the rate
// table, and nothing returns an error for malformed content: rows that
// cannot be recovered are dropped and counted.
package ingest

import (
	"strings"
)

// DefaultDelimiter separates fields in the income schedule
const DefaultDelimiter = ";"

// Cell is a raw field value. Valid is false when the row ended before the column.
type Cell struct {
	Value string
	Valid bool
}

// Record maps every header name of a table to the raw cell in that column
type Record map[string]Cell

// Get returns the cell value and whether the row actually had that column
func (r Record) Get(name string) (string, bool) {
	cell, ok := r[name]
	if !ok || !cell.Valid {
		return "", false
	}
	return cell.Value, true
}

// Table is a parsed delimiter-separated document
type Table struct {
	Headers []string
	Records []Record
}

// ParseTable parses a delimiter-separated document whose first line holds the
// field names. Every following line yields one record, in document order.
func ParseTable(text, delimiter string) Table {
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return Table{Records: []Record{}}
	}

	lines := splitLines(text)
	headers := strings.Split(lines[0], delimiter)

	records := make([]Record, 0, len(lines)-1)
	for _, line := range lines[1:] {
		cols := strings.Split(line, delimiter)
		record := make(Record, len(headers))
		for i, header := range headers {
			if i < len(cols) {
				record[header] = Cell{Value: cols[i], Valid: true}
			} else {
				record[header] = Cell{}
			}
		}
		records = append(records, record)
	}

	return Table{Headers: headers, Records: records}
}

// ParseRecords is ParseTable without the header list
func ParseRecords(text, delimiter string) []Record {
	return ParseTable(text, delimiter).Records
}

// splitLines splits on \n and \r\n
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
