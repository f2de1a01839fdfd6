// Package session holds the query context of one user: the selected year,
// scheme, age bracket and salary, plus an immutable snapshot of the parsed
// source documents for that year.
package session

import (
	"context"
	"fmt"

	"github.com/rgehrsitz/paysplit/internal/calculation"
	"github.com/rgehrsitz/paysplit/internal/domain"
	"github.com/rgehrsitz/paysplit/internal/ingest"
	"github.com/rgehrsitz/paysplit/internal/source"
)

// StatsRecorder receives parse diagnostics. *metrics.Metrics implements it.
type StatsRecorder interface {
	RecordParse(stats domain.ParseStats)
}

// Snapshot is the parsed state of both documents for one year. It is never
// modified after Load returns it.
type Snapshot struct {
	Year     int
	Schedule *calculation.IncomeSchedule
	Rates    []domain.PensionSchemeRate
	Years    []int
	Stats    []domain.ParseStats
}

// Schemes returns the scheme labels of the snapshot year in document order
func (s *Snapshot) Schemes() []string {
	return calculation.SchemeLabels(s.Rates)
}

// Loader fetches and parses the two source documents
type Loader struct {
	Income    source.Source
	Rates     source.Source
	Delimiter string
	Headers   domain.IncomeHeaders
	Parser    *ingest.RateTableParser
	Logger    calculation.Logger
	Recorder  StatsRecorder
}

// NewLoader creates a loader with the published document layouts
func NewLoader(income, rates source.Source) *Loader {
	return &Loader{
		Income:    income,
		Rates:     rates,
		Delimiter: ingest.DefaultDelimiter,
		Headers:   domain.DefaultIncomeHeaders(),
		Parser:    ingest.NewRateTableParser(),
		Logger:    calculation.NopLogger{},
	}
}

// NewLoaderFromConfig creates a loader for the configured sources and layouts
func NewLoaderFromConfig(config *domain.Configuration, logger calculation.Logger) *Loader {
	l := NewLoader(
		source.New(config.Sources.IncomeSchedule, config.Sources.FetchTimeout),
		source.New(config.Sources.PensionRates, config.Sources.FetchTimeout),
	)
	if config.IncomeSchedule.Delimiter != "" {
		l.Delimiter = config.IncomeSchedule.Delimiter
	}
	if config.IncomeSchedule.Headers.GrossAnnual != "" {
		l.Headers = config.IncomeSchedule.Headers
	}
	l.Parser = ingest.NewRateTableParserWithConfig(config.PensionRates)
	l.SetLogger(logger)
	return l
}

// SetLogger sets the logger; nil installs a no-op logger
func (l *Loader) SetLogger(logger calculation.Logger) {
	if logger == nil {
		l.Logger = calculation.NopLogger{}
		return
	}
	l.Logger = logger
}

// Load fetches both documents and parses them for year. Fetch failures are
// returned; parse problems only show up in the snapshot stats.
func (l *Loader) Load(ctx context.Context, year int) (*Snapshot, error) {
	incomeText, ratesText, err := source.FetchPair(ctx, l.Income, l.Rates)
	if err != nil {
		return nil, fmt.Errorf("failed to load documents for %d: %w", year, err)
	}
	return l.Parse(incomeText, ratesText, year), nil
}

// Parse builds a snapshot from already fetched document text
func (l *Loader) Parse(incomeText, ratesText string, year int) *Snapshot {
	schedule := calculation.NewIncomeSchedule(ingest.ParseRecords(incomeText, l.Delimiter), l.Headers)
	rates, rateStats := l.Parser.Parse(ratesText, year)

	snap := &Snapshot{
		Year:     year,
		Schedule: schedule,
		Rates:    rates,
		Years:    l.Parser.AvailableYears(ratesText),
		Stats:    []domain.ParseStats{schedule.Stats(), rateStats},
	}

	for _, stats := range snap.Stats {
		if stats.Dropped > 0 {
			l.Logger.Warnf("%s: dropped %d malformed rows", stats.Document, stats.Dropped)
		}
		l.Logger.Debugf("%s: parsed %d rows", stats.Document, stats.Rows)
		if l.Recorder != nil {
			l.Recorder.RecordParse(stats)
		}
	}
	if len(rates) == 0 {
		l.Logger.Warnf("no contribution rates found for %d", year)
	}
	if schedule.Len() == 0 {
		l.Logger.Warnf("income schedule is empty")
	}

	return snap
}
