package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rgehrsitz/paysplit/internal/calculation"
	"github.com/rgehrsitz/paysplit/internal/domain"
	"github.com/rgehrsitz/paysplit/internal/ingest"
	"github.com/rgehrsitz/paysplit/internal/source"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakySource struct {
	inner source.Source
	err   error
}

func (f *flakySource) Fetch(ctx context.Context) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.inner.Fetch(ctx)
}

func (f *flakySource) Name() string { return f.inner.Name() }

// gatedSource holds its first fetch until release is closed
type gatedSource struct {
	inner   source.Source
	started chan struct{}
	release chan struct{}

	mu    sync.Mutex
	calls int
}

func (g *gatedSource) Fetch(ctx context.Context) (string, error) {
	g.mu.Lock()
	g.calls++
	first := g.calls == 1
	g.mu.Unlock()

	if first {
		close(g.started)
		<-g.release
	}
	return g.inner.Fetch(ctx)
}

func (g *gatedSource) Name() string { return g.inner.Name() }

type recorder struct {
	stats []domain.ParseStats
}

func (r *recorder) RecordParse(stats domain.ParseStats) {
	r.stats = append(r.stats, stats)
}

func testLoader() (*Loader, *flakySource) {
	rates := &flakySource{inner: source.NewFileSource("../../testdata/tyel.txt")}
	return NewLoader(source.NewFileSource("../../testdata/asd.csv"), rates), rates
}

func defaultQuery() domain.Query {
	return domain.Query{
		Year:          2026,
		Scheme:        calculation.DefaultScheme,
		AgeBracket:    domain.AgeBracketBase,
		MonthlySalary: decimal.NewFromInt(3500),
	}
}

func TestLoader_Load(t *testing.T) {
	loader, _ := testLoader()
	rec := &recorder{}
	loader.Recorder = rec

	snap, err := loader.Load(context.Background(), 2025)

	require.NoError(t, err)
	assert.Equal(t, 2025, snap.Year)
	assert.Equal(t, 10, snap.Schedule.Len())
	assert.Len(t, snap.Rates, 5)
	assert.Equal(t, []int{2026, 2025, 2024}, snap.Years)
	assert.Equal(t, []domain.ParseStats{
		{Document: ingest.DocumentIncomeSchedule, Rows: 10},
		{Document: ingest.DocumentPensionRates, Rows: 5, Dropped: 1},
	}, snap.Stats)
	assert.Equal(t, snap.Stats, rec.stats)
}

func TestLoader_LoadFailure(t *testing.T) {
	loader, rates := testLoader()
	rates.err = errors.New("offline")

	snap, err := loader.Load(context.Background(), 2026)

	assert.Nil(t, snap)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "offline")
}

func TestNewLoaderFromConfig(t *testing.T) {
	config := &domain.Configuration{
		Sources: domain.SourcesConfig{
			IncomeSchedule: "../../testdata/asd.csv",
			PensionRates:   "https://example.com/tyel.txt",
		},
		IncomeSchedule: domain.IncomeScheduleConfig{Delimiter: ","},
		PensionRates:   domain.PensionRatesConfig{NoiseMarker: "Scheme"},
	}

	loader := NewLoaderFromConfig(config, nil)

	assert.IsType(t, &source.FileSource{}, loader.Income)
	assert.IsType(t, &source.HTTPSource{}, loader.Rates)
	assert.Equal(t, ",", loader.Delimiter)
	assert.Equal(t, domain.DefaultIncomeHeaders(), loader.Headers)
	assert.Equal(t, "Scheme", loader.Parser.NoiseMarker)
	assert.Equal(t, ingest.DefaultSectionMarker, loader.Parser.SectionMarker)
	assert.IsType(t, calculation.NopLogger{}, loader.Logger)
}

func TestSession_Queries(t *testing.T) {
	loader, _ := testLoader()
	s := New(loader, nil, defaultQuery())
	require.NoError(t, s.Load(context.Background()))

	assert.Len(t, s.Schemes(), 5)
	assert.Equal(t, []int{2026, 2025, 2024}, s.Years())

	rates := s.Rates()
	assert.True(t, decimal.RequireFromString("0.073").Equal(rates.EmployeeRate))

	point, ok := s.Income(decimal.NewFromInt(60000))
	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(41070).Equal(point.NetAnnual.Decimal))

	b := s.Breakdown()
	assert.True(t, decimal.NewFromInt(49371).Equal(b.EmployerTotalCost))
	assert.Len(t, s.Schedule(), 10)
}

func TestSession_SetYearSwapsSnapshot(t *testing.T) {
	loader, _ := testLoader()
	s := New(loader, nil, defaultQuery())
	require.NoError(t, s.Load(context.Background()))

	s.SetAgeBracket(domain.AgeBracketElevated)
	require.NoError(t, s.SetYear(context.Background(), 2025))

	assert.Equal(t, 2025, s.Query().Year)
	assert.True(t, decimal.RequireFromString("0.0865").Equal(s.Rates().EmployeeRate))
}

func TestSession_FailedReloadKeepsPreviousSnapshot(t *testing.T) {
	loader, rates := testLoader()
	s := New(loader, nil, defaultQuery())
	require.NoError(t, s.Load(context.Background()))
	before := s.Snapshot()

	rates.err = errors.New("timeout")
	err := s.SetYear(context.Background(), 2025)

	require.Error(t, err)
	assert.Same(t, before, s.Snapshot())
	assert.Equal(t, 2026, s.Query().Year)
	assert.True(t, decimal.RequireFromString("0.073").Equal(s.Rates().EmployeeRate))
}

func TestSession_SetSchemeFallsBack(t *testing.T) {
	loader, _ := testLoader()
	s := New(loader, nil, defaultQuery())

	assert.Equal(t, "anything", s.SetScheme("anything"), "no snapshot yet")

	require.NoError(t, s.Load(context.Background()))
	assert.Equal(t, calculation.DefaultScheme, s.Query().Scheme, "load re-selects against the year's schemes")

	assert.Equal(t, "Valtion palkansaajat/JuEL", s.SetScheme("Valtion palkansaajat/JuEL"))
	assert.Equal(t, calculation.DefaultScheme, s.SetScheme("Yrittäjät/YEL"))
}

func TestSession_SchemeMissingFromNewYear(t *testing.T) {
	loader, _ := testLoader()
	query := defaultQuery()
	query.Year = 2025
	query.Scheme = "Yrittäjät/YEL"
	s := New(loader, nil, query)

	require.NoError(t, s.Load(context.Background()))

	assert.Equal(t, calculation.DefaultScheme, s.Query().Scheme)
}

func TestSession_BeforeLoad(t *testing.T) {
	loader, _ := testLoader()
	s := New(loader, nil, domain.Query{MonthlySalary: decimal.NewFromInt(1000)})

	assert.Nil(t, s.Snapshot())
	assert.Empty(t, s.Schemes())
	assert.Empty(t, s.Years())
	assert.Empty(t, s.Schedule())
	assert.True(t, s.Rates().IsZero())
	_, ok := s.Income(decimal.NewFromInt(1))
	assert.False(t, ok)

	b := s.Breakdown()
	assert.False(t, b.HasIncomeData)
	assert.Equal(t, domain.AgeBracketBase, s.Query().AgeBracket)
}

func TestSession_OverlappingReloadsKeepNewestYear(t *testing.T) {
	rates := &gatedSource{
		inner:   source.NewFileSource("../../testdata/tyel.txt"),
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	s := New(NewLoader(source.NewFileSource("../../testdata/asd.csv"), rates), nil, defaultQuery())

	older := make(chan error, 1)
	go func() { older <- s.SetYear(context.Background(), 2024) }()
	<-rates.started

	require.NoError(t, s.SetYear(context.Background(), 2025))
	close(rates.release)

	assert.ErrorIs(t, <-older, ErrSuperseded)
	assert.Equal(t, 2025, s.Query().Year)
	assert.Equal(t, 2025, s.Snapshot().Year)
}
