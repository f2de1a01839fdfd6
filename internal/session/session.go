package session

import (
	"context"
	"errors"
	"sync"

	"github.com/rgehrsitz/paysplit/internal/calculation"
	"github.com/rgehrsitz/paysplit/internal/domain"
	"github.com/shopspring/decimal"
)

// ErrSuperseded is returned by SetYear when a later reload started before
// this one finished. The later reload owns the snapshot.
var ErrSuperseded = errors.New("reload superseded by a newer request")

// Session is the explicit query context that replaces implicit UI state.
// A reload swaps the snapshot only once both documents were fetched and
// parsed, so a failed reload leaves the previous year in place.
type Session struct {
	loader *Loader
	engine *calculation.CalculationEngine

	mu       sync.RWMutex
	query    domain.Query
	snapshot *Snapshot
	loads    uint64 // reloads started, the newest one may swap
}

// New creates a session with the given starting query. Nothing is loaded
// until Load or SetYear is called.
func New(loader *Loader, engine *calculation.CalculationEngine, query domain.Query) *Session {
	if engine == nil {
		engine = calculation.NewCalculationEngine()
	}
	if query.AgeBracket == "" {
		query.AgeBracket = domain.AgeBracketBase
	}
	return &Session{loader: loader, engine: engine, query: query}
}

// Load loads the snapshot for the current year
func (s *Session) Load(ctx context.Context) error {
	return s.SetYear(ctx, s.Query().Year)
}

// SetYear re-ingests both documents for year. On failure the previous
// snapshot and year are kept and the error is returned. When reloads
// overlap only the most recently started one is applied.
func (s *Session) SetYear(ctx context.Context, year int) error {
	s.mu.Lock()
	s.loads++
	load := s.loads
	s.mu.Unlock()

	snap, err := s.loader.Load(ctx, year)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if load != s.loads {
		return ErrSuperseded
	}
	s.snapshot = snap
	s.query.Year = year
	s.query.Scheme = calculation.SelectScheme(snap.Schemes(), s.query.Scheme)
	return nil
}

// SetScheme selects scheme, falling back to the first scheme of the year
// when it is not offered. It returns the scheme actually selected.
func (s *Session) SetScheme(scheme string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot == nil {
		s.query.Scheme = scheme
		return scheme
	}
	s.query.Scheme = calculation.SelectScheme(s.snapshot.Schemes(), scheme)
	return s.query.Scheme
}

// SetAgeBracket selects the age bracket
func (s *Session) SetAgeBracket(bracket domain.AgeBracket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query.AgeBracket = bracket
}

// SetMonthlySalary sets the monthly gross salary
func (s *Session) SetMonthlySalary(salary decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query.MonthlySalary = salary
}

// Query returns the current query parameters
func (s *Session) Query() domain.Query {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query
}

// Snapshot returns the current snapshot, nil before the first successful load
func (s *Session) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

func (s *Session) state() (domain.Query, *Snapshot) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query, s.snapshot
}

// Years lists the years the rate document has sections for
func (s *Session) Years() []int {
	_, snap := s.state()
	if snap == nil {
		return []int{}
	}
	return snap.Years
}

// Schemes lists the schemes offered in the loaded year
func (s *Session) Schemes() []string {
	_, snap := s.state()
	if snap == nil {
		return []string{}
	}
	return snap.Schemes()
}

// Rates resolves the contribution rates of the current query
func (s *Session) Rates() domain.ResolvedRates {
	query, snap := s.state()
	if snap == nil {
		return domain.ResolvedRates{}
	}
	return s.engine.ResolveRates(snap.Rates, query)
}

// Income interpolates the loaded schedule at an annual gross income
func (s *Session) Income(gross decimal.Decimal) (domain.InterpolatedIncomePoint, bool) {
	_, snap := s.state()
	if snap == nil {
		return domain.InterpolatedIncomePoint{}, false
	}
	return s.engine.IncomeAt(snap.Schedule, gross)
}

// Breakdown computes the salary split of the current query
func (s *Session) Breakdown() domain.Breakdown {
	query, snap := s.state()
	if snap == nil {
		return s.engine.Breakdown(nil, nil, query)
	}
	return s.engine.Breakdown(snap.Rates, snap.Schedule, query)
}

// Schedule returns the sorted income schedule for plotting
func (s *Session) Schedule() []domain.IncomeTaxRecord {
	_, snap := s.state()
	if snap == nil {
		return []domain.IncomeTaxRecord{}
	}
	return snap.Schedule.Records()
}
