package calculation

import (
	"github.com/rgehrsitz/paysplit/internal/domain"
	"github.com/shopspring/decimal"
)

// CalculationEngine orchestrates rate resolution, income interpolation and
// the salary split for one snapshot of the source documents
type CalculationEngine struct {
	Resolver      *RateResolver
	BreakdownCalc *BreakdownCalculator
	Logger        Logger
}

// NewCalculationEngine creates a new calculation engine
func NewCalculationEngine() *CalculationEngine {
	return &CalculationEngine{
		Resolver:      NewRateResolver(),
		BreakdownCalc: NewBreakdownCalculator(),
		Logger:        NopLogger{},
	}
}

// NewCalculationEngineWithConfig creates a calculation engine honouring the
// configured age-differentiated year
func NewCalculationEngineWithConfig(config domain.PensionRatesConfig) *CalculationEngine {
	ce := NewCalculationEngine()
	ce.Resolver = NewRateResolverWithConfig(config)
	return ce
}

// SetLogger sets the logger; nil installs a no-op logger
func (ce *CalculationEngine) SetLogger(l Logger) {
	if l == nil {
		ce.Logger = NopLogger{}
		return
	}
	ce.Logger = l
}

// ResolveRates resolves the rates for the query against the year's rate rows
func (ce *CalculationEngine) ResolveRates(rows []domain.PensionSchemeRate, query domain.Query) domain.ResolvedRates {
	rates, found := ce.Resolver.Lookup(rows, query.Scheme, query.Year, query.AgeBracket)
	if !found {
		ce.Logger.Warnf("scheme %q not found for %d, using zero rates", query.Scheme, query.Year)
	} else if rates.IsZero() {
		ce.Logger.Warnf("scheme %q has no numeric rates for %d, using zero rates", query.Scheme, query.Year)
	}
	return rates
}

// IncomeAt interpolates the schedule at an annual gross income
func (ce *CalculationEngine) IncomeAt(schedule *IncomeSchedule, gross decimal.Decimal) (domain.InterpolatedIncomePoint, bool) {
	if schedule == nil {
		return domain.InterpolatedIncomePoint{}, false
	}
	point, ok := schedule.Interpolate(gross)
	if !ok {
		ce.Logger.Debugf("income schedule is empty, no net income for %s", gross.String())
	}
	return point, ok
}

// Breakdown computes the full salary split for the query
func (ce *CalculationEngine) Breakdown(rows []domain.PensionSchemeRate, schedule *IncomeSchedule, query domain.Query) domain.Breakdown {
	rates := ce.ResolveRates(rows, query)
	annual := query.MonthlySalary.Mul(decimal.NewFromInt(monthsPerYear))
	point, ok := ce.IncomeAt(schedule, annual)

	ce.Logger.Debugf("breakdown %s/%d: employee %s, employer %s", query.Scheme, query.Year,
		rates.EmployeeRate.String(), rates.EmployerRate.String())

	return ce.BreakdownCalc.Calculate(query, rates, point, ok)
}
