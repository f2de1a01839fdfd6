package compare

import (
	"fmt"

	"github.com/rgehrsitz/paysplit/internal/calculation"
	"github.com/rgehrsitz/paysplit/internal/domain"
	"github.com/rgehrsitz/paysplit/internal/session"
)

// CompareEngine orchestrates scheme comparison
type CompareEngine struct {
	CalcEngine        *calculation.CalculationEngine
	MetricsCalculator *MetricsCalculator
}

// NewCompareEngine creates a new comparison engine
func NewCompareEngine(calcEngine *calculation.CalculationEngine) *CompareEngine {
	if calcEngine == nil {
		calcEngine = calculation.NewCalculationEngine()
	}
	return &CompareEngine{
		CalcEngine:        calcEngine,
		MetricsCalculator: NewMetricsCalculator(),
	}
}

// CompareOptions configures comparison behavior
type CompareOptions struct {
	BaseScheme   string   // Scheme the alternatives are measured against; empty uses the query scheme
	Alternatives []string // Schemes to compare; empty compares every other scheme of the year
}

// Compare computes the salary split of the base scheme and each alternative
// for the same year, age bracket and salary
func (ce *CompareEngine) Compare(snapshot *session.Snapshot, query domain.Query, options CompareOptions) (*ComparisonSet, error) {
	if snapshot == nil {
		return nil, fmt.Errorf("no documents loaded")
	}

	baseScheme := options.BaseScheme
	if baseScheme == "" {
		baseScheme = query.Scheme
	}
	schemes := snapshot.Schemes()
	if !contains(schemes, baseScheme) {
		return nil, fmt.Errorf("base scheme %s not found for %d", baseScheme, snapshot.Year)
	}

	alternatives := options.Alternatives
	if len(alternatives) == 0 {
		for _, scheme := range schemes {
			if scheme != baseScheme {
				alternatives = append(alternatives, scheme)
			}
		}
	}

	query.Year = snapshot.Year
	baseResult := ce.calculate(snapshot, query, baseScheme)

	results := make([]ComparisonResult, 0, len(alternatives))
	for _, scheme := range alternatives {
		if !contains(schemes, scheme) {
			return nil, fmt.Errorf("alternative scheme %s not found for %d", scheme, snapshot.Year)
		}
		altResult := ce.calculate(snapshot, query, scheme)
		altResult = ce.MetricsCalculator.CalculateComparison(altResult, baseResult)
		results = append(results, altResult)
	}

	query.Scheme = baseScheme
	compSet := &ComparisonSet{
		Query:              query,
		BaseScheme:         baseScheme,
		BaseResult:         &baseResult,
		AlternativeResults: results,
	}
	compSet.Recommendations = GenerateRecommendations(compSet)

	return compSet, nil
}

func (ce *CompareEngine) calculate(snapshot *session.Snapshot, query domain.Query, scheme string) ComparisonResult {
	query.Scheme = scheme
	b := ce.CalcEngine.Breakdown(snapshot.Rates, snapshot.Schedule, query)
	return ce.MetricsCalculator.CalculateMetrics(b)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
