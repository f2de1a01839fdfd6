package calculation

import (
	"sort"

	"github.com/rgehrsitz/paysplit/internal/domain"
	"github.com/rgehrsitz/paysplit/internal/ingest"
	"github.com/shopspring/decimal"
)

// IncomeSchedule is the income/tax table sorted by gross income. It is
// immutable once built.
type IncomeSchedule struct {
	records []domain.IncomeTaxRecord
	stats   domain.ParseStats
}

// NewIncomeSchedule converts raw schedule records using the header mapping.
// Records whose gross income is missing, non-numeric or negative cannot be
// placed on the curve and are dropped; a missing net or tax value is kept as
// an invalid decimal.
func NewIncomeSchedule(records []ingest.Record, headers domain.IncomeHeaders) *IncomeSchedule {
	consumed := make(map[string]bool)
	for _, name := range headers.Names() {
		consumed[name] = true
	}

	stats := domain.ParseStats{Document: ingest.DocumentIncomeSchedule}
	typed := make([]domain.IncomeTaxRecord, 0, len(records))

	for _, raw := range records {
		grossText, _ := raw.Get(headers.GrossAnnual)
		gross, ok := ParseAmount(grossText)
		if !ok || gross.IsNegative() {
			stats.Dropped++
			continue
		}

		record := domain.IncomeTaxRecord{
			GrossAnnual: gross,
			NetAnnual:   nullAmount(raw.Get(headers.NetAnnual)),
			TaxesAnnual: nullAmount(raw.Get(headers.TaxesAnnual)),
		}
		record.TaxRateLabel, _ = raw.Get(headers.TaxRate)
		record.MarginalRateLabel, _ = raw.Get(headers.MarginalRate)

		for name, cell := range raw {
			if consumed[name] || !cell.Valid {
				continue
			}
			if record.Extra == nil {
				record.Extra = make(map[string]string)
			}
			record.Extra[name] = cell.Value
		}

		typed = append(typed, record)
	}

	schedule := NewIncomeScheduleFromRecords(typed)
	stats.Rows = len(schedule.records)
	schedule.stats = stats
	return schedule
}

// NewIncomeScheduleFromRecords builds a schedule from typed records. The
// input slice is copied and stably sorted by gross income.
func NewIncomeScheduleFromRecords(records []domain.IncomeTaxRecord) *IncomeSchedule {
	sorted := make([]domain.IncomeTaxRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].GrossAnnual.LessThan(sorted[j].GrossAnnual)
	})

	return &IncomeSchedule{
		records: sorted,
		stats:   domain.ParseStats{Document: ingest.DocumentIncomeSchedule, Rows: len(sorted)},
	}
}

// Len returns the number of breakpoints
func (s *IncomeSchedule) Len() int {
	return len(s.records)
}

// Records returns a copy of the sorted breakpoints
func (s *IncomeSchedule) Records() []domain.IncomeTaxRecord {
	out := make([]domain.IncomeTaxRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Stats reports how many rows the schedule kept and dropped
func (s *IncomeSchedule) Stats() domain.ParseStats {
	return s.stats
}

// Interpolate estimates net income and taxes at gross. The second result is
// false when the schedule is empty.
//
// Outside the schedule the nearest breakpoint is returned unchanged. Inside,
// net and taxes are linear between the surrounding breakpoints and the rate
// labels are those of the lower breakpoint.
func (s *IncomeSchedule) Interpolate(gross decimal.Decimal) (domain.InterpolatedIncomePoint, bool) {
	if len(s.records) == 0 {
		return domain.InterpolatedIncomePoint{}, false
	}

	first := s.records[0]
	last := s.records[len(s.records)-1]
	if gross.LessThanOrEqual(first.GrossAnnual) {
		return first.Point(), true
	}
	if gross.GreaterThanOrEqual(last.GrossAnnual) {
		return last.Point(), true
	}

	for i := 0; i < len(s.records)-1; i++ {
		current := s.records[i]
		next := s.records[i+1]
		if gross.LessThan(current.GrossAnnual) || gross.GreaterThan(next.GrossAnnual) {
			continue
		}

		span := next.GrossAnnual.Sub(current.GrossAnnual)
		if span.IsZero() {
			point := current.Point()
			point.GrossAnnual = gross
			return point, true
		}
		ratio := gross.Sub(current.GrossAnnual).Div(span)

		return domain.InterpolatedIncomePoint{
			GrossAnnual:       gross,
			NetAnnual:         lerp(current.NetAnnual, next.NetAnnual, ratio),
			TaxesAnnual:       lerp(current.TaxesAnnual, next.TaxesAnnual, ratio),
			TaxRateLabel:      current.TaxRateLabel,
			MarginalRateLabel: current.MarginalRateLabel,
		}, true
	}

	return last.Point(), true
}

// lerp is invalid when either end is
func lerp(from, to decimal.NullDecimal, ratio decimal.Decimal) decimal.NullDecimal {
	if !from.Valid || !to.Valid {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{
		Decimal: from.Decimal.Add(ratio.Mul(to.Decimal.Sub(from.Decimal))),
		Valid:   true,
	}
}
