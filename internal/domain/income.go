package domain

import (
	"github.com/shopspring/decimal"
)

// Header names used by the published income schedule (asd.csv)
const (
	HeaderGrossAnnual   = "Ansiotulo (€/vuosi)"
	HeaderMonthlySalary = "Kk-palkka (€)"
	HeaderTaxesAnnual   = "Verot ja maksut (€/v)"
	HeaderTaxRate       = "Vero-prosentti"
	HeaderMarginalRate  = "Marginaali-vero"
	HeaderNetAnnual     = "Nettotulo (€/v)"
)

// IncomeTaxRecord is one breakpoint of the income schedule.
// Net and taxes are optional: a cell that does not convert to a number is
// carried as an invalid NullDecimal rather than as zero.
type IncomeTaxRecord struct {
	GrossAnnual       decimal.Decimal     `yaml:"gross_annual" json:"gross_annual"`
	NetAnnual         decimal.NullDecimal `yaml:"net_annual" json:"net_annual"`
	TaxesAnnual       decimal.NullDecimal `yaml:"taxes_annual" json:"taxes_annual"`
	TaxRateLabel      string              `yaml:"tax_rate_label" json:"tax_rate_label"`
	MarginalRateLabel string              `yaml:"marginal_rate_label" json:"marginal_rate_label"`

	// Columns the schedule carries that are not consumed by calculations
	Extra map[string]string `yaml:"extra,omitempty" json:"extra,omitempty"`
}

// InterpolatedIncomePoint is the income schedule evaluated at an arbitrary gross income
type InterpolatedIncomePoint struct {
	GrossAnnual       decimal.Decimal     `json:"gross_annual"`
	NetAnnual         decimal.NullDecimal `json:"net_annual"`
	TaxesAnnual       decimal.NullDecimal `json:"taxes_annual"`
	TaxRateLabel      string              `json:"tax_rate_label"`
	MarginalRateLabel string              `json:"marginal_rate_label"`
}

// Point converts a breakpoint into an interpolation result without modification
func (r IncomeTaxRecord) Point() InterpolatedIncomePoint {
	return InterpolatedIncomePoint{
		GrossAnnual:       r.GrossAnnual,
		NetAnnual:         r.NetAnnual,
		TaxesAnnual:       r.TaxesAnnual,
		TaxRateLabel:      r.TaxRateLabel,
		MarginalRateLabel: r.MarginalRateLabel,
	}
}

// IncomeHeaders maps the five consumed schedule fields to document header names
type IncomeHeaders struct {
	GrossAnnual  string `yaml:"gross_annual" json:"gross_annual" split_words:"true"`
	NetAnnual    string `yaml:"net_annual" json:"net_annual" split_words:"true"`
	TaxesAnnual  string `yaml:"taxes_annual" json:"taxes_annual" split_words:"true"`
	TaxRate      string `yaml:"tax_rate" json:"tax_rate" split_words:"true"`
	MarginalRate string `yaml:"marginal_rate" json:"marginal_rate" split_words:"true"`
}

// DefaultIncomeHeaders returns the header names of the published schedule
func DefaultIncomeHeaders() IncomeHeaders {
	return IncomeHeaders{
		GrossAnnual:  HeaderGrossAnnual,
		NetAnnual:    HeaderNetAnnual,
		TaxesAnnual:  HeaderTaxesAnnual,
		TaxRate:      HeaderTaxRate,
		MarginalRate: HeaderMarginalRate,
	}
}

// Names returns the consumed header names in a stable order
func (h IncomeHeaders) Names() []string {
	return []string{h.GrossAnnual, h.NetAnnual, h.TaxesAnnual, h.TaxRate, h.MarginalRate}
}

// ParseStats reports how many rows a document produced and how many were dropped
type ParseStats struct {
	Document string `json:"document"`
	Rows     int    `json:"rows"`
	Dropped  int    `json:"dropped"`
}
