package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Configuration is the complete paysplit configuration loaded from YAML
type Configuration struct {
	Sources        SourcesConfig        `yaml:"sources" json:"sources" split_words:"true"`
	IncomeSchedule IncomeScheduleConfig `yaml:"income_schedule" json:"income_schedule" split_words:"true"`
	PensionRates   PensionRatesConfig   `yaml:"pension_rates" json:"pension_rates" split_words:"true"`
	Defaults       QueryDefaults        `yaml:"defaults" json:"defaults" split_words:"true"`
	Server         ServerConfig         `yaml:"server" json:"server" split_words:"true"`
	Logging        LoggingConfig        `yaml:"logging" json:"logging" split_words:"true"`
}

// SourcesConfig locates the two source documents. A location starting with
// http:// or https:// is fetched over HTTP, anything else is read from disk.
type SourcesConfig struct {
	IncomeSchedule string        `yaml:"income_schedule" json:"income_schedule" split_words:"true"`
	PensionRates   string        `yaml:"pension_rates" json:"pension_rates" split_words:"true"`
	FetchTimeout   time.Duration `yaml:"fetch_timeout" json:"fetch_timeout" split_words:"true"`
}

// IncomeScheduleConfig describes the delimiter-separated income schedule
type IncomeScheduleConfig struct {
	Delimiter string        `yaml:"delimiter" json:"delimiter" split_words:"true"`
	Headers   IncomeHeaders `yaml:"headers" json:"headers" split_words:"true"`
}

// PensionRatesConfig holds the text markers of the TyEL rate document
type PensionRatesConfig struct {
	// SectionMarker must contain the {year} placeholder
	SectionMarker         string `yaml:"section_marker" json:"section_marker" split_words:"true"`
	NoiseMarker           string `yaml:"noise_marker" json:"noise_marker" split_words:"true"`
	TerminatorMarker      string `yaml:"terminator_marker" json:"terminator_marker" split_words:"true"`
	AgeDifferentiatedYear int    `yaml:"age_differentiated_year" json:"age_differentiated_year" split_words:"true"`
}

// QueryDefaults are the query parameters used when a command omits them
type QueryDefaults struct {
	Year          int             `yaml:"year" json:"year" split_words:"true"`
	Scheme        string          `yaml:"scheme" json:"scheme" split_words:"true"`
	AgeBracket    AgeBracket      `yaml:"age_bracket" json:"age_bracket" split_words:"true"`
	MonthlySalary decimal.Decimal `yaml:"monthly_salary" json:"monthly_salary" split_words:"true"`
}

// ServerConfig configures the query API
type ServerConfig struct {
	Addr         string        `yaml:"addr" json:"addr" split_words:"true"`
	ReadTimeout  time.Duration `yaml:"read_timeout" json:"read_timeout" split_words:"true"`
	WriteTimeout time.Duration `yaml:"write_timeout" json:"write_timeout" split_words:"true"`
}

// LoggingConfig configures the zap logger
type LoggingConfig struct {
	Level       string `yaml:"level" json:"level" split_words:"true"`
	Development bool   `yaml:"development" json:"development" split_words:"true"`
}
