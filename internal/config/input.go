package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rgehrsitz/paysplit/internal/calculation"
	"github.com/rgehrsitz/paysplit/internal/domain"
	"github.com/rgehrsitz/paysplit/internal/ingest"
	"github.com/shopspring/decimal"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides, e.g. PAYSPLIT_SERVER_ADDR
const EnvPrefix = "PAYSPLIT"

// Defaults of the published documents and the original calculator
const (
	DefaultIncomeScheduleLocation = "data/asd.csv"
	DefaultPensionRatesLocation   = "data/tyel.txt"
	DefaultYear                   = 2026
	DefaultMonthlySalary          = 3500
	DefaultServerAddr             = ":8080"
)

// InputParser handles parsing of input configuration files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// DefaultConfiguration returns the configuration used when no file is given
func DefaultConfiguration() *domain.Configuration {
	return &domain.Configuration{
		Sources: domain.SourcesConfig{
			IncomeSchedule: DefaultIncomeScheduleLocation,
			PensionRates:   DefaultPensionRatesLocation,
			FetchTimeout:   10 * time.Second,
		},
		IncomeSchedule: domain.IncomeScheduleConfig{
			Delimiter: ingest.DefaultDelimiter,
			Headers:   domain.DefaultIncomeHeaders(),
		},
		PensionRates: domain.PensionRatesConfig{
			SectionMarker:         ingest.DefaultSectionMarker,
			NoiseMarker:           ingest.DefaultNoiseMarker,
			TerminatorMarker:      ingest.DefaultTerminatorMarker,
			AgeDifferentiatedYear: calculation.DefaultAgeDifferentiatedYear,
		},
		Defaults: domain.QueryDefaults{
			Year:          DefaultYear,
			Scheme:        calculation.DefaultScheme,
			AgeBracket:    domain.AgeBracketBase,
			MonthlySalary: decimal.NewFromInt(DefaultMonthlySalary),
		},
		Server: domain.ServerConfig{
			Addr:         DefaultServerAddr,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		Logging: domain.LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads filename when it exists, falls back to the defaults when it
// does not, and applies environment overrides before validating
func (ip *InputParser) Load(filename string) (*domain.Configuration, error) {
	config := DefaultConfiguration()

	if filename != "" {
		data, err := os.ReadFile(filename)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
		default:
			if err := yaml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse YAML: %w", err)
			}
		}
	}

	return ip.finish(config)
}

// LoadFromFile loads configuration from a YAML file, which must exist
func (ip *InputParser) LoadFromFile(filename string) (*domain.Configuration, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	config := DefaultConfiguration()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return ip.finish(config)
}

func (ip *InputParser) finish(config *domain.Configuration) (*domain.Configuration, error) {
	if err := envconfig.Process(EnvPrefix, config); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	bracket, err := domain.ParseAgeBracket(string(config.Defaults.AgeBracket))
	if err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	config.Defaults.AgeBracket = bracket

	if err := ip.ValidateConfiguration(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// ValidateConfiguration validates the loaded configuration
func (ip *InputParser) ValidateConfiguration(config *domain.Configuration) error {
	if err := ip.validateSources(&config.Sources); err != nil {
		return fmt.Errorf("sources validation failed: %w", err)
	}
	if err := ip.validateIncomeSchedule(&config.IncomeSchedule); err != nil {
		return fmt.Errorf("income schedule validation failed: %w", err)
	}
	if err := ip.validatePensionRates(&config.PensionRates); err != nil {
		return fmt.Errorf("pension rates validation failed: %w", err)
	}
	if err := ip.validateDefaults(&config.Defaults); err != nil {
		return fmt.Errorf("defaults validation failed: %w", err)
	}
	if err := ip.validateServer(&config.Server); err != nil {
		return fmt.Errorf("server validation failed: %w", err)
	}
	if err := ip.validateLogging(&config.Logging); err != nil {
		return fmt.Errorf("logging validation failed: %w", err)
	}
	return nil
}

func (ip *InputParser) validateSources(sources *domain.SourcesConfig) error {
	if strings.TrimSpace(sources.IncomeSchedule) == "" {
		return fmt.Errorf("income_schedule location is required")
	}
	if strings.TrimSpace(sources.PensionRates) == "" {
		return fmt.Errorf("pension_rates location is required")
	}
	if sources.FetchTimeout < 0 {
		return fmt.Errorf("fetch_timeout cannot be negative, got %s", sources.FetchTimeout)
	}
	return nil
}

func (ip *InputParser) validateIncomeSchedule(schedule *domain.IncomeScheduleConfig) error {
	if schedule.Delimiter == "" {
		return fmt.Errorf("delimiter is required")
	}
	headers := map[string]string{
		"gross_annual": schedule.Headers.GrossAnnual,
		"net_annual":   schedule.Headers.NetAnnual,
		"taxes_annual": schedule.Headers.TaxesAnnual,
	}
	for _, field := range []string{"gross_annual", "net_annual", "taxes_annual"} {
		if strings.TrimSpace(headers[field]) == "" {
			return fmt.Errorf("header %s is required", field)
		}
	}
	return nil
}

func (ip *InputParser) validatePensionRates(rates *domain.PensionRatesConfig) error {
	if !strings.Contains(rates.SectionMarker, "{year}") {
		return fmt.Errorf("section_marker must contain {year}, got %q", rates.SectionMarker)
	}
	if rates.AgeDifferentiatedYear < 0 {
		return fmt.Errorf("age_differentiated_year cannot be negative, got %d", rates.AgeDifferentiatedYear)
	}
	return nil
}

func (ip *InputParser) validateDefaults(defaults *domain.QueryDefaults) error {
	if defaults.Year < 1900 || defaults.Year > 2200 {
		return fmt.Errorf("year must be between 1900 and 2200, got %d", defaults.Year)
	}
	if defaults.MonthlySalary.IsNegative() {
		return fmt.Errorf("monthly_salary cannot be negative, got %s", defaults.MonthlySalary.String())
	}
	if _, err := domain.ParseAgeBracket(string(defaults.AgeBracket)); err != nil {
		return err
	}
	return nil
}

func (ip *InputParser) validateServer(server *domain.ServerConfig) error {
	if strings.TrimSpace(server.Addr) == "" {
		return fmt.Errorf("addr is required")
	}
	if server.ReadTimeout < 0 || server.WriteTimeout < 0 {
		return fmt.Errorf("timeouts cannot be negative")
	}
	return nil
}

func (ip *InputParser) validateLogging(logging *domain.LoggingConfig) error {
	if _, err := zapcore.ParseLevel(logging.Level); err != nil {
		return fmt.Errorf("invalid level %q: %w", logging.Level, err)
	}
	return nil
}
