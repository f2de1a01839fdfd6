package main

import (
	"context"
	"fmt"

	"github.com/rgehrsitz/paysplit/internal/calculation"
	"github.com/rgehrsitz/paysplit/internal/domain"
	"github.com/rgehrsitz/paysplit/internal/output"
	"github.com/rgehrsitz/paysplit/internal/session"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// addQueryFlags registers the query parameters; zero values fall back to the configured defaults
func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("year", "y", 0, "Contribution year (default from configuration)")
	cmd.Flags().StringP("scheme", "s", "", "Pension scheme label (default from configuration)")
	cmd.Flags().StringP("bracket", "b", "", "Age bracket: base or elevated (default from configuration)")
	cmd.Flags().StringP("monthly", "m", "", "Monthly gross salary in euros (default from configuration)")
}

// queryFromFlags overlays the command flags on the configured defaults
func queryFromFlags(cmd *cobra.Command, defaults domain.QueryDefaults) (domain.Query, error) {
	query := domain.Query{
		Year:          defaults.Year,
		Scheme:        defaults.Scheme,
		AgeBracket:    defaults.AgeBracket,
		MonthlySalary: defaults.MonthlySalary,
	}

	if year, _ := cmd.Flags().GetInt("year"); year != 0 {
		query.Year = year
	}
	if scheme, _ := cmd.Flags().GetString("scheme"); scheme != "" {
		query.Scheme = scheme
	}
	if raw, _ := cmd.Flags().GetString("bracket"); raw != "" {
		bracket, err := domain.ParseAgeBracket(raw)
		if err != nil {
			return query, err
		}
		query.AgeBracket = bracket
	}
	if raw, _ := cmd.Flags().GetString("monthly"); raw != "" {
		monthly, err := parseAmountFlag("monthly", raw)
		if err != nil {
			return query, err
		}
		query.MonthlySalary = monthly
	}
	return query, nil
}

func parseAmountFlag(name, raw string) (decimal.Decimal, error) {
	amount, ok := calculation.ParseAmount(raw)
	if !ok {
		return decimal.Zero, fmt.Errorf("invalid --%s %q", name, raw)
	}
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("--%s must not be negative", name)
	}
	return amount, nil
}

// openSession loads the documents for the query year into a session
func openSession(ctx context.Context, env *environment, query domain.Query) (*session.Session, error) {
	loader := session.NewLoaderFromConfig(env.config, env.Logger())

	engine := calculation.NewCalculationEngineWithConfig(env.config.PensionRates)
	engine.SetLogger(env.Logger())

	s := session.New(loader, engine, query)
	if err := s.Load(ctx); err != nil {
		return nil, err
	}
	if selected := s.Query().Scheme; selected != query.Scheme {
		env.logger.Warnf("scheme %q is not offered for %d, using %q", query.Scheme, query.Year, selected)
	}
	return s, nil
}

// runQuery is the common body of the query commands
func runQuery(cmd *cobra.Command, build func(cmd *cobra.Command, s *session.Session) (*output.Report, error)) error {
	env, err := loadEnvironment(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	query, err := queryFromFlags(cmd, env.config.Defaults)
	if err != nil {
		return err
	}

	s, err := openSession(cmd.Context(), env, query)
	if err != nil {
		return err
	}

	report, err := build(cmd, s)
	if err != nil {
		return err
	}
	report.Query = s.Query()
	report.Stats = s.Snapshot().Stats

	return writeReport(cmd, cmd.OutOrStdout(), report)
}

func yearsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "years",
		Short: "List the years that have contribution rates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, func(_ *cobra.Command, s *session.Session) (*output.Report, error) {
				return &output.Report{Kind: output.ReportYears, Years: s.Years()}, nil
			})
		},
	}
	addQueryFlags(cmd)
	addFormatFlag(cmd)
	return cmd
}

func schemesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schemes",
		Short: "List the pension schemes of a year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, func(_ *cobra.Command, s *session.Session) (*output.Report, error) {
				return &output.Report{Kind: output.ReportSchemes, Schemes: s.Schemes()}, nil
			})
		},
	}
	addQueryFlags(cmd)
	addFormatFlag(cmd)
	return cmd
}

func ratesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rates",
		Short: "Show the employee and employer contribution rates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, func(_ *cobra.Command, s *session.Session) (*output.Report, error) {
				rates := s.Rates()
				return &output.Report{Kind: output.ReportRates, Rates: &rates}, nil
			})
		},
	}
	addQueryFlags(cmd)
	addFormatFlag(cmd)
	return cmd
}

func incomeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "income",
		Short: "Interpolate net income and taxes at an annual gross income",
		Long: `Interpolate net income and taxes at an annual gross income.
Without --gross the annual gross is twelve times the monthly salary.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, func(cmd *cobra.Command, s *session.Session) (*output.Report, error) {
				gross := s.Query().MonthlySalary.Mul(decimal.NewFromInt(12))
				if raw, _ := cmd.Flags().GetString("gross"); raw != "" {
					amount, err := parseAmountFlag("gross", raw)
					if err != nil {
						return nil, err
					}
					gross = amount
				}

				report := &output.Report{Kind: output.ReportIncome}
				if point, ok := s.Income(gross); ok {
					report.Income = &point
				}
				return report, nil
			})
		},
	}
	addQueryFlags(cmd)
	addFormatFlag(cmd)
	cmd.Flags().String("gross", "", "Annual gross income in euros")
	return cmd
}

func breakdownCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "breakdown",
		Short: "Split a monthly salary into contributions, taxes and net income",
		Example: `  paysplit breakdown --monthly 3500
  paysplit breakdown --year 2025 --bracket elevated --monthly 4200 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, func(_ *cobra.Command, s *session.Session) (*output.Report, error) {
				b := s.Breakdown()
				return &output.Report{Kind: output.ReportBreakdown, Breakdown: &b}, nil
			})
		},
	}
	addQueryFlags(cmd)
	addFormatFlag(cmd)
	return cmd
}

func scheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Print and plot the income schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, func(_ *cobra.Command, s *session.Session) (*output.Report, error) {
				return &output.Report{Kind: output.ReportSchedule, Schedule: s.Schedule()}, nil
			})
		},
	}
	addQueryFlags(cmd)
	addFormatFlag(cmd)
	return cmd
}
