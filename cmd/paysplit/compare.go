package main

import (
	"fmt"
	"strings"

	"github.com/rgehrsitz/paysplit/internal/compare"
	"github.com/spf13/cobra"
)

func compareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare the salary split across pension schemes",
		Long: `Compare the salary split of a base scheme against alternative schemes
for the same year, age bracket and salary.

Examples:
  paysplit compare --monthly 3500
  paysplit compare --base "Merimieseläkelaki/MEL" --with "Valtion palkansaajat/JuEL" --format csv
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
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

			baseScheme, _ := cmd.Flags().GetString("base")
			with, _ := cmd.Flags().GetStringSlice("with")
			outputFormat, _ := cmd.Flags().GetString("format")

			engine := compare.NewCompareEngine(nil)
			engine.CalcEngine.SetLogger(env.Logger())

			comparisonSet, err := engine.Compare(s.Snapshot(), s.Query(), compare.CompareOptions{
				BaseScheme:   baseScheme,
				Alternatives: with,
			})
			if err != nil {
				return fmt.Errorf("comparison failed: %w", err)
			}

			out := cmd.OutOrStdout()
			switch strings.ToLower(outputFormat) {
			case "csv":
				formatter := &compare.CSVFormatter{}
				text, err := formatter.Format(comparisonSet)
				if err != nil {
					return fmt.Errorf("failed to format CSV: %w", err)
				}
				fmt.Fprint(out, text)

			case "json":
				formatter := &compare.JSONFormatter{Pretty: true}
				text, err := formatter.Format(comparisonSet)
				if err != nil {
					return fmt.Errorf("failed to format JSON: %w", err)
				}
				fmt.Fprintln(out, text)

			case "compact":
				fmt.Fprintln(out, (&compare.TableFormatter{}).FormatCompact(comparisonSet))

			case "table", "console", "":
				fmt.Fprint(out, (&compare.TableFormatter{}).Format(comparisonSet))

			default:
				return fmt.Errorf("unknown output format: %s (valid: table, compact, csv, json)", outputFormat)
			}
			return nil
		},
	}

	addQueryFlags(cmd)
	cmd.Flags().String("base", "", "Base scheme to compare against (default: the query scheme)")
	cmd.Flags().StringSlice("with", nil, "Schemes to compare (default: every other scheme of the year)")
	cmd.Flags().StringP("format", "f", "table", "Output format (table, compact, csv, json)")
	return cmd
}
