package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/rgehrsitz/paysplit/internal/config"
	"github.com/rgehrsitz/paysplit/internal/ingest"
	"github.com/spf13/cobra"
)

func convertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <input-file> <output-file>",
		Short: "Convert a published income table into the semicolon separated schedule",
		Long: `Convert the income table copied from the published tax tables (tab or
multi-space separated, with free text before it) into the semicolon
separated schedule read by the other commands.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer in.Close()

			out, err := os.Create(args[1])
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", args[1], err)
			}

			w := bufio.NewWriter(out)
			rows, convErr := ingest.ConvertSchedule(in, w)
			if convErr == nil {
				convErr = w.Flush()
			}
			if closeErr := out.Close(); convErr == nil {
				convErr = closeErr
			}
			if convErr != nil {
				_ = os.Remove(args[1])
				return fmt.Errorf("failed to convert %s: %w", args[0], convErr)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d rows to %s\n", rows, args[1])
			return nil
		},
	}
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [config-file]",
		Short: "Validate a configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputFile, _ := cmd.Flags().GetString("config")
			if len(args) == 1 {
				inputFile = args[0]
			}

			parser := config.NewInputParser()
			if _, err := parser.LoadFromFile(inputFile); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Configuration file %s is valid\n", inputFile)
			return nil
		},
	}
}
