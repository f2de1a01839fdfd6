package main

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"

	"github.com/rgehrsitz/paysplit/internal/calculation"
	"github.com/rgehrsitz/paysplit/internal/config"
	"github.com/rgehrsitz/paysplit/internal/domain"
	"github.com/rgehrsitz/paysplit/internal/output"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const defaultConfigPath = "configs/paysplit.yaml"

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "paysplit %s (commit %s, built %s)\n", version, commit, date)
			if info := buildInfo(); info != "" {
				fmt.Fprintln(cmd.OutOrStdout(), info)
			}
		},
	}
}

func buildInfo() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		return bi.String()
	}
	return ""
}

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "paysplit",
		Short: "Finnish salary split calculator",
		Long: `Shows where a Finnish monthly salary goes: the employee and employer
TyEL pension contributions, income taxes and the resulting net income,
read from the published income schedule and contribution rate tables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("config", defaultConfigPath, "Path to the configuration file (defaults apply when it does not exist)")
	root.PersistentFlags().Bool("debug", false, "Enable debug logging")

	root.AddCommand(yearsCmd())
	root.AddCommand(schemesCmd())
	root.AddCommand(ratesCmd())
	root.AddCommand(incomeCmd())
	root.AddCommand(breakdownCmd())
	root.AddCommand(scheduleCmd())
	root.AddCommand(compareCmd())
	root.AddCommand(convertCmd())
	root.AddCommand(validateCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(versionCmd())
	return root
}

// environment is the configuration and logger shared by every command
type environment struct {
	config *domain.Configuration
	logger *zap.SugaredLogger
}

// loadEnvironment reads --config, applies environment overrides and builds
// the logger; --debug forces the debug level
func loadEnvironment(cmd *cobra.Command) (*environment, error) {
	configPath, _ := cmd.Flags().GetString("config")
	debugMode, _ := cmd.Flags().GetBool("debug")

	cfg, err := config.NewInputParser().Load(configPath)
	if err != nil {
		return nil, err
	}
	if debugMode {
		cfg.Logging.Level = "debug"
	}

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return nil, err
	}
	logger.Debugf("configuration loaded from %s", configPath)
	return &environment{config: cfg, logger: logger}, nil
}

func (env *environment) Logger() calculation.Logger {
	return env.logger
}

func (env *environment) Close() {
	_ = env.logger.Sync()
}

func addFormatFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", "console",
		fmt.Sprintf("Output format (%s)", strings.Join(append(output.AvailableFormatterNames(), output.AvailableFormatAliases()...), ", ")))
}

// writeReport renders report with the formatter named by --format
func writeReport(cmd *cobra.Command, w io.Writer, report *output.Report) error {
	name, _ := cmd.Flags().GetString("format")
	f := output.GetFormatterByName(name)
	if f == nil {
		return fmt.Errorf("unknown output format: %s (valid: %s)", name, strings.Join(output.AvailableFormatterNames(), ", "))
	}
	return output.WriteFormatted(w, f, report)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
