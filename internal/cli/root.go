// Package cli implements the csvevents command line.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/telhawk-systems/telhawk-csv/internal/cli/output"
	"github.com/telhawk-systems/telhawk-csv/internal/config"
	"github.com/telhawk-systems/telhawk-csv/internal/logging"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "csvevents",
	Short: "TelHawk CSV header codec",
	Long: `csvevents reads, encodes and decodes the column definitions of CSV event
sources.

A header line is stored as one csv_header_<index> property per column, next
to the line number it was read from. The decode commands turn those properties
back into typed columns; serve runs the same codec behind an HTTP API.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: config.yaml in $TELHAWK_CSV_CONFIG_DIR, . or /etc/telhawk-csv)")
	rootCmd.PersistentFlags().StringP("output", "o", "table", "output format: table, json, yaml")
	rootCmd.PersistentFlags().String("log-level", "", "override logging.level")
}

func initConfig() error {
	loaded, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg = loaded
	return nil
}

// printer builds the output printer for cmd from the --output flag.
func printer(cmd *cobra.Command) (*output.Printer, error) {
	value, _ := cmd.Flags().GetString("output")
	format, err := output.ParseFormat(value)
	if err != nil {
		return nil, err
	}
	return output.New(cmd.OutOrStdout(), cmd.ErrOrStderr(), format), nil
}

// newLogger builds the command logger. Logs go to stderr so they never mix
// with command results.
func newLogger(cmd *cobra.Command) *logging.Logger {
	level := cfg.Logging.Level
	if override, _ := cmd.Flags().GetString("log-level"); override != "" {
		level = override
	}
	return logging.NewWithWriter(cmd.ErrOrStderr(), logging.ParseLevel(level), cfg.Logging.Format).
		With(logging.Service("csvevents"))
}
