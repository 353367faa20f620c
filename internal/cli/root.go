package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	Database string
	Schema   string // CUE catalog path; empty means the builtin catalog
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the strata CLI.
//
// Global flags can also come from the environment: STRATA_DB,
// STRATA_FORMAT, STRATA_SCHEMA. An explicit flag wins over the
// environment.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	viper.SetEnvPrefix("strata")
	viper.AutomaticEnv()

	cmd := &cobra.Command{
		Use:   "strata",
		Short: "Strata - a persistent keyed record store",
		Long: `A keyed record store with schema-validated payloads, insertion-ordered
collections, named counters, and a SQLite journal.`,
		PersistentPreRunE: func(c *cobra.Command, args []string) error {
			flags := c.Root().PersistentFlags()
			if !flags.Changed("db") && viper.GetString("db") != "" {
				opts.Database = viper.GetString("db")
			}
			if !flags.Changed("format") && viper.GetString("format") != "" {
				opts.Format = viper.GetString("format")
			}
			if !flags.Changed("schema") && viper.GetString("schema") != "" {
				opts.Schema = viper.GetString("schema")
			}
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to the SQLite journal")
	cmd.PersistentFlags().StringVar(&opts.Schema, "schema", "", "path to a CUE schema catalog (default: builtin)")

	// Add subcommands
	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewFindCommand(opts))
	cmd.AddCommand(NewRemoveCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewCountCommand(opts))
	cmd.AddCommand(NewAdjustCommand(opts))
	cmd.AddCommand(NewCounterCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
