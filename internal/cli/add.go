package cli

import (
	"github.com/spf13/cobra"
)

// AddOptions holds flags for the add command.
type AddOptions struct {
	*RootOptions
	Fields string
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AddOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add <collection>",
		Short: "Add a record to a collection",
		Long: `Add a record to a collection.

The payload is validated against the collection schema and normalized
(placeholders for empty strings, floors for numeric fields) before being
journaled. The record key comes from the schema's key field.

Example:
  strata --db ./strata.db add books --fields '{"title":"1984","author":"Orwell","quantity":3}'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Fields, "fields", "", "record payload as JSON (required)")
	_ = cmd.MarkFlagRequired("fields")

	return cmd
}

func runAdd(opts *AddOptions, collection string, cmd *cobra.Command) error {
	fields, err := parseFieldsJSON(opts.Fields)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --fields JSON", err)
	}

	eng, journal, err := openEngine(opts.RootOptions)
	if err != nil {
		return err
	}
	defer journal.Close()

	rec, err := eng.Add(commandContext(cmd), collection, fields)
	if err != nil {
		return opExit(err)
	}

	if opts.Format == "json" {
		return newFormatter(cmd, opts.RootOptions).Success(recordData(rec))
	}
	return writeRecord(cmd.OutOrStdout(), rec)
}
