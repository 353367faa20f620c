package cli

import (
	"github.com/spf13/cobra"
)

// NewRemoveCommand creates the remove command.
func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <collection> <key>",
		Short: "Remove a record by key",
		Long: `Remove a record by exact key and print what was removed.

Example:
  strata --db ./strata.db remove books 1984`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemove(rootOpts, args[0], args[1], cmd)
		},
	}
	return cmd
}

func runRemove(opts *RootOptions, collection, key string, cmd *cobra.Command) error {
	eng, journal, err := openEngine(opts)
	if err != nil {
		return err
	}
	defer journal.Close()

	rec, err := eng.RemoveByKey(commandContext(cmd), collection, key)
	if err != nil {
		return opExit(err)
	}

	if opts.Format == "json" {
		return newFormatter(cmd, opts).Success(recordData(rec))
	}
	return writeRecord(cmd.OutOrStdout(), rec)
}
