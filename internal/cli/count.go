package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewCountCommand creates the count command.
func NewCountCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "count <collection>",
		Short:         "Count the records in a collection",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCount(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runCount(opts *RootOptions, collection string, cmd *cobra.Command) error {
	eng, journal, err := openEngine(opts)
	if err != nil {
		return err
	}
	defer journal.Close()

	n, err := eng.Count(commandContext(cmd), collection)
	if err != nil {
		return opExit(err)
	}

	if opts.Format == "json" {
		return newFormatter(cmd, opts).Success(map[string]any{
			"collection": collection,
			"count":      n,
		})
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), n)
	return err
}
