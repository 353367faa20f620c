package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/strata/internal/query"
	"github.com/roach88/strata/internal/record"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Where []string
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list <collection>",
		Short: "List a collection in insertion order",
		Long: `List the records of a collection in insertion order, optionally
filtered by --where clauses. A clause has the form "field op value";
filtering happens journal-side, ordering is unchanged.

Examples:
  strata --db ./strata.db list books
  strata --db ./strata.db list books --where 'quantity gt 0'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Where, "where", nil, `predicate clause "field op value" (repeatable)`)

	return cmd
}

func runList(opts *ListOptions, collection string, cmd *cobra.Command) error {
	eng, journal, err := openEngine(opts.RootOptions)
	if err != nil {
		return err
	}
	defer journal.Close()

	var recs []record.Record
	if len(opts.Where) > 0 {
		preds, perr := parsePreds(opts.Where)
		if perr != nil {
			return WrapExitError(ExitCommandError, "invalid --where clause", perr)
		}
		if def, ok := eng.Schemas().Get(collection); ok {
			for _, p := range preds {
				if verr := query.Validate(p, def); verr != nil {
					return WrapExitError(ExitCommandError, "invalid --where clause", verr)
				}
			}
		}
		recs, err = eng.Query(commandContext(cmd), collection, preds)
	} else {
		recs, err = eng.List(commandContext(cmd), collection)
	}
	if err != nil {
		return opExit(err)
	}

	if opts.Format == "json" {
		records := make([]map[string]any, len(recs))
		for i, rec := range recs {
			records[i] = recordData(rec)
		}
		return newFormatter(cmd, opts.RootOptions).Success(map[string]any{
			"collection": collection,
			"records":    records,
		})
	}

	for _, rec := range recs {
		if err := writeRecord(cmd.OutOrStdout(), rec); err != nil {
			return err
		}
	}
	return nil
}
