package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/strata/internal/query"
	"github.com/roach88/strata/internal/record"
)

// FindOptions holds flags for the find command.
type FindOptions struct {
	*RootOptions
	Where []string
}

// NewFindCommand creates the find command.
func NewFindCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FindOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "find <collection> [key]",
		Short: "Find the first matching record",
		Long: `Find a record by exact key, or scan for the first record matching
every --where clause in insertion order.

A clause has the form "field op value" where op is one of eq, ne, lt,
le, gt, ge. Values are JSON literals: quote strings, write numbers and
booleans bare. The pseudo-field "key" matches the record key.

Examples:
  strata --db ./strata.db find books 1984
  strata --db ./strata.db find books --where 'quantity gt 0' --where 'author eq "Orwell"'`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFind(opts, args, cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Where, "where", nil, `predicate clause "field op value" (repeatable)`)

	return cmd
}

func runFind(opts *FindOptions, args []string, cmd *cobra.Command) error {
	collection := args[0]
	if len(args) == 2 && len(opts.Where) > 0 {
		return NewExitError(ExitCommandError, "give either a key or --where clauses, not both")
	}
	if len(args) == 1 && len(opts.Where) == 0 {
		return NewExitError(ExitCommandError, "give a key or at least one --where clause")
	}

	eng, journal, err := openEngine(opts.RootOptions)
	if err != nil {
		return err
	}
	defer journal.Close()

	var rec record.Record
	if len(args) == 2 {
		rec, err = eng.FindByKey(commandContext(cmd), collection, args[1])
	} else {
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
		rec, err = eng.Find(commandContext(cmd), collection, query.CompileAll(preds))
	}
	if err != nil {
		return opExit(err)
	}

	if opts.Format == "json" {
		return newFormatter(cmd, opts.RootOptions).Success(recordData(rec))
	}
	return writeRecord(cmd.OutOrStdout(), rec)
}

// parsePreds parses "field op value" clauses into predicates.
func parsePreds(clauses []string) ([]query.Pred, error) {
	preds := make([]query.Pred, 0, len(clauses))
	for _, clause := range clauses {
		p, err := parsePred(clause)
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}
	return preds, nil
}

func parsePred(clause string) (query.Pred, error) {
	parts := strings.SplitN(strings.TrimSpace(clause), " ", 3)
	if len(parts) != 3 {
		return query.Pred{}, fmt.Errorf(`want "field op value", got %q`, clause)
	}
	op, err := query.ParseOp(parts[1])
	if err != nil {
		return query.Pred{}, err
	}
	value, err := parseLiteral(parts[2])
	if err != nil {
		return query.Pred{}, err
	}
	return query.Pred{Field: parts[0], Op: op, Value: value}, nil
}

// parseLiteral reads a JSON scalar; a bare word that is not valid JSON
// reads as a string.
func parseLiteral(src string) (record.Value, error) {
	dec := json.NewDecoder(strings.NewReader(src))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return record.String(src), nil
	}
	return record.FromAny(raw)
}
