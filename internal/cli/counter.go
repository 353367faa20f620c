package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// CounterOptions holds flags for the counter subcommands.
type CounterOptions struct {
	*RootOptions
	Default int64
	Delta   int64
	Value   int64
}

// NewCounterCommand creates the counter command group.
func NewCounterCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "counter",
		Short: "Operate on named counters",
		Long: `Operate on named integer counters backed by value cells.

A counter that was never written reads as its --default; reading a
default never seeds the cell, so different callers may use different
defaults until the first write.`,
	}

	cmd.AddCommand(newCounterGetCommand(rootOpts))
	cmd.AddCommand(newCounterAddCommand(rootOpts))
	cmd.AddCommand(newCounterSetCommand(rootOpts))
	cmd.AddCommand(newCounterResetCommand(rootOpts))
	cmd.AddCommand(newCounterDropCommand(rootOpts))

	return cmd
}

func newCounterGetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CounterOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "get <cell>",
		Short:         "Read a counter",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, journal, err := openEngine(opts.RootOptions)
			if err != nil {
				return err
			}
			defer journal.Close()

			n, err := eng.CounterGet(commandContext(cmd), args[0], opts.Default)
			if err != nil {
				return opExit(err)
			}
			return writeCounter(opts.RootOptions, cmd, args[0], n)
		},
	}

	cmd.Flags().Int64Var(&opts.Default, "default", 0, "value reported when the counter is unset")

	return cmd
}

func newCounterAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CounterOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "add <cell>",
		Short:         "Increment a counter and print the new value",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, journal, err := openEngine(opts.RootOptions)
			if err != nil {
				return err
			}
			defer journal.Close()

			n, err := eng.CounterAdd(commandContext(cmd), args[0], opts.Delta, opts.Default)
			if err != nil {
				return opExit(err)
			}
			return writeCounter(opts.RootOptions, cmd, args[0], n)
		},
	}

	cmd.Flags().Int64Var(&opts.Delta, "delta", 1, "amount to add (may be negative)")
	cmd.Flags().Int64Var(&opts.Default, "default", 0, "base value when the counter is unset")

	return cmd
}

func newCounterSetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CounterOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "set <cell>",
		Short:         "Set a counter to an exact value",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, journal, err := openEngine(opts.RootOptions)
			if err != nil {
				return err
			}
			defer journal.Close()

			if err := eng.CounterSet(commandContext(cmd), args[0], opts.Value); err != nil {
				return opExit(err)
			}
			return writeCounter(opts.RootOptions, cmd, args[0], opts.Value)
		},
	}

	cmd.Flags().Int64Var(&opts.Value, "value", 0, "value to store (required)")
	_ = cmd.MarkFlagRequired("value")

	return cmd
}

func newCounterResetCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "reset <cell>",
		Short:         "Reset a counter to zero",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, journal, err := openEngine(rootOpts)
			if err != nil {
				return err
			}
			defer journal.Close()

			if err := eng.CounterReset(commandContext(cmd), args[0]); err != nil {
				return opExit(err)
			}
			return writeCounter(rootOpts, cmd, args[0], 0)
		},
	}
	return cmd
}

func newCounterDropCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "drop <cell>",
		Short:         "Delete a counter so defaults apply again",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, journal, err := openEngine(rootOpts)
			if err != nil {
				return err
			}
			defer journal.Close()

			if err := eng.CounterDrop(commandContext(cmd), args[0]); err != nil {
				return opExit(err)
			}
			if rootOpts.Format == "json" {
				return newFormatter(cmd, rootOpts).Success(map[string]any{
					"cell":    args[0],
					"dropped": true,
				})
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "dropped %s\n", args[0])
			return err
		},
	}
	return cmd
}

func writeCounter(opts *RootOptions, cmd *cobra.Command, name string, value int64) error {
	if opts.Format == "json" {
		return newFormatter(cmd, opts).Success(map[string]any{
			"cell":  name,
			"value": value,
		})
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), value)
	return err
}
