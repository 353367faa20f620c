package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/strata/internal/harness"
)

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Run a scenario against a fresh in-memory store",
		Long: `Execute a YAML scenario: a sequence of operations with expected
outcomes plus assertions over the final trace and state. The scenario
runs on a fresh in-memory journal; the --db flag is ignored.

Exit status is 0 when every expectation held, 1 otherwise.

Example:
  strata run ./scenarios/oversell_rejected.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runScenario(opts *RootOptions, path string, cmd *cobra.Command) error {
	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "load scenario", err)
	}

	result, err := harness.Run(scenario)
	if err != nil {
		return WrapExitError(ExitCommandError, "run scenario", err)
	}

	if opts.Format == "json" {
		if err := newFormatter(cmd, opts).Success(result); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "scenario %s: %s\n", scenario.Name, scenario.Description)
		for _, event := range result.Trace {
			fmt.Fprintf(w, "  %-13s %s\n", event.Op, event.Outcome)
		}
		for _, msg := range result.Errors {
			fmt.Fprintf(w, "  FAIL %s\n", msg)
		}
		if result.Pass {
			fmt.Fprintln(w, "PASS")
		} else {
			fmt.Fprintln(w, "FAIL")
		}
	}

	if !result.Pass {
		return NewExitError(ExitFailure,
			fmt.Sprintf("scenario %s failed with %d error(s)", scenario.Name, len(result.Errors)))
	}
	return nil
}
