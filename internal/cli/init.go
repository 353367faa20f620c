package cli

import (
	"github.com/spf13/cobra"
)

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the store",
		Long: `Mark the store initialized.

Every other operation requires an initialized store. Running init twice
is an error: the marker is journaled and survives restarts.

Example:
  strata --db ./strata.db init`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(rootOpts, cmd)
		},
	}
	return cmd
}

func runInit(opts *RootOptions, cmd *cobra.Command) error {
	eng, journal, err := openEngine(opts)
	if err != nil {
		return err
	}
	defer journal.Close()

	if err := eng.Initialize(commandContext(cmd)); err != nil {
		return opExit(err)
	}

	return newFormatter(cmd, opts).Success("store initialized")
}
