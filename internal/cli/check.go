package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/strata/internal/schema"
)

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <catalog.cue>",
		Short: "Validate a CUE schema catalog",
		Long: `Compile a CUE schema catalog and report its collections without
touching any store.

Example:
  strata check ./catalog.cue`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runCheck(opts *RootOptions, path string, cmd *cobra.Command) error {
	schemas, err := schema.Load(path)
	if err != nil {
		out := newFormatter(cmd, opts)
		_ = out.Error("SCHEMA", err.Error(), nil)
		return NewExitError(ExitFailure, "schema catalog is invalid")
	}

	if opts.Format == "json" {
		collections := make([]map[string]any, 0, len(schemas))
		for _, name := range schemas.Names() {
			def := schemas[name]
			collections = append(collections, map[string]any{
				"collection": name,
				"key_field":  def.KeyField,
				"fields":     def.FieldOrder,
			})
		}
		return newFormatter(cmd, opts).Success(map[string]any{
			"collections": collections,
		})
	}

	for _, name := range schemas.Names() {
		def := schemas[name]
		fmt.Fprintf(cmd.OutOrStdout(), "%s (key=%s): %s\n",
			name, def.KeyField, strings.Join(def.FieldOrder, ", "))
	}
	return nil
}
