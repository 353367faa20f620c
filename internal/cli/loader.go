package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/strata/internal/engine"
	"github.com/roach88/strata/internal/schema"
	"github.com/roach88/strata/internal/store"
)

// openEngine opens the journal, compiles the schema catalog, and
// rehydrates engine state. The caller owns the returned store and must
// close it.
func openEngine(opts *RootOptions) (*engine.Engine, *store.Store, error) {
	if opts.Database == "" {
		return nil, nil, NewExitError(ExitCommandError, "no journal path: set --db or STRATA_DB")
	}

	schemas, err := loadSchemas(opts.Schema)
	if err != nil {
		return nil, nil, err
	}

	journal, err := store.Open(opts.Database)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "open journal", err)
	}

	var engOpts []engine.Option
	if opts.Verbose {
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
		engOpts = append(engOpts, engine.WithLogger(slog.New(handler)))
	}

	eng := engine.New(journal, schemas, engOpts...)
	if err := eng.Load(); err != nil {
		journal.Close()
		return nil, nil, WrapExitError(ExitCommandError, "load store", err)
	}
	return eng, journal, nil
}

// loadSchemas compiles the catalog at path, or the builtin catalog when
// path is empty.
func loadSchemas(path string) (schema.Set, error) {
	if path == "" {
		schemas, err := schema.Builtin()
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "compile builtin schema catalog", err)
		}
		return schemas, nil
	}
	schemas, err := schema.Load(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "compile schema catalog", err)
	}
	return schemas, nil
}

// opExit converts an operation error into an exit-coded error: typed
// operation errors are outcome failures (exit 1), anything else is a
// command error (exit 2).
func opExit(err error) error {
	var oe *engine.OpError
	if errors.As(err, &oe) {
		return NewExitError(ExitFailure, oe.Error())
	}
	return WrapExitError(ExitCommandError, "operation failed", err)
}

// commandContext returns the command's context, falling back to
// Background when the command was invoked without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
