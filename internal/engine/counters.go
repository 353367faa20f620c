package engine

import (
	"context"
	"fmt"

	"github.com/roach88/strata/internal/record"
)

// CounterGet reads a counter cell, returning def when the cell has never
// been written. The read is idempotent: it does not seed the cell, so any
// number of default reads later the cell is still absent.
func (e *Engine) CounterGet(ctx context.Context, name string, def int64) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := e.requireInitialized(); err != nil {
		return 0, err
	}

	c, ok := e.cells[name]
	if !ok {
		return def, nil
	}
	n, ok := c.Get(record.Int(def)).(record.Int)
	if !ok {
		opErrorsTotal.Inc()
		return 0, invalidState("", name, "cell does not hold an integer")
	}
	return int64(n), nil
}

// CounterSet writes a counter cell unconditionally.
func (e *Engine) CounterSet(ctx context.Context, name string, value int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := e.requireInitialized(); err != nil {
		return err
	}

	seq := e.clock.Next()
	if err := e.journal.UpsertCell(name, record.Int(value), seq); err != nil {
		return fmt.Errorf("counter set: %w", err)
	}
	e.cellFor(name).Set(record.Int(value))

	e.touchCell(name)
	counterSetTotal.Inc()
	e.logger.Info("counter set",
		"op", e.tokens.Generate(),
		"cell", name,
		"value", value,
		"seq", seq)
	return nil
}

// CounterAdd increments a counter cell, reading def when absent, and
// returns the new value. The read-modify-write runs under the engine lock,
// so no interleaved write can be observed.
func (e *Engine) CounterAdd(ctx context.Context, name string, delta, def int64) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := e.requireInitialized(); err != nil {
		return 0, err
	}

	c := e.cellFor(name)
	cur := def
	if c.Present() {
		n, ok := c.Get(record.Int(def)).(record.Int)
		if !ok {
			opErrorsTotal.Inc()
			return 0, invalidState("", name, "cell does not hold an integer")
		}
		cur = int64(n)
	}
	next := cur + delta

	seq := e.clock.Next()
	if err := e.journal.UpsertCell(name, record.Int(next), seq); err != nil {
		return 0, fmt.Errorf("counter add: %w", err)
	}
	got := c.AddInt(delta, def)

	e.touchCell(name)
	counterAddTotal.Inc()
	e.logger.Info("counter incremented",
		"op", e.tokens.Generate(),
		"cell", name,
		"delta", delta,
		"value", got,
		"seq", seq)
	return got, nil
}

// CounterDrop deletes a counter cell, returning it to the never-written
// state: the next read reports the caller's default again. Dropping an
// absent cell is a no-op.
func (e *Engine) CounterDrop(ctx context.Context, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := e.requireInitialized(); err != nil {
		return err
	}

	if err := e.journal.DeleteCell(name); err != nil {
		return fmt.Errorf("counter drop: %w", err)
	}
	delete(e.cells, name)

	e.life.Drop(cellRef(name))
	counterDropTotal.Inc()
	e.logger.Info("counter dropped",
		"op", e.tokens.Generate(),
		"cell", name)
	return nil
}

// CounterReset returns a counter cell to zero.
func (e *Engine) CounterReset(ctx context.Context, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := e.requireInitialized(); err != nil {
		return err
	}

	seq := e.clock.Next()
	if err := e.journal.UpsertCell(name, record.Int(0), seq); err != nil {
		return fmt.Errorf("counter reset: %w", err)
	}
	e.cellFor(name).Reset(record.Int(0))

	e.touchCell(name)
	counterResetTotal.Inc()
	e.logger.Info("counter reset",
		"op", e.tokens.Generate(),
		"cell", name,
		"seq", seq)
	return nil
}
