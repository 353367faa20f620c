package engine

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/roach88/strata/internal/cell"
	"github.com/roach88/strata/internal/lifecycle"
	"github.com/roach88/strata/internal/schema"
	"github.com/roach88/strata/internal/store"
	"github.com/roach88/strata/internal/table"
)

// Default expiry window, in logical write ticks. A mutation guarantees its
// entry will not lapse within DefaultMinTTL ticks and extends the horizon
// to DefaultExtendTo ticks when a refresh is due.
const (
	DefaultMinTTL   = 16
	DefaultExtendTo = 64
)

// Engine is the validated façade over tables, cells, and the journal.
//
// All state behind the mutex belongs to the engine: tables and cells are
// never handed out, only copies. Operations run one at a time.
type Engine struct {
	mu sync.Mutex

	journal *store.Store
	clock   *Clock
	schemas schema.Set
	life    *lifecycle.Manager
	tokens  TokenGenerator
	logger  *slog.Logger

	tables map[string]*table.Table
	cells  map[string]*cell.Cell

	minTTL   int64
	extendTo int64

	initialized bool
	loaded      bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger. Defaults to a discard handler.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithTokenGenerator sets the operation token source.
// Defaults to UUIDv7Generator.
func WithTokenGenerator(gen TokenGenerator) Option {
	return func(e *Engine) { e.tokens = gen }
}

// WithTTL sets the expiry window in logical ticks.
// Requires extendTo >= minTTL, matching the lifecycle contract.
func WithTTL(minTTL, extendTo int64) Option {
	return func(e *Engine) {
		e.minTTL = minTTL
		e.extendTo = extendTo
	}
}

// New creates an Engine over an opened journal and a compiled schema set.
// Call Load before using it; New itself reads nothing.
func New(journal *store.Store, schemas schema.Set, opts ...Option) *Engine {
	e := &Engine{
		journal:  journal,
		clock:    NewClock(),
		schemas:  schemas,
		tokens:   UUIDv7Generator{},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		tables:   make(map[string]*table.Table),
		cells:    make(map[string]*cell.Cell),
		minTTL:   DefaultMinTTL,
		extendTo: DefaultExtendTo,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.life = lifecycle.NewManager(e.clock)
	return e
}

// Load rehydrates in-memory state from the journal: the logical clock
// resumes from the highest persisted seq, tables and cells are rebuilt in
// journal order, and expiry horizons are re-seeded.
func (e *Engine) Load() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	initialized, err := e.journal.Initialized()
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}
	e.initialized = initialized

	maxSeq, err := e.journal.MaxSeq()
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}
	e.clock = NewClockAt(maxSeq)
	e.life = lifecycle.NewManager(e.clock)

	e.tables = make(map[string]*table.Table)
	collections, err := e.journal.Collections()
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}
	for _, collection := range collections {
		recs, err := e.journal.ReadCollection(collection)
		if err != nil {
			return fmt.Errorf("load: %w", err)
		}
		tbl := table.New()
		for _, rec := range recs {
			if err := tbl.Append(rec); err != nil {
				return fmt.Errorf("load collection %s: %w", collection, err)
			}
		}
		e.tables[collection] = tbl

		expiries, err := e.journal.RecordExpiries(collection)
		if err != nil {
			return fmt.Errorf("load: %w", err)
		}
		for key, horizon := range expiries {
			e.life.SetHorizon(recordRef(collection, key), horizon)
		}
	}

	e.cells = make(map[string]*cell.Cell)
	cellRows, err := e.journal.ReadCells()
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}
	for _, row := range cellRows {
		c := &cell.Cell{}
		c.Set(row.Value)
		e.cells[row.Name] = c
		if row.ExpireAt > 0 {
			e.life.SetHorizon(cellRef(row.Name), row.ExpireAt)
		}
	}

	e.loaded = true
	e.logger.Info("store loaded",
		"initialized", e.initialized,
		"collections", len(e.tables),
		"cells", len(e.cells),
		"seq", maxSeq)
	return nil
}

// Lifecycle exposes the lifecycle manager for inspection.
// Horizon reads are safe; mutation belongs to the engine.
func (e *Engine) Lifecycle() *lifecycle.Manager {
	return e.life
}

// Schemas returns the engine's compiled schema catalog.
func (e *Engine) Schemas() schema.Set {
	return e.schemas
}

// requireInitialized gates every operation except Initialize.
// Callers must hold e.mu.
func (e *Engine) requireInitialized() error {
	if !e.initialized {
		opErrorsTotal.Inc()
		return uninitialized()
	}
	return nil
}

// tableFor returns the live table for a collection, creating it lazily.
// Callers must hold e.mu.
func (e *Engine) tableFor(collection string) *table.Table {
	tbl, ok := e.tables[collection]
	if !ok {
		tbl = table.New()
		e.tables[collection] = tbl
	}
	return tbl
}

// cellFor returns the live cell for a name, creating it lazily.
// Callers must hold e.mu.
func (e *Engine) cellFor(name string) *cell.Cell {
	c, ok := e.cells[name]
	if !ok {
		c = &cell.Cell{}
		e.cells[name] = c
	}
	return c
}

// definitionFor resolves a collection's schema.
// Callers must hold e.mu.
func (e *Engine) definitionFor(collection string) (*schema.Definition, error) {
	def, ok := e.schemas.Get(collection)
	if !ok {
		opErrorsTotal.Inc()
		return nil, invalidState(collection, "", "no schema for collection")
	}
	return def, nil
}

func recordRef(collection, key string) string {
	return "table/" + collection + "/" + key
}

func cellRef(name string) string {
	return "cell/" + name
}

// touchRecord refreshes the expiry horizon for a record, in memory and in
// the journal. Called only after the owning write succeeded; a failure here
// is logged and swallowed because lifecycle state is advisory.
func (e *Engine) touchRecord(collection, key string) {
	ref := recordRef(collection, key)
	if err := e.life.TouchEntry(ref, e.minTTL, e.extendTo); err != nil {
		e.logger.Warn("lifecycle touch failed", "ref", ref, "error", err)
		return
	}
	if horizon, ok := e.life.Horizon(ref); ok {
		if err := e.journal.TouchRecordExpiry(collection, key, horizon); err != nil {
			e.logger.Warn("journal expiry touch failed", "ref", ref, "error", err)
		}
	}
}

// touchCell is touchRecord for value cells.
func (e *Engine) touchCell(name string) {
	ref := cellRef(name)
	if err := e.life.TouchEntry(ref, e.minTTL, e.extendTo); err != nil {
		e.logger.Warn("lifecycle touch failed", "ref", ref, "error", err)
		return
	}
	if horizon, ok := e.life.Horizon(ref); ok {
		if err := e.journal.TouchCellExpiry(name, horizon); err != nil {
			e.logger.Warn("journal expiry touch failed", "ref", ref, "error", err)
		}
	}
}
