package engine

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/strata/internal/query"
	"github.com/roach88/strata/internal/record"
	"github.com/roach88/strata/internal/schema"
	"github.com/roach88/strata/internal/store"
	"github.com/roach88/strata/internal/testutil"
)

// newTestEngine creates an initialized engine over a fresh journal.
func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e := newBareEngine(t, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, e.Initialize(context.Background()))
	return e
}

// newBareEngine creates a loaded but uninitialized engine at path.
func newBareEngine(t *testing.T, path string) *Engine {
	t.Helper()
	journal, err := store.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { journal.Close() })

	schemas, err := schema.Builtin()
	require.NoError(t, err)

	e := New(journal, schemas,
		WithTokenGenerator(testutil.NewFixedTokenGenerator("")))
	require.NoError(t, e.Load())
	return e
}

func bookFields(title string, quantity int64) record.Fields {
	return record.Fields{
		"title":    record.String(title),
		"author":   record.String("Orwell"),
		"year":     record.Int(1949),
		"price":    record.Float(9.99),
		"quantity": record.Int(quantity),
	}
}

// Initialization

func TestInitializeTwice(t *testing.T) {
	e := newBareEngine(t, filepath.Join(t.TempDir(), "test.db"))
	ctx := context.Background()

	require.NoError(t, e.Initialize(ctx))

	err := e.Initialize(ctx)
	require.Error(t, err)
	assert.True(t, IsAlreadyInitialized(err))
}

func TestOperationsBeforeInitialize(t *testing.T) {
	e := newBareEngine(t, filepath.Join(t.TempDir(), "test.db"))
	ctx := context.Background()

	_, err := e.Add(ctx, "books", bookFields("1984", 3))
	assert.True(t, IsUninitialized(err))

	_, err = e.FindByKey(ctx, "books", "1984")
	assert.True(t, IsUninitialized(err))

	_, err = e.List(ctx, "books")
	assert.True(t, IsUninitialized(err))

	_, err = e.CounterGet(ctx, "seq", 0)
	assert.True(t, IsUninitialized(err))
}

func TestInitializeMarkerSurvivesReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	e1 := newBareEngine(t, path)
	require.NoError(t, e1.Initialize(ctx))

	e2 := newBareEngine(t, path)
	err := e2.Initialize(ctx)
	assert.True(t, IsAlreadyInitialized(err))
}

// Add / FindByKey

func TestAddAndFindByKey(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	added, err := e.Add(ctx, "books", bookFields("1984", 3))
	require.NoError(t, err)
	assert.Equal(t, "1984", added.Key)
	assert.Equal(t, int64(1), added.Seq)

	found, err := e.FindByKey(ctx, "books", "1984")
	require.NoError(t, err)
	assert.True(t, found.Equal(added))
}

func TestAddDuplicateKey(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	_, err := e.Add(ctx, "books", bookFields("1984", 3))
	require.NoError(t, err)

	_, err = e.Add(ctx, "books", bookFields("1984", 5))
	require.Error(t, err)
	assert.True(t, IsDuplicateKey(err))

	// The original record is untouched.
	found, err := e.FindByKey(ctx, "books", "1984")
	require.NoError(t, err)
	assert.Equal(t, record.Int(3), found.Fields["quantity"])
}

func TestAddNormalizesPayload(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	added, err := e.Add(ctx, "books", record.Fields{
		"title": record.String(""),
		"price": record.Float(-4.50),
	})
	require.NoError(t, err)

	// Empty key field lands under its placeholder; negative price clamps.
	assert.Equal(t, "Untitled", added.Key)
	assert.Equal(t, record.String("Untitled"), added.Fields["title"])
	assert.Equal(t, record.Float(0), added.Fields["price"])
}

func TestAddRejectsUnknownField(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Add(context.Background(), "books", record.Fields{
		"title": record.String("1984"),
		"isbn":  record.String("x"),
	})
	require.Error(t, err)
	assert.True(t, IsInvalidState(err))
}

func TestAddRejectsUnknownCollection(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Add(context.Background(), "gadgets", record.Fields{
		"title": record.String("x"),
	})
	require.Error(t, err)
	assert.True(t, IsInvalidState(err))
}

func TestFindByKeyMissing(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	_, err := e.FindByKey(ctx, "books", "ghost")
	assert.True(t, IsNotFound(err))

	// Unknown collection behaves the same as an empty one.
	_, err = e.FindByKey(ctx, "records", "ghost")
	assert.True(t, IsNotFound(err))
}

// Remove / List / Count

func TestRemoveThenFind(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	_, err := e.Add(ctx, "books", bookFields("1984", 3))
	require.NoError(t, err)

	removed, err := e.RemoveByKey(ctx, "books", "1984")
	require.NoError(t, err)
	assert.Equal(t, "1984", removed.Key)

	_, err = e.FindByKey(ctx, "books", "1984")
	assert.True(t, IsNotFound(err))

	// Removing again is the same NOT_FOUND edge.
	_, err = e.RemoveByKey(ctx, "books", "1984")
	assert.True(t, IsNotFound(err))
}

func TestListInsertionOrderAcrossRemovals(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	titles := []string{"alpha", "beta", "gamma", "delta"}
	for _, title := range titles {
		_, err := e.Add(ctx, "books", bookFields(title, 1))
		require.NoError(t, err)
	}

	_, err := e.RemoveByKey(ctx, "books", "beta")
	require.NoError(t, err)

	recs, err := e.List(ctx, "books")
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "alpha", recs[0].Key)
	assert.Equal(t, "gamma", recs[1].Key)
	assert.Equal(t, "delta", recs[2].Key)
}

func TestCountMatchesListAtEveryStep(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	check := func() {
		t.Helper()
		recs, err := e.List(ctx, "books")
		require.NoError(t, err)
		n, err := e.Count(ctx, "books")
		require.NoError(t, err)
		assert.Equal(t, len(recs), n)
	}

	check()
	for _, title := range []string{"a", "b", "c"} {
		_, err := e.Add(ctx, "books", bookFields(title, 1))
		require.NoError(t, err)
		check()
	}
	_, err := e.RemoveByKey(ctx, "books", "b")
	require.NoError(t, err)
	check()
}

func TestListSnapshotIsIndependent(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	_, err := e.Add(ctx, "books", bookFields("1984", 3))
	require.NoError(t, err)

	snap, err := e.List(ctx, "books")
	require.NoError(t, err)
	snap[0].Fields["quantity"] = record.Int(999)

	found, err := e.FindByKey(ctx, "books", "1984")
	require.NoError(t, err)
	assert.Equal(t, record.Int(3), found.Fields["quantity"])
}

// Adjust

func TestAdjustSuccess(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	_, err := e.Add(ctx, "books", bookFields("1984", 3))
	require.NoError(t, err)

	updated, err := e.Adjust(ctx, "books", "1984", func(f record.Fields) error {
		f["quantity"] = record.Int(2)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, record.Int(2), updated.Fields["quantity"])

	found, err := e.FindByKey(ctx, "books", "1984")
	require.NoError(t, err)
	assert.Equal(t, record.Int(2), found.Fields["quantity"])
}

func TestAdjustPreservesPosition(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	for _, title := range []string{"a", "b", "c"} {
		_, err := e.Add(ctx, "books", bookFields(title, 1))
		require.NoError(t, err)
	}

	_, err := e.Adjust(ctx, "books", "b", func(f record.Fields) error {
		f["quantity"] = record.Int(7)
		return nil
	})
	require.NoError(t, err)

	recs, err := e.List(ctx, "books")
	require.NoError(t, err)
	assert.Equal(t, "b", recs[1].Key)
	assert.Equal(t, record.Int(7), recs[1].Fields["quantity"])
}

func TestAdjustInvariantViolationLeavesStateUnchanged(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	added, err := e.Add(ctx, "books", bookFields("1984", 3))
	require.NoError(t, err)

	// Oversell: quantity would drop below the floor.
	_, err = e.Adjust(ctx, "books", "1984", func(f record.Fields) error {
		f["quantity"] = record.Int(3 - 5)
		return nil
	})
	require.Error(t, err)
	assert.True(t, IsInvalidState(err))

	found, err := e.FindByKey(ctx, "books", "1984")
	require.NoError(t, err)
	assert.True(t, found.Equal(added), "record must be byte-for-byte unchanged")
}

func TestAdjustMutationErrorLeavesStateUnchanged(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	added, err := e.Add(ctx, "books", bookFields("1984", 3))
	require.NoError(t, err)

	_, err = e.Adjust(ctx, "books", "1984", func(f record.Fields) error {
		f["quantity"] = record.Int(0) // partial work, then bail
		return assert.AnError
	})
	require.Error(t, err)
	assert.True(t, IsInvalidState(err))

	found, err := e.FindByKey(ctx, "books", "1984")
	require.NoError(t, err)
	assert.True(t, found.Equal(added))
}

func TestAdjustCannotChangeKey(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	_, err := e.Add(ctx, "books", bookFields("1984", 3))
	require.NoError(t, err)

	_, err = e.Adjust(ctx, "books", "1984", func(f record.Fields) error {
		f["title"] = record.String("Animal Farm")
		return nil
	})
	require.Error(t, err)
	assert.True(t, IsInvalidState(err))
}

func TestAdjustMissingRecord(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Adjust(context.Background(), "books", "ghost", func(record.Fields) error {
		return nil
	})
	assert.True(t, IsNotFound(err))
}

// Persistence

func TestReloadRehydratesState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	e1 := newBareEngine(t, path)
	require.NoError(t, e1.Initialize(ctx))
	for _, title := range []string{"a", "b", "c"} {
		_, err := e1.Add(ctx, "books", bookFields(title, 1))
		require.NoError(t, err)
	}
	_, err := e1.RemoveByKey(ctx, "books", "a")
	require.NoError(t, err)
	_, err = e1.CounterAdd(ctx, "seq", 1, 0)
	require.NoError(t, err)

	e2 := newBareEngine(t, path)

	recs, err := e2.List(ctx, "books")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "b", recs[0].Key)
	assert.Equal(t, "c", recs[1].Key)

	n, err := e2.CounterGet(ctx, "seq", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestReloadResumesClock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	e1 := newBareEngine(t, path)
	require.NoError(t, e1.Initialize(ctx))
	first, err := e1.Add(ctx, "books", bookFields("a", 1))
	require.NoError(t, err)

	e2 := newBareEngine(t, path)
	second, err := e2.Add(ctx, "books", bookFields("b", 1))
	require.NoError(t, err)

	assert.Greater(t, second.Seq, first.Seq, "seq must keep increasing across reloads")
}

// Lifecycle integration

func TestMutationsRefreshExpiry(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	_, err := e.Add(ctx, "books", bookFields("1984", 3))
	require.NoError(t, err)

	horizon, ok := e.Lifecycle().Horizon("table/books/1984")
	require.True(t, ok)
	assert.Greater(t, horizon, int64(0))

	_, err = e.CounterAdd(ctx, "seq", 1, 0)
	require.NoError(t, err)
	_, ok = e.Lifecycle().Horizon("cell/seq")
	assert.True(t, ok)

	touches := e.Lifecycle().Touches()
	assert.Len(t, touches, 2, "every mutating call refreshes expiry exactly once")
}

func TestRemoveDropsExpiry(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	_, err := e.Add(ctx, "books", bookFields("1984", 3))
	require.NoError(t, err)
	_, err = e.RemoveByKey(ctx, "books", "1984")
	require.NoError(t, err)

	_, ok := e.Lifecycle().Horizon("table/books/1984")
	assert.False(t, ok)
}

func TestFailedAdjustDoesNotTouchExpiry(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	_, err := e.Add(ctx, "books", bookFields("1984", 3))
	require.NoError(t, err)
	before := len(e.Lifecycle().Touches())

	_, err = e.Adjust(ctx, "books", "1984", func(f record.Fields) error {
		f["quantity"] = record.Int(-1)
		return nil
	})
	require.Error(t, err)

	assert.Len(t, e.Lifecycle().Touches(), before, "failed mutation must not touch expiry")
}

// Context

func TestCancelledContext(t *testing.T) {
	e := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Add(ctx, "books", bookFields("1984", 3))
	assert.ErrorIs(t, err, context.Canceled)
}

// Journal-side queries

func TestQueryFiltersJournalSide(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	_, err := e.Add(ctx, "books", bookFields("sold-out", 0))
	require.NoError(t, err)
	_, err = e.Add(ctx, "books", bookFields("stocked", 5))
	require.NoError(t, err)
	_, err = e.Add(ctx, "books", bookFields("plenty", 9))
	require.NoError(t, err)

	recs, err := e.Query(ctx, "books", []query.Pred{
		{Field: "quantity", Op: query.OpGt, Value: record.Int(0)},
	})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "stocked", recs[0].Key)
	assert.Equal(t, "plenty", recs[1].Key)
}

func TestQueryEmptyPredicatesListsAll(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	_, err := e.Add(ctx, "books", bookFields("alpha", 1))
	require.NoError(t, err)
	_, err = e.Add(ctx, "books", bookFields("beta", 2))
	require.NoError(t, err)

	recs, err := e.Query(ctx, "books", nil)
	require.NoError(t, err)

	listed, err := e.List(ctx, "books")
	require.NoError(t, err)
	assert.Equal(t, listed, recs)
}

func TestQueryKeyPseudoField(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	_, err := e.Add(ctx, "books", bookFields("alpha", 1))
	require.NoError(t, err)
	_, err = e.Add(ctx, "books", bookFields("beta", 2))
	require.NoError(t, err)

	recs, err := e.Query(ctx, "books", []query.Pred{
		{Field: query.KeyField, Op: query.OpEq, Value: record.String("beta")},
	})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "beta", recs[0].Key)
}

func TestQueryUnknownCollectionIsEmpty(t *testing.T) {
	e := newTestEngine(t)

	recs, err := e.Query(context.Background(), "ghosts", nil)
	require.NoError(t, err)
	assert.Empty(t, recs)
	assert.NotNil(t, recs)
}

func TestQueryBeforeInitialize(t *testing.T) {
	e := newBareEngine(t, filepath.Join(t.TempDir(), "test.db"))

	_, err := e.Query(context.Background(), "books", nil)
	assert.True(t, IsUninitialized(err))
}
