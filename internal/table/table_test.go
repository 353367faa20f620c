package table

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/strata/internal/record"
)

func rec(key string, seq int64) record.Record {
	return record.Record{
		Key: key,
		Seq: seq,
		Fields: record.Fields{
			"title": record.String(key),
		},
	}
}

func TestAppendPreservesInsertionOrder(t *testing.T) {
	tbl := New()
	keys := []string{"c", "a", "b"}
	for i, k := range keys {
		require.NoError(t, tbl.Append(rec(k, int64(i+1))))
	}

	all := tbl.All()
	require.Len(t, all, 3)
	for i, k := range keys {
		assert.Equal(t, k, all[i].Key)
	}
}

func TestAppendDuplicateKey(t *testing.T) {
	tbl := New()
	require.NoError(t, tbl.Append(rec("1984", 1)))

	err := tbl.Append(rec("1984", 2))
	assert.ErrorIs(t, err, ErrDuplicateKey)
	assert.Equal(t, 1, tbl.Len())
}

func TestFindFirstMatchWins(t *testing.T) {
	tbl := New()
	for i := 1; i <= 3; i++ {
		r := rec(fmt.Sprintf("k%d", i), int64(i))
		r.Fields["group"] = record.String("dup")
		require.NoError(t, tbl.Append(r))
	}

	found, ok := tbl.Find(func(r record.Record) bool {
		return r.Fields["group"] == record.String("dup")
	})
	require.True(t, ok)
	assert.Equal(t, "k1", found.Key, "first inserted must win on ties")
}

func TestFindNoMatch(t *testing.T) {
	tbl := New()
	require.NoError(t, tbl.Append(rec("a", 1)))

	_, ok := tbl.Find(ByKey("missing"))
	assert.False(t, ok)
}

func TestRemoveShiftsAndPreservesOrder(t *testing.T) {
	tbl := New()
	for i, k := range []string{"a", "b", "c", "d"} {
		require.NoError(t, tbl.Append(rec(k, int64(i+1))))
	}

	removed, err := tbl.Remove(ByKey("b"))
	require.NoError(t, err)
	assert.Equal(t, "b", removed.Key)

	all := tbl.All()
	require.Len(t, all, 3)
	assert.Equal(t, "a", all[0].Key)
	assert.Equal(t, "c", all[1].Key)
	assert.Equal(t, "d", all[2].Key)

	// Index must track the shifted positions.
	got, ok := tbl.Get("d")
	require.True(t, ok)
	assert.Equal(t, "d", got.Key)
}

func TestRemoveNoMatch(t *testing.T) {
	tbl := New()
	_, err := tbl.Remove(ByKey("ghost"))
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestRemoveFirstMatchOnly(t *testing.T) {
	tbl := New()
	for i := 1; i <= 3; i++ {
		r := rec(fmt.Sprintf("k%d", i), int64(i))
		r.Fields["group"] = record.String("dup")
		require.NoError(t, tbl.Append(r))
	}

	_, err := tbl.Remove(func(r record.Record) bool {
		return r.Fields["group"] == record.String("dup")
	})
	require.NoError(t, err)

	assert.Equal(t, 2, tbl.Len())
	assert.False(t, tbl.Has("k1"))
	assert.True(t, tbl.Has("k2"))
}

func TestAllSnapshotIsIndependent(t *testing.T) {
	tbl := New()
	require.NoError(t, tbl.Append(rec("a", 1)))

	snap := tbl.All()
	snap[0].Fields["title"] = record.String("mutated")

	got, ok := tbl.Get("a")
	require.True(t, ok)
	assert.Equal(t, record.String("a"), got.Fields["title"])
}

func TestAllEmptyIsNonNil(t *testing.T) {
	tbl := New()
	all := tbl.All()
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestLenMatchesAll(t *testing.T) {
	tbl := New()
	assert.Equal(t, tbl.Len(), len(tbl.All()))

	for i, k := range []string{"a", "b", "c"} {
		require.NoError(t, tbl.Append(rec(k, int64(i+1))))
		assert.Equal(t, tbl.Len(), len(tbl.All()))
	}

	_, err := tbl.Remove(ByKey("b"))
	require.NoError(t, err)
	assert.Equal(t, tbl.Len(), len(tbl.All()))
}

func TestReplaceKeepsPosition(t *testing.T) {
	tbl := New()
	for i, k := range []string{"a", "b", "c"} {
		require.NoError(t, tbl.Append(rec(k, int64(i+1))))
	}

	updated := rec("b", 2)
	updated.Fields["title"] = record.String("revised")
	require.True(t, tbl.Replace("b", updated))

	all := tbl.All()
	assert.Equal(t, "b", all[1].Key)
	assert.Equal(t, record.String("revised"), all[1].Fields["title"])
}

func TestGetMissing(t *testing.T) {
	tbl := New()
	_, ok := tbl.Get("nope")
	assert.False(t, ok)
}
