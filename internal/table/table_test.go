package table

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/arvindmenon/topicdex/internal/memlog"
	"github.com/arvindmenon/topicdex/internal/offsetcodec"
	"github.com/arvindmenon/topicdex/pkg/logengine"
	"github.com/arvindmenon/topicdex/pkg/options"
)

func newTestTable(t *testing.T, opts ...options.OptionFunc) (*Table, *memlog.Store) {
	t.Helper()

	o := options.NewDefaultOptions()
	o.Topics = []string{"accounts"}
	for _, fn := range opts {
		fn(&o)
	}

	store, err := memlog.Open(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	tbl, err := New(context.Background(), store, o, nil)
	require.NoError(t, err)
	return tbl, store
}

func TestWriteThenReadReturnsValue(t *testing.T) {
	tbl, _ := newTestTable(t)
	ctx := context.Background()

	n, err := tbl.WriteSnap(ctx, []KeyValue{{Key: []byte("alice"), Value: []byte("100"), Timestamp: 10}}, "accounts")
	require.NoError(t, err)
	require.Equal(t, 1, n)

	found, err := tbl.Read(ctx, []byte("alice"), "accounts", false)
	require.NoError(t, err)
	require.True(t, found.Present)
	require.Equal(t, []byte("100"), found.Value)
	require.Equal(t, int64(10), found.Timestamp)
}

func TestRewriteWinsOverEarlierValue(t *testing.T) {
	tbl, _ := newTestTable(t)
	ctx := context.Background()

	_, err := tbl.WriteSnap(ctx, []KeyValue{{Key: []byte("alice"), Value: []byte("100"), Timestamp: 10}}, "accounts")
	require.NoError(t, err)
	_, err = tbl.WriteSnap(ctx, []KeyValue{{Key: []byte("alice"), Value: []byte("200"), Timestamp: 11}}, "accounts")
	require.NoError(t, err)

	found, err := tbl.Read(ctx, []byte("alice"), "accounts", false)
	require.NoError(t, err)
	require.Equal(t, []byte("200"), found.Value)
	require.Equal(t, int64(11), found.Timestamp)
}

func TestWriteElisionSkipsUnchangedValue(t *testing.T) {
	tbl, _ := newTestTable(t)
	ctx := context.Background()

	_, err := tbl.WriteSnap(ctx, []KeyValue{{Key: []byte("alice"), Value: []byte("200"), Timestamp: 11}}, "accounts")
	require.NoError(t, err)

	n, err := tbl.WriteSnap(ctx, []KeyValue{{Key: []byte("alice"), Value: []byte("200"), Timestamp: 12}}, "accounts")
	require.NoError(t, err)
	require.Equal(t, 0, n, "identical value write must be elided")
}

func TestRemoveThenReadReturnsAbsent(t *testing.T) {
	tbl, _ := newTestTable(t)
	ctx := context.Background()

	_, err := tbl.WriteSnap(ctx, []KeyValue{{Key: []byte("alice"), Value: []byte("100"), Timestamp: 10}}, "accounts")
	require.NoError(t, err)

	require.NoError(t, tbl.Remove(ctx, [][]byte{[]byte("alice")}, "accounts"))

	found, err := tbl.Read(ctx, []byte("alice"), "accounts", false)
	require.NoError(t, err)
	require.False(t, found.Present)

	found, err = tbl.Read(ctx, []byte("alice"), "accounts", false)
	require.NoError(t, err)
	require.False(t, found.Present)
}

func TestWriteAfterRemoveIsVisibleAgain(t *testing.T) {
	tbl, _ := newTestTable(t)
	ctx := context.Background()

	_, err := tbl.WriteSnap(ctx, []KeyValue{{Key: []byte("alice"), Value: []byte("100"), Timestamp: 10}}, "accounts")
	require.NoError(t, err)
	require.NoError(t, tbl.Remove(ctx, [][]byte{[]byte("alice")}, "accounts"))

	_, err = tbl.WriteSnap(ctx, []KeyValue{{Key: []byte("alice"), Value: []byte("300"), Timestamp: 20}}, "accounts")
	require.NoError(t, err)

	found, err := tbl.Read(ctx, []byte("alice"), "accounts", false)
	require.NoError(t, err)
	require.True(t, found.Present)
	require.Equal(t, []byte("300"), found.Value)
}

func TestReadOfUnknownKeyIsAbsent(t *testing.T) {
	tbl, _ := newTestTable(t)
	found, err := tbl.Read(context.Background(), []byte("ghost"), "accounts", false)
	require.NoError(t, err)
	require.False(t, found.Present)
}

func TestReadOfUnknownTopicErrors(t *testing.T) {
	tbl, _ := newTestTable(t)
	_, err := tbl.Read(context.Background(), []byte("alice"), "unknown", false)
	require.Error(t, err)
}

func TestTimeToKeyTracksMostRecentWriter(t *testing.T) {
	tbl, _ := newTestTable(t, options.WithTimeIndex(true))
	ctx := context.Background()

	_, err := tbl.WriteSnap(ctx, []KeyValue{{Key: []byte("x"), Value: []byte("1"), Timestamp: 5}}, "accounts")
	require.NoError(t, err)

	key, ok := tbl.GetKeyByTime(5)
	require.True(t, ok)
	require.Equal(t, []byte("x"), key)

	_, err = tbl.WriteSnap(ctx, []KeyValue{{Key: []byte("y"), Value: []byte("2"), Timestamp: 5}}, "accounts")
	require.NoError(t, err)

	key, ok = tbl.GetKeyByTime(5)
	require.True(t, ok)
	require.Equal(t, []byte("y"), key)
}

func TestTimeToKeyDisabledAlwaysAbsent(t *testing.T) {
	tbl, _ := newTestTable(t, options.WithTimeIndex(false))
	ctx := context.Background()

	_, err := tbl.WriteSnap(ctx, []KeyValue{{Key: []byte("x"), Value: []byte("1"), Timestamp: 5}}, "accounts")
	require.NoError(t, err)

	_, ok := tbl.GetKeyByTime(5)
	require.False(t, ok)
}

// collidingKeyHasher sends every key to the same hash so k1/k2 exercise the
// hash-collision scan path deterministically.
func collidingKeyHasher(key []byte) int32 { return 42 }

func TestHashCollisionToleratesDistinctKeys(t *testing.T) {
	tbl, _ := newTestTable(t, options.WithKeyHasher(collidingKeyHasher))
	ctx := context.Background()

	_, err := tbl.WriteSnap(ctx, []KeyValue{{Key: []byte("k1"), Value: []byte("A"), Timestamp: 1}}, "accounts")
	require.NoError(t, err)
	_, err = tbl.WriteSnap(ctx, []KeyValue{{Key: []byte("k2"), Value: []byte("B"), Timestamp: 2}}, "accounts")
	require.NoError(t, err)

	found, err := tbl.Read(ctx, []byte("k1"), "accounts", true)
	require.NoError(t, err)
	require.True(t, found.Present)
	require.Equal(t, []byte("A"), found.Value)

	found, err = tbl.Read(ctx, []byte("k2"), "accounts", true)
	require.NoError(t, err)
	require.True(t, found.Present)
	require.Equal(t, []byte("B"), found.Value)
}

// TestHashCollisionToleratesDistinctKeysViaCache is the cache-path twin of
// TestHashCollisionToleratesDistinctKeys: both writes populate the value
// cache under the same colliding hash, so a Read with bypassCache=false must
// still return each key's own value instead of whichever of k1/k2 happens to
// occupy that hash's cache slot.
func TestHashCollisionToleratesDistinctKeysViaCache(t *testing.T) {
	tbl, _ := newTestTable(t, options.WithKeyHasher(collidingKeyHasher))
	ctx := context.Background()

	_, err := tbl.WriteSnap(ctx, []KeyValue{{Key: []byte("k1"), Value: []byte("A"), Timestamp: 1}}, "accounts")
	require.NoError(t, err)
	_, err = tbl.WriteSnap(ctx, []KeyValue{{Key: []byte("k2"), Value: []byte("B"), Timestamp: 2}}, "accounts")
	require.NoError(t, err)

	found, err := tbl.Read(ctx, []byte("k1"), "accounts", false)
	require.NoError(t, err)
	require.True(t, found.Present)
	require.Equal(t, []byte("A"), found.Value)

	found, err = tbl.Read(ctx, []byte("k2"), "accounts", false)
	require.NoError(t, err)
	require.True(t, found.Present)
	require.Equal(t, []byte("B"), found.Value)
}

func TestRebuildFromDiskReproducesIndex(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store1, err := memlog.Open(dir, nil)
	require.NoError(t, err)

	o := options.NewDefaultOptions()
	o.Topics = []string{"accounts"}

	tbl1, err := New(ctx, store1, o, nil)
	require.NoError(t, err)
	_, err = tbl1.WriteSnap(ctx, []KeyValue{
		{Key: []byte("alice"), Value: []byte("100"), Timestamp: 1},
		{Key: []byte("bob"), Value: []byte("200"), Timestamp: 2},
	}, "accounts")
	require.NoError(t, err)

	col, err := tbl1.columnOf("accounts")
	require.NoError(t, err)
	before := tbl1.offsets.Snapshot(col)

	require.NoError(t, tbl1.Close())
	require.NoError(t, store1.Close())

	store2, err := memlog.Open(dir, nil)
	require.NoError(t, err)
	defer store2.Close()

	tbl2, err := New(ctx, store2, o, nil)
	require.NoError(t, err)

	found, err := tbl2.Read(ctx, []byte("alice"), "accounts", true)
	require.NoError(t, err)
	require.True(t, found.Present)
	require.Equal(t, []byte("100"), found.Value)

	found, err = tbl2.Read(ctx, []byte("bob"), "accounts", true)
	require.NoError(t, err)
	require.True(t, found.Present)
	require.Equal(t, []byte("200"), found.Value)

	after := tbl2.offsets.Snapshot(col)
	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("rebuilt index diverged from the original (-before +after):\n%s", diff)
	}
}

func TestIterateOverVisitsAllRecords(t *testing.T) {
	tbl, _ := newTestTable(t)
	ctx := context.Background()

	_, err := tbl.WriteSnap(ctx, []KeyValue{
		{Key: []byte("alice"), Value: []byte("100"), Timestamp: 1},
		{Key: []byte("bob"), Value: []byte("200"), Timestamp: 2},
	}, "accounts")
	require.NoError(t, err)

	var keys [][]byte
	err = tbl.IterateOver(ctx, "accounts", 0, func(offset int64, rec logengine.Record) error {
		keys = append(keys, rec.Key)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, keys, 2)
}

func TestReadOnceReadsSingleBatch(t *testing.T) {
	tbl, _ := newTestTable(t)
	ctx := context.Background()

	_, err := tbl.WriteSnap(ctx, []KeyValue{{Key: []byte("alice"), Value: []byte("100"), Timestamp: 1}}, "accounts")
	require.NoError(t, err)

	visited := 0
	err = tbl.ReadOnce(ctx, "accounts", 0, func(offset int64, rec logengine.Record) error {
		visited++
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, visited)
}

func TestCacheStatsTrackHitsAndMisses(t *testing.T) {
	tbl, _ := newTestTable(t)
	ctx := context.Background()

	_, err := tbl.WriteSnap(ctx, []KeyValue{{Key: []byte("alice"), Value: []byte("100"), Timestamp: 1}}, "accounts")
	require.NoError(t, err)

	_, err = tbl.Read(ctx, []byte("alice"), "accounts", false)
	require.NoError(t, err)
	_, err = tbl.Read(ctx, []byte("alice"), "accounts", false)
	require.NoError(t, err)

	stats, err := tbl.CacheStatsFor("accounts")
	require.NoError(t, err)
	require.Greater(t, stats.ReadCount, int64(0))
	require.Greater(t, stats.HitRate, 0.0)

	require.NoError(t, tbl.ResetCacheStats("accounts"))
	stats, err = tbl.CacheStatsFor("accounts")
	require.NoError(t, err)
	require.Equal(t, int64(0), stats.ReadCount)
}

func TestOperationsFailAfterClose(t *testing.T) {
	tbl, _ := newTestTable(t)
	require.NoError(t, tbl.Close())

	_, err := tbl.Read(context.Background(), []byte("alice"), "accounts", false)
	require.Error(t, err)

	_, err = tbl.WriteSnap(context.Background(), []KeyValue{{Key: []byte("x"), Value: []byte("1")}}, "accounts")
	require.Error(t, err)
}

func TestOffsetCodecRoundTripsAcrossTable(t *testing.T) {
	m := offsetcodec.ToMixed(offsetcodec.Post, 100)
	sel, raw := offsetcodec.FromMixed(m)
	require.Equal(t, offsetcodec.Post, sel)
	require.Equal(t, int64(100), raw)
}
