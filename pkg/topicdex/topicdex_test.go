package topicdex

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arvindmenon/topicdex/internal/memlog"
	"github.com/arvindmenon/topicdex/internal/table"
	"github.com/arvindmenon/topicdex/pkg/options"
)

func newTestInstance(t *testing.T) *Instance {
	t.Helper()

	store, err := memlog.Open(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	inst, err := NewInstance(context.Background(), "topicdex-test", store, options.WithTopics("accounts"))
	require.NoError(t, err)
	return inst
}

func TestInstanceWriteReadRoundTrip(t *testing.T) {
	inst := newTestInstance(t)
	ctx := context.Background()

	n, err := inst.Write(ctx, []table.KeyValue{{Key: []byte("alice"), Value: []byte("100"), Timestamp: 1}}, "accounts")
	require.NoError(t, err)
	require.Equal(t, 1, n)

	found, err := inst.Read(ctx, []byte("alice"), "accounts", false)
	require.NoError(t, err)
	require.True(t, found.Present)
	require.Equal(t, []byte("100"), found.Value)
}

func TestInstanceRemove(t *testing.T) {
	inst := newTestInstance(t)
	ctx := context.Background()

	_, err := inst.Write(ctx, []table.KeyValue{{Key: []byte("alice"), Value: []byte("100"), Timestamp: 1}}, "accounts")
	require.NoError(t, err)

	require.NoError(t, inst.Remove(ctx, [][]byte{[]byte("alice")}, "accounts"))

	found, err := inst.Read(ctx, []byte("alice"), "accounts", false)
	require.NoError(t, err)
	require.False(t, found.Present)
}

func TestInstanceCacheStats(t *testing.T) {
	inst := newTestInstance(t)
	ctx := context.Background()

	_, err := inst.Write(ctx, []table.KeyValue{{Key: []byte("alice"), Value: []byte("100"), Timestamp: 1}}, "accounts")
	require.NoError(t, err)
	_, err = inst.Read(ctx, []byte("alice"), "accounts", false)
	require.NoError(t, err)

	stats, err := inst.CacheStats("accounts")
	require.NoError(t, err)
	require.Greater(t, stats.ReadCount, int64(0))
}

func TestInstanceCloseIsIdempotentWithUnderlyingTableClose(t *testing.T) {
	inst := newTestInstance(t)
	require.NoError(t, inst.Close(context.Background()))
	require.NoError(t, inst.Close(context.Background()), "a second Close must also succeed")

	_, err := inst.Read(context.Background(), []byte("alice"), "accounts", false)
	require.Error(t, err)
}
