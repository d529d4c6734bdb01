package valuecache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetMissOnEmpty(t *testing.T) {
	c := New(4)
	_, ok := c.Get(1)
	require.False(t, ok)
	require.Equal(t, int64(1), c.ReadCount())
	require.Equal(t, 0.0, c.HitRate())
	require.Equal(t, 1.0, c.MissRate())
}

func TestPutThenGetHits(t *testing.T) {
	c := New(4)
	c.Put(1, Entry{Value: []byte("v1"), MixedOffset: 100})

	e, ok := c.Get(1)
	require.True(t, ok)
	require.Equal(t, []byte("v1"), e.Value)
	require.Equal(t, int32(100), e.MixedOffset)
	require.Equal(t, 1.0, c.HitRate())
}

func TestOverwriteDoesNotMoveFIFOPosition(t *testing.T) {
	c := New(2)
	c.Put(1, Entry{Value: []byte("a")})
	c.Put(2, Entry{Value: []byte("b")})

	// Overwrite key 1; it should remain the oldest for eviction purposes.
	c.Put(1, Entry{Value: []byte("a-v2")})

	// Inserting a third distinct key should evict key 1, not key 2,
	// because FIFO order is insertion order, not recency of access/update.
	c.Put(3, Entry{Value: []byte("c")})

	_, ok := c.Get(1)
	require.False(t, ok, "key 1 should have been evicted despite the overwrite")

	e2, ok := c.Get(2)
	require.True(t, ok)
	require.Equal(t, []byte("b"), e2.Value)

	e3, ok := c.Get(3)
	require.True(t, ok)
	require.Equal(t, []byte("c"), e3.Value)
}

func TestStrictFIFONotLRU(t *testing.T) {
	c := New(2)
	c.Put(1, Entry{Value: []byte("a")})
	c.Put(2, Entry{Value: []byte("b")})

	// Repeatedly read key 1 - an LRU cache would now treat key 2 as
	// the eviction candidate. A strict FIFO cache must not care.
	for i := 0; i < 10; i++ {
		c.Get(1)
	}

	c.Put(3, Entry{Value: []byte("c")})

	_, ok := c.Get(1)
	require.False(t, ok, "FIFO eviction must ignore read recency")
	_, ok = c.Get(2)
	require.True(t, ok)
}

func TestRemove(t *testing.T) {
	c := New(4)
	c.Put(1, Entry{Value: []byte("a")})
	c.Remove(1)

	_, ok := c.Get(1)
	require.False(t, ok)
}

func TestResetHitRate(t *testing.T) {
	c := New(4)
	c.Put(1, Entry{Value: []byte("a")})
	c.Get(1)
	c.Get(2)

	require.Equal(t, int64(2), c.ReadCount())
	c.ResetHitRate()
	require.Equal(t, int64(0), c.ReadCount())
	require.Equal(t, 0.0, c.HitRate())

	// Cache contents survive a stats reset.
	_, ok := c.Get(1)
	require.True(t, ok)
}
