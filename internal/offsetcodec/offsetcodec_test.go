package offsetcodec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cases := []struct {
		selector FileSelector
		offset   int64
	}{
		{Snapshot, 0},
		{Post, 0},
		{Snapshot, 1},
		{Post, 1},
		{Snapshot, MaxRawOffset},
		{Post, MaxRawOffset},
		{Snapshot, 12345},
		{Post, 8675309},
	}

	for _, c := range cases {
		mixed := ToMixed(c.selector, c.offset)
		gotSelector, gotOffset := FromMixed(mixed)
		require.Equal(t, c.selector, gotSelector, "selector mismatch for offset %d", c.offset)
		require.Equal(t, c.offset, gotOffset, "offset mismatch for selector %v", c.selector)
	}
}

func TestToMixedPanicsOnOverflow(t *testing.T) {
	require.Panics(t, func() { ToMixed(Snapshot, -1) })
	require.Panics(t, func() { ToMixed(Snapshot, MaxRawOffset+1) })
}

func TestFromMixedIsTotal(t *testing.T) {
	inputs := []int32{0, -1, 1, 1 << 30, -(1 << 30), 1<<31 - 1, -(1 << 31)}
	for _, m := range inputs {
		selector, offset := FromMixed(m)
		require.GreaterOrEqual(t, offset, int64(0))
		require.LessOrEqual(t, offset, int64(MaxRawOffset))
		back := ToMixed(selector, offset)
		require.Equal(t, m, back)
	}
}

func TestSelectorString(t *testing.T) {
	require.Equal(t, "snapshot", Snapshot.String())
	require.Equal(t, "post", Post.String())
}
