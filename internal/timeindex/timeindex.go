// Package timeindex implements the optional timestamp -> most-recent-key
// lookup. It is a plain growable slice rather than a map because timestamps
// are expected to be densely packed small non-negative integers (the source
// this was distilled from casts the timestamp directly to an array index),
// so a slice amortizes better than a map keyed by int64.
package timeindex

import "math"

// TimeIndex maps a non-negative timestamp to the most recently written key
// at that timestamp.
type TimeIndex struct {
	enabled bool
	keys    [][]byte
}

// New creates a TimeIndex. When enabled is false, Get always reports absent,
// but Put still records writes — matching the source this was distilled
// from, which keeps writing to the time index regardless of whether
// with_time_to_key was requested at construction.
func New(enabled bool) *TimeIndex {
	return &TimeIndex{enabled: enabled}
}

// Put records key as the most recently written key at timestamp ts. ts must
// be non-negative.
func (t *TimeIndex) Put(ts int64, key []byte) {
	if ts < 0 {
		return
	}

	idx := int(ts)
	if idx >= len(t.keys) {
		t.grow(idx + 1)
	}

	cp := make([]byte, len(key))
	copy(cp, key)
	t.keys[idx] = cp
}

// Get returns the key most recently written at timestamp ts, if any. When
// the TimeIndex was constructed with enabled=false, Get always returns
// (nil, false).
func (t *TimeIndex) Get(ts int64) ([]byte, bool) {
	if !t.enabled || ts < 0 || int(ts) >= len(t.keys) {
		return nil, false
	}
	k := t.keys[ts]
	if k == nil {
		return nil, false
	}
	return k, true
}

// grow resizes the backing slice so index minLen-1 is addressable, growing
// to max(len*1.2 rounded up, minLen) as the source specifies.
func (t *TimeIndex) grow(minLen int) {
	newLen := int(math.Ceil(float64(len(t.keys)) * 1.2))
	if newLen < minLen {
		newLen = minLen
	}

	grown := make([][]byte, newLen)
	copy(grown, t.keys)
	t.keys = grown
}
