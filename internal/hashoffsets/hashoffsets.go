// Package hashoffsets implements the primitive i32 -> []i32 multimap that
// backs the Table's in-memory index: for every (column, key hash) pair it
// keeps the ordered list of mixed offsets where records for that hash were
// appended.
//
// The key space is stored in a flat, open-addressed array rather than a Go
// map so that resolving a hash to its slot never allocates; only the
// offset list itself (usually length 1) allocates, and only on growth.
// Collisions are expected but rare, so arrays beat linked lists for the
// per-key list, and a flat probe sequence beats a chained hash table for
// the key space itself.
package hashoffsets

import "math"

// NoValue is the math.MinInt32 sentinel hash. Get does not return it: a
// (column, hash) pair that has never been written is reported as
// (nil, false). Slots are tracked by a separate occupancy flag, so the
// structure never confuses an empty slot with a stored key, and NoValue
// can be stored as a key hash like any other value.
const NoValue = int32(math.MinInt32)

const (
	initialCapacity = 16
	maxLoadFactor   = 0.7
	growthFactor    = 2
)

type slotState uint8

const (
	slotEmpty slotState = iota
	slotFull
)

type column struct {
	states  []slotState
	keys    []int32
	offsets [][]int32
	count   int
}

func newColumn() *column {
	return &column{
		states:  make([]slotState, initialCapacity),
		keys:    make([]int32, initialCapacity),
		offsets: make([][]int32, initialCapacity),
	}
}

// HashOffsets is a multimap from (column, key hash) to an ordered list of
// mixed offsets, partitioned into a fixed number of columns (one per topic).
type HashOffsets struct {
	columns []*column
}

// New creates a HashOffsets with numColumns independent partitions.
func New(numColumns int) *HashOffsets {
	cols := make([]*column, numColumns)
	for i := range cols {
		cols[i] = newColumn()
	}
	return &HashOffsets{columns: cols}
}

// Put appends mixedOffset to the offset list at (col, hash), creating the
// entry if absent. Duplicates are permitted; insertion order is preserved.
func (h *HashOffsets) Put(hash int32, mixedOffset int32, col int) {
	c := h.columns[col]
	c.growIfNeeded()
	idx := c.findSlot(hash)
	if c.states[idx] == slotEmpty {
		c.states[idx] = slotFull
		c.keys[idx] = hash
		c.offsets[idx] = []int32{mixedOffset}
		c.count++
		return
	}
	c.offsets[idx] = append(c.offsets[idx], mixedOffset)
}

// Replace substitutes oldMixed with newMixed in place within the offset list
// at (col, hash), preserving list order. If the list doesn't exist or doesn't
// contain oldMixed, Replace behaves like Put(hash, newMixed, col).
func (h *HashOffsets) Replace(hash int32, oldMixed int32, newMixed int32, col int) {
	c := h.columns[col]
	idx := c.findSlot(hash)
	if c.states[idx] == slotEmpty {
		h.Put(hash, newMixed, col)
		return
	}

	for i, m := range c.offsets[idx] {
		if m == oldMixed {
			c.offsets[idx][i] = newMixed
			return
		}
	}
	h.Put(hash, newMixed, col)
}

// Get returns the current offset list for (col, hash), or (nil, false) if
// the pair has never been written. Callers should treat the returned slice
// as read-only; it aliases internal storage.
func (h *HashOffsets) Get(hash int32, col int) ([]int32, bool) {
	c := h.columns[col]
	idx := c.findSlot(hash)
	if c.states[idx] == slotEmpty {
		return nil, false
	}
	return c.offsets[idx], true
}

// Len returns the count of distinct (col, hash) keys across all columns.
func (h *HashOffsets) Len() int {
	total := 0
	for _, c := range h.columns {
		total += c.count
	}
	return total
}

// Snapshot returns a deep copy of one column's contents, for tests and the
// CLI's info command. Not used on any read/write hot path.
func (h *HashOffsets) Snapshot(col int) map[int32][]int32 {
	c := h.columns[col]
	out := make(map[int32][]int32, c.count)
	for i, state := range c.states {
		if state != slotFull {
			continue
		}
		cp := make([]int32, len(c.offsets[i]))
		copy(cp, c.offsets[i])
		out[c.keys[i]] = cp
	}
	return out
}

// findSlot returns the slot index for hash under linear probing: either the
// slot already holding hash, or the first empty slot on its probe sequence.
func (c *column) findSlot(hash int32) int {
	mask := len(c.states) - 1
	idx := int(uint32(hash)) & mask
	for {
		if c.states[idx] == slotEmpty || c.keys[idx] == hash {
			return idx
		}
		idx = (idx + 1) & mask
	}
}

func (c *column) growIfNeeded() {
	if float64(c.count+1) <= float64(len(c.states))*maxLoadFactor {
		return
	}

	oldKeys, oldStates, oldOffsets := c.keys, c.states, c.offsets
	newCap := len(c.states) * growthFactor

	c.states = make([]slotState, newCap)
	c.keys = make([]int32, newCap)
	c.offsets = make([][]int32, newCap)
	c.count = 0

	for i, state := range oldStates {
		if state != slotFull {
			continue
		}
		idx := c.findSlot(oldKeys[i])
		c.states[idx] = slotFull
		c.keys[idx] = oldKeys[i]
		c.offsets[idx] = oldOffsets[i]
		c.count++
	}
}
