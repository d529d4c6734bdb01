// Package valuecache implements the per-topic bounded value cache sitting in
// front of the log. Eviction is strict insertion order — oldest key in, first
// key out — regardless of how often or how recently a key has been read.
// This is a deliberately simpler policy than an LRU or a frequency-aware
// cache like S3-FIFO: write-elision (a write whose value matches the cached
// value is skipped entirely) depends on the cache reliably aging out cold
// keys rather than keeping hot ones resident indefinitely, so promoting on
// access would change which writes get elided.
package valuecache

// Entry is the value stored per key hash. Key carries the full key bytes
// that produced this hash, so callers that need to disambiguate a hash
// collision (the Table's write path, when deciding whether a cached entry
// describes the same key it's about to overwrite) don't have to trust the
// hash alone.
type Entry struct {
	Key         []byte
	Value       []byte
	Timestamp   int64
	MixedOffset int32
}

// Cache is a strict-FIFO, bounded, single-topic value cache.
type Cache struct {
	capacity int
	entries  map[int32]Entry
	order    []int32 // ring buffer of keys in insertion order
	head     int     // index of the oldest key in order
	size     int

	hits   int64
	misses int64
	reads  int64
}

// New creates a Cache bounded at capacity entries. capacity must be > 0.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = 1
	}
	return &Cache{
		capacity: capacity,
		entries:  make(map[int32]Entry, capacity),
		order:    make([]int32, capacity),
	}
}

// Get returns the cached entry for hash, if present, and counts the lookup
// toward hit/miss statistics.
func (c *Cache) Get(hash int32) (Entry, bool) {
	c.reads++
	e, ok := c.entries[hash]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return e, ok
}

// Put inserts or overwrites the entry for hash. Overwriting an existing key
// does not change its position in FIFO order; a brand-new key is appended at
// the tail and, if the cache is full, evicts the oldest key.
func (c *Cache) Put(hash int32, e Entry) {
	if _, exists := c.entries[hash]; exists {
		c.entries[hash] = e
		return
	}

	if c.size == c.capacity {
		evict := c.order[c.head]
		delete(c.entries, evict)
		c.head = (c.head + 1) % c.capacity
		c.size--
	}

	tail := (c.head + c.size) % c.capacity
	c.order[tail] = hash
	c.size++
	c.entries[hash] = e
}

// Remove evicts the given key hashes from the cache, if present, and
// compacts the FIFO order so head/size stay consistent with entries —
// otherwise a later Put's eviction would read a stale pre-Remove slot
// instead of the true oldest surviving key.
func (c *Cache) Remove(hashes ...int32) {
	removing := make(map[int32]struct{}, len(hashes))
	for _, h := range hashes {
		if _, ok := c.entries[h]; ok {
			removing[h] = struct{}{}
			delete(c.entries, h)
		}
	}
	if len(removing) == 0 {
		return
	}

	compacted := c.order[:0:0]
	for i := 0; i < c.size; i++ {
		h := c.order[(c.head+i)%c.capacity]
		if _, gone := removing[h]; gone {
			continue
		}
		compacted = append(compacted, h)
	}

	c.head = 0
	c.size = len(compacted)
	copy(c.order, compacted)
}

// HitRate returns the fraction of Get calls that found a cached entry since
// construction or the last ResetHitRate.
func (c *Cache) HitRate() float64 {
	if c.reads == 0 {
		return 0
	}
	return float64(c.hits) / float64(c.reads)
}

// MissRate returns the fraction of Get calls that found no cached entry
// since construction or the last ResetHitRate. With no Get calls, both
// MissRate and HitRate are 0.
func (c *Cache) MissRate() float64 {
	if c.reads == 0 {
		return 0
	}
	return float64(c.misses) / float64(c.reads)
}

// ReadCount returns the total number of Get calls since construction or the
// last ResetHitRate.
func (c *Cache) ReadCount() int64 {
	return c.reads
}

// ResetHitRate zeroes the hit/miss/read counters without touching cache
// contents.
func (c *Cache) ResetHitRate() {
	c.hits = 0
	c.misses = 0
	c.reads = 0
}
