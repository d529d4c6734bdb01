// Package table implements the Table engine: the orchestrator that ties
// HashOffsets, the per-topic value cache, and the optional time index to an
// external logengine.Engine, providing point reads, batched writes,
// tombstone removes, and streaming scans over a fixed set of named topics.
//
// Grounded on iamNilotpal-ignite/internal/engine/engine.go for the overall
// shape of a constructor that fans out parallel startup work and joins it
// with go.uber.org/multierr, and for holding a single sync.RWMutex across
// every mutable structure rather than one lock per topic.
package table

import (
	"bytes"
	"context"
	"encoding/binary"
	"sync"
	"sync/atomic"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	topicdexerrors "github.com/arvindmenon/topicdex/pkg/errors"
	"github.com/arvindmenon/topicdex/internal/hashoffsets"
	"github.com/arvindmenon/topicdex/internal/offsetcodec"
	"github.com/arvindmenon/topicdex/internal/timeindex"
	"github.com/arvindmenon/topicdex/internal/valuecache"
	"github.com/arvindmenon/topicdex/pkg/keyhash"
	"github.com/arvindmenon/topicdex/pkg/logengine"
	"github.com/arvindmenon/topicdex/pkg/options"
)

// topicSet is the four physical log names backing one declared topic.
type topicSet struct {
	name      string // T
	post      string // T~
	index     string // T_idx
	postIndex string // T~_idx
	column    int
}

// KeyValue is one input record to Write/WriteSnap/WritePost.
type KeyValue struct {
	Key       []byte
	Value     []byte
	Timestamp int64 // < 0 means unset
}

// Found pairs a read's resulting value with whether the key was present.
type Found struct {
	Value     []byte
	Timestamp int64
	Present   bool
}

// Table is the hash-indexed key/value overlay. All exported methods are
// safe for concurrent use.
type Table struct {
	mu sync.RWMutex

	engine    logengine.Engine
	hasher    keyhash.Func
	fetchMax  int
	compress  logengine.Compression
	topics    []topicSet
	byName    map[string]int // topic name (any of the four physical names' logical owner) -> column

	offsets *hashoffsets.HashOffsets
	caches  []*valuecache.Cache
	times   *timeindex.TimeIndex

	log    *zap.SugaredLogger
	closed atomic.Bool
}

// New constructs a Table over engine for the topics named in opts, loading
// the in-memory index from the on-disk index logs before returning.
func New(ctx context.Context, engine logengine.Engine, opts options.Options, log *zap.SugaredLogger) (*Table, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if len(opts.Topics) == 0 {
		return nil, topicdexerrors.NewRequiredFieldError("Topics")
	}

	t := &Table{
		engine:   engine,
		hasher:   opts.KeyHasher,
		fetchMax: opts.FetchMaxBytes,
		compress: logengine.Compression(opts.Compression),
		byName:   make(map[string]int, len(opts.Topics)),
		log:      log,
	}
	if t.hasher == nil {
		t.hasher = keyhash.XXHash32
	}

	t.topics = make([]topicSet, len(opts.Topics))
	t.caches = make([]*valuecache.Cache, len(opts.Topics))
	for i, name := range opts.Topics {
		t.topics[i] = topicSet{
			name:      name,
			post:      name + "~",
			index:     name + "_idx",
			postIndex: name + "~_idx",
			column:    i,
		}
		t.byName[name] = i
		t.caches[i] = valuecache.New(opts.CacheSize)
	}

	t.offsets = hashoffsets.New(len(t.topics))
	t.times = timeindex.New(opts.WithTimeToKey)

	if err := t.loadIndexes(ctx); err != nil {
		return nil, err
	}

	log.Infow("table ready", "topics", opts.Topics, "cacheSize", opts.CacheSize)
	return t, nil
}

// loadIndexes fans out one loader per column's two index logs plus one
// time-index loader over column 0's data logs, and joins them all. The
// time-index loader's own two passes (snapshot then post) run sequentially
// rather than in parallel, so that on a timestamp collision between the two
// files the post file's write is observed last and wins, as spec'd.
func (t *Table) loadIndexes(ctx context.Context) error {
	if len(t.topics) == 0 {
		return nil
	}

	var wg sync.WaitGroup
	errs := make([]error, len(t.topics)+1)

	for i, ts := range t.topics {
		wg.Add(1)
		go func(i int, ts topicSet) {
			defer wg.Done()
			errs[i] = t.loadColumnIndex(ctx, ts)
		}(i, ts)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		errs[len(t.topics)] = t.loadTimeIndex(ctx, t.topics[0])
	}()
	wg.Wait()

	return multierr.Combine(errs...)
}

// loadColumnIndex streams (hash, raw_offset) pairs from T_idx (selector 0)
// then T~_idx (selector 1), inserting each into HashOffsets[column].
func (t *Table) loadColumnIndex(ctx context.Context, ts topicSet) error {
	for _, step := range []struct {
		sel   offsetcodec.FileSelector
		topic string
	}{
		{offsetcodec.Snapshot, ts.index},
		{offsetcodec.Post, ts.postIndex},
	} {
		err := t.engine.IterateOver(ctx, step.topic, 0, t.fetchMax, func(_ int64, rec logengine.Record) error {
			if len(rec.Key) != 4 || len(rec.Value) != 4 {
				return nil
			}
			hash := int32(binary.BigEndian.Uint32(rec.Key))
			raw := int64(binary.BigEndian.Uint32(rec.Value))
			t.offsets.Put(hash, offsetcodec.ToMixed(step.sel, raw), ts.column)
			return nil
		})
		if err != nil {
			return topicdexerrors.NewIndexLoadError(step.topic, ts.column, err)
		}
	}
	return nil
}

// loadTimeIndex streams the data logs of column 0 (not the index logs) in
// selector order 0 then 1, feeding every (key, value, ts) pair with both
// key and value present into the time index.
func (t *Table) loadTimeIndex(ctx context.Context, ts topicSet) error {
	for _, physicalTopic := range []string{ts.name, ts.post} {
		err := t.engine.IterateOver(ctx, physicalTopic, 0, t.fetchMax, func(_ int64, rec logengine.Record) error {
			if !rec.HasValue || len(rec.Key) == 0 {
				return nil
			}
			t.times.Put(rec.Timestamp, rec.Key)
			return nil
		})
		if err != nil {
			return topicdexerrors.NewIndexLoadError(physicalTopic, ts.column, err)
		}
	}
	return nil
}

func (t *Table) columnOf(topic string) (int, error) {
	col, ok := t.byName[topic]
	if !ok {
		return 0, topicdexerrors.NewUnknownTopicError(topic, "")
	}
	return col, nil
}

func (t *Table) physicalTopic(sel offsetcodec.FileSelector, col int) string {
	if sel == offsetcodec.Post {
		return t.topics[col].post
	}
	return t.topics[col].name
}

func (t *Table) indexTopic(sel offsetcodec.FileSelector, col int) string {
	if sel == offsetcodec.Post {
		return t.topics[col].postIndex
	}
	return t.topics[col].index
}

func (t *Table) checkOpen(op string) error {
	if t.closed.Load() {
		return topicdexerrors.NewTableClosedError(op)
	}
	return nil
}

// Close marks the Table closed. It is idempotent and does not close the
// underlying log engine, which the Table does not own.
func (t *Table) Close() error {
	t.closed.Store(true)
	return nil
}

// Read resolves key under topic, consulting the cache first, then scanning
// HashOffsets candidates newest-first. When bypassCache is true the cache is
// neither consulted nor updated.
func (t *Table) Read(ctx context.Context, key []byte, topic string, bypassCache bool) (Found, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if err := t.checkOpen("Read"); err != nil {
		return Found{}, err
	}

	col, err := t.columnOf(topic)
	if err != nil {
		return Found{}, err
	}
	kh := t.hasher(key)

	if !bypassCache {
		// A cache hit whose stored key doesn't match is a hash collision
		// surfacing another key's entry; fall through to the HashOffsets
		// scan rather than returning the wrong value.
		if e, ok := t.caches[col].Get(kh); ok && bytes.Equal(e.Key, key) {
			return Found{Value: e.Value, Timestamp: e.Timestamp, Present: true}, nil
		}
	}

	offsets, ok := t.offsets.Get(kh, col)
	if !ok {
		return Found{}, nil
	}

	for i := len(offsets) - 1; i >= 0; i-- {
		sel, raw := offsetcodec.FromMixed(offsets[i])
		physical := t.physicalTopic(sel, col)

		results, err := t.engine.Fetch(ctx, physical, raw, t.fetchMax)
		if err != nil {
			return Found{}, topicdexerrors.NewTableError(err, topicdexerrors.ErrorCodeIO, "fetch failed during read").
				WithTopic(physical).WithOperation("Read").WithKeyHash(kh)
		}

		rec, found := matchRecord(results, raw, key)
		if !found {
			continue
		}

		if !rec.HasValue {
			return Found{}, nil
		}

		if !bypassCache {
			t.caches[col].Put(kh, valuecache.Entry{Key: key, Value: rec.Value, Timestamp: rec.Timestamp, MixedOffset: offsets[i]})
		}
		return Found{Value: rec.Value, Timestamp: rec.Timestamp, Present: true}, nil
	}

	return Found{}, nil
}

// matchRecord scans a fetch result for the record at exactly offset whose
// key equals key. A record present at offset with a different key is a
// hash collision and is not a match.
func matchRecord(results []logengine.FetchResult, offset int64, key []byte) (logengine.Record, bool) {
	for _, fr := range results {
		if fr.Err != nil {
			continue
		}
		for _, rec := range fr.Records {
			if rec.Offset == offset && bytes.Equal(rec.Key, key) {
				return rec, true
			}
		}
	}
	return logengine.Record{}, false
}

// GetKeyByTime returns the key most recently written at timestamp ts.
func (t *Table) GetKeyByTime(ts int64) ([]byte, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.times.Get(ts)
}

// CacheStats reports the strict-FIFO value cache's hit rate, miss rate, and
// read count for topic.
type CacheStats struct {
	HitRate   float64
	MissRate  float64
	ReadCount int64
}

// CacheStatsFor returns the current cache statistics for topic.
func (t *Table) CacheStatsFor(topic string) (CacheStats, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	col, err := t.columnOf(topic)
	if err != nil {
		return CacheStats{}, err
	}
	c := t.caches[col]
	return CacheStats{HitRate: c.HitRate(), MissRate: c.MissRate(), ReadCount: c.ReadCount()}, nil
}

// IndexSnapshot returns a deep copy of topic's in-memory hash index, mapping
// each key hash to its ordered list of mixed offsets. It is intended for
// diagnostics (the shell's info command) and for tests that need to compare
// the index across a reload; it is never used on a read/write hot path.
func (t *Table) IndexSnapshot(topic string) (map[int32][]int32, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	col, err := t.columnOf(topic)
	if err != nil {
		return nil, err
	}
	return t.offsets.Snapshot(col), nil
}

// ResetCacheStats zeroes topic's cache hit/miss/read counters.
func (t *Table) ResetCacheStats(topic string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	col, err := t.columnOf(topic)
	if err != nil {
		return err
	}
	t.caches[col].ResetHitRate()
	return nil
}

// IterateOver streams every record in topic from fromOffset, invoking op
// once per record.
func (t *Table) IterateOver(ctx context.Context, topic string, fromOffset int64, op logengine.VisitFunc) error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if err := t.checkOpen("IterateOver"); err != nil {
		return err
	}
	if _, err := t.columnOf(topic); err != nil {
		return err
	}
	return t.engine.IterateOver(ctx, topic, fromOffset, t.fetchMax, op)
}

// ReadOnce reads a single batch from topic starting at fromOffset.
func (t *Table) ReadOnce(ctx context.Context, topic string, fromOffset int64, op logengine.VisitFunc) error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if err := t.checkOpen("ReadOnce"); err != nil {
		return err
	}
	if _, err := t.columnOf(topic); err != nil {
		return err
	}
	return t.engine.ReadOnce(ctx, topic, fromOffset, t.fetchMax, op)
}
