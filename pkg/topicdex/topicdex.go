// Package topicdex is the public entry point for the hash-indexed key/value
// overlay: it wires a caller-supplied logengine.Engine and a set of
// functional options into an internal/table.Table and exposes every Table
// operation as a method on Instance.
package topicdex

import (
	"context"

	"github.com/arvindmenon/topicdex/internal/table"
	"github.com/arvindmenon/topicdex/pkg/logengine"
	"github.com/arvindmenon/topicdex/pkg/logger"
	"github.com/arvindmenon/topicdex/pkg/options"
)

// Instance is the primary entry point for interacting with a topicdex
// table: reading and writing keys, removing them, scanning topics, and
// looking up the most recently written key at a timestamp.
type Instance struct {
	table   *table.Table
	options *options.Options
}

// NewInstance builds the in-memory index from engine's on-disk index logs
// and returns a ready-to-use Instance. service names the structured logger
// this instance reports under.
func NewInstance(ctx context.Context, service string, engine logengine.Engine, opts ...options.OptionFunc) (*Instance, error) {
	log, err := logger.New(service)
	if err != nil {
		return nil, err
	}

	resolved := options.NewDefaultOptions()
	for _, opt := range opts {
		opt(&resolved)
	}

	tbl, err := table.New(ctx, engine, resolved, log)
	if err != nil {
		return nil, err
	}

	return &Instance{table: tbl, options: &resolved}, nil
}

// Read resolves key under topic. When bypassCache is true, the value cache
// is neither consulted nor updated.
func (i *Instance) Read(ctx context.Context, key []byte, topic string, bypassCache bool) (table.Found, error) {
	return i.table.Read(ctx, key, topic, bypassCache)
}

// Write appends kvs to topic's snapshot file. Equivalent to WriteSnap.
func (i *Instance) Write(ctx context.Context, kvs []table.KeyValue, topic string) (int, error) {
	return i.table.WriteSnap(ctx, kvs, topic)
}

// WriteSnap appends kvs to topic's snapshot file.
func (i *Instance) WriteSnap(ctx context.Context, kvs []table.KeyValue, topic string) (int, error) {
	return i.table.WriteSnap(ctx, kvs, topic)
}

// WritePost appends kvs to topic's post file.
func (i *Instance) WritePost(ctx context.Context, kvs []table.KeyValue, topic string) (int, error) {
	return i.table.WritePost(ctx, kvs, topic)
}

// Remove appends tombstones for keys under topic and evicts their cache
// entries.
func (i *Instance) Remove(ctx context.Context, keys [][]byte, topic string) error {
	return i.table.Remove(ctx, keys, topic)
}

// IterateOver streams every record in topic from fromOffset, invoking op
// once per record.
func (i *Instance) IterateOver(ctx context.Context, topic string, fromOffset int64, op logengine.VisitFunc) error {
	return i.table.IterateOver(ctx, topic, fromOffset, op)
}

// ReadOnce reads a single batch from topic starting at fromOffset.
func (i *Instance) ReadOnce(ctx context.Context, topic string, fromOffset int64, op logengine.VisitFunc) error {
	return i.table.ReadOnce(ctx, topic, fromOffset, op)
}

// GetKeyByTime returns the key most recently written at timestamp ts.
func (i *Instance) GetKeyByTime(ts int64) ([]byte, bool) {
	return i.table.GetKeyByTime(ts)
}

// CacheStats returns the value cache's hit rate, miss rate, and read count
// for topic.
func (i *Instance) CacheStats(topic string) (table.CacheStats, error) {
	return i.table.CacheStatsFor(topic)
}

// ResetCacheStats zeroes topic's cache hit/miss/read counters.
func (i *Instance) ResetCacheStats(topic string) error {
	return i.table.ResetCacheStats(topic)
}

// IndexSnapshot returns a deep copy of topic's in-memory hash index, mapping
// each key hash to its ordered list of mixed offsets. Intended for the
// shell's info command and for tests comparing the index across a reload.
func (i *Instance) IndexSnapshot(topic string) (map[int32][]int32, error) {
	return i.table.IndexSnapshot(topic)
}

// Close releases the Instance. It does not close the underlying log
// engine, which the caller owns.
func (i *Instance) Close(ctx context.Context) error {
	return i.table.Close()
}
