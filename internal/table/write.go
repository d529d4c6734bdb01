package table

import (
	"bytes"
	"context"
	"encoding/binary"

	topicdexerrors "github.com/arvindmenon/topicdex/pkg/errors"
	"github.com/arvindmenon/topicdex/internal/offsetcodec"
	"github.com/arvindmenon/topicdex/internal/valuecache"
	"github.com/arvindmenon/topicdex/pkg/logengine"
)

// pendingWrite is a surviving (non-elided) input paired with its key hash
// and, when known, the mixed offset it is replacing in HashOffsets.
type pendingWrite struct {
	kv      KeyValue
	hash    int32
	prevMix int32
	hadPrev bool
}

// WriteSnap writes kvs to topic's snapshot file. Equivalent to
// Write(ctx, kvs, topic, offsetcodec.Snapshot).
func (t *Table) WriteSnap(ctx context.Context, kvs []KeyValue, topic string) (int, error) {
	return t.Write(ctx, kvs, topic, offsetcodec.Snapshot)
}

// WritePost writes kvs to topic's post file. Equivalent to
// Write(ctx, kvs, topic, offsetcodec.Post).
func (t *Table) WritePost(ctx context.Context, kvs []KeyValue, topic string) (int, error) {
	return t.Write(ctx, kvs, topic, offsetcodec.Post)
}

// Write appends kvs to topic under the given file selector, eliding any
// record whose value is byte-equal to the cache's current value for that
// key, and returns the number of index records written (i.e. the number of
// records that survived elision).
func (t *Table) Write(ctx context.Context, kvs []KeyValue, topic string, selector offsetcodec.FileSelector) (int, error) {
	if len(kvs) == 0 {
		return 0, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.checkOpen("Write"); err != nil {
		return 0, err
	}

	col, err := t.columnOf(topic)
	if err != nil {
		return 0, err
	}
	cache := t.caches[col]

	// Collected in reverse input order, matching the prepend-on-list
	// pattern this behavior was distilled from; offsets assigned by the
	// log engine must line up with this order when updating the index.
	var pending []pendingWrite
	for i := len(kvs) - 1; i >= 0; i-- {
		kv := kvs[i]
		hash := t.hasher(kv.Key)

		// The cache is keyed by hash alone, so a collision can surface an
		// entry belonging to a different key. Elision and in-place
		// HashOffsets replacement must only trust a cache hit that is
		// verified to be for this exact key; a hash-only match is treated
		// as no prior entry, matching the hash-collision-tolerance
		// invariant at the cost of replaying the write to HashOffsets.
		cached, hasCached := cache.Get(hash)
		sameKey := hasCached && bytes.Equal(cached.Key, kv.Key)

		if sameKey && bytes.Equal(cached.Value, kv.Value) {
			continue
		}

		pw := pendingWrite{kv: kv, hash: hash}
		if sameKey {
			pw.prevMix = cached.MixedOffset
			pw.hadPrev = true
		}
		pending = append(pending, pw)
	}

	if len(pending) == 0 {
		return 0, nil
	}

	physical := t.physicalTopic(selector, col)
	records := make([]logengine.Record, len(pending))
	for i, pw := range pending {
		records[i] = logengine.Record{
			Key:      pw.kv.Key,
			Value:    pw.kv.Value,
			HasValue: true,
		}
		if pw.kv.Timestamp >= 0 {
			records[i].Timestamp = pw.kv.Timestamp
		} else {
			records[i].Timestamp = 0
		}
	}

	results, err := t.engine.Append(ctx, physical, records, t.compress)
	if err != nil {
		t.log.Errorw("write append failed", "topic", physical, "error", err)
		return 0, nil
	}
	if len(results) == 0 || results[0].Err != nil {
		if len(results) > 0 {
			t.log.Errorw("write append failed", "topic", physical, "error", results[0].Err)
		}
		return 0, nil
	}

	info := results[0].Info
	if info.NumMessages == 0 {
		return 0, nil
	}
	if info.LastOffset != info.FirstOffset+int64(len(pending))-1 {
		return 0, topicdexerrors.NewTableError(nil, topicdexerrors.ErrorCodeLogProtocolViolation,
			"log engine returned an offset range inconsistent with the appended batch size").
			WithTopic(physical).WithOperation("Write")
	}
	if info.LastOffset > offsetcodec.MaxRawOffset {
		return 0, topicdexerrors.NewOffsetOverflowError(physical, info.LastOffset)
	}

	indexRecords := make([]logengine.Record, len(pending))
	for i, pw := range pending {
		raw := info.FirstOffset + int64(i)
		mixed := offsetcodec.ToMixed(selector, raw)

		if pw.hadPrev {
			t.offsets.Replace(pw.hash, pw.prevMix, mixed, col)
		} else {
			t.offsets.Put(pw.hash, mixed, col)
		}
		cache.Put(pw.hash, valuecache.Entry{Key: pw.kv.Key, Value: pw.kv.Value, Timestamp: records[i].Timestamp, MixedOffset: mixed})

		if pw.kv.Timestamp >= 0 {
			t.times.Put(pw.kv.Timestamp, pw.kv.Key)
		}

		var hashBuf, offBuf [4]byte
		binary.BigEndian.PutUint32(hashBuf[:], uint32(pw.hash))
		binary.BigEndian.PutUint32(offBuf[:], uint32(raw))
		indexRecords[i] = logengine.Record{Key: hashBuf[:], Value: offBuf[:], HasValue: true}
	}

	indexTopic := t.indexTopic(selector, col)
	if _, err := t.engine.Append(ctx, indexTopic, indexRecords, logengine.CompressionNone); err != nil {
		t.log.Errorw("index mirror append failed", "topic", indexTopic, "error", err)
	}

	return len(pending), nil
}
