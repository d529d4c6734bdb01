package table

import (
	"context"
	"encoding/binary"

	"github.com/arvindmenon/topicdex/internal/offsetcodec"
	topicdexerrors "github.com/arvindmenon/topicdex/pkg/errors"
	"github.com/arvindmenon/topicdex/pkg/logengine"
)

// Remove appends a tombstone for each key under topic's post file,
// regardless of which file the key's prior writes landed in, and evicts
// each key's cache entry. Tombstone mixed offsets are always appended to
// HashOffsets, never replacing a prior entry: reclaiming the offsets of a
// removed key is not attempted here, matching the behavior this was
// distilled from.
func (t *Table) Remove(ctx context.Context, keys [][]byte, topic string) error {
	if len(keys) == 0 {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.checkOpen("Remove"); err != nil {
		return err
	}

	col, err := t.columnOf(topic)
	if err != nil {
		return err
	}
	cache := t.caches[col]

	hashes := make([]int32, len(keys))
	for i, k := range keys {
		hashes[i] = t.hasher(k)
	}
	cache.Remove(hashes...)

	records := make([]logengine.Record, len(keys))
	for i, k := range keys {
		records[i] = logengine.Record{Key: k, HasValue: false}
	}

	postTopic := t.topics[col].post
	results, err := t.engine.Append(ctx, postTopic, records, t.compress)
	if err != nil {
		t.log.Errorw("remove append failed", "topic", postTopic, "error", err)
		return nil
	}
	if len(results) == 0 || results[0].Err != nil {
		if len(results) > 0 {
			t.log.Errorw("remove append failed", "topic", postTopic, "error", results[0].Err)
		}
		return nil
	}

	info := results[0].Info
	if info.NumMessages == 0 {
		return nil
	}
	if info.LastOffset > offsetcodec.MaxRawOffset {
		return topicdexerrors.NewOffsetOverflowError(postTopic, info.LastOffset)
	}

	indexRecords := make([]logengine.Record, len(keys))
	for i, h := range hashes {
		raw := info.FirstOffset + int64(i)
		mixed := offsetcodec.ToMixed(offsetcodec.Post, raw)
		t.offsets.Put(h, mixed, col)

		var hashBuf, offBuf [4]byte
		binary.BigEndian.PutUint32(hashBuf[:], uint32(h))
		binary.BigEndian.PutUint32(offBuf[:], uint32(raw))
		indexRecords[i] = logengine.Record{Key: hashBuf[:], Value: offBuf[:], HasValue: true}
	}

	postIndexTopic := t.topics[col].postIndex
	if _, err := t.engine.Append(ctx, postIndexTopic, indexRecords, logengine.CompressionNone); err != nil {
		t.log.Errorw("index mirror append failed", "topic", postIndexTopic, "error", err)
	}

	return nil
}
