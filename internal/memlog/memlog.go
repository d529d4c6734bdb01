// Package memlog is a file-backed implementation of logengine.Engine,
// grounded on iamNilotpal-ignite's internal/storage segment bootstrap
// (O_CREATE|O_RDWR, recover-then-seek-to-end) but simplified to a single
// append-only file per physical topic: this engine has no segment rotation
// or compaction, since that lifecycle belongs to the external log-engine
// service the Table is designed against, not to this in-repo stand-in used
// by tests and the CLI.
package memlog

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/klauspost/compress/s2"
	"go.uber.org/zap"

	topicdexerrors "github.com/arvindmenon/topicdex/pkg/errors"
	"github.com/arvindmenon/topicdex/pkg/filesys"
	"github.com/arvindmenon/topicdex/pkg/logengine"
)

// partition is the only partition memlog ever reports. The Table's
// AppendResult/FetchResult plumbing is partition-aware to match a real
// multi-partition engine; memlog's single-file-per-topic model always
// reports partition 0.
const partition = int32(0)

// Store is a file-backed logengine.Engine. Each topic is one append-only
// file under dir; topics are created lazily on first Append or Fetch.
type Store struct {
	dir string
	log *zap.SugaredLogger

	mu     sync.Mutex
	topics map[string]*topicFile
}

// Open creates dir if needed and returns a Store rooted there. Existing
// topic files under dir are not pre-scanned; each is recovered lazily the
// first time it's touched.
func Open(dir string, log *zap.SugaredLogger) (*Store, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	existed, _ := filesys.Exists(dir)
	if err := filesys.CreateDir(dir, 0755, true); err != nil {
		return nil, topicdexerrors.ClassifyDirectoryCreationError(err, dir)
	}
	log.Debugw("store opened", "dir", dir, "existed", existed)

	return &Store{
		dir:    dir,
		log:    log,
		topics: make(map[string]*topicFile),
	}, nil
}

func (s *Store) topicFor(name string) (*topicFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tf, ok := s.topics[name]; ok {
		return tf, nil
	}

	tf, err := openTopicFile(s.dir, name, s.log)
	if err != nil {
		return nil, err
	}
	s.topics[name] = tf
	return tf, nil
}

// Append implements logengine.Engine.
func (s *Store) Append(ctx context.Context, topic string, records []logengine.Record, compression logengine.Compression) ([]logengine.AppendResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []logengine.AppendResult{{Partition: partition, Info: logengine.AppendInfo{}}}, nil
	}

	tf, err := s.topicFor(topic)
	if err != nil {
		return nil, err
	}

	batchID := uuid.NewString()
	encoded := make([]encodedRecord, len(records))
	for i, rec := range records {
		value := rec.Value
		compressed := compression == logengine.CompressionSnappy && rec.HasValue && len(value) > 0
		if compressed {
			value = s2.Encode(nil, value)
		}
		encoded[i] = encodedRecord{Key: rec.Key, Value: value, Timestamp: rec.Timestamp, HasValue: rec.HasValue, Compressed: compressed}
	}

	first, last, err := tf.append(encoded)
	if err != nil {
		s.log.Errorw("append failed", "batchId", batchID, "topic", topic, "error", err)
		return []logengine.AppendResult{{Partition: partition, Err: err}}, err
	}

	s.log.Debugw("appended batch", "batchId", batchID, "topic", topic, "firstOffset", first, "lastOffset", last, "count", len(records))

	return []logengine.AppendResult{{
		Partition: partition,
		Info: logengine.AppendInfo{
			FirstOffset: first,
			LastOffset:  last,
			NumMessages: int32(len(records)),
		},
	}}, nil
}

// Fetch implements logengine.Engine.
func (s *Store) Fetch(ctx context.Context, topic string, offset int64, maxBytes int) ([]logengine.FetchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tf, err := s.topicFor(topic)
	if err != nil {
		return nil, err
	}

	decoded, err := tf.readRange(offset, maxBytes)
	if err != nil {
		return []logengine.FetchResult{{Partition: partition, Err: err}}, err
	}

	records := make([]logengine.Record, len(decoded))
	for i, d := range decoded {
		rec, err := toRecord(offset+int64(i), d)
		if err != nil {
			return []logengine.FetchResult{{Partition: partition, Err: err}}, err
		}
		records[i] = rec
	}

	return []logengine.FetchResult{{Partition: partition, Records: records}}, nil
}

// IterateOver implements logengine.Engine.
func (s *Store) IterateOver(ctx context.Context, topic string, fromOffset int64, maxBytes int, op logengine.VisitFunc) error {
	tf, err := s.topicFor(topic)
	if err != nil {
		return err
	}

	offset := fromOffset
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		decoded, err := tf.readRange(offset, maxBytes)
		if err != nil {
			return err
		}
		if len(decoded) == 0 {
			return nil
		}

		for i, d := range decoded {
			rec, err := toRecord(offset+int64(i), d)
			if err != nil {
				return err
			}
			if err := op(offset+int64(i), rec); err != nil {
				return err
			}
		}

		offset += int64(len(decoded))
	}
}

// ReadOnce implements logengine.Engine.
func (s *Store) ReadOnce(ctx context.Context, topic string, fromOffset int64, maxBytes int, op logengine.VisitFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tf, err := s.topicFor(topic)
	if err != nil {
		return err
	}

	decoded, err := tf.readRange(fromOffset, maxBytes)
	if err != nil {
		return err
	}

	for i, d := range decoded {
		rec, err := toRecord(fromOffset+int64(i), d)
		if err != nil {
			return err
		}
		if err := op(fromOffset+int64(i), rec); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every topic file this Store has opened.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	for name, tf := range s.topics {
		if err := tf.close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("memlog: failed to close topic %q: %w", name, err)
		}
	}
	return firstErr
}

// RecordCount returns the number of records stored for topic, creating it
// (empty) if it doesn't exist yet. Exposed for tests; the Table never calls
// this.
func (s *Store) RecordCount(topic string) (int64, error) {
	tf, err := s.topicFor(topic)
	if err != nil {
		return 0, err
	}
	return tf.recordCount(), nil
}

func toRecord(offset int64, d decodedRecord) (logengine.Record, error) {
	value := d.Value
	if d.Compressed {
		decoded, err := s2.Decode(nil, value)
		if err != nil {
			return logengine.Record{}, topicdexerrors.NewLogError(err, topicdexerrors.ErrorCodeLogCorrupted, "failed to decompress record value").
				WithOffset(offset)
		}
		value = decoded
	}

	return logengine.Record{
		Offset:    offset,
		Key:       d.Key,
		Value:     value,
		Timestamp: d.Timestamp,
		HasValue:  d.HasValue,
	}, nil
}

var _ logengine.Engine = (*Store)(nil)
