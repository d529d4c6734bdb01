package memlog

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	topicdexerrors "github.com/arvindmenon/topicdex/pkg/errors"
)

// topicFile is a single append-only file backing one physical topic. It
// keeps an in-memory index of byte offsets per record, rebuilt by a single
// forward scan at open time, so Fetch can seek directly to a candidate
// record instead of re-scanning from the start of the file on every read.
type topicFile struct {
	mu sync.Mutex

	path      string
	file      *os.File
	positions []int64 // positions[i] = byte offset of record i
	size      int64   // current file size in bytes
	log       *zap.SugaredLogger
}

func openTopicFile(dir, topic string, log *zap.SugaredLogger) (*topicFile, error) {
	path := filepath.Join(dir, topic+".log")

	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, topicdexerrors.ClassifyFileOpenError(err, path, filepath.Base(path))
	}

	tf := &topicFile{path: path, file: file, log: log}
	if err := tf.recover(); err != nil {
		file.Close()
		return nil, err
	}

	if _, err := file.Seek(tf.size, io.SeekStart); err != nil {
		file.Close()
		return nil, topicdexerrors.NewLogError(err, topicdexerrors.ErrorCodeIO, "failed to seek to end of log file").
			WithTopic(topic).WithPath(path)
	}

	log.Debugw("opened topic file", "topic", topic, "path", path, "records", len(tf.positions))
	return tf, nil
}

// recover scans the file once from the start, rebuilding the position index
// and determining the next record's offset (len(positions)).
func (tf *topicFile) recover() error {
	if _, err := tf.file.Seek(0, io.SeekStart); err != nil {
		return topicdexerrors.NewLogError(err, topicdexerrors.ErrorCodeIO, "failed to seek to start for recovery").
			WithPath(tf.path)
	}

	r := bufio.NewReader(tf.file)
	var pos int64
	for {
		rec, err := decodeRecord(r)
		if err == io.EOF {
			break
		}
		if err != nil {
			return topicdexerrors.NewLogError(err, topicdexerrors.ErrorCodeLogCorrupted, "failed to recover log file: truncated or corrupt record").
				WithPath(tf.path).
				WithOffset(pos)
		}

		tf.positions = append(tf.positions, pos)
		pos += int64(rec.Size)
	}

	tf.size = pos
	return nil
}

// append writes records sequentially starting at the current tail, returning
// the raw offset (record index) assigned to the first one.
func (tf *topicFile) append(records []encodedRecord) (firstOffset int64, lastOffset int64, err error) {
	tf.mu.Lock()
	defer tf.mu.Unlock()

	firstOffset = int64(len(tf.positions))
	w := bufio.NewWriter(tf.file)

	for _, rec := range records {
		tf.positions = append(tf.positions, tf.size)
		n, encErr := encodeRecord(w, rec.Key, rec.Value, rec.Timestamp, rec.HasValue, rec.Compressed)
		if encErr != nil {
			return 0, 0, topicdexerrors.NewLogError(encErr, topicdexerrors.ErrorCodeIO, "failed to encode record").
				WithPath(tf.path)
		}
		tf.size += int64(n)
	}

	if err := w.Flush(); err != nil {
		return 0, 0, topicdexerrors.ClassifySyncError(err, filepath.Base(tf.path), tf.path, tf.size)
	}
	if err := tf.file.Sync(); err != nil {
		return 0, 0, topicdexerrors.ClassifySyncError(err, filepath.Base(tf.path), tf.path, tf.size)
	}

	lastOffset = firstOffset + int64(len(records)) - 1
	return firstOffset, lastOffset, nil
}

// recordCount returns the number of records currently in the file.
func (tf *topicFile) recordCount() int64 {
	tf.mu.Lock()
	defer tf.mu.Unlock()
	return int64(len(tf.positions))
}

// readAt decodes the record at the given record index.
func (tf *topicFile) readAt(index int64) (decodedRecord, error) {
	tf.mu.Lock()
	defer tf.mu.Unlock()

	if index < 0 || index >= int64(len(tf.positions)) {
		return decodedRecord{}, io.EOF
	}

	sr := io.NewSectionReader(tf.file, tf.positions[index], tf.size-tf.positions[index])
	return decodeRecord(sr)
}

// readRange decodes records starting at fromIndex, stopping once the total
// decoded byte count reaches or exceeds maxBytes or the file is exhausted. At least
// one record is always returned if fromIndex is in range.
func (tf *topicFile) readRange(fromIndex int64, maxBytes int) ([]decodedRecord, error) {
	tf.mu.Lock()
	defer tf.mu.Unlock()

	if fromIndex < 0 || fromIndex >= int64(len(tf.positions)) {
		return nil, nil
	}

	sr := io.NewSectionReader(tf.file, tf.positions[fromIndex], tf.size-tf.positions[fromIndex])
	var out []decodedRecord
	budget := 0

	for {
		rec, err := decodeRecord(sr)
		if err == io.EOF {
			break
		}
		if err != nil {
			return out, topicdexerrors.NewLogError(err, topicdexerrors.ErrorCodeLogCorrupted, "failed to read record range").
				WithPath(tf.path)
		}

		out = append(out, rec)
		budget += rec.Size
		if budget >= maxBytes {
			break
		}
	}

	return out, nil
}

func (tf *topicFile) close() error {
	tf.mu.Lock()
	defer tf.mu.Unlock()
	return tf.file.Close()
}

// encodedRecord is the input shape to topicFile.append.
type encodedRecord struct {
	Key        []byte
	Value      []byte
	Timestamp  int64
	HasValue   bool
	Compressed bool
}
