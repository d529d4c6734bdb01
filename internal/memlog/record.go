package memlog

import (
	"encoding/binary"
	"fmt"
	"io"
)

// encodeRecord writes one record to w as:
//
//	u32 keyLen | key | u8 hasValue | u8 compressed | u32 valueLen | value | i64 timestamp
//
// Keys are always present for topicdex's own traffic (point reads, writes,
// removes, and index-log mirror records all carry a key), so this format
// does not distinguish a null key from an empty one. compressed records
// that a value was stored through s2.Encode and must be decoded by the
// reader before it reaches the Table.
func encodeRecord(w io.Writer, key, value []byte, timestamp int64, hasValue, compressed bool) (int, error) {
	var hdr [4]byte
	n := 0

	binary.BigEndian.PutUint32(hdr[:], uint32(len(key)))
	if _, err := w.Write(hdr[:]); err != nil {
		return n, err
	}
	n += 4

	if len(key) > 0 {
		if _, err := w.Write(key); err != nil {
			return n, err
		}
		n += len(key)
	}

	flags := byte(0)
	if hasValue {
		flags |= 1
	}
	if compressed {
		flags |= 2
	}
	if _, err := w.Write([]byte{flags}); err != nil {
		return n, err
	}
	n++

	binary.BigEndian.PutUint32(hdr[:], uint32(len(value)))
	if _, err := w.Write(hdr[:]); err != nil {
		return n, err
	}
	n += 4

	if len(value) > 0 {
		if _, err := w.Write(value); err != nil {
			return n, err
		}
		n += len(value)
	}

	var tsBuf [8]byte
	binary.BigEndian.PutUint64(tsBuf[:], uint64(timestamp))
	if _, err := w.Write(tsBuf[:]); err != nil {
		return n, err
	}
	n += 8

	return n, nil
}

type decodedRecord struct {
	Key        []byte
	Value      []byte
	Timestamp  int64
	HasValue   bool
	Compressed bool
	Size       int
}

// decodeRecord reads one record from r, in the format written by encodeRecord.
func decodeRecord(r io.Reader) (decodedRecord, error) {
	var rec decodedRecord
	var hdr [4]byte

	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return rec, err
	}
	keyLen := binary.BigEndian.Uint32(hdr[:])
	rec.Size += 4

	if keyLen > 0 {
		rec.Key = make([]byte, keyLen)
		if _, err := io.ReadFull(r, rec.Key); err != nil {
			return rec, fmt.Errorf("memlog: truncated key: %w", err)
		}
		rec.Size += int(keyLen)
	}

	var flag [1]byte
	if _, err := io.ReadFull(r, flag[:]); err != nil {
		return rec, fmt.Errorf("memlog: truncated flags: %w", err)
	}
	rec.HasValue = flag[0]&1 != 0
	rec.Compressed = flag[0]&2 != 0
	rec.Size++

	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return rec, fmt.Errorf("memlog: truncated value length: %w", err)
	}
	valLen := binary.BigEndian.Uint32(hdr[:])
	rec.Size += 4

	if valLen > 0 {
		rec.Value = make([]byte, valLen)
		if _, err := io.ReadFull(r, rec.Value); err != nil {
			return rec, fmt.Errorf("memlog: truncated value: %w", err)
		}
		rec.Size += int(valLen)
	}

	var tsBuf [8]byte
	if _, err := io.ReadFull(r, tsBuf[:]); err != nil {
		return rec, fmt.Errorf("memlog: truncated timestamp: %w", err)
	}
	rec.Timestamp = int64(binary.BigEndian.Uint64(tsBuf[:]))
	rec.Size += 8

	return rec, nil
}
