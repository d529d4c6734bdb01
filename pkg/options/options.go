// Package options provides data structures and functions for configuring a
// Table. It defines the parameters that control the Table's topic set,
// cache sizing, fetch batching, and optional time-to-key index, following
// the functional-options pattern used throughout this module's lineage.
package options

import (
	"strings"

	"github.com/arvindmenon/topicdex/pkg/keyhash"
)

// Options holds the configuration parameters for a Table.
type Options struct {
	// Topics is the ordered, fixed list of logical topics the Table
	// serves. Each topic T is backed by four physical logs: T, T~, T_idx,
	// T~_idx. The index of a topic in this slice is its Column.
	//
	// Default: none; at least one topic must be supplied.
	Topics []string `json:"topics"`

	// CacheSize bounds the strict-FIFO value cache kept per topic.
	//
	// Default: 10000
	CacheSize int `json:"cacheSize"`

	// FetchMaxBytes bounds how many bytes of log records a point read
	// pulls per candidate offset.
	//
	// Default: 64KB
	FetchMaxBytes int `json:"fetchMaxBytes"`

	// WithTimeToKey enables the optional timestamp -> most-recent-key
	// index. When false, GetKeyByTime always returns absent, but writes
	// still populate the index internally.
	//
	// Default: false
	WithTimeToKey bool `json:"withTimeToKey"`

	// Compression selects the batch compression the log engine is asked
	// to apply on writes.
	//
	// Default: logengine.CompressionNone
	Compression int `json:"compression"`

	// KeyHasher computes the 32-bit hash used to partition keys within a
	// column. Treated as an external fixed-contract dependency; changing
	// it after data has been written invalidates the on-disk index.
	//
	// Default: keyhash.XXHash32
	KeyHasher keyhash.Func `json:"-"`
}

// OptionFunc is a function type that modifies a Table's configuration.
type OptionFunc func(*Options)

// WithDefaultOptions applies a predefined set of default configuration
// values to the Options struct.
func WithDefaultOptions() OptionFunc {
	return func(o *Options) {
		opts := NewDefaultOptions()
		o.CacheSize = opts.CacheSize
		o.FetchMaxBytes = opts.FetchMaxBytes
		o.WithTimeToKey = opts.WithTimeToKey
		o.Compression = opts.Compression
		o.KeyHasher = opts.KeyHasher
	}
}

// WithTopics sets the fixed, ordered list of topics the Table will serve.
func WithTopics(topics ...string) OptionFunc {
	return func(o *Options) {
		cleaned := make([]string, 0, len(topics))
		for _, t := range topics {
			t = strings.TrimSpace(t)
			if t != "" {
				cleaned = append(cleaned, t)
			}
		}
		if len(cleaned) > 0 {
			o.Topics = cleaned
		}
	}
}

// WithCacheSize sets the per-topic value cache capacity.
func WithCacheSize(size int) OptionFunc {
	return func(o *Options) {
		if size >= MinCacheSize && size <= MaxCacheSize {
			o.CacheSize = size
		}
	}
}

// WithFetchMaxBytes sets the per-fetch byte budget used on point reads.
func WithFetchMaxBytes(maxBytes int) OptionFunc {
	return func(o *Options) {
		if maxBytes >= MinFetchMaxBytes && maxBytes <= MaxFetchMaxBytes {
			o.FetchMaxBytes = maxBytes
		}
	}
}

// WithTimeIndex toggles the optional timestamp -> key index.
func WithTimeIndex(enabled bool) OptionFunc {
	return func(o *Options) {
		o.WithTimeToKey = enabled
	}
}

// WithCompression sets the batch compression requested from the log engine.
func WithCompression(c int) OptionFunc {
	return func(o *Options) {
		o.Compression = c
	}
}

// WithKeyHasher overrides the default key-hash function.
func WithKeyHasher(h keyhash.Func) OptionFunc {
	return func(o *Options) {
		if h != nil {
			o.KeyHasher = h
		}
	}
}
