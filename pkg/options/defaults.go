package options

import (
	"github.com/arvindmenon/topicdex/pkg/keyhash"
	"github.com/arvindmenon/topicdex/pkg/logengine"
)

const (
	// DefaultCacheSize is the per-topic value cache capacity used when no
	// WithCacheSize option is supplied.
	DefaultCacheSize = 10000

	// MinCacheSize and MaxCacheSize bound WithCacheSize.
	MinCacheSize = 16
	MaxCacheSize = 10_000_000

	// DefaultFetchMaxBytes is the per-fetch byte budget used on point reads.
	DefaultFetchMaxBytes = 64 * 1024

	// MinFetchMaxBytes and MaxFetchMaxBytes bound WithFetchMaxBytes.
	MinFetchMaxBytes = 256
	MaxFetchMaxBytes = 64 * 1024 * 1024
)

// defaultOptions holds the default configuration settings for a Table.
var defaultOptions = Options{
	CacheSize:     DefaultCacheSize,
	FetchMaxBytes: DefaultFetchMaxBytes,
	WithTimeToKey: false,
	Compression:   int(logengine.CompressionNone),
	KeyHasher:     keyhash.XXHash32,
}

// NewDefaultOptions returns a copy of the package's default Options.
func NewDefaultOptions() Options {
	return defaultOptions
}
