package options

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/tailscale/hujson"

	topicdexerrors "github.com/arvindmenon/topicdex/pkg/errors"
)

// fileConfig is the on-disk shape persisted by SaveFile and read by
// LoadFile. It mirrors Options but drops the KeyHasher field, which has no
// serializable representation.
type fileConfig struct {
	Topics        []string `json:"topics"`
	CacheSize     int      `json:"cacheSize"`
	FetchMaxBytes int      `json:"fetchMaxBytes"`
	WithTimeToKey bool     `json:"withTimeToKey"`
	Compression   int      `json:"compression"`
}

// LoadFile reads a JSON-with-comments config file (hujson) at path and
// returns the OptionFuncs needed to apply it on top of whatever options a
// caller has already built, mirroring the layered precedence (defaults ->
// file -> explicit overrides) used elsewhere in this module's lineage.
func LoadFile(path string) ([]OptionFunc, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, topicdexerrors.ClassifyFileOpenError(err, path, path)
	}

	standard, err := hujson.Standardize(raw)
	if err != nil {
		return nil, topicdexerrors.NewConfigurationValidationError("configFile", "not valid JWCC/hujson: "+err.Error())
	}

	var fc fileConfig
	if err := json.Unmarshal(standard, &fc); err != nil {
		return nil, topicdexerrors.NewConfigurationValidationError("configFile", "malformed JSON: "+err.Error())
	}

	var opts []OptionFunc
	if len(fc.Topics) > 0 {
		opts = append(opts, WithTopics(fc.Topics...))
	}
	if fc.CacheSize > 0 {
		opts = append(opts, WithCacheSize(fc.CacheSize))
	}
	if fc.FetchMaxBytes > 0 {
		opts = append(opts, WithFetchMaxBytes(fc.FetchMaxBytes))
	}
	opts = append(opts, WithTimeIndex(fc.WithTimeToKey))
	opts = append(opts, WithCompression(fc.Compression))

	return opts, nil
}

// SaveFile writes o to path as commented JSON, atomically: the file at path
// either contains the old config or the new one in full, never a partial
// write, even if the process is interrupted mid-save.
func SaveFile(path string, o Options) error {
	fc := fileConfig{
		Topics:        o.Topics,
		CacheSize:     o.CacheSize,
		FetchMaxBytes: o.FetchMaxBytes,
		WithTimeToKey: o.WithTimeToKey,
		Compression:   o.Compression,
	}

	body, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return topicdexerrors.NewConfigError(err, topicdexerrors.ErrorCodeInternal, "failed to marshal config")
	}

	header := "// topicdex configuration. Comments are allowed (JWCC/hujson).\n"
	return atomic.WriteFile(path, strings.NewReader(header+string(body)+"\n"))
}
