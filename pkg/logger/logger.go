// Package logger builds the *zap.SugaredLogger used throughout topicdex.
//
// pkg/ignite/ignite.go in the upstream project this module descends from
// calls logger.New(service) against a package it never actually ships; this
// package supplies that missing constructor, inferring its shape from every
// other call site in the tree that carries a `log *zap.SugaredLogger` field.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Option configures the logger returned by New.
type Option func(*zap.Config)

// WithLevel sets the minimum enabled log level.
func WithLevel(level zapcore.Level) Option {
	return func(c *zap.Config) {
		c.Level = zap.NewAtomicLevelAt(level)
	}
}

// WithDevelopment switches the encoder to zap's human-readable console
// format suited to local development.
func WithDevelopment() Option {
	return func(c *zap.Config) {
		c.Development = true
		c.Encoding = "console"
		c.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
}

// New builds a *zap.SugaredLogger tagged with the given service name.
func New(service string, opts ...Option) (*zap.SugaredLogger, error) {
	cfg := zap.NewProductionConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	base, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	return base.Named(service).Sugar(), nil
}

// NewNop returns a logger that discards everything, for use in tests.
func NewNop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
