// Package logger constructs the zap.SugaredLogger shared by every
// package in this module, filling the role the teacher's pkg/ignite
// assumed existed but never shipped.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a SugaredLogger tagged with service. It always uses the
// production JSON encoding so that servers and CLIs default to
// structured, machine-parseable output; NewDevelopment is the console
// variant.
func New(service string) *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	l, err := cfg.Build()
	if err != nil {
		l = zap.NewNop()
	}
	return l.Sugar().With("service", service)
}

// NewDevelopment builds a SugaredLogger with human-readable, colorized
// console output, for use from CLI entrypoints run interactively.
func NewDevelopment(service string) *zap.SugaredLogger {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	l, err := cfg.Build()
	if err != nil {
		l = zap.NewNop()
	}
	return l.Sugar().With("service", service)
}
