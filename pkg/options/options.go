// Package options provides data structures and functions for configuring
// the Ignite key-value store. It defines the parameters that control the
// engine's storage behavior (data directory, compaction threshold) plus
// the ambient observability stack (metrics, tracing, eventing, admin feed,
// directory watchdog), all through a functional-options API.
package options

import (
	"strings"
)

// ObservabilityOptions configures the ambient stack that sits around the
// engine. None of these participate in the engine's correctness contract;
// each is independently optional. pkg/ignite reads MetricsAddr and
// EventBusURL; nothing in this module reads TracingEnabled, AdminWSAddr
// or WatchdogEnabled (cmd/kvs-server takes its own flags for all five).
type ObservabilityOptions struct {
	// MetricsAddr, when non-empty, makes pkg/ignite create a metrics
	// Recorder for the engine (see pkg/metrics). No scrape endpoint is
	// started on this address.
	MetricsAddr string `json:"metricsAddr"`

	// TracingEnabled records whether OpenTelemetry spans exported to
	// stdout are wanted (see pkg/tracing); no tracer is started from
	// this field.
	TracingEnabled bool `json:"tracingEnabled"`

	// EventBusURL, when non-empty, is a NATS server URL the engine
	// best-effort publishes lifecycle events to (see pkg/eventbus).
	EventBusURL string `json:"eventBusUrl"`

	// AdminWSAddr is the address for a websocket admin stats feed,
	// separate from the KV wire protocol (see internal/adminws); no feed
	// is started from this field.
	AdminWSAddr string `json:"adminWsAddr"`

	// WatchdogEnabled records whether an fsnotify watch over the data
	// directory is wanted (see pkg/watchdog); no watch is started from
	// this field.
	WatchdogEnabled bool `json:"watchdogEnabled"`
}

// Options defines the configuration parameters for the store.
type Options struct {
	// DataDir is the base path where generation log files are stored.
	//
	// Default: "/var/lib/ignitedb"
	DataDir string `json:"dataDir"`

	// CompactionThreshold is the number of superseded bytes that
	// triggers compaction once exceeded by a set.
	//
	// Default: 1 MiB
	CompactionThreshold uint64 `json:"compactionThreshold"`

	// EngineFlavor selects which engine implementation backs the store:
	// "kvs" for the native log-structured engine, "sqlite" for the
	// embedded-database adapter.
	//
	// Default: "kvs"
	EngineFlavor string `json:"engineFlavor"`

	// Addr is the listen address for the server, or the connect address
	// for the client.
	//
	// Default: "127.0.0.1:4000"
	Addr string `json:"addr"`

	// Observability configures the ambient stack.
	Observability ObservabilityOptions `json:"observability"`
}

// OptionFunc modifies the store's configuration.
type OptionFunc func(*Options)

// WithDefaultOptions applies the default configuration values.
func WithDefaultOptions() OptionFunc {
	return func(o *Options) {
		*o = NewDefaultOptions()
	}
}

// WithDataDir sets the primary data directory.
func WithDataDir(directory string) OptionFunc {
	return func(o *Options) {
		directory = strings.TrimSpace(directory)
		if directory != "" {
			o.DataDir = directory
		}
	}
}

// WithCompactionThreshold sets the uncompacted-bytes threshold that
// triggers compaction.
func WithCompactionThreshold(threshold uint64) OptionFunc {
	return func(o *Options) {
		if threshold >= MinCompactionThreshold && threshold <= MaxCompactionThreshold {
			o.CompactionThreshold = threshold
		}
	}
}

// WithEngineFlavor selects the engine implementation ("kvs" or "sqlite").
func WithEngineFlavor(flavor string) OptionFunc {
	return func(o *Options) {
		flavor = strings.TrimSpace(flavor)
		if flavor != "" {
			o.EngineFlavor = flavor
		}
	}
}

// WithAddr sets the listen/connect address.
func WithAddr(addr string) OptionFunc {
	return func(o *Options) {
		addr = strings.TrimSpace(addr)
		if addr != "" {
			o.Addr = addr
		}
	}
}

// WithMetricsAddr sets Observability.MetricsAddr.
func WithMetricsAddr(addr string) OptionFunc {
	return func(o *Options) {
		o.Observability.MetricsAddr = strings.TrimSpace(addr)
	}
}

// WithTracing sets Observability.TracingEnabled.
func WithTracing(enabled bool) OptionFunc {
	return func(o *Options) {
		o.Observability.TracingEnabled = enabled
	}
}

// WithEventBusURL enables best-effort lifecycle event publishing to a NATS
// server at url.
func WithEventBusURL(url string) OptionFunc {
	return func(o *Options) {
		o.Observability.EventBusURL = strings.TrimSpace(url)
	}
}

// WithAdminWSAddr sets Observability.AdminWSAddr.
func WithAdminWSAddr(addr string) OptionFunc {
	return func(o *Options) {
		o.Observability.AdminWSAddr = strings.TrimSpace(addr)
	}
}

// WithWatchdog sets Observability.WatchdogEnabled.
func WithWatchdog(enabled bool) OptionFunc {
	return func(o *Options) {
		o.Observability.WatchdogEnabled = enabled
	}
}

// Apply builds an Options value starting from the defaults and applying
// each OptionFunc in order.
func Apply(opts ...OptionFunc) Options {
	o := NewDefaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
