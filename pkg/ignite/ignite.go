// Package ignite provides a high-performance key/value data store
// designed for fast read and write operations, inspired by Bitcask.
// It combines an in-memory hash table (Index) with an append-only log
// structure on disk to achieve high throughput. It is designed for
// applications requiring fast read and write operations, such as
// caching, session management, and real-time data processing, aiming to
// provide a simple, efficient, and reliable solution for persistent
// key/value storage in Go applications.
package ignite

import (
	"context"

	"github.com/ignitekv/ignite/internal/engine"
	"github.com/ignitekv/ignite/pkg/eventbus"
	"github.com/ignitekv/ignite/pkg/logger"
	"github.com/ignitekv/ignite/pkg/metrics"
	"github.com/ignitekv/ignite/pkg/options"
)

// Instance represents an instance of the Ignite key/value data store.
// It encapsulates the core engine responsible for data handling and
// the configuration options for this specific database instance.
//
// Instance is the primary entry point for interacting with the Ignite
// store, providing methods for setting, getting, and removing
// key-value pairs.
type Instance struct {
	engine  *engine.Engine   // The underlying database engine handling read/write operations.
	options *options.Options // Configuration options applied to this DB instance.
	metrics *metrics.Recorder
	events  *eventbus.Publisher
}

// NewInstance creates and initializes a new Ignite DB instance.
func NewInstance(ctx context.Context, service string, opts ...options.OptionFunc) (*Instance, error) {
	log := logger.New(service)
	resolved := options.Apply(opts...)

	var rec *metrics.Recorder
	if resolved.Observability.MetricsAddr != "" {
		rec, _ = metrics.New()
	}

	pub, err := eventbus.Connect(resolved.Observability.EventBusURL, "ignite.events")
	if err != nil {
		log.Warnw("event bus connect failed, continuing without it", "error", err)
		pub = nil
	}

	eng, err := engine.Open(ctx, &engine.Config{Logger: log, Options: &resolved, Metrics: rec, Events: pub})
	if err != nil {
		return nil, err
	}

	return &Instance{engine: eng, options: &resolved, metrics: rec, events: pub}, nil
}

// Set stores a key-value pair in the database. If the key already
// exists, its value is updated. The operation is durable and is
// written to the append-only log before returning.
func (i *Instance) Set(ctx context.Context, key string, value string) error {
	return i.engine.Set(key, value)
}

// Get retrieves the value associated with the given key. found is
// false when the key has no entry in the store.
func (i *Instance) Get(ctx context.Context, key string) (value string, found bool, err error) {
	return i.engine.Get(key)
}

// Remove deletes a key-value pair from the database by appending a
// tombstone record. The space it occupied is reclaimed by a later
// compaction.
func (i *Instance) Remove(ctx context.Context, key string) error {
	return i.engine.Remove(key)
}

// Close gracefully shuts down the Ignite DB instance, flushing pending
// writes, closing all open file handles, and releasing the event bus
// connection.
func (i *Instance) Close(ctx context.Context) error {
	i.events.Close()
	return i.engine.Close()
}
