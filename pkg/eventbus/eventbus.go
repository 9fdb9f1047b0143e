// Package eventbus is a thin, best-effort NATS publisher for the
// engine's lifecycle events (opened, compacted, closed), grounded on the
// corpus's pkg/core NATS-backed event bus scaled down to a single
// fire-and-forget publish call. It is observability, never a
// correctness dependency: a nil *Publisher and a failed publish are
// silently tolerated; a failed connection is returned as an error by
// Connect, and the returned nil *Publisher is safe to use.
package eventbus

import (
	json "github.com/goccy/go-json"
	"github.com/nats-io/nats.go"
)

// Publisher publishes store lifecycle events to a NATS subject.
type Publisher struct {
	conn    *nats.Conn
	subject string
}

// Connect dials url and returns a Publisher that publishes to subject.
// A blank url disables the publisher (Connect returns a nil *Publisher,
// nil error) rather than treating "no event bus configured" as an
// error.
func Connect(url, subject string) (*Publisher, error) {
	if url == "" {
		return nil, nil
	}
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, err
	}
	return &Publisher{conn: conn, subject: subject}, nil
}

// Publish best-effort publishes an event with the given kind and data.
// Errors are swallowed: a broker outage must never fail an engine
// operation.
func (p *Publisher) Publish(kind string, data map[string]any) {
	if p == nil || p.conn == nil {
		return
	}
	payload, err := json.Marshal(struct {
		Kind string         `json:"kind"`
		Data map[string]any `json:"data"`
	}{Kind: kind, Data: data})
	if err != nil {
		return
	}
	_ = p.conn.Publish(p.subject, payload)
}

// Close closes the underlying NATS connection without draining it.
func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	p.conn.Close()
}
