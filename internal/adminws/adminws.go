// Package adminws pushes a periodic JSON stats snapshot to connected
// admin clients over a websocket, entirely separate from the key-value
// wire protocol and optional in every sense: nothing in this module
// depends on an admin client being present.
package adminws

import (
	"net/http"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Stats is one snapshot of store health pushed to admin clients.
type Stats struct {
	SetCount         uint64 `json:"setCount"`
	GetCount         uint64 `json:"getCount"`
	RemoveCount      uint64 `json:"removeCount"`
	UncompactedBytes uint64 `json:"uncompactedBytes"`
	ActiveGeneration uint64 `json:"activeGeneration"`
}

// StatsFunc produces the current Stats snapshot on demand.
type StatsFunc func() Stats

// Hub serves the admin websocket endpoint and fans out stats snapshots
// to every connected client on an interval.
type Hub struct {
	upgrader websocket.Upgrader
	stats    StatsFunc
	log      *zap.SugaredLogger

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewHub builds a Hub that polls stats for its periodic broadcast.
func NewHub(stats StatsFunc, log *zap.SugaredLogger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		stats:    stats,
		log:      log,
		clients:  make(map[*websocket.Conn]struct{}),
	}
}

// ServeHTTP upgrades the request to a websocket and registers the
// connection to receive broadcasts until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		if h.log != nil {
			h.log.Warnw("admin websocket upgrade failed", "error", err)
		}
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()

	// Drain and discard incoming frames; this feed is push-only. Reading
	// is what detects the peer closing the connection.
	go func() {
		defer h.disconnect(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) disconnect(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
}

// Run broadcasts a stats snapshot to every connected client every
// interval, until stop is closed.
func (h *Hub) Run(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.broadcast()
		case <-stop:
			return
		}
	}
}

func (h *Hub) broadcast() {
	payload, err := json.Marshal(h.stats())
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			go h.disconnect(conn)
		}
	}
}
