package adminws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestHubBroadcastsStatsToConnectedClients(t *testing.T) {
	stats := Stats{SetCount: 1, GetCount: 2, RemoveCount: 3, UncompactedBytes: 4, ActiveGeneration: 5}
	hub := NewHub(func() Stats { return stats }, nil)

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeHTTP))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	// Give ServeHTTP's registration goroutine a moment to record the client.
	time.Sleep(20 * time.Millisecond)
	hub.broadcast()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}

	want := `{"setCount":1,"getCount":2,"removeCount":3,"uncompactedBytes":4,"activeGeneration":5}`
	if string(payload) != want {
		t.Fatalf("broadcast payload = %q, want %q", payload, want)
	}
}

func TestHubRunStopsOnSignal(t *testing.T) {
	hub := NewHub(func() Stats { return Stats{} }, nil)
	stop := make(chan struct{})

	done := make(chan struct{})
	go func() {
		hub.Run(5*time.Millisecond, stop)
		close(done)
	}()

	close(stop)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after stop was closed")
	}
}

func TestDisconnectRemovesClient(t *testing.T) {
	hub := NewHub(func() Stats { return Stats{} }, nil)

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeHTTP))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}

	time.Sleep(20 * time.Millisecond)
	hub.mu.Lock()
	count := len(hub.clients)
	hub.mu.Unlock()
	if count != 1 {
		t.Fatalf("connected clients = %d, want 1", count)
	}

	conn.Close()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		hub.mu.Lock()
		count = len(hub.clients)
		hub.mu.Unlock()
		if count == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("expected client to be removed from hub after close")
}
