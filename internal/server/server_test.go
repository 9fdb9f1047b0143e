package server

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/ignitekv/ignite/internal/client"
)

type fakeStore struct {
	mu     sync.Mutex
	values map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: make(map[string]string)}
}

func (f *fakeStore) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = value
	return nil
}

func (f *fakeStore) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[key]
	return v, ok, nil
}

func (f *fakeStore) Remove(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.values[key]; !ok {
		return errors.New("key not found")
	}
	delete(f.values, key)
	return nil
}

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	addr := l.Addr().String()
	l.Close()
	return addr
}

func startServer(t *testing.T, store Store) (addr string, stop func()) {
	t.Helper()
	addr = freeAddr(t)
	ctx, cancel := context.WithCancel(context.Background())
	srv := New(store, nil, nil)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run(ctx, addr) }()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		conn, err := net.Dial("tcp", addr)
		if err == nil {
			conn.Close()
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	return addr, cancel
}

func TestServerSetGetRemoveRoundTrip(t *testing.T) {
	store := newFakeStore()
	addr, stop := startServer(t, store)
	defer stop()

	c, err := client.Connect(addr)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer c.Close()

	if err := c.Set("k", "v"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	value, found, err := c.Get("k")
	if err != nil || !found || value != "v" {
		t.Fatalf("Get = %q, %v, %v; want v, true, nil", value, found, err)
	}

	if err := c.Remove("k"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, found, err := c.Get("k"); err != nil || found {
		t.Fatalf("Get after remove: found=%v err=%v, want false, nil", found, err)
	}
}

func TestServerRemoveMissingKeyReportsErrKeyNotFound(t *testing.T) {
	store := newFakeStore()
	addr, stop := startServer(t, store)
	defer stop()

	c, err := client.Connect(addr)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer c.Close()

	if err := c.Remove("missing"); err != client.ErrKeyNotFound {
		t.Fatalf("Remove(missing) = %v, want ErrKeyNotFound", err)
	}
}

func TestServerHandlesMultipleSequentialConnections(t *testing.T) {
	store := newFakeStore()
	addr, stop := startServer(t, store)
	defer stop()

	for i := 0; i < 3; i++ {
		c, err := client.Connect(addr)
		if err != nil {
			t.Fatalf("Connect %d: %v", i, err)
		}
		if err := c.Set("shared", "value"); err != nil {
			t.Fatalf("Set %d: %v", i, err)
		}
		c.Close()
	}

	c, err := client.Connect(addr)
	if err != nil {
		t.Fatalf("final Connect: %v", err)
	}
	defer c.Close()
	value, found, err := c.Get("shared")
	if err != nil || !found || value != "value" {
		t.Fatalf("Get = %q, %v, %v; want value, true, nil", value, found, err)
	}
}
