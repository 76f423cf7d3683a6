package store

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func startRelay(t *testing.T) (*httptest.Server, *Memory) {
	t.Helper()
	mem := NewMemory()
	srv := httptest.NewServer(NewRelayServer(mem, nil))
	t.Cleanup(srv.Close)
	return srv, mem
}

func dialTestRelay(t *testing.T, srv *httptest.Server) *Relay {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	r, err := DialRelay(ctx, url)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestRelayRoundTrip(t *testing.T) {
	srv, _ := startRelay(t)
	r := dialTestRelay(t, srv)
	ctx := context.Background()

	err := r.Set(ctx, "rooms/room-1/users/uid-a", map[string]any{
		"name": "Harry",
		"x":    240.0,
	})
	if err != nil {
		t.Fatalf("set: %v", err)
	}

	// Mutations are fire-and-forget; the Get round-trip doubles as the
	// ordering barrier since the server drains one connection in order.
	var got map[string]any
	found, err := r.Get(ctx, "rooms/room-1/users/uid-a", &got)
	if err != nil || !found {
		t.Fatalf("get: found=%v err=%v", found, err)
	}
	if got["name"] != "Harry" {
		t.Fatalf("name = %v", got["name"])
	}

	err = r.Update(ctx, "rooms/room-1/users/uid-a", map[string]any{
		"x":    300.0,
		"name": nil,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	got = nil
	if _, err := r.Get(ctx, "rooms/room-1/users/uid-a", &got); err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if _, ok := got["name"]; ok {
		t.Fatalf("null field survived the update: %v", got)
	}
	if got["x"] != 300.0 {
		t.Fatalf("x = %v", got["x"])
	}

	if err := r.Remove(ctx, "rooms/room-1/users/uid-a"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if found, _ := r.Get(ctx, "rooms/room-1/users/uid-a", nil); found {
		t.Fatalf("record survived remove")
	}
}

func TestRelaySubscribe(t *testing.T) {
	srv, _ := startRelay(t)
	writer := dialTestRelay(t, srv)
	reader := dialTestRelay(t, srv)
	ctx := context.Background()

	values := make(chan json.RawMessage, 8)
	sub, err := reader.Subscribe("rooms/room-1/users", func(raw json.RawMessage) {
		values <- raw
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Cancel()

	select {
	case raw := <-values:
		if len(raw) != 0 && string(raw) != "null" {
			t.Fatalf("initial snapshot of empty subtree: %q", raw)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("no initial snapshot")
	}

	err = writer.Set(ctx, "rooms/room-1/users/uid-a", map[string]any{"name": "Harry"})
	if err != nil {
		t.Fatalf("set: %v", err)
	}

	select {
	case raw := <-values:
		var users map[string]map[string]any
		if err := json.Unmarshal(raw, &users); err != nil {
			t.Fatalf("decode notification: %v", err)
		}
		if users["uid-a"]["name"] != "Harry" {
			t.Fatalf("notification %v", users)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("no change notification")
	}
}

func TestRelayDisconnectHook(t *testing.T) {
	srv, mem := startRelay(t)
	ephemeral := dialTestRelay(t, srv)
	ctx := context.Background()

	if err := ephemeral.OnDisconnect("rooms/room-1/users/uid-a"); err != nil {
		t.Fatalf("ondisconnect: %v", err)
	}
	err := ephemeral.Set(ctx, "rooms/room-1/users/uid-a", map[string]any{"name": "Harry"})
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if found, err := ephemeral.Get(ctx, "rooms/room-1/users/uid-a", nil); err != nil || !found {
		t.Fatalf("get before close: found=%v err=%v", found, err)
	}
	if err := ephemeral.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		found, err := mem.Get(ctx, "rooms/room-1/users/uid-a", nil)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if !found {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("disconnect hook never removed the record")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
