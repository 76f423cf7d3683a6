package store

import (
	"context"
	"encoding/json"
	"testing"
)

func TestMemorySetAndGet(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	type rec struct {
		Name  string `json:"name"`
		Score int    `json:"score"`
	}
	if err := mem.Set(ctx, "rooms/room-1/users/u1", rec{Name: "Alice", Score: 3}); err != nil {
		t.Fatalf("set: %v", err)
	}

	var got rec
	found, err := mem.Get(ctx, "rooms/room-1/users/u1", &got)
	if err != nil || !found {
		t.Fatalf("get: found=%v err=%v", found, err)
	}
	if got.Name != "Alice" || got.Score != 3 {
		t.Fatalf("got %+v", got)
	}

	found, err = mem.Get(ctx, "rooms/room-1/users/missing", &got)
	if err != nil || found {
		t.Fatalf("absent path: found=%v err=%v", found, err)
	}
}

func TestMemoryUpdateMergesSlashPaths(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	if err := mem.Set(ctx, "msgs/m1", map[string]any{"text": "hi", "deliveredTo": map[string]bool{"a": true}}); err != nil {
		t.Fatalf("set: %v", err)
	}
	err := mem.Update(ctx, "msgs/m1", map[string]any{
		"deliveredTo/b": true,
		"seenBy/a":      true,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	var got struct {
		Text        string          `json:"text"`
		DeliveredTo map[string]bool `json:"deliveredTo"`
		SeenBy      map[string]bool `json:"seenBy"`
	}
	if _, err := mem.Get(ctx, "msgs/m1", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Text != "hi" {
		t.Fatalf("update clobbered siblings: %+v", got)
	}
	if !got.DeliveredTo["a"] || !got.DeliveredTo["b"] || !got.SeenBy["a"] {
		t.Fatalf("merge incomplete: %+v", got)
	}
}

func TestMemoryUpdateNilDeletes(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	mem.Set(ctx, "users/u1", map[string]any{"blinded": true, "name": "Alice"})
	if err := mem.Update(ctx, "users/u1", map[string]any{"blinded": nil}); err != nil {
		t.Fatalf("update: %v", err)
	}

	var got map[string]any
	mem.Get(ctx, "users/u1", &got)
	if _, present := got["blinded"]; present {
		t.Fatalf("nil field not deleted: %+v", got)
	}
	if got["name"] != "Alice" {
		t.Fatalf("sibling lost: %+v", got)
	}
}

func TestMemorySubscribeFiresImmediatelyAndOnChange(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()
	mem.Set(ctx, "rooms/room-1/users/u1", map[string]any{"name": "Alice"})

	var calls []json.RawMessage
	sub, err := mem.Subscribe("rooms/room-1/users", func(raw json.RawMessage) {
		calls = append(calls, raw)
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Cancel()

	if len(calls) != 1 {
		t.Fatalf("initial fire missing: %d calls", len(calls))
	}
	var initial map[string]map[string]any
	if err := json.Unmarshal(calls[0], &initial); err != nil {
		t.Fatalf("decode initial: %v", err)
	}
	if initial["u1"]["name"] != "Alice" {
		t.Fatalf("initial snapshot %+v", initial)
	}

	mem.Set(ctx, "rooms/room-1/users/u2", map[string]any{"name": "Bob"})
	if len(calls) != 2 {
		t.Fatalf("change under subtree not delivered: %d calls", len(calls))
	}

	// Writes outside the subscribed subtree stay silent.
	mem.Set(ctx, "rooms/room-2/users/u3", map[string]any{"name": "Eve"})
	if len(calls) != 2 {
		t.Fatalf("unrelated write delivered: %d calls", len(calls))
	}

	// A write above the subtree also fires.
	mem.Remove(ctx, "rooms/room-1")
	if len(calls) != 3 {
		t.Fatalf("ancestor removal not delivered: %d calls", len(calls))
	}
	if calls[2] != nil {
		t.Fatalf("removed subtree should deliver nil, got %s", calls[2])
	}
}

func TestMemorySubscriptionCancel(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	calls := 0
	sub, _ := mem.Subscribe("counter", func(json.RawMessage) { calls++ })
	sub.Cancel()
	sub.Cancel()

	mem.Set(ctx, "counter", 1)
	if calls != 1 {
		t.Fatalf("cancelled subscription still firing: %d calls", calls)
	}
}

func TestMemoryClientDisconnectHooks(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	client := mem.Client()
	if err := client.Set(ctx, "rooms/room-1/users/u1", map[string]any{"name": "Alice"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := client.OnDisconnect("rooms/room-1/users/u1"); err != nil {
		t.Fatalf("ondisconnect: %v", err)
	}

	// Another handle's close must not run this handle's hooks.
	other := mem.Client()
	other.Close()
	if found, _ := mem.Get(ctx, "rooms/room-1/users/u1", nil); !found {
		t.Fatalf("record removed by the wrong handle")
	}

	client.Close()
	if found, _ := mem.Get(ctx, "rooms/room-1/users/u1", nil); found {
		t.Fatalf("disconnect hook did not remove the record")
	}

	// Close is idempotent and late hooks are refused.
	if err := client.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if err := client.OnDisconnect("anything"); err == nil {
		t.Fatalf("hook after close must fail")
	}
}

func TestMemoryRemovePrunesEmptyParents(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	mem.Set(ctx, "rooms/room-1/users/u1", map[string]any{"name": "Alice"})
	mem.Remove(ctx, "rooms/room-1/users/u1")

	if found, _ := mem.Get(ctx, "rooms/room-1", nil); found {
		t.Fatalf("empty parents should be pruned")
	}
	if found, _ := mem.Get(ctx, "rooms", nil); found {
		t.Fatalf("empty root branch should be pruned")
	}
}

func TestMemoryRejectsMalformedPaths(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	if err := mem.Set(ctx, "", 1); err == nil {
		t.Fatalf("empty path accepted")
	}
	if err := mem.Set(ctx, "a//b", 1); err == nil {
		t.Fatalf("empty segment accepted")
	}
	if _, err := mem.Subscribe("ok", nil); err == nil {
		t.Fatalf("nil callback accepted")
	}
}
