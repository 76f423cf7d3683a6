package main

import (
	"fmt"
	"testing"
	"time"
)

func activeRecord(name string, now time.Time) PlayerRecord {
	return PlayerRecord{Name: name, UpdatedAt: now.UnixMilli()}
}

func TestActiveWindowBoundary(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	exact := PlayerRecord{UpdatedAt: now.Add(-activeWindow).UnixMilli()}
	if !exact.activeAt(now) {
		t.Fatalf("record aged exactly %v should still be active", activeWindow)
	}

	over := PlayerRecord{UpdatedAt: now.Add(-activeWindow - time.Millisecond).UnixMilli()}
	if over.activeAt(now) {
		t.Fatalf("record aged past %v should be stale", activeWindow)
	}

	banned := PlayerRecord{UpdatedAt: now.UnixMilli(), Banned: true}
	if banned.activeAt(now) {
		t.Fatalf("banned record should never count as active")
	}
}

func TestActiveUsersFiltersStale(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	users := map[string]PlayerRecord{
		"fresh": activeRecord("Fresh", now),
		"stale": {Name: "Stale", UpdatedAt: now.Add(-time.Minute).UnixMilli()},
	}
	got := activeUsers(users, now)
	if len(got) != 1 {
		t.Fatalf("active set has %d entries, want 1", len(got))
	}
	if _, ok := got["fresh"]; !ok {
		t.Fatalf("fresh record missing from active set")
	}
}

func TestNameTakenIgnoresCaseAndSpace(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	rooms := map[string]RoomRecord{
		"room-1": {Users: map[string]PlayerRecord{
			"u1": activeRecord("Harry", now),
		}},
	}

	for _, name := range []string{"Harry", "harry ", " HARRY", "hArRy"} {
		if !nameTaken(rooms, name, now) {
			t.Fatalf("name %q should collide with Harry", name)
		}
	}
	if nameTaken(rooms, "Hermione", now) {
		t.Fatalf("Hermione should not collide")
	}
}

func TestNameTakenIgnoresStaleHolders(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	rooms := map[string]RoomRecord{
		"room-1": {Users: map[string]PlayerRecord{
			"u1": {Name: "Harry", UpdatedAt: now.Add(-time.Minute).UnixMilli()},
		}},
	}
	if nameTaken(rooms, "Harry", now) {
		t.Fatalf("stale holder should free the name")
	}
}

func fullRoom(now time.Time, offset int) RoomRecord {
	users := make(map[string]PlayerRecord, roomCap)
	for i := 0; i < roomCap; i++ {
		uid := fmt.Sprintf("u%d-%d", offset, i)
		users[uid] = activeRecord(uid, now)
	}
	return RoomRecord{Users: users}
}

func TestResolveRoomIDPicksLowestWithSpace(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	if got := resolveRoomID(nil, now); got != "room-1" {
		t.Fatalf("empty world: got %q, want room-1", got)
	}

	rooms := map[string]RoomRecord{
		"room-1": fullRoom(now, 1),
		"room-2": {Users: map[string]PlayerRecord{"x": activeRecord("X", now)}},
	}
	if got := resolveRoomID(rooms, now); got != "room-2" {
		t.Fatalf("got %q, want room-2", got)
	}

	rooms["room-2"] = fullRoom(now, 2)
	if got := resolveRoomID(rooms, now); got != "room-3" {
		t.Fatalf("all full: got %q, want room-3", got)
	}
}

func TestResolveRoomIDCountsOnlyActiveUsers(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	room := fullRoom(now, 1)
	stale := room.Users["u1-0"]
	stale.UpdatedAt = now.Add(-time.Minute).UnixMilli()
	room.Users["u1-0"] = stale

	rooms := map[string]RoomRecord{"room-1": room}
	if got := resolveRoomID(rooms, now); got != "room-1" {
		t.Fatalf("room with a stale slot should accept: got %q", got)
	}
}
