package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

var nameFolder = cases.Fold()

// normalizeName folds case and trims whitespace so "Harry" and " hArRy "
// collide.
func normalizeName(value string) string {
	return nameFolder.String(strings.TrimSpace(value))
}

func roomNumber(roomID string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(roomID, roomPrefix))
	if err != nil {
		return 0
	}
	return n
}

func formatRoomID(number int) string {
	return fmt.Sprintf("%s%d", roomPrefix, number)
}

// activeUsers filters a user mapping down to present, unbanned records.
// Staleness is decided here, at the read edge, so downstream consumers
// never see a record that should count as absent.
func activeUsers(users map[string]PlayerRecord, now time.Time) map[string]PlayerRecord {
	out := make(map[string]PlayerRecord, len(users))
	for uid, rec := range users {
		if rec.activeAt(now) {
			out[uid] = rec
		}
	}
	return out
}

// resolveRoomID assigns the lowest-numbered room with capacity left, or
// mints the next room number when every room is full.
func resolveRoomID(rooms map[string]RoomRecord, now time.Time) string {
	ids := make([]string, 0, len(rooms))
	for id := range rooms {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return roomNumber(ids[i]) < roomNumber(ids[j])
	})

	maxNumber := 0
	for _, id := range ids {
		if n := roomNumber(id); n > maxNumber {
			maxNumber = n
		}
		if len(activeUsers(rooms[id].Users, now)) < roomCap {
			return id
		}
	}
	return formatRoomID(maxNumber + 1)
}

// nameTaken reports a case/space-insensitive collision with any active
// player across every room.
func nameTaken(rooms map[string]RoomRecord, name string, now time.Time) bool {
	normalized := normalizeName(name)
	if normalized == "" {
		return false
	}
	for _, room := range rooms {
		for _, rec := range activeUsers(room.Users, now) {
			if rec.Name != "" && normalizeName(rec.Name) == normalized {
				return true
			}
		}
	}
	return false
}
