package main

import (
	"math/rand"
	"sort"
	"time"
)

// isCoordinator reports whether uid holds the coordinator role for the
// given active set. The role is leaderless: every client sorts the same
// ids and elects the lowest, so at most one client runs the shared jobs
// without any handshake. An empty set elects nobody.
func isCoordinator(uid string, active map[string]PlayerRecord) bool {
	if len(active) == 0 {
		return false
	}
	lowest := ""
	for id := range active {
		if lowest == "" || id < lowest {
			lowest = id
		}
	}
	return lowest == uid
}

// pickChosenOne selects the next chosen one uniformly from the active
// set. Returns false when nobody is active.
func pickChosenOne(active map[string]PlayerRecord, rng *rand.Rand, now time.Time) (ChosenOneRecord, bool) {
	if len(active) == 0 {
		return ChosenOneRecord{}, false
	}
	ids := make([]string, 0, len(active))
	for id := range active {
		ids = append(ids, id)
	}
	// Map iteration order is random but not seedable; drawing from a
	// sorted slice keeps the selection reproducible under a fixed seed.
	sort.Strings(ids)
	uid := ids[rng.Intn(len(ids))]
	return ChosenOneRecord{
		UID:       uid,
		Name:      active[uid].Name,
		ExpiresAt: now.Add(chosenOneDuration).UnixMilli(),
	}, true
}

// respawnGalleons rebuilds the galleon set from the fixed spawn points,
// jittering each position so pickups do not cluster on the exact same
// pixel every cycle.
func respawnGalleons(rng *rand.Rand) map[string]GalleonRecord {
	out := make(map[string]GalleonRecord, len(galleonSpawnPoints))
	for i, spawn := range galleonSpawnPoints {
		jx := (rng.Float64()*2 - 1) * galleonSpawnJitter
		jy := (rng.Float64()*2 - 1) * galleonSpawnJitter
		pos := clampToWorld(vec2{X: spawn.X + jx, Y: spawn.Y + jy})
		out[galleonID(i)] = GalleonRecord{X: pos.X, Y: pos.Y}
	}
	return out
}

func galleonID(index int) string {
	return "galleon-" + string(rune('a'+index))
}
