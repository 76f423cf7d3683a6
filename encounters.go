package main

import (
	"math/rand"
	"time"
)

// encounterTracker is the per-session state machine for hostile NPC
// run-ins. It is purely local: encounters scare the local player, they
// are never written to the shared store.
type encounterTracker struct {
	cooldowns   map[string]time.Time
	frozenUntil time.Time
	activeNPC   string
}

func newEncounterTracker() *encounterTracker {
	return &encounterTracker{cooldowns: make(map[string]time.Time)}
}

// encounterEvent describes one trigger for the caller to surface.
type encounterEvent struct {
	NPC   NPCDefinition
	Toast string
}

func (t *encounterTracker) frozenAt(now time.Time) bool {
	return now.Before(t.frozenUntil)
}

// check runs one tick of the state machine. A trigger freezes the player
// and arms the per-NPC cooldown; while frozen no further NPC can trigger.
// Exempt players (chatting or invisible) never trigger anything.
func (t *encounterTracker) check(pos vec2, npcs []*npcState, now time.Time, enhanced bool, exempt bool) *encounterEvent {
	if t.frozenAt(now) || exempt {
		return nil
	}
	t.activeNPC = ""

	radius := encounterRadius
	cooldown := encounterCooldown
	freeze := freezeDuration
	if enhanced {
		radius = encounterRadiusEnhanced
		cooldown = encounterCooldownEnhanced
		freeze = freezeDurationEnhanced
	}

	for _, npc := range npcs {
		if !npc.Hostile {
			continue
		}
		if now.Before(t.cooldowns[npc.ID]) {
			continue
		}
		if distance(pos, npc.Pos) > radius {
			continue
		}
		t.frozenUntil = now.Add(freeze)
		t.cooldowns[npc.ID] = now.Add(cooldown)
		t.activeNPC = npc.ID
		npc.LastEncounterAt = now
		return &encounterEvent{NPC: npc.NPCDefinition}
	}
	return nil
}

// resolve closes the active encounter. It never moves the player and
// never cuts the freeze short; while the freeze is still running the
// encounter stays open.
func (t *encounterTracker) resolve(now time.Time) bool {
	if t.activeNPC == "" || t.frozenAt(now) {
		return false
	}
	t.activeNPC = ""
	return true
}

func pickScaredToast(rng *rand.Rand) string {
	return scaredToasts[rng.Intn(len(scaredToasts))]
}
