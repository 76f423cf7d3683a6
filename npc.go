package main

import (
	"math"
	"math/rand"
	"time"
)

const (
	npcWalkSpeed       = 0.015 // world units per millisecond
	npcWanderRadius    = 150.0
	npcPauseChance     = 0.002
	npcRedirectChance  = 0.005
	npcArriveEpsilon   = 5.0
	npcPauseMin        = 2 * time.Second
	npcPauseSpan       = 4 * time.Second
	npcWobble          = 0.1
	npcWobbleErratic   = 0.5
	enhancedTimeScale  = 1.5
)

// NPCDefinition is the static shape of one autonomous character. Hostile
// entries patrol wider and trigger encounters during curfew.
type NPCDefinition struct {
	ID           string
	Name         string
	Title        string
	Hostile      bool
	Dialogues    []string
	Home         vec2
	Speed        float64 // world units per millisecond
	WanderRadius float64
	Erratic      bool
	Ghostly      bool
}

func (d NPCDefinition) wanderRadius() float64 {
	if d.WanderRadius > 0 {
		return d.WanderRadius
	}
	return npcWanderRadius
}

type npcState struct {
	NPCDefinition
	Pos             vec2
	Target          vec2
	PausedUntil     time.Time
	LastEncounterAt time.Time
	UpdatedAt       int64
}

// newNPCState spawns an NPC at home with an initial target inside half the
// wander radius, so fresh worlds do not start with everyone mid-stride.
func newNPCState(def NPCDefinition, rng *rand.Rand) *npcState {
	angle := rng.Float64() * 2 * math.Pi
	dist := rng.Float64() * def.wanderRadius() * 0.5
	return &npcState{
		NPCDefinition: def,
		Pos:           def.Home,
		Target: vec2{
			X: def.Home.X + math.Cos(angle)*dist,
			Y: def.Home.Y + math.Sin(angle)*dist,
		},
	}
}

func pickWanderTarget(def NPCDefinition, rng *rand.Rand) vec2 {
	angle := rng.Float64() * 2 * math.Pi
	dist := rng.Float64() * def.wanderRadius()
	return vec2{
		X: def.Home.X + math.Cos(angle)*dist,
		Y: def.Home.Y + math.Sin(angle)*dist,
	}
}

// advanceNPC runs one wander step. Total over any input: non-positive
// elapsed time means no movement, never an error. Enhanced hostile mode
// scales elapsed time only, leaving the decision probabilities alone.
func advanceNPC(npc *npcState, elapsedMs float64, now time.Time, rng *rand.Rand, enhanced bool) {
	if npc == nil || elapsedMs <= 0 {
		return
	}
	if enhanced && npc.Hostile {
		elapsedMs *= enhancedTimeScale
	}

	if !npc.PausedUntil.IsZero() {
		if now.Before(npc.PausedUntil) {
			return
		}
		npc.PausedUntil = time.Time{}
		npc.Target = pickWanderTarget(npc.NPCDefinition, rng)
		return
	}

	if rng.Float64() < npcPauseChance {
		pause := npcPauseMin + time.Duration(rng.Float64()*float64(npcPauseSpan))
		npc.PausedUntil = now.Add(pause)
		return
	}

	if rng.Float64() < npcRedirectChance {
		npc.Target = pickWanderTarget(npc.NPCDefinition, rng)
		return
	}

	dx := npc.Target.X - npc.Pos.X
	dy := npc.Target.Y - npc.Pos.Y
	dist := math.Hypot(dx, dy)
	if dist < npcArriveEpsilon {
		npc.Target = pickWanderTarget(npc.NPCDefinition, rng)
		return
	}

	step := npc.Speed * elapsedMs
	ratio := math.Min(step/dist, 1)

	wobbleSpan := npcWobble
	if npc.Erratic {
		wobbleSpan = npcWobbleErratic
	}
	wobble := (rng.Float64() - 0.5) * wobbleSpan

	npc.Pos.X += dx*ratio + wobble
	npc.Pos.Y += dy*ratio + wobble
	npc.clampToRadius()
}

// clampToRadius pulls the NPC back onto its wander circle when jitter
// nudges it past the boundary.
func (npc *npcState) clampToRadius() {
	radius := npc.wanderRadius()
	dx := npc.Pos.X - npc.Home.X
	dy := npc.Pos.Y - npc.Home.Y
	dist := math.Hypot(dx, dy)
	if dist <= radius || dist == 0 {
		return
	}
	scale := radius / dist
	npc.Pos.X = npc.Home.X + dx*scale
	npc.Pos.Y = npc.Home.Y + dy*scale
}

func pickDialogue(def NPCDefinition, rng *rand.Rand) string {
	if len(def.Dialogues) == 0 {
		return ""
	}
	return def.Dialogues[rng.Intn(len(def.Dialogues))]
}

// NPCSyncRecord is the wire shape reserved under rooms/{roomId}/npcs. The
// coordinator-authoritative broadcast that would publish it is not wired to
// a timer: each client runs its own private simulation, and readers treat
// the subtree as optional.
type NPCSyncRecord struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	TargetX     float64 `json:"targetX"`
	TargetY     float64 `json:"targetY"`
	PausedUntil int64   `json:"pauseUntil"`
	UpdatedAt   int64   `json:"updatedAt"`
}

func encodeNPCSync(npcs []*npcState, now time.Time) map[string]NPCSyncRecord {
	out := make(map[string]NPCSyncRecord, len(npcs))
	for _, npc := range npcs {
		var paused int64
		if !npc.PausedUntil.IsZero() {
			paused = npc.PausedUntil.UnixMilli()
		}
		out[npc.ID] = NPCSyncRecord{
			X:           npc.Pos.X,
			Y:           npc.Pos.Y,
			TargetX:     npc.Target.X,
			TargetY:     npc.Target.Y,
			PausedUntil: paused,
			UpdatedAt:   now.UnixMilli(),
		}
	}
	return out
}

// mergeNPCSync applies remote positions that are newer than the local copy.
func mergeNPCSync(npcs []*npcState, remote map[string]NPCSyncRecord) {
	if len(remote) == 0 {
		return
	}
	for _, npc := range npcs {
		rec, ok := remote[npc.ID]
		if !ok || rec.UpdatedAt <= npc.UpdatedAt {
			continue
		}
		npc.Pos = vec2{X: rec.X, Y: rec.Y}
		npc.Target = vec2{X: rec.TargetX, Y: rec.TargetY}
		if rec.PausedUntil > 0 {
			npc.PausedUntil = time.UnixMilli(rec.PausedUntil)
		} else {
			npc.PausedUntil = time.Time{}
		}
		npc.UpdatedAt = rec.UpdatedAt
	}
}
