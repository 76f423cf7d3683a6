package main

import (
	"math/rand"
	"sort"
	"time"
)

type SpellID string

const (
	SpellObscuro      SpellID = "obscuro"
	SpellExpelliarmus SpellID = "expelliarmus"
	SpellInvisibility SpellID = "invisibility"
	SpellPolyjuice    SpellID = "polyjuice"
)

type spellSpec struct {
	ID       SpellID
	Name     string
	Cooldown time.Duration
	Duration time.Duration
	Range    float64
	Targeted bool
}

var spellTable = map[SpellID]spellSpec{
	SpellObscuro: {
		ID:       SpellObscuro,
		Name:     "Obscuro",
		Cooldown: 45 * time.Second,
		Duration: 10 * time.Second,
		Range:    200,
		Targeted: true,
	},
	SpellExpelliarmus: {
		ID:       SpellExpelliarmus,
		Name:     "Expelliarmus",
		Cooldown: 60 * time.Second,
		Range:    200,
		Targeted: true,
	},
	SpellInvisibility: {
		ID:       SpellInvisibility,
		Name:     "Invisibility",
		Cooldown: 60 * time.Second,
		Duration: 15 * time.Second,
	},
	SpellPolyjuice: {
		ID:       SpellPolyjuice,
		Name:     "Polyjuice",
		Cooldown: 120 * time.Second,
		Duration: 30 * time.Second,
	},
}

// spellBook tracks the local caster's cooldowns and self-effect expiries.
// Cooldowns live client-side only; nothing about them is published.
type spellBook struct {
	cooldowns      map[SpellID]time.Time
	invisibleUntil time.Time
	polyjuiceUntil time.Time
}

func newSpellBook() *spellBook {
	return &spellBook{cooldowns: make(map[SpellID]time.Time)}
}

// spellResult carries the record mutations a successful cast produces.
// Targeted spells write into the target's record; self spells write into
// the caster's own.
type spellResult struct {
	Spec         spellSpec
	TargetUID    string
	TargetFields map[string]any
	SelfFields   map[string]any
}

// cast validates the cooldown, stamps the next one, and resolves a
// target when the spell needs one. The cooldown is spent on the attempt;
// a cast that then fails to find a target is not refunded.
func (b *spellBook) cast(id SpellID, casterUID, casterName string, pos vec2, peers map[string]PlayerRecord, rng *rand.Rand, now time.Time) (*spellResult, error) {
	spec, ok := spellTable[id]
	if !ok {
		return nil, ErrNoTarget
	}
	if now.Before(b.cooldowns[id]) {
		return nil, ErrSpellOnCooldown
	}
	b.cooldowns[id] = now.Add(spec.Cooldown)

	res := &spellResult{Spec: spec}
	switch id {
	case SpellObscuro:
		target, ok := findNearestPlayer(casterUID, pos, spec.Range, peers)
		if !ok {
			return nil, ErrNoTarget
		}
		res.TargetUID = target
		res.TargetFields = map[string]any{
			"blinded":      true,
			"blindedUntil": now.Add(spec.Duration).UnixMilli(),
			"blindedBy":    casterName,
		}
	case SpellExpelliarmus:
		target, ok := findNearestPlayer(casterUID, pos, spec.Range, peers)
		if !ok {
			return nil, ErrNoTarget
		}
		dest := knockbackDestination(rng)
		res.TargetUID = target
		res.TargetFields = map[string]any{
			"knockedBack":   true,
			"knockbackX":    dest.X,
			"knockbackY":    dest.Y,
			"knockedBackBy": casterName,
		}
	case SpellInvisibility:
		b.invisibleUntil = now.Add(spec.Duration)
		res.SelfFields = map[string]any{"invisible": true}
	case SpellPolyjuice:
		disguise, ok := pickDisguise(casterUID, peers, rng)
		if !ok {
			return nil, ErrNoTarget
		}
		b.polyjuiceUntil = now.Add(spec.Duration)
		res.SelfFields = map[string]any{
			"polyjuiceAs":    disguise.Name,
			"polyjuiceHouse": disguise.House,
		}
	}

	return res, nil
}

// expire reports the self-effect clears due at now. Each expiry fires
// once; the zero deadline marks it consumed.
func (b *spellBook) expire(now time.Time) map[string]any {
	fields := map[string]any{}
	if !b.invisibleUntil.IsZero() && !now.Before(b.invisibleUntil) {
		b.invisibleUntil = time.Time{}
		fields["invisible"] = nil
	}
	if !b.polyjuiceUntil.IsZero() && !now.Before(b.polyjuiceUntil) {
		b.polyjuiceUntil = time.Time{}
		fields["polyjuiceAs"] = nil
		fields["polyjuiceHouse"] = nil
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// findNearestPlayer returns the closest visible peer within reach.
// Invisible players cannot be targeted.
func findNearestPlayer(selfUID string, pos vec2, reach float64, peers map[string]PlayerRecord) (string, bool) {
	best := ""
	bestDist := 0.0
	for uid, rec := range peers {
		if uid == selfUID || rec.Invisible {
			continue
		}
		d := distance(pos, rec.position())
		if d > reach {
			continue
		}
		if best == "" || d < bestDist {
			best = uid
			bestDist = d
		}
	}
	return best, best != ""
}

// knockbackDestination rolls the absolute spot the disarmed target
// teleports to, anywhere on the map.
func knockbackDestination(rng *rand.Rand) vec2 {
	return clampToWorld(vec2{
		X: rng.Float64() * worldWidth,
		Y: rng.Float64() * worldHeight,
	})
}

func pickDisguise(selfUID string, peers map[string]PlayerRecord, rng *rand.Rand) (PlayerRecord, bool) {
	ids := make([]string, 0, len(peers))
	for uid := range peers {
		if uid != selfUID {
			ids = append(ids, uid)
		}
	}
	if len(ids) == 0 {
		return PlayerRecord{}, false
	}
	sort.Strings(ids)
	return peers[ids[rng.Intn(len(ids))]], true
}
