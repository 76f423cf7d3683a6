package main

import (
	"math"
	"math/rand"
)

// Ambient creatures and weather are pure local color: simulated per client,
// never published.

type owlState struct {
	Pos    vec2
	Target vec2
}

func newOwlState(rng *rand.Rand) owlState {
	return owlState{
		Pos:    vec2{X: 100, Y: 50},
		Target: vec2{X: 500, Y: 100},
	}
}

// advanceOwl flies toward the target at a fixed pace and retargets on
// arrival inside the upper sky band.
func advanceOwl(owl owlState, rng *rand.Rand) owlState {
	dx := owl.Target.X - owl.Pos.X
	dy := owl.Target.Y - owl.Pos.Y
	dist := math.Hypot(dx, dy)
	if dist < 10 {
		owl.Target = vec2{
			X: rng.Float64()*600 + 50,
			Y: rng.Float64()*200 + 30,
		}
		return owl
	}
	owl.Pos.X += dx / dist * 2
	owl.Pos.Y += dy / dist * 2
	return owl
}

type ratState struct {
	Pos       vec2
	Direction float64 // +1 or -1 along the x axis
}

func newRatState() ratState {
	return ratState{Pos: vec2{X: 50, Y: 700}, Direction: 1}
}

// advanceRat scurries along a fixed corridor, bouncing at the ends and
// occasionally reversing on a whim.
func advanceRat(rat ratState, rng *rand.Rand) ratState {
	next := rat.Pos.X + rat.Direction*1.5
	if next < 20 || next > 580 {
		rat.Direction = -rat.Direction
		next = rat.Pos.X + rat.Direction*1.5
	}
	if rng.Float64() < 0.02 {
		rat.Direction = -rat.Direction
	}
	rat.Pos.X = next
	return rat
}

type candleState struct {
	Pos     vec2
	BaseY   float64
	Drift   float64
	Speed   float64
	Flicker float64
}

func newCandles(rng *rand.Rand) []candleState {
	candles := make([]candleState, candleCount)
	for i := range candles {
		y := rng.Float64()*500 + 50
		candles[i] = candleState{
			Pos:     vec2{X: rng.Float64()*600 + 50, Y: y},
			BaseY:   y,
			Drift:   rng.Float64() * 2 * math.Pi,
			Speed:   0.5 + rng.Float64()*0.5,
			Flicker: rng.Float64(),
		}
	}
	return candles
}

// advanceCandles drifts each flame sinusoidally around its anchor.
func advanceCandles(candles []candleState, nowMs int64, rng *rand.Rand) {
	t := float64(nowMs)
	for i := range candles {
		c := &candles[i]
		c.Pos.X += math.Sin(t*0.001*c.Speed+c.Drift) * 0.3
		c.Pos.Y = c.BaseY + math.Sin(t*0.002*c.Speed)*10
		c.Flicker = 0.7 + rng.Float64()*0.3
	}
}

type rainParticle struct {
	Pos    vec2
	Speed  float64
	Length float64
}

// advanceRain spawns a few drops at the top, advances the rest, and drops
// everything past the bottom edge, capped at rainParticleCap.
func advanceRain(particles []rainParticle, raining bool, height float64, rng *rand.Rand) []rainParticle {
	if !raining {
		return nil
	}
	for i := 0; i < rainSpawnPerTick; i++ {
		particles = append(particles, rainParticle{
			Pos:    vec2{X: rng.Float64() * worldWidth, Y: -10},
			Speed:  5 + rng.Float64()*5,
			Length: 10 + rng.Float64()*10,
		})
	}
	kept := particles[:0]
	for _, p := range particles {
		p.Pos.Y += p.Speed
		if p.Pos.Y < height {
			kept = append(kept, p)
		}
	}
	if len(kept) > rainParticleCap {
		kept = kept[len(kept)-rainParticleCap:]
	}
	return kept
}

// rollWeather flips the rain state with a fixed chance per interval.
func rollWeather(raining bool, rng *rand.Rand) bool {
	if rng.Float64() < weatherToggleChance {
		return !raining
	}
	return raining
}
