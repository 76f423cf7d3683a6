package main

import (
	"math/rand"
	"testing"
)

func TestRainRespectsCapAndClearsWhenDry(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	var particles []rainParticle
	for i := 0; i < 500; i++ {
		particles = advanceRain(particles, true, worldHeight, rng)
		if len(particles) > rainParticleCap {
			t.Fatalf("tick %d: %d particles, cap %d", i, len(particles), rainParticleCap)
		}
	}
	if len(particles) == 0 {
		t.Fatalf("steady rain produced no particles")
	}
	for _, p := range particles {
		if p.Pos.Y >= worldHeight {
			t.Fatalf("particle below the world edge: %.1f", p.Pos.Y)
		}
	}

	if got := advanceRain(particles, false, worldHeight, rng); got != nil {
		t.Fatalf("dry weather must clear all particles")
	}
}

func TestRollWeatherDeterministicUnderSeed(t *testing.T) {
	a := rand.New(rand.NewSource(42))
	b := rand.New(rand.NewSource(42))
	state1, state2 := false, false
	flips := 0
	for i := 0; i < 200; i++ {
		next1 := rollWeather(state1, a)
		next2 := rollWeather(state2, b)
		if next1 != next2 {
			t.Fatalf("step %d diverged under the same seed", i)
		}
		if next1 != state1 {
			flips++
		}
		state1, state2 = next1, next2
	}
	if flips == 0 {
		t.Fatalf("weather never flipped in 200 rolls")
	}
}

func TestRatStaysInCorridor(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	rat := newRatState()
	for i := 0; i < 10000; i++ {
		rat = advanceRat(rat, rng)
		if rat.Pos.X < 18 || rat.Pos.X > 582 {
			t.Fatalf("tick %d: rat escaped corridor at %.1f", i, rat.Pos.X)
		}
	}
}

func TestOwlRetargetsNearArrival(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	owl := newOwlState(rng)
	for i := 0; i < 5000; i++ {
		before := owl.Target
		owl = advanceOwl(owl, rng)
		if owl.Target != before && distance(owl.Pos, before) >= 10 {
			t.Fatalf("tick %d: retargeted while %f from goal", i, distance(owl.Pos, before))
		}
	}
}
