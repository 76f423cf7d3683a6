package main

import (
	"testing"
	"time"
)

func TestCurfewHours(t *testing.T) {
	cases := []struct {
		hour   int
		curfew bool
	}{
		{0, true},
		{5, true},
		{6, false},
		{12, false},
		{20, false},
		{21, true},
		{23, true},
	}
	for _, tc := range cases {
		now := time.Date(2025, 3, 10, tc.hour, 30, 0, 0, time.UTC)
		if got := isCurfewAt(now); got != tc.curfew {
			t.Fatalf("hour %d: curfew = %v, want %v", tc.hour, got, tc.curfew)
		}
	}
}

func TestNightOverrideMatrix(t *testing.T) {
	day := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	night := time.Date(2025, 3, 10, 23, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		now      time.Time
		override bool
		dark     bool
		hostile  bool
		enhanced bool
	}{
		{"day plain", day, false, false, false, false},
		{"day override", day, true, true, true, false},
		{"night plain", night, false, true, true, false},
		{"night override", night, true, false, true, true},
	}
	for _, tc := range cases {
		if got := showDarknessAt(tc.now, tc.override); got != tc.dark {
			t.Fatalf("%s: darkness = %v, want %v", tc.name, got, tc.dark)
		}
		if got := hostilesActiveAt(tc.now, tc.override); got != tc.hostile {
			t.Fatalf("%s: hostile = %v, want %v", tc.name, got, tc.hostile)
		}
		if got := enhancedModeAt(tc.now, tc.override); got != tc.enhanced {
			t.Fatalf("%s: enhanced = %v, want %v", tc.name, got, tc.enhanced)
		}
	}
}

func TestTimeOfDayBuckets(t *testing.T) {
	cases := []struct {
		hour int
		want timeOfDay
	}{
		{7, timeMorning},
		{13, timeAfternoon},
		{18, timeEvening},
		{22, timeNight},
		{3, timeNight},
	}
	for _, tc := range cases {
		now := time.Date(2025, 3, 10, tc.hour, 0, 0, 0, time.UTC)
		if got := timeOfDayAt(now); got != tc.want {
			t.Fatalf("hour %d: time of day = %q, want %q", tc.hour, got, tc.want)
		}
	}
}
