package main

import "time"

type timeOfDay string

const (
	timeMorning   timeOfDay = "morning"
	timeAfternoon timeOfDay = "afternoon"
	timeEvening   timeOfDay = "evening"
	timeNight     timeOfDay = "night"
)

func timeOfDayAt(now time.Time) timeOfDay {
	hour := now.Hour()
	switch {
	case hour >= 6 && hour < 12:
		return timeMorning
	case hour >= 12 && hour < 17:
		return timeAfternoon
	case hour >= 17 && hour < 21:
		return timeEvening
	default:
		return timeNight
	}
}

// isCurfewAt reports genuine night: 21:00 through 05:59 local time.
func isCurfewAt(now time.Time) bool {
	hour := now.Hour()
	return hour >= 21 || hour < 6
}

// The override toggle interacts with genuine night as a four-quadrant
// matrix. Darkness flips under override, hostile mode is night OR override,
// and the enhanced escalation needs both at once.
//
//	night, no override -> dark, hostile
//	night, override    -> lit, hostile, enhanced
//	day, no override   -> lit, calm
//	day, override      -> dark, hostile

func showDarknessAt(now time.Time, override bool) bool {
	night := isCurfewAt(now)
	return (night && !override) || (!night && override)
}

func hostilesActiveAt(now time.Time, override bool) bool {
	return isCurfewAt(now) || override
}

func enhancedModeAt(now time.Time, override bool) bool {
	return enhancedHostileMode && override && isCurfewAt(now)
}
