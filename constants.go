package main

import "time"

const (
	tickRate = 20 // simulation ticks per second

	worldWidth    = 1200.0
	worldHeight   = 800.0
	avatarFoot    = 24.0 // footprint subtracted from the far map edge
	stepDistance  = 12.0
	runMultiplier = 1.5

	stepIntervalWalk = 180 * time.Millisecond
	stepIntervalRun  = 100 * time.Millisecond

	chatRadius    = 50.0
	whisperRadius = 25.0

	activeWindow      = 30 * time.Second
	heartbeatInterval = 10 * time.Second
	idleCheckInterval = 10 * time.Second
	idleAfter         = 5 * time.Minute
	sweepInterval     = 10 * time.Second

	roomCap    = 20
	roomPrefix = "room-"

	defaultSpawnX = 240.0
	defaultSpawnY = 240.0

	encounterRadius           = 80.0
	encounterRadiusEnhanced   = 120.0
	encounterCooldown         = 15 * time.Second
	encounterCooldownEnhanced = 8 * time.Second
	freezeDuration            = 2500 * time.Millisecond
	freezeDurationEnhanced    = 4 * time.Second
	scaredToastDuration       = 2500 * time.Millisecond

	chosenOneInitialDelay = time.Minute
	chosenOneInterval     = 10 * time.Minute
	chosenOneDuration     = 10 * time.Minute

	galleonRespawnInterval = 2 * time.Minute
	galleonPickupRadius    = 25.0
	galleonPoints          = 10
	galleonSpawnJitter     = 50.0

	owlPostFreshWindow = 30 * time.Second
	owlPostBannerShow  = 10 * time.Second

	weatherToggleInterval = 5 * time.Minute
	weatherToggleChance   = 0.3
	rainParticleCap       = 200
	rainSpawnPerTick      = 5

	candleCount = 12

	mirrorX      = 300.0
	mirrorY      = 250.0
	mirrorRadius = 40.0

	reportBanThreshold = 3
)

// enhancedHostileMode gates the override-during-genuine-night escalation.
// Flip to false to keep hostile NPCs at their normal danger level even when
// the operator forces night during real night.
const enhancedHostileMode = true
