package world

import (
	"context"

	"marauders-map/client/logging"
)

const (
	// EventEncounterTriggered is emitted when a hostile NPC freezes the
	// local player.
	EventEncounterTriggered logging.EventType = "world.encounter_triggered"
	// EventEncounterResolved is emitted when the local player dismisses
	// the scare.
	EventEncounterResolved logging.EventType = "world.encounter_resolved"
	// EventChosenOneRotated is emitted when the coordinator crowns a new
	// chosen one.
	EventChosenOneRotated logging.EventType = "world.chosen_one_rotated"
	// EventGalleonCollected is emitted when the local player picks up a
	// galleon.
	EventGalleonCollected logging.EventType = "world.galleon_collected"
	// EventGalleonsRespawned is emitted when the coordinator reseeds the
	// galleon set.
	EventGalleonsRespawned logging.EventType = "world.galleons_respawned"
	// EventWeatherChanged is emitted when the rain state flips.
	EventWeatherChanged logging.EventType = "world.weather_changed"
	// EventOwlPostSent is emitted when the local player sends an owl.
	EventOwlPostSent logging.EventType = "world.owl_post_sent"
)

// EncounterPayload names the NPC behind a scare.
type EncounterPayload struct {
	NPCID    string `json:"npcId"`
	NPCName  string `json:"npcName"`
	Toast    string `json:"toast,omitempty"`
	Enhanced bool   `json:"enhanced,omitempty"`
}

// EncounterTriggered publishes a hostile encounter.
func EncounterTriggered(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload EncounterPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventEncounterTriggered,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryEncounter,
		Payload:  payload,
	})
}

// EncounterResolved publishes an encounter dismissal.
func EncounterResolved(ctx context.Context, pub logging.Publisher, actor logging.EntityRef) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventEncounterResolved,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryEncounter,
	})
}

// ChosenOneRotated publishes a chosen one rotation.
func ChosenOneRotated(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, chosenUID string) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventChosenOneRotated,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryWorld,
		Payload:  map[string]any{"chosen": chosenUID},
	})
}

// GalleonCollected publishes a pickup.
func GalleonCollected(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, galleonID string, score int) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventGalleonCollected,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryWorld,
		Payload:  map[string]any{"galleon": galleonID, "score": score},
	})
}

// GalleonsRespawned publishes a coordinator reseed.
func GalleonsRespawned(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, count int) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventGalleonsRespawned,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryWorld,
		Payload:  map[string]any{"count": count},
	})
}

// WeatherChanged publishes a rain flip.
func WeatherChanged(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, raining bool) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventWeatherChanged,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryWorld,
		Payload:  map[string]any{"raining": raining},
	})
}

// OwlPostSent publishes an owl post broadcast.
func OwlPostSent(ctx context.Context, pub logging.Publisher, actor logging.EntityRef) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventOwlPostSent,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryWorld,
	})
}
