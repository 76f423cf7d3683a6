package presence

import (
	"context"

	"marauders-map/client/logging"
)

const (
	// EventPlayerJoined is emitted when the local player enters a room.
	EventPlayerJoined logging.EventType = "presence.player_joined"
	// EventPlayerLeft is emitted when the local player leaves the world.
	EventPlayerLeft logging.EventType = "presence.player_left"
	// EventPeerJoined is emitted when a remote player appears in the room.
	EventPeerJoined logging.EventType = "presence.peer_joined"
	// EventPlayerIdle is emitted when the idle sweep flags the local player.
	EventPlayerIdle logging.EventType = "presence.player_idle"
	// EventPlayerBanned is emitted when a ban lands on the local player.
	EventPlayerBanned logging.EventType = "presence.player_banned"
	// EventCoordinatorChanged is emitted when the local coordinator flag flips.
	EventCoordinatorChanged logging.EventType = "presence.coordinator_changed"
)

// JoinedPayload captures spawn metadata for a join.
type JoinedPayload struct {
	RoomID string  `json:"roomId"`
	Name   string  `json:"name"`
	House  string  `json:"house"`
	SpawnX float64 `json:"spawnX"`
	SpawnY float64 `json:"spawnY"`
}

// CoordinatorPayload records the direction of a coordinator transition.
type CoordinatorPayload struct {
	Coordinator bool `json:"coordinator"`
	ActiveCount int  `json:"activeCount"`
}

// PlayerJoined publishes a local join event.
func PlayerJoined(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload JoinedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventPlayerJoined,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryPresence,
		Payload:  payload,
	})
}

// PeerJoined publishes a remote arrival event.
func PeerJoined(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, name string) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventPeerJoined,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryPresence,
		Payload:  map[string]any{"name": name},
	})
}

// PlayerLeft publishes a local leave event.
func PlayerLeft(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, reason string) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventPlayerLeft,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryPresence,
		Payload:  map[string]any{"reason": reason},
	})
}

// PlayerIdle publishes an idle flag transition.
func PlayerIdle(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, idle bool) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventPlayerIdle,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryPresence,
		Payload:  map[string]any{"idle": idle},
	})
}

// PlayerBanned publishes a ban notification.
func PlayerBanned(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, reports int) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventPlayerBanned,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: logging.CategoryPresence,
		Payload:  map[string]any{"reports": reports},
	})
}

// CoordinatorChanged publishes a coordinator flag transition.
func CoordinatorChanged(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload CoordinatorPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventCoordinatorChanged,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryPresence,
		Payload:  payload,
	})
}
