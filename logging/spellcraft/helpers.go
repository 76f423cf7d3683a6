package spellcraft

import (
	"context"

	"marauders-map/client/logging"
)

const (
	// EventSpellCast is emitted on a successful cast.
	EventSpellCast logging.EventType = "spell.cast"
	// EventSpellRejected is emitted when a cast fails validation.
	EventSpellRejected logging.EventType = "spell.rejected"
	// EventEffectApplied is emitted when a peer-written effect lands on
	// the local record.
	EventEffectApplied logging.EventType = "spell.effect_applied"
	// EventEffectExpired is emitted when a timed effect clears.
	EventEffectExpired logging.EventType = "spell.effect_expired"
)

// CastPayload names the spell and optional target of a cast.
type CastPayload struct {
	Spell  string `json:"spell"`
	Target string `json:"target,omitempty"`
}

// Cast publishes a successful cast.
func Cast(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload CastPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventSpellCast,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategorySpell,
		Payload:  payload,
	})
}

// Rejected publishes a failed cast with the rejection reason.
func Rejected(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, spell string, reason string) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventSpellRejected,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategorySpell,
		Payload:  map[string]any{"spell": spell, "reason": reason},
	})
}

// EffectApplied publishes a peer effect landing locally.
func EffectApplied(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, effect string, by string) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventEffectApplied,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategorySpell,
		Payload:  map[string]any{"effect": effect, "by": by},
	})
}

// EffectExpired publishes a timed effect clearing.
func EffectExpired(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, effect string) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventEffectExpired,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategorySpell,
		Payload:  map[string]any{"effect": effect},
	})
}
