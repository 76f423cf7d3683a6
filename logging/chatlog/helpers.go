package chatlog

import (
	"context"

	"marauders-map/client/logging"
)

const (
	// EventMessageSent is emitted after a message lands in the store.
	EventMessageSent logging.EventType = "chat.message_sent"
	// EventMessageRejected is emitted when moderation refuses a message.
	EventMessageRejected logging.EventType = "chat.message_rejected"
	// EventConversationOpened is emitted when a proximity chat opens.
	EventConversationOpened logging.EventType = "chat.conversation_opened"
	// EventConversationClosed is emitted when a chat closes or is swept.
	EventConversationClosed logging.EventType = "chat.conversation_closed"
	// EventPlayerBlocked is emitted when the local player blocks someone.
	EventPlayerBlocked logging.EventType = "chat.player_blocked"
	// EventPlayerReported is emitted when the local player files a report.
	EventPlayerReported logging.EventType = "chat.player_reported"
)

// MessagePayload records the conversation a message belongs to. Message
// text is deliberately absent from logs.
type MessagePayload struct {
	ChatID  string `json:"chatId"`
	Whisper bool   `json:"whisper,omitempty"`
}

// MessageSent publishes a successful send.
func MessageSent(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload MessagePayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventMessageSent,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryChat,
		Payload:  payload,
	})
}

// MessageRejected publishes a moderation rejection.
func MessageRejected(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, chatID string) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventMessageRejected,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: logging.CategoryChat,
		Payload:  MessagePayload{ChatID: chatID},
	})
}

// ConversationOpened publishes a chat open between two players.
func ConversationOpened(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, target logging.EntityRef, chatID string) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventConversationOpened,
		Actor:    actor,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryChat,
		Payload:  MessagePayload{ChatID: chatID},
	})
}

// ConversationClosed publishes a chat close.
func ConversationClosed(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, chatID string, reason string) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventConversationClosed,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryChat,
		Payload:  map[string]any{"chatId": chatID, "reason": reason},
	})
}

// PlayerBlocked publishes a block action.
func PlayerBlocked(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, target logging.EntityRef) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventPlayerBlocked,
		Actor:    actor,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryChat,
	})
}

// PlayerReported publishes a report action.
func PlayerReported(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, target logging.EntityRef, distinct int) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventPlayerReported,
		Actor:    actor,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityWarn,
		Category: logging.CategoryChat,
		Payload:  map[string]any{"distinctReporters": distinct},
	})
}
