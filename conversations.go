package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"marauders-map/client/logging"
	"marauders-map/client/logging/chatlog"
	"marauders-map/client/logging/presence"
)

// OpenConversation starts or rejoins the proximity chat with another
// player. Both sides derive the same chat id, so whichever client writes
// first creates the thread and the other lands in it.
func (s *Session) OpenConversation(ctx context.Context, otherUID string) (string, error) {
	now := s.now()

	s.mu.Lock()
	if s.roomID == "" {
		s.mu.Unlock()
		return "", ErrNotJoined
	}
	roomID := s.roomID
	other, ok := s.peers[otherUID]
	blocked := isBlockedEitherWay(s.blocks, s.uid, otherUID)
	inRange := ok && withinChatRange(s.pos, other.position())
	s.mu.Unlock()

	if !ok || !other.activeAt(now) {
		return "", ErrNoTarget
	}
	if blocked || !inRange {
		return "", ErrNoTarget
	}

	chatID := conversationIDFor(s.uid, otherUID)
	err := s.store.Update(ctx, conversationPath(roomID, chatID), map[string]any{
		"participants/" + s.uid:    true,
		"participants/" + otherUID: true,
		"status/active":            true,
		"status/users/" + s.uid:    true,
	})
	if err != nil {
		return "", fmt.Errorf("open conversation: %w", err)
	}

	s.mu.Lock()
	s.activeChatID = chatID
	s.mu.Unlock()

	chatlog.ConversationOpened(ctx, s.publisher, s.actorRef(),
		logging.EntityRef{ID: otherUID, Kind: logging.EntityKindPlayer}, chatID)
	return chatID, nil
}

// CloseConversation marks the local side gone. The thread itself stays
// until the orphan sweep or a leave cascade removes it.
func (s *Session) CloseConversation(ctx context.Context) error {
	s.mu.Lock()
	chatID := s.activeChatID
	roomID := s.roomID
	s.activeChatID = ""
	s.mu.Unlock()
	if chatID == "" || roomID == "" {
		return nil
	}
	err := s.store.Update(ctx, conversationPath(roomID, chatID), map[string]any{
		"status/users/" + s.uid: nil,
	})
	if err != nil {
		return fmt.Errorf("close conversation: %w", err)
	}
	chatlog.ConversationClosed(ctx, s.publisher, s.actorRef(), chatID, "closed")
	return nil
}

// SendMessage moderates and appends a message to the active chat. A
// whisper only lands when the pair stands inside the tighter radius.
func (s *Session) SendMessage(ctx context.Context, text string, whisper bool) error {
	now := s.now()

	s.mu.Lock()
	chatID := s.activeChatID
	roomID := s.roomID
	name := s.name
	house := s.house
	pos := s.pos
	s.lastActivity = now
	var otherPos vec2
	otherKnown := false
	if chatID != "" {
		a, b := conversationMembers(chatID)
		otherUID := a
		if otherUID == s.uid {
			otherUID = b
		}
		if rec, ok := s.peers[otherUID]; ok {
			otherPos = rec.position()
			otherKnown = true
		}
	}
	s.mu.Unlock()

	if chatID == "" || roomID == "" {
		return ErrNotJoined
	}
	if whisper && (!otherKnown || !withinWhisperRange(pos, otherPos)) {
		return ErrNoTarget
	}

	msg, err := newMessage(text, s.uid, name, house, now)
	if err != nil {
		chatlog.MessageRejected(ctx, s.publisher, s.actorRef(), chatID)
		return err
	}

	msgID := uuid.NewString()
	path := conversationMessagesPath(roomID, chatID) + "/" + msgID
	if err := s.store.Set(ctx, path, msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	chatlog.MessageSent(ctx, s.publisher, s.actorRef(), chatlog.MessagePayload{
		ChatID:  chatID,
		Whisper: whisper,
	})
	return nil
}

// markDelivered flags incoming messages as delivered to the local uid.
// Called from the conversation snapshot handler.
func (s *Session) markDelivered(ctx context.Context, roomID, chatID string, conv ConversationRecord) {
	for msgID, msg := range conv.Messages {
		if msg.Sender == s.uid || msg.DeliveredTo[s.uid] {
			continue
		}
		s.store.Update(ctx, conversationMessagesPath(roomID, chatID)+"/"+msgID, map[string]any{
			"deliveredTo/" + s.uid: true,
		})
	}
}

// MarkSeen flags every message in the active chat as read.
func (s *Session) MarkSeen(ctx context.Context) {
	s.mu.Lock()
	chatID := s.activeChatID
	roomID := s.roomID
	conv := s.conversations[chatID]
	s.mu.Unlock()
	if chatID == "" || roomID == "" {
		return
	}
	for msgID, msg := range conv.Messages {
		if msg.Sender == s.uid || msg.SeenBy[s.uid] {
			continue
		}
		s.store.Update(ctx, conversationMessagesPath(roomID, chatID)+"/"+msgID, map[string]any{
			"seenBy/" + s.uid: true,
		})
	}
}

// Block records a block edge and closes any open chat with the target.
func (s *Session) Block(ctx context.Context, targetUID string) error {
	s.mu.Lock()
	roomID := s.roomID
	chatID := s.activeChatID
	s.mu.Unlock()
	if roomID == "" {
		return ErrNotJoined
	}
	if err := s.store.Set(ctx, blockPairPath(roomID, s.uid, targetUID), true); err != nil {
		return fmt.Errorf("block: %w", err)
	}
	if chatID == conversationIDFor(s.uid, targetUID) {
		s.CloseConversation(ctx)
	}
	chatlog.PlayerBlocked(ctx, s.publisher, s.actorRef(),
		logging.EntityRef{ID: targetUID, Kind: logging.EntityKindPlayer})
	return nil
}

// Unblock clears a block edge.
func (s *Session) Unblock(ctx context.Context, targetUID string) error {
	s.mu.Lock()
	roomID := s.roomID
	s.mu.Unlock()
	if roomID == "" {
		return ErrNotJoined
	}
	return s.store.Remove(ctx, blockPairPath(roomID, s.uid, targetUID))
}

// Report files a report against a player. The ban itself is applied by
// the reported player's own client once enough distinct reports land.
func (s *Session) Report(ctx context.Context, targetUID string) error {
	s.mu.Lock()
	roomID := s.roomID
	distinct := distinctReporters(s.reports[targetUID], targetUID)
	s.mu.Unlock()
	if roomID == "" {
		return ErrNotJoined
	}
	err := s.store.Set(ctx, reportPath(roomID, targetUID)+"/"+s.uid, true)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}
	chatlog.PlayerReported(ctx, s.publisher, s.actorRef(),
		logging.EntityRef{ID: targetUID, Kind: logging.EntityKindPlayer}, distinct+1)
	return nil
}

// applyBan marks the local record banned and freezes further input. The
// trust model is cooperative: each client enforces its own ban.
func (s *Session) applyBan(ctx context.Context, reports int) {
	now := s.now()
	s.mu.Lock()
	if s.banned {
		s.mu.Unlock()
		return
	}
	s.banned = true
	roomID := s.roomID
	s.mu.Unlock()

	s.store.Update(ctx, userPath(roomID, s.uid), map[string]any{
		"banned":    true,
		"bannedAt":  now.UnixMilli(),
		"updatedAt": now.UnixMilli(),
	})
	presence.PlayerBanned(ctx, s.publisher, s.actorRef(), reports)
}
