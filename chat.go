package main

import (
	"sort"
	"strings"
	"time"
)

// conversationIDFor derives the shared chat key for a pair. Both sides
// sort the ids so they land on the same conversation regardless of who
// initiated.
func conversationIDFor(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "_" + b
}

func conversationMembers(chatID string) (string, string) {
	parts := strings.SplitN(chatID, "_", 2)
	if len(parts) != 2 {
		return chatID, ""
	}
	return parts[0], parts[1]
}

func withinChatRange(a, b vec2) bool { return distance(a, b) <= chatRadius }

func withinWhisperRange(a, b vec2) bool { return distance(a, b) <= whisperRadius }

// newMessage builds a moderated outgoing message. Rejection happens
// before anything touches the shared store.
func newMessage(text string, sender string, senderName string, house House, now time.Time) (Message, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || containsBannedContent(trimmed) {
		return Message{}, ErrMessageRejected
	}
	return Message{
		Text:        trimmed,
		Sender:      sender,
		SenderName:  senderName,
		SenderHouse: house,
		CreatedAt:   now.UnixMilli(),
		DeliveredTo: map[string]bool{sender: true},
		SeenBy:      map[string]bool{sender: true},
	}, nil
}

// orphanConversations lists chat ids missing any active participant. A
// thread needs both sides present to stay valid, so one leaver orphans
// it. The sweep keeps the message subtree from accumulating dead threads
// as players churn.
func orphanConversations(room RoomRecord, now time.Time) []string {
	active := activeUsers(room.Users, now)
	var orphans []string
	for chatID, conv := range room.Messages {
		for uid := range conv.Participants {
			if _, ok := active[uid]; !ok {
				orphans = append(orphans, chatID)
				break
			}
		}
	}
	sort.Strings(orphans)
	return orphans
}

// conversationsInvolving lists chat ids a user participates in, used for
// the leave cascade and for closing chats on block.
func conversationsInvolving(room RoomRecord, uid string) []string {
	var ids []string
	for chatID, conv := range room.Messages {
		if conv.Participants[uid] {
			ids = append(ids, chatID)
		}
	}
	sort.Strings(ids)
	return ids
}

// isBlockedEitherWay reports whether either side has blocked the other.
// A blocked pair can neither open a conversation nor exchange messages.
func isBlockedEitherWay(blocks map[string]map[string]bool, a, b string) bool {
	return blocks[a][b] || blocks[b][a]
}

// distinctReporters counts unique reporters against a target, ignoring
// self-reports.
func distinctReporters(reports map[string]bool, target string) int {
	count := 0
	for reporter, flagged := range reports {
		if flagged && reporter != target {
			count++
		}
	}
	return count
}

func shouldAutoBan(reports map[string]bool, target string) bool {
	return distinctReporters(reports, target) >= reportBanThreshold
}
