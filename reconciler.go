package main

import (
	"context"
	"encoding/json"
	"time"

	"marauders-map/client/internal/store"
	"marauders-map/client/logging"
	"marauders-map/client/logging/presence"
	"marauders-map/client/logging/spellcraft"
)

// subscribeRoom registers the room subtree listeners. Handlers run on the
// store's dispatch goroutine; every write they trigger goes back through
// the store, never into local state directly.
func (s *Session) subscribeRoom(roomID string) error {
	type entry struct {
		path string
		fn   store.SubscriptionFunc
	}
	entries := []entry{
		{usersPath(roomID), func(raw json.RawMessage) { s.handleUsers(roomID, raw) }},
		{messagesPath(roomID), func(raw json.RawMessage) { s.handleConversations(roomID, raw) }},
		{blocksPath(roomID), s.handleBlocks},
		{reportsPath(roomID), func(raw json.RawMessage) { s.handleReports(raw) }},
		{chosenOnePath(roomID), s.handleChosenOne},
		{galleonsPath(roomID), s.handleGalleons},
		{leaderboardPath(roomID), s.handleLeaderboard},
		{owlPostPath(roomID), s.handleOwlPost},
	}
	for _, e := range entries {
		sub, err := s.store.Subscribe(e.path, e.fn)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.subs = append(s.subs, sub)
		s.mu.Unlock()
	}
	return nil
}

// handleUsers reconciles the room roster. Stale records are filtered
// right here at the read edge, so the rest of the session only ever sees
// present players. The local record doubles as the channel peers use to
// land effects on us.
func (s *Session) handleUsers(roomID string, raw json.RawMessage) {
	ctx := context.Background()
	now := s.now()

	var users map[string]PlayerRecord
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &users); err != nil {
			return
		}
	}

	self, hasSelf := users[s.uid]
	delete(users, s.uid)
	peers := activeUsers(users, now)

	s.mu.Lock()
	var arrivals []PlayerRecord
	arrivalIDs := []string{}
	for uid, rec := range peers {
		if _, known := s.peers[uid]; known {
			continue
		}
		if isBlockedEitherWay(s.blocks, s.uid, uid) {
			continue
		}
		arrivals = append(arrivals, rec)
		arrivalIDs = append(arrivalIDs, uid)
	}
	s.peers = peers

	active := make(map[string]PlayerRecord, len(peers)+1)
	for uid, rec := range peers {
		active[uid] = rec
	}
	if !s.banned {
		active[s.uid] = s.recordLocked(now)
	}
	coordinator := isCoordinator(s.uid, active)
	coordinatorChanged := coordinator != s.coordinator
	s.coordinator = coordinator

	// An open conversation only stays open while the other side is still
	// present and within speaking distance.
	outOfRange := false
	if s.activeChatID != "" {
		a, b := conversationMembers(s.activeChatID)
		other := a
		if other == s.uid {
			other = b
		}
		rec, present := peers[other]
		outOfRange = !present || !withinChatRange(s.pos, rec.position())
	}
	s.mu.Unlock()

	if outOfRange {
		s.CloseConversation(ctx)
	}

	for i, rec := range arrivals {
		presence.PeerJoined(ctx, s.publisher,
			logging.EntityRef{ID: arrivalIDs[i], Kind: logging.EntityKindPlayer}, rec.Name)
	}
	if coordinatorChanged {
		presence.CoordinatorChanged(ctx, s.publisher, s.actorRef(), presence.CoordinatorPayload{
			Coordinator: coordinator,
			ActiveCount: len(active),
		})
	}
	if hasSelf {
		s.reconcileSelf(ctx, roomID, self, now)
	}
}

// reconcileSelf applies peer-written effects from the published copy of
// the local record, then writes the transient flags back off so each
// effect fires once.
func (s *Session) reconcileSelf(ctx context.Context, roomID string, rec PlayerRecord, now time.Time) {
	clears := map[string]any{}

	if rec.Banned {
		s.mu.Lock()
		wasBanned := s.banned
		s.banned = true
		s.mu.Unlock()
		if !wasBanned {
			presence.PlayerBanned(ctx, s.publisher, s.actorRef(), rec.ReportsCount)
		}
	}

	if rec.Blinded {
		until := time.UnixMilli(rec.BlindedUntil)
		if now.Before(until) {
			s.mu.Lock()
			applied := !s.blindedUntil.Equal(until)
			s.blindedUntil = until
			s.mu.Unlock()
			if applied {
				spellcraft.EffectApplied(ctx, s.publisher, s.actorRef(), "blinded", rec.BlindedBy)
			}
		} else {
			s.mu.Lock()
			s.blindedUntil = time.Time{}
			s.mu.Unlock()
			clears["blinded"] = nil
			clears["blindedUntil"] = nil
			clears["blindedBy"] = nil
		}
	}

	if rec.KnockedBack {
		// The caster rolled the absolute landing spot; adopt it as is.
		s.mu.Lock()
		s.pos = clampToWorld(vec2{X: rec.KnockbackX, Y: rec.KnockbackY})
		pos := s.pos
		s.mu.Unlock()
		spellcraft.EffectApplied(ctx, s.publisher, s.actorRef(), "knockedBack", rec.KnockedBackBy)
		clears["knockedBack"] = nil
		clears["knockbackX"] = nil
		clears["knockbackY"] = nil
		clears["knockedBackBy"] = nil
		clears["x"] = pos.X
		clears["y"] = pos.Y
	}

	if len(clears) > 0 {
		clears["updatedAt"] = now.UnixMilli()
		s.store.Update(ctx, userPath(roomID, s.uid), clears)
	}
}

// handleConversations mirrors the message subtree and marks incoming
// messages delivered.
func (s *Session) handleConversations(roomID string, raw json.RawMessage) {
	ctx := context.Background()

	var convs map[string]ConversationRecord
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &convs); err != nil {
			return
		}
	}
	if convs == nil {
		convs = map[string]ConversationRecord{}
	}

	s.mu.Lock()
	s.conversations = convs
	activeChat := s.activeChatID
	if activeChat != "" {
		if conv, ok := convs[activeChat]; !ok || !conv.Status.Active {
			s.activeChatID = ""
		}
	}
	s.mu.Unlock()

	for chatID, conv := range convs {
		if conv.Participants[s.uid] {
			s.markDelivered(ctx, roomID, chatID, conv)
		}
	}
}

func (s *Session) handleBlocks(raw json.RawMessage) {
	var blocks map[string]map[string]bool
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &blocks); err != nil {
			return
		}
	}
	if blocks == nil {
		blocks = map[string]map[string]bool{}
	}
	s.mu.Lock()
	s.blocks = blocks
	blockedChat := s.activeChatID != "" && func() bool {
		a, b := conversationMembers(s.activeChatID)
		return isBlockedEitherWay(blocks, a, b)
	}()
	s.mu.Unlock()
	if blockedChat {
		s.CloseConversation(context.Background())
	}
}

// handleReports watches for the local uid crossing the ban threshold.
// Bans are self-applied; every client trusts the shared report counts.
func (s *Session) handleReports(raw json.RawMessage) {
	var reports map[string]map[string]bool
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &reports); err != nil {
			return
		}
	}
	if reports == nil {
		reports = map[string]map[string]bool{}
	}
	s.mu.Lock()
	s.reports = reports
	s.mu.Unlock()

	if shouldAutoBan(reports[s.uid], s.uid) {
		s.applyBan(context.Background(), distinctReporters(reports[s.uid], s.uid))
	}
}

func (s *Session) handleChosenOne(raw json.RawMessage) {
	var rec ChosenOneRecord
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &rec); err != nil {
			return
		}
	}
	now := s.now()
	s.mu.Lock()
	s.chosenRecord = rec
	s.chosenOne = rec.UID == s.uid && now.UnixMilli() < rec.ExpiresAt
	s.mu.Unlock()
}

func (s *Session) handleGalleons(raw json.RawMessage) {
	var set map[string]GalleonRecord
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &set); err != nil {
			return
		}
	}
	if set == nil {
		set = map[string]GalleonRecord{}
	}
	s.mu.Lock()
	s.galleons = set
	s.mu.Unlock()
}

// handleLeaderboard mirrors the room tally. The local score adopts the
// published row when it is ahead, so a rejoining player keeps earned
// points.
func (s *Session) handleLeaderboard(raw json.RawMessage) {
	var board map[string]LeaderboardEntry
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &board); err != nil {
			return
		}
	}
	if board == nil {
		board = map[string]LeaderboardEntry{}
	}
	s.mu.Lock()
	s.leaderboard = board
	if entry, ok := board[s.uid]; ok && entry.Score > s.score {
		s.score = entry.Score
	}
	s.mu.Unlock()
}

// handleOwlPost keeps the latest broadcast. Freshness is decided by the
// reader; stale banners are simply not shown.
func (s *Session) handleOwlPost(raw json.RawMessage) {
	var rec OwlPostRecord
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &rec); err != nil {
			return
		}
	}
	s.mu.Lock()
	s.lastOwlPost = rec
	s.mu.Unlock()
}

// FreshOwlPost returns the current banner when it is recent enough to
// show.
func (s *Session) FreshOwlPost() (OwlPostRecord, bool) {
	now := s.now()
	s.mu.Lock()
	rec := s.lastOwlPost
	s.mu.Unlock()
	if rec.Timestamp == 0 {
		return OwlPostRecord{}, false
	}
	age := now.UnixMilli() - rec.Timestamp
	if age > owlPostFreshWindow.Milliseconds() {
		return OwlPostRecord{}, false
	}
	return rec, true
}
