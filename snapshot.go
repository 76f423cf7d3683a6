package main

// SessionSnapshot is a consistent copy of the observable session state,
// taken under the lock for render loops and diagnostics.
type SessionSnapshot struct {
	UID         string
	Name        string
	House       House
	RoomID      string
	Pos         vec2
	Score       int
	Idle        bool
	Banned      bool
	Coordinator bool
	ChosenOne   bool
	Frozen      bool
	Encounter   string
	Blinded     bool
	Raining     bool
	Darkness    bool
	TimeOfDay   timeOfDay
	Peers       map[string]PlayerRecord
	NPCs        map[string]vec2
	Galleons    map[string]GalleonRecord
	Leaderboard map[string]LeaderboardEntry
}

// Snapshot renders the current state. The maps are copies; callers may
// hold them across ticks.
func (s *Session) Snapshot() SessionSnapshot {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	peers := make(map[string]PlayerRecord, len(s.peers))
	for uid, rec := range s.peers {
		peers[uid] = rec
	}
	npcs := make(map[string]vec2, len(s.npcs))
	hostile := hostilesActiveAt(now, s.nightOverride)
	for _, npc := range s.npcs {
		if npc.Hostile && !hostile {
			continue
		}
		npcs[npc.ID] = npc.Pos
	}
	galleons := make(map[string]GalleonRecord, len(s.galleons))
	for id, g := range s.galleons {
		galleons[id] = g
	}
	board := make(map[string]LeaderboardEntry, len(s.leaderboard))
	for uid, entry := range s.leaderboard {
		board[uid] = entry
	}

	return SessionSnapshot{
		UID:         s.uid,
		Name:        s.name,
		House:       s.house,
		RoomID:      s.roomID,
		Pos:         s.pos,
		Score:       s.score,
		Idle:        s.idle,
		Banned:      s.banned,
		Coordinator: s.coordinator,
		ChosenOne:   s.chosenOne,
		Frozen:      s.encounters.frozenAt(now),
		Encounter:   s.encounters.activeNPC,
		Blinded:     !s.blindedUntil.IsZero() && now.Before(s.blindedUntil),
		Raining:     s.raining,
		Darkness:    showDarknessAt(now, s.nightOverride),
		TimeOfDay:   timeOfDayAt(now),
		Peers:       peers,
		NPCs:        npcs,
		Galleons:    galleons,
		Leaderboard: board,
	}
}

// visibleName resolves the presentation identity of a record, honoring a
// polyjuice disguise.
func visibleName(rec PlayerRecord) (string, House) {
	if rec.PolyjuiceAs != "" {
		return rec.PolyjuiceAs, rec.PolyjuiceHouse
	}
	return rec.Name, rec.House
}
