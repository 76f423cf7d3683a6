package main

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"marauders-map/client/internal/store"
	"marauders-map/client/logging"
	"marauders-map/client/logging/chatlog"
	"marauders-map/client/logging/presence"
	"marauders-map/client/logging/spellcraft"
	worldlog "marauders-map/client/logging/world"
)

const simInterval = time.Second / tickRate

// SessionConfig wires one client session. Zero-value fields fall back to
// sane defaults so tests can inject only what they exercise.
type SessionConfig struct {
	Store     store.Store
	Publisher logging.Publisher
	Rand      *rand.Rand
	Now       func() time.Time

	UID string

	// NightOverride forces the hostile period regardless of wall clock.
	NightOverride bool
}

// Session is the local player's world engine. It owns the authoritative
// copy of the local player record, mirrors the room state the store
// publishes, and runs the private NPC and ambience simulation.
type Session struct {
	mu sync.Mutex

	store     store.Store
	publisher logging.Publisher
	rng       *rand.Rand
	now       func() time.Time

	uid    string
	name   string
	house  House
	roomID string

	pos       vec2
	direction float64
	running   bool
	idle      bool
	banned    bool
	score     int

	coordinator   bool
	chosenOne     bool
	nightOverride bool
	raining       bool

	blindedUntil time.Time

	peers         map[string]PlayerRecord
	blocks        map[string]map[string]bool
	reports       map[string]map[string]bool
	conversations map[string]ConversationRecord
	galleons      map[string]GalleonRecord
	leaderboard   map[string]LeaderboardEntry
	chosenRecord  ChosenOneRecord
	lastOwlPost   OwlPostRecord

	activeChatID string

	walkLimiter *rate.Limiter
	runLimiter  *rate.Limiter

	spells     *spellBook
	encounters *encounterTracker
	npcs       []*npcState
	owl        owlState
	rat        ratState
	candles    []candleState
	rain       []rainParticle

	lastActivity time.Time
	lastSimTick  time.Time

	subs     []store.Subscription
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	started  bool
}

// NewSession builds an unjoined session.
func NewSession(cfg SessionConfig) *Session {
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	pub := cfg.Publisher
	if pub == nil {
		pub = logging.NopPublisher()
	}
	uid := cfg.UID
	if uid == "" {
		uid = uuid.NewString()
	}

	s := &Session{
		store:         cfg.Store,
		publisher:     pub,
		rng:           rng,
		now:           now,
		uid:           uid,
		nightOverride: cfg.NightOverride,
		pos:           vec2{X: defaultSpawnX, Y: defaultSpawnY},
		peers:         make(map[string]PlayerRecord),
		blocks:        make(map[string]map[string]bool),
		reports:       make(map[string]map[string]bool),
		conversations: make(map[string]ConversationRecord),
		galleons:      make(map[string]GalleonRecord),
		leaderboard:   make(map[string]LeaderboardEntry),
		walkLimiter:   rate.NewLimiter(rate.Every(stepIntervalWalk), 1),
		runLimiter:    rate.NewLimiter(rate.Every(stepIntervalRun), 1),
		spells:        newSpellBook(),
		encounters:    newEncounterTracker(),
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
	s.lastActivity = now()
	s.seedWorld()
	return s
}

func (s *Session) seedWorld() {
	for _, def := range ambientNPCDefinitions() {
		s.npcs = append(s.npcs, newNPCState(def, s.rng))
	}
	for _, def := range hostileNPCDefinitions() {
		s.npcs = append(s.npcs, newNPCState(def, s.rng))
	}
	s.owl = newOwlState(s.rng)
	s.rat = newRatState()
	s.candles = newCandles(s.rng)
}

func (s *Session) actorRef() logging.EntityRef {
	return logging.EntityRef{ID: s.uid, Kind: logging.EntityKindPlayer}
}

// Join claims a globally unique name, picks the lowest room with space,
// publishes the spawn record, and arms the disconnect cleanup. The write
// happens before the subscriptions so the local record is visible in the
// first users snapshot.
func (s *Session) Join(ctx context.Context, name string, house House) error {
	now := s.now()

	var rooms map[string]RoomRecord
	if _, err := s.store.Get(ctx, roomsPath(), &rooms); err != nil {
		return fmt.Errorf("join: read rooms: %w", err)
	}
	if nameTaken(rooms, name, now) {
		return ErrNameTaken
	}
	roomID := resolveRoomID(rooms, now)

	s.mu.Lock()
	s.name = name
	s.house = house
	s.roomID = roomID
	record := s.recordLocked(now)
	s.mu.Unlock()

	path := userPath(roomID, s.uid)
	if err := s.store.Set(ctx, path, record); err != nil {
		return fmt.Errorf("join: publish record: %w", err)
	}
	if err := s.store.OnDisconnect(path); err != nil {
		return fmt.Errorf("join: arm disconnect: %w", err)
	}
	if err := s.subscribeRoom(roomID); err != nil {
		return fmt.Errorf("join: subscribe: %w", err)
	}

	presence.PlayerJoined(ctx, s.publisher, s.actorRef(), presence.JoinedPayload{
		RoomID: roomID,
		Name:   name,
		House:  string(house),
		SpawnX: record.X,
		SpawnY: record.Y,
	})
	return nil
}

// recordLocked renders the current local state as the published record.
func (s *Session) recordLocked(now time.Time) PlayerRecord {
	rec := PlayerRecord{
		X:          s.pos.X,
		Y:          s.pos.Y,
		House:      s.house,
		Name:       s.name,
		RoomID:     s.roomID,
		IsIdle:     s.idle,
		Banned:     s.banned,
		IsRunning:  s.running,
		Direction:  s.direction,
		LastMoveAt: s.lastActivity.UnixMilli(),
		UpdatedAt:  now.UnixMilli(),
	}
	if !s.spells.invisibleUntil.IsZero() && now.Before(s.spells.invisibleUntil) {
		rec.Invisible = true
	}
	return rec
}

// Start launches the background loop. Call after a successful Join.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started || s.roomID == "" {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.lastSimTick = s.now()
	s.mu.Unlock()
	go s.run(ctx)
}

// Stop tears the session down exactly once: tickers halt, subscriptions
// cancel, the record is removed, the store handle closes.
func (s *Session) Stop(ctx context.Context) {
	s.stopOnce.Do(func() {
		close(s.stop)
		s.mu.Lock()
		started := s.started
		subs := s.subs
		s.subs = nil
		roomID := s.roomID
		s.mu.Unlock()

		if started {
			<-s.done
		}
		for _, sub := range subs {
			sub.Cancel()
		}
		if roomID != "" {
			s.leaveCascade(ctx, roomID)
		}
		s.store.Close()
		presence.PlayerLeft(ctx, s.publisher, s.actorRef(), "stopped")
	})
}

// leaveCascade removes everything keyed by the local uid: the record, its
// conversations, and its block edges.
func (s *Session) leaveCascade(ctx context.Context, roomID string) {
	s.mu.Lock()
	chatIDs := conversationsInvolving(RoomRecord{Messages: s.conversations}, s.uid)
	s.mu.Unlock()

	for _, chatID := range chatIDs {
		s.store.Remove(ctx, conversationPath(roomID, chatID))
	}
	s.store.Remove(ctx, blockPath(roomID, s.uid))
	s.store.Remove(ctx, userPath(roomID, s.uid))
}

func (s *Session) run(ctx context.Context) {
	defer close(s.done)

	sim := time.NewTicker(simInterval)
	heartbeat := time.NewTicker(heartbeatInterval)
	idle := time.NewTicker(idleCheckInterval)
	sweep := time.NewTicker(sweepInterval)
	galleons := time.NewTicker(galleonRespawnInterval)
	weather := time.NewTicker(weatherToggleInterval)
	defer sim.Stop()
	defer heartbeat.Stop()
	defer idle.Stop()
	defer sweep.Stop()
	defer galleons.Stop()
	defer weather.Stop()

	// The chosen one rotates on a short initial delay, then settles into
	// the long interval.
	chosen := time.NewTimer(chosenOneInitialDelay)
	defer chosen.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ctx.Done():
			return
		case <-sim.C:
			s.simTick(ctx)
		case <-heartbeat.C:
			s.heartbeat(ctx)
		case <-idle.C:
			s.idleCheck(ctx)
		case <-sweep.C:
			s.sweepOrphans(ctx)
		case <-chosen.C:
			s.rotateChosenOne(ctx)
			chosen.Reset(chosenOneInterval)
		case <-galleons.C:
			s.respawnGalleons(ctx)
		case <-weather.C:
			s.rollWeather(ctx)
		}
	}
}

// simTick advances the private simulation by real elapsed time, clamped
// so a stalled goroutine cannot teleport every NPC on resume.
func (s *Session) simTick(ctx context.Context) {
	now := s.now()

	s.mu.Lock()
	elapsed := now.Sub(s.lastSimTick)
	s.lastSimTick = now
	if elapsed <= 0 {
		s.mu.Unlock()
		return
	}
	if elapsed > time.Second {
		elapsed = time.Second
	}
	elapsedMs := float64(elapsed.Milliseconds())

	enhanced := enhancedModeAt(now, s.nightOverride)
	hostile := hostilesActiveAt(now, s.nightOverride)

	for _, npc := range s.npcs {
		if npc.Hostile && !hostile {
			continue
		}
		advanceNPC(npc, elapsedMs, now, s.rng, enhanced)
	}
	s.owl = advanceOwl(s.owl, s.rng)
	s.rat = advanceRat(s.rat, s.rng)
	advanceCandles(s.candles, now.UnixMilli(), s.rng)
	s.rain = advanceRain(s.rain, s.raining, worldHeight, s.rng)

	var event *encounterEvent
	if hostile && !s.banned {
		exempt := s.activeChatID != "" || (!s.spells.invisibleUntil.IsZero() && now.Before(s.spells.invisibleUntil))
		event = s.encounters.check(s.pos, s.npcs, now, enhanced, exempt)
		if event != nil {
			event.Toast = pickScaredToast(s.rng)
		}
	}
	expired := s.spells.expire(now)
	roomID := s.roomID
	s.mu.Unlock()

	if event != nil {
		worldlog.EncounterTriggered(ctx, s.publisher, s.actorRef(), worldlog.EncounterPayload{
			NPCID:    event.NPC.ID,
			NPCName:  event.NPC.Name,
			Toast:    event.Toast,
			Enhanced: enhanced,
		})
	}
	if expired != nil && roomID != "" {
		s.store.Update(ctx, userPath(roomID, s.uid), expired)
		for field := range expired {
			spellcraft.EffectExpired(ctx, s.publisher, s.actorRef(), field)
		}
	}
}

// Flee closes the open encounter. The freeze runs its full course and
// the player stays put; fleeing only dismisses the scare.
func (s *Session) Flee(ctx context.Context) bool {
	now := s.now()
	s.mu.Lock()
	resolved := s.encounters.resolve(now)
	s.mu.Unlock()
	if resolved {
		worldlog.EncounterResolved(ctx, s.publisher, s.actorRef())
	}
	return resolved
}

// heartbeat refreshes updatedAt so peers keep counting this record as
// present.
func (s *Session) heartbeat(ctx context.Context) {
	s.mu.Lock()
	roomID := s.roomID
	banned := s.banned
	s.mu.Unlock()
	if roomID == "" || banned {
		return
	}
	s.store.Update(ctx, userPath(roomID, s.uid), map[string]any{
		"updatedAt": s.now().UnixMilli(),
	})
}

// idleCheck flips the idle flag when no input arrived for the idle
// window, and clears it on the first activity after.
func (s *Session) idleCheck(ctx context.Context) {
	now := s.now()
	s.mu.Lock()
	shouldIdle := now.Sub(s.lastActivity) >= idleAfter
	changed := shouldIdle != s.idle
	s.idle = shouldIdle
	roomID := s.roomID
	banned := s.banned
	s.mu.Unlock()
	if !changed || roomID == "" || banned {
		return
	}
	s.store.Update(ctx, userPath(roomID, s.uid), map[string]any{
		"isIdle":    shouldIdle,
		"updatedAt": now.UnixMilli(),
	})
	presence.PlayerIdle(ctx, s.publisher, s.actorRef(), shouldIdle)
}

// sweepOrphans removes conversations missing an active participant.
// Only the coordinator sweeps, so the cleanup happens once per room.
func (s *Session) sweepOrphans(ctx context.Context) {
	now := s.now()
	s.mu.Lock()
	if !s.coordinator {
		s.mu.Unlock()
		return
	}
	room := RoomRecord{Users: s.roomUsersLocked(now), Messages: s.conversations}
	roomID := s.roomID
	s.mu.Unlock()

	for _, chatID := range orphanConversations(room, now) {
		s.store.Remove(ctx, conversationPath(roomID, chatID))
		chatlog.ConversationClosed(ctx, s.publisher, s.actorRef(), chatID, "orphaned")
	}
}

// roomUsersLocked merges peers with the local record so sweep decisions
// see the whole room.
func (s *Session) roomUsersLocked(now time.Time) map[string]PlayerRecord {
	users := make(map[string]PlayerRecord, len(s.peers)+1)
	for uid, rec := range s.peers {
		users[uid] = rec
	}
	users[s.uid] = s.recordLocked(now)
	return users
}

// rotateChosenOne crowns a random active player. Coordinator-only; an
// empty room leaves the current record alone until it expires.
func (s *Session) rotateChosenOne(ctx context.Context) {
	now := s.now()
	s.mu.Lock()
	if !s.coordinator {
		s.mu.Unlock()
		return
	}
	active := activeUsers(s.roomUsersLocked(now), now)
	roomID := s.roomID
	s.mu.Unlock()

	record, ok := pickChosenOne(active, s.rng, now)
	if !ok {
		return
	}
	s.store.Set(ctx, chosenOnePath(roomID), record)
	worldlog.ChosenOneRotated(ctx, s.publisher, s.actorRef(), record.UID)
}

// respawnGalleons reseeds the galleon set. Coordinator-only.
func (s *Session) respawnGalleons(ctx context.Context) {
	s.mu.Lock()
	if !s.coordinator {
		s.mu.Unlock()
		return
	}
	roomID := s.roomID
	s.mu.Unlock()

	set := respawnGalleons(s.rng)
	s.store.Set(ctx, galleonsPath(roomID), set)
	worldlog.GalleonsRespawned(ctx, s.publisher, s.actorRef(), len(set))
}

// rollWeather flips rain with a fixed chance. The ambience layer is
// private per client, so every session rolls its own weather.
func (s *Session) rollWeather(ctx context.Context) {
	s.mu.Lock()
	next := rollWeather(s.raining, s.rng)
	changed := next != s.raining
	s.raining = next
	s.mu.Unlock()
	if changed {
		worldlog.WeatherChanged(ctx, s.publisher, s.actorRef(), next)
	}
}

// SetRunning toggles the run modifier for subsequent steps.
func (s *Session) SetRunning(running bool) {
	s.mu.Lock()
	s.running = running
	s.mu.Unlock()
}

// Move applies one input step. Steps are throttled per gait; a throttled
// or frozen step is silently dropped, matching how input repeat works.
func (s *Session) Move(ctx context.Context, dx, dy float64) error {
	now := s.now()

	s.mu.Lock()
	if s.roomID == "" {
		s.mu.Unlock()
		return ErrNotJoined
	}
	if s.banned || s.encounters.frozenAt(now) {
		s.mu.Unlock()
		return nil
	}
	limiter := s.walkLimiter
	step := stepDistance
	if s.running {
		limiter = s.runLimiter
		step = stepDistance * runMultiplier
	}
	if !limiter.Allow() {
		s.mu.Unlock()
		return nil
	}

	length := distance(vec2{}, vec2{X: dx, Y: dy})
	if length == 0 {
		s.mu.Unlock()
		return nil
	}
	s.pos = clampToWorld(vec2{
		X: s.pos.X + dx/length*step,
		Y: s.pos.Y + dy/length*step,
	})
	s.direction = directionFor(dx, dy)
	s.lastActivity = now
	wasIdle := s.idle
	s.idle = false
	roomID := s.roomID
	pos := s.pos
	dir := s.direction
	running := s.running
	picked := s.pickupGalleonLocked()
	s.mu.Unlock()

	if wasIdle {
		presence.PlayerIdle(ctx, s.publisher, s.actorRef(), false)
	}
	// Merge rather than replace so effect flags peers wrote survive the
	// step.
	err := s.store.Update(ctx, userPath(roomID, s.uid), map[string]any{
		"x":          pos.X,
		"y":          pos.Y,
		"direction":  dir,
		"isRunning":  running,
		"isIdle":     false,
		"lastMoveAt": now.UnixMilli(),
		"updatedAt":  now.UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("move: publish record: %w", err)
	}
	if picked != "" {
		s.collectGalleon(ctx, roomID, picked)
	}
	return nil
}

func directionFor(dx, dy float64) float64 {
	switch {
	case dx > 0:
		return 1
	case dx < 0:
		return -1
	default:
		return 0
	}
}

// pickupGalleonLocked returns the id of a galleon in pickup range, if
// any. Collection itself happens outside the lock.
func (s *Session) pickupGalleonLocked() string {
	for id, g := range s.galleons {
		if g.Collected {
			continue
		}
		if distance(s.pos, vec2{X: g.X, Y: g.Y}) <= galleonPickupRadius {
			return id
		}
	}
	return ""
}

// collectGalleon marks the galleon taken and posts the score. Concurrent
// pickups resolve last-write-wins; the race is cosmetic.
func (s *Session) collectGalleon(ctx context.Context, roomID, galleonID string) {
	s.mu.Lock()
	g, ok := s.galleons[galleonID]
	if !ok || g.Collected {
		s.mu.Unlock()
		return
	}
	g.Collected = true
	s.galleons[galleonID] = g
	s.score += galleonPoints
	score := s.score
	name := s.name
	s.mu.Unlock()

	s.store.Update(ctx, galleonsPath(roomID)+"/"+galleonID, map[string]any{
		"collected": true,
	})
	s.store.Update(ctx, leaderboardPath(roomID), map[string]any{
		s.uid: map[string]any{"name": name, "score": score},
	})
	worldlog.GalleonCollected(ctx, s.publisher, s.actorRef(), galleonID, score)
}

// NearMirror reports whether the local player stands at the mirror.
func (s *Session) NearMirror() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return distance(s.pos, vec2{X: mirrorX, Y: mirrorY}) <= mirrorRadius
}

// TalkToNPC returns a dialogue line from the nearest ambient character in
// speaking range. Hostile characters do not chat, they chase.
func (s *Session) TalkToNPC() (string, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var nearest *npcState
	nearestDist := chatRadius
	for _, npc := range s.npcs {
		if npc.Hostile {
			continue
		}
		d := distance(s.pos, npc.Pos)
		if d > chatRadius {
			continue
		}
		if nearest == nil || d < nearestDist {
			nearest = npc
			nearestDist = d
		}
	}
	if nearest == nil {
		return "", "", false
	}
	return nearest.Name, pickDialogue(nearest.NPCDefinition, s.rng), true
}

// Cast casts a spell by id. Targeted effects write into the target's
// record; the target's own client applies them on its next snapshot.
func (s *Session) Cast(ctx context.Context, id SpellID) error {
	now := s.now()

	s.mu.Lock()
	if s.roomID == "" {
		s.mu.Unlock()
		return ErrNotJoined
	}
	result, err := s.spells.cast(id, s.uid, s.name, s.pos, s.peers, s.rng, now)
	roomID := s.roomID
	s.mu.Unlock()

	if err != nil {
		spellcraft.Rejected(ctx, s.publisher, s.actorRef(), string(id), err.Error())
		return err
	}

	if result.TargetUID != "" {
		if err := s.store.Update(ctx, userPath(roomID, result.TargetUID), result.TargetFields); err != nil {
			return fmt.Errorf("cast %s: write target: %w", id, err)
		}
	}
	if len(result.SelfFields) > 0 {
		fields := make(map[string]any, len(result.SelfFields)+1)
		for k, v := range result.SelfFields {
			fields[k] = v
		}
		fields["updatedAt"] = now.UnixMilli()
		if err := s.store.Update(ctx, userPath(roomID, s.uid), fields); err != nil {
			return fmt.Errorf("cast %s: write self: %w", id, err)
		}
	}
	spellcraft.Cast(ctx, s.publisher, s.actorRef(), spellcraft.CastPayload{
		Spell:  string(id),
		Target: result.TargetUID,
	})
	return nil
}

// SendOwlPost broadcasts a short banner message to the whole room.
func (s *Session) SendOwlPost(ctx context.Context, message string) error {
	s.mu.Lock()
	roomID := s.roomID
	name := s.name
	house := s.house
	s.mu.Unlock()
	if roomID == "" {
		return ErrNotJoined
	}
	if containsBannedContent(message) {
		return ErrMessageRejected
	}
	rec := OwlPostRecord{
		Message:   message,
		Sender:    name,
		House:     house,
		Timestamp: s.now().UnixMilli(),
	}
	if err := s.store.Set(ctx, owlPostPath(roomID), rec); err != nil {
		return fmt.Errorf("owl post: %w", err)
	}
	worldlog.OwlPostSent(ctx, s.publisher, s.actorRef())
	return nil
}

// SubmitFeedback files a feedback entry outside the room tree.
func (s *Session) SubmitFeedback(ctx context.Context, rating int, comment string) error {
	s.mu.Lock()
	rec := FeedbackRecord{
		Rating:    rating,
		Comment:   comment,
		UserName:  s.name,
		House:     s.house,
		RoomID:    s.roomID,
		Timestamp: s.now().UnixMilli(),
	}
	s.mu.Unlock()
	return s.store.Set(ctx, feedbackPath(uuid.NewString()), rec)
}
