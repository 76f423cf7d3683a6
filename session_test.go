package main

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"marauders-map/client/internal/store"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	// Mid-afternoon keeps the hostile period off unless a test overrides.
	return &testClock{now: time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestSession(t *testing.T, mem *store.Memory, clock *testClock, uid, name string, seed int64) *Session {
	t.Helper()
	s := NewSession(SessionConfig{
		Store: mem.Client(),
		Rand:  rand.New(rand.NewSource(seed)),
		Now:   clock.Now,
		UID:   uid,
	})
	if err := s.Join(context.Background(), name, HouseGryffindor); err != nil {
		t.Fatalf("join %s: %v", name, err)
	}
	return s
}

func TestJoinPublishesRecordAndClaimsName(t *testing.T) {
	mem := store.NewMemory()
	clock := newTestClock()
	ctx := context.Background()

	s := newTestSession(t, mem, clock, "uid-a", "Harry", 1)
	if snap := s.Snapshot(); snap.RoomID != "room-1" {
		t.Fatalf("joined %q, want room-1", snap.RoomID)
	}

	var rec PlayerRecord
	found, err := mem.Get(ctx, userPath("room-1", "uid-a"), &rec)
	if err != nil || !found {
		t.Fatalf("record not published: found=%v err=%v", found, err)
	}
	if rec.Name != "Harry" || rec.X != defaultSpawnX || rec.Y != defaultSpawnY {
		t.Fatalf("published record %+v", rec)
	}

	dup := NewSession(SessionConfig{
		Store: mem.Client(),
		Rand:  rand.New(rand.NewSource(2)),
		Now:   clock.Now,
		UID:   "uid-b",
	})
	if err := dup.Join(ctx, " hArRy ", HouseRavenclaw); !errors.Is(err, ErrNameTaken) {
		t.Fatalf("duplicate join: got %v, want ErrNameTaken", err)
	}
}

func TestMoveStepAndThrottle(t *testing.T) {
	mem := store.NewMemory()
	clock := newTestClock()
	ctx := context.Background()
	s := newTestSession(t, mem, clock, "uid-a", "Harry", 1)

	if err := s.Move(ctx, 1, 0); err != nil {
		t.Fatalf("move: %v", err)
	}
	snap := s.Snapshot()
	if snap.Pos.X != defaultSpawnX+stepDistance {
		t.Fatalf("stepped to %.1f, want %.1f", snap.Pos.X, defaultSpawnX+stepDistance)
	}

	// The second immediate step falls inside the walk throttle.
	if err := s.Move(ctx, 1, 0); err != nil {
		t.Fatalf("throttled move: %v", err)
	}
	if got := s.Snapshot().Pos.X; got != snap.Pos.X {
		t.Fatalf("throttled step still moved: %.1f", got)
	}

	var rec PlayerRecord
	mem.Get(ctx, userPath("room-1", "uid-a"), &rec)
	if rec.X != snap.Pos.X {
		t.Fatalf("store holds %.1f, session holds %.1f", rec.X, snap.Pos.X)
	}
}

func TestMoveNormalizesDiagonals(t *testing.T) {
	mem := store.NewMemory()
	clock := newTestClock()
	s := newTestSession(t, mem, clock, "uid-a", "Harry", 1)

	if err := s.Move(context.Background(), 1, 1); err != nil {
		t.Fatalf("move: %v", err)
	}
	snap := s.Snapshot()
	moved := distance(vec2{X: defaultSpawnX, Y: defaultSpawnY}, snap.Pos)
	if moved > stepDistance+1e-9 || moved < stepDistance-1e-9 {
		t.Fatalf("diagonal step covered %.3f, want %.1f", moved, stepDistance)
	}
}

func TestCoordinatorElection(t *testing.T) {
	mem := store.NewMemory()
	clock := newTestClock()

	a := newTestSession(t, mem, clock, "uid-a", "Harry", 1)
	b := newTestSession(t, mem, clock, "uid-b", "Ron", 2)

	if !a.Snapshot().Coordinator {
		t.Fatalf("lowest uid should coordinate")
	}
	if b.Snapshot().Coordinator {
		t.Fatalf("second session must not coordinate")
	}

	// The coordinator's record vanishing hands the role over.
	mem.Remove(context.Background(), userPath("room-1", "uid-a"))
	if !b.Snapshot().Coordinator {
		t.Fatalf("survivor should take over coordination")
	}
	_ = a
}

func TestObscuroBlindsTargetAcrossSessions(t *testing.T) {
	mem := store.NewMemory()
	clock := newTestClock()
	ctx := context.Background()

	a := newTestSession(t, mem, clock, "uid-a", "Harry", 1)
	b := newTestSession(t, mem, clock, "uid-b", "Draco", 2)

	if err := a.Cast(ctx, SpellObscuro); err != nil {
		t.Fatalf("cast: %v", err)
	}
	if !b.Snapshot().Blinded {
		t.Fatalf("target session did not apply the blind")
	}
	if a.Snapshot().Blinded {
		t.Fatalf("caster blinded itself")
	}
	var blinded PlayerRecord
	mem.Get(ctx, userPath("room-1", "uid-b"), &blinded)
	if blinded.BlindedBy != "Harry" {
		t.Fatalf("blindedBy = %q, want the caster's display name", blinded.BlindedBy)
	}

	// After expiry the victim clears its own flags once a roster event
	// arrives.
	clock.Advance(spellTable[SpellObscuro].Duration + time.Second)
	b.heartbeat(ctx)
	if b.Snapshot().Blinded {
		t.Fatalf("blind survived its expiry")
	}
	var rec PlayerRecord
	mem.Get(ctx, userPath("room-1", "uid-b"), &rec)
	if rec.Blinded || rec.BlindedUntil != 0 || rec.BlindedBy != "" {
		t.Fatalf("blind fields not cleared from the store: %+v", rec)
	}
}

func TestCastOnCooldownAcrossSessions(t *testing.T) {
	mem := store.NewMemory()
	clock := newTestClock()
	ctx := context.Background()

	a := newTestSession(t, mem, clock, "uid-a", "Harry", 1)
	newTestSession(t, mem, clock, "uid-b", "Draco", 2)

	if err := a.Cast(ctx, SpellObscuro); err != nil {
		t.Fatalf("first cast: %v", err)
	}
	if err := a.Cast(ctx, SpellObscuro); !errors.Is(err, ErrSpellOnCooldown) {
		t.Fatalf("second cast: got %v, want ErrSpellOnCooldown", err)
	}
}

func TestExpelliarmusDisplacesTarget(t *testing.T) {
	mem := store.NewMemory()
	clock := newTestClock()
	ctx := context.Background()

	a := newTestSession(t, mem, clock, "uid-a", "Harry", 1)
	b := newTestSession(t, mem, clock, "uid-b", "Draco", 2)
	before := b.Snapshot().Pos

	if err := a.Cast(ctx, SpellExpelliarmus); err != nil {
		t.Fatalf("cast: %v", err)
	}
	after := b.Snapshot().Pos
	if after == before {
		t.Fatalf("target did not move")
	}
	// The landing spot is rolled by the caster and already clamped.
	if after.X < 0 || after.X > worldWidth-avatarFoot || after.Y < 0 || after.Y > worldHeight-avatarFoot {
		t.Fatalf("target landed out of bounds: %+v", after)
	}

	// The transient flags burn off after the victim applies them.
	var rec PlayerRecord
	mem.Get(ctx, userPath("room-1", "uid-b"), &rec)
	if rec.KnockedBack || rec.KnockbackX != 0 {
		t.Fatalf("knockback fields not cleared: %+v", rec)
	}
	if rec.X != after.X || rec.Y != after.Y {
		t.Fatalf("store position (%.1f,%.1f) != session position %+v", rec.X, rec.Y, after)
	}
}

func TestReportsAutoBan(t *testing.T) {
	mem := store.NewMemory()
	clock := newTestClock()
	ctx := context.Background()

	target := newTestSession(t, mem, clock, "uid-t", "Troll", 1)
	for i, reporter := range []string{"uid-r1", "uid-r2"} {
		r := newTestSession(t, mem, clock, reporter, "Reporter"+string(rune('A'+i)), int64(i+2))
		if err := r.Report(ctx, "uid-t"); err != nil {
			t.Fatalf("report: %v", err)
		}
	}
	if target.Snapshot().Banned {
		t.Fatalf("banned below the threshold")
	}

	third := newTestSession(t, mem, clock, "uid-r3", "ReporterC", 5)
	if err := third.Report(ctx, "uid-t"); err != nil {
		t.Fatalf("report: %v", err)
	}
	if !target.Snapshot().Banned {
		t.Fatalf("three distinct reports must ban")
	}
	var rec PlayerRecord
	mem.Get(ctx, userPath("room-1", "uid-t"), &rec)
	if !rec.Banned || rec.BannedAt == 0 {
		t.Fatalf("ban not published: %+v", rec)
	}

	// Banned players drop out of the active set and cannot move.
	if err := target.Move(ctx, 1, 0); err != nil {
		t.Fatalf("move: %v", err)
	}
	var after PlayerRecord
	mem.Get(ctx, userPath("room-1", "uid-t"), &after)
	if after.X != rec.X {
		t.Fatalf("banned player moved")
	}
}

func TestConversationFlow(t *testing.T) {
	mem := store.NewMemory()
	clock := newTestClock()
	ctx := context.Background()

	a := newTestSession(t, mem, clock, "uid-a", "Harry", 1)
	b := newTestSession(t, mem, clock, "uid-b", "Ron", 2)

	chatID, err := a.OpenConversation(ctx, "uid-b")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if chatID != conversationIDFor("uid-a", "uid-b") {
		t.Fatalf("chat id %q", chatID)
	}
	if _, err := b.OpenConversation(ctx, "uid-a"); err != nil {
		t.Fatalf("open other side: %v", err)
	}

	if err := a.SendMessage(ctx, "mischief managed", false); err != nil {
		t.Fatalf("send: %v", err)
	}

	var conv ConversationRecord
	found, _ := mem.Get(ctx, conversationPath("room-1", chatID), &conv)
	if !found || len(conv.Messages) != 1 {
		t.Fatalf("conversation %+v", conv)
	}
	for _, msg := range conv.Messages {
		if msg.Text != "mischief managed" {
			t.Fatalf("text %q", msg.Text)
		}
		// The receiving session marks delivery from its snapshot handler.
		if !msg.DeliveredTo["uid-a"] || !msg.DeliveredTo["uid-b"] {
			t.Fatalf("delivery flags %+v", msg.DeliveredTo)
		}
	}

	if err := a.SendMessage(ctx, "my number is 12345678", false); !errors.Is(err, ErrMessageRejected) {
		t.Fatalf("moderated send: got %v", err)
	}
}

func TestBlockClosesConversation(t *testing.T) {
	mem := store.NewMemory()
	clock := newTestClock()
	ctx := context.Background()

	a := newTestSession(t, mem, clock, "uid-a", "Harry", 1)
	b := newTestSession(t, mem, clock, "uid-b", "Draco", 2)

	if _, err := a.OpenConversation(ctx, "uid-b"); err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := a.Block(ctx, "uid-b"); err != nil {
		t.Fatalf("block: %v", err)
	}

	a.mu.Lock()
	active := a.activeChatID
	a.mu.Unlock()
	if active != "" {
		t.Fatalf("block left the chat open")
	}

	// A blocked pair cannot reopen.
	if _, err := b.OpenConversation(ctx, "uid-a"); !errors.Is(err, ErrNoTarget) {
		t.Fatalf("blocked open: got %v", err)
	}

	if err := a.Unblock(ctx, "uid-b"); err != nil {
		t.Fatalf("unblock: %v", err)
	}
	if _, err := b.OpenConversation(ctx, "uid-a"); err != nil {
		t.Fatalf("open after unblock: %v", err)
	}
}

func TestConversationClosesWhenPartnerWalksAway(t *testing.T) {
	mem := store.NewMemory()
	clock := newTestClock()
	ctx := context.Background()

	a := newTestSession(t, mem, clock, "uid-a", "Harry", 1)
	b := newTestSession(t, mem, clock, "uid-b", "Ron", 2)

	if _, err := a.OpenConversation(ctx, "uid-b"); err != nil {
		t.Fatalf("open: %v", err)
	}

	// The partner's published position jumps far outside speaking range.
	err := mem.Update(ctx, userPath("room-1", "uid-b"), map[string]any{
		"x":         900.0,
		"updatedAt": clock.Now().UnixMilli(),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	a.mu.Lock()
	active := a.activeChatID
	a.mu.Unlock()
	if active != "" {
		t.Fatalf("chat stayed open across the room")
	}

	b.mu.Lock()
	if b.activeChatID != "" {
		t.Fatalf("partner had no chat to close")
	}
	b.mu.Unlock()
}

func TestGalleonPickupOnMove(t *testing.T) {
	mem := store.NewMemory()
	clock := newTestClock()
	ctx := context.Background()

	s := newTestSession(t, mem, clock, "uid-a", "Harry", 1)
	mem.Set(ctx, galleonsPath("room-1"), map[string]GalleonRecord{
		"galleon-a": {X: defaultSpawnX + stepDistance + 5, Y: defaultSpawnY},
	})

	if err := s.Move(ctx, 1, 0); err != nil {
		t.Fatalf("move: %v", err)
	}
	if got := s.Snapshot().Score; got != galleonPoints {
		t.Fatalf("score %d, want %d", got, galleonPoints)
	}

	var g GalleonRecord
	mem.Get(ctx, galleonsPath("room-1")+"/galleon-a", &g)
	if !g.Collected {
		t.Fatalf("galleon not marked collected")
	}
	var board map[string]LeaderboardEntry
	mem.Get(ctx, leaderboardPath("room-1"), &board)
	if board["uid-a"].Score != galleonPoints {
		t.Fatalf("leaderboard %+v", board)
	}
	if got := s.Snapshot().Leaderboard["uid-a"]; got.Name != "Harry" || got.Score != galleonPoints {
		t.Fatalf("mirrored leaderboard entry %+v", got)
	}
}

func TestIdleFlagLifecycle(t *testing.T) {
	mem := store.NewMemory()
	clock := newTestClock()
	ctx := context.Background()
	s := newTestSession(t, mem, clock, "uid-a", "Harry", 1)

	clock.Advance(idleAfter)
	s.idleCheck(ctx)
	var rec PlayerRecord
	mem.Get(ctx, userPath("room-1", "uid-a"), &rec)
	if !rec.IsIdle {
		t.Fatalf("idle flag not published")
	}

	if err := s.Move(ctx, 1, 0); err != nil {
		t.Fatalf("move: %v", err)
	}
	mem.Get(ctx, userPath("room-1", "uid-a"), &rec)
	if rec.IsIdle {
		t.Fatalf("activity should clear the idle flag")
	}
}

func TestStopRemovesRecordAndConversations(t *testing.T) {
	mem := store.NewMemory()
	clock := newTestClock()
	ctx := context.Background()

	a := newTestSession(t, mem, clock, "uid-a", "Harry", 1)
	newTestSession(t, mem, clock, "uid-b", "Ron", 2)
	chatID, err := a.OpenConversation(ctx, "uid-b")
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	a.Stop(ctx)

	if found, _ := mem.Get(ctx, userPath("room-1", "uid-a"), nil); found {
		t.Fatalf("record survived stop")
	}
	if found, _ := mem.Get(ctx, conversationPath("room-1", chatID), nil); found {
		t.Fatalf("conversation survived stop")
	}

	// Stop is idempotent.
	a.Stop(ctx)
}

func TestTalkToNPC(t *testing.T) {
	mem := store.NewMemory()
	clock := newTestClock()
	s := newTestSession(t, mem, clock, "uid-a", "Harry", 1)

	// Fresh sessions spawn every character at home.
	s.mu.Lock()
	s.pos = vec2{X: 600, Y: 250}
	s.mu.Unlock()

	name, line, ok := s.TalkToNPC()
	if !ok {
		t.Fatalf("no character in speaking range")
	}
	if name != "Albus Dumbledore" {
		t.Fatalf("spoke to %q", name)
	}
	if line == "" {
		t.Fatalf("empty dialogue line")
	}

	// Hostile characters never chat even at zero distance.
	s.mu.Lock()
	s.pos = vec2{X: 280, Y: 450}
	s.mu.Unlock()
	if _, _, ok := s.TalkToNPC(); ok {
		t.Fatalf("hostile character offered dialogue")
	}
}

func TestFleeDismissesEncounterWithoutMoving(t *testing.T) {
	mem := store.NewMemory()
	clock := newTestClock()
	ctx := context.Background()

	s := NewSession(SessionConfig{
		Store:         mem.Client(),
		Rand:          rand.New(rand.NewSource(3)),
		Now:           clock.Now,
		UID:           "uid-a",
		NightOverride: true,
	})
	if err := s.Join(ctx, "Harry", HouseGryffindor); err != nil {
		t.Fatalf("join: %v", err)
	}

	// Stand on a hostile character's home and run one tick.
	s.mu.Lock()
	s.pos = vec2{X: 280, Y: 450}
	s.mu.Unlock()
	s.simTick(ctx)

	snap := s.Snapshot()
	if snap.Encounter == "" || !snap.Frozen {
		t.Fatalf("encounter expected, got %+v", snap)
	}
	if s.Flee(ctx) {
		t.Fatalf("flee must not cut the freeze short")
	}

	clock.Advance(freezeDuration)
	if !s.Flee(ctx) {
		t.Fatalf("flee after the freeze should dismiss the encounter")
	}
	after := s.Snapshot()
	if after.Encounter != "" {
		t.Fatalf("encounter still open")
	}
	if after.Pos != snap.Pos {
		t.Fatalf("flee moved the player: %+v -> %+v", snap.Pos, after.Pos)
	}
}

func TestWeatherRollsPerSession(t *testing.T) {
	mem := store.NewMemory()
	clock := newTestClock()
	ctx := context.Background()

	newTestSession(t, mem, clock, "uid-a", "Harry", 1)
	b := newTestSession(t, mem, clock, "uid-b", "Ron", 2)
	if b.Snapshot().Coordinator {
		t.Fatalf("uid-b must not coordinate")
	}

	// Weather is local ambience; every session rolls its own.
	for i := 0; i < 100 && !b.Snapshot().Raining; i++ {
		b.rollWeather(ctx)
	}
	if !b.Snapshot().Raining {
		t.Fatalf("weather never flipped for a non-coordinator")
	}
}

func TestFreshOwlPost(t *testing.T) {
	mem := store.NewMemory()
	clock := newTestClock()
	ctx := context.Background()

	a := newTestSession(t, mem, clock, "uid-a", "Harry", 1)
	b := newTestSession(t, mem, clock, "uid-b", "Ron", 2)

	if err := a.SendOwlPost(ctx, "quidditch at noon"); err != nil {
		t.Fatalf("owl post: %v", err)
	}
	rec, ok := b.FreshOwlPost()
	if !ok || rec.Message != "quidditch at noon" || rec.Sender != "Harry" {
		t.Fatalf("owl post %+v ok=%v", rec, ok)
	}

	clock.Advance(owlPostFreshWindow + time.Second)
	if _, ok := b.FreshOwlPost(); ok {
		t.Fatalf("stale owl post still shown")
	}

	if err := a.SendOwlPost(ctx, "digits 123456789"); !errors.Is(err, ErrMessageRejected) {
		t.Fatalf("moderated owl post: got %v", err)
	}
}
