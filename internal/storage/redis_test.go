package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"

	"github.com/jwebster45206/career-engine/pkg/session"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store := NewRedisStore(mr.Addr(), time.Hour, testLogger())
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store, mr
}

func TestRedisStoreSaveLoad(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	s := session.New("player-1", session.RoleAnalyst, "junior", "")
	s.CurrentScene = "ch1_setup_background"
	s.NPCs["priya"] = session.NPCRelationship{NPCID: "priya", Name: "Priya", TrustLevel: 60, Attitude: session.AttitudeFriendly}

	if err := store.SaveSession(ctx, s); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := store.LoadSession(ctx, s.ID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.ID != s.ID {
		t.Errorf("id mismatch: %s != %s", loaded.ID, s.ID)
	}
	if loaded.CurrentScene != "ch1_setup_background" {
		t.Errorf("scene mismatch: %q", loaded.CurrentScene)
	}
	if loaded.NPCs["priya"].TrustLevel != 60 {
		t.Errorf("npc trust lost: %v", loaded.NPCs["priya"].TrustLevel)
	}
	if loaded.State.Axes[session.AxisEnergy] != 0.7 {
		t.Errorf("state vector lost: %v", loaded.State.Axes)
	}
	if loaded.UpdatedAt.IsZero() {
		t.Error("expected UpdatedAt to be refreshed on save")
	}
}

func TestRedisStoreLoadMissing(t *testing.T) {
	store, _ := newTestRedisStore(t)

	_, err := store.LoadSession(context.Background(), uuid.New())
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestRedisStoreTTL(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	s := session.New("player-1", "", "", "")
	if err := store.SaveSession(ctx, s); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if ttl := mr.TTL(sessionKey(s.ID)); ttl != time.Hour {
		t.Errorf("expected 1h TTL on session key, got %v", ttl)
	}

	mr.FastForward(2 * time.Hour)
	if _, err := store.LoadSession(ctx, s.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected session expired after TTL, got %v", err)
	}
}

func TestRedisStoreListSessionIDs(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	a := session.New("player-1", "", "", "")
	b := session.New("player-2", "", "", "")
	for _, s := range []*session.PlayerSession{a, b} {
		if err := store.SaveSession(ctx, s); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}
	// A key outside the session namespace must not show up.
	mr.Set("unrelated:thing", "x")
	// A malformed session key is skipped, not fatal.
	mr.Set(sessionKeyPrefix+"not-a-uuid", "x")

	ids, err := store.ListSessionIDs(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 ids, got %d", len(ids))
	}
	found := map[uuid.UUID]bool{}
	for _, id := range ids {
		found[id] = true
	}
	if !found[a.ID] || !found[b.ID] {
		t.Errorf("expected both session ids, got %v", ids)
	}
}
