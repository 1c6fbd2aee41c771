package worker

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jwebster45206/career-engine/internal/storage"
	"github.com/jwebster45206/career-engine/pkg/session"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSweepOnce(t *testing.T) {
	store := storage.NewMockStore()
	ctx := context.Background()
	now := time.Now()

	stale := session.New("p1", "", "", "")
	stale.EventQueue = []session.EventQueueEntry{
		{ID: "ev-old", Status: session.EventPending, CreatedAt: now.Add(-100 * time.Hour)},
		{ID: "ev-fresh", Status: session.EventPending, CreatedAt: now.Add(-1 * time.Hour)},
	}
	stale.NPCs["priya"] = session.NPCRelationship{NPCID: "priya", TrustLevel: 80, Attitude: session.AttitudeMentor}

	fresh := session.New("p2", "", "", "")
	fresh.NPCs["marcus"] = session.NPCRelationship{NPCID: "marcus", TrustLevel: 40, Attitude: session.AttitudeHostile, AttitudeLocked: true}

	for _, s := range []*session.PlayerSession{stale, fresh} {
		if err := store.SaveSession(ctx, s); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	sw := NewSweeper(store, testLogger(), time.Minute, 72*time.Hour, 0.5)
	if err := sw.SweepOnce(ctx); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	got, err := store.LoadSession(ctx, stale.ID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got.EventQueue[0].Status != session.EventExpired {
		t.Errorf("expected stale event expired, got %q", got.EventQueue[0].Status)
	}
	if got.EventQueue[1].Status != session.EventPending {
		t.Errorf("expected fresh event untouched, got %q", got.EventQueue[1].Status)
	}
	if got.NPCs["priya"].TrustLevel != 40 {
		t.Errorf("expected trust decayed to 40, got %v", got.NPCs["priya"].TrustLevel)
	}
	if got.NPCs["priya"].Attitude != session.AttitudeNeutral {
		t.Errorf("expected attitude re-inferred after decay, got %q", got.NPCs["priya"].Attitude)
	}

	got, err = store.LoadSession(ctx, fresh.ID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got.NPCs["marcus"].TrustLevel != 20 {
		t.Errorf("expected trust decayed to 20, got %v", got.NPCs["marcus"].TrustLevel)
	}
	if got.NPCs["marcus"].Attitude != session.AttitudeHostile {
		t.Errorf("locked attitude must survive decay, got %q", got.NPCs["marcus"].Attitude)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	store := storage.NewMockStore()
	sw := NewSweeper(store, testLogger(), 10*time.Millisecond, time.Hour, 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- sw.Run(ctx)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected nil on cancel, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}
