package session

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
)

func TestNewSession(t *testing.T) {
	s := New("player-1", RoleAnalyst, "junior", "deliberate")

	if s.ID == uuid.Nil {
		t.Error("expected non-nil session id")
	}
	if s.CurrentChapter != 0 {
		t.Errorf("expected chapter 0, got %d", s.CurrentChapter)
	}
	if s.RunNumber != 1 {
		t.Errorf("expected run 1, got %d", s.RunNumber)
	}
	if s.TurnCounter != 0 {
		t.Errorf("expected turn counter 0, got %d", s.TurnCounter)
	}
	if len(s.ActionHistory) != 0 {
		t.Errorf("expected empty action history, got %d entries", len(s.ActionHistory))
	}
	if s.State.EmotionalState != EmotionCalm {
		t.Errorf("expected calm start, got %q", s.State.EmotionalState)
	}
}

func TestSessionCloneIsDeep(t *testing.T) {
	s := New("player-1", RoleEngineer, "", "")
	s.EventQueue = append(s.EventQueue, EventQueueEntry{
		ID:      "ev-1",
		Type:    EventConsequence,
		Status:  EventPending,
		Payload: map[string]any{"text": "the recruiter calls back"},
	})
	s.AppliedEvents["ev-0"] = true
	s.NPCs["priya"] = NPCRelationship{NPCID: "priya", TrustLevel: 50}

	clone := s.Clone()
	clone.State.Axes[AxisEnergy] = 0
	clone.EventQueue[0].Payload["text"] = "changed"
	clone.EventQueue[0].Status = EventApplied
	clone.AppliedEvents["ev-1"] = true
	r := clone.NPCs["priya"]
	r.TrustLevel = 0
	clone.NPCs["priya"] = r
	clone.ActionHistory = append(clone.ActionHistory, ActionRecord{Scene: "x", Action: "y"})

	if s.State.Axes[AxisEnergy] != 0.7 {
		t.Error("state vector shared between clone and original")
	}
	if s.EventQueue[0].Payload["text"] != "the recruiter calls back" {
		t.Error("event payload shared between clone and original")
	}
	if s.EventQueue[0].Status != EventPending {
		t.Error("event status shared between clone and original")
	}
	if s.AppliedEvents["ev-1"] {
		t.Error("applied-events set shared between clone and original")
	}
	if s.NPCs["priya"].TrustLevel != 50 {
		t.Error("narrative context shared between clone and original")
	}
	if len(s.ActionHistory) != 0 {
		t.Error("action history shared between clone and original")
	}
}

func TestEventDue(t *testing.T) {
	ev := EventQueueEntry{ID: "ev-1", Status: EventPending, DueTurn: 5}

	if ev.Due(4) {
		t.Error("event should not be due before its turn")
	}
	if !ev.Due(5) {
		t.Error("event should be due at its turn")
	}
	if !ev.Due(9) {
		t.Error("event should stay due after its turn")
	}

	ev.Status = EventApplied
	if ev.Due(9) {
		t.Error("applied event should never be due")
	}
}

func TestSessionJSONRoundTrip(t *testing.T) {
	s := New("player-1", RoleDesigner, "mid", "scrappy")
	s.CurrentScene = "ch1_setup_background"
	s.NPCs["priya"] = NPCRelationship{NPCID: "priya", Name: "Priya", TrustLevel: 60, Attitude: AttitudeFriendly}

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var back PlayerSession
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if back.ID != s.ID {
		t.Errorf("id mismatch after round trip")
	}
	if back.NPCs["priya"].Attitude != AttitudeFriendly {
		t.Errorf("npc attitude lost in round trip: %q", back.NPCs["priya"].Attitude)
	}
	if back.State.Axes[AxisConfidence] != 0.5 {
		t.Errorf("axis value lost in round trip")
	}
}
