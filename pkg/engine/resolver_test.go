package engine

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jwebster45206/career-engine/pkg/content"
	"github.com/jwebster45206/career-engine/pkg/session"
)

func testStore() *content.Store {
	s := content.NewStore()
	s.AddTemplate(&content.ScenarioTemplate{
		ID:      "ch1_first_standup",
		Version: "1.0.0",
		Chapter: 1,
		Title:   "First Standup",
		Actions: []content.Action{
			{ID: "speak_up", Label: "Flag the blocked ticket"},
			{ID: "stay_quiet", Label: "Keep your head down"},
		},
		ConsequenceRules: []content.ConsequenceRule{
			{
				ActionID: "speak_up",
				StateDeltas: []content.StateDelta{
					{Variable: "confidence", Delta: 0.1},
					{Variable: "skill_signal", Delta: 0.05},
				},
				EmotionalShift: &content.EmotionalShift{
					To:          session.EmotionConfident,
					IfCurrentIn: []session.EmotionalState{session.EmotionCalm, session.EmotionAnxious},
				},
				Events: []content.EventDef{
					{Type: session.EventOpportunity, Delay: 2, Payload: map[string]any{"text": "The tech lead asks you to pair."}},
				},
				NPCInteractions: []content.NPCInteraction{
					{NPCID: "priya", Name: "Priya", TrustDelta: 10, Memory: "You flagged the blocker everyone was dancing around."},
				},
				ImmediateFeedback: "speak_up_fb",
			},
			{
				ActionID:          "stay_quiet",
				StateDeltas:       []content.StateDelta{{Variable: "confidence", Delta: -0.05}},
				ImmediateFeedback: "stay_quiet_fb",
			},
		},
		FeedbackVariants: []content.FeedbackVariant{
			{Key: "speak_up_fb", EmotionalState: session.EmotionConfident, Text: "The room goes quiet, then Priya nods.", AudioCue: "soft_chime"},
			{Key: "stay_quiet_fb", EmotionalState: session.EmotionAnxious, Text: "The moment passes. Nobody notices."},
		},
	})
	return s
}

// brokenStore returns content with a rule whose feedback key has no variant.
// LoadDir would reject this; AddTemplate bypasses validation on purpose.
func brokenStore() *content.Store {
	s := content.NewStore()
	s.AddTemplate(&content.ScenarioTemplate{
		ID:      "ch1_broken",
		Version: "1.0.0",
		Title:   "Broken",
		Actions: []content.Action{{ID: "act", Label: "Act"}},
		ConsequenceRules: []content.ConsequenceRule{
			{ActionID: "act", ImmediateFeedback: "no_such_variant"},
		},
		FeedbackVariants: []content.FeedbackVariant{
			{Key: "other", Text: "unrelated"},
		},
	})
	return s
}

func TestResolve(t *testing.T) {
	r := NewResolver(testStore())
	s := session.New("player-1", "", "", "")
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	res, err := r.Resolve(s, "ch1_first_standup", "speak_up", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Narrative != "The room goes quiet, then Priya nods." {
		t.Errorf("unexpected narrative: %q", res.Narrative)
	}
	if res.AudioCue != "soft_chime" {
		t.Errorf("unexpected audio cue: %q", res.AudioCue)
	}
	if len(res.StateDeltas) != 2 {
		t.Errorf("expected 2 deltas, got %d", len(res.StateDeltas))
	}
	if len(res.Events) != 1 || res.Events[0].Delay != 2 {
		t.Errorf("expected one event with delay 2, got %+v", res.Events)
	}

	priya := res.Context["priya"]
	if priya.TrustLevel != 10 {
		t.Errorf("expected priya trust 10, got %v", priya.TrustLevel)
	}
	if len(priya.SharedScenarios) != 1 || priya.SharedScenarios[0] != "ch1_first_standup" {
		t.Errorf("expected shared scenario recorded, got %v", priya.SharedScenarios)
	}
	if !priya.LastMet.Equal(now) {
		t.Errorf("expected last_met %v, got %v", now, priya.LastMet)
	}
}

func TestResolveDoesNotTouchSession(t *testing.T) {
	r := NewResolver(testStore())
	s := session.New("player-1", "", "", "")

	if _, err := r.Resolve(s, "ch1_first_standup", "speak_up", time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.TurnCounter != 0 || len(s.ActionHistory) != 0 || len(s.EventQueue) != 0 {
		t.Error("resolution must not mutate the session")
	}
	if len(s.NPCs) != 0 {
		t.Error("resolution must not write into the session's narrative context")
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	r := NewResolver(testStore())
	s := session.New("player-1", "", "", "")
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	a, err := r.Resolve(s, "ch1_first_standup", "speak_up", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := r.Resolve(s, "ch1_first_standup", "speak_up", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	aj, _ := json.Marshal(a)
	bj, _ := json.Marshal(b)
	if string(aj) != string(bj) {
		t.Errorf("identical inputs produced different results:\n%s\n%s", aj, bj)
	}
}

func TestResolveErrors(t *testing.T) {
	r := NewResolver(testStore())
	s := session.New("player-1", "", "", "")
	now := time.Now()

	if _, err := r.Resolve(s, "ch9_nowhere", "speak_up", now); !errors.Is(err, content.ErrScenarioNotFound) {
		t.Errorf("expected ErrScenarioNotFound, got %v", err)
	}
	if _, err := r.Resolve(s, "ch1_first_standup", "do_a_flip", now); !errors.Is(err, ErrActionNotFound) {
		t.Errorf("expected ErrActionNotFound, got %v", err)
	}

	br := NewResolver(brokenStore())
	if _, err := br.Resolve(s, "ch1_broken", "act", now); !errors.Is(err, ErrFeedbackVariantMissing) {
		t.Errorf("expected ErrFeedbackVariantMissing, got %v", err)
	}
}
