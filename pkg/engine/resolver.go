// Package engine resolves submitted actions against merged scenario content
// and applies the resulting consequences to session state.
package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/jwebster45206/career-engine/pkg/content"
	"github.com/jwebster45206/career-engine/pkg/session"
)

var (
	// ErrActionNotFound means the submitted action id is not declared for the
	// scenario (after overlay merge).
	ErrActionNotFound = errors.New("action not found")

	// ErrFeedbackVariantMissing means a consequence rule's feedback key has no
	// matching variant. A passing validator run makes this unreachable, so it
	// is surfaced loudly instead of defaulted.
	ErrFeedbackVariantMissing = errors.New("feedback variant missing")
)

// ResolutionResult is the full consequence of one submitted action. It is a
// pure description: nothing in the session has been mutated yet, and deltas
// are still unclamped.
type ResolutionResult struct {
	ScenarioID     string                   `json:"scenario_id"`
	ActionID       string                   `json:"action_id"`
	Narrative      string                   `json:"narrative"`
	AudioCue       string                   `json:"audio_cue,omitempty"`
	StateDeltas    []content.StateDelta     `json:"state_deltas,omitempty"`
	EmotionalShift *content.EmotionalShift  `json:"emotional_shift,omitempty"`
	Events         []content.EventDef       `json:"events,omitempty"`
	Context        session.NarrativeContext `json:"context"`
}

// Resolver turns (session, scenario, action) into a ResolutionResult using
// the content store. Resolution is deterministic: identical inputs always
// produce identical results.
type Resolver struct {
	store *content.Store
}

// NewResolver creates a resolver over the given content store.
func NewResolver(store *content.Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve looks up the merged scenario for the session's role, finds the
// consequence rule for actionID, selects its feedback variant, and folds any
// NPC interactions into a copy of the session's narrative context.
//
// Entry conditions are not re-checked here. Visibility gating happens at
// listing time; re-blocking an active scene on entry conditions could strand
// a session whose state moved mid-scene.
func (r *Resolver) Resolve(s *session.PlayerSession, scenarioID, actionID string, now time.Time) (*ResolutionResult, error) {
	merged, err := r.store.GetMergedScenario(scenarioID, s.Role)
	if err != nil {
		return nil, err
	}

	rule, ok := merged.Rule(actionID)
	if !ok {
		return nil, fmt.Errorf("%w: %s in scenario %s", ErrActionNotFound, actionID, scenarioID)
	}

	fv, ok := merged.Feedback(rule.ImmediateFeedback)
	if !ok {
		return nil, fmt.Errorf("%w: key %q in scenario %s", ErrFeedbackVariantMissing, rule.ImmediateFeedback, scenarioID)
	}

	ctx := s.NPCs
	for _, ni := range rule.NPCInteractions {
		ctx = ctx.Apply(session.Interaction{
			NPCID:       ni.NPCID,
			Name:        ni.Name,
			TrustDelta:  ni.TrustDelta,
			SetAttitude: ni.SetAttitude,
			Memory:      ni.Memory,
			ScenarioID:  scenarioID,
			When:        now,
		})
	}

	return &ResolutionResult{
		ScenarioID:     scenarioID,
		ActionID:       actionID,
		Narrative:      fv.Text,
		AudioCue:       fv.AudioCue,
		StateDeltas:    rule.StateDeltas,
		EmotionalShift: rule.EmotionalShift,
		Events:         rule.Events,
		Context:        ctx,
	}, nil
}
