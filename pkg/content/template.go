package content

import (
	"github.com/jwebster45206/career-engine/pkg/session"
)

// Action is a single player choice offered by a scenario. Conditions gate
// visibility: an action whose conditions fail is hidden when listing, and
// stays resolvable so a stale client is not stranded mid-scene.
type Action struct {
	ID          string      `yaml:"id" json:"id"`
	Label       string      `yaml:"label" json:"label"`
	Description string      `yaml:"description,omitempty" json:"description,omitempty"`
	Conditions  []Condition `yaml:"conditions,omitempty" json:"conditions,omitempty"`
}

// StateDelta is one signed adjustment to a named state-vector axis.
// Deltas are authored unclamped; the state engine clamps on apply.
type StateDelta struct {
	Variable string  `yaml:"variable" json:"variable"`
	Delta    float64 `yaml:"delta" json:"delta"`
}

// EmotionalShift moves the player's emotional state to a target, optionally
// only when the current state is in IfCurrentIn.
type EmotionalShift struct {
	To          session.EmotionalState   `yaml:"to" json:"to"`
	IfCurrentIn []session.EmotionalState `yaml:"if_current_in,omitempty" json:"if_current_in,omitempty"`
}

// EventDef is an authored delayed event: spawned on resolution, delivered
// once the session has advanced Delay turns.
type EventDef struct {
	Type    session.EventType `yaml:"type" json:"type"`
	Delay   int               `yaml:"delay" json:"delay"`
	Payload map[string]any    `yaml:"payload,omitempty" json:"payload,omitempty"`
}

// NPCInteraction is a consequence-driven touch on one NPC relationship.
type NPCInteraction struct {
	NPCID       string           `yaml:"npc_id" json:"npc_id"`
	Name        string           `yaml:"name,omitempty" json:"name,omitempty"`
	TrustDelta  float64          `yaml:"trust_delta,omitempty" json:"trust_delta,omitempty"`
	SetAttitude session.Attitude `yaml:"set_attitude,omitempty" json:"set_attitude,omitempty"`
	Memory      string           `yaml:"memory,omitempty" json:"memory,omitempty"`
}

// ConsequenceRule binds exactly one action id to its effects.
type ConsequenceRule struct {
	ActionID          string           `yaml:"action_id" json:"action_id"`
	StateDeltas       []StateDelta     `yaml:"state_deltas,omitempty" json:"state_deltas,omitempty"`
	EmotionalShift    *EmotionalShift  `yaml:"emotional_shift,omitempty" json:"emotional_shift,omitempty"`
	Events            []EventDef       `yaml:"events,omitempty" json:"events,omitempty"`
	NPCInteractions   []NPCInteraction `yaml:"npc_interactions,omitempty" json:"npc_interactions,omitempty"`
	ImmediateFeedback string           `yaml:"immediate_feedback" json:"immediate_feedback"`
}

// FeedbackVariant is a pre-authored narrative response, selected by exact key
// match against a rule's immediate_feedback.
type FeedbackVariant struct {
	Key            string                 `yaml:"key" json:"key"`
	EmotionalState session.EmotionalState `yaml:"emotional_state" json:"emotional_state"`
	Text           string                 `yaml:"text" json:"text"`
	AudioCue       string                 `yaml:"audio_cue,omitempty" json:"audio_cue,omitempty"`
}

// TimeConstraint optionally bounds how long a scenario stays live.
type TimeConstraint struct {
	LimitTurns int    `yaml:"limit_turns,omitempty" json:"limit_turns,omitempty"`
	OnExpire   string `yaml:"on_expire,omitempty" json:"on_expire,omitempty"`
}

// ScenarioTemplate is the base authored content for one scenario.
//
// The action/consequence lists are 1:1 by action id; validation rejects any
// template whose rules dangle.
type ScenarioTemplate struct {
	ID               string            `yaml:"id" json:"id"`
	Version          string            `yaml:"version" json:"version"`
	Chapter          int               `yaml:"chapter" json:"chapter"`
	Title            string            `yaml:"title" json:"title"`
	EntryConditions  []Condition       `yaml:"entry_conditions,omitempty" json:"entry_conditions,omitempty"`
	Actions          []Action          `yaml:"actions" json:"actions"`
	ConsequenceRules []ConsequenceRule `yaml:"consequence_rules" json:"consequence_rules"`
	FeedbackVariants []FeedbackVariant `yaml:"feedback_variants" json:"feedback_variants"`
	TimeConstraint   *TimeConstraint   `yaml:"time_constraint,omitempty" json:"time_constraint,omitempty"`
}

// Rule returns the consequence rule bound to actionID.
func (t *ScenarioTemplate) Rule(actionID string) (ConsequenceRule, bool) {
	for _, r := range t.ConsequenceRules {
		if r.ActionID == actionID {
			return r, true
		}
	}
	return ConsequenceRule{}, false
}

// Feedback returns the feedback variant with the given key.
func (t *ScenarioTemplate) Feedback(key string) (FeedbackVariant, bool) {
	for _, f := range t.FeedbackVariants {
		if f.Key == key {
			return f, true
		}
	}
	return FeedbackVariant{}, false
}
