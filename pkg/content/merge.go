package content

import (
	"github.com/jwebster45206/career-engine/pkg/narrative"
)

// MergedScenario is the effective content served for one (scenario, role)
// pair: the base template with any role overlay folded in. It is built fresh
// per lookup and safe for the caller to hold.
type MergedScenario struct {
	ID               string                     `json:"id"`
	Version          string                     `json:"version"`
	Chapter          int                        `json:"chapter"`
	Title            string                     `json:"title"`
	EntryConditions  []Condition                `json:"entry_conditions,omitempty"`
	Actions          []Action                   `json:"actions"`
	Rules            map[string]ConsequenceRule `json:"rules"`
	FeedbackVariants []FeedbackVariant          `json:"feedback_variants"`
	TimeConstraint   *TimeConstraint            `json:"time_constraint,omitempty"`
}

// Rule returns the consequence rule for actionID.
func (m *MergedScenario) Rule(actionID string) (ConsequenceRule, bool) {
	r, ok := m.Rules[actionID]
	return r, ok
}

// Feedback returns the feedback variant with the given key.
func (m *MergedScenario) Feedback(key string) (FeedbackVariant, bool) {
	for _, f := range m.FeedbackVariants {
		if f.Key == key {
			return f, true
		}
	}
	return FeedbackVariant{}, false
}

// VisibleActions returns the actions whose gating conditions pass for the
// given state. This is the primary enforcement point for action gates.
func (m *MergedScenario) VisibleActions(view StateView) []Action {
	out := make([]Action, 0, len(m.Actions))
	for _, a := range m.Actions {
		if EvaluateAll(a.Conditions, view) {
			out = append(out, a)
		}
	}
	return out
}

// Merge folds an optional role overlay onto a base template. A nil overlay
// is the identity. Overlay actions and rules replace base entries with the
// same id and append otherwise, preserving base ordering; narrative
// substitutions rewrite placeholder tokens in the base text.
func Merge(t *ScenarioTemplate, o *RoleOverlay) *MergedScenario {
	m := &MergedScenario{
		ID:              t.ID,
		Version:         t.Version,
		Chapter:         t.Chapter,
		Title:           t.Title,
		EntryConditions: append([]Condition(nil), t.EntryConditions...),
		Actions:         append([]Action(nil), t.Actions...),
		TimeConstraint:  t.TimeConstraint,
	}

	m.Rules = make(map[string]ConsequenceRule, len(t.ConsequenceRules))
	for _, r := range t.ConsequenceRules {
		m.Rules[r.ActionID] = r
	}
	m.FeedbackVariants = append([]FeedbackVariant(nil), t.FeedbackVariants...)

	if o == nil {
		return m
	}

	for _, oa := range o.Overrides.Actions {
		replaced := false
		for i, a := range m.Actions {
			if a.ID == oa.ID {
				m.Actions[i] = oa
				replaced = true
				break
			}
		}
		if !replaced {
			m.Actions = append(m.Actions, oa)
		}
	}

	for _, or := range o.Overrides.ConsequenceRules {
		m.Rules[or.ActionID] = or
	}

	if subs := o.Overrides.NarrativeSubstitutions; len(subs) > 0 {
		m.Title = narrative.Substitute(m.Title, subs)
		for i, a := range m.Actions {
			m.Actions[i].Label = narrative.Substitute(a.Label, subs)
			m.Actions[i].Description = narrative.Substitute(a.Description, subs)
		}
		for i, f := range m.FeedbackVariants {
			m.FeedbackVariants[i].Text = narrative.Substitute(f.Text, subs)
		}
	}

	return m
}
