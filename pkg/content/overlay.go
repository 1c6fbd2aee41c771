package content

import (
	"github.com/jwebster45206/career-engine/pkg/session"
)

// Overrides carries a role overlay's partial replacements. Actions and rules
// union onto the base by id: same id replaces, new id appends. Narrative
// substitutions rewrite {{token}} placeholders in the base template's text.
type Overrides struct {
	Actions                []Action          `yaml:"actions,omitempty" json:"actions,omitempty"`
	ConsequenceRules       []ConsequenceRule `yaml:"consequence_rules,omitempty" json:"consequence_rules,omitempty"`
	NarrativeSubstitutions map[string]string `yaml:"narrative_substitutions,omitempty" json:"narrative_substitutions,omitempty"`
}

// RoleOverlay is role-specific authored content layered onto a base
// scenario template. A document is classified as an overlay by the presence
// of its overrides key.
type RoleOverlay struct {
	ScenarioID string       `yaml:"scenario_id" json:"scenario_id"`
	Version    string       `yaml:"version" json:"version"`
	Role       session.Role `yaml:"role" json:"role"`
	Overrides  Overrides    `yaml:"overrides" json:"overrides"`
}
