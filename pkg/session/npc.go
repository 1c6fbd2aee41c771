package session

import (
	"slices"
	"time"
)

// Attitude is an NPC's categorical disposition toward the player.
type Attitude string

const (
	AttitudeMentor   Attitude = "mentor"
	AttitudeFriendly Attitude = "friendly"
	AttitudeNeutral  Attitude = "neutral"
	AttitudeHostile  Attitude = "hostile"
)

// IsValid reports whether a is a recognised attitude.
func (a Attitude) IsValid() bool {
	switch a {
	case AttitudeMentor, AttitudeFriendly, AttitudeNeutral, AttitudeHostile:
		return true
	}
	return false
}

// NPCRelationship tracks one NPC's trust and attitude toward the player.
//
// Attitude is normally inferred from trust. An explicit attitude shift to
// mentor or hostile locks the attitude: later trust movement re-infers only
// for unlocked relationships, and only another explicit shift can unlock.
type NPCRelationship struct {
	NPCID           string    `json:"npc_id"`
	Name            string    `json:"name"`
	Role            string    `json:"role"`
	TrustLevel      float64   `json:"trust_level"` // clamped to [0,100]
	Attitude        Attitude  `json:"attitude"`
	AttitudeLocked  bool      `json:"attitude_locked"`
	SharedScenarios []string  `json:"shared_scenarios,omitempty"`
	LastMet         time.Time `json:"last_met,omitzero"`
	Memory          []string  `json:"memory,omitempty"`
}

// InferAttitude maps a trust level to the attitude it implies.
func InferAttitude(trust float64) Attitude {
	switch {
	case trust >= 75:
		return AttitudeMentor
	case trust >= 50:
		return AttitudeFriendly
	case trust >= 25:
		return AttitudeNeutral
	default:
		return AttitudeHostile
	}
}

func clampTrust(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// WithTrustDelta returns a copy of r with the delta applied and, unless the
// attitude is locked, the attitude re-inferred from the new trust level.
func (r NPCRelationship) WithTrustDelta(delta float64) NPCRelationship {
	out := r
	out.TrustLevel = clampTrust(r.TrustLevel + delta)
	if !out.AttitudeLocked {
		out.Attitude = InferAttitude(out.TrustLevel)
	}
	return out
}

// WithAttitude returns a copy of r with the attitude set explicitly.
// Explicit mentor and hostile are sticky; any other explicit attitude
// releases the lock and future trust changes infer again.
func (r NPCRelationship) WithAttitude(a Attitude) NPCRelationship {
	out := r
	out.Attitude = a
	out.AttitudeLocked = a == AttitudeMentor || a == AttitudeHostile
	return out
}

// WithSharedScenario returns a copy of r recording scenarioID in the NPC's
// shared history. The set is ordered and distinct.
func (r NPCRelationship) WithSharedScenario(scenarioID string) NPCRelationship {
	if scenarioID == "" || slices.Contains(r.SharedScenarios, scenarioID) {
		return r
	}
	out := r
	out.SharedScenarios = append(append([]string(nil), r.SharedScenarios...), scenarioID)
	return out
}

// NarrativeContext is the session's map of NPC relationships, keyed by NPC id.
type NarrativeContext map[string]NPCRelationship

// NewNarrativeContext returns an empty relationship map.
func NewNarrativeContext() NarrativeContext {
	return make(NarrativeContext)
}

// Clone returns a deep copy of the context.
func (nc NarrativeContext) Clone() NarrativeContext {
	out := make(NarrativeContext, len(nc))
	for id, r := range nc {
		r.SharedScenarios = append([]string(nil), r.SharedScenarios...)
		r.Memory = append([]string(nil), r.Memory...)
		out[id] = r
	}
	return out
}

// GetOrCreate returns the relationship for npcID, creating a default record
// (trust 0, neutral role, inferred attitude) on first interaction.
func (nc NarrativeContext) GetOrCreate(npcID string) NPCRelationship {
	if r, ok := nc[npcID]; ok {
		return r
	}
	return NPCRelationship{
		NPCID:    npcID,
		Name:     npcID,
		Role:     "colleague",
		Attitude: InferAttitude(0),
	}
}

// Interaction describes one consequence-driven touch on an NPC relationship.
type Interaction struct {
	NPCID       string
	Name        string
	TrustDelta  float64
	SetAttitude Attitude // empty means no explicit shift
	Memory      string
	ScenarioID  string
	When        time.Time
}

// Apply returns a new context with the interaction folded into the named
// relationship. The receiver is not mutated.
func (nc NarrativeContext) Apply(in Interaction) NarrativeContext {
	out := nc.Clone()
	r := out.GetOrCreate(in.NPCID)
	if in.Name != "" {
		r.Name = in.Name
	}
	r = r.WithTrustDelta(in.TrustDelta)
	if in.SetAttitude != "" {
		r = r.WithAttitude(in.SetAttitude)
	}
	r = r.WithSharedScenario(in.ScenarioID)
	if in.Memory != "" {
		r.Memory = append(r.Memory, in.Memory)
	}
	if !in.When.IsZero() {
		r.LastMet = in.When
	}
	out[in.NPCID] = r
	return out
}

// Decay returns a new context with every trust level multiplied by factor and
// unlocked attitudes re-inferred. Factor 1 is a no-op; factors below 1 model
// relationships cooling as time passes.
func (nc NarrativeContext) Decay(factor float64) NarrativeContext {
	out := nc.Clone()
	for id, r := range out {
		r.TrustLevel = clampTrust(r.TrustLevel * factor)
		if !r.AttitudeLocked {
			r.Attitude = InferAttitude(r.TrustLevel)
		}
		out[id] = r
	}
	return out
}
