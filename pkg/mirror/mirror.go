// Package mirror derives an end-of-run summary from a finished (or abandoned)
// session. It only reads the session; the session engine never depends on it.
package mirror

import (
	"sort"

	"github.com/jwebster45206/career-engine/pkg/narrative"
	"github.com/jwebster45206/career-engine/pkg/session"
)

// AxisMovement is one axis's travel from the default starting value.
type AxisMovement struct {
	Axis     string  `json:"axis"`
	Label    string  `json:"label"`
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Movement float64 `json:"movement"`
}

// Relationship is one NPC's standing at end of run.
type Relationship struct {
	NPCID      string           `json:"npc_id"`
	Name       string           `json:"name"`
	TrustLevel float64          `json:"trust_level"`
	Attitude   session.Attitude `json:"attitude"`
}

// Summary is the derived end-of-run artifact served by the mirror endpoint.
type Summary struct {
	SessionID      string                 `json:"session_id"`
	RunNumber      int                    `json:"run_number"`
	TurnsTaken     int                    `json:"turns_taken"`
	ScenesVisited  []string               `json:"scenes_visited"`
	FinalEmotion   session.EmotionalState `json:"final_emotion"`
	AxisMovements  []AxisMovement         `json:"axis_movements"`
	Relationships  []Relationship         `json:"relationships,omitempty"`
	ClosestAlly    string                 `json:"closest_ally,omitempty"`
	PendingEvents  int                    `json:"pending_events"`
	AppliedEvents  int                    `json:"applied_events"`
	ExpiredEvents  int                    `json:"expired_events"`
}

// Generate builds the summary for a session.
func Generate(s session.PlayerSession) Summary {
	defaults := session.NewStateVector()

	sum := Summary{
		SessionID:    s.ID.String(),
		RunNumber:    s.RunNumber,
		TurnsTaken:   s.TurnCounter,
		FinalEmotion: s.State.EmotionalState,
	}

	seen := make(map[string]bool)
	for _, rec := range s.ActionHistory {
		if !seen[rec.Scene] {
			seen[rec.Scene] = true
			sum.ScenesVisited = append(sum.ScenesVisited, rec.Scene)
		}
	}

	for _, axis := range session.AxisNames {
		start := defaults.Axes[axis]
		end := s.State.Axes[axis]
		sum.AxisMovements = append(sum.AxisMovements, AxisMovement{
			Axis:     axis,
			Label:    narrative.DisplayName(axis),
			Start:    start,
			End:      end,
			Movement: end - start,
		})
	}

	for _, r := range s.NPCs {
		sum.Relationships = append(sum.Relationships, Relationship{
			NPCID:      r.NPCID,
			Name:       r.Name,
			TrustLevel: r.TrustLevel,
			Attitude:   r.Attitude,
		})
	}
	sort.Slice(sum.Relationships, func(i, j int) bool {
		if sum.Relationships[i].TrustLevel != sum.Relationships[j].TrustLevel {
			return sum.Relationships[i].TrustLevel > sum.Relationships[j].TrustLevel
		}
		return sum.Relationships[i].NPCID < sum.Relationships[j].NPCID
	})
	if len(sum.Relationships) > 0 && sum.Relationships[0].TrustLevel > 0 {
		sum.ClosestAlly = sum.Relationships[0].Name
	}

	for _, ev := range s.EventQueue {
		switch ev.Status {
		case session.EventPending:
			sum.PendingEvents++
		case session.EventApplied:
			sum.AppliedEvents++
		case session.EventExpired:
			sum.ExpiredEvents++
		}
	}

	return sum
}
