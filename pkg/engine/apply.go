package engine

import (
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/career-engine/pkg/session"
)

// Apply folds a resolution result into a copy of the session and returns the
// copy; the input session is never touched, so a failed persist leaves no
// half-applied state behind.
//
// Per-delta rules: known axes are adjusted and clamped to [0,1]; deltas
// naming unknown axes are ignored so content can reference axes added later.
// Submitting any action completes the current scene; advancing the scene and
// chapter is the caller's concern.
func Apply(in session.PlayerSession, res ResolutionResult, now time.Time) session.PlayerSession {
	s := in.Clone()
	s.TurnCounter++

	for _, d := range res.StateDeltas {
		if !session.IsAxis(d.Variable) {
			continue
		}
		s.State.Axes[d.Variable] = session.Clamp01(s.State.Axes[d.Variable] + d.Delta)
	}

	if shift := res.EmotionalShift; shift != nil && shiftApplies(shift.IfCurrentIn, s.State.EmotionalState) {
		s.State.EmotionalState = shift.To
	}

	s.ActionHistory = append(s.ActionHistory, session.ActionRecord{
		Scene:     res.ScenarioID,
		Action:    res.ActionID,
		Timestamp: now,
	})

	for _, ev := range res.Events {
		s.EventQueue = append(s.EventQueue, session.EventQueueEntry{
			ID:          uuid.New().String(),
			Type:        ev.Type,
			Delay:       ev.Delay,
			DueTurn:     s.TurnCounter + ev.Delay,
			OriginScene: res.ScenarioID,
			Payload:     ev.Payload,
			Status:      session.EventPending,
			CreatedAt:   now,
		})
	}

	s.NPCs = res.Context.Clone()
	s.SceneCompleted = true
	return s
}

func shiftApplies(ifCurrentIn []session.EmotionalState, current session.EmotionalState) bool {
	if len(ifCurrentIn) == 0 {
		return true
	}
	for _, e := range ifCurrentIn {
		if e == current {
			return true
		}
	}
	return false
}

// HandleMidSceneResume prepares a session that re-enters an uncompleted
// scene. Pending events originated by the current scene are dropped so their
// timers cannot fire twice across the resume; applied and expired events, and
// events from other scenes, are untouched. Resuming a completed scene is a
// no-op, which also makes the operation idempotent.
func HandleMidSceneResume(in session.PlayerSession) session.PlayerSession {
	if in.SceneCompleted || in.CurrentScene == "" {
		return in
	}
	s := in.Clone()
	kept := s.EventQueue[:0]
	for _, ev := range s.EventQueue {
		if ev.Status == session.EventPending && ev.OriginScene == s.CurrentScene {
			continue
		}
		kept = append(kept, ev)
	}
	s.EventQueue = kept
	return s
}

// DueEvents returns the pending events whose due turn has been reached and
// which have not already been consumed.
func DueEvents(s session.PlayerSession) []session.EventQueueEntry {
	var due []session.EventQueueEntry
	for _, ev := range s.EventQueue {
		if ev.Due(s.TurnCounter) && !s.AppliedEvents[ev.ID] {
			due = append(due, ev)
		}
	}
	return due
}

// AckEvents marks the named events applied on a copy of the session. Ids that
// are unknown, not pending, or already applied are skipped, so replaying an
// acknowledgement is harmless.
func AckEvents(in session.PlayerSession, eventIDs []string) session.PlayerSession {
	s := in.Clone()
	ack := make(map[string]bool, len(eventIDs))
	for _, id := range eventIDs {
		ack[id] = true
	}
	for i, ev := range s.EventQueue {
		if !ack[ev.ID] || ev.Status != session.EventPending || s.AppliedEvents[ev.ID] {
			continue
		}
		s.EventQueue[i].Status = session.EventApplied
		s.AppliedEvents[ev.ID] = true
	}
	return s
}

// ExpireStale marks pending events older than maxAge as expired on a copy of
// the session. Used by the sweep worker to retire timers the player never
// came back for. Returns the copy and the number of events expired.
func ExpireStale(in session.PlayerSession, maxAge time.Duration, now time.Time) (session.PlayerSession, int) {
	s := in.Clone()
	n := 0
	for i, ev := range s.EventQueue {
		if ev.Status != session.EventPending {
			continue
		}
		if now.Sub(ev.CreatedAt) > maxAge {
			s.EventQueue[i].Status = session.EventExpired
			n++
		}
	}
	return s, n
}
