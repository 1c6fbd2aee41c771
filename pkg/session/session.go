package session

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Role tags the player's chosen career track. Overlays are keyed by role.
type Role string

const (
	RoleAnalyst  Role = "analyst"
	RoleEngineer Role = "engineer"
	RoleDesigner Role = "designer"
	RoleManager  Role = "manager"
)

// IsValid reports whether r is a recognised role.
func (r Role) IsValid() bool {
	switch r {
	case RoleAnalyst, RoleEngineer, RoleDesigner, RoleManager:
		return true
	}
	return false
}

// EventType classifies a delayed follow-up event.
type EventType string

const (
	EventInterruption EventType = "interruption"
	EventOpportunity  EventType = "opportunity"
	EventConsequence  EventType = "consequence"
	EventExpiry       EventType = "expiry"
)

// IsValid reports whether t is a recognised event type.
func (t EventType) IsValid() bool {
	switch t {
	case EventInterruption, EventOpportunity, EventConsequence, EventExpiry:
		return true
	}
	return false
}

// EventStatus is the delivery state of a queued event.
type EventStatus string

const (
	EventPending EventStatus = "pending"
	EventApplied EventStatus = "applied"
	EventExpired EventStatus = "expired"
)

// ActionRecord is one entry in a session's append-only action history.
type ActionRecord struct {
	Scene     string    `json:"scene"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// EventQueueEntry is a delayed effect scheduled onto a session. Delay is
// measured in turns: the entry becomes due once the session's turn counter
// reaches DueTurn.
type EventQueueEntry struct {
	ID          string         `json:"id"`
	Type        EventType      `json:"type"`
	Delay       int            `json:"delay"`
	DueTurn     int            `json:"due_turn"`
	OriginScene string         `json:"origin_scene"`
	Payload     map[string]any `json:"payload,omitempty"`
	Status      EventStatus    `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
}

// Due reports whether the entry is deliverable at the given turn.
func (e EventQueueEntry) Due(turn int) bool {
	return e.Status == EventPending && turn >= e.DueTurn
}

// PlayerSession is the unit of player progress through the simulation.
// It is mutated exactly once per submitted action, by the state engine.
type PlayerSession struct {
	ID             uuid.UUID         `json:"id"`
	PlayerID       string            `json:"player_id,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
	CurrentChapter int               `json:"current_chapter"`
	CurrentScene   string            `json:"current_scene,omitempty"`
	SceneCompleted bool              `json:"scene_completed"`
	RunNumber      int               `json:"run_number"`
	Role           Role              `json:"role,omitempty"`
	Experience     string            `json:"experience,omitempty"`
	Mindset        string            `json:"mindset,omitempty"`
	TurnCounter    int               `json:"turn_counter"`
	State          StateVector       `json:"state"`
	ActionHistory  []ActionRecord    `json:"action_history"`
	EventQueue     []EventQueueEntry `json:"event_queue"`
	AppliedEvents  map[string]bool   `json:"applied_events"`
	NPCs           NarrativeContext  `json:"npcs"`
	Mirror         json.RawMessage   `json:"mirror,omitempty"`
}

// New creates a session at chapter 0 with the default state vector.
func New(playerID string, role Role, experience, mindset string) *PlayerSession {
	now := time.Now()
	return &PlayerSession{
		ID:            uuid.New(),
		PlayerID:      playerID,
		CreatedAt:     now,
		UpdatedAt:     now,
		RunNumber:     1,
		Role:          role,
		Experience:    experience,
		Mindset:       mindset,
		State:         NewStateVector(),
		ActionHistory: make([]ActionRecord, 0),
		EventQueue:    make([]EventQueueEntry, 0),
		AppliedEvents: make(map[string]bool),
		NPCs:          NewNarrativeContext(),
	}
}

// Clone returns a deep copy of the session. The state engine transforms
// clones so that a failed request never leaves a half-applied session behind.
func (s PlayerSession) Clone() PlayerSession {
	out := s
	out.State = s.State.Clone()
	out.ActionHistory = append([]ActionRecord(nil), s.ActionHistory...)
	out.EventQueue = make([]EventQueueEntry, len(s.EventQueue))
	for i, e := range s.EventQueue {
		out.EventQueue[i] = e
		if e.Payload != nil {
			p := make(map[string]any, len(e.Payload))
			for k, v := range e.Payload {
				p[k] = v
			}
			out.EventQueue[i].Payload = p
		}
	}
	out.AppliedEvents = make(map[string]bool, len(s.AppliedEvents))
	for k, v := range s.AppliedEvents {
		out.AppliedEvents[k] = v
	}
	out.NPCs = s.NPCs.Clone()
	out.Mirror = append(json.RawMessage(nil), s.Mirror...)
	return out
}
