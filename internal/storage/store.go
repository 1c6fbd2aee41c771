package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jwebster45206/career-engine/pkg/session"
)

// ErrSessionNotFound is returned when no session exists for an id.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore persists player sessions. Implementations must serialize
// writes per session id (single-writer-per-session); the core never
// coordinates concurrent submissions itself.
type SessionStore interface {
	Ping(ctx context.Context) error
	Close() error

	SaveSession(ctx context.Context, s *session.PlayerSession) error
	LoadSession(ctx context.Context, id uuid.UUID) (*session.PlayerSession, error)

	// ListSessionIDs returns ids of all live sessions, for the sweep worker.
	ListSessionIDs(ctx context.Context) ([]uuid.UUID, error)
}
