package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/jwebster45206/career-engine/pkg/session"
)

// SQLiteStore persists sessions in a relational projection: one row per
// session with the state vector, action history, event queue, applied-events
// set and NPC relationships stored as JSON columns.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ SessionStore = (*SQLiteStore)(nil)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	id              TEXT PRIMARY KEY,
	player_id       TEXT NOT NULL DEFAULT '',
	created_at      TIMESTAMP NOT NULL,
	updated_at      TIMESTAMP NOT NULL,
	current_chapter INTEGER NOT NULL DEFAULT 0,
	current_scene   TEXT NOT NULL DEFAULT '',
	scene_completed INTEGER NOT NULL DEFAULT 0,
	run_number      INTEGER NOT NULL DEFAULT 1,
	role            TEXT NOT NULL DEFAULT '',
	experience      TEXT NOT NULL DEFAULT '',
	mindset         TEXT NOT NULL DEFAULT '',
	turn_counter    INTEGER NOT NULL DEFAULT 0,
	state_vector    TEXT NOT NULL,
	action_history  TEXT NOT NULL,
	event_queue     TEXT NOT NULL,
	applied_events  TEXT NOT NULL,
	npcs            TEXT NOT NULL,
	mirror          TEXT
);`

// NewSQLiteStore opens (and if needed creates) the database at path.
func NewSQLiteStore(path string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create sessions table: %w", err)
	}
	return &SQLiteStore{db: db, logger: logger}, nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite ping failed: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveSession upserts the session row, refreshing UpdatedAt.
func (s *SQLiteStore) SaveSession(ctx context.Context, ps *session.PlayerSession) error {
	ps.UpdatedAt = time.Now()

	state, err := json.Marshal(ps.State)
	if err != nil {
		return fmt.Errorf("failed to marshal state vector: %w", err)
	}
	history, err := json.Marshal(ps.ActionHistory)
	if err != nil {
		return fmt.Errorf("failed to marshal action history: %w", err)
	}
	queue, err := json.Marshal(ps.EventQueue)
	if err != nil {
		return fmt.Errorf("failed to marshal event queue: %w", err)
	}
	applied, err := json.Marshal(ps.AppliedEvents)
	if err != nil {
		return fmt.Errorf("failed to marshal applied events: %w", err)
	}
	npcs, err := json.Marshal(ps.NPCs)
	if err != nil {
		return fmt.Errorf("failed to marshal npc relationships: %w", err)
	}

	var mirrorCol any
	if len(ps.Mirror) > 0 {
		mirrorCol = string(ps.Mirror)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (
			id, player_id, created_at, updated_at, current_chapter,
			current_scene, scene_completed, run_number, role, experience,
			mindset, turn_counter, state_vector, action_history, event_queue,
			applied_events, npcs, mirror
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			player_id = excluded.player_id,
			updated_at = excluded.updated_at,
			current_chapter = excluded.current_chapter,
			current_scene = excluded.current_scene,
			scene_completed = excluded.scene_completed,
			run_number = excluded.run_number,
			role = excluded.role,
			experience = excluded.experience,
			mindset = excluded.mindset,
			turn_counter = excluded.turn_counter,
			state_vector = excluded.state_vector,
			action_history = excluded.action_history,
			event_queue = excluded.event_queue,
			applied_events = excluded.applied_events,
			npcs = excluded.npcs,
			mirror = excluded.mirror`,
		ps.ID.String(), ps.PlayerID, ps.CreatedAt, ps.UpdatedAt, ps.CurrentChapter,
		ps.CurrentScene, boolToInt(ps.SceneCompleted), ps.RunNumber, string(ps.Role), ps.Experience,
		ps.Mindset, ps.TurnCounter, string(state), string(history), string(queue),
		string(applied), string(npcs), mirrorCol,
	)
	if err != nil {
		s.logger.Error("Failed to save session", "id", ps.ID, "error", err)
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) LoadSession(ctx context.Context, id uuid.UUID) (*session.PlayerSession, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, player_id, created_at, updated_at, current_chapter,
			current_scene, scene_completed, run_number, role, experience,
			mindset, turn_counter, state_vector, action_history, event_queue,
			applied_events, npcs, mirror
		FROM sessions WHERE id = ?`, id.String())

	var (
		ps                                            session.PlayerSession
		idRaw, role                                   string
		completed                                     int
		state, history, queue, applied, npcs          string
		mirrorCol                                     sql.NullString
	)
	err := row.Scan(&idRaw, &ps.PlayerID, &ps.CreatedAt, &ps.UpdatedAt, &ps.CurrentChapter,
		&ps.CurrentScene, &completed, &ps.RunNumber, &role, &ps.Experience,
		&ps.Mindset, &ps.TurnCounter, &state, &history, &queue,
		&applied, &npcs, &mirrorCol)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	ps.ID, err = uuid.Parse(idRaw)
	if err != nil {
		return nil, fmt.Errorf("corrupt session id %q: %w", idRaw, err)
	}
	ps.SceneCompleted = completed != 0
	ps.Role = session.Role(role)

	if err := json.Unmarshal([]byte(state), &ps.State); err != nil {
		return nil, fmt.Errorf("corrupt state vector for session %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(history), &ps.ActionHistory); err != nil {
		return nil, fmt.Errorf("corrupt action history for session %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(queue), &ps.EventQueue); err != nil {
		return nil, fmt.Errorf("corrupt event queue for session %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(applied), &ps.AppliedEvents); err != nil {
		return nil, fmt.Errorf("corrupt applied events for session %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(npcs), &ps.NPCs); err != nil {
		return nil, fmt.Errorf("corrupt npc relationships for session %s: %w", id, err)
	}
	if mirrorCol.Valid {
		ps.Mirror = json.RawMessage(mirrorCol.String)
	}
	return &ps, nil
}

func (s *SQLiteStore) ListSessionIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM sessions`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan session id: %w", err)
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			s.logger.Warn("Skipping malformed session id", "id", raw)
			continue
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
