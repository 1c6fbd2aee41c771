package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jwebster45206/career-engine/internal/storage"
	"github.com/jwebster45206/career-engine/pkg/content"
	"github.com/jwebster45206/career-engine/pkg/engine"
	"github.com/jwebster45206/career-engine/pkg/session"
)

// SessionHandler owns the /api/session surface.
//
// Routes:
//
//	POST  /api/session                    - create session with default state
//	GET   /api/session/{id}               - read session
//	PATCH /api/session/{id}               - advance scene/chapter (game flow)
//	GET   /api/session/{id}/actions       - gated action listing for the active scene
//	PATCH /api/session/{id}/action        - resolve and apply an action
//	GET   /api/session/{id}/events        - due, unapplied pending events
//	POST  /api/session/{id}/events/ack    - mark delivered events applied
//	GET   /api/session/{id}/mirror        - end-of-run summary
type SessionHandler struct {
	store    storage.SessionStore
	content  *content.Store
	resolver *engine.Resolver
	logger   *slog.Logger
}

func NewSessionHandler(store storage.SessionStore, contentStore *content.Store, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		store:    store,
		content:  contentStore,
		resolver: engine.NewResolver(contentStore),
		logger:   logger,
	}
}

func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/session"), "/")
	parts := []string{}
	if path != "" {
		parts = strings.Split(path, "/")
	}

	if len(parts) == 0 {
		if r.Method != http.MethodPost {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST")
			return
		}
		h.handleCreate(w, r)
		return
	}

	id, err := uuid.Parse(parts[0])
	if err != nil {
		h.logger.Warn("Invalid session ID", "id", parts[0], "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid session ID format")
		return
	}

	switch {
	case len(parts) == 1:
		switch r.Method {
		case http.MethodGet:
			h.handleRead(w, r, id)
		case http.MethodPatch:
			h.handlePatch(w, r, id)
		default:
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET, PATCH")
		}
	case len(parts) == 2 && parts[1] == "actions" && r.Method == http.MethodGet:
		h.handleActions(w, r, id)
	case len(parts) == 2 && parts[1] == "action" && r.Method == http.MethodPatch:
		h.handleAction(w, r, id)
	case len(parts) == 2 && parts[1] == "events" && r.Method == http.MethodGet:
		h.handleEvents(w, r, id)
	case len(parts) == 3 && parts[1] == "events" && parts[2] == "ack" && r.Method == http.MethodPost:
		h.handleEventsAck(w, r, id)
	case len(parts) == 2 && parts[1] == "mirror" && r.Method == http.MethodGet:
		h.handleMirror(w, r, id)
	default:
		writeError(w, h.logger, http.StatusNotFound, "Unknown session resource")
	}
}

// CreateSessionRequest is the body for POST /api/session.
type CreateSessionRequest struct {
	PlayerID   string `json:"playerId,omitempty"`
	Role       string `json:"role,omitempty"`
	Experience string `json:"experience,omitempty"`
	Mindset    string `json:"mindset,omitempty"`
}

func (h *SessionHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.logger.Warn("Invalid JSON in request body", "error", err)
			writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
			return
		}
	}

	role := session.Role(req.Role)
	if role != "" && !role.IsValid() {
		writeError(w, h.logger, http.StatusBadRequest, "unknown role: "+req.Role)
		return
	}

	s := session.New(req.PlayerID, role, req.Experience, req.Mindset)
	if err := h.store.SaveSession(r.Context(), s); err != nil {
		h.logger.Error("Failed to save new session", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to create session")
		return
	}

	h.logger.Info("Session created", "id", s.ID, "role", s.Role)
	writeJSON(w, h.logger, http.StatusCreated, s)
}

func (h *SessionHandler) handleRead(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	s, err := h.store.LoadSession(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			writeError(w, h.logger, http.StatusNotFound, "Session not found")
			return
		}
		h.logger.Error("Failed to load session", "id", id, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load session")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, s)
}

// PatchSessionRequest advances game flow. Scene and chapter advancement live
// with the caller; the engine only marks scenes completed.
type PatchSessionRequest struct {
	CurrentScene   *string `json:"currentScene,omitempty"`
	CurrentChapter *int    `json:"currentChapter,omitempty"`
}

func (h *SessionHandler) handlePatch(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req PatchSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	s, err := h.store.LoadSession(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			writeError(w, h.logger, http.StatusNotFound, "Session not found")
			return
		}
		h.logger.Error("Failed to load session", "id", id, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load session")
		return
	}

	updated := *s
	if req.CurrentScene != nil {
		if *req.CurrentScene == s.CurrentScene {
			// Re-entering the active scene: mid-scene resume clears timers
			// scoped to it. No-op if the scene is already completed.
			updated = engine.HandleMidSceneResume(updated)
		} else {
			if _, err := h.content.GetMergedScenario(*req.CurrentScene, s.Role); err != nil {
				writeError(w, h.logger, http.StatusBadRequest, "unknown scenario: "+*req.CurrentScene)
				return
			}
			updated.CurrentScene = *req.CurrentScene
			updated.SceneCompleted = false
		}
	}
	if req.CurrentChapter != nil {
		updated.CurrentChapter = *req.CurrentChapter
	}

	if err := h.store.SaveSession(r.Context(), &updated); err != nil {
		h.logger.Error("Failed to save session", "id", id, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save session")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, &updated)
}

// ActionListing is the gated view of a scenario for one session.
type ActionListing struct {
	ScenarioID   string           `json:"scenarioId"`
	Title        string           `json:"title"`
	EntryAllowed bool             `json:"entryAllowed"`
	Actions      []content.Action `json:"actions"`
}

// handleActions lists the actions whose visibility gates pass for the
// session's current state. This is the primary gate-enforcement point;
// resolution itself does not re-check entry conditions.
func (h *SessionHandler) handleActions(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	s, err := h.store.LoadSession(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			writeError(w, h.logger, http.StatusNotFound, "Session not found")
			return
		}
		h.logger.Error("Failed to load session", "id", id, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load session")
		return
	}

	scenarioID := r.URL.Query().Get("scenarioId")
	if scenarioID == "" {
		scenarioID = s.CurrentScene
	}
	if scenarioID == "" {
		writeError(w, h.logger, http.StatusBadRequest, "scenarioId is required when the session has no active scene")
		return
	}

	merged, err := h.content.GetMergedScenario(scenarioID, s.Role)
	if err != nil {
		if errors.Is(err, content.ErrScenarioNotFound) {
			writeError(w, h.logger, http.StatusBadRequest, "unknown scenario: "+scenarioID)
			return
		}
		h.logger.Error("Failed to merge scenario", "error", err, "scenario", scenarioID)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to retrieve scenario")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, ActionListing{
		ScenarioID:   merged.ID,
		Title:        merged.Title,
		EntryAllowed: content.EvaluateAll(merged.EntryConditions, s.State),
		Actions:      merged.VisibleActions(s.State),
	})
}
