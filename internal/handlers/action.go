package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/career-engine/internal/storage"
	"github.com/jwebster45206/career-engine/pkg/content"
	"github.com/jwebster45206/career-engine/pkg/engine"
	"github.com/jwebster45206/career-engine/pkg/session"
)

// ActionRequest is the body for PATCH /api/session/{id}/action.
type ActionRequest struct {
	ScenarioID string `json:"scenarioId"`
	ActionID   string `json:"actionId"`
}

// ActionResponse returns the updated session plus the selected narrative.
type ActionResponse struct {
	Session   *session.PlayerSession `json:"session"`
	Narrative string                 `json:"narrative"`
	AudioCue  string                 `json:"audioCue,omitempty"`
}

// handleAction runs the resolve-apply-persist pipeline for one submitted
// action. Resolution failures are reported without touching persisted state:
// either the full consequence lands, or nothing does.
func (h *SessionHandler) handleAction(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid JSON in action request", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if req.ScenarioID == "" || req.ActionID == "" {
		writeError(w, h.logger, http.StatusBadRequest, "scenarioId and actionId are required")
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

	now := time.Now()
	res, err := h.resolver.Resolve(s, req.ScenarioID, req.ActionID, now)
	if err != nil {
		switch {
		case errors.Is(err, content.ErrScenarioNotFound):
			writeError(w, h.logger, http.StatusBadRequest, "unknown scenario: "+req.ScenarioID)
		case errors.Is(err, engine.ErrActionNotFound):
			writeError(w, h.logger, http.StatusBadRequest, "unknown action: "+req.ActionID)
		case errors.Is(err, engine.ErrFeedbackVariantMissing):
			// Content defect that validation should have caught. Fail loud.
			h.logger.Error("Feedback variant missing at resolution time",
				"scenario", req.ScenarioID, "action", req.ActionID, "error", err)
			writeError(w, h.logger, http.StatusInternalServerError, "Content integrity error")
		default:
			h.logger.Error("Failed to resolve action", "error", err)
			writeError(w, h.logger, http.StatusInternalServerError, "Failed to resolve action")
		}
		return
	}

	updated := engine.Apply(*s, *res, now)
	updated.CurrentScene = req.ScenarioID

	if err := h.store.SaveSession(r.Context(), &updated); err != nil {
		h.logger.Error("Failed to persist session after action", "id", id, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save session")
		return
	}

	h.logger.Info("Action applied",
		"session", id,
		"scenario", req.ScenarioID,
		"action", req.ActionID,
		"turn", updated.TurnCounter)

	writeJSON(w, h.logger, http.StatusOK, ActionResponse{
		Session:   &updated,
		Narrative: res.Narrative,
		AudioCue:  res.AudioCue,
	})
}
