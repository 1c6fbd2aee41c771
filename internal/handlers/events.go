package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/jwebster45206/career-engine/internal/storage"
	"github.com/jwebster45206/career-engine/pkg/engine"
	"github.com/jwebster45206/career-engine/pkg/session"
)

// EventsResponse lists the events currently deliverable to a session.
type EventsResponse struct {
	Events []session.EventQueueEntry `json:"events"`
}

// handleEvents returns the due, unapplied pending events. Reading never
// consumes: the client acknowledges delivery separately so a dropped
// response cannot lose an event.
func (h *SessionHandler) handleEvents(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
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

	due := engine.DueEvents(*s)
	if due == nil {
		due = []session.EventQueueEntry{}
	}
	writeJSON(w, h.logger, http.StatusOK, EventsResponse{Events: due})
}

// AckEventsRequest is the body for POST /api/session/{id}/events/ack.
type AckEventsRequest struct {
	EventIDs []string `json:"eventIds"`
}

// handleEventsAck marks delivered events applied. Replays are harmless: an
// event already in the applied set stays applied exactly once.
func (h *SessionHandler) handleEventsAck(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req AckEventsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if len(req.EventIDs) == 0 {
		writeError(w, h.logger, http.StatusBadRequest, "eventIds must not be empty")
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

	updated := engine.AckEvents(*s, req.EventIDs)
	if err := h.store.SaveSession(r.Context(), &updated); err != nil {
		h.logger.Error("Failed to save session after event ack", "id", id, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save session")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, &updated)
}
