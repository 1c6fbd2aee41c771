package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/jwebster45206/career-engine/internal/storage"
	"github.com/jwebster45206/career-engine/pkg/mirror"
)

// handleMirror serves the derived end-of-run summary. The summary is
// regenerated from the session on each request and cached onto the session
// row so external consumers can read the artifact without this service.
func (h *SessionHandler) handleMirror(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
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

	summary := mirror.Generate(*s)
	data, err := json.Marshal(summary)
	if err != nil {
		h.logger.Error("Failed to marshal mirror summary", "id", id, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to generate summary")
		return
	}

	s.Mirror = data
	if err := h.store.SaveSession(r.Context(), s); err != nil {
		// Serving the summary matters more than caching it.
		h.logger.Warn("Failed to cache mirror summary", "id", id, "error", err)
	}

	writeJSON(w, h.logger, http.StatusOK, summary)
}
