package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jwebster45206/career-engine/pkg/content"
	"github.com/jwebster45206/career-engine/pkg/session"
)

// ScenarioHandler serves merged scenario content.
//
// GET /api/scenario/{id}?role={role} - merged template for the role, or the
// base template when no role is given.
type ScenarioHandler struct {
	store  *content.Store
	logger *slog.Logger
}

func NewScenarioHandler(store *content.Store, logger *slog.Logger) *ScenarioHandler {
	return &ScenarioHandler{store: store, logger: logger}
}

func (h *ScenarioHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only GET is supported.")
		return
	}

	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/scenario"), "/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, h.logger, http.StatusBadRequest, "scenario id is required in URL path (e.g., /api/scenario/ch1_setup_background)")
		return
	}

	role := session.Role(r.URL.Query().Get("role"))
	if role != "" && !role.IsValid() {
		writeError(w, h.logger, http.StatusBadRequest, "unknown role: "+string(role))
		return
	}

	merged, err := h.store.GetMergedScenario(id, role)
	if err != nil {
		if errors.Is(err, content.ErrScenarioNotFound) {
			writeError(w, h.logger, http.StatusNotFound, "Scenario not found")
			return
		}
		h.logger.Error("Failed to merge scenario", "error", err, "scenario", id, "role", role)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to retrieve scenario")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, merged)
}
