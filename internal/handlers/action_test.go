package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/career-engine/internal/storage"
	"github.com/jwebster45206/career-engine/pkg/content"
	"github.com/jwebster45206/career-engine/pkg/session"
)

func submitTestAction(t *testing.T, handler *SessionHandler, id, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPatch, "/api/session/"+id+"/action", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestActionPipeline(t *testing.T) {
	handler, store := newTestHandler()
	s := session.New("p1", "", "", "")
	if err := store.SaveSession(t.Context(), s); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	rr := submitTestAction(t, handler, s.ID.String(),
		`{"scenarioId":"ch1_first_standup","actionId":"speak_up"}`)
	require.Equal(t, http.StatusOK, rr.Code, "response body: %s", rr.Body.String())

	var resp ActionResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "The room goes quiet, then Priya nods.", resp.Narrative)
	assert.Equal(t, "soft_chime", resp.AudioCue)

	got := resp.Session
	assert.Equal(t, 1, got.TurnCounter)
	assert.True(t, got.SceneCompleted, "any applied action completes the scene")
	assert.Equal(t, "ch1_first_standup", got.CurrentScene)
	require.Len(t, got.ActionHistory, 1)
	assert.Equal(t, "speak_up", got.ActionHistory[0].Action)
	assert.InDelta(t, 0.6, got.State.Axes[session.AxisConfidence], 1e-9)
	for name, v := range got.State.Axes {
		assert.GreaterOrEqual(t, v, 0.0, "axis %s below bounds", name)
		assert.LessOrEqual(t, v, 1.0, "axis %s above bounds", name)
	}
	require.Len(t, got.EventQueue, 1)
	assert.Equal(t, 2, got.EventQueue[0].DueTurn, "delay-1 event scheduled off the post-increment turn")
	assert.Equal(t, 10.0, got.NPCs["priya"].TrustLevel)

	// The response matches what was persisted.
	persisted, err := store.LoadSession(t.Context(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, persisted.TurnCounter)
	assert.Len(t, persisted.ActionHistory, 1)
}

func TestActionUnknownScenario(t *testing.T) {
	handler, store := newTestHandler()
	s := session.New("p1", "", "", "")
	if err := store.SaveSession(t.Context(), s); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	rr := submitTestAction(t, handler, s.ID.String(),
		`{"scenarioId":"ch9_nowhere","actionId":"speak_up"}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rr.Code)
	}
}

func TestActionUnknownAction(t *testing.T) {
	handler, store := newTestHandler()
	s := session.New("p1", "", "", "")
	if err := store.SaveSession(t.Context(), s); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	rr := submitTestAction(t, handler, s.ID.String(),
		`{"scenarioId":"ch1_first_standup","actionId":"do_a_flip"}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rr.Code)
	}

	// A failed resolution must leave the session untouched.
	persisted, err := store.LoadSession(t.Context(), s.ID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if persisted.TurnCounter != 0 || len(persisted.ActionHistory) != 0 {
		t.Error("failed action mutated persisted state")
	}
}

func TestActionMissingFields(t *testing.T) {
	handler, store := newTestHandler()
	s := session.New("p1", "", "", "")
	if err := store.SaveSession(t.Context(), s); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	rr := submitTestAction(t, handler, s.ID.String(), `{"scenarioId":"ch1_first_standup"}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing actionId, got %d", rr.Code)
	}
}

func TestActionContentIntegrityError(t *testing.T) {
	// Content with a rule pointing at a missing feedback variant. LoadDir
	// would refuse it; AddTemplate bypasses validation to exercise the
	// resolver's fail-loud path.
	cs := content.NewStore()
	cs.AddTemplate(&content.ScenarioTemplate{
		ID:      "ch1_broken",
		Version: "1.0.0",
		Title:   "Broken",
		Actions: []content.Action{{ID: "act", Label: "Act"}},
		ConsequenceRules: []content.ConsequenceRule{
			{ActionID: "act", ImmediateFeedback: "no_such_variant"},
		},
		FeedbackVariants: []content.FeedbackVariant{{Key: "other", Text: "x"}},
	})
	store := storage.NewMockStore()
	s := session.New("p1", "", "", "")
	if err := store.SaveSession(t.Context(), s); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	handler := NewSessionHandler(store, cs, testLogger())

	rr := submitTestAction(t, handler, s.ID.String(),
		`{"scenarioId":"ch1_broken","actionId":"act"}`)
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 for content integrity error, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Content integrity error") {
		t.Errorf("expected content integrity message, got %s", rr.Body.String())
	}
}
