package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jwebster45206/career-engine/pkg/session"
)

func seedSessionWithEvents(t *testing.T, handler *SessionHandler) *session.PlayerSession {
	t.Helper()
	s := session.New("p1", "", "", "")
	s.TurnCounter = 3
	s.EventQueue = []session.EventQueueEntry{
		{ID: "ev-due", Type: session.EventOpportunity, Status: session.EventPending, DueTurn: 2},
		{ID: "ev-future", Type: session.EventConsequence, Status: session.EventPending, DueTurn: 9},
		{ID: "ev-done", Type: session.EventConsequence, Status: session.EventApplied, DueTurn: 1},
	}
	if err := handler.store.SaveSession(t.Context(), s); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	return s
}

func TestEventsReadDoesNotConsume(t *testing.T) {
	handler, _ := newTestHandler()
	s := seedSessionWithEvents(t, handler)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/session/"+s.ID.String()+"/events", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
		}
		var resp EventsResponse
		if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		// Same answer on every read until an explicit ack.
		if len(resp.Events) != 1 || resp.Events[0].ID != "ev-due" {
			t.Errorf("read %d: expected only ev-due, got %+v", i, resp.Events)
		}
	}
}

func TestEventsEmptyListIsNotNull(t *testing.T) {
	handler, store := newTestHandler()
	s := session.New("p1", "", "", "")
	if err := store.SaveSession(t.Context(), s); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/session/"+s.ID.String()+"/events", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if !strings.Contains(rr.Body.String(), `"events":[]`) {
		t.Errorf("expected an empty array, got %s", rr.Body.String())
	}
}

func TestEventsAck(t *testing.T) {
	handler, _ := newTestHandler()
	s := seedSessionWithEvents(t, handler)

	req := httptest.NewRequest(http.MethodPost, "/api/session/"+s.ID.String()+"/events/ack",
		strings.NewReader(`{"eventIds":["ev-due"]}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var updated session.PlayerSession
	if err := json.NewDecoder(rr.Body).Decode(&updated); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !updated.AppliedEvents["ev-due"] {
		t.Error("expected ev-due in the applied set")
	}

	// Subsequent reads no longer deliver the acked event.
	req = httptest.NewRequest(http.MethodGet, "/api/session/"+s.ID.String()+"/events", nil)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	var resp EventsResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Events) != 0 {
		t.Errorf("expected no due events after ack, got %+v", resp.Events)
	}
}

func TestEventsAckEmptyBody(t *testing.T) {
	handler, _ := newTestHandler()
	s := seedSessionWithEvents(t, handler)

	req := httptest.NewRequest(http.MethodPost, "/api/session/"+s.ID.String()+"/events/ack",
		strings.NewReader(`{"eventIds":[]}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty ack, got %d", rr.Code)
	}
}
