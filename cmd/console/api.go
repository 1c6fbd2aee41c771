package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/jwebster45206/career-engine/pkg/content"
	"github.com/jwebster45206/career-engine/pkg/mirror"
	"github.com/jwebster45206/career-engine/pkg/session"
)

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	return resp.StatusCode == http.StatusOK
}

func decodeResponse(resp *http.Response, out any) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil {
			return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return fmt.Errorf("%s", errorResp.Error)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func createSession(client *http.Client, baseURL string, role session.Role) (*session.PlayerSession, error) {
	reqBody, err := json.Marshal(map[string]string{"role": string(role)})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(baseURL+"/api/session", "application/json", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var s session.PlayerSession
	if err := decodeResponse(resp, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func getSession(client *http.Client, baseURL string, id uuid.UUID) (*session.PlayerSession, error) {
	resp, err := client.Get(fmt.Sprintf("%s/api/session/%s", baseURL, id))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var s session.PlayerSession
	if err := decodeResponse(resp, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ActionListing mirrors the API's gated action view.
type ActionListing struct {
	ScenarioID   string           `json:"scenarioId"`
	Title        string           `json:"title"`
	EntryAllowed bool             `json:"entryAllowed"`
	Actions      []content.Action `json:"actions"`
}

func getActions(client *http.Client, baseURL string, id uuid.UUID, scenarioID string) (*ActionListing, error) {
	resp, err := client.Get(fmt.Sprintf("%s/api/session/%s/actions?scenarioId=%s", baseURL, id, scenarioID))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var listing ActionListing
	if err := decodeResponse(resp, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

// ActionResponse mirrors the API's action result.
type ActionResponse struct {
	Session   *session.PlayerSession `json:"session"`
	Narrative string                 `json:"narrative"`
	AudioCue  string                 `json:"audioCue,omitempty"`
}

func submitAction(client *http.Client, baseURL string, id uuid.UUID, scenarioID, actionID string) (*ActionResponse, error) {
	reqBody, err := json.Marshal(map[string]string{
		"scenarioId": scenarioID,
		"actionId":   actionID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPatch,
		fmt.Sprintf("%s/api/session/%s/action", baseURL, id), bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var ar ActionResponse
	if err := decodeResponse(resp, &ar); err != nil {
		return nil, err
	}
	return &ar, nil
}

// EventsResponse mirrors the API's due-events view.
type EventsResponse struct {
	Events []session.EventQueueEntry `json:"events"`
}

func getEvents(client *http.Client, baseURL string, id uuid.UUID) ([]session.EventQueueEntry, error) {
	resp, err := client.Get(fmt.Sprintf("%s/api/session/%s/events", baseURL, id))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var er EventsResponse
	if err := decodeResponse(resp, &er); err != nil {
		return nil, err
	}
	return er.Events, nil
}

func getMirror(client *http.Client, baseURL string, id uuid.UUID) (*mirror.Summary, error) {
	resp, err := client.Get(fmt.Sprintf("%s/api/session/%s/mirror", baseURL, id))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var sum mirror.Summary
	if err := decodeResponse(resp, &sum); err != nil {
		return nil, err
	}
	return &sum, nil
}
