package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/jwebster45206/career-engine/pkg/session"
)

type ConsoleConfig struct {
	APIBaseURL string
	Timeout    time.Duration
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func main() {
	cfg := &ConsoleConfig{
		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:8080"),
		Timeout:    30 * time.Second,
	}

	client := &http.Client{
		Timeout: cfg.Timeout,
	}

	if !testConnection(client, cfg.APIBaseURL) {
		fmt.Fprintf(os.Stderr, "Could not connect to API. Please ensure the API is running.\nTry: docker-compose up -d\n")
		os.Exit(1)
	}

	// Resume an existing session or start fresh.
	var s *session.PlayerSession
	if resumeID := os.Getenv("SESSION_ID"); resumeID != "" {
		id, err := uuid.Parse(resumeID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid SESSION_ID: %v\n", err)
			os.Exit(1)
		}
		s, err = getSession(client, cfg.APIBaseURL, id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to resume session: %v\n", err)
			os.Exit(1)
		}
	} else {
		role := chooseRole()
		var err error
		s, err = createSession(client, cfg.APIBaseURL, role)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create session: %v\n", err)
			os.Exit(1)
		}
	}

	scene := s.CurrentScene
	if scene == "" {
		scene = getEnv("OPENING_SCENE", "ch1_setup_background")
	}

	p := tea.NewProgram(NewConsoleUI(cfg, client, s, scene), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

var roles = []session.Role{
	session.RoleAnalyst,
	session.RoleEngineer,
	session.RoleDesigner,
	session.RoleManager,
}

func chooseRole() session.Role {
	fmt.Println("Choose your track (or press enter for none):")
	for i, r := range roles {
		fmt.Printf("  %d - %s\n", i+1, r)
	}
	fmt.Print("\nSelect a role by number: ")

	var input string
	_, _ = fmt.Scanln(&input)
	input = strings.TrimSpace(input)
	if input == "" {
		return ""
	}
	var choice int
	if _, err := fmt.Sscanf(input, "%d", &choice); err != nil || choice < 1 || choice > len(roles) {
		fmt.Println("Unrecognized choice, continuing without a role.")
		return ""
	}
	return roles[choice-1]
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
