package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jwebster45206/career-engine/pkg/mirror"
	"github.com/jwebster45206/career-engine/pkg/narrative"
	"github.com/jwebster45206/career-engine/pkg/session"
	"github.com/muesli/reflow/wordwrap"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	narrativeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86"))

	actionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	meterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// ConsoleUI is the BubbleTea model that runs the UI.
type ConsoleUI struct {
	config  *ConsoleConfig
	client  *http.Client
	session *session.PlayerSession
	scene   string

	viewport viewport.Model
	ready    bool
	width    int
	height   int

	listing        *ActionListing
	selectedAction int
	log            []string
	loading        bool
	err            error
	summary        *mirror.Summary
	copied         bool
}

type actionsLoadedMsg struct {
	listing *ActionListing
	err     error
}

type actionResultMsg struct {
	result *ActionResponse
	err    error
}

type eventsMsg struct {
	events []session.EventQueueEntry
	err    error
}

type mirrorMsg struct {
	summary *mirror.Summary
	err     error
}

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client, s *session.PlayerSession, scene string) *ConsoleUI {
	return &ConsoleUI{
		config:  cfg,
		client:  client,
		session: s,
		scene:   scene,
		loading: true,
		log: []string{
			titleStyle.Render("Career Engine") + "  " + hintStyle.Render("session "+s.ID.String()),
		},
	}
}

func (ui *ConsoleUI) Init() tea.Cmd {
	return ui.loadActions()
}

func (ui *ConsoleUI) loadActions() tea.Cmd {
	return func() tea.Msg {
		listing, err := getActions(ui.client, ui.config.APIBaseURL, ui.session.ID, ui.scene)
		return actionsLoadedMsg{listing: listing, err: err}
	}
}

func (ui *ConsoleUI) submit(actionID string) tea.Cmd {
	return func() tea.Msg {
		result, err := submitAction(ui.client, ui.config.APIBaseURL, ui.session.ID, ui.scene, actionID)
		return actionResultMsg{result: result, err: err}
	}
}

func (ui *ConsoleUI) pollEvents() tea.Cmd {
	return func() tea.Msg {
		events, err := getEvents(ui.client, ui.config.APIBaseURL, ui.session.ID)
		return eventsMsg{events: events, err: err}
	}
}

func (ui *ConsoleUI) loadMirror() tea.Cmd {
	return func() tea.Msg {
		summary, err := getMirror(ui.client, ui.config.APIBaseURL, ui.session.ID)
		return mirrorMsg{summary: summary, err: err}
	}
}

func (ui *ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		ui.width = msg.Width
		ui.height = msg.Height
		vpHeight := msg.Height - 14
		if vpHeight < 4 {
			vpHeight = 4
		}
		if !ui.ready {
			ui.viewport = viewport.New(msg.Width-4, vpHeight)
			ui.ready = true
		} else {
			ui.viewport.Width = msg.Width - 4
			ui.viewport.Height = vpHeight
		}
		ui.refreshViewport()
		return ui, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return ui, tea.Quit
		case "up", "k":
			if ui.listing != nil && ui.selectedAction > 0 {
				ui.selectedAction--
			}
		case "down", "j":
			if ui.listing != nil && ui.selectedAction < len(ui.listing.Actions)-1 {
				ui.selectedAction++
			}
		case "enter":
			if ui.listing != nil && !ui.loading && len(ui.listing.Actions) > 0 {
				ui.loading = true
				ui.err = nil
				action := ui.listing.Actions[ui.selectedAction]
				return ui, ui.submit(action.ID)
			}
		case "e":
			return ui, ui.pollEvents()
		case "m":
			return ui, ui.loadMirror()
		case "c":
			if err := clipboard.WriteAll(ui.session.ID.String()); err == nil {
				ui.copied = true
			}
		}

	case actionsLoadedMsg:
		ui.loading = false
		if msg.err != nil {
			ui.err = msg.err
			return ui, nil
		}
		ui.listing = msg.listing
		ui.selectedAction = 0
		if !msg.listing.EntryAllowed {
			ui.log = append(ui.log, errorStyle.Render("This scenario is gated by your current state."))
		}
		ui.log = append(ui.log, titleStyle.Render(msg.listing.Title))
		ui.refreshViewport()
		return ui, nil

	case actionResultMsg:
		ui.loading = false
		if msg.err != nil {
			ui.err = msg.err
			return ui, nil
		}
		ui.session = msg.result.Session
		ui.log = append(ui.log, narrativeStyle.Render(msg.result.Narrative))
		ui.refreshViewport()
		// The engine completed the scene; pick up any now-due events.
		return ui, ui.pollEvents()

	case eventsMsg:
		if msg.err != nil {
			ui.err = msg.err
			return ui, nil
		}
		for _, ev := range msg.events {
			ui.log = append(ui.log, meterStyle.Render(
				fmt.Sprintf("[%s] %s", ev.Type, describeEvent(ev))))
		}
		ui.refreshViewport()
		return ui, nil

	case mirrorMsg:
		if msg.err != nil {
			ui.err = msg.err
			return ui, nil
		}
		ui.summary = msg.summary
		ui.log = append(ui.log, renderSummary(msg.summary))
		ui.refreshViewport()
		return ui, nil
	}

	var cmd tea.Cmd
	ui.viewport, cmd = ui.viewport.Update(msg)
	return ui, cmd
}

func describeEvent(ev session.EventQueueEntry) string {
	if ev.Payload != nil {
		if txt, ok := ev.Payload["text"].(string); ok {
			return txt
		}
	}
	return "a delayed consequence catches up with you (" + ev.OriginScene + ")"
}

func renderSummary(sum *mirror.Summary) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Mirror") + "\n")
	b.WriteString(fmt.Sprintf("Run %d, %d turns, feeling %s\n", sum.RunNumber, sum.TurnsTaken, sum.FinalEmotion))
	for _, m := range sum.AxisMovements {
		b.WriteString(fmt.Sprintf("  %-20s %+.2f\n", m.Label, m.Movement))
	}
	if sum.ClosestAlly != "" {
		b.WriteString("Closest ally: " + sum.ClosestAlly + "\n")
	}
	return b.String()
}

func (ui *ConsoleUI) refreshViewport() {
	if !ui.ready {
		return
	}
	content := wordwrap.String(strings.Join(ui.log, "\n\n"), ui.viewport.Width)
	ui.viewport.SetContent(content)
	ui.viewport.GotoBottom()
}

func (ui *ConsoleUI) View() string {
	if !ui.ready {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(ui.viewport.View())
	b.WriteString("\n\n")
	b.WriteString(ui.renderMeters())
	b.WriteString("\n")
	b.WriteString(ui.renderActions())
	b.WriteString("\n")

	if ui.err != nil {
		b.WriteString(errorStyle.Render("Error: "+ui.err.Error()) + "\n")
	}
	hint := "enter: choose  ·  e: events  ·  m: mirror  ·  c: copy session id  ·  q: quit"
	if ui.copied {
		hint += "  (copied)"
	}
	b.WriteString(hintStyle.Render(hint))
	return b.String()
}

func (ui *ConsoleUI) renderMeters() string {
	var parts []string
	for _, axis := range session.AxisNames {
		v := ui.session.State.Axes[axis]
		parts = append(parts, fmt.Sprintf("%s %s", narrative.DisplayName(axis), meterBar(v)))
	}
	mood := "mood: " + string(ui.session.State.EmotionalState)
	return meterStyle.Render(strings.Join(parts, "  ") + "  " + mood)
}

func meterBar(v float64) string {
	filled := int(v*10 + 0.5)
	if filled > 10 {
		filled = 10
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", 10-filled) + "]"
}

func (ui *ConsoleUI) renderActions() string {
	if ui.loading {
		return hintStyle.Render("...")
	}
	if ui.listing == nil || len(ui.listing.Actions) == 0 {
		return hintStyle.Render("No actions available.")
	}
	var b strings.Builder
	for i, a := range ui.listing.Actions {
		line := a.Label
		if a.Description != "" {
			line += hintStyle.Render("  " + a.Description)
		}
		if i == ui.selectedAction {
			b.WriteString(selectedStyle.Render("> "+line) + "\n")
		} else {
			b.WriteString(actionStyle.Render("  "+line) + "\n")
		}
	}
	return b.String()
}
