// Package tui renders a live progress view for a plan: feature
// statuses, step counts and completion percentages, refreshed from the
// plan store on an interval.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/projector/internal/plan"
	"github.com/felixgeelhaar/projector/internal/store"
)

const refreshInterval = time.Second

// tickMsg triggers a reload from the store.
type tickMsg time.Time

// refreshMsg carries the freshly loaded plan.
type refreshMsg struct {
	plan *plan.Plan
	err  error
}

// Model is the Bubble Tea model for the watch view.
type Model struct {
	store  *store.PlanStore
	planID string

	plan     *plan.Plan
	err      error
	bar      progress.Model
	width    int
	height   int
	quitting bool
	styles   Styles
}

// Styles contains lipgloss styles for the watch view
type Styles struct {
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Completed lipgloss.Style
	Active    lipgloss.Style
	Pending   lipgloss.Style
	Blocked   lipgloss.Style
	Error     lipgloss.Style
	Muted     lipgloss.Style
	Border    lipgloss.Style
}

// DefaultStyles returns the default lipgloss styles
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63")).
			MarginBottom(1),
		Subtitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		Completed: lipgloss.NewStyle().
			Foreground(lipgloss.Color("46")),
		Active: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")),
		Pending: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		Blocked: lipgloss.NewStyle().
			Foreground(lipgloss.Color("226")),
		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")),
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(1, 2),
	}
}

// NewModel creates a watch model for the given plan.
func NewModel(planStore *store.PlanStore, planID string) Model {
	return Model{
		store:  planStore,
		planID: planID,
		bar:    progress.New(progress.WithDefaultGradient()),
		styles: DefaultStyles(),
	}
}

// Init starts the refresh loop (required by Bubble Tea)
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.load, tick())
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// load reads the plan from the store.
func (m Model) load() tea.Msg {
	p, err := m.store.Get(m.planID)
	return refreshMsg{plan: p, err: err}
}

// Update handles messages (required by Bubble Tea)
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = msg.Width - 12
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.load, tick())

	case refreshMsg:
		m.plan = msg.plan
		m.err = msg.err
		if msg.err == nil && msg.plan.IsComplete() {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	return m, nil
}
