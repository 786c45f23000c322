package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// HelpModel is the help screen model
type HelpModel struct{}

// NewHelpModel creates a new help model
func NewHelpModel() HelpModel {
	return HelpModel{}
}

// Init initializes the help screen
func (m HelpModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m HelpModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m, nil
}

// View renders the help screen
func (m HelpModel) View() string {
	var sections []string

	title := cardTitleStyle.Render("Keyboard Shortcuts")
	sections = append(sections, title)

	// Navigation section
	navSection := m.renderSection("Navigation", []keyHelp{
		{"1", "Activities list"},
		{"2 or s", "Sync screen"},
		{"?", "Help (this screen)"},
		{"q", "Quit"},
		{"esc", "Back / close help"},
	})
	sections = append(sections, navSection)

	// Activities keys
	actSection := m.renderSection("Activities List", []keyHelp{
		{"j / down", "Move cursor down"},
		{"k / up", "Move cursor up"},
		{"pgdn", "Next page"},
		{"pgup", "Previous page"},
		{"enter", "View laps"},
		{"r", "Refresh list"},
	})
	sections = append(sections, actSection)

	// Detail keys
	detailSection := m.renderSection("Activity Detail", []keyHelp{
		{"j/k or arrows", "Scroll"},
		{"r", "Refresh"},
		{"esc", "Back to list"},
	})
	sections = append(sections, detailSection)

	// Sync keys
	syncSection := m.renderSection("Sync Screen", []keyHelp{
		{"s / enter", "Start sync"},
	})
	sections = append(sections, syncSection)

	// Lap source explanation
	sourcesSection := m.renderLapSourcesHelp()
	sections = append(sections, sourcesSection)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

type keyHelp struct {
	key  string
	desc string
}

func (m HelpModel) renderSection(title string, keys []keyHelp) string {
	var lines []string

	lines = append(lines, "")
	lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#10B981")).Render(title))

	for _, k := range keys {
		lines = append(lines, "  "+RenderKeyHelp(k.key, k.desc))
	}

	return strings.Join(lines, "\n")
}

func (m HelpModel) renderLapSourcesHelp() string {
	var lines []string

	lines = append(lines, "")
	lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#10B981")).Render("Lap Sources"))
	lines = append(lines, "")

	sources := []struct {
		name string
		desc string
	}{
		{"laps", "Recorded lap splits from the Strava laps endpoint."},
		{"streams", "Laps cut from the distance stream at a fixed interval."},
		{"activity", "A single lap built from whole-activity totals."},
		{"file", "Laps parsed from an imported TCX or FIT file."},
	}

	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	for _, source := range sources {
		lines = append(lines, "  "+helpKeyStyle.Render(source.name))
		lines = append(lines, "  "+mutedStyle.Render(source.desc))
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}
