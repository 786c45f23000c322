package tui

import (
	"fmt"

	"runsplits/internal/report"
	"runsplits/internal/service"
	"runsplits/internal/store"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ActivitiesModel is the activities list screen model
type ActivitiesModel struct {
	queryService *service.QueryService
	activities   []store.Activity
	cursor       int
	offset       int
	total        int
	pageSize     int
	loading      bool
	err          error
}

// NewActivitiesModel creates a new activities model
func NewActivitiesModel(qs *service.QueryService) ActivitiesModel {
	return ActivitiesModel{
		queryService: qs,
		pageSize:     15,
		loading:      true,
	}
}

// Init initializes the activities screen
func (m ActivitiesModel) Init() tea.Cmd {
	return m.loadPage
}

type activitiesLoadedMsg struct {
	activities []store.Activity
	total      int
	err        error
}

func (m ActivitiesModel) loadPage() tea.Msg {
	page, err := m.queryService.GetActivityPage(m.pageSize, m.offset)
	if err != nil {
		return activitiesLoadedMsg{err: err}
	}

	return activitiesLoadedMsg{activities: page.Activities, total: page.TotalCount}
}

// OpenActivityDetailMsg asks the app to show one activity's laps
type OpenActivityDetailMsg struct {
	ActivityID int64
}

// Update handles messages
func (m ActivitiesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case activitiesLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.activities = msg.activities
		m.total = msg.total
		if m.cursor >= len(m.activities) && len(m.activities) > 0 {
			m.cursor = len(m.activities) - 1
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			} else if m.offset > 0 {
				// Go to previous page
				m.offset -= m.pageSize
				m.cursor = m.pageSize - 1
				m.loading = true
				return m, m.loadPage
			}
		case "down", "j":
			if m.cursor < len(m.activities)-1 {
				m.cursor++
			} else if m.offset+len(m.activities) < m.total {
				// Go to next page
				m.offset += m.pageSize
				m.cursor = 0
				m.loading = true
				return m, m.loadPage
			}
		case "pgup":
			if m.offset > 0 {
				m.offset -= m.pageSize
				if m.offset < 0 {
					m.offset = 0
				}
				m.cursor = 0
				m.loading = true
				return m, m.loadPage
			}
		case "pgdown":
			if m.offset+m.pageSize < m.total {
				m.offset += m.pageSize
				m.cursor = 0
				m.loading = true
				return m, m.loadPage
			}
		case "r":
			m.loading = true
			return m, m.loadPage
		case "enter":
			if len(m.activities) > 0 && m.cursor < len(m.activities) {
				activityID := m.activities[m.cursor].ID
				return m, func() tea.Msg {
					return OpenActivityDetailMsg{ActivityID: activityID}
				}
			}
		}
	}
	return m, nil
}

// View renders the activities list
func (m ActivitiesModel) View() string {
	if m.loading {
		return "\n  Loading activities..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if len(m.activities) == 0 {
		return "\n  No activities found. Press 's' to sync with Strava or import lap files."
	}

	var sections []string

	// Title with pagination info
	startNum := m.offset + 1
	endNum := m.offset + len(m.activities)
	title := cardTitleStyle.Render(fmt.Sprintf("Activities (%d-%d of %d)", startNum, endNum, m.total))
	sections = append(sections, title)

	// Header
	header := tableHeaderStyle.Render(fmt.Sprintf("   %-10s  %-22s  %-6s  %9s  %6s  %6s  %4s  %-8s",
		"Date", "Name", "Source", "Distance", "Time", "Pace", "Laps", "Report"))
	sections = append(sections, header)

	// Rows
	for i, a := range m.activities {
		date := "-"
		if !a.StartDate.IsZero() {
			date = a.StartDate.Format("Jan 02")
		}

		pace := "-"
		if a.Distance > 0 && a.ElapsedTime > 0 {
			pace = report.PaceFromDistanceTime(a.Distance, a.ElapsedTime)
		}

		// Report column shows which lap source fed the export
		status := "pending"
		if a.ExportedAt != nil {
			status = a.LapSource
		}

		// Cursor indicator
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}

		row := fmt.Sprintf("%s%-10s  %-22s  %-6s  %6.2f km  %6s  %6s  %4d  %-8s",
			cursor,
			date,
			truncateName(a.Name, 22),
			a.Source,
			a.Distance/1000,
			formatDuration(int(a.ElapsedTime)),
			pace,
			a.LapCount,
			status,
		)

		if i == m.cursor {
			sections = append(sections, tableSelectedStyle.Render(row))
		} else {
			sections = append(sections, tableRowStyle.Render(row))
		}
	}

	// Help
	help := statusStyle.Render("\n  enter: view laps  j/k: navigate  pgup/pgdn: page  r: refresh")
	sections = append(sections, help)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func formatDuration(seconds int) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

func truncateName(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
