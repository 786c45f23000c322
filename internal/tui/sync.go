package tui

import (
	"context"
	"fmt"
	"strings"

	"runsplits/internal/service"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SyncModel is the sync screen model
type SyncModel struct {
	syncService *service.SyncService
	syncing     bool
	result      *service.SyncResult
	err         error
	done        bool
	progress    service.SyncProgress
	progressCh  chan service.SyncProgress
}

// NewSyncModel creates a new sync model
func NewSyncModel(ss *service.SyncService) SyncModel {
	return SyncModel{
		syncService: ss,
	}
}

// Init initializes the sync screen
func (m SyncModel) Init() tea.Cmd {
	return nil
}

// SyncDoneMsg is sent when sync finishes
type SyncDoneMsg struct {
	Result *service.SyncResult
	Err    error
}

type syncProgressMsg service.SyncProgress

type syncStreamClosedMsg struct{}

// startSync runs the sync in the background, streaming progress into ch
func (m SyncModel) startSync(ch chan service.SyncProgress) tea.Cmd {
	return func() tea.Msg {
		result, err := m.syncService.SyncAll(context.Background(), ch)
		return SyncDoneMsg{Result: result, Err: err}
	}
}

// waitForProgress relays one progress update from the sync goroutine
func waitForProgress(ch <-chan service.SyncProgress) tea.Cmd {
	return func() tea.Msg {
		p, ok := <-ch
		if !ok {
			return syncStreamClosedMsg{}
		}
		return syncProgressMsg(p)
	}
}

// Update handles messages
func (m SyncModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case SyncDoneMsg:
		m.syncing = false
		m.done = true
		m.result = msg.Result
		m.err = msg.Err
		return m, func() tea.Msg { return SyncCompleteMsg{} }

	case syncProgressMsg:
		m.progress = service.SyncProgress(msg)
		return m, waitForProgress(m.progressCh)

	case syncStreamClosedMsg:
		return m, nil

	case tea.KeyMsg:
		if !m.syncing {
			switch msg.String() {
			case "enter", "s":
				m.syncing = true
				m.done = false
				m.err = nil
				m.result = nil
				m.progress = service.SyncProgress{}
				m.progressCh = make(chan service.SyncProgress, 8)
				return m, tea.Batch(m.startSync(m.progressCh), waitForProgress(m.progressCh))
			}
		}
	}
	return m, nil
}

// View renders the sync screen
func (m SyncModel) View() string {
	var sections []string

	title := cardTitleStyle.Render("Strava Sync")
	sections = append(sections, title)

	if m.err != nil {
		sections = append(sections, errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err)))
		sections = append(sections, "\n"+statusStyle.Render("  Press 's' or Enter to retry"))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	if m.done && !m.syncing {
		sections = append(sections, successStyle.Render("\n  Sync complete!"))
		sections = append(sections, m.renderSummary())
		sections = append(sections, "\n"+statusStyle.Render("  Press '1' to view activities"))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	if m.syncing {
		sections = append(sections, m.renderProgress())
	} else {
		sections = append(sections, m.renderStartPrompt())
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m SyncModel) renderStartPrompt() string {
	var lines []string

	lines = append(lines, "")
	lines = append(lines, "  This will sync your Strava activities:")
	lines = append(lines, "")
	lines = append(lines, "  1. Fetch new run activities from Strava")
	lines = append(lines, "  2. Resolve laps (recorded laps, streams or activity totals)")
	lines = append(lines, "  3. Write a CSV report per activity")
	lines = append(lines, "")

	// Show rate limit status
	short, daily := m.syncService.RateLimitStatus()
	lines = append(lines, statusStyle.Render(fmt.Sprintf("  API limits: %d/100 (15min), %d/1000 (daily)", short, daily)))
	lines = append(lines, "")
	lines = append(lines, statusStyle.Render("  Press 's' or Enter to start sync"))

	return strings.Join(lines, "\n")
}

func (m SyncModel) renderProgress() string {
	var lines []string

	lines = append(lines, "")
	lines = append(lines, "  Syncing with Strava...")
	lines = append(lines, "")

	switch m.progress.Phase {
	case "activities":
		lines = append(lines, fmt.Sprintf("  Fetching activities: %d runs stored, %d fetched", m.progress.Completed, m.progress.Total))
	case "reports":
		lines = append(lines, fmt.Sprintf("  Writing reports: %d of %d", m.progress.Completed, m.progress.Total))
		if m.progress.CurrentActivity != "" {
			lines = append(lines, statusStyle.Render("  "+m.progress.CurrentActivity))
		}
	default:
		lines = append(lines, "  Starting...")
	}

	return strings.Join(lines, "\n")
}

func (m SyncModel) renderSummary() string {
	var lines []string

	if m.result == nil {
		return ""
	}

	r := m.result
	lines = append(lines, "")

	if r.ActivitiesStored > 0 {
		lines = append(lines, successStyle.Render(fmt.Sprintf("  %d activities synced", r.ActivitiesStored)))
	} else {
		lines = append(lines, statusStyle.Render("  No new activities"))
	}

	if r.ReportsExported > 0 {
		lines = append(lines, successStyle.Render(fmt.Sprintf("  %d reports exported", r.ReportsExported)))
	}

	if r.Skipped > 0 {
		lines = append(lines, warningStyle.Render(fmt.Sprintf("  %d skipped (no lap data)", r.Skipped)))
	}

	if len(r.Errors) > 0 {
		lines = append(lines, "")
		lines = append(lines, warningStyle.Render(fmt.Sprintf("  %d errors occurred", len(r.Errors))))
	}

	return strings.Join(lines, "\n")
}
