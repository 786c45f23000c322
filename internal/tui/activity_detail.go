package tui

import (
	"fmt"
	"strings"

	"runsplits/internal/report"
	"runsplits/internal/service"
	"runsplits/internal/store"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

// ActivityDetailModel is the activity detail screen model
type ActivityDetailModel struct {
	queryService *service.QueryService
	activityID   int64
	detail       *service.ActivityDetail
	viewport     viewport.Model
	loading      bool
	err          error
	width        int
	height       int
	ready        bool
}

// NewActivityDetailModel creates a new activity detail model
func NewActivityDetailModel(qs *service.QueryService, activityID int64, width, height int) ActivityDetailModel {
	m := ActivityDetailModel{
		queryService: qs,
		activityID:   activityID,
		loading:      true,
		width:        width,
		height:       height,
	}

	if width > 0 && height > 0 {
		m.viewport = viewport.New(width, height-6) // Reserve space for header/footer
		m.ready = true
	}

	return m
}

// Init initializes the activity detail screen
func (m ActivityDetailModel) Init() tea.Cmd {
	return m.loadDetail
}

type activityDetailLoadedMsg struct {
	detail *service.ActivityDetail
	err    error
}

func (m ActivityDetailModel) loadDetail() tea.Msg {
	detail, err := m.queryService.GetActivityDetail(m.activityID)
	if err != nil {
		return activityDetailLoadedMsg{err: err}
	}
	return activityDetailLoadedMsg{detail: detail}
}

// Update handles messages
func (m ActivityDetailModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case activityDetailLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.detail = msg.detail
		if m.ready {
			m.viewport.SetContent(m.renderContent())
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-6)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 6
		}
		if m.detail != nil {
			m.viewport.SetContent(m.renderContent())
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.loading = true
			return m, m.loadDetail
		}
	}

	// Handle viewport scrolling
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the activity detail screen
func (m ActivityDetailModel) View() string {
	if m.loading {
		return "\n  Loading activity details..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	// Footer with help
	footer := statusStyle.Render("  esc: back to list  j/k or arrows: scroll  r: refresh")

	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), footer)
}

func (m ActivityDetailModel) renderContent() string {
	if m.detail == nil {
		return "No data"
	}

	var sections []string

	// Activity header
	sections = append(sections, m.renderHeader())

	// Whole-activity totals
	sections = append(sections, m.renderSummary())

	// Lap table
	if len(m.detail.Laps) > 0 {
		sections = append(sections, m.renderLaps())
	} else {
		sections = append(sections, "  No laps recorded for this activity.\n")
	}

	// Per-lap charts
	if chart := m.renderPaceChart(); chart != "" {
		sections = append(sections, chart)
	}
	if chart := m.renderHRChart(); chart != "" {
		sections = append(sections, chart)
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m ActivityDetailModel) renderHeader() string {
	a := m.detail.Activity
	title := cardTitleStyle.Render(a.Name)

	date := "No recorded start time"
	if !a.StartDate.IsZero() {
		date = a.StartDate.Format("Monday, January 2, 2006 at 3:04 PM")
	}
	subtitle := lipgloss.NewStyle().Foreground(mutedColor).Render(date)

	pace := "-"
	if a.Distance > 0 && a.ElapsedTime > 0 {
		pace = report.PaceFromDistanceTime(a.Distance, a.ElapsedTime) + "/km"
	}
	stats := fmt.Sprintf("%.2f km  •  %s  •  %s", a.Distance/1000, formatDuration(int(a.ElapsedTime)), pace)
	statsLine := lipgloss.NewStyle().Foreground(textColor).Bold(true).Render(stats)

	return lipgloss.JoinVertical(lipgloss.Left, "", title, subtitle, statsLine, "")
}

func (m ActivityDetailModel) renderSummary() string {
	a := m.detail.Activity

	var lines []string

	lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(secondaryColor).Render("Summary"))

	lines = append(lines, "  "+RenderMetric("Elapsed time", report.FormatTime(a.ElapsedTime)))
	if a.MovingTime != nil {
		lines = append(lines, "  "+RenderMetric("Moving time", report.FormatTime(*a.MovingTime)))
	}
	if a.AverageHeartrate != nil {
		lines = append(lines, "  "+RenderMetric("Avg heart rate", fmt.Sprintf("%d bpm", *a.AverageHeartrate)))
	}
	if a.MaxHeartrate != nil {
		lines = append(lines, "  "+RenderMetric("Max heart rate", fmt.Sprintf("%d bpm", *a.MaxHeartrate)))
	}
	if a.Calories != nil {
		lines = append(lines, "  "+RenderMetric("Calories", fmt.Sprintf("%d", *a.Calories)))
	}
	if a.ElevationGain != nil {
		lines = append(lines, "  "+RenderMetric("Elevation gain", fmt.Sprintf("%d m", *a.ElevationGain)))
	}
	if a.ElevationLoss != nil {
		lines = append(lines, "  "+RenderMetric("Elevation loss", fmt.Sprintf("%d m", *a.ElevationLoss)))
	}
	if a.LapSource != "" {
		lines = append(lines, "  "+RenderMetric("Lap source", a.LapSource))
	}
	if a.ExportedAt != nil {
		lines = append(lines, "  "+RenderMetric("Report file", report.Filename(a.ID)))
		lines = append(lines, "  "+RenderMetric("Exported", a.ExportedAt.Format("2006-01-02 15:04")))
	} else {
		lines = append(lines, "  "+RenderMetric("Report file", "pending"))
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func (m ActivityDetailModel) renderLaps() string {
	var lines []string

	lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(secondaryColor).Render("Laps"))

	header := fmt.Sprintf("  %-4s  %9s  %9s  %6s  %6s  %6s  %5s", "Lap", "Distance", "Time", "Pace", "Avg HR", "Max HR", "Gain")
	lines = append(lines, lipgloss.NewStyle().Foreground(primaryColor).Render(header))

	fastest := fastestLap(m.detail.Laps)

	for i, lap := range m.detail.Laps {
		pace := lap.Pace
		if pace == "" {
			pace = "-"
		}

		avgHR := "-"
		if lap.AvgHeartrate != nil {
			avgHR = fmt.Sprintf("%d", *lap.AvgHeartrate)
		}

		maxHR := "-"
		if lap.MaxHeartrate != nil {
			maxHR = fmt.Sprintf("%d", *lap.MaxHeartrate)
		}

		gain := "-"
		if lap.ElevationGain != nil {
			gain = fmt.Sprintf("%dm", *lap.ElevationGain)
		}

		row := fmt.Sprintf("  %-4d  %6.2f km  %9s  %6s  %6s  %6s  %5s",
			lap.LapIndex+1,
			lap.DistanceMeters/1000,
			report.FormatTime(lap.TimeSeconds),
			pace,
			avgHR,
			maxHR,
			gain,
		)

		if i == fastest {
			lines = append(lines, lipgloss.NewStyle().Foreground(secondaryColor).Bold(true).Render(row))
		} else {
			lines = append(lines, row)
		}
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func (m ActivityDetailModel) renderPaceChart() string {
	var data []float64
	for _, lap := range m.detail.Laps {
		if lap.DistanceMeters > 0 && lap.TimeSeconds > 0 {
			data = append(data, lap.TimeSeconds/60/(lap.DistanceMeters/1000))
		}
	}

	if len(data) < 3 {
		return ""
	}

	var lines []string
	lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(secondaryColor).Render("Pace per Lap (min/km)"))
	lines = append(lines, asciigraph.Plot(data,
		asciigraph.Height(8),
		asciigraph.Width(50),
	))
	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func (m ActivityDetailModel) renderHRChart() string {
	var data []float64
	for _, lap := range m.detail.Laps {
		if lap.AvgHeartrate != nil {
			data = append(data, float64(*lap.AvgHeartrate))
		}
	}

	if len(data) < 3 {
		return ""
	}

	var lines []string
	lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(secondaryColor).Render("Heart Rate per Lap (bpm)"))
	lines = append(lines, asciigraph.Plot(data,
		asciigraph.Height(8),
		asciigraph.Width(50),
	))
	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

// fastestLap returns the index of the lap with the best speed, or -1
// when fewer than two laps have a distance
func fastestLap(laps []store.Lap) int {
	best := -1
	bestPace := 0.0
	counted := 0

	for i, lap := range laps {
		if lap.DistanceMeters <= 0 || lap.TimeSeconds <= 0 {
			continue
		}
		counted++
		pace := lap.TimeSeconds / lap.DistanceMeters
		if best == -1 || pace < bestPace {
			best = i
			bestPace = pace
		}
	}

	if counted < 2 {
		return -1
	}
	return best
}
