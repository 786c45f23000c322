package tui

import (
	"runsplits/internal/service"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Screen identifiers
type Screen int

const (
	ScreenActivities Screen = iota
	ScreenActivityDetail
	ScreenSync
	ScreenHelp
)

// App is the root Bubble Tea model
type App struct {
	screen     Screen
	prevScreen Screen

	// Screen models
	activities ActivitiesModel
	detail     ActivityDetailModel
	syncScreen SyncModel
	help       HelpModel

	// Services
	queryService *service.QueryService
	syncService  *service.SyncService

	// Window dimensions
	width  int
	height int

	// Status message
	status string
}

// NewApp creates a new App with all dependencies
func NewApp(queryService *service.QueryService, syncService *service.SyncService) *App {
	return &App{
		screen:       ScreenActivities,
		queryService: queryService,
		syncService:  syncService,
		activities:   NewActivitiesModel(queryService),
		syncScreen:   NewSyncModel(syncService),
		help:         NewHelpModel(),
	}
}

// Init initializes the app
func (a *App) Init() tea.Cmd {
	return a.activities.Init()
}

// Update handles messages
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Global keybindings (unless in sync mode)
		if a.screen != ScreenSync || !a.syncScreen.syncing {
			switch msg.String() {
			case "q", "ctrl+c":
				return a, tea.Quit
			case "1":
				a.screen = ScreenActivities
				return a, a.activities.Init()
			case "2", "s":
				if a.screen != ScreenSync {
					a.screen = ScreenSync
					return a, a.syncScreen.Init()
				}
				// Let 's' fall through to sync screen when already there
			case "?":
				a.prevScreen = a.screen
				a.screen = ScreenHelp
				return a, nil
			case "esc":
				switch a.screen {
				case ScreenHelp:
					a.screen = a.prevScreen
					return a, nil
				case ScreenActivityDetail:
					a.screen = ScreenActivities
					return a, nil
				}
			}
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	case OpenActivityDetailMsg:
		a.detail = NewActivityDetailModel(a.queryService, msg.ActivityID, a.width, a.height)
		a.screen = ScreenActivityDetail
		return a, a.detail.Init()

	case SyncCompleteMsg:
		// Reset the activity list after sync
		a.activities = NewActivitiesModel(a.queryService)
	}

	// Delegate to current screen
	var cmd tea.Cmd
	switch a.screen {
	case ScreenActivities:
		var m tea.Model
		m, cmd = a.activities.Update(msg)
		a.activities = m.(ActivitiesModel)
	case ScreenActivityDetail:
		var m tea.Model
		m, cmd = a.detail.Update(msg)
		a.detail = m.(ActivityDetailModel)
	case ScreenSync:
		var m tea.Model
		m, cmd = a.syncScreen.Update(msg)
		a.syncScreen = m.(SyncModel)
	case ScreenHelp:
		var m tea.Model
		m, cmd = a.help.Update(msg)
		a.help = m.(HelpModel)
	}

	return a, cmd
}

// View renders the app
func (a *App) View() string {
	header := a.renderHeader()
	nav := a.renderNav()

	var content string
	switch a.screen {
	case ScreenActivities:
		content = a.activities.View()
	case ScreenActivityDetail:
		content = a.detail.View()
	case ScreenSync:
		content = a.syncScreen.View()
	case ScreenHelp:
		content = a.help.View()
	}

	footer := a.renderFooter()

	return lipgloss.JoinVertical(lipgloss.Left, header, nav, content, footer)
}

func (a *App) renderHeader() string {
	return headerStyle.Render("Runsplits Lap Report Exporter")
}

func (a *App) renderNav() string {
	items := []struct {
		key    string
		label  string
		screen Screen
	}{
		{"1", "Activities", ScreenActivities},
		{"2", "Sync", ScreenSync},
		{"?", "Help", ScreenHelp},
	}

	var nav string
	for i, item := range items {
		if i > 0 {
			nav += "  "
		}

		label := "[" + item.key + "] " + item.label
		if a.screen == item.screen {
			nav += navActiveStyle.Render(label)
		} else {
			nav += navInactiveStyle.Render(label)
		}
	}

	nav += "  " + navInactiveStyle.Render("[q] Quit")

	return navStyle.Render(nav)
}

func (a *App) renderFooter() string {
	if a.status != "" {
		return statusStyle.Render(a.status)
	}
	return ""
}

// SyncCompleteMsg is sent when sync finishes
type SyncCompleteMsg struct{}
