package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/tally/internal/duration"
	"github.com/sadopc/tally/internal/export"
	"github.com/sadopc/tally/internal/tracker"
)

var exportFormats = []string{"csv", "json"}

// App is the root Bubble Tea model.
type App struct {
	tr     *tracker.Tracker
	ticker ticker
	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	dashboard dashboardModel
	reports   reportsModel
	projects  projectsModel

	help      help.Model
	status    string
	statusErr bool
}

// NewApp builds the UI over tr. The running clock redraws every
// tickInterval.
func NewApp(tr *tracker.Tracker, tickInterval time.Duration) App {
	applyTheme(tr.Theme())

	h := help.New()
	h.ShowAll = false

	return App{
		tr:         tr,
		ticker:     newTicker(tickInterval),
		activeView: viewTimer,
		dashboard:  newDashboardModel(tr),
		reports:    newReportsModel(tr),
		projects:   newProjectsModel(tr),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	// A timer restored from the last session keeps ticking. Init cannot
	// bump the generation on its copy, so it schedules under the current one.
	if a.tr.Running() != nil {
		return a.ticker.schedule()
	}
	return nil
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.dashboard.setSize(a.width, contentHeight)
		a.reports.setSize(a.width, contentHeight)
		a.projects.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// A view with a form or text field open gets every key.
		if a.capturing() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Theme):
			applyTheme(a.tr.ToggleTheme())
			return a, nil
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Tab1):
			return a.switchView(viewTimer), nil
		case key.Matches(msg, keys.Tab2):
			return a.switchView(viewSummary), nil
		case key.Matches(msg, keys.Tab3):
			return a.switchView(viewProjects), nil
		case key.Matches(msg, keys.Tab):
			return a.switchView((a.activeView + 1) % viewState(len(viewNames))), nil
		}

	case tickMsg:
		if !a.ticker.current(msg) || a.tr.Running() == nil {
			return a, nil
		}
		return a, a.ticker.schedule()

	case timerStartedMsg:
		a.setStatus("Timer started on "+msg.project, false)
		return a, a.ticker.restart()

	case timerStoppedMsg:
		a.ticker.stop()
		if msg.entry == nil {
			a.setStatus("Timer discarded (under a second)", false)
		} else {
			a.setStatus(fmt.Sprintf("Logged %s on %s", duration.Format(msg.entry.Duration), msg.entry.Project), false)
		}
		a.refreshViews()
		return a, nil

	case statusMsg:
		a.setStatus(msg.text, msg.isError)
		// Views change data before reporting it.
		a.refreshViews()
		return a, nil

	case exportDoneMsg:
		a.setStatus("Exported to "+msg.path, false)
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a *App) setStatus(text string, isError bool) {
	a.status = text
	a.statusErr = isError
}

func (a App) switchView(v viewState) App {
	a.activeView = v
	a.refreshViews()
	return a
}

func (a *App) refreshViews() {
	a.dashboard.refresh()
	a.reports.refresh()
	a.projects.refresh()
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewTimer:
		a.dashboard, cmd = a.dashboard.update(msg)
	case viewSummary:
		a.reports, cmd = a.reports.update(msg)
	case viewProjects:
		a.projects, cmd = a.projects.update(msg)
	}
	return a, cmd
}

func (a App) capturing() bool {
	switch a.activeView {
	case viewTimer:
		return a.dashboard.capturing()
	case viewSummary:
		return a.reports.capturing()
	case viewProjects:
		return a.projects.capturing()
	}
	return false
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewTimer:
		content = a.dashboard.view()
	case viewSummary:
		content = a.reports.view()
	case viewProjects:
		content = a.projects.view()
	}
	if a.exportPicking {
		content = a.renderExportPicker()
	}

	contentHeight := max(a.height-lipgloss.Height(header)-lipgloss.Height(footer), 1)
	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}
	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("tally")
	user := mutedStyle.Render(" " + a.tr.Session().UserID)
	gap := max(a.width-lipgloss.Width(title)-lipgloss.Width(user)-lipgloss.Width(tabRow)-4, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, user, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	left := footerStyle.Render(a.help.View(keys))

	status := ""
	if a.status != "" {
		if a.statusErr {
			status = errorStyle.Render(" " + a.status)
		} else {
			status = mutedStyle.Render(" " + a.status)
		}
	}

	timerInfo := ""
	if r := a.tr.Running(); r != nil {
		timerInfo = successStyle.Render(" ● "+formatDuration(a.tr.Elapsed())) + mutedStyle.Render(" "+r.Project)
	}
	if n := len(a.tr.Failures()); n > 0 {
		timerInfo += warningStyle.Render(fmt.Sprintf(" %d unsaved", n))
	}

	right := timerInfo + status
	gap := max(a.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	var rows []string
	rows = append(rows, titleStyle.Render("Export Format"), "")
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "", mutedStyle.Render("  enter: export all entries  esc: cancel"))

	return activePanelStyle.Width(a.width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(exportFormats[a.exportCursor])
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format string) tea.Cmd {
	entries := a.tr.Entries()
	return func() tea.Msg {
		path, err := export.DefaultPath(format, time.Now())
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		if format == "json" {
			err = export.ToJSON(entries, path)
		} else {
			err = export.ToCSV(entries, path)
		}
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		return exportDoneMsg{path: path}
	}
}
