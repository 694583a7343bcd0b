package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/tally/internal/duration"
	"github.com/sadopc/tally/internal/store"
	"github.com/sadopc/tally/internal/tracker"
)

// dashboardModel is the timer view: the running clock, the quick-add
// stepper and the recent entries.
type dashboardModel struct {
	tr     *tracker.Tracker
	width  int
	height int

	label   textinput.Model
	entries []store.TimeEntry
	cursor  int

	// Project picker state
	picking      bool
	pickerCursor int

	// pending is the stepper value offered to the add form.
	pending int64

	form *entryForm
}

func newDashboardModel(tr *tracker.Tracker) dashboardModel {
	ti := textinput.New()
	ti.Placeholder = "What are you working on?"
	ti.CharLimit = 200
	ti.Prompt = "› "

	d := dashboardModel{tr: tr, label: ti}
	d.refresh()
	return d
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
	d.label.Width = max(w-12, 10)
}

func (d *dashboardModel) refresh() {
	d.entries = d.tr.DisplayEntries()
	if d.cursor >= len(d.entries) {
		d.cursor = max(0, len(d.entries)-1)
	}
}

// capturing reports whether the view wants every key for itself.
func (d dashboardModel) capturing() bool {
	return d.form != nil || d.label.Focused() || d.picking
}

func (d dashboardModel) selected() (store.TimeEntry, bool) {
	if d.cursor < 0 || d.cursor >= len(d.entries) {
		return store.TimeEntry{}, false
	}
	return d.entries[d.cursor], true
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	if d.form != nil {
		return d.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if d.label.Focused() {
			return d.updateLabel(msg)
		}
		if d.picking {
			return d.updatePicker(msg)
		}

		switch {
		case key.Matches(msg, keys.Start):
			return d.startTimer()
		case key.Matches(msg, keys.Stop):
			return d.stopTimer()
		case key.Matches(msg, keys.Label):
			return d, d.label.Focus()
		case key.Matches(msg, keys.Pick):
			if d.tr.Running() != nil {
				return d, statusCmd("Stop the timer to switch projects", true)
			}
			d.picking = true
			d.pickerCursor = max(0, indexOf(d.tr.Projects(), d.tr.ActiveProject()))
			return d, nil
		case key.Matches(msg, keys.Plus):
			d.pending = duration.Adjust(d.pending, duration.Step)
		case key.Matches(msg, keys.Minus):
			d.pending = duration.Adjust(d.pending, -duration.Step)
		case key.Matches(msg, keys.Add):
			d.form = newAddForm(d.tr.Projects(), d.tr.ActiveProject(), d.pending)
			return d, d.form.form.Init()
		case key.Matches(msg, keys.Edit), key.Matches(msg, keys.Enter):
			if e, ok := d.selected(); ok {
				d.form = newEditForm(d.tr.Projects(), e, d.tr.Location())
				return d, d.form.form.Init()
			}
		case key.Matches(msg, keys.Delete):
			if e, ok := d.selected(); ok {
				d.tr.Delete(e.ID)
				d.refresh()
				return d, statusCmd("Entry deleted", false)
			}
		case key.Matches(msg, keys.Invoice):
			if e, ok := d.selected(); ok {
				d.tr.ToggleInvoiced(e.ID)
				d.refresh()
			}
		case key.Matches(msg, keys.Up):
			if d.cursor > 0 {
				d.cursor--
			}
		case key.Matches(msg, keys.Down):
			if d.cursor < len(d.entries)-1 {
				d.cursor++
			}
		}
	}
	return d, nil
}

func (d dashboardModel) updateLabel(msg tea.KeyMsg) (dashboardModel, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		d.label.Blur()
		return d, nil
	}
	var cmd tea.Cmd
	d.label, cmd = d.label.Update(msg)
	return d, cmd
}

func (d dashboardModel) updatePicker(msg tea.KeyMsg) (dashboardModel, tea.Cmd) {
	projects := d.tr.Projects()
	switch {
	case key.Matches(msg, keys.Up):
		if d.pickerCursor > 0 {
			d.pickerCursor--
		}
	case key.Matches(msg, keys.Down):
		if d.pickerCursor < len(projects)-1 {
			d.pickerCursor++
		}
	case key.Matches(msg, keys.Enter):
		d.picking = false
		if d.pickerCursor < len(projects) {
			d.tr.SetActiveProject(projects[d.pickerCursor])
		}
	case key.Matches(msg, keys.Back):
		d.picking = false
	}
	return d, nil
}

func (d dashboardModel) updateForm(msg tea.Msg) (dashboardModel, tea.Cmd) {
	cmd, state := d.form.update(msg)
	switch state {
	case huh.StateAborted:
		d.form = nil
		return d, nil
	case huh.StateCompleted:
		f := d.form
		d.form = nil
		return d.submitEntry(f)
	}
	return d, cmd
}

// submitEntry applies a completed add or edit form.
func (d dashboardModel) submitEntry(f *entryForm) (dashboardModel, tea.Cmd) {
	v, err := f.values(d.tr.Location())
	if err != nil {
		return d, statusCmd(err.Error(), true)
	}
	if f.mode == entryEdit {
		if _, ok := d.tr.Update(f.id, tracker.EntryEdit{
			Label:    v.label,
			Project:  v.project,
			Duration: v.secs,
			Date:     v.date,
			Invoiced: v.invoiced,
		}); !ok {
			return d, statusCmd("Entry not updated", true)
		}
		d.refresh()
		return d, statusCmd("Entry updated", false)
	}
	e := d.tr.AddManual(v.secs, v.label, v.project, v.date)
	if e == nil {
		return d, statusCmd("Entry not added", true)
	}
	d.pending = 0
	d.refresh()
	return d, statusCmd(fmt.Sprintf("Added %s on %s", duration.Format(e.Duration), e.Project), false)
}

func (d dashboardModel) startTimer() (dashboardModel, tea.Cmd) {
	if err := d.tr.Start(d.label.Value(), ""); err != nil {
		if errors.Is(err, tracker.ErrTimerRunning) {
			return d, statusCmd("Timer already running", true)
		}
		return d, statusCmd(fmt.Sprintf("Error: %v", err), true)
	}
	d.label.SetValue("")
	project := d.tr.ActiveProject()
	return d, func() tea.Msg { return timerStartedMsg{project: project} }
}

// stopTimer records the running interval. A label typed while the timer
// ran is used when the timer was started without one.
func (d dashboardModel) stopTimer() (dashboardModel, tea.Cmd) {
	if d.tr.Running() == nil {
		return d, nil
	}
	entry, _ := d.tr.Stop(d.label.Value())
	d.label.SetValue("")
	d.refresh()
	return d, func() tea.Msg { return timerStoppedMsg{entry: entry} }
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}

	contentWidth := d.width - 4

	if d.form != nil {
		content := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(d.form.title()), "", d.form.view())
		return activePanelStyle.Width(contentWidth).Render(content)
	}

	timerPanel := d.renderTimerPanel(contentWidth)

	var bottomPanel string
	if d.picking {
		bottomPanel = d.renderProjectPicker(contentWidth)
	} else {
		bottomPanel = d.renderRecentPanel(contentWidth)
	}

	return lipgloss.JoinVertical(lipgloss.Left, timerPanel, d.renderQuickAdd(contentWidth), bottomPanel)
}

func (d dashboardModel) renderTimerPanel(w int) string {
	labelLine := d.label.View()

	if r := d.tr.Running(); r != nil {
		timeDisplay := timerRunningStyle.Width(w - 6).Render(formatDuration(d.tr.Elapsed()))
		indicator := successStyle.Render("●  RUNNING")
		projectLine := dot(d.tr.ColorOf(r.Project)) + " " + highlightStyle.Render(r.Project)
		if r.Label != "" {
			projectLine += mutedStyle.Render(" / " + r.Label)
			labelLine = ""
		}
		content := lipgloss.JoinVertical(lipgloss.Center, timeDisplay, indicator, projectLine, labelLine)
		return activePanelStyle.Width(w).Render(content)
	}

	active := d.tr.ActiveProject()
	content := lipgloss.JoinVertical(lipgloss.Center,
		timerStyle.Width(w-6).Render("00:00:00"),
		mutedStyle.Render("■  STOPPED"),
		dot(d.tr.ColorOf(active))+" "+active,
		labelLine,
		mutedStyle.Render("s: start  i: label  p: project"),
	)
	return panelStyle.Width(w).Render(content)
}

func (d dashboardModel) renderQuickAdd(w int) string {
	var presets []string
	for _, p := range duration.Presets {
		presets = append(presets, p.Label)
	}
	value := mutedStyle.Render("0m")
	if d.pending > 0 {
		value = highlightStyle.Render(duration.FormatHM(d.pending))
	}
	line := fmt.Sprintf("%s  %s  %s",
		titleStyle.Render("Quick add"),
		value,
		mutedStyle.Render("+/-: 5m  a: add ("+strings.Join(presets, " ")+")"),
	)
	return panelStyle.Width(w).Padding(0, 2).Render(line)
}

func (d dashboardModel) renderRecentPanel(w int) string {
	title := titleStyle.Render("Entries")
	if len(d.entries) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("No entries yet"),
		)
		return panelStyle.Width(w).Render(content)
	}

	// Keep the cursor visible in the space left under the timer.
	visible := max(d.height-16, 3)
	first := 0
	if d.cursor >= visible {
		first = d.cursor - visible + 1
	}
	last := min(first+visible, len(d.entries))

	loc := d.tr.Location()
	var rows []string
	rows = append(rows, title)
	for i := first; i < last; i++ {
		e := d.entries[i]
		cursor := "  "
		style := normalItemStyle
		if i == d.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		status := " "
		if e.Invoiced {
			status = successStyle.Render("✓")
		}
		start := e.Start.In(loc)
		row := fmt.Sprintf("%s%s %s %s  %-7s %s %-16s %s",
			cursor, status, start.Format("Jan 02"), start.Format("15:04"),
			duration.FormatHM(e.Duration), dot(d.tr.ColorOf(e.Project)), e.Project, e.Label)
		rows = append(rows, style.Render(row))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  e: edit  d: delete  v: invoiced"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderProjectPicker(w int) string {
	title := titleStyle.Render("Select Project")

	var rows []string
	rows = append(rows, title)
	for i, p := range d.tr.Projects() {
		cursor := "  "
		style := normalItemStyle
		if i == d.pickerCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%s %s", cursor, dot(d.tr.ColorOf(p)), p)))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: select  esc: cancel"))

	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
