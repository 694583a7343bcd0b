package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/tally/internal/duration"
	"github.com/sadopc/tally/internal/store"
	"github.com/sadopc/tally/internal/tracker"
)

type projectForm int

const (
	projectNew projectForm = iota
	projectRename
)

type projectsModel struct {
	tr     *tracker.Tracker
	width  int
	height int

	projects []string
	totals   map[string]int64
	counts   map[string]int
	cursor   int

	form     *huh.Form
	formType projectForm
	renaming string

	// Form field pointer (survives value copies)
	formName *string
}

func newProjectsModel(tr *tracker.Tracker) projectsModel {
	name := ""
	p := projectsModel{tr: tr, formName: &name}
	p.refresh()
	return p
}

func (p *projectsModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

func (p *projectsModel) refresh() {
	p.projects = p.tr.Projects()
	p.totals = make(map[string]int64, len(p.projects))
	p.counts = make(map[string]int, len(p.projects))
	for _, e := range p.tr.Entries() {
		p.totals[e.Project] += e.Duration
		p.counts[e.Project]++
	}
	if p.cursor >= len(p.projects) {
		p.cursor = max(0, len(p.projects)-1)
	}
}

func (p projectsModel) capturing() bool {
	return p.form != nil
}

func (p projectsModel) selected() (string, bool) {
	if p.cursor < 0 || p.cursor >= len(p.projects) {
		return "", false
	}
	return p.projects[p.cursor], true
}

func (p projectsModel) update(msg tea.Msg) (projectsModel, tea.Cmd) {
	if p.form != nil {
		return p.updateForm(msg)
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch {
	case key.Matches(km, keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(km, keys.Down):
		if p.cursor < len(p.projects)-1 {
			p.cursor++
		}
	case key.Matches(km, keys.Enter):
		if name, ok := p.selected(); ok {
			if !p.tr.SetActiveProject(name) {
				return p, statusCmd("Stop the timer to switch projects", true)
			}
			return p, statusCmd("Active project: "+name, false)
		}
	case key.Matches(km, keys.New):
		return p.showForm(projectNew, "")
	case key.Matches(km, keys.Rename):
		if name, ok := p.selected(); ok {
			if name == store.DefaultProject {
				return p, statusCmd(store.DefaultProject+" cannot be renamed", true)
			}
			return p.showForm(projectRename, name)
		}
	case key.Matches(km, keys.Delete):
		name, ok := p.selected()
		if !ok {
			return p, nil
		}
		if name == store.DefaultProject {
			return p, statusCmd(store.DefaultProject+" cannot be deleted", true)
		}
		if !p.tr.DeleteProject(name) {
			return p, statusCmd("Project not deleted", true)
		}
		p.refresh()
		return p, statusCmd(fmt.Sprintf("Deleted %s, entries moved to %s", name, store.DefaultProject), false)
	}
	return p, nil
}

func (p projectsModel) showForm(kind projectForm, current string) (projectsModel, tea.Cmd) {
	*p.formName = current
	p.formType = kind
	p.renaming = current

	title := "Project Name"
	if kind == projectRename {
		title = "Rename " + current
	}
	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title(title).Value(p.formName).Validate(func(s string) error {
				s = strings.TrimSpace(s)
				if s == "" {
					return fmt.Errorf("name is required")
				}
				if s != current && p.tr.HasProject(s) {
					return fmt.Errorf("%s already exists", s)
				}
				return nil
			}),
		),
	).WithShowHelp(true).WithShowErrors(true)
	return p, p.form.Init()
}

func (p projectsModel) updateForm(msg tea.Msg) (projectsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			p.form = nil
			return p, nil
		}
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}
	if p.form.State != huh.StateCompleted {
		return p, cmd
	}

	p.form = nil
	return p.submit()
}

// submit applies the completed new or rename form.
func (p projectsModel) submit() (projectsModel, tea.Cmd) {
	name := strings.TrimSpace(*p.formName)
	switch p.formType {
	case projectNew:
		if !p.tr.AddProject(name) {
			return p, statusCmd("Project not added", true)
		}
		p.refresh()
		p.cursor = max(0, indexOf(p.projects, name))
		return p, statusCmd("Added project "+name, false)
	case projectRename:
		if name == p.renaming {
			return p, nil
		}
		if !p.tr.RenameProject(p.renaming, name) {
			return p, statusCmd("Project not renamed", true)
		}
		p.refresh()
		return p, statusCmd(fmt.Sprintf("Renamed %s to %s", p.renaming, name), false)
	}
	return p, nil
}

func (p projectsModel) view() string {
	w := p.width - 4

	if p.form != nil {
		title := "New Project"
		if p.formType == projectRename {
			title = "Rename Project"
		}
		content := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), "", p.form.View())
		return activePanelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, titleStyle.Render("Projects"), "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-3s %-24s %9s %7s", "", "Name", "Time", "Entries")))

	active := p.tr.ActiveProject()
	for i, name := range p.projects {
		cursor := "  "
		style := normalItemStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		row := style.Render(fmt.Sprintf("%s%s %-24s %9s %7d",
			cursor, dot(p.tr.ColorOf(name)), truncate(name, 24),
			duration.FormatHM(p.totals[name]), p.counts[name]))
		if name == active {
			row += successStyle.Render("  active")
		}
		rows = append(rows, row)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: set active  n: new  r: rename  d: delete"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
