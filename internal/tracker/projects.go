package tracker

import (
	"log/slog"
	"strings"

	"github.com/sadopc/tally/internal/store"
)

// Palette holds the project colors. A project's color is picked by its
// position in the registry, so deleting or reordering projects can change
// the colors of the ones after it.
var Palette = []string{
	"#16a34a", "#3b82f6", "#f59e0b", "#ec4899", "#8b5cf6",
	"#14b8a6", "#f97316", "#6366f1", "#ef4444", "#06b6d4",
}

// AddProject appends name to the registry and makes it the active project.
// Blank and duplicate names are ignored.
func (t *Tracker) AddProject(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" || t.indexOf(name) >= 0 {
		return false
	}
	t.projects = append(t.projects, name)
	t.active = name
	t.pushProjects()
	t.log.Debug("project added", slog.String("project", name))
	return true
}

// DeleteProject removes name and moves its entries to the default project.
// The default project cannot be deleted.
func (t *Tracker) DeleteProject(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := t.indexOf(name)
	if name == store.DefaultProject || i < 0 {
		return false
	}
	t.projects = append(t.projects[:i:i], t.projects[i+1:]...)
	moved := t.reassign(name, store.DefaultProject)
	if t.active == name {
		t.active = store.DefaultProject
	}
	if t.running != nil && t.running.Project == name {
		t.running.Project = store.DefaultProject
		r := *t.running
		t.outbox.push(upsertSettings(store.SettingsPatch{Running: &r}))
	}
	t.pushProjects()
	t.log.Debug("project deleted", slog.String("project", name), slog.Int("moved", moved))
	return true
}

// RenameProject renames from to to, keeping its position (and so its color)
// and retagging its entries. The default project cannot be renamed.
func (t *Tracker) RenameProject(from, to string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	to = strings.TrimSpace(to)
	i := t.indexOf(from)
	if from == store.DefaultProject || i < 0 || to == "" || t.indexOf(to) >= 0 {
		return false
	}
	t.projects[i] = to
	moved := t.reassign(from, to)
	if t.active == from {
		t.active = to
	}
	if t.running != nil && t.running.Project == from {
		t.running.Project = to
		r := *t.running
		t.outbox.push(upsertSettings(store.SettingsPatch{Running: &r}))
	}
	t.pushProjects()
	t.log.Debug("project renamed", slog.String("from", from), slog.String("to", to), slog.Int("moved", moved))
	return true
}

// Projects returns the registry in order.
func (t *Tracker) Projects() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.projects...)
}

func (t *Tracker) HasProject(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.indexOf(name) >= 0
}

func (t *Tracker) ActiveProject() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// SetActiveProject selects the project new timers and manual entries use.
// It is refused while a timer runs.
func (t *Tracker) SetActiveProject(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running != nil || t.indexOf(name) < 0 {
		return false
	}
	t.active = name
	return true
}

// ColorOf returns the display color of name. Unknown names get the first color.
func (t *Tracker) ColorOf(name string) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Palette[max(0, t.indexOf(name))%len(Palette)]
}

func (t *Tracker) indexOf(name string) int {
	for i, p := range t.projects {
		if p == name {
			return i
		}
	}
	return -1
}

func (t *Tracker) reassign(from, to string) int {
	var ops []writeOp
	for i := range t.entries {
		if t.entries[i].Project == from {
			t.entries[i].Project = to
			ops = append(ops, updateEntry(t.entries[i]))
		}
	}
	t.outbox.push(ops...)
	return len(ops)
}

func (t *Tracker) pushProjects() {
	t.outbox.push(upsertSettings(store.SettingsPatch{Projects: append([]string(nil), t.projects...)}))
}
