package tracker

import (
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/sadopc/tally/internal/duration"
	"github.com/sadopc/tally/internal/store"
	"github.com/sadopc/tally/internal/summary"
)

// EntryEdit holds the replacement fields for Update. A zero Date keeps the
// entry's current start.
type EntryEdit struct {
	Label    string
	Project  string
	Duration int64
	Date     time.Time
	Invoiced bool
}

// AddManual records secs of work. With a non-zero date the entry starts at
// noon local time on that day, otherwise now. The ledger is re-sorted
// newest first since manual entries may be backdated. Returns nil when secs
// is outside [1, duration.MaxSeconds] or the project is unknown.
func (t *Tracker) AddManual(secs int64, label, project string, date time.Time) *store.TimeEntry {
	t.mu.Lock()
	defer t.mu.Unlock()

	if secs < 1 || secs > duration.MaxSeconds {
		return nil
	}
	if project == "" {
		project = t.active
	}
	if t.indexOf(project) < 0 {
		return nil
	}

	start := t.startFor(date, t.now())
	e := store.TimeEntry{
		ID:       t.newID(),
		Owner:    t.sess.UserID,
		Start:    start,
		End:      start.Add(time.Duration(secs) * time.Second),
		Duration: secs,
		Label:    strings.TrimSpace(label),
		Project:  project,
	}
	t.entries = append([]store.TimeEntry{e}, t.entries...)
	sortNewestFirst(t.entries)
	t.outbox.push(insertEntry(e))
	t.log.Debug("entry added", slog.String("id", e.ID), slog.Int64("seconds", secs))
	return &e
}

// Update replaces the fields of entry id in place. Start and end are
// recomputed the same way AddManual computes them. The ledger is not
// re-sorted afterwards.
func (t *Tracker) Update(id string, edit EntryEdit) (*store.TimeEntry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := t.entryIndex(id)
	if i < 0 || edit.Duration < 1 || edit.Duration > duration.MaxSeconds {
		return nil, false
	}
	project := edit.Project
	if project == "" {
		project = store.DefaultProject
	}
	if t.indexOf(project) < 0 {
		return nil, false
	}

	e := t.entries[i]
	start := t.startFor(edit.Date, e.Start)
	e.Label = edit.Label
	e.Project = project
	e.Duration = edit.Duration
	e.Start = start
	e.End = start.Add(time.Duration(edit.Duration) * time.Second)
	e.Invoiced = edit.Invoiced
	t.entries[i] = e

	t.outbox.push(updateEntry(e))
	t.log.Debug("entry updated", slog.String("id", id))
	return &e, true
}

// Delete removes entry id.
func (t *Tracker) Delete(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := t.entryIndex(id)
	if i < 0 {
		return false
	}
	t.entries = append(t.entries[:i], t.entries[i+1:]...)
	t.outbox.push(deleteEntry(id))
	t.log.Debug("entry deleted", slog.String("id", id))
	return true
}

// ToggleInvoiced flips the invoiced flag of entry id and returns the entry.
func (t *Tracker) ToggleInvoiced(id string) (*store.TimeEntry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := t.entryIndex(id)
	if i < 0 {
		return nil, false
	}
	t.entries[i].Invoiced = !t.entries[i].Invoiced
	e := t.entries[i]
	t.outbox.push(updateEntry(e))
	return &e, true
}

// MarkProjectInvoiced marks every not yet invoiced entry of project that
// the active filter currently selects. Entries outside the active view are
// left alone. Returns the number of entries marked.
func (t *Tracker) MarkProjectInvoiced(project string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	ids := make(map[string]bool)
	for _, e := range t.filteredLocked() {
		if e.Project == project && !e.Invoiced {
			ids[e.ID] = true
		}
	}
	if len(ids) == 0 {
		return 0
	}

	var ops []writeOp
	for i := range t.entries {
		if ids[t.entries[i].ID] {
			t.entries[i].Invoiced = true
			ops = append(ops, updateEntry(t.entries[i]))
		}
	}
	t.outbox.push(ops...)
	t.log.Debug("project invoiced", slog.String("project", project), slog.Int("entries", len(ops)))
	return len(ops)
}

// Entries returns a copy of the ledger in its stored order.
func (t *Tracker) Entries() []store.TimeEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]store.TimeEntry(nil), t.entries...)
}

// DisplayEntries returns a copy of the ledger, newest first.
func (t *Tracker) DisplayEntries() []store.TimeEntry {
	out := t.Entries()
	sortNewestFirst(out)
	return out
}

func (t *Tracker) Entry(id string) (store.TimeEntry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	i := t.entryIndex(id)
	if i < 0 {
		return store.TimeEntry{}, false
	}
	return t.entries[i], true
}

// SetFilter selects the entries the summary and MarkProjectInvoiced act on.
func (t *Tracker) SetFilter(f summary.Filter, b summary.Bounds) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.filter = f
	t.bounds = b
}

func (t *Tracker) Filter() (summary.Filter, summary.Bounds) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.filter, t.bounds
}

// Filtered returns the entries selected by the active filter.
func (t *Tracker) Filtered() []store.TimeEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.filteredLocked()
}

func (t *Tracker) filteredLocked() []store.TimeEntry {
	return summary.Apply(t.entries, t.filter, t.bounds, t.now(), t.loc)
}

// Summary aggregates the filtered entries per project and returns them with
// the grand total in seconds.
func (t *Tracker) Summary() ([]summary.ProjectSummary, int64) {
	filtered := t.Filtered()
	return summary.Aggregate(filtered), summary.Total(filtered)
}

// ProjectSummary returns the aggregate of one project under the active filter.
func (t *Tracker) ProjectSummary(project string) (summary.ProjectSummary, bool) {
	all, _ := t.Summary()
	for _, ps := range all {
		if ps.Project == project {
			return ps, true
		}
	}
	return summary.ProjectSummary{}, false
}

func (t *Tracker) startFor(date, fallback time.Time) time.Time {
	if date.IsZero() {
		return fallback
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, 12, 0, 0, 0, t.loc)
}

func (t *Tracker) entryIndex(id string) int {
	for i := range t.entries {
		if t.entries[i].ID == id {
			return i
		}
	}
	return -1
}

func sortNewestFirst(entries []store.TimeEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Start.After(entries[j].Start)
	})
}
