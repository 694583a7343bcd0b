package tracker

import (
	"log/slog"
	"strings"
	"time"

	"github.com/sadopc/tally/internal/store"
)

// Start begins timing. An empty project means the active project. Starting
// while a timer is already running is rejected with ErrTimerRunning.
func (t *Tracker) Start(label, project string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running != nil {
		return ErrTimerRunning
	}
	if project == "" {
		project = t.active
	}
	if t.indexOf(project) < 0 {
		return ErrUnknownProject
	}

	r := store.RunningTimer{
		Start:   t.now(),
		Label:   strings.TrimSpace(label),
		Project: project,
	}
	t.running = &r
	t.active = project
	t.outbox.push(upsertSettings(store.SettingsPatch{Running: &r}))
	t.log.Debug("timer started", slog.String("project", project))
	return nil
}

// Stop ends the running timer. Intervals shorter than one second are
// discarded; otherwise the new entry is placed at the head of the ledger
// and returned. fallbackLabel is used when the timer was started without
// a label.
func (t *Tracker) Stop(fallbackLabel string) (*store.TimeEntry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running == nil {
		return nil, false
	}
	r := *t.running
	t.running = nil

	end := t.now()
	secs := int64(end.Sub(r.Start) / time.Second)
	if secs < 1 {
		t.outbox.push(upsertSettings(store.SettingsPatch{ClearRunning: true}))
		t.log.Debug("timer discarded", slog.Int64("seconds", secs))
		return nil, false
	}

	label := r.Label
	if label == "" {
		label = strings.TrimSpace(fallbackLabel)
	}
	project := r.Project
	if project == "" {
		project = store.DefaultProject
	}
	e := store.TimeEntry{
		ID:       t.newID(),
		Owner:    t.sess.UserID,
		Start:    r.Start,
		End:      end,
		Duration: secs,
		Label:    label,
		Project:  project,
	}
	t.entries = append([]store.TimeEntry{e}, t.entries...)
	t.outbox.push(
		insertEntry(e),
		upsertSettings(store.SettingsPatch{ClearRunning: true}),
	)
	t.log.Debug("timer stopped", slog.String("id", e.ID), slog.Int64("seconds", secs))
	return &e, true
}

// Running returns a copy of the running timer, or nil when idle.
func (t *Tracker) Running() *store.RunningTimer {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running == nil {
		return nil
	}
	r := *t.running
	return &r
}

// Elapsed is the wall-clock time since the running timer started, so it
// stays correct across process suspension. It is zero when idle.
func (t *Tracker) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running == nil {
		return 0
	}
	d := t.now().Sub(t.running.Start)
	if d < 0 {
		return 0
	}
	return d
}
