// Package tracker owns the in-memory state of one user's time tracking:
// the running timer, the entry ledger and the project registry.
//
// Every mutation is applied to local state before the method returns and
// is then queued for the persistence gateway. Gateway failures are logged
// and recorded; local state is never rolled back.
package tracker

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sadopc/tally/internal/store"
	"github.com/sadopc/tally/internal/summary"
)

const DefaultUser = "default"

var (
	ErrTimerRunning   = errors.New("timer already running")
	ErrUnknownProject = errors.New("unknown project")
)

// Session identifies whose data a Tracker holds.
type Session struct {
	UserID string
}

type Options struct {
	Logger   *slog.Logger
	Now      func() time.Time
	Location *time.Location
	NewID    func() string
}

type Tracker struct {
	mu sync.Mutex

	sess   Session
	log    *slog.Logger
	now    func() time.Time
	loc    *time.Location
	newID  func() string
	outbox *Outbox
	stop   context.CancelFunc

	entries  []store.TimeEntry
	projects []string
	active   string
	running  *store.RunningTimer
	theme    string

	filter summary.Filter
	bounds summary.Bounds
}

// New loads the session's settings and entries from gw and starts the
// persistence goroutine. A failed load is logged and leaves the tracker
// with an empty ledger and default settings.
func New(ctx context.Context, sess Session, gw store.Gateway, opts Options) *Tracker {
	if sess.UserID == "" {
		sess.UserID = DefaultUser
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}

	defaults := store.DefaultSettings()
	t := &Tracker{
		sess:     sess,
		log:      opts.Logger.With(slog.String("user", sess.UserID)),
		now:      opts.Now,
		loc:      opts.Location,
		newID:    opts.NewID,
		projects: defaults.Projects,
		active:   store.DefaultProject,
		theme:    defaults.Theme,
		filter:   summary.Uninvoiced,
	}
	t.load(ctx, gw)

	t.outbox = newOutbox(gw, sess.UserID, t.log)
	runCtx, cancel := context.WithCancel(context.Background())
	t.stop = cancel
	go t.outbox.run(runCtx)
	return t
}

func (t *Tracker) load(ctx context.Context, gw store.Gateway) {
	settings, err := gw.LoadSettings(ctx, t.sess.UserID)
	if err != nil {
		t.log.Error("load settings", slog.String("error", err.Error()))
	}
	entries, err := gw.LoadEntries(ctx, t.sess.UserID)
	if err != nil {
		t.log.Error("load entries", slog.String("error", err.Error()))
		entries = nil
	}
	t.entries = entries

	if settings == nil {
		return
	}
	if settings.Theme != "" {
		t.theme = settings.Theme
	}
	if len(settings.Projects) > 0 {
		t.projects = append([]string(nil), settings.Projects...)
		if !slices.Contains(t.projects, store.DefaultProject) {
			t.projects = append([]string{store.DefaultProject}, t.projects...)
		}
	}
	if settings.Running != nil {
		r := *settings.Running
		if r.Project == "" {
			r.Project = store.DefaultProject
		}
		t.running = &r
		t.active = r.Project
	}
	t.log.Debug("loaded", slog.Int("entries", len(t.entries)), slog.Int("projects", len(t.projects)))
}

// Close stops accepting writes and blocks until every queued write has
// been handed to the gateway. It is safe to call more than once.
func (t *Tracker) Close() {
	t.outbox.close()
	t.stop()
}

func (t *Tracker) Session() Session { return t.sess }

// Failures returns the gateway writes that failed so far, oldest first.
func (t *Tracker) Failures() []WriteFailure {
	_, f := t.outbox.stats()
	return f
}

// Pending is the number of writes not yet handed to the gateway.
func (t *Tracker) Pending() int { return t.outbox.pending() }

func (t *Tracker) Location() *time.Location { return t.loc }

func (t *Tracker) Theme() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.theme
}

// ToggleTheme switches between the light and dark themes and returns the new one.
func (t *Tracker) ToggleTheme() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	next := "dark"
	if t.theme == "dark" {
		next = "light"
	}
	t.theme = next
	t.outbox.push(upsertSettings(store.SettingsPatch{Theme: &next}))
	return next
}
