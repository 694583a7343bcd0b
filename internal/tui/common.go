package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/tally/internal/duration"
	"github.com/sadopc/tally/internal/store"
)

// viewState represents the currently active view.
type viewState int

const (
	viewTimer viewState = iota
	viewSummary
	viewProjects
)

var viewNames = []string{"Timer", "Summary", "Projects"}

// --- Messages ---

type timerStartedMsg struct {
	project string
}

type timerStoppedMsg struct {
	entry *store.TimeEntry
}

type statusMsg struct {
	text    string
	isError bool
}

// tickMsg redraws the running clock. gen ties it to the timer run that
// scheduled it.
type tickMsg struct {
	gen int
	at  time.Time
}

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

func formatDuration(d time.Duration) string {
	return duration.Clock(d)
}

func formatHours(secs int64) string {
	return duration.Decimal(secs) + "h"
}

func statusCmd(text string, isError bool) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text, isError: isError} }
}
