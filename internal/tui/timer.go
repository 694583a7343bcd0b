package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// ticker schedules redraws of the running clock. The displayed time is
// always recomputed from the timer's start, so ticks only trigger a render.
//
// Every start and stop bumps the generation. A tick carries the generation
// it was scheduled under and is dropped when that no longer matches, so a
// tick in flight across a stop/start pair never doubles the tick rate.
type ticker struct {
	interval time.Duration
	gen      int
}

func newTicker(interval time.Duration) ticker {
	if interval <= 0 {
		interval = time.Second
	}
	return ticker{interval: interval}
}

// restart begins a new generation and schedules its first tick.
func (t *ticker) restart() tea.Cmd {
	t.gen++
	return t.schedule()
}

// stop invalidates any tick in flight.
func (t *ticker) stop() {
	t.gen++
}

func (t ticker) schedule() tea.Cmd {
	gen := t.gen
	return tea.Tick(t.interval, func(at time.Time) tea.Msg {
		return tickMsg{gen: gen, at: at}
	})
}

func (t ticker) current(msg tickMsg) bool {
	return msg.gen == t.gen
}
