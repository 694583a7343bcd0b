package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/tally/internal/tui"
)

// runUI opens the terminal UI and flushes pending writes once it exits.
func (a *app) runUI(ctx context.Context) error {
	tr, done, err := a.open(ctx)
	if err != nil {
		return err
	}
	a.log.Info("ui started", "backend", a.cfg.Backend)

	p := tea.NewProgram(tui.NewApp(tr, a.cfg.TickInterval), tea.WithAltScreen(), tea.WithContext(ctx))
	_, runErr := p.Run()
	if err := done(); err != nil {
		a.log.Error("flush on exit", "err", err)
		if runErr == nil {
			runErr = err
		}
	}
	if runErr != nil {
		return fmt.Errorf("ui: %w", runErr)
	}
	return nil
}
