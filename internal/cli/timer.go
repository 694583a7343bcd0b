package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sadopc/tally/internal/duration"
	"github.com/sadopc/tally/internal/tracker"
)

func addStart(topLevel *cobra.Command, a *app) {
	var project string

	cmd := &cobra.Command{
		Use:   "start [label]",
		Short: "Start the timer",
		Example: `
tally start
tally start design review --project Acme
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withTracker(cmd, func(tr *tracker.Tracker) error {
				label := strings.Join(args, " ")
				if err := tr.Start(label, project); err != nil {
					if errors.Is(err, tracker.ErrTimerRunning) {
						r := tr.Running()
						return fmt.Errorf("%w on %s since %s", err, r.Project, r.Start.In(tr.Location()).Format("15:04"))
					}
					return fmt.Errorf("%w: %s", err, project)
				}
				r := tr.Running()
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s timer on %s\n",
					color.New(color.FgGreen, color.Bold).Sprint("started"), r.Project)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&project, "project", "p", "", "project to track (default: the active project)")
	topLevel.AddCommand(cmd)
}

func addStop(topLevel *cobra.Command, a *app) {
	cmd := &cobra.Command{
		Use:   "stop [label]",
		Short: "Stop the timer and record the entry",
		Long:  "Stop the running timer. A label given here is used when the timer was started without one.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withTracker(cmd, func(tr *tracker.Tracker) error {
				if tr.Running() == nil {
					return errors.New("no timer running")
				}
				e, ok := tr.Stop(strings.Join(args, " "))
				out := cmd.OutOrStdout()
				if !ok {
					_, _ = fmt.Fprintln(out, color.New(color.Faint).Sprint("timer discarded (under one second)"))
					return nil
				}
				_, _ = fmt.Fprintf(out, "%s %s on %s\n",
					color.New(color.FgRed, color.Bold).Sprint("stopped"), duration.Format(e.Duration), e.Project)
				return nil
			})
		},
	}
	topLevel.AddCommand(cmd)
}

func addStatus(topLevel *cobra.Command, a *app) {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the running timer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withTracker(cmd, func(tr *tracker.Tracker) error {
				out := cmd.OutOrStdout()
				r := tr.Running()
				if r == nil {
					_, _ = fmt.Fprintf(out, "%s  (active project: %s)\n",
						color.New(color.Faint).Sprint("idle"), tr.ActiveProject())
					return nil
				}
				line := fmt.Sprintf("%s  %s  %s",
					color.New(color.FgGreen, color.Bold).Sprint(duration.Clock(tr.Elapsed())),
					r.Project,
					color.New(color.Faint).Sprint("since "+r.Start.In(tr.Location()).Format("Jan 2 15:04")))
				if r.Label != "" {
					line += fmt.Sprintf("  %q", r.Label)
				}
				_, _ = fmt.Fprintln(out, line)
				return nil
			})
		},
	}
	topLevel.AddCommand(cmd)
}
