package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/sadopc/tally/internal/duration"
	"github.com/sadopc/tally/internal/store"
	"github.com/sadopc/tally/internal/tracker"
)

func addAdd(topLevel *cobra.Command, a *app) {
	var (
		project string
		date    string
	)

	cmd := &cobra.Command{
		Use:   "add <duration> [label]",
		Short: "Record time worked without the timer",
		Long: `Record a manual entry. The duration accepts "1:30", "1h 30m", "1.5h",
"45m" or a bare number of minutes.`,
		Example: `
tally add 1h30m client call --project Acme
tally add 45 --date 2025-06-01
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secs, ok := duration.Parse(args[0])
			if !ok || secs < 1 {
				return fmt.Errorf("could not read duration %q", args[0])
			}
			return a.withTracker(cmd, func(tr *tracker.Tracker) error {
				var day time.Time
				if date != "" {
					d, err := time.ParseInLocation("2006-01-02", date, tr.Location())
					if err != nil {
						return fmt.Errorf("invalid date %q: %w", date, err)
					}
					day = d
				}
				if project != "" && !tr.HasProject(project) {
					return fmt.Errorf("%w: %s", tracker.ErrUnknownProject, project)
				}
				e := tr.AddManual(secs, strings.Join(args[1:], " "), project, day)
				if e == nil {
					return fmt.Errorf("entry not recorded")
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s on %s (%s)\n",
					color.New(color.FgGreen, color.Bold).Sprint("added"),
					duration.Format(e.Duration), e.Project, e.Start.In(tr.Location()).Format("Jan 2"))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&project, "project", "p", "", "project to book the time on (default: the active project)")
	cmd.Flags().StringVar(&date, "date", "", "day the work happened, YYYY-MM-DD (default: now)")
	topLevel.AddCommand(cmd)
}

func addList(topLevel *cobra.Command, a *app) {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent entries, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withTracker(cmd, func(tr *tracker.Tracker) error {
				entries := tr.DisplayEntries()
				if limit > 0 && len(entries) > limit {
					entries = entries[:limit]
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), entryTable(entries, tr.Location()))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of entries to show (0 for all)")
	topLevel.AddCommand(cmd)
}

func entryTable(entries []store.TimeEntry, loc *time.Location) string {
	if len(entries) == 0 {
		return color.New(color.Faint, color.Italic).Sprint(" none")
	}
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 48
	tbl.AddRow(bold.Sprint("ID"), bold.Sprint("Date"), bold.Sprint("Time"), bold.Sprint("Duration"),
		bold.Sprint("Project"), bold.Sprint("Label"), "")
	for _, e := range entries {
		start, end := e.Start.In(loc), e.End.In(loc)
		invoiced := ""
		if e.Invoiced {
			invoiced = color.New(color.FgGreen).Sprint("invoiced")
		}
		tbl.AddRow(
			faint.Sprint(shortID(e.ID)),
			start.Format("Jan 2"),
			start.Format("15:04")+"–"+end.Format("15:04"),
			duration.Format(e.Duration),
			e.Project,
			e.Label,
			invoiced,
		)
	}
	return tbl.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
