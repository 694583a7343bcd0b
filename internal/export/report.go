package export

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/sadopc/tally/internal/duration"
	"github.com/sadopc/tally/internal/store"
	"github.com/sadopc/tally/internal/summary"
)

// Report renders one project's aggregated entries as plain text, oldest
// entry first:
//
//	Acme — 1.50 hours
//
//	Jun 3  9:00 AM–10:00 AM  1h 0m  "design review"  [invoiced]
func Report(ps summary.ProjectSummary, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	entries := append([]store.TimeEntry(nil), ps.Entries...)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Start.Before(entries[j].Start)
	})

	lines := []string{fmt.Sprintf("%s — %s hours\n", ps.Project, duration.Decimal(ps.TotalSeconds))}
	for _, e := range entries {
		var b strings.Builder
		start, end := e.Start.In(loc), e.End.In(loc)
		fmt.Fprintf(&b, "%s  %s–%s  %s",
			start.Format("Jan 2"), start.Format("3:04 PM"), end.Format("3:04 PM"), duration.Format(e.Duration))
		if e.Label != "" {
			b.WriteString(`  "` + e.Label + `"`)
		}
		if e.Invoiced {
			b.WriteString("  [invoiced]")
		}
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n")
}

// Copy places text on the system clipboard.
func Copy(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	return nil
}
