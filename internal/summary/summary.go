// Package summary selects entries for a reporting view and aggregates them
// per project.
package summary

import (
	"fmt"
	"sort"
	"time"

	"github.com/sadopc/tally/internal/store"
)

type Filter string

const (
	Uninvoiced Filter = "uninvoiced"
	Week       Filter = "week"
	Month      Filter = "month"
	Custom     Filter = "custom"
	All        Filter = "all"
)

// Filters lists every filter in display order.
var Filters = []Filter{Uninvoiced, Week, Month, Custom, All}

func (f Filter) Label() string {
	switch f {
	case Uninvoiced:
		return "Uninvoiced"
	case Week:
		return "Past 7 days"
	case Month:
		return "Past 30 days"
	case Custom:
		return "Custom range"
	case All:
		return "All time"
	}
	return string(f)
}

// ParseFilter accepts the filter names plus a few aliases used on the command line.
func ParseFilter(s string) (Filter, error) {
	switch s {
	case "uninvoiced", "":
		return Uninvoiced, nil
	case "week", "7d", "last-7-days":
		return Week, nil
	case "month", "30d", "last-30-days":
		return Month, nil
	case "custom", "range", "custom-range":
		return Custom, nil
	case "all":
		return All, nil
	}
	return "", fmt.Errorf("unknown filter %q", s)
}

// Bounds is the inclusive day range of the custom filter. A zero From is
// unbounded in the past, a zero To unbounded in the future. Only the
// calendar date of each bound is used.
type Bounds struct {
	From time.Time
	To   time.Time
}

// ParseBounds reads YYYY-MM-DD dates in loc; empty strings leave the side open.
func ParseBounds(from, to string, loc *time.Location) (Bounds, error) {
	var b Bounds
	var err error
	if from != "" {
		if b.From, err = time.ParseInLocation("2006-01-02", from, loc); err != nil {
			return b, fmt.Errorf("invalid from date %q: %w", from, err)
		}
	}
	if to != "" {
		if b.To, err = time.ParseInLocation("2006-01-02", to, loc); err != nil {
			return b, fmt.Errorf("invalid to date %q: %w", to, err)
		}
	}
	return b, nil
}

// Apply returns the entries selected by f, preserving input order. The
// rolling windows are measured back from now; the custom range covers
// [From 00:00:00, To 23:59:59] in loc.
func Apply(entries []store.TimeEntry, f Filter, b Bounds, now time.Time, loc *time.Location) []store.TimeEntry {
	var keep func(store.TimeEntry) bool
	switch f {
	case Uninvoiced:
		keep = func(e store.TimeEntry) bool { return !e.Invoiced }
	case Week:
		since := now.Add(-7 * 24 * time.Hour)
		keep = func(e store.TimeEntry) bool { return !e.Start.Before(since) }
	case Month:
		since := now.Add(-30 * 24 * time.Hour)
		keep = func(e store.TimeEntry) bool { return !e.Start.Before(since) }
	case Custom:
		keep = customRange(b, loc)
	default:
		keep = func(store.TimeEntry) bool { return true }
	}

	out := make([]store.TimeEntry, 0, len(entries))
	for _, e := range entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

func customRange(b Bounds, loc *time.Location) func(store.TimeEntry) bool {
	if loc == nil {
		loc = time.Local
	}
	var from, to time.Time
	hasFrom, hasTo := !b.From.IsZero(), !b.To.IsZero()
	if hasFrom {
		y, m, d := b.From.Date()
		from = time.Date(y, m, d, 0, 0, 0, 0, loc)
	}
	if hasTo {
		y, m, d := b.To.Date()
		to = time.Date(y, m, d, 23, 59, 59, 0, loc)
	}
	return func(e store.TimeEntry) bool {
		if hasFrom && e.Start.Before(from) {
			return false
		}
		if hasTo && e.Start.After(to) {
			return false
		}
		return true
	}
}

// ProjectSummary aggregates the filtered entries of one project.
type ProjectSummary struct {
	Project           string
	TotalSeconds      int64
	UninvoicedSeconds int64
	Count             int
	Entries           []store.TimeEntry
}

// Aggregate groups entries by project, largest total first. Projects with
// equal totals keep the order in which they first appear.
func Aggregate(entries []store.TimeEntry) []ProjectSummary {
	index := make(map[string]int)
	var out []ProjectSummary
	for _, e := range entries {
		i, ok := index[e.Project]
		if !ok {
			i = len(out)
			index[e.Project] = i
			out = append(out, ProjectSummary{Project: e.Project})
		}
		ps := &out[i]
		ps.TotalSeconds += e.Duration
		if !e.Invoiced {
			ps.UninvoicedSeconds += e.Duration
		}
		ps.Count++
		ps.Entries = append(ps.Entries, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalSeconds > out[j].TotalSeconds
	})
	return out
}

// Total sums the durations of entries.
func Total(entries []store.TimeEntry) int64 {
	var total int64
	for _, e := range entries {
		total += e.Duration
	}
	return total
}

// Fraction is the project's share of grand, or 0 when grand is 0.
func (ps ProjectSummary) Fraction(grand int64) float64 {
	if grand == 0 {
		return 0
	}
	return float64(ps.TotalSeconds) / float64(grand)
}
