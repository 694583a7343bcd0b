package summary

import (
	"testing"
	"time"

	"github.com/sadopc/tally/internal/store"
)

var utc = time.UTC

func entry(id, project string, start time.Time, secs int64, invoiced bool) store.TimeEntry {
	return store.TimeEntry{
		ID:       id,
		Start:    start,
		End:      start.Add(time.Duration(secs) * time.Second),
		Duration: secs,
		Project:  project,
		Invoiced: invoiced,
	}
}

func sampleEntries(now time.Time) []store.TimeEntry {
	return []store.TimeEntry{
		entry("1", "Acme", now.Add(-1*time.Hour), 3600, false),
		entry("2", "Acme", now.Add(-2*24*time.Hour), 1800, true),
		entry("3", "Beta", now.Add(-10*24*time.Hour), 7200, false),
		entry("4", "General", now.Add(-40*24*time.Hour), 600, true),
		entry("5", "Beta", now.Add(-3*time.Hour), 900, false),
	}
}

func ids(entries []store.TimeEntry) []string {
	var out []string
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}

func sameIDs(t *testing.T, got []store.TimeEntry, want ...string) {
	t.Helper()
	g := ids(got)
	if len(g) != len(want) {
		t.Fatalf("expected %v, got %v", want, g)
	}
	for i := range want {
		if g[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, g)
		}
	}
}

// ============================================================
// Filters
// ============================================================

func TestApplyUninvoiced(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, utc)
	got := Apply(sampleEntries(now), Uninvoiced, Bounds{}, now, utc)
	sameIDs(t, got, "1", "3", "5")
}

func TestApplyRollingWindows(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, utc)
	sameIDs(t, Apply(sampleEntries(now), Week, Bounds{}, now, utc), "1", "2", "5")
	sameIDs(t, Apply(sampleEntries(now), Month, Bounds{}, now, utc), "1", "2", "3", "5")
}

func TestApplyWindowBoundaryInclusive(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, utc)
	edge := []store.TimeEntry{entry("edge", "Acme", now.Add(-7*24*time.Hour), 60, false)}
	sameIDs(t, Apply(edge, Week, Bounds{}, now, utc), "edge")
}

func TestApplyAll(t *testing.T) {
	now := time.Now()
	got := Apply(sampleEntries(now), All, Bounds{}, now, utc)
	if len(got) != 5 {
		t.Fatalf("expected all 5 entries, got %d", len(got))
	}
}

func TestApplyCustomRange(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, utc)
	entries := []store.TimeEntry{
		entry("before", "Acme", time.Date(2025, 6, 9, 23, 59, 59, 0, utc), 60, false),
		entry("first", "Acme", time.Date(2025, 6, 10, 0, 0, 0, 0, utc), 60, false),
		entry("last", "Acme", time.Date(2025, 6, 12, 23, 59, 59, 0, utc), 60, false),
		entry("after", "Acme", time.Date(2025, 6, 13, 0, 0, 0, 0, utc), 60, false),
	}
	b, err := ParseBounds("2025-06-10", "2025-06-12", utc)
	if err != nil {
		t.Fatal(err)
	}
	sameIDs(t, Apply(entries, Custom, b, now, utc), "first", "last")

	open, _ := ParseBounds("", "2025-06-10", utc)
	sameIDs(t, Apply(entries, Custom, open, now, utc), "before", "first")

	open, _ = ParseBounds("2025-06-12", "", utc)
	sameIDs(t, Apply(entries, Custom, open, now, utc), "last", "after")

	sameIDs(t, Apply(entries, Custom, Bounds{}, now, utc), "before", "first", "last", "after")
}

func TestParseBoundsInvalid(t *testing.T) {
	if _, err := ParseBounds("06/10/2025", "", utc); err == nil {
		t.Fatal("expected error for malformed date")
	}
}

func TestParseFilter(t *testing.T) {
	for in, want := range map[string]Filter{
		"":           Uninvoiced,
		"uninvoiced": Uninvoiced,
		"7d":         Week,
		"month":      Month,
		"range":      Custom,
		"all":        All,
	} {
		got, err := ParseFilter(in)
		if err != nil || got != want {
			t.Errorf("ParseFilter(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseFilter("yearly"); err == nil {
		t.Fatal("expected error for unknown filter")
	}
}

// ============================================================
// Aggregation
// ============================================================

func TestAggregate(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, utc)
	got := Aggregate(sampleEntries(now))
	if len(got) != 3 {
		t.Fatalf("expected 3 projects, got %d", len(got))
	}
	if got[0].Project != "Beta" || got[0].TotalSeconds != 8100 || got[0].Count != 2 {
		t.Fatalf("unexpected first project: %+v", got[0])
	}
	if got[1].Project != "Acme" || got[1].TotalSeconds != 5400 || got[1].UninvoicedSeconds != 3600 {
		t.Fatalf("unexpected second project: %+v", got[1])
	}
	if got[2].Project != "General" || got[2].UninvoicedSeconds != 0 {
		t.Fatalf("unexpected third project: %+v", got[2])
	}
}

func TestAggregateTiesKeepFirstAppearance(t *testing.T) {
	now := time.Now()
	got := Aggregate([]store.TimeEntry{
		entry("1", "Zeta", now, 600, false),
		entry("2", "Alpha", now, 600, false),
		entry("3", "Mid", now, 900, false),
	})
	if got[0].Project != "Mid" || got[1].Project != "Zeta" || got[2].Project != "Alpha" {
		t.Fatalf("unexpected order: %s, %s, %s", got[0].Project, got[1].Project, got[2].Project)
	}
}

func TestAggregateTotalsMatchFilteredSum(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, utc)
	for _, f := range Filters {
		filtered := Apply(sampleEntries(now), f, Bounds{}, now, utc)
		var sum int64
		for _, ps := range Aggregate(filtered) {
			sum += ps.TotalSeconds
		}
		if sum != Total(filtered) {
			t.Fatalf("filter %s: aggregate sum %d != filtered total %d", f, sum, Total(filtered))
		}
	}
}

func TestUninvoicedFilterTotalsEqual(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, utc)
	for _, ps := range Aggregate(Apply(sampleEntries(now), Uninvoiced, Bounds{}, now, utc)) {
		if ps.UninvoicedSeconds != ps.TotalSeconds {
			t.Fatalf("%s: uninvoiced %d != total %d", ps.Project, ps.UninvoicedSeconds, ps.TotalSeconds)
		}
	}
}

func TestFraction(t *testing.T) {
	ps := ProjectSummary{TotalSeconds: 900}
	if got := ps.Fraction(3600); got != 0.25 {
		t.Fatalf("expected 0.25, got %v", got)
	}
	if got := ps.Fraction(0); got != 0 {
		t.Fatalf("expected 0 for empty grand total, got %v", got)
	}
}

func TestAggregateEmpty(t *testing.T) {
	if got := Aggregate(nil); len(got) != 0 {
		t.Fatalf("expected no projects, got %d", len(got))
	}
}
