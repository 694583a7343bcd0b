package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sadopc/tally/internal/store"
	"github.com/sadopc/tally/internal/summary"
)

func sampleData() []store.TimeEntry {
	base := time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC)
	return []store.TimeEntry{
		{
			ID:       "e1",
			Owner:    "default",
			Start:    base,
			End:      base.Add(time.Hour),
			Duration: 3600,
			Label:    "worked on feature",
			Project:  "Acme",
		},
		{
			ID:       "e2",
			Owner:    "default",
			Start:    base.Add(2 * time.Hour),
			End:      base.Add(2*time.Hour + 30*time.Minute),
			Duration: 1800,
			Project:  "Acme",
			Invoiced: true,
		},
		{
			ID:       "e3",
			Owner:    "default",
			Start:    base.Add(-24 * time.Hour),
			End:      base.Add(-24*time.Hour + 45*time.Second),
			Duration: 45,
			Project:  "",
		},
	}
}

// ============================================================
// CSV
// ============================================================

func TestToCSV(t *testing.T) {
	entries := sampleData()
	path := filepath.Join(t.TempDir(), "test.csv")

	if err := ToCSV(entries, path); err != nil {
		t.Fatalf("ToCSV: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}

	// header + 3 data rows
	if len(records) != 4 {
		t.Fatalf("expected 4 rows (1 header + 3 data), got %d", len(records))
	}
	if records[0][0] != "ID" || records[0][7] != "Invoiced" {
		t.Fatalf("unexpected header: %v", records[0])
	}

	row := records[1]
	if row[0] != "e1" || row[1] != "Acme" {
		t.Fatalf("unexpected first row: %v", row)
	}
	if row[4] != "3600" || row[5] != "01:00:00" {
		t.Fatalf("unexpected duration columns: %v", row)
	}
	if row[6] != "worked on feature" || row[7] != "false" {
		t.Fatalf("unexpected label/invoiced columns: %v", row)
	}
	if records[2][7] != "true" {
		t.Fatalf("expected invoiced=true, got %q", records[2][7])
	}
	if records[3][1] != store.DefaultProject {
		t.Fatalf("empty project should export as %q, got %q", store.DefaultProject, records[3][1])
	}
}

func TestToCSVBadPath(t *testing.T) {
	if err := ToCSV(nil, "/nonexistent/dir/file.csv"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestWriteCSVSpecialCharacters(t *testing.T) {
	entries := sampleData()[:1]
	entries[0].Label = `notes with "quotes" and, commas`
	entries[0].Project = `Project "Special"`

	var buf bytes.Buffer
	if err := WriteCSV(&buf, entries); err != nil {
		t.Fatal(err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("CSV should be valid even with special chars: %v", err)
	}
	if records[1][1] != `Project "Special"` {
		t.Fatalf("project name mangled: %q", records[1][1])
	}
	if records[1][6] != `notes with "quotes" and, commas` {
		t.Fatalf("label mangled: %q", records[1][6])
	}
}

// ============================================================
// JSON
// ============================================================

func TestToJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.json")
	if err := ToJSON(sampleData(), path); err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var result jsonExport
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if result.Count != 3 || len(result.Entries) != 3 {
		t.Fatalf("count = %d, entries = %d, want 3", result.Count, len(result.Entries))
	}
	if _, err := time.Parse(time.RFC3339, result.ExportedAt); err != nil {
		t.Fatalf("exported_at is not valid RFC3339: %q", result.ExportedAt)
	}
}

func TestWriteJSONWireShape(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleData()[:1], time.Now()); err != nil {
		t.Fatal(err)
	}

	var raw struct {
		Entries []map[string]any `json:"entries"`
	}
	if err := json.Unmarshal(buf.Bytes(), &raw); err != nil {
		t.Fatal(err)
	}
	e := raw.Entries[0]
	for _, k := range []string{"id", "owner", "start", "end", "duration", "label", "project", "invoiced"} {
		if _, ok := e[k]; !ok {
			t.Fatalf("wire entry missing %q: %v", k, e)
		}
	}
	start := int64(e["start"].(float64))
	end := int64(e["end"].(float64))
	if end-start != 3_600_000 {
		t.Fatalf("expected millisecond timestamps one hour apart, got %d", end-start)
	}
	if e["duration"].(float64) != 3600 {
		t.Fatalf("duration should be seconds, got %v", e["duration"])
	}
}

func TestWriteJSONPrettyPrinted(t *testing.T) {
	var buf bytes.Buffer
	WriteJSON(&buf, nil, time.Now())
	if !strings.Contains(buf.String(), "\n  ") {
		t.Fatal("JSON should be pretty-printed with indentation")
	}
}

func TestWriteJSONEmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, nil, time.Now()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"entries": []`) {
		t.Fatalf("empty export should carry an empty array:\n%s", buf.String())
	}
}

func TestToJSONBadPath(t *testing.T) {
	if err := ToJSON(nil, "/nonexistent/dir/file.json"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

// ============================================================
// Report
// ============================================================

func TestReportHeader(t *testing.T) {
	ps := summary.Aggregate(sampleData()[:2])[0]
	got := Report(ps, time.UTC)
	first := strings.SplitN(got, "\n", 2)[0]
	if first != "Acme — 1.50 hours" {
		t.Fatalf("unexpected header %q", first)
	}
}

func TestReportLines(t *testing.T) {
	entries := sampleData()[:2]
	// Out of order on purpose: the report sorts oldest first.
	entries[0], entries[1] = entries[1], entries[0]
	ps := summary.Aggregate(entries)[0]

	lines := strings.Split(Report(ps, time.UTC), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header, blank line and 2 entries, got %d lines: %q", len(lines), lines)
	}
	if lines[1] != "" {
		t.Fatalf("expected blank line after header, got %q", lines[1])
	}
	want := `Jun 3  9:00 AM–10:00 AM  1h 0m  "worked on feature"`
	if lines[2] != want {
		t.Fatalf("line 1:\n got %q\nwant %q", lines[2], want)
	}
	want = "Jun 3  11:00 AM–11:30 AM  30m 0s  [invoiced]"
	if lines[3] != want {
		t.Fatalf("line 2:\n got %q\nwant %q", lines[3], want)
	}
}

func TestReportSecondsOnly(t *testing.T) {
	e := sampleData()[2]
	e.Project = "General"
	lines := strings.Split(Report(summary.Aggregate([]store.TimeEntry{e})[0], time.UTC), "\n")
	if !strings.HasSuffix(lines[2], "  45s") {
		t.Fatalf("expected seconds-only duration, got %q", lines[2])
	}
	if lines[0] != "General — 0.01 hours" {
		t.Fatalf("unexpected header %q", lines[0])
	}
}

func TestReportDoesNotReorderInput(t *testing.T) {
	entries := sampleData()[:2]
	entries[0], entries[1] = entries[1], entries[0]
	ps := summary.Aggregate(entries)[0]
	Report(ps, time.UTC)
	if ps.Entries[0].ID != "e2" {
		t.Fatal("Report should not sort the summary's entries in place")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		secs int64
		want string
	}{
		{0, "00:00:00"},
		{61, "00:01:01"},
		{3661, "01:01:01"},
		{90061, "25:01:01"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.secs); got != tt.want {
			t.Errorf("formatDuration(%d) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}
