package cli

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sadopc/tally/internal/config"
	"github.com/sadopc/tally/internal/tracker"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

// harness runs commands against one SQLite file, each invocation in a
// fresh command tree the way separate processes would.
type harness struct {
	t   *testing.T
	db  string
	clk *clock
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("TALLY_CONFIG_PATH", dir)
	t.Setenv("TALLY_BACKEND", "")
	t.Setenv("TALLY_USER", "")
	return &harness{
		t:   t,
		db:  filepath.Join(dir, "tally.db"),
		clk: &clock{t: time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)},
	}
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	a := &app{v: config.New(), opts: tracker.Options{Now: h.clk.now, Location: time.UTC}}
	cmd := newCommand(a)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--db", h.db, "--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	if err != nil {
		h.t.Fatalf("%v: %v", args, err)
	}
	return out
}

func TestStartStatusStop(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("status")
	if !strings.Contains(out, "idle") {
		t.Fatalf("status = %q", out)
	}

	out = h.mustRun("start", "design", "review")
	if !strings.Contains(out, "started timer on General") {
		t.Fatalf("start = %q", out)
	}

	h.clk.t = h.clk.t.Add(90 * time.Minute)
	out = h.mustRun("status")
	if !strings.Contains(out, "01:30:00") || !strings.Contains(out, `"design review"`) {
		t.Fatalf("status = %q", out)
	}

	out = h.mustRun("stop")
	if !strings.Contains(out, "stopped 1h 30m on General") {
		t.Fatalf("stop = %q", out)
	}

	out = h.mustRun("list")
	if !strings.Contains(out, "design review") || !strings.Contains(out, "09:00–10:30") {
		t.Fatalf("list = %q", out)
	}
}

func TestStartTwice(t *testing.T) {
	h := newHarness(t)
	h.mustRun("start")
	_, err := h.run("start")
	if !errors.Is(err, tracker.ErrTimerRunning) {
		t.Fatalf("err = %v, want ErrTimerRunning", err)
	}
}

func TestStopWithoutTimer(t *testing.T) {
	h := newHarness(t)
	if _, err := h.run("stop"); err == nil {
		t.Fatal("stop with no timer should fail")
	}
}

func TestStopUsesFallbackLabel(t *testing.T) {
	h := newHarness(t)
	h.mustRun("start")
	h.clk.t = h.clk.t.Add(time.Minute)
	h.mustRun("stop", "late", "label")
	if out := h.mustRun("list"); !strings.Contains(out, "late label") {
		t.Fatalf("list = %q", out)
	}
}

func TestAddAndSummary(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("add", "1:30", "client call", "-p", "Acme")
	if !errors.Is(err, tracker.ErrUnknownProject) {
		t.Fatalf("err = %v, want ErrUnknownProject", err)
	}

	h.mustRun("project", "add", "Acme")
	out := h.mustRun("add", "1:30", "client", "call", "-p", "Acme")
	if !strings.Contains(out, "added 1h 30m on Acme") {
		t.Fatalf("add = %q", out)
	}
	h.mustRun("add", "45")

	out = h.mustRun("summary")
	for _, want := range []string{"Uninvoiced", "Acme", "General", "1h 30m", "45m", "2h 15m"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "Acme") > strings.Index(out, "General") {
		t.Fatalf("summary should list the larger project first:\n%s", out)
	}
}

func TestAddRejectsBadInput(t *testing.T) {
	h := newHarness(t)
	if _, err := h.run("add", "soon"); err == nil {
		t.Fatal("unreadable duration should fail")
	}
	if _, err := h.run("add", "0"); err == nil {
		t.Fatal("zero duration should fail")
	}
	if _, err := h.run("add", "30", "--date", "June 1"); err == nil {
		t.Fatal("bad date should fail")
	}
}

func TestReportAndInvoice(t *testing.T) {
	h := newHarness(t)
	h.mustRun("project", "add", "Acme")
	h.mustRun("add", "1.5h", "build", "-p", "Acme")

	out := h.mustRun("report", "Acme")
	if !strings.HasPrefix(out, "Acme — 1.50 hours") || !strings.Contains(out, `"build"`) {
		t.Fatalf("report = %q", out)
	}

	out = h.mustRun("invoice", "Acme")
	if !strings.Contains(out, "invoiced 1 entry on Acme") {
		t.Fatalf("invoice = %q", out)
	}

	if out = h.mustRun("summary"); !strings.Contains(out, "no entries") {
		t.Fatalf("uninvoiced summary should be empty:\n%s", out)
	}
	if out = h.mustRun("summary", "--filter", "all"); !strings.Contains(out, "Acme") {
		t.Fatalf("all summary = %q", out)
	}
	if _, err := h.run("report", "Acme"); err == nil {
		t.Fatal("report under the uninvoiced filter should find nothing")
	}
}

func TestSummaryFilters(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "30", "--date", "2025-05-01")
	h.mustRun("add", "60")

	if out := h.mustRun("summary", "--filter", "week"); !strings.Contains(out, "1h 0m") || strings.Contains(out, "1h 30m") {
		t.Fatalf("week summary = %q", out)
	}
	if out := h.mustRun("summary", "--from", "2025-05-01", "--to", "2025-05-31"); !strings.Contains(out, "30m") {
		t.Fatalf("custom summary = %q", out)
	}
	if _, err := h.run("summary", "--filter", "yearly"); err == nil {
		t.Fatal("unknown filter should fail")
	}
	if _, err := h.run("summary", "--from", "May"); err == nil {
		t.Fatal("bad from date should fail")
	}
}

func TestProjectCommands(t *testing.T) {
	h := newHarness(t)
	h.mustRun("project", "add", "Acme")
	h.mustRun("add", "20", "-p", "Acme")

	if _, err := h.run("project", "add", "Acme"); err == nil {
		t.Fatal("duplicate project should fail")
	}

	out := h.mustRun("project", "mv", "Acme", "Acme Corp")
	if !strings.Contains(out, "renamed Acme → Acme Corp") {
		t.Fatalf("mv = %q", out)
	}
	out = h.mustRun("project", "ls")
	if !strings.Contains(out, "Acme Corp") || !strings.Contains(out, "General") {
		t.Fatalf("ls = %q", out)
	}
	if out = h.mustRun("list"); !strings.Contains(out, "Acme Corp") {
		t.Fatalf("entries should follow the rename:\n%s", out)
	}

	h.mustRun("project", "rm", "Acme", "Corp")
	if out = h.mustRun("project", "ls"); strings.Contains(out, "Acme") {
		t.Fatalf("ls after rm = %q", out)
	}
	if out = h.mustRun("list"); strings.Contains(out, "Acme") {
		t.Fatalf("entries should move to General:\n%s", out)
	}

	if _, err := h.run("project", "rm", "General"); err == nil {
		t.Fatal("General cannot be deleted")
	}
	if _, err := h.run("project", "rm", "Nope"); !errors.Is(err, tracker.ErrUnknownProject) {
		t.Fatalf("err = %v, want ErrUnknownProject", err)
	}
}

func TestExportToStdout(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "1h", "csv me")

	out := h.mustRun("export", "--format", "csv", "--out", "-")
	if !strings.HasPrefix(out, "ID,Project,Start,End") || !strings.Contains(out, "csv me") {
		t.Fatalf("csv = %q", out)
	}

	out = h.mustRun("export", "--format", "json", "--out", "-")
	if !strings.Contains(out, `"csv me"`) {
		t.Fatalf("json = %q", out)
	}

	if _, err := h.run("export", "--format", "xml"); err == nil {
		t.Fatal("unknown format should fail")
	}
}

func TestExportToFile(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "1h")
	path := filepath.Join(t.TempDir(), "out.csv")
	out := h.mustRun("export", "-o", path)
	if !strings.Contains(out, "exported 1 entries to "+path) {
		t.Fatalf("export = %q", out)
	}
}

func TestUsersAreIsolated(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "1h", "mine")
	if out := h.mustRun("--user", "bob", "list"); strings.Contains(out, "mine") {
		t.Fatalf("bob should not see default's entries:\n%s", out)
	}
}

func TestBadBackend(t *testing.T) {
	h := newHarness(t)
	if _, err := h.run("--backend", "postgres", "list"); err == nil {
		t.Fatal("unknown backend should fail")
	}
}
