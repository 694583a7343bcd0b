//go:build e2e

package e2e

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	msql "github.com/sadopc/tally/internal/mysql"
	"github.com/sadopc/tally/internal/store"
	"github.com/sadopc/tally/internal/tracker"
)

func startMySQL(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mysql:8.0",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_DATABASE":      "tally",
			"MYSQL_ROOT_PASSWORD": "secret",
			"MYSQL_USER":          "test",
			"MYSQL_PASSWORD":      "pass",
		},
		WaitingFor: wait.ForListeningPort("3306/tcp").WithStartupTimeout(90 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("failed to start mysql container: %v", err)
	}
	t.Cleanup(func() { _ = mysqlC.Terminate(context.Background()) })

	host, err := mysqlC.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := mysqlC.MappedPort(ctx, "3306/tcp")
	if err != nil {
		t.Fatalf("mapped port: %v", err)
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&multiStatements=true", "test", "pass", host, port.Port(), "tally")
}

func newClient(t *testing.T, ctx context.Context, dsn string, logger *slog.Logger) *msql.Client {
	t.Helper()
	// The listening port opens before mysqld accepts logins.
	var (
		c   *msql.Client
		err error
	)
	for i := 0; i < 30; i++ {
		c, err = msql.NewClient(ctx, dsn, logger)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	if err != nil {
		t.Fatalf("mysql client: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	if err := c.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return c
}

func TestTrackerPersistsToMySQL(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping in short mode")
	}
	ctx := context.Background()
	dsn := startMySQL(t)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	client := newClient(t, ctx, dsn, logger)

	// Migrations are idempotent.
	if err := client.Migrate(ctx); err != nil {
		t.Fatalf("migrate twice: %v", err)
	}

	sess := tracker.Session{UserID: "alice"}
	tr := tracker.New(ctx, sess, client, tracker.Options{Logger: logger})
	tr.AddProject("Acme")
	day := time.Date(2025, 8, 1, 0, 0, 0, 0, time.Local)
	a := tr.AddManual(5400, "Dev work", "Acme", day)
	b := tr.AddManual(3600, "Meeting", "General", day.AddDate(0, 0, 1))
	tr.ToggleInvoiced(b.ID)
	tr.Close()

	if f := tr.Failures(); len(f) != 0 {
		t.Fatalf("unexpected write failures: %+v", f)
	}

	// A fresh tracker on the same gateway sees the same state.
	again := tracker.New(ctx, sess, client, tracker.Options{Logger: logger})
	defer again.Close()
	entries := again.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ID != b.ID || !entries[0].Invoiced {
		t.Fatalf("unexpected newest entry: %+v", entries[0])
	}
	if entries[1].ID != a.ID || entries[1].Project != "Acme" || entries[1].Duration != 5400 {
		t.Fatalf("unexpected oldest entry: %+v", entries[1])
	}
	if got := again.Projects(); len(got) != 2 || got[1] != "Acme" {
		t.Fatalf("projects not restored: %v", got)
	}

	// Other sessions are isolated.
	bob, err := client.LoadEntries(ctx, "bob")
	if err != nil {
		t.Fatal(err)
	}
	if len(bob) != 0 {
		t.Fatalf("expected no entries for another user, got %d", len(bob))
	}
}

func TestInsertEntryIsIdempotent(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping in short mode")
	}
	ctx := context.Background()
	dsn := startMySQL(t)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	client := newClient(t, ctx, dsn, logger)

	start := time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC)
	e := store.TimeEntry{
		ID: "e1", Owner: "alice", Start: start, End: start.Add(90 * time.Minute),
		Duration: 5400, Label: "Dev work", Project: "General",
	}
	for i := 0; i < 2; i++ {
		if err := client.InsertEntry(ctx, e); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("sql open: %v", err)
	}
	defer db.Close()
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM time_entries").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 row, got %d", count)
	}

	// Running timer survives a round trip through the settings row.
	running := store.RunningTimer{Start: start, Label: "focus", Project: "General"}
	if err := client.UpsertSettings(ctx, "alice", store.SettingsPatch{Running: &running}); err != nil {
		t.Fatal(err)
	}
	s, err := client.LoadSettings(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if s.Running == nil || !s.Running.Start.Equal(start) || s.Running.Label != "focus" {
		t.Fatalf("running timer not stored: %+v", s.Running)
	}
	if err := client.UpsertSettings(ctx, "alice", store.SettingsPatch{ClearRunning: true}); err != nil {
		t.Fatal(err)
	}
	s, _ = client.LoadSettings(ctx, "alice")
	if s.Running != nil {
		t.Fatal("running timer not cleared")
	}
}
