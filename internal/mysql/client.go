// Package mysql is the shared-database backend: a store.Gateway backed by
// a MySQL server, for people who want one ledger across several machines.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	driver "github.com/go-sql-driver/mysql"

	"github.com/sadopc/tally/internal/store"
)

// Client implements store.Gateway on top of MySQL.
type Client struct {
	db  *sql.DB
	log *slog.Logger
}

var _ store.Gateway = (*Client)(nil)

// NewClient opens a MySQL connection using the provided DSN, e.g.
// user:pass@tcp(host:3306)/tally. parseTime and multiStatements are always
// switched on.
func NewClient(ctx context.Context, dsn string, log *slog.Logger) (*Client, error) {
	if dsn == "" {
		return nil, errors.New("mysql: DSN is required")
	}
	if log == nil {
		log = slog.Default()
	}
	dsn, err := normalizeDSN(dsn)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	c, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(c); err != nil {
		db.Close()
		return nil, err
	}
	return &Client{db: db, log: log}, nil
}

// normalizeDSN turns on the options the gateway depends on: DATETIME
// columns scanned into time.Time, and multi-statement migration files.
func normalizeDSN(dsn string) (string, error) {
	cfg, err := driver.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("mysql: parse DSN: %w", err)
	}
	cfg.ParseTime = true
	cfg.MultiStatements = true
	return cfg.FormatDSN(), nil
}

func (c *Client) Close() error { return c.db.Close() }

func (c *Client) LoadSettings(ctx context.Context, userID string) (*store.Settings, error) {
	return loadSettings(ctx, c.db, userID, false)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func loadSettings(ctx context.Context, q queryer, userID string, lock bool) (*store.Settings, error) {
	query := `SELECT theme, projects, running FROM user_settings WHERE id = ?`
	if lock {
		query += ` FOR UPDATE`
	}
	var row store.SettingsRow
	err := q.QueryRowContext(ctx, query, userID).Scan(&row.Theme, &row.Projects, &row.Running)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mysql: load settings %q: %w", userID, err)
	}
	return store.DecodeSettings(row)
}

// UpsertSettings merges patch into the stored row under a row lock.
func (c *Client) UpsertSettings(ctx context.Context, userID string, patch store.SettingsPatch) error {
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	cur, err := loadSettings(ctx, tx, userID, true)
	if err != nil {
		return err
	}
	if cur == nil {
		d := store.DefaultSettings()
		cur = &d
	}
	patch.Apply(cur)

	row, err := store.EncodeSettings(*cur)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO user_settings (id, theme, projects, running)
VALUES (?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  theme=VALUES(theme),
  projects=VALUES(projects),
  running=VALUES(running);
`
	if _, err := tx.ExecContext(ctx, q, userID, row.Theme, row.Projects, row.Running); err != nil {
		return fmt.Errorf("mysql: upsert settings %q: %w", userID, err)
	}
	return tx.Commit()
}

func (c *Client) LoadEntries(ctx context.Context, userID string) ([]store.TimeEntry, error) {
	rows, err := c.db.QueryContext(ctx, `
SELECT id, owner, start_at, end_at, duration_sec, label, project, invoiced
FROM time_entries
WHERE owner = ?
ORDER BY start_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("mysql: load entries: %w", err)
	}
	defer rows.Close()

	var entries []store.TimeEntry
	for rows.Next() {
		var e store.TimeEntry
		if err := rows.Scan(&e.ID, &e.Owner, &e.Start, &e.End, &e.Duration, &e.Label, &e.Project, &e.Invoiced); err != nil {
			return nil, fmt.Errorf("mysql: scan entry: %w", err)
		}
		e.Start = e.Start.Local()
		e.End = e.End.Local()
		if e.Project == "" {
			e.Project = store.DefaultProject
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// InsertEntry is idempotent on the entry id.
func (c *Client) InsertEntry(ctx context.Context, e store.TimeEntry) error {
	const q = `
INSERT IGNORE INTO time_entries
  (id, owner, start_at, end_at, duration_sec, label, project, invoiced)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?);
`
	if _, err := c.db.ExecContext(ctx, q,
		e.ID, e.Owner, e.Start.UTC(), e.End.UTC(), e.Duration, e.Label, projectOf(e), e.Invoiced,
	); err != nil {
		return fmt.Errorf("mysql: insert entry %s: %w", e.ID, err)
	}
	c.log.Debug("mysql entry inserted", slog.String("id", e.ID))
	return nil
}

func (c *Client) UpdateEntry(ctx context.Context, e store.TimeEntry) error {
	const q = `
UPDATE time_entries
SET start_at=?, end_at=?, duration_sec=?, label=?, project=?, invoiced=?
WHERE id=? AND owner=?;
`
	if _, err := c.db.ExecContext(ctx, q,
		e.Start.UTC(), e.End.UTC(), e.Duration, e.Label, projectOf(e), e.Invoiced, e.ID, e.Owner,
	); err != nil {
		return fmt.Errorf("mysql: update entry %s: %w", e.ID, err)
	}
	return nil
}

func (c *Client) DeleteEntry(ctx context.Context, userID, id string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM time_entries WHERE id=? AND owner=?`, id, userID); err != nil {
		return fmt.Errorf("mysql: delete entry %s: %w", id, err)
	}
	return nil
}

func projectOf(e store.TimeEntry) string {
	if e.Project == "" {
		return store.DefaultProject
	}
	return e.Project
}
