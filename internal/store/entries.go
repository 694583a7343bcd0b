package store

import (
	"context"
	"fmt"
)

func (s *Store) LoadEntries(ctx context.Context, userID string) ([]TimeEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner, start_ms, end_ms, duration, label, project, invoiced
		 FROM time_entries WHERE owner = ? ORDER BY start_ms DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []TimeEntry
	for rows.Next() {
		var r EntryRecord
		var invoiced int
		if err := rows.Scan(&r.ID, &r.Owner, &r.Start, &r.End, &r.Duration, &r.Label, &r.Project, &invoiced); err != nil {
			return nil, err
		}
		r.Invoiced = invoiced == 1
		entries = append(entries, r.Entry())
	}
	return entries, rows.Err()
}

func (s *Store) InsertEntry(ctx context.Context, e TimeEntry) error {
	r := e.Record()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO time_entries (id, owner, start_ms, end_ms, duration, label, project, invoiced)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		r.ID, r.Owner, r.Start, r.End, r.Duration, r.Label, r.Project, boolToInt(r.Invoiced),
	)
	if err != nil {
		return fmt.Errorf("insert entry %s: %w", r.ID, err)
	}
	return nil
}

func (s *Store) UpdateEntry(ctx context.Context, e TimeEntry) error {
	r := e.Record()
	_, err := s.db.ExecContext(ctx,
		`UPDATE time_entries
		 SET start_ms = ?, end_ms = ?, duration = ?, label = ?, project = ?, invoiced = ?
		 WHERE id = ? AND owner = ?`,
		r.Start, r.End, r.Duration, r.Label, r.Project, boolToInt(r.Invoiced), r.ID, r.Owner,
	)
	if err != nil {
		return fmt.Errorf("update entry %s: %w", r.ID, err)
	}
	return nil
}

func (s *Store) DeleteEntry(ctx context.Context, userID, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM time_entries WHERE id = ? AND owner = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete entry %s: %w", id, err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
