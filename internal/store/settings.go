package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// SettingsRow is the column form of Settings shared by the SQL gateways.
type SettingsRow struct {
	Theme    string
	Projects string
	Running  sql.NullString
}

// EncodeSettings converts s to its column form.
func EncodeSettings(s Settings) (SettingsRow, error) {
	projects := s.Projects
	if projects == nil {
		projects = []string{}
	}
	pb, err := json.Marshal(projects)
	if err != nil {
		return SettingsRow{}, fmt.Errorf("encode projects: %w", err)
	}
	row := SettingsRow{Theme: s.Theme, Projects: string(pb)}
	if s.Running != nil {
		rb, err := json.Marshal(s.Running)
		if err != nil {
			return SettingsRow{}, fmt.Errorf("encode running timer: %w", err)
		}
		row.Running = sql.NullString{String: string(rb), Valid: true}
	}
	return row, nil
}

// DecodeSettings is the inverse of EncodeSettings.
func DecodeSettings(row SettingsRow) (*Settings, error) {
	s := &Settings{Theme: row.Theme}
	if row.Projects != "" {
		if err := json.Unmarshal([]byte(row.Projects), &s.Projects); err != nil {
			return nil, fmt.Errorf("decode projects: %w", err)
		}
	}
	if row.Running.Valid && row.Running.String != "" && row.Running.String != "null" {
		var r RunningTimer
		if err := json.Unmarshal([]byte(row.Running.String), &r); err != nil {
			return nil, fmt.Errorf("decode running timer: %w", err)
		}
		s.Running = &r
	}
	return s, nil
}

func (s *Store) LoadSettings(ctx context.Context, userID string) (*Settings, error) {
	return loadSettings(ctx, s.db, userID)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func loadSettings(ctx context.Context, q queryer, userID string) (*Settings, error) {
	var row SettingsRow
	err := q.QueryRowContext(ctx,
		`SELECT theme, projects, running FROM user_settings WHERE id = ?`, userID,
	).Scan(&row.Theme, &row.Projects, &row.Running)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load settings %q: %w", userID, err)
	}
	return DecodeSettings(row)
}

// UpsertSettings merges patch into the stored settings, creating the row
// from DefaultSettings when it does not exist.
func (s *Store) UpsertSettings(ctx context.Context, userID string, patch SettingsPatch) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin settings tx: %w", err)
	}
	defer tx.Rollback()

	cur, err := loadSettings(ctx, tx, userID)
	if err != nil {
		return err
	}
	if cur == nil {
		d := DefaultSettings()
		cur = &d
	}
	patch.Apply(cur)

	row, err := EncodeSettings(*cur)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO user_settings (id, theme, projects, running) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET theme = excluded.theme, projects = excluded.projects, running = excluded.running`,
		userID, row.Theme, row.Projects, row.Running,
	)
	if err != nil {
		return fmt.Errorf("upsert settings %q: %w", userID, err)
	}
	return tx.Commit()
}
