package store

import "context"

// Gateway is the durable store behind the tracker. Writes are treated as
// idempotent: an update or delete that matches no row is not an error.
type Gateway interface {
	// LoadSettings returns nil, nil when the user has no settings yet.
	LoadSettings(ctx context.Context, userID string) (*Settings, error)
	UpsertSettings(ctx context.Context, userID string, patch SettingsPatch) error
	// LoadEntries returns the user's entries ordered by start, newest first.
	LoadEntries(ctx context.Context, userID string) ([]TimeEntry, error)
	InsertEntry(ctx context.Context, e TimeEntry) error
	// UpdateEntry matches on ID and Owner.
	UpdateEntry(ctx context.Context, e TimeEntry) error
	DeleteEntry(ctx context.Context, userID, id string) error
}

// DefaultSettings is what a user without stored settings starts with.
func DefaultSettings() Settings {
	return Settings{
		Theme:    "light",
		Projects: []string{DefaultProject},
	}
}
