package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sadopc/tally/internal/store"
)

type jsonExport struct {
	ExportedAt string              `json:"exported_at"`
	Count      int                 `json:"count"`
	Entries    []store.EntryRecord `json:"entries"`
}

// ToJSON writes entries in their wire shape to a new file at path.
func ToJSON(entries []store.TimeEntry, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create json file: %w", err)
	}
	defer f.Close()
	return WriteJSON(f, entries, time.Now())
}

func WriteJSON(w io.Writer, entries []store.TimeEntry, now time.Time) error {
	export := jsonExport{
		ExportedAt: now.UTC().Format(time.RFC3339),
		Count:      len(entries),
		Entries:    make([]store.EntryRecord, 0, len(entries)),
	}
	for _, e := range entries {
		export.Entries = append(export.Entries, e.Record())
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}
