package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/sadopc/tally/internal/duration"
	"github.com/sadopc/tally/internal/store"
)

// ToCSV writes entries to a new CSV file at path.
func ToCSV(entries []store.TimeEntry, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()
	return WriteCSV(f, entries)
}

func WriteCSV(out io.Writer, entries []store.TimeEntry) error {
	w := csv.NewWriter(out)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"ID", "Project", "Start", "End", "Duration (s)", "Duration", "Label", "Invoiced"}); err != nil {
		return err
	}

	for _, e := range entries {
		project := e.Project
		if project == "" {
			project = store.DefaultProject
		}
		row := []string{
			e.ID,
			project,
			e.Start.Local().Format(time.RFC3339),
			e.End.Local().Format(time.RFC3339),
			strconv.FormatInt(e.Duration, 10),
			formatDuration(e.Duration),
			e.Label,
			strconv.FormatBool(e.Invoiced),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func formatDuration(secs int64) string {
	return duration.Clock(time.Duration(secs) * time.Second)
}
