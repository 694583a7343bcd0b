package export

import (
	"fmt"
	"path/filepath"
	"time"

	homedir "github.com/mitchellh/go-homedir"
)

// DefaultPath is where an export lands when no path is given:
// ~/tally-export-DATE.FORMAT.
func DefaultPath(format string, now time.Time) (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fmt.Sprintf("tally-export-%s.%s", now.Format("2006-01-02"), format)), nil
}
