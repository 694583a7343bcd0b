package store

import (
	"encoding/json"
	"time"
)

// DefaultProject is the project every entry falls back to. It always exists.
const DefaultProject = "General"

type TimeEntry struct {
	ID       string
	Owner    string
	Start    time.Time
	End      time.Time
	Duration int64 // seconds
	Label    string
	Project  string
	Invoiced bool
}

// RunningTimer is the single in-progress interval. A nil *RunningTimer means idle.
type RunningTimer struct {
	Start   time.Time
	Label   string
	Project string
}

type runningRecord struct {
	Start   int64  `json:"start"`
	Label   string `json:"label"`
	Project string `json:"project"`
}

// MarshalJSON stores the start as epoch milliseconds.
func (r RunningTimer) MarshalJSON() ([]byte, error) {
	return json.Marshal(runningRecord{Start: r.Start.UnixMilli(), Label: r.Label, Project: r.Project})
}

func (r *RunningTimer) UnmarshalJSON(b []byte) error {
	var rec runningRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return err
	}
	r.Start = time.UnixMilli(rec.Start)
	r.Label = rec.Label
	r.Project = rec.Project
	return nil
}

type Settings struct {
	Theme    string
	Projects []string
	Running  *RunningTimer
}

// SettingsPatch is a partial settings update. Zero fields are left unchanged;
// ClearRunning removes the stored running timer.
type SettingsPatch struct {
	Theme        *string
	Projects     []string
	Running      *RunningTimer
	ClearRunning bool
}

// Apply merges p into s.
func (p SettingsPatch) Apply(s *Settings) {
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
	if p.Projects != nil {
		s.Projects = append([]string(nil), p.Projects...)
	}
	if p.Running != nil {
		r := *p.Running
		s.Running = &r
	}
	if p.ClearRunning {
		s.Running = nil
	}
}

// EntryRecord is the wire shape of a time entry: timestamps in epoch
// milliseconds, duration in seconds.
type EntryRecord struct {
	ID       string `json:"id"`
	Owner    string `json:"owner"`
	Start    int64  `json:"start"`
	End      int64  `json:"end"`
	Duration int64  `json:"duration"`
	Label    string `json:"label"`
	Project  string `json:"project"`
	Invoiced bool   `json:"invoiced"`
}

func (e TimeEntry) Record() EntryRecord {
	project := e.Project
	if project == "" {
		project = DefaultProject
	}
	return EntryRecord{
		ID:       e.ID,
		Owner:    e.Owner,
		Start:    e.Start.UnixMilli(),
		End:      e.End.UnixMilli(),
		Duration: e.Duration,
		Label:    e.Label,
		Project:  project,
		Invoiced: e.Invoiced,
	}
}

func (r EntryRecord) Entry() TimeEntry {
	project := r.Project
	if project == "" {
		project = DefaultProject
	}
	return TimeEntry{
		ID:       r.ID,
		Owner:    r.Owner,
		Start:    time.UnixMilli(r.Start),
		End:      time.UnixMilli(r.End),
		Duration: r.Duration,
		Label:    r.Label,
		Project:  project,
		Invoiced: r.Invoiced,
	}
}
