package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/sadopc/tally/internal/duration"
	"github.com/sadopc/tally/internal/store"
)

const dateLayout = "2006-01-02"

type entryMode int

const (
	entryAdd entryMode = iota
	entryEdit
)

// entryForm is the add/edit form for a time entry. Field values live
// behind pointers so they survive the model being copied by value.
type entryForm struct {
	form *huh.Form
	mode entryMode
	id   string

	date     *string
	preset   *string
	dur      *string
	label    *string
	project  *string
	invoiced *bool

	// Edit mode remembers the prefilled values so untouched fields keep
	// what the grammar cannot express: seconds and the time of day.
	origDate string
	origDur  string
	origSecs int64
}

// entryValues is a submitted entry form.
type entryValues struct {
	secs     int64
	date     time.Time
	label    string
	project  string
	invoiced bool
}

func newAddForm(projects []string, active string, pending int64) *entryForm {
	f := &entryForm{mode: entryAdd}
	f.init("", "", "", active, false)
	if pending > 0 {
		*f.dur = duration.FormatHM(pending)
	}
	f.build(projects)
	return f
}

func newEditForm(projects []string, e store.TimeEntry, loc *time.Location) *entryForm {
	f := &entryForm{mode: entryEdit, id: e.ID}
	f.init(e.Start.In(loc).Format(dateLayout), duration.FormatHM(e.Duration), e.Label, e.Project, e.Invoiced)
	f.origDate = *f.date
	f.origDur = *f.dur
	f.origSecs = e.Duration
	f.build(projects)
	return f
}

func (f *entryForm) init(date, dur, label, project string, invoiced bool) {
	preset := ""
	f.date, f.preset, f.dur = &date, &preset, &dur
	f.label, f.project, f.invoiced = &label, &project, &invoiced
}

func (f *entryForm) build(projects []string) {
	presetOptions := []huh.Option[string]{huh.NewOption("Custom", "")}
	for _, p := range duration.Presets {
		presetOptions = append(presetOptions, huh.NewOption(p.Label, p.Label))
	}
	projectOptions := make([]huh.Option[string], len(projects))
	for i, p := range projects {
		projectOptions[i] = huh.NewOption(p, p)
	}

	fields := []huh.Field{
		huh.NewInput().Title("Date").
			Placeholder("YYYY-MM-DD, blank for today").
			Value(f.date).
			Validate(func(s string) error {
				_, err := parseDate(s, time.Local)
				return err
			}),
		huh.NewSelect[string]().Title("Preset").Options(presetOptions...).Value(f.preset),
		huh.NewInput().Title("Duration").
			Placeholder("1:30, 1h 30m, 1.5h or minutes").
			Value(f.dur).
			Validate(func(s string) error {
				if *f.preset != "" {
					return nil
				}
				_, err := parseDuration(s)
				return err
			}),
		huh.NewInput().Title("Label").Value(f.label),
		huh.NewSelect[string]().Title("Project").Options(projectOptions...).Value(f.project),
	}
	if f.mode == entryEdit {
		fields = append(fields, huh.NewConfirm().Title("Invoiced").Value(f.invoiced))
	}

	f.form = huh.NewForm(huh.NewGroup(fields...)).
		WithShowHelp(true).
		WithShowErrors(true)
}

func (f *entryForm) title() string {
	if f.mode == entryEdit {
		return "Edit Entry"
	}
	return "Add Entry"
}

// update forwards msg to the form and reports its state afterwards.
// Esc aborts the form.
func (f *entryForm) update(msg tea.Msg) (tea.Cmd, huh.FormState) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		return nil, huh.StateAborted
	}
	form, cmd := f.form.Update(msg)
	if hf, ok := form.(*huh.Form); ok {
		f.form = hf
	}
	return cmd, f.form.State
}

// values reads the submitted form.
func (f *entryForm) values(loc *time.Location) (entryValues, error) {
	v := entryValues{
		label:    strings.TrimSpace(*f.label),
		project:  *f.project,
		invoiced: *f.invoiced,
	}

	switch {
	case *f.preset != "":
		v.secs = presetSeconds(*f.preset)
	case f.mode == entryEdit && strings.TrimSpace(*f.dur) == f.origDur:
		v.secs = f.origSecs
	default:
		secs, err := parseDuration(*f.dur)
		if err != nil {
			return v, err
		}
		v.secs = secs
	}

	if f.mode == entryEdit && strings.TrimSpace(*f.date) == f.origDate {
		return v, nil
	}
	day, err := parseDate(*f.date, loc)
	if err != nil {
		return v, err
	}
	v.date = day
	return v, nil
}

func (f *entryForm) view() string {
	return f.form.View()
}

func parseDuration(s string) (int64, error) {
	secs, ok := duration.Parse(s)
	if !ok || secs < 1 {
		return 0, errors.New("enter a duration like 1:30, 1h 30m or 45")
	}
	return secs, nil
}

// parseDate reads YYYY-MM-DD; blank means no date.
func parseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(dateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("use YYYY-MM-DD")
	}
	return t, nil
}

func presetSeconds(label string) int64 {
	for _, p := range duration.Presets {
		if p.Label == label {
			return p.Secs
		}
	}
	return 0
}
