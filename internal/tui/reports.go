package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/tally/internal/duration"
	"github.com/sadopc/tally/internal/export"
	"github.com/sadopc/tally/internal/summary"
	"github.com/sadopc/tally/internal/tracker"
)

// reportsModel is the summary view: per-project totals under the active
// filter, with invoicing and report export for the selected project.
type reportsModel struct {
	tr     *tracker.Tracker
	width  int
	height int

	projects []summary.ProjectSummary
	grand    int64
	cursor   int
	preview  bool

	chart barchart.Model

	rangeForm *huh.Form
	rangeFrom *string
	rangeTo   *string

	// copyText is swapped out in tests.
	copyText func(string) error
}

func newReportsModel(tr *tracker.Tracker) reportsModel {
	from, to := "", ""
	r := reportsModel{
		tr:        tr,
		chart:     barchart.New(60, 10),
		rangeFrom: &from,
		rangeTo:   &to,
		copyText:  export.Copy,
	}
	r.refresh()
	return r
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
	r.buildChart()
}

func (r *reportsModel) refresh() {
	r.projects, r.grand = r.tr.Summary()
	if r.cursor >= len(r.projects) {
		r.cursor = max(0, len(r.projects)-1)
	}
	r.buildChart()
}

func (r reportsModel) capturing() bool {
	return r.rangeForm != nil
}

func (r reportsModel) selected() (summary.ProjectSummary, bool) {
	if r.cursor < 0 || r.cursor >= len(r.projects) {
		return summary.ProjectSummary{}, false
	}
	return r.projects[r.cursor], true
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	if r.rangeForm != nil {
		return r.updateRangeForm(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Filter), key.Matches(msg, keys.Right):
			return r.cycleFilter(1)
		case key.Matches(msg, keys.Left):
			return r.cycleFilter(-1)
		case key.Matches(msg, keys.Range):
			return r.showRangeForm()
		case key.Matches(msg, keys.Up):
			if r.cursor > 0 {
				r.cursor--
			}
		case key.Matches(msg, keys.Down):
			if r.cursor < len(r.projects)-1 {
				r.cursor++
			}
		case key.Matches(msg, keys.Enter):
			r.preview = !r.preview
		case key.Matches(msg, keys.MarkAll):
			ps, ok := r.selected()
			if !ok {
				return r, nil
			}
			n := r.tr.MarkProjectInvoiced(ps.Project)
			r.refresh()
			return r, statusCmd(fmt.Sprintf("Marked %d entries of %s invoiced", n, ps.Project), false)
		case key.Matches(msg, keys.Copy):
			ps, ok := r.selected()
			if !ok {
				return r, nil
			}
			if err := r.copyText(export.Report(ps, r.tr.Location())); err != nil {
				return r, statusCmd(err.Error(), true)
			}
			return r, statusCmd("Report for "+ps.Project+" copied", false)
		}
	}
	return r, nil
}

func (r reportsModel) cycleFilter(step int) (reportsModel, tea.Cmd) {
	f, b := r.tr.Filter()
	i := 0
	for j, v := range summary.Filters {
		if v == f {
			i = j
		}
	}
	n := len(summary.Filters)
	next := summary.Filters[((i+step)%n+n)%n]
	r.tr.SetFilter(next, b)
	r.refresh()
	return r, nil
}

func (r reportsModel) showRangeForm() (reportsModel, tea.Cmd) {
	_, b := r.tr.Filter()
	*r.rangeFrom, *r.rangeTo = "", ""
	if !b.From.IsZero() {
		*r.rangeFrom = b.From.Format(dateLayout)
	}
	if !b.To.IsZero() {
		*r.rangeTo = b.To.Format(dateLayout)
	}
	validate := func(s string) error {
		_, err := parseDate(s, r.tr.Location())
		return err
	}
	r.rangeForm = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("From").Placeholder("YYYY-MM-DD, blank for open").Value(r.rangeFrom).Validate(validate),
			huh.NewInput().Title("To").Placeholder("YYYY-MM-DD, blank for open").Value(r.rangeTo).Validate(validate),
		),
	).WithShowHelp(true).WithShowErrors(true)
	return r, r.rangeForm.Init()
}

func (r reportsModel) updateRangeForm(msg tea.Msg) (reportsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			r.rangeForm = nil
			return r, nil
		}
	}

	form, cmd := r.rangeForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		r.rangeForm = f
	}

	if r.rangeForm.State == huh.StateCompleted {
		r.rangeForm = nil
		return r.applyRange(*r.rangeFrom, *r.rangeTo)
	}
	return r, cmd
}

// applyRange switches to the custom filter over [from, to]. Either side
// may be blank.
func (r reportsModel) applyRange(from, to string) (reportsModel, tea.Cmd) {
	b, err := summary.ParseBounds(strings.TrimSpace(from), strings.TrimSpace(to), r.tr.Location())
	if err != nil {
		return r, statusCmd(err.Error(), true)
	}
	r.tr.SetFilter(summary.Custom, b)
	r.refresh()
	return r, nil
}

func (r *reportsModel) buildChart() {
	chartWidth := max(r.width-8, 20)
	chartHeight := 10
	if r.height > 36 {
		chartHeight = 14
	}

	r.chart = barchart.New(chartWidth, chartHeight)

	var bars []barchart.BarData
	for _, ps := range r.projects {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(r.tr.ColorOf(ps.Project)))
		bars = append(bars, barchart.BarData{
			Label: truncate(ps.Project, 10),
			Values: []barchart.BarValue{{
				Name:  ps.Project,
				Value: float64(ps.TotalSeconds) / 3600.0,
				Style: style,
			}},
		})
	}
	if len(bars) == 0 {
		return
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r reportsModel) view() string {
	w := r.width - 4

	if r.rangeForm != nil {
		content := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Custom Range"), "", r.rangeForm.View())
		return activePanelStyle.Width(w).Render(content)
	}

	f, b := r.tr.Filter()
	var tabs []string
	for _, v := range summary.Filters {
		if v == f {
			tabs = append(tabs, activeTabStyle.Render(v.Label()))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(v.Label()))
		}
	}
	filterTabs := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	totalLabel := highlightStyle.Render(fmt.Sprintf("%s  (%s)", duration.FormatHM(r.grand), formatHours(r.grand)))
	header := lipgloss.JoinHorizontal(lipgloss.Bottom, titleStyle.Render("Summary"), "  ", totalLabel)

	parts := []string{header, filterTabs}
	if f == summary.Custom {
		parts = append(parts, mutedStyle.Render("  "+rangeLabel(b)))
	}

	if len(r.projects) == 0 {
		parts = append(parts, "", mutedStyle.Render("  No entries for this filter"))
	} else if r.preview {
		ps, _ := r.selected()
		parts = append(parts, "", export.Report(ps, r.tr.Location()))
	} else {
		parts = append(parts, "", r.chart.View(), "", r.renderTable(w))
	}

	parts = append(parts, "", mutedStyle.Render("  f/←/→: filter  g: range  m: mark invoiced  c: copy report  enter: preview"))
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (r reportsModel) renderTable(w int) string {
	barWidth := max(min(w-60, 30), 10)

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-22s %9s %7s %11s %7s", "Project", "Time", "Hours", "Uninvoiced", "Entries")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", max(0, min(w-6, 62+barWidth)))))

	for i, ps := range r.projects {
		cursor := "  "
		style := normalItemStyle
		if i == r.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		color := r.tr.ColorOf(ps.Project)
		bar := progress.New(progress.WithSolidFill(color), progress.WithWidth(barWidth))
		row := style.Render(fmt.Sprintf("%s%s %-20s %9s %7s %11s %7d",
			cursor, dot(color), truncate(ps.Project, 20),
			duration.FormatHM(ps.TotalSeconds), duration.Decimal(ps.TotalSeconds),
			duration.FormatHM(ps.UninvoicedSeconds), ps.Count,
		))
		rows = append(rows, row+"  "+bar.ViewAs(ps.Fraction(r.grand)))
	}
	return strings.Join(rows, "\n")
}

func rangeLabel(b summary.Bounds) string {
	from, to := "…", "…"
	if !b.From.IsZero() {
		from = b.From.Format("Jan 02, 2006")
	}
	if !b.To.IsZero() {
		to = b.To.Format("Jan 02, 2006")
	}
	return from + " to " + to
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
