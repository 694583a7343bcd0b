package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/sadopc/tally/internal/duration"
	"github.com/sadopc/tally/internal/export"
	"github.com/sadopc/tally/internal/summary"
	"github.com/sadopc/tally/internal/tracker"
)

const barWidth = 20

// barColors mirrors tracker.Palette for terminals without true color.
var barColors = []color.Attribute{
	color.FgGreen, color.FgBlue, color.FgYellow, color.FgHiMagenta, color.FgMagenta,
	color.FgCyan, color.FgHiYellow, color.FgHiBlue, color.FgRed, color.FgHiCyan,
}

type filterOptions struct {
	filter string
	from   string
	to     string
}

func (o *filterOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.filter, "filter", "f", "", "uninvoiced, week, month, custom or all (default: uninvoiced)")
	cmd.Flags().StringVar(&o.from, "from", "", "first day of a custom range, YYYY-MM-DD")
	cmd.Flags().StringVar(&o.to, "to", "", "last day of a custom range, YYYY-MM-DD")
}

// apply sets the tracker's filter. Giving --from or --to alone implies the
// custom filter.
func (o *filterOptions) apply(tr *tracker.Tracker) error {
	name := o.filter
	if name == "" && (o.from != "" || o.to != "") {
		name = string(summary.Custom)
	}
	f, err := summary.ParseFilter(name)
	if err != nil {
		return err
	}
	b, err := summary.ParseBounds(o.from, o.to, tr.Location())
	if err != nil {
		return err
	}
	tr.SetFilter(f, b)
	return nil
}

func addSummary(topLevel *cobra.Command, a *app) {
	fo := &filterOptions{}

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show time per project",
		Example: `
tally summary
tally summary --filter week
tally summary --from 2025-06-01 --to 2025-06-30
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withTracker(cmd, func(tr *tracker.Tracker) error {
				if err := fo.apply(tr); err != nil {
					return err
				}
				f, _ := tr.Filter()
				projects, grand := tr.Summary()
				out := cmd.OutOrStdout()
				_, _ = fmt.Fprintln(out, color.New(color.Bold, color.Underline).Sprint(f.Label()))
				_, _ = fmt.Fprintln(out, summaryTable(tr, projects, grand))
				return nil
			})
		},
	}

	fo.addFlags(cmd)
	topLevel.AddCommand(cmd)
}

func summaryTable(tr *tracker.Tracker, projects []summary.ProjectSummary, grand int64) string {
	if len(projects) == 0 {
		return color.New(color.Faint, color.Italic).Sprint(" no entries")
	}
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Project"), bold.Sprint("Time"), bold.Sprint("Hours"),
		bold.Sprint("Uninvoiced"), bold.Sprint("Entries"), "")
	all := tr.Projects()
	for _, ps := range projects {
		frac := ps.Fraction(grand)
		c := color.New(barColors[max(0, indexOf(all, ps.Project))%len(barColors)])
		tbl.AddRow(
			c.Sprint("● ")+ps.Project,
			duration.FormatHM(ps.TotalSeconds),
			duration.Decimal(ps.TotalSeconds),
			duration.FormatHM(ps.UninvoicedSeconds),
			ps.Count,
			c.Sprint(bar(frac, barWidth))+faint.Sprintf(" %3.0f%%", frac*100),
		)
	}
	tbl.AddRow("", "", "", "", "", "")
	tbl.AddRow(bold.Sprint("Total"), bold.Sprint(duration.FormatHM(grand)), bold.Sprint(duration.Decimal(grand)), "", "", "")
	return tbl.String()
}

func bar(frac float64, width int) string {
	n := int(frac*float64(width) + 0.5)
	n = min(max(n, 0), width)
	return strings.Repeat("█", n) + strings.Repeat("░", width-n)
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}

func addReport(topLevel *cobra.Command, a *app) {
	fo := &filterOptions{}
	var copyOut bool

	cmd := &cobra.Command{
		Use:   "report <project>",
		Short: "Print a plain-text report of one project's entries",
		Example: `
tally report Acme
tally report Acme --filter month --copy
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withTracker(cmd, func(tr *tracker.Tracker) error {
				if err := fo.apply(tr); err != nil {
					return err
				}
				ps, ok := tr.ProjectSummary(args[0])
				if !ok {
					f, _ := tr.Filter()
					return fmt.Errorf("no entries for %s (%s)", args[0], strings.ToLower(f.Label()))
				}
				text := export.Report(ps, tr.Location())
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), text)
				if copyOut {
					if err := export.Copy(text); err != nil {
						return err
					}
					_, _ = fmt.Fprintln(cmd.ErrOrStderr(), color.New(color.Faint).Sprint("copied to clipboard"))
				}
				return nil
			})
		},
	}

	fo.addFlags(cmd)
	cmd.Flags().BoolVarP(&copyOut, "copy", "c", false, "also copy the report to the clipboard")
	topLevel.AddCommand(cmd)
}

func addInvoice(topLevel *cobra.Command, a *app) {
	fo := &filterOptions{}

	cmd := &cobra.Command{
		Use:   "invoice <project>",
		Short: "Mark a project's entries as invoiced",
		Long:  "Mark every not yet invoiced entry of the project that the filter selects.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withTracker(cmd, func(tr *tracker.Tracker) error {
				if err := fo.apply(tr); err != nil {
					return err
				}
				n := tr.MarkProjectInvoiced(args[0])
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %d %s on %s\n",
					color.New(color.FgGreen, color.Bold).Sprint("invoiced"), n, plural(n, "entry", "entries"), args[0])
				return nil
			})
		},
	}

	fo.addFlags(cmd)
	topLevel.AddCommand(cmd)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
