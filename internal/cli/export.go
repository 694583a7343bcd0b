package cli

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sadopc/tally/internal/export"
	"github.com/sadopc/tally/internal/tracker"
)

func addExport(topLevel *cobra.Command, a *app) {
	fo := &filterOptions{}
	var (
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export entries as CSV or JSON",
		Example: `
tally export --format csv
tally export --format json --out - --filter all
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != "csv" && format != "json" {
				return fmt.Errorf("unknown format %q (want csv or json)", format)
			}
			if fo.filter == "" && fo.from == "" && fo.to == "" {
				fo.filter = "all"
			}
			return a.withTracker(cmd, func(tr *tracker.Tracker) error {
				if err := fo.apply(tr); err != nil {
					return err
				}
				entries := tr.Filtered()

				if out == "-" {
					if format == "csv" {
						return export.WriteCSV(cmd.OutOrStdout(), entries)
					}
					return export.WriteJSON(cmd.OutOrStdout(), entries, time.Now())
				}

				path := out
				if path == "" {
					var err error
					if path, err = export.DefaultPath(format, time.Now()); err != nil {
						return err
					}
				}
				var err error
				if format == "csv" {
					err = export.ToCSV(entries, path)
				} else {
					err = export.ToJSON(entries, path)
				}
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %d entries to %s\n",
					color.New(color.FgGreen, color.Bold).Sprint("exported"), len(entries), path)
				return nil
			})
		},
	}

	fo.addFlags(cmd)
	cmd.Flags().StringVar(&format, "format", "csv", "csv or json")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, - for stdout (default: ~/tally-export-DATE.FORMAT)")
	topLevel.AddCommand(cmd)
}
