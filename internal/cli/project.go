package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/sadopc/tally/internal/store"
	"github.com/sadopc/tally/internal/tracker"
)

func addProject(topLevel *cobra.Command, a *app) {
	cmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"projects"},
		Short:   "Manage projects",
		Example: `
tally project add Acme
tally project mv Acme "Acme Corp"
tally project rm "Acme Corp"
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	addProjectList(cmd, a)
	addProjectAdd(cmd, a)
	addProjectRemove(cmd, a)
	addProjectMove(cmd, a)

	topLevel.AddCommand(cmd)
}

func addProjectList(parent *cobra.Command, a *app) {
	parent.AddCommand(&cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List projects",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withTracker(cmd, func(tr *tracker.Tracker) error {
				active := tr.ActiveProject()
				tbl := uitable.New()
				tbl.Separator = "  "
				for i, p := range tr.Projects() {
					c := color.New(barColors[i%len(barColors)])
					marker := " "
					if p == active {
						marker = color.New(color.Bold).Sprint("*")
					}
					tbl.AddRow(marker, c.Sprint("●"), p, color.New(color.Faint).Sprint(tr.ColorOf(p)))
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), tbl)
				return nil
			})
		},
	})
}

func addProjectAdd(parent *cobra.Command, a *app) {
	parent.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Add a project",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args, " ")
			return a.withTracker(cmd, func(tr *tracker.Tracker) error {
				if !tr.AddProject(name) {
					return fmt.Errorf("project %q already exists or is blank", name)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", color.New(color.FgGreen, color.Bold).Sprint("added"), strings.TrimSpace(name))
				return nil
			})
		},
	})
}

func addProjectRemove(parent *cobra.Command, a *app) {
	parent.AddCommand(&cobra.Command{
		Use:     "rm <name>",
		Aliases: []string{"delete"},
		Short:   "Delete a project; its entries move to " + store.DefaultProject,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args, " ")
			return a.withTracker(cmd, func(tr *tracker.Tracker) error {
				if name == store.DefaultProject {
					return fmt.Errorf("%s cannot be deleted", store.DefaultProject)
				}
				if !tr.DeleteProject(name) {
					return fmt.Errorf("%w: %s", tracker.ErrUnknownProject, name)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", color.New(color.FgRed, color.Bold).Sprint("deleted"), name)
				return nil
			})
		},
	})
}

func addProjectMove(parent *cobra.Command, a *app) {
	parent.AddCommand(&cobra.Command{
		Use:     "mv <from> <to>",
		Aliases: []string{"rename"},
		Short:   "Rename a project",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withTracker(cmd, func(tr *tracker.Tracker) error {
				if !tr.RenameProject(args[0], args[1]) {
					return fmt.Errorf("cannot rename %q to %q", args[0], args[1])
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s → %s\n", color.New(color.Bold).Sprint("renamed"), args[0], strings.TrimSpace(args[1]))
				return nil
			})
		},
	})
}
