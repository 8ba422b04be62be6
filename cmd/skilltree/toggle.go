package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aretw0/skilltree/internal/presentation/tui"
	"github.com/aretw0/skilltree/pkg/domain"
	"github.com/aretw0/skilltree/pkg/session"
)

var toggleCmd = &cobra.Command{
	Use:   "toggle <node-id>...",
	Short: "Select or deselect skills",
	Long: `Clicks each node in order. An available skill becomes selected; a selected
skill is deselected together with every skill that depends on it. Locked
skills are left unchanged.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, func(ctx context.Context, a *app) error {
			return a.withTree(ctx, func(ctx context.Context, tree session.Tree) error {
				out := cmd.OutOrStdout()
				for _, id := range args {
					before := tree.State()
					tree.Click(ctx, id)
					after := tree.State()
					printDiff(out, id, domain.Diff(before, after), after)
				}
				return nil
			})
		})
	},
}

func init() {
	rootCmd.AddCommand(toggleCmd)
}

// printDiff reports what a click changed, one coloured line per node.
func printDiff(w io.Writer, clicked string, diff *domain.StateDiff, state domain.State) {
	if diff == nil {
		fmt.Fprintf(w, "%s: no change (locked, start or unknown node)\n", clicked)
		return
	}
	rows := map[string]tui.Row{}
	for _, r := range tui.Rows(state.Nodes, state.Edges) {
		rows[r.ID] = r
	}
	report := func(verb string, ids []string) {
		for _, id := range ids {
			fmt.Fprintf(w, "%-10s %s\n", verb, tui.Status(rows[id]))
		}
	}
	report("selected", diff.Selected)
	report("deselected", diff.Deselected)
	report("unlocked", diff.Unlocked)
	report("locked", diff.Locked)
}
