package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aretw0/skilltree/pkg/session"
)

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "List the nodes usable as a prerequisite",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, func(ctx context.Context, a *app) error {
			return a.withTree(ctx, func(ctx context.Context, tree session.Tree) error {
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				for _, n := range tree.Options() {
					label := n.Label
					if label == "" {
						label = "(start)"
					}
					fmt.Fprintf(w, "%s\t%s\n", n.ID, label)
				}
				return w.Flush()
			})
		})
	},
}

func init() {
	rootCmd.AddCommand(optionsCmd)
}
