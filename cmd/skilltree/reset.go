package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/skilltree/pkg/session"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Deselect every skill",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, func(ctx context.Context, a *app) error {
			return a.withTree(ctx, func(ctx context.Context, tree session.Tree) error {
				n := tree.State().Selection.Len()
				tree.Reset(ctx)
				fmt.Fprintf(cmd.OutOrStdout(), "deselected %d skills\n", n)
				return nil
			})
		})
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
}
