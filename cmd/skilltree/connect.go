package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/skilltree/pkg/session"
)

var connectCmd = &cobra.Command{
	Use:   "connect <source> <target>",
	Short: "Make target require source",
	Long:  `Adds a prerequisite edge. Edges that would create a cycle are rejected.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, func(ctx context.Context, a *app) error {
			return a.withTree(ctx, func(ctx context.Context, tree session.Tree) error {
				edge, err := tree.Connect(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "connected %s: %s -> %s\n", edge.ID, edge.Source, edge.Target)
				return nil
			})
		})
	},
}

func init() {
	rootCmd.AddCommand(connectCmd)
}
