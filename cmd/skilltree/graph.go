package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/skilltree/internal/presentation/graph"
	"github.com/aretw0/skilltree/pkg/session"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the tree as a Mermaid diagram",
	Long:  `Outputs a Mermaid diagram (graph TD) of the tree with selected and locked skills styled.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, func(ctx context.Context, a *app) error {
			return a.withTree(ctx, func(ctx context.Context, tree session.Tree) error {
				state := tree.State()
				fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(state.Nodes, state.Edges))
				return nil
			})
		})
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
