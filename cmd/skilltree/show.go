package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/skilltree/internal/presentation/tui"
	"github.com/aretw0/skilltree/pkg/session"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the skills of a tree",
	Long:  `Renders every skill with its state (selected, available or locked), cost and prerequisites.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		plain, _ := cmd.Flags().GetBool("plain")
		return run(cmd, func(ctx context.Context, a *app) error {
			var md string
			err := a.withTree(ctx, func(ctx context.Context, tree session.Tree) error {
				state := tree.State()
				spent, budget := tree.Points()
				md = tui.Markdown("Skill tree: "+a.cfg.Tree, state.Nodes, state.Edges, spent, budget)
				return nil
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if plain {
				fmt.Fprint(out, md)
				return nil
			}
			tui.PrintBanner(out)
			rendered, err := tui.NewRenderer()(md)
			if err != nil {
				a.logger.Warn("markdown rendering failed, printing raw", "err", err)
			}
			fmt.Fprint(out, rendered)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().Bool("plain", false, "Print raw markdown without banner or styling")
}
