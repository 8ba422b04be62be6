package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/skilltree/pkg/domain"
	"github.com/aretw0/skilltree/pkg/session"
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a skill to the tree",
	Long:  `Appends a new skill, optionally requiring an existing node. The new skill starts unselected.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var input domain.SkillInput
		input.Label, _ = cmd.Flags().GetString("label")
		input.Description, _ = cmd.Flags().GetString("description")
		input.Category, _ = cmd.Flags().GetString("category")
		input.Cost, _ = cmd.Flags().GetInt("cost")
		input.Position.X, _ = cmd.Flags().GetFloat64("x")
		input.Position.Y, _ = cmd.Flags().GetFloat64("y")
		requires, _ := cmd.Flags().GetString("requires")

		return run(cmd, func(ctx context.Context, a *app) error {
			return a.withTree(ctx, func(ctx context.Context, tree session.Tree) error {
				node, err := tree.AddNode(ctx, input, requires)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s)\n", node.ID, node.Label)
				return nil
			})
		})
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringP("label", "l", "", "Skill name (required)")
	addCmd.Flags().StringP("description", "d", "", "Short description")
	addCmd.Flags().StringP("category", "c", "", "movement, combat or utility (default movement)")
	addCmd.Flags().Int("cost", 0, "Skill point cost, 1-10 (default 1)")
	addCmd.Flags().StringP("requires", "r", "", "Id of the prerequisite node")
	addCmd.Flags().Float64("x", 0, "Horizontal position")
	addCmd.Flags().Float64("y", 0, "Vertical position")
	_ = addCmd.MarkFlagRequired("label")
}
