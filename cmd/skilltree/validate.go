package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/skilltree/pkg/dsl"
)

var validateCmd = &cobra.Command{
	Use:   "validate <definition>",
	Short: "Check a tree definition for consistency",
	Long:  `Parses a YAML or JSON tree definition and reports duplicate ids, dangling edges and cycles.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := dsl.LoadFile(args[0])
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Definition is valid! ✅ (%d nodes, %d edges)\n", len(g.Nodes), len(g.Edges))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
