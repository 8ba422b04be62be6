package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/skilltree"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of skilltree",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "skilltree version %s\n", strings.TrimSpace(skilltree.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
