package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "skilltree",
	Short: "Skilltree manages skill trees with prerequisite unlocking",
	Long: `Skilltree keeps a skill tree (skills joined by prerequisite edges) in a
key-value store. Selecting a skill unlocks the skills that require it;
deselecting a skill also deselects everything that depends on it.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().String("store", "", "Store backend: memory, file, redis or sqlite")
	rootCmd.PersistentFlags().String("dir", "", "Directory of the file store")
	rootCmd.PersistentFlags().String("tree", "", "Tree identifier")
	rootCmd.PersistentFlags().String("seed", "", "Tree definition (YAML or JSON) used when nothing is stored")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
}
