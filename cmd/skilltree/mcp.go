package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	mcpAdapter "github.com/aretw0/skilltree/pkg/adapters/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Exposes the trees of the configured store as Model Context Protocol tools.
Uses stdio by default; --sse serves over HTTP instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		a, err := newApp(cmd, false)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := a.close(context.Background()); cerr != nil && err == nil {
				err = cerr
			}
		}()

		s := mcpAdapter.NewServer(a.trees, mcpAdapter.WithLogger(a.logger))

		if sse, _ := cmd.Flags().GetBool("sse"); sse {
			port, _ := cmd.Flags().GetInt("port")
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return s.ServeSSE(ctx, port)
		}
		return s.ServeStdio()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().Bool("sse", false, "Serve over SSE instead of stdio")
	mcpCmd.Flags().IntP("port", "p", 8081, "Port for the SSE transport")
}
