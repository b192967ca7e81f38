package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/oss-omni/omni/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "serve omni's tools over the Model Context Protocol (stdio)",
	Long: `mcp starts an MCP server on stdin/stdout exposing index, search,
find_symbol, find_calls, topology, and fold as tools, so an MCP-aware
client (an editor, an agent) can query the workspace directly.`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	eng, err := newEngine()
	if err != nil {
		return emit(nil, err)
	}

	srv := mcpserver.New(eng, version, viper.GetBool("verbose"))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	fmt.Fprintln(os.Stderr, "omni mcp: serving on stdio (ctrl-c to stop)...")
	if err := srv.Run(ctx); err != nil {
		return emit(nil, err)
	}
	return nil
}
