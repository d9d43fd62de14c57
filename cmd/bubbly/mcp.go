package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/aretw0/bubbly"
	bubblymcp "github.com/aretw0/bubbly/pkg/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the store as MCP tools over stdio",
	Long: `Start a Model Context Protocol server on stdin/stdout. Logs go to stderr so the
protocol stream stays clean.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		first, err := firstWeekday()
		if err != nil {
			return err
		}
		return withStore(cmd, func(st *bubbly.Store) error {
			s := bubblymcp.NewServer(st, bubbly.Version, first)
			slog.Info("mcp server ready", "tools", bubblymcp.ToolNames)
			return s.Start()
		})
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
