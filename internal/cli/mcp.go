package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	spmcp "github.com/valter-silva-au/staffplan/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  "Commands for running the staffplan MCP (Model Context Protocol) server.",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the staffplan MCP server on stdio",
	Long: `Start the staffplan MCP server on stdio transport.

The server exposes the demand engine as MCP tools: build_matrix, drill_down,
export_matrix, validate_matrix, list_filter_options.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if DemandSvc == nil {
			return fmt.Errorf("demand service not initialized")
		}

		srv := spmcp.NewServer(DemandSvc, Source, Events, requestDefaults(), appVersion)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if Logger != nil {
			Logger.Debug("mcp server starting", "transport", "stdio")
		}
		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("running MCP server: %w", err)
		}

		return nil
	},
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}
