package cmd

import (
	"github.com/spf13/cobra"

	"github.com/matdash/matdash/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server on stdio",
	Long: `Exposes the dashboard's backends as MCP tools (ask_dashboard,
browse_files, folder_tree, test_connection) so AI agents can query
business data and the document share. Logging goes to stderr; stdout
carries the protocol.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger, err := buildLogger(cfg)
		if err != nil {
			return err
		}
		defer logger.Sync()

		chatClient, filesClient, _ := buildClients(cfg, logger)

		mcp.Version = Version
		srv := mcp.NewServer(chatClient, filesClient, cfg.TreeDepth)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
