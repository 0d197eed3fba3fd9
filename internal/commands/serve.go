package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tmarsden/orc/internal/mcpserver"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the agent and demo resources over MCP on stdio",
	Long: `serve exposes the agent loop as an "ask" tool over the Model Context
Protocol, along with the bundled tools and a catalog of demo resources that
supports pagination and update subscriptions. It communicates on stdin and
stdout; logs go to stderr.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, _, err := buildAgent(cmd)
		if err != nil {
			return err
		}

		server, err := mcpserver.NewServer(mcpserver.Config{Agent: a})
		if err != nil {
			return fmt.Errorf("creating MCP server: %w", err)
		}
		defer server.Close()

		return server.Serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
