package cli

import (
	"fmt"

	"github.com/google/uuid"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/example/testdeck/internal/config"
	"github.com/example/testdeck/internal/db"
	"github.com/example/testdeck/internal/mcp"
	"github.com/example/testdeck/internal/ports/primary"
	"github.com/example/testdeck/internal/version"
	"github.com/example/testdeck/internal/wire"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server over stdio",
	Long: `Starts an MCP server over stdin/stdout. AI clients connect via their MCP
configuration and call the test management tools directly. Every write is
recorded in the write-audit log under the identity the token resolves to.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		token, _ := cmd.Flags().GetString("token")
		if token == "" {
			return fmt.Errorf("--token is required")
		}

		dir, err := config.DefaultDir()
		if err != nil {
			return err
		}
		cfg, err := config.Load(dir)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cfg.DBPath != "" {
			db.SetPath(cfg.DBPath)
		}

		tok, err := cfg.ResolveToken(token)
		if err != nil {
			return fmt.Errorf("token not accepted: %w", err)
		}

		auth := primary.Auth{
			OrganizationID: tok.OrganizationID,
			UserID:         tok.UserID,
			ClientID:       tok.ClientID,
			SessionID:      uuid.NewString(),
			ReadOnly:       tok.ReadOnly,
		}

		srv := mcp.NewServer(auth,
			wire.FolderService(),
			wire.TestCaseService(),
			wire.TestRunService(),
			wire.WriteLogService(),
			version.String(),
		)
		return srv.Run(cmd.Context(), &sdkmcp.StdioTransport{})
	},
}

func init() {
	serveCmd.Flags().String("token", "", "Bearer token from the config token table")
}

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	return serveCmd
}
