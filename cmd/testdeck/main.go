package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/testdeck/internal/cli"
	"github.com/example/testdeck/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "testdeck",
		Short:   "testdeck - multi-tenant test case management",
		Version: version.String(),
		Long: `testdeck manages test cases, Gherkin scenarios, and test runs per
organization, with a bounded undo/redo history for every edit and an
append-only audit log for writes arriving over MCP.`,
	}

	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.OrgCmd())
	rootCmd.AddCommand(cli.FolderCmd())
	rootCmd.AddCommand(cli.CaseCmd())
	rootCmd.AddCommand(cli.ScenarioCmd())
	rootCmd.AddCommand(cli.RunCmd())

	// History commands
	rootCmd.AddCommand(cli.UndoCmd())
	rootCmd.AddCommand(cli.RedoCmd())
	rootCmd.AddCommand(cli.HistoryCmd())
	rootCmd.AddCommand(cli.WritesCmd())

	// Protocol surface
	rootCmd.AddCommand(cli.ServeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
