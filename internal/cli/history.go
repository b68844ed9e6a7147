package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/testdeck/internal/ports/primary"
	"github.com/example/testdeck/internal/wire"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the undo and redo stacks",
	RunE: func(cmd *cobra.Command, args []string) error {
		orgID := orgFromFlags(cmd)
		limit, _ := cmd.Flags().GetInt("limit")

		undo, err := wire.UndoService().UndoStack(cmd.Context(), orgID, limit)
		if err != nil {
			return fmt.Errorf("failed to read undo stack: %w", err)
		}
		redo, err := wire.UndoService().RedoStack(cmd.Context(), orgID, limit)
		if err != nil {
			return fmt.Errorf("failed to read redo stack: %w", err)
		}

		if len(undo) == 0 && len(redo) == 0 {
			fmt.Println("No history")
			return nil
		}

		if len(undo) > 0 {
			fmt.Println(color.New(color.Bold).Sprint("Undo stack (most recent first):"))
			printStack(undo)
		}
		if len(redo) > 0 {
			if len(undo) > 0 {
				fmt.Println()
			}
			fmt.Println(color.New(color.Bold).Sprint("Redo stack (most recent first):"))
			printStack(redo)
		}
		return nil
	},
}

func printStack(entries []*primary.UndoEntry) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for i, e := range entries {
		fmt.Fprintf(w, "  %d.\t%s\t%s\t%s\n", i+1, e.Description, e.ActionType,
			time.UnixMilli(e.CreatedAt).Format("2006-01-02 15:04:05"))
	}
	w.Flush()
}

func init() {
	historyCmd.Flags().Int("limit", 10, "Entries to show per stack")
	addScopeFlags(historyCmd)
}

// HistoryCmd returns the history command
func HistoryCmd() *cobra.Command {
	return historyCmd
}
