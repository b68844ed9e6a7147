package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/testdeck/internal/wire"
)

var undoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Undo the most recent action",
	RunE: func(cmd *cobra.Command, args []string) error {
		description, err := wire.UndoService().Undo(cmd.Context(), orgFromFlags(cmd))
		if err != nil {
			return fmt.Errorf("undo failed: %w", err)
		}

		fmt.Printf("✓ Undone: %s\n", description)
		return nil
	},
}

var redoCmd = &cobra.Command{
	Use:   "redo",
	Short: "Redo the most recently undone action",
	RunE: func(cmd *cobra.Command, args []string) error {
		description, err := wire.UndoService().Redo(cmd.Context(), orgFromFlags(cmd))
		if err != nil {
			return fmt.Errorf("redo failed: %w", err)
		}

		fmt.Printf("✓ Redone: %s\n", description)
		return nil
	},
}

func init() {
	addScopeFlags(undoCmd)
	addScopeFlags(redoCmd)
}

// UndoCmd returns the undo command
func UndoCmd() *cobra.Command {
	return undoCmd
}

// RedoCmd returns the redo command
func RedoCmd() *cobra.Command {
	return redoCmd
}
