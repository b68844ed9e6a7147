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

var writesCmd = &cobra.Command{
	Use:   "writes",
	Short: "Inspect the MCP write-audit log",
}

var writesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List write log entries, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")
		userID, _ := cmd.Flags().GetString("user")
		toolName, _ := cmd.Flags().GetString("tool")
		entityType, _ := cmd.Flags().GetString("entity-type")
		includeUndone, _ := cmd.Flags().GetBool("include-undone")

		entries, err := wire.WriteLogService().ListWrites(cmd.Context(), orgFromFlags(cmd), primary.WriteLogFilters{
			Limit:         limit,
			Offset:        offset,
			UserID:        userID,
			ToolName:      toolName,
			EntityType:    entityType,
			IncludeUndone: includeUndone,
		})
		if err != nil {
			return fmt.Errorf("failed to list write log: %w", err)
		}

		if len(entries) == 0 {
			fmt.Println("No write log entries found")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTOOL\tENTITY\tUSER\tSTATUS\tWHEN")
		fmt.Fprintln(w, "--\t----\t------\t----\t------\t----")
		for _, e := range entries {
			entity := "-"
			if e.EntityID != 0 {
				entity = fmt.Sprintf("%s/%d", e.EntityType, e.EntityID)
			}
			status := e.Status
			if e.Status == "failed" {
				status = color.New(color.FgRed).Sprint(status)
			}
			if e.UndoneAt != 0 {
				status += color.New(color.FgYellow).Sprint(" [undone]")
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", e.ID, e.ToolName, entity, e.UserID, status,
				time.UnixMilli(e.CreatedAt).Format("2006-01-02 15:04:05"))
		}
		w.Flush()
		return nil
	},
}

var writesUndoCmd = &cobra.Command{
	Use:   "undo [log-id]",
	Short: "Undo one write log entry",
	Long:  "Reverse one logged write: create_* deletes the entity, update_* restores its previous state.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		if err := wire.WriteLogService().UndoWrite(cmd.Context(), id, actorFromFlags(cmd), orgFromFlags(cmd)); err != nil {
			return fmt.Errorf("failed to undo write: %w", err)
		}

		fmt.Printf("✓ Write log entry %d undone\n", id)
		return nil
	},
}

func init() {
	writesListCmd.Flags().Int("limit", 20, "Maximum entries to list")
	writesListCmd.Flags().Int("offset", 0, "Entries to skip")
	writesListCmd.Flags().String("user", "", "Filter by user")
	writesListCmd.Flags().String("tool", "", "Filter by tool name")
	writesListCmd.Flags().String("entity-type", "", "Filter by entity type")
	writesListCmd.Flags().Bool("include-undone", false, "Include entries already undone")
	addScopeFlags(writesListCmd)

	addScopeFlags(writesUndoCmd)

	writesCmd.AddCommand(writesListCmd)
	writesCmd.AddCommand(writesUndoCmd)
}

// WritesCmd returns the writes command
func WritesCmd() *cobra.Command {
	return writesCmd
}
