package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/testdeck/internal/ports/primary"
	"github.com/example/testdeck/internal/wire"
)

var caseCmd = &cobra.Command{
	Use:   "case",
	Short: "Manage test cases",
	Long:  "Create, list, update, delete, and bulk-edit test cases",
}

var caseCreateCmd = &cobra.Command{
	Use:   "create [title]",
	Short: "Create a new test case",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		folderID, _ := cmd.Flags().GetInt64("folder")
		state, _ := cmd.Flags().GetString("state")
		priority, _ := cmd.Flags().GetString("priority")
		template, _ := cmd.Flags().GetString("template")
		legacyID, _ := cmd.Flags().GetString("legacy-id")

		tc, err := wire.TestCaseService().CreateTestCase(cmd.Context(), primary.CreateTestCaseRequest{
			OrganizationID: orgFromFlags(cmd),
			Actor:          actorFromFlags(cmd),
			Title:          args[0],
			FolderID:       folderID,
			Template:       template,
			State:          state,
			Priority:       priority,
			LegacyID:       legacyID,
		})
		if err != nil {
			return fmt.Errorf("failed to create test case: %w", err)
		}

		fmt.Printf("✓ Created test case %d: %s\n", tc.ID, tc.Title)
		fmt.Printf("  State: %s  Priority: %s\n", tc.State, tc.Priority)
		return nil
	},
}

var caseListCmd = &cobra.Command{
	Use:   "list",
	Short: "List test cases",
	RunE: func(cmd *cobra.Command, args []string) error {
		folderID, _ := cmd.Flags().GetInt64("folder")
		state, _ := cmd.Flags().GetString("state")
		priority, _ := cmd.Flags().GetString("priority")
		limit, _ := cmd.Flags().GetInt("limit")

		cases, err := wire.TestCaseService().ListTestCases(cmd.Context(), orgFromFlags(cmd), primary.TestCaseFilters{
			FolderID: folderID,
			State:    state,
			Priority: priority,
			Limit:    limit,
		})
		if err != nil {
			return fmt.Errorf("failed to list test cases: %w", err)
		}

		if len(cases) == 0 {
			fmt.Println("No test cases found")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tFOLDER\tSTATE\tPRIORITY")
		fmt.Fprintln(w, "--\t-----\t------\t-----\t--------")
		for _, tc := range cases {
			folder := "-"
			if tc.FolderID != 0 {
				folder = fmt.Sprintf("%d", tc.FolderID)
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", tc.ID, tc.Title, folder, stateColored(tc.State), tc.Priority)
		}
		w.Flush()
		return nil
	},
}

var caseShowCmd = &cobra.Command{
	Use:   "show [case-id]",
	Short: "Show a test case with its scenarios",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		tc, err := wire.TestCaseService().GetTestCase(cmd.Context(), id, orgFromFlags(cmd))
		if err != nil {
			return fmt.Errorf("test case not found: %w", err)
		}

		fmt.Printf("Test case: %d\n", tc.ID)
		fmt.Printf("Title: %s\n", tc.Title)
		fmt.Printf("State: %s  Priority: %s  Template: %s\n", tc.State, tc.Priority, tc.Template)
		if tc.FolderID != 0 {
			fmt.Printf("Folder: %d\n", tc.FolderID)
		}
		if tc.LegacyID != "" {
			fmt.Printf("Legacy ID: %s\n", tc.LegacyID)
		}
		fmt.Printf("Created by: %s  Updated by: %s\n", tc.CreatedBy, tc.UpdatedBy)

		if len(tc.Scenarios) > 0 {
			fmt.Println()
			fmt.Println("Scenarios:")
			for _, sc := range tc.Scenarios {
				fmt.Printf("  [%d] %s\n", sc.ID, sc.Title)
				if sc.Gherkin != "" {
					fmt.Printf("      %s\n", sc.Gherkin)
				}
			}
		}
		return nil
	},
}

var caseUpdateCmd = &cobra.Command{
	Use:   "update [case-id]",
	Short: "Update a test case's fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		req := primary.UpdateTestCaseRequest{
			OrganizationID: orgFromFlags(cmd),
			Actor:          actorFromFlags(cmd),
			TestCaseID:     id,
		}
		if cmd.Flags().Changed("title") {
			title, _ := cmd.Flags().GetString("title")
			req.Title = &title
		}
		if cmd.Flags().Changed("folder") {
			folder, _ := cmd.Flags().GetInt64("folder")
			req.FolderID = &folder
		}
		if cmd.Flags().Changed("state") {
			state, _ := cmd.Flags().GetString("state")
			req.State = &state
		}
		if cmd.Flags().Changed("priority") {
			priority, _ := cmd.Flags().GetString("priority")
			req.Priority = &priority
		}
		if cmd.Flags().Changed("template") {
			template, _ := cmd.Flags().GetString("template")
			req.Template = &template
		}
		if req.Title == nil && req.FolderID == nil && req.State == nil && req.Priority == nil && req.Template == nil {
			return fmt.Errorf("must specify at least one of --title, --folder, --state, --priority, --template")
		}

		tc, err := wire.TestCaseService().UpdateTestCase(cmd.Context(), req)
		if err != nil {
			return fmt.Errorf("failed to update test case: %w", err)
		}

		fmt.Printf("✓ Test case %d updated: %s\n", tc.ID, tc.Title)
		return nil
	},
}

var caseDeleteCmd = &cobra.Command{
	Use:   "delete [case-id]",
	Short: "Delete a test case and its scenarios",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		if err := wire.TestCaseService().DeleteTestCase(cmd.Context(), id, orgFromFlags(cmd), actorFromFlags(cmd)); err != nil {
			return fmt.Errorf("failed to delete test case: %w", err)
		}

		fmt.Printf("✓ Test case %d deleted\n", id)
		return nil
	},
}

var caseBulkDeleteCmd = &cobra.Command{
	Use:   "bulk-delete [case-ids]",
	Short: "Delete several test cases as one undoable action",
	Long:  "Delete several test cases (comma-separated ids) as a single undoable action. Missing ids are skipped.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDList(args[0])
		if err != nil {
			return err
		}

		result, err := wire.TestCaseService().BulkDeleteTestCases(cmd.Context(), primary.BulkTestCaseRequest{
			OrganizationID: orgFromFlags(cmd),
			Actor:          actorFromFlags(cmd),
			TestCaseIDs:    ids,
		})
		if err != nil {
			return fmt.Errorf("failed to bulk delete: %w", err)
		}

		fmt.Printf("✓ Deleted %d test cases\n", result.Affected)
		printSkipped(result.Skipped)
		return nil
	},
}

var caseBulkUpdateCmd = &cobra.Command{
	Use:   "bulk-update [case-ids]",
	Short: "Apply the same field changes to several test cases",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDList(args[0])
		if err != nil {
			return err
		}

		req := primary.BulkUpdateTestCasesRequest{
			OrganizationID: orgFromFlags(cmd),
			Actor:          actorFromFlags(cmd),
			TestCaseIDs:    ids,
		}
		if cmd.Flags().Changed("state") {
			state, _ := cmd.Flags().GetString("state")
			req.State = &state
		}
		if cmd.Flags().Changed("priority") {
			priority, _ := cmd.Flags().GetString("priority")
			req.Priority = &priority
		}
		if req.State == nil && req.Priority == nil {
			return fmt.Errorf("must specify --state and/or --priority")
		}

		result, err := wire.TestCaseService().BulkUpdateTestCases(cmd.Context(), req)
		if err != nil {
			return fmt.Errorf("failed to bulk update: %w", err)
		}

		fmt.Printf("✓ Updated %d test cases\n", result.Affected)
		printSkipped(result.Skipped)
		return nil
	},
}

var caseMoveCmd = &cobra.Command{
	Use:   "move [case-ids]",
	Short: "Move several test cases to a folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDList(args[0])
		if err != nil {
			return err
		}
		folderID, _ := cmd.Flags().GetInt64("to")

		result, err := wire.TestCaseService().BulkMoveTestCases(cmd.Context(), primary.BulkMoveTestCasesRequest{
			OrganizationID: orgFromFlags(cmd),
			Actor:          actorFromFlags(cmd),
			TestCaseIDs:    ids,
			FolderID:       folderID,
		})
		if err != nil {
			return fmt.Errorf("failed to move test cases: %w", err)
		}

		fmt.Printf("✓ Moved %d test cases\n", result.Affected)
		printSkipped(result.Skipped)
		return nil
	},
}

var caseReorderCmd = &cobra.Command{
	Use:   "reorder [case-ids]",
	Short: "Reorder test cases to the given sequence",
	Long:  "Rewrite the position of each listed test case to its index in the comma-separated list.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDList(args[0])
		if err != nil {
			return err
		}

		if err := wire.TestCaseService().ReorderTestCases(cmd.Context(), primary.ReorderTestCasesRequest{
			OrganizationID: orgFromFlags(cmd),
			Actor:          actorFromFlags(cmd),
			TestCaseIDs:    ids,
		}); err != nil {
			return fmt.Errorf("failed to reorder test cases: %w", err)
		}

		fmt.Printf("✓ Reordered %d test cases\n", len(ids))
		return nil
	},
}

func printSkipped(skipped []int64) {
	if len(skipped) > 0 {
		fmt.Printf("  Skipped: %v\n", skipped)
	}
}

func stateColored(state string) string {
	switch state {
	case "active":
		return color.New(color.FgHiGreen).Sprint(state)
	case "draft", "upcoming":
		return color.New(color.FgYellow).Sprint(state)
	case "retired", "rejected":
		return color.New(color.FgRed).Sprint(state)
	default:
		return state
	}
}

func init() {
	caseCreateCmd.Flags().Int64("folder", 0, "Containing folder ID (0 = none)")
	caseCreateCmd.Flags().String("state", "", "Lifecycle state (active, draft, upcoming, retired, rejected)")
	caseCreateCmd.Flags().String("priority", "", "Priority (normal, high, critical)")
	caseCreateCmd.Flags().String("template", "", "Case template (default gherkin)")
	caseCreateCmd.Flags().String("legacy-id", "", "External identifier from a migrated system")
	addScopeFlags(caseCreateCmd)

	caseListCmd.Flags().Int64("folder", 0, "Filter by folder")
	caseListCmd.Flags().String("state", "", "Filter by state")
	caseListCmd.Flags().String("priority", "", "Filter by priority")
	caseListCmd.Flags().Int("limit", 0, "Maximum cases to list")
	addScopeFlags(caseListCmd)

	addScopeFlags(caseShowCmd)

	caseUpdateCmd.Flags().String("title", "", "New title")
	caseUpdateCmd.Flags().Int64("folder", 0, "New folder ID (0 = none)")
	caseUpdateCmd.Flags().String("state", "", "New state")
	caseUpdateCmd.Flags().String("priority", "", "New priority")
	caseUpdateCmd.Flags().String("template", "", "New template")
	addScopeFlags(caseUpdateCmd)

	addScopeFlags(caseDeleteCmd)
	addScopeFlags(caseBulkDeleteCmd)

	caseBulkUpdateCmd.Flags().String("state", "", "New state for all listed cases")
	caseBulkUpdateCmd.Flags().String("priority", "", "New priority for all listed cases")
	addScopeFlags(caseBulkUpdateCmd)

	caseMoveCmd.Flags().Int64("to", 0, "Destination folder ID (0 = out of any folder)")
	addScopeFlags(caseMoveCmd)

	addScopeFlags(caseReorderCmd)

	caseCmd.AddCommand(caseCreateCmd)
	caseCmd.AddCommand(caseListCmd)
	caseCmd.AddCommand(caseShowCmd)
	caseCmd.AddCommand(caseUpdateCmd)
	caseCmd.AddCommand(caseDeleteCmd)
	caseCmd.AddCommand(caseBulkDeleteCmd)
	caseCmd.AddCommand(caseBulkUpdateCmd)
	caseCmd.AddCommand(caseMoveCmd)
	caseCmd.AddCommand(caseReorderCmd)
}

// CaseCmd returns the case command
func CaseCmd() *cobra.Command {
	return caseCmd
}
