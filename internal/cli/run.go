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

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Manage test runs",
	Long:  "Create test runs, record per-scenario results, and close runs",
}

var runCreateCmd = &cobra.Command{
	Use:   "create [name] [scenario-ids]",
	Short: "Create a test run over the given scenarios",
	Long:  "Create a run with one pending result per scenario (comma-separated ids).",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		scenarioIDs, err := parseIDList(args[1])
		if err != nil {
			return err
		}
		issue, _ := cmd.Flags().GetString("linear-issue")
		project, _ := cmd.Flags().GetString("linear-project")
		milestone, _ := cmd.Flags().GetString("linear-milestone")

		run, err := wire.TestRunService().CreateTestRun(cmd.Context(), primary.CreateTestRunRequest{
			OrganizationID:    orgFromFlags(cmd),
			Actor:             actorFromFlags(cmd),
			Name:              args[0],
			ScenarioIDs:       scenarioIDs,
			LinearIssueID:     issue,
			LinearProjectID:   project,
			LinearMilestoneID: milestone,
		})
		if err != nil {
			return fmt.Errorf("failed to create test run: %w", err)
		}

		fmt.Printf("✓ Created test run %d: %s (%d scenarios)\n", run.ID, run.Name, len(run.Results))
		return nil
	},
}

var runListCmd = &cobra.Command{
	Use:   "list",
	Short: "List test runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")

		runs, err := wire.TestRunService().ListTestRuns(cmd.Context(), orgFromFlags(cmd), primary.TestRunFilters{
			Status: status,
			Limit:  limit,
		})
		if err != nil {
			return fmt.Errorf("failed to list test runs: %w", err)
		}

		if len(runs) == 0 {
			fmt.Println("No test runs found")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSTATUS\tCREATED")
		fmt.Fprintln(w, "--\t----\t------\t-------")
		for _, run := range runs {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", run.ID, run.Name, run.Status,
				time.UnixMilli(run.CreatedAt).Format("2006-01-02 15:04"))
		}
		w.Flush()
		return nil
	},
}

var runShowCmd = &cobra.Command{
	Use:   "show [run-id]",
	Short: "Show a test run with its results",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		run, err := wire.TestRunService().GetTestRun(cmd.Context(), id, orgFromFlags(cmd))
		if err != nil {
			return fmt.Errorf("test run not found: %w", err)
		}

		fmt.Printf("Test run: %d\n", run.ID)
		fmt.Printf("Name: %s\n", run.Name)
		fmt.Printf("Status: %s\n", run.Status)
		fmt.Printf("Created by: %s at %s\n", run.CreatedBy,
			time.UnixMilli(run.CreatedAt).Format("2006-01-02 15:04"))
		if run.LinearIssueID != "" {
			fmt.Printf("Linear issue: %s\n", run.LinearIssueID)
		}

		if len(run.Results) > 0 {
			fmt.Println()
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "RESULT\tSCENARIO\tSTATUS\tNOTES")
			fmt.Fprintln(w, "------\t--------\t------\t-----")
			for _, res := range run.Results {
				fmt.Fprintf(w, "%d\t%d\t%s\t%s\n", res.ID, res.ScenarioID, resultColored(res.Status), res.Notes)
			}
			w.Flush()
		}
		return nil
	},
}

var runRecordCmd = &cobra.Command{
	Use:   "record [result-id] [status]",
	Short: "Record the outcome of one result row",
	Long:  "Set a result's status (passed, failed, blocked, skipped, pending) with optional notes.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		notes, _ := cmd.Flags().GetString("notes")

		res, err := wire.TestRunService().RecordResult(cmd.Context(), primary.RecordResultRequest{
			OrganizationID: orgFromFlags(cmd),
			Actor:          actorFromFlags(cmd),
			ResultID:       id,
			Status:         args[1],
			Notes:          notes,
		})
		if err != nil {
			return fmt.Errorf("failed to record result: %w", err)
		}

		fmt.Printf("✓ Recorded %s for scenario %d\n", res.Status, res.ScenarioID)
		return nil
	},
}

var runCloseCmd = &cobra.Command{
	Use:   "close [run-id]",
	Short: "Close a test run",
	Long:  "Mark a run completed. Closing is terminal and cannot be undone.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		if err := wire.TestRunService().CloseTestRun(cmd.Context(), id, orgFromFlags(cmd)); err != nil {
			return fmt.Errorf("failed to close test run: %w", err)
		}

		fmt.Printf("✓ Test run %d closed\n", id)
		return nil
	},
}

var runDeleteCmd = &cobra.Command{
	Use:   "delete [run-id]",
	Short: "Delete a test run and its results",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		if err := wire.TestRunService().DeleteTestRun(cmd.Context(), id, orgFromFlags(cmd), actorFromFlags(cmd)); err != nil {
			return fmt.Errorf("failed to delete test run: %w", err)
		}

		fmt.Printf("✓ Test run %d deleted\n", id)
		return nil
	},
}

func resultColored(status string) string {
	switch status {
	case "passed":
		return color.New(color.FgHiGreen).Sprint(status)
	case "failed":
		return color.New(color.FgRed).Sprint(status)
	case "blocked":
		return color.New(color.FgYellow).Sprint(status)
	default:
		return status
	}
}

func init() {
	runCreateCmd.Flags().String("linear-issue", "", "Linked Linear issue ID")
	runCreateCmd.Flags().String("linear-project", "", "Linked Linear project ID")
	runCreateCmd.Flags().String("linear-milestone", "", "Linked Linear milestone ID")
	addScopeFlags(runCreateCmd)

	runListCmd.Flags().String("status", "", "Filter by status (in_progress, completed)")
	runListCmd.Flags().Int("limit", 0, "Maximum runs to list")
	addScopeFlags(runListCmd)

	addScopeFlags(runShowCmd)

	runRecordCmd.Flags().StringP("notes", "n", "", "Execution notes")
	addScopeFlags(runRecordCmd)

	addScopeFlags(runCloseCmd)
	addScopeFlags(runDeleteCmd)

	runCmd.AddCommand(runCreateCmd)
	runCmd.AddCommand(runListCmd)
	runCmd.AddCommand(runShowCmd)
	runCmd.AddCommand(runRecordCmd)
	runCmd.AddCommand(runCloseCmd)
	runCmd.AddCommand(runDeleteCmd)
}

// RunCmd returns the run command
func RunCmd() *cobra.Command {
	return runCmd
}
