package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/testdeck/internal/ports/primary"
	"github.com/example/testdeck/internal/wire"
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "Manage scenarios within test cases",
}

var scenarioAddCmd = &cobra.Command{
	Use:   "add [case-id] [title]",
	Short: "Add a scenario to a test case",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		caseID, err := parseID(args[0])
		if err != nil {
			return err
		}
		gherkin, _ := cmd.Flags().GetString("gherkin")
		position, _ := cmd.Flags().GetInt("position")

		sc, err := wire.TestCaseService().CreateScenario(cmd.Context(), primary.CreateScenarioRequest{
			OrganizationID: orgFromFlags(cmd),
			Actor:          actorFromFlags(cmd),
			TestCaseID:     caseID,
			Title:          args[1],
			Gherkin:        gherkin,
			Position:       position,
		})
		if err != nil {
			return fmt.Errorf("failed to add scenario: %w", err)
		}

		fmt.Printf("✓ Added scenario %d to test case %d: %s\n", sc.ID, sc.TestCaseID, sc.Title)
		return nil
	},
}

var scenarioUpdateCmd = &cobra.Command{
	Use:   "update [scenario-id]",
	Short: "Update a scenario's title, gherkin, or position",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		req := primary.UpdateScenarioRequest{
			OrganizationID: orgFromFlags(cmd),
			Actor:          actorFromFlags(cmd),
			ScenarioID:     id,
		}
		if cmd.Flags().Changed("title") {
			title, _ := cmd.Flags().GetString("title")
			req.Title = &title
		}
		if cmd.Flags().Changed("gherkin") {
			gherkin, _ := cmd.Flags().GetString("gherkin")
			req.Gherkin = &gherkin
		}
		if cmd.Flags().Changed("position") {
			position, _ := cmd.Flags().GetInt("position")
			req.Position = &position
		}
		if req.Title == nil && req.Gherkin == nil && req.Position == nil {
			return fmt.Errorf("must specify --title, --gherkin, and/or --position")
		}

		sc, err := wire.TestCaseService().UpdateScenario(cmd.Context(), req)
		if err != nil {
			return fmt.Errorf("failed to update scenario: %w", err)
		}

		fmt.Printf("✓ Scenario %d updated: %s\n", sc.ID, sc.Title)
		return nil
	},
}

var scenarioDeleteCmd = &cobra.Command{
	Use:   "delete [scenario-id]",
	Short: "Delete a scenario",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		if err := wire.TestCaseService().DeleteScenario(cmd.Context(), id, orgFromFlags(cmd), actorFromFlags(cmd)); err != nil {
			return fmt.Errorf("failed to delete scenario: %w", err)
		}

		fmt.Printf("✓ Scenario %d deleted\n", id)
		return nil
	},
}

func init() {
	scenarioAddCmd.Flags().StringP("gherkin", "g", "", "Gherkin body (given/when/then)")
	scenarioAddCmd.Flags().Int("position", 0, "Sort position within the case")
	addScopeFlags(scenarioAddCmd)

	scenarioUpdateCmd.Flags().String("title", "", "New title")
	scenarioUpdateCmd.Flags().StringP("gherkin", "g", "", "New gherkin body")
	scenarioUpdateCmd.Flags().Int("position", 0, "New sort position")
	addScopeFlags(scenarioUpdateCmd)

	addScopeFlags(scenarioDeleteCmd)

	scenarioCmd.AddCommand(scenarioAddCmd)
	scenarioCmd.AddCommand(scenarioUpdateCmd)
	scenarioCmd.AddCommand(scenarioDeleteCmd)
}

// ScenarioCmd returns the scenario command
func ScenarioCmd() *cobra.Command {
	return scenarioCmd
}
