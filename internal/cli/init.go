package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/testdeck/internal/db"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the testdeck database",
		Long:  `Initialize the testdeck database at ~/.testdeck/testdeck.db with the required schema.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, _ := cmd.Flags().GetBool("seed")

			dbPath, err := db.GetDBPath()
			if err != nil {
				return fmt.Errorf("failed to get database path: %w", err)
			}

			fmt.Printf("Initializing testdeck database at %s\n", dbPath)

			if err := db.InitSchema(); err != nil {
				return fmt.Errorf("failed to initialize schema: %w", err)
			}
			fmt.Println("✓ Database initialized successfully")

			if seed {
				database, err := db.GetDB()
				if err != nil {
					return fmt.Errorf("failed to open database: %w", err)
				}
				if err := db.SeedFixtures(database); err != nil {
					return fmt.Errorf("failed to seed fixtures: %w", err)
				}
				fmt.Println("✓ Seeded demo organization with sample test cases")
			}

			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Println("  testdeck org create \"My Team\"")
			fmt.Println("  testdeck case create \"My first test case\" --org 1")

			return nil
		},
	}

	cmd.Flags().Bool("seed", false, "Seed a demo organization with sample data")
	return cmd
}
