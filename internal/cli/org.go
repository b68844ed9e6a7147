package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/testdeck/internal/ports/secondary"
	"github.com/example/testdeck/internal/wire"
)

var orgCmd = &cobra.Command{
	Use:   "org",
	Short: "Manage organizations (tenants)",
}

var orgCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a new organization",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rec := &secondary.OrganizationRecord{
			Name:      args[0],
			CreatedAt: time.Now().UnixMilli(),
		}
		if err := wire.Organizations().Create(cmd.Context(), rec); err != nil {
			return fmt.Errorf("failed to create organization: %w", err)
		}

		fmt.Printf("✓ Created organization %d: %s\n", rec.ID, rec.Name)
		return nil
	},
}

var orgShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show an organization by name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := wire.Organizations().GetByName(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("organization not found: %w", err)
		}

		fmt.Printf("Organization: %d\n", rec.ID)
		fmt.Printf("Name: %s\n", rec.Name)
		fmt.Printf("Created: %s\n", time.UnixMilli(rec.CreatedAt).Format("2006-01-02 15:04"))
		return nil
	},
}

func init() {
	orgCmd.AddCommand(orgCreateCmd)
	orgCmd.AddCommand(orgShowCmd)
}

// OrgCmd returns the org command
func OrgCmd() *cobra.Command {
	return orgCmd
}
