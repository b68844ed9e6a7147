package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/testdeck/internal/ports/primary"
	"github.com/example/testdeck/internal/wire"
)

var folderCmd = &cobra.Command{
	Use:   "folder",
	Short: "Manage test case folders",
	Long:  "Create, list, update, and delete folders in the test case tree",
}

var folderCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a new folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parentID, _ := cmd.Flags().GetInt64("parent")
		position, _ := cmd.Flags().GetInt("position")

		folder, err := wire.FolderService().CreateFolder(cmd.Context(), primary.CreateFolderRequest{
			OrganizationID: orgFromFlags(cmd),
			Actor:          actorFromFlags(cmd),
			Name:           args[0],
			ParentID:       parentID,
			Position:       position,
		})
		if err != nil {
			return fmt.Errorf("failed to create folder: %w", err)
		}

		fmt.Printf("✓ Created folder %d: %s\n", folder.ID, folder.Name)
		if folder.ParentID != 0 {
			fmt.Printf("  Parent: %d\n", folder.ParentID)
		}
		return nil
	},
}

var folderListCmd = &cobra.Command{
	Use:   "list",
	Short: "List folders",
	RunE: func(cmd *cobra.Command, args []string) error {
		parentID, _ := cmd.Flags().GetInt64("parent")

		folders, err := wire.FolderService().ListFolders(cmd.Context(), orgFromFlags(cmd), parentID)
		if err != nil {
			return fmt.Errorf("failed to list folders: %w", err)
		}

		if len(folders) == 0 {
			fmt.Println("No folders found")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tPARENT\tPOSITION")
		fmt.Fprintln(w, "--\t----\t------\t--------")
		for _, f := range folders {
			parent := "-"
			if f.ParentID != 0 {
				parent = fmt.Sprintf("%d", f.ParentID)
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", f.ID, f.Name, parent, f.Position)
		}
		w.Flush()
		return nil
	},
}

var folderUpdateCmd = &cobra.Command{
	Use:   "update [folder-id]",
	Short: "Update a folder's name, parent, or position",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		req := primary.UpdateFolderRequest{
			OrganizationID: orgFromFlags(cmd),
			Actor:          actorFromFlags(cmd),
			FolderID:       id,
		}
		if cmd.Flags().Changed("name") {
			name, _ := cmd.Flags().GetString("name")
			req.Name = &name
		}
		if cmd.Flags().Changed("parent") {
			parent, _ := cmd.Flags().GetInt64("parent")
			req.ParentID = &parent
		}
		if cmd.Flags().Changed("position") {
			position, _ := cmd.Flags().GetInt("position")
			req.Position = &position
		}
		if req.Name == nil && req.ParentID == nil && req.Position == nil {
			return fmt.Errorf("must specify --name, --parent, and/or --position")
		}

		folder, err := wire.FolderService().UpdateFolder(cmd.Context(), req)
		if err != nil {
			return fmt.Errorf("failed to update folder: %w", err)
		}

		fmt.Printf("✓ Folder %d updated: %s\n", folder.ID, folder.Name)
		return nil
	},
}

var folderDeleteCmd = &cobra.Command{
	Use:   "delete [folder-id]",
	Short: "Delete an empty folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		if err := wire.FolderService().DeleteFolder(cmd.Context(), id, orgFromFlags(cmd)); err != nil {
			return fmt.Errorf("failed to delete folder: %w", err)
		}

		fmt.Printf("✓ Folder %d deleted\n", id)
		return nil
	},
}

func init() {
	folderCreateCmd.Flags().Int64("parent", 0, "Parent folder ID (0 = root)")
	folderCreateCmd.Flags().Int("position", 0, "Sort position among siblings")
	addScopeFlags(folderCreateCmd)

	folderListCmd.Flags().Int64("parent", 0, "List children of this folder (0 = all)")
	addScopeFlags(folderListCmd)

	folderUpdateCmd.Flags().String("name", "", "New name")
	folderUpdateCmd.Flags().Int64("parent", 0, "New parent folder ID (0 = root)")
	folderUpdateCmd.Flags().Int("position", 0, "New sort position")
	addScopeFlags(folderUpdateCmd)

	addScopeFlags(folderDeleteCmd)

	folderCmd.AddCommand(folderCreateCmd)
	folderCmd.AddCommand(folderListCmd)
	folderCmd.AddCommand(folderUpdateCmd)
	folderCmd.AddCommand(folderDeleteCmd)
}

// FolderCmd returns the folder command
func FolderCmd() *cobra.Command {
	return folderCmd
}
