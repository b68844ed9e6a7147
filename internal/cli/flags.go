package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// addScopeFlags registers the flags every entity command shares: which
// organization to act in and who the acting user is.
func addScopeFlags(cmd *cobra.Command) {
	cmd.Flags().Int64("org", 1, "Organization ID")
	cmd.Flags().String("actor", "", "Acting user (defaults to $USER)")
}

func orgFromFlags(cmd *cobra.Command) int64 {
	org, _ := cmd.Flags().GetInt64("org")
	return org
}

// parseID parses a numeric entity id argument.
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: must be a number", arg)
	}
	return id, nil
}

// parseIDList parses comma-separated id arguments, e.g. "3,7,12".
func parseIDList(arg string) ([]int64, error) {
	parts := strings.Split(arg, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := parseID(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func actorFromFlags(cmd *cobra.Command) string {
	actor, _ := cmd.Flags().GetString("actor")
	if actor == "" {
		actor = os.Getenv("USER")
	}
	if actor == "" {
		actor = "cli"
	}
	return actor
}
