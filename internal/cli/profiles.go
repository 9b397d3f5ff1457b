package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

func profilesCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "profiles",
		Short: "Manage conformer profiles in a workspace",
	}

	c.AddCommand(profilesListCmd())
	return c
}

func profilesListCmd() *cobra.Command {
	var workspace string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List profiles",
		RunE: func(_ *cobra.Command, _ []string) error {
			ws, err := loadWorkspace(workspace)
			if err != nil {
				return err
			}

			refs, err := ws.profileCatalog.ListProfiles(ws.root)
			if err != nil {
				return err
			}

			if len(refs) == 0 {
				fmt.Println("(no profiles found)")
				return nil
			}

			fmt.Printf("Workspace: %s\n\n", ws.root)
			for _, r := range refs {
				rel, _ := filepath.Rel(ws.root, r.Path)
				marker := ""
				if r.Name == ws.cfg.Defaults.Profile {
					marker = "  [default]"
				}
				fmt.Printf("- %s  (%s)%s\n", r.Name, rel, marker)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	return cmd
}
