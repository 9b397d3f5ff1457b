package cli

import (
	"fmt"

	"github.com/iwatobipen/entry-cli/internal/usecase"
	"github.com/spf13/cobra"
)

func validateCmd() *cobra.Command {
	var workspace string
	var set string
	var profile string

	c := &cobra.Command{
		Use:   "validate",
		Short: "Validate a set and profile (no conformer generation)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := loadWorkspace(workspace)
			if err != nil {
				return err
			}

			setPath, err := resolveSetPath(ws, set)
			if err != nil {
				return err
			}

			profileArg, err := resolveProfileArg(ws, profile)
			if err != nil {
				return err
			}

			uc := usecase.NewValidateSet(ws.sets, ws.profiles, ws.validator)
			if err := uc.Execute(cmd.Context(), setPath, profileArg); err != nil {
				return err
			}

			fmt.Println("OK")
			return nil
		},
	}

	c.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	c.Flags().StringVarP(&set, "set", "s", "", "Set name or path (required)")
	c.Flags().StringVarP(&profile, "profile", "p", "", "Profile name or path (optional; defaults to workspace default profile)")

	_ = c.MarkFlagRequired("set")
	return c
}
