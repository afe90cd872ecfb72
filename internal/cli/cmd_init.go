package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/treefort-dev/treefort/internal/config"
)

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config to .treefort/config.yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			target := filepath.Join(".treefort", "config.yaml")
			if _, err := os.Stat(target); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", target)
			}
			if err := config.Write(config.Default(), target); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Wrote %s.", target)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}
