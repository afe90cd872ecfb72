package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAbortCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "abort {rebase|merge}",
		Short: "Abort an in-progress rebase or merge",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, path, err := buildCoordinator()
			if err != nil {
				return err
			}
			switch args[0] {
			case "rebase":
				err = coord.AbortRebase(cmd.Context(), path)
			case "merge":
				err = coord.AbortMerge(cmd.Context(), path)
			default:
				return fmt.Errorf("unknown operation %q (expected rebase or merge)", args[0])
			}
			if err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Aborted %s.", args[0])
			return nil
		},
	}
	return cmd
}
