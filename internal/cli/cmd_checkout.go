package cli

import (
	"github.com/spf13/cobra"
)

func newCheckoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkout <branch>",
		Short: "Switch the worktree to a branch",
		Long: `Switch the worktree to a branch.

Fails when the worktree has uncommitted changes; the current branch is
left untouched in that case.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, path, err := buildCoordinator()
			if err != nil {
				return err
			}
			if err := coord.Checkout(cmd.Context(), path, args[0]); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Switched to %s.", args[0])
			return nil
		},
	}
}
