package cli

import (
	"github.com/spf13/cobra"
)

func newPullCmd() *cobra.Command {
	var autoStash bool

	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Pull the current branch with rebase",
		Long: `Pull the upstream branch with rebase.

A dirty worktree is an error unless --auto-stash is given, in which case
uncommitted changes are stashed around the pull and restored afterward.
Rebase conflicts abort the rebase automatically and report how to
resolve them.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, path, err := buildCoordinator()
			if err != nil {
				return err
			}
			if err := coord.Pull(cmd.Context(), path, autoStash); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Pulled.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&autoStash, "auto-stash", false, "stash uncommitted changes around the pull")
	return cmd
}

func newSyncCmd() *cobra.Command {
	var autoStash bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Pull with rebase, publishing the branch if it has no upstream",
		Long: `Pull the upstream branch with rebase, like pull. When the branch has no
upstream yet, sync publishes it with --set-upstream instead of failing,
so it works uniformly on fresh and established branches.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, path, err := buildCoordinator()
			if err != nil {
				return err
			}
			if err := coord.Sync(cmd.Context(), path, autoStash); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Synced.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&autoStash, "auto-stash", false, "stash uncommitted changes around the pull")
	return cmd
}
