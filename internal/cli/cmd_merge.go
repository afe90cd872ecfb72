package cli

import (
	"github.com/spf13/cobra"
)

func newMergeCmd() *cobra.Command {
	var (
		ffOnly    bool
		useRebase bool
	)

	cmd := &cobra.Command{
		Use:   "merge <target-branch> | merge default",
		Short: "Merge the current branch into a local branch",
		Long: `Merge the worktree's current branch into <target-branch>.

If the target branch is checked out in another worktree, the merge runs
there and that worktree's checkout is left on its branch. Otherwise the
target is checked out temporarily here and the original branch is
restored afterward, whatever happens.

"merge default" goes the other way: it fetches and merges the remote
default branch (origin/main or origin/master) into the current branch;
--rebase rebases onto it instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, path, err := buildCoordinator()
			if err != nil {
				return err
			}

			if args[0] == "default" {
				if err := coord.MergeFromDefault(cmd.Context(), path, useRebase); err != nil {
					return err
				}
				printSuccess(cmd.OutOrStdout(), "Brought up to date with the default branch.")
				return nil
			}

			result, err := coord.MergeIntoLocalBranch(cmd.Context(), path, args[0], ffOnly)
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(cmd.OutOrStdout(), result)
			}
			printSuccess(cmd.OutOrStdout(), "Merged into %s (%s).", args[0], result.Type)
			return nil
		},
	}

	cmd.Flags().BoolVar(&ffOnly, "ff-only", false, "fail instead of creating a merge commit")
	cmd.Flags().BoolVar(&useRebase, "rebase", false, "rebase onto the default branch (merge default only)")
	return cmd
}
