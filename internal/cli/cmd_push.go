package cli

import (
	"github.com/spf13/cobra"
)

func newPushCmd() *cobra.Command {
	var (
		setUpstream      bool
		force            bool
		confirmProtected bool
	)

	cmd := &cobra.Command{
		Use:   "push",
		Short: "Push the current branch",
		Long: `Push the current branch, setting an upstream automatically when the
branch has none yet. A fetch follows the push so remote-tracking refs
stay current.

--force uses --force-with-lease, which fails if the remote has commits
this clone has not seen. Force-pushing a protected branch (main, master,
develop, production, staging by default) additionally requires
--confirm-protected.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, path, err := buildCoordinator()
			if err != nil {
				return err
			}
			if force {
				if err := coord.ForcePush(cmd.Context(), path, confirmProtected); err != nil {
					return err
				}
				printSuccess(cmd.OutOrStdout(), "Force-pushed.")
				return nil
			}
			if err := coord.Push(cmd.Context(), path, setUpstream); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Pushed.")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&setUpstream, "set-upstream", "u", false, "set upstream tracking for the branch")
	cmd.Flags().BoolVar(&force, "force", false, "force-push with --force-with-lease")
	cmd.Flags().BoolVar(&confirmProtected, "confirm-protected", false, "allow force-pushing a protected branch")
	return cmd
}
