package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Report whether a rebase or merge is in progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, path, err := buildCoordinator()
			if err != nil {
				return err
			}
			state, err := coord.State(cmd.Context(), path)
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(cmd.OutOrStdout(), state)
			}
			switch {
			case state.Rebasing:
				fmt.Fprintln(cmd.OutOrStdout(), "Rebase in progress.")
			case state.Merging:
				fmt.Fprintln(cmd.OutOrStdout(), "Merge in progress.")
			default:
				fmt.Fprintln(cmd.OutOrStdout(), "No operation in progress.")
			}
			return nil
		},
	}
}
