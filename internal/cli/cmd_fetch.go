package cli

import (
	"github.com/spf13/cobra"
)

func newFetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Update remote-tracking refs",
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, path, err := buildCoordinator()
			if err != nil {
				return err
			}
			if err := coord.Fetch(cmd.Context(), path); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Fetched.")
			return nil
		},
	}
}
