package cli

import (
	"github.com/spf13/cobra"

	"github.com/treefort-dev/treefort/internal/coordinator"
)

func newCommitCmd() *cobra.Command {
	var (
		message string
		only    []string
	)

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Commit staged changes",
		Long: `Commit staged changes with the given message.

With --only, the index is reset first and exactly the named files are
staged and committed, regardless of what was staged before:

  treefort commit -m "fix parser" --only internal/parser/parse.go`,
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, path, err := buildCoordinator()
			if err != nil {
				return err
			}

			var result *coordinator.CommitResult
			if len(only) > 0 {
				result, err = coord.AtomicCommit(cmd.Context(), path, only, message)
			} else {
				result, err = coord.Commit(cmd.Context(), path, message)
			}
			if err != nil {
				return err
			}

			if jsonOut {
				return printJSON(cmd.OutOrStdout(), result)
			}
			printSuccess(cmd.OutOrStdout(), "Committed %s.", result.Hash[:8])
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message (required)")
	cmd.Flags().StringSliceVar(&only, "only", nil, "commit exactly these files, ignoring the current index")
	_ = cmd.MarkFlagRequired("message")
	return cmd
}
