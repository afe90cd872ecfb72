package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newWorktreesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worktrees",
		Short: "List the repository's worktrees",
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, _, err := buildCoordinator()
			if err != nil {
				return err
			}
			worktrees, err := coord.Worktrees(cmd.Context())
			if err != nil {
				return err
			}

			if jsonOut {
				return printJSON(cmd.OutOrStdout(), worktrees)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PATH\tBRANCH")
			for _, wt := range worktrees {
				fmt.Fprintf(w, "%s\t%s\n", wt.Path, wt.Branch)
			}
			return w.Flush()
		},
	}
}
