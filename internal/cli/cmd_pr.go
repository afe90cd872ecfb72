package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/treefort-dev/treefort/internal/hosting"

	// Register hosting providers.
	_ "github.com/treefort-dev/treefort/internal/hosting/github"
	_ "github.com/treefort-dev/treefort/internal/hosting/gitlab"
)

func newPRCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pr",
		Short: "Work with pull requests on the hosting provider",
	}
	cmd.AddCommand(newPRCreateCmd())
	cmd.AddCommand(newPRStatusCmd())
	return cmd
}

func newPRCreateCmd() *cobra.Command {
	var (
		title string
		body  string
		base  string
		draft bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Open a pull request for the current branch",
		Long: `Open a pull request (GitHub) or merge request (GitLab) for the
worktree's current branch. The provider is detected from the remote URL
unless configured explicitly. The branch is pushed with an upstream
first if it has none.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, path, err := buildCoordinator()
			if err != nil {
				return err
			}
			result, err := coord.CreatePR(cmd.Context(), path, hosting.PRCreateOptions{
				Title: title,
				Body:  body,
				Base:  base,
				Draft: draft,
			})
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(cmd.OutOrStdout(), result)
			}
			printSuccess(cmd.OutOrStdout(), "Opened #%d: %s", result.Number, result.URL)
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "PR title (default is the branch name)")
	cmd.Flags().StringVarP(&body, "body", "b", "", "PR description")
	cmd.Flags().StringVar(&base, "base", "", "base branch (default is the remote default branch)")
	cmd.Flags().BoolVar(&draft, "draft", false, "open as a draft")
	return cmd
}

func newPRStatusCmd() *cobra.Command {
	var field string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the PR and CI status for the current branch",
		Long: `Show the hosting provider's view of the current branch: the open PR,
its CI checks, and a rolled-up conclusion.

--field extracts one value from the status using a dotted path, handy
in scripts:

  treefort pr status --field pr.number
  treefort pr status --field checks_conclusion`,
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, path, err := buildCoordinator()
			if err != nil {
				return err
			}
			status, err := coord.RemoteStatus(cmd.Context(), path)
			if err != nil {
				return err
			}

			if field != "" {
				raw, err := json.Marshal(status)
				if err != nil {
					return err
				}
				value := gjson.GetBytes(raw, field)
				if !value.Exists() {
					return fmt.Errorf("no field %q in status", field)
				}
				fmt.Fprintln(cmd.OutOrStdout(), value.String())
				return nil
			}
			if jsonOut {
				return printJSON(cmd.OutOrStdout(), status)
			}

			out := cmd.OutOrStdout()
			if status.PR == nil {
				fmt.Fprintf(out, "No open PR for %s.\n", status.Branch)
			} else {
				fmt.Fprintf(out, "#%d %s (%s)\n%s\n", status.PR.Number, status.PR.Title, status.PR.State, status.PR.HTMLURL)
			}
			if len(status.Checks) > 0 {
				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "CHECK\tSTATUS\tCONCLUSION")
				for _, c := range status.Checks {
					fmt.Fprintf(w, "%s\t%s\t%s\n", c.Name, c.Status, c.Conclusion)
				}
				if err := w.Flush(); err != nil {
					return err
				}
			}
			fmt.Fprintf(out, "Checks: %s\n", status.ChecksConclusion)
			return nil
		},
	}

	cmd.Flags().StringVar(&field, "field", "", "print a single field from the status (dotted path)")
	return cmd
}
