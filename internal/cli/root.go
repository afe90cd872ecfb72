// Package cli implements the treefort command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile      string
	worktreePath string
	verbose      bool
	quiet        bool
	jsonOut      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "treefort",
	Short: "Safe git operations across concurrent worktrees",
	Long: `treefort coordinates mutating git operations (checkout, commit, push,
pull, merge, rebase) across a set of worktrees that may be manipulated
concurrently.

Operations against the same worktree run one at a time in request order;
operations against different worktrees run in parallel. Conflicts are
aborted automatically so a worktree is never left mid-merge.

Quick start:
  treefort init               Write a default config to .treefort/config.yaml
  treefort sync               Pull with rebase, publishing the branch if needed
  treefort commit -m "msg"    Commit staged changes
  treefort merge main         Merge the current branch into main
  treefort pr create          Open a pull request for the current branch`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .treefort/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&worktreePath, "path", "C", "", "worktree to operate on (default is current directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output as JSON")

	// Add subcommands
	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newFetchCmd())
	rootCmd.AddCommand(newCheckoutCmd())
	rootCmd.AddCommand(newLogCmd())
	rootCmd.AddCommand(newCommitCmd())
	rootCmd.AddCommand(newPushCmd())
	rootCmd.AddCommand(newPullCmd())
	rootCmd.AddCommand(newSyncCmd())
	rootCmd.AddCommand(newMergeCmd())
	rootCmd.AddCommand(newAbortCmd())
	rootCmd.AddCommand(newStateCmd())
	rootCmd.AddCommand(newPRCmd())
	rootCmd.AddCommand(newWorktreesCmd())
	rootCmd.AddCommand(newVersionCmd())
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Search for config in .treefort directory
		viper.AddConfigPath(".treefort")
		viper.AddConfigPath("$HOME/.treefort")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("TREEFORT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if verbose {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}
