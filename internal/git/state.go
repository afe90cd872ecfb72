package git

import (
	"context"
	"os"
	"path/filepath"
)

// State reports whether a rebase or merge is in progress in a worktree,
// derived from git's on-disk markers.
type State struct {
	Rebasing bool `json:"isRebasing"`
	Merging  bool `json:"isMerging"`
}

// InProgress reports whether any history-rewriting operation is underway.
func (s State) InProgress() bool {
	return s.Rebasing || s.Merging
}

// RepoState inspects the worktree's git directory for in-progress rebase or
// merge markers. It is read-only and recomputed on every call: the state can
// change from outside the coordinator (the user running git in a terminal),
// so it must never be cached. It also must not take the coordinator's
// per-worktree lock, since it doubles as a pre-flight check before the lock
// is acquired.
func (c *Client) RepoState(ctx context.Context) (State, error) {
	gitDir, err := c.GitDir(ctx)
	if err != nil {
		return State{}, err
	}

	rebasing := dirEntryExists(filepath.Join(gitDir, "rebase-merge")) ||
		dirEntryExists(filepath.Join(gitDir, "rebase-apply"))
	merging := dirEntryExists(filepath.Join(gitDir, "MERGE_HEAD"))

	return State{Rebasing: rebasing, Merging: merging}, nil
}

func dirEntryExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
