package coordinator

import (
	"context"

	"github.com/treefort-dev/treefort/internal/git"
	"github.com/treefort-dev/treefort/internal/registry"
)

// Checkout switches the worktree to branch. Fails with ErrDirtyWorktree
// when uncommitted changes exist; the checked-out branch is unchanged on
// any failure.
func (c *Coordinator) Checkout(ctx context.Context, path, branch string) error {
	if err := c.authorize(ctx, path); err != nil {
		return err
	}
	log := c.opLogger("checkout", path)
	return c.locks.WithLock(path, func() error {
		client := c.local(path)
		if err := ensureClean(ctx, client); err != nil {
			return err
		}
		if err := client.Checkout(ctx, branch); err != nil {
			return err
		}
		log.Info("checked out branch", "branch", branch)
		return nil
	})
}

// History returns the most recent commits on the current branch, newest
// first. Limit <= 0 uses a default.
func (c *Coordinator) History(ctx context.Context, path string, limit int) ([]git.HistoryEntry, error) {
	if err := c.authorize(ctx, path); err != nil {
		return nil, err
	}
	var entries []git.HistoryEntry
	err := c.locks.WithLock(path, func() error {
		var err error
		entries, err = c.local(path).Log(ctx, limit)
		return err
	})
	return entries, err
}

// State reports whether a rebase or merge is in progress. It never takes
// the worktree lock so it can be used as a pre-flight check even while an
// operation is running.
func (c *Coordinator) State(ctx context.Context, path string) (git.State, error) {
	if err := c.authorize(ctx, path); err != nil {
		return git.State{}, err
	}
	return c.local(path).RepoState(ctx)
}

// AbortRebase aborts an in-progress rebase.
func (c *Coordinator) AbortRebase(ctx context.Context, path string) error {
	if err := c.authorize(ctx, path); err != nil {
		return err
	}
	log := c.opLogger("abort-rebase", path)
	return c.locks.WithLock(path, func() error {
		if err := c.local(path).AbortRebase(ctx); err != nil {
			return err
		}
		log.Info("rebase aborted")
		return nil
	})
}

// AbortMerge aborts an in-progress merge.
func (c *Coordinator) AbortMerge(ctx context.Context, path string) error {
	if err := c.authorize(ctx, path); err != nil {
		return err
	}
	log := c.opLogger("abort-merge", path)
	return c.locks.WithLock(path, func() error {
		if err := c.local(path).AbortMerge(ctx); err != nil {
			return err
		}
		log.Info("merge aborted")
		return nil
	})
}

// Worktrees lists all registered worktrees with their checked-out branches.
func (c *Coordinator) Worktrees(ctx context.Context) ([]registry.Worktree, error) {
	return c.registry.ListWorktrees(ctx)
}
