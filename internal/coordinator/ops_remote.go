package coordinator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/treefort-dev/treefort/internal/git"
)

// Fetch updates remote-tracking refs from the configured remote.
func (c *Coordinator) Fetch(ctx context.Context, path string) error {
	if err := c.authorize(ctx, path); err != nil {
		return err
	}
	return c.locks.WithLock(path, func() error {
		return c.network(path).Fetch(ctx, c.cfg.Git.Remote)
	})
}

// Push pushes the current branch. When the branch has no upstream yet, the
// push sets one regardless of setUpstream, so a fresh branch never fails
// with a missing-upstream error.
func (c *Coordinator) Push(ctx context.Context, path string, setUpstream bool) error {
	if err := c.authorize(ctx, path); err != nil {
		return err
	}
	log := c.opLogger("push", path)
	return c.locks.WithLock(path, func() error {
		client := c.network(path)
		branch, err := client.CurrentBranch(ctx)
		if err != nil {
			return err
		}
		if !setUpstream && !client.HasUpstream(ctx) {
			setUpstream = true
		}
		if err := client.Push(ctx, c.cfg.Git.Remote, branch, setUpstream); err != nil {
			return err
		}
		log.Info("pushed branch", "branch", branch, "set_upstream", setUpstream)
		c.refreshRemote(ctx, client, log)
		return nil
	})
}

// ForcePush force-pushes the current branch with --force-with-lease.
// Protected branches require confirmProtected; the check runs before any
// command touches the remote.
func (c *Coordinator) ForcePush(ctx context.Context, path string, confirmProtected bool) error {
	if err := c.authorize(ctx, path); err != nil {
		return err
	}
	log := c.opLogger("force-push", path)
	return c.locks.WithLock(path, func() error {
		client := c.network(path)
		branch, err := client.CurrentBranch(ctx)
		if err != nil {
			return err
		}
		if c.cfg.Git.IsProtectedBranch(branch) && !confirmProtected {
			return fmt.Errorf("%w: %q (confirm explicitly to force-push a protected branch)", ErrProtectedBranch, branch)
		}
		if err := client.PushForceWithLease(ctx, c.cfg.Git.Remote, branch); err != nil {
			return err
		}
		log.Info("force-pushed branch", "branch", branch)
		c.refreshRemote(ctx, client, log)
		return nil
	})
}

// Pull rebase-pulls the current branch. autoStash stashes uncommitted
// changes around the pull; without it a dirty tree is an error.
func (c *Coordinator) Pull(ctx context.Context, path string, autoStash bool) error {
	if err := c.authorize(ctx, path); err != nil {
		return err
	}
	log := c.opLogger("pull", path)
	return c.locks.WithLock(path, func() error {
		return c.pullLocked(ctx, path, autoStash, false, log)
	})
}

// Sync is Pull that additionally recovers a branch with no upstream by
// pushing with --set-upstream instead of failing.
func (c *Coordinator) Sync(ctx context.Context, path string, autoStash bool) error {
	if err := c.authorize(ctx, path); err != nil {
		return err
	}
	log := c.opLogger("sync", path)
	return c.locks.WithLock(path, func() error {
		return c.pullLocked(ctx, path, autoStash, true, log)
	})
}

// pullLocked runs the pull state machine: guard, optional stash, rebase
// pull, optional stash pop. Must be called with the path's lock held.
func (c *Coordinator) pullLocked(ctx context.Context, path string, autoStash, recoverUpstream bool, log *slog.Logger) error {
	client := c.network(path)
	if err := ensureIdle(ctx, client); err != nil {
		return err
	}

	clean, err := client.IsClean(ctx)
	if err != nil {
		return err
	}
	stashed := false
	if !clean {
		if !autoStash {
			return fmt.Errorf("%w: %s (commit, stash, or pass auto-stash)", ErrDirtyWorktree, path)
		}
		if err := client.StashPush(ctx, "treefort: auto-stash before pull"); err != nil {
			return fmt.Errorf("stash changes: %w", err)
		}
		stashed = true
		log.Debug("stashed uncommitted changes")
	}

	pullErr := client.PullRebase(ctx)
	if pullErr != nil {
		switch git.Classify(pullErr) {
		case git.KindConflict:
			if abortErr := client.AbortRebase(ctx); abortErr != nil {
				log.Warn("failed to abort conflicted rebase", "error", abortErr)
			}
			pullErr = &ConflictError{Path: path, Op: "rebase", Err: pullErr}
		case git.KindMissingUpstream:
			if recoverUpstream {
				pullErr = c.pushNewUpstream(ctx, client, log)
			}
		}
	}

	if stashed {
		if popErr := client.StashPop(ctx); popErr != nil {
			if pullErr != nil {
				log.Warn("failed to restore stashed changes", "error", popErr)
				return pullErr
			}
			return fmt.Errorf("pull succeeded but restoring stashed changes failed (run `git stash pop` manually): %w", popErr)
		}
	}
	return pullErr
}

// pushNewUpstream publishes the current branch with --set-upstream. Used by
// Sync when the branch has nothing to pull from yet.
func (c *Coordinator) pushNewUpstream(ctx context.Context, client *git.Client, log *slog.Logger) error {
	branch, err := client.CurrentBranch(ctx)
	if err != nil {
		return err
	}
	if err := client.Push(ctx, c.cfg.Git.Remote, branch, true); err != nil {
		return err
	}
	log.Info("no upstream, published branch instead", "branch", branch)
	return nil
}

// refreshRemote runs a trailing fetch so remote-tracking refs reflect the
// push that just happened. Best-effort: the primary mutation already
// succeeded, so a failure here is logged and swallowed.
func (c *Coordinator) refreshRemote(ctx context.Context, client *git.Client, log *slog.Logger) {
	if err := client.Fetch(ctx, c.cfg.Git.Remote); err != nil {
		log.Warn("post-push fetch failed", "error", err)
	}
}
