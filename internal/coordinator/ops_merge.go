package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/treefort-dev/treefort/internal/git"
	"github.com/treefort-dev/treefort/internal/registry"
)

// MergeFromDefault brings the current branch up to date with the remote
// default branch (origin/main, falling back to origin/master). useRebase
// rebases onto it instead of merging. Conflicts abort the operation and
// leave the branch as it was.
func (c *Coordinator) MergeFromDefault(ctx context.Context, path string, useRebase bool) error {
	if err := c.authorize(ctx, path); err != nil {
		return err
	}
	log := c.opLogger("merge-from-default", path)
	return c.locks.WithLock(path, func() error {
		client := c.network(path)
		if err := ensureIdle(ctx, client); err != nil {
			return err
		}
		if err := ensureClean(ctx, client); err != nil {
			return err
		}
		if err := client.Fetch(ctx, c.cfg.Git.Remote); err != nil {
			return fmt.Errorf("fetch %s: %w", c.cfg.Git.Remote, err)
		}

		var defaultRef string
		for _, name := range []string{"main", "master"} {
			if client.RemoteBranchExists(ctx, c.cfg.Git.Remote, name) {
				defaultRef = c.cfg.Git.Remote + "/" + name
				break
			}
		}
		if defaultRef == "" {
			return ErrNoDefaultBranch
		}

		if useRebase {
			if err := client.Rebase(ctx, defaultRef); err != nil {
				if git.Classify(err) == git.KindConflict {
					if abortErr := client.AbortRebase(ctx); abortErr != nil {
						log.Warn("failed to abort conflicted rebase", "error", abortErr)
					}
					return &ConflictError{Path: path, Op: "rebase", Err: err}
				}
				return err
			}
			log.Info("rebased onto default branch", "ref", defaultRef)
			return nil
		}

		if err := client.Merge(ctx, defaultRef, false); err != nil {
			if git.Classify(err) == git.KindConflict {
				if abortErr := client.AbortMerge(ctx); abortErr != nil {
					log.Warn("failed to abort conflicted merge", "error", abortErr)
				}
				return &ConflictError{Path: path, Op: "merge", Err: err}
			}
			return err
		}
		log.Info("merged default branch", "ref", defaultRef)
		return nil
	})
}

// MergeIntoLocalBranch merges the worktree's current branch (the source)
// into targetBranch. If the target is checked out in another worktree the
// merge runs there under that worktree's lock; otherwise the target is
// checked out temporarily in this worktree and the original branch is
// restored on every exit path.
func (c *Coordinator) MergeIntoLocalBranch(ctx context.Context, path, targetBranch string, fastForwardOnly bool) (*MergeResult, error) {
	if err := c.authorize(ctx, path); err != nil {
		return nil, err
	}
	log := c.opLogger("merge", path)
	var result *MergeResult
	err := c.locks.WithLock(path, func() error {
		client := c.local(path)

		source, err := client.CurrentBranch(ctx)
		if err != nil {
			return err
		}
		if source == targetBranch {
			return fmt.Errorf("%w: %q", ErrSelfMerge, source)
		}
		if err := ensureClean(ctx, client); err != nil {
			return err
		}
		if err := ensureIdle(ctx, client); err != nil {
			return err
		}
		exists, err := client.LocalBranchExists(ctx, targetBranch)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: %q", ErrBranchNotFound, targetBranch)
		}

		sourceSHA, err := client.RevParse(ctx, source)
		if err != nil {
			return err
		}
		targetSHA, err := client.RevParse(ctx, targetBranch)
		if err != nil {
			return err
		}
		if sourceSHA == targetSHA {
			result = &MergeResult{Type: MergeTypeUpToDate}
			return nil
		}

		ffPossible, err := client.IsAncestor(ctx, targetSHA, sourceSHA)
		if err != nil {
			return err
		}
		if fastForwardOnly && !ffPossible {
			return fmt.Errorf("%w: %q has commits not on %q", ErrNotFastForwardable, targetBranch, source)
		}

		other, err := c.findWorktreeOnBranch(ctx, path, targetBranch)
		if err != nil {
			return err
		}
		if other != nil {
			result, err = c.mergeElsewhere(ctx, other, source, fastForwardOnly, ffPossible, log)
			return err
		}
		result, err = c.mergeHere(ctx, client, source, sourceSHA, targetBranch, targetSHA, fastForwardOnly, log)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// findWorktreeOnBranch returns the worktree (other than path) that has
// branch checked out, or nil.
func (c *Coordinator) findWorktreeOnBranch(ctx context.Context, path, branch string) (*registry.Worktree, error) {
	worktrees, err := c.registry.ListWorktrees(ctx)
	if err != nil {
		return nil, err
	}
	for _, wt := range worktrees {
		if wt.Branch == branch && filepath.Clean(wt.Path) != filepath.Clean(path) {
			return &wt, nil
		}
	}
	return nil, nil
}

// mergeElsewhere merges source into the branch checked out in other's
// worktree, under that worktree's lock. The caller still holds the source
// worktree's lock; the two paths are distinct so this never self-deadlocks.
func (c *Coordinator) mergeElsewhere(ctx context.Context, other *registry.Worktree, source string, fastForwardOnly, ffPossible bool, log *slog.Logger) (*MergeResult, error) {
	mergeType := MergeTypeCommit
	if ffPossible {
		mergeType = MergeTypeFastForward
	}
	err := c.locks.WithLock(other.Path, func() error {
		client := c.local(other.Path)
		if err := ensureClean(ctx, client); err != nil {
			return err
		}
		if err := ensureIdle(ctx, client); err != nil {
			return err
		}
		if err := client.Merge(ctx, source, fastForwardOnly); err != nil {
			if git.Classify(err) == git.KindConflict {
				if abortErr := client.AbortMerge(ctx); abortErr != nil {
					log.Warn("failed to abort conflicted merge", "path", other.Path, "error", abortErr)
				}
				return &ConflictError{Path: other.Path, Op: "merge", Err: err}
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info("merged in other worktree", "source", source, "target", other.Branch,
		"target_path", other.Path, "merge_type", string(mergeType))
	return &MergeResult{Type: mergeType}, nil
}

// mergeHere checks out the target branch in the caller's worktree, merges
// the source into it, and restores the source branch. The restore runs on
// every exit path, including conflicts and unexpected errors.
func (c *Coordinator) mergeHere(ctx context.Context, client *git.Client, source, sourceSHA, targetBranch, targetSHA string, fastForwardOnly bool, log *slog.Logger) (result *MergeResult, err error) {
	if err := client.Checkout(ctx, targetBranch); err != nil {
		return nil, fmt.Errorf("checkout %s: %w", targetBranch, err)
	}
	defer func() {
		if restoreErr := client.Checkout(ctx, source); restoreErr != nil {
			log.Error("failed to restore original branch", "branch", source, "error", restoreErr)
			if err == nil {
				result = nil
				err = fmt.Errorf("merge succeeded but restoring branch %q failed: %w", source, restoreErr)
			}
		}
	}()

	if mergeErr := client.Merge(ctx, source, fastForwardOnly); mergeErr != nil {
		if git.Classify(mergeErr) == git.KindConflict {
			if abortErr := client.AbortMerge(ctx); abortErr != nil {
				log.Warn("failed to abort conflicted merge", "error", abortErr)
			}
			return nil, &ConflictError{Path: client.WorkDir(), Op: "merge", Err: mergeErr}
		}
		return nil, mergeErr
	}

	newHead, err := client.HeadCommit(ctx)
	if err != nil {
		return nil, err
	}
	mergeType := MergeTypeCommit
	switch newHead {
	case targetSHA:
		mergeType = MergeTypeUpToDate
	case sourceSHA:
		mergeType = MergeTypeFastForward
	}
	log.Info("merged in place", "source", source, "target", targetBranch, "merge_type", string(mergeType))
	return &MergeResult{Type: mergeType}, nil
}
