package coordinator

import (
	"context"
	"fmt"
	"strings"
)

// Commit records whatever is currently staged as a new commit.
func (c *Coordinator) Commit(ctx context.Context, path, message string) (*CommitResult, error) {
	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyMessage
	}
	if err := c.authorize(ctx, path); err != nil {
		return nil, err
	}
	log := c.opLogger("commit", path)
	var result *CommitResult
	err := c.locks.WithLock(path, func() error {
		hash, err := c.local(path).Commit(ctx, message)
		if err != nil {
			return err
		}
		log.Info("created commit", "hash", hash)
		result = &CommitResult{Hash: hash}
		return nil
	})
	return result, err
}

// AtomicCommit commits exactly the given files and nothing else. The index
// is reset to HEAD first, so previously staged entries never leak into the
// commit.
func (c *Coordinator) AtomicCommit(ctx context.Context, path string, files []string, message string) (*CommitResult, error) {
	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyMessage
	}
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	if err := c.authorize(ctx, path); err != nil {
		return nil, err
	}
	log := c.opLogger("atomic-commit", path)
	var result *CommitResult
	err := c.locks.WithLock(path, func() error {
		client := c.local(path)
		if err := client.ResetIndex(ctx); err != nil {
			return fmt.Errorf("reset index: %w", err)
		}
		if err := client.Stage(ctx, files...); err != nil {
			return fmt.Errorf("stage files: %w", err)
		}
		staged, err := client.HasStagedChanges(ctx)
		if err != nil {
			return err
		}
		if !staged {
			return fmt.Errorf("staging produced no changes for %s", strings.Join(files, ", "))
		}
		hash, err := client.Commit(ctx, message)
		if err != nil {
			return err
		}
		log.Info("created commit", "hash", hash, "files", len(files))
		result = &CommitResult{Hash: hash}
		return nil
	})
	return result, err
}
