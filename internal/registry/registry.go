// Package registry exposes which worktrees exist and which are authorized
// for coordinated operations.
//
// The coordinator only consumes this narrow read-only view; worktree
// lifecycle (creation, removal) is owned elsewhere.
package registry

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/treefort-dev/treefort/internal/git"
)

// ErrUnauthorizedWorktree indicates a path is not a registered worktree.
var ErrUnauthorizedWorktree = errors.New("path is not a registered worktree")

// Worktree is one working-directory checkout.
type Worktree struct {
	Path   string // Absolute filesystem path
	Branch string // Branch checked out, or "(detached)"
}

// Registry reports registered worktrees and authorizes paths.
type Registry interface {
	// ListWorktrees returns all registered worktrees with their current
	// branches. The result is a fresh snapshot on every call.
	ListWorktrees(ctx context.Context) ([]Worktree, error)

	// IsAuthorized reports whether path identifies a registered worktree.
	IsAuthorized(ctx context.Context, path string) bool
}

// GitRegistry is a Registry backed by git's own worktree bookkeeping,
// listing every worktree attached to the repository at repoPath.
type GitRegistry struct {
	client *git.Client
	group  singleflight.Group
}

// NewGitRegistry creates a registry for the repository at repoPath.
func NewGitRegistry(repoPath string, opts ...git.Option) *GitRegistry {
	return &GitRegistry{client: git.NewLocal(repoPath, opts...)}
}

// ListWorktrees parses `git worktree list --porcelain`. Concurrent callers
// share one in-flight listing; nothing is cached across calls.
func (r *GitRegistry) ListWorktrees(ctx context.Context) ([]Worktree, error) {
	v, err, _ := r.group.Do("list", func() (any, error) {
		return r.client.ListWorktrees(ctx)
	})
	if err != nil {
		return nil, err
	}
	infos := v.([]git.WorktreeInfo)

	worktrees := make([]Worktree, 0, len(infos))
	for _, info := range infos {
		worktrees = append(worktrees, Worktree{Path: info.Path, Branch: info.Branch})
	}
	return worktrees, nil
}

// IsAuthorized reports whether path is one of the repository's worktrees.
// Paths are compared after cleaning, trailing separators included.
func (r *GitRegistry) IsAuthorized(ctx context.Context, path string) bool {
	worktrees, err := r.ListWorktrees(ctx)
	if err != nil {
		return false
	}
	want := normalizePath(path)
	for _, wt := range worktrees {
		if normalizePath(wt.Path) == want {
			return true
		}
	}
	return false
}

func normalizePath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	// Resolve symlinks so paths like /var/... and /private/var/... compare
	// equal; fall back to the cleaned path when the target doesn't exist.
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	return strings.TrimSuffix(filepath.Clean(abs), string(filepath.Separator))
}
