// Package coordinator serializes mutating git operations across worktrees.
//
// Every mutating operation is keyed by worktree path: callers on the same
// path queue in FIFO order, callers on different paths run concurrently.
// The coordinator owns no repository state of its own; it only drives git
// through the command facade and inspects the results.
package coordinator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/treefort-dev/treefort/internal/config"
	"github.com/treefort-dev/treefort/internal/git"
	"github.com/treefort-dev/treefort/internal/hosting"
	"github.com/treefort-dev/treefort/internal/locks"
	"github.com/treefort-dev/treefort/internal/registry"
)

// clientFactory builds a git client bound to one worktree path.
type clientFactory func(path string) *git.Client

// providerFactory builds a hosting provider from a remote URL.
type providerFactory func(remoteURL string, cfg hosting.Config) (hosting.Provider, error)

// Coordinator executes version-control operations against registered
// worktrees under per-path mutual exclusion.
type Coordinator struct {
	registry registry.Registry
	locks    *locks.Table
	cfg      config.Config
	logger   *slog.Logger

	local       clientFactory
	network     clientFactory
	newProvider providerFactory
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// WithClientFactories overrides how git clients are built per worktree.
// Used by tests to inject scripted runners.
func WithClientFactories(local, network clientFactory) Option {
	return func(c *Coordinator) {
		c.local = local
		c.network = network
	}
}

// WithProviderFactory overrides how hosting providers are constructed.
func WithProviderFactory(factory providerFactory) Option {
	return func(c *Coordinator) {
		c.newProvider = factory
	}
}

// New creates a coordinator over the given worktree registry.
func New(reg registry.Registry, cfg config.Config, opts ...Option) *Coordinator {
	c := &Coordinator{
		registry:    reg,
		locks:       locks.NewTable(),
		cfg:         cfg,
		logger:      slog.Default(),
		newProvider: hosting.NewProvider,
	}
	for _, opt := range opts {
		opt(c)
	}
	// WithLogger must precede WithLockRetry: the retry policy captures the
	// client's logger when the option is applied.
	if c.local == nil {
		c.local = func(path string) *git.Client {
			return git.NewLocal(path,
				git.WithLogger(c.logger),
				git.WithTimeout(cfg.Git.LocalTimeout),
				git.WithLockRetry(cfg.Git.LockRetries, cfg.Git.LockRetryDelay))
		}
	}
	if c.network == nil {
		c.network = func(path string) *git.Client {
			return git.NewNetwork(path,
				git.WithLogger(c.logger),
				git.WithTimeout(cfg.Git.NetworkTimeout),
				git.WithLockRetry(cfg.Git.LockRetries, cfg.Git.LockRetryDelay))
		}
	}
	return c
}

// newOpID returns a short identifier correlating log lines for one operation.
func newOpID() string {
	return "op-" + uuid.NewString()[:8]
}

// opLogger returns a logger scoped to one operation invocation.
func (c *Coordinator) opLogger(op, path string) *slog.Logger {
	return c.logger.With("op", op, "op_id", newOpID(), "path", path)
}

// authorize rejects paths that are not registered worktrees. Runs before
// any lock acquisition or git command.
func (c *Coordinator) authorize(ctx context.Context, path string) error {
	if !c.registry.IsAuthorized(ctx, path) {
		return fmt.Errorf("%w: %s", registry.ErrUnauthorizedWorktree, path)
	}
	return nil
}

// ensureClean fails with ErrDirtyWorktree when the worktree has staged,
// unstaged, or untracked changes.
func ensureClean(ctx context.Context, client *git.Client) error {
	clean, err := client.IsClean(ctx)
	if err != nil {
		return err
	}
	if !clean {
		return fmt.Errorf("%w: %s (commit or stash your changes first)", ErrDirtyWorktree, client.WorkDir())
	}
	return nil
}

// ensureIdle fails with ErrOperationInProgress when a rebase or merge is
// already underway. The state is read fresh from disk on every call.
func ensureIdle(ctx context.Context, client *git.Client) error {
	state, err := client.RepoState(ctx)
	if err != nil {
		return err
	}
	if state.Rebasing {
		return fmt.Errorf("%w: rebase in progress in %s (resolve or abort it first)", ErrOperationInProgress, client.WorkDir())
	}
	if state.Merging {
		return fmt.Errorf("%w: merge in progress in %s (resolve or abort it first)", ErrOperationInProgress, client.WorkDir())
	}
	return nil
}
