package coordinator

import (
	"context"
	"fmt"

	"github.com/treefort-dev/treefort/internal/git"
	"github.com/treefort-dev/treefort/internal/hosting"
)

// hostingConfig maps the loaded configuration onto the provider factory's
// config shape.
func (c *Coordinator) hostingConfig() hosting.Config {
	return hosting.Config{
		Provider:    c.cfg.Hosting.Provider,
		BaseURL:     c.cfg.Hosting.BaseURL,
		TokenEnvVar: c.cfg.Hosting.TokenEnvVar,
	}
}

// CreatePR opens a pull request for the worktree's current branch. The
// branch is pushed with an upstream first if it has none, so the remote
// always has the head the PR points at.
func (c *Coordinator) CreatePR(ctx context.Context, path string, opts hosting.PRCreateOptions) (*PRResult, error) {
	if err := c.authorize(ctx, path); err != nil {
		return nil, err
	}
	log := c.opLogger("create-pr", path)
	var result *PRResult
	err := c.locks.WithLock(path, func() error {
		client := c.network(path)
		branch, err := client.CurrentBranch(ctx)
		if err != nil {
			return err
		}
		if !client.HasUpstream(ctx) {
			if err := client.Push(ctx, c.cfg.Git.Remote, branch, true); err != nil {
				return fmt.Errorf("publish branch %s: %w", branch, err)
			}
			log.Info("published branch before opening PR", "branch", branch)
			c.refreshRemote(ctx, client, log)
		}

		remoteURL, err := client.RemoteURL(ctx, c.cfg.Git.Remote)
		if err != nil {
			return err
		}
		provider, err := c.newProvider(remoteURL, c.hostingConfig())
		if err != nil {
			return err
		}

		if opts.Head == "" {
			opts.Head = branch
		}
		if opts.Base == "" {
			opts.Base = c.defaultBranch(ctx, client)
		}
		if opts.Title == "" {
			opts.Title = branch
		}
		pr, err := provider.CreatePR(ctx, opts)
		if err != nil {
			return err
		}
		log.Info("opened pull request", "number", pr.Number, "url", pr.HTMLURL)
		result = &PRResult{Number: pr.Number, URL: pr.HTMLURL}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RemoteStatus reports the hosting provider's view of the current branch:
// the open PR (if any) and its CI checks. Read-only, so it runs without
// the worktree lock.
func (c *Coordinator) RemoteStatus(ctx context.Context, path string) (*hosting.BranchStatus, error) {
	if err := c.authorize(ctx, path); err != nil {
		return nil, err
	}
	client := c.network(path)
	branch, err := client.CurrentBranch(ctx)
	if err != nil {
		return nil, err
	}
	remoteURL, err := client.RemoteURL(ctx, c.cfg.Git.Remote)
	if err != nil {
		return nil, err
	}
	provider, err := c.newProvider(remoteURL, c.hostingConfig())
	if err != nil {
		return nil, err
	}
	return provider.BranchStatus(ctx, branch)
}

// defaultBranch guesses the remote default branch, preferring main.
func (c *Coordinator) defaultBranch(ctx context.Context, client *git.Client) string {
	for _, name := range []string{"main", "master"} {
		if client.RemoteBranchExists(ctx, c.cfg.Git.Remote, name) {
			return name
		}
	}
	return "main"
}
