// Package git wraps the git CLI for worktree coordination.
//
// A Client is bound to one worktree directory and one timeout profile. Local
// clients cover disk-only commands (status, checkout, commit, log); network
// clients cover anything that may touch a remote (fetch, push, pull) and get
// a much longer deadline to tolerate slow remotes and credential negotiation.
package git

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Timeout profiles. Network commands may trigger credential helpers and
// remote round-trips, so they get a generous deadline.
const (
	DefaultLocalTimeout   = 10 * time.Second
	DefaultNetworkTimeout = 2 * time.Minute
)

// Client runs git commands against a single worktree directory.
type Client struct {
	workDir string
	timeout time.Duration
	runner  CommandRunner
	retry   retryPolicy
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithRunner sets a custom command runner.
// This is primarily used for testing to inject mock command execution.
func WithRunner(runner CommandRunner) Option {
	return func(c *Client) {
		c.runner = runner
	}
}

// WithTimeout overrides the profile's command timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger used for retry warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithLockRetry overrides the transient-lock retry bounds. The retry policy
// logs through the client's logger as of when this option is applied, so
// WithLogger must come earlier in the option list.
func WithLockRetry(attempts int, delay time.Duration) Option {
	return func(c *Client) {
		c.retry = newRetryPolicy(attempts, delay, c.logger)
	}
}

// NewLocal creates a Client with the local (disk-only) timeout profile.
func NewLocal(workDir string, opts ...Option) *Client {
	return newClient(workDir, DefaultLocalTimeout, opts...)
}

// NewNetwork creates a Client with the network timeout profile.
func NewNetwork(workDir string, opts ...Option) *Client {
	return newClient(workDir, DefaultNetworkTimeout, opts...)
}

func newClient(workDir string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		workDir: workDir,
		timeout: timeout,
		runner:  NewExecRunner(),
		retry:   newRetryPolicy(DefaultLockRetries, DefaultLockRetryDelay, nil),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WorkDir returns the worktree directory this client operates in.
func (c *Client) WorkDir() string {
	return c.workDir
}

// run executes one git command under the client's timeout, retrying transient
// index/ref lock failures.
func (c *Client) run(ctx context.Context, args ...string) (string, error) {
	return c.retry.run(ctx, func() (string, error) {
		cmdCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		return c.runner.Run(cmdCtx, c.workDir, "git", args...)
	})
}

// CurrentBranch returns the current branch name.
func (c *Client) CurrentBranch(ctx context.Context) (string, error) {
	branch, err := c.run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", &GitError{Op: "get current branch", Err: err}
	}
	return branch, nil
}

// Checkout switches to the specified ref (branch, tag, or commit).
func (c *Client) Checkout(ctx context.Context, ref string) error {
	if _, err := c.run(ctx, "checkout", ref); err != nil {
		return &GitError{Op: "checkout " + ref, Err: err}
	}
	return nil
}

// Status returns the working tree status in short format, including
// untracked files.
func (c *Client) Status(ctx context.Context) (string, error) {
	status, err := c.run(ctx, "status", "--porcelain")
	if err != nil {
		return "", &GitError{Op: "status", Err: err}
	}
	return status, nil
}

// IsClean returns true if the working tree has no staged, unstaged, or
// untracked entries.
func (c *Client) IsClean(ctx context.Context) (bool, error) {
	status, err := c.Status(ctx)
	if err != nil {
		return false, err
	}
	return status == "", nil
}

// RevParse resolves a ref to a commit SHA.
func (c *Client) RevParse(ctx context.Context, ref string) (string, error) {
	sha, err := c.run(ctx, "rev-parse", "--verify", ref)
	if err != nil {
		return "", &GitError{Op: "resolve " + ref, Err: err}
	}
	return sha, nil
}

// HeadCommit returns the current HEAD commit SHA.
func (c *Client) HeadCommit(ctx context.Context) (string, error) {
	return c.RevParse(ctx, "HEAD")
}

// IsAncestor reports whether ancestor is an ancestor of descendant.
func (c *Client) IsAncestor(ctx context.Context, ancestor, descendant string) (bool, error) {
	_, err := c.run(ctx, "merge-base", "--is-ancestor", ancestor, descendant)
	if err == nil {
		return true, nil
	}
	// Exit status 1 means "not an ancestor"; anything else is a real failure.
	if isExitOne(err) {
		return false, nil
	}
	return false, &GitError{Op: "merge-base --is-ancestor", Err: err}
}

func isExitOne(err error) bool {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) && cmdErr.Err != nil &&
		strings.Contains(cmdErr.Err.Error(), "exit status 1") {
		return true
	}
	return strings.Contains(err.Error(), "exit status 1")
}

// LocalBranchExists reports whether name exists as a true local branch.
// Remote-tracking refs do not count.
func (c *Client) LocalBranchExists(ctx context.Context, name string) (bool, error) {
	_, err := c.run(ctx, "show-ref", "--verify", "--quiet", "refs/heads/"+name)
	if err == nil {
		return true, nil
	}
	if isExitOne(err) {
		return false, nil
	}
	return false, &GitError{Op: "check branch " + name, Err: err}
}

// RemoteBranchExists reports whether the remote-tracking ref remote/name is
// known locally (i.e. after a fetch).
func (c *Client) RemoteBranchExists(ctx context.Context, remote, name string) bool {
	_, err := c.run(ctx, "rev-parse", "--verify", "--quiet", remote+"/"+name)
	return err == nil
}

// HasUpstream reports whether the current branch has an upstream configured.
func (c *Client) HasUpstream(ctx context.Context) bool {
	_, err := c.run(ctx, "rev-parse", "--abbrev-ref", "--symbolic-full-name", "@{u}")
	return err == nil
}

// Fetch fetches from the remote.
func (c *Client) Fetch(ctx context.Context, remote string) error {
	if _, err := c.run(ctx, "fetch", remote); err != nil {
		return &GitError{Op: "fetch " + remote, Err: err}
	}
	return nil
}

// Push pushes branch to the remote. If setUpstream is true, uses -u to set
// upstream tracking.
func (c *Client) Push(ctx context.Context, remote, branch string, setUpstream bool) error {
	args := []string{"push"}
	if setUpstream {
		args = append(args, "-u")
	}
	args = append(args, remote, branch)
	if _, err := c.run(ctx, args...); err != nil {
		return &GitError{Op: "push", Err: err}
	}
	return nil
}

// PushForceWithLease force-pushes with --force-with-lease, which fails if the
// remote has commits this client has not seen.
func (c *Client) PushForceWithLease(ctx context.Context, remote, branch string) error {
	if _, err := c.run(ctx, "push", "--force-with-lease", remote, branch); err != nil {
		return &GitError{Op: "force push", Err: err}
	}
	return nil
}

// PullRebase pulls the upstream branch with rebase.
func (c *Client) PullRebase(ctx context.Context) error {
	if _, err := c.run(ctx, "pull", "--rebase"); err != nil {
		return &GitError{Op: "pull --rebase", Err: err}
	}
	return nil
}

// StashPush stashes all local changes, including untracked files.
func (c *Client) StashPush(ctx context.Context, message string) error {
	if _, err := c.run(ctx, "stash", "push", "--include-untracked", "-m", message); err != nil {
		return &GitError{Op: "stash push", Err: err}
	}
	return nil
}

// StashPop restores the most recent stash entry.
func (c *Client) StashPop(ctx context.Context) error {
	if _, err := c.run(ctx, "stash", "pop"); err != nil {
		return &GitError{Op: "stash pop", Err: err}
	}
	return nil
}

// Merge merges branch into the current branch with --no-edit.
// If ffOnly is true, passes --ff-only so a merge commit is never created.
func (c *Client) Merge(ctx context.Context, branch string, ffOnly bool) error {
	args := []string{"merge", "--no-edit"}
	if ffOnly {
		args = append(args, "--ff-only")
	}
	args = append(args, branch)
	if _, err := c.run(ctx, args...); err != nil {
		return &GitError{Op: "merge " + branch, Err: err}
	}
	return nil
}

// Rebase rebases the current branch onto target.
func (c *Client) Rebase(ctx context.Context, target string) error {
	if _, err := c.run(ctx, "rebase", target); err != nil {
		return &GitError{Op: "rebase onto " + target, Err: err}
	}
	return nil
}

// AbortMerge aborts an in-progress merge.
func (c *Client) AbortMerge(ctx context.Context) error {
	if _, err := c.run(ctx, "merge", "--abort"); err != nil {
		return &GitError{Op: "abort merge", Err: err}
	}
	return nil
}

// AbortRebase aborts an in-progress rebase.
func (c *Client) AbortRebase(ctx context.Context) error {
	if _, err := c.run(ctx, "rebase", "--abort"); err != nil {
		return &GitError{Op: "abort rebase", Err: err}
	}
	return nil
}

// ResetIndex resets the index to HEAD, leaving the working tree untouched.
func (c *Client) ResetIndex(ctx context.Context) error {
	if _, err := c.run(ctx, "reset", "HEAD"); err != nil {
		return &GitError{Op: "reset index", Err: err}
	}
	return nil
}

// Stage adds the given files to the staging area.
func (c *Client) Stage(ctx context.Context, files ...string) error {
	if len(files) == 0 {
		return nil
	}
	args := append([]string{"add", "--"}, files...)
	if _, err := c.run(ctx, args...); err != nil {
		return &GitError{Op: "stage files", Err: err}
	}
	return nil
}

// HasStagedChanges reports whether anything is staged relative to HEAD.
func (c *Client) HasStagedChanges(ctx context.Context) (bool, error) {
	_, err := c.run(ctx, "diff", "--cached", "--quiet")
	if err == nil {
		return false, nil
	}
	if isExitOne(err) {
		return true, nil
	}
	return false, &GitError{Op: "check staged changes", Err: err}
}

// Commit creates a commit with the given message and returns the new HEAD SHA.
// Returns ErrNothingToCommit if there are no staged changes.
func (c *Client) Commit(ctx context.Context, message string) (string, error) {
	if _, err := c.run(ctx, "commit", "-m", message); err != nil {
		if Classify(err) == KindNothingToCommit {
			return "", ErrNothingToCommit
		}
		return "", &GitError{Op: "commit", Err: err}
	}
	return c.HeadCommit(ctx)
}

// RemoteURL returns the URL of the specified remote.
func (c *Client) RemoteURL(ctx context.Context, remote string) (string, error) {
	url, err := c.run(ctx, "remote", "get-url", remote)
	if err != nil {
		return "", &GitError{Op: "get remote URL", Err: err}
	}
	return url, nil
}

// GitDir returns the absolute path to the git directory backing this
// worktree. For linked worktrees this resolves through the .git file.
func (c *Client) GitDir(ctx context.Context) (string, error) {
	dir, err := c.run(ctx, "rev-parse", "--absolute-git-dir")
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrNotGitRepo, c.workDir)
	}
	return dir, nil
}
