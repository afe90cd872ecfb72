package coordinator

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/treefort-dev/treefort/internal/config"
	"github.com/treefort-dev/treefort/internal/registry"
)

// setupRepo creates a git repository with one commit on main.
func setupRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	runGit(t, dir, "init")
	runGit(t, dir, "config", "user.email", "test@example.com")
	runGit(t, dir, "config", "user.name", "Test User")
	writeFile(t, dir, "README.md", "# test\n")
	runGit(t, dir, "add", "README.md")
	runGit(t, dir, "commit", "-m", "initial commit")
	runGit(t, dir, "branch", "-M", "main")
	return dir
}

// setupRemote creates a bare repository, wires it as origin, and pushes main.
func setupRemote(t *testing.T, dir string) string {
	t.Helper()
	bare := t.TempDir()
	runGit(t, bare, "init", "--bare")
	runGit(t, dir, "remote", "add", "origin", bare)
	runGit(t, dir, "push", "-u", "origin", "main")
	return bare
}

func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %v failed: %v\n%s", args, err, out)
	}
	return strings.TrimSpace(string(out))
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func commitFile(t *testing.T, dir, name, content, message string) {
	t.Helper()
	writeFile(t, dir, name, content)
	runGit(t, dir, "add", name)
	runGit(t, dir, "commit", "-m", message)
}

// newCoordinator builds a coordinator whose registry is git's own worktree
// bookkeeping for the repository at repoPath.
func newCoordinator(repoPath string) *Coordinator {
	return New(registry.NewGitRegistry(repoPath), config.Default())
}

func TestUnauthorizedPath(t *testing.T) {
	dir := setupRepo(t)
	c := newCoordinator(dir)

	err := c.Fetch(context.Background(), t.TempDir())
	if !errors.Is(err, registry.ErrUnauthorizedWorktree) {
		t.Fatalf("expected ErrUnauthorizedWorktree, got %v", err)
	}
}

func TestCheckoutDirtyTree(t *testing.T) {
	dir := setupRepo(t)
	runGit(t, dir, "checkout", "-b", "feature")
	writeFile(t, dir, "dirty.txt", "uncommitted\n")
	c := newCoordinator(dir)

	err := c.Checkout(context.Background(), dir, "main")
	if !errors.Is(err, ErrDirtyWorktree) {
		t.Fatalf("expected ErrDirtyWorktree, got %v", err)
	}
	if branch := runGit(t, dir, "rev-parse", "--abbrev-ref", "HEAD"); branch != "feature" {
		t.Errorf("branch changed to %q after failed checkout", branch)
	}
}

func TestLockReleasedAfterFailure(t *testing.T) {
	dir := setupRepo(t)
	runGit(t, dir, "checkout", "-b", "feature")
	writeFile(t, dir, "dirty.txt", "uncommitted\n")
	c := newCoordinator(dir)
	ctx := context.Background()

	if err := c.Checkout(ctx, dir, "main"); err == nil {
		t.Fatal("expected dirty-tree failure")
	}
	// A second operation on the same path must not deadlock.
	if _, err := c.History(ctx, dir, 5); err != nil {
		t.Fatalf("operation after failure: %v", err)
	}
}

func TestCommitValidation(t *testing.T) {
	c := newCoordinator(t.TempDir())
	ctx := context.Background()

	if _, err := c.Commit(ctx, "/anywhere", "  "); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("empty message: got %v", err)
	}
	if _, err := c.AtomicCommit(ctx, "/anywhere", nil, "msg"); !errors.Is(err, ErrNoFiles) {
		t.Errorf("no files: got %v", err)
	}
}

func TestAtomicCommitStagesExactly(t *testing.T) {
	dir := setupRepo(t)
	c := newCoordinator(dir)
	ctx := context.Background()

	// Pre-stage one file, then ask for a commit of a different one. Only
	// the requested file may end up in the commit.
	writeFile(t, dir, "staged.txt", "pre-staged\n")
	runGit(t, dir, "add", "staged.txt")
	writeFile(t, dir, "wanted.txt", "the change\n")

	result, err := c.AtomicCommit(ctx, dir, []string{"wanted.txt"}, "add wanted")
	if err != nil {
		t.Fatalf("AtomicCommit: %v", err)
	}
	if result.Hash == "" {
		t.Error("expected commit hash")
	}

	files := runGit(t, dir, "show", "--pretty=format:", "--name-only", "HEAD")
	if files != "wanted.txt" {
		t.Errorf("commit contains %q, want only wanted.txt", files)
	}
}

func TestHistory(t *testing.T) {
	dir := setupRepo(t)
	commitFile(t, dir, "a.txt", "a\n", "second commit")
	c := newCoordinator(dir)

	entries, err := c.History(context.Background(), dir, 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Message != "second commit" {
		t.Errorf("newest entry = %q", entries[0].Message)
	}
}

func TestStateReportsMerge(t *testing.T) {
	dir := setupRepo(t)
	c := newCoordinator(dir)
	ctx := context.Background()

	state, err := c.State(ctx, dir)
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if state.InProgress() {
		t.Error("fresh repo reported in-progress operation")
	}

	head := runGit(t, dir, "rev-parse", "HEAD")
	writeFile(t, dir, ".git/MERGE_HEAD", head+"\n")
	state, err = c.State(ctx, dir)
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if !state.Merging {
		t.Error("expected merging state after MERGE_HEAD appeared")
	}
}

func TestPullFailsFastDuringMerge(t *testing.T) {
	dir := setupRepo(t)
	head := runGit(t, dir, "rev-parse", "HEAD")
	writeFile(t, dir, ".git/MERGE_HEAD", head+"\n")
	c := newCoordinator(dir)

	if err := c.Pull(context.Background(), dir, false); !errors.Is(err, ErrOperationInProgress) {
		t.Fatalf("expected ErrOperationInProgress, got %v", err)
	}
}

func TestPullDirtyWithoutAutoStash(t *testing.T) {
	dir := setupRepo(t)
	setupRemote(t, dir)
	writeFile(t, dir, "dirty.txt", "uncommitted\n")
	c := newCoordinator(dir)

	if err := c.Pull(context.Background(), dir, false); !errors.Is(err, ErrDirtyWorktree) {
		t.Fatalf("expected ErrDirtyWorktree, got %v", err)
	}
}

func TestPullAutoStash(t *testing.T) {
	dir := setupRepo(t)
	setupRemote(t, dir)
	writeFile(t, dir, "dirty.txt", "uncommitted\n")
	c := newCoordinator(dir)

	if err := c.Pull(context.Background(), dir, true); err != nil {
		t.Fatalf("Pull with auto-stash: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "dirty.txt")); err != nil {
		t.Error("stashed file not restored after pull")
	}
}

func TestSyncPublishesMissingUpstream(t *testing.T) {
	dir := setupRepo(t)
	bare := setupRemote(t, dir)
	runGit(t, dir, "checkout", "-b", "feature")
	commitFile(t, dir, "f.txt", "f\n", "feature work")
	c := newCoordinator(dir)

	if err := c.Sync(context.Background(), dir, false); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if runGit(t, bare, "rev-parse", "feature") == "" {
		t.Error("feature branch not pushed to remote")
	}
	upstream := runGit(t, dir, "rev-parse", "--abbrev-ref", "--symbolic-full-name", "@{u}")
	if upstream != "origin/feature" {
		t.Errorf("upstream = %q, want origin/feature", upstream)
	}
}

func TestPushSetsUpstreamWhenMissing(t *testing.T) {
	dir := setupRepo(t)
	setupRemote(t, dir)
	runGit(t, dir, "checkout", "-b", "feature")
	commitFile(t, dir, "f.txt", "f\n", "feature work")
	c := newCoordinator(dir)

	if err := c.Push(context.Background(), dir, false); err != nil {
		t.Fatalf("Push: %v", err)
	}
	upstream := runGit(t, dir, "rev-parse", "--abbrev-ref", "--symbolic-full-name", "@{u}")
	if upstream != "origin/feature" {
		t.Errorf("upstream = %q, want origin/feature", upstream)
	}
}

func TestForcePushProtectedBranch(t *testing.T) {
	dir := setupRepo(t)
	bare := setupRemote(t, dir)
	remoteBefore := runGit(t, bare, "rev-parse", "main")
	runGit(t, dir, "commit", "--amend", "-m", "rewritten initial commit")
	c := newCoordinator(dir)
	ctx := context.Background()

	err := c.ForcePush(ctx, dir, false)
	if !errors.Is(err, ErrProtectedBranch) {
		t.Fatalf("expected ErrProtectedBranch, got %v", err)
	}
	if got := runGit(t, bare, "rev-parse", "main"); got != remoteBefore {
		t.Error("remote changed despite rejected force-push")
	}

	if err := c.ForcePush(ctx, dir, true); err != nil {
		t.Fatalf("confirmed force-push: %v", err)
	}
	local := runGit(t, dir, "rev-parse", "main")
	if got := runGit(t, bare, "rev-parse", "main"); got != local {
		t.Errorf("remote main = %s, want %s", got, local)
	}
}

func TestMergeFromDefault(t *testing.T) {
	dir := setupRepo(t)
	setupRemote(t, dir)
	runGit(t, dir, "checkout", "-b", "feature")
	commitFile(t, dir, "f.txt", "f\n", "feature work")
	runGit(t, dir, "checkout", "main")
	commitFile(t, dir, "m.txt", "m\n", "main work")
	runGit(t, dir, "push", "origin", "main")
	runGit(t, dir, "checkout", "feature")
	c := newCoordinator(dir)

	if err := c.MergeFromDefault(context.Background(), dir, false); err != nil {
		t.Fatalf("MergeFromDefault: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "m.txt")); err != nil {
		t.Error("default-branch change missing after merge")
	}
}
