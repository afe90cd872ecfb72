package registry

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepoWithWorktree(t *testing.T) (repo, worktree string) {
	t.Helper()
	repo = t.TempDir()

	runGit(t, repo, "init")
	runGit(t, repo, "config", "user.email", "test@test.com")
	runGit(t, repo, "config", "user.name", "Test User")

	if err := os.WriteFile(filepath.Join(repo, "README.md"), []byte("# Test\n"), 0644); err != nil {
		t.Fatal(err)
	}
	runGit(t, repo, "add", ".")
	runGit(t, repo, "commit", "-m", "Initial commit")
	runGit(t, repo, "branch", "-M", "main")

	worktree = filepath.Join(t.TempDir(), "feature-wt")
	runGit(t, repo, "worktree", "add", "-b", "feature", worktree)
	return repo, worktree
}

func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %v failed: %v\n%s", args, err, out)
	}
}

func TestListWorktrees(t *testing.T) {
	repo, worktree := setupRepoWithWorktree(t)
	reg := NewGitRegistry(repo)

	worktrees, err := reg.ListWorktrees(context.Background())
	require.NoError(t, err)
	require.Len(t, worktrees, 2)

	byBranch := map[string]string{}
	for _, wt := range worktrees {
		byBranch[wt.Branch] = wt.Path
	}
	assert.Contains(t, byBranch, "main")
	assert.Contains(t, byBranch, "feature")
	assert.Equal(t, evalPath(t, worktree), evalPath(t, byBranch["feature"]))
}

func TestIsAuthorized(t *testing.T) {
	repo, worktree := setupRepoWithWorktree(t)
	reg := NewGitRegistry(repo)
	ctx := context.Background()

	assert.True(t, reg.IsAuthorized(ctx, evalPath(t, repo)))
	assert.True(t, reg.IsAuthorized(ctx, evalPath(t, worktree)))
	assert.False(t, reg.IsAuthorized(ctx, t.TempDir()))
}

// evalPath resolves symlinks so paths compare equal on systems where TempDir
// sits behind one (e.g. /var -> /private/var on macOS).
func evalPath(t *testing.T, path string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return path
	}
	return resolved
}
