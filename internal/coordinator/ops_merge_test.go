package coordinator

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestMergeSelf(t *testing.T) {
	dir := setupRepo(t)
	c := newCoordinator(dir)

	_, err := c.MergeIntoLocalBranch(context.Background(), dir, "main", false)
	if !errors.Is(err, ErrSelfMerge) {
		t.Fatalf("expected ErrSelfMerge, got %v", err)
	}
}

func TestMergeTargetMissing(t *testing.T) {
	dir := setupRepo(t)
	runGit(t, dir, "checkout", "-b", "feature")
	c := newCoordinator(dir)

	_, err := c.MergeIntoLocalBranch(context.Background(), dir, "no-such-branch", false)
	if !errors.Is(err, ErrBranchNotFound) {
		t.Fatalf("expected ErrBranchNotFound, got %v", err)
	}
}

func TestMergeAlreadyUpToDate(t *testing.T) {
	dir := setupRepo(t)
	runGit(t, dir, "checkout", "-b", "feature")
	c := newCoordinator(dir)

	before := runGit(t, dir, "rev-parse", "main")
	result, err := c.MergeIntoLocalBranch(context.Background(), dir, "main", false)
	if err != nil {
		t.Fatalf("MergeIntoLocalBranch: %v", err)
	}
	if result.Type != MergeTypeUpToDate {
		t.Errorf("merge type = %q, want %q", result.Type, MergeTypeUpToDate)
	}
	if after := runGit(t, dir, "rev-parse", "main"); after != before {
		t.Error("main moved despite up-to-date outcome")
	}
}

func TestMergeFastForward(t *testing.T) {
	dir := setupRepo(t)
	runGit(t, dir, "checkout", "-b", "feature")
	commitFile(t, dir, "f.txt", "f\n", "feature work")
	c := newCoordinator(dir)

	result, err := c.MergeIntoLocalBranch(context.Background(), dir, "main", true)
	if err != nil {
		t.Fatalf("MergeIntoLocalBranch: %v", err)
	}
	if result.Type != MergeTypeFastForward {
		t.Errorf("merge type = %q, want %q", result.Type, MergeTypeFastForward)
	}
	if runGit(t, dir, "rev-parse", "main") != runGit(t, dir, "rev-parse", "feature") {
		t.Error("main not fast-forwarded to feature")
	}
	if branch := runGit(t, dir, "rev-parse", "--abbrev-ref", "HEAD"); branch != "feature" {
		t.Errorf("ended on %q, want feature", branch)
	}
}

func TestMergeFastForwardOnlyDiverged(t *testing.T) {
	dir := setupRepo(t)
	runGit(t, dir, "checkout", "-b", "feature")
	commitFile(t, dir, "f.txt", "f\n", "feature work")
	runGit(t, dir, "checkout", "main")
	commitFile(t, dir, "m.txt", "m\n", "main work")
	runGit(t, dir, "checkout", "feature")
	c := newCoordinator(dir)

	before := runGit(t, dir, "rev-parse", "main")
	_, err := c.MergeIntoLocalBranch(context.Background(), dir, "main", true)
	if !errors.Is(err, ErrNotFastForwardable) {
		t.Fatalf("expected ErrNotFastForwardable, got %v", err)
	}
	if after := runGit(t, dir, "rev-parse", "main"); after != before {
		t.Error("main moved despite rejected fast-forward")
	}
}

func TestMergeCommitRestoresBranch(t *testing.T) {
	dir := setupRepo(t)
	runGit(t, dir, "checkout", "-b", "feature")
	commitFile(t, dir, "f1.txt", "f1\n", "feature work 1")
	commitFile(t, dir, "f2.txt", "f2\n", "feature work 2")
	runGit(t, dir, "checkout", "main")
	commitFile(t, dir, "m.txt", "m\n", "main work")
	runGit(t, dir, "checkout", "feature")
	c := newCoordinator(dir)

	result, err := c.MergeIntoLocalBranch(context.Background(), dir, "main", false)
	if err != nil {
		t.Fatalf("MergeIntoLocalBranch: %v", err)
	}
	if result.Type != MergeTypeCommit {
		t.Errorf("merge type = %q, want %q", result.Type, MergeTypeCommit)
	}
	if branch := runGit(t, dir, "rev-parse", "--abbrev-ref", "HEAD"); branch != "feature" {
		t.Errorf("ended on %q, want feature", branch)
	}
	parents := runGit(t, dir, "rev-list", "--parents", "-n", "1", "main")
	if got := len(strings.Fields(parents)); got != 3 {
		t.Errorf("main HEAD has %d fields in rev-list output, want 3 (merge commit)", got)
	}
}

func TestMergeConflictAbortsAndRestores(t *testing.T) {
	dir := setupRepo(t)
	runGit(t, dir, "checkout", "-b", "feature")
	commitFile(t, dir, "shared.txt", "feature version\n", "feature change")
	runGit(t, dir, "checkout", "main")
	commitFile(t, dir, "shared.txt", "main version\n", "main change")
	runGit(t, dir, "checkout", "feature")
	c := newCoordinator(dir)
	ctx := context.Background()

	mainBefore := runGit(t, dir, "rev-parse", "main")
	_, err := c.MergeIntoLocalBranch(ctx, dir, "main", false)
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if conflict.Path != dir {
		t.Errorf("conflict path = %q, want caller worktree", conflict.Path)
	}

	if branch := runGit(t, dir, "rev-parse", "--abbrev-ref", "HEAD"); branch != "feature" {
		t.Errorf("ended on %q, want feature after conflict cleanup", branch)
	}
	if after := runGit(t, dir, "rev-parse", "main"); after != mainBefore {
		t.Error("main moved despite aborted merge")
	}
	state, err := c.State(ctx, dir)
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if state.InProgress() {
		t.Error("repository left mid-merge after automatic abort")
	}
}

func TestMergeTargetCheckedOutElsewhere(t *testing.T) {
	dir := setupRepo(t)
	other := filepath.Join(t.TempDir(), "wt-feature")
	runGit(t, dir, "worktree", "add", "-b", "feature", other)
	commitFile(t, other, "f.txt", "f\n", "feature work")
	// Caller is the linked worktree on feature; target main lives in dir.
	c := newCoordinator(dir)
	ctx := context.Background()

	result, err := c.MergeIntoLocalBranch(ctx, other, "main", false)
	if err != nil {
		t.Fatalf("MergeIntoLocalBranch: %v", err)
	}
	if result.Type != MergeTypeFastForward {
		t.Errorf("merge type = %q, want %q", result.Type, MergeTypeFastForward)
	}
	// The merge ran in the worktree holding main; the caller never switched.
	if branch := runGit(t, other, "rev-parse", "--abbrev-ref", "HEAD"); branch != "feature" {
		t.Errorf("caller worktree on %q, want feature", branch)
	}
	if branch := runGit(t, dir, "rev-parse", "--abbrev-ref", "HEAD"); branch != "main" {
		t.Errorf("target worktree on %q, want main", branch)
	}
	if runGit(t, dir, "rev-parse", "main") != runGit(t, dir, "rev-parse", "feature") {
		t.Error("main not updated in the worktree that has it checked out")
	}
}

func TestMergeElsewhereConflictAbortsThere(t *testing.T) {
	dir := setupRepo(t)
	commitFile(t, dir, "shared.txt", "base\n", "add shared file")
	other := filepath.Join(t.TempDir(), "wt-feature")
	runGit(t, dir, "worktree", "add", "-b", "feature", other)
	commitFile(t, other, "shared.txt", "feature version\n", "feature change")
	commitFile(t, dir, "shared.txt", "main version\n", "main change")
	c := newCoordinator(dir)
	ctx := context.Background()

	mainBefore := runGit(t, dir, "rev-parse", "main")
	_, err := c.MergeIntoLocalBranch(ctx, other, "main", false)
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	// The conflict happened in the worktree holding main, and the error
	// names that path so the user knows where to resolve.
	if conflict.Path != dir {
		t.Errorf("conflict path = %q, want target worktree %q", conflict.Path, dir)
	}

	if after := runGit(t, dir, "rev-parse", "main"); after != mainBefore {
		t.Error("main moved despite aborted merge")
	}
	state, err := c.State(ctx, dir)
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if state.InProgress() {
		t.Error("target worktree left mid-merge after automatic abort")
	}
	if branch := runGit(t, other, "rev-parse", "--abbrev-ref", "HEAD"); branch != "feature" {
		t.Errorf("caller worktree on %q, want feature", branch)
	}
}

func TestMergeElsewhereDirtyTarget(t *testing.T) {
	dir := setupRepo(t)
	other := filepath.Join(t.TempDir(), "wt-feature")
	runGit(t, dir, "worktree", "add", "-b", "feature", other)
	commitFile(t, other, "f.txt", "f\n", "feature work")
	writeFile(t, dir, "dirty.txt", "uncommitted in target\n")
	c := newCoordinator(dir)

	_, err := c.MergeIntoLocalBranch(context.Background(), other, "main", false)
	if !errors.Is(err, ErrDirtyWorktree) {
		t.Fatalf("expected ErrDirtyWorktree for target worktree, got %v", err)
	}
}
