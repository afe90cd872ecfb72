package git

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestRepoStateClean(t *testing.T) {
	tmpDir := setupTestRepo(t)
	c := NewLocal(tmpDir)

	state, err := c.RepoState(context.Background())
	if err != nil {
		t.Fatalf("RepoState() failed: %v", err)
	}
	if state.Rebasing || state.Merging {
		t.Errorf("state = %+v, want clean", state)
	}
	if state.InProgress() {
		t.Error("InProgress() = true, want false")
	}
}

func TestRepoStateMerging(t *testing.T) {
	tmpDir := setupTestRepo(t)
	c := NewLocal(tmpDir)

	// Simulate an in-progress merge the way git records it on disk.
	marker := filepath.Join(tmpDir, ".git", "MERGE_HEAD")
	if err := os.WriteFile(marker, []byte("0000000000000000000000000000000000000000\n"), 0644); err != nil {
		t.Fatal(err)
	}

	state, err := c.RepoState(context.Background())
	if err != nil {
		t.Fatalf("RepoState() failed: %v", err)
	}
	if !state.Merging {
		t.Error("expected Merging = true with MERGE_HEAD present")
	}
	if state.Rebasing {
		t.Error("expected Rebasing = false")
	}
}

func TestRepoStateRebasing(t *testing.T) {
	tmpDir := setupTestRepo(t)
	c := NewLocal(tmpDir)

	marker := filepath.Join(tmpDir, ".git", "rebase-merge")
	if err := os.MkdirAll(marker, 0755); err != nil {
		t.Fatal(err)
	}

	state, err := c.RepoState(context.Background())
	if err != nil {
		t.Fatalf("RepoState() failed: %v", err)
	}
	if !state.Rebasing {
		t.Error("expected Rebasing = true with rebase-merge present")
	}

	// State is recomputed on every call: removing the marker must be seen.
	if err := os.RemoveAll(marker); err != nil {
		t.Fatal(err)
	}
	state, err = c.RepoState(context.Background())
	if err != nil {
		t.Fatalf("RepoState() failed: %v", err)
	}
	if state.Rebasing {
		t.Error("expected Rebasing = false after marker removed")
	}
}

func TestRepoStateNotARepo(t *testing.T) {
	c := NewLocal(t.TempDir())
	if _, err := c.RepoState(context.Background()); err == nil {
		t.Fatal("expected error outside a repository")
	}
}
