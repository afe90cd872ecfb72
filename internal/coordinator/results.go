package coordinator

import (
	"errors"
	"fmt"
)

// Precondition errors. These are detected before any mutating command runs;
// when one is returned, no repository state has changed.
var (
	ErrDirtyWorktree       = errors.New("worktree has uncommitted changes")
	ErrOperationInProgress = errors.New("operation already in progress")
	ErrSelfMerge           = errors.New("cannot merge a branch into itself")
	ErrProtectedBranch     = errors.New("branch is protected")
	ErrNoDefaultBranch     = errors.New("no default branch found on remote (tried main, master)")
	ErrBranchNotFound      = errors.New("target branch does not exist locally")
	ErrNotFastForwardable  = errors.New("fast-forward not possible, branches have diverged")
	ErrEmptyMessage        = errors.New("commit message is empty")
	ErrNoFiles             = errors.New("no files specified")
)

// ConflictError reports a merge or rebase conflict that was automatically
// aborted. Path names the worktree where the conflict occurred, which may
// differ from the caller's worktree for cross-worktree merges.
type ConflictError struct {
	Path string
	Op   string // "merge" or "rebase"
	Err  error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict in %s: the %s was aborted; run the %s manually there to resolve conflicts",
		e.Op, e.Path, e.Op, e.Op)
}

func (e *ConflictError) Unwrap() error {
	return e.Err
}

// MergeType classifies how a merge completed.
type MergeType string

const (
	MergeTypeFastForward MergeType = "fast-forward"
	MergeTypeCommit      MergeType = "merge-commit"
	MergeTypeUpToDate    MergeType = "already-up-to-date"
)

// CommitResult is returned by Commit and AtomicCommit.
type CommitResult struct {
	Hash string `json:"hash"`
}

// MergeResult is returned by MergeIntoLocalBranch.
type MergeResult struct {
	Type MergeType `json:"merge_type"`
}

// PRResult is returned by CreatePR.
type PRResult struct {
	Number int    `json:"number"`
	URL    string `json:"url"`
}
