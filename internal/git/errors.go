package git

import "errors"

var (
	// ErrNotGitRepo indicates the path is not a git repository.
	ErrNotGitRepo = errors.New("not a git repository")

	// ErrBranchNotFound indicates the branch does not exist as a local branch.
	ErrBranchNotFound = errors.New("branch not found")

	// ErrNothingToCommit indicates there are no staged changes to commit.
	ErrNothingToCommit = errors.New("nothing to commit")

	// ErrMissingUpstream indicates the current branch has no upstream configured.
	ErrMissingUpstream = errors.New("no upstream branch configured")

	// ErrMergeConflict indicates a merge or rebase stopped on conflicts.
	ErrMergeConflict = errors.New("merge conflict")

	// ErrNotFastForward indicates a fast-forward-only merge was requested but
	// the branches have diverged.
	ErrNotFastForward = errors.New("fast-forward not possible")
)

// GitError wraps a git command error with context.
// Named GitError (not Error) to avoid collision with the builtin error interface.
type GitError struct {
	Op     string // Operation that failed (e.g., "commit", "push")
	Output string // Combined stdout/stderr output
	Err    error  // Underlying error
}

func (e *GitError) Error() string {
	if e.Output != "" {
		return e.Op + ": " + e.Output
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *GitError) Unwrap() error {
	return e.Err
}
