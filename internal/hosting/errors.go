package hosting

import "errors"

// Hosting provider errors.
var (
	// ErrNoPRFound is returned when no PR/MR exists for the given branch.
	ErrNoPRFound = errors.New("no pull request found for branch")

	// ErrAuthFailed is returned when authentication fails.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrUnresolvedRepo is returned when the hosting repository cannot be
	// determined from the git remote URL.
	ErrUnresolvedRepo = errors.New("cannot resolve hosting repository from remote URL")
)
