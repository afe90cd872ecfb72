package git

import "strings"

// FailureKind classifies a git command failure into the handful of cases the
// coordinator reacts to differently. All output substring matching lives here
// so callers can switch on the kind instead of grepping error text themselves.
type FailureKind int

const (
	// KindOther is any failure the coordinator has no special handling for.
	KindOther FailureKind = iota

	// KindTransientLock means git's own lock file (index.lock, a ref lock)
	// exists because another short-lived process is mid-write. Retryable.
	KindTransientLock

	// KindConflict means a merge or rebase stopped on conflicts.
	KindConflict

	// KindMissingUpstream means the branch has no upstream configured.
	KindMissingUpstream

	// KindNonFastForward means a fast-forward was required but the branches
	// have diverged (merge --ff-only, or a rejected push).
	KindNonFastForward

	// KindNothingToCommit means a commit was attempted with nothing staged.
	KindNothingToCommit
)

// String returns a stable name for logging.
func (k FailureKind) String() string {
	switch k {
	case KindTransientLock:
		return "transient-lock"
	case KindConflict:
		return "conflict"
	case KindMissingUpstream:
		return "missing-upstream"
	case KindNonFastForward:
		return "non-fast-forward"
	case KindNothingToCommit:
		return "nothing-to-commit"
	default:
		return "other"
	}
}

// Classify inspects a git command error and returns its FailureKind.
// A nil error classifies as KindOther.
func Classify(err error) FailureKind {
	if err == nil {
		return KindOther
	}
	msg := strings.ToLower(err.Error())

	switch {
	case isTransientLock(msg):
		return KindTransientLock
	case isConflict(msg):
		return KindConflict
	case isMissingUpstream(msg):
		return KindMissingUpstream
	case isNonFastForward(msg):
		return KindNonFastForward
	case isNothingToCommit(msg):
		return KindNothingToCommit
	default:
		return KindOther
	}
}

// isTransientLock matches git's "another process is mid-write" failures:
//
//	fatal: Unable to create '.../.git/index.lock': File exists.
//	error: cannot lock ref 'refs/heads/main': is at ... but expected ...
func isTransientLock(msg string) bool {
	if strings.Contains(msg, "index.lock") {
		return true
	}
	if strings.Contains(msg, "cannot lock ref") {
		return true
	}
	return strings.Contains(msg, "unable to create") && strings.Contains(msg, ".lock")
}

func isConflict(msg string) bool {
	return strings.Contains(msg, "conflict") ||
		strings.Contains(msg, "needs merge") ||
		strings.Contains(msg, "could not apply") ||
		strings.Contains(msg, "automatic merge failed")
}

func isMissingUpstream(msg string) bool {
	return strings.Contains(msg, "no upstream branch") ||
		strings.Contains(msg, "no tracking information") ||
		strings.Contains(msg, "upstream branch of your current branch does not match")
}

func isNonFastForward(msg string) bool {
	return strings.Contains(msg, "non-fast-forward") ||
		strings.Contains(msg, "not possible to fast-forward") ||
		(strings.Contains(msg, "rejected") && strings.Contains(msg, "fetch first"))
}

func isNothingToCommit(msg string) bool {
	return strings.Contains(msg, "nothing to commit") ||
		strings.Contains(msg, "nothing added to commit") ||
		strings.Contains(msg, "no changes added to commit")
}
