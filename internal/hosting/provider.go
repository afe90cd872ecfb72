// Package hosting provides a unified interface for git hosting providers (GitHub, GitLab).
package hosting

import "context"

// ProviderType identifies which hosting provider is in use.
type ProviderType string

const (
	ProviderGitHub  ProviderType = "github"
	ProviderGitLab  ProviderType = "gitlab"
	ProviderUnknown ProviderType = "unknown"
)

// Provider is the interface for git hosting providers.
// Implementations exist for GitHub (go-github) and GitLab (client-go).
type Provider interface {
	// CreatePR opens a pull request / merge request.
	CreatePR(ctx context.Context, opts PRCreateOptions) (*PR, error)

	// FindPRByBranch returns the open PR whose head is branch, or
	// ErrNoPRFound.
	FindPRByBranch(ctx context.Context, branch string) (*PR, error)

	// BranchStatus summarizes the PR and CI state for a branch.
	BranchStatus(ctx context.Context, branch string) (*BranchStatus, error)

	// Auth + metadata
	CheckAuth(ctx context.Context) error
	Name() ProviderType
	OwnerRepo() (string, string)
}

// PR represents a pull request / merge request.
type PR struct {
	Number     int    `json:"number"`
	Title      string `json:"title"`
	State      string `json:"state"` // open, closed, merged
	HeadBranch string `json:"head_branch"`
	BaseBranch string `json:"base_branch"`
	HTMLURL    string `json:"html_url"`
	Draft      bool   `json:"draft"`
	Mergeable  bool   `json:"mergeable"`
}

// PRCreateOptions for creating a PR / merge request.
type PRCreateOptions struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Head  string `json:"head"` // Source branch
	Base  string `json:"base"` // Target branch
	Draft bool   `json:"draft"`
}

// CheckRun represents a CI check (GitHub check run / GitLab pipeline job).
type CheckRun struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Status     string `json:"status"`               // queued, in_progress, completed
	Conclusion string `json:"conclusion,omitempty"` // success, failure, neutral, etc.
}

// BranchStatus is the provider-defined status payload for a branch:
// the matching PR (if any) plus its CI checks.
type BranchStatus struct {
	Provider ProviderType `json:"provider"`
	Branch   string       `json:"branch"`
	PR       *PR          `json:"pr,omitempty"`
	Checks   []CheckRun   `json:"checks,omitempty"`
	// ChecksConclusion rolls the checks up: success, failure, pending,
	// or none when there are no checks.
	ChecksConclusion string `json:"checks_conclusion"`
}

// SummarizeChecks rolls individual check results into one conclusion.
func SummarizeChecks(checks []CheckRun) string {
	if len(checks) == 0 {
		return "none"
	}
	conclusion := "success"
	for _, c := range checks {
		if c.Status != "completed" {
			return "pending"
		}
		switch c.Conclusion {
		case "failure", "timed_out", "cancelled":
			conclusion = "failure"
		}
	}
	return conclusion
}
