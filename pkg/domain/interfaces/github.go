package interfaces

import (
	"context"

	"github.com/google/go-github/v75/github"
)

// GitHubClient defines the read operations against the GitHub API that
// status resolution depends on
type GitHubClient interface {
	// GetPullRequest fetches pull request metadata by number
	GetPullRequest(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error)

	// ResolveRef returns the commit SHA a ref points to. The ref must be
	// qualified, e.g. "tags/2025.1.0" or "heads/main".
	ResolveRef(ctx context.Context, owner, repo, ref string) (string, error)

	// CompareCommits compares base...head and returns the relation plus the
	// commits in the range
	CompareCommits(ctx context.Context, owner, repo, base, head string) (*github.CommitsComparison, error)
}
