package github

import (
	"context"
	"net/http"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relcheck/pkg/domain/interfaces"
)

type client struct {
	githubClient *github.Client
}

// NewClient creates a GitHub client authenticated with a personal access
// token. An empty token yields an anonymous client, which works within
// GitHub's unauthenticated rate limits.
func NewClient(token string) interfaces.GitHubClient {
	githubClient := github.NewClient(nil)
	if token != "" {
		githubClient = githubClient.WithAuthToken(token)
	}
	return &client{githubClient: githubClient}
}

// NewAppClient creates a GitHub client with App installation authentication
func NewAppClient(appID, installationID int64, privateKey []byte) (interfaces.GitHubClient, error) {
	itr, err := ghinstallation.New(http.DefaultTransport, appID, installationID, privateKey)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create GitHub App transport")
	}

	return &client{
		githubClient: github.NewClient(&http.Client{Transport: itr}),
	}, nil
}

// GetPullRequest fetches pull request metadata by number.
// Upstream errors are returned unwrapped so callers can inspect the HTTP status.
func (c *client) GetPullRequest(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error) {
	pr, _, err := c.githubClient.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, err
	}
	return pr, nil
}

// ResolveRef returns the commit SHA a qualified ref points to
func (c *client) ResolveRef(ctx context.Context, owner, repo, ref string) (string, error) {
	reference, _, err := c.githubClient.Git.GetRef(ctx, owner, repo, ref)
	if err != nil {
		return "", err
	}
	return reference.GetObject().GetSHA(), nil
}

// CompareCommits compares base...head
func (c *client) CompareCommits(ctx context.Context, owner, repo, base, head string) (*github.CommitsComparison, error) {
	comparison, _, err := c.githubClient.Repositories.CompareCommits(ctx, owner, repo, base, head, nil)
	if err != nil {
		return nil, err
	}
	return comparison, nil
}
