package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/relcheck/pkg/domain/interfaces"
	"github.com/m-mizutani/relcheck/pkg/domain/model"
)

// Resolver determines whether a pull request's change is present in a
// target release by querying the GitHub API
type Resolver struct {
	githubClient interfaces.GitHubClient
	policy       CachePolicy
}

// NewResolver creates a new Resolver. The policy is used only for the
// moving-branch naming convention.
func NewResolver(githubClient interfaces.GitHubClient, policy CachePolicy) *Resolver {
	return &Resolver{
		githubClient: githubClient,
		policy:       policy,
	}
}

// Resolve performs the status-resolution algorithm for one pull request.
// It never returns an error: any upstream failure produces a record with
// status "error" and the upstream HTTP status embedded in the message.
func (r *Resolver) Resolve(ctx context.Context, owner, repo string, prNumber int, releaseTag string) *model.StatusRecord {
	logger := ctxlog.From(ctx)

	record := &model.StatusRecord{
		PRNumber:   prNumber,
		ReleaseTag: releaseTag,
	}

	pr, err := r.githubClient.GetPullRequest(ctx, owner, repo, prNumber)
	if err != nil {
		record.Status = model.StatusError
		record.Error = upstreamError("fetch pull request", err)
		logger.Warn("Failed to fetch pull request",
			"owner", owner,
			"repo", repo,
			"pr_number", prNumber,
			"error", err,
		)
		return record
	}

	if !pr.GetMerged() {
		record.Status = model.StatusNotMerged
		record.Message = fmt.Sprintf("pull request #%d has not been merged", prNumber)
		return record
	}

	record.MergeCommitSHA = pr.GetMergeCommitSHA()
	if mergedAt := pr.MergedAt; mergedAt != nil {
		t := mergedAt.Time
		record.PRMergedAt = &t
	}

	targetType := model.TargetTypeTag
	ref := "tags/" + releaseTag
	if r.policy.IsMovingBranch(releaseTag) {
		targetType = model.TargetTypeBranch
		ref = "heads/" + releaseTag
	}

	targetSHA, err := r.githubClient.ResolveRef(ctx, owner, repo, ref)
	if err != nil {
		record.Status = model.StatusError
		record.Error = upstreamError(fmt.Sprintf("resolve %s %q", targetType, releaseTag), err)
		logger.Warn("Failed to resolve target ref",
			"owner", owner,
			"repo", repo,
			"ref", ref,
			"error", err,
		)
		return record
	}
	record.TargetType = targetType

	comparison, err := r.githubClient.CompareCommits(ctx, owner, repo, record.MergeCommitSHA, targetSHA)
	if err != nil {
		record.Status = model.StatusError
		record.Error = upstreamError("compare commits", err)
		logger.Warn("Failed to compare commits",
			"owner", owner,
			"repo", repo,
			"base", record.MergeCommitSHA,
			"head", targetSHA,
			"error", err,
		)
		return record
	}

	// "ahead" means the target head is strictly ahead of the merge commit,
	// i.e. the merge commit is an ancestor of the target.
	switch comparison.GetStatus() {
	case "ahead", "identical":
		record.IsInRelease = true
	}

	if !record.IsInRelease {
		record.IsCherryPicked = detectCherryPick(comparison.Commits, record.MergeCommitSHA, pr.GetTitle())
	}

	if record.IsInRelease || record.IsCherryPicked {
		record.Status = model.StatusMerged
	} else {
		record.Status = model.StatusNotYet
	}

	logger.Debug("Resolved release status",
		"owner", owner,
		"repo", repo,
		"pr_number", prNumber,
		"release_tag", releaseTag,
		"status", record.Status,
		"in_release", record.IsInRelease,
		"cherry_picked", record.IsCherryPicked,
	)

	return record
}

// detectCherryPick is a best-effort fallback for squash/cherry-pick workflows
// that break direct ancestry. A commit in the comparison range counts as a
// match if its message mentions the original merge commit SHA or the PR
// title. Title matching can false-positive on coincidental wording; that is
// a known limitation.
func detectCherryPick(commits []*github.RepositoryCommit, mergeSHA, prTitle string) bool {
	for _, commit := range commits {
		message := commit.GetCommit().GetMessage()
		if mergeSHA != "" && strings.Contains(message, mergeSHA) {
			return true
		}
		if prTitle != "" && strings.Contains(message, prTitle) {
			return true
		}
	}
	return false
}

// upstreamError formats a failed GitHub call into the error field of a
// status record, embedding the HTTP status code when the failure carries one
func upstreamError(operation string, err error) string {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return fmt.Sprintf("github: failed to %s (HTTP %d)", operation, ghErr.Response.StatusCode)
	}
	return fmt.Sprintf("github: failed to %s: %v", operation, err)
}
