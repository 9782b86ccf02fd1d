package model

import (
	"fmt"
	"time"
)

// Status classifies the outcome of a release-status check for one pull request
type Status string

const (
	// StatusMerged means the PR's change is present in the target release,
	// either by direct ancestry or by a detected cherry-pick
	StatusMerged Status = "merged"
	// StatusNotYet means the PR is merged but its change has not reached the target release
	StatusNotYet Status = "not-yet"
	// StatusNotMerged means the PR itself has not been merged
	StatusNotMerged Status = "not-merged"
	// StatusError means an upstream call failed during resolution
	StatusError Status = "error"
)

// TargetType distinguishes how the release identifier was resolved
type TargetType string

const (
	TargetTypeTag    TargetType = "tag"
	TargetTypeBranch TargetType = "branch"
)

// StatusRecord is the unit stored in the cache and returned to clients
type StatusRecord struct {
	Status         Status     `json:"status"`
	PRNumber       int        `json:"pr_number"`
	ReleaseTag     string     `json:"release_tag"`
	TargetType     TargetType `json:"target_type,omitempty"`
	MergeCommitSHA string     `json:"merge_commit_sha,omitempty"`
	PRMergedAt     *time.Time `json:"pr_merged_at,omitempty"`
	IsInRelease    bool       `json:"is_in_release"`
	IsCherryPicked bool       `json:"is_cherry_picked"`
	Error          string     `json:"error,omitempty"`
	Message        string     `json:"message,omitempty"`
	CachedAt       *time.Time `json:"cached_at,omitempty"`
}

// Age returns the elapsed time since the record was persisted.
// Records without a cached_at stamp report an age beyond any staleness window.
func (r *StatusRecord) Age(now time.Time) time.Duration {
	if r.CachedAt == nil {
		return time.Duration(1<<63 - 1)
	}
	return now.Sub(*r.CachedAt)
}

// ReleaseQuery is one inbound batch: which PRs to check against which release
type ReleaseQuery struct {
	Owner      string
	Repo       string
	ReleaseTag string
	PRNumbers  []int
}

// CacheKey derives the deterministic cache key for one (PR, release) pairing.
// Owner and repo names cannot contain ':' on GitHub, so the format is collision-free.
func CacheKey(owner, repo string, prNumber int, releaseTag string) string {
	return fmt.Sprintf("release-status:%s/%s:%d:%s", owner, repo, prNumber, releaseTag)
}
