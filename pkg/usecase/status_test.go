package usecase_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/relcheck/pkg/domain/model"
	"github.com/m-mizutani/relcheck/pkg/infra/memory"
	"github.com/m-mizutani/relcheck/pkg/usecase"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func seedRecord(t *testing.T, store *memory.Store, record *model.StatusRecord) {
	t.Helper()
	raw, err := json.Marshal(record)
	gt.NoError(t, err)
	key := model.CacheKey("esphome", "esphome", record.PRNumber, record.ReleaseTag)
	gt.NoError(t, store.Put(context.Background(), key, raw))
}

func TestCheckRelease_ResolvesAndPersists(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	store := memory.New()
	mock := &mockGitHubClient{
		getPullRequestFunc: func(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error) {
			return mergedPR("abc1234", "Fix sensor overflow"), nil
		},
		resolveRefFunc: func(ctx context.Context, owner, repo, ref string) (string, error) {
			return "tag5678", nil
		},
		compareCommitsFunc: func(ctx context.Context, owner, repo, base, head string) (*github.CommitsComparison, error) {
			return comparisonWith("ahead"), nil
		},
	}

	uc := usecase.NewReleaseStatus(mock, store, usecase.DefaultCachePolicy(),
		usecase.WithClock(fixedClock(now)))

	results, err := uc.CheckRelease(context.Background(), &model.ReleaseQuery{
		Owner:      "esphome",
		Repo:       "esphome",
		ReleaseTag: "2026.8.0",
		PRNumbers:  []int{100},
	})
	gt.NoError(t, err)

	record := results[100]
	gt.Value(t, record).NotNil()
	gt.Value(t, record.Status).Equal(model.StatusMerged)
	gt.Value(t, record.CachedAt).NotNil()
	gt.Value(t, *record.CachedAt).Equal(now)

	// The record is persisted under its deterministic key
	raw, err := store.Get(context.Background(), model.CacheKey("esphome", "esphome", 100, "2026.8.0"))
	gt.NoError(t, err)

	var stored model.StatusRecord
	gt.NoError(t, json.Unmarshal(raw, &stored))
	gt.Value(t, stored.Status).Equal(model.StatusMerged)
}

func TestCheckRelease_MergedRecordNeverRefetched(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	ancient := now.Add(-400 * 24 * time.Hour)

	store := memory.New()
	seedRecord(t, store, &model.StatusRecord{
		Status:      model.StatusMerged,
		PRNumber:    100,
		ReleaseTag:  "2026.8.0",
		IsInRelease: true,
		CachedAt:    &ancient,
	})

	mock := &mockGitHubClient{
		getPullRequestFunc: func(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error) {
			t.Error("upstream must not be called for a cached merged record")
			return nil, upstreamFailure(http.StatusInternalServerError)
		},
	}

	uc := usecase.NewReleaseStatus(mock, store, usecase.DefaultCachePolicy(),
		usecase.WithClock(fixedClock(now)), usecase.WithConcurrency(1))

	results, err := uc.CheckRelease(context.Background(), &model.ReleaseQuery{
		Owner:      "esphome",
		Repo:       "esphome",
		ReleaseTag: "2026.8.0",
		PRNumbers:  []int{100},
	})
	gt.NoError(t, err)
	gt.Value(t, results[100].Status).Equal(model.StatusMerged)
	gt.Number(t, mock.pullRequestCalls.Load()).Equal(0)
}

func TestCheckRelease_StaleNotYetRefetched(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	stale := now.Add(-25 * time.Hour)

	store := memory.New()
	seedRecord(t, store, &model.StatusRecord{
		Status:     model.StatusNotYet,
		PRNumber:   100,
		ReleaseTag: "2026.8.0",
		CachedAt:   &stale,
	})

	mock := &mockGitHubClient{
		getPullRequestFunc: func(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error) {
			return mergedPR("abc1234", "Fix sensor overflow"), nil
		},
		resolveRefFunc: func(ctx context.Context, owner, repo, ref string) (string, error) {
			return "tag5678", nil
		},
		compareCommitsFunc: func(ctx context.Context, owner, repo, base, head string) (*github.CommitsComparison, error) {
			return comparisonWith("ahead"), nil
		},
	}

	uc := usecase.NewReleaseStatus(mock, store, usecase.DefaultCachePolicy(),
		usecase.WithClock(fixedClock(now)))

	results, err := uc.CheckRelease(context.Background(), &model.ReleaseQuery{
		Owner:      "esphome",
		Repo:       "esphome",
		ReleaseTag: "2026.8.0",
		PRNumbers:  []int{100},
	})
	gt.NoError(t, err)
	gt.Number(t, mock.pullRequestCalls.Load()).Equal(1)
	gt.Value(t, results[100].Status).Equal(model.StatusMerged)
	gt.Value(t, *results[100].CachedAt).Equal(now)
}

func TestCheckRelease_FreshNotYetReused(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	fresh := now.Add(-time.Hour)

	store := memory.New()
	seedRecord(t, store, &model.StatusRecord{
		Status:     model.StatusNotYet,
		PRNumber:   100,
		ReleaseTag: "2026.8.0",
		CachedAt:   &fresh,
	})

	mock := &mockGitHubClient{}

	uc := usecase.NewReleaseStatus(mock, store, usecase.DefaultCachePolicy(),
		usecase.WithClock(fixedClock(now)))

	results, err := uc.CheckRelease(context.Background(), &model.ReleaseQuery{
		Owner:      "esphome",
		Repo:       "esphome",
		ReleaseTag: "2026.8.0",
		PRNumbers:  []int{100},
	})
	gt.NoError(t, err)
	gt.Value(t, results[100].Status).Equal(model.StatusNotYet)
	gt.Value(t, *results[100].CachedAt).Equal(fresh)
	gt.Number(t, mock.pullRequestCalls.Load()).Equal(0)
}

func TestCheckRelease_PerPRErrorIsolation(t *testing.T) {
	store := memory.New()
	mock := &mockGitHubClient{
		getPullRequestFunc: func(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error) {
			if number == 200 {
				return nil, upstreamFailure(http.StatusBadGateway)
			}
			return mergedPR("abc1234", "Fix sensor overflow"), nil
		},
		resolveRefFunc: func(ctx context.Context, owner, repo, ref string) (string, error) {
			return "tag5678", nil
		},
		compareCommitsFunc: func(ctx context.Context, owner, repo, base, head string) (*github.CommitsComparison, error) {
			return comparisonWith("ahead"), nil
		},
	}

	uc := usecase.NewReleaseStatus(mock, store, usecase.DefaultCachePolicy())

	results, err := uc.CheckRelease(context.Background(), &model.ReleaseQuery{
		Owner:      "esphome",
		Repo:       "esphome",
		ReleaseTag: "2026.8.0",
		PRNumbers:  []int{100, 200, 300},
	})
	gt.NoError(t, err)
	gt.Number(t, len(results)).Equal(3)
	gt.Value(t, results[100].Status).Equal(model.StatusMerged)
	gt.Value(t, results[200].Status).Equal(model.StatusError)
	gt.String(t, results[200].Error).Contains("502")
	gt.Value(t, results[300].Status).Equal(model.StatusMerged)
}

func TestCheckRelease_ErrorRecordCachedAndReused(t *testing.T) {
	store := memory.New()
	mock := &mockGitHubClient{
		getPullRequestFunc: func(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error) {
			return nil, upstreamFailure(http.StatusInternalServerError)
		},
	}

	uc := usecase.NewReleaseStatus(mock, store, usecase.DefaultCachePolicy())

	query := &model.ReleaseQuery{
		Owner:      "esphome",
		Repo:       "esphome",
		ReleaseTag: "2026.8.0",
		PRNumbers:  []int{100},
	}

	first, err := uc.CheckRelease(context.Background(), query)
	gt.NoError(t, err)
	gt.Value(t, first[100].Status).Equal(model.StatusError)
	gt.Value(t, first[100].CachedAt).NotNil()

	// The error record is reused without hitting upstream again
	second, err := uc.CheckRelease(context.Background(), query)
	gt.NoError(t, err)
	gt.Value(t, second[100].Status).Equal(model.StatusError)
	gt.Number(t, mock.pullRequestCalls.Load()).Equal(1)
}

func TestCheckRelease_EmptyBatch(t *testing.T) {
	uc := usecase.NewReleaseStatus(&mockGitHubClient{}, memory.New(), usecase.DefaultCachePolicy())

	results, err := uc.CheckRelease(context.Background(), &model.ReleaseQuery{
		Owner:      "esphome",
		Repo:       "esphome",
		ReleaseTag: "2026.8.0",
		PRNumbers:  []int{},
	})
	gt.NoError(t, err)
	gt.Number(t, len(results)).Equal(0)
}
