package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/relcheck/pkg/domain/interfaces"
	"github.com/m-mizutani/relcheck/pkg/domain/model"
	"github.com/m-mizutani/relcheck/pkg/domain/types"
	"github.com/m-mizutani/relcheck/pkg/utils/async"
)

const defaultConcurrency = 4

type releaseStatusUseCase struct {
	cache       interfaces.CacheStore
	resolver    *Resolver
	policy      CachePolicy
	concurrency int
	now         func() time.Time
}

// StatusOption configures the release status use case
type StatusOption func(*releaseStatusUseCase)

// WithConcurrency caps how many PRs of a batch are resolved in parallel.
// A cap of 1 restores strictly sequential resolution.
func WithConcurrency(n int) StatusOption {
	return func(uc *releaseStatusUseCase) {
		if n > 0 {
			uc.concurrency = n
		}
	}
}

// WithClock overrides the time source, for tests
func WithClock(now func() time.Time) StatusOption {
	return func(uc *releaseStatusUseCase) {
		uc.now = now
	}
}

// NewReleaseStatus creates the orchestrator tying the cache gate and the
// resolver together
func NewReleaseStatus(githubClient interfaces.GitHubClient, cache interfaces.CacheStore, policy CachePolicy, opts ...StatusOption) interfaces.ReleaseStatusUseCase {
	uc := &releaseStatusUseCase{
		cache:       cache,
		resolver:    NewResolver(githubClient, policy),
		policy:      policy,
		concurrency: defaultConcurrency,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// CheckRelease resolves every PR number in the query. PRs have no data
// dependency on each other, so they are fanned out concurrently; concurrent
// refreshes of the same key are last-writer-wins by design.
func (uc *releaseStatusUseCase) CheckRelease(ctx context.Context, query *model.ReleaseQuery) (map[int]*model.StatusRecord, error) {
	records := make([]*model.StatusRecord, len(query.PRNumbers))

	async.Workers(ctx, uc.concurrency, len(query.PRNumbers), func(ctx context.Context, i int) {
		records[i] = uc.checkOne(ctx, query.Owner, query.Repo, query.PRNumbers[i], query.ReleaseTag)
	})

	results := make(map[int]*model.StatusRecord, len(query.PRNumbers))
	for i, number := range query.PRNumbers {
		results[number] = records[i]
	}
	return results, nil
}

func (uc *releaseStatusUseCase) checkOne(ctx context.Context, owner, repo string, prNumber int, releaseTag string) *model.StatusRecord {
	logger := ctxlog.From(ctx)
	key := model.CacheKey(owner, repo, prNumber, releaseTag)

	if cached := uc.lookup(ctx, key, releaseTag); cached != nil {
		logger.Debug("Returning cached status",
			"key", key,
			"status", cached.Status,
		)
		return cached
	}

	record := uc.resolver.Resolve(ctx, owner, repo, prNumber, releaseTag)

	now := uc.now()
	record.CachedAt = &now

	raw, err := json.Marshal(record)
	if err != nil {
		logger.Error("Failed to serialize status record", "key", key, "error", err)
		return record
	}
	// A failed write only costs a re-resolution on the next request
	if err := uc.cache.Put(ctx, key, raw); err != nil {
		logger.Warn("Failed to write status record to cache", "key", key, "error", err)
	}

	return record
}

// lookup reads the stored record for a key and runs it through the cache
// gate. Returns nil when the record is absent, stale, or unreadable.
func (uc *releaseStatusUseCase) lookup(ctx context.Context, key, releaseTag string) *model.StatusRecord {
	logger := ctxlog.From(ctx)

	raw, err := uc.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, types.ErrCacheMiss) {
			logger.Warn("Failed to read status record from cache", "key", key, "error", err)
		}
		return nil
	}

	var record model.StatusRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		logger.Warn("Discarding unreadable cache record", "key", key, "error", err)
		return nil
	}

	if uc.policy.Evaluate(&record, uc.now(), releaseTag) != UseCached {
		return nil
	}
	return &record
}
