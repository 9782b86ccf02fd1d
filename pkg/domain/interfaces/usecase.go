package interfaces

import (
	"context"

	"github.com/m-mizutani/relcheck/pkg/domain/model"
)

// ReleaseStatusUseCase answers whether each PR in a batch has landed in a release
type ReleaseStatusUseCase interface {
	// CheckRelease resolves the status of every PR number in the query and
	// returns records keyed by PR number. Per-PR upstream failures are
	// reported inside the records, not as an error.
	CheckRelease(ctx context.Context, query *model.ReleaseQuery) (map[int]*model.StatusRecord, error)
}
