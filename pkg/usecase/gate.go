package usecase

import (
	"strings"
	"time"

	"github.com/m-mizutani/relcheck/pkg/domain/model"
)

// Decision is the cache gate's verdict for a stored record
type Decision int

const (
	// UseCached means the stored record may be returned as-is
	UseCached Decision = iota
	// Refresh means the record is absent or stale and must be recomputed
	Refresh
)

// CachePolicy governs when a stored status record may be reused.
//
// Merged records are permanent: merged history never changes. Records with
// status not-yet, and any record whose target is a moving branch, expire
// after TTL. All other statuses (not-merged, error) are reused
// unconditionally; see DESIGN.md for why that asymmetry is kept.
type CachePolicy struct {
	// TTL is the staleness window for provisional records
	TTL time.Duration
	// MovingBranchSuffix marks release identifiers that denote a moving
	// branch head rather than an immutable tag
	MovingBranchSuffix string
}

// DefaultCachePolicy returns the standard 24 hour policy
func DefaultCachePolicy() CachePolicy {
	return CachePolicy{
		TTL:                24 * time.Hour,
		MovingBranchSuffix: "-branch",
	}
}

// IsMovingBranch reports whether the release identifier denotes a branch head
func (p CachePolicy) IsMovingBranch(releaseTag string) bool {
	return strings.HasSuffix(releaseTag, p.MovingBranchSuffix)
}

// Evaluate decides whether a stored record may be reused at the given time.
// Pure function; the caller performs the actual store read and write.
func (p CachePolicy) Evaluate(record *model.StatusRecord, now time.Time, releaseTag string) Decision {
	if record == nil {
		return Refresh
	}

	if record.Status == model.StatusMerged {
		return UseCached
	}

	if record.Status == model.StatusNotYet || p.IsMovingBranch(releaseTag) {
		if record.Age(now) < p.TTL {
			return UseCached
		}
		return Refresh
	}

	return UseCached
}
