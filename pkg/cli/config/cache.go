package config

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relcheck/pkg/domain/interfaces"
	"github.com/m-mizutani/relcheck/pkg/infra/firestore"
	"github.com/m-mizutani/relcheck/pkg/infra/memory"
	"github.com/m-mizutani/relcheck/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// Cache holds cache store and freshness policy configuration
type Cache struct {
	Backend            string
	ProjectID          string
	Collection         string
	TTL                time.Duration
	MovingBranchSuffix string
}

// Flags returns CLI flags for cache configuration
func (c *Cache) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "cache-backend",
			Usage:       "Cache backend (firestore, memory)",
			Value:       "firestore",
			Destination: &c.Backend,
			Sources:     cli.EnvVars("RELCHECK_CACHE_BACKEND"),
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Google Cloud project ID for the Firestore cache",
			Destination: &c.ProjectID,
			Sources:     cli.EnvVars("RELCHECK_FIRESTORE_PROJECT_ID"),
		},
		&cli.StringFlag{
			Name:        "firestore-collection",
			Usage:       "Firestore collection holding cached status records",
			Value:       "release_status",
			Destination: &c.Collection,
			Sources:     cli.EnvVars("RELCHECK_FIRESTORE_COLLECTION"),
		},
		&cli.DurationFlag{
			Name:        "cache-ttl",
			Usage:       "Staleness window for not-yet and moving-branch records",
			Value:       24 * time.Hour,
			Destination: &c.TTL,
			Sources:     cli.EnvVars("RELCHECK_CACHE_TTL"),
		},
		&cli.StringFlag{
			Name:        "moving-branch-suffix",
			Usage:       "Release identifiers with this suffix resolve as branch heads, not tags",
			Value:       "-branch",
			Destination: &c.MovingBranchSuffix,
			Sources:     cli.EnvVars("RELCHECK_MOVING_BRANCH_SUFFIX"),
		},
	}
}

// Policy returns the cache freshness policy
func (c *Cache) Policy() usecase.CachePolicy {
	return usecase.CachePolicy{
		TTL:                c.TTL,
		MovingBranchSuffix: c.MovingBranchSuffix,
	}
}

// Configure builds the configured cache store. The returned closer must be
// called on shutdown; it is a no-op for the memory backend.
func (c *Cache) Configure(ctx context.Context) (interfaces.CacheStore, func() error, error) {
	switch c.Backend {
	case "memory":
		return memory.New(), func() error { return nil }, nil
	case "firestore":
		if c.ProjectID == "" {
			return nil, nil, goerr.New("firestore-project-id is required for the firestore backend")
		}
		client, err := firestore.New(ctx, c.ProjectID, c.Collection)
		if err != nil {
			return nil, nil, err
		}
		return client, client.Close, nil
	default:
		return nil, nil, goerr.New("unknown cache backend", goerr.V("backend", c.Backend))
	}
}
