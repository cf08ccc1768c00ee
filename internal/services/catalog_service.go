// Package services – CatalogService
//
// The statistical-test catalog is seeded at startup and read-only at runtime.
// When the database is unreachable the service answers from the built-in seed
// slice, so the endpoint keeps working in degraded mode.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bahithi/platform-backend/internal/domain"
	"github.com/bahithi/platform-backend/internal/repo"
)

// CatalogService serves the statistical-test catalog.
type CatalogService struct {
	Store *repo.Store
}

// List returns the catalog entries plus a degraded flag. Degraded means the
// built-in defaults were served because the database could not be read.
func (s *CatalogService) List(ctx context.Context) (tests []domain.StatisticalTest, degraded bool, err error) {
	if !s.Store.Ready() {
		return repo.DefaultStatisticalTests(), true, nil
	}
	tests, err = repo.ListStatisticalTests(ctx, s.Store.DB())
	if err != nil {
		log.Warn().Err(err).Msg("catalog read failed; serving built-in defaults")
		return repo.DefaultStatisticalTests(), true, nil
	}
	return tests, false, nil
}

// ETag derives a weak validator for the catalog from its row count and latest
// creation time. In degraded mode the tag is pinned to the seed snapshot so
// clients still get stable conditional responses.
func (s *CatalogService) ETag(ctx context.Context) string {
	if !s.Store.Ready() {
		return fmt.Sprintf("W/\"catalog-seed-%d\"", len(repo.DefaultStatisticalTests()))
	}
	count, max, err := repo.TestsStats(ctx, s.Store.DB())
	if err != nil {
		return fmt.Sprintf("W/\"catalog-seed-%d\"", len(repo.DefaultStatisticalTests()))
	}
	var stamp int64
	if max != nil {
		stamp = max.UTC().Truncate(time.Second).Unix()
	}
	return fmt.Sprintf("W/\"catalog-%d-%d\"", count, stamp)
}
