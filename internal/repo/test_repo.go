// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the read-only
// statistical-test catalog.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/bahithi/platform-backend/internal/domain"
)

// ListStatisticalTests returns every catalog entry in insertion order.
func ListStatisticalTests(ctx context.Context, db *gorm.DB) ([]domain.StatisticalTest, error) {
	var out []domain.StatisticalTest
	err := db.WithContext(ctx).Order("id asc").Find(&out).Error
	return out, err
}
