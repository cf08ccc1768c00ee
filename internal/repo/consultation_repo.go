// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// Consultation model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a consultation is not found, functions return
//     gorm.ErrRecordNotFound (also exported here as ErrNotFound).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/bahithi/platform-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateConsultation inserts a new consultation row. The row id is assigned
// by the database (auto-increment) and written back into c. The status
// defaults to pending and CreatedAt is set to UTC.
func CreateConsultation(ctx context.Context, db *gorm.DB, c *domain.Consultation) error {
	if c.Status == "" {
		c.Status = domain.StatusPending
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(c).Error
}

// GetConsultation fetches a single consultation by its durable row id.
// Returns ErrNotFound if no such row exists.
func GetConsultation(ctx context.Context, db *gorm.DB, id uint) (*domain.Consultation, error) {
	var c domain.Consultation
	if err := db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}
