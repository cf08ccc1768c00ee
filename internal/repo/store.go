// Persistence gateway for consultation records.
//
// The gateway wraps the (possibly absent) database handle behind an
// observable readiness state: callers query Ready() instead of relying on an
// ambient global connection. Writes are best-effort — the intake pipeline
// never fails a user-facing request because storage is down; the operator
// email is the fallback record of truth.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/bahithi/platform-backend/internal/domain"
)

// StoreState classifies the result of a best-effort write.
type StoreState int

const (
	// StoreStored means the row was written; RowID carries the new key.
	StoreStored StoreState = iota
	// StoreSkipped means the store was not ready; no I/O was attempted.
	StoreSkipped
	// StoreFailed means the insert was attempted and the query failed.
	StoreFailed
)

// String returns the metric/log label for the state.
func (s StoreState) String() string {
	switch s {
	case StoreStored:
		return "stored"
	case StoreSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

// StoreOutcome reports how a best-effort write ended. Err is set only for
// StoreFailed.
type StoreOutcome struct {
	State StoreState
	RowID uint
	Err   error
}

// Store is the long-lived persistence handle shared across requests. It is
// safe for concurrent use: the underlying *gorm.DB pools connections, and
// the gateway holds no per-request state.
type Store struct {
	db *gorm.DB
}

// NewStore wraps db, which may be nil when the database could not be opened
// at boot (degraded mode).
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for read paths. It is nil in degraded
// mode; callers must check Ready first.
func (s *Store) DB() *gorm.DB { return s.db }

// Ready reports whether the backing database is reachable. A nil handle or a
// failed ping both mean not ready; callers skip I/O entirely in that case.
func (s *Store) Ready() bool {
	if s == nil || s.db == nil {
		return false
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return false
	}
	return sqlDB.Ping() == nil
}

// SaveConsultation writes c best-effort. Not ready → StoreSkipped without
// touching the database. Ready but failing → StoreFailed with the error.
// Success → StoreStored with the durable row id.
func (s *Store) SaveConsultation(ctx context.Context, c *domain.Consultation) StoreOutcome {
	if !s.Ready() {
		return StoreOutcome{State: StoreSkipped}
	}
	if err := CreateConsultation(ctx, s.db, c); err != nil {
		return StoreOutcome{State: StoreFailed, Err: err}
	}
	return StoreOutcome{State: StoreStored, RowID: c.ID}
}
