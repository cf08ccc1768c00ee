// Package domain defines the core persistence models for the application.
package domain

import "time"

// Idempotency records the outcome of a previously processed consultation
// submission, keyed by (client_id, route, key). A retried POST carrying the
// same Idempotency-Key is answered with the originally issued submission id
// instead of sending duplicate emails.
type Idempotency struct {
	ID           string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	ClientID     string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_client_route_key,priority:1"`
	Route        string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_client_route_key,priority:2"`
	Key          string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_client_route_key,priority:3"`
	SubmissionID string    `gorm:"type:TEXT NOT NULL"`
	Status       int       `gorm:"type:INTEGER NOT NULL"`
	CreatedAt    time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt    time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
