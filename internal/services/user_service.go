// Package services – UserService
//
// Users are captured from the site contact flows and upserted by email, so a
// returning visitor updates their own row instead of creating duplicates.
package services

import (
	"context"
	"net/mail"
	"strings"

	"github.com/bahithi/platform-backend/internal/domain"
	"github.com/bahithi/platform-backend/internal/repo"
)

// UserInput carries the raw fields of a profile upsert request. The JSON tags
// mirror the field names the site's forms submit.
type UserInput struct {
	FullName      string `json:"fullName"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	University    string `json:"university"`
	AcademicLevel string `json:"academicLevel"`
}

// UserService implements profile upserts keyed by email.
type UserService struct {
	Store *repo.Store
}

// Upsert validates in and inserts or updates the row for its email.
// Unlike consultation intake, profile writes are not best-effort: without a
// reachable database there is nothing useful to do, so ErrStoreUnavailable is
// returned.
func (s *UserService) Upsert(ctx context.Context, in UserInput) (*domain.User, error) {
	var ve ValidationError

	fullName := strings.TrimSpace(in.FullName)
	if fullName == "" {
		ve.add("full_name", "required")
	}
	email := strings.TrimSpace(in.Email)
	if email == "" {
		ve.add("email", "required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		ve.add("email", "invalid address")
	}
	if err := ve.orNil(); err != nil {
		return nil, err
	}

	if !s.Store.Ready() {
		return nil, ErrStoreUnavailable
	}

	u := &domain.User{
		FullName:      fullName,
		Email:         email,
		Phone:         strings.TrimSpace(in.Phone),
		University:    strings.TrimSpace(in.University),
		AcademicLevel: strings.TrimSpace(in.AcademicLevel),
	}
	if err := repo.UpsertUser(ctx, s.Store.DB(), u); err != nil {
		return nil, err
	}
	// Re-read so the caller sees the merged row, not just the input echo.
	return repo.GetUserByEmail(ctx, s.Store.DB(), email)
}
