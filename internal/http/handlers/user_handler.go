// User profile handler: a single upsert endpoint keyed by email.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bahithi/platform-backend/internal/domain"
	"github.com/bahithi/platform-backend/internal/services"
)

// UpsertUserResponse wraps the merged profile row after an upsert.
type UpsertUserResponse struct {
	Success bool         `json:"success" example:"true"`
	User    *domain.User `json:"user"`
}

// UpsertUser godoc
// @ID          upsertUser
// @Summary     Create or update a user profile
// @Description Inserts a profile row keyed by email, or updates the contact
// @Description fields of the existing row. The email itself never changes.
// @Tags        Users
// @Accept      json
// @Produce     json
//
// @Param       body  body  services.UserInput  true  "Profile payload"
//
// @Success     200  {object}  handlers.UpsertUserResponse
// @Failure     400  {object}  handlers.ErrorResponse "Invalid JSON body"
// @Failure     422  {object}  handlers.ErrorResponse "Validation failed"
// @Failure     503  {object}  handlers.ErrorResponse "Storage unavailable"
// @Router      /users [post]
func (h *Handlers) UpsertUser(c *gin.Context) {
	var in services.UserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	u, err := h.userSvc.Upsert(c.Request.Context(), in)
	if err != nil {
		var ve *services.ValidationError
		switch {
		case errors.As(err, &ve):
			failFields(c, http.StatusUnprocessableEntity, ErrCodeValidationFailed, ve.Error(), ve.Fields)
		case errors.Is(err, services.ErrStoreUnavailable):
			fail(c, http.StatusServiceUnavailable, ErrCodeStorageUnavailable, "storage is temporarily unavailable")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeUpsertFailed, "could not save the profile")
		}
		return
	}

	ok(c, http.StatusOK, UpsertUserResponse{Success: true, User: u})
}
