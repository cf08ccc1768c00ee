// Consultation HTTP handlers.
//
// Endpoints:
//   - POST /consultations      (multipart intake, optional "attachment" file)
//   - GET  /consultations/{id} (fetch a stored submission)
//
// Handlers are transport-thin: they parse the form, call the intake service,
// and translate results into HTTP responses. The multipart field names mirror
// what the site's form submits (fullName, helpType, academicLevel, ...).
package handlers

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bahithi/platform-backend/internal/domain"
	"github.com/bahithi/platform-backend/internal/http/middleware"
	"github.com/bahithi/platform-backend/internal/services"
	"github.com/bahithi/platform-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// ConsultationService defines the intake operations consumed by HTTP
// handlers. Implementations must be safe for concurrent use and honor the
// provided context.
type ConsultationService interface {
	// Submit runs the intake pipeline for one form submission.
	Submit(ctx context.Context, in services.ConsultationInput, fh *multipart.FileHeader, clientID, idemKey string) (*services.SubmitResult, error)
	// PriorSubmission resolves a previously recorded Idempotency-Key.
	PriorSubmission(ctx context.Context, clientID, idemKey string) (*domain.Idempotency, error)
	// Get fetches a stored consultation row by durable id.
	Get(ctx context.Context, id uint) (*domain.Consultation, error)
}

// CatalogService serves the statistical-test catalog.
type CatalogService interface {
	List(ctx context.Context) (tests []domain.StatisticalTest, degraded bool, err error)
	ETag(ctx context.Context) string
}

// UserService upserts site-user profiles keyed by email.
type UserService interface {
	Upsert(ctx context.Context, in services.UserInput) (*domain.User, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints of the platform API. It depends on
// abstract service interfaces to keep transport concerns separate from
// business logic.
type Handlers struct {
	consultSvc ConsultationService
	catalogSvc CatalogService
	userSvc    UserService
}

// New constructs a Handlers instance bound to the given services.
func New(consultSvc ConsultationService, catalogSvc CatalogService, userSvc UserService) *Handlers {
	return &Handlers{consultSvc: consultSvc, catalogSvc: catalogSvc, userSvc: userSvc}
}

//
// DTOs
//

// SubmitConsultationResponse acknowledges an accepted submission. ID is the
// public submission identifier echoed in the notification emails; it is not
// the database row id.
type SubmitConsultationResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"Your consultation request has been received"`
	ID      string `json:"id"      example:"1974308117536513"`
}

// SubmitConsultation godoc
// @ID          submitConsultation
// @Summary     Submit a consultation request
// @Description Validates the form, stores an optional attachment, emails the
// @Description operator and the submitter, and persists best-effort. Retries
// @Description with the same Idempotency-Key replay the original submission id.
// @Tags        Consultations
// @Accept      multipart/form-data
// @Produce     json
//
// @Param       Idempotency-Key header   string  false "Deduplication key for retries"
// @Param       fullName        formData string  true  "Full name"
// @Param       email           formData string  true  "Contact email"
// @Param       phone           formData string  false "Phone number"
// @Param       helpType        formData string  true  "One of: statistical-analysis, research-consultation, data-entry, training, other"
// @Param       university      formData string  false "University"
// @Param       academicLevel   formData string  false "Academic level"
// @Param       message         formData string  true  "Free-text description"
// @Param       deadline        formData string  false "Requested deadline (YYYY-MM-DD)"
// @Param       attachment      formData file    false "Optional attachment"
//
// @Success     201  {object}  handlers.SubmitConsultationResponse
// @Success     200  {object}  handlers.SubmitConsultationResponse "Idempotent replay"
// @Failure     413  {object}  handlers.ErrorResponse "Attachment or payload too large"
// @Failure     415  {object}  handlers.ErrorResponse "Unsupported attachment type"
// @Failure     422  {object}  handlers.ErrorResponse "Validation failed"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /consultations [post]
func (h *Handlers) SubmitConsultation(c *gin.Context) {
	ctx := c.Request.Context()
	clientID := middleware.ClientID(c)
	idemKey, _ := middleware.GetIdempotencyKey(c)

	// Serve replays without re-running the pipeline (no duplicate emails).
	if middleware.IsReplay(c) && idemKey != "" {
		if rec, err := h.consultSvc.PriorSubmission(ctx, clientID, idemKey); err == nil {
			ok(c, http.StatusOK, SubmitConsultationResponse{
				Success: true,
				Message: "Your consultation request has already been received",
				ID:      rec.SubmissionID,
			})
			return
		}
		// Record vanished between lookup and now; fall through and resubmit.
	}

	fh, err := c.FormFile("attachment")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			fh = nil
		} else if isBodyTooLarge(err) {
			fail(c, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, "request body too large")
			return
		} else {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "malformed multipart form")
			return
		}
	}

	in := services.ConsultationInput{
		FullName:      c.PostForm("fullName"),
		Email:         c.PostForm("email"),
		Phone:         c.PostForm("phone"),
		HelpType:      c.PostForm("helpType"),
		University:    c.PostForm("university"),
		AcademicLevel: c.PostForm("academicLevel"),
		Message:       c.PostForm("message"),
		Deadline:      c.PostForm("deadline"),
	}

	res, err := h.consultSvc.Submit(ctx, in, fh, clientID, idemKey)
	if err != nil {
		var ve *services.ValidationError
		switch {
		case errors.As(err, &ve):
			failFields(c, http.StatusUnprocessableEntity, ErrCodeValidationFailed, ve.Error(), ve.Fields)
		case errors.Is(err, services.ErrAttachmentTooLarge):
			fail(c, http.StatusRequestEntityTooLarge, ErrCodeAttachmentTooLarge, "attachment exceeds the size limit")
		case errors.Is(err, services.ErrUnsupportedAttachment):
			fail(c, http.StatusUnsupportedMediaType, ErrCodeUnsupportedAttachment, "attachment type is not allowed")
		case isBodyTooLarge(err):
			fail(c, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, "request body too large")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeSubmitFailed, "could not process the submission")
		}
		return
	}

	ok(c, http.StatusCreated, SubmitConsultationResponse{
		Success: true,
		Message: "Your consultation request has been received",
		ID:      res.SubmissionID,
	})
}

// GetConsultation godoc
// @ID          getConsultation
// @Summary     Fetch a stored consultation
// @Description Returns a consultation row by its database id. Only persisted
// @Description submissions resolve here; submissions accepted in degraded
// @Description (no-database) mode exist solely in the notification emails.
// @Tags        Consultations
// @Produce     json
//
// @Param       id  path  int  true  "Consultation row id"
//
// @Success     200  {object}  domain.Consultation
// @Failure     400  {object}  handlers.ErrorResponse "Invalid id"
// @Failure     404  {object}  handlers.ErrorResponse "Unknown id"
// @Failure     503  {object}  handlers.ErrorResponse "Storage unavailable"
// @Router      /consultations/{id} [get]
func (h *Handlers) GetConsultation(c *gin.Context) {
	id, okID := utils.ParseUintID(c.Param("id"))
	if !okID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "id must be a positive integer")
		return
	}

	res, err := h.consultSvc.Get(c.Request.Context(), id)
	switch {
	case err == nil:
		ok(c, http.StatusOK, res)
	case errors.Is(err, services.ErrConsultationNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "consultation not found")
	case errors.Is(err, services.ErrStoreUnavailable):
		fail(c, http.StatusServiceUnavailable, ErrCodeStorageUnavailable, "storage is temporarily unavailable")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not load the consultation")
	}
}

// isBodyTooLarge detects the http.MaxBytesReader cap installed by the
// BodyLimit middleware.
func isBodyTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}
