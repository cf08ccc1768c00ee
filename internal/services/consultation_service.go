// Package services – ConsultationService
//
// This file implements the consultation intake pipeline: validate the form,
// stash an optional attachment, mint a submission id, notify both parties by
// email, and persist best-effort. The ordering is deliberate — the user's 201
// depends only on validation and the attachment; email and storage failures
// degrade without surfacing.
package services

import (
	"context"
	"errors"
	"mime/multipart"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/snowflake"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/bahithi/platform-backend/internal/domain"
	notifymail "github.com/bahithi/platform-backend/internal/mail"
	"github.com/bahithi/platform-backend/internal/repo"
	"github.com/bahithi/platform-backend/internal/upload"
)

var (
	// notifyOutcomes counts notification dispatch results per submission.
	notifyOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "consultation_notifications_total",
			Help: "Consultation notification dispatch outcomes.",
		},
		[]string{"outcome"},
	)

	// storeOutcomes counts best-effort persistence results per submission.
	storeOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "consultation_store_writes_total",
			Help: "Best-effort consultation write outcomes.",
		},
		[]string{"state"},
	)
)

func init() {
	prometheus.MustRegister(notifyOutcomes, storeOutcomes)
}

// deadlineLayout is the wire format accepted for the optional deadline field.
const deadlineLayout = "2006-01-02"

// messageMaxLen caps the free-text message by rune length.
const messageMaxLen = 10_000

// ConsultationInput carries the raw form fields of one intake request.
// All values arrive as strings; the service parses and validates them.
type ConsultationInput struct {
	FullName      string
	Email         string
	Phone         string
	HelpType      string
	University    string
	AcademicLevel string
	Message       string
	Deadline      string
}

// SubmitResult reports everything the handler needs to answer a submission:
// the public submission id, the echo of the stored record, and how the two
// best-effort stages ended.
type SubmitResult struct {
	SubmissionID string
	Consultation domain.Consultation
	Store        repo.StoreOutcome
}

// ConsultationService coordinates the intake pipeline. All collaborators are
// injected so tests can replace storage, uploads, and mail independently.
type ConsultationService struct {
	// Store is the best-effort persistence gateway; it may wrap a nil handle.
	Store *repo.Store
	// Uploads stores validated attachments on local disk.
	Uploads *upload.Handler
	// Notifier sends the operator and submitter emails.
	Notifier *notifymail.Dispatcher
	// Node mints the public submission ids.
	Node *snowflake.Node
	// IdemTTL bounds how long a recorded Idempotency-Key replays.
	IdemTTL time.Duration

	// notifyAsync, when false, runs notification inline. Tests use it to
	// observe outcomes deterministically.
	notifyAsync bool
}

// NewConsultationService wires the intake pipeline with async notification.
func NewConsultationService(store *repo.Store, uploads *upload.Handler, notifier *notifymail.Dispatcher, node *snowflake.Node, idemTTL time.Duration) *ConsultationService {
	return &ConsultationService{
		Store:       store,
		Uploads:     uploads,
		Notifier:    notifier,
		Node:        node,
		IdemTTL:     idemTTL,
		notifyAsync: true,
	}
}

// validate checks every field and aggregates all violations.
func validate(in ConsultationInput) (*domain.Consultation, error) {
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

	helpType := strings.TrimSpace(in.HelpType)
	if helpType == "" {
		ve.add("help_type", "required")
	} else if !domain.ValidHelpType(helpType) {
		ve.add("help_type", "unknown category")
	}

	message := strings.TrimSpace(in.Message)
	if message == "" {
		ve.add("message", "required")
	} else if utf8.RuneCountInString(message) > messageMaxLen {
		ve.add("message", "too long")
	}

	var deadline *time.Time
	if d := strings.TrimSpace(in.Deadline); d != "" {
		t, err := time.ParseInLocation(deadlineLayout, d, time.UTC)
		if err != nil {
			ve.add("deadline", "must be YYYY-MM-DD")
		} else {
			deadline = &t
		}
	}

	if err := ve.orNil(); err != nil {
		return nil, err
	}

	return &domain.Consultation{
		FullName:      fullName,
		Email:         email,
		Phone:         strings.TrimSpace(in.Phone),
		HelpType:      helpType,
		University:    strings.TrimSpace(in.University),
		AcademicLevel: strings.TrimSpace(in.AcademicLevel),
		Message:       message,
		Deadline:      deadline,
		Status:        domain.StatusPending,
	}, nil
}

// Submit runs the full intake pipeline for one form submission.
//
// Pipeline stages, in order:
//  1. Validate all fields; reject with *ValidationError listing every violation.
//  2. Store the attachment (optional); size/type failures reject the request.
//  3. Mint the public submission id.
//  4. Dispatch both notification emails (fire-and-forget; outcome feeds logs
//     and metrics only).
//  5. Persist best-effort; the outcome never fails the submission.
//  6. Record the Idempotency-Key, when present, so retries replay the same id.
//
// clientID identifies the caller for idempotency scoping (user id or IP) and
// idemKey is the already-validated Idempotency-Key header, empty when absent.
func (s *ConsultationService) Submit(ctx context.Context, in ConsultationInput, fh *multipart.FileHeader, clientID, idemKey string) (*SubmitResult, error) {
	tracer := otel.Tracer("services")
	ctx, span := tracer.Start(ctx, "consultation.submit")
	defer span.End()

	c, err := validate(in)
	if err != nil {
		return nil, err
	}

	att, err := s.Uploads.Accept(fh)
	if err != nil {
		switch {
		case errors.Is(err, upload.ErrTooLarge):
			return nil, ErrAttachmentTooLarge
		case errors.Is(err, upload.ErrUnsupportedType):
			return nil, ErrUnsupportedAttachment
		default:
			return nil, err
		}
	}
	if att != nil {
		c.AttachmentPath = att.StoragePath
	}

	submissionID := s.Node.Generate().String()
	span.SetAttributes(
		attribute.String("submission.id", submissionID),
		attribute.String("submission.help_type", c.HelpType),
		attribute.Bool("submission.has_attachment", att != nil),
	)

	s.dispatchNotify(ctx, submissionID, *c)

	out := s.Store.SaveConsultation(ctx, c)
	storeOutcomes.WithLabelValues(out.State.String()).Inc()
	switch out.State {
	case repo.StoreFailed:
		log.Error().Err(out.Err).Str("submission_id", submissionID).Msg("consultation write failed; submission degraded to email-only")
	case repo.StoreSkipped:
		log.Warn().Str("submission_id", submissionID).Msg("database unavailable; submission degraded to email-only")
	}

	s.recordIdempotency(ctx, clientID, idemKey, submissionID)

	return &SubmitResult{SubmissionID: submissionID, Consultation: *c, Store: out}, nil
}

// dispatchNotify sends the two emails without blocking the response. The
// goroutine gets its own deadline and a detached context so client disconnects
// do not cancel in-flight SMTP dialogs.
func (s *ConsultationService) dispatchNotify(ctx context.Context, submissionID string, c domain.Consultation) {
	link := trace.LinkFromContext(ctx)
	run := func() {
		nctx, cancel := context.WithTimeout(context.Background(), notifymail.NotifyTimeout)
		defer cancel()
		nctx, span := otel.Tracer("services").Start(nctx, "consultation.notify", trace.WithLinks(link))
		defer span.End()

		outcome := s.Notifier.Notify(nctx, submissionID, c)
		notifyOutcomes.WithLabelValues(outcome.String()).Inc()
		evt := log.Info()
		if outcome != notifymail.OutcomeSent {
			evt = log.Error()
		}
		evt.Str("submission_id", submissionID).Str("outcome", outcome.String()).Msg("consultation notification dispatched")
	}
	if s.notifyAsync {
		go run()
		return
	}
	run()
}

// recordIdempotency stores the (client, route, key) → submission mapping.
// Best-effort: a miss only means a retry will submit again.
func (s *ConsultationService) recordIdempotency(ctx context.Context, clientID, idemKey, submissionID string) {
	if idemKey == "" || !s.Store.Ready() {
		return
	}
	_, err := repo.CreateIdempotency(ctx, s.Store.DB(), clientID, RouteConsultations, idemKey, submissionID, 201, s.IdemTTL)
	if err != nil && !errors.Is(err, repo.ErrDuplicate) {
		log.Warn().Err(err).Str("submission_id", submissionID).Msg("idempotency record not saved")
	}
}

// RouteConsultations scopes idempotency records to the intake endpoint.
const RouteConsultations = "/api/consultations"

// PriorSubmission returns the recorded submission for a previously used
// Idempotency-Key, or repo.ErrNotFound. Unreachable storage also reports not
// found: a replay miss is safe, it just submits again.
func (s *ConsultationService) PriorSubmission(ctx context.Context, clientID, idemKey string) (*domain.Idempotency, error) {
	if !s.Store.Ready() {
		return nil, repo.ErrNotFound
	}
	return repo.GetIdempotency(ctx, s.Store.DB(), clientID, RouteConsultations, idemKey, time.Now().UTC())
}

// Get fetches a stored consultation row by its durable id.
// Returns ErrStoreUnavailable in degraded mode and ErrConsultationNotFound
// for unknown ids.
func (s *ConsultationService) Get(ctx context.Context, id uint) (*domain.Consultation, error) {
	if !s.Store.Ready() {
		return nil, ErrStoreUnavailable
	}
	c, err := repo.GetConsultation(ctx, s.Store.DB(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrConsultationNotFound
		}
		return nil, err
	}
	return c, nil
}
