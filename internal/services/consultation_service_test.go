package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bahithi/platform-backend/internal/domain"
	notifymail "github.com/bahithi/platform-backend/internal/mail"
	"github.com/bahithi/platform-backend/internal/repo"
	"github.com/bahithi/platform-backend/internal/upload"
)

// recordingMailer captures every message and can fail selected recipients.
type recordingMailer struct {
	mu     sync.Mutex
	sent   []notifymail.Message
	failTo map[string]bool
}

func (m *recordingMailer) Send(_ context.Context, msg notifymail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failTo[msg.To] {
		return errors.New("smtp refused")
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) recipients() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.sent))
	for _, msg := range m.sent {
		out = append(out, msg.To)
	}
	return out
}

func newServiceDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("svc_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func newService(t *testing.T, db *gorm.DB, mailer notifymail.Mailer) *ConsultationService {
	t.Helper()

	uploads, err := upload.New(t.TempDir(), 10<<20)
	if err != nil {
		t.Fatalf("upload handler: %v", err)
	}
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}
	s := NewConsultationService(
		repo.NewStore(db),
		uploads,
		&notifymail.Dispatcher{Mailer: mailer, OperatorEmail: "support@bahithi.com"},
		node,
		time.Hour,
	)
	s.notifyAsync = false // deterministic outcomes in tests
	return s
}

// formFile builds a *multipart.FileHeader the way gin would hand it to us.
func formFile(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("attachment", name)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := io.Copy(part, bytes.NewReader(content)); err != nil {
		t.Fatalf("copy: %v", err)
	}
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		t.Fatalf("parse form: %v", err)
	}
	return req.MultipartForm.File["attachment"][0]
}

func validInput() ConsultationInput {
	return ConsultationInput{
		FullName: "Sara Al-Harthy",
		Email:    "sara@example.com",
		HelpType: domain.HelpStatisticalAnalysis,
		Message:  "I need help comparing two treatment groups.",
	}
}

func TestSubmit_Validation_AggregatesAllViolations(t *testing.T) {
	svc := newService(t, newServiceDB(t), &recordingMailer{})

	_, err := svc.Submit(context.Background(), ConsultationInput{
		Email:    "not-an-address",
		HelpType: "astrology",
		Deadline: "15/09/2026",
	}, nil, "c1", "")

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	got := map[string]string{}
	for _, f := range ve.Fields {
		got[f.Field] = f.Reason
	}
	for _, field := range []string{"full_name", "email", "help_type", "message", "deadline"} {
		if got[field] == "" {
			t.Fatalf("missing violation for %q in %v", field, got)
		}
	}
}

func TestSubmit_Validation_MessageTooLong(t *testing.T) {
	svc := newService(t, newServiceDB(t), &recordingMailer{})

	in := validInput()
	in.Message = strings.Repeat("ع", messageMaxLen+1)
	_, err := svc.Submit(context.Background(), in, nil, "c1", "")

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if len(ve.Fields) != 1 || ve.Fields[0].Field != "message" {
		t.Fatalf("unexpected violations: %+v", ve.Fields)
	}
}

func TestSubmit_Success_StoresAndNotifies(t *testing.T) {
	mailer := &recordingMailer{}
	db := newServiceDB(t)
	svc := newService(t, db, mailer)

	in := validInput()
	in.Deadline = "2026-09-15"
	res, err := svc.Submit(context.Background(), in, nil, "c1", "")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.SubmissionID == "" {
		t.Fatalf("no submission id")
	}
	if res.Store.State != repo.StoreStored || res.Store.RowID == 0 {
		t.Fatalf("expected stored outcome, got %+v", res.Store)
	}

	// Both parties were notified.
	rcpts := mailer.recipients()
	if len(rcpts) != 2 {
		t.Fatalf("expected 2 emails, got %v", rcpts)
	}
	seen := map[string]bool{}
	for _, r := range rcpts {
		seen[r] = true
	}
	if !seen["support@bahithi.com"] || !seen["sara@example.com"] {
		t.Fatalf("wrong recipients: %v", rcpts)
	}

	// The row round-trips through Get.
	got, err := svc.Get(context.Background(), res.Store.RowID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Email != "sara@example.com" || got.Deadline == nil {
		t.Fatalf("stored row mismatch: %+v", got)
	}
}

func TestSubmit_AttachmentStoredAndLinked(t *testing.T) {
	db := newServiceDB(t)
	svc := newService(t, db, &recordingMailer{})

	fh := formFile(t, "thesis-draft.pdf", []byte("%PDF-1.4 data"))
	res, err := svc.Submit(context.Background(), validInput(), fh, "c1", "")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.Consultation.AttachmentPath == "" {
		t.Fatalf("attachment path not linked")
	}
	if !strings.HasSuffix(res.Consultation.AttachmentPath, ".pdf") {
		t.Fatalf("extension lost: %q", res.Consultation.AttachmentPath)
	}
}

func TestSubmit_AttachmentErrorsMapped(t *testing.T) {
	db := newServiceDB(t)
	mailer := &recordingMailer{}

	uploads, err := upload.New(t.TempDir(), 16) // tiny cap
	if err != nil {
		t.Fatalf("upload handler: %v", err)
	}
	node, _ := snowflake.NewNode(1)
	svc := NewConsultationService(repo.NewStore(db), uploads, &notifymail.Dispatcher{Mailer: mailer, OperatorEmail: "op@x.com"}, node, time.Hour)
	svc.notifyAsync = false

	big := formFile(t, "big.pdf", bytes.Repeat([]byte("x"), 64))
	if _, err := svc.Submit(context.Background(), validInput(), big, "c1", ""); !errors.Is(err, ErrAttachmentTooLarge) {
		t.Fatalf("expected ErrAttachmentTooLarge, got %v", err)
	}

	exe := formFile(t, "malware.exe", []byte("MZ"))
	if _, err := svc.Submit(context.Background(), validInput(), exe, "c1", ""); !errors.Is(err, ErrUnsupportedAttachment) {
		t.Fatalf("expected ErrUnsupportedAttachment, got %v", err)
	}

	// Rejected uploads must not send any email.
	if n := len(mailer.recipients()); n != 0 {
		t.Fatalf("emails sent for rejected upload: %d", n)
	}
}

func TestSubmit_DegradedMode_NoDatabase(t *testing.T) {
	mailer := &recordingMailer{}
	svc := newService(t, nil, mailer)

	res, err := svc.Submit(context.Background(), validInput(), nil, "c1", "")
	if err != nil {
		t.Fatalf("Submit in degraded mode: %v", err)
	}
	if res.Store.State != repo.StoreSkipped {
		t.Fatalf("expected skipped store, got %+v", res.Store)
	}
	if res.SubmissionID == "" {
		t.Fatalf("no submission id in degraded mode")
	}
	if len(mailer.recipients()) != 2 {
		t.Fatalf("degraded mode must still notify both parties")
	}
}

func TestSubmit_MailFailureDoesNotFailSubmission(t *testing.T) {
	mailer := &recordingMailer{failTo: map[string]bool{"support@bahithi.com": true, "sara@example.com": true}}
	svc := newService(t, newServiceDB(t), mailer)

	res, err := svc.Submit(context.Background(), validInput(), nil, "c1", "")
	if err != nil {
		t.Fatalf("Submit with failing mailer: %v", err)
	}
	if res.Store.State != repo.StoreStored {
		t.Fatalf("store should still succeed: %+v", res.Store)
	}
}

func TestSubmit_IdempotencyRecordedAndReplayable(t *testing.T) {
	db := newServiceDB(t)
	svc := newService(t, db, &recordingMailer{})
	ctx := context.Background()

	res, err := svc.Submit(ctx, validInput(), nil, "client-9", "retry-key-1")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	rec, err := svc.PriorSubmission(ctx, "client-9", "retry-key-1")
	if err != nil {
		t.Fatalf("PriorSubmission: %v", err)
	}
	if rec.SubmissionID != res.SubmissionID || rec.Status != 201 {
		t.Fatalf("replay record mismatch: %+v vs %s", rec, res.SubmissionID)
	}

	// Other clients never see the key.
	if _, err := svc.PriorSubmission(ctx, "client-10", "retry-key-1"); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("key leaked across clients: %v", err)
	}
}

func TestPriorSubmission_DegradedReportsNotFound(t *testing.T) {
	svc := newService(t, nil, &recordingMailer{})
	if _, err := svc.PriorSubmission(context.Background(), "c1", "k1"); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("expected ErrNotFound in degraded mode, got %v", err)
	}
}

func TestGet_Errors(t *testing.T) {
	svc := newService(t, newServiceDB(t), &recordingMailer{})
	if _, err := svc.Get(context.Background(), 999); !errors.Is(err, ErrConsultationNotFound) {
		t.Fatalf("expected ErrConsultationNotFound, got %v", err)
	}

	degraded := newService(t, nil, &recordingMailer{})
	if _, err := degraded.Get(context.Background(), 1); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}
