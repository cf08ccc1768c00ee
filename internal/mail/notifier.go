// Notification dispatcher for consultation submissions.
//
// Each accepted submission produces exactly two messages: an operator-facing
// summary of every field and a submitter-facing acknowledgment echoing the
// submission id and requested help type. Both sends are attempted; a failure
// on either is classified into the returned Outcome and never propagates.
package mail

import (
	"bytes"
	"context"
	"html/template"
	"sync"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/bahithi/platform-backend/internal/domain"
)

// Outcome classifies a dispatch attempt. It is consumed by logging and
// metrics only; it must never gate the request-level result.
type Outcome int

const (
	// OutcomeSent means both messages were accepted by the transport.
	OutcomeSent Outcome = iota
	// OutcomePartial means exactly one of the two sends failed.
	OutcomePartial
	// OutcomeFailed means both sends failed.
	OutcomeFailed
)

// String returns the metric/log label for the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeSent:
		return "sent"
	case OutcomePartial:
		return "partial_failure"
	default:
		return "failure"
	}
}

// Dispatcher composes and sends the two notification messages for a
// consultation submission.
type Dispatcher struct {
	// Mailer is the underlying transport.
	Mailer Mailer
	// OperatorEmail receives the summary of every submission. When the
	// database is down this email is the record of truth.
	OperatorEmail string
}

const notSpecified = "not specified"

// orEmpty substitutes the human-readable fallback for blank optional fields.
func orEmpty(s string) string {
	if s == "" {
		return notSpecified
	}
	return s
}

var operatorTmpl = template.Must(template.New("operator").Parse(`<div style="font-family: Arial, sans-serif;">
  <h2>New consultation request</h2>
  <p><strong>Request ID:</strong> #{{.SubmissionID}}</p>
  <p><strong>Name:</strong> {{.FullName}}</p>
  <p><strong>Email:</strong> {{.Email}}</p>
  <p><strong>Phone:</strong> {{.Phone}}</p>
  <p><strong>Help type:</strong> {{.HelpType}}</p>
  <p><strong>University:</strong> {{.University}}</p>
  <p><strong>Academic level:</strong> {{.AcademicLevel}}</p>
  <p><strong>Deadline:</strong> {{.Deadline}}</p>
  <p><strong>Attachment:</strong> {{.Attachment}}</p>
  <hr>
  <h3>Request details:</h3>
  <p>{{.Message}}</p>
</div>`))

var submitterTmpl = template.Must(template.New("submitter").Parse(`<div style="font-family: Arial, sans-serif;">
  <h2>Thank you for contacting us</h2>
  <p>Dear {{.Greeting}},</p>
  <p>Your request has been received and you will get a reply within 24-48 hours.</p>
  <p><strong>Request ID:</strong> #{{.SubmissionID}}</p>
  <p><strong>Requested help type:</strong> {{.HelpType}}</p>
  <hr>
  <p>Best regards,</p>
  <p><strong>Bahithi Platform</strong></p>
</div>`))

// operatorMessage renders the full-field summary for the operator inbox.
func (d *Dispatcher) operatorMessage(submissionID string, c domain.Consultation) (Message, error) {
	deadline := notSpecified
	if c.Deadline != nil {
		deadline = c.Deadline.Format("2006-01-02")
	}
	var buf bytes.Buffer
	err := operatorTmpl.Execute(&buf, map[string]string{
		"SubmissionID":  submissionID,
		"FullName":      c.FullName,
		"Email":         c.Email,
		"Phone":         orEmpty(c.Phone),
		"HelpType":      c.HelpType,
		"University":    orEmpty(c.University),
		"AcademicLevel": orEmpty(c.AcademicLevel),
		"Deadline":      deadline,
		"Attachment":    orEmpty(c.AttachmentPath),
		"Message":       c.Message,
	})
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:       d.OperatorEmail,
		Subject:  "New consultation request - " + c.FullName,
		HTMLBody: buf.String(),
	}, nil
}

// submitterMessage renders the acknowledgment sent back to the requester.
func (d *Dispatcher) submitterMessage(submissionID string, c domain.Consultation) (Message, error) {
	greeting := cases.Title(language.Und).String(c.FullName)
	var buf bytes.Buffer
	err := submitterTmpl.Execute(&buf, map[string]string{
		"Greeting":     greeting,
		"SubmissionID": submissionID,
		"HelpType":     c.HelpType,
	})
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:       c.Email,
		Subject:  "Your request has been received - Bahithi Platform",
		HTMLBody: buf.String(),
	}, nil
}

// Notify attempts both sends concurrently and classifies the combined result.
// It blocks until both attempts complete; the orchestrator runs it from a
// fire-and-forget goroutine so the HTTP response never waits on it.
func (d *Dispatcher) Notify(ctx context.Context, submissionID string, c domain.Consultation) Outcome {
	msgs := make([]Message, 0, 2)
	if op, err := d.operatorMessage(submissionID, c); err == nil {
		msgs = append(msgs, op)
	}
	if sub, err := d.submitterMessage(submissionID, c); err == nil {
		msgs = append(msgs, sub)
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed = 2 - len(msgs) // template failures count as send failures
	)
	for _, msg := range msgs {
		wg.Add(1)
		go func(m Message) {
			defer wg.Done()
			if err := d.Mailer.Send(ctx, m); err != nil {
				mu.Lock()
				failed++
				mu.Unlock()
			}
		}(msg)
	}
	wg.Wait()

	switch failed {
	case 0:
		return OutcomeSent
	case 1:
		return OutcomePartial
	default:
		return OutcomeFailed
	}
}

// NotifyTimeout bounds a fire-and-forget dispatch so its goroutine cannot
// outlive a stalled transport indefinitely.
const NotifyTimeout = 45 * time.Second
