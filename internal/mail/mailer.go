// Package mail provides the outbound mail transport and the consultation
// notification dispatcher. Sends are best-effort relative to the synchronous
// request contract: failures here are logged and counted, never surfaced as
// request errors.
package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bahithi/platform-backend/internal/config"
)

// Message is one composed email ready for the transport.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
}

// Mailer hands a structured message to an underlying transport. Send blocks
// until the transport accepts or rejects the message; callers that must not
// block run it from a goroutine.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer delivers messages over SMTP with STARTTLS. The whole exchange is
// bounded by dial and I/O deadlines so a hung server cannot pin a goroutine.
type SMTPMailer struct {
	host     string
	port     string
	user     string
	pass     string
	from     string
	fromName string

	dialTimeout time.Duration
	ioTimeout   time.Duration
}

// NewSMTPMailer builds an SMTPMailer from the mail configuration.
func NewSMTPMailer(cfg config.MailConfig) *SMTPMailer {
	return &SMTPMailer{
		host:        cfg.SMTPHost,
		port:        cfg.SMTPPort,
		user:        cfg.SMTPUser,
		pass:        cfg.SMTPPass,
		from:        cfg.From,
		fromName:    cfg.FromName,
		dialTimeout: 8 * time.Second,
		ioTimeout:   15 * time.Second,
	}
}

// Send delivers msg to its single recipient. The context is checked before
// dialing; once the SMTP exchange starts, the connection deadline bounds it.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := net.JoinHostPort(m.host, m.port)
	conn, err := net.DialTimeout("tcp", addr, m.dialTimeout)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	_ = conn.SetDeadline(time.Now().Add(m.ioTimeout))

	c, err := smtp.NewClient(conn, m.host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer func() { _ = c.Quit() }()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: m.host}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}
	if m.user != "" {
		auth := smtp.PlainAuth("", m.user, m.pass, m.host)
		if err := c.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := c.Mail(m.from); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := c.Rcpt(msg.To); err != nil {
		return fmt.Errorf("rcpt to: %w", err)
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write(m.encode(msg)); err != nil {
		_ = w.Close()
		return fmt.Errorf("write body: %w", err)
	}
	return w.Close()
}

// encode renders the RFC 5322 message bytes: headers, blank line, HTML body.
func (m *SMTPMailer) encode(msg Message) []byte {
	fromHeader := m.from
	if m.fromName != "" {
		fromHeader = fmt.Sprintf("%s <%s>", m.fromName, m.from)
	}
	lines := []string{
		"From: " + fromHeader,
		"To: " + msg.To,
		"Subject: " + msg.Subject,
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
		"",
		msg.HTMLBody,
	}
	return []byte(strings.Join(lines, "\r\n"))
}

// LogMailer is the transport used when SMTP credentials are not configured:
// it records the composed message instead of sending it, so local setups can
// run the full intake pipeline without an upstream account.
type LogMailer struct{}

// Send logs the message and always succeeds.
func (LogMailer) Send(_ context.Context, msg Message) error {
	log.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Int("body_bytes", len(msg.HTMLBody)).
		Msg("mail transport disabled; message logged only")
	return nil
}
