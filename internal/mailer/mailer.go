package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/mail"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/nganaremba-rem/plant-disease-detection-backend/internal/config"
)

const alertTemplate = "plant_disease_alert.html"

// DeliveryError is a template render or transport failure. It maps to a
// server error at the HTTP layer; the underlying detail is logged, not
// returned to the client.
type DeliveryError struct {
	err error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery failed: %v", e.err)
}

func (e *DeliveryError) Unwrap() error { return e.err }

// RecipientError is a rejected recipient list: empty, or containing a
// syntactically invalid address. It maps to a client error.
type RecipientError struct {
	msg string
}

func (e *RecipientError) Error() string { return e.msg }

// sender is the transport seam; *gomail.Dialer satisfies it.
type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer renders the disease alert template and sends it over SMTP. It
// sends one message addressed to all recipients at once, exactly once
// per call, with no retry.
type Mailer struct {
	sender   sender
	tmpl     *template.Template
	from     string
	fromName string
	timeout  time.Duration
	log      *zap.Logger
}

// New builds a Mailer from env-sourced SMTP settings, parsing the alert
// template up front so a broken template fails startup, not the first
// send.
func New(mailCfg *config.Mail, templateDir string, timeout time.Duration, log *zap.Logger) (*Mailer, error) {
	// if actions do not dereference optional pointer fields, so the
	// template gets a helper for the disease flag.
	tmpl, err := template.New(alertTemplate).Funcs(template.FuncMap{
		"flagged": func(b *bool) bool { return b != nil && *b },
	}).ParseFiles(filepath.Join(templateDir, alertTemplate))
	if err != nil {
		return nil, fmt.Errorf("failed to parse alert template: %w", err)
	}

	dialer := gomail.NewDialer(mailCfg.Server, mailCfg.Port, mailCfg.Username, mailCfg.Password)

	return &Mailer{
		sender:   dialer,
		tmpl:     tmpl,
		from:     mailCfg.From,
		fromName: mailCfg.FromName,
		timeout:  timeout,
		log:      log,
	}, nil
}

// ValidateRecipients rejects an empty recipient list and any address
// that does not parse. Malformed addresses are reported, never silently
// dropped.
func ValidateRecipients(recipients []string) error {
	if len(recipients) == 0 {
		return &RecipientError{msg: "at least one recipient is required"}
	}
	for _, addr := range recipients {
		if _, err := mail.ParseAddress(addr); err != nil {
			return &RecipientError{msg: fmt.Sprintf("invalid email address %q", addr)}
		}
	}
	return nil
}

// Send validates the recipients, renders the template once with the
// whole record list, and delivers a single message to all recipients.
// Not idempotent: an identical call sends a duplicate email.
func (m *Mailer) Send(ctx context.Context, recipients []string, records []ResultsForUI) error {
	if err := ValidateRecipients(recipients); err != nil {
		return err
	}

	var body bytes.Buffer
	if err := m.tmpl.Execute(&body, map[string]any{"data": records}); err != nil {
		return &DeliveryError{err: fmt.Errorf("template render: %w", err)}
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.from, m.fromName)
	msg.SetHeader("To", recipients...)
	msg.SetHeader("Subject", "Plant Disease Detection Alert")
	msg.SetBody("text/html", body.String())

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- m.sender.DialAndSend(msg)
	}()

	select {
	case <-ctx.Done():
		return &DeliveryError{err: ctx.Err()}
	case err := <-done:
		if err != nil {
			return &DeliveryError{err: err}
		}
	}

	m.log.Info("disease alert email sent",
		zap.Int("recipients", len(recipients)),
		zap.Int("records", len(records)))
	return nil
}
