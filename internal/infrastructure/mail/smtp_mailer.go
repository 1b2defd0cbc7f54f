package mail

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"

	"prpulse/internal/bootstrap/config"
	"prpulse/internal/errs"
)

// SMTPMailer delivers digest emails over plain SMTP.
type SMTPMailer struct {
	cfg config.SMTPConfig
}

func NewSMTPMailer(cfg config.Config) *SMTPMailer {
	return &SMTPMailer{cfg: cfg.SMTP}
}

func (m *SMTPMailer) Send(ctx context.Context, to string, subject string, body string) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	if m.cfg.Host == "" {
		return errors.New("smtp host is not configured")
	}

	sender := m.cfg.Sender
	if sender == "" {
		sender = "no-reply@localhost"
	}

	var auth smtp.Auth
	if m.cfg.Username != "" && m.cfg.Password != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	msg := []byte(
		fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n", sender, to, subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/plain; charset=UTF-8\r\n\r\n" +
			body,
	)

	addr := fmt.Sprintf("%s:%s", m.cfg.Host, m.cfg.Port)
	if err := smtp.SendMail(addr, auth, sender, []string{to}, msg); err != nil {
		return errs.Wrapf(err, "send mail to %s via %s", to, addr)
	}
	return nil
}
