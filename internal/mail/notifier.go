// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Simple Quiz Contributors

// Package mail delivers signup confirmation messages over SMTP.
package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/samber/oops"

	"github.com/simple-quiz-org/simple-quiz-api/internal/auth"
	"github.com/simple-quiz-org/simple-quiz-api/internal/config"
)

// sendFunc matches net/smtp.SendMail, injectable for tests.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPNotifier implements auth.Notifier over a plain SMTP relay.
type SMTPNotifier struct {
	host          string
	port          int
	from          string
	auth          smtp.Auth
	publicBaseURL string

	send sendFunc
}

// NewSMTPNotifier creates a notifier from SMTP settings. publicBaseURL is
// the origin confirmation links point at.
func NewSMTPNotifier(cfg config.SMTPConfig, publicBaseURL string) *SMTPNotifier {
	var a smtp.Auth
	if cfg.Username != "" {
		a = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &SMTPNotifier{
		host:          cfg.Host,
		port:          cfg.Port,
		from:          cfg.From,
		auth:          a,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
		send:          smtp.SendMail,
	}
}

// SendConfirmation mails the signup confirmation link. The copy states the
// one-hour validity window the server enforces.
func (n *SMTPNotifier) SendConfirmation(ctx context.Context, mail, token string) error {
	if err := ctx.Err(); err != nil {
		return oops.Code(auth.CodeMailDelivery).Wrap(err)
	}

	link := fmt.Sprintf("%s/register?token=%s", n.publicBaseURL, token)
	msg := buildConfirmationMessage(n.from, mail, link)

	addr := fmt.Sprintf("%s:%d", n.host, n.port)
	if err := n.send(addr, n.auth, n.from, []string{mail}, msg); err != nil {
		return oops.Code(auth.CodeMailDelivery).
			With("operation", "send confirmation mail").
			With("smtp_addr", addr).
			Wrap(err)
	}
	return nil
}

// buildConfirmationMessage renders the RFC 5322 message body.
func buildConfirmationMessage(from, to, link string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	b.WriteString("Subject: Confirm your registration\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString("Thank you for signing up.\r\n")
	b.WriteString("\r\n")
	b.WriteString("Open the link below to complete your registration:\r\n")
	fmt.Fprintf(&b, "%s\r\n", link)
	b.WriteString("\r\n")
	b.WriteString("The link is valid for one hour. If it expires, just sign up again.\r\n")
	b.WriteString("If you did not request this, you can ignore this message.\r\n")
	return []byte(b.String())
}

// Compile-time interface check.
var _ auth.Notifier = (*SMTPNotifier)(nil)
