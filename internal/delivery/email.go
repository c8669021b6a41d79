package delivery

import (
	"context"
	"fmt"
	"mime"
	"net/smtp"
	"strings"

	"golang-news-briefer/internal/briefing"
	"golang-news-briefer/internal/config"
	"golang-news-briefer/pkg/logger"
)

// EmailDeliverer sends the briefing as a multipart plain+HTML message over
// SMTP.
type EmailDeliverer struct {
	cfg    *config.Email
	logger *logger.Logger
}

// NewEmailDeliverer creates an SMTP deliverer.
func NewEmailDeliverer(cfg *config.Email, log *logger.Logger) *EmailDeliverer {
	return &EmailDeliverer{cfg: cfg, logger: log}
}

func (e *EmailDeliverer) Name() string { return "email" }

func (e *EmailDeliverer) Deliver(_ context.Context, b *briefing.Briefing) error {
	if len(e.cfg.Recipients) == 0 {
		return fmt.Errorf("no email recipients configured")
	}

	msg := e.buildMessage(b)
	addr := fmt.Sprintf("%s:%d", e.cfg.SMTPHost, e.cfg.SMTPPort)
	auth := smtp.PlainAuth("", e.cfg.Sender, e.cfg.Password, e.cfg.SMTPHost)

	if err := smtp.SendMail(addr, auth, e.cfg.Sender, e.cfg.Recipients, msg); err != nil {
		return fmt.Errorf("failed to send briefing email: %w", err)
	}

	e.logger.Info("Briefing email sent",
		logger.IntField("recipients", len(e.cfg.Recipients)),
		logger.BoolField("failure_notice", b.Failed),
	)
	return nil
}

func (e *EmailDeliverer) buildMessage(b *briefing.Briefing) []byte {
	const boundary = "briefing-boundary-1a2b3c"

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", e.cfg.Sender)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(e.cfg.Recipients, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", b.Subject()))
	msg.WriteString("MIME-Version: 1.0\r\n")

	if b.HTML == "" {
		msg.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
		msg.WriteString(b.PlainText)
		return []byte(msg.String())
	}

	fmt.Fprintf(&msg, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)

	fmt.Fprintf(&msg, "--%s\r\n", boundary)
	msg.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(b.PlainText)
	msg.WriteString("\r\n")

	fmt.Fprintf(&msg, "--%s\r\n", boundary)
	msg.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	msg.WriteString(b.HTML)
	msg.WriteString("\r\n")

	fmt.Fprintf(&msg, "--%s--\r\n", boundary)
	return []byte(msg.String())
}
