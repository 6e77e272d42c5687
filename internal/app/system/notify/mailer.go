// internal/app/system/notify/mailer.go
package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// MailerConfig holds SMTP delivery settings.
type MailerConfig struct {
	Host     string
	Port     int
	User     string
	Pass     string
	From     string
	FromName string
}

// Mailer is the SMTP-backed Sender. Plain connection for local dev
// relays (Mailpit), AUTH when credentials are configured.
type Mailer struct {
	cfg MailerConfig
}

// NewMailer builds a Mailer from config.
func NewMailer(cfg MailerConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

// Send delivers one message to one recipient.
func (m *Mailer) Send(ctx context.Context, recipient, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := m.buildMessage(recipient, subject, body)

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host)
	}
	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{recipient}, msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", recipient, err)
	}
	return nil
}

// SendBulk renders the template once and delivers it to every recipient.
// The first delivery error aborts the remainder; the dispatcher logs it.
func (m *Mailer) SendBulk(ctx context.Context, recipients []string, templateKey string, payload map[string]string) error {
	subject, body, err := renderTemplate(templateKey, payload)
	if err != nil {
		return err
	}
	for _, rcpt := range recipients {
		if err := m.Send(ctx, rcpt, subject, body); err != nil {
			return err
		}
	}
	return nil
}

func (m *Mailer) buildMessage(recipient, subject, body string) []byte {
	from := m.cfg.From
	if m.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", m.cfg.FromName, m.cfg.From)
	}

	contentType := "text/plain; charset=utf-8"
	if strings.HasPrefix(strings.TrimSpace(body), "<!DOCTYPE") || strings.HasPrefix(strings.TrimSpace(body), "<html") {
		contentType = "text/html; charset=utf-8"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", recipient)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	fmt.Fprintf(&b, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: %s\r\n", contentType)
	fmt.Fprintf(&b, "\r\n%s", body)
	return []byte(b.String())
}
