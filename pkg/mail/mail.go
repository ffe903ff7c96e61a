// Package mail delivers rendered email over SMTP.
//
//	err := sender.Send(ctx, &mail.Message{
//	    To:      []string{"parent@example.com"},
//	    Subject: "Your account is approved",
//	    HTML:    "<p>Welcome!</p>",
//	})
package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shashiranjanraj/uniformhub/config"
	"github.com/shashiranjanraj/uniformhub/pkg/logger"
)

// Message is one outgoing email.
type Message struct {
	To      []string
	Subject string
	HTML    string
}

// Sender delivers a message.
type Sender interface {
	Send(ctx context.Context, m *Message) error
}

// SMTPConfig holds connection settings.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

func SMTPConfigFromEnv() SMTPConfig {
	return SMTPConfig{
		Host:     config.Get("MAIL_HOST", ""),
		Port:     config.Get("MAIL_PORT", "587"),
		Username: config.Get("MAIL_USERNAME", ""),
		Password: config.Get("MAIL_PASSWORD", ""),
		From:     config.Get("MAIL_FROM", "no-reply@uniformhub.local"),
		FromName: config.Get("MAIL_FROM_NAME", "UniformHub"),
	}
}

// FromEnv returns an SMTP sender, or a log-only sender when MAIL_HOST is
// unset so local development never needs a mail server.
func FromEnv() Sender {
	cfg := SMTPConfigFromEnv()
	if cfg.Host == "" {
		return LogSender{}
	}
	return &SMTPSender{cfg: cfg}
}

type SMTPSender struct {
	cfg SMTPConfig
}

func NewSMTP(cfg SMTPConfig) *SMTPSender { return &SMTPSender{cfg: cfg} }

var ErrNoRecipients = errors.New("mail: no recipients")

func (s *SMTPSender) Send(ctx context.Context, m *Message) error {
	if len(m.To) == 0 {
		return ErrNoRecipients
	}
	raw := buildRaw(s.cfg, m, time.Now())
	addr := net.JoinHostPort(s.cfg.Host, s.cfg.Port)

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	done := make(chan error, 1)
	go func() {
		if s.cfg.Port == "465" {
			done <- s.sendImplicitTLS(addr, auth, m.To, raw)
			return
		}
		done <- smtp.SendMail(addr, auth, s.cfg.From, m.To, raw)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("mail: send: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *SMTPSender) sendImplicitTLS(addr string, auth smtp.Auth, to []string, raw []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: s.cfg.Host})
	if err != nil {
		return fmt.Errorf("TLS dial: %w", err)
	}
	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return err
	}
	defer client.Quit()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return err
		}
	}
	if err := client.Mail(s.cfg.From); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(raw); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func buildRaw(cfg SMTPConfig, m *Message, now time.Time) []byte {
	domain := "uniformhub.local"
	if _, d, ok := strings.Cut(cfg.From, "@"); ok {
		domain = d
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", cfg.FromName, cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(m.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", sanitizeHeader(m.Subject))
	fmt.Fprintf(&b, "Date: %s\r\n", now.Format(time.RFC1123Z))
	fmt.Fprintf(&b, "Message-ID: <%s@%s>\r\n", uuid.NewString(), domain)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(m.HTML)
	return []byte(b.String())
}

func sanitizeHeader(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}

// LogSender writes messages to the log instead of delivering them.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, m *Message) error {
	if len(m.To) == 0 {
		return ErrNoRecipients
	}
	logger.WithCtx(ctx).Info("mail (not sent, MAIL_HOST unset)", "to", m.To, "subject", m.Subject)
	return nil
}
