package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
)

// SMTPSender delivers alerts by email.
type SMTPSender struct {
	host       string
	port       string
	auth       smtp.Auth
	from       string
	recipients []string
	logger     *zap.Logger

	// sendMail is swappable for tests
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// SMTPConfig holds SMTP sender configuration.
type SMTPConfig struct {
	Host       string
	Port       string
	User       string
	Password   string
	From       string
	Recipients []string
	Logger     *zap.Logger
}

// NewSMTPSender creates a new SMTP sender.
func NewSMTPSender(cfg *SMTPConfig) *SMTPSender {
	var auth smtp.Auth
	if cfg.User != "" {
		auth = smtp.PlainAuth("", cfg.User, cfg.Password, cfg.Host)
	}

	return &SMTPSender{
		host:       cfg.Host,
		port:       cfg.Port,
		auth:       auth,
		from:       cfg.From,
		recipients: cfg.Recipients,
		logger:     cfg.Logger,
		sendMail:   smtp.SendMail,
	}
}

// Send emails the rendered alert to all recipients.
func (s *SMTPSender) Send(ctx context.Context, alert Alert) error {
	subject := renderSubject(alert)
	body := renderBody(alert)

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", s.from)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(s.recipients, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := s.host + ":" + s.port
	err := s.sendMail(addr, s.auth, s.from, s.recipients, []byte(msg.String()))
	if err != nil {
		return fmt.Errorf("smtp send to %s: %w", addr, err)
	}

	s.logger.Info("alert-email-sent",
		zap.Int64("message-id", alert.Message.ID),
		zap.Int("recipient-count", len(s.recipients)))
	return nil
}
