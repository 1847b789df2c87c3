package mail

import (
	"context"
	"fmt"
	"log/slog"

	gomail "gopkg.in/gomail.v2"

	"newsbrief/internal/config"
	"newsbrief/internal/ports"
)

// Sender delivers the digest through an authenticated SMTP relay, one
// message per recipient.
type Sender struct {
	host     string
	port     int
	username string
	password string
	from     string
	subject  string
	logger   *slog.Logger
}

var _ ports.Deliverer = (*Sender)(nil)

// NewSender wires the relay settings.
func NewSender(cfg config.MailConfig, log *slog.Logger) *Sender {
	return &Sender{
		host:     cfg.Host,
		port:     cfg.Port,
		username: cfg.Username,
		password: cfg.Password,
		from:     cfg.From,
		subject:  cfg.Subject,
		logger:   log,
	}
}

// Send opens one relay session and fans the digest out. A failed recipient
// is logged and skipped; the batch itself only fails when the relay session
// cannot be established.
func (s *Sender) Send(ctx context.Context, digest string, recipients []string) error {
	if s.host == "" || s.from == "" {
		return fmt.Errorf("mail sender misconfigured")
	}
	if len(recipients) == 0 {
		return nil
	}

	dialer := gomail.NewDialer(s.host, s.port, s.username, s.password)
	session, err := dialer.Dial()
	if err != nil {
		return fmt.Errorf("dial smtp relay: %w", err)
	}
	defer session.Close()

	sent := 0
	for _, rcpt := range recipients {
		if err := ctx.Err(); err != nil {
			return err
		}

		msg := gomail.NewMessage()
		msg.SetHeader("From", s.from)
		msg.SetHeader("To", rcpt)
		msg.SetHeader("Subject", s.subject)
		msg.SetBody("text/html", digest)

		if err := gomail.Send(session, msg); err != nil {
			s.warn("send failed", "recipient", rcpt, "error", err)
			continue
		}
		sent++
	}

	s.info("digest delivered", "sent", sent, "recipients", len(recipients))
	return nil
}

func (s *Sender) info(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func (s *Sender) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
