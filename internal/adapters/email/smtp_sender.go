// Package email delivers transactional email for the notification dispatcher.
package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/tax_filing_app/internal/core/ports/gateways"
	"github.com/wneessen/go-mail"
)

// SMTPConfig holds the relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender sends plain-text email through an SMTP relay.
type SMTPSender struct {
	cfg    SMTPConfig
	logger *slog.Logger
}

var _ gateways.EmailSender = (*SMTPSender)(nil)

func NewSMTPSender(cfg SMTPConfig, logger *slog.Logger) *SMTPSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &SMTPSender{cfg: cfg, logger: logger}
}

// BuildMessage renders e into a MIME message without sending it.
func (s *SMTPSender) BuildMessage(e gateways.Email) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return nil, fmt.Errorf("invalid sender address %q: %w", s.cfg.From, err)
	}
	if err := m.To(e.To); err != nil {
		return nil, fmt.Errorf("invalid recipient address %q: %w", e.To, err)
	}
	m.Subject(e.Subject)
	m.SetBodyString(mail.TypeTextPlain, e.Body)
	return m, nil
}

func (s *SMTPSender) Send(ctx context.Context, e gateways.Email) error {
	m, err := s.BuildMessage(e)
	if err != nil {
		return err
	}

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}

	c, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}
	if err := c.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", e.To, err)
	}

	s.logger.Debug("Email sent", slog.String("to", e.To), slog.String("subject", e.Subject))
	return nil
}
