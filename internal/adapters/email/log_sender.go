package email

import (
	"context"
	"log/slog"

	"github.com/SscSPs/tax_filing_app/internal/core/ports/gateways"
)

// LogSender writes emails to the log instead of sending them. Used when no SMTP host is configured.
type LogSender struct {
	logger *slog.Logger
}

var _ gateways.EmailSender = (*LogSender)(nil)

func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, e gateways.Email) error {
	s.logger.InfoContext(ctx, "Email not sent, no SMTP relay configured",
		slog.String("to", e.To),
		slog.String("subject", e.Subject))
	return nil
}

// NewSender picks the SMTP sender when a host is configured and the log sender otherwise.
func NewSender(cfg SMTPConfig, logger *slog.Logger) gateways.EmailSender {
	if cfg.Host == "" {
		return NewLogSender(logger)
	}
	return NewSMTPSender(cfg, logger)
}
