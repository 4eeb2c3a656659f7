package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/SscSPs/tax_filing_app/internal/apperrors"
	"github.com/SscSPs/tax_filing_app/internal/core/domain"
	"github.com/SscSPs/tax_filing_app/internal/core/notifications"
	"github.com/SscSPs/tax_filing_app/internal/core/ports/gateways"
	portsrepo "github.com/SscSPs/tax_filing_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/tax_filing_app/internal/core/ports/services"
	"github.com/SscSPs/tax_filing_app/internal/utils"
	"github.com/shopspring/decimal"
)

type notificationService struct {
	BaseService
	clients      portsrepo.ClientRepositoryFacade
	sender       gateways.EmailSender
	dashboardURL string
	deposit      decimal.Decimal
	currency     string
}

// NotificationServiceOption is a functional option for configuring the notification service
type NotificationServiceOption func(*notificationService)

// WithNotificationClock replaces the service clock.
func WithNotificationClock(now func() time.Time) NotificationServiceOption {
	return func(s *notificationService) { s.now = now }
}

// NewNotificationService creates the dispatcher that emails clients about status changes.
func NewNotificationService(
	clients portsrepo.ClientRepositoryFacade,
	sender gateways.EmailSender,
	dashboardURL string,
	deposit decimal.Decimal,
	currency string,
	options ...NotificationServiceOption,
) portssvc.NotificationSvc {
	s := &notificationService{
		BaseService:  newBaseService(),
		clients:      clients,
		sender:       sender,
		dashboardURL: dashboardURL,
		deposit:      deposit,
		currency:     currency,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

var _ portssvc.NotificationSvc = (*notificationService)(nil)

func (s *notificationService) NotifyFilingStatus(ctx context.Context, clientID string, year int, statusID string) (bool, error) {
	if !notifications.ShouldSendNotification(statusID) {
		return false, nil
	}

	logger := s.GetLogger(ctx).With(
		slog.String("client_id", clientID),
		slog.Int("tax_year", year),
		slog.String("status_id", statusID),
	)

	client, _, err := s.clients.GetClient(ctx, clientID)
	if err != nil {
		return false, fmt.Errorf("failed to load client for notification: %w", err)
	}
	filing := client.FilingByYear(year)
	if filing == nil {
		return false, fmt.Errorf("%w: no %d filing for client %s", apperrors.ErrNotFound, year, clientID)
	}
	if filing.WasNotified(statusID) {
		logger.Debug("Notification already sent, skipping")
		return false, nil
	}
	if client.Email == "" {
		logger.Warn("Client has no email address, notification skipped")
		return false, nil
	}

	name := client.Name
	if name == "" {
		name = client.Email
	}
	replacements := map[string]string{
		notifications.PlaceholderClientName:   name,
		notifications.PlaceholderTaxYear:      strconv.Itoa(year),
		notifications.PlaceholderDashboardURL: s.dashboardURL,
	}
	if amount, ok := filing.FinalAmount(s.deposit); ok {
		replacements[notifications.PlaceholderAmount] = utils.FormatMoney(amount, s.currency)
	}

	rendered, err := notifications.Render(statusID, notifications.ParseLanguage(client.Language), replacements)
	if err != nil {
		logger.Error("Failed to render notification", slog.String("error", err.Error()))
		return false, err
	}

	if err := s.sender.Send(ctx, gateways.Email{To: client.Email, Subject: rendered.Subject, Body: rendered.Body}); err != nil {
		logger.Error("Failed to send notification", slog.String("error", err.Error()))
		return false, fmt.Errorf("failed to send %s notification: %w", statusID, err)
	}

	_, err = s.clients.UpdateClient(ctx, clientID, func(c *domain.Client) error {
		f := c.FilingByYear(year)
		if f == nil {
			return apperrors.ErrNotFound
		}
		f.MarkNotified(statusID)
		return nil
	})
	if err != nil {
		logger.Error("Notification sent but not recorded", slog.String("error", err.Error()))
		return true, fmt.Errorf("failed to record %s notification: %w", statusID, err)
	}

	logger.Info("Notification sent")
	return true, nil
}

// notifyQuietly dispatches a notification after a committed transition. Failures are
// logged only; the transition itself already succeeded.
func notifyQuietly(ctx context.Context, base *BaseService, notifier portssvc.NotificationSvc, clientID string, year int, step domain.WorkflowStep) {
	statusID, ok := domain.NotificationForStep(step)
	if !ok {
		return
	}
	notifyStatusQuietly(ctx, base, notifier, clientID, year, statusID)
}

func notifyStatusQuietly(ctx context.Context, base *BaseService, notifier portssvc.NotificationSvc, clientID string, year int, statusID string) {
	if notifier == nil {
		return
	}
	if _, err := notifier.NotifyFilingStatus(ctx, clientID, year, statusID); err != nil {
		base.LogError(ctx, err, "Filing notification failed",
			slog.String("client_id", clientID),
			slog.Int("tax_year", year),
			slog.String("status_id", statusID))
	}
}
