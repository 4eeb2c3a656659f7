package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/tax_filing_app/internal/apperrors"
	"github.com/SscSPs/tax_filing_app/internal/core/domain"
	portsrepo "github.com/SscSPs/tax_filing_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/tax_filing_app/internal/core/ports/services"
	"github.com/SscSPs/tax_filing_app/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type filingService struct {
	BaseService
	clients  portsrepo.ClientRepositoryFacade
	notifier portssvc.NotificationSvc
	deposit  decimal.Decimal
	currency string
}

// FilingServiceOption is a functional option for configuring the filing service
type FilingServiceOption func(*filingService)

// WithFilingNotifier sets the dispatcher called after each transition.
func WithFilingNotifier(notifier portssvc.NotificationSvc) FilingServiceOption {
	return func(s *filingService) { s.notifier = notifier }
}

// WithFilingClock replaces the service clock.
func WithFilingClock(now func() time.Time) FilingServiceOption {
	return func(s *filingService) { s.now = now }
}

// NewFilingService creates the service that drives staff and document transitions.
func NewFilingService(clients portsrepo.ClientRepositoryFacade, deposit decimal.Decimal, currency string, options ...FilingServiceOption) portssvc.FilingSvcFacade {
	s := &filingService{
		BaseService: newBaseService(),
		clients:     clients,
		deposit:     deposit,
		currency:    currency,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

var _ portssvc.FilingSvcFacade = (*filingService)(nil)

func (s *filingService) GetFilings(ctx context.Context, caller domain.Principal, clientID string) (*domain.Client, *domain.RepairNotice, error) {
	if !caller.CanAccessClient(clientID) {
		return nil, nil, apperrors.ErrForbidden
	}

	client, notice, err := s.clients.GetClient(ctx, clientID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load filings: %w", err)
	}
	if notice != nil {
		attrs := []any{
			slog.String("client_id", clientID),
			slog.Int("repaired", notice.RepairedCount),
			slog.Int("dropped", notice.DroppedCount),
			slog.Bool("seeded", notice.Seeded),
		}
		if notice.Persisted {
			s.LogInfo(ctx, "Stored filings corrected", attrs...)
		} else {
			s.LogWarn(ctx, "Stored filings corrected in memory only, write-back failed", attrs...)
		}
	}
	return client, notice, nil
}

func (s *filingService) RecordDocument(ctx context.Context, caller domain.Principal, clientID string, year int, req dto.RecordDocumentRequest) (*domain.TaxFiling, error) {
	if !caller.CanAccessClient(clientID) {
		return nil, apperrors.ErrForbidden
	}

	doc := domain.DocumentRef{
		ID:          uuid.NewString(),
		Name:        req.Name,
		URL:         req.URL,
		ContentType: req.ContentType,
	}
	client, err := s.clients.UpdateClient(ctx, clientID, func(c *domain.Client) error {
		f, err := filingForYear(c, year)
		if err != nil {
			return err
		}
		return f.AddDocument(doc, s.Now())
	})
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Document recorded", slog.String("client_id", clientID), slog.Int("tax_year", year), slog.String("document_id", doc.ID))
	return client.FilingByYear(year), nil
}

func (s *filingService) Advance(ctx context.Context, caller domain.Principal, clientID string, year int, req dto.AdvanceFilingRequest) (*domain.TaxFiling, error) {
	if !caller.IsStaff() {
		return nil, apperrors.ErrForbidden
	}
	switch req.Step {
	case domain.StepCalculation, domain.StepFinalPaymentPending:
	default:
		return nil, fmt.Errorf("%w: step %s is reached through payment verification", apperrors.ErrInvalidTransition, req.Step)
	}

	client, err := s.clients.UpdateClient(ctx, clientID, func(c *domain.Client) error {
		f, err := filingForYear(c, year)
		if err != nil {
			return err
		}
		now := s.Now()
		if req.Step == domain.StepFinalPaymentPending && req.TotalPrice != nil {
			if err := f.SetTotalPrice(*req.TotalPrice, s.deposit, s.currency, now); err != nil {
				return err
			}
		}
		return f.AdvanceTo(req.Step, now)
	})
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Filing advanced",
		slog.String("client_id", clientID),
		slog.Int("tax_year", year),
		slog.String("step", req.Step.String()),
		slog.String("actor_id", caller.UserID))
	notifyQuietly(ctx, &s.BaseService, s.notifier, clientID, year, req.Step)
	return refreshFiling(ctx, s.clients, client, clientID, year), nil
}

func (s *filingService) Complete(ctx context.Context, caller domain.Principal, clientID string, year int) (*domain.TaxFiling, error) {
	if !caller.IsStaff() {
		return nil, apperrors.ErrForbidden
	}

	client, err := s.clients.UpdateClient(ctx, clientID, func(c *domain.Client) error {
		f, err := filingForYear(c, year)
		if err != nil {
			return err
		}
		return f.Complete(s.Now())
	})
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Filing completed", slog.String("client_id", clientID), slog.Int("tax_year", year), slog.String("actor_id", caller.UserID))
	notifyStatusQuietly(ctx, &s.BaseService, s.notifier, clientID, year, domain.NotifyCompleted)
	return refreshFiling(ctx, s.clients, client, clientID, year), nil
}

func filingForYear(c *domain.Client, year int) (*domain.TaxFiling, error) {
	f := c.FilingByYear(year)
	if f == nil {
		return nil, fmt.Errorf("%w: no %d filing for client %s", apperrors.ErrNotFound, year, c.ClientID)
	}
	return f, nil
}

// refreshFiling re-reads the filing so the caller sees notification bookkeeping,
// falling back to the already updated client.
func refreshFiling(ctx context.Context, clients portsrepo.ClientReader, updated *domain.Client, clientID string, year int) *domain.TaxFiling {
	if latest, _, err := clients.GetClient(ctx, clientID); err == nil {
		if f := latest.FilingByYear(year); f != nil {
			return f
		}
	}
	return updated.FilingByYear(year)
}
