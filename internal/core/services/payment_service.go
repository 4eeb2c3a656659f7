package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/tax_filing_app/internal/apperrors"
	"github.com/SscSPs/tax_filing_app/internal/core/domain"
	"github.com/SscSPs/tax_filing_app/internal/core/ports/gateways"
	portsrepo "github.com/SscSPs/tax_filing_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/tax_filing_app/internal/core/ports/services"
	"github.com/SscSPs/tax_filing_app/internal/dto"
	"github.com/shopspring/decimal"
)

// errAlreadyApplied aborts the client write when a session's payment is already recorded.
var errAlreadyApplied = errors.New("payment already applied")

type paymentService struct {
	BaseService
	gateway  gateways.PaymentGateway
	clients  portsrepo.ClientRepositoryFacade
	users    portsrepo.UserReader
	notifier portssvc.NotificationSvc
	deposit  decimal.Decimal
	currency string
}

// PaymentServiceOption is a functional option for configuring the payment service
type PaymentServiceOption func(*paymentService)

// WithPaymentNotifier sets the dispatcher called when a payment advances a filing.
func WithPaymentNotifier(notifier portssvc.NotificationSvc) PaymentServiceOption {
	return func(s *paymentService) { s.notifier = notifier }
}

// WithPaymentClock replaces the service clock.
func WithPaymentClock(now func() time.Time) PaymentServiceOption {
	return func(s *paymentService) { s.now = now }
}

// NewPaymentService creates the service tying checkout sessions to filings.
func NewPaymentService(
	gateway gateways.PaymentGateway,
	clients portsrepo.ClientRepositoryFacade,
	users portsrepo.UserReader,
	deposit decimal.Decimal,
	currency string,
	options ...PaymentServiceOption,
) portssvc.PaymentSvcFacade {
	s := &paymentService{
		BaseService: newBaseService(),
		gateway:     gateway,
		clients:     clients,
		users:       users,
		deposit:     deposit,
		currency:    currency,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

var _ portssvc.PaymentSvcFacade = (*paymentService)(nil)

func (s *paymentService) CreateInitialSession(ctx context.Context, caller domain.Principal, req dto.CreateInitialSessionRequest) (*domain.CheckoutSession, error) {
	user, filing, err := s.payerFiling(ctx, caller, req.TaxYear)
	if err != nil {
		return nil, err
	}
	if filing.InitialPaid() {
		return nil, fmt.Errorf("%w: initial deposit for %d already paid", apperrors.ErrDuplicate, req.TaxYear)
	}

	session, err := s.gateway.CreateInitialSession(ctx, gateways.SessionRequest{
		UserID:    user.UserID,
		Email:     user.Email,
		TaxYear:   req.TaxYear,
		ReturnURL: req.ReturnURL,
	})
	if err != nil {
		s.logGatewayError(ctx, err, "create initial session", slog.Int("tax_year", req.TaxYear))
		return nil, err
	}

	if err := s.recordSession(ctx, user.ClientID, req.TaxYear, domain.PaymentTypeInitial, session.SessionID, s.deposit); err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Initial checkout session created", slog.String("session_id", session.SessionID), slog.Int("tax_year", req.TaxYear))
	return session, nil
}

func (s *paymentService) CreateFinalSession(ctx context.Context, caller domain.Principal, req dto.CreateFinalSessionRequest) (*domain.CheckoutSession, error) {
	user, filing, err := s.payerFiling(ctx, caller, req.TaxYear)
	if err != nil {
		return nil, err
	}
	if filing.FinalPaid() {
		return nil, fmt.Errorf("%w: final payment for %d already paid", apperrors.ErrDuplicate, req.TaxYear)
	}
	if step := filing.CurrentStep(); step != domain.StepFinalPaymentPending {
		return nil, fmt.Errorf("%w: final payment is not due at step %s", apperrors.ErrInvalidTransition, step)
	}
	if !req.FinalAmount.IsPositive() {
		return nil, fmt.Errorf("%w: final amount must be positive", apperrors.ErrValidation)
	}
	if err := filing.CheckFinalAmount(req.FinalAmount, s.deposit); err != nil {
		return nil, err
	}

	session, err := s.gateway.CreateFinalSession(ctx, gateways.SessionRequest{
		UserID:    user.UserID,
		Email:     user.Email,
		TaxYear:   req.TaxYear,
		ReturnURL: req.ReturnURL,
	}, req.FinalAmount)
	if err != nil {
		s.logGatewayError(ctx, err, "create final session", slog.Int("tax_year", req.TaxYear))
		return nil, err
	}

	if err := s.recordSession(ctx, user.ClientID, req.TaxYear, domain.PaymentTypeFinal, session.SessionID, req.FinalAmount); err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Final checkout session created", slog.String("session_id", session.SessionID), slog.Int("tax_year", req.TaxYear))
	return session, nil
}

func (s *paymentService) VerifySession(ctx context.Context, caller domain.Principal, sessionID string) (*domain.PaymentVerification, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session id is required", apperrors.ErrValidation)
	}

	verified, err := s.gateway.VerifySession(ctx, sessionID)
	if err != nil {
		s.logGatewayError(ctx, err, "verify session", slog.String("session_id", sessionID))
		return nil, err
	}
	if !caller.IsStaff() && verified.UserID != caller.UserID {
		return nil, apperrors.ErrForbidden
	}

	result := &domain.PaymentVerification{Session: *verified}
	if !verified.Paid {
		s.LogInfo(ctx, "Checkout session not paid yet", slog.String("session_id", sessionID))
		return result, nil
	}
	if !verified.PaymentType.Valid() {
		return nil, fmt.Errorf("%w: session %s carries unknown payment type %q", apperrors.ErrValidation, sessionID, verified.PaymentType)
	}

	user, err := s.users.FindUserByID(ctx, verified.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve payer of session %s: %w", sessionID, err)
	}
	if user.ClientID == "" {
		return nil, fmt.Errorf("%w: payer %s has no client record", apperrors.ErrValidation, user.UserID)
	}

	reference := verified.PaymentReference
	if reference == "" {
		reference = verified.SessionID
	}
	if verified.PaymentType == domain.PaymentTypeInitial && !verified.Amount.Equal(s.deposit) {
		s.LogWarn(ctx, "Deposit amount differs from configured deposit",
			slog.String("session_id", sessionID),
			slog.String("paid", verified.Amount.String()),
			slog.String("expected", s.deposit.String()))
	}

	var entered domain.WorkflowStep
	client, err := s.clients.UpdateClient(ctx, user.ClientID, func(c *domain.Client) error {
		f, err := filingForYear(c, verified.TaxYear)
		if err != nil {
			return err
		}
		if f.PaymentComponent(verified.PaymentType).IsPaid() {
			return errAlreadyApplied
		}
		if verified.PaymentType == domain.PaymentTypeFinal {
			if err := f.CheckFinalAmount(verified.Amount, s.deposit); err != nil {
				return err
			}
		}
		before := f.CurrentStep()
		applied, err := f.ApplyVerifiedPayment(verified.PaymentType, reference, verified.Amount, verified.Currency, s.Now())
		if err != nil {
			return err
		}
		if !applied {
			return errAlreadyApplied
		}
		entered = 0
		if after := f.CurrentStep(); after != before {
			entered = after
		}
		return nil
	})
	if errors.Is(err, errAlreadyApplied) {
		s.LogInfo(ctx, "Payment already recorded, nothing to do", slog.String("session_id", sessionID))
		current, _, err := s.clients.GetClient(ctx, user.ClientID)
		if err != nil {
			return nil, err
		}
		if f := current.FilingByYear(verified.TaxYear); f != nil {
			result.Filing = *f
		}
		return result, nil
	}
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) && verified.PaymentType == domain.PaymentTypeFinal {
			s.LogError(ctx, err, "Paid final session does not match the balance due",
				slog.String("session_id", sessionID),
				slog.String("client_id", user.ClientID),
				slog.String("alert", "final_payment_mismatch"))
		}
		return nil, err
	}

	result.Applied = true
	s.LogInfo(ctx, "Payment applied",
		slog.String("session_id", sessionID),
		slog.String("client_id", user.ClientID),
		slog.Int("tax_year", verified.TaxYear),
		slog.String("payment_type", string(verified.PaymentType)))

	if entered != 0 {
		notifyQuietly(ctx, &s.BaseService, s.notifier, user.ClientID, verified.TaxYear, entered)
	}
	if f := refreshFiling(ctx, s.clients, client, user.ClientID, verified.TaxYear); f != nil {
		result.Filing = *f
	}
	return result, nil
}

func (s *paymentService) Refund(ctx context.Context, caller domain.Principal, req dto.RefundRequest) (*domain.RefundResult, error) {
	if !caller.IsStaff() {
		return nil, apperrors.ErrForbidden
	}
	if req.Amount != nil && !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: refund amount must be positive", apperrors.ErrValidation)
	}

	result, err := s.gateway.Refund(ctx, req.PaymentReference, req.Amount)
	if err != nil {
		s.logGatewayError(ctx, err, "refund", slog.String("payment_reference", req.PaymentReference))
		return nil, err
	}
	s.LogInfo(ctx, "Refund issued",
		slog.String("payment_reference", req.PaymentReference),
		slog.String("refund_id", result.RefundID),
		slog.String("actor_id", caller.UserID))
	return result, nil
}

// payerFiling resolves the client account behind the caller and its filing for year.
func (s *paymentService) payerFiling(ctx context.Context, caller domain.Principal, year int) (*domain.User, *domain.TaxFiling, error) {
	user, err := s.users.FindUserByID(ctx, caller.UserID)
	if err != nil {
		return nil, nil, err
	}
	if user.ClientID == "" {
		return nil, nil, fmt.Errorf("%w: only client accounts can pay for a filing", apperrors.ErrForbidden)
	}
	client, _, err := s.clients.GetClient(ctx, user.ClientID)
	if err != nil {
		return nil, nil, err
	}
	filing, err := filingForYear(client, year)
	if err != nil {
		return nil, nil, err
	}
	return user, filing, nil
}

func (s *paymentService) recordSession(ctx context.Context, clientID string, year int, kind domain.PaymentType, sessionID string, amount decimal.Decimal) error {
	_, err := s.clients.UpdateClient(ctx, clientID, func(c *domain.Client) error {
		f, err := filingForYear(c, year)
		if err != nil {
			return err
		}
		return f.StartPayment(kind, sessionID, amount, s.currency, s.Now())
	})
	if err != nil {
		s.LogError(ctx, err, "Checkout session created but not recorded on the filing", slog.String("session_id", sessionID))
		return err
	}
	return nil
}

func (s *paymentService) logGatewayError(ctx context.Context, err error, op string, attrs ...any) {
	attrs = append(attrs, slog.String("operation", op))
	switch {
	case errors.Is(err, apperrors.ErrGatewayNotConfigured):
		attrs = append(attrs, slog.String("alert", "payment_gateway_not_configured"))
		s.LogError(ctx, err, "Payment gateway is not configured", attrs...)
	case errors.Is(err, apperrors.ErrPaymentFailed):
		s.LogWarn(ctx, "Payment gateway declined the operation", append(attrs, slog.String("error", err.Error()))...)
	default:
		s.LogError(ctx, err, "Payment gateway call failed", attrs...)
	}
}
