// Package gateways declares the external collaborators the core talks to.
package gateways

import (
	"context"

	"github.com/SscSPs/tax_filing_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SessionRequest identifies the filer and filing a checkout session is opened for.
type SessionRequest struct {
	UserID    string
	Email     string
	TaxYear   int
	ReturnURL string
}

// PaymentGateway creates hosted checkout sessions, verifies them and issues refunds.
// Amounts cross this interface in major units; implementations convert to the provider's
// smallest unit. They return apperrors.ErrGatewayNotConfigured when credentials are missing
// and apperrors.ErrPaymentFailed for business declines.
type PaymentGateway interface {
	// CreateInitialSession opens a session for the flat deposit.
	CreateInitialSession(ctx context.Context, req SessionRequest) (*domain.CheckoutSession, error)

	// CreateFinalSession opens a session for the remaining balance.
	CreateFinalSession(ctx context.Context, req SessionRequest, finalAmount decimal.Decimal) (*domain.CheckoutSession, error)

	VerifySession(ctx context.Context, sessionID string) (*domain.VerifiedSession, error)

	// Refund returns the whole payment when amount is nil.
	Refund(ctx context.Context, paymentReference string, amount *decimal.Decimal) (*domain.RefundResult, error)
}

// Email is a plain-text message to one recipient.
type Email struct {
	To      string
	Subject string
	Body    string
}

// EmailSender delivers transactional email.
type EmailSender interface {
	Send(ctx context.Context, email Email) error
}
