package services

import (
	"context"

	"github.com/SscSPs/tax_filing_app/internal/core/domain"
	"github.com/SscSPs/tax_filing_app/internal/dto"
)

// PaymentSvcFacade coordinates the payment gateway with the filing workflow.
type PaymentSvcFacade interface {
	CreateInitialSession(ctx context.Context, caller domain.Principal, req dto.CreateInitialSessionRequest) (*domain.CheckoutSession, error)
	CreateFinalSession(ctx context.Context, caller domain.Principal, req dto.CreateFinalSessionRequest) (*domain.CheckoutSession, error)

	// VerifySession applies a paid session to its filing. Verifying the same session again is a no-op.
	VerifySession(ctx context.Context, caller domain.Principal, sessionID string) (*domain.PaymentVerification, error)

	// Refund is restricted to staff.
	Refund(ctx context.Context, caller domain.Principal, req dto.RefundRequest) (*domain.RefundResult, error)
}
