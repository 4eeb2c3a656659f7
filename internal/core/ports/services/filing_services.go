package services

import (
	"context"

	"github.com/SscSPs/tax_filing_app/internal/core/domain"
	"github.com/SscSPs/tax_filing_app/internal/dto"
)

// FilingReaderSvc defines read operations on a client's filings.
type FilingReaderSvc interface {
	// GetFilings returns the client with repaired filings and a notice when stored data was corrected.
	GetFilings(ctx context.Context, caller domain.Principal, clientID string) (*domain.Client, *domain.RepairNotice, error)
}

// FilingWorkflowSvc drives the filing state machine outside of payment verification.
type FilingWorkflowSvc interface {
	// RecordDocument attaches a document. Rejected with apperrors.ErrPaymentRequired before the deposit.
	RecordDocument(ctx context.Context, caller domain.Principal, clientID string, year int, req dto.RecordDocumentRequest) (*domain.TaxFiling, error)

	// Advance moves the filing to a staff-driven step (calculation or final-payment-pending).
	Advance(ctx context.Context, caller domain.Principal, clientID string, year int, req dto.AdvanceFilingRequest) (*domain.TaxFiling, error)

	// Complete closes a filed filing once the tax authority confirmed it.
	Complete(ctx context.Context, caller domain.Principal, clientID string, year int) (*domain.TaxFiling, error)
}

// FilingSvcFacade combines all filing-related service interfaces
type FilingSvcFacade interface {
	FilingReaderSvc
	FilingWorkflowSvc
}

// NotificationSvc emails clients about filing status changes.
type NotificationSvc interface {
	// NotifyFilingStatus sends the email for statusID at most once per filing and records it.
	// It reports whether an email was sent.
	NotifyFilingStatus(ctx context.Context, clientID string, year int, statusID string) (bool, error)
}
