package services

import (
	"context"

	"github.com/SscSPs/tax_filing_app/internal/core/domain"
	"github.com/SscSPs/tax_filing_app/internal/dto"
)

// CaseSvcFacade manages staff ownership of filings and reports on throughput.
type CaseSvcFacade interface {
	// Assign returns a nil filing, without error, when the client has no filing for the year.
	Assign(ctx context.Context, req dto.AssignCaseRequest) (*domain.TaxFiling, error)

	// Transfer records fromUserId for audit only; it is not checked against the current assignee.
	Transfer(ctx context.Context, req dto.TransferCaseRequest) (*domain.TaxFiling, error)

	Productivity(ctx context.Context, period domain.ProductivityPeriod) ([]domain.UserProductivity, error)
}
