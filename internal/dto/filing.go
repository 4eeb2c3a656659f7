package dto

import (
	"github.com/SscSPs/tax_filing_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// FilingsResponse lists a client's filings and, when stored data had to be corrected, a notice.
type FilingsResponse struct {
	ClientID string               `json:"clientId"`
	Filings  []domain.TaxFiling   `json:"filings"`
	Notice   *domain.RepairNotice `json:"notice,omitempty"`
}

// RecordDocumentRequest attaches an uploaded document to a filing.
type RecordDocumentRequest struct {
	Name        string `json:"name" binding:"required"`
	URL         string `json:"url" binding:"required,url"`
	ContentType string `json:"contentType"`
}

// AdvanceFilingRequest moves a filing to a staff-driven step.
type AdvanceFilingRequest struct {
	Step       domain.WorkflowStep `json:"step" binding:"required,min=1,max=5"`
	TotalPrice *decimal.Decimal    `json:"totalPrice"`
}
