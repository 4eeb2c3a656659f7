package dto

import (
	"github.com/SscSPs/tax_filing_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateInitialSessionRequest opens the deposit checkout for a tax year.
type CreateInitialSessionRequest struct {
	TaxYear   int    `json:"taxYear" binding:"required,min=2000,max=2100"`
	ReturnURL string `json:"returnUrl" binding:"required,url"`
}

// CreateFinalSessionRequest opens the final balance checkout.
type CreateFinalSessionRequest struct {
	TaxYear     int             `json:"taxYear" binding:"required,min=2000,max=2100"`
	FinalAmount decimal.Decimal `json:"finalAmount"`
	ReturnURL   string          `json:"returnUrl" binding:"required,url"`
}

// SessionResponse is the hosted checkout page to redirect the client to.
type SessionResponse struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// VerifySessionRequest asks the server to check a returned checkout session.
type VerifySessionRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
}

// VerifySessionResponse reports the gateway outcome and the resulting filing.
type VerifySessionResponse struct {
	Paid        bool               `json:"paid"`
	Applied     bool               `json:"applied"`
	PaymentType domain.PaymentType `json:"paymentType"`
	TaxYear     int                `json:"taxYear"`
	Filing      *domain.TaxFiling  `json:"filing,omitempty"`
}

// RefundRequest refunds a payment, fully when Amount is omitted.
type RefundRequest struct {
	PaymentReference string           `json:"paymentReference" binding:"required"`
	Amount           *decimal.Decimal `json:"amount"`
}

func ToVerifySessionResponse(v *domain.PaymentVerification) VerifySessionResponse {
	resp := VerifySessionResponse{
		Paid:        v.Session.Paid,
		Applied:     v.Applied,
		PaymentType: v.Session.PaymentType,
		TaxYear:     v.Session.TaxYear,
	}
	if v.Filing.Year != 0 {
		filing := v.Filing
		resp.Filing = &filing
	}
	return resp
}
