package domain

import "github.com/shopspring/decimal"

// CheckoutSession is a hosted payment page created by the gateway.
type CheckoutSession struct {
	SessionID   string `json:"sessionId"`
	RedirectURL string `json:"url"`
}

// VerifiedSession is the gateway's view of a checkout session, amounts in major units.
type VerifiedSession struct {
	SessionID        string          `json:"sessionId"`
	Paid             bool            `json:"paid"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	PaymentType      PaymentType     `json:"paymentType"`
	TaxYear          int             `json:"taxYear"`
	UserID           string          `json:"userId"`
	PaymentReference string          `json:"paymentReference,omitempty"`
}

// RefundResult is the gateway's answer to a refund request.
type RefundResult struct {
	RefundID string `json:"refundId"`
	Status   string `json:"status"`
}

// PaymentVerification is the outcome of applying a verified session to a filing.
type PaymentVerification struct {
	Session VerifiedSession `json:"session"`
	// Applied is false when the session was unpaid or its payment had already been recorded.
	Applied bool      `json:"applied"`
	Filing  TaxFiling `json:"filing"`
}
