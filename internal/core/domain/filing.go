package domain

import (
	"time"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

// FilingStatus is the coarse, client-visible status of a filing.
type FilingStatus string

const (
	StatusNotStarted  FilingStatus = "not-started"
	StatusInProgress  FilingStatus = "in-progress"
	StatusUnderReview FilingStatus = "under-review"
	StatusCompleted   FilingStatus = "completed"
	StatusFiled       FilingStatus = "filed"
)

// WorkflowStep is the position of a filing in the payment-gated workflow.
type WorkflowStep int

const (
	StepInitialPaymentPending WorkflowStep = iota + 1
	StepDocumentsUpload
	StepCalculation
	StepFinalPaymentPending
	StepFiled
)

var stepNames = map[WorkflowStep]string{
	StepInitialPaymentPending: "initial-payment-pending",
	StepDocumentsUpload:       "documents-pending",
	StepCalculation:           "calculation",
	StepFinalPaymentPending:   "final-payment-pending",
	StepFiled:                 "filed",
}

func (s WorkflowStep) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether s is one of the five workflow steps.
func (s WorkflowStep) Valid() bool {
	return s >= StepInitialPaymentPending && s <= StepFiled
}

// PaymentStatus is the state of a payment or payment component.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

// PaymentComponent tracks one of the two money-moving steps (deposit or final balance).
type PaymentComponent struct {
	Status           PaymentStatus   `json:"status"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	SessionID        string          `json:"sessionId,omitempty"`
	PaymentReference string          `json:"paymentReference,omitempty"`
	CreatedAt        Timestamp       `json:"createdAt"`
	PaidAt           *Timestamp      `json:"paidAt,omitempty"`
}

// IsPaid reports whether the component has been settled.
func (c *PaymentComponent) IsPaid() bool {
	return c != nil && c.Status == PaymentPaid
}

// FilingPayment is the payment state attached to a filing. Status, Amount and Currency
// summarise what has been collected so far; Initial and Final track the two components.
type FilingPayment struct {
	Status          PaymentStatus     `json:"status"`
	Amount          decimal.Decimal   `json:"amount"`
	Currency        string            `json:"currency"`
	PricingPresetID string            `json:"pricingPresetId,omitempty"`
	CreatedAt       *Timestamp        `json:"createdAt,omitempty"`
	TotalPrice      *decimal.Decimal  `json:"totalPrice,omitempty"`
	FinalPrice      *decimal.Decimal  `json:"finalPrice,omitempty"`
	Initial         *PaymentComponent `json:"initial,omitempty"`
	Final           *PaymentComponent `json:"final,omitempty"`
}

// Transfer is one entry of a filing's case transfer audit trail.
type Transfer struct {
	From   string    `json:"from"`
	To     string    `json:"to"`
	Reason string    `json:"reason"`
	Date   Timestamp `json:"date"`
}

// DocumentRef points to an uploaded document held by the object store.
type DocumentRef struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	ContentType string    `json:"contentType,omitempty"`
	UploadedAt  Timestamp `json:"uploadedAt"`
}

// UnmarshalJSON also accepts a bare file name, which older records stored in place of the object.
func (d *DocumentRef) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*d = DocumentRef{ID: name, Name: name}
		return nil
	}
	type plain DocumentRef
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*d = DocumentRef(p)
	return nil
}

// TaxFiling is one client's tax-return workflow instance for one tax year.
type TaxFiling struct {
	Year             int            `json:"year"`
	Status           FilingStatus   `json:"status"`
	Step             WorkflowStep   `json:"workflowStep,omitempty"`
	Payment          *FilingPayment `json:"payment,omitempty"`
	AssignedTo       string         `json:"assignedTo,omitempty"`
	AssignedAt       *Timestamp     `json:"assignedAt,omitempty"`
	TransferHistory  []Transfer     `json:"transferHistory,omitempty"`
	Documents        []DocumentRef  `json:"documents,omitempty"`
	NotifiedStatuses []string       `json:"notifiedStatuses,omitempty"`
	CompletedAt      *Timestamp     `json:"completedAt,omitempty"`
	CreatedAt        Timestamp      `json:"createdAt"`
	UpdatedAt        Timestamp      `json:"updatedAt"`
}

// NewTaxFiling creates a filing for year at the first workflow step.
func NewTaxFiling(year int, status FilingStatus, now time.Time) TaxFiling {
	return TaxFiling{
		Year:      year,
		Status:    status,
		Step:      StepInitialPaymentPending,
		CreatedAt: At(now),
		UpdatedAt: At(now),
	}
}

// DefaultFilings is the initial filing set of a client with no filings:
// the current year in progress and the next year not started.
func DefaultFilings(now time.Time) []TaxFiling {
	year := now.Year()
	return []TaxFiling{
		NewTaxFiling(year, StatusInProgress, now),
		NewTaxFiling(year+1, StatusNotStarted, now),
	}
}

// Client is the stored aggregate at client:<id>.
type Client struct {
	ClientID   string      `json:"id"`
	UserID     string      `json:"userId"`
	Email      string      `json:"email"`
	Name       string      `json:"name"`
	Language   string      `json:"language,omitempty"`
	TaxFilings []TaxFiling `json:"taxFilings"`
	Timestamps
}

// FilingByYear returns a pointer into c.TaxFilings, or nil when no filing has that year.
func (c *Client) FilingByYear(year int) *TaxFiling {
	for i := range c.TaxFilings {
		if c.TaxFilings[i].Year == year {
			return &c.TaxFilings[i]
		}
	}
	return nil
}
