package domain

import (
	"fmt"
	"slices"
	"time"

	"github.com/SscSPs/tax_filing_app/internal/apperrors"
	"github.com/shopspring/decimal"
)

// PaymentType distinguishes the deposit from the final balance.
type PaymentType string

const (
	PaymentTypeInitial PaymentType = "initial"
	PaymentTypeFinal   PaymentType = "final"
)

// Valid reports whether t is a known payment type.
func (t PaymentType) Valid() bool {
	return t == PaymentTypeInitial || t == PaymentTypeFinal
}

// Notification status ids fired by filing transitions.
const (
	NotifyInProcessing      = "in-processing"
	NotifyDocumentsReceived = "documents-received"
	NotifyReportReady       = "report-ready"
	NotifyFilingSubmitted   = "filing-submitted"
	NotifyCompleted         = "completed"
)

// stepStatus is the coarse status a filing takes when it enters a step.
var stepStatus = map[WorkflowStep]FilingStatus{
	StepInitialPaymentPending: StatusNotStarted,
	StepDocumentsUpload:       StatusInProgress,
	StepCalculation:           StatusUnderReview,
	StepFinalPaymentPending:   StatusUnderReview,
	StepFiled:                 StatusFiled,
}

// stepNotification is the notification status fired when a filing enters a step.
var stepNotification = map[WorkflowStep]string{
	StepDocumentsUpload:     NotifyInProcessing,
	StepCalculation:         NotifyDocumentsReceived,
	StepFinalPaymentPending: NotifyReportReady,
	StepFiled:               NotifyFilingSubmitted,
}

// NotificationForStep returns the notification status for entering step, if any.
func NotificationForStep(step WorkflowStep) (string, bool) {
	n, ok := stepNotification[step]
	return n, ok
}

// CurrentStep returns the workflow step. Records written before the payment-gated
// workflow carry no step and are treated as waiting for the deposit.
func (f *TaxFiling) CurrentStep() WorkflowStep {
	if !f.Step.Valid() {
		return StepInitialPaymentPending
	}
	return f.Step
}

// InitialPaid reports whether the deposit has been collected.
func (f *TaxFiling) InitialPaid() bool {
	return f.Payment != nil && f.Payment.Initial.IsPaid()
}

// FinalPaid reports whether the final balance has been collected.
func (f *TaxFiling) FinalPaid() bool {
	return f.Payment != nil && f.Payment.Final.IsPaid()
}

// IsCompleted reports whether the filing reached the terminal completed state.
func (f *TaxFiling) IsCompleted() bool {
	return f.Status == StatusCompleted
}

// CanAdvanceTo checks the guard of the transition from the current step to target.
func (f *TaxFiling) CanAdvanceTo(target WorkflowStep) error {
	current := f.CurrentStep()
	if f.IsCompleted() || !target.Valid() || target != current+1 {
		return fmt.Errorf("%w: %s -> %s", apperrors.ErrInvalidTransition, current, target)
	}

	switch target {
	case StepDocumentsUpload:
		if !f.InitialPaid() {
			return fmt.Errorf("%w: initial deposit not paid", apperrors.ErrPaymentRequired)
		}
	case StepCalculation:
		if len(f.Documents) == 0 {
			return apperrors.ErrDocumentsRequired
		}
	case StepFinalPaymentPending:
		if f.Payment == nil || f.Payment.TotalPrice == nil {
			return fmt.Errorf("%w: total price must be set before the final payment is due", apperrors.ErrValidation)
		}
	case StepFiled:
		if !f.FinalPaid() {
			return fmt.Errorf("%w: final payment not paid", apperrors.ErrPaymentRequired)
		}
	}
	return nil
}

// AdvanceTo moves the filing to target after checking the transition guard.
func (f *TaxFiling) AdvanceTo(target WorkflowStep, now time.Time) error {
	if err := f.CanAdvanceTo(target); err != nil {
		return err
	}
	f.Step = target
	f.Status = stepStatus[target]
	f.UpdatedAt = At(now)
	return nil
}

// Complete moves a filed filing to the terminal completed state.
func (f *TaxFiling) Complete(now time.Time) error {
	if f.IsCompleted() || f.CurrentStep() != StepFiled {
		return fmt.Errorf("%w: %s -> completed", apperrors.ErrInvalidTransition, f.CurrentStep())
	}
	f.Status = StatusCompleted
	f.CompletedAt = AtPtr(now)
	f.UpdatedAt = At(now)
	return nil
}

// AddDocument attaches an uploaded document. Uploads are only accepted once the deposit is paid.
func (f *TaxFiling) AddDocument(doc DocumentRef, now time.Time) error {
	if !f.InitialPaid() {
		return fmt.Errorf("%w: documents can only be uploaded after the initial deposit", apperrors.ErrPaymentRequired)
	}
	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = At(now)
	}
	f.Documents = append(f.Documents, doc)
	f.UpdatedAt = At(now)
	return nil
}

// SetTotalPrice records the full price of the filing once the calculation is done.
func (f *TaxFiling) SetTotalPrice(total decimal.Decimal, deposit decimal.Decimal, currency string, now time.Time) error {
	if total.LessThanOrEqual(deposit) {
		return fmt.Errorf("%w: total price must exceed the deposit", apperrors.ErrValidation)
	}
	p := f.ensurePayment(currency, now)
	p.TotalPrice = &total
	f.UpdatedAt = At(now)
	return nil
}

// FinalAmount is the balance due at the final payment step: total price minus the deposit.
func (f *TaxFiling) FinalAmount(deposit decimal.Decimal) (decimal.Decimal, bool) {
	if f.Payment == nil || f.Payment.TotalPrice == nil {
		return decimal.Zero, false
	}
	return f.Payment.TotalPrice.Sub(deposit), true
}

// CheckFinalAmount fails unless amount is exactly the balance due after the deposit.
func (f *TaxFiling) CheckFinalAmount(amount, deposit decimal.Decimal) error {
	expected, ok := f.FinalAmount(deposit)
	if !ok {
		return fmt.Errorf("%w: total price of the %d filing is not set", apperrors.ErrValidation, f.Year)
	}
	if !expected.Equal(amount) {
		return fmt.Errorf("%w: final amount %s does not match the balance due %s", apperrors.ErrValidation, amount.StringFixed(2), expected.StringFixed(2))
	}
	return nil
}

// PaymentComponent returns the component for kind, or nil when none was started.
func (f *TaxFiling) PaymentComponent(kind PaymentType) *PaymentComponent {
	if f.Payment == nil {
		return nil
	}
	if kind == PaymentTypeFinal {
		return f.Payment.Final
	}
	return f.Payment.Initial
}

// StartPayment records a pending checkout session for kind. A component already paid is never reset.
func (f *TaxFiling) StartPayment(kind PaymentType, sessionID string, amount decimal.Decimal, currency string, now time.Time) error {
	if existing := f.PaymentComponent(kind); existing.IsPaid() {
		return fmt.Errorf("%w: %s payment already completed", apperrors.ErrDuplicate, kind)
	}
	p := f.ensurePayment(currency, now)
	component := &PaymentComponent{
		Status:    PaymentPending,
		Amount:    amount,
		Currency:  currency,
		SessionID: sessionID,
		CreatedAt: At(now),
	}
	if kind == PaymentTypeFinal {
		p.Final = component
	} else {
		p.Initial = component
	}
	f.UpdatedAt = At(now)
	return nil
}

// ApplyVerifiedPayment marks the kind component paid and advances the workflow past
// the matching payment gate. It returns false without changing anything when the
// component was already paid, so repeated verification of one session is a no-op.
func (f *TaxFiling) ApplyVerifiedPayment(kind PaymentType, reference string, amount decimal.Decimal, currency string, now time.Time) (bool, error) {
	if f.PaymentComponent(kind).IsPaid() {
		return false, nil
	}

	p := f.ensurePayment(currency, now)
	component := f.PaymentComponent(kind)
	if component == nil {
		component = &PaymentComponent{CreatedAt: At(now)}
		if kind == PaymentTypeFinal {
			p.Final = component
		} else {
			p.Initial = component
		}
	}
	component.Status = PaymentPaid
	component.Amount = amount
	component.Currency = currency
	component.PaymentReference = reference
	component.PaidAt = AtPtr(now)

	p.Amount = p.Amount.Add(amount)
	p.Currency = currency
	if kind == PaymentTypeFinal {
		// FinalPrice is what the filing earned in total, deposit included.
		final := p.Amount
		if p.TotalPrice != nil {
			final = *p.TotalPrice
		}
		p.FinalPrice = &final
		p.Status = PaymentPaid
	}

	var target WorkflowStep
	switch {
	case kind == PaymentTypeInitial && f.CurrentStep() == StepInitialPaymentPending:
		target = StepDocumentsUpload
	case kind == PaymentTypeFinal && f.CurrentStep() == StepFinalPaymentPending:
		target = StepFiled
	}
	if target != 0 {
		if err := f.AdvanceTo(target, now); err != nil {
			return false, err
		}
	}
	f.UpdatedAt = At(now)
	return true, nil
}

// WasNotified reports whether a notification for status has already been sent for this filing.
func (f *TaxFiling) WasNotified(status string) bool {
	return slices.Contains(f.NotifiedStatuses, status)
}

// MarkNotified records that the notification for status was sent.
func (f *TaxFiling) MarkNotified(status string) {
	if !f.WasNotified(status) {
		f.NotifiedStatuses = append(f.NotifiedStatuses, status)
	}
}

// Assign sets the staff member owning the filing.
func (f *TaxFiling) Assign(userID string, now time.Time) {
	f.AssignedTo = userID
	f.AssignedAt = AtPtr(now)
	f.UpdatedAt = At(now)
}

// Transfer reassigns the filing and appends to the transfer history. from is recorded
// for audit only and is not checked against the current assignee.
func (f *TaxFiling) Transfer(from, to, reason string, now time.Time) {
	f.Assign(to, now)
	f.TransferHistory = append(f.TransferHistory, Transfer{From: from, To: to, Reason: reason, Date: At(now)})
}

func (f *TaxFiling) ensurePayment(currency string, now time.Time) *FilingPayment {
	if f.Payment == nil {
		f.Payment = &FilingPayment{
			Status:    PaymentPending,
			Amount:    decimal.Zero,
			Currency:  currency,
			CreatedAt: AtPtr(now),
		}
	}
	return f.Payment
}
