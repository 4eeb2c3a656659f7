package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/tax_filing_app/internal/apperrors"
	"github.com/SscSPs/tax_filing_app/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var deposit = decimal.RequireFromString("50.00")

func newFiling() domain.TaxFiling {
	return domain.NewTaxFiling(2025, domain.StatusInProgress, time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC))
}

func TestTaxFiling_DepositGate(t *testing.T) {
	now := time.Now()
	f := newFiling()

	err := f.AdvanceTo(domain.StepDocumentsUpload, now)
	assert.ErrorIs(t, err, apperrors.ErrPaymentRequired)
	assert.Equal(t, domain.StepInitialPaymentPending, f.CurrentStep())

	require.NoError(t, f.StartPayment(domain.PaymentTypeInitial, "cs_1", deposit, "CAD", now))
	assert.ErrorIs(t, f.AdvanceTo(domain.StepDocumentsUpload, now), apperrors.ErrPaymentRequired, "pending session does not open the gate")

	applied, err := f.ApplyVerifiedPayment(domain.PaymentTypeInitial, "pi_1", deposit, "CAD", now)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, domain.StepDocumentsUpload, f.CurrentStep())
	assert.Equal(t, domain.StatusInProgress, f.Status)
	assert.True(t, f.InitialPaid())
	assert.Equal(t, domain.PaymentPending, f.Payment.Status, "overall payment stays pending until the final balance")
}

func TestTaxFiling_ApplyVerifiedPaymentTwiceIsNoOp(t *testing.T) {
	now := time.Now()
	f := newFiling()

	applied, err := f.ApplyVerifiedPayment(domain.PaymentTypeInitial, "pi_1", deposit, "CAD", now)
	require.NoError(t, err)
	require.True(t, applied)
	snapshot := f.Payment.Amount

	applied, err = f.ApplyVerifiedPayment(domain.PaymentTypeInitial, "pi_1", deposit, "CAD", now.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, applied)
	assert.True(t, snapshot.Equal(f.Payment.Amount), "amount must not be counted twice")
	assert.Equal(t, domain.StepDocumentsUpload, f.CurrentStep())
}

func TestTaxFiling_FullWorkflow(t *testing.T) {
	now := time.Now()
	f := newFiling()

	_, err := f.ApplyVerifiedPayment(domain.PaymentTypeInitial, "pi_1", deposit, "CAD", now)
	require.NoError(t, err)

	assert.ErrorIs(t, f.AdvanceTo(domain.StepCalculation, now), apperrors.ErrDocumentsRequired)
	require.NoError(t, f.AddDocument(domain.DocumentRef{ID: "d1", Name: "T4.pdf"}, now))
	require.NoError(t, f.AdvanceTo(domain.StepCalculation, now))
	assert.Equal(t, domain.StatusUnderReview, f.Status)

	require.NoError(t, f.SetTotalPrice(decimal.RequireFromString("300"), deposit, "CAD", now))
	require.NoError(t, f.AdvanceTo(domain.StepFinalPaymentPending, now))

	finalAmount, ok := f.FinalAmount(deposit)
	require.True(t, ok)
	assert.Equal(t, "250", finalAmount.String())

	assert.ErrorIs(t, f.AdvanceTo(domain.StepFiled, now), apperrors.ErrPaymentRequired)
	assert.ErrorIs(t, f.Complete(now), apperrors.ErrInvalidTransition)

	applied, err := f.ApplyVerifiedPayment(domain.PaymentTypeFinal, "pi_2", finalAmount, "CAD", now)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, domain.StepFiled, f.CurrentStep())
	assert.Equal(t, domain.StatusFiled, f.Status)
	assert.Equal(t, domain.PaymentPaid, f.Payment.Status)
	assert.Equal(t, "300", f.Payment.Amount.String())
	require.NotNil(t, f.Payment.FinalPrice)
	assert.Equal(t, "300", f.Payment.FinalPrice.String(), "final price is the full price, deposit included")

	require.NoError(t, f.Complete(now))
	assert.True(t, f.IsCompleted())
	assert.NotNil(t, f.CompletedAt)
	assert.ErrorIs(t, f.Complete(now), apperrors.ErrInvalidTransition)
}

func TestTaxFiling_TransitionsAreForwardOnly(t *testing.T) {
	now := time.Now()
	f := newFiling()
	_, err := f.ApplyVerifiedPayment(domain.PaymentTypeInitial, "pi_1", deposit, "CAD", now)
	require.NoError(t, err)

	assert.ErrorIs(t, f.AdvanceTo(domain.StepInitialPaymentPending, now), apperrors.ErrInvalidTransition)
	assert.ErrorIs(t, f.AdvanceTo(domain.StepFinalPaymentPending, now), apperrors.ErrInvalidTransition, "steps cannot be skipped")
	assert.ErrorIs(t, f.AdvanceTo(domain.WorkflowStep(9), now), apperrors.ErrInvalidTransition)
}

func TestTaxFiling_FinalPaymentStepRequiresTotalPrice(t *testing.T) {
	now := time.Now()
	f := newFiling()
	_, err := f.ApplyVerifiedPayment(domain.PaymentTypeInitial, "pi_1", deposit, "CAD", now)
	require.NoError(t, err)
	require.NoError(t, f.AddDocument(domain.DocumentRef{ID: "d1"}, now))
	require.NoError(t, f.AdvanceTo(domain.StepCalculation, now))

	assert.ErrorIs(t, f.AdvanceTo(domain.StepFinalPaymentPending, now), apperrors.ErrValidation)
	assert.Equal(t, domain.StepCalculation, f.CurrentStep())

	require.NoError(t, f.SetTotalPrice(decimal.RequireFromString("300"), deposit, "CAD", now))
	require.NoError(t, f.AdvanceTo(domain.StepFinalPaymentPending, now))

	assert.NoError(t, f.CheckFinalAmount(decimal.RequireFromString("250.00"), deposit))
	assert.ErrorIs(t, f.CheckFinalAmount(decimal.RequireFromString("0.01"), deposit), apperrors.ErrValidation)
}

func TestTaxFiling_CheckFinalAmountWithoutTotal(t *testing.T) {
	f := newFiling()
	assert.ErrorIs(t, f.CheckFinalAmount(decimal.RequireFromString("250"), deposit), apperrors.ErrValidation)
}

func TestTaxFiling_DocumentsRequireDeposit(t *testing.T) {
	f := newFiling()
	err := f.AddDocument(domain.DocumentRef{ID: "d1"}, time.Now())
	assert.ErrorIs(t, err, apperrors.ErrPaymentRequired)
	assert.Empty(t, f.Documents)
}

func TestTaxFiling_StartPaymentRefusesPaidComponent(t *testing.T) {
	now := time.Now()
	f := newFiling()
	_, err := f.ApplyVerifiedPayment(domain.PaymentTypeInitial, "pi_1", deposit, "CAD", now)
	require.NoError(t, err)

	err = f.StartPayment(domain.PaymentTypeInitial, "cs_again", deposit, "CAD", now)
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
	assert.Equal(t, "pi_1", f.Payment.Initial.PaymentReference)
}

func TestTaxFiling_LegacyRecordWithoutStep(t *testing.T) {
	f := domain.TaxFiling{Year: 2023, Status: domain.StatusUnderReview}
	assert.Equal(t, domain.StepInitialPaymentPending, f.CurrentStep())
}

func TestTaxFiling_TransferKeepsAuditTrail(t *testing.T) {
	now := time.Now()
	f := newFiling()
	f.Assign("u1", now)
	f.Transfer("someone-else", "u2", "vacation", now.Add(time.Hour))

	assert.Equal(t, "u2", f.AssignedTo)
	require.Len(t, f.TransferHistory, 1)
	assert.Equal(t, domain.Transfer{From: "someone-else", To: "u2", Reason: "vacation", Date: domain.At(now.Add(time.Hour))}, f.TransferHistory[0])
}

func TestDefaultFilings(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	filings := domain.DefaultFilings(now)

	require.Len(t, filings, 2)
	assert.Equal(t, 2026, filings[0].Year)
	assert.Equal(t, domain.StatusInProgress, filings[0].Status)
	assert.Equal(t, 2027, filings[1].Year)
	assert.Equal(t, domain.StatusNotStarted, filings[1].Status)
}

func TestUserPermissions_Allows(t *testing.T) {
	accountant := &domain.UserPermissions{Role: domain.RoleAccountant, Modules: []domain.Module{domain.ModuleCases}, IsActive: true}
	assert.True(t, accountant.Allows(domain.ModuleCases))
	assert.False(t, accountant.Allows(domain.ModuleUsers))

	admin := &domain.UserPermissions{Role: domain.RoleAdmin, IsActive: true}
	assert.True(t, admin.Allows(domain.ModuleUsers))

	admin.IsActive = false
	assert.False(t, admin.Allows(domain.ModuleUsers))

	var none *domain.UserPermissions
	assert.False(t, none.Allows(domain.ModuleCases))
}
