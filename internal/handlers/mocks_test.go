package handlers_test

import (
	"context"

	"github.com/SscSPs/tax_filing_app/internal/core/domain"
	portssvc "github.com/SscSPs/tax_filing_app/internal/core/ports/services"
	"github.com/SscSPs/tax_filing_app/internal/dto"
	"github.com/stretchr/testify/mock"
)

// --- Mock FilingService ---
type MockFilingService struct {
	mock.Mock
}

func (m *MockFilingService) GetFilings(ctx context.Context, caller domain.Principal, clientID string) (*domain.Client, *domain.RepairNotice, error) {
	args := m.Called(ctx, caller, clientID)
	var notice *domain.RepairNotice
	if n := args.Get(1); n != nil {
		notice = n.(*domain.RepairNotice)
	}
	if args.Get(0) == nil {
		return nil, notice, args.Error(2)
	}
	return args.Get(0).(*domain.Client), notice, args.Error(2)
}
func (m *MockFilingService) RecordDocument(ctx context.Context, caller domain.Principal, clientID string, year int, req dto.RecordDocumentRequest) (*domain.TaxFiling, error) {
	args := m.Called(ctx, caller, clientID, year, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TaxFiling), args.Error(1)
}
func (m *MockFilingService) Advance(ctx context.Context, caller domain.Principal, clientID string, year int, req dto.AdvanceFilingRequest) (*domain.TaxFiling, error) {
	args := m.Called(ctx, caller, clientID, year, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TaxFiling), args.Error(1)
}
func (m *MockFilingService) Complete(ctx context.Context, caller domain.Principal, clientID string, year int) (*domain.TaxFiling, error) {
	args := m.Called(ctx, caller, clientID, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TaxFiling), args.Error(1)
}

var _ portssvc.FilingSvcFacade = (*MockFilingService)(nil)

// --- Mock PaymentService ---
type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) CreateInitialSession(ctx context.Context, caller domain.Principal, req dto.CreateInitialSessionRequest) (*domain.CheckoutSession, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CheckoutSession), args.Error(1)
}
func (m *MockPaymentService) CreateFinalSession(ctx context.Context, caller domain.Principal, req dto.CreateFinalSessionRequest) (*domain.CheckoutSession, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CheckoutSession), args.Error(1)
}
func (m *MockPaymentService) VerifySession(ctx context.Context, caller domain.Principal, sessionID string) (*domain.PaymentVerification, error) {
	args := m.Called(ctx, caller, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentVerification), args.Error(1)
}
func (m *MockPaymentService) Refund(ctx context.Context, caller domain.Principal, req dto.RefundRequest) (*domain.RefundResult, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RefundResult), args.Error(1)
}

var _ portssvc.PaymentSvcFacade = (*MockPaymentService)(nil)

// --- Mock MessageService ---
type MockMessageService struct {
	mock.Mock
}

func (m *MockMessageService) ListForClient(ctx context.Context, caller domain.Principal, clientID string) ([]domain.Message, error) {
	args := m.Called(ctx, caller, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Message), args.Error(1)
}
func (m *MockMessageService) UnreadCount(ctx context.Context, caller domain.Principal, clientID string) (int, error) {
	args := m.Called(ctx, caller, clientID)
	return args.Int(0), args.Error(1)
}
func (m *MockMessageService) Send(ctx context.Context, caller domain.Principal, req dto.SendMessageRequest) (*domain.Message, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Message), args.Error(1)
}
func (m *MockMessageService) MarkRead(ctx context.Context, caller domain.Principal, messageID, clientID string) (bool, error) {
	args := m.Called(ctx, caller, messageID, clientID)
	return args.Bool(0), args.Error(1)
}
func (m *MockMessageService) Delete(ctx context.Context, caller domain.Principal, messageID, clientID string) error {
	args := m.Called(ctx, caller, messageID, clientID)
	return args.Error(0)
}

var _ portssvc.MessageSvcFacade = (*MockMessageService)(nil)

// --- Mock CaseService ---
type MockCaseService struct {
	mock.Mock
}

func (m *MockCaseService) Assign(ctx context.Context, req dto.AssignCaseRequest) (*domain.TaxFiling, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TaxFiling), args.Error(1)
}
func (m *MockCaseService) Transfer(ctx context.Context, req dto.TransferCaseRequest) (*domain.TaxFiling, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TaxFiling), args.Error(1)
}
func (m *MockCaseService) Productivity(ctx context.Context, period domain.ProductivityPeriod) ([]domain.UserProductivity, error) {
	args := m.Called(ctx, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.UserProductivity), args.Error(1)
}

var _ portssvc.CaseSvcFacade = (*MockCaseService)(nil)

// --- Mock UserService ---
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserService) ListUsers(ctx context.Context) ([]domain.UserPermissions, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.UserPermissions), args.Error(1)
}
func (m *MockUserService) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*domain.User, *domain.UserPermissions, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.User), args.Get(1).(*domain.UserPermissions), args.Error(2)
}
func (m *MockUserService) EnsureBootstrapAdmin(ctx context.Context, email, password string) error {
	args := m.Called(ctx, email, password)
	return args.Error(0)
}
func (m *MockUserService) GetPermissions(ctx context.Context, userID string) (*domain.UserPermissions, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserPermissions), args.Error(1)
}
func (m *MockUserService) UpdatePermissions(ctx context.Context, userID string, req dto.UpdatePermissionsRequest) (*domain.UserPermissions, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserPermissions), args.Error(1)
}
func (m *MockUserService) AuthenticateUser(ctx context.Context, email, password string) (*domain.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

var _ portssvc.UserSvcFacade = (*MockUserService)(nil)

// --- Mock AuthService ---
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*domain.User), args.Error(2)
}
func (m *MockAuthService) GoogleLoginURL(ctx context.Context) (string, string, error) {
	args := m.Called(ctx)
	return args.String(0), args.String(1), args.Error(2)
}
func (m *MockAuthService) ExchangeGoogleCode(ctx context.Context, code string) (string, *domain.User, error) {
	args := m.Called(ctx, code)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*domain.User), args.Error(2)
}

var _ portssvc.AuthSvcFacade = (*MockAuthService)(nil)
