package handlers_test

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/tax_filing_app/internal/apperrors"
	"github.com/SscSPs/tax_filing_app/internal/core/domain"
	portssvc "github.com/SscSPs/tax_filing_app/internal/core/ports/services"
	"github.com/SscSPs/tax_filing_app/internal/dto"
	"github.com/SscSPs/tax_filing_app/internal/handlers"
	"github.com/SscSPs/tax_filing_app/internal/platform/config"
	"github.com/SscSPs/tax_filing_app/internal/utils"
	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

var (
	clientCaller = domain.Principal{UserID: "user-1", Role: domain.RoleClient, ClientID: "client-1"}
	staffCaller  = domain.Principal{UserID: "staff-1", Role: domain.RoleAccountant}
)

// --- Test Suite ---
type HandlerTestSuite struct {
	suite.Suite
	router    *gin.Engine
	jwtSecret string

	filing  *MockFilingService
	payment *MockPaymentService
	message *MockMessageService
	cases   *MockCaseService
	user    *MockUserService
	auth    *MockAuthService
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

func (s *HandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()
	s.jwtSecret = "test-secret-key-that-is-long-enough"

	s.filing = new(MockFilingService)
	s.payment = new(MockPaymentService)
	s.message = new(MockMessageService)
	s.cases = new(MockCaseService)
	s.user = new(MockUserService)
	s.auth = new(MockAuthService)

	cfg := &config.Config{JWTSecret: s.jwtSecret, IsProduction: true}
	container := &portssvc.ServiceContainer{
		Filing:  s.filing,
		Payment: s.payment,
		Message: s.message,
		Case:    s.cases,
		User:    s.user,
		Auth:    s.auth,
	}
	handlers.RegisterRoutes(s.router, cfg, container, nil)
}

func (s *HandlerTestSuite) TearDownTest() {
	s.filing.AssertExpectations(s.T())
	s.payment.AssertExpectations(s.T())
	s.message.AssertExpectations(s.T())
	s.cases.AssertExpectations(s.T())
	s.user.AssertExpectations(s.T())
	s.auth.AssertExpectations(s.T())
}

// token signs a JWT for p the same way the auth service does.
func (s *HandlerTestSuite) token(p domain.Principal) string {
	user := &domain.User{UserID: p.UserID, Role: p.Role, ClientID: p.ClientID}
	signed, err := utils.GenerateJWT(user, s.jwtSecret, time.Hour, "tfa-test")
	s.Require().NoError(err)
	return signed
}

func (s *HandlerTestSuite) do(method, path string, body any, p *domain.Principal) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, path, reader)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if p != nil {
		req.Header.Set("Authorization", "Bearer "+s.token(*p))
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlerTestSuite) decode(w *httptest.ResponseRecorder, out any) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

func (s *HandlerTestSuite) errorBody(w *httptest.ResponseRecorder) string {
	var resp handlers.ErrorResponse
	s.decode(w, &resp)
	return resp.Error
}

// grant makes staffCaller an active staff member holding modules.
func (s *HandlerTestSuite) grant(modules ...domain.Module) {
	s.user.On("GetPermissions", mock.Anything, staffCaller.UserID).Return(&domain.UserPermissions{
		UserID:   staffCaller.UserID,
		Role:     staffCaller.Role,
		Modules:  modules,
		IsActive: true,
	}, nil)
}

func (s *HandlerTestSuite) TestHealth() {
	w := s.do(http.MethodGet, "/health", nil, nil)

	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"status":"ok"}`, w.Body.String())
}

func (s *HandlerTestSuite) TestProtectedRouteWithoutToken() {
	w := s.do(http.MethodGet, "/api/v1/filings/client-1", nil, nil)

	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *HandlerTestSuite) TestProtectedRouteWithForeignSignature() {
	user := &domain.User{UserID: clientCaller.UserID, Role: domain.RoleAdmin}
	forged, err := utils.GenerateJWT(user, "another-secret", time.Hour, "tfa-test")
	s.Require().NoError(err)

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/users/list", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusUnauthorized, w.Code)
}

// --- Auth ---

func (s *HandlerTestSuite) TestLogin_Success() {
	user := &domain.User{UserID: "staff-1", Email: "ana@firm.example", Name: "Ana", Role: domain.RoleAdmin, PasswordHash: "hash"}
	s.auth.On("Login", mock.Anything, "ana@firm.example", "correct-horse").Return("signed-token", user, nil).Once()

	w := s.do(http.MethodPost, "/api/v1/auth/login", dto.LoginRequest{Email: "ana@firm.example", Password: "correct-horse"}, nil)

	s.Equal(http.StatusOK, w.Code)
	var resp dto.LoginResponse
	s.decode(w, &resp)
	s.Equal("signed-token", resp.Token)
	s.Equal("staff-1", resp.User.UserID)
	s.NotContains(w.Body.String(), "hash")
}

func (s *HandlerTestSuite) TestLogin_InvalidCredentials() {
	s.auth.On("Login", mock.Anything, "ana@firm.example", "wrong").
		Return("", nil, fmt.Errorf("invalid email or password: %w", apperrors.ErrUnauthorized)).Once()

	w := s.do(http.MethodPost, "/api/v1/auth/login", dto.LoginRequest{Email: "ana@firm.example", Password: "wrong"}, nil)

	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *HandlerTestSuite) TestLogin_InvalidBody() {
	w := s.do(http.MethodPost, "/api/v1/auth/login", `{"email": "not-an-email"}`, nil)

	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerTestSuite) TestGoogleLoginURL_NotConfigured() {
	s.auth.On("GoogleLoginURL", mock.Anything).
		Return("", "", apperrors.NewAppError(http.StatusServiceUnavailable, "Google sign-in is not configured", nil)).Once()

	w := s.do(http.MethodGet, "/api/v1/auth/google/login-url", nil, nil)

	s.Equal(http.StatusServiceUnavailable, w.Code)
	s.Equal("Google sign-in is not configured", s.errorBody(w))
}

func (s *HandlerTestSuite) TestExchangeGoogleCode() {
	user := &domain.User{UserID: "user-9", Email: "new@example.com", Role: domain.RoleClient, ClientID: "client-9"}
	s.auth.On("ExchangeGoogleCode", mock.Anything, "auth-code").Return("client-token", user, nil).Once()

	w := s.do(http.MethodPost, "/api/v1/auth/google/exchange-code", dto.GoogleExchangeRequest{Code: "auth-code"}, nil)

	s.Equal(http.StatusOK, w.Code)
	var resp dto.LoginResponse
	s.decode(w, &resp)
	s.Equal("client-9", resp.User.ClientID)
}

// --- Payments ---

func (s *HandlerTestSuite) TestCreateInitialSession_ReturnsURL() {
	req := dto.CreateInitialSessionRequest{TaxYear: 2025, ReturnURL: "https://app.example.com/return"}
	s.payment.On("CreateInitialSession", mock.Anything, clientCaller, req).
		Return(&domain.CheckoutSession{SessionID: "cs_1", RedirectURL: "https://checkout.example.com/cs_1"}, nil).Once()

	w := s.do(http.MethodPost, "/api/v1/payments/create-initial-session", req, &clientCaller)

	s.Equal(http.StatusOK, w.Code)
	var resp dto.SessionResponse
	s.decode(w, &resp)
	s.Equal("https://checkout.example.com/cs_1", resp.URL)
}

func (s *HandlerTestSuite) TestCreateInitialSession_GatewayNotConfiguredHidesDetails() {
	req := dto.CreateInitialSessionRequest{TaxYear: 2025, ReturnURL: "https://app.example.com/return"}
	s.payment.On("CreateInitialSession", mock.Anything, clientCaller, req).
		Return(nil, fmt.Errorf("stripe secret key missing: %w", apperrors.ErrGatewayNotConfigured)).Once()

	w := s.do(http.MethodPost, "/api/v1/payments/create-initial-session", req, &clientCaller)

	s.Equal(http.StatusInternalServerError, w.Code)
	s.NotContains(s.errorBody(w), "stripe")
}

func (s *HandlerTestSuite) TestCreateInitialSession_RejectsInvalidYear() {
	w := s.do(http.MethodPost, "/api/v1/payments/create-initial-session",
		`{"taxYear": 1900, "returnUrl": "https://app.example.com/return"}`, &clientCaller)

	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerTestSuite) TestCreateFinalSession_Declined() {
	req := dto.CreateFinalSessionRequest{TaxYear: 2025, FinalAmount: decimal.NewFromInt(250), ReturnURL: "https://app.example.com/return"}
	s.payment.On("CreateFinalSession", mock.Anything, clientCaller, mock.AnythingOfType("dto.CreateFinalSessionRequest")).
		Return(nil, fmt.Errorf("card declined: %w", apperrors.ErrPaymentFailed)).Once()

	w := s.do(http.MethodPost, "/api/v1/payments/create-final-session", req, &clientCaller)

	s.Equal(http.StatusPaymentRequired, w.Code)
}

func (s *HandlerTestSuite) TestVerifySession() {
	verification := &domain.PaymentVerification{
		Session: domain.VerifiedSession{SessionID: "cs_1", Paid: true, PaymentType: domain.PaymentTypeInitial, TaxYear: 2025},
		Applied: true,
		Filing:  domain.TaxFiling{Year: 2025, Status: domain.StatusInProgress, Step: domain.StepDocumentsUpload},
	}
	s.payment.On("VerifySession", mock.Anything, clientCaller, "cs_1").Return(verification, nil).Once()

	w := s.do(http.MethodPost, "/api/v1/payments/verify", dto.VerifySessionRequest{SessionID: "cs_1"}, &clientCaller)

	s.Equal(http.StatusOK, w.Code)
	var resp dto.VerifySessionResponse
	s.decode(w, &resp)
	s.True(resp.Paid)
	s.True(resp.Applied)
	s.Require().NotNil(resp.Filing)
	s.Equal(domain.StepDocumentsUpload, resp.Filing.Step)
}

func (s *HandlerTestSuite) TestRefund_ClientForbidden() {
	w := s.do(http.MethodPost, "/api/v1/payments/refund", dto.RefundRequest{PaymentReference: "pi_1"}, &clientCaller)

	s.Equal(http.StatusForbidden, w.Code)
}

func (s *HandlerTestSuite) TestRefund_StaffWithPaymentsModule() {
	s.grant(domain.ModulePayments)
	s.payment.On("Refund", mock.Anything, staffCaller, dto.RefundRequest{PaymentReference: "pi_1"}).
		Return(&domain.RefundResult{RefundID: "re_1", Status: "succeeded"}, nil).Once()

	w := s.do(http.MethodPost, "/api/v1/payments/refund", dto.RefundRequest{PaymentReference: "pi_1"}, &staffCaller)

	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "re_1")
}

// --- Messages ---

func (s *HandlerTestSuite) TestListMessages() {
	msgs := []domain.Message{{ID: "m2", ClientID: "client-1"}, {ID: "m1", ClientID: "client-1"}}
	s.message.On("ListForClient", mock.Anything, clientCaller, "client-1").Return(msgs, nil).Once()

	w := s.do(http.MethodGet, "/api/v1/messages/client-1", nil, &clientCaller)

	s.Equal(http.StatusOK, w.Code)
	var resp dto.ListMessagesResponse
	s.decode(w, &resp)
	s.Len(resp.Messages, 2)
	s.Equal("m2", resp.Messages[0].ID)
}

func (s *HandlerTestSuite) TestListMessages_OtherClientForbidden() {
	s.message.On("ListForClient", mock.Anything, clientCaller, "client-2").
		Return(nil, fmt.Errorf("%w: not your thread", apperrors.ErrForbidden)).Once()

	w := s.do(http.MethodGet, "/api/v1/messages/client-2", nil, &clientCaller)

	s.Equal(http.StatusForbidden, w.Code)
}

func (s *HandlerTestSuite) TestSendMessage() {
	req := dto.SendMessageRequest{ClientID: "client-1", Subject: "Question", Content: "Do you need my T4?"}
	s.message.On("Send", mock.Anything, clientCaller, mock.AnythingOfType("dto.SendMessageRequest")).
		Return(&domain.Message{ID: "m1", ClientID: "client-1", SenderRole: domain.SenderClient}, nil).Once()

	w := s.do(http.MethodPost, "/api/v1/messages/send", req, &clientCaller)

	s.Equal(http.StatusCreated, w.Code)
}

func (s *HandlerTestSuite) TestSendMessage_MissingSubject() {
	w := s.do(http.MethodPost, "/api/v1/messages/send", `{"clientId": "client-1", "content": "hi"}`, &clientCaller)

	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerTestSuite) TestMarkRead() {
	s.message.On("MarkRead", mock.Anything, clientCaller, "m1", "client-1").Return(true, nil).Once()

	w := s.do(http.MethodPost, "/api/v1/messages/m1/mark-read", dto.MarkReadRequest{ClientID: "client-1"}, &clientCaller)

	s.Equal(http.StatusNoContent, w.Code)
}

func (s *HandlerTestSuite) TestUnreadCount() {
	s.message.On("UnreadCount", mock.Anything, clientCaller, "client-1").Return(3, nil).Once()

	w := s.do(http.MethodGet, "/api/v1/messages/client-1/unread-count", nil, &clientCaller)

	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"count":3}`, w.Body.String())
}

func (s *HandlerTestSuite) TestDeleteMessage_NotFound() {
	s.message.On("Delete", mock.Anything, clientCaller, "m9", "client-1").
		Return(fmt.Errorf("message m9: %w", apperrors.ErrNotFound)).Once()

	w := s.do(http.MethodDelete, "/api/v1/messages/client-1/m9", nil, &clientCaller)

	s.Equal(http.StatusNotFound, w.Code)
}

func (s *HandlerTestSuite) TestMessages_StaffWithoutModule() {
	s.grant(domain.ModuleCases)

	w := s.do(http.MethodGet, "/api/v1/messages/client-1", nil, &staffCaller)

	s.Equal(http.StatusForbidden, w.Code)
}

// --- Users ---

func (s *HandlerTestSuite) TestListUsers_RequiresUsersModule() {
	s.grant(domain.ModuleMessages)

	w := s.do(http.MethodGet, "/api/v1/users/list", nil, &staffCaller)

	s.Equal(http.StatusForbidden, w.Code)
}

func (s *HandlerTestSuite) TestListUsers_InactiveStaff() {
	s.user.On("GetPermissions", mock.Anything, staffCaller.UserID).Return(&domain.UserPermissions{
		UserID: staffCaller.UserID, Role: domain.RoleAdmin, IsActive: false,
	}, nil)

	w := s.do(http.MethodGet, "/api/v1/users/list", nil, &staffCaller)

	s.Equal(http.StatusForbidden, w.Code)
}

func (s *HandlerTestSuite) TestListUsers_MissingPermissionsRecord() {
	s.user.On("GetPermissions", mock.Anything, staffCaller.UserID).
		Return(nil, fmt.Errorf("permissions: %w", apperrors.ErrNotFound))

	w := s.do(http.MethodGet, "/api/v1/users/list", nil, &staffCaller)

	s.Equal(http.StatusForbidden, w.Code)
}

func (s *HandlerTestSuite) TestListUsers() {
	s.grant(domain.ModuleUsers)
	s.user.On("ListUsers", mock.Anything).Return([]domain.UserPermissions{{UserID: "staff-1"}, {UserID: "staff-2"}}, nil).Once()

	w := s.do(http.MethodGet, "/api/v1/users/list", nil, &staffCaller)

	s.Equal(http.StatusOK, w.Code)
	var resp dto.ListUsersResponse
	s.decode(w, &resp)
	s.Len(resp.Users, 2)
}

func (s *HandlerTestSuite) TestGetOwnPermissionsWithoutUsersModule() {
	s.grant(domain.ModuleMessages)

	w := s.do(http.MethodGet, "/api/v1/users/permissions/staff-1", nil, &staffCaller)

	s.Equal(http.StatusOK, w.Code)
	var perms domain.UserPermissions
	s.decode(w, &perms)
	s.Equal([]domain.Module{domain.ModuleMessages}, perms.Modules)
}

func (s *HandlerTestSuite) TestGetOtherPermissionsWithoutUsersModule() {
	s.grant(domain.ModuleMessages)

	w := s.do(http.MethodGet, "/api/v1/users/permissions/staff-2", nil, &staffCaller)

	s.Equal(http.StatusForbidden, w.Code)
}

func (s *HandlerTestSuite) TestUpdatePermissions_NotFound() {
	s.grant(domain.ModuleUsers)
	s.user.On("UpdatePermissions", mock.Anything, "ghost", mock.AnythingOfType("dto.UpdatePermissionsRequest")).
		Return(nil, fmt.Errorf("permissions for ghost: %w", apperrors.ErrNotFound)).Once()

	w := s.do(http.MethodPut, "/api/v1/users/permissions/ghost", `{"isActive": false}`, &staffCaller)

	s.Equal(http.StatusNotFound, w.Code)
}

func (s *HandlerTestSuite) TestCreateUser() {
	s.grant(domain.ModuleUsers)
	user := &domain.User{UserID: "staff-3", Email: "bo@firm.example", Name: "Bo", Role: domain.RoleViewer, PasswordHash: "hash"}
	perms := &domain.UserPermissions{UserID: "staff-3", Role: domain.RoleViewer, Modules: domain.AllModules, IsActive: true}
	s.user.On("CreateUser", mock.Anything, mock.AnythingOfType("dto.CreateUserRequest")).Return(user, perms, nil).Once()

	w := s.do(http.MethodPost, "/api/v1/users/create",
		`{"email": "bo@firm.example", "name": "Bo", "password": "long-enough", "role": "viewer"}`, &staffCaller)

	s.Equal(http.StatusCreated, w.Code)
	var resp dto.CreateUserResponse
	s.decode(w, &resp)
	s.Equal("staff-3", resp.User.UserID)
	s.True(resp.Permissions.IsActive)
	s.NotContains(w.Body.String(), "hash")
}

func (s *HandlerTestSuite) TestCreateUser_RejectsClientRole() {
	s.grant(domain.ModuleUsers)

	w := s.do(http.MethodPost, "/api/v1/users/create",
		`{"email": "bo@firm.example", "name": "Bo", "password": "long-enough", "role": "client"}`, &staffCaller)

	s.Equal(http.StatusBadRequest, w.Code)
}

// --- Cases ---

func (s *HandlerTestSuite) TestAssign_NoMatchingFiling() {
	s.grant(domain.ModuleCases)
	req := dto.AssignCaseRequest{ClientID: "client-1", Year: 2019, AssignedTo: "staff-2"}
	s.cases.On("Assign", mock.Anything, req).Return(nil, nil).Once()

	w := s.do(http.MethodPost, "/api/v1/cases/assign", req, &staffCaller)

	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"updated":false}`, w.Body.String())
}

func (s *HandlerTestSuite) TestTransfer() {
	s.grant(domain.ModuleCases)
	req := dto.TransferCaseRequest{ClientID: "client-1", Year: 2025, FromUserID: "staff-1", ToUserID: "staff-2", Reason: "vacation"}
	s.cases.On("Transfer", mock.Anything, req).Return(&domain.TaxFiling{Year: 2025, AssignedTo: "staff-2"}, nil).Once()

	w := s.do(http.MethodPost, "/api/v1/cases/transfer", req, &staffCaller)

	s.Equal(http.StatusOK, w.Code)
	var resp dto.CaseUpdateResponse
	s.decode(w, &resp)
	s.True(resp.Updated)
	s.Equal("staff-2", resp.Filing.AssignedTo)
}

func (s *HandlerTestSuite) TestProductivity_DefaultsToMonth() {
	s.grant(domain.ModuleProductivity)
	s.cases.On("Productivity", mock.Anything, domain.PeriodMonth).Return([]domain.UserProductivity{{UserID: "staff-1", CompletedCases: 2}}, nil).Once()

	w := s.do(http.MethodGet, "/api/v1/productivity", nil, &staffCaller)

	s.Equal(http.StatusOK, w.Code)
	var resp dto.ProductivityResponse
	s.decode(w, &resp)
	s.Equal(domain.PeriodMonth, resp.Period)
	s.Len(resp.Users, 1)
}

func (s *HandlerTestSuite) TestProductivity_InvalidPeriod() {
	s.grant(domain.ModuleProductivity)

	w := s.do(http.MethodGet, "/api/v1/productivity?period=decade", nil, &staffCaller)

	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerTestSuite) TestProductivity_ClientForbidden() {
	w := s.do(http.MethodGet, "/api/v1/productivity?period=week", nil, &clientCaller)

	s.Equal(http.StatusForbidden, w.Code)
}

// --- Filings ---

func (s *HandlerTestSuite) TestGetFilings_WithRepairNotice() {
	client := &domain.Client{ClientID: "client-1", TaxFilings: []domain.TaxFiling{{Year: 2025, Status: domain.StatusInProgress}}}
	notice := &domain.RepairNotice{RepairedCount: 1, Persisted: true}
	s.filing.On("GetFilings", mock.Anything, clientCaller, "client-1").Return(client, notice, nil).Once()

	w := s.do(http.MethodGet, "/api/v1/filings/client-1", nil, &clientCaller)

	s.Equal(http.StatusOK, w.Code)
	var resp dto.FilingsResponse
	s.decode(w, &resp)
	s.Len(resp.Filings, 1)
	s.Require().NotNil(resp.Notice)
	s.Equal(1, resp.Notice.RepairedCount)
}

func (s *HandlerTestSuite) TestRecordDocument_DepositRequired() {
	req := dto.RecordDocumentRequest{Name: "T4.pdf", URL: "https://files.example.com/t4.pdf"}
	s.filing.On("RecordDocument", mock.Anything, clientCaller, "client-1", 2025, req).
		Return(nil, fmt.Errorf("filing 2025: %w", apperrors.ErrPaymentRequired)).Once()

	w := s.do(http.MethodPost, "/api/v1/filings/client-1/2025/documents", req, &clientCaller)

	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerTestSuite) TestAdvance_InvalidYear() {
	s.grant(domain.ModuleClients)

	w := s.do(http.MethodPost, "/api/v1/filings/client-1/next/advance", `{"step": 3}`, &staffCaller)

	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerTestSuite) TestAdvance_SetsPrice() {
	s.grant(domain.ModuleClients)
	s.filing.On("Advance", mock.Anything, staffCaller, "client-1", 2025, mock.MatchedBy(func(req dto.AdvanceFilingRequest) bool {
		return req.Step == domain.StepFinalPaymentPending && req.TotalPrice != nil && req.TotalPrice.Equal(decimal.NewFromInt(300))
	})).Return(&domain.TaxFiling{Year: 2025, Step: domain.StepFinalPaymentPending}, nil).Once()

	w := s.do(http.MethodPost, "/api/v1/filings/client-1/2025/advance", `{"step": 4, "totalPrice": "300"}`, &staffCaller)

	s.Equal(http.StatusOK, w.Code)
}

func (s *HandlerTestSuite) TestComplete_InvalidTransition() {
	s.grant(domain.ModuleClients)
	s.filing.On("Complete", mock.Anything, staffCaller, "client-1", 2025).
		Return(nil, fmt.Errorf("filing 2025 at step 3: %w", apperrors.ErrInvalidTransition)).Once()

	w := s.do(http.MethodPost, "/api/v1/filings/client-1/2025/complete", nil, &staffCaller)

	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerTestSuite) TestUnexpectedErrorIsGeneric() {
	s.filing.On("GetFilings", mock.Anything, clientCaller, "client-1").
		Return(nil, nil, errors.New("pq: connection reset by peer")).Once()

	w := s.do(http.MethodGet, "/api/v1/filings/client-1", nil, &clientCaller)

	s.Equal(http.StatusInternalServerError, w.Code)
	s.Equal("Internal server error", s.errorBody(w))
}
