package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/SscSPs/tax_filing_app/internal/core/domain"
	"github.com/SscSPs/tax_filing_app/internal/core/ports/gateways"
	portsrepo "github.com/SscSPs/tax_filing_app/internal/core/ports/repositories"
	"github.com/SscSPs/tax_filing_app/internal/repositories/database/memory"
	"github.com/SscSPs/tax_filing_app/internal/repositories/kv"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

var (
	testDeposit  = decimal.NewFromInt(50)
	testCurrency = "CAD"
	dashboardURL = "https://app.example.com/dashboard"
)

// --- Mock PaymentGateway ---
type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) CreateInitialSession(ctx context.Context, req gateways.SessionRequest) (*domain.CheckoutSession, error) {
	args := m.Called(ctx, req)
	var session *domain.CheckoutSession
	if args.Get(0) != nil {
		session = args.Get(0).(*domain.CheckoutSession)
	}
	return session, args.Error(1)
}

func (m *MockPaymentGateway) CreateFinalSession(ctx context.Context, req gateways.SessionRequest, finalAmount decimal.Decimal) (*domain.CheckoutSession, error) {
	args := m.Called(ctx, req, finalAmount)
	var session *domain.CheckoutSession
	if args.Get(0) != nil {
		session = args.Get(0).(*domain.CheckoutSession)
	}
	return session, args.Error(1)
}

func (m *MockPaymentGateway) VerifySession(ctx context.Context, sessionID string) (*domain.VerifiedSession, error) {
	args := m.Called(ctx, sessionID)
	var session *domain.VerifiedSession
	if args.Get(0) != nil {
		session = args.Get(0).(*domain.VerifiedSession)
	}
	return session, args.Error(1)
}

func (m *MockPaymentGateway) Refund(ctx context.Context, paymentReference string, amount *decimal.Decimal) (*domain.RefundResult, error) {
	args := m.Called(ctx, paymentReference, amount)
	var result *domain.RefundResult
	if args.Get(0) != nil {
		result = args.Get(0).(*domain.RefundResult)
	}
	return result, args.Error(1)
}

// recordingSender keeps every email it is asked to send.
type recordingSender struct {
	mu   sync.Mutex
	sent []gateways.Email
	err  error
}

func (r *recordingSender) Send(_ context.Context, email gateways.Email) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, email)
	return nil
}

func (r *recordingSender) Sent() []gateways.Email {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]gateways.Email(nil), r.sent...)
}

// testClock is a settable clock shared by the store and the services.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestRepos(clock *testClock) portsrepo.RepositoryProvider {
	return kv.NewRepositoryProvider(memory.NewKVStore(), kv.WithClock(clock.Now))
}

// seedClient stores a client user and its client record with the given filings.
func seedClient(ctx context.Context, repos portsrepo.RepositoryProvider, userID, clientID, language string, filings []domain.TaxFiling) error {
	if err := repos.UserRepo.SaveUser(ctx, domain.User{
		UserID:       userID,
		Email:        userID + "@example.com",
		Name:         "Client " + userID,
		Role:         domain.RoleClient,
		AuthProvider: domain.ProviderGoogle,
		ClientID:     clientID,
	}); err != nil {
		return err
	}
	return repos.ClientRepo.CreateClient(ctx, domain.Client{
		ClientID:   clientID,
		UserID:     userID,
		Email:      userID + "@example.com",
		Name:       "Ana",
		Language:   language,
		TaxFilings: filings,
	})
}

// seedStaff stores an active staff user with full permissions.
func seedStaff(ctx context.Context, repos portsrepo.RepositoryProvider, userID, name string, role domain.UserRole) error {
	user := domain.User{UserID: userID, Email: userID + "@firm.example.com", Name: name, Role: role, AuthProvider: domain.ProviderLocal}
	if err := repos.UserRepo.SaveUser(ctx, user); err != nil {
		return err
	}
	perms := domain.DefaultAdminPermissions(user)
	perms.Role = role
	return repos.UserRepo.CreatePermissions(ctx, perms)
}

func clientPrincipal(userID, clientID string) domain.Principal {
	return domain.Principal{UserID: userID, Role: domain.RoleClient, ClientID: clientID}
}

func staffPrincipal(userID string) domain.Principal {
	return domain.Principal{UserID: userID, Role: domain.RoleAdmin}
}

// paidFiling returns a filing at the documents step with the deposit collected.
func paidFiling(year int, now time.Time) domain.TaxFiling {
	f := domain.NewTaxFiling(year, domain.StatusInProgress, now)
	if _, err := f.ApplyVerifiedPayment(domain.PaymentTypeInitial, "pi_seed", testDeposit, testCurrency, now); err != nil {
		panic(err)
	}
	return f
}

// newRawRepos exposes the backing store so tests can plant records the typed writers would refuse.
func newRawRepos(clock *testClock) (portsrepo.RepositoryProvider, *memory.KVStore) {
	store := memory.NewKVStore()
	return kv.NewRepositoryProvider(store, kv.WithClock(clock.Now)), store
}
