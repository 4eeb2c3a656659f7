// Package payment adapts Stripe Checkout to the core payment gateway port.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/SscSPs/tax_filing_app/internal/apperrors"
	"github.com/SscSPs/tax_filing_app/internal/core/domain"
	"github.com/SscSPs/tax_filing_app/internal/core/ports/gateways"
	"github.com/SscSPs/tax_filing_app/internal/utils"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// Session metadata keys read back by VerifySession.
const (
	metaUserID      = "userId"
	metaTaxYear     = "taxYear"
	metaPaymentType = "paymentType"
)

// StripeGateway creates and verifies Stripe Checkout sessions.
type StripeGateway struct {
	api      *client.API
	currency string
	deposit  decimal.Decimal
	logger   *slog.Logger
}

// Option customises NewStripeGateway.
type Option func(*gatewayOptions)

type gatewayOptions struct {
	backendURL string
	logger     *slog.Logger
}

// WithBackendURL points the client at another API host, e.g. a test server.
func WithBackendURL(u string) Option {
	return func(o *gatewayOptions) { o.backendURL = u }
}

// WithLogger sets the logger the Stripe client reports to.
func WithLogger(logger *slog.Logger) Option {
	return func(o *gatewayOptions) { o.logger = logger }
}

var _ gateways.PaymentGateway = (*StripeGateway)(nil)

// NewStripeGateway builds a gateway. With an empty secret key the gateway is still
// returned, and every call fails with apperrors.ErrGatewayNotConfigured.
func NewStripeGateway(secretKey, currency string, deposit decimal.Decimal, opts ...Option) *StripeGateway {
	o := gatewayOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	g := &StripeGateway{
		currency: strings.ToUpper(currency),
		deposit:  deposit,
		logger:   o.logger,
	}
	if secretKey == "" {
		return g
	}

	cfg := &stripe.BackendConfig{LeveledLogger: &slogLeveledLogger{logger: o.logger}}
	if o.backendURL != "" {
		cfg.URL = stripe.String(o.backendURL)
	}
	g.api = client.New(secretKey, &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, cfg),
		Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, cfg),
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, cfg),
	})
	return g
}

func (g *StripeGateway) CreateInitialSession(ctx context.Context, req gateways.SessionRequest) (*domain.CheckoutSession, error) {
	return g.createSession(ctx, req, domain.PaymentTypeInitial, g.deposit,
		fmt.Sprintf("Tax return %d - deposit", req.TaxYear))
}

func (g *StripeGateway) CreateFinalSession(ctx context.Context, req gateways.SessionRequest, finalAmount decimal.Decimal) (*domain.CheckoutSession, error) {
	return g.createSession(ctx, req, domain.PaymentTypeFinal, finalAmount,
		fmt.Sprintf("Tax return %d - balance", req.TaxYear))
}

func (g *StripeGateway) createSession(ctx context.Context, req gateways.SessionRequest, kind domain.PaymentType, amount decimal.Decimal, label string) (*domain.CheckoutSession, error) {
	if g.api == nil {
		return nil, apperrors.ErrGatewayNotConfigured
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(withSessionPlaceholder(req.ReturnURL)),
		CancelURL:  stripe.String(req.ReturnURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(strings.ToLower(g.currency)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(label),
				},
				UnitAmount: stripe.Int64(utils.ToMinorUnits(amount, g.currency)),
			},
			Quantity: stripe.Int64(1),
		}},
	}
	if req.Email != "" {
		params.CustomerEmail = stripe.String(req.Email)
	}
	params.Context = ctx
	params.AddMetadata(metaUserID, req.UserID)
	params.AddMetadata(metaTaxYear, strconv.Itoa(req.TaxYear))
	params.AddMetadata(metaPaymentType, string(kind))

	session, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, g.translate("create checkout session", err)
	}
	return &domain.CheckoutSession{SessionID: session.ID, RedirectURL: session.URL}, nil
}

func (g *StripeGateway) VerifySession(ctx context.Context, sessionID string) (*domain.VerifiedSession, error) {
	if g.api == nil {
		return nil, apperrors.ErrGatewayNotConfigured
	}

	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("payment_intent")

	session, err := g.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, g.translate("retrieve checkout session", err)
	}

	year, err := strconv.Atoi(session.Metadata[metaTaxYear])
	if err != nil {
		return nil, fmt.Errorf("%w: session %s has no tax year metadata", apperrors.ErrPaymentFailed, sessionID)
	}
	currency := strings.ToUpper(string(session.Currency))
	if currency == "" {
		currency = g.currency
	}

	verified := &domain.VerifiedSession{
		SessionID:   session.ID,
		Paid:        session.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		Amount:      utils.FromMinorUnits(session.AmountTotal, currency),
		Currency:    currency,
		PaymentType: domain.PaymentType(session.Metadata[metaPaymentType]),
		TaxYear:     year,
		UserID:      session.Metadata[metaUserID],
	}
	if session.PaymentIntent != nil {
		verified.PaymentReference = session.PaymentIntent.ID
	}
	return verified, nil
}

func (g *StripeGateway) Refund(ctx context.Context, paymentReference string, amount *decimal.Decimal) (*domain.RefundResult, error) {
	if g.api == nil {
		return nil, apperrors.ErrGatewayNotConfigured
	}

	params := &stripe.RefundParams{PaymentIntent: stripe.String(paymentReference)}
	params.Context = ctx
	if amount != nil {
		params.Amount = stripe.Int64(utils.ToMinorUnits(*amount, g.currency))
	}

	refund, err := g.api.Refunds.New(params)
	if err != nil {
		return nil, g.translate("create refund", err)
	}
	return &domain.RefundResult{RefundID: refund.ID, Status: string(refund.Status)}, nil
}

// translate maps Stripe errors onto the gateway error contract.
func (g *StripeGateway) translate(op string, err error) error {
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		return fmt.Errorf("stripe %s: %w", op, err)
	}

	switch stripeErr.Type {
	case stripe.ErrorTypeCard, stripe.ErrorTypeInvalidRequest:
		return fmt.Errorf("%w: %s", apperrors.ErrPaymentFailed, stripeErr.Msg)
	default:
		if stripeErr.HTTPStatusCode == 401 {
			g.logger.Error("Stripe rejected the API key", slog.String("alert", "payment_gateway_not_configured"))
			return fmt.Errorf("%w: %s", apperrors.ErrGatewayNotConfigured, stripeErr.Msg)
		}
		return fmt.Errorf("stripe %s: %w", op, err)
	}
}

// withSessionPlaceholder appends Stripe's session id template so the return page can verify it.
func withSessionPlaceholder(returnURL string) string {
	u, err := url.Parse(returnURL)
	if err != nil {
		return returnURL
	}
	sep := "?"
	if u.RawQuery != "" {
		sep = "&"
	}
	return returnURL + sep + "session_id={CHECKOUT_SESSION_ID}"
}
