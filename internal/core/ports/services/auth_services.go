package services

import (
	"context"
	"time"

	"github.com/SscSPs/tax_filing_app/internal/core/domain"
)

// TokenSvc issues access tokens.
type TokenSvc interface {
	GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error)
}

// GoogleIdentityProvider turns an OAuth authorization code into a verified identity.
type GoogleIdentityProvider interface {
	// LoginURL returns the consent page URL carrying state.
	LoginURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*domain.GoogleIdentity, error)
}

// AuthSvcFacade signs staff and clients in.
type AuthSvcFacade interface {
	// Login checks staff credentials and returns an access token.
	Login(ctx context.Context, email, password string) (string, *domain.User, error)

	// GoogleLoginURL returns the consent page and the CSRF state it carries.
	GoogleLoginURL(ctx context.Context) (string, string, error)

	// ExchangeGoogleCode signs a client in with Google, creating the account and client
	// record with default filings on first sign-in.
	ExchangeGoogleCode(ctx context.Context, code string) (string, *domain.User, error)
}
