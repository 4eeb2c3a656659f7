package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/tax_filing_app/internal/apperrors"
	"github.com/SscSPs/tax_filing_app/internal/core/domain"
	"github.com/SscSPs/tax_filing_app/internal/core/notifications"
	portsrepo "github.com/SscSPs/tax_filing_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/tax_filing_app/internal/core/ports/services"
	"github.com/SscSPs/tax_filing_app/internal/platform/config"
	"github.com/SscSPs/tax_filing_app/internal/utils"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"
)

// tokenService issues the JWT access tokens checked by the auth middleware.
type tokenService struct {
	cfg *config.Config
}

// NewTokenService creates a new instance of tokenService.
func NewTokenService(cfg *config.Config) portssvc.TokenSvc {
	return &tokenService{cfg: cfg}
}

// GenerateAccessToken creates a new JWT access token for the given user.
func (s *tokenService) GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	expiryTime := time.Now().Add(s.cfg.JWTExpiryDuration)

	accessToken, err := utils.GenerateJWT(user, s.cfg.JWTSecret, s.cfg.JWTExpiryDuration, s.cfg.JWTIssuer)
	if err != nil {
		return "", time.Time{}, err
	}
	return accessToken, expiryTime, nil
}

// googleIdentityProvider runs the OAuth code exchange and validates the returned ID token.
type googleIdentityProvider struct {
	clientID     string
	oauth2Config *oauth2.Config
}

// NewGoogleIdentityProvider returns nil when no Google client is configured.
func NewGoogleIdentityProvider(cfg *config.Config) portssvc.GoogleIdentityProvider {
	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
		return nil
	}
	return &googleIdentityProvider{
		clientID: cfg.GoogleClientID,
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"openid", "https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"},
			Endpoint:     google.Endpoint,
		},
	}
}

func (p *googleIdentityProvider) LoginURL(state string) string {
	return p.oauth2Config.AuthCodeURL(state)
}

func (p *googleIdentityProvider) ExchangeCode(ctx context.Context, code string) (*domain.GoogleIdentity, error) {
	token, err := p.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to exchange oauth code for token: %v", apperrors.ErrUnauthorized, err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, fmt.Errorf("%w: google response carried no id_token", apperrors.ErrUnauthorized)
	}

	payload, err := idtoken.Validate(ctx, rawIDToken, p.clientID)
	if err != nil {
		return nil, fmt.Errorf("%w: google ID token validation failed: %v", apperrors.ErrUnauthorized, err)
	}

	email, _ := payload.Claims["email"].(string)
	verified, _ := payload.Claims["email_verified"].(bool)
	if email == "" || !verified {
		return nil, fmt.Errorf("%w: google account email is not verified", apperrors.ErrUnauthorized)
	}
	name, _ := payload.Claims["name"].(string)
	locale, _ := payload.Claims["locale"].(string)

	return &domain.GoogleIdentity{
		Subject: payload.Subject,
		Email:   email,
		Name:    name,
		Locale:  locale,
	}, nil
}

type authService struct {
	BaseService
	users    portssvc.UserSvcFacade
	userRepo portsrepo.UserRepositoryFacade
	clients  portsrepo.ClientWriter
	tokens   portssvc.TokenSvc
	google   portssvc.GoogleIdentityProvider
}

// AuthServiceOption is a functional option for configuring the auth service
type AuthServiceOption func(*authService)

// WithGoogleIdentityProvider enables Google sign-in. A nil provider leaves it disabled.
func WithGoogleIdentityProvider(provider portssvc.GoogleIdentityProvider) AuthServiceOption {
	return func(s *authService) { s.google = provider }
}

// WithAuthClock replaces the service clock.
func WithAuthClock(now func() time.Time) AuthServiceOption {
	return func(s *authService) { s.now = now }
}

func NewAuthService(
	users portssvc.UserSvcFacade,
	userRepo portsrepo.UserRepositoryFacade,
	clients portsrepo.ClientWriter,
	tokens portssvc.TokenSvc,
	options ...AuthServiceOption,
) portssvc.AuthSvcFacade {
	s := &authService{
		BaseService: newBaseService(),
		users:       users,
		userRepo:    userRepo,
		clients:     clients,
		tokens:      tokens,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

var _ portssvc.AuthSvcFacade = (*authService)(nil)

func (s *authService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.users.AuthenticateUser(ctx, email, password)
	if err != nil {
		s.LogWarn(ctx, "Login rejected", slog.String("error", err.Error()))
		return "", nil, err
	}
	if !user.Role.IsStaff() {
		return "", nil, fmt.Errorf("%w: client accounts sign in with Google", apperrors.ErrUnauthorized)
	}
	return s.issue(ctx, user)
}

func (s *authService) GoogleLoginURL(ctx context.Context) (string, string, error) {
	if s.google == nil {
		return "", "", apperrors.NewAppError(http.StatusServiceUnavailable, "google sign-in is not configured", nil)
	}
	state, err := utils.GenerateSecureRandomString(16)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate state string for OAuth: %w", err)
	}
	return s.google.LoginURL(state), state, nil
}

func (s *authService) ExchangeGoogleCode(ctx context.Context, code string) (string, *domain.User, error) {
	if s.google == nil {
		return "", nil, apperrors.NewAppError(http.StatusServiceUnavailable, "google sign-in is not configured", nil)
	}
	identity, err := s.google.ExchangeCode(ctx, code)
	if err != nil {
		s.LogWarn(ctx, "Google code exchange failed", slog.String("error", err.Error()))
		return "", nil, err
	}

	user, err := s.userRepo.FindUserByEmail(ctx, identity.Email)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrNotFound):
		user, err = s.registerClient(ctx, identity)
		if err != nil {
			return "", nil, err
		}
	default:
		return "", nil, err
	}
	return s.issue(ctx, user)
}

// registerClient creates the client user and its client record with default filings.
func (s *authService) registerClient(ctx context.Context, identity *domain.GoogleIdentity) (*domain.User, error) {
	now := s.Now()
	stamps := domain.Timestamps{CreatedAt: now, UpdatedAt: now}
	user := domain.User{
		UserID:         uuid.NewString(),
		Email:          normalizeEmail(identity.Email),
		Name:           identity.Name,
		Role:           domain.RoleClient,
		AuthProvider:   domain.ProviderGoogle,
		ProviderUserID: identity.Subject,
		ClientID:       uuid.NewString(),
		Timestamps:     stamps,
	}

	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			// Lost a race with a concurrent first sign-in.
			return s.userRepo.FindUserByEmail(ctx, identity.Email)
		}
		return nil, fmt.Errorf("failed to create client user: %w", err)
	}

	client := domain.Client{
		ClientID:   user.ClientID,
		UserID:     user.UserID,
		Email:      user.Email,
		Name:       user.Name,
		Language:   string(notifications.ParseLanguage(identity.Locale)),
		TaxFilings: domain.DefaultFilings(now),
		Timestamps: stamps,
	}
	if err := s.clients.CreateClient(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to create client record: %w", err)
	}

	s.LogInfo(ctx, "Client registered through Google", slog.String("user_id", user.UserID), slog.String("client_id", client.ClientID))
	return &user, nil
}

func (s *authService) issue(ctx context.Context, user *domain.User) (string, *domain.User, error) {
	token, _, err := s.tokens.GenerateAccessToken(ctx, user)
	if err != nil {
		s.LogError(ctx, err, "Failed to generate access token", slog.String("user_id", user.UserID))
		return "", nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	return token, user, nil
}
