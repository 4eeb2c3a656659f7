package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/SscSPs/tax_filing_app/internal/apperrors"
	"github.com/SscSPs/tax_filing_app/internal/core/domain"
	portsrepo "github.com/SscSPs/tax_filing_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/tax_filing_app/internal/core/ports/services"
	"github.com/SscSPs/tax_filing_app/internal/dto"
	"github.com/SscSPs/tax_filing_app/internal/utils"
	"github.com/google/uuid"
)

type userService struct {
	BaseService
	userRepo portsrepo.UserRepositoryFacade
}

// UserServiceOption is a functional option for configuring the user service
type UserServiceOption func(*userService)

// WithUserClock replaces the service clock.
func WithUserClock(now func() time.Time) UserServiceOption {
	return func(s *userService) { s.now = now }
}

func NewUserService(userRepo portsrepo.UserRepositoryFacade, options ...UserServiceOption) portssvc.UserSvcFacade {
	s := &userService{
		BaseService: newBaseService(),
		userRepo:    userRepo,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

var _ portssvc.UserSvcFacade = (*userService)(nil)

func (s *userService) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*domain.User, *domain.UserPermissions, error) {
	if !req.Role.IsStaff() {
		return nil, nil, fmt.Errorf("%w: role %q cannot be provisioned here", apperrors.ErrValidation, req.Role)
	}
	modules := req.Modules
	if len(modules) == 0 {
		modules = slices.Clone(domain.AllModules)
	}
	if err := validateModules(modules); err != nil {
		return nil, nil, err
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.Now()
	user := domain.User{
		UserID:       uuid.NewString(),
		Email:        normalizeEmail(req.Email),
		Name:         req.Name,
		Role:         req.Role,
		PasswordHash: hash,
		AuthProvider: domain.ProviderLocal,
		Timestamps:   domain.Timestamps{CreatedAt: now, UpdatedAt: now},
	}
	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		return nil, nil, fmt.Errorf("failed to create user in service: %w", err)
	}

	perms := domain.UserPermissions{
		UserID:     user.UserID,
		Email:      user.Email,
		Name:       user.Name,
		Role:       user.Role,
		Modules:    modules,
		IsActive:   true,
		Timestamps: user.Timestamps,
	}
	if err := s.userRepo.CreatePermissions(ctx, perms); err != nil {
		s.LogError(ctx, err, "User created without permissions", slog.String("user_id", user.UserID))
		return nil, nil, fmt.Errorf("failed to provision permissions: %w", err)
	}

	s.LogInfo(ctx, "Staff user created", slog.String("user_id", user.UserID), slog.String("role", string(user.Role)))
	return &user, &perms, nil
}

func (s *userService) EnsureBootstrapAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	_, err := s.userRepo.FindUserByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}

	_, _, err = s.CreateUser(ctx, dto.CreateUserRequest{
		Email:    email,
		Name:     "Administrator",
		Password: password,
		Role:     domain.RoleAdmin,
	})
	if errors.Is(err, apperrors.ErrDuplicate) {
		return nil
	}
	return err
}

func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID in service: %w", err)
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]domain.UserPermissions, error) {
	return s.userRepo.ListPermissions(ctx)
}

func (s *userService) GetPermissions(ctx context.Context, userID string) (*domain.UserPermissions, error) {
	return s.userRepo.FindPermissions(ctx, userID)
}

func (s *userService) UpdatePermissions(ctx context.Context, userID string, req dto.UpdatePermissionsRequest) (*domain.UserPermissions, error) {
	if req.Role != nil && !req.Role.IsStaff() {
		return nil, fmt.Errorf("%w: role %q is not a staff role", apperrors.ErrValidation, *req.Role)
	}
	if req.Modules != nil {
		if err := validateModules(*req.Modules); err != nil {
			return nil, err
		}
	}

	perms, err := s.userRepo.UpdatePermissions(ctx, userID, func(p *domain.UserPermissions) error {
		if req.Role != nil {
			p.Role = *req.Role
		}
		if req.Modules != nil {
			p.Modules = slices.Clone(*req.Modules)
		}
		if req.IsActive != nil {
			p.IsActive = *req.IsActive
		}
		p.Touch(s.Now())
		return nil
	})
	if err != nil {
		return nil, err
	}

	if req.Role != nil {
		if _, err := s.userRepo.UpdateUser(ctx, userID, func(u *domain.User) error {
			u.Role = *req.Role
			u.Touch(s.Now())
			return nil
		}); err != nil {
			return nil, fmt.Errorf("failed to sync user role: %w", err)
		}
	}
	return perms, nil
}

func (s *userService) AuthenticateUser(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByEmail(ctx, email)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if user.PasswordHash == "" || !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperrors.ErrUnauthorized
	}

	if user.Role.IsStaff() {
		perms, err := s.userRepo.FindPermissions(ctx, user.UserID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		if perms != nil && !perms.IsActive {
			return nil, fmt.Errorf("%w: account disabled", apperrors.ErrUnauthorized)
		}
	}
	return user, nil
}

func validateModules(modules []domain.Module) error {
	for _, m := range modules {
		if !slices.Contains(domain.AllModules, m) {
			return fmt.Errorf("%w: unknown module %q", apperrors.ErrValidation, m)
		}
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
