package services

import (
	"context"

	"github.com/SscSPs/tax_filing_app/internal/core/domain"
	"github.com/SscSPs/tax_filing_app/internal/dto"
)

// UserReaderSvc defines read operations for user data
type UserReaderSvc interface {
	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)

	// ListUsers returns the permissions of every staff account.
	ListUsers(ctx context.Context) ([]domain.UserPermissions, error)
}

// UserWriterSvc defines write operations for user data
type UserWriterSvc interface {
	// CreateUser creates a staff account and provisions its permissions in the same call.
	CreateUser(ctx context.Context, req dto.CreateUserRequest) (*domain.User, *domain.UserPermissions, error)

	// EnsureBootstrapAdmin creates an admin account when none exists with that email.
	EnsureBootstrapAdmin(ctx context.Context, email, password string) error
}

// PermissionsSvc reads and edits authorization descriptors. Reads never create records.
type PermissionsSvc interface {
	GetPermissions(ctx context.Context, userID string) (*domain.UserPermissions, error)
	UpdatePermissions(ctx context.Context, userID string, req dto.UpdatePermissionsRequest) (*domain.UserPermissions, error)
}

// UserAuthSvc defines operations for user authentication
type UserAuthSvc interface {
	// AuthenticateUser authenticates a user with email and password.
	AuthenticateUser(ctx context.Context, email, password string) (*domain.User, error)
}

// UserSvcFacade combines all user-related service interfaces
type UserSvcFacade interface {
	UserReaderSvc
	UserWriterSvc
	PermissionsSvc
	UserAuthSvc
}
