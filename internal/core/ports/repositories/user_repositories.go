package repositories

import (
	"context"

	"github.com/SscSPs/tax_filing_app/internal/core/domain"
)

// UserReader defines read operations for user data
type UserReader interface {
	// FindUserByID retrieves a specific user by their ID.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)

	// FindUserByEmail looks a user up through the email index.
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// FindUsers lists every stored user ordered by id.
	FindUsers(ctx context.Context) ([]domain.User, error)
}

// UserWriter defines write operations for user data
type UserWriter interface {
	// SaveUser persists a new user and claims its email. Returns apperrors.ErrDuplicate when either is taken.
	SaveUser(ctx context.Context, user domain.User) error

	// UpdateUser applies mutate to the stored user under compare-and-swap.
	UpdateUser(ctx context.Context, userID string, mutate func(*domain.User) error) (*domain.User, error)
}

// PermissionsRepository stores the authorization descriptors of staff users.
type PermissionsRepository interface {
	FindPermissions(ctx context.Context, userID string) (*domain.UserPermissions, error)
	ListPermissions(ctx context.Context) ([]domain.UserPermissions, error)

	// CreatePermissions provisions a record. Returns apperrors.ErrDuplicate when one already exists.
	CreatePermissions(ctx context.Context, perms domain.UserPermissions) error

	UpdatePermissions(ctx context.Context, userID string, mutate func(*domain.UserPermissions) error) (*domain.UserPermissions, error)
}

// UserRepositoryFacade combines all user-related repository interfaces
type UserRepositoryFacade interface {
	UserReader
	UserWriter
	PermissionsRepository
}
