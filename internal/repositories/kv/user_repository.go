package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/SscSPs/tax_filing_app/internal/apperrors"
	"github.com/SscSPs/tax_filing_app/internal/core/domain"
	portsrepo "github.com/SscSPs/tax_filing_app/internal/core/ports/repositories"
	json "github.com/goccy/go-json"
)

type userRepository struct {
	store portsrepo.KVStore
}

func newUserRepository(store portsrepo.KVStore) *userRepository {
	return &userRepository{store: store}
}

// Ensure userRepository implements portsrepo.UserRepositoryFacade
var _ portsrepo.UserRepositoryFacade = (*userRepository)(nil)

func (r *userRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, _, err := getJSON[domain.User](ctx, r.store, userKey(userID))
	return user, err
}

func (r *userRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	userID, _, err := getJSON[string](ctx, r.store, userEmailKey(email))
	if err != nil {
		return nil, err
	}
	return r.FindUserByID(ctx, *userID)
}

func (r *userRepository) FindUsers(ctx context.Context) ([]domain.User, error) {
	entries, err := r.store.ListByPrefix(ctx, userPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	users := make([]domain.User, 0, len(entries))
	for _, e := range entries {
		var u domain.User
		if err := json.Unmarshal(e.Value, &u); err != nil {
			return nil, fmt.Errorf("failed to decode %q: %w", e.Key, err)
		}
		users = append(users, u)
	}
	return users, nil
}

func (r *userRepository) SaveUser(ctx context.Context, user domain.User) error {
	if user.UserID == "" || strings.TrimSpace(user.Email) == "" {
		return fmt.Errorf("%w: user id and email are required", apperrors.ErrValidation)
	}

	emailKey := userEmailKey(user.Email)
	if err := createJSON(ctx, r.store, emailKey, user.UserID); err != nil {
		return err
	}
	if err := createJSON(ctx, r.store, userKey(user.UserID), user); err != nil {
		// Release the email claim so the address can be used again.
		if delErr := r.store.Delete(ctx, emailKey); delErr != nil {
			return errors.Join(err, delErr)
		}
		return err
	}
	return nil
}

func (r *userRepository) UpdateUser(ctx context.Context, userID string, mutate func(*domain.User) error) (*domain.User, error) {
	user, _, err := mutateJSON(ctx, r.store, userKey(userID), false, func(u *domain.User) (bool, error) {
		id, email := u.UserID, u.Email
		if err := mutate(u); err != nil {
			return false, err
		}
		if u.UserID != id || !strings.EqualFold(u.Email, email) {
			return false, fmt.Errorf("%w: user id and email cannot be changed", apperrors.ErrValidation)
		}
		return true, nil
	})
	return user, err
}

func (r *userRepository) FindPermissions(ctx context.Context, userID string) (*domain.UserPermissions, error) {
	perms, _, err := getJSON[domain.UserPermissions](ctx, r.store, permissionsKey(userID))
	return perms, err
}

func (r *userRepository) ListPermissions(ctx context.Context) ([]domain.UserPermissions, error) {
	entries, err := r.store.ListByPrefix(ctx, permissionsPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list permissions: %w", err)
	}
	out := make([]domain.UserPermissions, 0, len(entries))
	for _, e := range entries {
		var p domain.UserPermissions
		if err := json.Unmarshal(e.Value, &p); err != nil {
			return nil, fmt.Errorf("failed to decode %q: %w", e.Key, err)
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *userRepository) CreatePermissions(ctx context.Context, perms domain.UserPermissions) error {
	return createJSON(ctx, r.store, permissionsKey(perms.UserID), perms)
}

func (r *userRepository) UpdatePermissions(ctx context.Context, userID string, mutate func(*domain.UserPermissions) error) (*domain.UserPermissions, error) {
	perms, _, err := mutateJSON(ctx, r.store, permissionsKey(userID), false, always(mutate))
	return perms, err
}
