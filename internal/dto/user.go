package dto

import (
	"github.com/SscSPs/tax_filing_app/internal/core/domain"
)

// CreateUserRequest creates a staff account and provisions its permissions.
type CreateUserRequest struct {
	Email    string          `json:"email" binding:"required,email"`
	Name     string          `json:"name" binding:"required"`
	Password string          `json:"password" binding:"required,min=8"`
	Role     domain.UserRole `json:"role" binding:"required,oneof=admin accountant viewer"`
	// Modules defaults to every module when omitted.
	Modules []domain.Module `json:"modules"`
}

// UpdatePermissionsRequest defines the permission fields that may change.
// Using pointers to differentiate between omitted fields and zero-value fields.
type UpdatePermissionsRequest struct {
	Role     *domain.UserRole `json:"role" binding:"omitempty,oneof=admin accountant viewer"`
	Modules  *[]domain.Module `json:"modules"`
	IsActive *bool            `json:"isActive"`
}

// ListUsersResponse wraps the staff roster.
type ListUsersResponse struct {
	Users []domain.UserPermissions `json:"users"`
}

// CreateUserResponse returns the new account and its provisioned permissions.
type CreateUserResponse struct {
	User        UserResponse           `json:"user"`
	Permissions domain.UserPermissions `json:"permissions"`
}
