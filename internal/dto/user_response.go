package dto

import "github.com/SscSPs/tax_filing_app/internal/core/domain"

// UserResponse is the public view of a user; it never carries the password hash.
type UserResponse struct {
	UserID   string          `json:"id"`
	Email    string          `json:"email"`
	Name     string          `json:"name"`
	Role     domain.UserRole `json:"role"`
	ClientID string          `json:"clientId,omitempty"`
}

func ToUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		UserID:   user.UserID,
		Email:    user.Email,
		Name:     user.Name,
		Role:     user.Role,
		ClientID: user.ClientID,
	}
}
