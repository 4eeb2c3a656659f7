package domain

import "slices"

// UserRole is the role of an authenticated principal.
type UserRole string

const (
	RoleAdmin      UserRole = "admin"
	RoleAccountant UserRole = "accountant"
	RoleViewer     UserRole = "viewer"
	RoleClient     UserRole = "client"
)

// IsStaff reports whether the role belongs to the firm rather than to a client.
func (r UserRole) IsStaff() bool {
	return r == RoleAdmin || r == RoleAccountant || r == RoleViewer
}

// MessageRole returns the side of a message thread the role speaks for.
func (r UserRole) MessageRole() SenderRole {
	if r.IsStaff() {
		return SenderAdmin
	}
	return SenderClient
}

// Module is a section of the staff dashboard that can be granted independently.
type Module string

const (
	ModuleClients      Module = "clients"
	ModuleMessages     Module = "messages"
	ModuleCases        Module = "cases"
	ModuleProductivity Module = "productivity"
	ModuleUsers        Module = "users"
	ModulePayments     Module = "payments"
	ModuleBookkeeping  Module = "bookkeeping"
)

// AllModules lists every module, in dashboard order.
var AllModules = []Module{
	ModuleClients,
	ModuleMessages,
	ModuleCases,
	ModuleProductivity,
	ModuleUsers,
	ModulePayments,
	ModuleBookkeeping,
}

// User is the stored account at user:<id>.
type User struct {
	UserID         string   `json:"id"`
	Email          string   `json:"email"`
	Name           string   `json:"name"`
	Role           UserRole `json:"role"`
	PasswordHash   string   `json:"passwordHash,omitempty"`
	AuthProvider   string   `json:"authProvider"`
	ProviderUserID string   `json:"providerUserId,omitempty"`
	ClientID       string   `json:"clientId,omitempty"`
	Timestamps
}

const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

// UserPermissions is the authorization descriptor stored at user-permissions:<id>.
type UserPermissions struct {
	UserID   string   `json:"userId"`
	Email    string   `json:"email"`
	Name     string   `json:"name"`
	Role     UserRole `json:"role"`
	Modules  []Module `json:"modules"`
	IsActive bool     `json:"isActive"`
	Timestamps
}

// Allows reports whether the permissions grant access to module.
func (p *UserPermissions) Allows(module Module) bool {
	if p == nil || !p.IsActive {
		return false
	}
	if p.Role == RoleAdmin {
		return true
	}
	return slices.Contains(p.Modules, module)
}

// DefaultAdminPermissions is the full grant provisioned for a staff account created without explicit modules.
func DefaultAdminPermissions(user User) UserPermissions {
	return UserPermissions{
		UserID:     user.UserID,
		Email:      user.Email,
		Name:       user.Name,
		Role:       RoleAdmin,
		Modules:    slices.Clone(AllModules),
		IsActive:   true,
		Timestamps: user.Timestamps,
	}
}

// GoogleIdentity is the verified identity carried by a Google ID token.
type GoogleIdentity struct {
	Subject string
	Email   string
	Name    string
	Locale  string
}
