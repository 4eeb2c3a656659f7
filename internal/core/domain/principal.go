package domain

// Principal is the authenticated caller of an operation.
type Principal struct {
	UserID string
	Role   UserRole
	// ClientID is set for client users and names the client record they own.
	ClientID string
}

// IsStaff reports whether the caller works for the firm.
func (p Principal) IsStaff() bool {
	return p.Role.IsStaff()
}

// CanAccessClient reports whether the caller may read or act on the client's records.
// Staff module checks happen at the route level.
func (p Principal) CanAccessClient(clientID string) bool {
	return p.IsStaff() || (p.ClientID != "" && p.ClientID == clientID)
}
