package dto

// LoginRequest is the staff email/password login body.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// GoogleExchangeRequest carries the authorization code returned by Google.
type GoogleExchangeRequest struct {
	Code string `json:"code" binding:"required"`
}

// GoogleLoginURLResponse is the consent page to redirect to and the CSRF state to echo back.
type GoogleLoginURLResponse struct {
	URL   string `json:"url"`
	State string `json:"state"`
}

// LoginResponse represents the response for a successful login.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}
