package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/tax_filing_app/internal/core/ports/services"
	"github.com/SscSPs/tax_filing_app/internal/dto"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	limitergin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// loginRate bounds password and code exchange attempts per client IP.
const loginRate = "5-M"

// AuthHandler handles authentication related requests.
type AuthHandler struct {
	authService portssvc.AuthSvcFacade
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(as portssvc.AuthSvcFacade) *AuthHandler {
	return &AuthHandler{authService: as}
}

// registerAuthRoutes sets up the public authentication routes.
func registerAuthRoutes(rg *gin.RouterGroup, authService portssvc.AuthSvcFacade) {
	h := NewAuthHandler(authService)

	rate, _ := limiter.NewRateFromFormatted(loginRate)
	ipLimiter := limiter.New(memory.NewStore(), rate)
	limitMiddleware := limitergin.NewMiddleware(ipLimiter)

	auth := rg.Group("/auth")
	{
		auth.POST("/login", limitMiddleware, h.Login)
		auth.GET("/google/login-url", h.GoogleLoginURL)
		auth.POST("/google/exchange-code", limitMiddleware, h.ExchangeGoogleCode)
	}
}

// Login godoc
// @Summary Staff login
// @Description Authenticates a staff member and returns a JWT token.
// @Tags auth
// @Accept json
// @Produce json
// @Param login body dto.LoginRequest true "Login Credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	token, user, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err, "Login failed")
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{Token: token, User: dto.ToUserResponse(user)})
}

// GoogleLoginURL godoc
// @Summary Google consent URL
// @Description Returns the Google consent page and the state value the frontend must check on return.
// @Tags auth
// @Produce json
// @Success 200 {object} dto.GoogleLoginURLResponse
// @Failure 503 {object} ErrorResponse "Google sign-in not configured"
// @Router /auth/google/login-url [get]
func (h *AuthHandler) GoogleLoginURL(c *gin.Context) {
	url, state, err := h.authService.GoogleLoginURL(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to build Google login URL")
		return
	}
	c.JSON(http.StatusOK, dto.GoogleLoginURLResponse{URL: url, State: state})
}

// ExchangeGoogleCode godoc
// @Summary Exchange a Google authorization code
// @Description Signs a client in with Google. The client account and its default filings are created on first sign-in.
// @Tags auth
// @Accept json
// @Produce json
// @Param code body dto.GoogleExchangeRequest true "Authorization code"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse "Google sign-in not configured"
// @Router /auth/google/exchange-code [post]
func (h *AuthHandler) ExchangeGoogleCode(c *gin.Context) {
	var req dto.GoogleExchangeRequest
	if !bindJSON(c, &req) {
		return
	}

	token, user, err := h.authService.ExchangeGoogleCode(c.Request.Context(), req.Code)
	if err != nil {
		respondError(c, err, "Google code exchange failed")
		return
	}
	c.JSON(http.StatusOK, dto.LoginResponse{Token: token, User: dto.ToUserResponse(user)})
}
