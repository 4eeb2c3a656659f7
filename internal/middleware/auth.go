package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/SscSPs/tax_filing_app/internal/apperrors"
	"github.com/SscSPs/tax_filing_app/internal/core/domain"
	"github.com/SscSPs/tax_filing_app/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware creates a Gin middleware handler that validates JWT tokens.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Warn("Authorization header missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			logger.Warn("Authorization header format invalid")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
			return
		}

		claims, err := utils.ParseAndValidateJWT(parts[1], jwtSecret)
		if err != nil {
			logger.Warn("Invalid token", slog.String("error", err.Error()))
			msg := "Invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "Token has expired"
			} else if errors.Is(err, jwt.ErrTokenNotValidYet) {
				msg = "Token not valid yet"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		userID := claims.Subject
		if userID == "" {
			logger.Error("User ID (subject) missing from valid token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			return
		}
		role := claims.Role
		if role == "" {
			role = domain.RoleClient
		}

		enrichedLogger := logger.With(slog.String("user_id", userID), slog.String("role", string(role)))
		ctx := WithPrincipal(c.Request.Context(), domain.Principal{UserID: userID, Role: role, ClientID: claims.ClientID})
		c.Request = c.Request.WithContext(WithLogger(ctx, enrichedLogger))

		c.Next()
	}
}

// PermissionsReader resolves the stored permissions of a staff user.
type PermissionsReader interface {
	GetPermissions(ctx context.Context, userID string) (*domain.UserPermissions, error)
}

// RequireModule lets through staff users whose active permissions include module.
// It must run after AuthMiddleware.
func RequireModule(perms PermissionsReader, module domain.Module) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())
		userID, _ := GetUserIDFromContext(c)
		role, _ := GetRoleFromContext(c)

		if !role.IsStaff() {
			logger.Warn("Non-staff user denied", slog.String("module", string(module)))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Staff access required"})
			return
		}

		p, err := perms.GetPermissions(c.Request.Context(), userID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to load permissions", slog.String("error", err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to check permissions"})
			return
		}
		if !p.Allows(module) {
			logger.Warn("Module access denied", slog.String("module", string(module)))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access to " + string(module) + " is not granted"})
			return
		}
		c.Next()
	}
}

// RequireModuleForStaff applies RequireModule to staff callers only. Clients pass through
// and are limited to their own records by the services.
func RequireModuleForStaff(perms PermissionsReader, module domain.Module) gin.HandlerFunc {
	staffCheck := RequireModule(perms, module)
	return func(c *gin.Context) {
		if role, _ := GetRoleFromContext(c); !role.IsStaff() {
			c.Next()
			return
		}
		staffCheck(c)
	}
}

// RequireModuleOrSelf lets staff read their own record through the route named by param
// and otherwise falls back to RequireModule.
func RequireModuleOrSelf(perms PermissionsReader, module domain.Module, param string) gin.HandlerFunc {
	staffCheck := RequireModule(perms, module)
	return func(c *gin.Context) {
		p, ok := GetPrincipalFromContext(c)
		if ok && p.IsStaff() && c.Param(param) == p.UserID {
			c.Next()
			return
		}
		staffCheck(c)
	}
}
