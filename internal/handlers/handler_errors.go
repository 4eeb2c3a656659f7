package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/SscSPs/tax_filing_app/internal/apperrors"
	"github.com/SscSPs/tax_filing_app/internal/core/domain"
	"github.com/SscSPs/tax_filing_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError maps a service error onto its status code. Server-side failures are logged
// and answered with a generic message so internals never leak to the caller.
func respondError(c *gin.Context, err error, action string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	status := apperrors.StatusCode(err)

	var appErr *apperrors.AppError
	hasAppErr := errors.As(err, &appErr) && appErr.Message != ""

	if status >= http.StatusInternalServerError {
		logger.Error(action, slog.String("error", err.Error()))
		msg := "Internal server error"
		if hasAppErr {
			msg = appErr.Message
		}
		c.JSON(status, ErrorResponse{Error: msg})
		return
	}

	logger.Warn(action, slog.String("error", err.Error()), slog.Int("status", status))
	msg := err.Error()
	if hasAppErr {
		msg = appErr.Message
	}
	c.JSON(status, ErrorResponse{Error: msg})
}

// requirePrincipal reads the caller set by AuthMiddleware and answers 401 when it is missing.
func requirePrincipal(c *gin.Context) (domain.Principal, bool) {
	p, ok := middleware.GetPrincipalFromContext(c)
	if !ok {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Principal not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return domain.Principal{}, false
	}
	return p, true
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Failed to bind JSON", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return false
	}
	return true
}

func yearParam(c *gin.Context) (int, bool) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid tax year"})
		return 0, false
	}
	return year, true
}
