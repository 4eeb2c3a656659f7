package handlers

import (
	"net/http"

	"github.com/SscSPs/tax_filing_app/internal/core/domain"
	portssvc "github.com/SscSPs/tax_filing_app/internal/core/ports/services"
	"github.com/SscSPs/tax_filing_app/internal/dto"
	"github.com/SscSPs/tax_filing_app/internal/middleware"
	"github.com/SscSPs/tax_filing_app/internal/utils"
	"github.com/gin-gonic/gin"
)

type paymentHandler struct {
	paymentService portssvc.PaymentSvcFacade
	analytics      *utils.PosthogClientWrapper
}

func newPaymentHandler(ps portssvc.PaymentSvcFacade, analytics *utils.PosthogClientWrapper) *paymentHandler {
	return &paymentHandler{paymentService: ps, analytics: analytics}
}

// registerPaymentRoutes registers checkout and refund routes. Refunds need the payments module.
func registerPaymentRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer, analytics *utils.PosthogClientWrapper) {
	h := newPaymentHandler(services.Payment, analytics)

	payments := rg.Group("/payments", middleware.RequireModuleForStaff(services.User, domain.ModulePayments))
	{
		payments.POST("/create-initial-session", h.createInitialSession)
		payments.POST("/create-final-session", h.createFinalSession)
		payments.POST("/verify", h.verifySession)
		payments.POST("/refund", middleware.RequireModule(services.User, domain.ModulePayments), h.refund)
	}
}

// createInitialSession godoc
// @Summary Start the deposit checkout
// @Description Opens a hosted checkout for the initial deposit of a tax year.
// @Tags payments
// @Accept json
// @Produce json
// @Param session body dto.CreateInitialSessionRequest true "Tax year and return URL"
// @Success 200 {object} dto.SessionResponse
// @Failure 400 {object} ErrorResponse "Invalid input or deposit already paid"
// @Failure 402 {object} ErrorResponse "Payment declined"
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /payments/create-initial-session [post]
func (h *paymentHandler) createInitialSession(c *gin.Context) {
	caller, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req dto.CreateInitialSessionRequest
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.paymentService.CreateInitialSession(c.Request.Context(), caller, req)
	if err != nil {
		respondError(c, err, "Failed to create initial payment session")
		return
	}
	c.JSON(http.StatusOK, dto.SessionResponse{SessionID: session.SessionID, URL: session.RedirectURL})
}

// createFinalSession godoc
// @Summary Start the final balance checkout
// @Description Opens a hosted checkout for the remaining balance once the report is ready.
// @Tags payments
// @Accept json
// @Produce json
// @Param session body dto.CreateFinalSessionRequest true "Tax year, amount and return URL"
// @Success 200 {object} dto.SessionResponse
// @Failure 400 {object} ErrorResponse "Invalid input, wrong step or already paid"
// @Failure 402 {object} ErrorResponse "Payment declined"
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /payments/create-final-session [post]
func (h *paymentHandler) createFinalSession(c *gin.Context) {
	caller, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req dto.CreateFinalSessionRequest
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.paymentService.CreateFinalSession(c.Request.Context(), caller, req)
	if err != nil {
		respondError(c, err, "Failed to create final payment session")
		return
	}
	c.JSON(http.StatusOK, dto.SessionResponse{SessionID: session.SessionID, URL: session.RedirectURL})
}

// verifySession godoc
// @Summary Verify a returned checkout session
// @Description Applies a paid session to its filing. Verifying the same session again changes nothing.
// @Tags payments
// @Accept json
// @Produce json
// @Param session body dto.VerifySessionRequest true "Checkout session id"
// @Success 200 {object} dto.VerifySessionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /payments/verify [post]
func (h *paymentHandler) verifySession(c *gin.Context) {
	caller, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req dto.VerifySessionRequest
	if !bindJSON(c, &req) {
		return
	}

	verification, err := h.paymentService.VerifySession(c.Request.Context(), caller, req.SessionID)
	if err != nil {
		respondError(c, err, "Failed to verify payment session")
		return
	}

	if verification.Applied {
		middleware.PosthogEvent(c, h.analytics, "payment_applied", map[string]any{
			"payment_type": string(verification.Session.PaymentType),
			"tax_year":     verification.Session.TaxYear,
			"amount":       verification.Session.Amount.String(),
			"currency":     verification.Session.Currency,
		})
	}
	c.JSON(http.StatusOK, dto.ToVerifySessionResponse(verification))
}

// refund godoc
// @Summary Refund a payment
// @Description Refunds a captured payment, fully when no amount is given. Staff only.
// @Tags payments
// @Accept json
// @Produce json
// @Param refund body dto.RefundRequest true "Payment reference and optional amount"
// @Success 200 {object} domain.RefundResult
// @Failure 400 {object} ErrorResponse
// @Failure 402 {object} ErrorResponse "Refund rejected by the gateway"
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /payments/refund [post]
func (h *paymentHandler) refund(c *gin.Context) {
	caller, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req dto.RefundRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.paymentService.Refund(c.Request.Context(), caller, req)
	if err != nil {
		respondError(c, err, "Failed to refund payment")
		return
	}
	c.JSON(http.StatusOK, result)
}
