package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/tax_filing_app/internal/core/domain"
	portssvc "github.com/SscSPs/tax_filing_app/internal/core/ports/services"
	"github.com/SscSPs/tax_filing_app/internal/dto"
	"github.com/SscSPs/tax_filing_app/internal/middleware"
	"github.com/SscSPs/tax_filing_app/internal/utils"
	"github.com/gin-gonic/gin"
)

type filingHandler struct {
	filingService portssvc.FilingSvcFacade
	analytics     *utils.PosthogClientWrapper
}

func newFilingHandler(fs portssvc.FilingSvcFacade, analytics *utils.PosthogClientWrapper) *filingHandler {
	return &filingHandler{filingService: fs, analytics: analytics}
}

func registerFilingRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer, analytics *utils.PosthogClientWrapper) {
	h := newFilingHandler(services.Filing, analytics)

	filings := rg.Group("/filings/:clientId", middleware.RequireModuleForStaff(services.User, domain.ModuleClients))
	{
		filings.GET("", h.getFilings)
		filings.POST("/:year/documents", h.recordDocument)
		filings.POST("/:year/advance", h.advance)
		filings.POST("/:year/complete", h.complete)
	}
}

// getFilings godoc
// @Summary List a client's filings
// @Description Returns the filings, repaired when the stored record was malformed. A notice describes any repair.
// @Tags filings
// @Produce json
// @Param clientId path string true "Client ID"
// @Success 200 {object} dto.FilingsResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /filings/{clientId} [get]
func (h *filingHandler) getFilings(c *gin.Context) {
	caller, ok := requirePrincipal(c)
	if !ok {
		return
	}

	client, notice, err := h.filingService.GetFilings(c.Request.Context(), caller, c.Param("clientId"))
	if err != nil {
		respondError(c, err, "Failed to get filings")
		return
	}
	filings := client.TaxFilings
	if filings == nil {
		filings = []domain.TaxFiling{}
	}
	c.JSON(http.StatusOK, dto.FilingsResponse{ClientID: client.ClientID, Filings: filings, Notice: notice})
}

// recordDocument godoc
// @Summary Attach a document to a filing
// @Description Accepted only once the deposit is paid.
// @Tags filings
// @Accept json
// @Produce json
// @Param clientId path string true "Client ID"
// @Param year path int true "Tax year"
// @Param document body dto.RecordDocumentRequest true "Uploaded document"
// @Success 201 {object} domain.TaxFiling
// @Failure 400 {object} ErrorResponse "Deposit not paid"
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /filings/{clientId}/{year}/documents [post]
func (h *filingHandler) recordDocument(c *gin.Context) {
	caller, ok := requirePrincipal(c)
	if !ok {
		return
	}
	year, ok := yearParam(c)
	if !ok {
		return
	}
	var req dto.RecordDocumentRequest
	if !bindJSON(c, &req) {
		return
	}

	filing, err := h.filingService.RecordDocument(c.Request.Context(), caller, c.Param("clientId"), year, req)
	if err != nil {
		respondError(c, err, "Failed to record document")
		return
	}
	c.JSON(http.StatusCreated, filing)
}

// advance godoc
// @Summary Advance a filing
// @Description Staff move a filing to calculation (3) or report ready (4). A total price may be set with step 4.
// @Tags filings
// @Accept json
// @Produce json
// @Param clientId path string true "Client ID"
// @Param year path int true "Tax year"
// @Param step body dto.AdvanceFilingRequest true "Target step"
// @Success 200 {object} domain.TaxFiling
// @Failure 400 {object} ErrorResponse "Transition not allowed"
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /filings/{clientId}/{year}/advance [post]
func (h *filingHandler) advance(c *gin.Context) {
	caller, ok := requirePrincipal(c)
	if !ok {
		return
	}
	year, ok := yearParam(c)
	if !ok {
		return
	}
	var req dto.AdvanceFilingRequest
	if !bindJSON(c, &req) {
		return
	}

	filing, err := h.filingService.Advance(c.Request.Context(), caller, c.Param("clientId"), year, req)
	if err != nil {
		respondError(c, err, "Failed to advance filing")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Filing advanced",
		slog.String("client_id", c.Param("clientId")), slog.Int("year", year), slog.Int("step", int(req.Step)))
	c.JSON(http.StatusOK, filing)
}

// complete godoc
// @Summary Complete a filed return
// @Description Marks the filing completed once the tax authority confirmed it.
// @Tags filings
// @Produce json
// @Param clientId path string true "Client ID"
// @Param year path int true "Tax year"
// @Success 200 {object} domain.TaxFiling
// @Failure 400 {object} ErrorResponse "Filing not submitted yet"
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /filings/{clientId}/{year}/complete [post]
func (h *filingHandler) complete(c *gin.Context) {
	caller, ok := requirePrincipal(c)
	if !ok {
		return
	}
	year, ok := yearParam(c)
	if !ok {
		return
	}

	filing, err := h.filingService.Complete(c.Request.Context(), caller, c.Param("clientId"), year)
	if err != nil {
		respondError(c, err, "Failed to complete filing")
		return
	}
	middleware.PosthogEvent(c, h.analytics, "filing_completed", map[string]any{"tax_year": year})
	c.JSON(http.StatusOK, filing)
}
