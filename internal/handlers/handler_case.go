package handlers

import (
	"net/http"

	"github.com/SscSPs/tax_filing_app/internal/core/domain"
	portssvc "github.com/SscSPs/tax_filing_app/internal/core/ports/services"
	"github.com/SscSPs/tax_filing_app/internal/dto"
	"github.com/SscSPs/tax_filing_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

type caseHandler struct {
	caseService portssvc.CaseSvcFacade
}

func newCaseHandler(cs portssvc.CaseSvcFacade) *caseHandler {
	return &caseHandler{caseService: cs}
}

// registerCaseRoutes registers case assignment and the productivity report.
func registerCaseRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := newCaseHandler(services.Case)

	cases := rg.Group("/cases", middleware.RequireModule(services.User, domain.ModuleCases))
	{
		cases.POST("/assign", h.assign)
		cases.POST("/transfer", h.transfer)
	}
	rg.GET("/productivity", middleware.RequireModule(services.User, domain.ModuleProductivity), h.productivity)
}

// assign godoc
// @Summary Assign a filing to a staff member
// @Tags cases
// @Accept json
// @Produce json
// @Param assignment body dto.AssignCaseRequest true "Assignment"
// @Success 200 {object} dto.CaseUpdateResponse "updated is false when the client has no filing for the year"
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Unknown client or assignee"
// @Security BearerAuth
// @Router /cases/assign [post]
func (h *caseHandler) assign(c *gin.Context) {
	var req dto.AssignCaseRequest
	if !bindJSON(c, &req) {
		return
	}

	filing, err := h.caseService.Assign(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to assign case")
		return
	}
	c.JSON(http.StatusOK, dto.CaseUpdateResponse{Updated: filing != nil, Filing: filing})
}

// transfer godoc
// @Summary Transfer a filing to another staff member
// @Tags cases
// @Accept json
// @Produce json
// @Param transfer body dto.TransferCaseRequest true "Transfer"
// @Success 200 {object} dto.CaseUpdateResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /cases/transfer [post]
func (h *caseHandler) transfer(c *gin.Context) {
	var req dto.TransferCaseRequest
	if !bindJSON(c, &req) {
		return
	}

	filing, err := h.caseService.Transfer(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to transfer case")
		return
	}
	c.JSON(http.StatusOK, dto.CaseUpdateResponse{Updated: filing != nil, Filing: filing})
}

// productivity godoc
// @Summary Staff productivity report
// @Tags cases
// @Produce json
// @Param period query string false "week, month or year" default(month)
// @Success 200 {object} dto.ProductivityResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /productivity [get]
func (h *caseHandler) productivity(c *gin.Context) {
	var params dto.ProductivityParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid period: must be week, month or year"})
		return
	}

	users, err := h.caseService.Productivity(c.Request.Context(), params.Period)
	if err != nil {
		respondError(c, err, "Failed to compute productivity")
		return
	}
	if users == nil {
		users = []domain.UserProductivity{}
	}
	c.JSON(http.StatusOK, dto.ProductivityResponse{Period: params.Period, Users: users})
}
