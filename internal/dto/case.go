package dto

import "github.com/SscSPs/tax_filing_app/internal/core/domain"

// AssignCaseRequest gives a filing to a staff member.
type AssignCaseRequest struct {
	ClientID   string `json:"clientId" binding:"required"`
	Year       int    `json:"year" binding:"required"`
	AssignedTo string `json:"assignedTo" binding:"required"`
}

// TransferCaseRequest moves a filing between staff members.
type TransferCaseRequest struct {
	ClientID   string `json:"clientId" binding:"required"`
	Year       int    `json:"year" binding:"required"`
	FromUserID string `json:"fromUserId"`
	ToUserID   string `json:"toUserId" binding:"required"`
	Reason     string `json:"reason" binding:"required"`
}

// CaseUpdateResponse reports whether a filing matched the requested year.
type CaseUpdateResponse struct {
	Updated bool              `json:"updated"`
	Filing  *domain.TaxFiling `json:"filing,omitempty"`
}

// ProductivityParams defines the query parameters of the productivity report.
type ProductivityParams struct {
	Period domain.ProductivityPeriod `form:"period,default=month" binding:"oneof=week month year"`
}

// ProductivityResponse lists per-staff statistics, most completed cases first.
type ProductivityResponse struct {
	Period domain.ProductivityPeriod `json:"period"`
	Users  []domain.UserProductivity `json:"users"`
}
