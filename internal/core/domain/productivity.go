package domain

import (
	"fmt"
	"time"

	"github.com/SscSPs/tax_filing_app/internal/apperrors"
	"github.com/shopspring/decimal"
)

// ProductivityPeriod is the look-back window of a productivity report.
type ProductivityPeriod string

const (
	PeriodWeek  ProductivityPeriod = "week"
	PeriodMonth ProductivityPeriod = "month"
	PeriodYear  ProductivityPeriod = "year"
)

// Since returns the start of the window ending at now.
func (p ProductivityPeriod) Since(now time.Time) (time.Time, error) {
	switch p {
	case PeriodWeek:
		return now.AddDate(0, 0, -7), nil
	case PeriodMonth:
		return now.AddDate(0, -1, 0), nil
	case PeriodYear:
		return now.AddDate(-1, 0, 0), nil
	default:
		return time.Time{}, fmt.Errorf("%w: unknown period %q", apperrors.ErrValidation, p)
	}
}

// CaseSummary is a short view of one assigned filing.
type CaseSummary struct {
	ClientID   string       `json:"clientId"`
	ClientName string       `json:"clientName"`
	Year       int          `json:"year"`
	Status     FilingStatus `json:"status"`
	AssignedAt time.Time    `json:"assignedAt"`
}

// UserProductivity aggregates one staff member's cases over a period.
type UserProductivity struct {
	UserID                string          `json:"userId"`
	Name                  string          `json:"name"`
	Email                 string          `json:"email"`
	TotalCases            int             `json:"totalCases"`
	CompletedCases        int             `json:"completedCases"`
	InProgressCases       int             `json:"inProgressCases"`
	PendingCases          int             `json:"pendingCases"`
	Revenue               decimal.Decimal `json:"revenue"`
	AverageCompletionDays int             `json:"averageCompletionDays"`
	RecentCases           []CaseSummary   `json:"recentCases"`
}
