package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/SscSPs/tax_filing_app/internal/core/domain"
	portsrepo "github.com/SscSPs/tax_filing_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/tax_filing_app/internal/core/ports/services"
	"github.com/SscSPs/tax_filing_app/internal/dto"
	"github.com/shopspring/decimal"
)

// errNoMatchingFiling aborts the client write when no filing has the requested year.
var errNoMatchingFiling = errors.New("no filing for year")

// recentCaseLimit caps RecentCases in a productivity row.
const recentCaseLimit = 5

type caseService struct {
	BaseService
	clients portsrepo.ClientRepositoryFacade
	users   portsrepo.UserRepositoryFacade
}

// CaseServiceOption is a functional option for configuring the case service
type CaseServiceOption func(*caseService)

// WithCaseClock replaces the service clock.
func WithCaseClock(now func() time.Time) CaseServiceOption {
	return func(s *caseService) { s.now = now }
}

// NewCaseService creates the case assignment and productivity service.
func NewCaseService(clients portsrepo.ClientRepositoryFacade, users portsrepo.UserRepositoryFacade, options ...CaseServiceOption) portssvc.CaseSvcFacade {
	s := &caseService{
		BaseService: newBaseService(),
		clients:     clients,
		users:       users,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

var _ portssvc.CaseSvcFacade = (*caseService)(nil)

func (s *caseService) Assign(ctx context.Context, req dto.AssignCaseRequest) (*domain.TaxFiling, error) {
	if _, err := s.users.FindUserByID(ctx, req.AssignedTo); err != nil {
		return nil, fmt.Errorf("assignee %s: %w", req.AssignedTo, err)
	}

	filing, err := s.updateFiling(ctx, req.ClientID, req.Year, func(f *domain.TaxFiling, now time.Time) {
		f.Assign(req.AssignedTo, now)
	})
	if err != nil || filing == nil {
		return nil, err
	}
	s.LogInfo(ctx, "Case assigned", slog.String("client_id", req.ClientID), slog.Int("tax_year", req.Year), slog.String("assigned_to", req.AssignedTo))
	return filing, nil
}

func (s *caseService) Transfer(ctx context.Context, req dto.TransferCaseRequest) (*domain.TaxFiling, error) {
	if _, err := s.users.FindUserByID(ctx, req.ToUserID); err != nil {
		return nil, fmt.Errorf("transfer target %s: %w", req.ToUserID, err)
	}

	filing, err := s.updateFiling(ctx, req.ClientID, req.Year, func(f *domain.TaxFiling, now time.Time) {
		f.Transfer(req.FromUserID, req.ToUserID, req.Reason, now)
	})
	if err != nil || filing == nil {
		return nil, err
	}
	s.LogInfo(ctx, "Case transferred",
		slog.String("client_id", req.ClientID),
		slog.Int("tax_year", req.Year),
		slog.String("from", req.FromUserID),
		slog.String("to", req.ToUserID))
	return filing, nil
}

// updateFiling applies change to the client's filing for year. A missing filing is not
// an error: nothing is written and the returned filing is nil.
func (s *caseService) updateFiling(ctx context.Context, clientID string, year int, change func(*domain.TaxFiling, time.Time)) (*domain.TaxFiling, error) {
	client, err := s.clients.UpdateClient(ctx, clientID, func(c *domain.Client) error {
		f := c.FilingByYear(year)
		if f == nil {
			return errNoMatchingFiling
		}
		change(f, s.Now())
		return nil
	})
	if errors.Is(err, errNoMatchingFiling) {
		s.LogInfo(ctx, "No filing matches the requested year, nothing updated", slog.String("client_id", clientID), slog.Int("tax_year", year))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return client.FilingByYear(year), nil
}

type assignedCase struct {
	client domain.Client
	filing domain.TaxFiling
	at     time.Time
}

func (s *caseService) Productivity(ctx context.Context, period domain.ProductivityPeriod) ([]domain.UserProductivity, error) {
	since, err := period.Since(s.Now())
	if err != nil {
		return nil, err
	}

	staff, err := s.users.ListPermissions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	clients, err := s.clients.ListClients(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}

	byAssignee := make(map[string][]assignedCase)
	for _, c := range clients {
		for _, f := range c.TaxFilings {
			if f.AssignedTo == "" {
				continue
			}
			at := f.CreatedAt.Time
			if f.AssignedAt != nil {
				at = f.AssignedAt.Time
			}
			if at.Before(since) {
				continue
			}
			byAssignee[f.AssignedTo] = append(byAssignee[f.AssignedTo], assignedCase{client: c, filing: f, at: at})
		}
	}

	out := make([]domain.UserProductivity, 0, len(staff))
	for _, p := range staff {
		if !p.IsActive || !p.Role.IsStaff() {
			continue
		}
		out = append(out, summarize(p, byAssignee[p.UserID]))
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CompletedCases > out[j].CompletedCases
	})
	return out, nil
}

func summarize(p domain.UserPermissions, cases []assignedCase) domain.UserProductivity {
	row := domain.UserProductivity{
		UserID:      p.UserID,
		Name:        p.Name,
		Email:       p.Email,
		TotalCases:  len(cases),
		Revenue:     decimal.Zero,
		RecentCases: []domain.CaseSummary{},
	}

	var completion time.Duration
	var timed int
	for _, c := range cases {
		switch c.filing.Status {
		case domain.StatusCompleted, domain.StatusFiled:
			row.CompletedCases++
			if c.filing.Payment != nil && c.filing.Payment.FinalPrice != nil {
				row.Revenue = row.Revenue.Add(*c.filing.Payment.FinalPrice)
			}
			if c.filing.AssignedAt != nil {
				end := c.filing.UpdatedAt.Time
				if c.filing.CompletedAt != nil {
					end = c.filing.CompletedAt.Time
				}
				completion += end.Sub(c.filing.AssignedAt.Time)
				timed++
			}
		case domain.StatusInProgress, domain.StatusUnderReview:
			row.InProgressCases++
		case domain.StatusNotStarted:
			row.PendingCases++
		}
	}
	if timed > 0 {
		row.AverageCompletionDays = int((completion / time.Duration(timed)).Hours() / 24)
	}

	sort.SliceStable(cases, func(i, j int) bool { return cases[i].at.After(cases[j].at) })
	for i := 0; i < len(cases) && i < recentCaseLimit; i++ {
		c := cases[i]
		row.RecentCases = append(row.RecentCases, domain.CaseSummary{
			ClientID:   c.client.ClientID,
			ClientName: c.client.Name,
			Year:       c.filing.Year,
			Status:     c.filing.Status,
			AssignedAt: c.at,
		})
	}
	return row
}
