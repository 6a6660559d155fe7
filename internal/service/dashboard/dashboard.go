// internal/service/dashboard/dashboard.go
package dashboard

import (
	"context"
	"fmt"
	"time"

	"edman-service/internal/domain/commission"
	"edman-service/internal/domain/dashboard"
	"edman-service/internal/domain/lead"
	"edman-service/internal/domain/user"
	xerrors "edman-service/internal/pkg/errors"
	"edman-service/internal/service/access"

	"go.uber.org/zap"
)

type LeadStore interface {
	CountByStatus(ctx context.Context, f lead.ListFilter) (map[lead.Status]int, error)
	CountFollowUps(ctx context.Context, centerID string, from, to time.Time) (int, error)
	ClosedRevenue(ctx context.Context) (float64, error)
}

type CommissionStore interface {
	Totals(ctx context.Context, agentID string) (commission.Totals, error)
}

type PayoutStore interface {
	PendingSummary(ctx context.Context) (int, float64, error)
}

type Counter interface {
	Count(ctx context.Context) (int, error)
}

type UserCounter interface {
	CountByRole(ctx context.Context, role user.Role) (int, error)
}

type Scoper interface {
	Resolve(ctx context.Context, p *user.Principal) (access.Scope, error)
}

type DashboardService struct {
	leads       LeadStore
	commissions CommissionStore
	payouts     PayoutStore
	users       UserCounter
	centers     Counter
	courses     Counter
	scoper      Scoper
	logger      *zap.Logger
	now         func() time.Time
}

func NewDashboardService(
	leads LeadStore,
	commissions CommissionStore,
	payouts PayoutStore,
	users UserCounter,
	centers Counter,
	courses Counter,
	scoper Scoper,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{
		leads:       leads,
		commissions: commissions,
		payouts:     payouts,
		users:       users,
		centers:     centers,
		courses:     courses,
		scoper:      scoper,
		logger:      logger,
		now:         time.Now,
	}
}

// Stats returns the figures for the caller's role.
func (s *DashboardService) Stats(ctx context.Context, p *user.Principal) (*dashboard.Stats, error) {
	if p == nil {
		return nil, fmt.Errorf("authentication required: %w", xerrors.ErrUnauthenticated)
	}
	scope, err := s.scoper.Resolve(ctx, p)
	if err != nil {
		return nil, err
	}

	stats := &dashboard.Stats{Role: string(p.Role)}
	switch {
	case scope.IsAdmin():
		stats.Admin, err = s.adminStats(ctx)
	case scope.IsAgent():
		stats.Agent, err = s.agentStats(ctx, scope)
	case scope.IsCenter():
		stats.Center, err = s.centerStats(ctx, scope)
	}
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *DashboardService) agentStats(ctx context.Context, scope access.Scope) (*dashboard.AgentStats, error) {
	counts, err := s.leadCounts(ctx, scope.LeadFilter())
	if err != nil {
		return nil, err
	}
	totals, err := s.commissions.Totals(ctx, scope.AgentID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum commissions: %w", err)
	}
	return &dashboard.AgentStats{
		LeadCounts:      counts,
		TotalEarnings:   totals.Total,
		PendingEarnings: totals.Pending + totals.Approved,
		PaidEarnings:    totals.Paid,
	}, nil
}

func (s *DashboardService) centerStats(ctx context.Context, scope access.Scope) (*dashboard.CenterStats, error) {
	if scope.Empty {
		return &dashboard.CenterStats{}, nil
	}
	counts, err := s.leadCounts(ctx, scope.LeadFilter())
	if err != nil {
		return nil, err
	}

	from, to := dayBounds(s.now())
	followUps, err := s.leads.CountFollowUps(ctx, scope.CenterID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to count follow-ups: %w", err)
	}
	return &dashboard.CenterStats{
		LeadCounts:     counts,
		ConversionRate: counts.ConversionRate(),
		TodayFollowUps: followUps,
	}, nil
}

func (s *DashboardService) adminStats(ctx context.Context) (*dashboard.AdminStats, error) {
	counts, err := s.leadCounts(ctx, lead.ListFilter{})
	if err != nil {
		return nil, err
	}
	agents, err := s.users.CountByRole(ctx, user.RoleAgent)
	if err != nil {
		return nil, fmt.Errorf("failed to count agents: %w", err)
	}
	centers, err := s.centers.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count centers: %w", err)
	}
	courses, err := s.courses.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count courses: %w", err)
	}
	revenue, err := s.leads.ClosedRevenue(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}
	totals, err := s.commissions.Totals(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to sum commissions: %w", err)
	}
	pending, pendingAmount, err := s.payouts.PendingSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to summarise payouts: %w", err)
	}

	return &dashboard.AdminStats{
		TotalLeads:          counts.Total,
		TotalAgents:         agents,
		TotalCenters:        centers,
		TotalCourses:        courses,
		TotalRevenue:        revenue,
		TotalCommissions:    totals.Total,
		PendingPayouts:      pending,
		PendingPayoutAmount: pendingAmount,
		ConversionRate:      counts.ConversionRate(),
	}, nil
}

func (s *DashboardService) leadCounts(ctx context.Context, f lead.ListFilter) (dashboard.LeadCounts, error) {
	byStatus, err := s.leads.CountByStatus(ctx, f)
	if err != nil {
		return dashboard.LeadCounts{}, fmt.Errorf("failed to count leads: %w", err)
	}
	c := dashboard.LeadCounts{
		New:        byStatus[lead.StatusNew],
		Contacted:  byStatus[lead.StatusContacted],
		Interested: byStatus[lead.StatusInterested],
		Enrolled:   byStatus[lead.StatusEnrolled],
		Closed:     byStatus[lead.StatusClosed],
		Lost:       byStatus[lead.StatusLost],
	}
	for _, n := range byStatus {
		c.Total += n
	}
	return c, nil
}

// dayBounds returns midnight of t's day and of the following day.
func dayBounds(t time.Time) (time.Time, time.Time) {
	from := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return from, from.AddDate(0, 0, 1)
}
