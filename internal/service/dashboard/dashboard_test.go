package dashboard

import (
	"context"
	"math"
	"testing"
	"time"

	"edman-service/internal/domain/commission"
	"edman-service/internal/domain/lead"
	"edman-service/internal/domain/payout"
	"edman-service/internal/repository/memory"
	"edman-service/internal/service/access"

	"go.uber.org/zap/zaptest"
)

func TestStats(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	w, err := store.Populate(ctx)
	if err != nil {
		t.Fatal(err)
	}

	now := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	today := now.Add(3 * time.Hour)
	tomorrow := now.Add(24 * time.Hour)

	seed := []struct {
		agentID  string
		status   lead.Status
		followUp *time.Time
	}{
		{w.Agent.ID, lead.StatusNew, &today},
		{w.Agent.ID, lead.StatusInterested, &tomorrow},
		{w.Agent.ID, lead.StatusEnrolled, nil},
		{w.Agent.ID, lead.StatusClosed, nil},
		{w.OtherAgent.ID, lead.StatusLost, &today},
	}
	var closedID string
	for _, s := range seed {
		l := &lead.Lead{StudentName: "s", Phone: "1", CourseID: w.Course.ID, AgentID: s.agentID, CenterID: w.Center.ID, Status: s.status, FollowUpDate: s.followUp}
		if err := store.Leads().Create(ctx, l); err != nil {
			t.Fatal(err)
		}
		if s.status == lead.StatusClosed {
			closedID = l.ID
		}
	}

	c := &commission.Commission{LeadID: closedID, AgentID: w.Agent.ID, Amount: 2500, Status: commission.StatusApproved}
	if err := store.Commissions().CreateWithTx(ctx, nil, c); err != nil {
		t.Fatal(err)
	}
	po := &payout.Payout{AgentID: w.Agent.ID, TotalAmount: 2500, CommissionIDs: []string{c.ID}, Status: payout.StatusRequested, RequestedAt: now}
	if err := store.Payouts().CreateWithTx(ctx, nil, po); err != nil {
		t.Fatal(err)
	}

	svc := NewDashboardService(store.Leads(), store.Commissions(), store.Payouts(), store.Users(), store.Centers(), store.Courses(),
		access.NewService(store.Centers()), zaptest.NewLogger(t))
	svc.now = func() time.Time { return now }

	t.Run("agent", func(t *testing.T) {
		stats, err := svc.Stats(ctx, w.AgentPrincipal())
		if err != nil {
			t.Fatal(err)
		}
		a := stats.Agent
		if a == nil || stats.Center != nil || stats.Admin != nil {
			t.Fatalf("unexpected payload %+v", stats)
		}
		if a.Total != 4 || a.New != 1 || a.Closed != 1 || a.Lost != 0 {
			t.Fatalf("counts = %+v", a.LeadCounts)
		}
		if a.TotalEarnings != 2500 || a.PendingEarnings != 2500 || a.PaidEarnings != 0 {
			t.Fatalf("earnings = %+v", a)
		}
	})

	t.Run("center", func(t *testing.T) {
		stats, err := svc.Stats(ctx, w.CenterPrincipal())
		if err != nil {
			t.Fatal(err)
		}
		ce := stats.Center
		if ce.Total != 5 || ce.TodayFollowUps != 2 {
			t.Fatalf("center stats = %+v", ce)
		}
		if math.Abs(ce.ConversionRate-40) > 1e-9 {
			t.Fatalf("conversion = %v, want 40", ce.ConversionRate)
		}
	})

	t.Run("admin", func(t *testing.T) {
		stats, err := svc.Stats(ctx, w.AdminPrincipal())
		if err != nil {
			t.Fatal(err)
		}
		a := stats.Admin
		if a.TotalLeads != 5 || a.TotalAgents != 2 || a.TotalCenters != 1 || a.TotalCourses != 1 {
			t.Fatalf("admin counts = %+v", a)
		}
		if a.TotalRevenue != 25000 || a.TotalCommissions != 2500 || a.PendingPayouts != 1 || a.PendingPayoutAmount != 2500 {
			t.Fatalf("admin money = %+v", a)
		}
	})
}
