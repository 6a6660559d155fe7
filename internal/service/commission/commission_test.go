package commission

import (
	"context"
	"errors"
	"testing"

	"edman-service/internal/domain/commission"
	"edman-service/internal/domain/lead"
	xerrors "edman-service/internal/pkg/errors"
	"edman-service/internal/repository/memory"

	"go.uber.org/zap/zaptest"
)

func TestList(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	w, err := store.Populate(ctx)
	if err != nil {
		t.Fatal(err)
	}

	seed := []struct {
		agentID string
		amount  float64
		status  commission.Status
	}{
		{w.Agent.ID, 2500, commission.StatusPending},
		{w.Agent.ID, 1000, commission.StatusApproved},
		{w.Agent.ID, 500, commission.StatusPaid},
		{w.OtherAgent.ID, 700, commission.StatusPending},
	}
	for _, s := range seed {
		l := &lead.Lead{StudentName: "s", Phone: "1", CourseID: w.Course.ID, AgentID: s.agentID, CenterID: w.Center.ID, Status: lead.StatusClosed}
		if err := store.Leads().Create(ctx, l); err != nil {
			t.Fatal(err)
		}
		c := &commission.Commission{LeadID: l.ID, AgentID: s.agentID, Amount: s.amount, Status: s.status}
		if err := store.Commissions().CreateWithTx(ctx, nil, c); err != nil {
			t.Fatal(err)
		}
	}

	svc := NewCommissionService(store.Commissions(), zaptest.NewLogger(t))

	mine, err := svc.List(ctx, w.AgentPrincipal())
	if err != nil {
		t.Fatal(err)
	}
	if len(mine.Commissions) != 3 {
		t.Fatalf("agent sees %d commissions, want 3", len(mine.Commissions))
	}
	want := commission.Totals{Total: 4000, Pending: 2500, Approved: 1000, Paid: 500}
	if mine.Totals != want {
		t.Fatalf("totals = %+v, want %+v", mine.Totals, want)
	}
	if mine.Commissions[0].Lead == nil || mine.Commissions[0].Course == nil {
		t.Fatal("lead and course should be joined")
	}

	all, err := svc.List(ctx, w.AdminPrincipal())
	if err != nil {
		t.Fatal(err)
	}
	if len(all.Commissions) != 4 || all.Totals.Total != 4700 {
		t.Fatalf("admin list = %d rows, total %v", len(all.Commissions), all.Totals.Total)
	}

	if _, err := svc.List(ctx, w.CenterPrincipal()); !errors.Is(err, xerrors.ErrUnauthorized) {
		t.Fatalf("center err = %v", err)
	}
}
