package memory

import (
	"context"
	"errors"
	"testing"

	"edman-service/internal/domain/commission"
	"edman-service/internal/domain/lead"
	"edman-service/internal/domain/user"
	xerrors "edman-service/internal/pkg/errors"
)

func TestRollbackRestoresSnapshot(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	tx, err := s.BeginTx(ctx)
	if err != nil {
		t.Fatal(err)
	}
	u := &user.User{Email: "A@x.io", Name: "a", Role: user.RoleAgent}
	if err := s.Users().CreateWithTx(ctx, tx, u); err != nil {
		t.Fatal(err)
	}
	if err := tx.Rollback(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Users().FindByID(ctx, u.ID); !errors.Is(err, xerrors.ErrNotFound) {
		t.Fatalf("expected rolled back user to be gone, got %v", err)
	}
}

func TestCommitKeepsWrites(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	tx, _ := s.BeginTx(ctx)
	u := &user.User{Email: "b@x.io", Name: "b", Role: user.RoleAgent}
	if err := s.Users().CreateWithTx(ctx, tx, u); err != nil {
		t.Fatal(err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatal(err)
	}
	if err := tx.Rollback(ctx); err == nil {
		t.Fatal("rollback after commit should report a closed tx")
	}
	got, err := s.Users().FindByEmail(ctx, "B@X.IO")
	if err != nil || got.ID != u.ID {
		t.Fatalf("FindByEmail = %v, %v", got, err)
	}
}

// Rows whose course or center has gone still list, with the missing ref nil,
// so totals over the listing agree with the aggregate.
func TestListKeepsRowsWithMissingRefs(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	w, err := s.Populate(ctx)
	if err != nil {
		t.Fatal(err)
	}

	l := &lead.Lead{StudentName: "s", Phone: "1", CourseID: w.Course.ID, AgentID: w.Agent.ID, CenterID: w.Center.ID, Status: lead.StatusClosed}
	if err := s.Leads().Create(ctx, l); err != nil {
		t.Fatal(err)
	}
	c := &commission.Commission{LeadID: l.ID, AgentID: w.Agent.ID, Amount: 2500, Status: commission.StatusPending}
	if err := s.Commissions().CreateWithTx(ctx, nil, c); err != nil {
		t.Fatal(err)
	}

	s.mu.Lock()
	delete(s.data.courses, w.Course.ID)
	delete(s.data.centers, w.Center.ID)
	s.mu.Unlock()

	list, err := s.Commissions().List(ctx, w.Agent.ID)
	if err != nil || len(list) != 1 {
		t.Fatalf("commissions = %d, %v", len(list), err)
	}
	if list[0].Lead == nil || list[0].Course != nil {
		t.Fatalf("refs = lead %+v, course %+v", list[0].Lead, list[0].Course)
	}
	totals, err := s.Commissions().Totals(ctx, w.Agent.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got := commission.ComputeTotals([]commission.Commission{list[0].Commission}); got != totals {
		t.Fatalf("listed totals %+v, aggregate %+v", got, totals)
	}

	leads, err := s.Leads().List(ctx, lead.ListFilter{AgentID: w.Agent.ID})
	if err != nil || len(leads) != 1 {
		t.Fatalf("leads = %d, %v", len(leads), err)
	}
	if leads[0].Course != nil || leads[0].Center != nil || leads[0].Agent == nil {
		t.Fatalf("lead refs = %+v", leads[0])
	}
}
