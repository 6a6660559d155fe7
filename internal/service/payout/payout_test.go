package payout

import (
	"context"
	"errors"
	"sync"
	"testing"

	"edman-service/internal/domain/commission"
	"edman-service/internal/domain/lead"
	"edman-service/internal/domain/payout"
	"edman-service/internal/domain/user"
	wstypes "edman-service/internal/domain/websocket"
	xerrors "edman-service/internal/pkg/errors"
	"edman-service/internal/repository/memory"
	"edman-service/internal/service/access"
	leadsvc "edman-service/internal/service/lead"

	"go.uber.org/zap/zaptest"
)

type recorder struct {
	mu    sync.Mutex
	users map[string][]wstypes.EventType
	roles map[user.Role][]wstypes.EventType
}

func newRecorder() *recorder {
	return &recorder{users: map[string][]wstypes.EventType{}, roles: map[user.Role][]wstypes.EventType{}}
}

func (r *recorder) NotifyUser(userID string, event wstypes.EventType, _ interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[userID] = append(r.users[userID], event)
}

func (r *recorder) NotifyRole(role user.Role, event wstypes.EventType, _ interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.roles[role] = append(r.roles[role], event)
}

type fixture struct {
	svc      *PayoutService
	store    *memory.Store
	world    *memory.World
	notifier *recorder
}

func setup(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	w, err := store.Populate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	rec := newRecorder()
	return &fixture{
		svc:      NewPayoutService(store, store.Payouts(), store.Commissions(), rec, zaptest.NewLogger(t)),
		store:    store,
		world:    w,
		notifier: rec,
	}
}

// pending inserts a PENDING commission for agentID.
func (f *fixture) pending(t *testing.T, agentID string, amount float64) string {
	t.Helper()
	ctx := context.Background()
	l := &lead.Lead{StudentName: "s", Phone: "1", CourseID: f.world.Course.ID, AgentID: agentID, CenterID: f.world.Center.ID, Status: lead.StatusClosed}
	if err := f.store.Leads().Create(ctx, l); err != nil {
		t.Fatal(err)
	}
	c := &commission.Commission{LeadID: l.ID, AgentID: agentID, Amount: amount, Status: commission.StatusPending}
	if err := f.store.Commissions().CreateWithTx(ctx, nil, c); err != nil {
		t.Fatal(err)
	}
	return c.ID
}

func (f *fixture) statuses(t *testing.T, ids ...string) []commission.Commission {
	t.Helper()
	list, err := f.store.Commissions().FindByIDs(context.Background(), ids)
	if err != nil {
		t.Fatal(err)
	}
	return list
}

func TestRequestPayout(t *testing.T) {
	f := setup(t)
	a := f.pending(t, f.world.Agent.ID, 2500)
	b := f.pending(t, f.world.Agent.ID, 1000)

	po, err := f.svc.Request(context.Background(), f.world.AgentPrincipal(), &payout.RequestPayoutRequest{CommissionIDs: []string{a, b}})
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if po.Status != payout.StatusRequested || po.TotalAmount != 3500 || len(po.CommissionIDs) != 2 {
		t.Fatalf("unexpected payout %+v", po)
	}
	for _, c := range f.statuses(t, a, b) {
		if c.Status != commission.StatusApproved {
			t.Fatalf("commission %s is %s, want APPROVED", c.ID, c.Status)
		}
	}
	if len(f.notifier.roles[user.RoleAdmin]) != 1 {
		t.Fatal("admins not notified")
	}
}

func TestRequestPayoutInvalidSelection(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	mine := f.pending(t, f.world.Agent.ID, 2500)
	theirs := f.pending(t, f.world.OtherAgent.ID, 900)
	taken := f.pending(t, f.world.Agent.ID, 400)
	if _, err := f.svc.Request(ctx, f.world.AgentPrincipal(), &payout.RequestPayoutRequest{CommissionIDs: []string{taken}}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		ids  []string
		want error
	}{
		{"empty", []string{}, xerrors.ErrInvalidInput},
		{"duplicate ids", []string{mine, mine}, xerrors.ErrInvalidSelection},
		{"another agent's commission", []string{mine, theirs}, xerrors.ErrInvalidSelection},
		{"already approved", []string{mine, taken}, xerrors.ErrInvalidSelection},
		{"unknown id", []string{mine, "nope"}, xerrors.ErrInvalidSelection},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Request(ctx, f.world.AgentPrincipal(), &payout.RequestPayoutRequest{CommissionIDs: tt.ids})
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if c := f.statuses(t, mine)[0]; c.Status != commission.StatusPending {
				t.Fatalf("partial update: %s is %s", mine, c.Status)
			}
		})
	}

	list, err := f.svc.List(ctx, f.world.AgentPrincipal())
	if err != nil || len(list) != 1 {
		t.Fatalf("payouts = %d, %v; failed requests must not create payouts", len(list), err)
	}

	if _, err := f.svc.Request(ctx, f.world.AdminPrincipal(), &payout.RequestPayoutRequest{CommissionIDs: []string{mine}}); !errors.Is(err, xerrors.ErrUnauthorized) {
		t.Fatalf("admin request err = %v", err)
	}
}

func TestConcurrentRequestsOnOverlappingCommissions(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a := f.pending(t, f.world.Agent.ID, 2500)
	b := f.pending(t, f.world.Agent.ID, 1000)
	c := f.pending(t, f.world.Agent.ID, 500)

	selections := [][]string{{a, b}, {b, c}, {a, c}, {a, b, c}}
	errs := make([]error, len(selections))
	var wg sync.WaitGroup
	for i, ids := range selections {
		wg.Add(1)
		go func(i int, ids []string) {
			defer wg.Done()
			_, errs[i] = f.svc.Request(ctx, f.world.AgentPrincipal(), &payout.RequestPayoutRequest{CommissionIDs: ids})
		}(i, ids)
	}
	wg.Wait()

	won := 0
	for i, err := range errs {
		switch {
		case err == nil:
			won++
		case !errors.Is(err, xerrors.ErrInvalidSelection):
			t.Fatalf("request %d err = %v, want invalid selection", i, err)
		}
	}
	if won != 1 {
		t.Fatalf("%d requests won, want exactly 1", won)
	}

	list, err := f.svc.List(ctx, f.world.AgentPrincipal())
	if err != nil || len(list) != 1 {
		t.Fatalf("payouts = %d, %v", len(list), err)
	}
	booked := map[string]bool{}
	for _, id := range list[0].CommissionIDs {
		booked[id] = true
	}
	for _, cm := range f.statuses(t, a, b, c) {
		want := commission.StatusPending
		if booked[cm.ID] {
			want = commission.StatusApproved
		}
		if cm.Status != want {
			t.Fatalf("commission %s is %s, want %s", cm.ID, cm.Status, want)
		}
	}
}

func TestResolve(t *testing.T) {
	admin := func(f *fixture) *user.Principal { return f.world.AdminPrincipal() }

	t.Run("reject releases commissions", func(t *testing.T) {
		f := setup(t)
		ctx := context.Background()
		id := f.pending(t, f.world.Agent.ID, 2500)
		po, _ := f.svc.Request(ctx, f.world.AgentPrincipal(), &payout.RequestPayoutRequest{CommissionIDs: []string{id}})

		got, err := f.svc.Resolve(ctx, admin(f), po.ID, &payout.ResolveRequest{Action: payout.ActionReject, Notes: "missing invoice"})
		if err != nil {
			t.Fatal(err)
		}
		if got.Status != payout.StatusRejected || got.Notes == nil || *got.Notes != "missing invoice" {
			t.Fatalf("unexpected payout %+v", got)
		}
		if c := f.statuses(t, id)[0]; c.Status != commission.StatusPending || c.PaidAt != nil {
			t.Fatalf("commission = %+v, want PENDING", c)
		}
		if len(f.notifier.users[f.world.Agent.ID]) != 1 {
			t.Fatal("agent not notified")
		}

		// the released commission can be requested again
		if _, err := f.svc.Request(ctx, f.world.AgentPrincipal(), &payout.RequestPayoutRequest{CommissionIDs: []string{id}}); err != nil {
			t.Fatalf("re-request: %v", err)
		}
	})

	t.Run("approve then mark paid", func(t *testing.T) {
		f := setup(t)
		ctx := context.Background()
		id := f.pending(t, f.world.Agent.ID, 2500)
		po, _ := f.svc.Request(ctx, f.world.AgentPrincipal(), &payout.RequestPayoutRequest{CommissionIDs: []string{id}})

		approved, err := f.svc.Resolve(ctx, admin(f), po.ID, &payout.ResolveRequest{Action: payout.ActionApprove})
		if err != nil || approved.Status != payout.StatusApproved || approved.ApprovedAt == nil {
			t.Fatalf("approve: %+v, %v", approved, err)
		}
		if _, err := f.svc.Resolve(ctx, admin(f), po.ID, &payout.ResolveRequest{Action: payout.ActionApprove}); !errors.Is(err, xerrors.ErrInvalidStatus) {
			t.Fatalf("double approve err = %v", err)
		}

		paid, err := f.svc.Resolve(ctx, admin(f), po.ID, &payout.ResolveRequest{Action: payout.ActionMarkPaid})
		if err != nil || paid.Status != payout.StatusPaid || paid.PaidAt == nil {
			t.Fatalf("mark paid: %+v, %v", paid, err)
		}
		c := f.statuses(t, id)[0]
		if c.Status != commission.StatusPaid || c.PaidAt == nil {
			t.Fatalf("commission = %+v, want PAID with paid_at", c)
		}
	})

	t.Run("terminal payouts refuse actions", func(t *testing.T) {
		f := setup(t)
		ctx := context.Background()
		a := f.pending(t, f.world.Agent.ID, 100)
		b := f.pending(t, f.world.Agent.ID, 200)
		paid, _ := f.svc.Request(ctx, f.world.AgentPrincipal(), &payout.RequestPayoutRequest{CommissionIDs: []string{a}})
		rejected, _ := f.svc.Request(ctx, f.world.AgentPrincipal(), &payout.RequestPayoutRequest{CommissionIDs: []string{b}})
		if _, err := f.svc.Resolve(ctx, admin(f), paid.ID, &payout.ResolveRequest{Action: payout.ActionMarkPaid}); err != nil {
			t.Fatal(err)
		}
		if _, err := f.svc.Resolve(ctx, admin(f), rejected.ID, &payout.ResolveRequest{Action: payout.ActionReject}); err != nil {
			t.Fatal(err)
		}

		for _, id := range []string{paid.ID, rejected.ID} {
			for _, action := range []payout.Action{payout.ActionApprove, payout.ActionReject, payout.ActionMarkPaid} {
				if _, err := f.svc.Resolve(ctx, admin(f), id, &payout.ResolveRequest{Action: action}); !errors.Is(err, xerrors.ErrInvalidStatus) {
					t.Errorf("%s on %s: err = %v", action, id, err)
				}
			}
		}
		if c := f.statuses(t, a)[0]; c.Status != commission.StatusPaid {
			t.Fatalf("paid commission reverted to %s", c.Status)
		}
	})

	t.Run("bad input", func(t *testing.T) {
		f := setup(t)
		ctx := context.Background()
		if _, err := f.svc.Resolve(ctx, admin(f), "x", &payout.ResolveRequest{Action: "CANCEL"}); !errors.Is(err, xerrors.ErrInvalidInput) {
			t.Errorf("unknown action err = %v", err)
		}
		if _, err := f.svc.Resolve(ctx, admin(f), "missing", &payout.ResolveRequest{Action: payout.ActionApprove}); !errors.Is(err, xerrors.ErrNotFound) {
			t.Errorf("missing payout err = %v", err)
		}
		if _, err := f.svc.Resolve(ctx, f.world.AgentPrincipal(), "x", &payout.ResolveRequest{Action: payout.ActionApprove}); !errors.Is(err, xerrors.ErrUnauthorized) {
			t.Errorf("agent resolve err = %v", err)
		}
	})
}

func TestGetAndListVisibility(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	id := f.pending(t, f.world.Agent.ID, 2500)
	po, _ := f.svc.Request(ctx, f.world.AgentPrincipal(), &payout.RequestPayoutRequest{CommissionIDs: []string{id}})

	view, err := f.svc.Get(ctx, f.world.AgentPrincipal(), po.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(view.Commissions) != 1 || view.Commissions[0].ID != id || view.Agent == nil {
		t.Fatalf("unexpected view %+v", view)
	}

	if _, err := f.svc.Get(ctx, f.world.OtherAgent.Principal(), po.ID); !errors.Is(err, xerrors.ErrUnauthorized) {
		t.Errorf("other agent err = %v", err)
	}
	if _, err := f.svc.Get(ctx, f.world.CenterPrincipal(), po.ID); !errors.Is(err, xerrors.ErrUnauthorized) {
		t.Errorf("center get err = %v", err)
	}
	if _, err := f.svc.List(ctx, f.world.CenterPrincipal()); !errors.Is(err, xerrors.ErrUnauthorized) {
		t.Errorf("center list err = %v", err)
	}
	if list, _ := f.svc.List(ctx, f.world.OtherAgent.Principal()); len(list) != 0 {
		t.Errorf("other agent sees %d payouts", len(list))
	}
	if list, _ := f.svc.List(ctx, f.world.AdminPrincipal()); len(list) != 1 {
		t.Errorf("admin sees %d payouts", len(list))
	}
}

type nopNotifier struct{}

func (nopNotifier) NotifyUser(string, wstypes.EventType, interface{}) {}

// A lead on a 25000 course at 10% earns 2500, which travels through a
// payout to PAID.
func TestLeadToPaidPayout(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	leads := leadsvc.NewLeadService(f.store, f.store.Leads(), f.store.Courses(), f.store.Commissions(), f.store.Users(),
		access.NewService(f.store.Centers()), nopNotifier{}, zaptest.NewLogger(t))

	l, err := leads.Create(ctx, f.world.AgentPrincipal(), &lead.CreateLeadRequest{StudentName: "Jane", Phone: "0700", CourseID: f.world.Course.ID})
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range []lead.Status{lead.StatusContacted, lead.StatusInterested, lead.StatusEnrolled, lead.StatusClosed} {
		status := s
		if _, err := leads.Transition(ctx, f.world.CenterPrincipal(), l.ID, &lead.TransitionRequest{Status: &status}); err != nil {
			t.Fatalf("transition to %s: %v", s, err)
		}
	}

	list, _ := f.store.Commissions().List(ctx, f.world.Agent.ID)
	if len(list) != 1 || list[0].Amount != 2500 {
		t.Fatalf("commissions = %+v", list)
	}
	cid := list[0].ID

	po, err := f.svc.Request(ctx, f.world.AgentPrincipal(), &payout.RequestPayoutRequest{CommissionIDs: []string{cid}})
	if err != nil || po.TotalAmount != 2500 {
		t.Fatalf("request: %+v, %v", po, err)
	}
	if _, err := f.svc.Resolve(ctx, f.world.AdminPrincipal(), po.ID, &payout.ResolveRequest{Action: payout.ActionMarkPaid}); err != nil {
		t.Fatal(err)
	}

	c := f.statuses(t, cid)[0]
	if c.Status != commission.StatusPaid || c.PaidAt == nil {
		t.Fatalf("commission = %+v", c)
	}
}
