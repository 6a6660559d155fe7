package payout

import (
	"context"
	"net/http"
	"testing"

	"edman-service/internal/domain/commission"
	"edman-service/internal/domain/lead"
	"edman-service/internal/domain/payout"
	"edman-service/internal/handlers/handlertest"
	payoutUsecase "edman-service/internal/service/payout"
)

func setup(t *testing.T) *handlertest.Env {
	t.Helper()
	env := handlertest.New(t)
	svc := payoutUsecase.NewPayoutService(env.Store, env.Store.Payouts(), env.Store.Commissions(), handlertest.Notifier{}, env.Logger)
	h := NewPayoutHandler(svc, env.Logger)

	api := env.Router.Group("/api/v1/payouts", env.MW.Auth())
	api.GET("", h.ListPayouts)
	api.POST("", h.RequestPayout)
	api.GET("/:id", h.GetPayout)
	api.PUT("/:id", append(env.MW.AdminOnly(), h.ResolvePayout)...)
	return env
}

func pendingCommission(t *testing.T, env *handlertest.Env) string {
	t.Helper()
	ctx := context.Background()
	l := &lead.Lead{StudentName: "s", Phone: "1", CourseID: env.World.Course.ID, AgentID: env.World.Agent.ID, CenterID: env.World.Center.ID, Status: lead.StatusClosed}
	if err := env.Store.Leads().Create(ctx, l); err != nil {
		t.Fatal(err)
	}
	c := &commission.Commission{LeadID: l.ID, AgentID: env.World.Agent.ID, Amount: 2500, Status: commission.StatusPending}
	if err := env.Store.Commissions().CreateWithTx(ctx, nil, c); err != nil {
		t.Fatal(err)
	}
	return c.ID
}

func TestPayoutFlow(t *testing.T) {
	env := setup(t)
	agent := env.Token(t, env.World.AgentPrincipal())
	admin := env.Token(t, env.World.AdminPrincipal())
	cid := pendingCommission(t, env)

	if rec := env.Do(http.MethodPost, "/api/v1/payouts", map[string][]string{"commission_ids": {cid, cid}}, agent); rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate ids status = %d", rec.Code)
	}
	if rec := env.Do(http.MethodPost, "/api/v1/payouts", map[string][]string{"commission_ids": {}}, agent); rec.Code != http.StatusBadRequest {
		t.Fatalf("empty ids status = %d", rec.Code)
	}

	rec := env.Do(http.MethodPost, "/api/v1/payouts", map[string][]string{"commission_ids": {cid}}, agent)
	if rec.Code != http.StatusCreated {
		t.Fatalf("request status = %d: %s", rec.Code, rec.Body)
	}
	var po payout.Payout
	handlertest.Decode(t, rec, &po)
	if po.TotalAmount != 2500 || po.Status != payout.StatusRequested {
		t.Fatalf("payout = %+v", po)
	}

	if rec := env.Do(http.MethodPut, "/api/v1/payouts/"+po.ID, map[string]string{"action": "APPROVE"}, agent); rec.Code != http.StatusForbidden {
		t.Fatalf("agent resolve status = %d", rec.Code)
	}
	if rec := env.Do(http.MethodPut, "/api/v1/payouts/"+po.ID, map[string]string{"action": "CANCEL"}, admin); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad action status = %d", rec.Code)
	}

	rec = env.Do(http.MethodPut, "/api/v1/payouts/"+po.ID, map[string]string{"action": "MARK_PAID", "notes": "bank ref 991"}, admin)
	if rec.Code != http.StatusOK {
		t.Fatalf("mark paid status = %d: %s", rec.Code, rec.Body)
	}

	if rec := env.Do(http.MethodPut, "/api/v1/payouts/"+po.ID, map[string]string{"action": "REJECT"}, admin); rec.Code != http.StatusBadRequest {
		t.Fatalf("terminal payout status = %d", rec.Code)
	}

	rec = env.Do(http.MethodGet, "/api/v1/payouts/"+po.ID, nil, agent)
	var view payout.View
	handlertest.Decode(t, rec, &view)
	if rec.Code != http.StatusOK || view.Status != payout.StatusPaid || len(view.Commissions) != 1 || view.Commissions[0].Status != commission.StatusPaid {
		t.Fatalf("view = %d %+v", rec.Code, view)
	}

	center := env.Token(t, env.World.CenterPrincipal())
	if rec := env.Do(http.MethodGet, "/api/v1/payouts", nil, center); rec.Code != http.StatusForbidden {
		t.Fatalf("center list status = %d", rec.Code)
	}
}
