package lead

import (
	"context"
	"net/http"
	"testing"

	"edman-service/internal/domain/catalog"
	"edman-service/internal/domain/lead"
	"edman-service/internal/handlers/handlertest"
	leadUsecase "edman-service/internal/service/lead"
)

func setup(t *testing.T) *handlertest.Env {
	t.Helper()
	env := handlertest.New(t)
	svc := leadUsecase.NewLeadService(env.Store, env.Store.Leads(), env.Store.Courses(), env.Store.Commissions(),
		env.Store.Users(), env.Access, handlertest.Notifier{}, env.Logger)
	h := NewLeadHandler(svc, env.Logger)

	api := env.Router.Group("/api/v1/leads")
	api.POST("/public", h.SubmitPublic)
	api.Use(env.MW.Auth())
	api.GET("", h.ListLeads)
	api.POST("", h.CreateLead)
	api.GET("/:id", h.GetLead)
	api.PUT("/:id", h.UpdateLead)
	return env
}

func TestLeadLifecycle(t *testing.T) {
	env := setup(t)
	agent := env.Token(t, env.World.AgentPrincipal())
	center := env.Token(t, env.World.CenterPrincipal())

	rec := env.Do(http.MethodPost, "/api/v1/leads", map[string]string{
		"student_name": "Jane", "phone": "0700", "course_id": env.World.Course.ID,
	}, agent)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body)
	}
	var created lead.Lead
	handlertest.Decode(t, rec, &created)

	if rec := env.Do(http.MethodPost, "/api/v1/leads", map[string]string{
		"student_name": "Jane", "phone": "0700", "course_id": env.World.Course.ID,
	}, center); rec.Code != http.StatusForbidden {
		t.Fatalf("center create status = %d", rec.Code)
	}

	if rec := env.Do(http.MethodPut, "/api/v1/leads/"+created.ID, map[string]string{"status": "CLOSED"}, agent); rec.Code != http.StatusForbidden {
		t.Fatalf("agent update status = %d", rec.Code)
	}
	if rec := env.Do(http.MethodPut, "/api/v1/leads/"+created.ID, map[string]string{"status": "WON"}, center); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad status code = %d", rec.Code)
	}
	if rec := env.Do(http.MethodPut, "/api/v1/leads/missing", map[string]string{"status": "CLOSED"}, center); rec.Code != http.StatusNotFound {
		t.Fatalf("missing lead code = %d", rec.Code)
	}

	rec = env.Do(http.MethodPut, "/api/v1/leads/"+created.ID, map[string]string{"status": "CLOSED"}, center)
	if rec.Code != http.StatusOK {
		t.Fatalf("close status = %d: %s", rec.Code, rec.Body)
	}
	var result lead.TransitionResult
	handlertest.Decode(t, rec, &result)
	if !result.CommissionCreated || result.Lead.Status != lead.StatusClosed {
		t.Fatalf("unexpected result %+v", result)
	}

	rec = env.Do(http.MethodGet, "/api/v1/leads?status=CLOSED", nil, agent)
	var list []lead.Detail
	handlertest.Decode(t, rec, &list)
	if rec.Code != http.StatusOK || len(list) != 1 || list[0].Agent == nil {
		t.Fatalf("list = %d %+v", rec.Code, list)
	}
	if rec := env.Do(http.MethodGet, "/api/v1/leads?status=DONE", nil, agent); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad filter code = %d", rec.Code)
	}

	other := env.Token(t, env.World.OtherAgent.Principal())
	if rec := env.Do(http.MethodGet, "/api/v1/leads/"+created.ID, nil, other); rec.Code != http.StatusForbidden {
		t.Fatalf("other agent get = %d", rec.Code)
	}
}

func TestSubmitPublic(t *testing.T) {
	env := setup(t)

	inactive := &catalog.Course{Name: "Old", Fee: 100, CommissionPercent: 5, CenterID: env.World.Center.ID}
	if err := env.Store.Courses().Create(context.Background(), inactive); err != nil {
		t.Fatal(err)
	}

	rec := env.Do(http.MethodPost, "/api/v1/leads/public", map[string]string{
		"student_name": "Walk In", "phone": "0711", "course_id": env.World.Course.ID, "agent_id": env.World.Agent.ID,
	}, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("public status = %d: %s", rec.Code, rec.Body)
	}
	var resp lead.PublicLeadResponse
	handlertest.Decode(t, rec, &resp)
	if resp.Course != env.World.Course.Name {
		t.Fatalf("resp = %+v", resp)
	}

	rec = env.Do(http.MethodPost, "/api/v1/leads/public", map[string]string{
		"student_name": "Walk In", "phone": "0711", "course_id": inactive.ID, "agent_id": env.World.Agent.ID,
	}, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("inactive course status = %d", rec.Code)
	}

	rec = env.Do(http.MethodPost, "/api/v1/leads/public", map[string]string{"student_name": "No Phone"}, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing fields status = %d", rec.Code)
	}
}
