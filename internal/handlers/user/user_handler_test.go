package user

import (
	"net/http"
	"testing"

	"edman-service/internal/domain/user"
	"edman-service/internal/handlers/handlertest"
	userUsecase "edman-service/internal/service/user"
)

func TestUserRoutes(t *testing.T) {
	env := handlertest.New(t)
	svc := userUsecase.NewUserService(env.Store, env.Store.Users(), env.Store.Centers(), env.Auth, env.Logger)
	h := NewUserHandler(svc, env.Logger)

	users := env.Router.Group("/api/v1/users", env.MW.AdminOnly()...)
	users.GET("", h.ListUsers)
	users.POST("", h.CreateUser)
	users.GET("/:id", h.GetUser)
	users.PUT("/:id", h.UpdateUser)
	users.DELETE("/:id", h.DeleteUser)

	admin := env.Token(t, env.World.AdminPrincipal())
	agent := env.Token(t, env.World.AgentPrincipal())

	if rec := env.Do(http.MethodGet, "/api/v1/users", nil, agent); rec.Code != http.StatusForbidden {
		t.Fatalf("agent list status = %d", rec.Code)
	}

	rec := env.Do(http.MethodPost, "/api/v1/users", map[string]string{
		"email": "ops@x.io", "password": "secret1", "name": "Ops", "role": "ADMIN",
	}, admin)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body)
	}
	var created user.UserInfo
	handlertest.Decode(t, rec, &created)

	var agents []user.UserInfo
	handlertest.Decode(t, env.Do(http.MethodGet, "/api/v1/users?role=AGENT", nil, admin), &agents)
	if len(agents) != 2 {
		t.Fatalf("agents = %d, want 2", len(agents))
	}

	name := "Operations"
	rec = env.Do(http.MethodPut, "/api/v1/users/"+created.ID, map[string]*string{"name": &name}, admin)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d", rec.Code)
	}

	if rec := env.Do(http.MethodDelete, "/api/v1/users/"+env.World.Admin.ID, nil, admin); rec.Code != http.StatusBadRequest {
		t.Fatalf("self delete status = %d", rec.Code)
	}
	if rec := env.Do(http.MethodDelete, "/api/v1/users/"+created.ID, nil, admin); rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if rec := env.Do(http.MethodGet, "/api/v1/users/"+created.ID, nil, admin); rec.Code != http.StatusNotFound {
		t.Fatalf("get deleted status = %d", rec.Code)
	}
}
