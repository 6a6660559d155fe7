package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"edman-service/internal/domain/user"
	"edman-service/internal/handlers/handlertest"
	"edman-service/internal/middleware"
)

func setup(t *testing.T) *handlertest.Env {
	t.Helper()
	env := handlertest.New(t)
	h := NewAuthHandler(env.Auth, true, env.Logger)

	api := env.Router.Group("/api/v1/auth")
	api.POST("/register", h.Register)
	api.POST("/login", h.Login)
	api.GET("/me", env.MW.Auth(), h.GetMe)
	api.POST("/logout", env.MW.Auth(), h.Logout)
	return env
}

func TestRegisterAndLogin(t *testing.T) {
	env := setup(t)

	rec := env.Do(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email": "new@x.io", "password": "secret1", "name": "New Agent", "role": "AGENT",
	}, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d: %s", rec.Code, rec.Body)
	}

	rec = env.Do(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email": "new@x.io", "password": "secret1", "name": "Again", "role": "AGENT",
	}, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate register status = %d", rec.Code)
	}

	rec = env.Do(http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "new@x.io", "password": "secret1"}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", rec.Code, rec.Body)
	}
	var login user.LoginResponse
	handlertest.Decode(t, rec, &login)
	if login.Token == "" || login.User.Role != user.RoleAgent {
		t.Fatalf("unexpected login response %+v", login)
	}

	cookie := rec.Header().Get("Set-Cookie")
	for _, want := range []string{middleware.AuthCookie + "=", "HttpOnly", "Secure"} {
		if !strings.Contains(cookie, want) {
			t.Errorf("cookie %q missing %q", cookie, want)
		}
	}

	rec = env.Do(http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "new@x.io", "password": "wrong"}, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad password status = %d", rec.Code)
	}
}

func TestRegisterValidation(t *testing.T) {
	env := setup(t)

	tests := []struct {
		name string
		body map[string]string
	}{
		{"short password", map[string]string{"email": "a@x.io", "password": "123", "name": "A", "role": "AGENT"}},
		{"bad email", map[string]string{"email": "nope", "password": "secret1", "name": "A", "role": "AGENT"}},
		{"admin role", map[string]string{"email": "a@x.io", "password": "secret1", "name": "A", "role": "ADMIN"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := env.Do(http.MethodPost, "/api/v1/auth/register", tt.body, ""); rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d", rec.Code)
			}
		})
	}
}

func TestMeAndLogout(t *testing.T) {
	env := setup(t)
	token := env.Token(t, env.World.AgentPrincipal())

	if rec := env.Do(http.MethodGet, "/api/v1/auth/me", nil, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous me status = %d", rec.Code)
	}

	// cookie transport
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: middleware.AuthCookie, Value: token})
	rec := httptest.NewRecorder()
	env.Router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("me status = %d: %s", rec.Code, rec.Body)
	}
	var info user.UserInfo
	handlertest.Decode(t, rec, &info)
	if info.ID != env.World.Agent.ID {
		t.Fatalf("me = %+v", info)
	}

	rec = env.Do(http.MethodPost, "/api/v1/auth/logout", nil, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout status = %d", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("Set-Cookie"), "Max-Age=0") {
		t.Errorf("cookie not cleared: %q", rec.Header().Get("Set-Cookie"))
	}

	if rec := env.Do(http.MethodGet, "/api/v1/auth/me", nil, token); rec.Code != http.StatusUnauthorized {
		t.Fatalf("revoked token status = %d", rec.Code)
	}
}

func TestMeDeletedUser(t *testing.T) {
	env := setup(t)
	token := env.Token(t, &user.Principal{ID: "ghost", Email: "ghost@x.io", Name: "Ghost", Role: user.RoleAgent})

	if rec := env.Do(http.MethodGet, "/api/v1/auth/me", nil, token); rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}
