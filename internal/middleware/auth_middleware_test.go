package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"edman-service/internal/domain/user"
	"edman-service/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"
)

type fakeValidator map[string]*jwt.Claims

func (f fakeValidator) ValidateToken(_ context.Context, token string) (*jwt.Claims, error) {
	if c, ok := f[token]; ok {
		return c, nil
	}
	return nil, errors.New("invalid token")
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	m := NewAuthMiddleware(fakeValidator{
		"admin-token": {UserID: "a1", Role: user.RoleAdmin},
		"agent-token": {UserID: "g1", Role: user.RoleAgent},
	})

	r := gin.New()
	r.Use(RecoveryMiddleware(zaptest.NewLogger(t)))
	whoami := func(c *gin.Context) {
		p, ok := CurrentUser(c)
		if !ok {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, p.ID)
	}
	r.GET("/private", m.Auth(), whoami)
	r.GET("/admin", append(m.AdminOnly(), whoami)...)
	r.GET("/optional", m.OptionalAuth(), whoami)
	r.GET("/panic", func(*gin.Context) { panic("boom") })
	return r
}

func TestAuth(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name     string
		path     string
		setup    func(*http.Request)
		wantCode int
		wantBody string
	}{
		{"no token", "/private", func(*http.Request) {}, http.StatusUnauthorized, ""},
		{"bad token", "/private", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized, ""},
		{"bearer", "/private", func(r *http.Request) { r.Header.Set("Authorization", "Bearer agent-token") }, http.StatusOK, "g1"},
		{"cookie", "/private", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: AuthCookie, Value: "admin-token"}) }, http.StatusOK, "a1"},
		{"agent on admin route", "/admin", func(r *http.Request) { r.Header.Set("Authorization", "Bearer agent-token") }, http.StatusForbidden, ""},
		{"admin on admin route", "/admin", func(r *http.Request) { r.Header.Set("Authorization", "Bearer admin-token") }, http.StatusOK, "a1"},
		{"optional anonymous", "/optional", func(*http.Request) {}, http.StatusOK, "anonymous"},
		{"optional bad token", "/optional", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, http.StatusOK, "anonymous"},
		{"optional with token", "/optional", func(r *http.Request) { r.Header.Set("Authorization", "Bearer agent-token") }, http.StatusOK, "g1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantCode {
				t.Fatalf("code = %d, want %d (%s)", w.Code, tt.wantCode, w.Body.String())
			}
			if tt.wantBody != "" && w.Body.String() != tt.wantBody {
				t.Fatalf("body = %q, want %q", w.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestQueryToken(t *testing.T) {
	r := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/private?token=agent-token", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Body.String() != "g1" {
		t.Fatalf("got %d %q", w.Code, w.Body.String())
	}
}

func TestRecovery(t *testing.T) {
	r := newTestRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("code = %d", w.Code)
	}
}
