// internal/handlers/handlertest/handlertest.go
//
// Package handlertest wires the HTTP layer against the in-memory store for
// handler tests. Tokens are real signed session tokens checked by the real
// auth middleware.
package handlertest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"edman-service/internal/domain/user"
	wstypes "edman-service/internal/domain/websocket"
	"edman-service/internal/middleware"
	"edman-service/internal/pkg/jwt"
	"edman-service/internal/pkg/response"
	"edman-service/internal/pkg/validation"
	"edman-service/internal/repository/memory"
	"edman-service/internal/service/access"
	authUsecase "edman-service/internal/service/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

type Env struct {
	Store  *memory.Store
	World  *memory.World
	JWT    *jwt.Manager
	Auth   *authUsecase.AuthService
	Access *access.Service
	MW     *middleware.AuthMiddleware
	Logger *zap.Logger
	Router *gin.Engine
	Tokens *Tokens
}

// New returns an Env with a populated store and an empty router.
func New(t *testing.T) *Env {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if err := validation.Register(); err != nil {
		t.Fatal(err)
	}

	jm, err := jwt.LoadAndBuild(jwt.Config{Secret: "handler-test-secret-0123", Issuer: "edman", Audience: "edman-api", TTL: time.Hour})
	if err != nil {
		t.Fatal(err)
	}
	store := memory.NewStore()
	w, err := store.Populate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	logger := zaptest.NewLogger(t)
	tokens := &Tokens{revoked: map[string]bool{}}
	auth := authUsecase.NewAuthService(store, store.Users(), store.Centers(), store.Courses(), jm, tokens, tokens, logger)

	return &Env{
		Store:  store,
		World:  w,
		JWT:    jm,
		Auth:   auth,
		Access: access.NewService(store.Centers()),
		MW:     middleware.NewAuthMiddleware(auth),
		Logger: logger,
		Router: gin.New(),
		Tokens: tokens,
	}
}

// Token signs a session token for p.
func (e *Env) Token(t *testing.T, p *user.Principal) string {
	t.Helper()
	tok, err := e.JWT.Generator.Generate(p)
	if err != nil {
		t.Fatal(err)
	}
	return tok.Value
}

// Do sends a JSON request with an optional bearer token.
func (e *Env) Do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.Router.ServeHTTP(rec, req)
	return rec
}

// Decode unmarshals the envelope and its data into out, which may be nil.
func Decode(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) response.Response {
	t.Helper()
	var env struct {
		response.Response
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			t.Fatalf("decode data: %v", err)
		}
	}
	return env.Response
}

// Tokens is an in-memory revocation list and a permissive login limiter.
type Tokens struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func (s *Tokens) IsTokenBlacklisted(_ context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revoked[jti], nil
}

func (s *Tokens) BlacklistToken(_ context.Context, jti string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[jti] = true
	return nil
}

func (s *Tokens) CheckLoginAttempt(context.Context, string, string) (bool, int64, error) {
	return true, 5, nil
}

func (s *Tokens) ResetLoginAttempts(context.Context, string, string) error { return nil }

// Notifier discards events.
type Notifier struct{}

func (Notifier) NotifyUser(string, wstypes.EventType, interface{})    {}
func (Notifier) NotifyRole(user.Role, wstypes.EventType, interface{}) {}
