// internal/handlers/auth/auth_handler.go
package auth

import (
	"net/http"
	"time"

	"edman-service/internal/domain/user"
	"edman-service/internal/middleware"
	"edman-service/internal/pkg/response"
	authUsecase "edman-service/internal/service/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService  *authUsecase.AuthService
	cookieSecure bool
	logger       *zap.Logger
}

func NewAuthHandler(authService *authUsecase.AuthService, cookieSecure bool, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		cookieSecure: cookieSecure,
		logger:       logger,
	}
}

// ========== Registration ==========

// Register creates an AGENT or CENTER account (public endpoint)
func (h *AuthHandler) Register(c *gin.Context) {
	var req user.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	info, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, h.logger, "registration failed", err)
		return
	}

	response.Success(c, http.StatusCreated, "registration successful", info)
}

// ========== Login ==========

// Login issues a session token, returned in the body and as an HTTP-only
// cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	var req user.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	req.IPAddress = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	loginResp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, h.logger, "login failed", err)
		return
	}

	maxAge := int(time.Until(loginResp.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AuthCookie, loginResp.Token, maxAge, "/", "", h.cookieSecure, true)

	response.Success(c, http.StatusOK, "login successful", loginResp)
}

// ========== Session ==========

// Logout revokes the current token and clears the cookie (requires auth)
func (h *AuthHandler) Logout(c *gin.Context) {
	p := middleware.MustCurrentUser(c)
	jti, _ := middleware.GetJTI(c)
	expiresAt, _ := middleware.GetTokenExpiry(c)

	if err := h.authService.Logout(c.Request.Context(), p.ID, jti, expiresAt); err != nil {
		response.FromError(c, h.logger, "logout failed", err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AuthCookie, "", -1, "/", "", h.cookieSecure, true)
	response.Success(c, http.StatusOK, "logout successful", nil)
}

// GetMe returns the authenticated user
func (h *AuthHandler) GetMe(c *gin.Context) {
	p := middleware.MustCurrentUser(c)

	info, err := h.authService.Me(c.Request.Context(), p.ID)
	if err != nil {
		response.FromError(c, h.logger, "failed to load user", err)
		return
	}

	response.Success(c, http.StatusOK, "user retrieved", info)
}
