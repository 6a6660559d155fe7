// internal/app/router.go
package app

import (
	"edman-service/internal/domain/user"
	authHandler "edman-service/internal/handlers/auth"
	catalogHandler "edman-service/internal/handlers/catalog"
	commissionHandler "edman-service/internal/handlers/commission"
	dashboardHandler "edman-service/internal/handlers/dashboard"
	leadHandler "edman-service/internal/handlers/lead"
	payoutHandler "edman-service/internal/handlers/payout"
	userHandler "edman-service/internal/handlers/user"
	wsHandler "edman-service/internal/handlers/websocket"
	"edman-service/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handlers struct {
	AuthHandler       *authHandler.AuthHandler
	UserHandler       *userHandler.UserHandler
	CatalogHandler    *catalogHandler.CatalogHandler
	LeadHandler       *leadHandler.LeadHandler
	CommissionHandler *commissionHandler.CommissionHandler
	PayoutHandler     *payoutHandler.PayoutHandler
	DashboardHandler  *dashboardHandler.DashboardHandler
	WSHandler         *wsHandler.WebSocketHandler
	AuthMiddleware    *middleware.AuthMiddleware
}

func SetupRouter(r *gin.Engine, logger *zap.Logger, h *Handlers) {
	api := r.Group("/api/v1")
	auth := h.AuthMiddleware

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "version": "1.0.0"})
	})

	// ==================== WebSocket ====================
	api.GET("/ws", h.WSHandler.HandleConnection)
	api.GET("/ws/stats", append(auth.AdminOnly(), h.WSHandler.GetStats)...)

	// ==================== Auth ====================
	authPublic := api.Group("/auth")
	{
		authPublic.POST("/register", h.AuthHandler.Register)
		authPublic.POST("/login", h.AuthHandler.Login)
	}

	authProtected := api.Group("/auth")
	authProtected.Use(auth.Auth())
	{
		authProtected.GET("/me", h.AuthHandler.GetMe)
		authProtected.POST("/logout", h.AuthHandler.Logout)
	}

	// ==================== Users (admin) ====================
	users := api.Group("/users")
	users.Use(auth.AdminOnly()...)
	{
		users.GET("", h.UserHandler.ListUsers)
		users.POST("", h.UserHandler.CreateUser)
		users.GET("/:id", h.UserHandler.GetUser)
		users.PUT("/:id", h.UserHandler.UpdateUser)
		users.DELETE("/:id", h.UserHandler.DeleteUser)
	}

	// ==================== Catalog ====================
	courses := api.Group("/courses")
	{
		courses.GET("", auth.OptionalAuth(), h.CatalogHandler.ListCourses)
		courses.GET("/:id", h.CatalogHandler.GetCourse)
		courses.POST("", append(auth.AdminOnly(), h.CatalogHandler.CreateCourse)...)
		courses.PUT("/:id", append(auth.AdminOnly(), h.CatalogHandler.UpdateCourse)...)
		courses.DELETE("/:id", append(auth.AdminOnly(), h.CatalogHandler.DeleteCourse)...)
	}
	api.GET("/centers", append(auth.AdminOnly(), h.CatalogHandler.ListCenters)...)

	// ==================== Leads ====================
	api.POST("/leads/public", h.LeadHandler.SubmitPublic)

	leads := api.Group("/leads")
	leads.Use(auth.Auth())
	{
		leads.GET("", h.LeadHandler.ListLeads)
		leads.POST("", auth.RequireRole(user.RoleAgent), h.LeadHandler.CreateLead)
		leads.GET("/:id", h.LeadHandler.GetLead)
		leads.PUT("/:id", h.LeadHandler.UpdateLead)
	}

	// ==================== Commissions & Payouts ====================
	api.GET("/commissions", auth.Auth(), h.CommissionHandler.ListCommissions)

	payouts := api.Group("/payouts")
	payouts.Use(auth.Auth())
	{
		payouts.GET("", h.PayoutHandler.ListPayouts)
		payouts.POST("", auth.RequireRole(user.RoleAgent), h.PayoutHandler.RequestPayout)
		payouts.GET("/:id", h.PayoutHandler.GetPayout)
		payouts.PUT("/:id", auth.RequireRole(user.RoleAdmin), h.PayoutHandler.ResolvePayout)
	}

	// ==================== Dashboard ====================
	api.GET("/dashboard/stats", auth.Auth(), h.DashboardHandler.GetStats)

	logger.Info("routes registered", zap.Int("count", len(r.Routes())))
}
