// internal/handlers/dashboard/dashboard_handler.go
package dashboard

import (
	"net/http"

	"edman-service/internal/middleware"
	"edman-service/internal/pkg/response"
	dashboardUsecase "edman-service/internal/service/dashboard"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	dashboardService *dashboardUsecase.DashboardService
	logger           *zap.Logger
}

func NewDashboardHandler(dashboardService *dashboardUsecase.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		logger:           logger,
	}
}

func (h *DashboardHandler) GetStats(c *gin.Context) {
	p := middleware.MustCurrentUser(c)

	stats, err := h.dashboardService.Stats(c.Request.Context(), p)
	if err != nil {
		response.FromError(c, h.logger, "failed to load dashboard", err)
		return
	}

	response.Success(c, http.StatusOK, "dashboard stats retrieved", stats)
}
