// internal/handlers/commission/commission_handler.go
package commission

import (
	"net/http"

	"edman-service/internal/middleware"
	"edman-service/internal/pkg/response"
	commissionUsecase "edman-service/internal/service/commission"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CommissionHandler struct {
	commissionService *commissionUsecase.CommissionService
	logger            *zap.Logger
}

func NewCommissionHandler(commissionService *commissionUsecase.CommissionService, logger *zap.Logger) *CommissionHandler {
	return &CommissionHandler{
		commissionService: commissionService,
		logger:            logger,
	}
}

func (h *CommissionHandler) ListCommissions(c *gin.Context) {
	p := middleware.MustCurrentUser(c)

	resp, err := h.commissionService.List(c.Request.Context(), p)
	if err != nil {
		response.FromError(c, h.logger, "failed to list commissions", err)
		return
	}

	response.Success(c, http.StatusOK, "commissions retrieved", resp)
}
