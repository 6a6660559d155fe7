// internal/handlers/payout/payout_handler.go
package payout

import (
	"net/http"

	"edman-service/internal/domain/payout"
	"edman-service/internal/middleware"
	"edman-service/internal/pkg/response"
	payoutUsecase "edman-service/internal/service/payout"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PayoutHandler struct {
	payoutService *payoutUsecase.PayoutService
	logger        *zap.Logger
}

func NewPayoutHandler(payoutService *payoutUsecase.PayoutService, logger *zap.Logger) *PayoutHandler {
	return &PayoutHandler{
		payoutService: payoutService,
		logger:        logger,
	}
}

// RequestPayout batches the agent's pending commissions
func (h *PayoutHandler) RequestPayout(c *gin.Context) {
	p := middleware.MustCurrentUser(c)

	var req payout.RequestPayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	po, err := h.payoutService.Request(c.Request.Context(), p, &req)
	if err != nil {
		response.FromError(c, h.logger, "failed to request payout", err)
		return
	}

	response.Success(c, http.StatusCreated, "payout requested", po)
}

// ResolvePayout applies APPROVE, REJECT or MARK_PAID (admin only)
func (h *PayoutHandler) ResolvePayout(c *gin.Context) {
	p := middleware.MustCurrentUser(c)

	var req payout.ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	po, err := h.payoutService.Resolve(c.Request.Context(), p, c.Param("id"), &req)
	if err != nil {
		response.FromError(c, h.logger, "failed to update payout", err)
		return
	}

	response.Success(c, http.StatusOK, "payout updated", po)
}

func (h *PayoutHandler) ListPayouts(c *gin.Context) {
	p := middleware.MustCurrentUser(c)

	list, err := h.payoutService.List(c.Request.Context(), p)
	if err != nil {
		response.FromError(c, h.logger, "failed to list payouts", err)
		return
	}

	response.Success(c, http.StatusOK, "payouts retrieved", list)
}

func (h *PayoutHandler) GetPayout(c *gin.Context) {
	p := middleware.MustCurrentUser(c)

	view, err := h.payoutService.Get(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		response.FromError(c, h.logger, "failed to get payout", err)
		return
	}

	response.Success(c, http.StatusOK, "payout retrieved", view)
}
