// internal/handlers/lead/lead_handler.go
package lead

import (
	"net/http"

	"edman-service/internal/domain/lead"
	"edman-service/internal/middleware"
	"edman-service/internal/pkg/response"
	leadUsecase "edman-service/internal/service/lead"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type LeadHandler struct {
	leadService *leadUsecase.LeadService
	logger      *zap.Logger
}

func NewLeadHandler(leadService *leadUsecase.LeadService, logger *zap.Logger) *LeadHandler {
	return &LeadHandler{
		leadService: leadService,
		logger:      logger,
	}
}

// CreateLead records a lead for the calling agent
func (h *LeadHandler) CreateLead(c *gin.Context) {
	p := middleware.MustCurrentUser(c)

	var req lead.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	l, err := h.leadService.Create(c.Request.Context(), p, &req)
	if err != nil {
		response.FromError(c, h.logger, "failed to create lead", err)
		return
	}

	response.Success(c, http.StatusCreated, "lead created", l)
}

// SubmitPublic accepts a lead from an agent's referral form (public endpoint)
func (h *LeadHandler) SubmitPublic(c *gin.Context) {
	var req lead.PublicLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	resp, err := h.leadService.SubmitPublic(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, h.logger, "failed to submit lead", err)
		return
	}

	response.Success(c, http.StatusCreated, "lead submitted", resp)
}

func (h *LeadHandler) ListLeads(c *gin.Context) {
	p := middleware.MustCurrentUser(c)

	var q lead.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid status filter", err)
		return
	}

	leads, err := h.leadService.List(c.Request.Context(), p, &q)
	if err != nil {
		response.FromError(c, h.logger, "failed to list leads", err)
		return
	}

	response.Success(c, http.StatusOK, "leads retrieved", leads)
}

func (h *LeadHandler) GetLead(c *gin.Context) {
	p := middleware.MustCurrentUser(c)

	d, err := h.leadService.Get(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		response.FromError(c, h.logger, "failed to get lead", err)
		return
	}

	response.Success(c, http.StatusOK, "lead retrieved", d)
}

// UpdateLead changes status, notes or follow-up date. Closing a lead creates
// its commission.
func (h *LeadHandler) UpdateLead(c *gin.Context) {
	p := middleware.MustCurrentUser(c)

	var req lead.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.leadService.Transition(c.Request.Context(), p, c.Param("id"), &req)
	if err != nil {
		response.FromError(c, h.logger, "failed to update lead", err)
		return
	}

	response.Success(c, http.StatusOK, "lead updated", result)
}
