// internal/handlers/catalog/catalog_handler.go
package catalog

import (
	"net/http"

	"edman-service/internal/domain/catalog"
	"edman-service/internal/middleware"
	"edman-service/internal/pkg/response"
	catalogUsecase "edman-service/internal/service/catalog"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CatalogHandler struct {
	catalogService *catalogUsecase.CatalogService
	logger         *zap.Logger
}

func NewCatalogHandler(catalogService *catalogUsecase.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// ========== Courses ==========

// ListCourses runs behind OptionalAuth; anonymous callers see active courses.
func (h *CatalogHandler) ListCourses(c *gin.Context) {
	p, _ := middleware.CurrentUser(c)

	courses, err := h.catalogService.ListCourses(c.Request.Context(), p)
	if err != nil {
		response.FromError(c, h.logger, "failed to list courses", err)
		return
	}

	response.Success(c, http.StatusOK, "courses retrieved", courses)
}

func (h *CatalogHandler) GetCourse(c *gin.Context) {
	course, err := h.catalogService.GetCourse(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, h.logger, "failed to get course", err)
		return
	}

	response.Success(c, http.StatusOK, "course retrieved", course)
}

func (h *CatalogHandler) CreateCourse(c *gin.Context) {
	var req catalog.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	course, err := h.catalogService.CreateCourse(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, h.logger, "failed to create course", err)
		return
	}

	response.Success(c, http.StatusCreated, "course created", course)
}

func (h *CatalogHandler) UpdateCourse(c *gin.Context) {
	var req catalog.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	course, err := h.catalogService.UpdateCourse(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		response.FromError(c, h.logger, "failed to update course", err)
		return
	}

	response.Success(c, http.StatusOK, "course updated", course)
}

func (h *CatalogHandler) DeleteCourse(c *gin.Context) {
	if err := h.catalogService.DeleteCourse(c.Request.Context(), c.Param("id")); err != nil {
		response.FromError(c, h.logger, "failed to delete course", err)
		return
	}

	response.Success(c, http.StatusOK, "course deleted", nil)
}

// ========== Centers ==========

func (h *CatalogHandler) ListCenters(c *gin.Context) {
	centers, err := h.catalogService.ListCenters(c.Request.Context())
	if err != nil {
		response.FromError(c, h.logger, "failed to list centers", err)
		return
	}

	response.Success(c, http.StatusOK, "centers retrieved", centers)
}
