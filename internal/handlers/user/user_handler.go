// internal/handlers/user/user_handler.go
package user

import (
	"net/http"

	"edman-service/internal/domain/user"
	"edman-service/internal/middleware"
	"edman-service/internal/pkg/response"
	userUsecase "edman-service/internal/service/user"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserHandler serves the admin user-management routes.
type UserHandler struct {
	userService *userUsecase.UserService
	logger      *zap.Logger
}

func NewUserHandler(userService *userUsecase.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	var filters user.ListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.ValidationError(c, "invalid query parameters", err)
		return
	}

	users, err := h.userService.List(c.Request.Context(), &filters)
	if err != nil {
		response.FromError(c, h.logger, "failed to list users", err)
		return
	}

	response.Success(c, http.StatusOK, "users retrieved", users)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	info, err := h.userService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, h.logger, "failed to get user", err)
		return
	}

	response.Success(c, http.StatusOK, "user retrieved", info)
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	admin := middleware.MustCurrentUser(c)

	var req user.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	info, err := h.userService.Create(c.Request.Context(), admin.ID, &req)
	if err != nil {
		response.FromError(c, h.logger, "failed to create user", err)
		return
	}

	response.Success(c, http.StatusCreated, "user created", info)
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req user.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	info, err := h.userService.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		response.FromError(c, h.logger, "failed to update user", err)
		return
	}

	response.Success(c, http.StatusOK, "user updated", info)
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	admin := middleware.MustCurrentUser(c)

	if err := h.userService.Delete(c.Request.Context(), admin.ID, c.Param("id")); err != nil {
		response.FromError(c, h.logger, "failed to delete user", err)
		return
	}

	response.Success(c, http.StatusOK, "user deleted", nil)
}
