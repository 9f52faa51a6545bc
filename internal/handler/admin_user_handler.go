package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/hifzhub/tahfiz-enrollment-api/internal/dto"
	"github.com/hifzhub/tahfiz-enrollment-api/internal/service"
	appErrors "github.com/hifzhub/tahfiz-enrollment-api/pkg/errors"
	"github.com/hifzhub/tahfiz-enrollment-api/pkg/response"
)

// AdminUserHandler wires the admin user management endpoints.
type AdminUserHandler struct {
	service *service.UserAdminService
}

// NewAdminUserHandler creates a new handler.
func NewAdminUserHandler(svc *service.UserAdminService) *AdminUserHandler {
	return &AdminUserHandler{service: svc}
}

// List godoc
// @Summary List all users
// @Description Every account grouped by role
// @Tags Administration
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/users [get]
func (h *AdminUserHandler) List(c *gin.Context) {
	users, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, users)
}

// UpdateRole godoc
// @Summary Update a user's role
// @Description Reassign the stored role; effective on the target's next request
// @Tags Administration
// @Accept json
// @Produce json
// @Param payload body dto.UpdateRoleRequest true "Role payload"
// @Success 204 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/users [patch]
func (h *AdminUserHandler) UpdateRole(c *gin.Context) {
	var req dto.UpdateRoleRequest
	if !bindJSON(c, &req, "user_id and role are required") {
		return
	}

	if err := h.service.UpdateRole(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Delete godoc
// @Summary Delete a user
// @Description Remove the account; the store cascades its dependents
// @Tags Administration
// @Produce json
// @Param user_id query string true "User ID"
// @Success 204 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/users [delete]
func (h *AdminUserHandler) Delete(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "user_id is required"))
		return
	}

	if err := h.service.Delete(c.Request.Context(), userID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
