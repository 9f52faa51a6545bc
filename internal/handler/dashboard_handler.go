package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/hifzhub/tahfiz-enrollment-api/internal/service"
	appErrors "github.com/hifzhub/tahfiz-enrollment-api/pkg/errors"
	"github.com/hifzhub/tahfiz-enrollment-api/pkg/response"
)

// DashboardHandler wires the dashboard endpoint.
type DashboardHandler struct {
	service *service.DashboardService
}

// NewDashboardHandler creates a new handler.
func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: svc}
}

// Get godoc
// @Summary Role-shaped dashboard
// @Description Landing payload matching the caller's resolved role
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /dashboard [get]
func (h *DashboardHandler) Get(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	dashboard, err := h.service.Get(c.Request.Context(), caller)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dashboard)
}
