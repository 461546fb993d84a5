package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skyprep/aviation-exam-api/internal/service"
	"github.com/skyprep/aviation-exam-api/pkg/response"
)

// DashboardHandler serves the administrator overview counters.
type DashboardHandler struct {
	service *service.DashboardService
}

// NewDashboardHandler creates a new handler.
func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: svc}
}

// Overview godoc
// @Summary Trainee counters for the admin dashboard
// @Description Counters are recomputed from live records on every request
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/dashboard [get]
func (h *DashboardHandler) Overview(c *gin.Context) {
	stats, err := h.service.Overview(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, stats, nil)
}
