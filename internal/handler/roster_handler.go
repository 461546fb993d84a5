package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/skyprep/aviation-exam-api/internal/models"
	"github.com/skyprep/aviation-exam-api/internal/service"
	"github.com/skyprep/aviation-exam-api/pkg/response"
)

// RosterHandler exposes the administrator trainee roster.
type RosterHandler struct {
	service *service.RosterService
}

// NewRosterHandler creates a new handler.
func NewRosterHandler(svc *service.RosterService) *RosterHandler {
	return &RosterHandler{service: svc}
}

func rosterFilterFromQuery(c *gin.Context) models.TraineeFilter {
	filter := models.TraineeFilter{
		Group:  models.Group(c.Query("group")),
		Period: c.Query("period"),
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	return filter
}

// List godoc
// @Summary List trainees with optional group and period filters
// @Tags Roster
// @Produce json
// @Security BearerAuth
// @Param group query string false "Trainee group" Enums(PPL, ATPL)
// @Param period query string false "Exact period label"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/trainees [get]
func (h *RosterHandler) List(c *gin.Context) {
	trainees, pagination, err := h.service.List(c.Request.Context(), rosterFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, trainees, pagination)
}

// Export godoc
// @Summary Export the trainee roster
// @Description Exports the full filtered set, not the current page
// @Tags Roster
// @Produce octet-stream
// @Security BearerAuth
// @Param group query string false "Trainee group" Enums(PPL, ATPL)
// @Param period query string false "Exact period label"
// @Param format query string false "File format" Enums(csv, pdf) default(csv)
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /admin/trainees/export [get]
func (h *RosterHandler) Export(c *gin.Context) {
	format := service.ExportFormat(c.DefaultQuery("format", "csv"))

	file, err := h.service.Export(c.Request.Context(), rosterFilterFromQuery(c), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+file.Name+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Content)
}
