package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skyprep/aviation-exam-api/internal/service"
	appErrors "github.com/skyprep/aviation-exam-api/pkg/errors"
	"github.com/skyprep/aviation-exam-api/pkg/response"
)

// ScheduleHandler exposes the administrator exam calendar.
type ScheduleHandler struct {
	service *service.ScheduleService
}

// NewScheduleHandler creates a new handler.
func NewScheduleHandler(svc *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: svc}
}

// Create godoc
// @Summary Schedule an exam event
// @Tags Calendar
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateExamEventRequest true "Event payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/calendar [post]
func (h *ScheduleHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CreateExamEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrMissingField.Code, http.StatusBadRequest, "account, date and lesson are required"))
		return
	}
	req.ActorID = claims.AccountID
	req.IP = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	event, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, event)
}

// Delete godoc
// @Summary Remove an exam event
// @Tags Calendar
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 204 "No Content"
// @Failure 404 {object} response.Envelope
// @Router /admin/calendar/{id} [delete]
func (h *ScheduleHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Delete(c.Request.Context(), c.Param("id"), claims.AccountID, c.ClientIP(), c.GetHeader("User-Agent")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// List godoc
// @Summary List exam events sorted by date
// @Description Events carry an is_upcoming flag relative to the current day
// @Tags Calendar
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/calendar [get]
func (h *ScheduleHandler) List(c *gin.Context) {
	events, err := h.service.ListSorted(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, events, nil)
}
