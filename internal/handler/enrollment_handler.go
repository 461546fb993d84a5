package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skyprep/aviation-exam-api/internal/service"
	appErrors "github.com/skyprep/aviation-exam-api/pkg/errors"
	"github.com/skyprep/aviation-exam-api/pkg/response"
)

// EnrollmentHandler exposes the trainee's own enrollment record.
type EnrollmentHandler struct {
	service *service.EnrollmentService
}

// NewEnrollmentHandler creates a new handler.
func NewEnrollmentHandler(svc *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{service: svc}
}

// GetSelection godoc
// @Summary Load the current course selection for editing
// @Tags Enrollment
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /me/selection [get]
func (h *EnrollmentHandler) GetSelection(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	view, err := h.service.LoadForEditing(c.Request.Context(), claims.AccountID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, view, nil)
}

// SaveSelection godoc
// @Summary Replace the course selection and exam flags
// @Description Full replace; an empty lesson list is rejected and leaves the record unchanged
// @Tags Enrollment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.SaveSelectionRequest true "Selection payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /me/selection [put]
func (h *EnrollmentHandler) SaveSelection(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.SaveSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid selection payload"))
		return
	}

	view, err := h.service.SaveSelection(c.Request.Context(), claims.AccountID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, view, nil)
}

// Profile godoc
// @Summary Current trainee profile
// @Tags Enrollment
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /me/profile [get]
func (h *EnrollmentHandler) Profile(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	view, err := h.service.Profile(c.Request.Context(), claims.AccountID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, view, nil)
}
