package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skyprep/aviation-exam-api/internal/models"
	appErrors "github.com/skyprep/aviation-exam-api/pkg/errors"
	"github.com/skyprep/aviation-exam-api/pkg/response"
)

// CatalogHandler serves the fixed course catalog.
type CatalogHandler struct{}

// NewCatalogHandler creates a new handler.
func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

// Courses godoc
// @Summary List courses and period options for a group
// @Tags Catalog
// @Produce json
// @Param group path string true "Trainee group" Enums(PPL, ATPL)
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /catalog/{group} [get]
func (h *CatalogHandler) Courses(c *gin.Context) {
	group := models.Group(c.Param("group"))
	if !models.ValidGroup(group) {
		response.Error(c, appErrors.ErrInvalidGroup)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{
		"group":   group,
		"courses": models.CoursesFor(group),
		"periods": models.PeriodOptionsFor(group),
	}, nil)
}
