package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/skyprep/aviation-exam-api/internal/models"
)

func queryContext(target string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c
}

func TestRosterFilterFromQueryDefaults(t *testing.T) {
	filter := rosterFilterFromQuery(queryContext("/admin/trainees"))

	assert.Empty(t, filter.Group)
	assert.Empty(t, filter.Period)
	assert.Equal(t, 1, filter.Page)
	assert.Equal(t, 20, filter.PageSize)
}

func TestRosterFilterFromQueryValues(t *testing.T) {
	filter := rosterFilterFromQuery(queryContext("/admin/trainees?group=ATPL&period=ATPL+aktif&page=3&limit=50"))

	assert.Equal(t, models.GroupATPL, filter.Group)
	assert.Equal(t, "ATPL aktif", filter.Period)
	assert.Equal(t, 3, filter.Page)
	assert.Equal(t, 50, filter.PageSize)
}
