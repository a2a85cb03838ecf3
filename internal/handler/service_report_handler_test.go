package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/mycad-io/fleet-api/internal/models"
)

func TestServiceReportSearchRequestTypeFilter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/service-reports?type=preventive", nil)
	c.Request = req

	parsed := serviceReportSearchRequest(c)
	assert.Equal(t, models.ServiceReportPreventive, parsed.Filters["sr.report_type"])
}

func TestServiceReportSearchRequestDropsUnknownType(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/service-reports?type=bogus", nil)
	c.Request = req

	parsed := serviceReportSearchRequest(c)
	assert.Nil(t, parsed.Filters)
}
