package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchRequestParsesQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/vehicles?search=hilux&status=Disponible,Rentado&page=3&limit=25&sort=plate_number&order=desc", nil)
	c.Request = req

	parsed := searchRequest(c)
	assert.Equal(t, "hilux", parsed.Search)
	assert.Equal(t, []string{"Disponible", "Rentado"}, parsed.StatusLabels)
	assert.Equal(t, 3, parsed.Page)
	assert.Equal(t, 25, parsed.PageSize)
	assert.Equal(t, "plate_number", parsed.SortField)
	assert.Equal(t, "desc", parsed.SortDirection)
}

func TestSearchRequestCoercesBadInput(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/vehicles?page=abc&limit=-5&status=", nil)
	c.Request = req

	parsed := searchRequest(c)
	assert.Equal(t, 1, parsed.Page)
	assert.Equal(t, 10, parsed.PageSize)
	assert.Empty(t, parsed.StatusLabels)
}

func TestVehicleHandlerCreateInvalidPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewVehicleHandler(nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/vehicles", bytes.NewReader([]byte(`not json`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVehicleHandlerUpdateStatusRequiresStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewVehicleHandler(nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPatch, "/vehicles/v1/status", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "v1"}}

	handler.UpdateStatus(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
