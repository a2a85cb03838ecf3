package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mycad-io/fleet-api/internal/models"
	"github.com/mycad-io/fleet-api/internal/query"
	"github.com/mycad-io/fleet-api/internal/service"
	appErrors "github.com/mycad-io/fleet-api/pkg/errors"
	"github.com/mycad-io/fleet-api/pkg/response"
)

// ServiceReportHandler exposes maintenance report endpoints.
type ServiceReportHandler struct {
	reports *service.ServiceReportService
}

// NewServiceReportHandler constructs ServiceReportHandler.
func NewServiceReportHandler(reports *service.ServiceReportService) *ServiceReportHandler {
	return &ServiceReportHandler{reports: reports}
}

// List godoc
// @Summary List service reports
// @Tags ServiceReports
// @Produce json
// @Param search query string false "Search by folio or plate"
// @Param type query string false "Report type (PREVENTIVE or CORRECTIVE)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /service-reports [get]
func (h *ServiceReportHandler) List(c *gin.Context) {
	page, err := h.reports.Search(c.Request.Context(), serviceReportSearchRequest(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, page.Data, page.Pagination)
}

// serviceReportSearchRequest adds the report type filter on top of the common
// list parameters. Unknown types are dropped, matching how status labels are
// handled.
func serviceReportSearchRequest(c *gin.Context) query.Request {
	req := searchRequest(c)
	switch reportType := models.ServiceReportType(strings.ToUpper(c.Query("type"))); reportType {
	case models.ServiceReportPreventive, models.ServiceReportCorrective:
		req.Filters = map[string]interface{}{"sr.report_type": reportType}
	}
	return req
}

// Get godoc
// @Summary Get service report detail
// @Tags ServiceReports
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} response.Envelope
// @Router /service-reports/{id} [get]
func (h *ServiceReportHandler) Get(c *gin.Context) {
	report, err := h.reports.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Create godoc
// @Summary Create service report
// @Tags ServiceReports
// @Accept json
// @Produce json
// @Param payload body service.ServiceReportRequest true "Report payload"
// @Success 201 {object} response.Envelope
// @Router /service-reports [post]
func (h *ServiceReportHandler) Create(c *gin.Context) {
	var req service.ServiceReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	report, err := h.reports.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, report)
}

// Update godoc
// @Summary Update service report
// @Tags ServiceReports
// @Accept json
// @Produce json
// @Param id path string true "Report ID"
// @Param payload body service.ServiceReportRequest true "Report payload"
// @Success 200 {object} response.Envelope
// @Router /service-reports/{id} [put]
func (h *ServiceReportHandler) Update(c *gin.Context) {
	var req service.ServiceReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	report, err := h.reports.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Delete godoc
// @Summary Delete service report
// @Tags ServiceReports
// @Produce json
// @Param id path string true "Report ID"
// @Success 204
// @Router /service-reports/{id} [delete]
func (h *ServiceReportHandler) Delete(c *gin.Context) {
	if err := h.reports.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
