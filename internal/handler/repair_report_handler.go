package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mycad-io/fleet-api/internal/service"
	appErrors "github.com/mycad-io/fleet-api/pkg/errors"
	"github.com/mycad-io/fleet-api/pkg/response"
)

// RepairReportHandler exposes repair report endpoints.
type RepairReportHandler struct {
	reports *service.RepairReportService
}

// NewRepairReportHandler constructs RepairReportHandler.
func NewRepairReportHandler(reports *service.RepairReportService) *RepairReportHandler {
	return &RepairReportHandler{reports: reports}
}

// List godoc
// @Summary List repair reports
// @Tags RepairReports
// @Produce json
// @Param search query string false "Search by folio, plate or workshop"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /repair-reports [get]
func (h *RepairReportHandler) List(c *gin.Context) {
	page, err := h.reports.Search(c.Request.Context(), searchRequest(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, page.Data, page.Pagination)
}

// Get godoc
// @Summary Get repair report detail
// @Tags RepairReports
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} response.Envelope
// @Router /repair-reports/{id} [get]
func (h *RepairReportHandler) Get(c *gin.Context) {
	report, err := h.reports.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Create godoc
// @Summary Create repair report
// @Tags RepairReports
// @Accept json
// @Produce json
// @Param payload body service.RepairReportRequest true "Report payload"
// @Success 201 {object} response.Envelope
// @Router /repair-reports [post]
func (h *RepairReportHandler) Create(c *gin.Context) {
	var req service.RepairReportRequest
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
// @Summary Update repair report
// @Tags RepairReports
// @Accept json
// @Produce json
// @Param id path string true "Report ID"
// @Param payload body service.RepairReportRequest true "Report payload"
// @Success 200 {object} response.Envelope
// @Router /repair-reports/{id} [put]
func (h *RepairReportHandler) Update(c *gin.Context) {
	var req service.RepairReportRequest
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
// @Summary Delete repair report
// @Tags RepairReports
// @Produce json
// @Param id path string true "Report ID"
// @Success 204
// @Router /repair-reports/{id} [delete]
func (h *RepairReportHandler) Delete(c *gin.Context) {
	if err := h.reports.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
