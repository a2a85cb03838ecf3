package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mycad-io/fleet-api/internal/service"
	appErrors "github.com/mycad-io/fleet-api/pkg/errors"
	"github.com/mycad-io/fleet-api/pkg/response"
)

// CatalogHandler exposes brand, vehicle type, condition and model endpoints.
// The flat catalogs share handlers; the route wiring picks the kind.
type CatalogHandler struct {
	catalogs *service.CatalogService
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(catalogs *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogs: catalogs}
}

// List godoc
// @Summary List catalog entries
// @Tags Catalogs
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /catalogs/{kind} [get]
func (h *CatalogHandler) List(kind service.CatalogKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := h.catalogs.List(c.Request.Context(), kind)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, entries, nil)
	}
}

// Create godoc
// @Summary Create catalog entry
// @Tags Catalogs
// @Accept json
// @Produce json
// @Param payload body service.CatalogEntryRequest true "Entry payload"
// @Success 201 {object} response.Envelope
// @Router /catalogs/{kind} [post]
func (h *CatalogHandler) Create(kind service.CatalogKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.CatalogEntryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
			return
		}
		entry, err := h.catalogs.Create(c.Request.Context(), kind, req)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Created(c, entry)
	}
}

// Update godoc
// @Summary Rename catalog entry
// @Tags Catalogs
// @Accept json
// @Produce json
// @Param id path string true "Entry ID"
// @Param payload body service.CatalogEntryRequest true "Entry payload"
// @Success 200 {object} response.Envelope
// @Router /catalogs/{kind}/{id} [put]
func (h *CatalogHandler) Update(kind service.CatalogKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.CatalogEntryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
			return
		}
		entry, err := h.catalogs.Update(c.Request.Context(), kind, c.Param("id"), req)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, entry, nil)
	}
}

// Delete godoc
// @Summary Delete catalog entry
// @Tags Catalogs
// @Produce json
// @Param id path string true "Entry ID"
// @Success 204
// @Router /catalogs/{kind}/{id} [delete]
func (h *CatalogHandler) Delete(kind service.CatalogKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h.catalogs.Delete(c.Request.Context(), kind, c.Param("id")); err != nil {
			response.Error(c, err)
			return
		}
		response.NoContent(c)
	}
}

// ListModels godoc
// @Summary List vehicle models
// @Tags Catalogs
// @Produce json
// @Param brand_id query string false "Filter by brand"
// @Success 200 {object} response.Envelope
// @Router /catalogs/models [get]
func (h *CatalogHandler) ListModels(c *gin.Context) {
	models, err := h.catalogs.ListModels(c.Request.Context(), c.Query("brand_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, models, nil)
}

// CreateModel godoc
// @Summary Create vehicle model
// @Tags Catalogs
// @Accept json
// @Produce json
// @Param payload body service.VehicleModelRequest true "Model payload"
// @Success 201 {object} response.Envelope
// @Router /catalogs/models [post]
func (h *CatalogHandler) CreateModel(c *gin.Context) {
	var req service.VehicleModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	model, err := h.catalogs.CreateModel(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, model)
}

// UpdateModel godoc
// @Summary Update vehicle model
// @Tags Catalogs
// @Accept json
// @Produce json
// @Param id path string true "Model ID"
// @Param payload body service.VehicleModelRequest true "Model payload"
// @Success 200 {object} response.Envelope
// @Router /catalogs/models/{id} [put]
func (h *CatalogHandler) UpdateModel(c *gin.Context) {
	var req service.VehicleModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	model, err := h.catalogs.UpdateModel(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, model, nil)
}

// DeleteModel godoc
// @Summary Delete vehicle model
// @Tags Catalogs
// @Produce json
// @Param id path string true "Model ID"
// @Success 204
// @Router /catalogs/models/{id} [delete]
func (h *CatalogHandler) DeleteModel(c *gin.Context) {
	if err := h.catalogs.DeleteModel(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
