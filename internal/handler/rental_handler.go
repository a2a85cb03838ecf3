package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mycad-io/fleet-api/internal/service"
	appErrors "github.com/mycad-io/fleet-api/pkg/errors"
	"github.com/mycad-io/fleet-api/pkg/response"
)

// RentalHandler exposes rental lifecycle endpoints.
type RentalHandler struct {
	rentals *service.RentalService
}

// NewRentalHandler constructs RentalHandler.
func NewRentalHandler(rentals *service.RentalService) *RentalHandler {
	return &RentalHandler{rentals: rentals}
}

// List godoc
// @Summary List rentals
// @Tags Rentals
// @Produce json
// @Param search query string false "Search by folio, client or vehicle"
// @Param status query string false "Status labels, comma separated"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /rentals [get]
func (h *RentalHandler) List(c *gin.Context) {
	page, err := h.rentals.Search(c.Request.Context(), searchRequest(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, page.Data, page.Pagination)
}

// Get godoc
// @Summary Get rental detail
// @Tags Rentals
// @Produce json
// @Param id path string true "Rental ID"
// @Success 200 {object} response.Envelope
// @Router /rentals/{id} [get]
func (h *RentalHandler) Get(c *gin.Context) {
	rental, err := h.rentals.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rental, nil)
}

// Create godoc
// @Summary Create rental
// @Tags Rentals
// @Accept json
// @Produce json
// @Param payload body service.CreateRentalRequest true "Rental payload"
// @Success 201 {object} response.Envelope
// @Router /rentals [post]
func (h *RentalHandler) Create(c *gin.Context) {
	var req service.CreateRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	rental, err := h.rentals.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, rental)
}

// Update godoc
// @Summary Update rental
// @Tags Rentals
// @Accept json
// @Produce json
// @Param id path string true "Rental ID"
// @Param payload body service.UpdateRentalRequest true "Rental payload"
// @Success 200 {object} response.Envelope
// @Router /rentals/{id} [put]
func (h *RentalHandler) Update(c *gin.Context) {
	var req service.UpdateRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	rental, err := h.rentals.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rental, nil)
}

// Activate godoc
// @Summary Activate rental
// @Description Marks a pending rental active and its vehicle rented
// @Tags Rentals
// @Produce json
// @Param id path string true "Rental ID"
// @Success 200 {object} response.Envelope
// @Router /rentals/{id}/activate [post]
func (h *RentalHandler) Activate(c *gin.Context) {
	rental, err := h.rentals.Activate(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rental, nil)
}

// Complete godoc
// @Summary Complete rental
// @Description Records return readings and frees the vehicle
// @Tags Rentals
// @Accept json
// @Produce json
// @Param id path string true "Rental ID"
// @Param payload body service.CloseRentalRequest true "Return readings"
// @Success 200 {object} response.Envelope
// @Router /rentals/{id}/complete [post]
func (h *RentalHandler) Complete(c *gin.Context) {
	var req service.CloseRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	rental, err := h.rentals.Complete(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rental, nil)
}

// Cancel godoc
// @Summary Cancel rental
// @Tags Rentals
// @Produce json
// @Param id path string true "Rental ID"
// @Success 200 {object} response.Envelope
// @Router /rentals/{id}/cancel [post]
func (h *RentalHandler) Cancel(c *gin.Context) {
	rental, err := h.rentals.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rental, nil)
}

// Delete godoc
// @Summary Delete rental
// @Tags Rentals
// @Produce json
// @Param id path string true "Rental ID"
// @Success 204
// @Router /rentals/{id} [delete]
func (h *RentalHandler) Delete(c *gin.Context) {
	if err := h.rentals.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
