package v1

import (
	"net/http"

	"github.com/printprice/printprice/internal/api/dto"
	ierr "github.com/printprice/printprice/internal/errors"
	"github.com/printprice/printprice/internal/logger"
	"github.com/printprice/printprice/internal/service"
	"github.com/printprice/printprice/internal/types"
	"github.com/gin-gonic/gin"
)

type GeoZoneHandler struct {
	service service.GeoZoneService
	logger  *logger.Logger
}

func NewGeoZoneHandler(service service.GeoZoneService, logger *logger.Logger) *GeoZoneHandler {
	return &GeoZoneHandler{
		service: service,
		logger:  logger,
	}
}

// @Summary Create a geo zone
// @Description Create a geo zone
// @Tags Geo Zones
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param geozone body dto.CreateGeoZoneRequest true "Geo zone to create"
// @Success 201 {object} dto.GeoZoneResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /geozones [post]
func (h *GeoZoneHandler) CreateGeoZone(c *gin.Context) {
	var req dto.CreateGeoZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateGeoZone(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary Get a geo zone
// @Description Get a geo zone by ID
// @Tags Geo Zones
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Geo zone ID"
// @Success 200 {object} dto.GeoZoneResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /geozones/{id} [get]
func (h *GeoZoneHandler) GetGeoZone(c *gin.Context) {
	resp, err := h.service.GetGeoZone(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary List geo zones
// @Description List geo zones matching the filter
// @Tags Geo Zones
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param filter query types.GeoZoneFilter true "Filter"
// @Success 200 {object} dto.ListGeoZonesResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /geozones [get]
func (h *GeoZoneHandler) ListGeoZones(c *gin.Context) {
	var filter types.GeoZoneFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ListGeoZones(c.Request.Context(), &filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Update a geo zone
// @Description Update a geo zone
// @Tags Geo Zones
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Geo zone ID"
// @Param geozone body dto.UpdateGeoZoneRequest true "Geo zone fields to update"
// @Success 200 {object} dto.GeoZoneResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /geozones/{id} [put]
func (h *GeoZoneHandler) UpdateGeoZone(c *gin.Context) {
	var req dto.UpdateGeoZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.UpdateGeoZone(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Delete a geo zone
// @Description Delete a geo zone
// @Tags Geo Zones
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Geo zone ID"
// @Success 204 {object} nil
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /geozones/{id} [delete]
func (h *GeoZoneHandler) DeleteGeoZone(c *gin.Context) {
	if err := h.service.DeleteGeoZone(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Resolve a pincode
// @Description Resolve a pincode to its zone chain, most specific zone first
// @Tags Geo Zones
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param pincode query string true "6 digit pincode"
// @Success 200 {object} dto.ResolveZoneChainResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /geozones/resolve [get]
func (h *GeoZoneHandler) ResolveChain(c *gin.Context) {
	pincode := c.Query("pincode")
	if pincode == "" {
		c.Error(ierr.NewError("pincode is required").
			WithHint("Pass the pincode as a query parameter").
			Mark(ierr.ErrValidation))
		return
	}

	chain, err := h.service.ResolveChain(c.Request.Context(), pincode)
	if err != nil {
		c.Error(err)
		return
	}

	items := make([]*dto.GeoZoneResponse, len(chain))
	for i, zone := range chain {
		items[i] = &dto.GeoZoneResponse{GeoZone: zone}
	}

	c.JSON(http.StatusOK, &dto.ResolveZoneChainResponse{
		Pincode: pincode,
		Chain:   items,
	})
}
