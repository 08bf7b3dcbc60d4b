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

type PriceModifierHandler struct {
	service service.PriceModifierService
	logger  *logger.Logger
}

func NewPriceModifierHandler(service service.PriceModifierService, logger *logger.Logger) *PriceModifierHandler {
	return &PriceModifierHandler{
		service: service,
		logger:  logger,
	}
}

// @Summary Create a price modifier
// @Description Create a price modifier; each scope requires exactly its own discriminator field
// @Tags Price Modifiers
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param modifier body dto.CreatePriceModifierRequest true "Modifier to create"
// @Success 201 {object} dto.PriceModifierResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /modifiers [post]
func (h *PriceModifierHandler) CreatePriceModifier(c *gin.Context) {
	var req dto.CreatePriceModifierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreatePriceModifier(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary Get a price modifier
// @Description Get a price modifier by ID
// @Tags Price Modifiers
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Modifier ID"
// @Success 200 {object} dto.PriceModifierResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /modifiers/{id} [get]
func (h *PriceModifierHandler) GetPriceModifier(c *gin.Context) {
	resp, err := h.service.GetPriceModifier(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary List price modifiers
// @Description List price modifiers matching the filter, ordered by priority
// @Tags Price Modifiers
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param filter query types.PriceModifierFilter true "Filter"
// @Success 200 {object} dto.ListPriceModifiersResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /modifiers [get]
func (h *PriceModifierHandler) ListPriceModifiers(c *gin.Context) {
	var filter types.PriceModifierFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ListPriceModifiers(c.Request.Context(), &filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Update a price modifier
// @Description Update a price modifier; the scope and its discriminator are immutable
// @Tags Price Modifiers
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Modifier ID"
// @Param modifier body dto.UpdatePriceModifierRequest true "Modifier fields to update"
// @Success 200 {object} dto.PriceModifierResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /modifiers/{id} [put]
func (h *PriceModifierHandler) UpdatePriceModifier(c *gin.Context) {
	var req dto.UpdatePriceModifierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.UpdatePriceModifier(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Delete a price modifier
// @Description Delete a price modifier
// @Tags Price Modifiers
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Modifier ID"
// @Success 204 {object} nil
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /modifiers/{id} [delete]
func (h *PriceModifierHandler) DeletePriceModifier(c *gin.Context) {
	if err := h.service.DeletePriceModifier(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}
