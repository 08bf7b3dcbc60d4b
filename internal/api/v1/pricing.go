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

type PricingHandler struct {
	service service.PricingService
	logger  *logger.Logger
}

func NewPricingHandler(service service.PricingService, logger *logger.Logger) *PricingHandler {
	return &PricingHandler{
		service: service,
		logger:  logger,
	}
}

// @Summary Resolve a price
// @Description Compute the authoritative price for a product, location and configuration without persisting anything
// @Tags Pricing
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body dto.PricingRequest true "Pricing request"
// @Success 200 {object} dto.PricingResult
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /pricing/resolve [post]
func (h *PricingHandler) ResolvePrice(c *gin.Context) {
	var req dto.PricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ResolvePrice(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Create a price snapshot
// @Description Resolve the price for an order and persist the snapshot, its calculation logs and promo redemptions in one transaction
// @Tags Pricing
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body dto.CreatePriceSnapshotRequest true "Snapshot request"
// @Success 201 {object} dto.CreatePriceSnapshotResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 409 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /pricing/snapshots [post]
func (h *PricingHandler) CreatePriceSnapshot(c *gin.Context) {
	var req dto.CreatePriceSnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreatePriceSnapshot(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary Get a price snapshot
// @Description Get a price snapshot by ID
// @Tags Pricing
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Snapshot ID"
// @Success 200 {object} dto.PriceSnapshotResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /pricing/snapshots/{id} [get]
func (h *PricingHandler) GetPriceSnapshot(c *gin.Context) {
	resp, err := h.service.GetPriceSnapshot(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary List price snapshots
// @Description List price snapshots matching the filter
// @Tags Pricing
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param filter query types.PriceSnapshotFilter true "Filter"
// @Success 200 {object} dto.ListPriceSnapshotsResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /pricing/snapshots [get]
func (h *PricingHandler) ListPriceSnapshots(c *gin.Context) {
	var filter types.PriceSnapshotFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ListPriceSnapshots(c.Request.Context(), &filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Get snapshot calculation logs
// @Description Get the step-by-step calculation audit trail of a snapshot
// @Tags Pricing
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Snapshot ID"
// @Success 200 {object} dto.ListCalculationLogsResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /pricing/snapshots/{id}/logs [get]
func (h *PricingHandler) ListCalculationLogs(c *gin.Context) {
	resp, err := h.service.ListCalculationLogs(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Get the latest snapshot for an order
// @Description Get the most recent price snapshot persisted for an order
// @Tags Pricing
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param order_id path string true "Order ID"
// @Success 200 {object} dto.PriceSnapshotResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /pricing/orders/{order_id}/snapshot [get]
func (h *PricingHandler) GetSnapshotByOrder(c *gin.Context) {
	resp, err := h.service.GetSnapshotByOrder(c.Request.Context(), c.Param("order_id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
