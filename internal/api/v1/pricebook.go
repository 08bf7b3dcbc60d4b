package v1

import (
	"net/http"

	"github.com/printprice/printprice/internal/api/dto"
	ierr "github.com/printprice/printprice/internal/errors"
	"github.com/printprice/printprice/internal/logger"
	"github.com/printprice/printprice/internal/service"
	"github.com/printprice/printprice/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

type PriceBookHandler struct {
	service service.PriceBookService
	logger  *logger.Logger
}

func NewPriceBookHandler(service service.PriceBookService, logger *logger.Logger) *PriceBookHandler {
	return &PriceBookHandler{
		service: service,
		logger:  logger,
	}
}

// @Summary Create a price book
// @Description Create a price book
// @Tags Price Books
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param pricebook body dto.CreatePriceBookRequest true "Price book to create"
// @Success 201 {object} dto.PriceBookResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /pricebooks [post]
func (h *PriceBookHandler) CreatePriceBook(c *gin.Context) {
	var req dto.CreatePriceBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreatePriceBook(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary Get a price book
// @Description Get a price book by ID
// @Tags Price Books
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Price book ID"
// @Success 200 {object} dto.PriceBookResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /pricebooks/{id} [get]
func (h *PriceBookHandler) GetPriceBook(c *gin.Context) {
	resp, err := h.service.GetPriceBook(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary List price books
// @Description List price books matching the filter
// @Tags Price Books
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param filter query types.PriceBookFilter true "Filter"
// @Success 200 {object} dto.ListPriceBooksResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /pricebooks [get]
func (h *PriceBookHandler) ListPriceBooks(c *gin.Context) {
	var filter types.PriceBookFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ListPriceBooks(c.Request.Context(), &filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Update a price book
// @Description Update a price book; the currency is immutable after creation
// @Tags Price Books
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Price book ID"
// @Param pricebook body dto.UpdatePriceBookRequest true "Price book fields to update"
// @Success 200 {object} dto.PriceBookResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /pricebooks/{id} [put]
func (h *PriceBookHandler) UpdatePriceBook(c *gin.Context) {
	var req dto.UpdatePriceBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.UpdatePriceBook(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Delete a price book
// @Description Delete a price book; the default book of a currency cannot be deleted
// @Tags Price Books
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Price book ID"
// @Success 204 {object} nil
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /pricebooks/{id} [delete]
func (h *PriceBookHandler) DeletePriceBook(c *gin.Context) {
	if err := h.service.DeletePriceBook(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Set the default price book
// @Description Promote the book to the fallback for its currency, demoting the previous default
// @Tags Price Books
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Price book ID"
// @Success 200 {object} dto.PriceBookResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /pricebooks/{id}/default [post]
func (h *PriceBookHandler) SetDefault(c *gin.Context) {
	resp, err := h.service.SetDefault(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Add a price book entry
// @Description Add an entry to a price book; quantity tiers for the same product must not overlap
// @Tags Price Books
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Price book ID"
// @Param entry body dto.CreatePriceBookEntryRequest true "Entry to create"
// @Success 201 {object} dto.PriceBookEntryResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 409 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /pricebooks/{id}/entries [post]
func (h *PriceBookHandler) CreateEntry(c *gin.Context) {
	var req dto.CreatePriceBookEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateEntry(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary List price book entries
// @Description List the entries of a price book
// @Tags Price Books
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Price book ID"
// @Param filter query types.PriceBookEntryFilter true "Filter"
// @Success 200 {object} dto.ListPriceBookEntriesResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /pricebooks/{id}/entries [get]
func (h *PriceBookHandler) ListEntries(c *gin.Context) {
	var filter types.PriceBookEntryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}
	filter.PriceBookID = lo.ToPtr(c.Param("id"))

	resp, err := h.service.ListEntries(c.Request.Context(), &filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Get a price book entry
// @Description Get a price book entry by ID
// @Tags Price Books
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Entry ID"
// @Success 200 {object} dto.PriceBookEntryResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /pricebooks/entries/{id} [get]
func (h *PriceBookHandler) GetEntry(c *gin.Context) {
	resp, err := h.service.GetEntry(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Update a price book entry
// @Description Update a price book entry; tier moves that overlap a sibling entry are rejected
// @Tags Price Books
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Entry ID"
// @Param entry body dto.UpdatePriceBookEntryRequest true "Entry fields to update"
// @Success 200 {object} dto.PriceBookEntryResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 409 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /pricebooks/entries/{id} [put]
func (h *PriceBookHandler) UpdateEntry(c *gin.Context) {
	var req dto.UpdatePriceBookEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.UpdateEntry(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Delete a price book entry
// @Description Delete a price book entry
// @Tags Price Books
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Entry ID"
// @Success 204 {object} nil
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /pricebooks/entries/{id} [delete]
func (h *PriceBookHandler) DeleteEntry(c *gin.Context) {
	if err := h.service.DeleteEntry(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}
