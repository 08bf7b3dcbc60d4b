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

type UserSegmentHandler struct {
	service service.UserSegmentService
	logger  *logger.Logger
}

func NewUserSegmentHandler(service service.UserSegmentService, logger *logger.Logger) *UserSegmentHandler {
	return &UserSegmentHandler{
		service: service,
		logger:  logger,
	}
}

// @Summary Create a user segment
// @Description Create a user segment
// @Tags User Segments
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param segment body dto.CreateUserSegmentRequest true "Segment to create"
// @Success 201 {object} dto.UserSegmentResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 409 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /segments [post]
func (h *UserSegmentHandler) CreateUserSegment(c *gin.Context) {
	var req dto.CreateUserSegmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateUserSegment(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary Get a user segment
// @Description Get a user segment by ID
// @Tags User Segments
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Segment ID"
// @Success 200 {object} dto.UserSegmentResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /segments/{id} [get]
func (h *UserSegmentHandler) GetUserSegment(c *gin.Context) {
	resp, err := h.service.GetUserSegment(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary List user segments
// @Description List user segments matching the filter
// @Tags User Segments
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param filter query types.UserSegmentFilter true "Filter"
// @Success 200 {object} dto.ListUserSegmentsResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /segments [get]
func (h *UserSegmentHandler) ListUserSegments(c *gin.Context) {
	var filter types.UserSegmentFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ListUserSegments(c.Request.Context(), &filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Update a user segment
// @Description Update a user segment
// @Tags User Segments
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Segment ID"
// @Param segment body dto.UpdateUserSegmentRequest true "Segment fields to update"
// @Success 200 {object} dto.UserSegmentResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /segments/{id} [put]
func (h *UserSegmentHandler) UpdateUserSegment(c *gin.Context) {
	var req dto.UpdateUserSegmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.UpdateUserSegment(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Delete a user segment
// @Description Delete a user segment
// @Tags User Segments
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Segment ID"
// @Success 204 {object} nil
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /segments/{id} [delete]
func (h *UserSegmentHandler) DeleteUserSegment(c *gin.Context) {
	if err := h.service.DeleteUserSegment(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Set the default segment
// @Description Promote the segment to the guest fallback, demoting the previous default
// @Tags User Segments
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Segment ID"
// @Success 200 {object} dto.UserSegmentResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /segments/{id}/default [post]
func (h *UserSegmentHandler) SetDefault(c *gin.Context) {
	resp, err := h.service.SetDefault(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Assign a user to a segment
// @Description Bind a user to the segment, replacing any previous binding
// @Tags User Segments
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Segment ID"
// @Param assignment body dto.AssignUserSegmentRequest true "User to assign"
// @Success 204 {object} nil
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /segments/{id}/assignments [post]
func (h *UserSegmentHandler) AssignUser(c *gin.Context) {
	var req dto.AssignUserSegmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	if err := h.service.AssignUser(c.Request.Context(), c.Param("id"), req); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}
