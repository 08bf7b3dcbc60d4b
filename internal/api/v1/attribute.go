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

type AttributeHandler struct {
	service service.AttributeService
	logger  *logger.Logger
}

func NewAttributeHandler(service service.AttributeService, logger *logger.Logger) *AttributeHandler {
	return &AttributeHandler{
		service: service,
		logger:  logger,
	}
}

// @Summary Create an attribute type
// @Description Create an attribute type
// @Tags Attributes
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param attribute body dto.CreateAttributeTypeRequest true "Attribute type to create"
// @Success 201 {object} dto.AttributeTypeResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /attributes [post]
func (h *AttributeHandler) CreateAttributeType(c *gin.Context) {
	var req dto.CreateAttributeTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateAttributeType(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary Get an attribute type
// @Description Get an attribute type by ID
// @Tags Attributes
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Attribute type ID"
// @Success 200 {object} dto.AttributeTypeResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /attributes/{id} [get]
func (h *AttributeHandler) GetAttributeType(c *gin.Context) {
	resp, err := h.service.GetAttributeType(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary List attribute types
// @Description List attribute types matching the filter
// @Tags Attributes
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param filter query types.AttributeTypeFilter true "Filter"
// @Success 200 {object} dto.ListAttributeTypesResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /attributes [get]
func (h *AttributeHandler) ListAttributeTypes(c *gin.Context) {
	var filter types.AttributeTypeFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ListAttributeTypes(c.Request.Context(), &filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Update an attribute type
// @Description Update an attribute type; the machine name is immutable
// @Tags Attributes
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Attribute type ID"
// @Param attribute body dto.UpdateAttributeTypeRequest true "Attribute type fields to update"
// @Success 200 {object} dto.AttributeTypeResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /attributes/{id} [put]
func (h *AttributeHandler) UpdateAttributeType(c *gin.Context) {
	var req dto.UpdateAttributeTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.UpdateAttributeType(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Delete an attribute type
// @Description Delete an attribute type
// @Tags Attributes
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Attribute type ID"
// @Success 204 {object} nil
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /attributes/{id} [delete]
func (h *AttributeHandler) DeleteAttributeType(c *gin.Context) {
	if err := h.service.DeleteAttributeType(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Add an attribute value
// @Description Add a value to an attribute type; set product_id to create a product level override
// @Tags Attributes
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Attribute type ID"
// @Param value body dto.CreateAttributeValueRequest true "Value to add"
// @Success 201 {object} dto.AttributeValueResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /attributes/{id}/values [post]
func (h *AttributeHandler) CreateValue(c *gin.Context) {
	var req dto.CreateAttributeValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateValue(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary List attribute values
// @Description List the values of an attribute type; pass product_id to include that product's overrides
// @Tags Attributes
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Attribute type ID"
// @Param product_id query string false "Product ID for overrides"
// @Success 200 {object} dto.ListAttributeValuesResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /attributes/{id}/values [get]
func (h *AttributeHandler) ListValues(c *gin.Context) {
	resp, err := h.service.ListValues(c.Request.Context(), c.Param("id"), c.Query("product_id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Update an attribute value
// @Description Update an attribute value; the value string itself is immutable
// @Tags Attributes
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Value ID"
// @Param value body dto.UpdateAttributeValueRequest true "Value fields to update"
// @Success 200 {object} dto.AttributeValueResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /attributes/values/{id} [put]
func (h *AttributeHandler) UpdateValue(c *gin.Context) {
	var req dto.UpdateAttributeValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.UpdateValue(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Delete an attribute value
// @Description Delete an attribute value
// @Tags Attributes
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Value ID"
// @Success 204 {object} nil
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /attributes/values/{id} [delete]
func (h *AttributeHandler) DeleteValue(c *gin.Context) {
	if err := h.service.DeleteValue(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Create an attribute rule
// @Description Create an attribute rule wiring configurator behavior to selections
// @Tags Attributes
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param rule body dto.CreateAttributeRuleRequest true "Rule to create"
// @Success 201 {object} dto.AttributeRuleResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /attributes/rules [post]
func (h *AttributeHandler) CreateRule(c *gin.Context) {
	var req dto.CreateAttributeRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateRule(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary Get an attribute rule
// @Description Get an attribute rule by ID
// @Tags Attributes
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Rule ID"
// @Success 200 {object} dto.AttributeRuleResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /attributes/rules/{id} [get]
func (h *AttributeHandler) GetRule(c *gin.Context) {
	resp, err := h.service.GetRule(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary List attribute rules
// @Description List attribute rules matching the filter
// @Tags Attributes
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param filter query types.AttributeRuleFilter true "Filter"
// @Success 200 {object} dto.ListAttributeRulesResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /attributes/rules [get]
func (h *AttributeHandler) ListRules(c *gin.Context) {
	var filter types.AttributeRuleFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ListRules(c.Request.Context(), &filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Update an attribute rule
// @Description Update an attribute rule; the condition and action are immutable
// @Tags Attributes
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Rule ID"
// @Param rule body dto.UpdateAttributeRuleRequest true "Rule fields to update"
// @Success 200 {object} dto.AttributeRuleResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /attributes/rules/{id} [put]
func (h *AttributeHandler) UpdateRule(c *gin.Context) {
	var req dto.UpdateAttributeRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.UpdateRule(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Delete an attribute rule
// @Description Delete an attribute rule
// @Tags Attributes
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Rule ID"
// @Success 204 {object} nil
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /attributes/rules/{id} [delete]
func (h *AttributeHandler) DeleteRule(c *gin.Context) {
	if err := h.service.DeleteRule(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}
