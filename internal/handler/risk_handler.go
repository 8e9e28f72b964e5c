package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edutrack-mx/sira-api/internal/service"
	appErrors "github.com/edutrack-mx/sira-api/pkg/errors"
	"github.com/edutrack-mx/sira-api/pkg/response"
)

// RiskHandler exposes risk taxonomy and association endpoints.
type RiskHandler struct {
	risks *service.RiskService
}

// NewRiskHandler constructs RiskHandler.
func NewRiskHandler(risks *service.RiskService) *RiskHandler {
	return &RiskHandler{risks: risks}
}

// ListCategories godoc
// @Summary List risk factor categories
// @Tags Risk Factors
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /risk-categories [get]
func (h *RiskHandler) ListCategories(c *gin.Context) {
	categories, err := h.risks.ListCategories(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, categories, nil)
}

// CreateCategory godoc
// @Summary Create risk factor category
// @Tags Risk Factors
// @Accept json
// @Produce json
// @Param payload body service.CreateRiskCategoryRequest true "Category payload"
// @Success 201 {object} response.Envelope
// @Router /risk-categories [post]
func (h *RiskHandler) CreateCategory(c *gin.Context) {
	var req service.CreateRiskCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	category, err := h.risks.CreateCategory(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, category)
}

// DeleteCategory godoc
// @Summary Delete risk factor category
// @Tags Risk Factors
// @Produce json
// @Param id path string true "Category ID"
// @Success 204
// @Router /risk-categories/{id} [delete]
func (h *RiskHandler) DeleteCategory(c *gin.Context) {
	if err := h.risks.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListFactors godoc
// @Summary List risk factors
// @Tags Risk Factors
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /risk-factors [get]
func (h *RiskHandler) ListFactors(c *gin.Context) {
	factors, err := h.risks.ListFactors(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, factors, nil)
}

// ListRecordAssociations godoc
// @Summary List risk factor associations for a record
// @Tags Risk Factors
// @Produce json
// @Param id path string true "Record ID"
// @Success 200 {object} response.Envelope
// @Router /records/{id}/risk-factors [get]
func (h *RiskHandler) ListRecordAssociations(c *gin.Context) {
	associations, err := h.risks.ListAssociations(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, associations, nil)
}
