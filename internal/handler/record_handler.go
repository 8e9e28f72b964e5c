package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/edutrack-mx/sira-api/internal/models"
	"github.com/edutrack-mx/sira-api/internal/service"
	appErrors "github.com/edutrack-mx/sira-api/pkg/errors"
	"github.com/edutrack-mx/sira-api/pkg/response"
)

// RecordHandler exposes enrollment record endpoints.
type RecordHandler struct {
	records *service.RecordService
	exports *service.ExportService
}

// NewRecordHandler constructs RecordHandler.
func NewRecordHandler(records *service.RecordService, exports *service.ExportService) *RecordHandler {
	return &RecordHandler{records: records, exports: exports}
}

func recordFilterFromQuery(c *gin.Context) models.RecordFilter {
	var filter models.RecordFilter
	filter.Status = models.RecordStatus(c.Query("status"))
	filter.StudentID = c.Query("studentId")
	filter.SubjectID = c.Query("subjectId")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	return filter
}

// List godoc
// @Summary List enrollment records
// @Tags Records
// @Produce json
// @Param status query string false "Filter by status (in_progress, approved, failed, withdrawn)"
// @Param studentId query string false "Filter by student"
// @Param subjectId query string false "Filter by subject"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /records [get]
func (h *RecordHandler) List(c *gin.Context) {
	records, pagination, err := h.records.List(c.Request.Context(), recordFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, pagination)
}

// Get godoc
// @Summary Get enrollment record detail
// @Tags Records
// @Produce json
// @Param id path string true "Record ID"
// @Success 200 {object} response.Envelope
// @Router /records/{id} [get]
func (h *RecordHandler) Get(c *gin.Context) {
	record, err := h.records.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Submit godoc
// @Summary Submit a subject enrollment with unit grades
// @Tags Records
// @Accept json
// @Produce json
// @Param payload body service.SubmitRecordRequest true "Record payload"
// @Success 201 {object} response.Envelope
// @Router /records [post]
func (h *RecordHandler) Submit(c *gin.Context) {
	var req service.SubmitRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	record, err := h.records.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// Withdraw godoc
// @Summary Withdraw a record (baja) with a risk factor category
// @Tags Records
// @Accept json
// @Produce json
// @Param id path string true "Record ID"
// @Param payload body service.WithdrawRequest true "Withdrawal payload"
// @Success 200 {object} response.Envelope
// @Router /records/{id}/withdraw [post]
func (h *RecordHandler) Withdraw(c *gin.Context) {
	var req service.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	record, err := h.records.Withdraw(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Export godoc
// @Summary Export the record listing as CSV or PDF
// @Tags Records
// @Produce text/csv
// @Produce application/pdf
// @Param format query string true "csv or pdf"
// @Param status query string false "Filter by status"
// @Success 200 {file} byte
// @Router /records/export [get]
func (h *RecordHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	filter := recordFilterFromQuery(c)
	file, err := h.exports.Records(c.Request.Context(), format, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+file.Filename)
	c.Data(http.StatusOK, file.ContentType, file.Content)
}
