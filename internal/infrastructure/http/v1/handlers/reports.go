package handlers

import (
	"github.com/gin-gonic/gin"

	"stockhouse/internal/domain/reports"
	"stockhouse/internal/infrastructure/http/v1/dto"
)

// ReportsHandler serves the read-only report endpoints.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{BaseHandler: base, service: service}
}

// RegisterRoutes wires report endpoints.
func (h *ReportsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/summary", h.Summary)
	rg.GET("/categories", h.Categories)
	rg.GET("/movements", h.Movements)
}

// Summary returns counts and totals for a period.
func (h *ReportsHandler) Summary(c *gin.Context) {
	var q dto.PeriodQuery
	if !h.BindQuery(c, &q) {
		return
	}
	start, ok := h.ParseDate(c, "start", q.Start)
	if !ok {
		return
	}
	end, ok := h.ParseDate(c, "end", q.End)
	if !ok {
		return
	}

	summary, err := h.service.Summary(c.Request.Context(), start, end)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, summary)
}

// Categories returns the per-category movement rollup for a period.
func (h *ReportsHandler) Categories(c *gin.Context) {
	var q dto.PeriodQuery
	if !h.BindQuery(c, &q) {
		return
	}
	start, ok := h.ParseDate(c, "start", q.Start)
	if !ok {
		return
	}
	end, ok := h.ParseDate(c, "end", q.End)
	if !ok {
		return
	}

	rows, err := h.service.CategoryAnalysis(c.Request.Context(), start, end)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, rows)
}

// Movements returns the daily movement series for a period.
func (h *ReportsHandler) Movements(c *gin.Context) {
	var q dto.PeriodQuery
	if !h.BindQuery(c, &q) {
		return
	}
	start, ok := h.ParseDate(c, "start", q.Start)
	if !ok {
		return
	}
	end, ok := h.ParseDate(c, "end", q.End)
	if !ok {
		return
	}

	points, err := h.service.MovementSeries(c.Request.Context(), start, end, reports.BucketDay)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, points)
}
