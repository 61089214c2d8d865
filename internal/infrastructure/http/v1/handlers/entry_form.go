package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"stockhouse/internal/core/id"
	"stockhouse/internal/domain/documents"
	"stockhouse/internal/domain/documents/entryform"
	"stockhouse/internal/domain/duplicate"
	"stockhouse/internal/infrastructure/http/v1/dto"
)

// EntryFormHandler serves the goods receipt workflow.
type EntryFormHandler struct {
	*BaseHandler
	service *entryform.Service
}

// NewEntryFormHandler creates an entry form handler.
func NewEntryFormHandler(base *BaseHandler, service *entryform.Service) *EntryFormHandler {
	return &EntryFormHandler{BaseHandler: base, service: service}
}

func (h *EntryFormHandler) itemInputs(c *gin.Context, items []dto.FormItemRequest) ([]entryform.ItemInput, bool) {
	inputs := make([]entryform.ItemInput, 0, len(items))
	for _, item := range items {
		productID, ok := h.ParseID(c, "productId", item.ProductID)
		if !ok {
			return nil, false
		}
		inputs = append(inputs, entryform.ItemInput{
			ProductID: productID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return inputs, true
}

func (h *EntryFormHandler) Create(c *gin.Context) {
	userID, ok := h.UserID(c)
	if !ok {
		return
	}
	var req dto.CreateEntryFormRequest
	if !h.BindJSON(c, &req) {
		return
	}
	date, ok := h.ParseDate(c, "date", req.Date)
	if !ok {
		return
	}
	supplierID, ok := h.ParseID(c, "supplierId", req.SupplierID)
	if !ok {
		return
	}
	items, ok := h.itemInputs(c, req.Items)
	if !ok {
		return
	}

	result, err := h.service.Create(c.Request.Context(), userID, entryform.CreateInput{
		Reference:  req.Reference,
		Date:       date,
		SupplierID: supplierID,
		Notes:      req.Notes,
		Items:      items,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(201, result)
}

func (h *EntryFormHandler) Get(c *gin.Context) {
	formID, ok := h.ParseID(c, "id", c.Param("id"))
	if !ok {
		return
	}

	form, err := h.service.GetByID(c.Request.Context(), formID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, form)
}

func (h *EntryFormHandler) List(c *gin.Context) {
	var q dto.FormListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	filter := entryform.Filter{ListFilter: listFilterFrom(q.ListQuery)}
	filter.Status = documents.Status(q.Status)
	if q.SupplierID != "" {
		supplierID, ok := h.ParseID(c, "supplierId", q.SupplierID)
		if !ok {
			return
		}
		filter.SupplierID = supplierID
	}
	if q.DateFrom != "" {
		from, ok := h.ParseDate(c, "dateFrom", q.DateFrom)
		if !ok {
			return
		}
		filter.DateFrom = from
	}
	if q.DateTo != "" {
		to, ok := h.ParseDate(c, "dateTo", q.DateTo)
		if !ok {
			return
		}
		filter.DateTo = to
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ListResponse{
		Items:      result.Items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Period summarizes completed forms over [start, end].
func (h *EntryFormHandler) Period(c *gin.Context) {
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

	summary, err := h.service.GetByPeriod(c.Request.Context(), start, end)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, summary)
}

// CheckDuplicates runs advisory duplicate detection for a prospective form.
func (h *EntryFormHandler) CheckDuplicates(c *gin.Context) {
	var req dto.DuplicateCheckRequest
	if !h.BindJSON(c, &req) {
		return
	}
	date, ok := h.ParseDate(c, "date", req.Date)
	if !ok {
		return
	}

	q := duplicate.Query{Date: date}
	if req.SupplierID != "" {
		supplierID, ok := h.ParseID(c, "supplierId", req.SupplierID)
		if !ok {
			return
		}
		q.SupplierID = supplierID
	}
	if req.ExcludeID != "" {
		excludeID, ok := h.ParseID(c, "excludeId", req.ExcludeID)
		if !ok {
			return
		}
		q.ExcludeID = excludeID
	}
	for _, item := range req.Items {
		productID, ok := h.ParseID(c, "productId", item.ProductID)
		if !ok {
			return
		}
		q.Lines = append(q.Lines, duplicate.Line{ProductID: productID, Quantity: item.Quantity})
	}

	candidates, err := h.service.CheckDuplicates(c.Request.Context(), q)
	if err != nil {
		h.Error(c, err)
		return
	}
	if candidates == nil {
		candidates = []*duplicate.Candidate{}
	}
	h.OK(c, candidates)
}

func (h *EntryFormHandler) Update(c *gin.Context) {
	userID, ok := h.UserID(c)
	if !ok {
		return
	}
	formID, ok := h.ParseID(c, "id", c.Param("id"))
	if !ok {
		return
	}
	var req dto.UpdateEntryFormRequest
	if !h.BindJSON(c, &req) {
		return
	}
	date, ok := h.ParseDate(c, "date", req.Date)
	if !ok {
		return
	}
	supplierID, ok := h.ParseID(c, "supplierId", req.SupplierID)
	if !ok {
		return
	}
	items, ok := h.itemInputs(c, req.Items)
	if !ok {
		return
	}

	form, err := h.service.Update(c.Request.Context(), userID, formID, entryform.UpdateInput{
		Date:       date,
		SupplierID: supplierID,
		Notes:      req.Notes,
		Items:      items,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, form)
}

func (h *EntryFormHandler) Delete(c *gin.Context) {
	userID, ok := h.UserID(c)
	if !ok {
		return
	}
	formID, ok := h.ParseID(c, "id", c.Param("id"))
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), userID, formID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// Validate transitions a draft to completed and applies stock effects.
func (h *EntryFormHandler) Validate(c *gin.Context) {
	h.transition(c, h.service.Validate)
}

// Cancel transitions a form to cancelled, reversing stock when needed.
func (h *EntryFormHandler) Cancel(c *gin.Context) {
	h.transition(c, h.service.Cancel)
}

func (h *EntryFormHandler) transition(c *gin.Context, op func(ctx context.Context, userID, formID id.ID, reason string) (*entryform.EntryForm, error)) {
	userID, ok := h.UserID(c)
	if !ok {
		return
	}
	formID, ok := h.ParseID(c, "id", c.Param("id"))
	if !ok {
		return
	}

	var req dto.TransitionRequest
	if c.Request.ContentLength > 0 && !h.BindJSON(c, &req) {
		return
	}

	form, err := op(c.Request.Context(), userID, formID, req.Reason)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, form)
}

func (h *EntryFormHandler) History(c *gin.Context) {
	formID, ok := h.ParseID(c, "id", c.Param("id"))
	if !ok {
		return
	}

	entries, err := h.service.History(c.Request.Context(), formID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, entries)
}
