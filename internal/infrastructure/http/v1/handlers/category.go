package handlers

import (
	"github.com/gin-gonic/gin"

	"stockhouse/internal/core/entity"
	"stockhouse/internal/domain"
	"stockhouse/internal/domain/catalogs/category"
	"stockhouse/internal/infrastructure/http/v1/dto"
)

// CategoryHandler serves the category catalog.
type CategoryHandler struct {
	*BaseHandler
	service *category.Service
}

// NewCategoryHandler creates a category handler.
func NewCategoryHandler(base *BaseHandler, service *category.Service) *CategoryHandler {
	return &CategoryHandler{BaseHandler: base, service: service}
}

func (h *CategoryHandler) Create(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cat := &category.Category{
		BaseCatalog: entity.NewBaseCatalog(),
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
	}
	if err := h.service.Create(c.Request.Context(), cat); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, cat.ID.String())
}

func (h *CategoryHandler) Get(c *gin.Context) {
	categoryID, ok := h.ParseID(c, "id", c.Param("id"))
	if !ok {
		return
	}

	cat, err := h.service.GetByID(c.Request.Context(), categoryID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, cat)
}

func (h *CategoryHandler) List(c *gin.Context) {
	var q dto.ListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	result, err := h.service.List(c.Request.Context(), listFilterFrom(q))
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

func (h *CategoryHandler) Update(c *gin.Context) {
	categoryID, ok := h.ParseID(c, "id", c.Param("id"))
	if !ok {
		return
	}
	var req dto.UpdateCategoryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cat := &category.Category{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
	}
	cat.ID = categoryID
	cat.Version = req.Version

	if err := h.service.Update(c.Request.Context(), cat); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, cat)
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	categoryID, ok := h.ParseID(c, "id", c.Param("id"))
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), categoryID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// listFilterFrom maps query params onto the domain list filter.
func listFilterFrom(q dto.ListQuery) domain.ListFilter {
	filter := domain.DefaultListFilter()
	filter.Search = q.Search
	filter.IncludeDeleted = q.IncludeDeleted
	if q.OrderBy != "" {
		filter.OrderBy = q.OrderBy
	}
	filter.OrderDesc = q.OrderDesc
	if q.Limit > 0 {
		filter.Limit = q.Limit
	}
	if q.Offset > 0 {
		filter.Offset = q.Offset
	}
	return filter
}
