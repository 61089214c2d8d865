package handlers

import (
	"github.com/gin-gonic/gin"

	"stockhouse/internal/core/entity"
	"stockhouse/internal/domain/catalogs/product"
	"stockhouse/internal/infrastructure/http/v1/dto"
)

// ProductHandler serves the product catalog.
type ProductHandler struct {
	*BaseHandler
	service *product.Service
}

// NewProductHandler creates a product handler.
func NewProductHandler(base *BaseHandler, service *product.Service) *ProductHandler {
	return &ProductHandler{BaseHandler: base, service: service}
}

func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}
	categoryID, ok := h.ParseID(c, "categoryId", req.CategoryID)
	if !ok {
		return
	}

	p := &product.Product{
		BaseCatalog: entity.NewBaseCatalog(),
		Reference:   req.Reference,
		Name:        req.Name,
		Description: req.Description,
		CategoryID:  categoryID,
		UnitPrice:   req.UnitPrice,
		Quantity:    req.Quantity,
		MinQuantity: req.MinQuantity,
	}
	if err := h.service.Create(c.Request.Context(), p); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, p.ID.String())
}

func (h *ProductHandler) Get(c *gin.Context) {
	productID, ok := h.ParseID(c, "id", c.Param("id"))
	if !ok {
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}

func (h *ProductHandler) List(c *gin.Context) {
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

// ListLowStock returns products at or below their alert threshold.
func (h *ProductHandler) ListLowStock(c *gin.Context) {
	items, err := h.service.ListLowStock(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, items)
}

// Update edits catalog fields. The current quantity is carried over from the
// stored product; stock levels change only through document workflows.
func (h *ProductHandler) Update(c *gin.Context) {
	productID, ok := h.ParseID(c, "id", c.Param("id"))
	if !ok {
		return
	}
	var req dto.UpdateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}
	categoryID, ok := h.ParseID(c, "categoryId", req.CategoryID)
	if !ok {
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	p.Reference = req.Reference
	p.Name = req.Name
	p.Description = req.Description
	p.CategoryID = categoryID
	p.UnitPrice = req.UnitPrice
	p.MinQuantity = req.MinQuantity
	p.Version = req.Version

	if err := h.service.Update(c.Request.Context(), p); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	productID, ok := h.ParseID(c, "id", c.Param("id"))
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), productID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}
