package handlers

import (
	"github.com/gin-gonic/gin"

	"stockhouse/internal/domain/stock"
)

// StockHandler serves the movement ledger.
type StockHandler struct {
	*BaseHandler
	service *stock.Service
}

// NewStockHandler creates a stock handler.
func NewStockHandler(base *BaseHandler, service *stock.Service) *StockHandler {
	return &StockHandler{BaseHandler: base, service: service}
}

// RegisterRoutes wires stock register endpoints.
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/movements/:productId", h.Movements)
	rg.GET("/balance/:productId", h.Balance)
}

// Movements returns the ledger for one product, newest first.
func (h *StockHandler) Movements(c *gin.Context) {
	productID, ok := h.ParseID(c, "productId", c.Param("productId"))
	if !ok {
		return
	}

	movements, err := h.service.MovementsByProduct(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, movements)
}

// Balance returns the signed ledger total for one product. When the data is
// consistent it equals the product quantity.
func (h *StockHandler) Balance(c *gin.Context) {
	productID, ok := h.ParseID(c, "productId", c.Param("productId"))
	if !ok {
		return
	}

	total, err := h.service.SignedTotal(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"productId": productID.String(), "ledgerTotal": total})
}
