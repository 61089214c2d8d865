package dto

import (
	"stockhouse/internal/core/types"
)

// CreateCategoryRequest for creating categories.
type CreateCategoryRequest struct {
	Code        string `json:"code" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// UpdateCategoryRequest for updating categories.
type UpdateCategoryRequest struct {
	Code        string `json:"code" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Version     int    `json:"version" binding:"required"`
}

// CreateSupplierRequest for creating suppliers.
type CreateSupplierRequest struct {
	Code    string `json:"code" binding:"required"`
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// UpdateSupplierRequest for updating suppliers.
type UpdateSupplierRequest struct {
	Code    string `json:"code" binding:"required"`
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Version int    `json:"version" binding:"required"`
}

// CreateProductRequest for creating products.
type CreateProductRequest struct {
	Reference   string      `json:"reference" binding:"required"`
	Name        string      `json:"name" binding:"required"`
	Description string      `json:"description"`
	CategoryID  string      `json:"categoryId" binding:"required"`
	UnitPrice   types.Money `json:"unitPrice"`
	Quantity    int64       `json:"quantity" binding:"omitempty,min=0"`
	MinQuantity int64       `json:"minQuantity" binding:"omitempty,min=0"`
}

// UpdateProductRequest for updating products. Quantity is absent on purpose;
// stock levels change only through document workflows.
type UpdateProductRequest struct {
	Reference   string      `json:"reference" binding:"required"`
	Name        string      `json:"name" binding:"required"`
	Description string      `json:"description"`
	CategoryID  string      `json:"categoryId" binding:"required"`
	UnitPrice   types.Money `json:"unitPrice"`
	MinQuantity int64       `json:"minQuantity" binding:"omitempty,min=0"`
	Version     int         `json:"version" binding:"required"`
}
