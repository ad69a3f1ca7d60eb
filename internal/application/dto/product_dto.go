package dto

import (
	"github.com/shopspring/decimal"
)

// ProductFilter filtros del listado de productos.
type ProductFilter struct {
	Search        string `query:"search" json:"search,omitempty"`
	CategoryID    int64  `query:"categoryId" json:"categoryId,omitempty" validate:"gte=0"`
	SubcategoryID int64  `query:"subcategoryId" json:"subcategoryId,omitempty" validate:"gte=0"`
	Status        string `query:"status" json:"status,omitempty" validate:"omitempty,oneof=ACTIVE INACTIVE"`
	StockLow      bool   `query:"stockLow" json:"stockLow,omitempty"`
	BranchID      int64  `query:"branchId" json:"branchId,omitempty" validate:"gte=0"`
	Page          int    `query:"page" json:"page" validate:"gte=0"`
	PageSize      int    `query:"pageSize" json:"pageSize" validate:"gte=0,lte=200"`
}

// ProductInput entrada para crear/actualizar un producto. Margin se recalcula antes de enviar.
type ProductInput struct {
	SKU           string          `json:"sku" validate:"required,min=1,max=100"`
	Name          string          `json:"name" validate:"required,min=1,max=200"`
	CategoryID    *int64          `json:"categoryId,omitempty" validate:"omitempty,gt=0"`
	SubcategoryID *int64          `json:"subcategoryId,omitempty" validate:"omitempty,gt=0"`
	Price         decimal.Decimal `json:"price" validate:"gte=0"`
	Cost          decimal.Decimal `json:"cost" validate:"gte=0"`
	Margin        decimal.Decimal `json:"margin"`
	TaxRate       decimal.Decimal `json:"taxRate" validate:"gte=0,lte=100"`
	Status        string          `json:"status,omitempty" validate:"omitempty,oneof=ACTIVE INACTIVE"`
	Variants      []VariantInput  `json:"variants,omitempty" validate:"omitempty,dive"`
}

// VariantInput variante con precio/costo opcionales.
type VariantInput struct {
	ID      int64            `json:"id,omitempty"`
	SKU     string           `json:"sku" validate:"required,max=100"`
	Barcode string           `json:"barcode,omitempty" validate:"omitempty,max=64"`
	Name    string           `json:"name,omitempty" validate:"omitempty,max=120"`
	Price   *decimal.Decimal `json:"price,omitempty" validate:"omitempty,gte=0"`
	Cost    *decimal.Decimal `json:"cost,omitempty" validate:"omitempty,gte=0"`
}

// ArchiveBatchRequest ids de productos a archivar.
type ArchiveBatchRequest struct {
	IDs []int64 `json:"ids" validate:"required,min=1,dive,gt=0"`
}

// MarginRequest recálculo de precio/margen sin persistir (editor de producto).
// Field indica el campo editado: price, cost o margin.
type MarginRequest struct {
	Price  decimal.Decimal `json:"price"`
	Cost   decimal.Decimal `json:"cost"`
	Margin decimal.Decimal `json:"margin"`
	Field  string          `json:"field" validate:"required,oneof=price cost margin"`
}

// MarginResponse valores consistentes después del recálculo.
type MarginResponse struct {
	Price  decimal.Decimal `json:"price"`
	Cost   decimal.Decimal `json:"cost"`
	Margin decimal.Decimal `json:"margin"`
}
