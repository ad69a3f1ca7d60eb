package entity

import (
	"github.com/shopspring/decimal"
)

// Estados de producto.
const (
	ProductStatusActive   = "ACTIVE"
	ProductStatusInactive = "INACTIVE"
)

// Product representa un producto del catálogo.
// El stock no es atributo global del producto: es por sucursal y se consulta en el detalle.
type Product struct {
	ID            int64           `json:"id"`
	SKU           string          `json:"sku"` // único
	Name          string          `json:"name"`
	CategoryID    *int64          `json:"categoryId,omitempty"`
	SubcategoryID *int64          `json:"subcategoryId,omitempty"`
	Price         decimal.Decimal `json:"price"`
	Cost          decimal.Decimal `json:"cost"`
	Margin        decimal.Decimal `json:"margin"` // derivado de price/cost
	TaxRate       decimal.Decimal `json:"taxRate"`
	Status        string          `json:"status"`
	Variants      []Variant       `json:"variants,omitempty"`
}

// Variant es una variante vendible del producto (talle, color...). Price/Cost opcionales pisan los del producto.
type Variant struct {
	ID      int64            `json:"id"`
	SKU     string           `json:"sku"`
	Barcode string           `json:"barcode,omitempty"`
	Name    string           `json:"name,omitempty"`
	Price   *decimal.Decimal `json:"price,omitempty"`
	Cost    *decimal.Decimal `json:"cost,omitempty"`
}

// VariantStock es el stock de una variante en una sucursal, con umbrales mínimo/máximo.
type VariantStock struct {
	VariantID int64 `json:"variantId"`
	BranchID  int64 `json:"branchId"`
	Qty       int   `json:"qty"`
	Min       int   `json:"min"`
	Max       int   `json:"max"`
}

// Low indica stock por debajo del mínimo configurado.
func (s VariantStock) Low() bool {
	return s.Min > 0 && s.Qty < s.Min
}

// ProductDetail es la respuesta del detalle: producto más el stock por variante.
type ProductDetail struct {
	Product
	Stock []VariantStock `json:"stock"`
}

// TotalStock suma el stock de todas las variantes; branchID 0 suma todas las sucursales.
func (d ProductDetail) TotalStock(branchID int64) int {
	total := 0
	for _, s := range d.Stock {
		if branchID == 0 || s.BranchID == branchID {
			total += s.Qty
		}
	}
	return total
}

// LowStock devuelve las variantes por debajo del mínimo en la sucursal (0 = todas).
func (d ProductDetail) LowStock(branchID int64) []VariantStock {
	var low []VariantStock
	for _, s := range d.Stock {
		if (branchID == 0 || s.BranchID == branchID) && s.Low() {
			low = append(low, s)
		}
	}
	return low
}
