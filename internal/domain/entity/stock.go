package entity

import (
	"github.com/shopspring/decimal"
)

// StockOverview resume el estado del stock de una sucursal (tarjetas del tablero de stock).
type StockOverview struct {
	LowStock       int             `json:"lowStock"`
	InventoryValue decimal.Decimal `json:"inventoryValue"`
	NoMovement     int             `json:"noMovement"`
	NoMovementDays int             `json:"noMovementDays"`
}

// StockSearchItem es un resultado de búsqueda de stock en una sucursal (typeahead de transferencias).
type StockSearchItem struct {
	VariantID    int64  `json:"variantId"`
	Name         string `json:"name"`
	SKU          string `json:"sku"`
	AvailableQty int    `json:"availableQty"`
}
