package entity

import "time"

// Tipos de movimiento de stock.
const (
	MovementTypeEntry       = "ENTRY"
	MovementTypeSale        = "SALE"
	MovementTypeAdjustment  = "ADJUSTMENT"
	MovementTypeTransferOut = "TRANSFER_OUT"
	MovementTypeTransferIn  = "TRANSFER_IN"
	MovementTypeInventory   = "INVENTORY"
)

// MovementTypes lista los tipos válidos en el orden en que se muestran en los filtros.
var MovementTypes = []string{
	MovementTypeEntry,
	MovementTypeSale,
	MovementTypeAdjustment,
	MovementTypeTransferOut,
	MovementTypeTransferIn,
	MovementTypeInventory,
}

// ValidMovementType reporta si t es un tipo de movimiento conocido.
func ValidMovementType(t string) bool {
	for _, mt := range MovementTypes {
		if mt == t {
			return true
		}
	}
	return false
}

// Direction es el sentido de un movimiento según el signo de la cantidad.
type Direction string

const (
	DirectionIncrease Direction = "increase"
	DirectionDecrease Direction = "decrease"
	DirectionNone     Direction = "none"
)

// StockMovement es una entrada inmutable del libro de movimientos.
type StockMovement struct {
	ID          int64     `json:"id"`
	Type        string    `json:"type"`
	Quantity    int       `json:"quantity"` // positivo aumenta, negativo disminuye
	BranchID    int64     `json:"branchId"`
	VariantID   int64     `json:"variantId"`
	ProductID   int64     `json:"productId,omitempty"`
	ProductName string    `json:"productName,omitempty"`
	SKU         string    `json:"sku,omitempty"`
	Ref         string    `json:"ref,omitempty"`
	Note        string    `json:"note,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	User        string    `json:"user,omitempty"`
}

// Direction se deriva del signo de Quantity, nunca de Type (ADJUSTMENT puede ir en ambos sentidos).
func (m StockMovement) Direction() Direction {
	switch {
	case m.Quantity > 0:
		return DirectionIncrease
	case m.Quantity < 0:
		return DirectionDecrease
	default:
		return DirectionNone
	}
}
