package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de venta.
const (
	SaleStatusCompleted = "COMPLETED"
	SaleStatusCancelled = "CANCELLED"
)

// Sale es una venta registrada. El backend la crea en forma transaccional (descuenta stock y escribe movimientos SALE).
type Sale struct {
	ID         int64           `json:"id"`
	CustomerID *int64          `json:"customerId,omitempty"`
	BranchID   int64           `json:"branchId"`
	Lines      []SaleLine      `json:"lines"`
	Payments   []SalePayment   `json:"payments"`
	Total      decimal.Decimal `json:"total"`
	Status     string          `json:"status"`
	CreatedAt  time.Time       `json:"createdAt"`
	User       string          `json:"user,omitempty"`
}

// SaleLine es una línea de venta.
type SaleLine struct {
	VariantID int64           `json:"variantId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// Subtotal = cantidad * precio unitario.
func (l SaleLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// SalePayment es un pago aplicado a la venta.
type SalePayment struct {
	PaymentMethodID int64           `json:"paymentMethodId"`
	Amount          decimal.Decimal `json:"amount"`
}

// CanCancel solo ventas completadas.
func (s Sale) CanCancel() bool {
	return s.Status == SaleStatusCompleted
}
