package dto

import "github.com/shopspring/decimal"

// SaleFilter filtros del listado de ventas.
type SaleFilter struct {
	From     string `query:"from" json:"from,omitempty" validate:"omitempty,datetime=2006-01-02"`
	To       string `query:"to" json:"to,omitempty" validate:"omitempty,datetime=2006-01-02"`
	BranchID int64  `query:"branchId" json:"branchId,omitempty" validate:"gte=0"`
	Status   string `query:"status" json:"status,omitempty" validate:"omitempty,oneof=COMPLETED CANCELLED"`
	Page     int    `query:"page" json:"page" validate:"gte=0"`
	PageSize int    `query:"pageSize" json:"pageSize" validate:"gte=0,lte=200"`
}

// SaleLineInput línea de venta.
type SaleLineInput struct {
	VariantID int64           `json:"variantId" validate:"required,gt=0"`
	Quantity  int             `json:"quantity" validate:"gt=0"`
	UnitPrice decimal.Decimal `json:"unitPrice" validate:"gte=0"`
}

// SalePaymentInput pago aplicado.
type SalePaymentInput struct {
	PaymentMethodID int64           `json:"paymentMethodId" validate:"required,gt=0"`
	Amount          decimal.Decimal `json:"amount" validate:"gt=0"`
}

// CreateSaleRequest entrada para registrar una venta.
type CreateSaleRequest struct {
	CustomerID *int64             `json:"customerId,omitempty" validate:"omitempty,gt=0"`
	BranchID   int64              `json:"branchId" validate:"required,gt=0"`
	Lines      []SaleLineInput    `json:"lines" validate:"required,min=1,dive"`
	Payments   []SalePaymentInput `json:"payments" validate:"required,min=1,dive"`
}

// Total suma de subtotales de las líneas.
func (r CreateSaleRequest) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range r.Lines {
		total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

// Paid suma de los pagos.
func (r CreateSaleRequest) Paid() decimal.Decimal {
	paid := decimal.Zero
	for _, p := range r.Payments {
		paid = paid.Add(p.Amount)
	}
	return paid
}

// SaleStatusRequest cambio de estado (cancelación).
type SaleStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=CANCELLED"`
}
