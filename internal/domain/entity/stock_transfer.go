package entity

import "time"

// Estados de transferencia entre sucursales.
const (
	TransferStatusInTransit = "IN_TRANSIT"
	TransferStatusReceived  = "RECEIVED"
)

// TransferLine es una línea (variante, cantidad) de la transferencia.
type TransferLine struct {
	VariantID   int64  `json:"variantId"`
	Quantity    int    `json:"quantity"`
	ProductName string `json:"productName,omitempty"`
	SKU         string `json:"sku,omitempty"`
}

// StockTransfer agrupa la salida en origen y la entrada en destino bajo una misma referencia.
// Ciclo de vida: IN_TRANSIT -> RECEIVED, sin otras transiciones.
type StockTransfer struct {
	Ref            string         `json:"ref"`
	OriginBranchID int64          `json:"originBranchId"`
	DestBranchID   int64          `json:"destBranchId"`
	Status         string         `json:"status"`
	Lines          []TransferLine `json:"lines,omitempty"`
	ItemCount      int            `json:"itemCount"`
	Note           string         `json:"note,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	ReceivedAt     *time.Time     `json:"receivedAt,omitempty"`
	LastActivityAt time.Time      `json:"lastActivityAt"`
	User           string         `json:"user,omitempty"`
}

// CanReceive solo mientras está en tránsito.
func (t StockTransfer) CanReceive() bool {
	return t.Status == TransferStatusInTransit
}

// Involves indica si la sucursal participa como origen o destino.
func (t StockTransfer) Involves(branchID int64) bool {
	return t.OriginBranchID == branchID || t.DestBranchID == branchID
}
