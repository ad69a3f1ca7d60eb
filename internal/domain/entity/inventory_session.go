package entity

import "time"

// Estados de sesión de inventario.
const (
	SessionStatusDraft     = "DRAFT"
	SessionStatusCompleted = "COMPLETED"
)

// InventorySession es un conteo físico de stock en una sucursal.
// DRAFT -> COMPLETED, irreversible: al confirmar se escriben ajustes por cada diferencia.
type InventorySession struct {
	ID          int64                  `json:"id"`
	BranchID    int64                  `json:"branchId"`
	Status      string                 `json:"status"`
	Note        string                 `json:"note,omitempty"`
	ItemCount   int                    `json:"itemCount"`
	CreatedAt   time.Time              `json:"createdAt"`
	CompletedAt *time.Time             `json:"completedAt,omitempty"`
	User        string                 `json:"user,omitempty"`
	Items       []InventorySessionItem `json:"items,omitempty"`
}

// CanCommit solo en DRAFT.
func (s InventorySession) CanCommit() bool {
	return s.Status == SessionStatusDraft
}

// InventorySessionItem: Expected es la foto al crear la sesión; Counted y Diff quedan nulos hasta contar.
type InventorySessionItem struct {
	VariantID   int64  `json:"variantId"`
	ProductName string `json:"productName,omitempty"`
	SKU         string `json:"sku,omitempty"`
	Expected    int    `json:"expected"`
	Counted     *int   `json:"counted"`
	Diff        *int   `json:"diff"`
}

// IsCounted indica si ya se cargó el conteo.
func (i InventorySessionItem) IsCounted() bool {
	return i.Counted != nil
}

// Difference devuelve counted-expected, o nil si no fue contado.
// Si el backend ya envió diff se respeta.
func (i InventorySessionItem) Difference() *int {
	if i.Diff != nil {
		return i.Diff
	}
	if i.Counted == nil {
		return nil
	}
	d := *i.Counted - i.Expected
	return &d
}
