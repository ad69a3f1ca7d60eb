package dto

// DefaultMovementLimit límite de movimientos por página.
const DefaultMovementLimit = 20

// MovementFilter filtros del libro de movimientos. Fechas en formato YYYY-MM-DD.
type MovementFilter struct {
	From     string `query:"from" json:"from,omitempty" validate:"omitempty,datetime=2006-01-02"`
	To       string `query:"to" json:"to,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Type     string `query:"type" json:"type,omitempty" validate:"omitempty,movtype"`
	BranchID int64  `query:"branchId" json:"branchId,omitempty" validate:"gte=0"`
	Q        string `query:"q" json:"q,omitempty"`
	Limit    int    `query:"limit" json:"limit" validate:"gte=1,lte=100"`
	Offset   int    `query:"offset" json:"offset" validate:"gte=0"`
}

// DefaultPage aplica el límite por defecto.
func (f *MovementFilter) DefaultPage() {
	if f.Limit <= 0 {
		f.Limit = DefaultMovementLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}

// TransferLineInput línea de transferencia.
type TransferLineInput struct {
	VariantID int64 `json:"variantId" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"gt=0"`
}

// CreateTransferRequest entrada para crear una transferencia entre sucursales.
type CreateTransferRequest struct {
	OriginBranchID int64               `json:"originBranchId" validate:"required,gt=0"`
	DestBranchID   int64               `json:"destBranchId" validate:"required,gt=0"`
	Lines          []TransferLineInput `json:"lines" validate:"required,min=1,dive"`
	Note           string              `json:"note,omitempty" validate:"omitempty,max=500"`
}

// TransferRef referencia devuelta al crear una transferencia.
type TransferRef struct {
	Ref string `json:"ref"`
}

// ReceiveTransferRequest recepción en la sucursal destino.
type ReceiveTransferRequest struct {
	DestBranchID int64 `json:"destBranchId" validate:"required,gt=0"`
}

// ReceiveTransferResponse resultado de la recepción; AlreadyReceived no es un error.
type ReceiveTransferResponse struct {
	Ref             string `json:"ref"`
	AlreadyReceived bool   `json:"alreadyReceived"`
}

// CreateSessionRequest entrada para abrir una sesión de inventario.
type CreateSessionRequest struct {
	BranchID int64  `json:"branchId" validate:"required,gt=0"`
	Note     string `json:"note,omitempty" validate:"omitempty,max=500"`
}

// CommitSessionRequest la confirmación es irreversible y debe ser explícita.
type CommitSessionRequest struct {
	Confirmed bool `json:"confirmed"`
}

// StockSearchRequest búsqueda de stock en una sucursal.
type StockSearchRequest struct {
	Q        string `query:"q" validate:"required,min=1"`
	BranchID int64  `query:"branchId" validate:"required,gt=0"`
}
