package api

import (
	"context"
	"net/url"

	"github.com/jhoicas/backoffice-pos/internal/application/dto"
	"github.com/jhoicas/backoffice-pos/internal/domain/entity"
)

const (
	stockPath     = "/api/stock"
	transfersPath = stockPath + "/transfers"
	sessionsPath  = stockPath + "/inventory/sessions"
)

// StockClient cliente REST de /api/stock: resumen, movimientos, transferencias, sesiones de inventario y búsqueda.
type StockClient struct {
	gw *Gateway
}

// NewStockClient construye el cliente.
func NewStockClient(gw *Gateway) *StockClient {
	return &StockClient{gw: gw}
}

// Overview GET /api/stock/overview?branchId=.
func (c *StockClient) Overview(ctx context.Context, branchID int64) (*entity.StockOverview, error) {
	q := url.Values{}
	setInt(q, "branchId", branchID)
	var out entity.StockOverview
	if err := c.gw.Get(ctx, stockPath+"/overview", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Movements GET /api/stock/movements. Paginación por offset; usar Total para contar páginas.
func (c *StockClient) Movements(ctx context.Context, f dto.MovementFilter) (dto.Page[entity.StockMovement], error) {
	q := url.Values{}
	setStr(q, "from", f.From)
	setStr(q, "to", f.To)
	setStr(q, "type", f.Type)
	setInt(q, "branchId", f.BranchID)
	setStr(q, "q", f.Q)
	setInt(q, "limit", int64(f.Limit))
	setInt(q, "offset", int64(f.Offset))

	var page dto.Page[entity.StockMovement]
	err := c.gw.Get(ctx, stockPath+"/movements", q, &page)
	return page, err
}

// Transfers GET /api/stock/transfers?branchId= (la sucursal como origen o destino; todas si es 0).
func (c *StockClient) Transfers(ctx context.Context, branchID int64) ([]entity.StockTransfer, error) {
	q := url.Values{}
	setInt(q, "branchId", branchID)
	var out list[entity.StockTransfer]
	err := c.gw.Get(ctx, transfersPath, q, &out)
	return out, err
}

// CreateTransfer POST /api/stock/transfers.
func (c *StockClient) CreateTransfer(ctx context.Context, in dto.CreateTransferRequest) (*dto.TransferRef, error) {
	var out dto.TransferRef
	if err := c.gw.Post(ctx, transfersPath, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ReceiveTransfer POST /api/stock/transfers/{ref}/receive.
func (c *StockClient) ReceiveTransfer(ctx context.Context, ref string, destBranchID int64) error {
	p := transfersPath + "/" + url.PathEscape(ref) + "/receive"
	return c.gw.Post(ctx, p, dto.ReceiveTransferRequest{DestBranchID: destBranchID}, nil)
}

// Sessions GET /api/stock/inventory/sessions?branchId=.
func (c *StockClient) Sessions(ctx context.Context, branchID int64) ([]entity.InventorySession, error) {
	q := url.Values{}
	setInt(q, "branchId", branchID)
	var out list[entity.InventorySession]
	err := c.gw.Get(ctx, sessionsPath, q, &out)
	return out, err
}

// CreateSession POST /api/stock/inventory/sessions.
func (c *StockClient) CreateSession(ctx context.Context, in dto.CreateSessionRequest) (*entity.InventorySession, error) {
	var out entity.InventorySession
	if err := c.gw.Post(ctx, sessionsPath, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Session GET /api/stock/inventory/sessions/{id} (con ítems).
func (c *StockClient) Session(ctx context.Context, id int64) (*entity.InventorySession, error) {
	var out entity.InventorySession
	if err := c.gw.Get(ctx, idPath(sessionsPath, id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CommitSession POST /api/stock/inventory/sessions/{id}/commit.
func (c *StockClient) CommitSession(ctx context.Context, id int64) error {
	return c.gw.Post(ctx, idPath(sessionsPath, id)+"/commit", nil, nil)
}

// SearchProducts GET /api/stock/products?q=&branchId=.
func (c *StockClient) SearchProducts(ctx context.Context, query string, branchID int64) ([]entity.StockSearchItem, error) {
	q := url.Values{}
	setStr(q, "q", query)
	setInt(q, "branchId", branchID)
	var out list[entity.StockSearchItem]
	err := c.gw.Get(ctx, stockPath+"/products", q, &out)
	return out, err
}
