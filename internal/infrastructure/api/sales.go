package api

import (
	"context"
	"net/url"

	"github.com/jhoicas/backoffice-pos/internal/application/dto"
	"github.com/jhoicas/backoffice-pos/internal/domain/entity"
)

const salesPath = "/api/sales"

// SalesClient cliente REST de /api/sales.
type SalesClient struct {
	gw *Gateway
}

// NewSalesClient construye el cliente.
func NewSalesClient(gw *Gateway) *SalesClient {
	return &SalesClient{gw: gw}
}

// List GET /api/sales.
func (c *SalesClient) List(ctx context.Context, f dto.SaleFilter) (dto.Page[entity.Sale], error) {
	q := url.Values{}
	setStr(q, "from", f.From)
	setStr(q, "to", f.To)
	setInt(q, "branchId", f.BranchID)
	setStr(q, "status", f.Status)
	setInt(q, "page", int64(f.Page))
	setInt(q, "pageSize", int64(f.PageSize))

	var page dto.Page[entity.Sale]
	err := c.gw.Get(ctx, salesPath, q, &page)
	return page, err
}

// Create POST /api/sales (transaccional en el servidor).
func (c *SalesClient) Create(ctx context.Context, in dto.CreateSaleRequest) (*entity.Sale, error) {
	var out entity.Sale
	if err := c.gw.Post(ctx, salesPath, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateStatus PATCH /api/sales/{id}/status (cancelación).
func (c *SalesClient) UpdateStatus(ctx context.Context, id int64, status string) (*entity.Sale, error) {
	var out entity.Sale
	if err := c.gw.Patch(ctx, idPath(salesPath, id)+"/status", dto.SaleStatusRequest{Status: status}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
