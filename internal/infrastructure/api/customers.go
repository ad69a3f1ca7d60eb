package api

import (
	"context"
	"io"
	"net/url"

	"github.com/jhoicas/backoffice-pos/internal/application/dto"
	"github.com/jhoicas/backoffice-pos/internal/domain/entity"
)

const customersPath = "/api/customers"

// CustomerClient cliente REST de /api/customers.
type CustomerClient struct {
	gw *Gateway
}

// NewCustomerClient construye el cliente.
func NewCustomerClient(gw *Gateway) *CustomerClient {
	return &CustomerClient{gw: gw}
}

// List GET /api/customers. El término de búsqueda se envía tal cual lo escribió el operador.
func (c *CustomerClient) List(ctx context.Context, f dto.CustomerFilter) (dto.Page[entity.Customer], error) {
	q := url.Values{}
	setStr(q, "search", f.Search)
	setStr(q, "status", f.Status)
	setBool(q, "withDebt", f.WithDebt)
	setInt(q, "noPurchasesDays", int64(f.NoPurchasesDays))
	setInt(q, "page", int64(f.Page))
	setInt(q, "pageSize", int64(f.PageSize))

	var page dto.Page[entity.Customer]
	err := c.gw.Get(ctx, customersPath, q, &page)
	return page, err
}

// Get GET /api/customers/{id}.
func (c *CustomerClient) Get(ctx context.Context, id int64) (*entity.Customer, error) {
	var out entity.Customer
	if err := c.gw.Get(ctx, idPath(customersPath, id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create POST /api/customers.
func (c *CustomerClient) Create(ctx context.Context, in dto.CustomerInput) (*entity.Customer, error) {
	var out entity.Customer
	if err := c.gw.Post(ctx, customersPath, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update PUT /api/customers/{id}.
func (c *CustomerClient) Update(ctx context.Context, id int64, in dto.CustomerInput) (*entity.Customer, error) {
	var out entity.Customer
	if err := c.gw.Put(ctx, idPath(customersPath, id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetStatus PUT /api/customers/{id} con solo el estado (bloquear/desbloquear).
func (c *CustomerClient) SetStatus(ctx context.Context, id int64, status string) (*entity.Customer, error) {
	var out entity.Customer
	if err := c.gw.Put(ctx, idPath(customersPath, id), dto.CustomerStatusRequest{Status: status}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete DELETE /api/customers/{id}.
func (c *CustomerClient) Delete(ctx context.Context, id int64) error {
	return c.gw.Delete(ctx, idPath(customersPath, id))
}

// Import POST /api/customers/import (multipart).
func (c *CustomerClient) Import(ctx context.Context, fileName string, r io.Reader) (*dto.ImportResult, error) {
	var out dto.ImportResult
	if err := c.gw.Upload(ctx, customersPath+"/import", fileName, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Template GET /api/customers/template.csv.
func (c *CustomerClient) Template(ctx context.Context) (*dto.Blob, error) {
	return c.gw.Download(ctx, customersPath+"/template.csv")
}
