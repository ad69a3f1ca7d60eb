package api

import (
	"context"
	"io"
	"net/url"

	"github.com/jhoicas/backoffice-pos/internal/application/dto"
	"github.com/jhoicas/backoffice-pos/internal/domain/entity"
)

const productsPath = "/api/products"

// ProductClient cliente REST de /api/products.
type ProductClient struct {
	gw *Gateway
}

// NewProductClient construye el cliente.
func NewProductClient(gw *Gateway) *ProductClient {
	return &ProductClient{gw: gw}
}

// List GET /api/products. El listado no trae stock.
func (c *ProductClient) List(ctx context.Context, f dto.ProductFilter) (dto.Page[entity.Product], error) {
	q := url.Values{}
	setStr(q, "search", f.Search)
	setInt(q, "categoryId", f.CategoryID)
	setInt(q, "subcategoryId", f.SubcategoryID)
	setStr(q, "status", f.Status)
	setBool(q, "stockLow", f.StockLow)
	setInt(q, "branchId", f.BranchID)
	setInt(q, "page", int64(f.Page))
	setInt(q, "pageSize", int64(f.PageSize))

	var page dto.Page[entity.Product]
	err := c.gw.Get(ctx, productsPath, q, &page)
	return page, err
}

// Get GET /api/products/{id}: producto con el stock por variante y sucursal.
func (c *ProductClient) Get(ctx context.Context, id int64) (*entity.ProductDetail, error) {
	var out entity.ProductDetail
	if err := c.gw.Get(ctx, idPath(productsPath, id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create POST /api/products.
func (c *ProductClient) Create(ctx context.Context, in dto.ProductInput) (*entity.Product, error) {
	var out entity.Product
	if err := c.gw.Post(ctx, productsPath, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update PUT /api/products/{id}.
func (c *ProductClient) Update(ctx context.Context, id int64, in dto.ProductInput) (*entity.Product, error) {
	var out entity.Product
	if err := c.gw.Put(ctx, idPath(productsPath, id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete DELETE /api/products/{id} (archiva el producto).
func (c *ProductClient) Delete(ctx context.Context, id int64) error {
	return c.gw.Delete(ctx, idPath(productsPath, id))
}

// Import POST /api/products/import (multipart).
func (c *ProductClient) Import(ctx context.Context, fileName string, r io.Reader) (*dto.ImportResult, error) {
	var out dto.ImportResult
	if err := c.gw.Upload(ctx, productsPath+"/import", fileName, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Template GET /api/products/template.csv.
func (c *ProductClient) Template(ctx context.Context) (*dto.Blob, error) {
	return c.gw.Download(ctx, productsPath+"/template.csv")
}
