package api

import (
	"context"

	"github.com/jhoicas/backoffice-pos/internal/domain/entity"
)

// CatalogClient catálogos de solo lectura: categorías, listas de precios y medios de pago.
type CatalogClient struct {
	gw *Gateway
}

// NewCatalogClient construye el cliente.
func NewCatalogClient(gw *Gateway) *CatalogClient {
	return &CatalogClient{gw: gw}
}

// Categories GET /api/categories (con subcategorías anidadas).
func (c *CatalogClient) Categories(ctx context.Context) ([]entity.Category, error) {
	var out list[entity.Category]
	err := c.gw.Get(ctx, "/api/categories", nil, &out)
	return out, err
}

// PriceLists GET /api/pricelists.
func (c *CatalogClient) PriceLists(ctx context.Context) ([]entity.PriceList, error) {
	var out list[entity.PriceList]
	err := c.gw.Get(ctx, "/api/pricelists", nil, &out)
	return out, err
}

// PaymentMethods GET /api/payment-methods.
func (c *CatalogClient) PaymentMethods(ctx context.Context) ([]entity.PaymentMethod, error) {
	var out list[entity.PaymentMethod]
	err := c.gw.Get(ctx, "/api/payment-methods", nil, &out)
	return out, err
}
