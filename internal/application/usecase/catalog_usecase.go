package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/backoffice-pos/internal/domain/entity"
)

// DefaultCatalogTTL vigencia de las categorías en memoria.
const DefaultCatalogTTL = 5 * time.Minute

// CatalogUseCase catálogos auxiliares (categorías, listas de precios, medios de pago).
// Las categorías se guardan un rato porque se consultan en cada alta/edición de producto.
type CatalogUseCase struct {
	api CatalogAPI
	ttl time.Duration
	now func() time.Time

	mu         sync.Mutex
	categories []entity.Category
	loadedAt   time.Time
}

// NewCatalogUseCase construye el caso de uso; ttl <= 0 usa DefaultCatalogTTL.
func NewCatalogUseCase(api CatalogAPI, ttl time.Duration) *CatalogUseCase {
	if ttl <= 0 {
		ttl = DefaultCatalogTTL
	}
	return &CatalogUseCase{api: api, ttl: ttl, now: time.Now}
}

// Categories categorías con subcategorías.
func (uc *CatalogUseCase) Categories(ctx context.Context) ([]entity.Category, error) {
	uc.mu.Lock()
	if uc.categories != nil && uc.now().Sub(uc.loadedAt) < uc.ttl {
		out := uc.categories
		uc.mu.Unlock()
		return out, nil
	}
	uc.mu.Unlock()

	list, err := uc.api.Categories(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []entity.Category{}
	}
	uc.mu.Lock()
	uc.categories, uc.loadedAt = list, uc.now()
	uc.mu.Unlock()
	return list, nil
}

// Invalidate descarta las categorías en memoria.
func (uc *CatalogUseCase) Invalidate() {
	uc.mu.Lock()
	uc.categories = nil
	uc.mu.Unlock()
}

// PriceLists listas de precios.
func (uc *CatalogUseCase) PriceLists(ctx context.Context) ([]entity.PriceList, error) {
	list, err := uc.api.PriceLists(ctx)
	if list == nil && err == nil {
		list = []entity.PriceList{}
	}
	return list, err
}

// PaymentMethods medios de pago.
func (uc *CatalogUseCase) PaymentMethods(ctx context.Context) ([]entity.PaymentMethod, error) {
	list, err := uc.api.PaymentMethods(ctx)
	if list == nil && err == nil {
		list = []entity.PaymentMethod{}
	}
	return list, err
}
