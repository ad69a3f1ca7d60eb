// Package usecase contiene los workflows de catálogo, clientes y ventas del back-office.
// Toda la información es del backend: se valida antes de enviar y, después de cada
// mutación, la vista afectada se recarga o se actualiza con lo que el servidor confirmó.
package usecase

import (
	"context"
	"io"

	"github.com/jhoicas/backoffice-pos/internal/application/dto"
	"github.com/jhoicas/backoffice-pos/internal/application/notify"
	"github.com/jhoicas/backoffice-pos/internal/domain/entity"
)

// ProductAPI puerto hacia /api/products.
type ProductAPI interface {
	List(ctx context.Context, f dto.ProductFilter) (dto.Page[entity.Product], error)
	Get(ctx context.Context, id int64) (*entity.ProductDetail, error)
	Create(ctx context.Context, in dto.ProductInput) (*entity.Product, error)
	Update(ctx context.Context, id int64, in dto.ProductInput) (*entity.Product, error)
	Delete(ctx context.Context, id int64) error
	Import(ctx context.Context, fileName string, r io.Reader) (*dto.ImportResult, error)
	Template(ctx context.Context) (*dto.Blob, error)
}

// CatalogAPI puerto hacia los catálogos auxiliares.
type CatalogAPI interface {
	Categories(ctx context.Context) ([]entity.Category, error)
	PriceLists(ctx context.Context) ([]entity.PriceList, error)
	PaymentMethods(ctx context.Context) ([]entity.PaymentMethod, error)
}

// CustomerAPI puerto hacia /api/customers.
type CustomerAPI interface {
	List(ctx context.Context, f dto.CustomerFilter) (dto.Page[entity.Customer], error)
	Get(ctx context.Context, id int64) (*entity.Customer, error)
	Create(ctx context.Context, in dto.CustomerInput) (*entity.Customer, error)
	Update(ctx context.Context, id int64, in dto.CustomerInput) (*entity.Customer, error)
	SetStatus(ctx context.Context, id int64, status string) (*entity.Customer, error)
	Delete(ctx context.Context, id int64) error
	Import(ctx context.Context, fileName string, r io.Reader) (*dto.ImportResult, error)
	Template(ctx context.Context) (*dto.Blob, error)
}

// SalesAPI puerto hacia /api/sales.
type SalesAPI interface {
	List(ctx context.Context, f dto.SaleFilter) (dto.Page[entity.Sale], error)
	Create(ctx context.Context, in dto.CreateSaleRequest) (*entity.Sale, error)
	UpdateStatus(ctx context.Context, id int64, status string) (*entity.Sale, error)
}

// Notifier publica avisos transitorios para el operador.
type Notifier interface {
	Success(format string, args ...interface{}) notify.Notice
	Info(format string, args ...interface{}) notify.Notice
	Error(err error, action string) notify.Notice
}

// ListView copia local de un listado (listing.Loader). Update solo se usa con datos
// que el servidor ya aceptó.
type ListView[T any] interface {
	Refresh(ctx context.Context) error
	Update(match func(T) bool, patch func(*T)) int
}
