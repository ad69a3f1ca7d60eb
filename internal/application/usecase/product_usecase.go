package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jhoicas/backoffice-pos/internal/application/dto"
	"github.com/jhoicas/backoffice-pos/internal/domain"
	"github.com/jhoicas/backoffice-pos/internal/domain/entity"
	"github.com/jhoicas/backoffice-pos/internal/domain/pricing"
	"github.com/jhoicas/backoffice-pos/pkg/logger"
)

// ProductDetailView detalle de producto con el stock agregado para una sucursal.
type ProductDetailView struct {
	Product    entity.ProductDetail  `json:"product"`
	BranchID   int64                 `json:"branchId,omitempty"`
	TotalStock int                   `json:"totalStock"`
	LowStock   []entity.VariantStock `json:"lowStock"`
}

// ProductUseCase workflow de productos. El margen siempre se deriva de precio y costo.
type ProductUseCase struct {
	api     ProductAPI
	catalog *CatalogUseCase
	notify  Notifier
	log     *logger.Logger
	view    ListView[entity.Product]
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(api ProductAPI, catalog *CatalogUseCase, n Notifier, log *logger.Logger) *ProductUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &ProductUseCase{api: api, catalog: catalog, notify: n, log: log.Component("products")}
}

// Attach asocia el listado visible que se recarga después de cada mutación.
func (uc *ProductUseCase) Attach(v ListView[entity.Product]) {
	uc.view = v
}

// List lista productos con filtros y paginación.
func (uc *ProductUseCase) List(ctx context.Context, f dto.ProductFilter) (dto.Page[entity.Product], error) {
	if err := dto.Validate(f); err != nil {
		return dto.Page[entity.Product]{}, err
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = dto.DefaultPageSize
	}
	page, err := uc.api.List(ctx, f)
	if err != nil {
		return page, err
	}
	if page.Items == nil {
		page.Items = []entity.Product{}
	}
	if page.PageSize == 0 {
		page.Page, page.PageSize = f.Page, f.PageSize
	}
	return page, nil
}

// Details trae el producto con stock por variante y lo agrega para la sucursal (0 = todas).
func (uc *ProductUseCase) Details(ctx context.Context, id, branchID int64) (*ProductDetailView, error) {
	d, err := uc.api.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	low := d.LowStock(branchID)
	if low == nil {
		low = []entity.VariantStock{}
	}
	return &ProductDetailView{Product: *d, BranchID: branchID, TotalStock: d.TotalStock(branchID), LowStock: low}, nil
}

// Create valida, recalcula el margen y da de alta el producto.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.ProductInput) (*entity.Product, error) {
	if err := uc.prepare(ctx, &in); err != nil {
		return nil, err
	}
	p, err := uc.api.Create(ctx, in)
	if err != nil {
		uc.notify.Error(err, "No se pudo crear el producto")
		return nil, err
	}
	uc.notify.Success("Producto %s creado", p.SKU)
	uc.refresh(ctx)
	return p, nil
}

// Update valida, recalcula el margen y guarda el producto.
func (uc *ProductUseCase) Update(ctx context.Context, id int64, in dto.ProductInput) (*entity.Product, error) {
	if err := uc.prepare(ctx, &in); err != nil {
		return nil, err
	}
	p, err := uc.api.Update(ctx, id, in)
	if err != nil {
		uc.notify.Error(err, "No se pudo guardar el producto")
		return nil, err
	}
	uc.notify.Success("Producto %s guardado", p.SKU)
	uc.refresh(ctx)
	return p, nil
}

// prepare normaliza la entrada, controla categoría/subcategoría y deriva el margen.
func (uc *ProductUseCase) prepare(ctx context.Context, in *dto.ProductInput) error {
	in.SKU = strings.TrimSpace(in.SKU)
	in.Name = strings.TrimSpace(in.Name)
	if err := dto.Validate(*in); err != nil {
		return err
	}
	if err := uc.checkCategory(ctx, in.CategoryID, in.SubcategoryID); err != nil {
		return err
	}
	in.Margin = pricing.MarginFromPriceCost(in.Price, in.Cost)
	return nil
}

// checkCategory la subcategoría debe pertenecer a la categoría elegida.
func (uc *ProductUseCase) checkCategory(ctx context.Context, categoryID, subcategoryID *int64) error {
	if subcategoryID != nil && categoryID == nil {
		return domain.Validation(map[string]string{"subcategoryId": "elegir primero la categoría"})
	}
	if categoryID == nil {
		return nil
	}
	categories, err := uc.catalog.Categories(ctx)
	if err != nil {
		return err
	}
	for _, c := range categories {
		if c.ID != *categoryID {
			continue
		}
		if subcategoryID != nil && !c.HasSubcategory(*subcategoryID) {
			return domain.Validation(map[string]string{"subcategoryId": "no pertenece a la categoría " + c.Name})
		}
		return nil
	}
	return domain.Validation(map[string]string{"categoryId": "categoría inexistente"})
}

// Archive archiva (baja lógica) un producto.
func (uc *ProductUseCase) Archive(ctx context.Context, id int64) error {
	if err := uc.api.Delete(ctx, id); err != nil {
		uc.notify.Error(err, "No se pudo archivar el producto")
		return err
	}
	uc.notify.Success("Producto archivado")
	uc.refresh(ctx)
	return nil
}

// ArchiveBatch archiva de a uno, en orden, sin rollback: una falla no detiene el resto.
// El resultado informa qué ids se archivaron y cuáles no (con el motivo).
func (uc *ProductUseCase) ArchiveBatch(ctx context.Context, ids []int64) (dto.BatchResult, error) {
	res := dto.BatchResult{Succeeded: []int64{}, Failed: []dto.BatchFailure{}}
	if err := dto.Validate(dto.ArchiveBatchRequest{IDs: ids}); err != nil {
		return res, err
	}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			res.Failed = append(res.Failed, dto.BatchFailure{ID: id, Reason: "operación cancelada"})
			continue
		}
		if err := uc.api.Delete(ctx, id); err != nil {
			uc.log.Warn().Err(err).Int64("product_id", id).Msg("no se pudo archivar")
			res.Failed = append(res.Failed, dto.BatchFailure{ID: id, Reason: reason(err)})
			continue
		}
		res.Succeeded = append(res.Succeeded, id)
	}

	switch {
	case res.OK():
		uc.notify.Success("%d productos archivados", len(res.Succeeded))
	case len(res.Succeeded) == 0:
		uc.notify.Error(fmt.Errorf("ninguno de los %d productos se pudo archivar", len(ids)), "Archivado por lotes")
	default:
		uc.notify.Info("%d productos archivados, %d con error", len(res.Succeeded), len(res.Failed))
	}
	if len(res.Succeeded) > 0 {
		uc.refresh(context.WithoutCancel(ctx))
	}
	return res, nil
}

// Import carga productos desde un CSV (multipart).
func (uc *ProductUseCase) Import(ctx context.Context, fileName string, r io.Reader) (*dto.ImportResult, error) {
	res, err := uc.api.Import(ctx, fileName, r)
	if err != nil {
		uc.notify.Error(err, "No se pudo importar el archivo")
		return nil, err
	}
	if res.ErrorCount > 0 {
		uc.notify.Info("Importación: %d productos cargados, %d filas con error", res.SuccessCount, res.ErrorCount)
	} else {
		uc.notify.Success("Importación: %d productos cargados", res.SuccessCount)
	}
	uc.refresh(ctx)
	return res, nil
}

// Template descarga la plantilla CSV de importación.
func (uc *ProductUseCase) Template(ctx context.Context) (*dto.Blob, error) {
	return uc.api.Template(ctx)
}

// Margin recalcula precio o margen según el campo editado, sin persistir.
func (uc *ProductUseCase) Margin(in dto.MarginRequest) (dto.MarginResponse, error) {
	if err := dto.Validate(in); err != nil {
		return dto.MarginResponse{}, err
	}
	e := pricing.NewPriceEditor(in.Price, in.Cost)
	switch in.Field {
	case "price":
		e.SetPrice(in.Price)
	case "cost":
		e.SetCost(in.Cost)
	case "margin":
		e.SetMargin(in.Margin)
	}
	return dto.MarginResponse{Price: e.Price(), Cost: e.Cost(), Margin: e.Margin()}, nil
}

func (uc *ProductUseCase) refresh(ctx context.Context) {
	if uc.view == nil {
		return
	}
	if err := uc.view.Refresh(ctx); err != nil {
		uc.log.Warn().Err(err).Msg("no se pudo recargar el listado de productos")
	}
}

// reason texto del motivo de una falla por ítem.
func reason(err error) string {
	var de *domain.Error
	if errors.As(err, &de) {
		return de.Error()
	}
	return err.Error()
}
