package usecase

import (
	"context"

	"github.com/jhoicas/backoffice-pos/internal/application/dto"
	"github.com/jhoicas/backoffice-pos/internal/domain"
	"github.com/jhoicas/backoffice-pos/internal/domain/entity"
	"github.com/jhoicas/backoffice-pos/pkg/logger"
)

// SaleUseCase ventas: listado, alta y anulación. El servidor descuenta el stock en la misma transacción.
type SaleUseCase struct {
	api    SalesAPI
	notify Notifier
	log    *logger.Logger
}

// NewSaleUseCase construye el caso de uso.
func NewSaleUseCase(api SalesAPI, n Notifier, log *logger.Logger) *SaleUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &SaleUseCase{api: api, notify: n, log: log.Component("sales")}
}

// List lista ventas por rango de fechas, sucursal y estado.
func (uc *SaleUseCase) List(ctx context.Context, f dto.SaleFilter) (dto.Page[entity.Sale], error) {
	if err := dto.Validate(f); err != nil {
		return dto.Page[entity.Sale]{}, err
	}
	if f.From != "" && f.To != "" && f.From > f.To {
		return dto.Page[entity.Sale]{}, domain.Validation(map[string]string{"to": "debe ser igual o posterior a la fecha desde"})
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
		page.Items = []entity.Sale{}
	}
	return page, nil
}

// Create registra la venta; los pagos deben cubrir el total.
func (uc *SaleUseCase) Create(ctx context.Context, in dto.CreateSaleRequest) (*entity.Sale, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	if in.Paid().LessThan(in.Total()) {
		return nil, domain.Validation(map[string]string{
			"payments": "los pagos (" + in.Paid().StringFixed(2) + ") no cubren el total (" + in.Total().StringFixed(2) + ")",
		})
	}
	s, err := uc.api.Create(ctx, in)
	if err != nil {
		uc.notify.Error(err, "No se pudo registrar la venta")
		return nil, err
	}
	uc.log.Info().Int64("sale_id", s.ID).Str("total", s.Total.String()).Msg("venta registrada")
	uc.notify.Success("Venta #%d registrada", s.ID)
	return s, nil
}

// Cancel anula una venta completada; el servidor devuelve el stock.
func (uc *SaleUseCase) Cancel(ctx context.Context, id int64) (*entity.Sale, error) {
	if id <= 0 {
		return nil, domain.Validation(map[string]string{"id": "es requerido"})
	}
	s, err := uc.api.UpdateStatus(ctx, id, entity.SaleStatusCancelled)
	if err != nil {
		uc.notify.Error(err, "No se pudo anular la venta")
		return nil, err
	}
	uc.notify.Success("Venta #%d anulada", s.ID)
	return s, nil
}
