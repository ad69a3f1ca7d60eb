// Package inventory contiene los workflows de stock: libro de movimientos, transferencias
// entre sucursales y sesiones de inventario. El estado vive en el backend; acá solo se
// validan las entradas y se guardan copias de lectura.
package inventory

import (
	"context"

	"github.com/jhoicas/backoffice-pos/internal/application/dto"
	"github.com/jhoicas/backoffice-pos/internal/domain"
	"github.com/jhoicas/backoffice-pos/internal/domain/entity"
	"github.com/jhoicas/backoffice-pos/pkg/logger"
)

// MovementUseCase consulta del libro de movimientos (solo lectura) y resumen de stock.
type MovementUseCase struct {
	api StockAPI
	log *logger.Logger
}

// NewMovementUseCase construye el caso de uso.
func NewMovementUseCase(api StockAPI, log *logger.Logger) *MovementUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &MovementUseCase{api: api, log: log.Component("movements")}
}

// ListMovements valida el filtro y trae una página. La cantidad de páginas sale de Total,
// no de len(Items).
func (uc *MovementUseCase) ListMovements(ctx context.Context, f dto.MovementFilter) (dto.Page[entity.StockMovement], error) {
	f.DefaultPage()
	if err := dto.Validate(f); err != nil {
		return dto.Page[entity.StockMovement]{}, err
	}
	if f.From != "" && f.To != "" && f.From > f.To {
		return dto.Page[entity.StockMovement]{}, domain.Validation(map[string]string{"to": "debe ser igual o posterior a la fecha desde"})
	}
	page, err := uc.api.Movements(ctx, f)
	if err != nil {
		return page, err
	}
	if page.Items == nil {
		page.Items = []entity.StockMovement{}
	}
	if page.PageSize == 0 {
		page.PageSize = f.Limit
	}
	if page.Page == 0 {
		page.Page = f.Offset/f.Limit + 1
	}
	uc.log.Debug().Int("total", page.Total).Int("offset", f.Offset).Msg("movimientos")
	return page, nil
}

// Overview resumen de stock de la sucursal (0 = todas).
func (uc *MovementUseCase) Overview(ctx context.Context, branchID int64) (*entity.StockOverview, error) {
	if branchID < 0 {
		return nil, domain.Validation(map[string]string{"branchId": "inválido"})
	}
	return uc.api.Overview(ctx, branchID)
}
