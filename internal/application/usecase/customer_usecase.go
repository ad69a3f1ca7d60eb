package usecase

import (
	"context"
	"io"
	"strings"

	"github.com/jhoicas/backoffice-pos/internal/application/dto"
	"github.com/jhoicas/backoffice-pos/internal/domain"
	"github.com/jhoicas/backoffice-pos/internal/domain/entity"
	"github.com/jhoicas/backoffice-pos/pkg/logger"
)

// CustomerUseCase workflow de clientes. Balance y última compra nunca se envían.
type CustomerUseCase struct {
	api    CustomerAPI
	notify Notifier
	log    *logger.Logger
	view   ListView[entity.Customer]
}

// NewCustomerUseCase construye el caso de uso.
func NewCustomerUseCase(api CustomerAPI, n Notifier, log *logger.Logger) *CustomerUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &CustomerUseCase{api: api, notify: n, log: log.Component("customers")}
}

// Attach asocia el listado visible de clientes.
func (uc *CustomerUseCase) Attach(v ListView[entity.Customer]) {
	uc.view = v
}

// List lista clientes. El texto de búsqueda se reenvía tal cual: el servidor decide
// sobre qué campos buscar.
func (uc *CustomerUseCase) List(ctx context.Context, f dto.CustomerFilter) (dto.Page[entity.Customer], error) {
	if err := dto.Validate(f); err != nil {
		return dto.Page[entity.Customer]{}, err
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
		page.Items = []entity.Customer{}
	}
	if page.PageSize == 0 {
		page.Page, page.PageSize = f.Page, f.PageSize
	}
	return page, nil
}

// Get obtiene un cliente por ID.
func (uc *CustomerUseCase) Get(ctx context.Context, id int64) (*entity.Customer, error) {
	return uc.api.Get(ctx, id)
}

// Create valida y da de alta el cliente.
func (uc *CustomerUseCase) Create(ctx context.Context, in dto.CustomerInput) (*entity.Customer, error) {
	if err := prepareCustomer(&in); err != nil {
		return nil, err
	}
	c, err := uc.api.Create(ctx, in)
	if err != nil {
		uc.notify.Error(err, "No se pudo crear el cliente")
		return nil, err
	}
	uc.notify.Success("Cliente %s creado", c.Name)
	uc.refresh(ctx)
	return c, nil
}

// Update valida y guarda el cliente.
func (uc *CustomerUseCase) Update(ctx context.Context, id int64, in dto.CustomerInput) (*entity.Customer, error) {
	if err := prepareCustomer(&in); err != nil {
		return nil, err
	}
	c, err := uc.api.Update(ctx, id, in)
	if err != nil {
		uc.notify.Error(err, "No se pudo guardar el cliente")
		return nil, err
	}
	uc.notify.Success("Cliente %s guardado", c.Name)
	uc.refresh(ctx)
	return c, nil
}

func prepareCustomer(in *dto.CustomerInput) error {
	in.TaxID = strings.TrimSpace(in.TaxID)
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.TaxCondition = strings.ToUpper(strings.TrimSpace(in.TaxCondition))
	return dto.Validate(*in)
}

// Delete elimina el cliente.
func (uc *CustomerUseCase) Delete(ctx context.Context, id int64) error {
	if err := uc.api.Delete(ctx, id); err != nil {
		uc.notify.Error(err, "No se pudo eliminar el cliente")
		return err
	}
	uc.notify.Success("Cliente eliminado")
	uc.refresh(ctx)
	return nil
}

// SetBlocked bloquea o desbloquea la cuenta. La vista local cambia solo cuando el servidor
// acepta; si rechaza, se avisa y el estado anterior queda como estaba.
func (uc *CustomerUseCase) SetBlocked(ctx context.Context, id int64, blocked bool) (*entity.Customer, error) {
	if id <= 0 {
		return nil, domain.Validation(map[string]string{"id": "es requerido"})
	}
	status := entity.CustomerStatusActive
	if blocked {
		status = entity.CustomerStatusBlocked
	}
	c, err := uc.api.SetStatus(ctx, id, status)
	if err != nil {
		uc.notify.Error(err, "No se pudo cambiar el estado del cliente")
		return nil, err
	}
	if uc.view != nil {
		confirmed := *c
		uc.view.Update(
			func(x entity.Customer) bool { return x.ID == id },
			func(x *entity.Customer) { *x = confirmed },
		)
	}
	if c.Blocked() {
		uc.notify.Success("Cliente %s bloqueado", c.Name)
	} else {
		uc.notify.Success("Cliente %s desbloqueado", c.Name)
	}
	return c, nil
}

// Import carga clientes desde un CSV (multipart).
func (uc *CustomerUseCase) Import(ctx context.Context, fileName string, r io.Reader) (*dto.ImportResult, error) {
	res, err := uc.api.Import(ctx, fileName, r)
	if err != nil {
		uc.notify.Error(err, "No se pudo importar el archivo")
		return nil, err
	}
	if res.ErrorCount > 0 {
		uc.notify.Info("Importación: %d clientes cargados, %d filas con error", res.SuccessCount, res.ErrorCount)
	} else {
		uc.notify.Success("Importación: %d clientes cargados", res.SuccessCount)
	}
	uc.refresh(ctx)
	return res, nil
}

// Template descarga la plantilla CSV de importación.
func (uc *CustomerUseCase) Template(ctx context.Context) (*dto.Blob, error) {
	return uc.api.Template(ctx)
}

func (uc *CustomerUseCase) refresh(ctx context.Context) {
	if uc.view == nil {
		return
	}
	if err := uc.view.Refresh(ctx); err != nil {
		uc.log.Warn().Err(err).Msg("no se pudo recargar el listado de clientes")
	}
}
