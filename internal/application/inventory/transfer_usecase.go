package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jhoicas/backoffice-pos/internal/application/dto"
	"github.com/jhoicas/backoffice-pos/internal/domain"
	"github.com/jhoicas/backoffice-pos/internal/domain/entity"
	"github.com/jhoicas/backoffice-pos/pkg/logger"
)

// DraftLine línea del borrador con la disponibilidad vista al buscar.
type DraftLine struct {
	VariantID int64  `json:"variantId"`
	Name      string `json:"name,omitempty"`
	SKU       string `json:"sku,omitempty"`
	Quantity  int    `json:"quantity"`
	Available int    `json:"available"`
}

// TransferDraft transferencia en armado. Nada llega al servidor hasta que Validate pasa.
type TransferDraft struct {
	OriginBranchID int64       `json:"originBranchId"`
	DestBranchID   int64       `json:"destBranchId"`
	Note           string      `json:"note,omitempty"`
	Lines          []DraftLine `json:"lines"`
}

// NewTransferDraft crea un borrador vacío.
func NewTransferDraft(origin, dest int64) *TransferDraft {
	return &TransferDraft{OriginBranchID: origin, DestBranchID: dest}
}

// AddLine agrega la variante encontrada en la búsqueda. Si ya estaba, suma la cantidad
// y vuelve a controlar contra la última disponibilidad conocida.
func (d *TransferDraft) AddLine(item entity.StockSearchItem, qty int) error {
	if qty <= 0 {
		return domain.Validation(map[string]string{"quantity": "debe ser mayor a 0"})
	}
	for i := range d.Lines {
		l := &d.Lines[i]
		if l.VariantID != item.VariantID {
			continue
		}
		if l.Quantity+qty > item.AvailableQty {
			return overAvailable("quantity", item.AvailableQty)
		}
		l.Quantity += qty
		l.Available = item.AvailableQty
		return nil
	}
	if qty > item.AvailableQty {
		return overAvailable("quantity", item.AvailableQty)
	}
	d.Lines = append(d.Lines, DraftLine{
		VariantID: item.VariantID,
		Name:      item.Name,
		SKU:       item.SKU,
		Quantity:  qty,
		Available: item.AvailableQty,
	})
	return nil
}

// RemoveLine quita la variante del borrador.
func (d *TransferDraft) RemoveLine(variantID int64) {
	kept := d.Lines[:0]
	for _, l := range d.Lines {
		if l.VariantID != variantID {
			kept = append(kept, l)
		}
	}
	d.Lines = kept
}

// Validate controla el borrador antes de cualquier llamada de red.
func (d *TransferDraft) Validate() error {
	fields := map[string]string{}
	if d.OriginBranchID <= 0 {
		fields["originBranchId"] = "es requerido"
	}
	if d.DestBranchID <= 0 {
		fields["destBranchId"] = "es requerido"
	}
	if len(fields) == 0 && d.OriginBranchID == d.DestBranchID {
		return domain.Business(domain.ErrSameBranch, "destBranchId")
	}
	if len(d.Lines) == 0 {
		fields["lines"] = "agregar al menos un producto"
	}
	for i, l := range d.Lines {
		if l.Quantity <= 0 {
			fields[fmt.Sprintf("lines[%d].quantity", i)] = "debe ser mayor a 0"
		}
	}
	if len(fields) > 0 {
		return domain.Validation(fields)
	}
	for i, l := range d.Lines {
		if l.Quantity > l.Available {
			return overAvailable(fmt.Sprintf("lines[%d].quantity", i), l.Available)
		}
	}
	return nil
}

// Request arma el cuerpo de POST /api/stock/transfers.
func (d *TransferDraft) Request() dto.CreateTransferRequest {
	lines := make([]dto.TransferLineInput, 0, len(d.Lines))
	for _, l := range d.Lines {
		lines = append(lines, dto.TransferLineInput{VariantID: l.VariantID, Quantity: l.Quantity})
	}
	return dto.CreateTransferRequest{
		OriginBranchID: d.OriginBranchID,
		DestBranchID:   d.DestBranchID,
		Lines:          lines,
		Note:           strings.TrimSpace(d.Note),
	}
}

func overAvailable(field string, available int) *domain.Error {
	msg := fmt.Sprintf("solo hay %d disponibles en origen", available)
	return &domain.Error{
		Kind:    domain.KindBusiness,
		Message: msg,
		Fields:  map[string]string{field: msg},
		Err:     domain.ErrInsufficientStock,
	}
}

// ReceiveOutcome resultado de recibir una transferencia. AlreadyReceived no es un error:
// otra terminal ya la recibió y el stock está aplicado.
type ReceiveOutcome struct {
	Ref             string `json:"ref"`
	AlreadyReceived bool   `json:"alreadyReceived"`
}

type availabilityKey struct {
	branch  int64
	variant int64
}

// TransferUseCase workflow de transferencias entre sucursales: IN_TRANSIT -> RECEIVED.
type TransferUseCase struct {
	api    StockAPI
	notify Notifier
	log    *logger.Logger

	mu        sync.Mutex
	branchID  int64
	transfers []entity.StockTransfer
	available map[availabilityKey]entity.StockSearchItem
}

// NewTransferUseCase construye el workflow.
func NewTransferUseCase(api StockAPI, n Notifier, log *logger.Logger) *TransferUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &TransferUseCase{
		api:       api,
		notify:    n,
		log:       log.Component("transfers"),
		available: map[availabilityKey]entity.StockSearchItem{},
	}
}

// ListTransfers trae las transferencias donde la sucursal es origen o destino (todas si es 0).
func (uc *TransferUseCase) ListTransfers(ctx context.Context, branchID int64) ([]entity.StockTransfer, error) {
	list, err := uc.api.Transfers(ctx, branchID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []entity.StockTransfer{}
	}
	uc.mu.Lock()
	uc.branchID, uc.transfers = branchID, list
	uc.mu.Unlock()
	return list, nil
}

// Transfers última lista cargada.
func (uc *TransferUseCase) Transfers() []entity.StockTransfer {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return append([]entity.StockTransfer(nil), uc.transfers...)
}

// Reset descarta la lista cargada y la disponibilidad recordada (fin de sesión).
func (uc *TransferUseCase) Reset() {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.branchID = 0
	uc.transfers = nil
	uc.available = map[availabilityKey]entity.StockSearchItem{}
}

// SearchOriginStock busca productos con stock en la sucursal de origen y recuerda la
// disponibilidad de cada resultado para controlar las cantidades del borrador.
func (uc *TransferUseCase) SearchOriginStock(ctx context.Context, query string, branchID int64) ([]entity.StockSearchItem, error) {
	if err := dto.Validate(dto.StockSearchRequest{Q: strings.TrimSpace(query), BranchID: branchID}); err != nil {
		return nil, err
	}
	items, err := uc.api.SearchProducts(ctx, strings.TrimSpace(query), branchID)
	if err != nil {
		return nil, err
	}
	uc.mu.Lock()
	for _, it := range items {
		uc.available[availabilityKey{branchID, it.VariantID}] = it
	}
	uc.mu.Unlock()
	if items == nil {
		items = []entity.StockSearchItem{}
	}
	return items, nil
}

// DraftFromRequest arma un borrador con la disponibilidad recordada por SearchOriginStock.
// Una variante que no se buscó en la sucursal de origen no se puede agregar.
func (uc *TransferUseCase) DraftFromRequest(in dto.CreateTransferRequest) (*TransferDraft, error) {
	d := NewTransferDraft(in.OriginBranchID, in.DestBranchID)
	d.Note = in.Note
	uc.mu.Lock()
	defer uc.mu.Unlock()
	for i, l := range in.Lines {
		item, ok := uc.available[availabilityKey{in.OriginBranchID, l.VariantID}]
		if !ok {
			return nil, domain.Validation(map[string]string{
				fmt.Sprintf("lines[%d].variantId", i): "buscar el producto en la sucursal de origen antes de agregarlo",
			})
		}
		if err := d.AddLine(item, l.Quantity); err != nil {
			var de *domain.Error
			if errors.As(err, &de) {
				msg := de.Fields["quantity"]
				if msg == "" {
					msg = de.Message
				}
				de.Fields = map[string]string{fmt.Sprintf("lines[%d].quantity", i): msg}
			}
			return nil, err
		}
	}
	return d, nil
}

// CreateTransfer valida el borrador y lo envía. Un rechazo del servidor (p.ej. stock
// insuficiente por una lectura vieja) se informa y se devuelve; nunca se reintenta.
func (uc *TransferUseCase) CreateTransfer(ctx context.Context, d *TransferDraft) (*dto.TransferRef, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	ref, err := uc.api.CreateTransfer(ctx, d.Request())
	if err != nil {
		uc.notify.Error(err, "No se pudo crear la transferencia")
		return nil, err
	}
	uc.log.Info().Str("ref", ref.Ref).Int64("origin", d.OriginBranchID).Int64("dest", d.DestBranchID).Msg("transferencia creada")
	uc.notify.Success("Transferencia %s creada con %d productos", ref.Ref, len(d.Lines))

	uc.mu.Lock()
	for k := range uc.available {
		if k.branch == d.OriginBranchID {
			delete(uc.available, k)
		}
	}
	uc.mu.Unlock()
	uc.refresh(ctx)
	return ref, nil
}

// ReceiveTransfer recibe en la sucursal destino. Si la transferencia ya fue recibida
// (visto en la lista o informado por el servidor) el resultado es informativo.
func (uc *TransferUseCase) ReceiveTransfer(ctx context.Context, ref string, destBranchID int64) (ReceiveOutcome, error) {
	out := ReceiveOutcome{Ref: ref}
	fields := map[string]string{}
	if strings.TrimSpace(ref) == "" {
		fields["ref"] = "es requerido"
	}
	if destBranchID <= 0 {
		fields["destBranchId"] = "es requerido"
	}
	if len(fields) > 0 {
		return out, domain.Validation(fields)
	}

	if t, ok := uc.known(ref); ok && !t.CanReceive() {
		uc.notify.Info("La transferencia %s ya fue recibida", ref)
		out.AlreadyReceived = true
		return out, nil
	}

	err := uc.api.ReceiveTransfer(ctx, ref, destBranchID)
	switch {
	case err == nil:
		uc.notify.Success("Transferencia %s recibida", ref)
	case errors.Is(err, domain.ErrAlreadyReceived) || errors.Is(err, domain.ErrConflict):
		uc.log.Info().Str("ref", ref).Msg("transferencia ya recibida")
		uc.notify.Info("La transferencia %s ya fue recibida", ref)
		out.AlreadyReceived = true
	default:
		uc.notify.Error(err, "No se pudo recibir la transferencia")
		return out, err
	}
	uc.refresh(ctx)
	return out, nil
}

func (uc *TransferUseCase) known(ref string) (entity.StockTransfer, bool) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	for _, t := range uc.transfers {
		if t.Ref == ref {
			return t, true
		}
	}
	return entity.StockTransfer{}, false
}

// refresh recarga la lista después de una mutación; si falla, la lista anterior queda.
func (uc *TransferUseCase) refresh(ctx context.Context) {
	uc.mu.Lock()
	branchID := uc.branchID
	uc.mu.Unlock()
	if _, err := uc.ListTransfers(ctx, branchID); err != nil {
		uc.log.Warn().Err(err).Msg("no se pudo recargar la lista de transferencias")
	}
}
