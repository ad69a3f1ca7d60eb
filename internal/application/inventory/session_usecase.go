package inventory

import (
	"context"
	"strings"

	"github.com/jhoicas/backoffice-pos/internal/application/dto"
	"github.com/jhoicas/backoffice-pos/internal/domain"
	"github.com/jhoicas/backoffice-pos/internal/domain/entity"
	"github.com/jhoicas/backoffice-pos/pkg/logger"
)

// SessionSummary resumen de los conteos de una sesión.
type SessionSummary struct {
	Items        int `json:"items"`
	Counted      int `json:"counted"`
	Uncounted    int `json:"uncounted"`
	PositiveDiff int `json:"positiveDiff"`
	NegativeDiff int `json:"negativeDiff"`
	Adjustments  int `json:"adjustments"` // ajustes que escribiría la confirmación
}

// Summarize cuenta ítems contados y sin contar y suma las diferencias por signo.
func Summarize(s entity.InventorySession) SessionSummary {
	sum := SessionSummary{Items: len(s.Items)}
	for _, it := range s.Items {
		if !it.IsCounted() {
			sum.Uncounted++
			continue
		}
		sum.Counted++
		d := it.Difference()
		switch {
		case *d > 0:
			sum.PositiveDiff += *d
			sum.Adjustments++
		case *d < 0:
			sum.NegativeDiff += *d
			sum.Adjustments++
		}
	}
	return sum
}

// SessionView detalle de la sesión listo para mostrar. CanCommit false deshabilita la confirmación.
type SessionView struct {
	Session   entity.InventorySession `json:"session"`
	Summary   SessionSummary          `json:"summary"`
	CanCommit bool                    `json:"canCommit"`
}

func newSessionView(s entity.InventorySession) *SessionView {
	return &SessionView{Session: s, Summary: Summarize(s), CanCommit: s.CanCommit()}
}

// SessionUseCase workflow de sesiones de inventario: DRAFT -> COMPLETED, irreversible.
type SessionUseCase struct {
	api    StockAPI
	notify Notifier
	log    *logger.Logger
}

// NewSessionUseCase construye el workflow.
func NewSessionUseCase(api StockAPI, n Notifier, log *logger.Logger) *SessionUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &SessionUseCase{api: api, notify: n, log: log.Component("inventory")}
}

// ListSessions sesiones de la sucursal (todas si es 0).
func (uc *SessionUseCase) ListSessions(ctx context.Context, branchID int64) ([]entity.InventorySession, error) {
	list, err := uc.api.Sessions(ctx, branchID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []entity.InventorySession{}
	}
	return list, nil
}

// CreateSession abre una sesión; el servidor toma la foto del stock esperado.
func (uc *SessionUseCase) CreateSession(ctx context.Context, branchID int64, note string) (*entity.InventorySession, error) {
	in := dto.CreateSessionRequest{BranchID: branchID, Note: strings.TrimSpace(note)}
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	s, err := uc.api.CreateSession(ctx, in)
	if err != nil {
		uc.notify.Error(err, "No se pudo crear la sesión de inventario")
		return nil, err
	}
	uc.notify.Success("Sesión de inventario #%d creada", s.ID)
	return s, nil
}

// SessionDetails trae la sesión con sus ítems.
func (uc *SessionUseCase) SessionDetails(ctx context.Context, id int64) (*SessionView, error) {
	if id <= 0 {
		return nil, domain.Validation(map[string]string{"id": "es requerido"})
	}
	s, err := uc.api.Session(ctx, id)
	if err != nil {
		return nil, err
	}
	return newSessionView(*s), nil
}

// CommitSession confirma la sesión y escribe un ajuste por cada diferencia distinta de cero.
// Requiere confirmación explícita y vuelve a leer la sesión antes de enviar: una sesión
// COMPLETED se rechaza sin ir al servidor.
func (uc *SessionUseCase) CommitSession(ctx context.Context, id int64, confirmed bool) (*SessionView, error) {
	if !confirmed {
		return nil, &domain.Error{
			Kind:    domain.KindValidation,
			Message: domain.ErrConfirmationRequired.Error(),
			Err:     domain.ErrConfirmationRequired,
		}
	}
	view, err := uc.SessionDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	if !view.CanCommit {
		return view, &domain.Error{
			Kind:    domain.KindConflict,
			Code:    "SESSION_COMPLETED",
			Message: domain.ErrSessionCompleted.Error(),
			Err:     domain.ErrSessionCompleted,
		}
	}
	if err := uc.api.CommitSession(ctx, id); err != nil {
		uc.notify.Error(err, "No se pudo confirmar el inventario")
		return view, err
	}
	uc.log.Info().Int64("session_id", id).Int("adjustments", view.Summary.Adjustments).Msg("inventario confirmado")
	uc.notify.Success("Inventario #%d confirmado con %d ajustes", id, view.Summary.Adjustments)

	after, err := uc.SessionDetails(ctx, id)
	if err != nil {
		uc.log.Warn().Err(err).Int64("session_id", id).Msg("no se pudo releer la sesión confirmada")
		view.Session.Status = entity.SessionStatusCompleted
		view.CanCommit = false
		return view, nil
	}
	return after, nil
}
