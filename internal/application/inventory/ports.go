package inventory

import (
	"context"

	"github.com/jhoicas/backoffice-pos/internal/application/dto"
	"github.com/jhoicas/backoffice-pos/internal/application/notify"
	"github.com/jhoicas/backoffice-pos/internal/domain/entity"
)

// StockAPI puerto hacia los endpoints de stock del backend.
type StockAPI interface {
	Overview(ctx context.Context, branchID int64) (*entity.StockOverview, error)
	Movements(ctx context.Context, f dto.MovementFilter) (dto.Page[entity.StockMovement], error)
	Transfers(ctx context.Context, branchID int64) ([]entity.StockTransfer, error)
	CreateTransfer(ctx context.Context, in dto.CreateTransferRequest) (*dto.TransferRef, error)
	ReceiveTransfer(ctx context.Context, ref string, destBranchID int64) error
	Sessions(ctx context.Context, branchID int64) ([]entity.InventorySession, error)
	CreateSession(ctx context.Context, in dto.CreateSessionRequest) (*entity.InventorySession, error)
	Session(ctx context.Context, id int64) (*entity.InventorySession, error)
	CommitSession(ctx context.Context, id int64) error
	SearchProducts(ctx context.Context, query string, branchID int64) ([]entity.StockSearchItem, error)
}

// Notifier publica avisos transitorios para el operador.
type Notifier interface {
	Success(format string, args ...interface{}) notify.Notice
	Info(format string, args ...interface{}) notify.Notice
	Error(err error, action string) notify.Notice
}
