package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/backoffice-pos/internal/application/dto"
	"github.com/jhoicas/backoffice-pos/internal/application/inventory"
)

// InventoryHandler stock: resumen, movimientos, transferencias y sesiones de inventario.
type InventoryHandler struct {
	movements *inventory.MovementUseCase
	transfers *inventory.TransferUseCase
	sessions  *inventory.SessionUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(m *inventory.MovementUseCase, t *inventory.TransferUseCase, s *inventory.SessionUseCase) *InventoryHandler {
	return &InventoryHandler{movements: m, transfers: t, sessions: s}
}

// Overview godoc
// @Summary      Resumen de stock
// @Tags         stock
// @Produce      json
// @Param        branchId  query  int  false  "Sucursal (0 = todas)"
// @Success      200  {object}  entity.StockOverview
// @Router       /api/stock/overview [get]
func (h *InventoryHandler) Overview(c *fiber.Ctx) error {
	out, err := h.movements.Overview(c.UserContext(), int64(c.QueryInt("branchId", 0)))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Movements godoc
// @Summary      Libro de movimientos de stock
// @Description  pageCount se calcula con el total del servidor.
// @Tags         stock
// @Produce      json
// @Param        from      query  string  false  "Desde (YYYY-MM-DD)"
// @Param        to        query  string  false  "Hasta (YYYY-MM-DD)"
// @Param        type      query  string  false  "ENTRY | SALE | ADJUSTMENT | TRANSFER_OUT | TRANSFER_IN | INVENTORY"
// @Param        branchId  query  int     false  "Sucursal"
// @Param        q         query  string  false  "Producto o SKU"
// @Param        limit     query  int     false  "Límite (1-100)"  default(20)
// @Param        offset    query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.Page[entity.StockMovement]
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/movements [get]
func (h *InventoryHandler) Movements(c *fiber.Ctx) error {
	var f dto.MovementFilter
	if err := c.QueryParser(&f); err != nil {
		return badQuery(c)
	}
	page, err := h.movements.ListMovements(c.UserContext(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"items":     page.Items,
		"total":     page.Total,
		"page":      page.Page,
		"pageSize":  page.PageSize,
		"pageCount": page.Pages(),
	})
}

// Search godoc
// @Summary      Buscar stock en una sucursal
// @Description  La disponibilidad encontrada queda como referencia para el borrador de transferencia.
// @Tags         stock
// @Produce      json
// @Param        q         query  string  true  "Producto, SKU o código de barras"
// @Param        branchId  query  int     true  "Sucursal de origen"
// @Success      200  {array}  entity.StockSearchItem
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/search [get]
func (h *InventoryHandler) Search(c *fiber.Ctx) error {
	var in dto.StockSearchRequest
	if err := c.QueryParser(&in); err != nil {
		return badQuery(c)
	}
	out, err := h.transfers.SearchOriginStock(c.UserContext(), in.Q, in.BranchID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Transfers godoc
// @Summary      Transferencias de una sucursal
// @Tags         stock
// @Produce      json
// @Param        branchId  query  int  false  "Origen o destino (0 = todas)"
// @Success      200  {array}  entity.StockTransfer
// @Router       /api/stock/transfers [get]
func (h *InventoryHandler) Transfers(c *fiber.Ctx) error {
	out, err := h.transfers.ListTransfers(c.UserContext(), int64(c.QueryInt("branchId", 0)))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// CreateTransfer godoc
// @Summary      Crear transferencia
// @Description  Origen y destino distintos; cada cantidad hasta la disponibilidad vista en la búsqueda.
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTransferRequest  true  "Borrador"
// @Success      201   {object}  dto.TransferRef
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/stock/transfers [post]
func (h *InventoryHandler) CreateTransfer(c *fiber.Ctx) error {
	var in dto.CreateTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := dto.Validate(in); err != nil {
		return writeError(c, err)
	}
	draft, err := h.transfers.DraftFromRequest(in)
	if err != nil {
		return writeError(c, err)
	}
	ref, err := h.transfers.CreateTransfer(c.UserContext(), draft)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ref)
}

// ReceiveTransfer godoc
// @Summary      Recibir transferencia
// @Description  Si ya fue recibida responde 200 con alreadyReceived=true.
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        ref   path  string                      true  "Referencia"
// @Param        body  body  dto.ReceiveTransferRequest  true  "Sucursal destino"
// @Success      200   {object}  dto.ReceiveTransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/stock/transfers/{ref}/receive [post]
func (h *InventoryHandler) ReceiveTransfer(c *fiber.Ctx) error {
	var in dto.ReceiveTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.transfers.ReceiveTransfer(c.UserContext(), c.Params("ref"), in.DestBranchID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ReceiveTransferResponse{Ref: out.Ref, AlreadyReceived: out.AlreadyReceived})
}

// Sessions godoc
// @Summary      Sesiones de inventario
// @Tags         stock
// @Produce      json
// @Param        branchId  query  int  false  "Sucursal (0 = todas)"
// @Success      200  {array}  entity.InventorySession
// @Router       /api/stock/sessions [get]
func (h *InventoryHandler) Sessions(c *fiber.Ctx) error {
	out, err := h.sessions.ListSessions(c.UserContext(), int64(c.QueryInt("branchId", 0)))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// CreateSession godoc
// @Summary      Abrir sesión de inventario
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSessionRequest  true  "Sucursal y nota"
// @Success      201   {object}  entity.InventorySession
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/stock/sessions [post]
func (h *InventoryHandler) CreateSession(c *fiber.Ctx) error {
	var in dto.CreateSessionRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.sessions.CreateSession(c.UserContext(), in.BranchID, in.Note)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Session godoc
// @Summary      Detalle de sesión de inventario
// @Tags         stock
// @Produce      json
// @Param        id  path  int  true  "ID de la sesión"
// @Success      200  {object}  inventory.SessionView
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/sessions/{id} [get]
func (h *InventoryHandler) Session(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badID(c)
	}
	out, err := h.sessions.SessionDetails(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// CommitSession godoc
// @Summary      Confirmar sesión de inventario
// @Description  Irreversible: requiere confirmed=true y se rechaza si la sesión ya está COMPLETED.
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        id    path  int                       true  "ID de la sesión"
// @Param        body  body  dto.CommitSessionRequest  true  "Confirmación"
// @Success      200   {object}  inventory.SessionView
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/sessions/{id}/commit [post]
func (h *InventoryHandler) CommitSession(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badID(c)
	}
	var in dto.CommitSessionRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.sessions.CommitSession(c.UserContext(), id, in.Confirmed)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
