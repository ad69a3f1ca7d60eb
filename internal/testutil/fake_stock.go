package testutil

import (
	"fmt"
	"sort"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/backoffice-pos/internal/application/dto"
	"github.com/jhoicas/backoffice-pos/internal/domain/entity"
)

const noMovementDays = 30

func (b *Backend) overview(c *fiber.Ctx) error {
	branchID := int64(c.QueryInt("branchId"))
	b.mu.Lock()
	defer b.mu.Unlock()

	since := b.now().AddDate(0, 0, -noMovementDays)
	moved := map[stockKey]bool{}
	for _, m := range b.movements {
		if m.CreatedAt.After(since) {
			moved[stockKey{m.BranchID, m.VariantID}] = true
		}
	}
	out := entity.StockOverview{InventoryValue: decimal.Zero, NoMovementDays: noMovementDays}
	for k, s := range b.stock {
		if branchID != 0 && k.branch != branchID {
			continue
		}
		if s.Low() {
			out.LowStock++
		}
		if !moved[k] {
			out.NoMovement++
		}
		if pid, ok := b.variantOwner[k.variant]; ok {
			out.InventoryValue = out.InventoryValue.Add(b.products[pid].Cost.Mul(decimal.NewFromInt(int64(s.Qty))))
		}
	}
	return c.JSON(out)
}

func (b *Backend) listMovements(c *fiber.Ctx) error {
	from, to := c.Query("from"), c.Query("to")
	typ := c.Query("type")
	branchID := int64(c.QueryInt("branchId"))
	q := c.Query("q")
	limit := c.QueryInt("limit", dto.DefaultMovementLimit)
	offset := c.QueryInt("offset")

	b.mu.Lock()
	all := append([]entity.StockMovement(nil), b.movements...)
	b.mu.Unlock()

	var out []entity.StockMovement
	for _, m := range all {
		day := m.CreatedAt.Format("2006-01-02")
		if from != "" && day < from || to != "" && day > to {
			continue
		}
		if typ != "" && m.Type != typ {
			continue
		}
		if branchID != 0 && m.BranchID != branchID {
			continue
		}
		if q != "" && !containsFold(m.ProductName, q) && !containsFold(m.SKU, q) && !containsFold(m.Ref, q) {
			continue
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	total := len(out)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return c.JSON(dto.Page[entity.StockMovement]{Items: append([]entity.StockMovement{}, out[offset:end]...), Total: total})
}

// ──────────────────────────────────────────────────────────────────────────────
// Transferencias
// ──────────────────────────────────────────────────────────────────────────────

func (b *Backend) listTransfers(c *fiber.Ctx) error {
	branchID := int64(c.QueryInt("branchId"))
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []entity.StockTransfer{}
	for _, t := range b.transfers {
		if branchID == 0 || t.Involves(branchID) {
			out = append(out, *t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].LastActivityAt.After(out[j].LastActivityAt) })
	return c.JSON(fiber.Map{"items": out})
}

func (b *Backend) transferLocked(ref string) *entity.StockTransfer {
	for _, t := range b.transfers {
		if t.Ref == ref {
			return t
		}
	}
	return nil
}

// createTransfer descuenta en origen y escribe TRANSFER_OUT por línea, todo o nada.
func (b *Backend) createTransfer(c *fiber.Ctx) error {
	var in dto.CreateTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return fail(c, fiber.StatusBadRequest, "INVALID_BODY", "cuerpo inválido")
	}
	if in.OriginBranchID == in.DestBranchID {
		return fail(c, fiber.StatusBadRequest, "SAME_BRANCH", "origen y destino deben ser distintos")
	}
	if len(in.Lines) == 0 {
		return fail(c, fiber.StatusUnprocessableEntity, "VALIDATION", "al menos una línea")
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	need := map[int64]int{}
	for _, l := range in.Lines {
		if l.Quantity <= 0 {
			return fail(c, fiber.StatusUnprocessableEntity, "VALIDATION", "cantidad inválida")
		}
		need[l.VariantID] += l.Quantity
	}
	for variantID, qty := range need {
		if b.stockLocked(in.OriginBranchID, variantID).Qty < qty {
			return fail(c, fiber.StatusConflict, "INSUFFICIENT_STOCK",
				fmt.Sprintf("stock insuficiente para la variante %d", variantID))
		}
	}

	b.transferSeq++
	ref := fmt.Sprintf("TR-%06d", b.transferSeq)
	now := b.now()
	t := &entity.StockTransfer{
		Ref: ref, OriginBranchID: in.OriginBranchID, DestBranchID: in.DestBranchID,
		Status: entity.TransferStatusInTransit, Note: in.Note, CreatedAt: now, LastActivityAt: now, User: "admin",
	}
	for _, l := range in.Lines {
		b.stockLocked(in.OriginBranchID, l.VariantID).Qty -= l.Quantity
		b.addMovementLocked(entity.StockMovement{
			Type: entity.MovementTypeTransferOut, Quantity: -l.Quantity, BranchID: in.OriginBranchID,
			VariantID: l.VariantID, Ref: ref, Note: in.Note, CreatedAt: now,
		})
		name, sku := b.variantName(l.VariantID)
		t.Lines = append(t.Lines, entity.TransferLine{VariantID: l.VariantID, Quantity: l.Quantity, ProductName: name, SKU: sku})
	}
	t.ItemCount = len(t.Lines)
	b.transfers = append(b.transfers, t)
	return c.Status(fiber.StatusCreated).JSON(dto.TransferRef{Ref: ref})
}

// receiveTransfer solo una vez: la segunda recepción responde 409 ALREADY_RECEIVED.
func (b *Backend) receiveTransfer(c *fiber.Ctx) error {
	ref := c.Params("ref")
	var in dto.ReceiveTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return fail(c, fiber.StatusBadRequest, "INVALID_BODY", "cuerpo inválido")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	t := b.transferLocked(ref)
	if t == nil {
		return fail(c, fiber.StatusNotFound, "NOT_FOUND", "transferencia no encontrada")
	}
	if t.Status == entity.TransferStatusReceived {
		return fail(c, fiber.StatusConflict, "ALREADY_RECEIVED", "Already received")
	}
	if in.DestBranchID != t.DestBranchID {
		return fail(c, fiber.StatusUnprocessableEntity, "WRONG_BRANCH", "la transferencia debe recibirse en la sucursal destino")
	}
	now := b.now()
	for _, l := range t.Lines {
		b.stockLocked(t.DestBranchID, l.VariantID).Qty += l.Quantity
		b.addMovementLocked(entity.StockMovement{
			Type: entity.MovementTypeTransferIn, Quantity: l.Quantity, BranchID: t.DestBranchID,
			VariantID: l.VariantID, Ref: t.Ref, CreatedAt: now,
		})
	}
	t.Status = entity.TransferStatusReceived
	t.ReceivedAt = &now
	t.LastActivityAt = now
	return c.JSON(t)
}

// ──────────────────────────────────────────────────────────────────────────────
// Sesiones de inventario
// ──────────────────────────────────────────────────────────────────────────────

func (b *Backend) listSessions(c *fiber.Ctx) error {
	branchID := int64(c.QueryInt("branchId"))
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []entity.InventorySession{}
	for _, s := range b.sessions {
		if branchID != 0 && s.BranchID != branchID {
			continue
		}
		cp := *s
		cp.Items = nil
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return c.JSON(out)
}

// createSession toma la foto del stock esperado de cada variante de la sucursal.
func (b *Backend) createSession(c *fiber.Ctx) error {
	var in dto.CreateSessionRequest
	if err := c.BodyParser(&in); err != nil {
		return fail(c, fiber.StatusBadRequest, "INVALID_BODY", "cuerpo inválido")
	}
	if in.BranchID == 0 {
		return fail(c, fiber.StatusUnprocessableEntity, "VALIDATION", "branchId es requerido")
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	s := &entity.InventorySession{
		ID: b.newID(), BranchID: in.BranchID, Status: entity.SessionStatusDraft,
		Note: in.Note, CreatedAt: b.now(), User: "admin",
	}
	for k, st := range b.stock {
		if k.branch != in.BranchID {
			continue
		}
		name, sku := b.variantName(k.variant)
		s.Items = append(s.Items, entity.InventorySessionItem{VariantID: k.variant, ProductName: name, SKU: sku, Expected: st.Qty})
	}
	sort.Slice(s.Items, func(i, j int) bool { return s.Items[i].VariantID < s.Items[j].VariantID })
	s.ItemCount = len(s.Items)
	b.sessions[s.ID] = s
	return c.Status(fiber.StatusCreated).JSON(s)
}

func (b *Backend) getSession(c *fiber.Ctx) error {
	id, _ := c.ParamsInt("id")
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sessions[int64(id)]
	if !ok {
		return fail(c, fiber.StatusNotFound, "NOT_FOUND", "sesión no encontrada")
	}
	return c.JSON(s)
}

// commitSession escribe un ADJUSTMENT por cada ítem contado con diferencia distinta de cero.
func (b *Backend) commitSession(c *fiber.Ctx) error {
	id, _ := c.ParamsInt("id")
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sessions[int64(id)]
	if !ok {
		return fail(c, fiber.StatusNotFound, "NOT_FOUND", "sesión no encontrada")
	}
	if s.Status == entity.SessionStatusCompleted {
		return fail(c, fiber.StatusConflict, "SESSION_COMPLETED", "la sesión ya fue confirmada")
	}
	now := b.now()
	ref := fmt.Sprintf("INV-%d", s.ID)
	for _, it := range s.Items {
		d := it.Difference()
		if d == nil || *d == 0 {
			continue
		}
		b.stockLocked(s.BranchID, it.VariantID).Qty = *it.Counted
		b.addMovementLocked(entity.StockMovement{
			Type: entity.MovementTypeAdjustment, Quantity: *d, BranchID: s.BranchID,
			VariantID: it.VariantID, Ref: ref, Note: "ajuste por inventario", CreatedAt: now,
		})
	}
	s.Status = entity.SessionStatusCompleted
	s.CompletedAt = &now
	return c.JSON(s)
}

func (b *Backend) searchStock(c *fiber.Ctx) error {
	q := c.Query("q")
	branchID := int64(c.QueryInt("branchId"))
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []entity.StockSearchItem{}
	for _, p := range b.sortedProducts() {
		for _, v := range p.Variants {
			name := v.Name
			if name == "" {
				name = p.Name
			}
			if q != "" && !containsFold(name, q) && !containsFold(v.SKU, q) && !containsFold(p.SKU, q) {
				continue
			}
			qty := 0
			if s, ok := b.stock[stockKey{branchID, v.ID}]; ok {
				qty = s.Qty
			}
			out = append(out, entity.StockSearchItem{VariantID: v.ID, Name: name, SKU: v.SKU, AvailableQty: qty})
		}
	}
	return c.JSON(out)
}
