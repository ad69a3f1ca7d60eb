package testutil

import (
	"fmt"
	"sort"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/backoffice-pos/internal/application/dto"
	"github.com/jhoicas/backoffice-pos/internal/domain/entity"
)

func (b *Backend) listSales(c *fiber.Ctx) error {
	from, to := c.Query("from"), c.Query("to")
	status := c.Query("status")
	branchID := int64(c.QueryInt("branchId"))

	b.mu.Lock()
	var out []entity.Sale
	for _, s := range b.sales {
		day := s.CreatedAt.Format("2006-01-02")
		if from != "" && day < from || to != "" && day > to {
			continue
		}
		if status != "" && s.Status != status {
			continue
		}
		if branchID != 0 && s.BranchID != branchID {
			continue
		}
		out = append(out, *s)
	}
	b.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return c.JSON(paginate(out, c.QueryInt("page", 1), c.QueryInt("pageSize", dto.DefaultPageSize)))
}

// createSale es transaccional: valida todo el stock antes de descontar y escribe un SALE por línea.
func (b *Backend) createSale(c *fiber.Ctx) error {
	var in dto.CreateSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return fail(c, fiber.StatusBadRequest, "INVALID_BODY", "cuerpo inválido")
	}
	if len(in.Lines) == 0 || in.BranchID == 0 {
		return fail(c, fiber.StatusUnprocessableEntity, "VALIDATION", "branchId y líneas son requeridos")
	}
	if in.Paid().LessThan(in.Total()) {
		return fail(c, fiber.StatusUnprocessableEntity, "PAYMENT_MISMATCH", "los pagos no cubren el total")
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	need := map[int64]int{}
	for _, l := range in.Lines {
		need[l.VariantID] += l.Quantity
	}
	for variantID, qty := range need {
		if b.stockLocked(in.BranchID, variantID).Qty < qty {
			return fail(c, fiber.StatusConflict, "INSUFFICIENT_STOCK", fmt.Sprintf("stock insuficiente para la variante %d", variantID))
		}
	}

	now := b.now()
	s := &entity.Sale{
		ID: b.newID(), CustomerID: in.CustomerID, BranchID: in.BranchID,
		Total: in.Total(), Status: entity.SaleStatusCompleted, CreatedAt: now, User: "admin",
	}
	ref := fmt.Sprintf("V-%d", s.ID)
	for _, l := range in.Lines {
		b.stockLocked(in.BranchID, l.VariantID).Qty -= l.Quantity
		b.addMovementLocked(entity.StockMovement{
			Type: entity.MovementTypeSale, Quantity: -l.Quantity, BranchID: in.BranchID,
			VariantID: l.VariantID, Ref: ref, CreatedAt: now,
		})
		s.Lines = append(s.Lines, entity.SaleLine{VariantID: l.VariantID, Quantity: l.Quantity, UnitPrice: l.UnitPrice})
	}
	for _, p := range in.Payments {
		s.Payments = append(s.Payments, entity.SalePayment{PaymentMethodID: p.PaymentMethodID, Amount: p.Amount})
	}
	b.sales[s.ID] = s
	b.stampPurchaseLocked(in.CustomerID, now)
	return c.Status(fiber.StatusCreated).JSON(s)
}

// updateSaleStatus solo permite COMPLETED -> CANCELLED; devuelve el stock con un ENTRY por línea.
func (b *Backend) updateSaleStatus(c *fiber.Ctx) error {
	id, _ := c.ParamsInt("id")
	var in dto.SaleStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return fail(c, fiber.StatusBadRequest, "INVALID_BODY", "cuerpo inválido")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sales[int64(id)]
	if !ok {
		return fail(c, fiber.StatusNotFound, "NOT_FOUND", "venta no encontrada")
	}
	if in.Status != entity.SaleStatusCancelled || s.Status != entity.SaleStatusCompleted {
		return fail(c, fiber.StatusConflict, "INVALID_TRANSITION", "transición de estado no permitida")
	}
	now := b.now()
	for _, l := range s.Lines {
		b.stockLocked(s.BranchID, l.VariantID).Qty += l.Quantity
		b.addMovementLocked(entity.StockMovement{
			Type: entity.MovementTypeEntry, Quantity: l.Quantity, BranchID: s.BranchID,
			VariantID: l.VariantID, Ref: fmt.Sprintf("V-%d", s.ID), Note: "anulación de venta", CreatedAt: now,
		})
	}
	s.Status = entity.SaleStatusCancelled
	return c.JSON(s)
}
