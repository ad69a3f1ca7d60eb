package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/backoffice-pos/internal/application/usecase"
)

// CatalogHandler catálogos auxiliares de solo lectura.
type CatalogHandler struct {
	uc *usecase.CatalogUseCase
}

// NewCatalogHandler construye el handler.
func NewCatalogHandler(uc *usecase.CatalogUseCase) *CatalogHandler {
	return &CatalogHandler{uc: uc}
}

// Categories godoc
// @Summary      Categorías con subcategorías
// @Tags         catalog
// @Produce      json
// @Success      200  {array}  entity.Category
// @Router       /api/catalog/categories [get]
func (h *CatalogHandler) Categories(c *fiber.Ctx) error {
	if c.QueryBool("refresh") {
		h.uc.Invalidate()
	}
	out, err := h.uc.Categories(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// PriceLists godoc
// @Summary      Listas de precios
// @Tags         catalog
// @Produce      json
// @Success      200  {array}  entity.PriceList
// @Router       /api/catalog/price-lists [get]
func (h *CatalogHandler) PriceLists(c *fiber.Ctx) error {
	out, err := h.uc.PriceLists(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// PaymentMethods godoc
// @Summary      Medios de pago
// @Tags         catalog
// @Produce      json
// @Success      200  {array}  entity.PaymentMethod
// @Router       /api/catalog/payment-methods [get]
func (h *CatalogHandler) PaymentMethods(c *fiber.Ctx) error {
	out, err := h.uc.PaymentMethods(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
