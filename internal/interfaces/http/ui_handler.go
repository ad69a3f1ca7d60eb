package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/backoffice-pos/internal/application/dto"
	"github.com/jhoicas/backoffice-pos/internal/application/listing"
	"github.com/jhoicas/backoffice-pos/internal/application/notify"
	"github.com/jhoicas/backoffice-pos/internal/domain/entity"
)

// Pages listados que el BFF mantiene entre peticiones (filtros con debounce).
type Pages struct {
	Movements *listing.Loader[dto.MovementFilter, entity.StockMovement]
	Customers *listing.Loader[dto.CustomerFilter, entity.Customer]
	Products  *listing.Loader[dto.ProductFilter, entity.Product]
}

// Reset vacía los tres listados; el próximo operador no ve datos de la sesión anterior.
func (p Pages) Reset() {
	p.Movements.Reset()
	p.Customers.Reset()
	p.Products.Reset()
}

// Close detiene debounce y cargas en curso de los tres listados.
func (p Pages) Close() {
	p.Movements.Close()
	p.Customers.Close()
	p.Products.Close()
}

// UIHandler avisos transitorios del operador.
type UIHandler struct {
	notices *notify.Center
}

// NewUIHandler construye el handler.
func NewUIHandler(notices *notify.Center) *UIHandler {
	return &UIHandler{notices: notices}
}

// pageRoutes GET devuelve el snapshot; PUT agenda el filtro (último gana) y responde 202;
// POST /refresh recarga ya con el filtro vigente.
func pageRoutes[F, T any](r fiber.Router, l *listing.Loader[F, T], prepare func(*F) error) {
	r.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(l.Snapshot())
	})
	r.Put("/", func(c *fiber.Ctx) error {
		var f F
		if err := c.BodyParser(&f); err != nil {
			return badBody(c)
		}
		if err := prepare(&f); err != nil {
			return writeError(c, err)
		}
		l.SetFilter(f)
		return c.Status(fiber.StatusAccepted).JSON(l.Snapshot())
	})
	r.Post("/refresh", func(c *fiber.Ctx) error {
		if err := l.Refresh(c.UserContext()); err != nil && !errors.Is(err, listing.ErrStale) {
			return writeError(c, err)
		}
		return c.JSON(l.Snapshot())
	})
}

func prepareMovements(f *dto.MovementFilter) error {
	f.DefaultPage()
	return dto.Validate(*f)
}

func prepareCustomers(f *dto.CustomerFilter) error {
	return dto.Validate(*f)
}

func prepareProducts(f *dto.ProductFilter) error {
	return dto.Validate(*f)
}

// Notices godoc
// @Summary      Avisos vigentes
// @Tags         ui
// @Produce      json
// @Success      200  {array}  notify.Notice
// @Router       /api/ui/notices [get]
func (h *UIHandler) Notices(c *fiber.Ctx) error {
	return c.JSON(h.notices.Active())
}

// DismissNotice godoc
// @Summary      Descartar aviso
// @Tags         ui
// @Param        id  path  string  true  "ID del aviso"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/ui/notices/{id} [delete]
func (h *UIHandler) DismissNotice(c *fiber.Ctx) error {
	if !h.notices.Dismiss(c.Params("id")) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "aviso inexistente o vencido"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
