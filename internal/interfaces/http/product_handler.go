package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/backoffice-pos/internal/application/dto"
	"github.com/jhoicas/backoffice-pos/internal/application/usecase"
)

// ProductHandler maneja las peticiones HTTP de productos (protegido).
type ProductHandler struct {
	uc *usecase.ProductUseCase
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *usecase.ProductUseCase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// List godoc
// @Summary      Listar productos
// @Tags         products
// @Produce      json
// @Param        search         query  string  false  "Texto libre"
// @Param        categoryId     query  int     false  "Categoría"
// @Param        subcategoryId  query  int     false  "Subcategoría"
// @Param        status         query  string  false  "ACTIVE | INACTIVE"
// @Param        stockLow       query  bool    false  "Solo stock bajo"
// @Param        branchId       query  int     false  "Sucursal"
// @Param        page           query  int     false  "Página"  default(1)
// @Param        pageSize       query  int     false  "Tamaño"  default(20)
// @Success      200  {object}  dto.Page[entity.Product]
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	var f dto.ProductFilter
	if err := c.QueryParser(&f); err != nil {
		return badQuery(c)
	}
	out, err := h.uc.List(c.UserContext(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Detalle de producto con stock por variante
// @Tags         products
// @Produce      json
// @Param        id        path   int  true   "ID del producto"
// @Param        branchId  query  int  false  "Sucursal para agregar el stock (0 = todas)"
// @Success      200  {object}  usecase.ProductDetailView
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badID(c)
	}
	out, err := h.uc.Details(c.UserContext(), id, int64(c.QueryInt("branchId", 0)))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear producto
// @Description  El margen se recalcula desde precio y costo antes de enviar.
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ProductInput  true  "Datos del producto"
// @Success      201   {object}  entity.Product
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Actualizar producto
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id    path  int               true  "ID del producto"
// @Param        body  body  dto.ProductInput  true  "Datos del producto"
// @Success      200   {object}  entity.Product
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/products/{id} [put]
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badID(c)
	}
	var in dto.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Archive godoc
// @Summary      Archivar producto
// @Tags         products
// @Param        id  path  int  true  "ID del producto"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [delete]
func (h *ProductHandler) Archive(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badID(c)
	}
	if err := h.uc.Archive(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ArchiveBatch godoc
// @Summary      Archivar varios productos
// @Description  Secuencial y sin rollback: informa los ids archivados y los fallidos con su motivo.
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ArchiveBatchRequest  true  "ids"
// @Success      200   {object}  dto.BatchResult
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/products/archive [post]
func (h *ProductHandler) ArchiveBatch(c *fiber.Ctx) error {
	var in dto.ArchiveBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.ArchiveBatch(c.UserContext(), in.IDs)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Margin godoc
// @Summary      Recalcular precio o margen
// @Description  Recalcula según el campo editado (price, cost o margin) sin persistir.
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        body  body  dto.MarginRequest  true  "Valores y campo editado"
// @Success      200   {object}  dto.MarginResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/products/margin [post]
func (h *ProductHandler) Margin(c *fiber.Ctx) error {
	var in dto.MarginRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Margin(in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Import godoc
// @Summary      Importar productos desde CSV
// @Tags         products
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "CSV"
// @Success      200   {object}  dto.ImportResult
// @Router       /api/products/import [post]
func (h *ProductHandler) Import(c *fiber.Ctx) error {
	return importFile(c, h.uc.Import)
}

// Template godoc
// @Summary      Plantilla CSV de importación de productos
// @Tags         products
// @Produce      text/csv
// @Success      200
// @Router       /api/products/template [get]
func (h *ProductHandler) Template(c *fiber.Ctx) error {
	b, err := h.uc.Template(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return sendBlob(c, b)
}
