package testutil

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/backoffice-pos/internal/application/dto"
	"github.com/jhoicas/backoffice-pos/internal/domain/entity"
)

func (b *Backend) listProducts(c *fiber.Ctx) error {
	search := c.Query("search")
	status := c.Query("status")
	categoryID := int64(c.QueryInt("categoryId"))
	subcategoryID := int64(c.QueryInt("subcategoryId"))
	branchID := int64(c.QueryInt("branchId"))
	stockLow := c.QueryBool("stockLow")

	b.mu.Lock()
	defer b.mu.Unlock()
	var out []entity.Product
	for _, p := range b.sortedProducts() {
		if search != "" && !containsFold(p.Name, search) && !containsFold(p.SKU, search) {
			continue
		}
		if status != "" && p.Status != status {
			continue
		}
		if categoryID != 0 && (p.CategoryID == nil || *p.CategoryID != categoryID) {
			continue
		}
		if subcategoryID != 0 && (p.SubcategoryID == nil || *p.SubcategoryID != subcategoryID) {
			continue
		}
		if stockLow && len(b.detailLocked(p.ID).LowStock(branchID)) == 0 {
			continue
		}
		p.Variants = nil
		out = append(out, p)
	}
	return c.JSON(paginate(out, c.QueryInt("page", 1), c.QueryInt("pageSize", dto.DefaultPageSize)))
}

func (b *Backend) detailLocked(id int64) *entity.ProductDetail {
	p, ok := b.products[id]
	if !ok {
		return nil
	}
	d := &entity.ProductDetail{Product: *p, Stock: []entity.VariantStock{}}
	for _, v := range p.Variants {
		for _, branch := range []int64{BranchCentral, BranchNorte} {
			if s, ok := b.stock[stockKey{branch, v.ID}]; ok {
				d.Stock = append(d.Stock, *s)
			}
		}
	}
	return d
}

func (b *Backend) getProduct(c *fiber.Ctx) error {
	id, _ := c.ParamsInt("id")
	b.mu.Lock()
	d := b.detailLocked(int64(id))
	b.mu.Unlock()
	if d == nil {
		return fail(c, fiber.StatusNotFound, "NOT_FOUND", "producto no encontrado")
	}
	return c.JSON(d)
}

func (b *Backend) applyProductLocked(p *entity.Product, in dto.ProductInput) {
	p.SKU, p.Name = in.SKU, in.Name
	p.CategoryID, p.SubcategoryID = in.CategoryID, in.SubcategoryID
	p.Price, p.Cost, p.Margin, p.TaxRate = in.Price, in.Cost, in.Margin, in.TaxRate
	if in.Status != "" {
		p.Status = in.Status
	}
	if in.Variants != nil {
		p.Variants = p.Variants[:0]
		for _, v := range in.Variants {
			id := v.ID
			if id == 0 {
				id = b.newID()
			}
			p.Variants = append(p.Variants, entity.Variant{ID: id, SKU: v.SKU, Barcode: v.Barcode, Name: v.Name, Price: v.Price, Cost: v.Cost})
			b.variantOwner[id] = p.ID
		}
	}
}

func (b *Backend) createProduct(c *fiber.Ctx) error {
	var in dto.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return fail(c, fiber.StatusBadRequest, "INVALID_BODY", "cuerpo inválido")
	}
	if in.SKU == "" || in.Name == "" {
		return fail(c, fiber.StatusUnprocessableEntity, "VALIDATION", "sku y name son requeridos")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, p := range b.products {
		if p.SKU == in.SKU {
			return fail(c, fiber.StatusConflict, "DUPLICATE", "ya existe un producto con ese SKU")
		}
	}
	p := &entity.Product{ID: b.newID(), Status: entity.ProductStatusActive}
	b.applyProductLocked(p, in)
	b.products[p.ID] = p
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (b *Backend) updateProduct(c *fiber.Ctx) error {
	id, _ := c.ParamsInt("id")
	var in dto.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return fail(c, fiber.StatusBadRequest, "INVALID_BODY", "cuerpo inválido")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.products[int64(id)]
	if !ok {
		return fail(c, fiber.StatusNotFound, "NOT_FOUND", "producto no encontrado")
	}
	b.applyProductLocked(p, in)
	return c.JSON(p)
}

// archiveProduct el borrado es lógico: el producto pasa a INACTIVE.
func (b *Backend) archiveProduct(c *fiber.Ctx) error {
	id, _ := c.ParamsInt("id")
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.products[int64(id)]
	if !ok {
		return fail(c, fiber.StatusNotFound, "NOT_FOUND", "producto no encontrado")
	}
	p.Status = entity.ProductStatusInactive
	return c.SendStatus(fiber.StatusNoContent)
}

// importProducts lee un CSV sku,name,price,cost con encabezado.
func (b *Backend) importProducts(c *fiber.Ctx) error {
	rows, err := readCSV(c)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "INVALID_FILE", err.Error())
	}
	res := dto.ImportResult{Errors: []dto.ImportRowError{}}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, r := range rows {
		row := i + 2
		if len(r) < 4 || r[0] == "" || r[1] == "" {
			res.ErrorCount++
			res.Errors = append(res.Errors, dto.ImportRowError{Row: row, Message: "sku y name son requeridos"})
			continue
		}
		price, err1 := decimal.NewFromString(r[2])
		cost, err2 := decimal.NewFromString(r[3])
		if err1 != nil || err2 != nil {
			res.ErrorCount++
			res.Errors = append(res.Errors, dto.ImportRowError{Row: row, Message: "precio o costo inválido"})
			continue
		}
		id := b.newID()
		b.products[id] = &entity.Product{ID: id, SKU: r[0], Name: r[1], Price: price, Cost: cost, Status: entity.ProductStatusActive}
		res.SuccessCount++
	}
	return c.JSON(res)
}

func (b *Backend) listCategories(c *fiber.Ctx) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return c.JSON(b.categories)
}

// listPriceLists responde con sobre {"items": [...]}, como algunos endpoints del backend real.
func (b *Backend) listPriceLists(c *fiber.Ctx) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return c.JSON(fiber.Map{"items": b.priceLists})
}

func (b *Backend) listPaymentMethods(c *fiber.Ctx) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return c.JSON(b.paymentMethod)
}
