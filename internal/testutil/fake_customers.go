package testutil

import (
	"encoding/csv"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/backoffice-pos/internal/application/dto"
	"github.com/jhoicas/backoffice-pos/internal/domain/entity"
	pkgjwt "github.com/jhoicas/backoffice-pos/pkg/jwt"
)

func (b *Backend) login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return fail(c, fiber.StatusBadRequest, "INVALID_BODY", "cuerpo inválido")
	}
	b.mu.Lock()
	u, ok := b.users[strings.ToLower(in.Email)]
	b.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(u.hash, []byte(in.Password)) != nil {
		return fail(c, fiber.StatusUnauthorized, "INVALID_CREDENTIALS", "email o contraseña incorrectos")
	}
	tok, err := pkgjwt.Generate(JWTSecret, "1", "1", u.user.Role, "fake-pos", 60)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "INTERNAL", err.Error())
	}
	return c.JSON(dto.LoginResponse{Token: tok, User: u.user})
}

func (b *Backend) listCustomers(c *fiber.Ctx) error {
	search := c.Query("search")
	status := c.Query("status")
	withDebt := c.QueryBool("withDebt")
	noPurchases := c.QueryInt("noPurchasesDays")

	b.mu.Lock()
	all := b.sortedCustomers()
	now := b.now()
	b.mu.Unlock()

	var out []entity.Customer
	for _, cu := range all {
		if search != "" && !(containsFold(cu.Name, search) || containsFold(cu.TaxID, search) ||
			containsFold(cu.Email, search) || containsFold(cu.Phone, search)) {
			continue
		}
		if status != "" && cu.Status != status {
			continue
		}
		if withDebt && !cu.HasDebt() {
			continue
		}
		if noPurchases > 0 && cu.LastPurchaseAt != nil && cu.LastPurchaseAt.After(now.AddDate(0, 0, -noPurchases)) {
			continue
		}
		out = append(out, cu)
	}
	return c.JSON(paginate(out, c.QueryInt("page", 1), c.QueryInt("pageSize", dto.DefaultPageSize)))
}

func (b *Backend) getCustomer(c *fiber.Ctx) error {
	id, _ := c.ParamsInt("id")
	if cu := b.Customer(int64(id)); cu != nil {
		return c.JSON(cu)
	}
	return fail(c, fiber.StatusNotFound, "NOT_FOUND", "cliente no encontrado")
}

func (b *Backend) createCustomer(c *fiber.Ctx) error {
	var in dto.CustomerInput
	if err := c.BodyParser(&in); err != nil {
		return fail(c, fiber.StatusBadRequest, "INVALID_BODY", "cuerpo inválido")
	}
	if in.Name == "" || in.TaxID == "" {
		return fail(c, fiber.StatusUnprocessableEntity, "VALIDATION", "name y taxId son requeridos")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, cu := range b.customers {
		if cu.TaxID == in.TaxID {
			return fail(c, fiber.StatusConflict, "DUPLICATE", "ya existe un cliente con ese CUIT/DNI")
		}
	}
	status := in.Status
	if status == "" {
		status = entity.CustomerStatusActive
	}
	cu := &entity.Customer{
		ID: b.newID(), TaxID: in.TaxID, Name: in.Name, Email: in.Email, Phone: in.Phone, Address: in.Address,
		TaxCondition: in.TaxCondition, PriceListID: in.PriceListID, Status: status, Tags: in.Tags,
	}
	b.customers[cu.ID] = cu
	return c.Status(fiber.StatusCreated).JSON(cu)
}

// updateCustomer aplica solo los campos presentes; balance y última compra no son editables.
func (b *Backend) updateCustomer(c *fiber.Ctx) error {
	id, _ := c.ParamsInt("id")
	var patch map[string]json.RawMessage
	if err := json.Unmarshal(c.Body(), &patch); err != nil {
		return fail(c, fiber.StatusBadRequest, "INVALID_BODY", "cuerpo inválido")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	cu, ok := b.customers[int64(id)]
	if !ok {
		return fail(c, fiber.StatusNotFound, "NOT_FOUND", "cliente no encontrado")
	}
	fields := map[string]interface{}{
		"taxId": &cu.TaxID, "name": &cu.Name, "email": &cu.Email, "phone": &cu.Phone, "address": &cu.Address,
		"taxCondition": &cu.TaxCondition, "priceListId": &cu.PriceListID, "status": &cu.Status, "tags": &cu.Tags,
	}
	for k, raw := range patch {
		if dst, ok := fields[k]; ok {
			if err := json.Unmarshal(raw, dst); err != nil {
				return fail(c, fiber.StatusUnprocessableEntity, "VALIDATION", "campo inválido: "+k)
			}
		}
	}
	if cu.Status != entity.CustomerStatusActive && cu.Status != entity.CustomerStatusBlocked {
		return fail(c, fiber.StatusUnprocessableEntity, "VALIDATION", "estado inválido")
	}
	return c.JSON(cu)
}

func (b *Backend) deleteCustomer(c *fiber.Ctx) error {
	id, _ := c.ParamsInt("id")
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.customers[int64(id)]; !ok {
		return fail(c, fiber.StatusNotFound, "NOT_FOUND", "cliente no encontrado")
	}
	delete(b.customers, int64(id))
	return c.SendStatus(fiber.StatusNoContent)
}

// importCustomers lee un CSV taxId,name,email,phone,taxCondition con encabezado.
func (b *Backend) importCustomers(c *fiber.Ctx) error {
	rows, err := readCSV(c)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "INVALID_FILE", err.Error())
	}
	res := dto.ImportResult{Errors: []dto.ImportRowError{}}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, r := range rows {
		row := i + 2
		if len(r) < 5 || r[0] == "" || r[1] == "" {
			res.ErrorCount++
			res.Errors = append(res.Errors, dto.ImportRowError{Row: row, Message: "taxId y name son requeridos"})
			continue
		}
		if !entity.ValidTaxCondition(r[4]) {
			res.ErrorCount++
			res.Errors = append(res.Errors, dto.ImportRowError{Row: row, Message: "condición de IVA inválida"})
			continue
		}
		id := b.newID()
		b.customers[id] = &entity.Customer{ID: id, TaxID: r[0], Name: r[1], Email: r[2], Phone: r[3], TaxCondition: r[4], Status: entity.CustomerStatusActive}
		res.SuccessCount++
	}
	return c.JSON(res)
}

func readCSV(c *fiber.Ctx) ([][]string, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		rows = rows[1:]
	}
	return rows, nil
}

func (b *Backend) template(name, content string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`"`)
		return c.SendString(content)
	}
}

// stampPurchaseLocked registra la fecha de última compra del cliente.
func (b *Backend) stampPurchaseLocked(customerID *int64, at time.Time) {
	if customerID == nil {
		return
	}
	if cu, ok := b.customers[*customerID]; ok {
		t := at
		cu.LastPurchaseAt = &t
	}
}
