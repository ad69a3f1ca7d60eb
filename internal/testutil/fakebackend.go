// Package testutil provee un backend POS en memoria (fiber) para los tests de clientes, workflows y handlers.
package testutil

import (
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/backoffice-pos/internal/application/dto"
	"github.com/jhoicas/backoffice-pos/internal/domain/entity"
	pkgjwt "github.com/jhoicas/backoffice-pos/pkg/jwt"
)

// Credenciales y secreto del backend simulado.
const (
	JWTSecret     = "fake-backend-secret"
	AdminEmail    = "admin@pos.test"
	AdminPassword = "secreto123"
)

// IDs sembrados.
const (
	BranchCentral int64 = 1
	BranchNorte   int64 = 2

	ProductRemera    int64 = 3
	ProductZapatilla int64 = 4

	VariantRemeraM   int64 = 7 // 5 unidades en BranchCentral
	VariantRemeraL   int64 = 8
	VariantZapatilla int64 = 9

	CategoryIndumentaria int64 = 1
	CategoryCalzado      int64 = 2
	SubRemeras           int64 = 10
	SubPantalones        int64 = 11
	SubZapatillas        int64 = 20
)

// RecordedRequest petición recibida por el backend simulado.
type RecordedRequest struct {
	Method    string
	Path      string
	Query     url.Values
	RequestID string
}

type stockKey struct {
	branch  int64
	variant int64
}

type failure struct {
	status  int
	code    string
	message string
}

type fakeUser struct {
	hash []byte
	user entity.User
}

// Backend es un backend POS en memoria con las reglas de stock del servidor real:
// transferencias que descuentan en origen y suman al recibir, recepción única,
// sesiones de inventario con foto de stock y confirmación que escribe ajustes.
type Backend struct {
	URL string
	srv *httptest.Server

	mu            sync.Mutex
	nextID        int64
	transferSeq   int
	users         map[string]fakeUser
	customers     map[int64]*entity.Customer
	products      map[int64]*entity.Product
	variantOwner  map[int64]int64
	stock         map[stockKey]*entity.VariantStock
	movements     []entity.StockMovement
	transfers     []*entity.StockTransfer
	sessions      map[int64]*entity.InventorySession
	sales         map[int64]*entity.Sale
	categories    []entity.Category
	priceLists    []entity.PriceList
	paymentMethod []entity.PaymentMethod
	requests      []RecordedRequest
	failures      map[string]failure
	now           func() time.Time
}

// NewBackend levanta el backend simulado y lo cierra al terminar el test.
func NewBackend(t testing.TB) *Backend {
	t.Helper()
	b := &Backend{
		nextID:       100,
		users:        map[string]fakeUser{},
		customers:    map[int64]*entity.Customer{},
		products:     map[int64]*entity.Product{},
		variantOwner: map[int64]int64{},
		stock:        map[stockKey]*entity.VariantStock{},
		sessions:     map[int64]*entity.InventorySession{},
		sales:        map[int64]*entity.Sale{},
		failures:     map[string]failure{},
		now:          time.Now,
	}
	b.seed(t)

	b.srv = httptest.NewServer(adaptor.FiberApp(b.app()))
	b.URL = b.srv.URL
	t.Cleanup(b.srv.Close)
	return b
}

func (b *Backend) app() *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(b.record, b.injectFailure)

	app.Post("/api/auth/login", b.login)

	api := app.Group("/api", b.auth)

	api.Get("/customers", b.listCustomers)
	api.Post("/customers", b.createCustomer)
	api.Post("/customers/import", b.importCustomers)
	api.Get("/customers/template.csv", b.template("clientes.csv", "taxId,name,email,phone,taxCondition\n"))
	api.Get("/customers/:id", b.getCustomer)
	api.Put("/customers/:id", b.updateCustomer)
	api.Delete("/customers/:id", b.deleteCustomer)

	api.Get("/products", b.listProducts)
	api.Post("/products", b.createProduct)
	api.Post("/products/import", b.importProducts)
	api.Get("/products/template.csv", b.template("productos.csv", "sku,name,price,cost\n"))
	api.Get("/products/:id", b.getProduct)
	api.Put("/products/:id", b.updateProduct)
	api.Delete("/products/:id", b.archiveProduct)

	api.Get("/categories", b.listCategories)
	api.Get("/pricelists", b.listPriceLists)
	api.Get("/payment-methods", b.listPaymentMethods)

	api.Get("/sales", b.listSales)
	api.Post("/sales", b.createSale)
	api.Patch("/sales/:id/status", b.updateSaleStatus)

	api.Get("/stock/overview", b.overview)
	api.Get("/stock/movements", b.listMovements)
	api.Get("/stock/transfers", b.listTransfers)
	api.Post("/stock/transfers", b.createTransfer)
	api.Post("/stock/transfers/:ref/receive", b.receiveTransfer)
	api.Get("/stock/inventory/sessions", b.listSessions)
	api.Post("/stock/inventory/sessions", b.createSession)
	api.Get("/stock/inventory/sessions/:id", b.getSession)
	api.Post("/stock/inventory/sessions/:id/commit", b.commitSession)
	api.Get("/stock/products", b.searchStock)

	return app
}

// ──────────────────────────────────────────────────────────────────────────────
// Middlewares
// ──────────────────────────────────────────────────────────────────────────────

func (b *Backend) record(c *fiber.Ctx) error {
	q, _ := url.ParseQuery(string(c.Request().URI().QueryString()))
	b.mu.Lock()
	b.requests = append(b.requests, RecordedRequest{Method: c.Method(), Path: c.Path(), Query: q, RequestID: c.Get("X-Request-ID")})
	b.mu.Unlock()
	return c.Next()
}

func (b *Backend) injectFailure(c *fiber.Ctx) error {
	key := c.Method() + " " + c.Path()
	b.mu.Lock()
	f, ok := b.failures[key]
	if ok {
		delete(b.failures, key)
	}
	b.mu.Unlock()
	if ok {
		return fail(c, f.status, f.code, f.message)
	}
	return c.Next()
}

func (b *Backend) auth(c *fiber.Ctx) error {
	h := c.Get(fiber.HeaderAuthorization)
	tok := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	if h == "" || tok == h {
		return fail(c, fiber.StatusUnauthorized, "MISSING_TOKEN", "Authorization header requerido")
	}
	if _, err := pkgjwt.Parse(JWTSecret, tok); err != nil {
		return fail(c, fiber.StatusUnauthorized, "INVALID_TOKEN", "token inválido o expirado")
	}
	return c.Next()
}

func fail(c *fiber.Ctx, status int, code, msg string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers para los tests
// ──────────────────────────────────────────────────────────────────────────────

// Token emite un token válido para el administrador sembrado.
func (b *Backend) Token(t testing.TB) string {
	t.Helper()
	tok, err := pkgjwt.Generate(JWTSecret, "1", "1", entity.RoleAdmin, "fake-pos", 60)
	if err != nil {
		t.Fatalf("generar token: %v", err)
	}
	return tok
}

// FailOnce hace que la próxima petición method+path responda con el error indicado.
func (b *Backend) FailOnce(method, path string, status int, code, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[method+" "+path] = failure{status: status, code: code, message: message}
}

// Requests devuelve las peticiones recibidas a path (todas si path es "").
func (b *Backend) Requests(path string) []RecordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []RecordedRequest
	for _, r := range b.requests {
		if path == "" || r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// Stock cantidad de la variante en la sucursal.
func (b *Backend) Stock(branchID, variantID int64) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s, ok := b.stock[stockKey{branchID, variantID}]; ok {
		return s.Qty
	}
	return 0
}

// SetStock fija el stock (p.ej. para simular consumo concurrente entre búsqueda y envío).
func (b *Backend) SetStock(branchID, variantID int64, qty int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stockLocked(branchID, variantID).Qty = qty
}

// Count registra el conteo físico de una variante en la sesión (la carga del conteo ocurre fuera del workflow).
func (b *Backend) Count(sessionID, variantID int64, counted int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sessions[sessionID]
	if !ok {
		return
	}
	for i := range s.Items {
		if s.Items[i].VariantID == variantID {
			c := counted
			d := counted - s.Items[i].Expected
			s.Items[i].Counted = &c
			s.Items[i].Diff = &d
		}
	}
}

// Movements copia del libro de movimientos.
func (b *Backend) Movements() []entity.StockMovement {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]entity.StockMovement(nil), b.movements...)
}

// Customer copia del cliente en el servidor.
func (b *Backend) Customer(id int64) *entity.Customer {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.customers[id]
	if !ok {
		return nil
	}
	cp := *c
	return &cp
}

// Product copia del producto en el servidor.
func (b *Backend) Product(id int64) *entity.Product {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.products[id]
	if !ok {
		return nil
	}
	cp := *p
	return &cp
}

func (b *Backend) newID() int64 {
	b.nextID++
	return b.nextID
}

func (b *Backend) stockLocked(branchID, variantID int64) *entity.VariantStock {
	k := stockKey{branchID, variantID}
	s, ok := b.stock[k]
	if !ok {
		s = &entity.VariantStock{VariantID: variantID, BranchID: branchID}
		b.stock[k] = s
	}
	return s
}

func (b *Backend) addMovementLocked(m entity.StockMovement) {
	m.ID = b.newID()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = b.now()
	}
	if m.User == "" {
		m.User = "admin"
	}
	if pid, ok := b.variantOwner[m.VariantID]; ok {
		p := b.products[pid]
		m.ProductID = p.ID
		m.ProductName = p.Name
		for _, v := range p.Variants {
			if v.ID == m.VariantID {
				m.SKU = v.SKU
			}
		}
	}
	b.movements = append(b.movements, m)
}

func (b *Backend) variantName(variantID int64) (string, string) {
	pid, ok := b.variantOwner[variantID]
	if !ok {
		return "", ""
	}
	p := b.products[pid]
	for _, v := range p.Variants {
		if v.ID == variantID {
			name := p.Name
			if v.Name != "" {
				name = v.Name
			}
			return name, v.SKU
		}
	}
	return p.Name, p.SKU
}

func paginate[T any](items []T, page, size int) dto.Page[T] {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = dto.DefaultPageSize
	}
	total := len(items)
	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}
	return dto.Page[T]{Items: append([]T{}, items[start:end]...), Total: total, Page: page, PageSize: size}
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// ──────────────────────────────────────────────────────────────────────────────
// Datos sembrados
// ──────────────────────────────────────────────────────────────────────────────

func (b *Backend) seed(t testing.TB) {
	hash, err := bcrypt.GenerateFromPassword([]byte(AdminPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	branch := BranchCentral
	b.users[AdminEmail] = fakeUser{hash: hash, user: entity.User{ID: 1, Name: "Administrador", Email: AdminEmail, Role: entity.RoleAdmin, BranchID: &branch}}

	b.categories = []entity.Category{
		{ID: CategoryIndumentaria, Name: "Indumentaria", Subcategories: []entity.Subcategory{
			{ID: SubRemeras, CategoryID: CategoryIndumentaria, Name: "Remeras"},
			{ID: SubPantalones, CategoryID: CategoryIndumentaria, Name: "Pantalones"},
		}},
		{ID: CategoryCalzado, Name: "Calzado", Subcategories: []entity.Subcategory{
			{ID: SubZapatillas, CategoryID: CategoryCalzado, Name: "Zapatillas"},
		}},
	}
	b.priceLists = []entity.PriceList{{ID: 1, Name: "Minorista", Default: true}, {ID: 2, Name: "Mayorista"}}
	b.paymentMethod = []entity.PaymentMethod{{ID: 1, Name: "Efectivo", Code: "CASH", Active: true}, {ID: 2, Name: "Tarjeta", Code: "CARD", Active: true}}

	cat1, sub10, cat2, sub20 := CategoryIndumentaria, SubRemeras, CategoryCalzado, SubZapatillas
	b.products[ProductRemera] = &entity.Product{
		ID: ProductRemera, SKU: "REM-001", Name: "Remera básica", CategoryID: &cat1, SubcategoryID: &sub10,
		Price: decimal.NewFromInt(100), Cost: decimal.NewFromInt(80), Margin: decimal.NewFromInt(25),
		TaxRate: decimal.NewFromInt(21), Status: entity.ProductStatusActive,
		Variants: []entity.Variant{
			{ID: VariantRemeraM, SKU: "REM-001-M", Name: "Remera básica M"},
			{ID: VariantRemeraL, SKU: "REM-001-L", Name: "Remera básica L"},
		},
	}
	b.products[ProductZapatilla] = &entity.Product{
		ID: ProductZapatilla, SKU: "ZAP-001", Name: "Zapatilla urbana", CategoryID: &cat2, SubcategoryID: &sub20,
		Price: decimal.NewFromInt(300), Cost: decimal.NewFromInt(200), Margin: decimal.NewFromInt(50),
		TaxRate: decimal.NewFromInt(21), Status: entity.ProductStatusActive,
		Variants: []entity.Variant{{ID: VariantZapatilla, SKU: "ZAP-001-42", Name: "Zapatilla urbana 42"}},
	}
	for _, p := range b.products {
		for _, v := range p.Variants {
			b.variantOwner[v.ID] = p.ID
		}
	}

	*b.stockLocked(BranchCentral, VariantRemeraM) = entity.VariantStock{VariantID: VariantRemeraM, BranchID: BranchCentral, Qty: 5, Min: 2, Max: 50}
	*b.stockLocked(BranchCentral, VariantRemeraL) = entity.VariantStock{VariantID: VariantRemeraL, BranchID: BranchCentral, Qty: 12, Min: 3, Max: 50}
	*b.stockLocked(BranchNorte, VariantRemeraM) = entity.VariantStock{VariantID: VariantRemeraM, BranchID: BranchNorte, Qty: 0, Min: 2}
	*b.stockLocked(BranchNorte, VariantZapatilla) = entity.VariantStock{VariantID: VariantZapatilla, BranchID: BranchNorte, Qty: 1, Min: 2}

	day := func(d int) time.Time { return time.Date(2024, 5, d, 10, 0, 0, 0, time.UTC) }
	b.addMovementLocked(entity.StockMovement{Type: entity.MovementTypeEntry, Quantity: 5, BranchID: BranchCentral, VariantID: VariantRemeraM, Ref: "FC-0001", CreatedAt: day(1)})
	b.addMovementLocked(entity.StockMovement{Type: entity.MovementTypeEntry, Quantity: 12, BranchID: BranchCentral, VariantID: VariantRemeraL, Ref: "FC-0001", CreatedAt: day(1)})
	b.addMovementLocked(entity.StockMovement{Type: entity.MovementTypeSale, Quantity: -2, BranchID: BranchCentral, VariantID: VariantRemeraL, Ref: "V-0001", CreatedAt: day(3)})
	b.addMovementLocked(entity.StockMovement{Type: entity.MovementTypeAdjustment, Quantity: 2, BranchID: BranchCentral, VariantID: VariantRemeraL, Note: "recuento", CreatedAt: day(4)})
	b.addMovementLocked(entity.StockMovement{Type: entity.MovementTypeEntry, Quantity: 2, BranchID: BranchNorte, VariantID: VariantZapatilla, Ref: "FC-0002", CreatedAt: day(5)})
	b.addMovementLocked(entity.StockMovement{Type: entity.MovementTypeSale, Quantity: -1, BranchID: BranchNorte, VariantID: VariantZapatilla, Ref: "V-0002", CreatedAt: day(6)})

	last := day(20)
	b.customers[1] = &entity.Customer{ID: 1, TaxID: "27-11111111-1", Name: "Maria López", Email: "mlopez@example.com", TaxCondition: entity.TaxConditionCF, Status: entity.CustomerStatusActive, LastPurchaseAt: &last}
	b.customers[2] = &entity.Customer{ID: 2, TaxID: "20-22222222-2", Name: "Juan Pérez", Email: "juan@example.com", Phone: "351-555-0101", TaxCondition: entity.TaxConditionRI, Status: entity.CustomerStatusBlocked, Balance: decimal.NewFromInt(1500)}
	b.customers[3] = &entity.Customer{ID: 3, TaxID: "20-33333333-3", Name: "Mariano Díaz", TaxCondition: entity.TaxConditionMT, Status: entity.CustomerStatusActive}
	b.customers[4] = &entity.Customer{ID: 4, TaxID: "27-44444444-4", Name: "Ana Torres", Email: "ana.MARIA@example.com", TaxCondition: entity.TaxConditionCF, Status: entity.CustomerStatusActive, Tags: []string{"mayorista"}}
	b.customers[5] = &entity.Customer{ID: 5, TaxID: "30-55555555-5", Name: "Ferretería Sur", Phone: "0800-MARIA", TaxCondition: entity.TaxConditionRI, Status: entity.CustomerStatusBlocked}
}

// sortedCustomers clientes ordenados por id.
func (b *Backend) sortedCustomers() []entity.Customer {
	out := make([]entity.Customer, 0, len(b.customers))
	for _, c := range b.customers {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (b *Backend) sortedProducts() []entity.Product {
	out := make([]entity.Product, 0, len(b.products))
	for _, p := range b.products {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
