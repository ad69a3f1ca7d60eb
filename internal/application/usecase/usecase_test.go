package usecase_test

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/backoffice-pos/internal/application/dto"
	"github.com/jhoicas/backoffice-pos/internal/application/listing"
	"github.com/jhoicas/backoffice-pos/internal/application/notify"
	"github.com/jhoicas/backoffice-pos/internal/application/usecase"
	"github.com/jhoicas/backoffice-pos/internal/domain"
	"github.com/jhoicas/backoffice-pos/internal/domain/entity"
	"github.com/jhoicas/backoffice-pos/internal/infrastructure/api"
	"github.com/jhoicas/backoffice-pos/internal/testutil"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

type fixture struct {
	backend   *testutil.Backend
	notices   *notify.Center
	catalog   *usecase.CatalogUseCase
	products  *usecase.ProductUseCase
	customers *usecase.CustomerUseCase
	sales     *usecase.SaleUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	b := testutil.NewBackend(t)
	gw := api.NewGateway(api.Config{BaseURL: b.URL, Timeout: 5 * time.Second}, staticToken(b.Token(t)), nil)
	center := notify.NewCenter(time.Minute, nil)
	catalog := usecase.NewCatalogUseCase(api.NewCatalogClient(gw), 0)
	return &fixture{
		backend:   b,
		notices:   center,
		catalog:   catalog,
		products:  usecase.NewProductUseCase(api.NewProductClient(gw), catalog, center, nil),
		customers: usecase.NewCustomerUseCase(api.NewCustomerClient(gw), center, nil),
		sales:     usecase.NewSaleUseCase(api.NewSalesClient(gw), center, nil),
	}
}

func (f *fixture) count(method, path string) int {
	n := 0
	for _, r := range f.backend.Requests(path) {
		if r.Method == method {
			n++
		}
	}
	return n
}

func (f *fixture) lastNotice(t *testing.T) notify.Notice {
	t.Helper()
	active := f.notices.Active()
	require.NotEmpty(t, active)
	return active[len(active)-1]
}

func ptr(v int64) *int64 { return &v }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ──────────────────────────────────────────────────────────────────────────────
// Productos
// ──────────────────────────────────────────────────────────────────────────────

func TestProduct_CreateDerivaElMargen(t *testing.T) {
	f := newFixture(t)
	p, err := f.products.Create(context.Background(), dto.ProductInput{
		SKU: " BUZ-001 ", Name: "Buzo", CategoryID: ptr(testutil.CategoryIndumentaria), SubcategoryID: ptr(testutil.SubRemeras),
		Price: dec("150"), Cost: dec("100"), Margin: dec("999"), TaxRate: dec("21"),
	})
	require.NoError(t, err)

	stored := f.backend.Product(p.ID)
	require.NotNil(t, stored)
	assert.Equal(t, "BUZ-001", stored.SKU)
	assert.True(t, stored.Margin.Equal(dec("50")), "margen = (150-100)/100*100, obtenido %s", stored.Margin)
	assert.Equal(t, notify.LevelSuccess, f.lastNotice(t).Level)
}

func TestProduct_SubcategoriaDeOtraCategoria(t *testing.T) {
	f := newFixture(t)
	_, err := f.products.Create(context.Background(), dto.ProductInput{
		SKU: "X-1", Name: "X", CategoryID: ptr(testutil.CategoryIndumentaria), SubcategoryID: ptr(testutil.SubZapatillas),
		Price: dec("10"), Cost: dec("5"), TaxRate: dec("21"),
	})

	var de *domain.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, domain.KindValidation, de.Kind)
	assert.Contains(t, de.Fields, "subcategoryId")
	assert.Zero(t, f.count(http.MethodPost, "/api/products"), "no se envía")

	_, err = f.products.Create(context.Background(), dto.ProductInput{
		SKU: "X-1", Name: "X", SubcategoryID: ptr(testutil.SubRemeras), Price: dec("10"), Cost: dec("5"),
	})
	require.ErrorAs(t, err, &de)
	assert.Contains(t, de.Fields, "subcategoryId", "subcategoría sin categoría")
}

func TestProduct_CategoriasEnMemoria(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := f.catalog.Categories(ctx)
		require.NoError(t, err)
	}
	assert.Len(t, f.backend.Requests("/api/categories"), 1)

	f.catalog.Invalidate()
	_, err := f.catalog.Categories(ctx)
	require.NoError(t, err)
	assert.Len(t, f.backend.Requests("/api/categories"), 2)
}

func TestProduct_DetailsAgregaStockPorSucursal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	v, err := f.products.Details(ctx, testutil.ProductRemera, testutil.BranchCentral)
	require.NoError(t, err)
	assert.Equal(t, 17, v.TotalStock)
	assert.Empty(t, v.LowStock)

	v, err = f.products.Details(ctx, testutil.ProductRemera, 0)
	require.NoError(t, err)
	assert.Equal(t, 17, v.TotalStock, "Norte tiene 0 de la M")
	require.Len(t, v.LowStock, 1)
	assert.Equal(t, testutil.BranchNorte, v.LowStock[0].BranchID)
}

func TestProduct_ArchiveBatchSigueTrasFallas(t *testing.T) {
	f := newFixture(t)
	res, err := f.products.ArchiveBatch(context.Background(), []int64{testutil.ProductRemera, 999, testutil.ProductZapatilla})
	require.NoError(t, err)

	assert.Equal(t, []int64{testutil.ProductRemera, testutil.ProductZapatilla}, res.Succeeded)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, int64(999), res.Failed[0].ID)
	assert.Equal(t, "producto no encontrado", res.Failed[0].Reason)
	assert.False(t, res.OK())

	assert.Equal(t, entity.ProductStatusInactive, f.backend.Product(testutil.ProductRemera).Status)
	assert.Equal(t, entity.ProductStatusInactive, f.backend.Product(testutil.ProductZapatilla).Status)
	n := f.lastNotice(t)
	assert.Equal(t, notify.LevelInfo, n.Level)
	assert.Equal(t, "2 productos archivados, 1 con error", n.Message)
}

func TestProduct_ListRecargaTrasMutacion(t *testing.T) {
	f := newFixture(t)
	loader := listing.NewLoader(f.products.List, dto.ProductFilter{Status: entity.ProductStatusActive}, listing.Config{})
	f.products.Attach(loader)
	_, err := loader.Load(context.Background(), loader.Filter())
	require.NoError(t, err)
	require.Equal(t, 2, loader.Snapshot().Total)

	require.NoError(t, f.products.Archive(context.Background(), testutil.ProductZapatilla))
	assert.Equal(t, 1, loader.Snapshot().Total, "la lista se vuelve a pedir")
}

func TestProduct_Margin(t *testing.T) {
	f := newFixture(t)

	out, err := f.products.Margin(dto.MarginRequest{Price: dec("100"), Cost: dec("80"), Margin: dec("30"), Field: "margin"})
	require.NoError(t, err)
	assert.True(t, out.Price.Equal(dec("104")), "precio = 80*1.3, obtenido %s", out.Price)
	assert.True(t, out.Margin.Equal(dec("30")))

	out, err = f.products.Margin(dto.MarginRequest{Price: dec("120"), Cost: dec("80"), Field: "price"})
	require.NoError(t, err)
	assert.True(t, out.Margin.Equal(dec("50")))
	assert.True(t, out.Price.Equal(dec("120")), "el campo editado no se re-deriva")

	_, err = f.products.Margin(dto.MarginRequest{Field: "sku"})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestProduct_Import(t *testing.T) {
	f := newFixture(t)
	res, err := f.products.Import(context.Background(), "productos.csv",
		strings.NewReader("sku,name,price,cost\nGOR-01,Gorra,50,20\nGOR-02,,50,20\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, res.SuccessCount)
	assert.Equal(t, 1, res.ErrorCount)
	assert.Equal(t, notify.LevelInfo, f.lastNotice(t).Level)

	blob, err := f.products.Template(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "productos.csv", blob.Name)
}

// ──────────────────────────────────────────────────────────────────────────────
// Clientes
// ──────────────────────────────────────────────────────────────────────────────

func TestCustomer_BusquedaDebounceadaSeEnviaTalCual(t *testing.T) {
	f := newFixture(t)
	loader := listing.NewLoader(f.customers.List, dto.CustomerFilter{}, listing.Config{Debounce: 30 * time.Millisecond})
	defer loader.Close()

	for _, s := range []string{"m", "ma", "mar", "mari", "maria"} {
		loader.SetFilter(dto.CustomerFilter{Search: s})
	}

	require.Eventually(t, func() bool {
		snap := loader.Snapshot()
		return !snap.Pending && !snap.Loading && snap.Filter.Search == "maria" && snap.Total > 0
	}, 2*time.Second, 10*time.Millisecond)

	reqs := f.backend.Requests("/api/customers")
	require.Len(t, reqs, 1, "las teclas intermedias no generan pedidos")
	assert.Equal(t, "maria", reqs[0].Query.Get("search"))

	snap := loader.Snapshot()
	assert.Equal(t, 4, snap.Total)
	ids := make([]int64, 0, len(snap.Items))
	for _, c := range snap.Items {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []int64{1, 3, 4, 5}, ids, "el servidor decide en qué campos buscar")
}

func TestCustomer_CreateValida(t *testing.T) {
	f := newFixture(t)
	_, err := f.customers.Create(context.Background(), dto.CustomerInput{
		TaxID: "20-1", Name: "Nuevo", Email: "no-es-email", TaxCondition: "XX",
	})
	var de *domain.Error
	require.ErrorAs(t, err, &de)
	assert.Contains(t, de.Fields, "email")
	assert.Contains(t, de.Fields, "taxCondition")
	assert.Zero(t, f.count(http.MethodPost, "/api/customers"))

	c, err := f.customers.Create(context.Background(), dto.CustomerInput{TaxID: "20-12345678-9", Name: "Nuevo", TaxCondition: "cf"})
	require.NoError(t, err)
	assert.Equal(t, entity.TaxConditionCF, c.TaxCondition)
	assert.Equal(t, entity.CustomerStatusActive, c.Status)

	_, err = f.customers.Create(context.Background(), dto.CustomerInput{TaxID: "20-12345678-9", Name: "Otro", TaxCondition: "CF"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	assert.Equal(t, notify.LevelError, f.lastNotice(t).Level)
}

func TestCustomer_SetBlockedActualizaSoloSiElServidorAcepta(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	loader := listing.NewLoader(f.customers.List, dto.CustomerFilter{}, listing.Config{})
	f.customers.Attach(loader)
	_, err := loader.Load(ctx, dto.CustomerFilter{})
	require.NoError(t, err)

	statusOf := func(id int64) string {
		for _, c := range loader.Snapshot().Items {
			if c.ID == id {
				return c.Status
			}
		}
		return ""
	}

	c, err := f.customers.SetBlocked(ctx, 1, true)
	require.NoError(t, err)
	assert.True(t, c.Blocked())
	assert.Equal(t, entity.CustomerStatusBlocked, statusOf(1))
	assert.Equal(t, entity.CustomerStatusBlocked, f.backend.Customer(1).Status)

	f.backend.FailOnce(http.MethodPut, "/api/customers/3", http.StatusInternalServerError, "", "base de datos caída")
	_, err = f.customers.SetBlocked(ctx, 3, true)
	require.Error(t, err)
	assert.Equal(t, entity.CustomerStatusActive, statusOf(3), "sin confirmación del servidor no cambia")
	n := f.lastNotice(t)
	assert.Equal(t, notify.LevelError, n.Level)
	assert.Contains(t, n.Message, "base de datos caída")

	_, err = f.customers.SetBlocked(ctx, 2, false)
	require.NoError(t, err)
	assert.Equal(t, entity.CustomerStatusActive, statusOf(2))
	assert.True(t, f.backend.Customer(2).Balance.Equal(dec("1500")), "el saldo no se toca")
}

func TestCustomer_DeleteRecarga(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	loader := listing.NewLoader(f.customers.List, dto.CustomerFilter{}, listing.Config{})
	f.customers.Attach(loader)
	_, err := loader.Load(ctx, dto.CustomerFilter{})
	require.NoError(t, err)

	require.NoError(t, f.customers.Delete(ctx, 5))
	assert.Equal(t, 4, loader.Snapshot().Total)
	assert.Nil(t, f.backend.Customer(5))
}

// ──────────────────────────────────────────────────────────────────────────────
// Ventas
// ──────────────────────────────────────────────────────────────────────────────

func TestSale_PagosDebenCubrirElTotal(t *testing.T) {
	f := newFixture(t)
	_, err := f.sales.Create(context.Background(), dto.CreateSaleRequest{
		BranchID: testutil.BranchCentral,
		Lines:    []dto.SaleLineInput{{VariantID: testutil.VariantRemeraM, Quantity: 2, UnitPrice: dec("100")}},
		Payments: []dto.SalePaymentInput{{PaymentMethodID: 1, Amount: dec("150")}},
	})
	var de *domain.Error
	require.ErrorAs(t, err, &de)
	assert.Contains(t, de.Fields, "payments")
	assert.Zero(t, f.count(http.MethodPost, "/api/sales"))
}

func TestSale_CreateYCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	customer := int64(1)

	s, err := f.sales.Create(ctx, dto.CreateSaleRequest{
		CustomerID: &customer,
		BranchID:   testutil.BranchCentral,
		Lines:      []dto.SaleLineInput{{VariantID: testutil.VariantRemeraM, Quantity: 2, UnitPrice: dec("100")}},
		Payments:   []dto.SalePaymentInput{{PaymentMethodID: 1, Amount: dec("120")}, {PaymentMethodID: 2, Amount: dec("80")}},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.SaleStatusCompleted, s.Status)
	assert.Equal(t, 3, f.backend.Stock(testutil.BranchCentral, testutil.VariantRemeraM))

	page, err := f.sales.List(ctx, dto.SaleFilter{Status: entity.SaleStatusCompleted})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)

	s, err = f.sales.Cancel(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SaleStatusCancelled, s.Status)
	assert.Equal(t, 5, f.backend.Stock(testutil.BranchCentral, testutil.VariantRemeraM), "la anulación devuelve el stock")

	_, err = f.sales.Cancel(ctx, s.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestSale_StockInsuficiente(t *testing.T) {
	f := newFixture(t)
	_, err := f.sales.Create(context.Background(), dto.CreateSaleRequest{
		BranchID: testutil.BranchNorte,
		Lines:    []dto.SaleLineInput{{VariantID: testutil.VariantZapatilla, Quantity: 3, UnitPrice: dec("300")}},
		Payments: []dto.SalePaymentInput{{PaymentMethodID: 1, Amount: dec("900")}},
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 1, f.backend.Stock(testutil.BranchNorte, testutil.VariantZapatilla))
}
