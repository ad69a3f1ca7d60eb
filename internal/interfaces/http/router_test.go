package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/backoffice-pos/internal/application/auth"
	"github.com/jhoicas/backoffice-pos/internal/application/dto"
	"github.com/jhoicas/backoffice-pos/internal/application/inventory"
	"github.com/jhoicas/backoffice-pos/internal/application/listing"
	"github.com/jhoicas/backoffice-pos/internal/application/notify"
	"github.com/jhoicas/backoffice-pos/internal/application/session"
	"github.com/jhoicas/backoffice-pos/internal/application/usecase"
	"github.com/jhoicas/backoffice-pos/internal/domain/entity"
	"github.com/jhoicas/backoffice-pos/internal/infrastructure/api"
	"github.com/jhoicas/backoffice-pos/internal/infrastructure/storage"
	apphttp "github.com/jhoicas/backoffice-pos/internal/interfaces/http"
	"github.com/jhoicas/backoffice-pos/internal/testutil"
)

// ──────────────────────────────────────────────────────────────────────────────
// Harness: BFF completo sobre el backend simulado
// ──────────────────────────────────────────────────────────────────────────────

type harness struct {
	app         *fiber.App
	backend     *testutil.Backend
	pages       apphttp.Pages
	notices     *notify.Center
	store       *session.Store
	sessionFile string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()
	b := testutil.NewBackend(t)

	file := filepath.Join(t.TempDir(), "session.json")
	store := session.NewStore(storage.NewFileStore(file, "clave-de-test"), "", nil)
	require.NoError(t, store.Init(ctx))

	gw := api.NewGateway(api.Config{BaseURL: b.URL, Timeout: 5 * time.Second}, store, nil)

	notices := notify.NewCenter(time.Minute, nil)
	stock := api.NewStockClient(gw)
	catalog := usecase.NewCatalogUseCase(api.NewCatalogClient(gw), 0)
	customers := usecase.NewCustomerUseCase(api.NewCustomerClient(gw), notices, nil)
	products := usecase.NewProductUseCase(api.NewProductClient(gw), catalog, notices, nil)
	movements := inventory.NewMovementUseCase(stock, nil)

	lcfg := listing.Config{Debounce: 150 * time.Millisecond, Timeout: 5 * time.Second}
	pages := apphttp.Pages{
		Movements: listing.NewLoader(movements.ListMovements, dto.MovementFilter{}, lcfg),
		Customers: listing.NewLoader(customers.List, dto.CustomerFilter{}, lcfg),
		Products:  listing.NewLoader(products.List, dto.ProductFilter{}, lcfg),
	}
	customers.Attach(pages.Customers)
	products.Attach(pages.Products)
	t.Cleanup(pages.Close)

	transfers := inventory.NewTransferUseCase(stock, notices, nil)
	authUC := auth.NewAuthUseCase(api.NewAuthClient(gw), store)
	authUC.OnLogout(func(context.Context) {
		pages.Reset()
		transfers.Reset()
		notices.Clear()
	})
	gw.OnUnauthorized(func(ctx context.Context) { _ = authUC.Logout(ctx) })

	app := apphttp.NewApp("backoffice-test", apphttp.RouterDeps{
		Session:    store,
		AuthUC:     authUC,
		CustomerUC: customers,
		ProductUC:  products,
		CatalogUC:  catalog,
		SaleUC:     usecase.NewSaleUseCase(api.NewSalesClient(gw), notices, nil),
		MovementUC: movements,
		TransferUC: transfers,
		SessionUC:  inventory.NewSessionUseCase(stock, notices, nil),
		Pages:      pages,
		Notices:    notices,
	}, nil)
	return &harness{app: app, backend: b, pages: pages, notices: notices, store: store, sessionFile: file}
}

func (h *harness) do(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func (h *harness) login(t *testing.T) {
	t.Helper()
	resp, body := h.do(t, http.MethodPost, "/api/session", dto.LoginRequest{Email: testutil.AdminEmail, Password: testutil.AdminPassword})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Sesión
// ──────────────────────────────────────────────────────────────────────────────

func TestHealth(t *testing.T) {
	h := newHarness(t)
	resp, body := h.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "backoffice-test")
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID), "cada respuesta lleva request id")
}

func TestSession_SinLoginNoLlegaAlBackend(t *testing.T) {
	h := newHarness(t)
	resp, body := h.do(t, http.MethodGet, "/api/customers", nil)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, string(body), "NO_SESSION")
	assert.Empty(t, h.backend.Requests("/api/customers"), "sin sesión no se llama al backend")
}

func TestSession_LoginPersisteYLogoutLimpia(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	_, body := h.do(t, http.MethodGet, "/api/session", nil)
	me := decode[dto.SessionResponse](t, body)
	assert.True(t, me.Authenticated)
	require.NotNil(t, me.User)
	assert.Equal(t, entity.RoleAdmin, me.User.Role)

	// otra instancia del store sobre el mismo archivo retoma la sesión
	again := session.NewStore(storage.NewFileStore(h.sessionFile, "clave-de-test"), "", nil)
	require.NoError(t, again.Init(context.Background()))
	assert.True(t, again.IsAuthenticated(), "la sesión sobrevive al reinicio")

	resp, _ := h.do(t, http.MethodDelete, "/api/session", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = h.do(t, http.MethodGet, "/api/customers", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSession_CredencialesInvalidas(t *testing.T) {
	h := newHarness(t)
	resp, body := h.do(t, http.MethodPost, "/api/session", dto.LoginRequest{Email: testutil.AdminEmail, Password: "otra"})

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, string(body), "INVALID_CREDENTIALS")
	assert.False(t, h.store.IsAuthenticated())
}

func TestSession_401DelBackendCierraLaSesion(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	h.backend.FailOnce(http.MethodGet, "/api/customers", http.StatusUnauthorized, "INVALID_TOKEN", "token inválido o expirado")

	resp, _ := h.do(t, http.MethodGet, "/api/customers", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, body := h.do(t, http.MethodGet, "/api/session", nil)
	assert.False(t, decode[dto.SessionResponse](t, body).Authenticated, "un 401 del backend equivale a logout")
}

func TestSession_ClaveErroneaNoCierraLaSesionVigente(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	resp, body := h.do(t, http.MethodPost, "/api/session", dto.LoginRequest{Email: testutil.AdminEmail, Password: "otra"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, string(body), "INVALID_CREDENTIALS")

	assert.True(t, h.store.IsAuthenticated(), "un login rechazado no es un logout")
	resp, _ = h.do(t, http.MethodGet, "/api/customers", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSession_LogoutDescartaElEstadoDeVista(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	resp, body := h.do(t, http.MethodPost, "/api/ui/customers/refresh", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.NotEmpty(t, decode[listing.Snapshot[dto.CustomerFilter, entity.Customer]](t, body).Items)
	resp, _ = h.do(t, http.MethodPut, "/api/customers/3/status", dto.CustomerStatusRequest{Status: entity.CustomerStatusBlocked})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, h.notices.Active())

	resp, _ = h.do(t, http.MethodDelete, "/api/session", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	h.login(t)
	fetched := len(h.backend.Requests("/api/customers"))

	resp, body = h.do(t, http.MethodGet, "/api/ui/customers", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	snap := decode[listing.Snapshot[dto.CustomerFilter, entity.Customer]](t, body)
	assert.Empty(t, snap.Items, "el listado de la sesión anterior no se sirve")
	assert.Zero(t, snap.Total)
	assert.Len(t, h.backend.Requests("/api/customers"), fetched)

	_, body = h.do(t, http.MethodGet, "/api/ui/notices", nil)
	assert.Empty(t, decode[[]notify.Notice](t, body), "los avisos de la sesión anterior se descartan")
}

func TestSession_401DelBackendDescartaElEstadoDeVista(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	resp, _ := h.do(t, http.MethodPost, "/api/ui/customers/refresh", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, h.pages.Customers.Snapshot().Items)

	h.backend.FailOnce(http.MethodGet, "/api/customers", http.StatusUnauthorized, "INVALID_TOKEN", "token inválido o expirado")
	resp, _ = h.do(t, http.MethodGet, "/api/customers", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	assert.False(t, h.store.IsAuthenticated())
	assert.Empty(t, h.pages.Customers.Snapshot().Items)
	assert.Zero(t, h.pages.Customers.Snapshot().Total)
}

// ──────────────────────────────────────────────────────────────────────────────
// Clientes y productos
// ──────────────────────────────────────────────────────────────────────────────

func TestCustomers_BusquedaYValidacion(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	resp, body := h.do(t, http.MethodGet, "/api/customers?search=maria", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, 4, decode[dto.Page[entity.Customer]](t, body).Total)

	resp, body = h.do(t, http.MethodPost, "/api/customers", dto.CustomerInput{TaxID: "20-1", Name: "X", Email: "no-es-email", TaxCondition: "CF"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	e := decode[dto.ErrorResponse](t, body)
	assert.Equal(t, "VALIDATION", e.Code)
	assert.Contains(t, e.Fields, "email")
}

func TestCustomers_Bloquear(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	resp, body := h.do(t, http.MethodPut, "/api/customers/3/status", dto.CustomerStatusRequest{Status: entity.CustomerStatusBlocked})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, entity.CustomerStatusBlocked, h.backend.Customer(3).Status)

	resp, _ = h.do(t, http.MethodPut, "/api/customers/3/status", dto.CustomerStatusRequest{Status: "OTRO"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProducts_PlantillaYMargen(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	resp, body := h.do(t, http.MethodGet, "/api/products/template", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "productos.csv")
	assert.Contains(t, string(body), "sku,name")

	resp, body = h.do(t, http.MethodPost, "/api/products/margin", map[string]any{"price": 150, "cost": 100, "margin": 0, "field": "price"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, string(body), `"margin":50`)
}

func TestProducts_ArchivadoPorLotes(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	resp, body := h.do(t, http.MethodPost, "/api/products/archive", dto.ArchiveBatchRequest{IDs: []int64{testutil.ProductRemera, 999}})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	res := decode[dto.BatchResult](t, body)
	assert.Equal(t, []int64{testutil.ProductRemera}, res.Succeeded)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, int64(999), res.Failed[0].ID)
}

// ──────────────────────────────────────────────────────────────────────────────
// Stock
// ──────────────────────────────────────────────────────────────────────────────

func TestStock_TransferenciaCompleta(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	resp, body := h.do(t, http.MethodGet, "/api/stock/search?q=REM-001-M&branchId=1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	items := decode[[]entity.StockSearchItem](t, body)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].AvailableQty)

	resp, body = h.do(t, http.MethodPost, "/api/stock/transfers", dto.CreateTransferRequest{
		OriginBranchID: testutil.BranchCentral,
		DestBranchID:   testutil.BranchNorte,
		Lines:          []dto.TransferLineInput{{VariantID: testutil.VariantRemeraM, Quantity: 5}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	ref := decode[dto.TransferRef](t, body).Ref
	require.NotEmpty(t, ref)
	assert.Equal(t, 0, h.backend.Stock(testutil.BranchCentral, testutil.VariantRemeraM))

	resp, body = h.do(t, http.MethodPost, "/api/stock/transfers/"+ref+"/receive", dto.ReceiveTransferRequest{DestBranchID: testutil.BranchNorte})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.False(t, decode[dto.ReceiveTransferResponse](t, body).AlreadyReceived)
	assert.Equal(t, 5, h.backend.Stock(testutil.BranchNorte, testutil.VariantRemeraM))

	resp, body = h.do(t, http.MethodPost, "/api/stock/transfers/"+ref+"/receive", dto.ReceiveTransferRequest{DestBranchID: testutil.BranchNorte})
	require.Equal(t, http.StatusOK, resp.StatusCode, "la doble recepción no es un error")
	assert.True(t, decode[dto.ReceiveTransferResponse](t, body).AlreadyReceived)

	_, body = h.do(t, http.MethodGet, "/api/ui/notices", nil)
	notices := decode[[]notify.Notice](t, body)
	require.NotEmpty(t, notices)
	last := notices[len(notices)-1]
	assert.Equal(t, notify.LevelInfo, last.Level)

	resp, _ = h.do(t, http.MethodDelete, "/api/ui/notices/"+last.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = h.do(t, http.MethodDelete, "/api/ui/notices/"+last.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStock_MismaSucursal422(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	h.do(t, http.MethodGet, "/api/stock/search?q=REM-001-M&branchId=1", nil)

	resp, body := h.do(t, http.MethodPost, "/api/stock/transfers", dto.CreateTransferRequest{
		OriginBranchID: testutil.BranchCentral,
		DestBranchID:   testutil.BranchCentral,
		Lines:          []dto.TransferLineInput{{VariantID: testutil.VariantRemeraM, Quantity: 1}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, decode[dto.ErrorResponse](t, body).Fields, "destBranchId")
	assert.Empty(t, h.backend.Requests("/api/stock/transfers"), "no se envía nada al backend")
}

func TestStock_ConfirmarSesionRequiereConfirmacion(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	resp, body := h.do(t, http.MethodPost, "/api/stock/sessions", dto.CreateSessionRequest{BranchID: testutil.BranchCentral})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	s := decode[entity.InventorySession](t, body)
	path := "/api/stock/sessions/" + strconv.FormatInt(s.ID, 10) + "/commit"

	resp, _ = h.do(t, http.MethodPost, path, dto.CommitSessionRequest{Confirmed: false})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = h.do(t, http.MethodPost, path, dto.CommitSessionRequest{Confirmed: true})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	view := decode[inventory.SessionView](t, body)
	assert.Equal(t, entity.SessionStatusCompleted, view.Session.Status)
	assert.False(t, view.CanCommit)

	resp, body = h.do(t, http.MethodPost, path, dto.CommitSessionRequest{Confirmed: true})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "SESSION_COMPLETED", decode[dto.ErrorResponse](t, body).Code)
}

func TestStock_MovimientosPaginaDesdeElTotal(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	resp, body := h.do(t, http.MethodGet, "/api/stock/movements?type=SALE&limit=1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	out := decode[struct {
		Items     []entity.StockMovement `json:"items"`
		Total     int                    `json:"total"`
		PageCount int                    `json:"pageCount"`
	}](t, body)
	assert.Len(t, out.Items, 1)
	assert.Equal(t, 2, out.Total)
	assert.Equal(t, 2, out.PageCount)

	resp, _ = h.do(t, http.MethodGet, "/api/stock/movements?from=2024-05-10&to=2024-05-01", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Estado de pantalla
// ──────────────────────────────────────────────────────────────────────────────

func TestUI_FiltroDeClientesConDebounce(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	for _, q := range []string{"m", "ma", "mar", "maria"} {
		resp, _ := h.do(t, http.MethodPut, "/api/ui/customers", dto.CustomerFilter{Search: q})
		require.Equal(t, http.StatusAccepted, resp.StatusCode)
	}

	assert.Eventually(t, func() bool {
		_, body := h.do(t, http.MethodGet, "/api/ui/customers", nil)
		snap := decode[listing.Snapshot[dto.CustomerFilter, entity.Customer]](t, body)
		return !snap.Pending && !snap.Loading && snap.Filter.Search == "maria" && snap.Total == 4
	}, 3*time.Second, 25*time.Millisecond)

	reqs := h.backend.Requests("/api/customers")
	require.Len(t, reqs, 1, "solo la última búsqueda llega al backend")
	assert.Equal(t, "maria", reqs[0].Query.Get("search"))
}

func TestUI_FiltroInvalido(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	resp, body := h.do(t, http.MethodPut, "/api/ui/movements", dto.MovementFilter{Type: "ROBO"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decode[dto.ErrorResponse](t, body).Fields, "type")
}
