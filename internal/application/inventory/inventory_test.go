package inventory_test

import (
	"context"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/backoffice-pos/internal/application/dto"
	"github.com/jhoicas/backoffice-pos/internal/application/inventory"
	"github.com/jhoicas/backoffice-pos/internal/application/notify"
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
	transfers *inventory.TransferUseCase
	sessions  *inventory.SessionUseCase
	movements *inventory.MovementUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	b := testutil.NewBackend(t)
	gw := api.NewGateway(api.Config{BaseURL: b.URL, Timeout: 5 * time.Second}, staticToken(b.Token(t)), nil)
	stock := api.NewStockClient(gw)
	center := notify.NewCenter(time.Minute, nil)
	return &fixture{
		backend:   b,
		notices:   center,
		transfers: inventory.NewTransferUseCase(stock, center, nil),
		sessions:  inventory.NewSessionUseCase(stock, center, nil),
		movements: inventory.NewMovementUseCase(stock, nil),
	}
}

func (f *fixture) posts(path string) int {
	n := 0
	for _, r := range f.backend.Requests(path) {
		if r.Method == http.MethodPost {
			n++
		}
	}
	return n
}

func lastNotice(t *testing.T, c *notify.Center) notify.Notice {
	t.Helper()
	active := c.Active()
	require.NotEmpty(t, active)
	return active[len(active)-1]
}

// ──────────────────────────────────────────────────────────────────────────────
// Borrador de transferencia
// ──────────────────────────────────────────────────────────────────────────────

func TestTransferDraft_MismaSucursalSeRechazaSinRed(t *testing.T) {
	f := newFixture(t)
	d := inventory.NewTransferDraft(testutil.BranchCentral, testutil.BranchCentral)
	require.NoError(t, d.AddLine(entity.StockSearchItem{VariantID: testutil.VariantRemeraM, AvailableQty: 5}, 1))

	_, err := f.transfers.CreateTransfer(context.Background(), d)

	assert.ErrorIs(t, err, domain.ErrSameBranch)
	assert.Equal(t, domain.KindBusiness, domain.KindOf(err))
	assert.Zero(t, f.posts("/api/stock/transfers"), "no debe haber llamada de red")
}

func TestTransferDraft_AddLine(t *testing.T) {
	d := inventory.NewTransferDraft(testutil.BranchCentral, testutil.BranchNorte)
	item := entity.StockSearchItem{VariantID: testutil.VariantRemeraM, Name: "Remera básica M", AvailableQty: 5}

	err := d.AddLine(item, 0)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err), "cantidad 0 no se admite")

	err = d.AddLine(item, 6)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock, "nunca por encima de lo disponible")
	assert.Empty(t, d.Lines)

	require.NoError(t, d.AddLine(item, 3))
	require.NoError(t, d.AddLine(item, 2))
	require.Len(t, d.Lines, 1, "la misma variante acumula")
	assert.Equal(t, 5, d.Lines[0].Quantity)

	err = d.AddLine(item, 1)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock, "la suma se vuelve a controlar")
	assert.Equal(t, 5, d.Lines[0].Quantity)

	d.RemoveLine(testutil.VariantRemeraM)
	assert.Empty(t, d.Lines)
}

func TestTransferDraft_Validate(t *testing.T) {
	d := inventory.NewTransferDraft(0, testutil.BranchNorte)
	err := d.Validate()
	require.Error(t, err)
	var de *domain.Error
	require.ErrorAs(t, err, &de)
	assert.Contains(t, de.Fields, "originBranchId")
	assert.Contains(t, de.Fields, "lines")

	d = inventory.NewTransferDraft(testutil.BranchCentral, testutil.BranchNorte)
	d.Lines = []inventory.DraftLine{{VariantID: testutil.VariantRemeraM, Quantity: 7, Available: 5}}
	err = d.Validate()
	require.ErrorAs(t, err, &de)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Contains(t, de.Fields, "lines[0].quantity")
}

// ──────────────────────────────────────────────────────────────────────────────
// Workflow de transferencias
// ──────────────────────────────────────────────────────────────────────────────

func TestTransfer_EscenarioCompleto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	results, err := f.transfers.SearchOriginStock(ctx, "remera", testutil.BranchCentral)
	require.NoError(t, err)
	var remeraM entity.StockSearchItem
	for _, r := range results {
		if r.VariantID == testutil.VariantRemeraM {
			remeraM = r
		}
	}
	require.Equal(t, 5, remeraM.AvailableQty)

	d := inventory.NewTransferDraft(testutil.BranchCentral, testutil.BranchNorte)
	require.NoError(t, d.AddLine(remeraM, 5))
	ref, err := f.transfers.CreateTransfer(ctx, d)
	require.NoError(t, err)

	assert.Equal(t, 0, f.backend.Stock(testutil.BranchCentral, testutil.VariantRemeraM), "el origen queda en 0")
	list := f.transfers.Transfers()
	require.Len(t, list, 1, "la lista se recarga tras crear")
	assert.Equal(t, entity.TransferStatusInTransit, list[0].Status)
	assert.Equal(t, notify.LevelSuccess, lastNotice(t, f.notices).Level)

	out, err := f.transfers.ReceiveTransfer(ctx, ref.Ref, testutil.BranchNorte)
	require.NoError(t, err)
	assert.False(t, out.AlreadyReceived)
	assert.Equal(t, 5, f.backend.Stock(testutil.BranchNorte, testutil.VariantRemeraM), "destino +5")
	assert.Equal(t, entity.TransferStatusReceived, f.transfers.Transfers()[0].Status)

	var outs, ins int
	for _, m := range f.backend.Movements() {
		if m.Ref != ref.Ref {
			continue
		}
		switch m.Type {
		case entity.MovementTypeTransferOut:
			outs++
			assert.Equal(t, -5, m.Quantity)
		case entity.MovementTypeTransferIn:
			ins++
			assert.Equal(t, 5, m.Quantity)
		}
	}
	assert.Equal(t, 1, outs)
	assert.Equal(t, 1, ins)
}

func TestTransfer_DobleRecepcionEsInformativa(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	results, err := f.transfers.SearchOriginStock(ctx, "REM-001-L", testutil.BranchCentral)
	require.NoError(t, err)
	require.Len(t, results, 1)

	d := inventory.NewTransferDraft(testutil.BranchCentral, testutil.BranchNorte)
	require.NoError(t, d.AddLine(results[0], 2))
	ref, err := f.transfers.CreateTransfer(ctx, d)
	require.NoError(t, err)
	_, err = f.transfers.ReceiveTransfer(ctx, ref.Ref, testutil.BranchNorte)
	require.NoError(t, err)

	// Ya conocida como RECEIVED: no se vuelve a enviar.
	out, err := f.transfers.ReceiveTransfer(ctx, ref.Ref, testutil.BranchNorte)
	require.NoError(t, err)
	assert.True(t, out.AlreadyReceived)
	assert.Equal(t, notify.LevelInfo, lastNotice(t, f.notices).Level)
	assert.Equal(t, 1, f.posts("/api/stock/transfers/"+ref.Ref+"/receive"))

	// Otra terminal sin la lista cargada: el 409 del servidor también es informativo.
	other := inventory.NewTransferUseCase(api.NewStockClient(api.NewGateway(api.Config{BaseURL: f.backend.URL}, staticToken(f.backend.Token(t)), nil)), f.notices, nil)
	out, err = other.ReceiveTransfer(ctx, ref.Ref, testutil.BranchNorte)
	require.NoError(t, err)
	assert.True(t, out.AlreadyReceived)
	assert.Equal(t, 12, f.backend.Stock(testutil.BranchCentral, testutil.VariantRemeraL)+f.backend.Stock(testutil.BranchNorte, testutil.VariantRemeraL),
		"el stock total no cambia por recibir dos veces")
}

func TestTransfer_StockInsuficientePorLecturaVieja(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	results, err := f.transfers.SearchOriginStock(ctx, "REM-001-M", testutil.BranchCentral)
	require.NoError(t, err)
	require.Len(t, results, 1)

	d := inventory.NewTransferDraft(testutil.BranchCentral, testutil.BranchNorte)
	require.NoError(t, d.AddLine(results[0], 5))
	f.backend.SetStock(testutil.BranchCentral, testutil.VariantRemeraM, 3)

	_, err = f.transfers.CreateTransfer(ctx, d)

	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 1, f.posts("/api/stock/transfers"), "no se reintenta")
	assert.Equal(t, notify.LevelError, lastNotice(t, f.notices).Level)
	assert.Equal(t, 3, f.backend.Stock(testutil.BranchCentral, testutil.VariantRemeraM))
}

func TestTransfer_DraftFromRequestUsaDisponibilidadRecordada(t *testing.T) {
	f := newFixture(t)
	req := dto.CreateTransferRequest{
		OriginBranchID: testutil.BranchCentral,
		DestBranchID:   testutil.BranchNorte,
		Lines:          []dto.TransferLineInput{{VariantID: testutil.VariantRemeraM, Quantity: 2}},
	}

	_, err := f.transfers.DraftFromRequest(req)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err), "sin búsqueda previa no hay disponibilidad conocida")

	_, err = f.transfers.SearchOriginStock(context.Background(), "remera", testutil.BranchCentral)
	require.NoError(t, err)
	d, err := f.transfers.DraftFromRequest(req)
	require.NoError(t, err)
	assert.Equal(t, 5, d.Lines[0].Available)

	req.Lines[0].Quantity = 9
	_, err = f.transfers.DraftFromRequest(req)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestTransfer_DraftFromRequestConservaMensajePorCampo(t *testing.T) {
	f := newFixture(t)
	_, err := f.transfers.SearchOriginStock(context.Background(), "remera", testutil.BranchCentral)
	require.NoError(t, err)
	req := dto.CreateTransferRequest{
		OriginBranchID: testutil.BranchCentral,
		DestBranchID:   testutil.BranchNorte,
		Lines: []dto.TransferLineInput{
			{VariantID: testutil.VariantRemeraM, Quantity: 1},
			{VariantID: testutil.VariantRemeraM, Quantity: 0},
		},
	}

	_, err = f.transfers.DraftFromRequest(req)

	var de *domain.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, domain.KindValidation, de.Kind)
	assert.Equal(t, map[string]string{"lines[1].quantity": "debe ser mayor a 0"}, de.Fields,
		"el mensaje específico de la línea no se reemplaza por el genérico")

	req.Lines = []dto.TransferLineInput{{VariantID: testutil.VariantRemeraM, Quantity: 9}}
	_, err = f.transfers.DraftFromRequest(req)
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "solo hay 5 disponibles en origen", de.Fields["lines[0].quantity"])
}

func TestTransfer_ResetOlvidaListaYDisponibilidad(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.transfers.ListTransfers(ctx, 0)
	require.NoError(t, err)
	_, err = f.transfers.SearchOriginStock(ctx, "remera", testutil.BranchCentral)
	require.NoError(t, err)

	f.transfers.Reset()

	assert.Empty(t, f.transfers.Transfers())
	_, err = f.transfers.DraftFromRequest(dto.CreateTransferRequest{
		OriginBranchID: testutil.BranchCentral,
		DestBranchID:   testutil.BranchNorte,
		Lines:          []dto.TransferLineInput{{VariantID: testutil.VariantRemeraM, Quantity: 1}},
	})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err), "la disponibilidad recordada se descarta")
}

// ──────────────────────────────────────────────────────────────────────────────
// Sesiones de inventario
// ──────────────────────────────────────────────────────────────────────────────

func TestSession_SinSucursalSeBloquea(t *testing.T) {
	f := newFixture(t)
	_, err := f.sessions.CreateSession(context.Background(), 0, "")
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	assert.Zero(t, f.posts("/api/stock/inventory/sessions"))
}

func TestSession_EscenarioSinConteos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	before := len(f.backend.Movements())

	s, err := f.sessions.CreateSession(ctx, testutil.BranchCentral, "cierre de mes")
	require.NoError(t, err)
	assert.Equal(t, entity.SessionStatusDraft, s.Status)

	view, err := f.sessions.SessionDetails(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, view.Session.Items, 2, "foto del stock de la sucursal")
	assert.Equal(t, 5, view.Session.Items[0].Expected)
	assert.Nil(t, view.Session.Items[0].Difference(), "sin contar, la diferencia es nula")
	assert.True(t, view.CanCommit)
	assert.Equal(t, 2, view.Summary.Uncounted)

	_, err = f.sessions.CommitSession(ctx, s.ID, false)
	assert.ErrorIs(t, err, domain.ErrConfirmationRequired)

	view, err = f.sessions.CommitSession(ctx, s.ID, true)
	require.NoError(t, err)
	assert.Equal(t, entity.SessionStatusCompleted, view.Session.Status)
	assert.False(t, view.CanCommit)
	assert.Len(t, f.backend.Movements(), before, "sin conteos no hay ajustes")
}

func TestSession_ConteosGeneranAjustes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s, err := f.sessions.CreateSession(ctx, testutil.BranchCentral, "")
	require.NoError(t, err)
	f.backend.Count(s.ID, testutil.VariantRemeraM, 4)
	f.backend.Count(s.ID, testutil.VariantRemeraL, 12)

	view, err := f.sessions.SessionDetails(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, inventory.SessionSummary{Items: 2, Counted: 2, NegativeDiff: -1, Adjustments: 1}, view.Summary)

	_, err = f.sessions.CommitSession(ctx, s.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 4, f.backend.Stock(testutil.BranchCentral, testutil.VariantRemeraM))

	var adjustments int
	for _, m := range f.backend.Movements() {
		if m.Type == entity.MovementTypeAdjustment && m.Ref != "" {
			adjustments++
			assert.Equal(t, -1, m.Quantity)
		}
	}
	assert.Equal(t, 1, adjustments)
}

func TestSession_CompletadaNoSeConfirmaDeNuevo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s, err := f.sessions.CreateSession(ctx, testutil.BranchNorte, "")
	require.NoError(t, err)
	_, err = f.sessions.CommitSession(ctx, s.ID, true)
	require.NoError(t, err)

	view, err := f.sessions.CommitSession(ctx, s.ID, true)

	assert.ErrorIs(t, err, domain.ErrSessionCompleted)
	require.NotNil(t, view)
	assert.False(t, view.CanCommit, "el botón queda deshabilitado")
	assert.Equal(t, 1, f.posts("/api/stock/inventory/sessions/"+strconv.FormatInt(s.ID, 10)+"/commit"), "no se envía al servidor")
}

// ──────────────────────────────────────────────────────────────────────────────
// Libro de movimientos
// ──────────────────────────────────────────────────────────────────────────────

func TestMovements_FiltroSaleSoloDisminuye(t *testing.T) {
	f := newFixture(t)
	page, err := f.movements.ListMovements(context.Background(), dto.MovementFilter{Type: entity.MovementTypeSale})
	require.NoError(t, err)

	require.Equal(t, 2, page.Total)
	for _, m := range page.Items {
		assert.LessOrEqual(t, m.Quantity, 0)
		assert.NotEqual(t, entity.DirectionIncrease, m.Direction())
	}
}

func TestMovements_PaginasSalenDelTotal(t *testing.T) {
	f := newFixture(t)
	page, err := f.movements.ListMovements(context.Background(), dto.MovementFilter{Limit: 4})
	require.NoError(t, err)

	assert.Len(t, page.Items, 4)
	assert.Equal(t, 6, page.Total)
	assert.Equal(t, 2, page.Pages(), "ceil(6/4)")

	page, err = f.movements.ListMovements(context.Background(), dto.MovementFilter{Limit: 4, Offset: 4})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 2, page.Page)
}

func TestMovements_ValidacionDelFiltro(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.movements.ListMovements(ctx, dto.MovementFilter{From: "2024-05-10", To: "2024-05-01"})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err), "desde > hasta")

	_, err = f.movements.ListMovements(ctx, dto.MovementFilter{Type: "ROBO"})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	_, err = f.movements.ListMovements(ctx, dto.MovementFilter{Limit: 500})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	assert.Empty(t, f.backend.Requests("/api/stock/movements"), "el filtro inválido no llega al servidor")
}

func TestOverview(t *testing.T) {
	f := newFixture(t)
	ov, err := f.movements.Overview(context.Background(), testutil.BranchNorte)
	require.NoError(t, err)
	assert.Equal(t, 2, ov.LowStock)
	assert.Equal(t, 30, ov.NoMovementDays)
}
