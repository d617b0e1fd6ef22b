package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulule/limiter/v3"
	limitermemory "github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/application/requests"
	"github.com/jhoicas/almacen-api/internal/infrastructure/memory"
	"github.com/jhoicas/almacen-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/almacen-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type testServer struct {
	t   *testing.T
	app *fiber.App

	storekeeper string
	head        string
	employee    string
	admin       string
}

func newTestServer(t *testing.T, lim *limiter.Limiter) *testServer {
	t.Helper()
	store := memory.NewStore()
	store.SeedDemo()
	store.AddEmployee("u-empleado", 2)

	runner := memory.NewTxRunner(store)
	products := memory.NewProductRepository(store)
	warehouses := memory.NewWarehouseRepository(store)
	departments := memory.NewDepartmentRepository(store)
	reqRepo := memory.NewRequestRepository(store)
	movRepo := memory.NewMovementRepository(store)

	ledger := inventory.NewLedgerUseCase(runner, products, warehouses, zerolog.Nop())
	query := inventory.NewQueryUseCase(memory.NewStockRepository(store), movRepo, products, warehouses)
	reqUC := requests.NewUseCase(runner, reqRepo, departments, ledger, nil, zerolog.Nop())
	slipUC := requests.NewSlipUseCase(reqRepo, movRepo, departments, products, warehouses, pdf.NewIssueSlipGenerator("Almacén"))

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Ledger:    ledger,
		Query:     query,
		Requests:  reqUC,
		Slip:      slipUC,
		JWTSecret: testJWTSecret,
		Limiter:   lim,
		Log:       zerolog.Nop(),
	})

	return &testServer{
		t:           t,
		app:         app,
		storekeeper: bearer(t, "u-bodega", "Storekeeper"),
		head:        bearer(t, "u-jefe", "DepartmentHead"),
		employee:    bearer(t, "u-empleado"),
		admin:       bearer(t, "u-admin", "Admin"),
	}
}

// do envía la petición y decodifica el JSON de respuesta en out (si no es nil).
func (s *testServer) do(method, path, auth string, body any, out any) *http.Response {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(s.t, err)
	if out != nil {
		defer resp.Body.Close()
		require.NoError(s.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func (s *testServer) errorCode(method, path, auth string, body any) (int, string) {
	s.t.Helper()
	var e dto.ErrorResponse
	resp := s.do(method, path, auth, body, &e)
	return resp.StatusCode, e.Code
}

type list[T any] struct {
	Total int `json:"total"`
	Items []T `json:"items"`
}

func qty(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ──────────────────────────────────────────────────────────────────────────────
// Libro de existencias
// ──────────────────────────────────────────────────────────────────────────────

func TestInventario_EntradaBajaYSaldo(t *testing.T) {
	s := newTestServer(t, nil)

	var mov dto.MovementResponse
	resp := s.do(http.MethodPost, "/api/inventory/receipt", s.storekeeper,
		dto.StockOperationRequest{WarehouseID: 1, ProductID: 1, Quantity: qty("25")}, &mov)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Receipt", mov.Type)

	resp = s.do(http.MethodPost, "/api/inventory/writeoff", s.storekeeper,
		dto.StockOperationRequest{WarehouseID: 1, ProductID: 1, Quantity: qty("5")}, &mov)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.True(t, qty("-5").Equal(mov.Quantity))

	var bal dto.BalanceResponse
	resp = s.do(http.MethodGet, "/api/inventory/balances/1/1", s.employee, nil, &bal)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, qty("20").Equal(bal.Quantity))
	assert.Equal(t, "Papel A4", bal.ProductName)

	var balances list[dto.BalanceResponse]
	s.do(http.MethodGet, "/api/inventory/balances?search=papel", s.employee, nil, &balances)
	assert.Equal(t, 1, balances.Total)

	var movs list[dto.MovementResponse]
	resp = s.do(http.MethodGet, "/api/movements?product_id=1&type=WriteOff", s.employee, nil, &movs)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, movs.Total)
}

func TestInventario_Errores(t *testing.T) {
	s := newTestServer(t, nil)

	status, code := s.errorCode(http.MethodPost, "/api/inventory/writeoff", s.storekeeper,
		dto.StockOperationRequest{WarehouseID: 1, ProductID: 1, Quantity: qty("1")})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", code)

	status, code = s.errorCode(http.MethodPost, "/api/inventory/receipt", s.storekeeper,
		dto.StockOperationRequest{WarehouseID: 1, ProductID: 1, Quantity: qty("0")})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_QUANTITY", code)

	status, code = s.errorCode(http.MethodPost, "/api/inventory/receipt", s.storekeeper,
		dto.StockOperationRequest{WarehouseID: 99, ProductID: 1, Quantity: qty("1")})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", code)

	status, code = s.errorCode(http.MethodPost, "/api/inventory/receipt", s.employee,
		dto.StockOperationRequest{WarehouseID: 1, ProductID: 1, Quantity: qty("1")})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", code)

	status, code = s.errorCode(http.MethodPost, "/api/inventory/adjustment", s.storekeeper,
		dto.StockOperationRequest{WarehouseID: 1, ProductID: 1, Quantity: qty("3")})
	assert.Equal(t, http.StatusForbidden, status, "ajuste solo Admin")
	assert.Equal(t, "FORBIDDEN", code)

	status, code = s.errorCode(http.MethodGet, "/api/movements?type=Robo", s.employee, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", code)

	status, _ = s.errorCode(http.MethodGet, "/api/movements?from=ayer", s.employee, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestInventario_Traslado(t *testing.T) {
	s := newTestServer(t, nil)
	s.do(http.MethodPost, "/api/inventory/receipt", s.storekeeper,
		dto.StockOperationRequest{WarehouseID: 1, ProductID: 2, Quantity: qty("10")}, nil)

	var out dto.TransferResponse
	resp := s.do(http.MethodPost, "/api/inventory/transfer", s.storekeeper,
		dto.TransferRequest{FromWarehouseID: 1, ToWarehouseID: 2, ProductID: 2, Quantity: qty("4")}, &out)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "TransferOut", out.Out.Type)
	assert.Equal(t, "TransferIn", out.In.Type)

	var bal dto.BalanceResponse
	s.do(http.MethodGet, "/api/inventory/balances/2/2", s.employee, nil, &bal)
	assert.True(t, qty("4").Equal(bal.Quantity))
}

// ──────────────────────────────────────────────────────────────────────────────
// Solicitudes
// ──────────────────────────────────────────────────────────────────────────────

func TestSolicitud_FlujoCompleto(t *testing.T) {
	s := newTestServer(t, nil)
	s.do(http.MethodPost, "/api/inventory/receipt", s.storekeeper,
		dto.StockOperationRequest{WarehouseID: 1, ProductID: 1, Quantity: qty("30")}, nil)

	var created dto.IssueRequestResponse
	resp := s.do(http.MethodPost, "/api/requests", s.employee, dto.CreateIssueRequest{
		Items: []dto.CreateRequestItem{{ProductID: 1, Quantity: qty("10")}},
	}, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Submitted", created.Status)
	assert.Equal(t, int64(2), created.DepartmentID, "departamento del empleado")

	status, code := s.errorCode(http.MethodPost, "/api/requests/1/approve", s.storekeeper, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", code)

	var approved dto.IssueRequestResponse
	resp = s.do(http.MethodPost, "/api/requests/1/approve", s.head, dto.RequestDecision{}, &approved)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Approved", approved.Status)

	status, code = s.errorCode(http.MethodPost, "/api/requests/1/issue-item", s.storekeeper,
		dto.IssueItemRequest{ProductID: 1, WarehouseID: 1, Quantity: qty("1")})
	assert.Equal(t, http.StatusConflict, status, "sin iniciar entrega")
	assert.Equal(t, "INVALID_STATE_TRANSITION", code)

	resp = s.do(http.MethodPost, "/api/requests/1/start-issue", s.storekeeper, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var issued dto.IssueItemResponse
	resp = s.do(http.MethodPost, "/api/requests/1/issue-item", s.storekeeper,
		dto.IssueItemRequest{ProductID: 1, WarehouseID: 1, Quantity: qty("10")}, &issued)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Issued", issued.Request.Status)
	assert.Equal(t, "REQ-1", *issued.Movement.DocumentNumber)

	var items []dto.RequestItemResponse
	s.do(http.MethodGet, "/api/requests/1/items", s.employee, nil, &items)
	require.Len(t, items, 1)
	assert.True(t, items[0].RemainingQty.IsZero())

	var reqs list[dto.IssueRequestResponse]
	s.do(http.MethodGet, "/api/requests?status=Issued", s.employee, nil, &reqs)
	assert.Equal(t, 1, reqs.Total)

	status, code = s.errorCode(http.MethodPost, "/api/requests/1/cancel", s.employee, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INVALID_STATE_TRANSITION", code)

	resp = s.do(http.MethodGet, "/api/requests/1/slip", s.employee, nil, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "comprobante-REQ-1.pdf")
	raw, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "%PDF", string(raw[:4]))
}

func TestSolicitud_ErroresDeValidacion(t *testing.T) {
	s := newTestServer(t, nil)

	status, code := s.errorCode(http.MethodPost, "/api/requests", s.employee, dto.CreateIssueRequest{})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "EMPTY_ITEMS", code)

	status, code = s.errorCode(http.MethodPost, "/api/requests", s.employee, dto.CreateIssueRequest{
		Items: []dto.CreateRequestItem{{ProductID: 1, Quantity: qty("1")}, {ProductID: 1, Quantity: qty("2")}},
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "DUPLICATE_ITEM", code)

	status, code = s.errorCode(http.MethodGet, "/api/requests/77", s.employee, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", code)

	status, code = s.errorCode(http.MethodGet, "/api/requests/abc", s.employee, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", code)

	status, code = s.errorCode(http.MethodGet, "/api/requests?status=Perdida", s.employee, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", code)
}

func TestSolicitud_SobreEntrega(t *testing.T) {
	s := newTestServer(t, nil)
	s.do(http.MethodPost, "/api/inventory/receipt", s.admin,
		dto.StockOperationRequest{WarehouseID: 1, ProductID: 3, Quantity: qty("100")}, nil)
	s.do(http.MethodPost, "/api/requests", s.employee, dto.CreateIssueRequest{
		Items: []dto.CreateRequestItem{{ProductID: 3, Quantity: qty("5")}},
	}, nil)
	s.do(http.MethodPost, "/api/requests/1/approve", s.admin, nil, nil)
	s.do(http.MethodPost, "/api/requests/1/start-issue", s.admin, nil, nil)

	status, code := s.errorCode(http.MethodPost, "/api/requests/1/issue-item", s.admin,
		dto.IssueItemRequest{ProductID: 3, WarehouseID: 1, Quantity: qty("6")})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "OVER_ISSUE", code)

	status, code = s.errorCode(http.MethodPost, "/api/requests/1/issue-item", s.admin,
		dto.IssueItemRequest{ProductID: 1, WarehouseID: 1, Quantity: qty("1")})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "ITEM_NOT_IN_REQUEST", code)
}

// ──────────────────────────────────────────────────────────────────────────────
// Rutas públicas y rate limit
// ──────────────────────────────────────────────────────────────────────────────

func TestPing_Publico(t *testing.T) {
	s := newTestServer(t, nil)
	var body map[string]any
	resp := s.do(http.MethodGet, "/api/warehouse/ping", "", nil, &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])

	status, code := s.errorCode(http.MethodGet, "/api/requests", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "MISSING_TOKEN", code)
}

func TestRateLimit_PorUsuario(t *testing.T) {
	lim, err := apphttp.NewRateLimiter("2-M", limitermemory.NewStore())
	require.NoError(t, err)
	s := newTestServer(t, lim)

	for i := 0; i < 2; i++ {
		resp := s.do(http.MethodGet, "/api/requests", s.employee, nil, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, resp.Header.Get("X-RateLimit-Remaining"))
	}

	status, code := s.errorCode(http.MethodGet, "/api/requests", s.employee, nil)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, "RATE_LIMITED", code)

	resp := s.do(http.MethodGet, "/api/requests", s.head, nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "otro usuario tiene su propio cupo")
}

func TestNewRateLimiter_FormatoInvalido(t *testing.T) {
	_, err := apphttp.NewRateLimiter("muchos", limitermemory.NewStore())
	assert.Error(t, err)
}
