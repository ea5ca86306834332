//go:build integration

package e2e

// End-to-end tests against real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./tests/e2e/... -v
//
// Covered flows:
//   - login → abrir caja → crear orden → cobrar → comprobante/ledger
//   - double settlement rejected after commit
//   - settlement rollback: a failed charge leaves no partial writes
//   - oversell accepted and flagged, never blocking the sale

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/config"
	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/infra"
	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/model"
	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/router"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// ── Test Suite Setup ─────────────────────────────────────────────────────────

type testEnv struct {
	server *httptest.Server
	token  string // admin JWT
	db     *gorm.DB
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("pos_test"),
		tcPostgres.WithUsername("pos"),
		tcPostgres.WithPassword("pos"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:               8000,
		Env:                "test",
		JWTSecret:          "test-secret-key",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
		WorkerPoolSize:     1,
		PDFStoragePath:     t.TempDir(),
		NumeroCajas:        3,
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	// Seed admin user
	hash, err := bcrypt.GenerateFromPassword([]byte("admin-e2e"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, db.Create(&model.Usuario{
		Username:     "admin",
		Nombre:       "Admin E2E",
		PasswordHash: string(hash),
		Rol:          model.RolAdministrador,
		Activo:       true,
	}).Error)

	mailer := infra.NewMailer(cfg, infra.NewCircuitBreaker(infra.DefaultCBConfig()))
	r := router.New(cfg, db, rdb, mailer)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	loginResp := do(t, srv, "POST", "/v1/auth/login",
		jsonBody(t, map[string]string{"username": "admin", "password": "admin-e2e"}),
		"",
	)
	require.Equal(t, http.StatusOK, loginResp.StatusCode)
	var loginBody struct {
		AccessToken string `json:"access_token"`
	}
	decodeJSON(t, loginResp, &loginBody)
	require.NotEmpty(t, loginBody.AccessToken)

	return &testEnv{server: srv, token: loginBody.AccessToken, db: db}
}

func (env *testEnv) seedProducto(t *testing.T, nombre, categoria string, precio float64, stock int) *model.Producto {
	t.Helper()
	p := &model.Producto{
		Codigo:      nombre,
		Nombre:      nombre,
		Categoria:   categoria,
		PrecioVenta: decimal.NewFromFloat(precio),
		Activo:      true,
	}
	require.NoError(t, env.db.Create(p).Error)
	require.NoError(t, env.db.Create(&model.Stock{
		ProductoID:  p.ID,
		Cantidad:    stock,
		StockMinimo: 5,
		StockMaximo: 100,
	}).Error)
	return p
}

func (env *testEnv) abrirCaja(t *testing.T, numero int, inicial float64) string {
	t.Helper()
	resp := do(t, env.server, "POST", "/v1/caja/abrir",
		jsonBody(t, map[string]any{"numero_caja": numero, "monto_inicial": inicial}),
		env.token,
	)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var body struct {
		SesionCajaID string `json:"sesion_caja_id"`
	}
	decodeJSON(t, resp, &body)
	return body.SesionCajaID
}

func (env *testEnv) crearOrden(t *testing.T, productoID string, cantidad int) string {
	t.Helper()
	resp := do(t, env.server, "POST", "/v1/ordenes",
		jsonBody(t, map[string]any{
			"items": []map[string]any{{"producto_id": productoID, "cantidad": cantidad}},
		}),
		env.token,
	)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var body struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &body)
	return body.ID
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestE2E_CicloCompletoDeCobro(t *testing.T) {
	env := setupTestEnv(t)
	p := env.seedProducto(t, "Cerveza Pilsen", "cervezas", 8, 50)
	sesionID := env.abrirCaja(t, 1, 200)
	ordenID := env.crearOrden(t, p.ID.String(), 3)

	resp := do(t, env.server, "POST", "/v1/facturacion/cobrar",
		jsonBody(t, map[string]any{
			"orden_id":       ordenID,
			"sesion_caja_id": sesionID,
			"metodo_pago":    "efectivo",
			"monto_recibido": 30,
			"propina":        2,
		}),
		env.token,
	)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cobro struct {
		TotalCobrado  decimal.Decimal `json:"total_cobrado"`
		Vuelto        decimal.Decimal `json:"vuelto"`
		ComprobanteID string          `json:"comprobante_id"`
	}
	decodeJSON(t, resp, &cobro)
	assert.Equal(t, "26", cobro.TotalCobrado.String())
	assert.Equal(t, "4", cobro.Vuelto.String())
	require.NotEmpty(t, cobro.ComprobanteID)

	// Stock deducted with a venta ledger row
	var stock model.Stock
	require.NoError(t, env.db.First(&stock, "producto_id = ?", p.ID).Error)
	assert.Equal(t, 47, stock.Cantidad)

	var movs []model.MovimientoInventario
	require.NoError(t, env.db.Find(&movs, "producto_id = ?", p.ID).Error)
	require.Len(t, movs, 1)
	assert.Equal(t, model.MovVenta, movs[0].Tipo)
	assert.False(t, movs[0].Sobrevendido)

	// Session shows the derived balance: 200 + 26
	sesResp := do(t, env.server, "GET", "/v1/caja/sesiones/"+sesionID, nil, env.token)
	require.Equal(t, http.StatusOK, sesResp.StatusCode)
	var ses struct {
		Balance decimal.Decimal `json:"balance"`
	}
	decodeJSON(t, sesResp, &ses)
	assert.Equal(t, "226", ses.Balance.String())

	// Comprobante exists for the order
	compResp := do(t, env.server, "GET", "/v1/facturacion/orden/"+ordenID, nil, env.token)
	require.Equal(t, http.StatusOK, compResp.StatusCode)
}

func TestE2E_DobleCobroRechazado(t *testing.T) {
	env := setupTestEnv(t)
	p := env.seedProducto(t, "Vodka tonic", "tragos", 12, 20)
	sesionID := env.abrirCaja(t, 1, 100)
	ordenID := env.crearOrden(t, p.ID.String(), 2)

	body := map[string]any{
		"orden_id":       ordenID,
		"sesion_caja_id": sesionID,
		"metodo_pago":    "efectivo",
		"monto_recibido": 10,
	}
	first := do(t, env.server, "POST", "/v1/facturacion/cobrar", jsonBody(t, body), env.token)
	require.Equal(t, http.StatusOK, first.StatusCode)
	first.Body.Close()

	second := do(t, env.server, "POST", "/v1/facturacion/cobrar", jsonBody(t, body), env.token)
	assert.Equal(t, http.StatusConflict, second.StatusCode)
	second.Body.Close()

	// Only one deduction happened
	var stock model.Stock
	require.NoError(t, env.db.First(&stock, "producto_id = ?", p.ID).Error)
	assert.Equal(t, 18, stock.Cantidad)
}

func TestE2E_CobroFallidoNoDejaEfectosParciales(t *testing.T) {
	env := setupTestEnv(t)
	// Product without a stock row: the deduction fails mid-transaction,
	// after the order was already marked paid inside the tx.
	p := &model.Producto{
		Codigo:      "SIN-STOCK",
		Nombre:      "Producto sin stock row",
		Categoria:   "cervezas",
		PrecioVenta: decimal.NewFromFloat(8),
		Activo:      true,
	}
	require.NoError(t, env.db.Create(p).Error)

	sesionID := env.abrirCaja(t, 1, 100)
	ordenID := env.crearOrden(t, p.ID.String(), 1)

	resp := do(t, env.server, "POST", "/v1/facturacion/cobrar",
		jsonBody(t, map[string]any{
			"orden_id":       ordenID,
			"sesion_caja_id": sesionID,
			"metodo_pago":    "efectivo",
			"monto_recibido": 10,
		}),
		env.token,
	)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Rollback left the order unpaid and the ledgers untouched.
	var orden model.Orden
	require.NoError(t, env.db.First(&orden, "id = ?", ordenID).Error)
	assert.False(t, orden.Pagada)

	var movCount int64
	require.NoError(t, env.db.Model(&model.MovimientoCaja{}).Count(&movCount).Error)
	assert.Zero(t, movCount)

	var compCount int64
	require.NoError(t, env.db.Model(&model.Comprobante{}).Count(&compCount).Error)
	assert.Zero(t, compCount)
}

func TestE2E_SobreventaAceptadaYMarcada(t *testing.T) {
	env := setupTestEnv(t)
	p := env.seedProducto(t, "Botella whisky", "botellas", 180, 1)
	sesionID := env.abrirCaja(t, 1, 100)
	ordenID := env.crearOrden(t, p.ID.String(), 3)

	resp := do(t, env.server, "POST", "/v1/facturacion/cobrar",
		jsonBody(t, map[string]any{
			"orden_id":       ordenID,
			"sesion_caja_id": sesionID,
			"metodo_pago":    "tarjeta",
			"monto_recibido": 540,
		}),
		env.token,
	)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	var stock model.Stock
	require.NoError(t, env.db.First(&stock, "producto_id = ?", p.ID).Error)
	assert.Equal(t, -2, stock.Cantidad)

	var mov model.MovimientoInventario
	require.NoError(t, env.db.First(&mov, "producto_id = ?", p.ID).Error)
	assert.True(t, mov.Sobrevendido)
}

func TestE2E_SesionUnicaPorCaja(t *testing.T) {
	env := setupTestEnv(t)
	env.abrirCaja(t, 2, 100)

	resp := do(t, env.server, "POST", "/v1/caja/abrir",
		jsonBody(t, map[string]any{"numero_caja": 2, "monto_inicial": 50}),
		env.token,
	)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}
