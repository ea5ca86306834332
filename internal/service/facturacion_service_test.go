package service_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/apierror"
	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/dto"
	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/model"
	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/service"
	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/worker"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type facturacionFixture struct {
	svc         service.FacturacionService
	ordenSvc    service.OrdenService
	ordenes     *stubOrdenRepo
	mesas       *stubMesaRepo
	productos   *stubProductoRepo
	caja        *stubCajaRepo
	movimientos *stubMovimientoRepo
	comps       *stubComprobanteRepo
}

func buildFacturacion() *facturacionFixture {
	return buildFacturacionCon(nil)
}

func buildFacturacionCon(dispatcher *worker.Dispatcher) *facturacionFixture {
	productos := newStubProductoRepo()
	ordenes := newStubOrdenRepo(productos)
	mesas := newStubMesaRepo()
	caja := newStubCajaRepo()
	movimientos := &stubMovimientoRepo{}
	comps := newStubComprobanteRepo()

	return &facturacionFixture{
		svc:         service.NewFacturacionService(ordenes, caja, productos, movimientos, comps, dispatcher),
		ordenSvc:    service.NewOrdenService(ordenes, mesas, productos),
		ordenes:     ordenes,
		mesas:       mesas,
		productos:   productos,
		caja:        caja,
		movimientos: movimientos,
		comps:       comps,
	}
}

func cajero(numeroCaja int) service.Actor {
	return service.Actor{ID: uuid.New(), Nombre: "Cajero Test", Rol: model.RolCajero, CajaAsignada: &numeroCaja}
}

func (f *facturacionFixture) crearOrden(t *testing.T, items ...dto.ItemOrdenRequest) uuid.UUID {
	t.Helper()
	resp, err := f.ordenSvc.Crear(context.Background(), testActor(), dto.CrearOrdenRequest{Items: items})
	require.NoError(t, err)
	return uuid.MustParse(resp.ID)
}

func cobro(ordenID, sesionID uuid.UUID, recibido float64) dto.CobrarOrdenRequest {
	return dto.CobrarOrdenRequest{
		OrdenID:       ordenID.String(),
		SesionCajaID:  sesionID.String(),
		MetodoPago:    "efectivo",
		MontoRecibido: decimal.NewFromFloat(recibido),
	}
}

// ── Cobrar ────────────────────────────────────────────────────────────────────

func TestCobrar_EfectoCompleto(t *testing.T) {
	f := buildFacturacion()
	p := seedProducto(f.productos, "Cerveza Pilsen", "cervezas", 8, 50)
	sesion := seedSesion(f.caja, 1, 100)
	ordenID := f.crearOrden(t, dto.ItemOrdenRequest{ProductoID: p.ID.String(), Cantidad: 3})

	req := cobro(ordenID, sesion.ID, 30)
	req.Propina = decimal.NewFromInt(2)
	resp, err := f.svc.Cobrar(context.Background(), cajero(1), req)
	require.NoError(t, err)

	// subtotal 24 + propina 2 = 26; vuelto 30 − 26 = 4
	assert.Equal(t, "26", resp.TotalCobrado.String())
	assert.Equal(t, "4", resp.Vuelto.String())

	// Orden: pagada y de vuelta en pendiente
	orden := f.ordenes.ordenes[ordenID]
	assert.True(t, orden.Pagada)
	assert.Equal(t, model.OrdenPendiente, orden.Estado)
	require.NotNil(t, orden.MetodoPago)
	assert.Equal(t, "efectivo", *orden.MetodoPago)

	// Stock descontado con su fila de ledger
	assert.Equal(t, 47, f.productos.stocks[p.ID].Cantidad)
	ventas := f.movimientos.porTipo(model.MovVenta)
	require.Len(t, ventas, 1)
	assert.Equal(t, 3, ventas[0].Cantidad)
	assert.Equal(t, 50, ventas[0].StockAnterior)
	assert.Equal(t, 47, ventas[0].StockNuevo)
	assert.False(t, ventas[0].Sobrevendido)

	// Movimiento de caja: un ingreso por el total, con propina
	require.Len(t, f.caja.movimientos, 1)
	assert.Equal(t, model.CajaIngreso, f.caja.movimientos[0].Tipo)
	assert.Equal(t, "26", f.caja.movimientos[0].Monto.String())
	assert.Equal(t, "2", f.caja.movimientos[0].Propina.String())

	// Comprobante pendiente creado
	comp, err := f.svc.ObtenerComprobante(context.Background(), ordenID)
	require.NoError(t, err)
	assert.Equal(t, "pendiente", comp.Estado)
	assert.Equal(t, "26", comp.MontoTotal.String())
}

func TestCobrar_DobleCobroRechazado(t *testing.T) {
	f := buildFacturacion()
	p := seedProducto(f.productos, "Cerveza Pilsen", "cervezas", 8, 50)
	sesion := seedSesion(f.caja, 1, 100)
	ordenID := f.crearOrden(t, dto.ItemOrdenRequest{ProductoID: p.ID.String(), Cantidad: 1})
	actor := cajero(1)

	_, err := f.svc.Cobrar(context.Background(), actor, cobro(ordenID, sesion.ID, 10))
	require.NoError(t, err)

	_, err = f.svc.Cobrar(context.Background(), actor, cobro(ordenID, sesion.ID, 10))
	require.Error(t, err)
	assert.Equal(t, apierror.KindConflict, apierror.KindOf(err))

	// Sin efectos duplicados: un solo descuento de stock, un solo ingreso.
	assert.Equal(t, 49, f.productos.stocks[p.ID].Cantidad)
	assert.Len(t, f.caja.movimientos, 1)
	assert.Len(t, f.movimientos.porTipo(model.MovVenta), 1)
}

func TestCobrar_MontoInsuficiente(t *testing.T) {
	f := buildFacturacion()
	p := seedProducto(f.productos, "Botella whisky", "botellas", 180, 10)
	sesion := seedSesion(f.caja, 1, 100)
	ordenID := f.crearOrden(t, dto.ItemOrdenRequest{ProductoID: p.ID.String(), Cantidad: 1})

	_, err := f.svc.Cobrar(context.Background(), cajero(1), cobro(ordenID, sesion.ID, 100))
	require.Error(t, err)
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))

	// Nada cambió
	orden := f.ordenes.ordenes[ordenID]
	assert.False(t, orden.Pagada)
	assert.Equal(t, 10, f.productos.stocks[p.ID].Cantidad)
	assert.Empty(t, f.caja.movimientos)
}

func TestCobrar_OrdenCancelada(t *testing.T) {
	f := buildFacturacion()
	p := seedProducto(f.productos, "Cerveza Pilsen", "cervezas", 8, 50)
	sesion := seedSesion(f.caja, 1, 100)
	ordenID := f.crearOrden(t, dto.ItemOrdenRequest{ProductoID: p.ID.String(), Cantidad: 1})
	_, err := f.ordenSvc.CambiarEstado(context.Background(), testActor(), ordenID, model.OrdenCancelada)
	require.NoError(t, err)

	_, err = f.svc.Cobrar(context.Background(), cajero(1), cobro(ordenID, sesion.ID, 10))
	require.Error(t, err)
	assert.Equal(t, apierror.KindPrecondition, apierror.KindOf(err))
}

func TestCobrar_SesionCerrada(t *testing.T) {
	f := buildFacturacion()
	p := seedProducto(f.productos, "Cerveza Pilsen", "cervezas", 8, 50)
	sesion := seedSesion(f.caja, 1, 100)
	sesion.Estado = model.SesionCerrada
	ordenID := f.crearOrden(t, dto.ItemOrdenRequest{ProductoID: p.ID.String(), Cantidad: 1})

	_, err := f.svc.Cobrar(context.Background(), cajero(1), cobro(ordenID, sesion.ID, 10))
	require.Error(t, err)
	assert.Equal(t, apierror.KindPrecondition, apierror.KindOf(err))
}

func TestCobrar_CajaAjena(t *testing.T) {
	f := buildFacturacion()
	p := seedProducto(f.productos, "Cerveza Pilsen", "cervezas", 8, 50)
	sesion := seedSesion(f.caja, 2, 100)
	ordenID := f.crearOrden(t, dto.ItemOrdenRequest{ProductoID: p.ID.String(), Cantidad: 1})

	// Cajero asignado a la caja 1 intenta cobrar contra la sesión de la caja 2.
	_, err := f.svc.Cobrar(context.Background(), cajero(1), cobro(ordenID, sesion.ID, 10))
	require.Error(t, err)
	assert.Equal(t, apierror.KindAuthorization, apierror.KindOf(err))

	// El administrador no tiene esa restricción.
	admin := service.Actor{ID: uuid.New(), Nombre: "Admin", Rol: model.RolAdministrador}
	_, err = f.svc.Cobrar(context.Background(), admin, cobro(ordenID, sesion.ID, 10))
	require.NoError(t, err)
}

func TestCobrar_SobreventaNoBloquea(t *testing.T) {
	f := buildFacturacion()
	p := seedProducto(f.productos, "Cerveza Pilsen", "cervezas", 8, 2)
	sesion := seedSesion(f.caja, 1, 100)
	ordenID := f.crearOrden(t, dto.ItemOrdenRequest{ProductoID: p.ID.String(), Cantidad: 5})

	resp, err := f.svc.Cobrar(context.Background(), cajero(1), cobro(ordenID, sesion.ID, 50))
	require.NoError(t, err)
	assert.Equal(t, "40", resp.TotalCobrado.String())

	// Stock queda negativo y el movimiento marcado sobrevendido.
	assert.Equal(t, -3, f.productos.stocks[p.ID].Cantidad)
	ventas := f.movimientos.porTipo(model.MovVenta)
	require.Len(t, ventas, 1)
	assert.True(t, ventas[0].Sobrevendido)
	assert.Equal(t, -3, ventas[0].StockNuevo)
}

func TestCobrar_SobreventaEmiteAdvertencia(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })

	f := buildFacturacion()
	p := seedProducto(f.productos, "Botella whisky", "botellas", 180, 1)
	sesion := seedSesion(f.caja, 1, 100)
	ordenID := f.crearOrden(t, dto.ItemOrdenRequest{ProductoID: p.ID.String(), Cantidad: 3})

	_, err := f.svc.Cobrar(context.Background(), cajero(1), cobro(ordenID, sesion.ID, 540))
	require.NoError(t, err)

	// La sobreventa queda en el log además del flag en el ledger.
	assert.Contains(t, buf.String(), "sobreventa")
	assert.Contains(t, buf.String(), p.ID.String())
}

func TestCobrar_EncoladoFallidoMarcaReintento(t *testing.T) {
	// Redis caído al encolar el comprobante: la venta ya está firme, así que
	// el comprobante debe quedar marcado para que el cron lo reintente.
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })
	f := buildFacturacionCon(worker.NewDispatcher(rdb))

	p := seedProducto(f.productos, "Cerveza Pilsen", "cervezas", 8, 50)
	sesion := seedSesion(f.caja, 1, 100)
	ordenID := f.crearOrden(t, dto.ItemOrdenRequest{ProductoID: p.ID.String(), Cantidad: 1})

	resp, err := f.svc.Cobrar(context.Background(), cajero(1), cobro(ordenID, sesion.ID, 10))
	require.NoError(t, err)

	// La venta no se pierde: orden pagada, stock descontado, ingreso en caja.
	assert.True(t, f.ordenes.ordenes[ordenID].Pagada)
	assert.Equal(t, 49, f.productos.stocks[p.ID].Cantidad)
	require.Len(t, f.caja.movimientos, 1)

	comp := f.comps.comprobantes[resp.ComprobanteID]
	require.NotNil(t, comp)
	assert.Equal(t, "error", comp.Estado)
	require.NotNil(t, comp.NextRetryAt)
	require.NotNil(t, comp.LastError)

	// El cron de reintentos lo ve en su próximo barrido.
	pendientes, err := f.comps.FindPendingRetries(context.Background(), time.Now().Add(time.Second), 10)
	require.NoError(t, err)
	require.Len(t, pendientes, 1)
	assert.Equal(t, comp.ID, pendientes[0].ID)
}

func TestCobrar_ComboExpandeComponentes(t *testing.T) {
	f := buildFacturacion()
	botella := seedProducto(f.productos, "Botella whisky", "botellas", 180, 10)
	cola := seedProducto(f.productos, "Cola 1L", "mezcladores", 6, 30)
	combo := seedCombo(f.productos, "Combo botella", 220, map[*model.Producto]int{
		botella: 1,
		cola:    4,
	})
	sesion := seedSesion(f.caja, 1, 100)
	ordenID := f.crearOrden(t, dto.ItemOrdenRequest{ProductoID: combo.ID.String(), Cantidad: 2})

	_, err := f.svc.Cobrar(context.Background(), cajero(1), cobro(ordenID, sesion.ID, 440))
	require.NoError(t, err)

	// Cada componente se descuenta multiplicado por la cantidad del combo.
	assert.Equal(t, 8, f.productos.stocks[botella.ID].Cantidad) // 10 − 1×2
	assert.Equal(t, 22, f.productos.stocks[cola.ID].Cantidad)   // 30 − 4×2

	// Una venta por componente + un venta_combo informativo.
	assert.Len(t, f.movimientos.porTipo(model.MovVenta), 2)
	combos := f.movimientos.porTipo(model.MovVentaCombo)
	require.Len(t, combos, 1)
	assert.Equal(t, combo.ID, combos[0].ProductoID)
	assert.Equal(t, 2, combos[0].Cantidad)
	// El movimiento del combo es informativo: sin snapshot de stock.
	assert.Zero(t, combos[0].StockAnterior)
	assert.Zero(t, combos[0].StockNuevo)
}

func TestCobrar_ComplementoNoDescuentaNiCobra(t *testing.T) {
	f := buildFacturacion()
	botella := seedProducto(f.productos, "Botella whisky", "botellas", 180, 10)
	cola := seedProducto(f.productos, "Cola 1L", "mezcladores", 6, 30)
	sesion := seedSesion(f.caja, 1, 100)

	principal := 0
	ordenID := f.crearOrden(t,
		dto.ItemOrdenRequest{ProductoID: botella.ID.String(), Cantidad: 1},
		dto.ItemOrdenRequest{ProductoID: cola.ID.String(), Cantidad: 4, EsComplementoGratis: true, ComplementoDe: &principal},
	)

	resp, err := f.svc.Cobrar(context.Background(), cajero(1), cobro(ordenID, sesion.ID, 180))
	require.NoError(t, err)

	assert.Equal(t, "180", resp.TotalCobrado.String())
	// El complemento no toca stock ni genera ledger.
	assert.Equal(t, 30, f.productos.stocks[cola.ID].Cantidad)
	assert.Len(t, f.movimientos.porTipo(model.MovVenta), 1)
}

func TestCobrar_FalloDeLedgerDevuelveSettlement(t *testing.T) {
	f := buildFacturacion()
	p := seedProducto(f.productos, "Cerveza Pilsen", "cervezas", 8, 50)
	sesion := seedSesion(f.caja, 1, 100)
	ordenID := f.crearOrden(t, dto.ItemOrdenRequest{ProductoID: p.ID.String(), Cantidad: 1})
	f.caja.failCreateMovimiento = true

	_, err := f.svc.Cobrar(context.Background(), cajero(1), cobro(ordenID, sesion.ID, 10))
	require.Error(t, err)
	assert.Equal(t, apierror.KindSettlement, apierror.KindOf(err))
	assert.ErrorContains(t, err, "connection reset")
}

// ── ObtenerPDFPath ────────────────────────────────────────────────────────────

func TestObtenerPDFPath_PendienteSinPDF(t *testing.T) {
	f := buildFacturacion()
	p := seedProducto(f.productos, "Cerveza Pilsen", "cervezas", 8, 50)
	sesion := seedSesion(f.caja, 1, 100)
	ordenID := f.crearOrden(t, dto.ItemOrdenRequest{ProductoID: p.ID.String(), Cantidad: 1})

	resp, err := f.svc.Cobrar(context.Background(), cajero(1), cobro(ordenID, sesion.ID, 10))
	require.NoError(t, err)

	_, err = f.svc.ObtenerPDFPath(context.Background(), uuid.MustParse(resp.ComprobanteID))
	require.Error(t, err)
	assert.Equal(t, apierror.KindPrecondition, apierror.KindOf(err))

	// Una vez emitido, la ruta se devuelve.
	comp := f.comps.comprobantes[resp.ComprobanteID]
	path := "comprobante_1.pdf"
	comp.Estado = "emitido"
	comp.PDFPath = &path
	got, err := f.svc.ObtenerPDFPath(context.Background(), uuid.MustParse(resp.ComprobanteID))
	require.NoError(t, err)
	assert.Equal(t, path, got)
}
