package service_test

import (
	"context"
	"errors"
	"time"

	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/dto"
	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/model"
	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── stubProductoRepo ──────────────────────────────────────────────────────────

// stubProductoRepo is an in-memory ProductoRepository. Tests run with a nil
// *gorm.DB, so every Tx method simply ignores its tx argument.
type stubProductoRepo struct {
	productos   map[uuid.UUID]*model.Producto
	stocks      map[uuid.UUID]*model.Stock
	componentes map[uuid.UUID][]model.ComboComponente
}

func newStubProductoRepo() *stubProductoRepo {
	return &stubProductoRepo{
		productos:   make(map[uuid.UUID]*model.Producto),
		stocks:      make(map[uuid.UUID]*model.Stock),
		componentes: make(map[uuid.UUID][]model.ComboComponente),
	}
}

func (r *stubProductoRepo) Create(_ context.Context, p *model.Producto) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.productos[p.ID] = p
	return nil
}

func (r *stubProductoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Producto, error) {
	p, ok := r.productos[id]
	if !ok {
		return nil, errors.New("not found")
	}
	p.Stock = r.stocks[id]
	p.Componentes = r.componentes[id]
	for i := range p.Componentes {
		comp := r.productos[p.Componentes[i].ComponenteID]
		if comp != nil {
			comp.Stock = r.stocks[comp.ID]
		}
		p.Componentes[i].Componente = comp
	}
	return p, nil
}

func (r *stubProductoRepo) List(_ context.Context, _ dto.ProductoFilter) ([]model.Producto, int64, error) {
	out := make([]model.Producto, 0, len(r.productos))
	for _, p := range r.productos {
		p.Stock = r.stocks[p.ID]
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *stubProductoRepo) FindStockTx(_ *gorm.DB, productoID uuid.UUID) (*model.Stock, error) {
	s, ok := r.stocks[productoID]
	if !ok {
		return nil, errors.New("not found")
	}
	cpy := *s
	return &cpy, nil
}

func (r *stubProductoRepo) UpdateStockTx(_ *gorm.DB, productoID uuid.UUID, delta int) error {
	s, ok := r.stocks[productoID]
	if !ok {
		return errors.New("not found")
	}
	s.Cantidad += delta
	return nil
}

func (r *stubProductoRepo) SetStockTx(_ *gorm.DB, productoID uuid.UUID, cantidad int) error {
	s, ok := r.stocks[productoID]
	if !ok {
		return errors.New("not found")
	}
	s.Cantidad = cantidad
	return nil
}

func (r *stubProductoRepo) ListComponentes(_ context.Context, comboID uuid.UUID) ([]model.ComboComponente, error) {
	comps := r.componentes[comboID]
	for i := range comps {
		comp := r.productos[comps[i].ComponenteID]
		if comp != nil {
			comp.Stock = r.stocks[comp.ID]
		}
		comps[i].Componente = comp
	}
	return comps, nil
}

func (r *stubProductoRepo) ListBajoMinimo(_ context.Context) ([]model.Producto, error) {
	var out []model.Producto
	for _, p := range r.productos {
		s := r.stocks[p.ID]
		if p.Activo && s != nil && s.Cantidad <= s.StockMinimo {
			p.Stock = s
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductoRepo) DB() *gorm.DB { return nil }

var _ repository.ProductoRepository = (*stubProductoRepo)(nil)

// ── stubOrdenRepo ─────────────────────────────────────────────────────────────

type stubOrdenRepo struct {
	ordenes   map[uuid.UUID]*model.Orden
	historial []model.HistorialOrden
	numeroSeq int
	// productos resolves Items[i].Producto the way Preload does
	productos *stubProductoRepo
}

func newStubOrdenRepo(productos *stubProductoRepo) *stubOrdenRepo {
	return &stubOrdenRepo{
		ordenes:   make(map[uuid.UUID]*model.Orden),
		productos: productos,
	}
}

func (r *stubOrdenRepo) attachProductos(o *model.Orden) {
	if r.productos == nil {
		return
	}
	for i := range o.Items {
		o.Items[i].Producto = r.productos.productos[o.Items[i].ProductoID]
	}
}

func (r *stubOrdenRepo) Create(_ context.Context, _ *gorm.DB, o *model.Orden) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	for i := range o.Items {
		if o.Items[i].ID == uuid.Nil {
			o.Items[i].ID = uuid.New()
		}
		o.Items[i].OrdenID = o.ID
	}
	r.ordenes[o.ID] = o
	return nil
}

func (r *stubOrdenRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Orden, error) {
	o, ok := r.ordenes[id]
	if !ok {
		return nil, errors.New("not found")
	}
	r.attachProductos(o)
	return o, nil
}

func (r *stubOrdenRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Orden, error) {
	o, ok := r.ordenes[id]
	if !ok {
		return nil, errors.New("not found")
	}
	r.attachProductos(o)
	return o, nil
}

func (r *stubOrdenRepo) UpdateTx(_ *gorm.DB, o *model.Orden) error {
	r.ordenes[o.ID] = o
	return nil
}

func (r *stubOrdenRepo) NextNumero(_ context.Context, _ *gorm.DB) (int, error) {
	r.numeroSeq++
	return r.numeroSeq, nil
}

func (r *stubOrdenRepo) List(_ context.Context, _ dto.OrdenFilter) ([]model.Orden, int64, error) {
	out := make([]model.Orden, 0, len(r.ordenes))
	for _, o := range r.ordenes {
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (r *stubOrdenRepo) FindActivaPorMesa(_ context.Context, mesaID uuid.UUID) (*model.Orden, error) {
	for _, o := range r.ordenes {
		if o.MesaID != nil && *o.MesaID == mesaID && o.OcupaMesa() {
			return o, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *stubOrdenRepo) DeleteTx(_ *gorm.DB, id uuid.UUID) error {
	delete(r.ordenes, id)
	return nil
}

func (r *stubOrdenRepo) CreateHistorialTx(_ *gorm.DB, h *model.HistorialOrden) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	r.historial = append(r.historial, *h)
	return nil
}

func (r *stubOrdenRepo) ListHistorial(_ context.Context, ordenID uuid.UUID) ([]model.HistorialOrden, error) {
	var out []model.HistorialOrden
	for _, h := range r.historial {
		if h.OrdenID == ordenID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (r *stubOrdenRepo) DB() *gorm.DB { return nil }

var _ repository.OrdenRepository = (*stubOrdenRepo)(nil)

// ── stubMesaRepo ──────────────────────────────────────────────────────────────

type stubMesaRepo struct {
	mesas map[uuid.UUID]*model.Mesa
}

func newStubMesaRepo() *stubMesaRepo {
	return &stubMesaRepo{mesas: make(map[uuid.UUID]*model.Mesa)}
}

func (r *stubMesaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Mesa, error) {
	m, ok := r.mesas[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return m, nil
}

func (r *stubMesaRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Mesa, error) {
	m, ok := r.mesas[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return m, nil
}

func (r *stubMesaRepo) UpdateEstadoTx(_ *gorm.DB, id uuid.UUID, estado string) error {
	m, ok := r.mesas[id]
	if !ok {
		return errors.New("not found")
	}
	m.Estado = estado
	return nil
}

func (r *stubMesaRepo) List(_ context.Context) ([]model.Mesa, error) {
	out := make([]model.Mesa, 0, len(r.mesas))
	for _, m := range r.mesas {
		out = append(out, *m)
	}
	return out, nil
}

var _ repository.MesaRepository = (*stubMesaRepo)(nil)

// ── stubCajaRepo ──────────────────────────────────────────────────────────────

type stubCajaRepo struct {
	sesiones    map[uuid.UUID]*model.SesionCaja
	movimientos []model.MovimientoCaja
	// failCreateMovimiento injects a ledger write failure
	failCreateMovimiento bool
	// errCreateSesion makes CreateSesion fail with this error
	errCreateSesion error
}

func newStubCajaRepo() *stubCajaRepo {
	return &stubCajaRepo{sesiones: make(map[uuid.UUID]*model.SesionCaja)}
}

func (r *stubCajaRepo) CreateSesion(_ context.Context, _ *gorm.DB, s *model.SesionCaja) error {
	if r.errCreateSesion != nil {
		return r.errCreateSesion
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.sesiones[s.ID] = s
	return nil
}

func (r *stubCajaRepo) FindSesionAbiertaPorNumero(_ context.Context, numeroCaja int) (*model.SesionCaja, error) {
	for _, s := range r.sesiones {
		if s.NumeroCaja == numeroCaja && s.Estado == model.SesionAbierta {
			return s, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *stubCajaRepo) FindSesionByID(_ context.Context, id uuid.UUID) (*model.SesionCaja, error) {
	s, ok := r.sesiones[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return s, nil
}

func (r *stubCajaRepo) FindSesionByIDTx(_ *gorm.DB, id uuid.UUID) (*model.SesionCaja, error) {
	s, ok := r.sesiones[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return s, nil
}

func (r *stubCajaRepo) UpdateSesionTx(_ *gorm.DB, s *model.SesionCaja) error {
	r.sesiones[s.ID] = s
	return nil
}

func (r *stubCajaRepo) CreateMovimientoTx(_ *gorm.DB, m *model.MovimientoCaja) error {
	if r.failCreateMovimiento {
		return errors.New("insert movimientos_caja: connection reset")
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.movimientos = append(r.movimientos, *m)
	return nil
}

func (r *stubCajaRepo) ListMovimientos(_ context.Context, sesionID uuid.UUID) ([]model.MovimientoCaja, error) {
	var out []model.MovimientoCaja
	for _, m := range r.movimientos {
		if m.SesionCajaID == sesionID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *stubCajaRepo) SumMovimientos(_ context.Context, sesionID uuid.UUID) (*repository.SumasCaja, error) {
	sums := &repository.SumasCaja{
		Ingresos: decimal.Zero,
		Egresos:  decimal.Zero,
		Propinas: decimal.Zero,
	}
	for _, m := range r.movimientos {
		if m.SesionCajaID != sesionID {
			continue
		}
		switch m.Tipo {
		case model.CajaIngreso:
			sums.Ingresos = sums.Ingresos.Add(m.Monto)
		case model.CajaEgreso:
			sums.Egresos = sums.Egresos.Add(m.Monto)
		}
		sums.Propinas = sums.Propinas.Add(m.Propina)
	}
	return sums, nil
}

func (r *stubCajaRepo) ListSesiones(_ context.Context, _, _ int) ([]model.SesionCaja, int64, error) {
	out := make([]model.SesionCaja, 0, len(r.sesiones))
	for _, s := range r.sesiones {
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

func (r *stubCajaRepo) DB() *gorm.DB { return nil }

var _ repository.CajaRepository = (*stubCajaRepo)(nil)

// ── stubMovimientoRepo ────────────────────────────────────────────────────────

type stubMovimientoRepo struct {
	movimientos []model.MovimientoInventario
}

func (r *stubMovimientoRepo) CreateTx(_ *gorm.DB, m *model.MovimientoInventario) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.movimientos = append(r.movimientos, *m)
	return nil
}

func (r *stubMovimientoRepo) List(_ context.Context, filter dto.MovimientoFilter) ([]model.MovimientoInventario, int64, error) {
	var out []model.MovimientoInventario
	for _, m := range r.movimientos {
		if filter.Tipo != "" && m.Tipo != filter.Tipo {
			continue
		}
		if filter.ProductoID != "" && m.ProductoID.String() != filter.ProductoID {
			continue
		}
		out = append(out, m)
	}
	return out, int64(len(out)), nil
}

// porTipo filters the captured ledger rows by movement type.
func (r *stubMovimientoRepo) porTipo(tipo string) []model.MovimientoInventario {
	var out []model.MovimientoInventario
	for _, m := range r.movimientos {
		if m.Tipo == tipo {
			out = append(out, m)
		}
	}
	return out
}

var _ repository.MovimientoInventarioRepository = (*stubMovimientoRepo)(nil)

// ── stubComprobanteRepo ───────────────────────────────────────────────────────

type stubComprobanteRepo struct {
	comprobantes map[string]*model.Comprobante
}

func newStubComprobanteRepo() *stubComprobanteRepo {
	return &stubComprobanteRepo{comprobantes: make(map[string]*model.Comprobante)}
}

func (r *stubComprobanteRepo) CreateTx(_ *gorm.DB, c *model.Comprobante) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.comprobantes[c.ID.String()] = c
	return nil
}

func (r *stubComprobanteRepo) FindByID(_ context.Context, id string) (*model.Comprobante, error) {
	return r.comprobantes[id], nil
}

func (r *stubComprobanteRepo) FindByOrdenID(_ context.Context, ordenID string) (*model.Comprobante, error) {
	for _, c := range r.comprobantes {
		if c.OrdenID.String() == ordenID {
			return c, nil
		}
	}
	return nil, nil
}

func (r *stubComprobanteRepo) Update(_ context.Context, c *model.Comprobante) error {
	r.comprobantes[c.ID.String()] = c
	return nil
}

func (r *stubComprobanteRepo) FindPendingRetries(_ context.Context, now time.Time, limit int) ([]model.Comprobante, error) {
	var out []model.Comprobante
	for _, c := range r.comprobantes {
		if c.Estado == "error" && c.NextRetryAt != nil && !c.NextRetryAt.After(now) {
			out = append(out, *c)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *stubComprobanteRepo) FindStalePendientes(_ context.Context, olderThan time.Time, limit int) ([]model.Comprobante, error) {
	var out []model.Comprobante
	for _, c := range r.comprobantes {
		if c.Estado == "pendiente" && !c.UpdatedAt.After(olderThan) {
			out = append(out, *c)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

var _ repository.ComprobanteRepository = (*stubComprobanteRepo)(nil)

// ── stubPedidoRepo ────────────────────────────────────────────────────────────

type stubPedidoRepo struct {
	pedidos map[string]*model.Pedido
}

func newStubPedidoRepo() *stubPedidoRepo {
	return &stubPedidoRepo{pedidos: make(map[string]*model.Pedido)}
}

func (r *stubPedidoRepo) FindByID(_ context.Context, id string) (*model.Pedido, error) {
	return r.pedidos[id], nil
}

func (r *stubPedidoRepo) FindByIDTx(_ *gorm.DB, id string) (*model.Pedido, error) {
	p, ok := r.pedidos[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return p, nil
}

func (r *stubPedidoRepo) UpdateDetalleTx(_ *gorm.DB, detalle *model.DetallePedido) error {
	p, ok := r.pedidos[detalle.PedidoID.String()]
	if !ok {
		return errors.New("not found")
	}
	for i := range p.Detalles {
		if p.Detalles[i].ID == detalle.ID {
			p.Detalles[i].CantidadRecibida = detalle.CantidadRecibida
		}
	}
	return nil
}

func (r *stubPedidoRepo) UpdateEstadoTx(_ *gorm.DB, id string, estado string) error {
	p, ok := r.pedidos[id]
	if !ok {
		return errors.New("not found")
	}
	p.Estado = estado
	return nil
}

func (r *stubPedidoRepo) List(_ context.Context, _ string) ([]model.Pedido, error) {
	out := make([]model.Pedido, 0, len(r.pedidos))
	for _, p := range r.pedidos {
		out = append(out, *p)
	}
	return out, nil
}

func (r *stubPedidoRepo) DB() *gorm.DB { return nil }

var _ repository.PedidoRepository = (*stubPedidoRepo)(nil)

// ── seed helpers ──────────────────────────────────────────────────────────────

func seedProducto(repo *stubProductoRepo, nombre, categoria string, precio float64, stock int) *model.Producto {
	p := &model.Producto{
		ID:          uuid.New(),
		Codigo:      uuid.NewString()[:8],
		Nombre:      nombre,
		Categoria:   categoria,
		PrecioVenta: decimal.NewFromFloat(precio),
		Activo:      true,
	}
	repo.productos[p.ID] = p
	repo.stocks[p.ID] = &model.Stock{
		ID:          uuid.New(),
		ProductoID:  p.ID,
		Cantidad:    stock,
		StockMinimo: 5,
		StockMaximo: 100,
	}
	return p
}

// seedCombo registers a combo product with the given (componente, cantidad)
// pairs. Combos carry no stock row of their own.
func seedCombo(repo *stubProductoRepo, nombre string, precio float64, componentes map[*model.Producto]int) *model.Producto {
	combo := &model.Producto{
		ID:          uuid.New(),
		Codigo:      uuid.NewString()[:8],
		Nombre:      nombre,
		Categoria:   "combos",
		PrecioVenta: decimal.NewFromFloat(precio),
		EsCombo:     true,
		Activo:      true,
	}
	repo.productos[combo.ID] = combo
	for comp, cant := range componentes {
		repo.componentes[combo.ID] = append(repo.componentes[combo.ID], model.ComboComponente{
			ID:           uuid.New(),
			ComboID:      combo.ID,
			ComponenteID: comp.ID,
			Cantidad:     cant,
		})
	}
	return combo
}

func seedMesa(repo *stubMesaRepo, numero int) *model.Mesa {
	m := &model.Mesa{
		ID:     uuid.New(),
		Numero: numero,
		Estado: model.MesaDisponible,
		Activo: true,
	}
	repo.mesas[m.ID] = m
	return m
}

func seedSesion(repo *stubCajaRepo, numeroCaja int, montoInicial float64) *model.SesionCaja {
	s := &model.SesionCaja{
		ID:           uuid.New(),
		NumeroCaja:   numeroCaja,
		UsuarioID:    uuid.New(),
		MontoInicial: decimal.NewFromFloat(montoInicial),
		Estado:       model.SesionAbierta,
		OpenedAt:     time.Now(),
	}
	repo.sesiones[s.ID] = s
	return s
}
