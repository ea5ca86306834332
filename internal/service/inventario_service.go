package service

import (
	"context"
	"fmt"
	"time"

	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/apierror"
	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/dto"
	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/model"
	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InventarioService interface {
	AjustarStock(ctx context.Context, actor Actor, req dto.AjustarStockRequest) error
	RegistrarMovimiento(ctx context.Context, actor Actor, req dto.MovimientoManualRequest) error
	RecibirPedido(ctx context.Context, actor Actor, pedidoID uuid.UUID, req dto.RecibirPedidoRequest) (*dto.RecibirPedidoResponse, error)
	ListarMovimientos(ctx context.Context, filter dto.MovimientoFilter) (*dto.MovimientoListResponse, error)
	Alertas(ctx context.Context) ([]dto.AlertaStockResponse, error)
	DisponibilidadCombo(ctx context.Context, comboID uuid.UUID) (*dto.DisponibilidadComboResponse, error)
}

type inventarioService struct {
	productoRepo   repository.ProductoRepository
	movimientoRepo repository.MovimientoInventarioRepository
	pedidoRepo     repository.PedidoRepository
}

func NewInventarioService(
	productoRepo repository.ProductoRepository,
	movimientoRepo repository.MovimientoInventarioRepository,
	pedidoRepo repository.PedidoRepository,
) InventarioService {
	return &inventarioService{
		productoRepo:   productoRepo,
		movimientoRepo: movimientoRepo,
		pedidoRepo:     pedidoRepo,
	}
}

// ── AjustarStock ──────────────────────────────────────────────────────────────

// AjustarStock sets an absolute quantity after a physical count. The delta is
// recorded as an ajuste movement; its sign is implied by anterior vs nuevo.
func (s *inventarioService) AjustarStock(ctx context.Context, actor Actor, req dto.AjustarStockRequest) error {
	productoID, err := uuid.Parse(req.ProductoID)
	if err != nil {
		return apierror.Validation("producto_id inválido")
	}
	if req.NuevaCantidad < 0 {
		return apierror.Validation("la cantidad no puede ser negativa")
	}

	return runTx(ctx, s.productoRepo.DB(), func(tx *gorm.DB) error {
		stock, err := s.productoRepo.FindStockTx(tx, productoID)
		if err != nil || stock == nil {
			return apierror.NotFound("producto sin registro de stock")
		}
		delta := req.NuevaCantidad - stock.Cantidad
		if delta == 0 {
			return nil
		}
		if err := s.productoRepo.SetStockTx(tx, productoID, req.NuevaCantidad); err != nil {
			return err
		}
		cantidad := delta
		if cantidad < 0 {
			cantidad = -cantidad
		}
		return s.movimientoRepo.CreateTx(tx, &model.MovimientoInventario{
			ProductoID:    productoID,
			Tipo:          model.MovAjuste,
			Cantidad:      cantidad,
			StockAnterior: stock.Cantidad,
			StockNuevo:    req.NuevaCantidad,
			UsuarioID:     actor.ID,
			Motivo:        req.Motivo,
		})
	})
}

// ── RegistrarMovimiento ───────────────────────────────────────────────────────

// RegistrarMovimiento handles manual entradas and salidas. A salida that
// would drive stock negative is rejected — unlike sale deductions, which are
// flagged instead (stock counts must never block a live sale, but a manual
// exit has no such urgency).
func (s *inventarioService) RegistrarMovimiento(ctx context.Context, actor Actor, req dto.MovimientoManualRequest) error {
	productoID, err := uuid.Parse(req.ProductoID)
	if err != nil {
		return apierror.Validation("producto_id inválido")
	}
	if req.Cantidad <= 0 {
		return apierror.Validation("la cantidad debe ser mayor a cero")
	}
	if req.Tipo != model.MovEntrada && req.Tipo != model.MovSalida {
		return apierror.Validation("tipo de movimiento inválido")
	}

	return runTx(ctx, s.productoRepo.DB(), func(tx *gorm.DB) error {
		stock, err := s.productoRepo.FindStockTx(tx, productoID)
		if err != nil || stock == nil {
			return apierror.NotFound("producto sin registro de stock")
		}

		delta := req.Cantidad
		if req.Tipo == model.MovSalida {
			if req.Cantidad > stock.Cantidad {
				return apierror.InsufficientStock(
					fmt.Sprintf("stock insuficiente: hay %d, se pidió retirar %d", stock.Cantidad, req.Cantidad))
			}
			delta = -req.Cantidad
		}

		if err := s.productoRepo.UpdateStockTx(tx, productoID, delta); err != nil {
			return err
		}
		return s.movimientoRepo.CreateTx(tx, &model.MovimientoInventario{
			ProductoID:     productoID,
			Tipo:           req.Tipo,
			Cantidad:       req.Cantidad,
			StockAnterior:  stock.Cantidad,
			StockNuevo:     stock.Cantidad + delta,
			PrecioUnitario: req.PrecioUnitario,
			UsuarioID:      actor.ID,
			Motivo:         req.Motivo,
		})
	})
}

// ── RecibirPedido ─────────────────────────────────────────────────────────────

// RecibirPedido registers a (possibly partial) receipt against a purchase
// order. Only the delta versus what was already received enters stock; the
// order's estado derives from the accumulated received quantities.
func (s *inventarioService) RecibirPedido(ctx context.Context, actor Actor, pedidoID uuid.UUID, req dto.RecibirPedidoRequest) (*dto.RecibirPedidoResponse, error) {
	recibidas := make(map[string]int, len(req.Lineas))
	for _, l := range req.Lineas {
		if l.CantidadRecibida < 0 {
			return nil, apierror.Validation("cantidad recibida negativa")
		}
		recibidas[l.DetalleID] = l.CantidadRecibida
	}

	var resp dto.RecibirPedidoResponse
	txErr := runTx(ctx, s.pedidoRepo.DB(), func(tx *gorm.DB) error {
		pedido, err := s.pedidoRepo.FindByIDTx(tx, pedidoID.String())
		if err != nil || pedido == nil {
			return apierror.NotFound("pedido no encontrado")
		}
		if pedido.Estado == model.PedidoRecibido {
			return apierror.Precondition("el pedido ya fue recibido por completo")
		}

		totalIngresado := 0
		completo := true
		algoRecibido := false

		for i := range pedido.Detalles {
			det := &pedido.Detalles[i]
			acumulada, ok := recibidas[det.ID.String()]
			if !ok {
				acumulada = det.CantidadRecibida
			}
			if acumulada > det.CantidadPedida {
				return apierror.Validation(
					fmt.Sprintf("línea %s: recibido %d excede lo pedido %d", det.ID, acumulada, det.CantidadPedida))
			}
			delta := acumulada - det.CantidadRecibida
			if delta < 0 {
				return apierror.Validation("la cantidad recibida no puede disminuir")
			}

			if delta > 0 {
				stock, err := s.productoRepo.FindStockTx(tx, det.ProductoID)
				if err != nil || stock == nil {
					return apierror.NotFound("producto sin registro de stock")
				}
				if err := s.productoRepo.UpdateStockTx(tx, det.ProductoID, delta); err != nil {
					return err
				}
				precio := det.PrecioUnitario
				pid := pedido.ID
				if err := s.movimientoRepo.CreateTx(tx, &model.MovimientoInventario{
					ProductoID:     det.ProductoID,
					Tipo:           model.MovEntrada,
					Cantidad:       delta,
					StockAnterior:  stock.Cantidad,
					StockNuevo:     stock.Cantidad + delta,
					PrecioUnitario: &precio,
					UsuarioID:      actor.ID,
					PedidoID:       &pid,
					Motivo:         fmt.Sprintf("Recepción pedido %s", pedido.ID),
				}); err != nil {
					return err
				}

				det.CantidadRecibida = acumulada
				if err := s.pedidoRepo.UpdateDetalleTx(tx, det); err != nil {
					return err
				}
				totalIngresado += delta
			}

			if det.CantidadRecibida < det.CantidadPedida {
				completo = false
			}
			if det.CantidadRecibida > 0 {
				algoRecibido = true
			}
		}

		estado := pedido.Estado
		switch {
		case completo:
			estado = model.PedidoRecibido
		case algoRecibido:
			estado = model.PedidoParcial
		}
		if estado != pedido.Estado {
			if err := s.pedidoRepo.UpdateEstadoTx(tx, pedido.ID.String(), estado); err != nil {
				return err
			}
		}

		resp = dto.RecibirPedidoResponse{
			PedidoID:           pedido.ID.String(),
			Estado:             estado,
			UnidadesIngresadas: totalIngresado,
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return &resp, nil
}

// ── Lecturas ──────────────────────────────────────────────────────────────────

func (s *inventarioService) ListarMovimientos(ctx context.Context, filter dto.MovimientoFilter) (*dto.MovimientoListResponse, error) {
	movs, total, err := s.movimientoRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := &dto.MovimientoListResponse{
		Data:  make([]dto.MovimientoInventarioResponse, 0, len(movs)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for _, m := range movs {
		mr := dto.MovimientoInventarioResponse{
			ID:             m.ID.String(),
			ProductoID:     m.ProductoID.String(),
			Tipo:           m.Tipo,
			Cantidad:       m.Cantidad,
			StockAnterior:  m.StockAnterior,
			StockNuevo:     m.StockNuevo,
			PrecioUnitario: m.PrecioUnitario,
			Motivo:         m.Motivo,
			Sobrevendido:   m.Sobrevendido,
			CreatedAt:      m.CreatedAt.Format(time.RFC3339),
		}
		if m.Producto != nil {
			mr.Producto = m.Producto.Nombre
		}
		resp.Data = append(resp.Data, mr)
	}
	return resp, nil
}

func (s *inventarioService) Alertas(ctx context.Context) ([]dto.AlertaStockResponse, error) {
	productos, err := s.productoRepo.ListBajoMinimo(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.AlertaStockResponse, 0, len(productos))
	for _, p := range productos {
		if p.Stock == nil {
			continue
		}
		out = append(out, dto.AlertaStockResponse{
			ProductoID:  p.ID.String(),
			Producto:    p.Nombre,
			Cantidad:    p.Stock.Cantidad,
			StockMinimo: p.Stock.StockMinimo,
		})
	}
	return out, nil
}

// DisponibilidadCombo derives a combo's availability from component stock at
// read time: available only while every component can cover one more unit.
func (s *inventarioService) DisponibilidadCombo(ctx context.Context, comboID uuid.UUID) (*dto.DisponibilidadComboResponse, error) {
	combo, err := s.productoRepo.FindByID(ctx, comboID)
	if err != nil || combo == nil {
		return nil, apierror.NotFound("producto no encontrado")
	}
	if !combo.EsCombo {
		return nil, apierror.Validation("el producto no es un combo")
	}
	componentes, err := s.productoRepo.ListComponentes(ctx, comboID)
	if err != nil {
		return nil, err
	}
	if len(componentes) == 0 {
		return &dto.DisponibilidadComboResponse{ComboID: comboID.String()}, nil
	}

	maximo := -1
	for _, comp := range componentes {
		disponible := 0
		if comp.Componente != nil && comp.Componente.Stock != nil && comp.Cantidad > 0 {
			disponible = comp.Componente.Stock.Cantidad / comp.Cantidad
		}
		if maximo == -1 || disponible < maximo {
			maximo = disponible
		}
	}
	if maximo < 0 {
		maximo = 0
	}
	return &dto.DisponibilidadComboResponse{
		ComboID:        comboID.String(),
		Disponible:     maximo > 0,
		MaximoVendible: maximo,
	}, nil
}
