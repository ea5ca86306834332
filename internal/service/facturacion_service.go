package service

import (
	"context"
	"fmt"
	"time"

	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/apierror"
	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/dto"
	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/model"
	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/repository"
	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type FacturacionService interface {
	// Cobrar settles an order: marks it paid, deducts stock (expanding
	// combos), posts the cash movement and creates the comprobante — all in
	// one transaction.
	Cobrar(ctx context.Context, actor Actor, req dto.CobrarOrdenRequest) (*dto.CobrarOrdenResponse, error)
	ObtenerComprobante(ctx context.Context, ordenID uuid.UUID) (*dto.ComprobanteResponse, error)
	ObtenerPDFPath(ctx context.Context, id uuid.UUID) (string, error)
}

type facturacionService struct {
	ordenRepo       repository.OrdenRepository
	cajaRepo        repository.CajaRepository
	productoRepo    repository.ProductoRepository
	movimientoRepo  repository.MovimientoInventarioRepository
	comprobanteRepo repository.ComprobanteRepository
	dispatcher      *worker.Dispatcher
}

func NewFacturacionService(
	ordenRepo repository.OrdenRepository,
	cajaRepo repository.CajaRepository,
	productoRepo repository.ProductoRepository,
	movimientoRepo repository.MovimientoInventarioRepository,
	comprobanteRepo repository.ComprobanteRepository,
	dispatcher *worker.Dispatcher,
) FacturacionService {
	return &facturacionService{
		ordenRepo:       ordenRepo,
		cajaRepo:        cajaRepo,
		productoRepo:    productoRepo,
		movimientoRepo:  movimientoRepo,
		comprobanteRepo: comprobanteRepo,
		dispatcher:      dispatcher,
	}
}

func (s *facturacionService) Cobrar(ctx context.Context, actor Actor, req dto.CobrarOrdenRequest) (*dto.CobrarOrdenResponse, error) {
	ordenID, err := uuid.Parse(req.OrdenID)
	if err != nil {
		return nil, apierror.Validation("orden_id inválido")
	}
	sesionID, err := uuid.Parse(req.SesionCajaID)
	if err != nil {
		return nil, apierror.Validation("sesion_caja_id inválido")
	}
	if req.Propina.IsNegative() {
		return nil, apierror.Validation("la propina no puede ser negativa")
	}

	// Pre-flight: the session must be open and, for cashiers, must belong to
	// their assigned register.
	sesion, err := s.cajaRepo.FindSesionByID(ctx, sesionID)
	if err != nil || sesion == nil {
		return nil, apierror.NotFound("sesión de caja no encontrada")
	}
	if sesion.Estado != model.SesionAbierta {
		return nil, apierror.Precondition("la sesión de caja no está abierta")
	}
	if actor.Rol == model.RolCajero {
		if actor.CajaAsignada == nil || *actor.CajaAsignada != sesion.NumeroCaja {
			return nil, apierror.Authorization(
				fmt.Sprintf("la caja %d no está asignada al cajero", sesion.NumeroCaja))
		}
	}

	var (
		orden       *model.Orden
		comprobante model.Comprobante
		vuelto      decimal.Decimal
		oversold    []string
	)

	txErr := runTx(ctx, s.ordenRepo.DB(), func(tx *gorm.DB) error {
		// Lock on the order row makes double-settlement impossible: the
		// second caller blocks here and then sees Pagada=true.
		orden, err = s.ordenRepo.FindByIDTx(tx, ordenID)
		if err != nil || orden == nil {
			return apierror.NotFound("orden no encontrada")
		}
		if orden.Pagada {
			return apierror.Conflict("la orden ya está pagada")
		}
		if orden.Estado == model.OrdenCancelada {
			return apierror.Precondition("no se puede cobrar una orden cancelada")
		}
		if req.MontoRecibido.LessThan(orden.Subtotal) {
			return apierror.Validation("el monto recibido es insuficiente")
		}

		// Re-check the session under lock: it may have closed since pre-flight.
		sesionTx, err := s.cajaRepo.FindSesionByIDTx(tx, sesionID)
		if err != nil || sesionTx == nil || sesionTx.Estado != model.SesionAbierta {
			return apierror.Precondition("la sesión de caja no está abierta")
		}

		totalCobrado := orden.Subtotal.Add(req.Propina)
		vuelto = req.MontoRecibido.Sub(totalCobrado)

		metodo := req.MetodoPago
		orden.Pagada = true
		orden.MetodoPago = &metodo
		orden.Propina = req.Propina
		orden.Total = totalCobrado
		// Una orden pagada vuelve a pendiente: el pago puede ocurrir antes o
		// durante la preparación.
		orden.Estado = model.OrdenPendiente
		if err := s.ordenRepo.UpdateTx(tx, orden); err != nil {
			return apierror.Settlement(err)
		}

		// Stock deduction with combo expansion. Sales never block on stock:
		// a negative result is flagged Sobrevendido and alerted, not refused.
		for _, item := range orden.Items {
			if item.EsComplementoGratis {
				continue
			}
			p := item.Producto
			if p == nil {
				return apierror.Settlement(fmt.Errorf("producto %s no cargado en la orden", item.ProductoID))
			}
			if p.EsCombo {
				componentes, err := s.productoRepo.ListComponentes(ctx, p.ID)
				if err != nil {
					return apierror.Settlement(err)
				}
				for _, comp := range componentes {
					cantidad := comp.Cantidad * item.Cantidad
					flagged, err := s.descontarStockTx(tx, actor, comp.ComponenteID, cantidad, nil, orden)
					if err != nil {
						return apierror.Settlement(err)
					}
					if flagged != "" {
						oversold = append(oversold, flagged)
					}
				}
				// Movimiento informativo del combo: sin efecto sobre stock.
				precio := item.PrecioUnitario
				mov := &model.MovimientoInventario{
					ProductoID:     p.ID,
					Tipo:           model.MovVentaCombo,
					Cantidad:       item.Cantidad,
					PrecioUnitario: &precio,
					UsuarioID:      actor.ID,
					Motivo:         fmt.Sprintf("Venta orden #%d", orden.Numero),
				}
				if err := s.movimientoRepo.CreateTx(tx, mov); err != nil {
					return apierror.Settlement(err)
				}
			} else {
				precio := item.PrecioUnitario
				flagged, err := s.descontarStockTx(tx, actor, p.ID, item.Cantidad, &precio, orden)
				if err != nil {
					return apierror.Settlement(err)
				}
				if flagged != "" {
					oversold = append(oversold, flagged)
				}
			}
		}

		// Cash ledger entry — pure append, the balance is always derived.
		referencia := fmt.Sprintf("#%d", orden.Numero)
		movCaja := &model.MovimientoCaja{
			SesionCajaID: sesionID,
			Tipo:         model.CajaIngreso,
			Monto:        totalCobrado,
			MetodoPago:   metodo,
			Concepto:     fmt.Sprintf("Cobro orden #%d", orden.Numero),
			Referencia:   &referencia,
			Propina:      req.Propina,
			UsuarioID:    actor.ID,
		}
		if err := s.cajaRepo.CreateMovimientoTx(tx, movCaja); err != nil {
			return apierror.Settlement(err)
		}

		if err := s.ordenRepo.CreateHistorialTx(tx, &model.HistorialOrden{
			OrdenID:   orden.ID,
			UsuarioID: actor.ID,
			Accion:    "pago",
			Detalle:   fmt.Sprintf("Cobrada %s por %s", metodo, totalCobrado.StringFixed(2)),
		}); err != nil {
			return apierror.Settlement(err)
		}

		comprobante = model.Comprobante{
			OrdenID:     orden.ID,
			NumeroOrden: orden.Numero,
			MontoTotal:  totalCobrado,
			Propina:     req.Propina,
			MetodoPago:  metodo,
			Estado:      "pendiente",
		}
		if err := s.comprobanteRepo.CreateTx(tx, &comprobante); err != nil {
			return apierror.Settlement(err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	// Async, best-effort: PDF generation and oversell alert run after commit.
	if s.dispatcher != nil {
		payload := map[string]interface{}{
			"comprobante_id": comprobante.ID.String(),
		}
		if req.ClienteEmail != nil && *req.ClienteEmail != "" {
			payload["cliente_email"] = *req.ClienteEmail
		}
		if err := s.dispatcher.EnqueueComprobante(ctx, payload); err != nil {
			// The sale is already committed; hand the receipt over to the
			// retry cron instead of losing it.
			log.Warn().Err(err).Str("comprobante_id", comprobante.ID.String()).
				Msg("no se pudo encolar el comprobante, queda para reintento")
			ahora := time.Now()
			causa := err.Error()
			comprobante.Estado = "error"
			comprobante.NextRetryAt = &ahora
			comprobante.LastError = &causa
			if err := s.comprobanteRepo.Update(ctx, &comprobante); err != nil {
				log.Error().Err(err).Str("comprobante_id", comprobante.ID.String()).
					Msg("no se pudo marcar el comprobante para reintento")
			}
		}

		if len(oversold) > 0 {
			if err := s.dispatcher.EnqueueEmail(ctx, map[string]interface{}{
				"tipo":      "alerta_sobreventa",
				"orden":     orden.Numero,
				"productos": oversold,
			}); err != nil {
				log.Warn().Err(err).Int("orden", orden.Numero).
					Msg("no se pudo encolar la alerta de sobreventa")
			}
		}
	}

	return &dto.CobrarOrdenResponse{
		OrdenID:       orden.ID.String(),
		NumeroOrden:   orden.Numero,
		TotalCobrado:  orden.Total,
		Propina:       req.Propina,
		Vuelto:        vuelto,
		ComprobanteID: comprobante.ID.String(),
	}, nil
}

// descontarStockTx locks the product's stock row, applies the deduction and
// appends the venta movement. Returns the product id string when the
// deduction drove stock negative.
func (s *facturacionService) descontarStockTx(tx *gorm.DB, actor Actor, productoID uuid.UUID, cantidad int, precio *decimal.Decimal, orden *model.Orden) (string, error) {
	stock, err := s.productoRepo.FindStockTx(tx, productoID)
	if err != nil || stock == nil {
		return "", fmt.Errorf("stock no encontrado para producto %s", productoID)
	}
	nuevo := stock.Cantidad - cantidad
	if err := s.productoRepo.UpdateStockTx(tx, productoID, -cantidad); err != nil {
		return "", err
	}

	mov := &model.MovimientoInventario{
		ProductoID:     productoID,
		Tipo:           model.MovVenta,
		Cantidad:       cantidad,
		StockAnterior:  stock.Cantidad,
		StockNuevo:     nuevo,
		PrecioUnitario: precio,
		UsuarioID:      actor.ID,
		Motivo:         fmt.Sprintf("Venta orden #%d", orden.Numero),
		Sobrevendido:   nuevo < 0,
	}
	if err := s.movimientoRepo.CreateTx(tx, mov); err != nil {
		return "", err
	}
	if nuevo < 0 {
		log.Warn().Str("producto_id", productoID.String()).
			Int("stock_nuevo", nuevo).Int("orden", orden.Numero).
			Msg("sobreventa: la venta dejó el stock en negativo")
		return productoID.String(), nil
	}
	return "", nil
}

// ── Lecturas ──────────────────────────────────────────────────────────────────

func (s *facturacionService) ObtenerComprobante(ctx context.Context, ordenID uuid.UUID) (*dto.ComprobanteResponse, error) {
	comp, err := s.comprobanteRepo.FindByOrdenID(ctx, ordenID.String())
	if err != nil || comp == nil {
		return nil, apierror.NotFound("comprobante no encontrado para la orden")
	}
	return comprobanteToResponse(comp), nil
}

func (s *facturacionService) ObtenerPDFPath(ctx context.Context, id uuid.UUID) (string, error) {
	comp, err := s.comprobanteRepo.FindByID(ctx, id.String())
	if err != nil || comp == nil {
		return "", apierror.NotFound("comprobante no encontrado")
	}
	if comp.PDFPath == nil || *comp.PDFPath == "" {
		return "", apierror.Precondition(
			fmt.Sprintf("PDF no disponible — el comprobante está en estado '%s'", comp.Estado))
	}
	return *comp.PDFPath, nil
}

func comprobanteToResponse(c *model.Comprobante) *dto.ComprobanteResponse {
	return &dto.ComprobanteResponse{
		ID:          c.ID.String(),
		OrdenID:     c.OrdenID.String(),
		NumeroOrden: c.NumeroOrden,
		MontoTotal:  c.MontoTotal,
		Propina:     c.Propina,
		MetodoPago:  c.MetodoPago,
		Estado:      c.Estado,
		PDFPath:     c.PDFPath,
		CreatedAt:   c.CreatedAt.Format(time.RFC3339),
	}
}
