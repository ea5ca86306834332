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
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrdenService interface {
	Crear(ctx context.Context, actor Actor, req dto.CrearOrdenRequest) (*dto.OrdenResponse, error)
	CambiarEstado(ctx context.Context, actor Actor, id uuid.UUID, nuevoEstado string) (*dto.OrdenResponse, error)
	AsignarBartender(ctx context.Context, actor Actor, id uuid.UUID, bartenderID *uuid.UUID) error
	Eliminar(ctx context.Context, actor Actor, id uuid.UUID) error
	Obtener(ctx context.Context, id uuid.UUID) (*dto.OrdenResponse, error)
	Listar(ctx context.Context, filter dto.OrdenFilter) (*dto.OrdenListResponse, error)
	Historial(ctx context.Context, id uuid.UUID) ([]dto.HistorialOrdenResponse, error)
}

type ordenService struct {
	repo         repository.OrdenRepository
	mesaRepo     repository.MesaRepository
	productoRepo repository.ProductoRepository
}

func NewOrdenService(
	repo repository.OrdenRepository,
	mesaRepo repository.MesaRepository,
	productoRepo repository.ProductoRepository,
) OrdenService {
	return &ordenService{repo: repo, mesaRepo: mesaRepo, productoRepo: productoRepo}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// transiciones legales: el sucesor inmediato, o cancelada desde cualquier
// estado no terminal.
var siguienteEstado = map[string]string{
	model.OrdenPendiente: model.OrdenEnProceso,
	model.OrdenEnProceso: model.OrdenLista,
	model.OrdenLista:     model.OrdenEntregada,
}

func transicionValida(actual, nuevo string) bool {
	if nuevo == model.OrdenCancelada {
		return actual != model.OrdenEntregada && actual != model.OrdenCancelada
	}
	return siguienteEstado[actual] == nuevo
}

// ── Crear ─────────────────────────────────────────────────────────────────────

func (s *ordenService) Crear(ctx context.Context, actor Actor, req dto.CrearOrdenRequest) (*dto.OrdenResponse, error) {
	var mesaID *uuid.UUID
	if req.MesaID != nil {
		id, err := uuid.Parse(*req.MesaID)
		if err != nil {
			return nil, apierror.Validation("mesa_id inválido")
		}
		mesaID = &id
	}
	var bartenderID *uuid.UUID
	if req.BartenderID != nil {
		id, err := uuid.Parse(*req.BartenderID)
		if err != nil {
			return nil, apierror.Validation("bartender_id inválido")
		}
		bartenderID = &id
	}

	// Resolve products and compute server-side prices (pre-flight, outside TX).
	type resolvedLine struct {
		producto   *model.Producto
		cantidad   int
		notas      *string
		complement bool
		// complementDe is the zero-based index of the principal line
		complementDe *int
		precio       decimal.Decimal
		subtotal     decimal.Decimal
	}

	resolved := make([]resolvedLine, 0, len(req.Items))
	subtotal := decimal.Zero

	for i, item := range req.Items {
		pid, err := uuid.Parse(item.ProductoID)
		if err != nil {
			return nil, apierror.Validation(fmt.Sprintf("producto_id inválido en línea %d", i))
		}
		p, err := s.productoRepo.FindByID(ctx, pid)
		if err != nil || p == nil {
			return nil, apierror.Validation(fmt.Sprintf("producto %s no existe", item.ProductoID))
		}
		if !p.Activo {
			return nil, apierror.Validation(fmt.Sprintf("producto %s está inactivo", p.Nombre))
		}

		line := resolvedLine{
			producto:     p,
			cantidad:     item.Cantidad,
			notas:        item.Notas,
			complement:   item.EsComplementoGratis,
			complementDe: item.ComplementoDe,
			precio:       PrecioUnitario(p),
		}
		if item.EsComplementoGratis {
			if item.ComplementoDe == nil {
				return nil, apierror.Validation(fmt.Sprintf("línea %d es complemento sin línea principal", i))
			}
			ref := *item.ComplementoDe
			if ref < 0 || ref >= len(req.Items) || ref == i || req.Items[ref].EsComplementoGratis {
				return nil, apierror.Validation(fmt.Sprintf("complemento en línea %d referencia una línea principal inválida", i))
			}
			line.subtotal = decimal.Zero
		} else {
			line.subtotal = PrecioLinea(p, item.Cantidad)
			subtotal = subtotal.Add(line.subtotal)
		}
		resolved = append(resolved, line)
	}

	var orden model.Orden
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// Occupy the table first, under lock: at most one active order per
		// mesa, and only a disponible table can be taken.
		if mesaID != nil {
			mesa, err := s.mesaRepo.FindByIDTx(tx, *mesaID)
			if err != nil || mesa == nil {
				return apierror.Validation("mesa no existe")
			}
			if mesa.Estado != model.MesaDisponible {
				return apierror.Conflict("mesa no disponible")
			}
			if err := s.mesaRepo.UpdateEstadoTx(tx, *mesaID, model.MesaOcupada); err != nil {
				return err
			}
		}

		numero, err := s.repo.NextNumero(ctx, tx)
		if err != nil {
			return err
		}

		orden = model.Orden{
			Numero:      numero,
			MesaID:      mesaID,
			CreadoPorID: actor.ID,
			BartenderID: bartenderID,
			Estado:      model.OrdenPendiente,
			Subtotal:    subtotal,
			Propina:     decimal.Zero,
			Total:       subtotal,
			Notas:       req.Notas,
		}
		for _, l := range resolved {
			orden.Items = append(orden.Items, model.ItemOrden{
				ProductoID:          l.producto.ID,
				Cantidad:            l.cantidad,
				PrecioUnitario:      l.precio,
				Subtotal:            l.subtotal,
				Notas:               l.notas,
				EsComplementoGratis: l.complement,
			})
		}
		if err := s.repo.Create(ctx, tx, &orden); err != nil {
			return err
		}

		// Wire complement back-references now that line IDs exist.
		for i, l := range resolved {
			if l.complementDe == nil {
				continue
			}
			principal := orden.Items[*l.complementDe].ID
			orden.Items[i].ComplementoDeID = &principal
			if tx != nil {
				if err := tx.Model(&model.ItemOrden{}).
					Where("id = ?", orden.Items[i].ID).
					Update("complemento_de_id", principal).Error; err != nil {
					return err
				}
			}
		}

		return s.repo.CreateHistorialTx(tx, &model.HistorialOrden{
			OrdenID:   orden.ID,
			UsuarioID: actor.ID,
			Accion:    "creada",
			Detalle:   fmt.Sprintf("Orden #%d creada con %d líneas", numero, len(resolved)),
		})
	})
	if txErr != nil {
		return nil, txErr
	}

	resp := ordenToResponse(&orden)
	for i, l := range resolved {
		resp.Items[i].Producto = l.producto.Nombre
	}
	return resp, nil
}

// ── CambiarEstado ─────────────────────────────────────────────────────────────

func (s *ordenService) CambiarEstado(ctx context.Context, actor Actor, id uuid.UUID, nuevoEstado string) (*dto.OrdenResponse, error) {
	var orden *model.Orden
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		orden, err = s.repo.FindByIDTx(tx, id)
		if err != nil || orden == nil {
			return apierror.NotFound("orden no encontrada")
		}
		if !transicionValida(orden.Estado, nuevoEstado) {
			return apierror.InvalidTransition(
				fmt.Sprintf("transición inválida de %s a %s", orden.Estado, nuevoEstado))
		}

		anterior := orden.Estado
		orden.Estado = nuevoEstado
		if err := s.repo.UpdateTx(tx, orden); err != nil {
			return err
		}

		// La mesa se libera al cancelar, o al entregar una orden ya pagada.
		if orden.MesaID != nil && !orden.OcupaMesa() {
			if err := s.mesaRepo.UpdateEstadoTx(tx, *orden.MesaID, model.MesaDisponible); err != nil {
				return err
			}
		}

		accion := "estado"
		if nuevoEstado == model.OrdenCancelada {
			accion = "cancelada"
		}
		return s.repo.CreateHistorialTx(tx, &model.HistorialOrden{
			OrdenID:   orden.ID,
			UsuarioID: actor.ID,
			Accion:    accion,
			Detalle:   fmt.Sprintf("Estado %s → %s", anterior, nuevoEstado),
		})
	})
	if txErr != nil {
		return nil, txErr
	}
	return ordenToResponse(orden), nil
}

// ── AsignarBartender ──────────────────────────────────────────────────────────

func (s *ordenService) AsignarBartender(ctx context.Context, actor Actor, id uuid.UUID, bartenderID *uuid.UUID) error {
	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		orden, err := s.repo.FindByIDTx(tx, id)
		if err != nil || orden == nil {
			return apierror.NotFound("orden no encontrada")
		}
		orden.BartenderID = bartenderID
		if err := s.repo.UpdateTx(tx, orden); err != nil {
			return err
		}
		detalle := "Bartender desasignado"
		if bartenderID != nil {
			detalle = fmt.Sprintf("Bartender %s asignado", bartenderID)
		}
		return s.repo.CreateHistorialTx(tx, &model.HistorialOrden{
			OrdenID:   orden.ID,
			UsuarioID: actor.ID,
			Accion:    "bartender",
			Detalle:   detalle,
		})
	})
}

// ── Eliminar ──────────────────────────────────────────────────────────────────

// Eliminar borra definitivamente una orden cancelada, junto con su historial e
// items. Es la única escritura destructiva sobre historia del sistema.
func (s *ordenService) Eliminar(ctx context.Context, actor Actor, id uuid.UUID) error {
	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		orden, err := s.repo.FindByIDTx(tx, id)
		if err != nil || orden == nil {
			return apierror.NotFound("orden no encontrada")
		}
		if orden.Estado != model.OrdenCancelada {
			return apierror.Precondition("sólo se puede eliminar una orden cancelada")
		}
		return s.repo.DeleteTx(tx, id)
	})
}

// ── Lecturas ──────────────────────────────────────────────────────────────────

func (s *ordenService) Obtener(ctx context.Context, id uuid.UUID) (*dto.OrdenResponse, error) {
	orden, err := s.repo.FindByID(ctx, id)
	if err != nil || orden == nil {
		return nil, apierror.NotFound("orden no encontrada")
	}
	return ordenToResponse(orden), nil
}

func (s *ordenService) Listar(ctx context.Context, filter dto.OrdenFilter) (*dto.OrdenListResponse, error) {
	ordenes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := &dto.OrdenListResponse{
		Data:  make([]dto.OrdenResponse, 0, len(ordenes)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range ordenes {
		resp.Data = append(resp.Data, *ordenToResponse(&ordenes[i]))
	}
	return resp, nil
}

func (s *ordenService) Historial(ctx context.Context, id uuid.UUID) ([]dto.HistorialOrdenResponse, error) {
	rows, err := s.repo.ListHistorial(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]dto.HistorialOrdenResponse, 0, len(rows))
	for _, h := range rows {
		out = append(out, dto.HistorialOrdenResponse{
			Accion:    h.Accion,
			Detalle:   h.Detalle,
			UsuarioID: h.UsuarioID.String(),
			CreatedAt: h.CreatedAt.Format(time.RFC3339),
		})
	}
	return out, nil
}

// ── helpers ───────────────────────────────────────────────────────────────────

func ordenToResponse(o *model.Orden) *dto.OrdenResponse {
	resp := &dto.OrdenResponse{
		ID:         o.ID.String(),
		Numero:     o.Numero,
		Estado:     o.Estado,
		Pagada:     o.Pagada,
		MetodoPago: o.MetodoPago,
		Subtotal:   o.Subtotal,
		Total:      o.Total,
		Notas:      o.Notas,
		CreatedAt:  o.CreatedAt.Format(time.RFC3339),
	}
	if o.MesaID != nil {
		id := o.MesaID.String()
		resp.MesaID = &id
	}
	if o.BartenderID != nil {
		id := o.BartenderID.String()
		resp.BartenderID = &id
	}
	for _, item := range o.Items {
		ir := dto.ItemOrdenResponse{
			ID:                  item.ID.String(),
			Cantidad:            item.Cantidad,
			PrecioUnitario:      item.PrecioUnitario,
			Subtotal:            item.Subtotal,
			EsComplementoGratis: item.EsComplementoGratis,
			Notas:               item.Notas,
		}
		if item.Producto != nil {
			ir.Producto = item.Producto.Nombre
		}
		resp.Items = append(resp.Items, ir)
	}
	return resp
}
