package service

import (
	"context"
	"errors"
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

type CajaService interface {
	Abrir(ctx context.Context, actor Actor, req dto.AbrirCajaRequest) (*dto.SesionCajaResponse, error)
	Cerrar(ctx context.Context, actor Actor, req dto.CerrarCajaRequest) (*dto.SesionCajaResponse, error)
	RegistrarMovimiento(ctx context.Context, actor Actor, req dto.MovimientoCajaRequest) error
	Balance(ctx context.Context, sesionID uuid.UUID) (decimal.Decimal, error)
	ObtenerSesion(ctx context.Context, sesionID uuid.UUID) (*dto.SesionCajaResponse, error)
	ListarMovimientos(ctx context.Context, sesionID uuid.UUID) ([]dto.MovimientoCajaResponse, error)
	ListarSesiones(ctx context.Context, page, limit int) ([]dto.SesionCajaResponse, int64, error)
}

type cajaService struct {
	repo        repository.CajaRepository
	numeroCajas int
}

func NewCajaService(repo repository.CajaRepository, numeroCajas int) CajaService {
	return &cajaService{repo: repo, numeroCajas: numeroCajas}
}

// ── Abrir ─────────────────────────────────────────────────────────────────────

func (s *cajaService) Abrir(ctx context.Context, actor Actor, req dto.AbrirCajaRequest) (*dto.SesionCajaResponse, error) {
	if req.NumeroCaja < 1 || req.NumeroCaja > s.numeroCajas {
		return nil, apierror.Validation(fmt.Sprintf("número de caja fuera de rango (1..%d)", s.numeroCajas))
	}
	if req.MontoInicial.IsNegative() {
		return nil, apierror.Validation("el monto inicial no puede ser negativo")
	}
	if actor.Rol == model.RolCajero {
		if actor.CajaAsignada == nil || *actor.CajaAsignada != req.NumeroCaja {
			return nil, apierror.Authorization(
				fmt.Sprintf("la caja %d no está asignada al cajero", req.NumeroCaja))
		}
	}

	sesion := &model.SesionCaja{
		NumeroCaja:    req.NumeroCaja,
		UsuarioID:     actor.ID,
		MontoInicial:  req.MontoInicial,
		Estado:        model.SesionAbierta,
		Observaciones: req.Observaciones,
		OpenedAt:      time.Now(),
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// Application-level check inside the transaction; the partial unique
		// index on (numero_caja) WHERE estado='abierta' is the real guarantee
		// under concurrency.
		if existing, err := s.repo.FindSesionAbiertaPorNumero(ctx, req.NumeroCaja); err == nil && existing != nil {
			return apierror.Conflict(fmt.Sprintf("la caja %d ya tiene una sesión abierta", req.NumeroCaja))
		}
		if err := s.repo.CreateSesion(ctx, tx, sesion); err != nil {
			// The partial unique index surfaces a concurrent open as a
			// duplicated-key error; anything else is a real failure.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apierror.Conflict(fmt.Sprintf("la caja %d ya tiene una sesión abierta", req.NumeroCaja))
			}
			return fmt.Errorf("crear sesión de caja: %w", err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return s.sesionToResponse(ctx, sesion)
}

// ── Cerrar ────────────────────────────────────────────────────────────────────

// Cerrar computes the expected amount by summing the session's ledger and
// persists the audited discrepancy. Diferencia is never recomputed afterwards.
func (s *cajaService) Cerrar(ctx context.Context, actor Actor, req dto.CerrarCajaRequest) (*dto.SesionCajaResponse, error) {
	sesionID, err := uuid.Parse(req.SesionCajaID)
	if err != nil {
		return nil, apierror.Validation("sesion_caja_id inválido")
	}
	if req.MontoCierre.IsNegative() {
		return nil, apierror.Validation("el monto de cierre no puede ser negativo")
	}

	var sesion *model.SesionCaja
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		sesion, err = s.repo.FindSesionByIDTx(tx, sesionID)
		if err != nil || sesion == nil {
			return apierror.NotFound("sesión de caja no encontrada")
		}
		if sesion.Estado != model.SesionAbierta {
			return apierror.Precondition("la sesión ya está cerrada")
		}

		sums, err := s.repo.SumMovimientos(ctx, sesionID)
		if err != nil {
			return err
		}
		esperado := sesion.MontoInicial.Add(sums.Ingresos).Sub(sums.Egresos)
		diferencia := req.MontoCierre.Sub(esperado)
		ahora := time.Now()

		sesion.MontoCierre = &req.MontoCierre
		sesion.MontoEsperado = &esperado
		sesion.Diferencia = &diferencia
		sesion.Estado = model.SesionCerrada
		sesion.ClosedAt = &ahora
		if req.Observaciones != nil {
			sesion.Observaciones = req.Observaciones
		}
		return s.repo.UpdateSesionTx(tx, sesion)
	})
	if txErr != nil {
		return nil, txErr
	}
	return s.sesionToResponse(ctx, sesion)
}

// ── RegistrarMovimiento ───────────────────────────────────────────────────────

// Ingreso / egreso manual. Movements are immutable — no Update/Delete.
func (s *cajaService) RegistrarMovimiento(ctx context.Context, actor Actor, req dto.MovimientoCajaRequest) error {
	sesionID, err := uuid.Parse(req.SesionCajaID)
	if err != nil {
		return apierror.Validation("sesion_caja_id inválido")
	}
	if !req.Monto.IsPositive() {
		return apierror.Validation("el monto debe ser mayor a cero")
	}
	if req.Tipo != model.CajaIngreso && req.Tipo != model.CajaEgreso {
		return apierror.Validation("tipo de movimiento inválido")
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		sesion, err := s.repo.FindSesionByIDTx(tx, sesionID)
		if err != nil || sesion == nil {
			return apierror.NotFound("sesión de caja no encontrada")
		}
		if sesion.Estado != model.SesionAbierta {
			return apierror.Precondition("la sesión de caja no está abierta")
		}
		return s.repo.CreateMovimientoTx(tx, &model.MovimientoCaja{
			SesionCajaID: sesionID,
			Tipo:         req.Tipo,
			Monto:        req.Monto,
			MetodoPago:   req.MetodoPago,
			Concepto:     req.Concepto,
			Referencia:   req.Referencia,
			Propina:      decimal.Zero,
			UsuarioID:    actor.ID,
		})
	})
}

// ── Balance ───────────────────────────────────────────────────────────────────

// Balance is always derived by summation over the ledger at read time, never
// cached, so backfilled corrections self-correct.
func (s *cajaService) Balance(ctx context.Context, sesionID uuid.UUID) (decimal.Decimal, error) {
	sesion, err := s.repo.FindSesionByID(ctx, sesionID)
	if err != nil || sesion == nil {
		return decimal.Zero, apierror.NotFound("sesión de caja no encontrada")
	}
	sums, err := s.repo.SumMovimientos(ctx, sesionID)
	if err != nil {
		return decimal.Zero, err
	}
	return sesion.MontoInicial.Add(sums.Ingresos).Sub(sums.Egresos), nil
}

// ── Lecturas ──────────────────────────────────────────────────────────────────

func (s *cajaService) ObtenerSesion(ctx context.Context, sesionID uuid.UUID) (*dto.SesionCajaResponse, error) {
	sesion, err := s.repo.FindSesionByID(ctx, sesionID)
	if err != nil || sesion == nil {
		return nil, apierror.NotFound("sesión de caja no encontrada")
	}
	return s.sesionToResponse(ctx, sesion)
}

func (s *cajaService) ListarMovimientos(ctx context.Context, sesionID uuid.UUID) ([]dto.MovimientoCajaResponse, error) {
	movs, err := s.repo.ListMovimientos(ctx, sesionID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovimientoCajaResponse, 0, len(movs))
	for _, m := range movs {
		out = append(out, dto.MovimientoCajaResponse{
			ID:         m.ID.String(),
			Tipo:       m.Tipo,
			Monto:      m.Monto,
			MetodoPago: m.MetodoPago,
			Concepto:   m.Concepto,
			Referencia: m.Referencia,
			Propina:    m.Propina,
			CreatedAt:  m.CreatedAt.Format(time.RFC3339),
		})
	}
	return out, nil
}

func (s *cajaService) ListarSesiones(ctx context.Context, page, limit int) ([]dto.SesionCajaResponse, int64, error) {
	sesiones, total, err := s.repo.ListSesiones(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.SesionCajaResponse, 0, len(sesiones))
	for i := range sesiones {
		resp, err := s.sesionToResponse(ctx, &sesiones[i])
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *resp)
	}
	return out, total, nil
}

// ── helpers ───────────────────────────────────────────────────────────────────

func (s *cajaService) sesionToResponse(ctx context.Context, sesion *model.SesionCaja) (*dto.SesionCajaResponse, error) {
	sums, err := s.repo.SumMovimientos(ctx, sesion.ID)
	if err != nil {
		return nil, err
	}
	resp := &dto.SesionCajaResponse{
		SesionCajaID:  sesion.ID.String(),
		NumeroCaja:    sesion.NumeroCaja,
		UsuarioID:     sesion.UsuarioID.String(),
		MontoInicial:  sesion.MontoInicial,
		Balance:       sesion.MontoInicial.Add(sums.Ingresos).Sub(sums.Egresos),
		MontoCierre:   sesion.MontoCierre,
		MontoEsperado: sesion.MontoEsperado,
		Diferencia:    sesion.Diferencia,
		Estado:        sesion.Estado,
		Observaciones: sesion.Observaciones,
		OpenedAt:      sesion.OpenedAt.Format(time.RFC3339),
	}
	if sesion.ClosedAt != nil {
		t := sesion.ClosedAt.Format(time.RFC3339)
		resp.ClosedAt = &t
	}
	return resp, nil
}
