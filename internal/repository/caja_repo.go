package repository

import (
	"context"

	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SumasCaja aggregates a session's movements by direction.
type SumasCaja struct {
	Ingresos decimal.Decimal
	Egresos  decimal.Decimal
	Propinas decimal.Decimal
}

type CajaRepository interface {
	CreateSesion(ctx context.Context, tx *gorm.DB, s *model.SesionCaja) error
	FindSesionAbiertaPorNumero(ctx context.Context, numeroCaja int) (*model.SesionCaja, error)
	FindSesionByID(ctx context.Context, id uuid.UUID) (*model.SesionCaja, error)
	// FindSesionByIDTx locks the session row FOR UPDATE inside tx
	FindSesionByIDTx(tx *gorm.DB, id uuid.UUID) (*model.SesionCaja, error)
	UpdateSesionTx(tx *gorm.DB, s *model.SesionCaja) error
	CreateMovimientoTx(tx *gorm.DB, m *model.MovimientoCaja) error
	ListMovimientos(ctx context.Context, sesionID uuid.UUID) ([]model.MovimientoCaja, error)
	// SumMovimientos aggregates ingresos/egresos over the ledger at read time.
	SumMovimientos(ctx context.Context, sesionID uuid.UUID) (*SumasCaja, error)
	ListSesiones(ctx context.Context, page, limit int) ([]model.SesionCaja, int64, error)
	DB() *gorm.DB
}

type cajaRepo struct{ db *gorm.DB }

func NewCajaRepository(db *gorm.DB) CajaRepository { return &cajaRepo{db: db} }

func (r *cajaRepo) DB() *gorm.DB { return r.db }

func (r *cajaRepo) CreateSesion(ctx context.Context, tx *gorm.DB, s *model.SesionCaja) error {
	return tx.WithContext(ctx).Create(s).Error
}

func (r *cajaRepo) FindSesionAbiertaPorNumero(ctx context.Context, numeroCaja int) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := r.db.WithContext(ctx).
		Where("numero_caja = ? AND estado = ?", numeroCaja, model.SesionAbierta).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *cajaRepo) FindSesionByID(ctx context.Context, id uuid.UUID) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := r.db.WithContext(ctx).First(&s, id).Error
	return &s, err
}

func (r *cajaRepo) FindSesionByIDTx(tx *gorm.DB, id uuid.UUID) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&s, id).Error
	return &s, err
}

func (r *cajaRepo) UpdateSesionTx(tx *gorm.DB, s *model.SesionCaja) error {
	return tx.Omit("Movimientos").Save(s).Error
}

func (r *cajaRepo) CreateMovimientoTx(tx *gorm.DB, m *model.MovimientoCaja) error {
	return tx.Create(m).Error
}

func (r *cajaRepo) ListMovimientos(ctx context.Context, sesionID uuid.UUID) ([]model.MovimientoCaja, error) {
	var movs []model.MovimientoCaja
	err := r.db.WithContext(ctx).
		Where("sesion_caja_id = ?", sesionID).
		Order("created_at ASC").
		Find(&movs).Error
	return movs, err
}

func (r *cajaRepo) SumMovimientos(ctx context.Context, sesionID uuid.UUID) (*SumasCaja, error) {
	type row struct {
		Tipo     string
		Monto    decimal.Decimal
		Propinas decimal.Decimal
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&model.MovimientoCaja{}).
		Select("tipo, COALESCE(SUM(monto), 0) AS monto, COALESCE(SUM(propina), 0) AS propinas").
		Where("sesion_caja_id = ?", sesionID).
		Group("tipo").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	sumas := &SumasCaja{
		Ingresos: decimal.Zero,
		Egresos:  decimal.Zero,
		Propinas: decimal.Zero,
	}
	for _, rw := range rows {
		switch rw.Tipo {
		case model.CajaIngreso:
			sumas.Ingresos = sumas.Ingresos.Add(rw.Monto)
		case model.CajaEgreso:
			sumas.Egresos = sumas.Egresos.Add(rw.Monto)
		}
		sumas.Propinas = sumas.Propinas.Add(rw.Propinas)
	}
	return sumas, nil
}

func (r *cajaRepo) ListSesiones(ctx context.Context, page, limit int) ([]model.SesionCaja, int64, error) {
	var sesiones []model.SesionCaja
	var total int64

	q := r.db.WithContext(ctx).Model(&model.SesionCaja{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("opened_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&sesiones).Error
	return sesiones, total, err
}
