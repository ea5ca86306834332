package repository

import (
	"context"

	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/dto"
	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/model"

	"gorm.io/gorm"
)

// MovimientoInventarioRepository is the append-only inventory ledger.
// There is no Update or Delete on purpose — compile-time immutability.
type MovimientoInventarioRepository interface {
	CreateTx(tx *gorm.DB, m *model.MovimientoInventario) error
	List(ctx context.Context, filter dto.MovimientoFilter) ([]model.MovimientoInventario, int64, error)
}

type movimientoInventarioRepo struct{ db *gorm.DB }

func NewMovimientoInventarioRepository(db *gorm.DB) MovimientoInventarioRepository {
	return &movimientoInventarioRepo{db: db}
}

func (r *movimientoInventarioRepo) CreateTx(tx *gorm.DB, m *model.MovimientoInventario) error {
	return tx.Create(m).Error
}

func (r *movimientoInventarioRepo) List(ctx context.Context, filter dto.MovimientoFilter) ([]model.MovimientoInventario, int64, error) {
	var movs []model.MovimientoInventario
	var total int64

	q := r.db.WithContext(ctx).Model(&model.MovimientoInventario{})
	if filter.ProductoID != "" {
		q = q.Where("producto_id = ?", filter.ProductoID)
	}
	if filter.Tipo != "" {
		q = q.Where("tipo = ?", filter.Tipo)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("Producto").
		Order("created_at DESC").
		Offset((filter.Page - 1) * filter.Limit).Limit(filter.Limit).
		Find(&movs).Error
	return movs, total, err
}
