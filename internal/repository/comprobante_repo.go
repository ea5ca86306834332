package repository

import (
	"context"
	"errors"
	"time"

	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/model"

	"gorm.io/gorm"
)

type ComprobanteRepository interface {
	CreateTx(tx *gorm.DB, c *model.Comprobante) error
	FindByID(ctx context.Context, id string) (*model.Comprobante, error)
	FindByOrdenID(ctx context.Context, ordenID string) (*model.Comprobante, error)
	Update(ctx context.Context, c *model.Comprobante) error
	// FindPendingRetries returns failed comprobantes whose next_retry_at has
	// passed, for the retry cron to re-enqueue.
	FindPendingRetries(ctx context.Context, now time.Time, limit int) ([]model.Comprobante, error)
	// FindStalePendientes returns comprobantes still pendiente past olderThan:
	// their enqueue was lost before any worker picked them up.
	FindStalePendientes(ctx context.Context, olderThan time.Time, limit int) ([]model.Comprobante, error)
}

type comprobanteRepo struct{ db *gorm.DB }

func NewComprobanteRepository(db *gorm.DB) ComprobanteRepository {
	return &comprobanteRepo{db: db}
}

func (r *comprobanteRepo) CreateTx(tx *gorm.DB, c *model.Comprobante) error {
	return tx.Create(c).Error
}

func (r *comprobanteRepo) FindByID(ctx context.Context, id string) (*model.Comprobante, error) {
	var c model.Comprobante
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &c, err
}

func (r *comprobanteRepo) FindByOrdenID(ctx context.Context, ordenID string) (*model.Comprobante, error) {
	var c model.Comprobante
	err := r.db.WithContext(ctx).First(&c, "orden_id = ?", ordenID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &c, err
}

func (r *comprobanteRepo) Update(ctx context.Context, c *model.Comprobante) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *comprobanteRepo) FindPendingRetries(ctx context.Context, now time.Time, limit int) ([]model.Comprobante, error) {
	var comprobantes []model.Comprobante
	err := r.db.WithContext(ctx).
		Where("estado = ? AND next_retry_at IS NOT NULL AND next_retry_at <= ?", "error", now).
		Order("next_retry_at").
		Limit(limit).
		Find(&comprobantes).Error
	return comprobantes, err
}

func (r *comprobanteRepo) FindStalePendientes(ctx context.Context, olderThan time.Time, limit int) ([]model.Comprobante, error) {
	var comprobantes []model.Comprobante
	err := r.db.WithContext(ctx).
		Where("estado = ? AND updated_at <= ?", "pendiente", olderThan).
		Order("updated_at").
		Limit(limit).
		Find(&comprobantes).Error
	return comprobantes, err
}
