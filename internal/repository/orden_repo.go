package repository

import (
	"context"

	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/dto"
	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrdenRepository interface {
	Create(ctx context.Context, tx *gorm.DB, o *model.Orden) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Orden, error)
	// FindByIDTx locks the order row FOR UPDATE inside tx
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Orden, error)
	UpdateTx(tx *gorm.DB, o *model.Orden) error
	NextNumero(ctx context.Context, tx *gorm.DB) (int, error)
	List(ctx context.Context, filter dto.OrdenFilter) ([]model.Orden, int64, error)
	// FindActivaPorMesa returns the order currently tying up a table, if any
	FindActivaPorMesa(ctx context.Context, mesaID uuid.UUID) (*model.Orden, error)
	DeleteTx(tx *gorm.DB, id uuid.UUID) error
	CreateHistorialTx(tx *gorm.DB, h *model.HistorialOrden) error
	ListHistorial(ctx context.Context, ordenID uuid.UUID) ([]model.HistorialOrden, error)
	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type ordenRepo struct{ db *gorm.DB }

func NewOrdenRepository(db *gorm.DB) OrdenRepository { return &ordenRepo{db: db} }

func (r *ordenRepo) DB() *gorm.DB { return r.db }

func (r *ordenRepo) Create(ctx context.Context, tx *gorm.DB, o *model.Orden) error {
	return tx.WithContext(ctx).Create(o).Error
}

func (r *ordenRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Orden, error) {
	var o model.Orden
	err := r.db.WithContext(ctx).Preload("Items.Producto").First(&o, id).Error
	return &o, err
}

func (r *ordenRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Orden, error) {
	var o model.Orden
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&o, id).Error
	if err != nil {
		return nil, err
	}
	// Items are loaded without the lock — only the order row is contended
	err = tx.Preload("Producto").Where("orden_id = ?", id).Find(&o.Items).Error
	return &o, err
}

func (r *ordenRepo) UpdateTx(tx *gorm.DB, o *model.Orden) error {
	return tx.Omit("Items", "Historial", "Mesa").Save(o).Error
}

func (r *ordenRepo) NextNumero(ctx context.Context, tx *gorm.DB) (int, error) {
	// PostgreSQL sequence keeps numbering gap-free enough and race-free
	var num int
	err := tx.WithContext(ctx).Raw("SELECT nextval('ordenes_numero_seq')").Scan(&num).Error
	return num, err
}

func (r *ordenRepo) List(ctx context.Context, filter dto.OrdenFilter) ([]model.Orden, int64, error) {
	var ordenes []model.Orden
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Orden{})

	if filter.Estado != "" && filter.Estado != "all" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.Fecha != "" {
		q = q.Where("DATE(created_at) = ?", filter.Fecha)
	} else {
		q = q.Where("DATE(created_at) = CURRENT_DATE")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Items.Producto").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&ordenes).Error
	return ordenes, total, err
}

func (r *ordenRepo) FindActivaPorMesa(ctx context.Context, mesaID uuid.UUID) (*model.Orden, error) {
	var o model.Orden
	err := r.db.WithContext(ctx).
		Where("mesa_id = ? AND estado <> ? AND NOT (estado = ? AND pagada)",
			mesaID, model.OrdenCancelada, model.OrdenEntregada).
		First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *ordenRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	if err := tx.Where("orden_id = ?", id).Delete(&model.HistorialOrden{}).Error; err != nil {
		return err
	}
	if err := tx.Where("orden_id = ?", id).Delete(&model.ItemOrden{}).Error; err != nil {
		return err
	}
	return tx.Delete(&model.Orden{}, id).Error
}

func (r *ordenRepo) CreateHistorialTx(tx *gorm.DB, h *model.HistorialOrden) error {
	return tx.Create(h).Error
}

func (r *ordenRepo) ListHistorial(ctx context.Context, ordenID uuid.UUID) ([]model.HistorialOrden, error) {
	var hist []model.HistorialOrden
	err := r.db.WithContext(ctx).
		Where("orden_id = ?", ordenID).
		Order("created_at ASC").
		Find(&hist).Error
	return hist, err
}
