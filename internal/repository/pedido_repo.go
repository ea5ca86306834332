package repository

import (
	"context"
	"errors"

	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PedidoRepository interface {
	FindByID(ctx context.Context, id string) (*model.Pedido, error)
	// FindByIDTx locks the purchase order row for the duration of the
	// receiving transaction. Detail lines are loaded after the lock.
	FindByIDTx(tx *gorm.DB, id string) (*model.Pedido, error)
	UpdateDetalleTx(tx *gorm.DB, detalle *model.DetallePedido) error
	UpdateEstadoTx(tx *gorm.DB, id string, estado string) error
	List(ctx context.Context, estado string) ([]model.Pedido, error)
	DB() *gorm.DB
}

type pedidoRepo struct{ db *gorm.DB }

func NewPedidoRepository(db *gorm.DB) PedidoRepository {
	return &pedidoRepo{db: db}
}

func (r *pedidoRepo) DB() *gorm.DB { return r.db }

func (r *pedidoRepo) FindByID(ctx context.Context, id string) (*model.Pedido, error) {
	var p model.Pedido
	err := r.db.WithContext(ctx).
		Preload("Detalles.Producto").
		First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &p, err
}

func (r *pedidoRepo) FindByIDTx(tx *gorm.DB, id string) (*model.Pedido, error) {
	var p model.Pedido
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := tx.Preload("Producto").
		Where("pedido_id = ?", p.ID).
		Find(&p.Detalles).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *pedidoRepo) UpdateDetalleTx(tx *gorm.DB, detalle *model.DetallePedido) error {
	return tx.Model(&model.DetallePedido{}).
		Where("id = ?", detalle.ID).
		Update("cantidad_recibida", detalle.CantidadRecibida).Error
}

func (r *pedidoRepo) UpdateEstadoTx(tx *gorm.DB, id string, estado string) error {
	return tx.Model(&model.Pedido{}).
		Where("id = ?", id).
		Update("estado", estado).Error
}

func (r *pedidoRepo) List(ctx context.Context, estado string) ([]model.Pedido, error) {
	var pedidos []model.Pedido
	q := r.db.WithContext(ctx).Preload("Detalles.Producto").Order("created_at DESC")
	if estado != "" {
		q = q.Where("estado = ?", estado)
	}
	err := q.Find(&pedidos).Error
	return pedidos, err
}
