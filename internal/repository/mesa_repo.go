package repository

import (
	"context"

	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MesaRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Mesa, error)
	// FindByIDTx locks the table row FOR UPDATE inside tx
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Mesa, error)
	UpdateEstadoTx(tx *gorm.DB, id uuid.UUID, estado string) error
	List(ctx context.Context) ([]model.Mesa, error)
}

type mesaRepo struct{ db *gorm.DB }

func NewMesaRepository(db *gorm.DB) MesaRepository { return &mesaRepo{db: db} }

func (r *mesaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Mesa, error) {
	var m model.Mesa
	err := r.db.WithContext(ctx).First(&m, id).Error
	return &m, err
}

func (r *mesaRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Mesa, error) {
	var m model.Mesa
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&m, id).Error
	return &m, err
}

func (r *mesaRepo) UpdateEstadoTx(tx *gorm.DB, id uuid.UUID, estado string) error {
	return tx.Model(&model.Mesa{}).Where("id = ?", id).Update("estado", estado).Error
}

func (r *mesaRepo) List(ctx context.Context) ([]model.Mesa, error) {
	var mesas []model.Mesa
	err := r.db.WithContext(ctx).Where("activo = true").Order("numero ASC").Find(&mesas).Error
	return mesas, err
}
