package repository

import (
	"context"

	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/dto"
	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductoRepository defines the data access contract for products and their
// owned Stock / ComboComponente rows. Services depend on this interface, not
// on the concrete GORM implementation, enabling clean unit testing via mocks.
type ProductoRepository interface {
	Create(ctx context.Context, p *model.Producto) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error)
	List(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error)

	// FindStockTx locks a product's stock row FOR UPDATE inside tx.
	FindStockTx(tx *gorm.DB, productoID uuid.UUID) (*model.Stock, error)
	// UpdateStockTx applies a signed delta to the locked stock row.
	UpdateStockTx(tx *gorm.DB, productoID uuid.UUID, delta int) error
	// SetStockTx sets an absolute quantity (physical-inventory adjustment).
	SetStockTx(tx *gorm.DB, productoID uuid.UUID, cantidad int) error

	ListComponentes(ctx context.Context, comboID uuid.UUID) ([]model.ComboComponente, error)
	// ListBajoMinimo returns products at or below their stock floor.
	ListBajoMinimo(ctx context.Context) ([]model.Producto, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productoRepo struct{ db *gorm.DB }

func NewProductoRepository(db *gorm.DB) ProductoRepository { return &productoRepo{db: db} }

func (r *productoRepo) DB() *gorm.DB { return r.db }

// Create inserts the product and, for non-combos, its Stock row in one
// transaction so the one-to-one relation can never be absent.
func (r *productoRepo) Create(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Stock", "Componentes").Create(p).Error; err != nil {
			return err
		}
		if !p.EsCombo {
			if p.Stock == nil {
				p.Stock = &model.Stock{}
			}
			p.Stock.ProductoID = p.ID
			if err := tx.Create(p.Stock).Error; err != nil {
				return err
			}
		}
		for i := range p.Componentes {
			p.Componentes[i].ComboID = p.ID
			if err := tx.Create(&p.Componentes[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *productoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).
		Preload("Stock").
		Preload("Componentes.Componente.Stock").
		First(&p, id).Error
	return &p, err
}

func (r *productoRepo) List(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error) {
	var productos []model.Producto
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Producto{})

	switch filter.Activo {
	case "false":
		q = q.Where("activo = false")
	case "all":
		// no filter
	default:
		q = q.Where("activo = true")
	}
	if filter.Nombre != "" {
		q = q.Where("nombre ILIKE ?", "%"+filter.Nombre+"%")
	}
	if filter.Categoria != "" {
		q = q.Where("categoria = ?", filter.Categoria)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Stock").Preload("Componentes.Componente").
		Order("nombre ASC").Limit(filter.Limit).Offset(offset).
		Find(&productos).Error
	return productos, total, err
}

func (r *productoRepo) FindStockTx(tx *gorm.DB, productoID uuid.UUID) (*model.Stock, error) {
	var s model.Stock
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("producto_id = ?", productoID).First(&s).Error
	return &s, err
}

func (r *productoRepo) UpdateStockTx(tx *gorm.DB, productoID uuid.UUID, delta int) error {
	return tx.Model(&model.Stock{}).Where("producto_id = ?", productoID).
		Update("cantidad", gorm.Expr("cantidad + ?", delta)).Error
}

func (r *productoRepo) SetStockTx(tx *gorm.DB, productoID uuid.UUID, cantidad int) error {
	return tx.Model(&model.Stock{}).Where("producto_id = ?", productoID).
		Update("cantidad", cantidad).Error
}

func (r *productoRepo) ListComponentes(ctx context.Context, comboID uuid.UUID) ([]model.ComboComponente, error) {
	var comps []model.ComboComponente
	err := r.db.WithContext(ctx).
		Preload("Componente.Stock").
		Where("combo_id = ?", comboID).
		Find(&comps).Error
	return comps, err
}

func (r *productoRepo) ListBajoMinimo(ctx context.Context) ([]model.Producto, error) {
	var productos []model.Producto
	err := r.db.WithContext(ctx).
		Joins("JOIN stocks ON stocks.producto_id = productos.id").
		Where("productos.activo = true AND stocks.cantidad <= stocks.stock_minimo").
		Preload("Stock").
		Find(&productos).Error
	return productos, err
}
