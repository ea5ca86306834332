package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Producto represents both simple products and combos. A combo owns
// ComboComponente rows and carries no stock of its own — its availability is
// derived from component stock at read time.
type Producto struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Codigo      string    `gorm:"uniqueIndex;not null"`
	Nombre      string    `gorm:"index;not null"`
	Descripcion *string
	Categoria   string          `gorm:"not null;index"`
	PrecioCosto decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	PrecioVenta decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	EsCombo     bool            `gorm:"not null;default:false"`
	Activo      bool            `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Stock is mandatory for non-combo products and created atomically with
	// the product row. Combos have no Stock.
	Stock       *Stock            `gorm:"foreignKey:ProductoID"`
	Componentes []ComboComponente `gorm:"foreignKey:ComboID"`
}

func (Producto) TableName() string { return "productos" }

// ComboComponente is one component of a combo product: the component product
// and the quantity consumed per combo unit sold.
type ComboComponente struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ComboID      uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_combo_componente;not null"`
	ComponenteID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_combo_componente;not null"`
	Cantidad     int       `gorm:"not null"`

	Componente *Producto `gorm:"foreignKey:ComponenteID"`
}

func (ComboComponente) TableName() string { return "combo_componentes" }

// Stock is the one-to-one on-hand record of a non-combo product. The relation
// is owned and strongly typed — there is no scalar fallback shape.
type Stock struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID  uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	Cantidad    int       `gorm:"not null;default:0"`
	StockMinimo int       `gorm:"not null;default:5"`
	StockMaximo int       `gorm:"not null;default:100"`
	Ubicacion   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Stock) TableName() string { return "stocks" }
