package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	PedidoPendiente = "pendiente"
	PedidoParcial   = "parcial"
	PedidoRecibido  = "recibido"
)

// Pedido is a purchase order to a supplier. Its management (creation,
// supplier CRUD) lives outside this core; here it is only received against.
type Pedido struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProveedorID *uuid.UUID `gorm:"type:uuid;index"`
	Estado      string     `gorm:"type:varchar(20);not null;default:'pendiente'"`
	Notas       *string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Detalles []DetallePedido `gorm:"foreignKey:PedidoID"`
}

func (Pedido) TableName() string { return "pedidos" }

// DetallePedido is one line of a purchase order. CantidadRecibida accumulates
// across partial receipts and never exceeds CantidadPedida.
type DetallePedido struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PedidoID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductoID       uuid.UUID       `gorm:"type:uuid;not null"`
	CantidadPedida   int             `gorm:"not null"`
	CantidadRecibida int             `gorm:"not null;default:0"`
	PrecioUnitario   decimal.Decimal `gorm:"type:decimal(10,2);not null"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (DetallePedido) TableName() string { return "detalles_pedido" }
