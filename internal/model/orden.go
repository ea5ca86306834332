package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Estados del ciclo de vida de una orden. Forward-only:
// pendiente → en_proceso → lista → entregada, con cancelada alcanzable desde
// cualquier estado no terminal. Una orden nunca revive después de
// entregada/cancelada.
const (
	OrdenPendiente = "pendiente"
	OrdenEnProceso = "en_proceso"
	OrdenLista     = "lista"
	OrdenEntregada = "entregada"
	OrdenCancelada = "cancelada"
)

// Orden represents an in-progress or historical sale.
// Pagada only flips to true through the settlement path (FacturacionService);
// a paid order re-enters "pendiente" because payment may happen before or
// during preparation.
type Orden struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	// Numero is the human-readable sequential ticket number (PG sequence)
	Numero      int        `gorm:"uniqueIndex;not null"`
	MesaID      *uuid.UUID `gorm:"type:uuid;index"`
	CreadoPorID uuid.UUID  `gorm:"type:uuid;not null"`
	// BartenderID is the assigned preparer; nil = unassigned
	BartenderID *uuid.UUID      `gorm:"type:uuid;index"`
	Estado      string          `gorm:"type:varchar(20);not null;default:'pendiente';index"`
	Pagada      bool            `gorm:"not null;default:false"`
	MetodoPago  *string         `gorm:"type:varchar(20)"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Propina     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Total       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Notas       *string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Mesa      *Mesa            `gorm:"foreignKey:MesaID"`
	Items     []ItemOrden      `gorm:"foreignKey:OrdenID"`
	Historial []HistorialOrden `gorm:"foreignKey:OrdenID"`
}

func (Orden) TableName() string { return "ordenes" }

// EsTerminal reports whether the order can no longer change state.
func (o *Orden) EsTerminal() bool {
	return o.Estado == OrdenEntregada || o.Estado == OrdenCancelada
}

// OcupaMesa reports whether this order still ties up its table.
// Delivered-and-paid and cancelled orders release the table; everything else
// keeps it occupied.
func (o *Orden) OcupaMesa() bool {
	if o.MesaID == nil {
		return false
	}
	switch o.Estado {
	case OrdenCancelada:
		return false
	case OrdenEntregada:
		return !o.Pagada
	default:
		return true
	}
}

// ItemOrden is one line of an order. Complement lines (cortesías that
// accompany a paid bottle, e.g. mixers) never count toward the subtotal and
// always back-reference the principal line they accompany.
type ItemOrden struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrdenID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductoID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Cantidad       int             `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Notas          *string
	// EsComplementoGratis marks a free complement line; Subtotal is always 0
	EsComplementoGratis bool       `gorm:"not null;default:false"`
	ComplementoDeID     *uuid.UUID `gorm:"type:uuid"`
	CreatedAt           time.Time

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (ItemOrden) TableName() string { return "items_orden" }

// HistorialOrden registra cada cambio sobre una orden. Los registros son
// inmutables; sólo se eliminan en cascada al borrar una orden cancelada.
type HistorialOrden struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrdenID   uuid.UUID `gorm:"type:uuid;not null;index"`
	UsuarioID uuid.UUID `gorm:"type:uuid;not null"`
	// Accion: "creada" | "estado" | "pago" | "bartender" | "cancelada"
	Accion    string `gorm:"type:varchar(20);not null"`
	Detalle   string `gorm:"not null"`
	CreatedAt time.Time
}

func (HistorialOrden) TableName() string { return "historial_ordenes" }
