package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario. Cantidad se guarda siempre positiva;
// el signo lo implica el tipo (entrada/ajuste-positivo suman, salida/venta
// restan, venta_combo es informativo y no afecta stock).
const (
	MovEntrada    = "entrada"
	MovSalida     = "salida"
	MovAjuste     = "ajuste"
	MovVenta      = "venta"
	MovVentaCombo = "venta_combo"
)

// MovimientoInventario registra cada cambio de stock en un producto.
// Append-only: los registros nunca se modifican ni eliminan — cada mutación
// de stock se empareja con exactamente una fila de este ledger.
type MovimientoInventario struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID uuid.UUID `gorm:"type:uuid;not null;index"`
	Tipo       string    `gorm:"type:varchar(20);not null"`
	Cantidad   int       `gorm:"not null"`
	// StockAnterior/StockNuevo snapshot the on-hand quantity around the
	// mutation; both are 0 for venta_combo (informational) movements.
	StockAnterior  int              `gorm:"not null"`
	StockNuevo     int              `gorm:"not null"`
	PrecioUnitario *decimal.Decimal `gorm:"type:decimal(10,2)"`
	UsuarioID      uuid.UUID        `gorm:"type:uuid;not null"`
	PedidoID       *uuid.UUID       `gorm:"type:uuid"`
	Motivo         string
	// Sobrevendido flags a sale deduction that drove stock below zero.
	// Sales are never blocked on stock; the inconsistency is recorded here
	// and alerted instead.
	Sobrevendido bool `gorm:"not null;default:false"`
	CreatedAt    time.Time

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (MovimientoInventario) TableName() string { return "movimientos_inventario" }
