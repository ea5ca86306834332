package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	SesionAbierta = "abierta"
	SesionCerrada = "cerrada"
)

// SesionCaja represents the lifecycle of a cash register session. There are
// exactly NumeroCajas physical registers; at most one open session per
// register number (enforced by a partial unique index, see infra/database.go).
type SesionCaja struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NumeroCaja   int             `gorm:"not null;index"`
	UsuarioID    uuid.UUID       `gorm:"type:uuid;not null"`
	MontoInicial decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// MontoCierre and Diferencia are persisted at close time; Diferencia is
	// the audited discrepancy (cierre − esperado) and is never recomputed.
	MontoCierre   *decimal.Decimal `gorm:"type:decimal(12,2)"`
	MontoEsperado *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Diferencia    *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Estado        string           `gorm:"type:varchar(20);not null;default:'abierta'"`
	Observaciones *string
	OpenedAt      time.Time
	ClosedAt      *time.Time

	Movimientos []MovimientoCaja `gorm:"foreignKey:SesionCajaID"`
}

func (SesionCaja) TableName() string { return "sesiones_caja" }

const (
	CajaIngreso = "ingreso"
	CajaEgreso  = "egreso"
)

// MovimientoCaja is an immutable event in the cash register ledger.
// The session balance is never stored — it is always derived as
// inicial + Σingreso − Σegreso over these rows, so backfilled corrections
// self-correct.
type MovimientoCaja struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SesionCajaID uuid.UUID       `gorm:"type:uuid;index;not null"`
	Tipo         string          `gorm:"type:varchar(10);not null"` // ingreso | egreso
	Monto        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MetodoPago   string          `gorm:"type:varchar(20);not null"`
	Concepto     string          `gorm:"not null"`
	// Referencia links to the originating orden number, if any
	Referencia *string         `gorm:"type:varchar(40)"`
	Propina    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	UsuarioID  uuid.UUID       `gorm:"type:uuid;not null"`
	CreatedAt  time.Time
}

func (MovimientoCaja) TableName() string { return "movimientos_caja" }
