package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Comprobante stores the internal receipt generated after an order is paid.
// Estado: "pendiente" | "emitido" | "error"
type Comprobante struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrdenID     uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null"`
	NumeroOrden int             `gorm:"not null"`
	MontoTotal  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Propina     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	MetodoPago  string          `gorm:"type:varchar(20);not null"`
	Estado      string          `gorm:"type:varchar(20);not null;default:'pendiente'"`
	// PDFPath is relative to PDF_STORAGE_PATH
	PDFPath *string `gorm:"column:pdf_path"`
	// Retry fields — used by retry_cron to re-attempt failed PDF generation
	RetryCount  int        `gorm:"not null;default:0"`
	NextRetryAt *time.Time `gorm:"column:next_retry_at"`
	LastError   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Comprobante) TableName() string { return "comprobantes" }
