package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// CobrarOrdenRequest settles an order against an open register session.
type CobrarOrdenRequest struct {
	OrdenID       string          `json:"orden_id"       validate:"required,uuid"`
	MetodoPago    string          `json:"metodo_pago"    validate:"required,oneof=efectivo tarjeta transferencia"`
	MontoRecibido decimal.Decimal `json:"monto_recibido" validate:"required"`
	SesionCajaID  string          `json:"sesion_caja_id" validate:"required,uuid"`
	Propina       decimal.Decimal `json:"propina"        validate:"min=0"`
	// ClienteEmail: optional — when present, the comprobante worker mails the
	// PDF receipt after generation.
	ClienteEmail *string `json:"cliente_email" validate:"omitempty,email"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CobrarOrdenResponse struct {
	OrdenID      string          `json:"orden_id"`
	NumeroOrden  int             `json:"numero_orden"`
	TotalCobrado decimal.Decimal `json:"total_cobrado"`
	Propina      decimal.Decimal `json:"propina"`
	Vuelto       decimal.Decimal `json:"vuelto"`
	// ComprobanteID references the receipt record for printing
	ComprobanteID string `json:"comprobante_id"`
}

type ComprobanteResponse struct {
	ID          string          `json:"id"`
	OrdenID     string          `json:"orden_id"`
	NumeroOrden int             `json:"numero_orden"`
	MontoTotal  decimal.Decimal `json:"monto_total"`
	Propina     decimal.Decimal `json:"propina"`
	MetodoPago  string          `json:"metodo_pago"`
	Estado      string          `json:"estado"`
	PDFPath     *string         `json:"pdf_path"`
	CreatedAt   string          `json:"created_at"`
}
