package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AbrirCajaRequest struct {
	NumeroCaja    int             `json:"numero_caja"   validate:"required,min=1,max=3"`
	MontoInicial  decimal.Decimal `json:"monto_inicial" validate:"min=0"`
	Observaciones *string         `json:"observaciones"`
}

type CerrarCajaRequest struct {
	SesionCajaID  string          `json:"sesion_caja_id" validate:"required,uuid"`
	MontoCierre   decimal.Decimal `json:"monto_cierre"   validate:"min=0"`
	Observaciones *string         `json:"observaciones"`
}

type MovimientoCajaRequest struct {
	SesionCajaID string          `json:"sesion_caja_id" validate:"required,uuid"`
	Tipo         string          `json:"tipo"           validate:"required,oneof=ingreso egreso"`
	MetodoPago   string          `json:"metodo_pago"    validate:"required,oneof=efectivo tarjeta transferencia"`
	Monto        decimal.Decimal `json:"monto"          validate:"required,gt=0"`
	Concepto     string          `json:"concepto"       validate:"required,min=3"`
	Referencia   *string         `json:"referencia"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SesionCajaResponse struct {
	SesionCajaID  string           `json:"sesion_caja_id"`
	NumeroCaja    int              `json:"numero_caja"`
	UsuarioID     string           `json:"usuario_id"`
	MontoInicial  decimal.Decimal  `json:"monto_inicial"`
	Balance       decimal.Decimal  `json:"balance"`
	MontoCierre   *decimal.Decimal `json:"monto_cierre"`
	MontoEsperado *decimal.Decimal `json:"monto_esperado"`
	Diferencia    *decimal.Decimal `json:"diferencia"`
	Estado        string           `json:"estado"`
	Observaciones *string          `json:"observaciones"`
	OpenedAt      string           `json:"opened_at"`
	ClosedAt      *string          `json:"closed_at"`
}

type MovimientoCajaResponse struct {
	ID         string          `json:"id"`
	Tipo       string          `json:"tipo"`
	Monto      decimal.Decimal `json:"monto"`
	MetodoPago string          `json:"metodo_pago"`
	Concepto   string          `json:"concepto"`
	Referencia *string         `json:"referencia"`
	Propina    decimal.Decimal `json:"propina"`
	CreatedAt  string          `json:"created_at"`
}
