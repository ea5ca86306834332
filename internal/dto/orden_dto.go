package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// ItemOrdenRequest is one line of a new order. Prices are NEVER taken from the
// client — the server resolves them from the catalog and applies promotions.
type ItemOrdenRequest struct {
	ProductoID string  `json:"producto_id" validate:"required,uuid"`
	Cantidad   int     `json:"cantidad"    validate:"required,min=1"`
	Notas      *string `json:"notas"`
	// EsComplementoGratis marks a cortesía; ComplementoDe is the zero-based
	// index of the principal line in this request it accompanies.
	EsComplementoGratis bool `json:"es_complemento_gratis"`
	ComplementoDe       *int `json:"complemento_de"`
}

type CrearOrdenRequest struct {
	MesaID      *string            `json:"mesa_id"      validate:"omitempty,uuid"`
	BartenderID *string            `json:"bartender_id" validate:"omitempty,uuid"`
	Items       []ItemOrdenRequest `json:"items"        validate:"required,min=1,dive"`
	Notas       *string            `json:"notas"`
}

type CambiarEstadoRequest struct {
	Estado string `json:"estado" validate:"required,oneof=pendiente en_proceso lista entregada cancelada"`
}

type AsignarBartenderRequest struct {
	// BartenderID nil limpia la asignación
	BartenderID *string `json:"bartender_id" validate:"omitempty,uuid"`
}

// OrdenFilter is bound from query string of GET /v1/ordenes.
type OrdenFilter struct {
	Estado string `form:"estado"`
	Fecha  string `form:"fecha"` // YYYY-MM-DD; empty = today
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemOrdenResponse struct {
	ID                  string          `json:"id"`
	Producto            string          `json:"producto"`
	Cantidad            int             `json:"cantidad"`
	PrecioUnitario      decimal.Decimal `json:"precio_unitario"`
	Subtotal            decimal.Decimal `json:"subtotal"`
	EsComplementoGratis bool            `json:"es_complemento_gratis"`
	Notas               *string         `json:"notas"`
}

type OrdenResponse struct {
	ID          string              `json:"id"`
	Numero      int                 `json:"numero"`
	MesaID      *string             `json:"mesa_id"`
	BartenderID *string             `json:"bartender_id"`
	Estado      string              `json:"estado"`
	Pagada      bool                `json:"pagada"`
	MetodoPago  *string             `json:"metodo_pago"`
	Subtotal    decimal.Decimal     `json:"subtotal"`
	Total       decimal.Decimal     `json:"total"`
	Items       []ItemOrdenResponse `json:"items"`
	Notas       *string             `json:"notas"`
	CreatedAt   string              `json:"created_at"`
}

type OrdenListResponse struct {
	Data  []OrdenResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

type HistorialOrdenResponse struct {
	Accion    string `json:"accion"`
	Detalle   string `json:"detalle"`
	UsuarioID string `json:"usuario_id"`
	CreatedAt string `json:"created_at"`
}
