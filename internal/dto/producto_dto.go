package dto

import "github.com/shopspring/decimal"

// ProductoFilter is bound from query string of GET /v1/productos.
type ProductoFilter struct {
	Nombre    string `form:"nombre"`
	Categoria string `form:"categoria"`
	Activo    string `form:"activo"` // "false" | "all" | default activos
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type ComponenteResponse struct {
	ProductoID string `json:"producto_id"`
	Nombre     string `json:"nombre"`
	Cantidad   int    `json:"cantidad"`
}

type ProductoResponse struct {
	ID          string          `json:"id"`
	Codigo      string          `json:"codigo"`
	Nombre      string          `json:"nombre"`
	Categoria   string          `json:"categoria"`
	PrecioVenta decimal.Decimal `json:"precio_venta"`
	EsCombo     bool            `json:"es_combo"`
	Activo      bool            `json:"activo"`
	// Stock is nil for combos (availability is derived from components)
	Stock       *int                 `json:"stock"`
	Componentes []ComponenteResponse `json:"componentes,omitempty"`
}

type ProductoListResponse struct {
	Data  []ProductoResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}
