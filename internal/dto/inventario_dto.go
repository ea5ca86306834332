package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AjustarStockRequest struct {
	ProductoID    string `json:"producto_id"    validate:"required,uuid"`
	NuevaCantidad int    `json:"nueva_cantidad" validate:"min=0"`
	Motivo        string `json:"motivo"         validate:"required,min=3"`
}

// MovimientoManualRequest covers manual entrada/salida movements.
type MovimientoManualRequest struct {
	ProductoID     string           `json:"producto_id"     validate:"required,uuid"`
	Tipo           string           `json:"tipo"            validate:"required,oneof=entrada salida"`
	Cantidad       int              `json:"cantidad"        validate:"required,gt=0"`
	PrecioUnitario *decimal.Decimal `json:"precio_unitario"`
	Motivo         string           `json:"motivo"          validate:"required,min=3"`
}

type RecibirPedidoLinea struct {
	DetalleID        string `json:"detalle_id"        validate:"required,uuid"`
	CantidadRecibida int    `json:"cantidad_recibida" validate:"min=0"`
}

type RecibirPedidoRequest struct {
	Lineas []RecibirPedidoLinea `json:"lineas" validate:"required,min=1,dive"`
}

type MovimientoFilter struct {
	ProductoID string `form:"producto_id"`
	Tipo       string `form:"tipo"`
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type MovimientoInventarioResponse struct {
	ID             string           `json:"id"`
	ProductoID     string           `json:"producto_id"`
	Producto       string           `json:"producto"`
	Tipo           string           `json:"tipo"`
	Cantidad       int              `json:"cantidad"`
	StockAnterior  int              `json:"stock_anterior"`
	StockNuevo     int              `json:"stock_nuevo"`
	PrecioUnitario *decimal.Decimal `json:"precio_unitario"`
	Motivo         string           `json:"motivo"`
	Sobrevendido   bool             `json:"sobrevendido"`
	CreatedAt      string           `json:"created_at"`
}

type MovimientoListResponse struct {
	Data  []MovimientoInventarioResponse `json:"data"`
	Total int64                          `json:"total"`
	Page  int                            `json:"page"`
	Limit int                            `json:"limit"`
}

type AlertaStockResponse struct {
	ProductoID  string `json:"producto_id"`
	Producto    string `json:"producto"`
	Cantidad    int    `json:"cantidad"`
	StockMinimo int    `json:"stock_minimo"`
}

type RecibirPedidoResponse struct {
	PedidoID string `json:"pedido_id"`
	Estado   string `json:"estado"`
	// UnidadesIngresadas is the total delta added to stock in this receipt
	UnidadesIngresadas int `json:"unidades_ingresadas"`
}

type DisponibilidadComboResponse struct {
	ComboID    string `json:"combo_id"`
	Disponible bool   `json:"disponible"`
	// MaximoVendible is how many combo units current component stock supports
	MaximoVendible int `json:"maximo_vendible"`
}
