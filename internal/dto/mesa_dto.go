package dto

type MesaResponse struct {
	ID        string `json:"id"`
	Numero    int    `json:"numero"`
	Capacidad int    `json:"capacidad"`
	Estado    string `json:"estado"`
	// OrdenActiva is the order currently tying up this table, if any
	OrdenActiva *string `json:"orden_activa"`
}
