package handler

import (
	"net/http"

	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/apierror"
	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/dto"
	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type InventarioHandler struct{ svc service.InventarioService }

func NewInventarioHandler(svc service.InventarioService) *InventarioHandler {
	return &InventarioHandler{svc: svc}
}

// Ajustar godoc
// @Summary Ajusta el stock de un producto tras un conteo físico
// @Tags inventario
// @Accept json
// @Security BearerAuth
// @Param body body dto.AjustarStockRequest true "Ajuste"
// @Success 204
// @Failure 404 {object} apierror.APIError
// @Router /v1/inventario/ajustar [post]
func (h *InventarioHandler) Ajustar(c *gin.Context) {
	var req dto.AjustarStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.AjustarStock(c.Request.Context(), actorFromClaims(c), req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Movimiento godoc
// @Summary Registra una entrada o salida manual de stock
// @Tags inventario
// @Accept json
// @Security BearerAuth
// @Param body body dto.MovimientoManualRequest true "Movimiento"
// @Success 204
// @Failure 409 {object} apierror.APIError
// @Router /v1/inventario/movimiento [post]
func (h *InventarioHandler) Movimiento(c *gin.Context) {
	var req dto.MovimientoManualRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.RegistrarMovimiento(c.Request.Context(), actorFromClaims(c), req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RecibirPedido godoc
// @Summary Registra una recepción (parcial o total) de un pedido a proveedor
// @Tags inventario
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de pedido"
// @Param body body dto.RecibirPedidoRequest true "Cantidades recibidas acumuladas"
// @Success 200 {object} dto.RecibirPedidoResponse
// @Failure 422 {object} apierror.APIError
// @Router /v1/inventario/pedidos/{id}/recibir [post]
func (h *InventarioHandler) RecibirPedido(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	var req dto.RecibirPedidoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RecibirPedido(c.Request.Context(), actorFromClaims(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Movimientos lists the inventory ledger with optional filters.
func (h *InventarioHandler) Movimientos(c *gin.Context) {
	var filter dto.MovimientoFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("filtros inválidos"))
		return
	}
	resp, err := h.svc.ListarMovimientos(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Alertas lists products at or below their minimum stock.
func (h *InventarioHandler) Alertas(c *gin.Context) {
	resp, err := h.svc.Alertas(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// DisponibilidadCombo reports how many units of a combo current component
// stock supports.
func (h *InventarioHandler) DisponibilidadCombo(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.DisponibilidadCombo(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
