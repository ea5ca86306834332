package handler

import (
	"net/http"

	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/apierror"
	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/dto"
	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OrdenHandler struct{ svc service.OrdenService }

func NewOrdenHandler(svc service.OrdenService) *OrdenHandler { return &OrdenHandler{svc: svc} }

// Crear godoc
// @Summary Crea una orden y ocupa la mesa si corresponde
// @Tags ordenes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CrearOrdenRequest true "Líneas de la orden"
// @Success 201 {object} dto.OrdenResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/ordenes [post]
func (h *OrdenHandler) Crear(c *gin.Context) {
	var req dto.CrearOrdenRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), actorFromClaims(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// CambiarEstado godoc
// @Summary Transiciona una orden al siguiente estado o la cancela
// @Tags ordenes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de orden"
// @Param body body dto.CambiarEstadoRequest true "Nuevo estado"
// @Success 200 {object} dto.OrdenResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/ordenes/{id}/estado [put]
func (h *OrdenHandler) CambiarEstado(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	var req dto.CambiarEstadoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CambiarEstado(c.Request.Context(), actorFromClaims(c), id, req.Estado)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AsignarBartender godoc
// @Summary Asigna o desasigna el bartender de una orden
// @Tags ordenes
// @Security BearerAuth
// @Param id path string true "ID de orden"
// @Param body body dto.AsignarBartenderRequest true "Bartender"
// @Success 204
// @Router /v1/ordenes/{id}/bartender [put]
func (h *OrdenHandler) AsignarBartender(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	var req dto.AsignarBartenderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	var bartenderID *uuid.UUID
	if req.BartenderID != nil {
		bid, err := uuid.Parse(*req.BartenderID)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("bartender_id inválido"))
			return
		}
		bartenderID = &bid
	}
	if err := h.svc.AsignarBartender(c.Request.Context(), actorFromClaims(c), id, bartenderID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Eliminar godoc
// @Summary Elimina definitivamente una orden cancelada
// @Tags ordenes
// @Security BearerAuth
// @Param id path string true "ID de orden"
// @Success 204
// @Failure 412 {object} apierror.APIError
// @Router /v1/ordenes/{id} [delete]
func (h *OrdenHandler) Eliminar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), actorFromClaims(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Obtener returns one order with its lines.
func (h *OrdenHandler) Obtener(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Listar returns today's orders by default, filterable by estado and fecha.
func (h *OrdenHandler) Listar(c *gin.Context) {
	var filter dto.OrdenFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("filtros inválidos"))
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Historial returns the audit records of an order.
func (h *OrdenHandler) Historial(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.Historial(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
