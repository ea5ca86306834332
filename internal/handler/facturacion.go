package handler

import (
	"net/http"

	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/apierror"
	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/dto"
	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type FacturacionHandler struct{ svc service.FacturacionService }

func NewFacturacionHandler(svc service.FacturacionService) *FacturacionHandler {
	return &FacturacionHandler{svc: svc}
}

// Cobrar godoc
// @Summary Cobra una orden: marca pagada, descuenta stock y registra el ingreso en caja
// @Tags facturacion
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CobrarOrdenRequest true "Datos del cobro"
// @Success 200 {object} dto.CobrarOrdenResponse
// @Failure 403 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/facturacion/cobrar [post]
func (h *FacturacionHandler) Cobrar(c *gin.Context) {
	var req dto.CobrarOrdenRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Cobrar(c.Request.Context(), actorFromClaims(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Comprobante godoc
// @Summary Obtiene el comprobante de una orden cobrada
// @Tags facturacion
// @Produce json
// @Security BearerAuth
// @Param orden_id path string true "ID de orden"
// @Success 200 {object} dto.ComprobanteResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/facturacion/orden/{orden_id} [get]
func (h *FacturacionHandler) Comprobante(c *gin.Context) {
	ordenID, err := uuid.Parse(c.Param("orden_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.ObtenerComprobante(c.Request.Context(), ordenID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PDF streams the generated receipt file.
func (h *FacturacionHandler) PDF(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	path, err := h.svc.ObtenerPDFPath(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.FileAttachment(path, "comprobante.pdf")
}
