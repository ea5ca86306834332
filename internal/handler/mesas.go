package handler

import (
	"net/http"

	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type MesaHandler struct{ svc service.MesaService }

func NewMesaHandler(svc service.MesaService) *MesaHandler {
	return &MesaHandler{svc: svc}
}

// Listar godoc
// @Summary Lista las mesas con su estado y la orden activa si la hay
// @Tags mesas
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.MesaResponse
// @Router /v1/mesas [get]
func (h *MesaHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
