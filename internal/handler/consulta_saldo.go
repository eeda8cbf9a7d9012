package handler

import (
	"net/http"

	"cantina/internal/service"

	"github.com/gin-gonic/gin"
)

// ConsultaSaldoHandler serves the public balance check endpoint used by the
// totem at the canteen counter. No authentication required — read-only, no
// side effects. Responses come from the Redis saldo cache when warm.
type ConsultaSaldoHandler struct {
	svc service.ContaService
}

func NewConsultaSaldoHandler(svc service.ContaService) *ConsultaSaldoHandler {
	return &ConsultaSaldoHandler{svc: svc}
}

// GetSaldoPorRA godoc
// @Summary Consulta de saldo por RA (sem autenticação)
// @Tags consulta
// @Produce json
// @Param ra path string true "RA do aluno"
// @Success 200 {object} dto.SaldoResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/consulta/saldo/{ra} [get]
func (h *ConsultaSaldoHandler) GetSaldoPorRA(c *gin.Context) {
	resp, err := h.svc.Saldo(c.Request.Context(), c.Param("ra"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
