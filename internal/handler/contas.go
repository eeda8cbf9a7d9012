package handler

import (
	"net/http"

	"cantina/internal/dto"
	"cantina/internal/service"

	"github.com/gin-gonic/gin"
)

// ContasHandler expõe a conta pré-paga do aluno: recarga, débito avulso,
// saldo, extrato e limite diário.
type ContasHandler struct{ svc service.ContaService }

func NewContasHandler(svc service.ContaService) *ContasHandler { return &ContasHandler{svc: svc} }

// Creditar godoc
// @Summary Recarga da conta do aluno
// @Tags contas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param ra path string true "RA do aluno"
// @Param body body dto.CreditarContaRequest true "Valor da recarga"
// @Success 200 {object} dto.ContaResponse
// @Failure 422 {object} apierror.APIError
// @Router /v1/contas/{ra}/creditos [post]
func (h *ContasHandler) Creditar(c *gin.Context) {
	var req dto.CreditarContaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	usuarioID := usuarioIDFromClaims(c)
	resp, err := h.svc.Creditar(c.Request.Context(), c.Param("ra"), req, &usuarioID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Debitar registra um débito avulso (fora de venda) — supervisão apenas.
func (h *ContasHandler) Debitar(c *gin.Context) {
	var req dto.DebitarContaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	usuarioID := usuarioIDFromClaims(c)
	resp, err := h.svc.Debitar(c.Request.Context(), c.Param("ra"), req, &usuarioID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ContasHandler) Saldo(c *gin.Context) {
	resp, err := h.svc.Saldo(c.Request.Context(), c.Param("ra"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ContasHandler) Extrato(c *gin.Context) {
	var filter dto.ExtratoFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	resp, err := h.svc.Extrato(c.Request.Context(), c.Param("ra"), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DefinirLimite define (ou remove, com valor nulo) o teto diário de gastos.
func (h *ContasHandler) DefinirLimite(c *gin.Context) {
	var req dto.DefinirLimiteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.DefinirLimite(c.Request.Context(), c.Param("ra"), req.LimiteDiario)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ContasHandler) Desativar(c *gin.Context) {
	if err := h.svc.Desativar(c.Request.Context(), c.Param("ra")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
