package handler

import (
	"net/http"

	"cantina/internal/dto"
	"cantina/internal/service"

	"github.com/gin-gonic/gin"
)

// EstoqueHandler expõe o ledger de estoque: entradas, ajustes, histórico e
// alertas de estoque mínimo. Saídas só acontecem pela venda.
type EstoqueHandler struct{ svc service.EstoqueService }

func NewEstoqueHandler(svc service.EstoqueService) *EstoqueHandler {
	return &EstoqueHandler{svc: svc}
}

func (h *EstoqueHandler) RegistrarEntrada(c *gin.Context) {
	var req dto.EntradaEstoqueRequest
	if !bindAndValidate(c, &req) {
		return
	}
	usuarioID := usuarioIDFromClaims(c)
	resp, err := h.svc.RegistrarEntrada(c.Request.Context(), req, &usuarioID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// RegistrarAjuste corrige o estoque após contagem física — motivo obrigatório.
func (h *EstoqueHandler) RegistrarAjuste(c *gin.Context) {
	var req dto.AjusteEstoqueRequest
	if !bindAndValidate(c, &req) {
		return
	}
	usuarioID := usuarioIDFromClaims(c)
	resp, err := h.svc.RegistrarAjuste(c.Request.Context(), req, &usuarioID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *EstoqueHandler) Historico(c *gin.Context) {
	var filter dto.MovimentoEstoqueFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	resp, err := h.svc.Historico(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *EstoqueHandler) Alertas(c *gin.Context) {
	resp, err := h.svc.Alertas(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
