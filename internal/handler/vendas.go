package handler

import (
	"net/http"

	"cantina/internal/dto"
	"cantina/internal/service"

	"github.com/gin-gonic/gin"
)

type VendasHandler struct{ svc service.VendaService }

func NewVendasHandler(svc service.VendaService) *VendasHandler { return &VendasHandler{svc: svc} }

// Registrar godoc
// @Summary      Registrar uma nova venda
// @Description  Venda ACID: baixa estoque, debita a conta do aluno (ou acumula no convênio) e despacha o recibo assíncrono.
// @Tags         vendas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.RegistrarVendaRequest true "Detalhe da venda"
// @Success      201  {object} dto.VendaResponse
// @Failure      422  {object} apierror.APIError
// @Router       /v1/vendas [post]
func (h *VendasHandler) Registrar(c *gin.Context) {
	var req dto.RegistrarVendaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	usuarioID := usuarioIDFromClaims(c)

	resp, err := h.svc.Registrar(c.Request.Context(), usuarioID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Verificar godoc
// @Summary      Pré-checagem do carrinho
// @Description  Responde o que reprovaria a venda agora (saldo, estoque, restrições) sem efeito colateral. Consultivo: as mesmas regras rodam de novo no registro.
// @Tags         vendas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.VerificarVendaRequest true "Carrinho"
// @Success      200  {object} dto.VerificacaoResponse
// @Router       /v1/vendas/verificar [post]
func (h *VendasHandler) Verificar(c *gin.Context) {
	var req dto.VerificarVendaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Verificar(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *VendasHandler) BuscarPorID(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.BuscarPorID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Listar godoc
// @Summary      Listar vendas
// @Tags         vendas
// @Produce      json
// @Security     BearerAuth
// @Param        data            query string false "Data YYYY-MM-DD (default: hoje)"
// @Param        aluno_ra        query string false "RA do aluno"
// @Param        forma_pagamento query string false "dinheiro | pix | conta | convenio"
// @Param        page            query int    false "Página (default 1)"
// @Param        limit           query int    false "Registros por página (default 50)"
// @Success      200    {object} dto.VendaListResponse
// @Router       /v1/vendas [get]
func (h *VendasHandler) Listar(c *gin.Context) {
	var filter dto.VendaFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
