package handler

import (
	"net/http"
	"strconv"

	"cantina/internal/dto"
	"cantina/internal/service"

	"github.com/gin-gonic/gin"
)

// CaixaHandler expõe o ciclo de sessão do caixa: abertura, apuração parcial
// e fechamento com conferência.
type CaixaHandler struct{ svc service.CaixaService }

func NewCaixaHandler(svc service.CaixaService) *CaixaHandler { return &CaixaHandler{svc: svc} }

func (h *CaixaHandler) CriarCaixa(c *gin.Context) {
	var req dto.CriarCaixaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CriarCaixa(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CaixaHandler) ListarCaixas(c *gin.Context) {
	resp, err := h.svc.ListarCaixas(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CaixaHandler) DesativarCaixa(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DesativarCaixa(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Abrir godoc
// @Summary      Abrir sessão de caixa
// @Description  Abre a sessão com o fundo de troco declarado. Um caixa só comporta uma sessão aberta por vez.
// @Tags         caixa
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.AbrirCaixaRequest true "Caixa e valor de abertura"
// @Success      201  {object} dto.AberturaCaixaResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/caixa/abrir [post]
func (h *CaixaHandler) Abrir(c *gin.Context) {
	var req dto.AbrirCaixaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	usuarioID := usuarioIDFromClaims(c)
	resp, err := h.svc.Abrir(c.Request.Context(), usuarioID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Totais devolve a apuração parcial da sessão — recalculada das vendas.
func (h *CaixaHandler) Totais(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Totais(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Fechar godoc
// @Summary      Fechar sessão de caixa
// @Description  Fecha a sessão: apura os totais, compara com o contado e registra a diferença. Somente o operador que abriu pode fechar.
// @Tags         caixa
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID da abertura"
// @Param        body body dto.FecharCaixaRequest true "Valor contado"
// @Success      200  {object} dto.FechamentoCaixaResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/caixa/{id}/fechar [post]
func (h *CaixaHandler) Fechar(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.FecharCaixaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	usuarioID := usuarioIDFromClaims(c)
	resp, err := h.svc.Fechar(c.Request.Context(), usuarioID, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CaixaHandler) ListarAberturas(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	aberturas, total, err := h.svc.ListarAberturas(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": aberturas, "total": total, "page": page, "limit": limit})
}

func (h *CaixaHandler) BuscarFechamento(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.BuscarFechamento(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
