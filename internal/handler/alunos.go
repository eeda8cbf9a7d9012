package handler

import (
	"net/http"

	"cantina/internal/dto"
	"cantina/internal/service"

	"github.com/gin-gonic/gin"
)

type AlunosHandler struct{ svc service.AlunoService }

func NewAlunosHandler(svc service.AlunoService) *AlunosHandler { return &AlunosHandler{svc: svc} }

func (h *AlunosHandler) Criar(c *gin.Context) {
	var req dto.CriarAlunoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Criar(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *AlunosHandler) BuscarPorRA(c *gin.Context) {
	resp, err := h.svc.BuscarPorRA(c.Request.Context(), c.Param("ra"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AlunosHandler) Listar(c *gin.Context) {
	var filter dto.AlunoFilter
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

func (h *AlunosHandler) Atualizar(c *gin.Context) {
	var req dto.AtualizarAlunoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Atualizar(c.Request.Context(), c.Param("ra"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AlunosHandler) Desativar(c *gin.Context) {
	if err := h.svc.Desativar(c.Request.Context(), c.Param("ra")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AlunosHandler) Reativar(c *gin.Context) {
	if err := h.svc.Reativar(c.Request.Context(), c.Param("ra")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ── Restrições ───────────────────────────────────────────────────────────────

// CriarRestricao proíbe um produto (ou tipo inteiro) para o aluno.
func (h *AlunosHandler) CriarRestricao(c *gin.Context) {
	var req dto.CriarRestricaoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CriarRestricao(c.Request.Context(), c.Param("ra"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *AlunosHandler) ListarRestricoes(c *gin.Context) {
	resp, err := h.svc.ListarRestricoes(c.Request.Context(), c.Param("ra"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AlunosHandler) RemoverRestricao(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.RemoverRestricao(c.Request.Context(), c.Param("ra"), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
