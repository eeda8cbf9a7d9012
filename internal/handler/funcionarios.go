package handler

import (
	"net/http"

	"cantina/internal/dto"
	"cantina/internal/service"

	"github.com/gin-gonic/gin"
)

type FuncionariosHandler struct{ svc service.FuncionarioService }

func NewFuncionariosHandler(svc service.FuncionarioService) *FuncionariosHandler {
	return &FuncionariosHandler{svc: svc}
}

func (h *FuncionariosHandler) Criar(c *gin.Context) {
	var req dto.CriarFuncionarioRequest
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

func (h *FuncionariosHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *FuncionariosHandler) BuscarPorID(c *gin.Context) {
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

func (h *FuncionariosHandler) Desativar(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Desativar(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ContaDoMes devolve o acumulado do convênio no mês (default: mês corrente).
func (h *FuncionariosHandler) ContaDoMes(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ContaDoMes(c.Request.Context(), id, c.Query("mes"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListarContasMes devolve o fechamento do convênio de todos os funcionários
// no mês — insumo do desconto em folha.
func (h *FuncionariosHandler) ListarContasMes(c *gin.Context) {
	var filter dto.ContaFuncionarioFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	resp, err := h.svc.ListarContasMes(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
