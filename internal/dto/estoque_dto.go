package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type EntradaEstoqueRequest struct {
	ProdutoID  string `json:"produto_id" validate:"required,uuid"`
	Quantidade int    `json:"quantidade" validate:"required,min=1"`
	Motivo     string `json:"motivo"     validate:"omitempty,max=255"`
}

// Quantidade here is the signed correction, never zero.
type AjusteEstoqueRequest struct {
	ProdutoID  string `json:"produto_id" validate:"required,uuid"`
	Quantidade int    `json:"quantidade" validate:"required"`
	Motivo     string `json:"motivo"     validate:"required,min=3,max=255"`
}

// ─── Filters ─────────────────────────────────────────────────────────────────

type MovimentoEstoqueFilter struct {
	ProdutoID string `form:"produto_id" validate:"omitempty,uuid"`
	Tipo      string `form:"tipo"       validate:"omitempty,oneof=entrada saida ajuste"`
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type MovimentoEstoqueResponse struct {
	ID              string  `json:"id"`
	ProdutoID       string  `json:"produto_id"`
	Tipo            string  `json:"tipo"`
	Quantidade      int     `json:"quantidade"`
	EstoqueAnterior int     `json:"estoque_anterior"`
	EstoqueNovo     int     `json:"estoque_novo"`
	Motivo          string  `json:"motivo,omitempty"`
	VendaID         *string `json:"venda_id,omitempty"`
	UsuarioID       *string `json:"usuario_id,omitempty"`
	CreatedAt       string  `json:"created_at"`
}

type MovimentoEstoqueListResponse struct {
	Data  []MovimentoEstoqueResponse `json:"data"`
	Total int64                      `json:"total"`
	Page  int                        `json:"page"`
	Limit int                        `json:"limit"`
}

type AlertaEstoqueResponse struct {
	ProdutoID     string `json:"produto_id"`
	Nome          string `json:"nome"`
	EstoqueAtual  int    `json:"estoque_atual"`
	EstoqueMinimo int    `json:"estoque_minimo"`
}
