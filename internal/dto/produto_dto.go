package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CriarProdutoRequest struct {
	CodigoBarras  *string         `json:"codigo_barras"  validate:"omitempty,min=4,max=32"`
	Nome          string          `json:"nome"           validate:"required,min=2,max=150"`
	Descricao     string          `json:"descricao"      validate:"omitempty,max=500"`
	TipoProdutoID string          `json:"tipo_produto_id" validate:"required,uuid"`
	PrecoVenda    decimal.Decimal `json:"preco_venda"    validate:"required,gt=0"`
	EstoqueMinimo int             `json:"estoque_minimo" validate:"min=0"`
}

type AtualizarProdutoRequest struct {
	CodigoBarras  *string          `json:"codigo_barras"  validate:"omitempty,min=4,max=32"`
	Nome          string           `json:"nome"           validate:"omitempty,min=2,max=150"`
	Descricao     *string          `json:"descricao"      validate:"omitempty,max=500"`
	TipoProdutoID string           `json:"tipo_produto_id" validate:"omitempty,uuid"`
	PrecoVenda    *decimal.Decimal `json:"preco_venda"    validate:"omitempty,gt=0"`
	EstoqueMinimo *int             `json:"estoque_minimo" validate:"omitempty,min=0"`
}

type CriarTipoProdutoRequest struct {
	Nome      string `json:"nome"      validate:"required,min=2,max=100"`
	Descricao string `json:"descricao" validate:"omitempty,max=500"`
}

// ─── Filters ─────────────────────────────────────────────────────────────────

type ProdutoFilter struct {
	Nome          string `form:"nome"`
	TipoProdutoID string `form:"tipo_produto_id" validate:"omitempty,uuid"`
	Ativo         string `form:"ativo,default=true" validate:"omitempty,oneof=true false all"`
	Page          int    `form:"page,default=1"   validate:"min=1"`
	Limit         int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProdutoResponse struct {
	ID            string          `json:"id"`
	CodigoBarras  *string         `json:"codigo_barras"`
	Nome          string          `json:"nome"`
	Descricao     string          `json:"descricao,omitempty"`
	TipoProdutoID string          `json:"tipo_produto_id"`
	TipoProduto   string          `json:"tipo_produto,omitempty"`
	PrecoVenda    decimal.Decimal `json:"preco_venda"`
	EstoqueAtual  int             `json:"estoque_atual"`
	EstoqueMinimo int             `json:"estoque_minimo"`
	Ativo         bool            `json:"ativo"`
}

type ProdutoListResponse struct {
	Data  []ProdutoResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

type TipoProdutoResponse struct {
	ID        string `json:"id"`
	Nome      string `json:"nome"`
	Descricao string `json:"descricao,omitempty"`
	Ativo     bool   `json:"ativo"`
}
