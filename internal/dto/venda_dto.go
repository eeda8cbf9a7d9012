package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// VendaFilter is bound from query string of GET /v1/vendas.
type VendaFilter struct {
	Data           string `form:"data"` // YYYY-MM-DD; empty = today
	AlunoRA        string `form:"aluno_ra"`
	FormaPagamento string `form:"forma_pagamento" validate:"omitempty,oneof=dinheiro cartao pix conta convenio"`
	Page           int    `form:"page,default=1"   validate:"min=1"`
	Limit          int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type VendaListResponse struct {
	Data  []VendaResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ItemVendaRequest struct {
	ProdutoID  string `json:"produto_id" validate:"required,uuid"`
	Quantidade int    `json:"quantidade" validate:"required,min=1"`
}

type RegistrarVendaRequest struct {
	TipoCliente   string             `json:"tipo_cliente"   validate:"required,oneof=aluno funcionario avulso"`
	AlunoRA       *string            `json:"aluno_ra"       validate:"required_if=TipoCliente aluno,omitempty,min=1,max=20"`
	FuncionarioID *string            `json:"funcionario_id" validate:"required_if=TipoCliente funcionario,omitempty,uuid"`
	Itens         []ItemVendaRequest `json:"itens"          validate:"required,min=1,dive"`
	// Total is what the terminal computed and showed the operator; the server
	// recomputes from current prices and rejects the sale if they diverge.
	Total          decimal.Decimal  `json:"total"           validate:"required,gt=0"`
	FormaPagamento string           `json:"forma_pagamento" validate:"required,oneof=dinheiro cartao pix conta convenio"`
	ValorRecebido  *decimal.Decimal `json:"valor_recebido"  validate:"required_if=FormaPagamento dinheiro,omitempty,gt=0"`
	Observacao     string           `json:"observacao"      validate:"omitempty,max=255"`
}

// VerificarVendaRequest pre-checks a cart before the operator confirms.
// The answer is advisory: the same rules run again inside the sale transaction.
type VerificarVendaRequest struct {
	TipoCliente   string             `json:"tipo_cliente"   validate:"required,oneof=aluno funcionario avulso"`
	AlunoRA       *string            `json:"aluno_ra"       validate:"required_if=TipoCliente aluno,omitempty,min=1,max=20"`
	FuncionarioID *string            `json:"funcionario_id" validate:"required_if=TipoCliente funcionario,omitempty,uuid"`
	Itens         []ItemVendaRequest `json:"itens"          validate:"required,min=1,dive"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemVendaResponse struct {
	ProdutoID     string          `json:"produto_id"`
	Produto       string          `json:"produto"`
	Quantidade    int             `json:"quantidade"`
	PrecoUnitario decimal.Decimal `json:"preco_unitario"`
	Subtotal      decimal.Decimal `json:"subtotal"`
}

type VendaResponse struct {
	ID             string             `json:"id"`
	Numero         int                `json:"numero"`
	TipoCliente    string             `json:"tipo_cliente"`
	AlunoRA        *string            `json:"aluno_ra,omitempty"`
	FuncionarioID  *string            `json:"funcionario_id,omitempty"`
	UsuarioID      string             `json:"usuario_id"`
	Itens          []ItemVendaResponse `json:"itens"`
	Total          decimal.Decimal    `json:"total"`
	FormaPagamento string             `json:"forma_pagamento"`
	ValorRecebido  *decimal.Decimal   `json:"valor_recebido,omitempty"`
	Troco          *decimal.Decimal   `json:"troco,omitempty"`
	Observacao     string             `json:"observacao,omitempty"`
	CreatedAt      string             `json:"created_at"`
}

// VerificacaoItem reports the per-item outcome of a cart pre-check.
type VerificacaoItem struct {
	ProdutoID  string `json:"produto_id"`
	Quantidade int    `json:"quantidade"`
	Ok         bool   `json:"ok"`
	Motivo     string `json:"motivo,omitempty"` // populated when Ok is false
}

type VerificacaoResponse struct {
	Apto  bool              `json:"apto"`
	Itens []VerificacaoItem `json:"itens"`
	Total decimal.Decimal   `json:"total"` // computed from current prices
	// Saldo is only present for tipo_cliente=aluno.
	Saldo *decimal.Decimal `json:"saldo,omitempty"`
	// Motivo carries the blocking reason when Apto is false.
	Motivo string `json:"motivo,omitempty"`
}
