package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CriarCaixaRequest struct {
	Nome string `json:"nome" validate:"required,min=2,max=100"`
}

type AbrirCaixaRequest struct {
	CaixaID       string          `json:"caixa_id"       validate:"required,uuid"`
	ValorAbertura decimal.Decimal `json:"valor_abertura" validate:"min=0"`
	Observacao    string          `json:"observacao"     validate:"omitempty,max=255"`
}

type FecharCaixaRequest struct {
	ValorContado decimal.Decimal `json:"valor_contado" validate:"min=0"`
	Observacao   string          `json:"observacao"    validate:"omitempty,max=255"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CaixaResponse struct {
	ID    string `json:"id"`
	Nome  string `json:"nome"`
	Ativo bool   `json:"ativo"`
}

type AberturaCaixaResponse struct {
	ID            string          `json:"id"`
	CaixaID       string          `json:"caixa_id"`
	UsuarioID     string          `json:"usuario_id"`
	ValorAbertura decimal.Decimal `json:"valor_abertura"`
	Observacao    string          `json:"observacao,omitempty"`
	Aberta        bool            `json:"aberta"`
	OpenedAt      string          `json:"opened_at"`
	ClosedAt      *string         `json:"closed_at,omitempty"`
}

// TotaisCaixaResponse is the running summary of an open session: every total
// comes from the operator's sales since opening, not from a session FK.
type TotaisCaixaResponse struct {
	AberturaID    string          `json:"abertura_id"`
	ValorAbertura decimal.Decimal `json:"valor_abertura"`
	TotalVendas   decimal.Decimal `json:"total_vendas"`
	TotalDinheiro decimal.Decimal `json:"total_dinheiro"`
	TotalCartao   decimal.Decimal `json:"total_cartao"`
	TotalPix      decimal.Decimal `json:"total_pix"`
	TotalTroco    decimal.Decimal `json:"total_troco"`
	ValorEsperado decimal.Decimal `json:"valor_esperado"` // abertura + dinheiro - troco
}

type FechamentoCaixaResponse struct {
	ID            string          `json:"id"`
	AberturaID    string          `json:"abertura_id"`
	UsuarioID     string          `json:"usuario_id"`
	ValorContado  decimal.Decimal `json:"valor_contado"`
	TotalVendas   decimal.Decimal `json:"total_vendas"`
	TotalDinheiro decimal.Decimal `json:"total_dinheiro"`
	TotalCartao   decimal.Decimal `json:"total_cartao"`
	TotalPix      decimal.Decimal `json:"total_pix"`
	TotalTroco    decimal.Decimal `json:"total_troco"`
	ValorEsperado decimal.Decimal `json:"valor_esperado"`
	Diferenca     decimal.Decimal `json:"diferenca"` // contado - esperado
	Observacao    string          `json:"observacao,omitempty"`
	CreatedAt     string          `json:"created_at"`
}
