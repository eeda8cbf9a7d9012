package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreditarContaRequest struct {
	Valor  decimal.Decimal `json:"valor"  validate:"required,gt=0"`
	Motivo string          `json:"motivo" validate:"omitempty,max=255"`
}

type DebitarContaRequest struct {
	Valor  decimal.Decimal `json:"valor"  validate:"required,gt=0"`
	Motivo string          `json:"motivo" validate:"omitempty,max=255"`
}

// LimiteDiario nil remove o limite; caso contrário deve ser > 0.
type DefinirLimiteRequest struct {
	LimiteDiario *decimal.Decimal `json:"limite_diario" validate:"omitempty,gt=0"`
}

// ─── Filters ─────────────────────────────────────────────────────────────────

type ExtratoFilter struct {
	Tipo  string `form:"tipo"  validate:"omitempty,oneof=credito debito"`
	Page  int    `form:"page,default=1"   validate:"min=1"`
	Limit int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ContaResponse struct {
	ID           string           `json:"id"`
	AlunoRA      string           `json:"aluno_ra"`
	Saldo        decimal.Decimal  `json:"saldo"`
	LimiteDiario *decimal.Decimal `json:"limite_diario"`
	Ativo        bool             `json:"ativo"`
}

type MovimentoContaResponse struct {
	ID        string          `json:"id"`
	Tipo      string          `json:"tipo"`
	Valor     decimal.Decimal `json:"valor"`
	Motivo    string          `json:"motivo"`
	VendaID   *string         `json:"venda_id,omitempty"`
	CreatedAt string          `json:"created_at"`
}

type ExtratoResponse struct {
	Conta      ContaResponse            `json:"conta"`
	Movimentos []MovimentoContaResponse `json:"movimentos"`
	Page       int                      `json:"page"`
	Total      int64                    `json:"total"`
}

type SaldoResponse struct {
	AlunoRA string          `json:"aluno_ra"`
	Nome    string          `json:"nome"`
	Saldo   decimal.Decimal `json:"saldo"`
}
