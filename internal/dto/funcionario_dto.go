package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CriarFuncionarioRequest struct {
	Nome  string  `json:"nome"  validate:"required,min=2,max=150"`
	Email *string `json:"email" validate:"omitempty,email"`
}

// ─── Filters ─────────────────────────────────────────────────────────────────

type ContaFuncionarioFilter struct {
	Mes string `form:"mes" validate:"omitempty,len=7"` // YYYY-MM; empty = current month
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type FuncionarioResponse struct {
	ID    string  `json:"id"`
	Nome  string  `json:"nome"`
	Email *string `json:"email,omitempty"`
	Ativo bool    `json:"ativo"`
}

type ContaFuncionarioResponse struct {
	ID            string          `json:"id"`
	FuncionarioID string          `json:"funcionario_id"`
	Funcionario   string          `json:"funcionario,omitempty"`
	Mes           string          `json:"mes"`
	Total         decimal.Decimal `json:"total"`
}
