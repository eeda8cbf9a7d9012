package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CriarAlunoRequest struct {
	RA               string  `json:"ra"                validate:"required,min=1,max=20"`
	Nome             string  `json:"nome"              validate:"required,min=2,max=150"`
	Serie            string  `json:"serie"             validate:"omitempty,max=30"`
	EmailResponsavel *string `json:"email_responsavel" validate:"omitempty,email"`
}

type AtualizarAlunoRequest struct {
	Nome             string  `json:"nome"              validate:"omitempty,min=2,max=150"`
	Serie            *string `json:"serie"             validate:"omitempty,max=30"`
	EmailResponsavel *string `json:"email_responsavel" validate:"omitempty,email"`
}

// Exactly one of ProdutoID / TipoProdutoID must be set; the service enforces it.
type CriarRestricaoRequest struct {
	ProdutoID     *string `json:"produto_id"      validate:"omitempty,uuid"`
	TipoProdutoID *string `json:"tipo_produto_id" validate:"omitempty,uuid"`
	Motivo        string  `json:"motivo"          validate:"omitempty,max=255"`
}

// ─── Filters ─────────────────────────────────────────────────────────────────

type AlunoFilter struct {
	Nome  string `form:"nome"`
	Serie string `form:"serie"`
	Ativo string `form:"ativo,default=true" validate:"omitempty,oneof=true false all"`
	Page  int    `form:"page,default=1"   validate:"min=1"`
	Limit int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type AlunoResponse struct {
	RA               string  `json:"ra"`
	Nome             string  `json:"nome"`
	Serie            string  `json:"serie,omitempty"`
	EmailResponsavel *string `json:"email_responsavel,omitempty"`
	Ativo            bool    `json:"ativo"`
}

type AlunoListResponse struct {
	Data  []AlunoResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

type RestricaoResponse struct {
	ID            string  `json:"id"`
	AlunoRA       string  `json:"aluno_ra"`
	ProdutoID     *string `json:"produto_id,omitempty"`
	Produto       string  `json:"produto,omitempty"`
	TipoProdutoID *string `json:"tipo_produto_id,omitempty"`
	TipoProduto   string  `json:"tipo_produto,omitempty"`
	Motivo        string  `json:"motivo,omitempty"`
	CreatedAt     string  `json:"created_at"`
}
