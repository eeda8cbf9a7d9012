// Package apierror provides the standardized error envelope for the API and
// the typed domain errors of the ledger core. All errors returned to clients
// go through this package so that business violations carry a stable machine
// code and internal details (stack traces, DB errors) never leak.
package apierror

import "net/http"

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail  string                 `json:"detail"`
	Code    string                 `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// Validation wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Erro de validação", Fields: fields}
}

// ─── Typed domain errors ─────────────────────────────────────────────────────

// Kind classifica o erro conforme a taxonomia do core:
// validação (entrada malformada, rejeitada antes de qualquer lock),
// não-encontrado, conflito de regra de negócio (resultado esperado, nunca
// retentado automaticamente), proibição e violação de integridade
// (inesperado — sempre fatal e logado, nunca retentado).
type Kind int

const (
	KindValidation Kind = iota
	KindNotFound
	KindForbidden
	KindConflict
	KindIntegrity
)

// Stable machine codes surfaced in the Code field of the envelope.
const (
	CodeValorInvalido        = "valor_invalido"
	CodeAlunoInapto          = "aluno_inapto"
	CodeSaldoInsuficiente    = "saldo_insuficiente"
	CodeLimiteDiarioExcedido = "limite_diario_excedido"
	CodeProdutoNaoEncontrado = "produto_nao_encontrado"
	CodeEstoqueInsuficiente  = "estoque_insuficiente"
	CodeEstoqueNegativo      = "estoque_negativo"
	CodeProdutoRestrito      = "produto_restrito"
	CodeTotalDivergente      = "total_divergente"
	CodePagamentoInvalido    = "pagamento_invalido"
	CodeCaixaJaAberto        = "caixa_ja_aberto"
	CodeCaixaJaFechado       = "caixa_ja_fechado"
	CodeNaoEOperador         = "nao_e_o_operador"
	CodeContaInativa         = "conta_inativa"
)

// DomainError é o erro tipado que os serviços do core devolvem. Handlers
// nunca comparam mensagens — ramificam por Code/Kind.
type DomainError struct {
	Kind    Kind
	Code    string
	Message string
	Details map[string]interface{}
	status  int
}

func (e *DomainError) Error() string { return e.Message }

// Status returns the HTTP status the handler layer must answer with.
func (e *DomainError) Status() int { return e.status }

// With anexa um dado contextual (valores calculados: saldo, falta, limite…)
// que o front usa para montar a mensagem acionável.
func (e *DomainError) With(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// Envelope converts the domain error to the wire envelope.
func (e *DomainError) Envelope() *APIError {
	return &APIError{Detail: e.Message, Code: e.Code, Details: e.Details}
}

func Validation(code, msg string) *DomainError {
	return &DomainError{Kind: KindValidation, Code: code, Message: msg, status: http.StatusBadRequest}
}

func NotFound(code, msg string) *DomainError {
	return &DomainError{Kind: KindNotFound, Code: code, Message: msg, status: http.StatusNotFound}
}

func Forbidden(code, msg string) *DomainError {
	return &DomainError{Kind: KindForbidden, Code: code, Message: msg, status: http.StatusForbidden}
}

// Conflict marks a business-rule violation (insufficient balance/stock,
// limits, total mismatch) — 422, figures attached via With.
func Conflict(code, msg string) *DomainError {
	return &DomainError{Kind: KindConflict, Code: code, Message: msg, status: http.StatusUnprocessableEntity}
}

// StateConflict marks a lifecycle violation (caixa já aberto/fechado) — 409.
func StateConflict(code, msg string) *DomainError {
	return &DomainError{Kind: KindConflict, Code: code, Message: msg, status: http.StatusConflict}
}

// Integrity marks the unexpected: writes that should be atomic diverged.
// The handler layer answers a generic 500 and logs the cause server-side.
func Integrity(msg string) *DomainError {
	return &DomainError{Kind: KindIntegrity, Code: "erro_integridade", Message: msg, status: http.StatusInternalServerError}
}
