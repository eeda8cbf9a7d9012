package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Conta é a conta pré-paga de um aluno. Criada sob demanda no primeiro
// crédito ou primeira venda; nunca é removida, apenas desativada.
// Invariante: Saldo == soma dos movimentos (créditos − débitos) da conta.
type Conta struct {
	ID      uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	AlunoRA string          `gorm:"column:aluno_ra;uniqueIndex;not null"`
	Saldo   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	// LimiteDiario limita a soma dos débitos do dia; nil = sem limite
	LimiteDiario *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Ativo        bool             `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Aluno *Aluno `gorm:"foreignKey:AlunoRA;references:RA"`
}

func (Conta) TableName() string { return "contas" }

// MovimentoConta registra cada mutação de saldo de uma conta.
// Tipo: "credito" | "debito". Valor é sempre positivo; o tipo dá o sinal.
// Movimentos NUNCA são alterados ou removidos — estornos geram movimentos inversos.
type MovimentoConta struct {
	ID      uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ContaID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Tipo    string          `gorm:"type:varchar(10);not null"`
	Valor   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Motivo  string          `gorm:"not null"`
	// VendaID liga o movimento à venda que o originou, quando houver
	VendaID *uuid.UUID `gorm:"type:uuid"`
	// UsuarioID é o operador que executou a operação; nil = gerado pelo sistema
	UsuarioID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt time.Time
}

func (MovimentoConta) TableName() string { return "movimentos_conta" }

// ContaFuncionario acumula as compras de um funcionário dentro de um mês,
// faturadas posteriormente em folha. Criada sob demanda na primeira venda do mês.
type ContaFuncionario struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FuncionarioID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_conta_func_mes"`
	// Mes no formato "2006-01"
	Mes       string          `gorm:"type:varchar(7);not null;uniqueIndex:idx_conta_func_mes"`
	Total     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Funcionario *Funcionario `gorm:"foreignKey:FuncionarioID"`
}

func (ContaFuncionario) TableName() string { return "contas_funcionario" }
