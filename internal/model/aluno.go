package model

import (
	"time"

	"github.com/google/uuid"
)

// Aluno é o cadastro de aluno. O RA (registro acadêmico) é a chave natural
// usada em todo o sistema — contas, vendas e restrições referenciam o RA,
// nunca um id sintético.
type Aluno struct {
	RA               string `gorm:"primaryKey;column:ra;type:varchar(20)"`
	Nome             string `gorm:"index;not null"`
	Serie            *string
	EmailResponsavel *string
	Ativo            bool `gorm:"not null;default:true"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (Aluno) TableName() string { return "alunos" }

// RestricaoAluno proíbe a venda de um produto (ou de todo um tipo de produto)
// para um aluno. A presença do registro nega a venda — não existe registro de
// "permissão"; o catálogo inteiro é permitido por padrão.
type RestricaoAluno struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	AlunoRA       string     `gorm:"column:aluno_ra;not null;index"`
	ProdutoID     *uuid.UUID `gorm:"type:uuid;index"`
	TipoProdutoID *uuid.UUID `gorm:"type:uuid"`
	Motivo        *string
	CreatedAt     time.Time

	Produto     *Produto     `gorm:"foreignKey:ProdutoID"`
	TipoProduto *TipoProduto `gorm:"foreignKey:TipoProdutoID"`
}

func (RestricaoAluno) TableName() string { return "restricoes_aluno" }
