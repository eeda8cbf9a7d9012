package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TipoProduto classifica os produtos do catálogo (salgados, bebidas, doces…).
// Restrições de aluno podem apontar para um tipo inteiro.
type TipoProduto struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nome      string    `gorm:"uniqueIndex;not null"`
	Descricao *string
	Ativo     bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (TipoProduto) TableName() string { return "tipos_produto" }

// Produto é a entidade de catálogo. EstoqueAtual é mutado EXCLUSIVAMENTE pelo
// EstoqueService, sob lock de linha — nunca por update direto do CRUD.
type Produto struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CodigoBarras  *string    `gorm:"uniqueIndex"`
	Nome          string     `gorm:"index;not null"`
	Descricao     *string
	TipoProdutoID *uuid.UUID      `gorm:"type:uuid;index"`
	PrecoVenda    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	EstoqueAtual  int             `gorm:"not null;default:0"`
	// EstoqueMinimo alimenta o relatório de estoque baixo
	EstoqueMinimo int  `gorm:"not null;default:5"`
	Ativo         bool `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	TipoProduto *TipoProduto `gorm:"foreignKey:TipoProdutoID"`
}

func (Produto) TableName() string { return "produtos" }
