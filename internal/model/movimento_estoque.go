package model

import (
	"time"

	"github.com/google/uuid"
)

// MovimentoEstoque registra cada mudança de estoque de um produto.
// Tipo: "entrada" | "saida" | "ajuste"
// Quantidade é o delta com sinal (entrada positiva, saída negativa).
// Os snapshots EstoqueAnterior/EstoqueNovo são lidos sob o mesmo lock que
// muta Produto.EstoqueAtual — dois movimentos nunca observam o mesmo
// EstoqueAnterior para um produto.
type MovimentoEstoque struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProdutoID       uuid.UUID `gorm:"type:uuid;not null;index"`
	Tipo            string    `gorm:"type:varchar(10);not null"`
	Quantidade      int       `gorm:"not null"`
	EstoqueAnterior int       `gorm:"not null"`
	EstoqueNovo     int       `gorm:"not null"`
	Motivo          string
	VendaID         *uuid.UUID `gorm:"type:uuid"`
	UsuarioID       *uuid.UUID `gorm:"type:uuid"`
	CreatedAt       time.Time

	Produto *Produto `gorm:"foreignKey:ProdutoID"`
}

func (MovimentoEstoque) TableName() string { return "movimentos_estoque" }
