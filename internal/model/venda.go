package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Venda é o cabeçalho imutável de uma venda. Uma vez criada não sofre edição;
// o Numero vem da sequence vendas_numero_seq (único e monotônico).
// TipoCliente: "aluno" | "funcionario" | "avulso"
// FormaPagamento: "dinheiro" | "cartao" | "pix" | "conta" | "convenio"
type Venda struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Numero        int       `gorm:"uniqueIndex;not null"`
	TipoCliente   string    `gorm:"type:varchar(15);not null"`
	AlunoRA       *string   `gorm:"column:aluno_ra;index"`
	FuncionarioID *uuid.UUID `gorm:"type:uuid;index"`
	// UsuarioID é o operador que registrou a venda — base da janela de
	// apuração de caixa (ver CaixaService)
	UsuarioID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Total          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	FormaPagamento string          `gorm:"type:varchar(15);not null"`
	// ValorRecebido/Troco só existem para pagamento em dinheiro
	ValorRecebido *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Troco         *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Observacao    *string
	CreatedAt     time.Time `gorm:"index"`

	Itens       []VendaItem  `gorm:"foreignKey:VendaID"`
	Aluno       *Aluno       `gorm:"foreignKey:AlunoRA;references:RA"`
	Funcionario *Funcionario `gorm:"foreignKey:FuncionarioID"`
}

func (Venda) TableName() string { return "vendas" }

// VendaItem é uma linha da venda. PrecoUnitario é o snapshot do preço de
// catálogo no momento da venda; Subtotal = Quantidade × PrecoUnitario.
type VendaItem struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VendaID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProdutoID     uuid.UUID       `gorm:"type:uuid;not null"`
	Quantidade    int             `gorm:"not null"`
	PrecoUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Produto *Produto `gorm:"foreignKey:ProdutoID"`
}

func (VendaItem) TableName() string { return "venda_itens" }
