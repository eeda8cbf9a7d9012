package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Caixa é um ponto de venda físico (balcão, quiosque).
type Caixa struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nome      string    `gorm:"uniqueIndex;not null"`
	Ativo     bool      `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Caixa) TableName() string { return "caixas" }

// AberturaCaixa é a metade de abertura de uma sessão de caixa. Um caixa só
// pode ter uma abertura sem fechamento por vez; após fechado, Aberta vira
// false e o caixa pode ser reaberto.
type AberturaCaixa struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CaixaID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	UsuarioID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ValorAbertura decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Observacao    *string
	Aberta        bool      `gorm:"not null;default:true"`
	OpenedAt      time.Time `gorm:"not null"`
	ClosedAt      *time.Time

	Caixa *Caixa `gorm:"foreignKey:CaixaID"`
}

func (AberturaCaixa) TableName() string { return "aberturas_caixa" }

// FechamentoCaixa é criado uma única vez por abertura (unique em
// abertura_caixa_id) e é imutável. Esperado = ValorAbertura + TotalDinheiro −
// TotalTroco; Diferenca = ValorContado − Esperado.
type FechamentoCaixa struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	AberturaCaixaID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	UsuarioID       uuid.UUID       `gorm:"type:uuid;not null"`
	ValorContado    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalVendas     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalDinheiro   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalCartao     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalPix        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalTroco      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ValorEsperado   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Diferenca       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Observacao      *string
	CreatedAt       time.Time

	Abertura *AberturaCaixa `gorm:"foreignKey:AberturaCaixaID"`
}

func (FechamentoCaixa) TableName() string { return "fechamentos_caixa" }
