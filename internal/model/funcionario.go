package model

import (
	"time"

	"github.com/google/uuid"
)

// Funcionario é o cadastro de funcionário da escola que compra na cantina
// via convênio mensal (ver ContaFuncionario).
type Funcionario struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nome      string    `gorm:"index;not null"`
	Email     *string
	Ativo     bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Funcionario) TableName() string { return "funcionarios" }
