package repository

import (
	"context"
	"time"

	"cantina/internal/dto"
	"cantina/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TotaisVendas agrega as vendas de um operador numa janela de tempo,
// por forma de pagamento. Usado pela apuração de caixa.
type TotaisVendas struct {
	TotalVendas decimal.Decimal
	Dinheiro    decimal.Decimal
	Cartao      decimal.Decimal
	Pix         decimal.Decimal
	Troco       decimal.Decimal
}

type VendaRepository interface {
	Create(ctx context.Context, tx *gorm.DB, v *model.Venda) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Venda, error)
	NextNumero(ctx context.Context, tx *gorm.DB) (int, error)
	List(ctx context.Context, filter dto.VendaFilter) ([]model.Venda, int64, error)
	// TotaisPorOperador soma as vendas do operador na janela [desde, ate).
	// ate == nil significa "até agora". É o join heurístico da apuração de
	// caixa: vendas casadas por operador + janela de tempo, não por FK.
	TotaisPorOperador(ctx context.Context, usuarioID uuid.UUID, desde time.Time, ate *time.Time) (*TotaisVendas, error)
	DB() *gorm.DB
}

type vendaRepo struct{ db *gorm.DB }

func NewVendaRepository(db *gorm.DB) VendaRepository { return &vendaRepo{db: db} }

func (r *vendaRepo) DB() *gorm.DB { return r.db }

func (r *vendaRepo) Create(ctx context.Context, tx *gorm.DB, v *model.Venda) error {
	return tx.WithContext(ctx).Create(v).Error
}

func (r *vendaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Venda, error) {
	var v model.Venda
	err := r.db.WithContext(ctx).Preload("Itens.Produto").First(&v, "id = ?", id).Error
	return &v, err
}

func (r *vendaRepo) NextNumero(ctx context.Context, tx *gorm.DB) (int, error) {
	// Sequence do PostgreSQL — geração atômica e monotônica do número da venda
	var num int
	err := tx.WithContext(ctx).Raw("SELECT nextval('vendas_numero_seq')").Scan(&num).Error
	return num, err
}

func (r *vendaRepo) List(ctx context.Context, filter dto.VendaFilter) ([]model.Venda, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Venda{})

	if filter.Data != "" {
		q = q.Where("DATE(created_at) = ?", filter.Data)
	} else {
		q = q.Where("DATE(created_at) = CURRENT_DATE")
	}
	if filter.AlunoRA != "" {
		q = q.Where("aluno_ra = ?", filter.AlunoRA)
	}
	if filter.FormaPagamento != "" {
		q = q.Where("forma_pagamento = ?", filter.FormaPagamento)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	var vendas []model.Venda
	err := q.Preload("Itens.Produto").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&vendas).Error
	return vendas, total, err
}

func (r *vendaRepo) TotaisPorOperador(ctx context.Context, usuarioID uuid.UUID, desde time.Time, ate *time.Time) (*TotaisVendas, error) {
	q := r.db.WithContext(ctx).Model(&model.Venda{}).
		Where("usuario_id = ? AND created_at >= ?", usuarioID, desde)
	if ate != nil {
		q = q.Where("created_at < ?", *ate)
	}

	var row struct {
		TotalVendas decimal.Decimal
		Dinheiro    decimal.Decimal
		Cartao      decimal.Decimal
		Pix         decimal.Decimal
		Troco       decimal.Decimal
	}
	err := q.Select(`
		COALESCE(SUM(total), 0)                                               AS total_vendas,
		COALESCE(SUM(total) FILTER (WHERE forma_pagamento = 'dinheiro'), 0)   AS dinheiro,
		COALESCE(SUM(total) FILTER (WHERE forma_pagamento = 'cartao'), 0)     AS cartao,
		COALESCE(SUM(total) FILTER (WHERE forma_pagamento = 'pix'), 0)        AS pix,
		COALESCE(SUM(troco) FILTER (WHERE forma_pagamento = 'dinheiro'), 0)   AS troco`).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &TotaisVendas{
		TotalVendas: row.TotalVendas,
		Dinheiro:    row.Dinheiro,
		Cartao:      row.Cartao,
		Pix:         row.Pix,
		Troco:       row.Troco,
	}, nil
}
