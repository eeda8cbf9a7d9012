package repository

import (
	"context"

	"cantina/internal/dto"
	"cantina/internal/model"

	"gorm.io/gorm"
)

// MovimentoEstoqueRepository é append-only: movimentos são criados e listados,
// nunca alterados ou removidos.
type MovimentoEstoqueRepository interface {
	CreateTx(tx *gorm.DB, m *model.MovimentoEstoque) error
	List(ctx context.Context, filter dto.MovimentoEstoqueFilter) ([]model.MovimentoEstoque, int64, error)
}

type movimentoEstoqueRepo struct{ db *gorm.DB }

func NewMovimentoEstoqueRepository(db *gorm.DB) MovimentoEstoqueRepository {
	return &movimentoEstoqueRepo{db: db}
}

func (r *movimentoEstoqueRepo) CreateTx(tx *gorm.DB, m *model.MovimentoEstoque) error {
	return tx.Create(m).Error
}

func (r *movimentoEstoqueRepo) List(ctx context.Context, filter dto.MovimentoEstoqueFilter) ([]model.MovimentoEstoque, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.MovimentoEstoque{}).Preload("Produto")
	if filter.ProdutoID != "" {
		q = q.Where("produto_id = ?", filter.ProdutoID)
	}
	if filter.Tipo != "" {
		q = q.Where("tipo = ?", filter.Tipo)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	limit := filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}
	offset := (page - 1) * limit

	var movimentos []model.MovimentoEstoque
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&movimentos).Error
	return movimentos, total, err
}
