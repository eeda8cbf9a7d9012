package repository

import (
	"context"

	"cantina/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TipoProdutoRepository defines CRUD operations for TipoProduto.
type TipoProdutoRepository interface {
	Create(ctx context.Context, t *model.TipoProduto) error
	List(ctx context.Context) ([]model.TipoProduto, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.TipoProduto, error)
	Update(ctx context.Context, t *model.TipoProduto) error
	Desativar(ctx context.Context, id uuid.UUID) error
}

type tipoProdutoRepo struct{ db *gorm.DB }

func NewTipoProdutoRepository(db *gorm.DB) TipoProdutoRepository {
	return &tipoProdutoRepo{db: db}
}

func (r *tipoProdutoRepo) Create(ctx context.Context, t *model.TipoProduto) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *tipoProdutoRepo) List(ctx context.Context) ([]model.TipoProduto, error) {
	var tipos []model.TipoProduto
	err := r.db.WithContext(ctx).Order("nome ASC").Find(&tipos).Error
	return tipos, err
}

func (r *tipoProdutoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.TipoProduto, error) {
	var t model.TipoProduto
	err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *tipoProdutoRepo) Update(ctx context.Context, t *model.TipoProduto) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *tipoProdutoRepo) Desativar(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.TipoProduto{}).Where("id = ?", id).Update("ativo", false).Error
}
