package repository

import (
	"context"

	"cantina/internal/dto"
	"cantina/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProdutoRepository defines the data access contract for products.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via in-memory fakes.
//
// EstoqueAtual is only ever written through UpdateEstoqueTx, after the row
// was read with FindByIDForUpdate inside the same transaction.
type ProdutoRepository interface {
	Create(ctx context.Context, p *model.Produto) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Produto, error)
	FindByBarcode(ctx context.Context, barcode string) (*model.Produto, error)
	List(ctx context.Context, filter dto.ProdutoFilter) ([]model.Produto, int64, error)
	ListEstoqueBaixo(ctx context.Context) ([]model.Produto, error)
	Update(ctx context.Context, p *model.Produto) error
	Desativar(ctx context.Context, id uuid.UUID) error
	Reativar(ctx context.Context, id uuid.UUID) error

	// FindByIDForUpdate reads the product row with an exclusive lock held
	// until the enclosing transaction ends. Every stock mutation takes this
	// same lock so two movements never observe the same before-snapshot.
	FindByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Produto, error)
	UpdateEstoqueTx(tx *gorm.DB, id uuid.UUID, estoque int) error

	DB() *gorm.DB
}

type produtoRepo struct{ db *gorm.DB }

func NewProdutoRepository(db *gorm.DB) ProdutoRepository { return &produtoRepo{db: db} }

func (r *produtoRepo) DB() *gorm.DB { return r.db }

func (r *produtoRepo) Create(ctx context.Context, p *model.Produto) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *produtoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Produto, error) {
	var p model.Produto
	err := r.db.WithContext(ctx).Preload("TipoProduto").First(&p, "id = ?", id).Error
	return &p, err
}

func (r *produtoRepo) FindByBarcode(ctx context.Context, barcode string) (*model.Produto, error) {
	var p model.Produto
	err := r.db.WithContext(ctx).Where("codigo_barras = ? AND ativo = true", barcode).First(&p).Error
	return &p, err
}

func (r *produtoRepo) List(ctx context.Context, filter dto.ProdutoFilter) ([]model.Produto, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Produto{})

	// Ativo filter: "false" = inativos, "all" = todos, anything else = ativos (default)
	switch filter.Ativo {
	case "false":
		q = q.Where("ativo = false")
	case "all":
		// sem filtro
	default:
		q = q.Where("ativo = true")
	}
	if filter.Nome != "" {
		q = q.Where("nome ILIKE ?", "%"+filter.Nome+"%")
	}
	if filter.TipoProdutoID != "" {
		q = q.Where("tipo_produto_id = ?", filter.TipoProdutoID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	var produtos []model.Produto
	err := q.Preload("TipoProduto").Order("nome ASC").Offset(offset).Limit(filter.Limit).Find(&produtos).Error
	return produtos, total, err
}

func (r *produtoRepo) ListEstoqueBaixo(ctx context.Context) ([]model.Produto, error) {
	var produtos []model.Produto
	err := r.db.WithContext(ctx).
		Where("ativo = true AND estoque_atual <= estoque_minimo").
		Order("estoque_atual ASC").Find(&produtos).Error
	return produtos, err
}

func (r *produtoRepo) Update(ctx context.Context, p *model.Produto) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *produtoRepo) Desativar(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Produto{}).Where("id = ?", id).Update("ativo", false).Error
}

func (r *produtoRepo) Reativar(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Produto{}).Where("id = ?", id).Update("ativo", true).Error
}

func (r *produtoRepo) FindByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Produto, error) {
	var p model.Produto
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, "id = ?", id).Error
	return &p, err
}

func (r *produtoRepo) UpdateEstoqueTx(tx *gorm.DB, id uuid.UUID, estoque int) error {
	return tx.Model(&model.Produto{}).Where("id = ?", id).Update("estoque_atual", estoque).Error
}
