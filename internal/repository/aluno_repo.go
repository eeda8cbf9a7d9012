package repository

import (
	"context"

	"cantina/internal/dto"
	"cantina/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AlunoRepository interface {
	Create(ctx context.Context, a *model.Aluno) error
	FindByRA(ctx context.Context, ra string) (*model.Aluno, error)
	List(ctx context.Context, filter dto.AlunoFilter) ([]model.Aluno, int64, error)
	Update(ctx context.Context, a *model.Aluno) error
	Desativar(ctx context.Context, ra string) error
	Reativar(ctx context.Context, ra string) error

	// Restrições — presença do registro nega a venda (deny-by-default)
	CreateRestricao(ctx context.Context, r *model.RestricaoAluno) error
	ListRestricoes(ctx context.Context, ra string) ([]model.RestricaoAluno, error)
	DeleteRestricao(ctx context.Context, id uuid.UUID) error
}

type alunoRepo struct{ db *gorm.DB }

func NewAlunoRepository(db *gorm.DB) AlunoRepository { return &alunoRepo{db: db} }

func (r *alunoRepo) Create(ctx context.Context, a *model.Aluno) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *alunoRepo) FindByRA(ctx context.Context, ra string) (*model.Aluno, error) {
	var a model.Aluno
	err := r.db.WithContext(ctx).Where("ra = ?", ra).First(&a).Error
	return &a, err
}

func (r *alunoRepo) List(ctx context.Context, filter dto.AlunoFilter) ([]model.Aluno, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Aluno{})

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

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	var alunos []model.Aluno
	err := q.Order("nome ASC").Offset(offset).Limit(filter.Limit).Find(&alunos).Error
	return alunos, total, err
}

func (r *alunoRepo) Update(ctx context.Context, a *model.Aluno) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *alunoRepo) Desativar(ctx context.Context, ra string) error {
	return r.db.WithContext(ctx).Model(&model.Aluno{}).Where("ra = ?", ra).Update("ativo", false).Error
}

func (r *alunoRepo) Reativar(ctx context.Context, ra string) error {
	return r.db.WithContext(ctx).Model(&model.Aluno{}).Where("ra = ?", ra).Update("ativo", true).Error
}

func (r *alunoRepo) CreateRestricao(ctx context.Context, restricao *model.RestricaoAluno) error {
	return r.db.WithContext(ctx).Create(restricao).Error
}

func (r *alunoRepo) ListRestricoes(ctx context.Context, ra string) ([]model.RestricaoAluno, error) {
	var restricoes []model.RestricaoAluno
	err := r.db.WithContext(ctx).
		Preload("Produto").Preload("TipoProduto").
		Where("aluno_ra = ?", ra).Find(&restricoes).Error
	return restricoes, err
}

func (r *alunoRepo) DeleteRestricao(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.RestricaoAluno{}, "id = ?", id).Error
}
